package store

import (
	"context"
	"log/slog"

	"github.com/campuscanteen/canteen-api/internal/models"
	"github.com/campuscanteen/canteen-api/internal/repository"
)

// The fallback wrappers pair the hosted database with the local profile
// repositories. Writes go to the local profile first (it is the source of
// truth for the active session) and are mirrored to the remote store
// best-effort. Reads prefer the remote store and fall back to the local
// copy on RemoteError, so a backing-store outage never breaks the user
// flow.

// FallbackOrders is an order repository backed by Postgres with a local
// in-memory fallback.
type FallbackOrders struct {
	remote *Postgres
	local  *repository.InMemoryOrderRepository
	log    *slog.Logger
}

// NewFallbackOrders wraps the remote and local order stores.
func NewFallbackOrders(remote *Postgres, local *repository.InMemoryOrderRepository, log *slog.Logger) *FallbackOrders {
	return &FallbackOrders{remote: remote, local: local, log: log}
}

func (f *FallbackOrders) Insert(ctx context.Context, o *models.Order) error {
	if err := f.local.Insert(ctx, o); err != nil {
		return err
	}
	if err := f.remote.InsertOrder(ctx, o); err != nil {
		f.log.Warn("remote order insert failed, local copy kept", "order_id", o.ID, "error", err)
	}
	return nil
}

func (f *FallbackOrders) Update(ctx context.Context, o *models.Order) error {
	if err := f.local.Update(ctx, o); err != nil {
		return err
	}
	if err := f.remote.UpdateOrder(ctx, o); err != nil {
		f.log.Warn("remote order update failed, local copy kept", "order_id", o.ID, "error", err)
	}
	return nil
}

func (f *FallbackOrders) GetByID(ctx context.Context, id string) (*models.Order, error) {
	o, err := f.remote.OrderByID(ctx, id)
	if err != nil {
		f.log.Debug("remote order read failed, falling back to local", "order_id", id, "error", err)
		return f.local.GetByID(ctx, id)
	}
	return o, nil
}

func (f *FallbackOrders) ListByStudent(ctx context.Context, studentID string) ([]models.Order, error) {
	orders, err := f.remote.OrdersByStudent(ctx, studentID)
	if err != nil {
		f.log.Debug("remote order list failed, falling back to local", "error", err)
		return f.local.ListByStudent(ctx, studentID)
	}
	return orders, nil
}

func (f *FallbackOrders) ListAll(ctx context.Context) ([]models.Order, error) {
	orders, err := f.remote.Orders(ctx)
	if err != nil {
		f.log.Debug("remote order list failed, falling back to local", "error", err)
		return f.local.ListAll(ctx)
	}
	return orders, nil
}

// FallbackStudents is a student repository backed by Postgres with a
// local in-memory fallback.
type FallbackStudents struct {
	remote *Postgres
	local  *repository.InMemoryStudentRepository
	log    *slog.Logger
}

// NewFallbackStudents wraps the remote and local student stores.
func NewFallbackStudents(remote *Postgres, local *repository.InMemoryStudentRepository, log *slog.Logger) *FallbackStudents {
	return &FallbackStudents{remote: remote, local: local, log: log}
}

func (f *FallbackStudents) Insert(ctx context.Context, s *models.StudentAccount) error {
	if err := f.local.Insert(ctx, s); err != nil {
		return err
	}
	if err := f.remote.InsertStudent(ctx, s); err != nil {
		f.log.Warn("remote student insert failed, local copy kept", "roll", s.Roll, "error", err)
	}
	return nil
}

func (f *FallbackStudents) Update(ctx context.Context, s *models.StudentAccount) error {
	if err := f.local.Update(ctx, s); err != nil {
		return err
	}
	if err := f.remote.UpdateStudent(ctx, s); err != nil {
		f.log.Warn("remote student update failed, local copy kept", "roll", s.Roll, "error", err)
	}
	return nil
}

func (f *FallbackStudents) GetByRoll(ctx context.Context, roll string) (*models.StudentAccount, error) {
	s, err := f.local.GetByRoll(ctx, roll)
	if err == nil {
		return s, nil
	}
	s, rerr := f.remote.StudentByRoll(ctx, roll)
	if rerr != nil {
		return nil, err
	}
	// Cache the remote record locally so later balance writes succeed
	// even if the remote store goes away.
	_ = f.local.Insert(ctx, s)
	return s, nil
}

// GetByEmail consults only the local profile: registration writes
// through to it, and the uniqueness check it serves is advisory.
func (f *FallbackStudents) GetByEmail(ctx context.Context, email string) (*models.StudentAccount, error) {
	return f.local.GetByEmail(ctx, email)
}

func (f *FallbackStudents) List(ctx context.Context) ([]models.StudentAccount, error) {
	students, err := f.remote.Students(ctx)
	if err != nil {
		f.log.Debug("remote student list failed, falling back to local", "error", err)
		return f.local.List(ctx)
	}
	return students, nil
}

// FallbackComplaints is a complaint repository backed by Postgres with a
// local in-memory fallback.
type FallbackComplaints struct {
	remote *Postgres
	local  *repository.InMemoryComplaintRepository
	log    *slog.Logger
}

// NewFallbackComplaints wraps the remote and local complaint stores.
func NewFallbackComplaints(remote *Postgres, local *repository.InMemoryComplaintRepository, log *slog.Logger) *FallbackComplaints {
	return &FallbackComplaints{remote: remote, local: local, log: log}
}

func (f *FallbackComplaints) Insert(ctx context.Context, c *models.Complaint) error {
	if err := f.local.Insert(ctx, c); err != nil {
		return err
	}
	if err := f.remote.InsertComplaint(ctx, c); err != nil {
		f.log.Warn("remote complaint insert failed, local copy kept", "complaint_id", c.ID, "error", err)
	}
	return nil
}

func (f *FallbackComplaints) Update(ctx context.Context, c *models.Complaint) error {
	if err := f.local.Update(ctx, c); err != nil {
		return err
	}
	if err := f.remote.UpdateComplaint(ctx, c); err != nil {
		f.log.Warn("remote complaint update failed, local copy kept", "complaint_id", c.ID, "error", err)
	}
	return nil
}

func (f *FallbackComplaints) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	return f.local.GetByID(ctx, id)
}

func (f *FallbackComplaints) ListByStudent(ctx context.Context, studentID string) ([]models.Complaint, error) {
	complaints, err := f.remote.ComplaintsByStudent(ctx, studentID)
	if err != nil {
		f.log.Debug("remote complaint list failed, falling back to local", "error", err)
		return f.local.ListByStudent(ctx, studentID)
	}
	return complaints, nil
}

func (f *FallbackComplaints) ListAll(ctx context.Context) ([]models.Complaint, error) {
	complaints, err := f.remote.Complaints(ctx)
	if err != nil {
		f.log.Debug("remote complaint list failed, falling back to local", "error", err)
		return f.local.ListAll(ctx)
	}
	return complaints, nil
}
