package order

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/campuscanteen/canteen-api/internal/events"
	"github.com/campuscanteen/canteen-api/internal/models"
)

// Draft carries a finalized cart into order creation.
type Draft struct {
	StudentID    string
	Lines        []models.CartLine
	Subtotal     int64
	Discount     int64
	Tax          int64
	Total        int64
	PickupTime   string
	Instructions string
}

// Repository persists orders durably across sessions.
type Repository interface {
	Insert(ctx context.Context, o *models.Order) error
	Update(ctx context.Context, o *models.Order) error
	GetByID(ctx context.Context, id string) (*models.Order, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
}

// Manager owns the order lifecycle: creation, status transitions and
// the read projections for the student and admin views.
type Manager struct {
	repo Repository
	bus  *events.Bus
	log  *slog.Logger
	now  func() time.Time
}

// NewManager creates an order lifecycle manager.
func NewManager(repo Repository, bus *events.Bus, log *slog.Logger) *Manager {
	return &Manager{
		repo: repo,
		bus:  bus,
		log:  log,
		now:  time.Now,
	}
}

// Create assigns a fresh identifier, stamps the order Pending and
// persists it. UUIDs replace the old time-derived scheme, which could
// collide under rapid sequential creation; the ORD prefix stays so
// pickup staff can still read an order code aloud.
func (m *Manager) Create(ctx context.Context, d Draft) (*models.Order, error) {
	now := m.now().UTC()
	o := &models.Order{
		ID:           "ORD-" + uuid.New().String(),
		StudentID:    d.StudentID,
		Lines:        d.Lines,
		Subtotal:     d.Subtotal,
		Discount:     d.Discount,
		Tax:          d.Tax,
		Total:        d.Total,
		PickupTime:   d.PickupTime,
		Instructions: d.Instructions,
		Status:       models.StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := m.repo.Insert(ctx, o); err != nil {
		return nil, err
	}

	m.bus.Publish(events.Event{Topic: events.TopicOrderStatus, OrderID: o.ID, Status: o.Status})
	m.log.Info("order created", "order_id", o.ID, "student_id", o.StudentID, "total", o.Total)
	return o, nil
}

// UpdateStatus overwrites an order's status and touches its timestamp.
// Leaving a terminal state is allowed only as an explicit admin
// override; the manager logs it but does not block it.
func (m *Manager) UpdateStatus(ctx context.Context, orderID string, status models.Status) (*models.Order, error) {
	o, err := m.repo.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if o.Status.Terminal() && status != o.Status {
		m.log.Warn("admin override: leaving terminal status",
			"order_id", orderID, "from", o.Status, "to", status)
	}

	o.Status = status
	o.UpdatedAt = m.now().UTC()
	if err := m.repo.Update(ctx, o); err != nil {
		return nil, err
	}

	m.bus.Publish(events.Event{Topic: events.TopicOrderStatus, OrderID: o.ID, Status: o.Status})
	m.log.Info("order status updated", "order_id", o.ID, "status", o.Status)
	return o, nil
}

// Save persists settlement mutations (total, redeemed points, payment
// fields) on an existing order.
func (m *Manager) Save(ctx context.Context, o *models.Order) error {
	o.UpdatedAt = m.now().UTC()
	return m.repo.Update(ctx, o)
}

// Get returns a single order.
func (m *Manager) Get(ctx context.Context, orderID string) (*models.Order, error) {
	return m.repo.GetByID(ctx, orderID)
}

// ListByStudent returns a student's orders, newest first.
func (m *Manager) ListByStudent(ctx context.Context, studentID string) ([]models.Order, error) {
	return m.repo.ListByStudent(ctx, studentID)
}

// ListAll returns every order for the admin console.
func (m *Manager) ListAll(ctx context.Context) ([]models.Order, error) {
	return m.repo.ListAll(ctx)
}
