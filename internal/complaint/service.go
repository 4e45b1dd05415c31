package complaint

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/campuscanteen/canteen-api/internal/models"
)

var ErrMissingFields = errors.New("subject and description are required")

// Repository persists complaints.
type Repository interface {
	Insert(ctx context.Context, c *models.Complaint) error
	Update(ctx context.Context, c *models.Complaint) error
	GetByID(ctx context.Context, id string) (*models.Complaint, error)
	ListByStudent(ctx context.Context, studentID string) ([]models.Complaint, error)
	ListAll(ctx context.Context) ([]models.Complaint, error)
}

// Service files and tracks student complaints through the admin queue.
type Service struct {
	repo Repository
	log  *slog.Logger
	now  func() time.Time
}

// NewService creates a complaint service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log,
		now:  time.Now,
	}
}

// File creates a new complaint, open at the given priority.
func (s *Service) File(ctx context.Context, studentID, subject, description string, priority models.Priority) (*models.Complaint, error) {
	if subject == "" || description == "" {
		return nil, ErrMissingFields
	}
	if priority == "" {
		priority = models.PriorityMedium
	}

	now := s.now().UTC()
	c := &models.Complaint{
		ID:          "CMP-" + uuid.New().String(),
		StudentID:   studentID,
		Subject:     subject,
		Description: description,
		Status:      models.ComplaintOpen,
		Priority:    priority,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Insert(ctx, c); err != nil {
		return nil, err
	}

	s.log.Info("complaint filed", "complaint_id", c.ID, "student_id", studentID, "priority", priority)
	return c, nil
}

// UpdateStatus moves a complaint through the admin queue.
func (s *Service) UpdateStatus(ctx context.Context, id string, status models.ComplaintStatus) (*models.Complaint, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	c.Status = status
	c.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}

	s.log.Info("complaint status updated", "complaint_id", c.ID, "status", status)
	return c, nil
}

// ListByStudent returns a student's complaints, newest first.
func (s *Service) ListByStudent(ctx context.Context, studentID string) ([]models.Complaint, error) {
	return s.repo.ListByStudent(ctx, studentID)
}

// ListAll returns every complaint for the admin console.
func (s *Service) ListAll(ctx context.Context) ([]models.Complaint, error) {
	return s.repo.ListAll(ctx)
}
