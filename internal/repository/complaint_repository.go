package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/campuscanteen/canteen-api/internal/models"
)

var ErrComplaintNotFound = errors.New("complaint not found")

// InMemoryComplaintRepository stores complaints in the local profile.
type InMemoryComplaintRepository struct {
	mu         sync.RWMutex
	complaints map[string]models.Complaint
}

// NewInMemoryComplaintRepository creates an empty complaint repository.
func NewInMemoryComplaintRepository() *InMemoryComplaintRepository {
	return &InMemoryComplaintRepository{
		complaints: make(map[string]models.Complaint),
	}
}

// Insert adds a new complaint.
func (r *InMemoryComplaintRepository) Insert(ctx context.Context, c *models.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.complaints[c.ID] = *c
	return nil
}

// Update overwrites an existing complaint.
func (r *InMemoryComplaintRepository) Update(ctx context.Context, c *models.Complaint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.complaints[c.ID]; !exists {
		return ErrComplaintNotFound
	}
	r.complaints[c.ID] = *c
	return nil
}

// GetByID returns a complaint by its identifier.
func (r *InMemoryComplaintRepository) GetByID(ctx context.Context, id string) (*models.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, exists := r.complaints[id]
	if !exists {
		return nil, ErrComplaintNotFound
	}
	return &c, nil
}

// ListByStudent returns a student's complaints, newest first.
func (r *InMemoryComplaintRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var complaints []models.Complaint
	for _, c := range r.complaints {
		if c.StudentID == studentID {
			complaints = append(complaints, c)
		}
	}
	sortComplaintsDesc(complaints)
	return complaints, nil
}

// ListAll returns every complaint, newest first.
func (r *InMemoryComplaintRepository) ListAll(ctx context.Context) ([]models.Complaint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	complaints := make([]models.Complaint, 0, len(r.complaints))
	for _, c := range r.complaints {
		complaints = append(complaints, c)
	}
	sortComplaintsDesc(complaints)
	return complaints, nil
}

func sortComplaintsDesc(complaints []models.Complaint) {
	sort.Slice(complaints, func(i, j int) bool {
		return complaints[i].CreatedAt.After(complaints[j].CreatedAt)
	})
}
