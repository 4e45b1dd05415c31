package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/campuscanteen/canteen-api/internal/models"
)

var (
	ErrStudentNotFound = errors.New("student not found")
	ErrStudentExists   = errors.New("roll number already registered")
)

// InMemoryStudentRepository stores student accounts keyed by roll number.
type InMemoryStudentRepository struct {
	mu       sync.RWMutex
	students map[string]models.StudentAccount
}

// NewInMemoryStudentRepository creates an empty student repository.
func NewInMemoryStudentRepository() *InMemoryStudentRepository {
	return &InMemoryStudentRepository{
		students: make(map[string]models.StudentAccount),
	}
}

// Insert adds a new student account.
func (r *InMemoryStudentRepository) Insert(ctx context.Context, s *models.StudentAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.students[s.Roll]; exists {
		return ErrStudentExists
	}
	r.students[s.Roll] = *s
	return nil
}

// Update overwrites an existing student account. Last writer wins.
func (r *InMemoryStudentRepository) Update(ctx context.Context, s *models.StudentAccount) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.students[s.Roll]; !exists {
		return ErrStudentNotFound
	}
	r.students[s.Roll] = *s
	return nil
}

// GetByRoll returns a student account by roll number.
func (r *InMemoryStudentRepository) GetByRoll(ctx context.Context, roll string) (*models.StudentAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, exists := r.students[roll]
	if !exists {
		return nil, ErrStudentNotFound
	}
	return &s, nil
}

// GetByEmail returns a student account by email.
func (r *InMemoryStudentRepository) GetByEmail(ctx context.Context, email string) (*models.StudentAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, s := range r.students {
		if s.Email == email {
			return &s, nil
		}
	}
	return nil, ErrStudentNotFound
}

// List returns every student account, ordered by name.
func (r *InMemoryStudentRepository) List(ctx context.Context) ([]models.StudentAccount, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	students := make([]models.StudentAccount, 0, len(r.students))
	for _, s := range r.students {
		students = append(students, s)
	}
	sort.Slice(students, func(i, j int) bool {
		return students[i].Name < students[j].Name
	})
	return students, nil
}
