package repository

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/campuscanteen/canteen-api/internal/models"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrOrderExists   = errors.New("order id already exists")
)

// InMemoryOrderRepository stores orders in the local profile.
// It is the durable source of truth when no remote store is configured,
// and the fallback when the remote store fails.
type InMemoryOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]models.Order
}

// NewInMemoryOrderRepository creates an empty order repository.
func NewInMemoryOrderRepository() *InMemoryOrderRepository {
	return &InMemoryOrderRepository{
		orders: make(map[string]models.Order),
	}
}

// Insert adds a new order. Order IDs are unique across the profile's
// whole history, so inserting a duplicate is an error.
func (r *InMemoryOrderRepository) Insert(ctx context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[o.ID]; exists {
		return ErrOrderExists
	}
	r.orders[o.ID] = *o
	return nil
}

// Update overwrites an existing order. Last writer wins.
func (r *InMemoryOrderRepository) Update(ctx context.Context, o *models.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.orders[o.ID]; !exists {
		return ErrOrderNotFound
	}
	r.orders[o.ID] = *o
	return nil
}

// GetByID returns an order by its identifier.
func (r *InMemoryOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	o, exists := r.orders[id]
	if !exists {
		return nil, ErrOrderNotFound
	}
	return &o, nil
}

// ListByStudent returns a student's orders, newest first.
func (r *InMemoryOrderRepository) ListByStudent(ctx context.Context, studentID string) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var orders []models.Order
	for _, o := range r.orders {
		if o.StudentID == studentID {
			orders = append(orders, o)
		}
	}
	sortByCreatedDesc(orders)
	return orders, nil
}

// ListAll returns every order, newest first.
func (r *InMemoryOrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	orders := make([]models.Order, 0, len(r.orders))
	for _, o := range r.orders {
		orders = append(orders, o)
	}
	sortByCreatedDesc(orders)
	return orders, nil
}

func sortByCreatedDesc(orders []models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
