package order

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/campuscanteen/canteen-api/internal/events"
	"github.com/campuscanteen/canteen-api/internal/models"
	"github.com/campuscanteen/canteen-api/internal/repository"
)

func testManager() *Manager {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewManager(repository.NewInMemoryOrderRepository(), events.NewBus(), log)
}

func draft(studentID string, total int64) Draft {
	return Draft{
		StudentID:  studentID,
		Lines:      []models.CartLine{{ItemID: "m001", Name: "Idly", Price: total, Quantity: 1}},
		Subtotal:   total,
		Total:      total,
		PickupTime: "12:30",
	}
}

func TestManager_Create(t *testing.T) {
	m := testManager()
	ctx := context.Background()

	o, err := m.Create(ctx, draft("CS21B001", 257))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if !strings.HasPrefix(o.ID, "ORD-") {
		t.Errorf("order ID = %q, want ORD- prefix", o.ID)
	}
	if o.Status != models.StatusPending {
		t.Errorf("status = %q, want %q", o.Status, models.StatusPending)
	}
	if o.CreatedAt.IsZero() || o.UpdatedAt.IsZero() {
		t.Error("timestamps not set on creation")
	}

	// Rapid consecutive creates must still get distinct identifiers.
	o2, err := m.Create(ctx, draft("CS21B001", 100))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if o.ID == o2.ID {
		t.Errorf("duplicate order ID %q across consecutive creates", o.ID)
	}
}

func TestManager_UpdateStatus(t *testing.T) {
	m := testManager()
	ctx := context.Background()

	o, err := m.Create(ctx, draft("CS21B001", 100))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := m.UpdateStatus(ctx, o.ID, models.StatusPreparing)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if updated.Status != models.StatusPreparing {
		t.Errorf("status = %q, want %q", updated.Status, models.StatusPreparing)
	}
	if !updated.UpdatedAt.After(updated.CreatedAt) && !updated.UpdatedAt.Equal(updated.CreatedAt) {
		t.Errorf("UpdatedAt %v precedes CreatedAt %v", updated.UpdatedAt, updated.CreatedAt)
	}

	if _, err := m.UpdateStatus(ctx, "ORD-missing", models.StatusReady); !errors.Is(err, repository.ErrOrderNotFound) {
		t.Errorf("UpdateStatus(missing) error = %v, want ErrOrderNotFound", err)
	}
}

func TestManager_UpdateStatus_TerminalOverride(t *testing.T) {
	m := testManager()
	ctx := context.Background()

	o, err := m.Create(ctx, draft("CS21B001", 100))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := m.UpdateStatus(ctx, o.ID, models.StatusCancelled); err != nil {
		t.Fatalf("UpdateStatus(Cancelled) error = %v", err)
	}

	// Leaving a terminal state is an explicit admin override; it is
	// logged but never blocked.
	reopened, err := m.UpdateStatus(ctx, o.ID, models.StatusPreparing)
	if err != nil {
		t.Fatalf("UpdateStatus() after terminal error = %v", err)
	}
	if reopened.Status != models.StatusPreparing {
		t.Errorf("status = %q, want %q", reopened.Status, models.StatusPreparing)
	}
}

func TestManager_ListByStudent(t *testing.T) {
	m := testManager()
	ctx := context.Background()

	base := time.Date(2025, 11, 15, 10, 0, 0, 0, time.UTC)
	step := 0
	m.now = func() time.Time {
		step++
		return base.Add(time.Duration(step) * time.Second)
	}

	first, _ := m.Create(ctx, draft("CS21B001", 100))
	second, _ := m.Create(ctx, draft("CS21B001", 200))
	if _, err := m.Create(ctx, draft("CS21B002", 300)); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	orders, err := m.ListByStudent(ctx, "CS21B001")
	if err != nil {
		t.Fatalf("ListByStudent() error = %v", err)
	}
	if len(orders) != 2 {
		t.Fatalf("got %d orders, want 2", len(orders))
	}

	// Newest first.
	if orders[0].ID != second.ID || orders[1].ID != first.ID {
		t.Errorf("order listing = [%s, %s], want [%s, %s]",
			orders[0].ID, orders[1].ID, second.ID, first.ID)
	}

	all, err := m.ListAll(ctx)
	if err != nil {
		t.Fatalf("ListAll() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("ListAll() returned %d orders, want 3", len(all))
	}
}
