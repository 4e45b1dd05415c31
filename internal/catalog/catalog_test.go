package catalog

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuscanteen/canteen-api/internal/models"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testSeed() *Seed {
	return &Seed{
		MenuItems: []models.MenuItem{
			{ID: "m001", Name: "Idly", Category: "Indian", Price: 20, Veg: true, Available: true},
			{ID: "m002", Name: "Chicken Biryani", Category: "Indian", Price: 180, Available: true},
			{ID: "m003", Name: "Retired Dish", Category: "Indian", Price: 50, Available: false},
		},
		Offers: []models.Offer{
			{
				ID: "c001", Code: "VEGSTART", Title: "Veg Starter Deal", Percentage: 10,
				ValidFrom:  date(2025, 11, 1),
				ValidUntil: date(2025, 12, 31),
				Active:     true,
			},
			{
				ID: "c002", Code: "OLDCODE", Title: "Retired Promo", Percentage: 50,
				ValidFrom:  date(2025, 1, 1),
				ValidUntil: date(2026, 12, 31),
				Active:     false,
			},
		},
	}
}

func TestCatalog_MenuItems(t *testing.T) {
	c := New(nil, testSeed(), testLogger())
	ctx := context.Background()

	items := c.MenuItems(ctx)
	require.Len(t, items, 2, "unavailable items must be filtered")
	// Sorted by category then name.
	assert.Equal(t, "m002", items[0].ID)
	assert.Equal(t, "m001", items[1].ID)

	all := c.AllMenuItems(ctx)
	assert.Len(t, all, 3, "admin view includes unavailable items")
}

func TestCatalog_MenuItem(t *testing.T) {
	c := New(nil, testSeed(), testLogger())
	ctx := context.Background()

	it, err := c.MenuItem(ctx, "m001")
	require.NoError(t, err)
	assert.Equal(t, "Idly", it.Name)

	_, err = c.MenuItem(ctx, "missing")
	assert.ErrorIs(t, err, ErrItemNotFound)

	// Unavailable items are hidden from the storefront lookup too.
	_, err = c.MenuItem(ctx, "m003")
	assert.ErrorIs(t, err, ErrItemNotFound)
}

func TestCatalog_FindOffer(t *testing.T) {
	c := New(nil, testSeed(), testLogger())
	ctx := context.Background()

	tests := []struct {
		name    string
		code    string
		wantID  string
		wantErr error
	}{
		{name: "exact code", code: "VEGSTART", wantID: "c001"},
		{name: "lowercase code", code: "vegstart", wantID: "c001"},
		{name: "by title", code: "veg starter deal", wantID: "c001"},
		{name: "unknown", code: "NOSUCH", wantErr: ErrOfferNotFound},
		{name: "empty", code: "", wantErr: ErrOfferNotFound},
		{name: "inactive hidden", code: "OLDCODE", wantErr: ErrOfferNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := c.FindOffer(ctx, tt.code)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, o.ID)
		})
	}
}

func TestCatalog_ActiveOffers(t *testing.T) {
	c := New(nil, testSeed(), testLogger())
	ctx := context.Background()

	inWindow := date(2025, 11, 15)
	active := c.ActiveOffers(ctx, inWindow)
	require.Len(t, active, 1)
	assert.Equal(t, "c001", active[0].ID)

	// Outside the window nothing is active, even with the flag set.
	assert.Empty(t, c.ActiveOffers(ctx, date(2025, 10, 1)))
	assert.Empty(t, c.ActiveOffers(ctx, date(2026, 2, 1)))
}

func TestCatalog_MenuItemAdmin(t *testing.T) {
	c := New(nil, testSeed(), testLogger())
	ctx := context.Background()

	created, err := c.CreateMenuItem(ctx, models.MenuItem{Name: "Masala Dosa", Category: "Indian", Price: 60, Veg: true})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.Available)

	_, err = c.CreateMenuItem(ctx, models.MenuItem{Price: 60})
	assert.Error(t, err, "nameless item must be rejected")

	// Soft delete hides the item from the storefront, never drops it.
	require.NoError(t, c.RemoveMenuItem(ctx, created.ID))
	_, err = c.MenuItem(ctx, created.ID)
	assert.ErrorIs(t, err, ErrItemNotFound)

	var found bool
	for _, it := range c.AllMenuItems(ctx) {
		if it.ID == created.ID {
			found = true
			assert.False(t, it.Available)
		}
	}
	assert.True(t, found, "soft-deleted item must survive in the admin view")

	assert.ErrorIs(t, c.RemoveMenuItem(ctx, "missing"), ErrItemNotFound)
}

func TestCatalog_OfferAdmin(t *testing.T) {
	c := New(nil, testSeed(), testLogger())
	ctx := context.Background()

	created, err := c.CreateOffer(ctx, models.Offer{
		Code: "FRESH10", Title: "Fresh Deal", Percentage: 10,
		ValidFrom: date(2025, 11, 1), ValidUntil: date(2025, 12, 31), Active: true,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	tests := []struct {
		name  string
		offer models.Offer
	}{
		{"missing code", models.Offer{Percentage: 10, ValidFrom: date(2025, 11, 1), ValidUntil: date(2025, 12, 31)}},
		{"percentage over 100", models.Offer{Code: "X", Percentage: 150, ValidFrom: date(2025, 11, 1), ValidUntil: date(2025, 12, 31)}},
		{"inverted window", models.Offer{Code: "X", Percentage: 10, ValidFrom: date(2025, 12, 31), ValidUntil: date(2025, 11, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.CreateOffer(ctx, tt.offer)
			assert.Error(t, err)
		})
	}

	// Offers hard-delete; nothing historical references them.
	require.NoError(t, c.DeleteOffer(ctx, created.ID))
	assert.ErrorIs(t, c.DeleteOffer(ctx, created.ID), ErrOfferNotFound)

	_, err = c.FindOffer(ctx, "FRESH10")
	assert.ErrorIs(t, err, ErrOfferNotFound)
}

func TestCatalog_UpdatePreservesCreatedAt(t *testing.T) {
	c := New(nil, testSeed(), testLogger())
	ctx := context.Background()

	created, err := c.CreateMenuItem(ctx, models.MenuItem{Name: "Masala Dosa", Price: 60})
	require.NoError(t, err)
	original := created.CreatedAt

	time.Sleep(time.Millisecond)
	updated := *created
	updated.Price = 70
	updated.CreatedAt = time.Time{}
	require.NoError(t, c.UpdateMenuItem(ctx, updated))

	it, err := c.MenuItem(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(70), it.Price)
	assert.Equal(t, original, it.CreatedAt)
}
