package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSeedFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSeed(t *testing.T) {
	path := writeSeedFile(t, `
menu_items:
  - id: m001
    name: Idly
    category: Indian
    price: 20
    veg: true
offers:
  - id: c001
    code: VEGSTART
    title: Veg Starter Deal
    percentage: 10
    valid_from: "2025-11-01"
    valid_until: "2025-12-31"
`)

	seed, err := LoadSeed(path)
	require.NoError(t, err)

	require.Len(t, seed.MenuItems, 1)
	assert.Equal(t, "Idly", seed.MenuItems[0].Name)
	assert.True(t, seed.MenuItems[0].Available, "seeded items start available")

	require.Len(t, seed.Offers, 1)
	assert.Equal(t, "VEGSTART", seed.Offers[0].Code)
	assert.True(t, seed.Offers[0].Active, "seeded offers start active")
	assert.Equal(t, date(2025, 11, 1), seed.Offers[0].ValidFrom)
}

func TestLoadSeed_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not yaml", "{{{"},
		{"item missing name", "menu_items:\n  - id: m001\n    price: 20\n"},
		{"negative price", "menu_items:\n  - id: m001\n    name: Idly\n    price: -1\n"},
		{"bad offer date", "offers:\n  - id: c001\n    code: X\n    percentage: 10\n    valid_from: \"soon\"\n    valid_until: \"2025-12-31\"\n"},
		{"inverted window", "offers:\n  - id: c001\n    code: X\n    percentage: 10\n    valid_from: \"2025-12-31\"\n    valid_until: \"2025-11-01\"\n"},
		{"percentage out of range", "offers:\n  - id: c001\n    code: X\n    percentage: 150\n    valid_from: \"2025-11-01\"\n    valid_until: \"2025-12-31\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadSeed(writeSeedFile(t, tt.content))
			assert.Error(t, err)
		})
	}
}

func TestLoadSeed_MissingFile(t *testing.T) {
	_, err := LoadSeed(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestDefaultSeed(t *testing.T) {
	seed := DefaultSeed()
	assert.NotEmpty(t, seed.MenuItems)
	assert.NotEmpty(t, seed.Offers)

	for _, it := range seed.MenuItems {
		assert.True(t, it.Available, "item %s must start available", it.ID)
		assert.GreaterOrEqual(t, it.Price, int64(0), "item %s has negative price", it.ID)
	}
	for _, o := range seed.Offers {
		assert.True(t, o.Active, "offer %s must start active", o.ID)
		assert.False(t, o.ValidUntil.Before(o.ValidFrom), "offer %s window inverted", o.ID)
	}
}
