package catalog

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/campuscanteen/canteen-api/internal/models"
)

var (
	ErrItemNotFound  = errors.New("menu item not found")
	ErrOfferNotFound = errors.New("offer not found")
)

// RemoteSource is the subset of the hosted-database client the catalog
// reads from and mirrors admin edits to. A nil source means offline
// mode: the catalog serves its working set only.
type RemoteSource interface {
	MenuItems(ctx context.Context, onlyAvailable bool) ([]models.MenuItem, error)
	Offers(ctx context.Context) ([]models.Offer, error)
	InsertMenuItem(ctx context.Context, it models.MenuItem) error
	UpdateMenuItem(ctx context.Context, it models.MenuItem) error
	InsertOffer(ctx context.Context, o models.Offer) error
	UpdateOffer(ctx context.Context, o models.Offer) error
	DeleteOffer(ctx context.Context, id string) error
}

// Catalog holds the authoritative menu and offer lists. Reads try the
// remote store first and fall back to the in-memory working set, which
// starts from the static seed. Remote failures are never fatal: the
// cart engine must never block on the catalog.
type Catalog struct {
	remote RemoteSource
	log    *slog.Logger

	mu     sync.RWMutex
	menu   map[string]models.MenuItem
	offers map[string]models.Offer
}

// New builds a catalog from the seed dataset. remote may be nil.
func New(remote RemoteSource, seed *Seed, log *slog.Logger) *Catalog {
	c := &Catalog{
		remote: remote,
		log:    log,
		menu:   make(map[string]models.MenuItem),
		offers: make(map[string]models.Offer),
	}
	for _, it := range seed.MenuItems {
		c.menu[it.ID] = it
	}
	for _, o := range seed.Offers {
		c.offers[o.ID] = o
	}
	return c
}

// refreshMenu replaces the working set with the remote copy when the
// remote store answers; a failure leaves the current set untouched.
func (c *Catalog) refreshMenu(ctx context.Context) {
	if c.remote == nil {
		return
	}
	items, err := c.remote.MenuItems(ctx, false)
	if err != nil {
		c.log.Debug("remote menu fetch failed, serving cached data", "error", err)
		return
	}
	c.mu.Lock()
	c.menu = make(map[string]models.MenuItem, len(items))
	for _, it := range items {
		c.menu[it.ID] = it
	}
	c.mu.Unlock()
}

func (c *Catalog) refreshOffers(ctx context.Context) {
	if c.remote == nil {
		return
	}
	offers, err := c.remote.Offers(ctx)
	if err != nil {
		c.log.Debug("remote offer fetch failed, serving cached data", "error", err)
		return
	}
	c.mu.Lock()
	c.offers = make(map[string]models.Offer, len(offers))
	for _, o := range offers {
		c.offers[o.ID] = o
	}
	c.mu.Unlock()
}

// MenuItems returns available items sorted by category then name.
func (c *Catalog) MenuItems(ctx context.Context) []models.MenuItem {
	c.refreshMenu(ctx)

	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]models.MenuItem, 0, len(c.menu))
	for _, it := range c.menu {
		if it.Available {
			items = append(items, it)
		}
	}
	sortMenu(items)
	return items
}

// AllMenuItems returns every item, including soft-deleted ones, for the
// admin console.
func (c *Catalog) AllMenuItems(ctx context.Context) []models.MenuItem {
	c.refreshMenu(ctx)

	c.mu.RLock()
	defer c.mu.RUnlock()

	items := make([]models.MenuItem, 0, len(c.menu))
	for _, it := range c.menu {
		items = append(items, it)
	}
	sortMenu(items)
	return items
}

// MenuItem returns a single available item by identifier.
func (c *Catalog) MenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	c.mu.RLock()
	it, exists := c.menu[id]
	c.mu.RUnlock()

	if !exists {
		c.refreshMenu(ctx)
		c.mu.RLock()
		it, exists = c.menu[id]
		c.mu.RUnlock()
	}
	if !exists || !it.Available {
		return nil, ErrItemNotFound
	}
	return &it, nil
}

// Offers returns every offer definition, newest first.
func (c *Catalog) Offers(ctx context.Context) []models.Offer {
	c.refreshOffers(ctx)

	c.mu.RLock()
	defer c.mu.RUnlock()

	offers := make([]models.Offer, 0, len(c.offers))
	for _, o := range c.offers {
		offers = append(offers, o)
	}
	sort.Slice(offers, func(i, j int) bool {
		return offers[i].CreatedAt.After(offers[j].CreatedAt)
	})
	return offers
}

// ActiveOffers returns offers whose active flag is set and whose
// validity window contains now.
func (c *Catalog) ActiveOffers(ctx context.Context, now time.Time) []models.Offer {
	var active []models.Offer
	for _, o := range c.Offers(ctx) {
		if o.Active && !now.Before(o.ValidFrom) && !now.After(o.ValidUntil) {
			active = append(active, o)
		}
	}
	return active
}

// FindOffer matches an offer by code or title, case-insensitively.
// Inactive offers are not surfaced.
func (c *Catalog) FindOffer(ctx context.Context, code string) (*models.Offer, error) {
	needle := strings.ToUpper(strings.TrimSpace(code))
	if needle == "" {
		return nil, ErrOfferNotFound
	}

	c.refreshOffers(ctx)

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, o := range c.offers {
		if !o.Active {
			continue
		}
		if strings.ToUpper(o.Code) == needle || strings.ToUpper(o.Title) == needle {
			found := o
			return &found, nil
		}
	}
	return nil, ErrOfferNotFound
}

// CreateMenuItem adds a new item (admin only). The write lands in the
// working set immediately and is mirrored to the remote store
// best-effort.
func (c *Catalog) CreateMenuItem(ctx context.Context, it models.MenuItem) (*models.MenuItem, error) {
	if it.Name == "" || it.Price < 0 {
		return nil, errors.New("menu item needs a name and a non-negative price")
	}
	if it.ID == "" {
		it.ID = "m-" + uuid.New().String()
	}
	it.Available = true
	it.CreatedAt = time.Now().UTC()

	c.mu.Lock()
	c.menu[it.ID] = it
	c.mu.Unlock()

	if c.remote != nil {
		if err := c.remote.InsertMenuItem(ctx, it); err != nil {
			c.log.Warn("remote menu insert failed, local copy kept", "item_id", it.ID, "error", err)
		}
	}
	return &it, nil
}

// UpdateMenuItem overwrites an existing item (admin only).
func (c *Catalog) UpdateMenuItem(ctx context.Context, it models.MenuItem) error {
	c.mu.Lock()
	existing, exists := c.menu[it.ID]
	if exists {
		it.CreatedAt = existing.CreatedAt
		c.menu[it.ID] = it
	}
	c.mu.Unlock()

	if !exists {
		return ErrItemNotFound
	}
	if c.remote != nil {
		if err := c.remote.UpdateMenuItem(ctx, it); err != nil {
			c.log.Warn("remote menu update failed, local copy kept", "item_id", it.ID, "error", err)
		}
	}
	return nil
}

// RemoveMenuItem soft-deletes an item by clearing its availability.
// Items referenced by historical orders are never hard-deleted.
func (c *Catalog) RemoveMenuItem(ctx context.Context, id string) error {
	c.mu.Lock()
	it, exists := c.menu[id]
	if exists {
		it.Available = false
		c.menu[id] = it
	}
	c.mu.Unlock()

	if !exists {
		return ErrItemNotFound
	}
	if c.remote != nil {
		if err := c.remote.UpdateMenuItem(ctx, it); err != nil {
			c.log.Warn("remote menu update failed, local copy kept", "item_id", id, "error", err)
		}
	}
	return nil
}

// CreateOffer adds a new offer (admin only).
func (c *Catalog) CreateOffer(ctx context.Context, o models.Offer) (*models.Offer, error) {
	if o.Code == "" {
		return nil, errors.New("offer needs a code")
	}
	if o.Percentage < 0 || o.Percentage > 100 {
		return nil, errors.New("offer percentage must be between 0 and 100")
	}
	if o.ValidUntil.Before(o.ValidFrom) {
		return nil, errors.New("offer valid_until precedes valid_from")
	}
	if o.ID == "" {
		o.ID = "c-" + uuid.New().String()
	}
	o.CreatedAt = time.Now().UTC()

	c.mu.Lock()
	c.offers[o.ID] = o
	c.mu.Unlock()

	if c.remote != nil {
		if err := c.remote.InsertOffer(ctx, o); err != nil {
			c.log.Warn("remote offer insert failed, local copy kept", "offer_id", o.ID, "error", err)
		}
	}
	return &o, nil
}

// UpdateOffer overwrites an existing offer (admin only).
func (c *Catalog) UpdateOffer(ctx context.Context, o models.Offer) error {
	if o.Percentage < 0 || o.Percentage > 100 {
		return errors.New("offer percentage must be between 0 and 100")
	}
	if o.ValidUntil.Before(o.ValidFrom) {
		return errors.New("offer valid_until precedes valid_from")
	}

	c.mu.Lock()
	existing, exists := c.offers[o.ID]
	if exists {
		o.CreatedAt = existing.CreatedAt
		c.offers[o.ID] = o
	}
	c.mu.Unlock()

	if !exists {
		return ErrOfferNotFound
	}
	if c.remote != nil {
		if err := c.remote.UpdateOffer(ctx, o); err != nil {
			c.log.Warn("remote offer update failed, local copy kept", "offer_id", o.ID, "error", err)
		}
	}
	return nil
}

// DeleteOffer removes an offer definition (admin only). Offers are
// ephemeral rules, not referenced by historical orders, so a hard
// delete is safe.
func (c *Catalog) DeleteOffer(ctx context.Context, id string) error {
	c.mu.Lock()
	_, exists := c.offers[id]
	delete(c.offers, id)
	c.mu.Unlock()

	if !exists {
		return ErrOfferNotFound
	}
	if c.remote != nil {
		if err := c.remote.DeleteOffer(ctx, id); err != nil {
			c.log.Warn("remote offer delete failed", "offer_id", id, "error", err)
		}
	}
	return nil
}

func sortMenu(items []models.MenuItem) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].Category != items[j].Category {
			return items[i].Category < items[j].Category
		}
		return items[i].Name < items[j].Name
	})
}
