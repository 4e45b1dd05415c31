package offer

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/campuscanteen/canteen-api/internal/cart"
	"github.com/campuscanteen/canteen-api/internal/catalog"
	"github.com/campuscanteen/canteen-api/internal/models"
	"github.com/campuscanteen/canteen-api/internal/session"
)

var (
	ErrNotFound     = errors.New("offer code is not valid")
	ErrNotYetActive = errors.New("offer is not active yet")
	ErrExpired      = errors.New("offer has expired")
)

// filterMaxAge bounds how stale the bloom prefilter may get before it
// is rebuilt from the catalog. Admin offer edits also trigger an
// immediate rebuild.
const filterMaxAge = time.Minute

// Evaluator validates offer codes and installs the single AppliedOffer
// on a session. A bloom filter over known codes and titles rejects
// definite misses without touching the catalog; false positives fall
// through to the real lookup.
type Evaluator struct {
	catalog  *catalog.Catalog
	sessions session.Store
	log      *slog.Logger
	now      func() time.Time

	mu        sync.RWMutex
	filter    *bloom.BloomFilter
	lastBuild time.Time
}

// NewEvaluator creates an evaluator and builds the initial prefilter.
func NewEvaluator(cat *catalog.Catalog, sessions session.Store, log *slog.Logger) *Evaluator {
	e := &Evaluator{
		catalog:  cat,
		sessions: sessions,
		log:      log,
		now:      time.Now,
	}
	e.Rebuild(context.Background())
	return e
}

// Rebuild regenerates the bloom prefilter from the current offer list.
func (e *Evaluator) Rebuild(ctx context.Context) {
	offers := e.catalog.Offers(ctx)

	n := uint(len(offers)*2 + 16)
	filter := bloom.NewWithEstimates(n, 0.01)
	for _, o := range offers {
		filter.AddString(strings.ToUpper(o.Code))
		filter.AddString(strings.ToUpper(o.Title))
	}

	e.mu.Lock()
	e.filter = filter
	e.lastBuild = e.now()
	e.mu.Unlock()

	e.log.Debug("offer prefilter rebuilt", "offers", len(offers))
}

func (e *Evaluator) mightContain(ctx context.Context, code string) bool {
	e.mu.RLock()
	stale := e.now().Sub(e.lastBuild) > filterMaxAge
	e.mu.RUnlock()

	if stale {
		e.Rebuild(ctx)
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.filter.TestString(code)
}

// ApplyCode validates a code against the offer list and its validity
// window, computes the discount from the cart's current subtotal, and
// installs the result as the session's single applied offer, replacing
// any prior one.
//
// The check is point-in-time: an offer applied before expiry stays
// applied if time passes before checkout. That staleness window is
// accepted policy, not an oversight.
func (e *Evaluator) ApplyCode(ctx context.Context, sess *session.Session, code string) (int64, error) {
	normalized := strings.ToUpper(strings.TrimSpace(code))
	if normalized == "" {
		return 0, ErrNotFound
	}

	if !e.mightContain(ctx, normalized) {
		return 0, ErrNotFound
	}

	o, err := e.catalog.FindOffer(ctx, normalized)
	if err != nil {
		return 0, ErrNotFound
	}

	now := e.now().UTC()
	if now.Before(o.ValidFrom) {
		return 0, ErrNotYetActive
	}
	if now.After(o.ValidUntil) {
		return 0, ErrExpired
	}

	subtotal := cart.Subtotal(sess.Cart)
	discount := subtotal * int64(o.Percentage) / 100
	if discount > subtotal {
		discount = subtotal
	}

	sess.AppliedOffer = &models.AppliedOffer{
		Code:       o.Code,
		Title:      o.Title,
		Percentage: o.Percentage,
		Discount:   discount,
	}
	if err := e.sessions.Save(ctx, sess); err != nil {
		return 0, err
	}

	e.log.Info("offer applied", "code", o.Code, "discount", discount, "session_id", sess.ID)
	return discount, nil
}
