package payment

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/campuscanteen/canteen-api/internal/account"
	"github.com/campuscanteen/canteen-api/internal/events"
	"github.com/campuscanteen/canteen-api/internal/models"
	"github.com/campuscanteen/canteen-api/internal/order"
	"github.com/campuscanteen/canteen-api/internal/session"
)

var (
	ErrNoPendingOrder = errors.New("no order awaiting payment")
	ErrAlreadySettled = errors.New("order has already been settled")
	ErrInvalidPoints  = errors.New("points must be non-negative")
	ErrNoMethod       = errors.New("payment method is required")
)

// MethodCash is paid out-of-band at physical pickup; every other method
// goes through the simulated capture.
const MethodCash = "cash"

// One reward point is earned per ten rupees of order total; points
// redeem at one rupee each.
const earnDivisor = 10

// Receipt is the settlement outcome handed back to the client.
type Receipt struct {
	Order        *models.Order `json:"order"`
	PointsEarned int64         `json:"pointsEarned"`
	Credential   []byte        `json:"credential,omitempty"`
}

// Settlement resolves payment for a confirmed order: optional
// reward-point redemption, the (mock) payment capture, reward accrual
// and the pickup credential.
type Settlement struct {
	orders       *order.Manager
	accounts     *account.Store
	sessions     session.Store
	bus          *events.Bus
	credentials  Encoder
	captureDelay time.Duration
	log          *slog.Logger
	now          func() time.Time
}

// NewSettlement creates a settlement service.
func NewSettlement(orders *order.Manager, accounts *account.Store, sessions session.Store,
	bus *events.Bus, credentials Encoder, captureDelay time.Duration, log *slog.Logger) *Settlement {
	return &Settlement{
		orders:       orders,
		accounts:     accounts,
		sessions:     sessions,
		bus:          bus,
		credentials:  credentials,
		captureDelay: captureDelay,
		log:          log,
		now:          time.Now,
	}
}

func (s *Settlement) pendingOrder(ctx context.Context, sess *session.Session) (*models.Order, error) {
	if sess.PendingOrderID == "" {
		return nil, ErrNoPendingOrder
	}
	o, err := s.orders.Get(ctx, sess.PendingOrderID)
	if err != nil {
		return nil, err
	}
	if o.Status != models.StatusPending {
		return nil, ErrAlreadySettled
	}
	return o, nil
}

// RedeemPoints provisionally applies a reward-point redemption to the
// session's pending order: one point knocks one rupee off the total,
// floored at zero. Requesting more points than the balance fails and
// leaves the balance untouched. Calling again replaces the prior
// redemption rather than stacking. Nothing is deducted from the balance
// until Settle finalizes the order.
func (s *Settlement) RedeemPoints(ctx context.Context, sess *session.Session, points int64) (*models.Order, error) {
	if points < 0 {
		return nil, ErrInvalidPoints
	}

	o, err := s.pendingOrder(ctx, sess)
	if err != nil {
		return nil, err
	}

	balance, err := s.accounts.Balance(ctx, sess.StudentID)
	if err != nil {
		return nil, err
	}
	if points > balance {
		return nil, account.ErrInsufficientPoints
	}

	// Undo any prior provisional redemption before applying this one.
	base := o.Total + o.RedeemedPoints
	total := base - points
	if total < 0 {
		total = 0
	}
	o.Total = total
	o.RedeemedPoints = points

	if err := s.orders.Save(ctx, o); err != nil {
		return nil, err
	}

	s.log.Info("points redeemed", "order_id", o.ID, "points", points, "total", o.Total)
	return o, nil
}

// Settle finalizes payment for the session's pending order.
//
// Cash: the order moves to PendingCash and payment happens at the
// counter; no points change hands until staff complete the order.
//
// Any other method: a simulated capture runs after a fixed delay, then
// the order moves to Preparing, reward points are credited (earned
// minus redeemed), and the pickup credential is generated. The capture
// and its follow-on mutations run against the background context: a
// client that navigates away mid-settlement must not abort a capture
// that has already started, because no compensating transaction exists.
// Credential generation is a convenience; if it fails the order and
// balance mutations stay committed and the failure is only logged.
func (s *Settlement) Settle(ctx context.Context, sess *session.Session, method string) (*Receipt, error) {
	if method == "" {
		return nil, ErrNoMethod
	}

	o, err := s.pendingOrder(ctx, sess)
	if err != nil {
		return nil, err
	}

	if method == MethodCash {
		o.Status = models.StatusPendingCash
		o.PaymentMethod = method
		if err := s.orders.Save(ctx, o); err != nil {
			return nil, err
		}
		s.bus.Publish(events.Event{Topic: events.TopicOrderStatus, OrderID: o.ID, Status: o.Status})
		s.clearPending(ctx, sess)

		s.log.Info("order awaiting cash payment at pickup", "order_id", o.ID)
		return &Receipt{Order: o}, nil
	}

	// Detach from the request context before the capture starts.
	bg := context.Background()

	time.Sleep(s.captureDelay)

	paidAt := s.now().UTC()
	o.Status = models.StatusPreparing
	o.PaymentMethod = method
	o.PaidAt = &paidAt

	pointsEarned := o.Total / earnDivisor

	if err := s.orders.Save(bg, o); err != nil {
		return nil, err
	}
	s.bus.Publish(events.Event{Topic: events.TopicOrderStatus, OrderID: o.ID, Status: o.Status})

	if _, err := s.accounts.AdjustBalance(bg, o.StudentID, pointsEarned-o.RedeemedPoints); err != nil {
		// Redemption was bounded by the balance, so this is a store
		// failure, not an invariant breach. The payment is captured;
		// log and carry on.
		s.log.Error("reward balance update failed after capture",
			"order_id", o.ID, "student_id", o.StudentID, "error", err)
	}

	credential, err := s.credentials.Encode(CredentialPayload{
		OrderID:   o.ID,
		StudentID: o.StudentID,
		Total:     o.Total,
	})
	if err != nil {
		s.log.Error("pickup credential generation failed", "order_id", o.ID, "error", err)
		credential = nil
	}

	s.clearPending(bg, sess)

	s.log.Info("payment settled", "order_id", o.ID, "method", method,
		"points_earned", pointsEarned, "points_redeemed", o.RedeemedPoints)

	return &Receipt{
		Order:        o,
		PointsEarned: pointsEarned,
		Credential:   credential,
	}, nil
}

func (s *Settlement) clearPending(ctx context.Context, sess *session.Session) {
	sess.PendingOrderID = ""
	if err := s.sessions.Save(ctx, sess); err != nil {
		s.log.Warn("failed to clear pending order from session", "session_id", sess.ID, "error", err)
	}
}
