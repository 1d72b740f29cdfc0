package service

import (
	"context"
	"fmt"
	"time"

	"github.com/prohmpiriya/event-storefront/internal/client"
	"github.com/prohmpiriya/event-storefront/internal/domain"
	"github.com/prohmpiriya/event-storefront/internal/dto"
	"github.com/prohmpiriya/event-storefront/internal/session"
	"github.com/prohmpiriya/event-storefront/internal/tracking"
	"github.com/prohmpiriya/event-storefront/pkg/logger"
	"github.com/prohmpiriya/event-storefront/pkg/telemetry"
	"go.uber.org/zap"
)

// CheckoutServiceConfig holds the collaborators of the checkout service
type CheckoutServiceConfig struct {
	API     client.EventAPI
	Tracker tracking.ClickTracker
	Pending session.PendingStore
	Logger  *logger.Logger
	IdleTTL time.Duration
	// Now overrides the clock used for ticket availability
	Now func() time.Time
}

var _ CheckoutService = (*CheckoutServiceImpl)(nil)

// CheckoutServiceImpl implements CheckoutService with in-memory visits
type CheckoutServiceImpl struct {
	api      client.EventAPI
	deps     *sessionDeps
	sessions *Registry[*CheckoutSession]
	handoffs *telemetry.Counter
	active   *telemetry.UpDownCounter
	log      *logger.Logger
}

// NewCheckoutService creates a CheckoutService
func NewCheckoutService(cfg *CheckoutServiceConfig) *CheckoutServiceImpl {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	tracker := cfg.Tracker
	if tracker == nil {
		tracker = tracking.NoOpTracker{}
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	validations, _ := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "storefront_promo_validations_total",
		Description: "Promo code validations by result",
		Unit:        "{validation}",
	})
	handoffs, _ := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "storefront_checkout_handoffs_total",
		Description: "Checkout handoffs by result",
		Unit:        "{handoff}",
	})
	active, _ := telemetry.NewUpDownCounter(telemetry.MetricOpts{
		Name:        "storefront_checkout_sessions_active",
		Description: "Checkout sessions held in memory",
		Unit:        "{session}",
	})

	s := &CheckoutServiceImpl{
		api: cfg.API,
		deps: &sessionDeps{
			api:         cfg.API,
			tracker:     tracker,
			pending:     cfg.Pending,
			log:         log,
			validations: validations,
			now:         now,
		},
		sessions: NewRegistry[*CheckoutSession](cfg.IdleTTL),
		handoffs: handoffs,
		active:   active,
		log:      log,
	}
	s.sessions.onEvict = func(string, *CheckoutSession) {
		s.active.Dec(context.Background())
	}
	return s
}

// Sessions exposes the session registry for the cleanup loop
func (s *CheckoutServiceImpl) Sessions() *Registry[*CheckoutSession] {
	return s.sessions
}

func sessionKey(sessionID, eventID string) string {
	return sessionID + "|" + eventID
}

func (s *CheckoutServiceImpl) newSession(ctx context.Context, sessionID, eventID string) (*CheckoutSession, error) {
	event, err := s.api.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event %s: %w", eventID, err)
	}
	sess := newCheckoutSession(sessionID, event, s.deps)
	sess.RestorePending(ctx)
	return sess, nil
}

// session returns the live visit, opening one when there is none
func (s *CheckoutServiceImpl) session(ctx context.Context, sessionID, eventID string) (*CheckoutSession, error) {
	created := false
	sess, err := s.sessions.GetOrCreate(sessionKey(sessionID, eventID), func() (*CheckoutSession, error) {
		created = true
		return s.newSession(ctx, sessionID, eventID)
	})
	if err != nil {
		return nil, err
	}
	if created {
		s.active.Inc(ctx)
	}
	return sess, nil
}

func render(sess *CheckoutSession) *dto.CheckoutResponse {
	view, promoErr := sess.View()
	return dto.NewCheckoutResponse(sess.sessionID, view, promoErr)
}

// Open starts a fresh visit, replacing any previous one for the event
func (s *CheckoutServiceImpl) Open(ctx context.Context, sessionID, eventID string, req *dto.OpenSessionRequest) (*dto.CheckoutResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.checkout.open")
	defer span.End()

	sess, err := s.newSession(ctx, sessionID, eventID)
	if err != nil {
		telemetry.FailSpan(span, err)
		return nil, err
	}

	key := sessionKey(sessionID, eventID)
	if _, existed := s.sessions.Get(key); !existed {
		s.active.Inc(ctx)
	}
	s.sessions.Put(key, sess)

	if req != nil && req.Promo != "" {
		sess.IngestURLPromo(ctx, req.Promo)
	}
	return render(sess), nil
}

// Get returns the current state
func (s *CheckoutServiceImpl) Get(ctx context.Context, sessionID, eventID string) (*dto.CheckoutResponse, error) {
	sess, err := s.session(ctx, sessionID, eventID)
	if err != nil {
		return nil, err
	}
	return render(sess), nil
}

// SetQuantity changes the quantity of one catalog item. Donation text is
// normalized against the item's minimum donation.
func (s *CheckoutServiceImpl) SetQuantity(ctx context.Context, sessionID, eventID, key string, req *dto.SetQuantityRequest) (*dto.CheckoutResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.checkout.set_quantity")
	defer span.End()

	sess, err := s.session(ctx, sessionID, eventID)
	if err != nil {
		telemetry.FailSpan(span, err)
		return nil, err
	}

	donation := req.DonationAmount
	if req.DonationText != nil {
		amount := domain.NormalizeDonation(*req.DonationText, sess.MinimumDonation(key))
		donation = &amount
	}

	if err := sess.ChangeQuantity(key, *req.Quantity, donation); err != nil {
		return nil, err
	}
	return render(sess), nil
}

// ApplyPromo validates and applies a code. Promo failures are reported
// inline in the response, not as errors.
func (s *CheckoutServiceImpl) ApplyPromo(ctx context.Context, sessionID, eventID string, req *dto.ApplyPromoRequest) (*dto.CheckoutResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.checkout.apply_promo")
	defer span.End()

	sess, err := s.session(ctx, sessionID, eventID)
	if err != nil {
		telemetry.FailSpan(span, err)
		return nil, err
	}

	req.Normalize()
	_ = sess.ApplyPromoCode(ctx, req.Code)
	return render(sess), nil
}

// RemovePromo drops applied and tracking codes
func (s *CheckoutServiceImpl) RemovePromo(ctx context.Context, sessionID, eventID string) (*dto.CheckoutResponse, error) {
	sess, err := s.session(ctx, sessionID, eventID)
	if err != nil {
		return nil, err
	}
	sess.RemovePromoCode()
	return render(sess), nil
}

// Checkout builds the handoff payload
func (s *CheckoutServiceImpl) Checkout(ctx context.Context, sessionID, eventID string, authenticated bool) (*dto.HandoffResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.checkout.handoff")
	defer span.End()

	sess, err := s.session(ctx, sessionID, eventID)
	if err != nil {
		telemetry.FailSpan(span, err)
		return nil, err
	}

	handoff, err := sess.Handoff()
	if err != nil {
		s.handoffs.Inc(ctx, telemetry.ResultAttr("empty"))
		return nil, err
	}

	if !authenticated {
		if err := sess.SavePending(ctx); err != nil {
			s.log.ErrorContext(ctx, "failed to park checkout for sign-in",
				zap.String("session_id", sessionID), zap.String("event_id", eventID), zap.Error(err))
			telemetry.FailSpan(span, err)
			return nil, fmt.Errorf("failed to save pending checkout: %w", err)
		}
		s.handoffs.Inc(ctx, telemetry.ResultAttr("auth_required"))
		return nil, ErrAuthRequired
	}

	s.handoffs.Inc(ctx, telemetry.ResultAttr("success"), telemetry.EventIDAttr(eventID))
	s.log.DebugContext(ctx, "checkout handed off",
		zap.String("event_id", eventID), zap.Int("items", len(handoff.Items)))
	return dto.NewHandoffResponse(handoff), nil
}
