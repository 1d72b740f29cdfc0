package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prohmpiriya/event-storefront/internal/client"
	"github.com/prohmpiriya/event-storefront/internal/domain"
	"github.com/prohmpiriya/event-storefront/internal/session"
	"github.com/prohmpiriya/event-storefront/internal/tracking"
	"github.com/prohmpiriya/event-storefront/pkg/logger"
	"github.com/prohmpiriya/event-storefront/pkg/telemetry"
	"go.uber.org/zap"
)

const clickTrackTimeout = 5 * time.Second

// sessionDeps are the collaborators shared by all checkout sessions
type sessionDeps struct {
	api         client.EventAPI
	tracker     tracking.ClickTracker
	pending     session.PendingStore
	log         *logger.Logger
	validations *telemetry.Counter
	now         func() time.Time
}

// CheckoutSession is one page visit of an event by a browser session.
// Network calls run outside the lock. A validation sequence number makes
// the latest promo request win.
type CheckoutSession struct {
	mu         sync.Mutex
	sessionID  string
	checkout   *domain.Checkout
	promoError string

	validationSeq   uint64
	lastTrackedCode string
	restored        bool

	background sync.WaitGroup
	deps       *sessionDeps
}

func newCheckoutSession(sessionID string, event *domain.Event, deps *sessionDeps) *CheckoutSession {
	return &CheckoutSession{
		sessionID: sessionID,
		checkout:  domain.NewCheckout(event, deps.now),
		deps:      deps,
	}
}

func (s *CheckoutSession) eventID() string {
	return s.checkout.Event().ID
}

func (s *CheckoutSession) logger(ctx context.Context) *logger.Logger {
	return s.deps.log.WithContext(ctx).WithFields(
		zap.String("session_id", s.sessionID),
		zap.String("event_id", s.eventID()),
	)
}

// View snapshots the checkout with the inline promo error
func (s *CheckoutSession) View() (domain.CheckoutView, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout.View(), s.promoError
}

// ChangeQuantity applies a quantity change from an item control
func (s *CheckoutSession) ChangeQuantity(key string, quantity int, donationAmount *float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout.ChangeQuantity(key, quantity, donationAmount)
}

// MinimumDonation returns the minimum donation of key
func (s *CheckoutSession) MinimumDonation(key string) *float64 {
	return s.checkout.Catalog().MinimumDonation(key)
}

// validate runs the validator for seq and reports whether the answer is
// still current. It must be called without the lock held.
func (s *CheckoutSession) validate(ctx context.Context, seq uint64, code string) (*domain.PromoValidation, bool, error) {
	v, err := s.deps.api.ValidatePromoCode(ctx, s.eventID(), code)

	s.mu.Lock()
	current := seq == s.validationSeq
	s.mu.Unlock()

	result := "valid"
	switch {
	case !current:
		result = "stale"
	case err != nil:
		result = "error"
	case !v.Valid:
		result = "invalid"
	}
	s.deps.validations.Inc(ctx,
		telemetry.EventIDAttr(s.eventID()),
		telemetry.EventTypeAttr(string(s.checkout.Event().Type)),
		telemetry.ResultAttr(result),
	)

	return v, current, err
}

// ApplyPromoCode validates a user-entered code. The applied code is cleared
// before the request. An invalid code or a failed request leaves no code at
// all, tracking included.
func (s *CheckoutSession) ApplyPromoCode(ctx context.Context, code string) error {
	s.mu.Lock()
	s.checkout.ClearAppliedPromo()
	s.promoError = ""
	s.validationSeq++
	seq := s.validationSeq
	s.mu.Unlock()

	v, current, err := s.validate(ctx, seq, code)

	s.mu.Lock()
	defer s.mu.Unlock()
	if !current {
		return nil
	}

	switch {
	case err != nil:
		s.checkout.ClearPromo()
		s.promoError = ErrPromoValidationFailed.Error()
		s.logger(ctx).Warn("promo code validation failed", zap.String("code", code), zap.Error(err))
		return ErrPromoValidationFailed
	case !v.Valid:
		s.checkout.ClearPromo()
		s.promoError = ErrPromoInvalid.Error()
		return ErrPromoInvalid
	default:
		s.checkout.ApplyPromo(v.PromoCode())
		return nil
	}
}

// RemovePromoCode drops the applied and tracking codes
func (s *CheckoutSession) RemovePromoCode() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.validationSeq++
	s.checkout.ClearPromo()
	s.promoError = ""
}

// IngestURLPromo handles a promo code arriving in the page URL. The code is
// always kept for attribution, its click is tracked once per distinct code,
// and it is applied when valid. Invalid codes and failed validations are
// silent.
func (s *CheckoutSession) IngestURLPromo(ctx context.Context, code string) {
	s.ingestPromo(ctx, code, true)
}

func (s *CheckoutSession) ingestPromo(ctx context.Context, code string, trackable bool) {
	if code == "" {
		return
	}

	s.mu.Lock()
	s.checkout.TrackPromo(code)
	track := trackable && s.lastTrackedCode != code
	if track {
		s.lastTrackedCode = code
	}
	s.validationSeq++
	seq := s.validationSeq
	s.mu.Unlock()

	if track {
		s.trackClick(ctx, code)
	}

	v, current, err := s.validate(ctx, seq, code)
	if !current {
		return
	}
	if err != nil {
		s.logger(ctx).Warn("promo code validation failed", zap.String("code", code), zap.Error(err))
		return
	}
	if !v.Valid {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq == s.validationSeq {
		s.checkout.ApplyPromo(v.PromoCode())
	}
}

// trackClick reports the click in the background. Failures are logged and
// dropped.
func (s *CheckoutSession) trackClick(ctx context.Context, code string) {
	ctx = context.WithoutCancel(ctx)
	s.background.Add(1)
	go func() {
		defer s.background.Done()
		ctx, cancel := context.WithTimeout(ctx, clickTrackTimeout)
		defer cancel()

		if err := s.deps.tracker.TrackPromoClick(ctx, s.eventID(), code); err != nil {
			s.logger(ctx).Warn("promo click tracking failed", zap.String("code", code), zap.Error(err))
		}
	}()
}

// WaitBackground blocks until background click tracking has finished
func (s *CheckoutSession) WaitBackground() {
	s.background.Wait()
}

// RestorePending restores a cart parked before a sign-in redirect. It runs
// once per session and only consumes a slot saved for this event; other
// slots are left in place. The restored code is re-validated silently, like
// a URL code, without tracking another click.
func (s *CheckoutSession) RestorePending(ctx context.Context) {
	s.mu.Lock()
	if s.restored {
		s.mu.Unlock()
		return
	}
	s.restored = true
	s.mu.Unlock()

	p, err := s.deps.pending.Load(ctx, s.sessionID)
	if errors.Is(err, session.ErrCorruptSlot) {
		s.logger(ctx).Warn("discarding corrupt pending checkout", zap.Error(err))
		s.clearPending(ctx)
		return
	}
	if err != nil {
		s.logger(ctx).Warn("failed to load pending checkout", zap.Error(err))
		return
	}
	if p == nil || p.EventID != s.eventID() {
		return
	}

	s.mu.Lock()
	s.checkout.RestoreCart(p.Cart)
	s.mu.Unlock()

	s.clearPending(ctx)
	s.logger(ctx).Info("pending checkout restored",
		zap.Int("items", len(p.Cart)), zap.String("code", p.PromoCode))

	s.ingestPromo(ctx, p.PromoCode, false)
}

func (s *CheckoutSession) clearPending(ctx context.Context) {
	if err := s.deps.pending.Clear(ctx, s.sessionID); err != nil {
		s.logger(ctx).Warn("failed to clear pending checkout", zap.Error(err))
	}
}

// SavePending parks the cart and promo code for the sign-in redirect
func (s *CheckoutSession) SavePending(ctx context.Context) error {
	s.mu.Lock()
	p := &session.PendingCheckout{
		EventID:   s.eventID(),
		Cart:      s.checkout.Cart(),
		PromoCode: s.checkout.Promo().AttributionCode(),
	}
	s.mu.Unlock()

	return s.deps.pending.Save(ctx, s.sessionID, p)
}

// Handoff builds the checkout submission
func (s *CheckoutSession) Handoff() (domain.Handoff, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.checkout.Handoff()
}
