// Package session stores the pending checkout handed across a sign-in
// redirect.
package session

import (
	"context"
	"errors"

	"github.com/prohmpiriya/event-storefront/internal/domain"
)

// Slot keys, scoped per browser session
const (
	KeyEventID   = "pendingCheckoutEventId"
	KeyCart      = "pendingCheckoutCart"
	KeyPromoCode = "pendingCheckoutPromoCode"
)

// ErrCorruptSlot is returned when a stored slot cannot be decoded
var ErrCorruptSlot = errors.New("pending checkout slot is corrupt")

// PendingCheckout is the cart and promo code saved before a sign-in redirect
type PendingCheckout struct {
	EventID   string
	Cart      domain.Cart
	PromoCode string
}

// PendingStore persists one pending checkout per browser session
type PendingStore interface {
	// Save overwrites the slot of sessionID
	Save(ctx context.Context, sessionID string, p *PendingCheckout) error
	// Load returns the slot, or nil when there is none
	Load(ctx context.Context, sessionID string) (*PendingCheckout, error)
	// Clear removes all three keys of the slot
	Clear(ctx context.Context, sessionID string) error
}

func scopedKey(sessionID, key string) string {
	return "session:" + sessionID + ":" + key
}

func slotKeys(sessionID string) []string {
	return []string{
		scopedKey(sessionID, KeyEventID),
		scopedKey(sessionID, KeyCart),
		scopedKey(sessionID, KeyPromoCode),
	}
}
