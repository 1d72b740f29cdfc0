package session

import (
	"encoding/json"
	"fmt"

	"github.com/prohmpiriya/event-storefront/internal/domain"
)

// encode renders the three slot values as JSON in key order
func encode(p *PendingCheckout) ([]string, error) {
	cart := p.Cart
	if cart == nil {
		cart = domain.Cart{}
	}
	values := make([]string, 0, 3)
	for _, v := range []any{p.EventID, cart, p.PromoCode} {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("failed to encode pending checkout: %w", err)
		}
		values = append(values, string(b))
	}
	return values, nil
}

// decode parses the slot values. An absent event id means no slot.
func decode(eventID, cart, promo *string) (*PendingCheckout, error) {
	if eventID == nil {
		return nil, nil
	}

	p := &PendingCheckout{Cart: domain.Cart{}}
	if err := json.Unmarshal([]byte(*eventID), &p.EventID); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSlot, KeyEventID, err)
	}
	if cart != nil {
		if err := json.Unmarshal([]byte(*cart), &p.Cart); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSlot, KeyCart, err)
		}
		if p.Cart == nil {
			p.Cart = domain.Cart{}
		}
	}
	if promo != nil {
		if err := json.Unmarshal([]byte(*promo), &p.PromoCode); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrCorruptSlot, KeyPromoCode, err)
		}
	}
	return p, nil
}
