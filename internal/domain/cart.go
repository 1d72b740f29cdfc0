package domain

import "maps"

// CartEntry is the selection for one catalog item
type CartEntry struct {
	Quantity       int      `json:"quantity"`
	DonationAmount *float64 `json:"donationAmount,omitempty"`
}

// Cart maps catalog keys to entries. A key is never stored with quantity 0,
// so len(cart) is the number of selected items.
type Cart map[string]CartEntry

// SetItemQuantity upserts {quantity, donationAmount} when quantity > 0 and
// deletes the key otherwise.
func (c Cart) SetItemQuantity(key string, quantity int, donationAmount *float64) {
	if quantity <= 0 {
		delete(c, key)
		return
	}
	c[key] = CartEntry{Quantity: quantity, DonationAmount: donationAmount}
}

// Quantity returns the selected quantity for key
func (c Cart) Quantity(key string) int {
	return c[key].Quantity
}

// Clone returns a copy that shares no entries with c
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for k, e := range c {
		if e.DonationAmount != nil {
			amount := *e.DonationAmount
			e.DonationAmount = &amount
		}
		out[k] = e
	}
	return out
}

// Equal reports whether both carts hold the same selections
func (c Cart) Equal(other Cart) bool {
	return maps.EqualFunc(c, other, func(a, b CartEntry) bool {
		if a.Quantity != b.Quantity {
			return false
		}
		if a.DonationAmount == nil || b.DonationAmount == nil {
			return a.DonationAmount == b.DonationAmount
		}
		return *a.DonationAmount == *b.DonationAmount
	})
}
