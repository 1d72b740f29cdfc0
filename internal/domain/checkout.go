package domain

import (
	"errors"
	"fmt"
	"time"
)

// Checkout errors
var (
	ErrUnknownItem     = errors.New("item is not offered by this event")
	ErrItemUnavailable = errors.New("ticket is unavailable")
	ErrAddOnLocked     = errors.New("add-ons require at least one ticket")
	ErrEmptyCart       = errors.New("cart is empty")
)

// Checkout is the cart and promo state of one event page visit
type Checkout struct {
	event   *Event
	catalog *Catalog
	cart    Cart
	promo   PromoState
	now     func() time.Time
}

// NewCheckout starts an empty checkout for event. A nil now uses time.Now.
func NewCheckout(event *Event, now func() time.Time) *Checkout {
	if now == nil {
		now = time.Now
	}
	return &Checkout{
		event:   event,
		catalog: NewCatalog(event),
		cart:    make(Cart),
		now:     now,
	}
}

// Event returns the event being purchased
func (c *Checkout) Event() *Event {
	return c.event
}

// Catalog returns the event's catalog
func (c *Checkout) Catalog() *Catalog {
	return c.catalog
}

// Cart returns a copy of the cart
func (c *Checkout) Cart() Cart {
	return c.cart.Clone()
}

// Promo returns the promo state
func (c *Checkout) Promo() PromoState {
	return c.promo
}

// TicketCount sums the quantities of ticket-type entries
func (c *Checkout) TicketCount() int {
	n := 0
	for key, entry := range c.cart {
		if c.catalog.IsTicket(key) {
			n += entry.Quantity
		}
	}
	return n
}

// AddOnsEnabled reports whether add-on quantities may be increased
func (c *Checkout) AddOnsEnabled() bool {
	return c.TicketCount() > 0
}

// SetItemQuantity writes the cart without availability checks
func (c *Checkout) SetItemQuantity(key string, quantity int, donationAmount *float64) {
	c.cart.SetItemQuantity(key, quantity, donationAmount)
}

// ChangeQuantity applies a user quantity change. Increases of unavailable
// tickets and of add-ons with no ticket in the cart are rejected. Decreases
// are always accepted.
func (c *Checkout) ChangeQuantity(key string, quantity int, donationAmount *float64) error {
	kind, ok := c.catalog.Kind(key)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownItem, key)
	}

	increase := quantity > c.cart.Quantity(key)
	switch kind {
	case ItemKindTicket:
		t, _ := c.catalog.Ticket(key)
		if reason := t.Unavailability(c.now()); reason != ReasonAvailable && increase {
			return fmt.Errorf("%w: %s", ErrItemUnavailable, reason)
		}
	case ItemKindAddOn:
		if increase && !c.AddOnsEnabled() {
			return ErrAddOnLocked
		}
	}

	if donationAmount != nil && *donationAmount < 0 {
		zero := 0.0
		donationAmount = &zero
	}
	c.cart.SetItemQuantity(key, quantity, donationAmount)
	return nil
}

// RestoreCart replaces the cart with a previously saved one
func (c *Checkout) RestoreCart(cart Cart) {
	c.cart = make(Cart, len(cart))
	for key, entry := range cart.Clone() {
		c.cart.SetItemQuantity(key, entry.Quantity, entry.DonationAmount)
	}
}

// ApplyPromo makes code the single applied code
func (c *Checkout) ApplyPromo(code PromoCode) {
	c.promo.Apply(code)
}

// TrackPromo records an attribution code
func (c *Checkout) TrackPromo(code string) {
	c.promo.Track(code)
}

// ClearAppliedPromo drops the applied code only
func (c *Checkout) ClearAppliedPromo() {
	c.promo.ClearApplied()
}

// ClearPromo drops both applied and tracking codes
func (c *Checkout) ClearPromo() {
	c.promo.Clear()
}

// Totals recomputes the price summary
func (c *Checkout) Totals() Totals {
	return ComputeTotals(c.cart, c.catalog, c.promo.Applied)
}

// ItemView is the render state of one catalog item
type ItemView struct {
	Key               string            `json:"key"`
	Kind              ItemKind          `json:"kind"`
	Description       string            `json:"description,omitempty"`
	Price             float64           `json:"price"`
	MinimumDonation   *float64          `json:"minimumDonation,omitempty"`
	Quantity          int               `json:"quantity"`
	DonationAmount    *float64          `json:"donationAmount,omitempty"`
	Disabled          bool              `json:"disabled"`
	UnavailableReason UnavailableReason `json:"unavailableReason,omitempty"`
}

// Items lists tickets then add-ons in catalog order
func (c *Checkout) Items() []ItemView {
	now := c.now()
	addOnsEnabled := c.AddOnsEnabled()
	items := make([]ItemView, 0, len(c.event.Tickets)+len(c.event.AddOns))

	for i := range c.event.Tickets {
		t := &c.event.Tickets[i]
		entry := c.cart[t.Type]
		reason := t.Unavailability(now)
		items = append(items, ItemView{
			Key:               t.Type,
			Kind:              ItemKindTicket,
			Description:       t.Description,
			Price:             t.Price,
			MinimumDonation:   t.MinimumDonation,
			Quantity:          entry.Quantity,
			DonationAmount:    entry.DonationAmount,
			Disabled:          reason != ReasonAvailable,
			UnavailableReason: reason,
		})
	}
	for i := range c.event.AddOns {
		a := &c.event.AddOns[i]
		entry := c.cart[a.Name]
		items = append(items, ItemView{
			Key:             a.Name,
			Kind:            ItemKindAddOn,
			Description:     a.Description,
			Price:           a.Price,
			MinimumDonation: a.MinimumDonation,
			Quantity:        entry.Quantity,
			DonationAmount:  entry.DonationAmount,
			Disabled:        !addOnsEnabled,
		})
	}
	return items
}

// Handoff is what the checkout page submits to start a purchase
type Handoff struct {
	EventID   string `json:"eventId"`
	Items     Cart   `json:"items"`
	PromoCode string `json:"promoCode,omitempty"`
	Totals    Totals `json:"totals"`
}

// Handoff builds the checkout submission
func (c *Checkout) Handoff() (Handoff, error) {
	if len(c.cart) == 0 {
		return Handoff{}, ErrEmptyCart
	}
	return Handoff{
		EventID:   c.event.ID,
		Items:     c.cart.Clone(),
		PromoCode: c.promo.AttributionCode(),
		Totals:    c.Totals(),
	}, nil
}

// CheckoutView is a render snapshot of the checkout
type CheckoutView struct {
	Event         *Event
	Items         []ItemView
	Cart          Cart
	Promo         PromoState
	Totals        Totals
	TicketCount   int
	AddOnsEnabled bool
}

// View snapshots the checkout for rendering
func (c *Checkout) View() CheckoutView {
	return CheckoutView{
		Event:         c.event,
		Items:         c.Items(),
		Cart:          c.Cart(),
		Promo:         c.promo,
		Totals:        c.Totals(),
		TicketCount:   c.TicketCount(),
		AddOnsEnabled: c.AddOnsEnabled(),
	}
}
