package domain

import "time"

// EventType distinguishes how catalog items are priced
type EventType string

// EventType constants
const (
	EventTypeTicketed   EventType = "ticketed"
	EventTypeFundraiser EventType = "fundraiser"
)

// Event is the storefront view of an event as returned by the event API
type Event struct {
	ID                   string          `json:"id"`
	OwnerID              string          `json:"ownerId,omitempty"`
	Title                string          `json:"title"`
	Type                 EventType       `json:"type"`
	Tickets              []Ticket        `json:"tickets"`
	AddOns               []AddOn         `json:"addOns"`
	Commission           float64         `json:"commission"`
	DefaultPromoDiscount *float64        `json:"defaultPromoDiscount,omitempty"`
	Date                 *time.Time      `json:"date,omitempty"`
	EndDate              *time.Time      `json:"endDate,omitempty"`
	Schedule             []ScheduleBlock `json:"schedule"`
	Sections             []Section       `json:"sections"`
}

// IsFundraiser reports whether items are priced by donation amount
func (e *Event) IsFundraiser() bool {
	return e.Type == EventTypeFundraiser
}

// Ticket is a ticket type offered by an event. Type is its cart key.
type Ticket struct {
	Type            string     `json:"type"`
	Price           float64    `json:"price"`
	Description     string     `json:"description,omitempty"`
	MinimumDonation *float64   `json:"minimumDonation,omitempty"`
	Quantity        *int       `json:"quantity,omitempty"` // capacity
	Sold            *int       `json:"sold,omitempty"`
	SaleEndDate     *time.Time `json:"saleEndDate,omitempty"`
}

// AddOn is an extra offered alongside tickets. Name is its cart key.
type AddOn struct {
	Name            string   `json:"name"`
	Price           float64  `json:"price"`
	Description     string   `json:"description,omitempty"`
	MinimumDonation *float64 `json:"minimumDonation,omitempty"`
}

// UnavailableReason explains why a ticket cannot be increased
type UnavailableReason string

// UnavailableReason constants
const (
	ReasonAvailable  UnavailableReason = ""
	ReasonSoldOut    UnavailableReason = "sold_out"
	ReasonSalesEnded UnavailableReason = "sales_ended"
)

// IsSoldOut reports whether capacity is defined and reached. A missing sold
// count is zero.
func (t *Ticket) IsSoldOut() bool {
	if t.Quantity == nil {
		return false
	}
	sold := 0
	if t.Sold != nil {
		sold = *t.Sold
	}
	return sold >= *t.Quantity
}

// IsSalesEnded reports whether the sale end date has passed
func (t *Ticket) IsSalesEnded(now time.Time) bool {
	return t.SaleEndDate != nil && t.SaleEndDate.Before(now)
}

// Unavailability returns why the ticket is unavailable at now. Sold out wins
// over sales ended.
func (t *Ticket) Unavailability(now time.Time) UnavailableReason {
	switch {
	case t.IsSoldOut():
		return ReasonSoldOut
	case t.IsSalesEnded(now):
		return ReasonSalesEnded
	default:
		return ReasonAvailable
	}
}

// ItemKind tells tickets and add-ons apart
type ItemKind string

// ItemKind constants
const (
	ItemKindTicket ItemKind = "ticket"
	ItemKindAddOn  ItemKind = "addon"
)

// Catalog indexes an event's tickets and add-ons by cart key
type Catalog struct {
	eventType EventType
	tickets   []Ticket
	addOns    []AddOn
	ticketIdx map[string]int
	addOnIdx  map[string]int
}

// NewCatalog builds a catalog for the event. A key shared by a ticket and an
// add-on resolves to the ticket.
func NewCatalog(event *Event) *Catalog {
	c := &Catalog{
		eventType: event.Type,
		tickets:   event.Tickets,
		addOns:    event.AddOns,
		ticketIdx: make(map[string]int, len(event.Tickets)),
		addOnIdx:  make(map[string]int, len(event.AddOns)),
	}
	for i, t := range event.Tickets {
		c.ticketIdx[t.Type] = i
	}
	for i, a := range event.AddOns {
		c.addOnIdx[a.Name] = i
	}
	return c
}

// EventType returns the type of the catalog's event
func (c *Catalog) EventType() EventType {
	return c.eventType
}

// Ticket looks up a ticket by type
func (c *Catalog) Ticket(key string) (*Ticket, bool) {
	i, ok := c.ticketIdx[key]
	if !ok {
		return nil, false
	}
	return &c.tickets[i], true
}

// AddOn looks up an add-on by name
func (c *Catalog) AddOn(key string) (*AddOn, bool) {
	i, ok := c.addOnIdx[key]
	if !ok {
		return nil, false
	}
	return &c.addOns[i], true
}

// IsTicket reports whether key names a ticket type of this event
func (c *Catalog) IsTicket(key string) bool {
	_, ok := c.ticketIdx[key]
	return ok
}

// Kind resolves the kind of item behind key
func (c *Catalog) Kind(key string) (ItemKind, bool) {
	if _, ok := c.ticketIdx[key]; ok {
		return ItemKindTicket, true
	}
	if _, ok := c.addOnIdx[key]; ok {
		return ItemKindAddOn, true
	}
	return "", false
}

// Price returns the catalog price for key, zero when the key is unknown
func (c *Catalog) Price(key string) float64 {
	if t, ok := c.Ticket(key); ok {
		return t.Price
	}
	if a, ok := c.AddOn(key); ok {
		return a.Price
	}
	return 0
}

// MinimumDonation returns the minimum donation configured for key
func (c *Catalog) MinimumDonation(key string) *float64 {
	if t, ok := c.Ticket(key); ok {
		return t.MinimumDonation
	}
	if a, ok := c.AddOn(key); ok {
		return a.MinimumDonation
	}
	return nil
}
