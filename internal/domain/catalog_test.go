package domain

import (
	"testing"
	"time"
)

func TestTicket_Unavailability(t *testing.T) {
	tests := []struct {
		name   string
		ticket Ticket
		want   UnavailableReason
	}{
		{"no limits", Ticket{Type: "A"}, ReasonAvailable},
		{"capacity left", Ticket{Type: "A", Quantity: ptr(10), Sold: ptr(9)}, ReasonAvailable},
		{"sold equals capacity", Ticket{Type: "A", Quantity: ptr(10), Sold: ptr(10)}, ReasonSoldOut},
		{"oversold", Ticket{Type: "A", Quantity: ptr(10), Sold: ptr(11)}, ReasonSoldOut},
		{"zero capacity without sold count", Ticket{Type: "A", Quantity: ptr(0)}, ReasonSoldOut},
		{"sale ended", Ticket{Type: "A", SaleEndDate: ptr(testNow.Add(-time.Minute))}, ReasonSalesEnded},
		{"sale ends later", Ticket{Type: "A", SaleEndDate: ptr(testNow.Add(time.Minute))}, ReasonAvailable},
		{
			name:   "sold out wins over sales ended",
			ticket: Ticket{Type: "A", Quantity: ptr(1), Sold: ptr(1), SaleEndDate: ptr(testNow.Add(-time.Minute))},
			want:   ReasonSoldOut,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ticket.Unavailability(testNow); got != tt.want {
				t.Errorf("Unavailability() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCatalog_Lookups(t *testing.T) {
	event := ticketedEvent()
	event.AddOns = append(event.AddOns, AddOn{Name: "GA", Price: 999})
	c := NewCatalog(event)

	if kind, ok := c.Kind("GA"); !ok || kind != ItemKindTicket {
		t.Errorf("Kind(GA) = %q, %v; ticket should win over add-on", kind, ok)
	}
	if kind, ok := c.Kind("Parking"); !ok || kind != ItemKindAddOn {
		t.Errorf("Kind(Parking) = %q, %v", kind, ok)
	}
	if _, ok := c.Kind("nope"); ok {
		t.Error("Kind(nope) should not resolve")
	}
	if !c.IsTicket("VIP") || c.IsTicket("Parking") {
		t.Error("IsTicket mismatch")
	}
	if got := c.Price("GA"); got != 50 {
		t.Errorf("Price(GA) = %v, want 50", got)
	}
	if got := c.Price("nope"); got != 0 {
		t.Errorf("Price(nope) = %v, want 0", got)
	}
}
