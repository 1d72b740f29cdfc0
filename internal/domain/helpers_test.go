package domain

import "time"

func ptr[T any](v T) *T {
	return &v
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return testNow
}

func ticketedEvent() *Event {
	return &Event{
		ID:   "evt-1",
		Type: EventTypeTicketed,
		Tickets: []Ticket{
			{Type: "GA", Price: 50, Quantity: ptr(100), Sold: ptr(10)},
			{Type: "VIP", Price: 120},
			{Type: "SOLD", Price: 30, Quantity: ptr(5), Sold: ptr(5)},
			{Type: "ENDED", Price: 20, SaleEndDate: ptr(testNow.Add(-time.Hour))},
			{Type: "BOTH", Price: 20, Quantity: ptr(1), Sold: ptr(1), SaleEndDate: ptr(testNow.Add(-time.Hour))},
		},
		AddOns: []AddOn{
			{Name: "Parking", Price: 15},
			{Name: "Shirt", Price: 25},
		},
	}
}

func fundraiserEvent() *Event {
	return &Event{
		ID:   "evt-2",
		Type: EventTypeFundraiser,
		Tickets: []Ticket{
			{Type: "Supporter", Price: 0, MinimumDonation: ptr(10.0)},
		},
		AddOns: []AddOn{
			{Name: "Raffle", Price: 5, MinimumDonation: ptr(5.0)},
		},
	}
}
