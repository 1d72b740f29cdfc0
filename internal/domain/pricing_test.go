package domain

import (
	"math/rand/v2"
	"testing"
)

func TestComputeTotals(t *testing.T) {
	ten := &PromoCode{Code: "SAVE10", DiscountPercent: 10}

	tests := []struct {
		name  string
		event *Event
		cart  Cart
		promo *PromoCode
		want  Totals
	}{
		{
			name:  "GA 50 x2 with 10 percent",
			event: &Event{Type: EventTypeTicketed, Tickets: []Ticket{{Type: "GA", Price: 50}}},
			cart:  Cart{"GA": {Quantity: 2}},
			promo: ten,
			want:  Totals{TotalPrice: 100, DiscountAmount: 10, FinalPrice: 90},
		},
		{
			name:  "no promo",
			event: ticketedEvent(),
			cart:  Cart{"GA": {Quantity: 1}, "VIP": {Quantity: 1}},
			want:  Totals{TotalPrice: 170, FinalPrice: 170},
		},
		{
			name:  "add-ons are never discounted",
			event: ticketedEvent(),
			cart:  Cart{"GA": {Quantity: 2}, "Parking": {Quantity: 2}},
			promo: ten,
			want:  Totals{TotalPrice: 130, DiscountAmount: 10, FinalPrice: 120},
		},
		{
			name:  "unknown key prices at zero",
			event: ticketedEvent(),
			cart:  Cart{"ghost": {Quantity: 4}},
			promo: ten,
			want:  Totals{},
		},
		{
			name:  "fundraiser uses donation amount",
			event: fundraiserEvent(),
			cart:  Cart{"Supporter": {Quantity: 2, DonationAmount: ptr(25.0)}, "Raffle": {Quantity: 1, DonationAmount: ptr(5.0)}},
			want:  Totals{TotalPrice: 55, FinalPrice: 55},
		},
		{
			name:  "fundraiser ignores promo",
			event: fundraiserEvent(),
			cart:  Cart{"Supporter": {Quantity: 2, DonationAmount: ptr(25.0)}},
			promo: &PromoCode{Code: "HALF", DiscountPercent: 50},
			want:  Totals{TotalPrice: 50, FinalPrice: 50},
		},
		{
			name:  "fundraiser entry without donation",
			event: fundraiserEvent(),
			cart:  Cart{"Supporter": {Quantity: 3}},
			want:  Totals{},
		},
		{
			name:  "full discount",
			event: ticketedEvent(),
			cart:  Cart{"VIP": {Quantity: 1}},
			promo: &PromoCode{Code: "FREE", DiscountPercent: 100},
			want:  Totals{TotalPrice: 120, DiscountAmount: 120, FinalPrice: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeTotals(tt.cart, NewCatalog(tt.event), tt.promo)
			if got != tt.want {
				t.Errorf("ComputeTotals() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestComputeTotals_Invariants(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	keys := []string{"GA", "VIP", "SOLD", "ENDED", "Parking", "Shirt", "ghost"}

	for _, event := range []*Event{ticketedEvent(), fundraiserEvent()} {
		catalog := NewCatalog(event)
		for i := 0; i < 500; i++ {
			cart := make(Cart)
			for _, k := range keys {
				cart.SetItemQuantity(k, r.IntN(4), ptr(float64(r.IntN(10000))/100))
			}
			promo := &PromoCode{Code: "X", DiscountPercent: float64(r.IntN(101))}

			got := ComputeTotals(cart, catalog, promo)
			if got.FinalPrice != got.TotalPrice-got.DiscountAmount {
				t.Fatalf("finalPrice %v != total %v - discount %v", got.FinalPrice, got.TotalPrice, got.DiscountAmount)
			}
			if got.DiscountAmount > got.TotalPrice {
				t.Fatalf("discount %v exceeds total %v", got.DiscountAmount, got.TotalPrice)
			}
			if event.IsFundraiser() && got.DiscountAmount != 0 {
				t.Fatalf("fundraiser discount = %v, want 0", got.DiscountAmount)
			}
		}
	}
}
