package domain

// Totals is the derived price summary of a cart
type Totals struct {
	TotalPrice     float64 `json:"totalPrice"`
	DiscountAmount float64 `json:"discountAmount"`
	FinalPrice     float64 `json:"finalPrice"`
}

// UnitPrice resolves the price of one unit of key. Ticketed events use the
// catalog price, fundraisers use the entry's donation amount.
func UnitPrice(catalog *Catalog, key string, entry CartEntry) float64 {
	if catalog.EventType() == EventTypeFundraiser {
		if entry.DonationAmount == nil {
			return 0
		}
		return *entry.DonationAmount
	}
	return catalog.Price(key)
}

// ComputeTotals derives total, discount and final price. The discount only
// covers ticket-type entries of ticketed events with an applied code.
func ComputeTotals(cart Cart, catalog *Catalog, applied *PromoCode) Totals {
	var total, discount float64
	discounting := applied != nil && catalog.EventType() == EventTypeTicketed

	for key, entry := range cart {
		line := UnitPrice(catalog, key, entry) * float64(entry.Quantity)
		total += line
		if discounting && catalog.IsTicket(key) {
			discount += line * applied.DiscountPercent / 100
		}
	}

	discount = min(discount, total)
	return Totals{
		TotalPrice:     total,
		DiscountAmount: discount,
		FinalPrice:     total - discount,
	}
}
