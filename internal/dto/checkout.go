package dto

import (
	"strings"

	"github.com/prohmpiriya/event-storefront/internal/domain"
)

// OpenSessionRequest carries the query of the session open call
type OpenSessionRequest struct {
	Promo string `form:"promo" binding:"max=64"`
}

// SetQuantityRequest sets the quantity of one catalog item.
// DonationText is the raw donation input and wins over DonationAmount.
type SetQuantityRequest struct {
	Quantity       *int     `json:"quantity" binding:"required,min=0,max=1000"`
	DonationAmount *float64 `json:"donation_amount" binding:"omitempty,min=0"`
	DonationText   *string  `json:"donation_text" binding:"omitempty,max=32"`
}

// Validate validates the SetQuantityRequest
func (r *SetQuantityRequest) Validate() (bool, string) {
	if r.Quantity == nil {
		return false, "Quantity is required"
	}
	if *r.Quantity < 0 {
		return false, "Quantity must not be negative"
	}
	return true, ""
}

// ApplyPromoRequest applies a promo code typed by the user
type ApplyPromoRequest struct {
	Code string `json:"code" binding:"required,max=64"`
}

// Normalize trims and upper-cases the code the way the promo input does
func (r *ApplyPromoRequest) Normalize() {
	r.Code = strings.ToUpper(strings.TrimSpace(r.Code))
}

// Validate validates the ApplyPromoRequest
func (r *ApplyPromoRequest) Validate() (bool, string) {
	if strings.TrimSpace(r.Code) == "" {
		return false, "Promo code is required"
	}
	return true, ""
}

// TotalsResponse is the price summary
type TotalsResponse struct {
	TotalPrice     string `json:"total_price"`
	DiscountAmount string `json:"discount_amount"`
	FinalPrice     string `json:"final_price"`
}

// NewTotalsResponse renders totals as money strings
func NewTotalsResponse(t domain.Totals) TotalsResponse {
	return TotalsResponse{
		TotalPrice:     Money(t.TotalPrice),
		DiscountAmount: Money(t.DiscountAmount),
		FinalPrice:     Money(t.FinalPrice),
	}
}

// ItemResponse is one purchasable item with its control state
type ItemResponse struct {
	Key               string  `json:"key"`
	Kind              string  `json:"kind"`
	Description       string  `json:"description,omitempty"`
	Price             string  `json:"price"`
	MinimumDonation   *string `json:"minimum_donation,omitempty"`
	Quantity          int     `json:"quantity"`
	DonationAmount    *string `json:"donation_amount,omitempty"`
	Disabled          bool    `json:"disabled"`
	UnavailableReason string  `json:"unavailable_reason,omitempty"`
}

// CartEntryResponse is one cart entry
type CartEntryResponse struct {
	Quantity       int     `json:"quantity"`
	DonationAmount *string `json:"donation_amount,omitempty"`
}

// PromoResponse is the promo input state
type PromoResponse struct {
	Status          string  `json:"status"`
	AppliedCode     string  `json:"applied_code,omitempty"`
	DiscountPercent float64 `json:"discount_percent,omitempty"`
	OwnerName       string  `json:"owner_name,omitempty"`
	TrackingCode    string  `json:"tracking_code,omitempty"`
	Error           string  `json:"error,omitempty"`
}

// CheckoutResponse is the full checkout state of a session
type CheckoutResponse struct {
	SessionID            string                       `json:"session_id"`
	EventID              string                       `json:"event_id"`
	EventTitle           string                       `json:"event_title,omitempty"`
	EventType            string                       `json:"event_type"`
	Commission           float64                      `json:"commission"`
	DefaultPromoDiscount *float64                     `json:"default_promo_discount,omitempty"`
	Items                []ItemResponse               `json:"items"`
	Cart                 map[string]CartEntryResponse `json:"cart"`
	TicketCount          int                          `json:"ticket_count"`
	AddOnsEnabled        bool                         `json:"add_ons_enabled"`
	Promo                PromoResponse                `json:"promo"`
	Totals               TotalsResponse               `json:"totals"`
}

// NewCheckoutResponse builds the response from a checkout snapshot
func NewCheckoutResponse(sessionID string, v domain.CheckoutView, promoError string) *CheckoutResponse {
	resp := &CheckoutResponse{
		SessionID:            sessionID,
		EventID:              v.Event.ID,
		EventTitle:           v.Event.Title,
		EventType:            string(v.Event.Type),
		Commission:           v.Event.Commission,
		DefaultPromoDiscount: v.Event.DefaultPromoDiscount,
		Items:                make([]ItemResponse, 0, len(v.Items)),
		Cart:                 NewCartResponse(v.Cart),
		TicketCount:          v.TicketCount,
		AddOnsEnabled:        v.AddOnsEnabled,
		Promo: PromoResponse{
			Status:       string(v.Promo.Status()),
			TrackingCode: v.Promo.TrackingCode,
			Error:        promoError,
		},
		Totals: NewTotalsResponse(v.Totals),
	}

	if a := v.Promo.Applied; a != nil {
		resp.Promo.AppliedCode = a.Code
		resp.Promo.DiscountPercent = a.DiscountPercent
		resp.Promo.OwnerName = a.OwnerName
	}

	for _, item := range v.Items {
		resp.Items = append(resp.Items, ItemResponse{
			Key:               item.Key,
			Kind:              string(item.Kind),
			Description:       item.Description,
			Price:             Money(item.Price),
			MinimumDonation:   MoneyPtr(item.MinimumDonation),
			Quantity:          item.Quantity,
			DonationAmount:    MoneyPtr(item.DonationAmount),
			Disabled:          item.Disabled,
			UnavailableReason: string(item.UnavailableReason),
		})
	}

	return resp
}

// NewCartResponse renders cart entries
func NewCartResponse(cart domain.Cart) map[string]CartEntryResponse {
	out := make(map[string]CartEntryResponse, len(cart))
	for key, entry := range cart {
		out[key] = CartEntryResponse{
			Quantity:       entry.Quantity,
			DonationAmount: MoneyPtr(entry.DonationAmount),
		}
	}
	return out
}

// HandoffResponse is the payload that starts the purchase
type HandoffResponse struct {
	EventID   string                       `json:"event_id"`
	Items     map[string]CartEntryResponse `json:"items"`
	PromoCode string                       `json:"promo_code,omitempty"`
	Totals    TotalsResponse               `json:"totals"`
}

// NewHandoffResponse builds the response for a checkout handoff
func NewHandoffResponse(h domain.Handoff) *HandoffResponse {
	return &HandoffResponse{
		EventID:   h.EventID,
		Items:     NewCartResponse(h.Items),
		PromoCode: h.PromoCode,
		Totals:    NewTotalsResponse(h.Totals),
	}
}
