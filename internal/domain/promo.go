package domain

// PromoCode is a validated, discount-bearing code
type PromoCode struct {
	Code            string  `json:"code"`
	DiscountPercent float64 `json:"discountPercent"`
	OwnerName       string  `json:"ownerName,omitempty"`
}

// PromoValidation is the validator's verdict on a code
type PromoValidation struct {
	Valid           bool    `json:"valid"`
	DiscountPercent float64 `json:"discountPercent"`
	Code            string  `json:"code"`
	OwnerName       string  `json:"ownerName,omitempty"`
}

// PromoCode converts a valid verdict into an applicable code. The percent is
// clamped to [0, 100].
func (v PromoValidation) PromoCode() PromoCode {
	return PromoCode{
		Code:            v.Code,
		DiscountPercent: max(0, min(100, v.DiscountPercent)),
		OwnerName:       v.OwnerName,
	}
}

// PromoStatus is the lifecycle state of promo codes in a checkout
type PromoStatus string

// PromoStatus constants
const (
	PromoStatusNone     PromoStatus = "NONE"
	PromoStatusTracking PromoStatus = "TRACKING"
	PromoStatusApplied  PromoStatus = "APPLIED"
)

// PromoState holds at most one applied code and the attribution code
type PromoState struct {
	Applied      *PromoCode `json:"applied,omitempty"`
	TrackingCode string     `json:"trackingCode,omitempty"`
}

// Status derives the state machine position
func (s PromoState) Status() PromoStatus {
	switch {
	case s.Applied != nil:
		return PromoStatusApplied
	case s.TrackingCode != "":
		return PromoStatusTracking
	default:
		return PromoStatusNone
	}
}

// Apply replaces any applied code
func (s *PromoState) Apply(code PromoCode) {
	s.Applied = &code
}

// Track records a code for attribution only
func (s *PromoState) Track(code string) {
	s.TrackingCode = code
}

// ClearApplied drops the applied code and keeps attribution
func (s *PromoState) ClearApplied() {
	s.Applied = nil
}

// Clear drops both codes
func (s *PromoState) Clear() {
	s.Applied = nil
	s.TrackingCode = ""
}

// AttributionCode is the code sent at checkout: the applied code, falling
// back to the tracking code.
func (s PromoState) AttributionCode() string {
	if s.Applied != nil {
		return s.Applied.Code
	}
	return s.TrackingCode
}
