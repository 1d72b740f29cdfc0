package service

import "errors"

// Service errors
var (
	ErrPromoInvalid          = errors.New("invalid or expired promo code")
	ErrPromoValidationFailed = errors.New("promo code validation failed, please try again")
	ErrAuthRequired          = errors.New("sign in required to check out")
	ErrScheduleSaveFailed    = errors.New("failed to save schedule")
	ErrNotEventOwner         = errors.New("event belongs to another organizer")
)
