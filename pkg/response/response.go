package response

import (
	"net/http"
)

// Response represents the standard API response structure
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
}

// ErrorInfo represents error details in the response
type ErrorInfo struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// --- Error Code Constants ---

// Common error codes
const (
	// Client errors (4xx)
	ErrCodeBadRequest          = "BAD_REQUEST"
	ErrCodeUnauthorized        = "UNAUTHORIZED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"
	ErrCodeConflict            = "CONFLICT"
	ErrCodeUnprocessableEntity = "UNPROCESSABLE_ENTITY"
	ErrCodeTooManyRequests     = "TOO_MANY_REQUESTS"

	// Server errors (5xx)
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"

	// Upstream errors
	ErrCodeBadGateway = "BAD_GATEWAY"

	// Storefront errors
	ErrCodeValidationFailed      = "VALIDATION_FAILED"
	ErrCodeAuthRequired          = "AUTH_REQUIRED"
	ErrCodeItemUnavailable       = "ITEM_UNAVAILABLE"
	ErrCodeAddOnLocked           = "ADDON_LOCKED"
	ErrCodeUnknownItem           = "UNKNOWN_ITEM"
	ErrCodeEmptyCart             = "EMPTY_CART"
	ErrCodePromoInvalid          = "PROMO_INVALID"
	ErrCodePromoValidationFailed = "PROMO_VALIDATION_FAILED"
	ErrCodeScheduleSaveFailed    = "SCHEDULE_SAVE_FAILED"
	ErrCodeBlockNotFound         = "BLOCK_NOT_FOUND"
)

// --- HTTP Status Code Mapping ---

// ErrorCodeToHTTPStatus maps error codes to HTTP status codes
var ErrorCodeToHTTPStatus = map[string]int{
	ErrCodeBadRequest:          http.StatusBadRequest,
	ErrCodeUnauthorized:        http.StatusUnauthorized,
	ErrCodeForbidden:           http.StatusForbidden,
	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeMethodNotAllowed:    http.StatusMethodNotAllowed,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeUnprocessableEntity: http.StatusUnprocessableEntity,
	ErrCodeTooManyRequests:     http.StatusTooManyRequests,
	ErrCodeInternalError:       http.StatusInternalServerError,
	ErrCodeServiceUnavailable:  http.StatusServiceUnavailable,
	ErrCodeBadGateway:          http.StatusBadGateway,

	ErrCodeValidationFailed:      http.StatusBadRequest,
	ErrCodeAuthRequired:          http.StatusUnauthorized,
	ErrCodeItemUnavailable:       http.StatusConflict,
	ErrCodeAddOnLocked:           http.StatusConflict,
	ErrCodeUnknownItem:           http.StatusNotFound,
	ErrCodeEmptyCart:             http.StatusUnprocessableEntity,
	ErrCodePromoInvalid:          http.StatusUnprocessableEntity,
	ErrCodePromoValidationFailed: http.StatusBadGateway,
	ErrCodeScheduleSaveFailed:    http.StatusBadGateway,
	ErrCodeBlockNotFound:         http.StatusNotFound,
}

// GetHTTPStatus returns the HTTP status code for an error code
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeToHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// --- Response Builders ---

// Success creates a success response with data
func Success(data interface{}) *Response {
	return &Response{
		Success: true,
		Data:    data,
	}
}

// Error creates an error response
func Error(code string, message string) *Response {
	return &Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}

// ErrorWithDetails creates an error response with additional details
func ErrorWithDetails(code string, message string, details map[string]string) *Response {
	return &Response{
		Success: false,
		Error: &ErrorInfo{
			Code:    code,
			Message: message,
			Details: details,
		},
	}
}

// --- Common Error Responses ---

// BadRequest creates a bad request error response
func BadRequest(message string) *Response {
	return Error(ErrCodeBadRequest, message)
}

// Unauthorized creates an unauthorized error response
func Unauthorized(message string) *Response {
	if message == "" {
		message = "Authentication required"
	}
	return Error(ErrCodeUnauthorized, message)
}

// Forbidden creates a forbidden error response
func Forbidden(message string) *Response {
	if message == "" {
		message = "Access denied"
	}
	return Error(ErrCodeForbidden, message)
}

// NotFound creates a not found error response
func NotFound(message string) *Response {
	if message == "" {
		message = "Resource not found"
	}
	return Error(ErrCodeNotFound, message)
}

// InternalError creates an internal server error response
func InternalError(message string) *Response {
	if message == "" {
		message = "An internal error occurred"
	}
	return Error(ErrCodeInternalError, message)
}

// ValidationFailed creates a validation error response with field details
func ValidationFailed(details map[string]string) *Response {
	return ErrorWithDetails(ErrCodeValidationFailed, "Validation failed", details)
}

// AuthRequired creates an error response telling the client to sign in and
// carrying the redirect target
func AuthRequired(redirectURL string) *Response {
	return ErrorWithDetails(ErrCodeAuthRequired, "Sign in to continue checkout", map[string]string{
		"redirect": redirectURL,
	})
}

// BadGateway creates an upstream failure error response
func BadGateway(message string) *Response {
	if message == "" {
		message = "Upstream service failed"
	}
	return Error(ErrCodeBadGateway, message)
}

// TooManyRequests creates a rate limit error response
func TooManyRequests(message string) *Response {
	if message == "" {
		message = "Too many requests, please try again later"
	}
	return Error(ErrCodeTooManyRequests, message)
}

// ServiceUnavailable creates a service unavailable error response
func ServiceUnavailable(message string) *Response {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	return Error(ErrCodeServiceUnavailable, message)
}
