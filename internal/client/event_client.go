package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/prohmpiriya/event-storefront/internal/domain"
	"github.com/prohmpiriya/event-storefront/pkg/telemetry"
)

// ErrEventNotFound is returned when the event API answers 404 for an event
var ErrEventNotFound = errors.New("event not found")

// APIError is a non-success answer from the event API
type APIError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("event api returned status %d: %s: %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("event api returned status %d", e.StatusCode)
}

// EventAPI is the remote event REST API used by the storefront
type EventAPI interface {
	// GetEvent fetches an event with its catalog and schedule
	GetEvent(ctx context.Context, eventID string) (*domain.Event, error)
	// ValidatePromoCode asks the API whether code discounts eventID
	ValidatePromoCode(ctx context.Context, eventID, code string) (*domain.PromoValidation, error)
	// TrackPromoClick records that a promo link was followed
	TrackPromoClick(ctx context.Context, eventID, code string) error
	// UpdateEvent persists the event schedule on behalf of userID
	UpdateEvent(ctx context.Context, userID, eventID string, update *EventUpdate, authToken string) (*domain.Event, error)
}

// EventUpdate is the body of an event update
type EventUpdate struct {
	Schedule []domain.ScheduleBlock `json:"schedule"`
}

// HTTPEventAPI implements EventAPI over HTTP
type HTTPEventAPI struct {
	baseURL    string
	httpClient *http.Client
	duration   *telemetry.Histogram
}

// NewHTTPEventAPI creates a client for baseURL
func NewHTTPEventAPI(baseURL string, timeout time.Duration) *HTTPEventAPI {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	duration, _ := telemetry.NewHistogramWithBuckets(telemetry.MetricOpts{
		Name:        "storefront_api_request_duration_seconds",
		Description: "Duration of event API requests",
		Unit:        "s",
	}, []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})

	return &HTTPEventAPI{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		duration: duration,
	}
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// do sends a JSON request and decodes the data field of the envelope into out
func (c *HTTPEventAPI) do(ctx context.Context, endpoint, method, path string, body any, authToken string, out any) error {
	ctx, span := telemetry.StartSpan(ctx, "client.event_api."+endpoint)
	defer span.End()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if authToken != "" {
		req.Header.Set("Authorization", "Bearer "+authToken)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	status := 0
	if resp != nil {
		status = resp.StatusCode
	}
	c.duration.Record(ctx, time.Since(start).Seconds(),
		telemetry.EndpointAttr(endpoint), telemetry.StatusCodeAttr(status))
	if err != nil {
		telemetry.FailSpan(span, err)
		return fmt.Errorf("event api %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	var env envelope
	decodeErr := json.NewDecoder(resp.Body).Decode(&env)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 || (decodeErr == nil && !env.Success && env.Error != nil) {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		if decodeErr == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		telemetry.FailSpan(span, apiErr)
		return apiErr
	}
	if decodeErr != nil && !errors.Is(decodeErr, io.EOF) {
		return fmt.Errorf("failed to decode response: %w", decodeErr)
	}

	if out != nil && len(env.Data) > 0 && string(env.Data) != "null" {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return fmt.Errorf("failed to decode response data: %w", err)
		}
	}
	return nil
}

// GetEvent fetches an event
func (c *HTTPEventAPI) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	var event domain.Event
	err := c.do(ctx, "get_event", http.MethodGet, "/api/v1/events/"+url.PathEscape(eventID), nil, "", &event)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
		}
		return nil, err
	}
	if event.ID == "" {
		event.ID = eventID
	}
	return &event, nil
}

type promoCodeBody struct {
	Code string `json:"code"`
}

// ValidatePromoCode validates a promo code. A 4xx answer is an invalid code,
// not an error.
func (c *HTTPEventAPI) ValidatePromoCode(ctx context.Context, eventID, code string) (*domain.PromoValidation, error) {
	var v domain.PromoValidation
	path := fmt.Sprintf("/api/v1/events/%s/promo-codes/validate", url.PathEscape(eventID))
	err := c.do(ctx, "validate_promo", http.MethodPost, path, promoCodeBody{Code: code}, "", &v)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusTooManyRequests {
			return &domain.PromoValidation{Valid: false, Code: code}, nil
		}
		return nil, err
	}
	if v.Code == "" {
		v.Code = code
	}
	return &v, nil
}

// TrackPromoClick records a promo link click
func (c *HTTPEventAPI) TrackPromoClick(ctx context.Context, eventID, code string) error {
	path := fmt.Sprintf("/api/v1/events/%s/promo-codes/track-click", url.PathEscape(eventID))
	return c.do(ctx, "track_promo_click", http.MethodPost, path, promoCodeBody{Code: code}, "", nil)
}

// UpdateEvent persists the schedule of an event
func (c *HTTPEventAPI) UpdateEvent(ctx context.Context, userID, eventID string, update *EventUpdate, authToken string) (*domain.Event, error) {
	var event domain.Event
	path := fmt.Sprintf("/api/v1/users/%s/events/%s", url.PathEscape(userID), url.PathEscape(eventID))
	if err := c.do(ctx, "update_event", http.MethodPut, path, update, authToken, &event); err != nil {
		return nil, err
	}
	return &event, nil
}

// NoOpEventAPI serves a fixed event and accepts every call
type NoOpEventAPI struct {
	Event *domain.Event
}

// NewNoOpEventAPI creates a no-op client serving event
func NewNoOpEventAPI(event *domain.Event) *NoOpEventAPI {
	return &NoOpEventAPI{Event: event}
}

// GetEvent returns the configured event
func (c *NoOpEventAPI) GetEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	if c.Event == nil || c.Event.ID != eventID {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	return c.Event, nil
}

// ValidatePromoCode reports every code as invalid
func (c *NoOpEventAPI) ValidatePromoCode(ctx context.Context, eventID, code string) (*domain.PromoValidation, error) {
	return &domain.PromoValidation{Valid: false, Code: code}, nil
}

// TrackPromoClick does nothing
func (c *NoOpEventAPI) TrackPromoClick(ctx context.Context, eventID, code string) error {
	return nil
}

// UpdateEvent returns the configured event with the new schedule
func (c *NoOpEventAPI) UpdateEvent(ctx context.Context, userID, eventID string, update *EventUpdate, authToken string) (*domain.Event, error) {
	if c.Event == nil {
		return nil, fmt.Errorf("%w: %s", ErrEventNotFound, eventID)
	}
	updated := *c.Event
	updated.Schedule = update.Schedule
	return &updated, nil
}
