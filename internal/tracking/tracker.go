// Package tracking records promo link clicks for attribution.
package tracking

import (
	"context"
	"errors"
	"fmt"

	"github.com/prohmpiriya/event-storefront/internal/client"
	"github.com/prohmpiriya/event-storefront/pkg/telemetry"
)

// ClickTracker records one promo click
type ClickTracker interface {
	Name() string
	TrackPromoClick(ctx context.Context, eventID, code string) error
}

// APITracker reports clicks to the event API
type APITracker struct {
	api client.EventAPI
}

// NewAPITracker creates a tracker backed by the event API
func NewAPITracker(api client.EventAPI) *APITracker {
	return &APITracker{api: api}
}

// Name identifies the tracker in metrics
func (t *APITracker) Name() string { return "api" }

// TrackPromoClick forwards the click to the event API
func (t *APITracker) TrackPromoClick(ctx context.Context, eventID, code string) error {
	return t.api.TrackPromoClick(ctx, eventID, code)
}

// MultiTracker fans a click out to every tracker
type MultiTracker struct {
	trackers []ClickTracker
	clicks   *telemetry.Counter
}

// NewMultiTracker combines trackers
func NewMultiTracker(trackers ...ClickTracker) *MultiTracker {
	clicks, _ := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "storefront_promo_clicks_total",
		Description: "Promo link clicks recorded per tracker",
		Unit:        "{click}",
	})
	return &MultiTracker{trackers: trackers, clicks: clicks}
}

// Name identifies the tracker in metrics
func (m *MultiTracker) Name() string { return "multi" }

// TrackPromoClick calls every tracker and joins their errors
func (m *MultiTracker) TrackPromoClick(ctx context.Context, eventID, code string) error {
	var errs []error
	for _, t := range m.trackers {
		result := "success"
		if err := t.TrackPromoClick(ctx, eventID, code); err != nil {
			result = "error"
			errs = append(errs, fmt.Errorf("%s tracker: %w", t.Name(), err))
		}
		m.clicks.Inc(ctx, telemetry.TrackerAttr(t.Name()), telemetry.ResultAttr(result))
	}
	return errors.Join(errs...)
}

// NoOpTracker drops every click
type NoOpTracker struct{}

// Name identifies the tracker in metrics
func (NoOpTracker) Name() string { return "noop" }

// TrackPromoClick does nothing
func (NoOpTracker) TrackPromoClick(context.Context, string, string) error { return nil }
