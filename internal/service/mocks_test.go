package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prohmpiriya/event-storefront/internal/client"
	"github.com/prohmpiriya/event-storefront/internal/domain"
	"github.com/prohmpiriya/event-storefront/internal/session"
)

var errMockUpstream = errors.New("mock upstream failure")

func ptr[T any](v T) *T {
	return &v
}

var testNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time {
	return testNow
}

func ticketedEvent() *domain.Event {
	start := time.Date(2025, 7, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(8 * time.Hour)
	return &domain.Event{
		ID:      "evt-1",
		OwnerID: "org-1",
		Title:   "Summer Fest",
		Type:    domain.EventTypeTicketed,
		Tickets: []domain.Ticket{
			{Type: "GA", Price: 50, Quantity: ptr(100), Sold: ptr(10)},
			{Type: "VIP", Price: 120},
			{Type: "SOLD", Price: 30, Quantity: ptr(5), Sold: ptr(5)},
		},
		AddOns: []domain.AddOn{
			{Name: "Parking", Price: 15},
		},
		Date:    &start,
		EndDate: &end,
		Sections: []domain.Section{
			{ID: "main", Name: "Main Stage"},
			{ID: "side", Name: "Side Stage"},
		},
		Schedule: []domain.ScheduleBlock{
			{ID: "b1", AreaID: "main", Title: "Opening", StartTime: start, EndTime: start.Add(time.Hour)},
			{ID: "b2", AreaID: "main", Title: "Headliner", StartTime: start.Add(time.Hour), EndTime: start.Add(3 * time.Hour)},
		},
	}
}

func fundraiserEvent() *domain.Event {
	return &domain.Event{
		ID:      "evt-2",
		OwnerID: "org-2",
		Type:    domain.EventTypeFundraiser,
		Tickets: []domain.Ticket{
			{Type: "Supporter", MinimumDonation: ptr(10.0)},
		},
	}
}

// MockEventAPI is an in-memory EventAPI
type MockEventAPI struct {
	mu        sync.Mutex
	events    map[string]*domain.Event
	promos    map[string]*domain.PromoValidation
	hold      map[string]chan struct{}
	entered   chan string
	clicks    []string
	updates   []*client.EventUpdate
	validates int

	ValidateErr error
	UpdateErr   error
}

func NewMockEventAPI(events ...*domain.Event) *MockEventAPI {
	m := &MockEventAPI{
		events: make(map[string]*domain.Event),
		promos: make(map[string]*domain.PromoValidation),
		hold:   make(map[string]chan struct{}),
	}
	for _, e := range events {
		m.events[e.ID] = e
	}
	return m
}

// AddPromo registers a valid code
func (m *MockEventAPI) AddPromo(code string, percent float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.promos[code] = &domain.PromoValidation{Valid: true, Code: code, DiscountPercent: percent, OwnerName: "Partner"}
}

// Hold makes validations of code block until the returned func is called.
// Each blocked validation is announced on Entered.
func (m *MockEventAPI) Hold(code string) (release func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ch := make(chan struct{})
	m.hold[code] = ch
	if m.entered == nil {
		m.entered = make(chan string, 8)
	}
	return func() { close(ch) }
}

func (m *MockEventAPI) Entered() <-chan string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.entered
}

func (m *MockEventAPI) GetEvent(_ context.Context, eventID string) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", client.ErrEventNotFound, eventID)
	}
	return e, nil
}

func (m *MockEventAPI) ValidatePromoCode(_ context.Context, _, code string) (*domain.PromoValidation, error) {
	m.mu.Lock()
	m.validates++
	hold := m.hold[code]
	entered := m.entered
	err := m.ValidateErr
	v, ok := m.promos[code]
	m.mu.Unlock()

	if hold != nil {
		entered <- code
		<-hold
	}
	if err != nil {
		return nil, err
	}
	if !ok {
		return &domain.PromoValidation{Valid: false, Code: code}, nil
	}
	return v, nil
}

func (m *MockEventAPI) TrackPromoClick(_ context.Context, _, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clicks = append(m.clicks, code)
	return nil
}

func (m *MockEventAPI) UpdateEvent(_ context.Context, _, eventID string, update *client.EventUpdate, _ string) (*domain.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return nil, m.UpdateErr
	}
	m.updates = append(m.updates, update)
	e, ok := m.events[eventID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", client.ErrEventNotFound, eventID)
	}
	updated := *e
	updated.Schedule = update.Schedule
	return &updated, nil
}

func (m *MockEventAPI) Validations() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.validates
}

func (m *MockEventAPI) Updates() []*client.EventUpdate {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*client.EventUpdate(nil), m.updates...)
}

// MockTracker records promo clicks
type MockTracker struct {
	mu     sync.Mutex
	clicks []string
	Err    error
}

func (t *MockTracker) Name() string { return "mock" }

func (t *MockTracker) TrackPromoClick(_ context.Context, _, code string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.clicks = append(t.clicks, code)
	return t.Err
}

func (t *MockTracker) Clicks() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]string(nil), t.clicks...)
}

type checkoutFixture struct {
	api     *MockEventAPI
	tracker *MockTracker
	pending *session.MemoryPendingStore
	svc     *CheckoutServiceImpl
}

func newCheckoutFixture() *checkoutFixture {
	f := &checkoutFixture{
		api:     NewMockEventAPI(ticketedEvent(), fundraiserEvent()),
		tracker: &MockTracker{},
		pending: session.NewMemoryPendingStore(time.Hour),
	}
	f.svc = NewCheckoutService(&CheckoutServiceConfig{
		API:     f.api,
		Tracker: f.tracker,
		Pending: f.pending,
		IdleTTL: time.Hour,
		Now:     fixedClock,
	})
	return f
}

func (f *checkoutFixture) session(sessionID, eventID string) *CheckoutSession {
	sess, _ := f.svc.Sessions().Get(sessionKey(sessionID, eventID))
	return sess
}
