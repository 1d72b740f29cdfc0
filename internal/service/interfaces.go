package service

import (
	"context"

	"github.com/prohmpiriya/event-storefront/internal/dto"
)

// CheckoutService defines the storefront cart and promo operations
type CheckoutService interface {
	// Open starts a new page visit for the event, consuming the promo query
	// parameter and any pending checkout left before a sign-in redirect
	Open(ctx context.Context, sessionID, eventID string, req *dto.OpenSessionRequest) (*dto.CheckoutResponse, error)
	// Get returns the current checkout state, opening a visit when needed
	Get(ctx context.Context, sessionID, eventID string) (*dto.CheckoutResponse, error)
	// SetQuantity changes the quantity of one catalog item
	SetQuantity(ctx context.Context, sessionID, eventID, key string, req *dto.SetQuantityRequest) (*dto.CheckoutResponse, error)
	// ApplyPromo validates and applies a promo code typed by the user
	ApplyPromo(ctx context.Context, sessionID, eventID string, req *dto.ApplyPromoRequest) (*dto.CheckoutResponse, error)
	// RemovePromo drops applied and tracking codes
	RemovePromo(ctx context.Context, sessionID, eventID string) (*dto.CheckoutResponse, error)
	// Checkout builds the handoff payload. Anonymous callers get
	// ErrAuthRequired after their cart is parked for the sign-in redirect.
	Checkout(ctx context.Context, sessionID, eventID string, authenticated bool) (*dto.HandoffResponse, error)
}

// ScheduleService defines the admin schedule editor operations
type ScheduleService interface {
	// Get returns the editor state, loading the event on first use
	Get(ctx context.Context, editor EditorKey) (*dto.ScheduleResponse, error)
	// ReplaceSection swaps the whole block list of a section
	ReplaceSection(ctx context.Context, editor EditorKey, areaID string, req *dto.ReplaceSectionRequest) (*dto.ScheduleResponse, error)
	// UpdateBlock retitles or retimes one block
	UpdateBlock(ctx context.Context, editor EditorKey, areaID string, index int, req *dto.UpdateBlockRequest) (*dto.ScheduleResponse, error)
	// SplitBlock splits one block in half
	SplitBlock(ctx context.Context, editor EditorKey, areaID string, index int) (*dto.ScheduleResponse, error)
	// DeleteBlock removes one block by id
	DeleteBlock(ctx context.Context, editor EditorKey, areaID, blockID string) (*dto.ScheduleResponse, error)
	// Reorder moves a block and re-times the section
	Reorder(ctx context.Context, editor EditorKey, areaID string, req *dto.ReorderRequest) (*dto.ScheduleResponse, error)
	// Drag runs one step of the drag and drop protocol
	Drag(ctx context.Context, editor EditorKey, areaID string, req *dto.DragRequest) (*dto.ScheduleResponse, error)
	// Save persists every section through the event API
	Save(ctx context.Context, editor EditorKey, authToken string) (*dto.ScheduleResponse, error)
}

// EditorKey identifies whose schedule editor is addressed
type EditorKey struct {
	UserID  string
	Role    string
	EventID string
}

func (k EditorKey) String() string {
	return k.UserID + "|" + k.EventID
}
