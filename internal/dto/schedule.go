package dto

import (
	"time"

	"github.com/prohmpiriya/event-storefront/internal/domain"
)

// BlockInput is one block of a section replacement
type BlockInput struct {
	ID        string    `json:"id" binding:"required"`
	Title     string    `json:"title" binding:"max=200"`
	StartTime time.Time `json:"start_time" binding:"required"`
	EndTime   time.Time `json:"end_time" binding:"required"`
}

// ReplaceSectionRequest replaces the blocks of one section
type ReplaceSectionRequest struct {
	Blocks []BlockInput `json:"blocks" binding:"dive"`
}

// ToBlocks converts the request into domain blocks of areaID
func (r *ReplaceSectionRequest) ToBlocks(areaID string) []domain.ScheduleBlock {
	blocks := make([]domain.ScheduleBlock, 0, len(r.Blocks))
	for _, b := range r.Blocks {
		blocks = append(blocks, domain.ScheduleBlock{
			ID:        b.ID,
			AreaID:    areaID,
			Title:     b.Title,
			StartTime: b.StartTime,
			EndTime:   b.EndTime,
		})
	}
	return blocks
}

// UpdateBlockRequest edits one block. Start and End are "HH:MM".
type UpdateBlockRequest struct {
	Title *string `json:"title" binding:"omitempty,max=200"`
	Start *string `json:"start" binding:"omitempty,len=5"`
	End   *string `json:"end" binding:"omitempty,len=5"`
}

// Validate validates the UpdateBlockRequest
func (r *UpdateBlockRequest) Validate() (bool, string) {
	if r.Title == nil && r.Start == nil && r.End == nil {
		return false, "At least one field must be provided for update"
	}
	return true, ""
}

// ReorderRequest moves a block within its section
type ReorderRequest struct {
	From *int `json:"from" binding:"required,min=0"`
	To   *int `json:"to" binding:"required,min=0"`
}

// Drag actions
const (
	DragBegin  = "begin"
	DragUpdate = "update"
	DragCommit = "commit"
	DragCancel = "cancel"
)

// DragRequest is one step of a drag and drop
type DragRequest struct {
	Action string `json:"action" binding:"required,oneof=begin update commit cancel"`
	Index  int    `json:"index" binding:"min=0"`
}

// BlockResponse is one schedule block
type BlockResponse struct {
	ID        string `json:"id"`
	AreaID    string `json:"area_id"`
	Title     string `json:"title"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// SectionResponse is the timeline of one section
type SectionResponse struct {
	AreaID   string          `json:"area_id"`
	Name     string          `json:"name,omitempty"`
	Blocks   []BlockResponse `json:"blocks"`
	Dragging bool            `json:"dragging"`
	Preview  []BlockResponse `json:"preview,omitempty"`
}

// ScheduleResponse is the editor state of an event schedule
type ScheduleResponse struct {
	EventID  string            `json:"event_id"`
	Dirty    bool              `json:"dirty"`
	Sections []SectionResponse `json:"sections"`
}

// NewBlockResponses renders blocks with RFC 3339 times
func NewBlockResponses(blocks []domain.ScheduleBlock) []BlockResponse {
	out := make([]BlockResponse, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, BlockResponse{
			ID:        b.ID,
			AreaID:    b.AreaID,
			Title:     b.Title,
			StartTime: b.StartTime.Format(time.RFC3339),
			EndTime:   b.EndTime.Format(time.RFC3339),
		})
	}
	return out
}

// NewSectionResponse renders a timeline
func NewSectionResponse(name string, tl *domain.SectionTimeline) SectionResponse {
	resp := SectionResponse{
		AreaID:   tl.AreaID(),
		Name:     name,
		Blocks:   NewBlockResponses(tl.Blocks()),
		Dragging: tl.Dragging(),
	}
	if tl.Dragging() {
		resp.Preview = NewBlockResponses(tl.DragPreview())
	}
	return resp
}

// NewScheduleResponse renders all sections of a schedule
func NewScheduleResponse(eventID string, sections []domain.Section, s *domain.Schedule, dirty bool) *ScheduleResponse {
	names := make(map[string]string, len(sections))
	for _, sec := range sections {
		names[sec.ID] = sec.Name
	}

	resp := &ScheduleResponse{EventID: eventID, Dirty: dirty, Sections: make([]SectionResponse, 0)}
	for _, id := range s.SectionIDs() {
		tl, err := s.Section(id)
		if err != nil {
			continue
		}
		resp.Sections = append(resp.Sections, NewSectionResponse(names[id], tl))
	}
	return resp
}
