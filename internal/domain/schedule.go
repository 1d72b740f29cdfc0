package domain

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/google/uuid"
)

// DefaultBlockTitle is the title of the block seeded into empty sections
const DefaultBlockTitle = "Event Duration"

// Schedule errors
var (
	ErrBlockIndex       = errors.New("block index out of range")
	ErrBlockNotFound    = errors.New("block not found")
	ErrUnknownSection   = errors.New("unknown schedule section")
	ErrInvalidTimeOfDay = errors.New("invalid time of day")
	ErrInvalidTimeField = errors.New("time field must be start or end")
	ErrNoDrag           = errors.New("no drag in progress")
)

// ScheduleBlock is a titled time interval within a section
type ScheduleBlock struct {
	ID        string    `json:"id"`
	AreaID    string    `json:"areaId"`
	Title     string    `json:"title"`
	StartTime time.Time `json:"startTime"`
	EndTime   time.Time `json:"endTime"`
}

// Duration returns EndTime - StartTime
func (b ScheduleBlock) Duration() time.Duration {
	return b.EndTime.Sub(b.StartTime)
}

// Section is a venue area that owns a timeline
type Section struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TimeField selects which boundary of a block is retimed
type TimeField string

// TimeField constants
const (
	TimeFieldStart TimeField = "start"
	TimeFieldEnd   TimeField = "end"
)

// TimeOfDay is an hour and minute
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses "HH:MM"
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return TimeOfDay{}, fmt.Errorf("%w: %q", ErrInvalidTimeOfDay, s)
	}
	return TimeOfDay{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// On keeps the date, seconds and location of t and replaces hour and minute
func (tod TimeOfDay) On(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), tod.Hour, tod.Minute, t.Second(), t.Nanosecond(), t.Location())
}

type dragState struct {
	from   int
	target int
}

// SectionTimeline holds the blocks of one section sorted by start time
type SectionTimeline struct {
	areaID     string
	eventStart *time.Time
	eventEnd   *time.Time
	blocks     []ScheduleBlock
	drag       *dragState
	newID      func() string
}

// NewSectionTimeline builds a timeline from blocks. The blocks are copied,
// stamped with areaID and sorted.
func NewSectionTimeline(areaID string, blocks []ScheduleBlock, eventStart, eventEnd *time.Time) *SectionTimeline {
	t := &SectionTimeline{
		areaID:     areaID,
		eventStart: eventStart,
		eventEnd:   eventEnd,
		newID:      uuid.NewString,
	}
	t.setBlocks(blocks)
	return t
}

// AreaID returns the section id
func (t *SectionTimeline) AreaID() string {
	return t.areaID
}

// Blocks returns a copy of the sorted block list
func (t *SectionTimeline) Blocks() []ScheduleBlock {
	return slices.Clone(t.blocks)
}

// Len returns the number of blocks
func (t *SectionTimeline) Len() int {
	return len(t.blocks)
}

func (t *SectionTimeline) setBlocks(blocks []ScheduleBlock) {
	t.blocks = make([]ScheduleBlock, len(blocks))
	for i, b := range blocks {
		b.AreaID = t.areaID
		t.blocks[i] = b
	}
	t.normalize()
}

// normalize restores start-time order and seeds an empty section
func (t *SectionTimeline) normalize() {
	sort.SliceStable(t.blocks, func(i, j int) bool {
		return t.blocks[i].StartTime.Before(t.blocks[j].StartTime)
	})
	if len(t.blocks) == 0 && t.eventStart != nil && t.eventEnd != nil {
		t.blocks = append(t.blocks, ScheduleBlock{
			ID:        t.newID(),
			AreaID:    t.areaID,
			Title:     DefaultBlockTitle,
			StartTime: *t.eventStart,
			EndTime:   *t.eventEnd,
		})
	}
}

func (t *SectionTimeline) checkIndex(index int) error {
	if index < 0 || index >= len(t.blocks) {
		return fmt.Errorf("%w: %d", ErrBlockIndex, index)
	}
	return nil
}

// Replace swaps in a whole new block list
func (t *SectionTimeline) Replace(blocks []ScheduleBlock) {
	t.drag = nil
	t.setBlocks(blocks)
}

// IndexOf returns the index of the block with id, or -1
func (t *SectionTimeline) IndexOf(id string) int {
	return slices.IndexFunc(t.blocks, func(b ScheduleBlock) bool { return b.ID == id })
}

// Retitle renames the block at index
func (t *SectionTimeline) Retitle(index int, title string) error {
	if err := t.checkIndex(index); err != nil {
		return err
	}
	t.blocks[index].Title = title
	return nil
}

// Retime moves one boundary of the block at index to tod on the same date.
// A new start becomes the previous block's end and a new end becomes the
// next block's start. A start after its end is not rejected.
func (t *SectionTimeline) Retime(index int, field TimeField, tod TimeOfDay) error {
	if err := t.checkIndex(index); err != nil {
		return err
	}

	b := &t.blocks[index]
	switch field {
	case TimeFieldStart:
		b.StartTime = tod.On(b.StartTime)
		if index > 0 {
			t.blocks[index-1].EndTime = b.StartTime
		}
	case TimeFieldEnd:
		b.EndTime = tod.On(b.EndTime)
		if index < len(t.blocks)-1 {
			t.blocks[index+1].StartTime = b.EndTime
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTimeField, field)
	}

	t.normalize()
	return nil
}

// Split replaces the block at index with two halves of equal duration. It
// does nothing when the midpoint is not after the start.
func (t *SectionTimeline) Split(index int) error {
	if err := t.checkIndex(index); err != nil {
		return err
	}

	b := t.blocks[index]
	mid := b.StartTime.Add(b.Duration() / 2)
	if !mid.After(b.StartTime) {
		return nil
	}

	first, second := b, b
	first.EndTime = mid
	second.ID = t.newID()
	second.StartTime = mid

	t.blocks[index] = first
	t.blocks = slices.Insert(t.blocks, index+1, second)
	t.normalize()
	return nil
}

// Delete removes the block with id. Neighbours keep their times.
func (t *SectionTimeline) Delete(id string) error {
	i := t.IndexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrBlockNotFound, id)
	}
	t.blocks = slices.Delete(t.blocks, i, i+1)
	t.normalize()
	return nil
}

// Reorder moves the block at from to to, then lays all blocks out back to
// back from the event start keeping each block's duration. Out of range
// indexes and from == to are ignored. It reports whether a block moved.
func (t *SectionTimeline) Reorder(from, to int) bool {
	n := len(t.blocks)
	if from == to || from < 0 || from >= n || to < 0 || to >= n {
		return false
	}

	start := t.blocks[0].StartTime
	if t.eventStart != nil {
		start = *t.eventStart
	}

	moved := t.blocks[from]
	t.blocks = slices.Delete(t.blocks, from, from+1)
	t.blocks = slices.Insert(t.blocks, to, moved)

	for i := range t.blocks {
		d := t.blocks[i].Duration()
		t.blocks[i].StartTime = start
		t.blocks[i].EndTime = start.Add(d)
		start = t.blocks[i].EndTime
	}
	t.normalize()
	return true
}

// BeginDrag starts dragging the block at index
func (t *SectionTimeline) BeginDrag(index int) error {
	if err := t.checkIndex(index); err != nil {
		return err
	}
	t.drag = &dragState{from: index, target: index}
	return nil
}

// UpdateDragTarget moves the drop position of the current drag
func (t *SectionTimeline) UpdateDragTarget(index int) error {
	if t.drag == nil {
		return ErrNoDrag
	}
	if err := t.checkIndex(index); err != nil {
		return err
	}
	t.drag.target = index
	return nil
}

// Dragging reports whether a drag is in progress
func (t *SectionTimeline) Dragging() bool {
	return t.drag != nil
}

// DragPreview returns the visual order while dragging. It is the sorted
// list when no drag is in progress.
func (t *SectionTimeline) DragPreview() []ScheduleBlock {
	blocks := t.Blocks()
	if t.drag == nil || t.drag.from == t.drag.target {
		return blocks
	}
	moved := blocks[t.drag.from]
	blocks = slices.Delete(blocks, t.drag.from, t.drag.from+1)
	return slices.Insert(blocks, t.drag.target, moved)
}

// CommitDrag drops the dragged block at the current target and reports
// whether the drop moved it
func (t *SectionTimeline) CommitDrag() (bool, error) {
	if t.drag == nil {
		return false, ErrNoDrag
	}
	from, to := t.drag.from, t.drag.target
	t.drag = nil
	return t.Reorder(from, to), nil
}

// CancelDrag abandons the current drag
func (t *SectionTimeline) CancelDrag() {
	t.drag = nil
}

// Schedule is the set of section timelines of one event
type Schedule struct {
	eventStart *time.Time
	eventEnd   *time.Time
	order      []string
	sections   map[string]*SectionTimeline
}

// NewSchedule groups the event's blocks by section. Every declared section
// gets a timeline, and so does any area referenced only by blocks.
func NewSchedule(event *Event) *Schedule {
	s := &Schedule{
		eventStart: event.Date,
		eventEnd:   event.EndDate,
		sections:   make(map[string]*SectionTimeline),
	}

	grouped := make(map[string][]ScheduleBlock)
	for _, b := range event.Schedule {
		grouped[b.AreaID] = append(grouped[b.AreaID], b)
	}

	for _, sec := range event.Sections {
		s.add(sec.ID, grouped[sec.ID])
	}
	for _, b := range event.Schedule {
		if _, ok := s.sections[b.AreaID]; !ok {
			s.add(b.AreaID, grouped[b.AreaID])
		}
	}
	return s
}

func (s *Schedule) add(areaID string, blocks []ScheduleBlock) {
	s.sections[areaID] = NewSectionTimeline(areaID, blocks, s.eventStart, s.eventEnd)
	s.order = append(s.order, areaID)
}

// Section returns the timeline for areaID
func (s *Schedule) Section(areaID string) (*SectionTimeline, error) {
	t, ok := s.sections[areaID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSection, areaID)
	}
	return t, nil
}

// SectionIDs returns area ids in section order
func (s *Schedule) SectionIDs() []string {
	return slices.Clone(s.order)
}

// Flatten concatenates all sections in section order
func (s *Schedule) Flatten() []ScheduleBlock {
	out := make([]ScheduleBlock, 0)
	for _, id := range s.order {
		out = append(out, s.sections[id].blocks...)
	}
	return out
}
