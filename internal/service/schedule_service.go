package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/prohmpiriya/event-storefront/internal/client"
	"github.com/prohmpiriya/event-storefront/internal/domain"
	"github.com/prohmpiriya/event-storefront/internal/dto"
	"github.com/prohmpiriya/event-storefront/pkg/logger"
	"github.com/prohmpiriya/event-storefront/pkg/middleware"
	"github.com/prohmpiriya/event-storefront/pkg/telemetry"
	"go.uber.org/zap"
)

// ScheduleEditor is the unsaved schedule state of one event for one user
type ScheduleEditor struct {
	mu       sync.Mutex
	event    *domain.Event
	schedule *domain.Schedule
	version  uint64
	saved    uint64
}

func newScheduleEditor(event *domain.Event) *ScheduleEditor {
	ev := *event
	return &ScheduleEditor{event: &ev, schedule: domain.NewSchedule(&ev)}
}

func (e *ScheduleEditor) render() *dto.ScheduleResponse {
	return dto.NewScheduleResponse(e.event.ID, e.event.Sections, e.schedule, e.version != e.saved)
}

// mutate runs fn on a section. The version is bumped when fn reports a
// change to the blocks.
func (e *ScheduleEditor) mutate(areaID string, fn func(tl *domain.SectionTimeline) (bool, error)) (*dto.ScheduleResponse, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	tl, err := e.schedule.Section(areaID)
	if err != nil {
		return nil, err
	}
	changed, err := fn(tl)
	if err != nil {
		return nil, err
	}
	if changed {
		e.version++
	}
	return e.render(), nil
}

// ScheduleServiceConfig holds the collaborators of the schedule service
type ScheduleServiceConfig struct {
	API     client.EventAPI
	Logger  *logger.Logger
	IdleTTL time.Duration
}

var _ ScheduleService = (*ScheduleServiceImpl)(nil)

// ScheduleServiceImpl implements ScheduleService with in-memory editors
type ScheduleServiceImpl struct {
	api     client.EventAPI
	editors *Registry[*ScheduleEditor]
	saves   *telemetry.Counter
	log     *logger.Logger
}

// NewScheduleService creates a ScheduleService
func NewScheduleService(cfg *ScheduleServiceConfig) *ScheduleServiceImpl {
	log := cfg.Logger
	if log == nil {
		log = logger.NewNop()
	}
	saves, _ := telemetry.NewCounter(telemetry.MetricOpts{
		Name:        "storefront_schedule_saves_total",
		Description: "Schedule saves by result",
		Unit:        "{save}",
	})
	return &ScheduleServiceImpl{
		api:     cfg.API,
		editors: NewRegistry[*ScheduleEditor](cfg.IdleTTL),
		saves:   saves,
		log:     log,
	}
}

// Editors exposes the editor registry for the cleanup loop
func (s *ScheduleServiceImpl) Editors() *Registry[*ScheduleEditor] {
	return s.editors
}

func (s *ScheduleServiceImpl) editor(ctx context.Context, key EditorKey) (*ScheduleEditor, error) {
	ed, err := s.editors.GetOrCreate(key.String(), func() (*ScheduleEditor, error) {
		event, err := s.api.GetEvent(ctx, key.EventID)
		if err != nil {
			return nil, fmt.Errorf("failed to load event %s: %w", key.EventID, err)
		}
		return newScheduleEditor(event), nil
	})
	if err != nil {
		return nil, err
	}

	// Organizers may only edit their own events
	if key.Role != middleware.RoleAdmin && ed.event.OwnerID != "" && ed.event.OwnerID != key.UserID {
		return nil, ErrNotEventOwner
	}
	return ed, nil
}

func (s *ScheduleServiceImpl) mutate(ctx context.Context, key EditorKey, areaID string, fn func(tl *domain.SectionTimeline) error) (*dto.ScheduleResponse, error) {
	ed, err := s.editor(ctx, key)
	if err != nil {
		return nil, err
	}
	return ed.mutate(areaID, func(tl *domain.SectionTimeline) (bool, error) {
		return true, fn(tl)
	})
}

// Get returns the editor state
func (s *ScheduleServiceImpl) Get(ctx context.Context, key EditorKey) (*dto.ScheduleResponse, error) {
	ed, err := s.editor(ctx, key)
	if err != nil {
		return nil, err
	}
	ed.mu.Lock()
	defer ed.mu.Unlock()
	return ed.render(), nil
}

// ReplaceSection swaps the block list of a section
func (s *ScheduleServiceImpl) ReplaceSection(ctx context.Context, key EditorKey, areaID string, req *dto.ReplaceSectionRequest) (*dto.ScheduleResponse, error) {
	return s.mutate(ctx, key, areaID, func(tl *domain.SectionTimeline) error {
		tl.Replace(req.ToBlocks(areaID))
		return nil
	})
}

// UpdateBlock applies title, start and end edits in that order
func (s *ScheduleServiceImpl) UpdateBlock(ctx context.Context, key EditorKey, areaID string, index int, req *dto.UpdateBlockRequest) (*dto.ScheduleResponse, error) {
	var start, end *domain.TimeOfDay
	for _, f := range []struct {
		raw *string
		dst **domain.TimeOfDay
	}{{req.Start, &start}, {req.End, &end}} {
		if f.raw == nil {
			continue
		}
		tod, err := domain.ParseTimeOfDay(*f.raw)
		if err != nil {
			return nil, err
		}
		*f.dst = &tod
	}

	return s.mutate(ctx, key, areaID, func(tl *domain.SectionTimeline) error {
		if index < 0 || index >= tl.Len() {
			return fmt.Errorf("%w: %d", domain.ErrBlockIndex, index)
		}
		if req.Title != nil {
			if err := tl.Retitle(index, *req.Title); err != nil {
				return err
			}
		}
		if start != nil {
			id := tl.Blocks()[index].ID
			if err := tl.Retime(index, domain.TimeFieldStart, *start); err != nil {
				return err
			}
			// a new start can re-sort the section
			index = tl.IndexOf(id)
		}
		if end != nil {
			if err := tl.Retime(index, domain.TimeFieldEnd, *end); err != nil {
				return err
			}
		}
		return nil
	})
}

// SplitBlock splits one block in half
func (s *ScheduleServiceImpl) SplitBlock(ctx context.Context, key EditorKey, areaID string, index int) (*dto.ScheduleResponse, error) {
	return s.mutate(ctx, key, areaID, func(tl *domain.SectionTimeline) error {
		return tl.Split(index)
	})
}

// DeleteBlock removes one block
func (s *ScheduleServiceImpl) DeleteBlock(ctx context.Context, key EditorKey, areaID, blockID string) (*dto.ScheduleResponse, error) {
	return s.mutate(ctx, key, areaID, func(tl *domain.SectionTimeline) error {
		return tl.Delete(blockID)
	})
}

// Reorder moves a block and re-times the section
func (s *ScheduleServiceImpl) Reorder(ctx context.Context, key EditorKey, areaID string, req *dto.ReorderRequest) (*dto.ScheduleResponse, error) {
	ed, err := s.editor(ctx, key)
	if err != nil {
		return nil, err
	}
	return ed.mutate(areaID, func(tl *domain.SectionTimeline) (bool, error) {
		return tl.Reorder(*req.From, *req.To), nil
	})
}

// Drag runs one step of the drag protocol
func (s *ScheduleServiceImpl) Drag(ctx context.Context, key EditorKey, areaID string, req *dto.DragRequest) (*dto.ScheduleResponse, error) {
	ed, err := s.editor(ctx, key)
	if err != nil {
		return nil, err
	}
	return ed.mutate(areaID, func(tl *domain.SectionTimeline) (bool, error) {
		switch req.Action {
		case dto.DragBegin:
			return false, tl.BeginDrag(req.Index)
		case dto.DragUpdate:
			return false, tl.UpdateDragTarget(req.Index)
		case dto.DragCommit:
			return tl.CommitDrag()
		case dto.DragCancel:
			tl.CancelDrag()
			return false, nil
		default:
			return false, fmt.Errorf("unknown drag action %q", req.Action)
		}
	})
}

// Save sends every section to the event API. On failure the editor keeps
// its state so the save can be retried.
func (s *ScheduleServiceImpl) Save(ctx context.Context, key EditorKey, authToken string) (*dto.ScheduleResponse, error) {
	ctx, span := telemetry.StartSpan(ctx, "service.schedule.save")
	defer span.End()

	ed, err := s.editor(ctx, key)
	if err != nil {
		telemetry.FailSpan(span, err)
		return nil, err
	}

	ed.mu.Lock()
	blocks := ed.schedule.Flatten()
	version := ed.version
	ed.mu.Unlock()

	_, err = s.api.UpdateEvent(ctx, key.UserID, key.EventID, &client.EventUpdate{Schedule: blocks}, authToken)
	if err != nil {
		s.saves.Inc(ctx, telemetry.ResultAttr("error"))
		s.log.ErrorContext(ctx, "schedule save failed",
			zap.String("event_id", key.EventID), zap.String("user_id", key.UserID), zap.Error(err))
		telemetry.FailSpan(span, err)
		return nil, errors.Join(ErrScheduleSaveFailed, err)
	}
	s.saves.Inc(ctx, telemetry.ResultAttr("success"))
	s.log.InfoContext(ctx, "schedule saved",
		zap.String("event_id", key.EventID), zap.Int("blocks", len(blocks)))

	ed.mu.Lock()
	defer ed.mu.Unlock()
	ed.event.Schedule = blocks
	if ed.saved < version {
		ed.saved = version
	}
	return ed.render(), nil
}
