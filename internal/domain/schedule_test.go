package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

var (
	evStart = time.Date(2025, 7, 4, 9, 0, 0, 0, time.UTC)
	evEnd   = time.Date(2025, 7, 4, 17, 0, 0, 0, time.UTC)
)

func block(id string, startMin, endMin int) ScheduleBlock {
	return ScheduleBlock{
		ID:        id,
		Title:     "Block " + id,
		StartTime: evStart.Add(time.Duration(startMin) * time.Minute),
		EndTime:   evStart.Add(time.Duration(endMin) * time.Minute),
	}
}

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}
}

func newTimeline(blocks ...ScheduleBlock) *SectionTimeline {
	tl := NewSectionTimeline("main", blocks, ptr(evStart), ptr(evEnd))
	tl.newID = sequentialIDs()
	return tl
}

func assertSorted(t *testing.T, blocks []ScheduleBlock) {
	t.Helper()
	for i := 1; i < len(blocks); i++ {
		if blocks[i].StartTime.Before(blocks[i-1].StartTime) {
			t.Fatalf("blocks not sorted at %d: %v before %v", i, blocks[i].StartTime, blocks[i-1].StartTime)
		}
	}
}

func TestNewSectionTimeline_SortsAndStampsArea(t *testing.T) {
	tl := newTimeline(block("b", 60, 120), block("a", 0, 60))

	blocks := tl.Blocks()
	if blocks[0].ID != "a" || blocks[1].ID != "b" {
		t.Errorf("order = %s,%s; want a,b", blocks[0].ID, blocks[1].ID)
	}
	for _, b := range blocks {
		if b.AreaID != "main" {
			t.Errorf("block %s AreaID = %q, want main", b.ID, b.AreaID)
		}
	}
}

func TestSectionTimeline_Seeding(t *testing.T) {
	tl := NewSectionTimeline("main", nil, ptr(evStart), ptr(evEnd))
	blocks := tl.Blocks()
	if len(blocks) != 1 {
		t.Fatalf("len = %d, want 1 seeded block", len(blocks))
	}
	b := blocks[0]
	if b.Title != DefaultBlockTitle || !b.StartTime.Equal(evStart) || !b.EndTime.Equal(evEnd) || b.ID == "" {
		t.Errorf("seeded block = %+v", b)
	}

	t.Run("no seeding without both dates", func(t *testing.T) {
		if n := NewSectionTimeline("main", nil, ptr(evStart), nil).Len(); n != 0 {
			t.Errorf("len = %d, want 0", n)
		}
	})

	t.Run("deleting the last block re-seeds", func(t *testing.T) {
		tl := newTimeline(block("only", 0, 30))
		if err := tl.Delete("only"); err != nil {
			t.Fatal(err)
		}
		blocks := tl.Blocks()
		if len(blocks) != 1 || blocks[0].Title != DefaultBlockTitle || blocks[0].ID == "only" {
			t.Errorf("blocks after delete = %+v", blocks)
		}
	})
}

func TestSectionTimeline_Retime(t *testing.T) {
	t.Run("start cascades to previous end", func(t *testing.T) {
		tl := newTimeline(block("a", 0, 60), block("b", 60, 120), block("c", 120, 180))
		if err := tl.Retime(1, TimeFieldStart, TimeOfDay{Hour: 10, Minute: 15}); err != nil {
			t.Fatal(err)
		}
		blocks := tl.Blocks()
		want := time.Date(2025, 7, 4, 10, 15, 0, 0, time.UTC)
		if !blocks[1].StartTime.Equal(want) || !blocks[0].EndTime.Equal(want) {
			t.Errorf("b.start = %v, a.end = %v, want %v", blocks[1].StartTime, blocks[0].EndTime, want)
		}
		if !blocks[2].StartTime.Equal(evStart.Add(120 * time.Minute)) {
			t.Error("next block must not change on start retime")
		}
	})

	t.Run("end cascades to next start", func(t *testing.T) {
		tl := newTimeline(block("a", 0, 60), block("b", 60, 120), block("c", 120, 180))
		if err := tl.Retime(1, TimeFieldEnd, TimeOfDay{Hour: 11, Minute: 30}); err != nil {
			t.Fatal(err)
		}
		blocks := tl.Blocks()
		want := time.Date(2025, 7, 4, 11, 30, 0, 0, time.UTC)
		if !blocks[1].EndTime.Equal(want) || !blocks[2].StartTime.Equal(want) {
			t.Errorf("b.end = %v, c.start = %v, want %v", blocks[1].EndTime, blocks[2].StartTime, want)
		}
		if !blocks[0].EndTime.Equal(evStart.Add(60 * time.Minute)) {
			t.Error("previous block must not change on end retime")
		}
	})

	t.Run("first block start has no previous", func(t *testing.T) {
		tl := newTimeline(block("a", 0, 60))
		if err := tl.Retime(0, TimeFieldStart, TimeOfDay{Hour: 8, Minute: 0}); err != nil {
			t.Fatal(err)
		}
		if got := tl.Blocks()[0].StartTime.Hour(); got != 8 {
			t.Errorf("start hour = %d, want 8", got)
		}
	})

	t.Run("keeps date and seconds", func(t *testing.T) {
		b := ScheduleBlock{ID: "s", StartTime: time.Date(2025, 7, 4, 9, 0, 42, 0, time.UTC), EndTime: evEnd}
		tl := newTimeline(b)
		_ = tl.Retime(0, TimeFieldStart, TimeOfDay{Hour: 13, Minute: 5})
		got := tl.Blocks()[0].StartTime
		if !got.Equal(time.Date(2025, 7, 4, 13, 5, 42, 0, time.UTC)) {
			t.Errorf("start = %v", got)
		}
	})

	t.Run("start after end is accepted", func(t *testing.T) {
		tl := newTimeline(block("a", 0, 60))
		if err := tl.Retime(0, TimeFieldStart, TimeOfDay{Hour: 16, Minute: 0}); err != nil {
			t.Errorf("Retime() error = %v, want nil", err)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		tl := newTimeline(block("a", 0, 60))
		if err := tl.Retime(3, TimeFieldStart, TimeOfDay{}); !errors.Is(err, ErrBlockIndex) {
			t.Errorf("error = %v, want ErrBlockIndex", err)
		}
		if err := tl.Retime(0, "middle", TimeOfDay{}); !errors.Is(err, ErrInvalidTimeField) {
			t.Errorf("error = %v, want ErrInvalidTimeField", err)
		}
	})

	t.Run("resorts after retime", func(t *testing.T) {
		tl := newTimeline(block("a", 0, 60), block("b", 60, 120))
		_ = tl.Retime(1, TimeFieldStart, TimeOfDay{Hour: 8, Minute: 0})
		assertSorted(t, tl.Blocks())
	})
}

func TestParseTimeOfDay(t *testing.T) {
	tod, err := ParseTimeOfDay("07:45")
	if err != nil || tod != (TimeOfDay{Hour: 7, Minute: 45}) {
		t.Errorf("ParseTimeOfDay(07:45) = %+v, %v", tod, err)
	}
	for _, bad := range []string{"", "25:00", "7pm", "12:60"} {
		if _, err := ParseTimeOfDay(bad); !errors.Is(err, ErrInvalidTimeOfDay) {
			t.Errorf("ParseTimeOfDay(%q) error = %v", bad, err)
		}
	}
}

func TestSectionTimeline_Split(t *testing.T) {
	tl := newTimeline(block("a", 0, 60))
	if err := tl.Split(0); err != nil {
		t.Fatal(err)
	}

	blocks := tl.Blocks()
	if len(blocks) != 2 {
		t.Fatalf("len = %d, want 2", len(blocks))
	}
	first, second := blocks[0], blocks[1]
	mid := evStart.Add(30 * time.Minute)
	if !first.StartTime.Equal(evStart) || !first.EndTime.Equal(mid) {
		t.Errorf("first = %v..%v", first.StartTime, first.EndTime)
	}
	if !second.StartTime.Equal(mid) || !second.EndTime.Equal(evStart.Add(60*time.Minute)) {
		t.Errorf("second = %v..%v", second.StartTime, second.EndTime)
	}
	if first.Title != second.Title {
		t.Error("halves must share the title")
	}
	if first.ID == second.ID {
		t.Error("halves must have distinct ids")
	}

	t.Run("zero duration is a no-op", func(t *testing.T) {
		tl := newTimeline(block("z", 30, 30), block("n", 40, 50))
		before := tl.Blocks()
		if err := tl.Split(0); err != nil {
			t.Fatal(err)
		}
		after := tl.Blocks()
		if len(after) != len(before) || after[0] != before[0] {
			t.Errorf("blocks changed: %+v", after)
		}
	})

	t.Run("one nanosecond block is a no-op", func(t *testing.T) {
		b := ScheduleBlock{ID: "tiny", StartTime: evStart, EndTime: evStart.Add(time.Nanosecond)}
		tl := newTimeline(b)
		_ = tl.Split(0)
		if tl.Len() != 1 {
			t.Errorf("len = %d, want 1", tl.Len())
		}
	})
}

func TestSectionTimeline_DeleteKeepsGap(t *testing.T) {
	tl := newTimeline(block("a", 0, 60), block("b", 60, 120), block("c", 120, 180))
	if err := tl.Delete("b"); err != nil {
		t.Fatal(err)
	}

	blocks := tl.Blocks()
	if len(blocks) != 2 || blocks[0].ID != "a" || blocks[1].ID != "c" {
		t.Fatalf("blocks = %+v", blocks)
	}
	if !blocks[1].StartTime.Equal(evStart.Add(120 * time.Minute)) {
		t.Error("delete must not re-cascade")
	}
	if err := tl.Delete("missing"); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("error = %v, want ErrBlockNotFound", err)
	}
}

func TestSectionTimeline_Reorder(t *testing.T) {
	// durations 60, 30, 90 with a gap before c
	tl := newTimeline(block("a", 15, 75), block("b", 75, 105), block("c", 200, 290))
	if !tl.Reorder(2, 0) {
		t.Error("Reorder(2,0) reported no move")
	}

	blocks := tl.Blocks()
	wantIDs := []string{"c", "a", "b"}
	wantDur := []time.Duration{90 * time.Minute, 60 * time.Minute, 30 * time.Minute}
	for i, b := range blocks {
		if b.ID != wantIDs[i] {
			t.Errorf("blocks[%d] = %s, want %s", i, b.ID, wantIDs[i])
		}
		if b.Duration() != wantDur[i] {
			t.Errorf("blocks[%d] duration = %v, want %v", i, b.Duration(), wantDur[i])
		}
	}
	if !blocks[0].StartTime.Equal(evStart) {
		t.Errorf("first start = %v, want event start %v", blocks[0].StartTime, evStart)
	}
	for i := 0; i+1 < len(blocks); i++ {
		if !blocks[i+1].StartTime.Equal(blocks[i].EndTime) {
			t.Errorf("gap between %d and %d", i, i+1)
		}
	}

	t.Run("same index is a no-op", func(t *testing.T) {
		tl := newTimeline(block("a", 15, 75), block("b", 100, 130))
		before := tl.Blocks()
		if tl.Reorder(1, 1) {
			t.Error("Reorder(1,1) reported a move")
		}
		if after := tl.Blocks(); after[0] != before[0] || after[1] != before[1] {
			t.Error("Reorder(1,1) changed blocks")
		}
	})

	t.Run("out of range is a no-op", func(t *testing.T) {
		tl := newTimeline(block("a", 15, 75))
		if tl.Reorder(0, 5) {
			t.Error("Reorder(0,5) reported a move")
		}
		if !tl.Blocks()[0].StartTime.Equal(evStart.Add(15 * time.Minute)) {
			t.Error("Reorder out of range changed blocks")
		}
	})

	t.Run("without event start uses first block start", func(t *testing.T) {
		tl := NewSectionTimeline("main", []ScheduleBlock{block("a", 15, 75), block("b", 80, 90)}, nil, nil)
		tl.Reorder(0, 1)
		blocks := tl.Blocks()
		if blocks[0].ID != "b" || !blocks[0].StartTime.Equal(evStart.Add(15*time.Minute)) {
			t.Errorf("blocks = %+v", blocks)
		}
	})
}

func TestSectionTimeline_DragProtocol(t *testing.T) {
	tl := newTimeline(block("a", 0, 60), block("b", 60, 90), block("c", 90, 120))

	if _, err := tl.CommitDrag(); !errors.Is(err, ErrNoDrag) {
		t.Errorf("CommitDrag() without drag error = %v", err)
	}
	if err := tl.UpdateDragTarget(1); !errors.Is(err, ErrNoDrag) {
		t.Errorf("UpdateDragTarget() without drag error = %v", err)
	}

	if err := tl.BeginDrag(0); err != nil {
		t.Fatal(err)
	}
	if err := tl.UpdateDragTarget(2); err != nil {
		t.Fatal(err)
	}
	preview := tl.DragPreview()
	if preview[2].ID != "a" {
		t.Errorf("preview = %s,%s,%s", preview[0].ID, preview[1].ID, preview[2].ID)
	}
	if tl.Blocks()[0].ID != "a" {
		t.Error("canonical order must not change before commit")
	}

	moved, err := tl.CommitDrag()
	if err != nil {
		t.Fatal(err)
	}
	if !moved {
		t.Error("CommitDrag() reported no move")
	}
	if tl.Dragging() {
		t.Error("drag should end on commit")
	}
	blocks := tl.Blocks()
	if blocks[0].ID != "b" || blocks[2].ID != "a" || !blocks[0].StartTime.Equal(evStart) {
		t.Errorf("blocks after commit = %+v", blocks)
	}

	t.Run("drop onto self is a no-op", func(t *testing.T) {
		tl := newTimeline(block("a", 10, 60), block("b", 60, 90))
		_ = tl.BeginDrag(1)
		if moved, _ := tl.CommitDrag(); moved {
			t.Error("drop onto self reported a move")
		}
		if !tl.Blocks()[0].StartTime.Equal(evStart.Add(10 * time.Minute)) {
			t.Error("drop onto self changed times")
		}
	})

	t.Run("cancel", func(t *testing.T) {
		tl := newTimeline(block("a", 0, 60), block("b", 60, 90))
		_ = tl.BeginDrag(0)
		_ = tl.UpdateDragTarget(1)
		tl.CancelDrag()
		if tl.Dragging() || tl.Blocks()[0].ID != "a" {
			t.Error("cancel must discard the drag")
		}
	})
}

func TestSectionTimeline_Replace(t *testing.T) {
	tl := newTimeline(block("a", 0, 60))
	tl.Replace([]ScheduleBlock{block("y", 60, 90), block("x", 0, 60)})

	blocks := tl.Blocks()
	if len(blocks) != 2 || blocks[0].ID != "x" || blocks[1].AreaID != "main" {
		t.Errorf("blocks = %+v", blocks)
	}

	tl.Replace(nil)
	if blocks := tl.Blocks(); len(blocks) != 1 || blocks[0].Title != DefaultBlockTitle {
		t.Errorf("empty replace should re-seed, got %+v", blocks)
	}
}

func TestSectionTimeline_Retitle(t *testing.T) {
	tl := newTimeline(block("a", 0, 60))
	if err := tl.Retitle(0, "Keynote"); err != nil {
		t.Fatal(err)
	}
	if tl.Blocks()[0].Title != "Keynote" {
		t.Error("title not updated")
	}
	if err := tl.Retitle(-1, "x"); !errors.Is(err, ErrBlockIndex) {
		t.Errorf("error = %v", err)
	}
}

func TestNewSchedule(t *testing.T) {
	event := &Event{
		Date:     ptr(evStart),
		EndDate:  ptr(evEnd),
		Sections: []Section{{ID: "stage", Name: "Main stage"}, {ID: "hall", Name: "Hall"}},
		Schedule: []ScheduleBlock{
			{ID: "s2", AreaID: "stage", StartTime: evStart.Add(time.Hour), EndTime: evStart.Add(2 * time.Hour)},
			{ID: "s1", AreaID: "stage", StartTime: evStart, EndTime: evStart.Add(time.Hour)},
			{ID: "o1", AreaID: "orphan", StartTime: evStart, EndTime: evStart.Add(time.Hour)},
		},
	}

	s := NewSchedule(event)
	ids := s.SectionIDs()
	if len(ids) != 3 || ids[0] != "stage" || ids[1] != "hall" || ids[2] != "orphan" {
		t.Fatalf("SectionIDs() = %v", ids)
	}

	hall, err := s.Section("hall")
	if err != nil || hall.Len() != 1 || hall.Blocks()[0].Title != DefaultBlockTitle {
		t.Errorf("hall should be seeded, got %v %v", hall, err)
	}

	if _, err := s.Section("nope"); !errors.Is(err, ErrUnknownSection) {
		t.Errorf("error = %v, want ErrUnknownSection", err)
	}

	flat := s.Flatten()
	if len(flat) != 4 || flat[0].ID != "s1" || flat[1].ID != "s2" || flat[2].AreaID != "hall" || flat[3].ID != "o1" {
		t.Errorf("Flatten() = %+v", flat)
	}
}
