package skills

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/user/copilot/internal/record"
	"github.com/user/copilot/internal/types"
)

// fakeIndex records index mutations in memory.
type fakeIndex struct {
	mu      sync.Mutex
	failing bool
	docs    map[types.EventID]string
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{docs: make(map[types.EventID]string)}
}

func (f *fakeIndex) AddEvent(_ context.Context, id types.EventID, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("index unavailable")
	}
	f.docs[id] = text
	return nil
}

func (f *fakeIndex) RemoveEvent(_ context.Context, id types.EventID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("index unavailable")
	}
	delete(f.docs, id)
	return nil
}

func testRecordStore(t *testing.T) *record.Store {
	t.Helper()
	return record.NewStore(filepath.Join(t.TempDir(), "record.json"), types.OilChange{
		Mileage: 145000,
		Date:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
}

func TestLogEvent(t *testing.T) {
	store := testRecordStore(t)
	index := newFakeIndex()
	skill := NewLogEvent(store, index, 150000)
	ctx := context.Background()

	result, err := skill.Execute(ctx, json.RawMessage(`{"work": "replaced front brake pads", "mileage": 149500}`))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result, "replaced front brake pads") || !strings.Contains(result, "149500") {
		t.Errorf("unexpected result: %q", result)
	}

	rec, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.History) != 1 {
		t.Fatalf("expected 1 history entry, got %d", len(rec.History))
	}
	if len(index.docs) != 1 {
		t.Fatalf("expected 1 index document, got %d", len(index.docs))
	}
	// Record and index share the event ID.
	if _, ok := index.docs[rec.History[0].ID]; !ok {
		t.Error("expected index document keyed by the event ID")
	}
}

func TestLogEventMileageFallback(t *testing.T) {
	store := testRecordStore(t)
	skill := NewLogEvent(store, newFakeIndex(), 150000)

	result, err := skill.Execute(context.Background(), json.RawMessage(`{"work": "topped up coolant"}`))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result, "150000") {
		t.Errorf("expected fallback mileage in result, got %q", result)
	}
}

func TestLogEventSurvivesIndexFailure(t *testing.T) {
	store := testRecordStore(t)
	index := newFakeIndex()
	index.failing = true
	skill := NewLogEvent(store, index, 150000)
	ctx := context.Background()

	result, err := skill.Execute(ctx, json.RawMessage(`{"work": "rotated tires"}`))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result, "Logged:") {
		t.Errorf("expected success despite index failure, got %q", result)
	}

	rec, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.History) != 1 {
		t.Errorf("expected record write to stand, got %d entries", len(rec.History))
	}
}

func TestLogEventMissingWork(t *testing.T) {
	skill := NewLogEvent(testRecordStore(t), newFakeIndex(), 150000)
	if _, err := skill.Execute(context.Background(), json.RawMessage(`{}`)); err == nil {
		t.Fatal("expected error for missing work argument")
	}
}

func TestUndoEvent(t *testing.T) {
	store := testRecordStore(t)
	index := newFakeIndex()
	ctx := context.Background()

	logSkill := NewLogEvent(store, index, 150000)
	if _, err := logSkill.Execute(ctx, json.RawMessage(`{"work": "changed wipers"}`)); err != nil {
		t.Fatal(err)
	}

	result, err := NewUndoEvent(store, index).Execute(ctx, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result, "changed wipers") {
		t.Errorf("expected removed work in result, got %q", result)
	}

	rec, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(rec.History) != 0 {
		t.Errorf("expected empty history, got %d entries", len(rec.History))
	}
	if len(index.docs) != 0 {
		t.Errorf("expected index document removed, got %d", len(index.docs))
	}
}

func TestUndoEventEmptyHistory(t *testing.T) {
	result, err := NewUndoEvent(testRecordStore(t), newFakeIndex()).Execute(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result, "Nothing to remove") {
		t.Errorf("expected nothing-to-remove message, got %q", result)
	}
}

func TestConfirmOilChange(t *testing.T) {
	store := testRecordStore(t)
	skill := NewConfirmOilChange(store, 150000, 10000)
	ctx := context.Background()

	result, err := skill.Execute(ctx, json.RawMessage(`{"mileage": 152000, "date": "2025-06-01"}`))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result, "152000") || !strings.Contains(result, "2025-06-01") {
		t.Errorf("unexpected result: %q", result)
	}
	// Next due = mileage + interval.
	if !strings.Contains(result, "162000") {
		t.Errorf("expected next-due mileage, got %q", result)
	}

	rec, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rec.OilChange.Mileage != 152000 {
		t.Errorf("expected baseline updated to 152000, got %d", rec.OilChange.Mileage)
	}
}

func TestConfirmOilChangeDefaults(t *testing.T) {
	store := testRecordStore(t)
	skill := NewConfirmOilChange(store, 150000, 10000)
	ctx := context.Background()

	result, err := skill.Execute(ctx, json.RawMessage(`{}`))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(result, "150000") {
		t.Errorf("expected fallback mileage, got %q", result)
	}

	rec, err := store.Snapshot(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if rec.OilChange.Mileage != 150000 {
		t.Errorf("expected fallback baseline, got %d", rec.OilChange.Mileage)
	}
}

func TestConfirmOilChangeBadDate(t *testing.T) {
	skill := NewConfirmOilChange(testRecordStore(t), 150000, 10000)
	if _, err := skill.Execute(context.Background(), json.RawMessage(`{"date": "June 1st"}`)); err == nil {
		t.Fatal("expected error for unparseable date")
	}
}
