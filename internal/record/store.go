// Package record holds the authoritative structured store of vehicle
// maintenance facts. The JSON file on disk is the system of record; the
// event index in the knowledge store is a rebuildable projection of it.
package record

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/user/copilot/internal/types"
)

// Store is a JSON-file-backed ServiceRecord store. A single mutex serializes
// all read-modify-write sequences; writes go through a temp file + rename so
// a crash never leaves a half-written record.
type Store struct {
	path string
	seed types.OilChange
	mu   sync.Mutex
}

// NewStore creates a Store at the given file path. seed is the oil-change
// baseline used when no persisted record exists yet.
func NewStore(path string, seed types.OilChange) *Store {
	return &Store{path: path, seed: seed}
}

// load reads the record from disk, returning the seeded default when the
// file does not exist. Caller must hold the mutex.
func (s *Store) load() (*types.ServiceRecord, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return &types.ServiceRecord{OilChange: s.seed}, nil
		}
		return nil, fmt.Errorf("read service record: %w", err)
	}

	var rec types.ServiceRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal service record: %w", err)
	}
	return &rec, nil
}

// save writes the record atomically. Caller must hold the mutex.
func (s *Store) save(rec *types.ServiceRecord) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal service record: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create record dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write temp record: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename temp record: %w", err)
	}
	return nil
}

// Snapshot returns a copy of the current record.
func (s *Store) Snapshot(_ context.Context) (*types.ServiceRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load()
	if err != nil {
		return nil, err
	}

	out := &types.ServiceRecord{
		OilChange: rec.OilChange,
		History:   make([]types.ServiceEvent, len(rec.History)),
	}
	copy(out.History, rec.History)
	return out, nil
}

// AppendEvent adds a history entry with a fresh ID and the current date,
// persists the record, and returns the stored event.
func (s *Store) AppendEvent(_ context.Context, work string, mileage int) (*types.ServiceEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load()
	if err != nil {
		return nil, err
	}

	ev := types.ServiceEvent{
		ID:      types.NewEventID(),
		Date:    time.Now(),
		Work:    work,
		Mileage: mileage,
	}
	rec.History = append(rec.History, ev)

	if err := s.save(rec); err != nil {
		return nil, err
	}
	return &ev, nil
}

// PopLastEvent removes and returns the most recent history entry. Returns
// (nil, nil) when the history is empty; the record is left untouched.
func (s *Store) PopLastEvent(_ context.Context) (*types.ServiceEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load()
	if err != nil {
		return nil, err
	}

	if len(rec.History) == 0 {
		return nil, nil
	}

	ev := rec.History[len(rec.History)-1]
	rec.History = rec.History[:len(rec.History)-1]

	if err := s.save(rec); err != nil {
		return nil, err
	}
	return &ev, nil
}

// ConfirmOilChange overwrites the oil baseline in place.
func (s *Store) ConfirmOilChange(_ context.Context, mileage int, date time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, err := s.load()
	if err != nil {
		return err
	}

	rec.OilChange = types.OilChange{Mileage: mileage, Date: date}
	return s.save(rec)
}

var _ types.RecordStore = (*Store)(nil)
