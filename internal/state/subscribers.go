package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/user/copilot/internal/types"
)

// SubscriberStore persists the set of briefing recipients as a JSON file.
type SubscriberStore struct {
	mu   sync.Mutex
	path string
}

// NewSubscriberStore creates a store backed by path.
func NewSubscriberStore(path string) *SubscriberStore {
	return &SubscriberStore{path: path}
}

func (s *SubscriberStore) load() ([]types.RecipientID, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read subscribers: %w", err)
	}

	var subs []types.RecipientID
	if err := json.Unmarshal(data, &subs); err != nil {
		return nil, fmt.Errorf("parse subscribers: %w", err)
	}
	return subs, nil
}

func (s *SubscriberStore) save(subs []types.RecipientID) error {
	data, err := json.MarshalIndent(subs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal subscribers: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write subscribers: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename subscribers: %w", err)
	}
	return nil
}

// Add registers a recipient. Returns true if it was newly added, false if it
// was already subscribed.
func (s *SubscriberStore) Add(recipient types.RecipientID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	subs, err := s.load()
	if err != nil {
		return false, err
	}
	for _, sub := range subs {
		if sub == recipient {
			return false, nil
		}
	}

	subs = append(subs, recipient)
	if err := s.save(subs); err != nil {
		return false, err
	}
	return true, nil
}

// List returns every subscribed recipient.
func (s *SubscriberStore) List() ([]types.RecipientID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}
