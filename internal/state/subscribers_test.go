package state

import (
	"path/filepath"
	"testing"

	"github.com/user/copilot/internal/types"
)

func TestSubscriberAddAndList(t *testing.T) {
	store := NewSubscriberStore(filepath.Join(t.TempDir(), "subscribers.json"))

	added, err := store.Add("telegram:42")
	if err != nil {
		t.Fatal(err)
	}
	if !added {
		t.Error("expected first Add to report newly added")
	}

	added, err = store.Add("telegram:42")
	if err != nil {
		t.Fatal(err)
	}
	if added {
		t.Error("expected duplicate Add to report already subscribed")
	}

	subs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 1 || subs[0] != types.RecipientID("telegram:42") {
		t.Errorf("unexpected subscriber list: %v", subs)
	}
}

func TestSubscriberPersistence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "subscribers.json")

	first := NewSubscriberStore(path)
	if _, err := first.Add("telegram:1"); err != nil {
		t.Fatal(err)
	}
	if _, err := first.Add("telegram:2"); err != nil {
		t.Fatal(err)
	}

	second := NewSubscriberStore(path)
	subs, err := second.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 2 {
		t.Errorf("expected 2 persisted subscribers, got %d", len(subs))
	}
}

func TestSubscriberListEmpty(t *testing.T) {
	store := NewSubscriberStore(filepath.Join(t.TempDir(), "subscribers.json"))
	subs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 0 {
		t.Errorf("expected no subscribers, got %v", subs)
	}
}
