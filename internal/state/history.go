// Package state holds the daemon's mutable in-memory and on-disk state that
// is not the service record: conversation history and briefing subscribers.
package state

import (
	"sync"

	"github.com/user/copilot/pkg/llm"

	"github.com/user/copilot/internal/types"
)

// HistoryStore keeps a bounded per-user window of conversation messages.
// History lives in memory only; a restart starts every conversation fresh.
type HistoryStore struct {
	mu    sync.Mutex
	limit int
	turns map[types.UserID][]llm.Message
}

// NewHistoryStore creates a store keeping at most limit messages per user.
func NewHistoryStore(limit int) *HistoryStore {
	return &HistoryStore{limit: limit, turns: make(map[types.UserID][]llm.Message)}
}

// Tail returns a copy of the user's current window.
func (h *HistoryStore) Tail(userID types.UserID) []llm.Message {
	h.mu.Lock()
	defer h.mu.Unlock()

	window := h.turns[userID]
	out := make([]llm.Message, len(window))
	copy(out, window)
	return out
}

// Extend appends a completed turn's messages and re-truncates the window.
// Truncation never leaves the window starting on a tool result or on an
// assistant message that requested tools: those only make sense after the
// message that preceded them, so the start advances past them.
func (h *HistoryStore) Extend(userID types.UserID, messages ...llm.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()

	window := append(h.turns[userID], messages...)
	if len(window) > h.limit {
		window = window[len(window)-h.limit:]
	}
	for len(window) > 0 && orphaned(window[0]) {
		window = window[1:]
	}
	h.turns[userID] = window
}

func orphaned(msg llm.Message) bool {
	if msg.Role == "tool" {
		return true
	}
	return msg.Role == "assistant" && len(msg.Tools) > 0
}
