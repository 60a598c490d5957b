// internal/types/ids.go
package types

import (
	"strings"

	"github.com/google/uuid"
)

type UserID string
type RunID string
type EventID string
type RecipientID string

func NewRunID() RunID {
	return RunID(uuid.New().String())
}

func NewEventID() EventID {
	return EventID(uuid.New().String())
}

// NewRecipientID joins a channel name and a channel-specific address into a
// routable recipient key, e.g. "telegram:123456".
func NewRecipientID(parts ...string) RecipientID {
	return RecipientID(strings.Join(parts, ":"))
}
