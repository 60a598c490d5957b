package gateway

import (
	"context"
	"time"

	"github.com/user/copilot/internal/types"
)

// RunStatus represents the lifecycle state of a Run.
type RunStatus string

const (
	RunStatusQueued   RunStatus = "queued"
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run tracks a single execution of an inbound message for a user.
type Run struct {
	ID         types.RunID
	UserID     types.UserID
	Message    *types.InboundMessage
	Status     RunStatus
	Attempts   int
	CreatedAt  time.Time
	StartedAt  *time.Time
	EndedAt    *time.Time
	Error      error
	Ctx        context.Context
	OnComplete func(response string)
}

// NewRun creates a Run in the Queued state for the given user and message.
func NewRun(userID types.UserID, msg *types.InboundMessage) *Run {
	return &Run{
		ID:        types.NewRunID(),
		UserID:    userID,
		Message:   msg,
		Status:    RunStatusQueued,
		CreatedAt: time.Now(),
	}
}
