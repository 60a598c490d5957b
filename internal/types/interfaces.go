// internal/types/interfaces.go
package types

import (
	"context"
	"time"
)

// RecordStore is the guarded read-modify-write interface over the
// ServiceRecord. Implementations must serialize concurrent mutations.
type RecordStore interface {
	Snapshot(ctx context.Context) (*ServiceRecord, error)
	AppendEvent(ctx context.Context, work string, mileage int) (*ServiceEvent, error)
	PopLastEvent(ctx context.Context) (*ServiceEvent, error)
	ConfirmOilChange(ctx context.Context, mileage int, date time.Time) error
}

// EventIndex is the search projection over logged service events. The
// structured record stays authoritative: callers tolerate index failures by
// logging and continuing.
type EventIndex interface {
	AddEvent(ctx context.Context, id EventID, text string) error
	RemoveEvent(ctx context.Context, id EventID) error
}
