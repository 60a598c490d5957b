package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/copilot/internal/types"
)

// LogEvent appends a maintenance event to the record and mirrors it into the
// event index. The record write is the authoritative one: an index failure
// is logged and the event still counts as logged.
type LogEvent struct {
	record          types.RecordStore
	index           types.EventIndex
	fallbackMileage int
}

// NewLogEvent creates the event-logging skill.
func NewLogEvent(record types.RecordStore, index types.EventIndex, fallbackMileage int) *LogEvent {
	return &LogEvent{record: record, index: index, fallbackMileage: fallbackMileage}
}

func (l *LogEvent) Name() string { return "log_car_event" }
func (l *LogEvent) Description() string {
	return "Record maintenance or repair work the driver did on the car"
}
func (l *LogEvent) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"work": {"type": "string", "description": "What was done, e.g. replaced front brake pads"},
			"mileage": {"type": "integer", "description": "Odometer reading in km; omit if unknown"}
		},
		"required": ["work"]
	}`)
}

func (l *LogEvent) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Work    string `json:"work"`
		Mileage int    `json:"mileage"`
	}
	if err := json.Unmarshal(args, &params); err != nil {
		return "", fmt.Errorf("parse args: %w", err)
	}
	if params.Work == "" {
		return "", fmt.Errorf("work is required")
	}
	if params.Mileage <= 0 {
		params.Mileage = l.fallbackMileage
	}

	ev, err := l.record.AppendEvent(ctx, params.Work, params.Mileage)
	if err != nil {
		return "", fmt.Errorf("append event: %w", err)
	}
	if err := l.index.AddEvent(ctx, ev.ID, ev.Document()); err != nil {
		slog.Warn("event logged but not indexed", "event_id", string(ev.ID), "error", err)
	}
	return fmt.Sprintf("Logged: %s at %d km on %s.", ev.Work, ev.Mileage, ev.Date.Format("2006-01-02")), nil
}

// UndoEvent removes the most recent history entry and its index document.
type UndoEvent struct {
	record types.RecordStore
	index  types.EventIndex
}

// NewUndoEvent creates the undo skill.
func NewUndoEvent(record types.RecordStore, index types.EventIndex) *UndoEvent {
	return &UndoEvent{record: record, index: index}
}

func (u *UndoEvent) Name() string { return "remove_last_event" }
func (u *UndoEvent) Description() string {
	return "Remove the most recently logged maintenance event, for fixing mistakes"
}
func (u *UndoEvent) Parameters() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (u *UndoEvent) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	ev, err := u.record.PopLastEvent(ctx)
	if err != nil {
		return "", fmt.Errorf("pop last event: %w", err)
	}
	if ev == nil {
		return "Nothing to remove: the service history is empty.", nil
	}
	if err := u.index.RemoveEvent(ctx, ev.ID); err != nil {
		slog.Warn("event removed but index document remains", "event_id", string(ev.ID), "error", err)
	}
	return fmt.Sprintf("Removed the last event: %s (%d km, %s).", ev.Work, ev.Mileage, ev.Date.Format("2006-01-02")), nil
}

// ConfirmOilChange overwrites the oil-change baseline.
type ConfirmOilChange struct {
	record          types.RecordStore
	fallbackMileage int
	intervalKM      int
}

// NewConfirmOilChange creates the oil-change confirmation skill.
func NewConfirmOilChange(record types.RecordStore, fallbackMileage, intervalKM int) *ConfirmOilChange {
	return &ConfirmOilChange{record: record, fallbackMileage: fallbackMileage, intervalKM: intervalKM}
}

func (c *ConfirmOilChange) Name() string { return "confirm_oil_change" }
func (c *ConfirmOilChange) Description() string {
	return "Record that the engine oil was just changed, resetting the oil-change baseline"
}
func (c *ConfirmOilChange) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"mileage": {"type": "integer", "description": "Odometer reading at the change in km; omit if unknown"},
			"date": {"type": "string", "description": "Date of the change as YYYY-MM-DD; omit for today"}
		}
	}`)
}

func (c *ConfirmOilChange) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		Mileage int    `json:"mileage"`
		Date    string `json:"date"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return "", fmt.Errorf("parse args: %w", err)
		}
	}
	if params.Mileage <= 0 {
		params.Mileage = c.fallbackMileage
	}

	date := time.Now()
	if params.Date != "" {
		parsed, err := time.Parse("2006-01-02", params.Date)
		if err != nil {
			return "", fmt.Errorf("parse date %q: %w", params.Date, err)
		}
		date = parsed
	}

	if err := c.record.ConfirmOilChange(ctx, params.Mileage, date); err != nil {
		return "", fmt.Errorf("confirm oil change: %w", err)
	}
	return fmt.Sprintf("Oil change recorded at %d km on %s. Next change is due around %d km.",
		params.Mileage, date.Format("2006-01-02"), params.Mileage+c.intervalKM), nil
}
