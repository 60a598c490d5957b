package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/user/copilot/internal/grounding"
	"github.com/user/copilot/internal/types"
)

// Briefing composes the morning message: live weather for the home city plus
// the oil-change status. The scheduler calls Generate directly; the model
// can also request it as a skill.
type Briefing struct {
	weather         *Weather
	record          types.RecordStore
	city            string
	fallbackMileage int
	intervalKM      int
}

// NewBriefing creates the briefing composer.
func NewBriefing(weather *Weather, record types.RecordStore, city string, fallbackMileage, intervalKM int) *Briefing {
	return &Briefing{
		weather:         weather,
		record:          record,
		city:            city,
		fallbackMileage: fallbackMileage,
		intervalKM:      intervalKM,
	}
}

// Generate builds the briefing text for the home city. Weather degrades to
// generic caution on its own; a record read failure degrades to omitting the
// oil status.
func (b *Briefing) Generate(ctx context.Context) string {
	return b.generateFor(ctx, b.city)
}

func (b *Briefing) generateFor(ctx context.Context, city string) string {
	text := "Good morning! " + b.weather.Report(ctx, city)

	rec, err := b.record.Snapshot(ctx)
	if err != nil {
		slog.Warn("briefing without oil status", "error", err)
		return text
	}
	return text + "\n" + grounding.OilSummary(rec, time.Now(), b.fallbackMileage, b.intervalKM)
}

func (b *Briefing) Name() string { return "get_proactive_briefing" }
func (b *Briefing) Description() string {
	return "Compose the daily driver briefing: weather for the home city and oil-change status"
}
func (b *Briefing) Parameters() json.RawMessage {
	return json.RawMessage(`{
		"type": "object",
		"properties": {
			"city": {"type": "string", "description": "City for the weather portion; defaults to the home city"}
		}
	}`)
}

func (b *Briefing) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	var params struct {
		City string `json:"city"`
	}
	if len(args) > 0 {
		if err := json.Unmarshal(args, &params); err != nil {
			return "", fmt.Errorf("parse arguments: %w", err)
		}
	}
	city := params.City
	if city == "" {
		city = b.city
	}

	text := b.generateFor(ctx, city)
	if text == "" {
		return "", fmt.Errorf("empty briefing")
	}
	return text, nil
}
