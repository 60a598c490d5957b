package skills

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/copilot/internal/record"
	"github.com/user/copilot/internal/types"
)

// Report renders the full service report from the record.
type Report struct {
	record  types.RecordStore
	vehicle string
}

// NewReport creates the service-report skill.
func NewReport(store types.RecordStore, vehicle string) *Report {
	return &Report{record: store, vehicle: vehicle}
}

func (r *Report) Name() string { return "generate_service_report" }
func (r *Report) Description() string {
	return "Produce a service report: oil-change baseline plus recent maintenance history"
}
func (r *Report) Parameters() json.RawMessage {
	return json.RawMessage(`{"type": "object", "properties": {}}`)
}

func (r *Report) Execute(ctx context.Context, args json.RawMessage) (string, error) {
	rec, err := r.record.Snapshot(ctx)
	if err != nil {
		return "", fmt.Errorf("read service record: %w", err)
	}
	return record.RenderReport(r.vehicle, rec), nil
}
