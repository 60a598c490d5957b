package record

import (
	"fmt"
	"strings"

	"github.com/user/copilot/internal/types"
)

const reportHistoryLimit = 5

// RenderReport formats the record as a service report: the oil baseline plus
// the most recent history entries. Shared by the report skill and the CLI.
func RenderReport(vehicle string, rec *types.ServiceRecord) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Service report for %s\n\n", vehicle)
	fmt.Fprintf(&sb, "Oil change:\n- Date: %s\n- Mileage: %d km\n\n",
		rec.OilChange.Date.Format("2006-01-02"), rec.OilChange.Mileage)

	if len(rec.History) == 0 {
		sb.WriteString("No additional work recorded.")
		return sb.String()
	}

	sb.WriteString("Recent work:\n")
	start := len(rec.History) - reportHistoryLimit
	if start < 0 {
		start = 0
	}
	for _, ev := range rec.History[start:] {
		fmt.Fprintf(&sb, "- %s: %s (%d km)\n", ev.Date.Format("2006-01-02"), ev.Work, ev.Mileage)
	}
	return strings.TrimRight(sb.String(), "\n")
}
