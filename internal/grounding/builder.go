// Package grounding assembles the grounding block injected into the model's
// context: a deterministic maintenance summary plus labeled excerpts
// retrieved from the manual and service-event corpora.
package grounding

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/pkoukk/tiktoken-go"

	"github.com/user/copilot/internal/knowledge"
	"github.com/user/copilot/internal/types"
)

// Retriever is the slice of the knowledge store the builder needs.
type Retriever interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	SearchManual(ctx context.Context, embedding []float32, n int) ([]knowledge.Passage, error)
	SearchEvents(ctx context.Context, embedding []float32, n int) ([]knowledge.Passage, error)
}

// Options configures retrieval counts, the excerpt token budget, and the
// arithmetic inputs for the oil summary.
type Options struct {
	ManualResults   int
	EventResults    int
	ExcerptTokens   int
	FallbackMileage int
	OilIntervalKM   int
}

// Builder performs the dual retrieval and renders the grounding block.
type Builder struct {
	retriever Retriever
	tokenizer *tiktoken.Tiktoken
	opts      Options
}

// New creates a Builder. model selects the tokenizer used for the excerpt
// budget; unknown models fall back to cl100k_base.
func New(retriever Retriever, model string, opts Options) (*Builder, error) {
	enc, err := tiktoken.EncodingForModel(model)
	if err != nil {
		enc, err = tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			return nil, fmt.Errorf("get tokenizer: %w", err)
		}
	}
	return &Builder{retriever: retriever, tokenizer: enc, opts: opts}, nil
}

func (b *Builder) countTokens(text string) int {
	return len(b.tokenizer.Encode(text, nil, nil))
}

// Build returns the grounding block for a user query. It is a pure read:
// retrieval failures degrade to omitting the affected section and are never
// surfaced as errors.
func (b *Builder) Build(ctx context.Context, query string, rec *types.ServiceRecord) string {
	var sections []string

	sections = append(sections, "CAR STATUS:\n"+OilSummary(rec, time.Now(), b.opts.FallbackMileage, b.opts.OilIntervalKM))

	embedding, err := b.retriever.EmbedQuery(ctx, query)
	if err != nil {
		slog.Warn("query embedding failed, answering without retrieval", "error", err)
		return strings.Join(sections, "\n\n")
	}

	budget := b.opts.ExcerptTokens

	manual, err := b.retriever.SearchManual(ctx, embedding, b.opts.ManualResults)
	if err != nil {
		slog.Warn("manual retrieval failed", "error", err)
	} else if section, used := b.renderSection("FROM THE OWNER'S MANUAL:", manual, budget); section != "" {
		sections = append(sections, section)
		budget -= used
	}

	events, err := b.retriever.SearchEvents(ctx, embedding, b.opts.EventResults)
	if err != nil {
		slog.Warn("event retrieval failed", "error", err)
	} else if section, _ := b.renderSection("FROM YOUR SERVICE HISTORY:", events, budget); section != "" {
		sections = append(sections, section)
	}

	return strings.Join(sections, "\n\n")
}

// renderSection concatenates passages under a label, stopping once the token
// budget is spent. Returns the section text and the tokens it consumed.
func (b *Builder) renderSection(label string, passages []knowledge.Passage, budget int) (string, int) {
	if len(passages) == 0 || budget <= 0 {
		return "", 0
	}

	var sb strings.Builder
	sb.WriteString(label)
	used := 0
	added := 0
	for _, p := range passages {
		text := strings.TrimSpace(p.Text)
		if text == "" {
			continue
		}
		tokens := b.countTokens(text)
		if used+tokens > budget && added > 0 {
			break
		}
		sb.WriteString("\n- " + text)
		used += tokens
		added++
	}
	if added == 0 {
		return "", 0
	}
	return sb.String(), used
}

// OilSummary renders the one-line factual summary derived from the oil
// baseline: plain arithmetic, no retrieval.
func OilSummary(rec *types.ServiceRecord, now time.Time, fallbackMileage, intervalKM int) string {
	if rec == nil {
		return "Service record is currently unavailable."
	}

	oc := rec.OilChange
	days := int(now.Sub(oc.Date).Hours() / 24)
	remaining := intervalKM - (fallbackMileage - oc.Mileage)

	return fmt.Sprintf(
		"Last oil change: %s at %d km (%d days ago). Current mileage is around %d km; next oil change due in %d km.",
		oc.Date.Format("2006-01-02"), oc.Mileage, days, fallbackMileage, remaining,
	)
}
