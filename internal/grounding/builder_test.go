package grounding

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/user/copilot/internal/knowledge"
	"github.com/user/copilot/internal/types"
)

// fakeRetriever returns canned passages, or errors when broken.
type fakeRetriever struct {
	manual []knowledge.Passage
	events []knowledge.Passage
	broken bool
}

func (f *fakeRetriever) EmbedQuery(_ context.Context, _ string) ([]float32, error) {
	if f.broken {
		return nil, errors.New("embedding endpoint unreachable")
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

func (f *fakeRetriever) SearchManual(_ context.Context, _ []float32, _ int) ([]knowledge.Passage, error) {
	return f.manual, nil
}

func (f *fakeRetriever) SearchEvents(_ context.Context, _ []float32, _ int) ([]knowledge.Passage, error) {
	return f.events, nil
}

func testRecord() *types.ServiceRecord {
	return &types.ServiceRecord{
		OilChange: types.OilChange{
			Mileage: 145000,
			Date:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		},
	}
}

func testOptions() Options {
	return Options{
		ManualResults:   3,
		EventResults:    2,
		ExcerptTokens:   1500,
		FallbackMileage: 150000,
		OilIntervalKM:   10000,
	}
}

func TestOilSummaryArithmetic(t *testing.T) {
	now := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	summary := OilSummary(testRecord(), now, 150000, 10000)

	if !strings.Contains(summary, "145000") {
		t.Errorf("expected baseline mileage in summary, got %q", summary)
	}
	if !strings.Contains(summary, "365 days ago") {
		t.Errorf("expected day count in summary, got %q", summary)
	}
	// interval 10000 minus 5000 driven since the change
	if !strings.Contains(summary, "due in 5000 km") {
		t.Errorf("expected remaining distance in summary, got %q", summary)
	}
}

func TestOilSummaryNilRecord(t *testing.T) {
	summary := OilSummary(nil, time.Now(), 150000, 10000)
	if !strings.Contains(summary, "unavailable") {
		t.Errorf("expected unavailable notice, got %q", summary)
	}
}

func TestBuildIncludesRetrievedSections(t *testing.T) {
	retriever := &fakeRetriever{
		manual: []knowledge.Passage{{ID: "manual-000001", Text: "Use 5W-40 engine oil.", Score: 0.9}},
		events: []knowledge.Passage{{ID: "ev-1", Text: "2025-01-10: replaced spark plugs (149000 km)", Score: 0.8}},
	}
	builder, err := New(retriever, "gpt-4", testOptions())
	if err != nil {
		t.Fatal(err)
	}

	block := builder.Build(context.Background(), "what oil should I use", testRecord())

	if !strings.Contains(block, "CAR STATUS:") {
		t.Errorf("expected status section, got %q", block)
	}
	if !strings.Contains(block, "FROM THE OWNER'S MANUAL:") || !strings.Contains(block, "5W-40") {
		t.Errorf("expected manual section, got %q", block)
	}
	if !strings.Contains(block, "FROM YOUR SERVICE HISTORY:") || !strings.Contains(block, "spark plugs") {
		t.Errorf("expected history section, got %q", block)
	}
}

func TestBuildDegradesWhenEmbeddingFails(t *testing.T) {
	builder, err := New(&fakeRetriever{broken: true}, "gpt-4", testOptions())
	if err != nil {
		t.Fatal(err)
	}

	block := builder.Build(context.Background(), "anything", testRecord())

	if !strings.Contains(block, "CAR STATUS:") {
		t.Errorf("expected status section to survive, got %q", block)
	}
	if strings.Contains(block, "OWNER'S MANUAL") {
		t.Errorf("expected no retrieval sections, got %q", block)
	}
}

func TestBuildSkipsEmptyCorpora(t *testing.T) {
	builder, err := New(&fakeRetriever{}, "gpt-4", testOptions())
	if err != nil {
		t.Fatal(err)
	}

	block := builder.Build(context.Background(), "anything", testRecord())

	if strings.Contains(block, "OWNER'S MANUAL") || strings.Contains(block, "SERVICE HISTORY") {
		t.Errorf("expected no sections for empty corpora, got %q", block)
	}
}

func TestBuildRespectsTokenBudget(t *testing.T) {
	long := strings.Repeat("torque specification values ", 100)
	retriever := &fakeRetriever{
		manual: []knowledge.Passage{
			{ID: "m1", Text: "Short first passage."},
			{ID: "m2", Text: long},
		},
	}
	opts := testOptions()
	opts.ExcerptTokens = 20

	builder, err := New(retriever, "gpt-4", opts)
	if err != nil {
		t.Fatal(err)
	}

	block := builder.Build(context.Background(), "specs", testRecord())

	if !strings.Contains(block, "Short first passage.") {
		t.Errorf("expected first passage kept, got %q", block)
	}
	if strings.Contains(block, long) {
		t.Error("expected oversized passage dropped by budget")
	}
}

func TestSystemPrompt(t *testing.T) {
	prompt := SystemPrompt("Audi A3 2006 1.6 BSE", "CAR STATUS:\nall good")

	if !strings.Contains(prompt, "Audi A3 2006 1.6 BSE") {
		t.Errorf("expected vehicle in prompt, got %q", prompt)
	}
	if !strings.Contains(prompt, "Alex") {
		t.Errorf("expected persona name in prompt, got %q", prompt)
	}
	if !strings.Contains(prompt, "CAR STATUS:") {
		t.Errorf("expected grounding appended, got %q", prompt)
	}

	bare := SystemPrompt("Audi A3", "")
	if strings.HasSuffix(bare, "\n\n") {
		t.Error("expected no trailing separator without grounding")
	}
}
