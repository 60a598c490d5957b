// Package knowledge wraps the two semantic corpora: the read-only owner's
// manual index and the read-write service-event index. Both collections share
// one embedding function, so indexing and querying always use the same model
// and dimensionality.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	chromem "github.com/philippgille/chromem-go"

	"github.com/user/copilot/internal/types"
)

const (
	manualCollection = "manual"
	eventsCollection = "events"
)

// Passage is one retrieved document with its similarity score.
type Passage struct {
	ID    string
	Text  string
	Score float32
}

// Store is the persistent vector store holding both corpora.
type Store struct {
	db     *chromem.DB
	embed  chromem.EmbeddingFunc
	manual *chromem.Collection
	events *chromem.Collection
}

// NewEmbeddingFunc returns an embedding function backed by an
// OpenAI-compatible embeddings endpoint.
func NewEmbeddingFunc(baseURL, apiKey, model string) chromem.EmbeddingFunc {
	return chromem.NewEmbeddingFuncOpenAICompat(baseURL, apiKey, model, nil)
}

// Open opens (or creates) the persistent store under dir with the given
// embedding function.
func Open(dir string, embed chromem.EmbeddingFunc) (*Store, error) {
	db, err := chromem.NewPersistentDB(filepath.Join(dir, "knowledge"), false)
	if err != nil {
		return nil, fmt.Errorf("open knowledge db: %w", err)
	}

	manual, err := db.GetOrCreateCollection(manualCollection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("open manual collection: %w", err)
	}
	events, err := db.GetOrCreateCollection(eventsCollection, nil, embed)
	if err != nil {
		return nil, fmt.Errorf("open events collection: %w", err)
	}

	return &Store{db: db, embed: embed, manual: manual, events: events}, nil
}

// EmbedQuery computes the embedding for a query string. The same vector can
// then be used against both collections.
func (s *Store) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return s.embed(ctx, text)
}

// query runs a nearest-neighbor search, clamping n to the collection size.
// An empty collection yields no passages, never an error.
func query(ctx context.Context, col *chromem.Collection, embedding []float32, n int) ([]Passage, error) {
	if count := col.Count(); count < n {
		n = count
	}
	if n <= 0 {
		return nil, nil
	}

	results, err := col.QueryEmbedding(ctx, embedding, n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query collection: %w", err)
	}

	passages := make([]Passage, 0, len(results))
	for _, r := range results {
		passages = append(passages, Passage{ID: r.ID, Text: r.Content, Score: r.Similarity})
	}
	return passages, nil
}

// SearchManual returns the top-n manual passages nearest to the embedding.
func (s *Store) SearchManual(ctx context.Context, embedding []float32, n int) ([]Passage, error) {
	return query(ctx, s.manual, embedding, n)
}

// SearchEvents returns the top-n service-event passages nearest to the embedding.
func (s *Store) SearchEvents(ctx context.Context, embedding []float32, n int) ([]Passage, error) {
	return query(ctx, s.events, embedding, n)
}

// ManualSize returns the number of indexed manual chunks.
func (s *Store) ManualSize() int {
	return s.manual.Count()
}

// EventsSize returns the number of indexed event documents.
func (s *Store) EventsSize() int {
	return s.events.Count()
}

// AddManualChunks embeds and stores manual chunks. IDs are positional and
// stable across re-ingestion of the same source.
func (s *Store) AddManualChunks(ctx context.Context, chunks []string) error {
	docs := make([]chromem.Document, 0, len(chunks))
	for i, chunk := range chunks {
		docs = append(docs, chromem.Document{
			ID:      fmt.Sprintf("manual-%06d", i),
			Content: chunk,
		})
	}
	if err := s.manual.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("add manual chunks: %w", err)
	}
	return nil
}

// ResetManual drops and recreates the manual collection, for re-ingestion.
func (s *Store) ResetManual() error {
	if err := s.db.DeleteCollection(manualCollection); err != nil {
		return fmt.Errorf("delete manual collection: %w", err)
	}
	manual, err := s.db.GetOrCreateCollection(manualCollection, nil, s.embed)
	if err != nil {
		return fmt.Errorf("recreate manual collection: %w", err)
	}
	s.manual = manual
	return nil
}

// AddEvent embeds and stores one service-event document keyed by the event ID.
func (s *Store) AddEvent(ctx context.Context, id types.EventID, text string) error {
	doc := chromem.Document{ID: string(id), Content: text}
	if err := s.events.AddDocument(ctx, doc); err != nil {
		return fmt.Errorf("add event document: %w", err)
	}
	return nil
}

// RemoveEvent deletes the document paired with a removed service event.
func (s *Store) RemoveEvent(ctx context.Context, id types.EventID) error {
	if err := s.events.Delete(ctx, nil, nil, string(id)); err != nil {
		return fmt.Errorf("delete event document: %w", err)
	}
	return nil
}

// RebuildEvents drops the events collection and re-indexes every history
// entry from the record. This is the reconciliation path when the projection
// has drifted from the authoritative record.
func (s *Store) RebuildEvents(ctx context.Context, rec *types.ServiceRecord) error {
	if err := s.db.DeleteCollection(eventsCollection); err != nil {
		return fmt.Errorf("delete events collection: %w", err)
	}
	events, err := s.db.GetOrCreateCollection(eventsCollection, nil, s.embed)
	if err != nil {
		return fmt.Errorf("recreate events collection: %w", err)
	}
	s.events = events

	if len(rec.History) == 0 {
		return nil
	}

	docs := make([]chromem.Document, 0, len(rec.History))
	for _, ev := range rec.History {
		docs = append(docs, chromem.Document{ID: string(ev.ID), Content: ev.Document()})
	}
	if err := s.events.AddDocuments(ctx, docs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("re-add event documents: %w", err)
	}

	slog.Info("event index rebuilt", "documents", len(docs))
	return nil
}

var _ types.EventIndex = (*Store)(nil)
