// internal/webhook/server.go
package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/user/copilot/internal/types"
)

// BriefingTrigger fires an immediate briefing fan-out.
type BriefingTrigger func(ctx context.Context)

// Server is the local admin HTTP surface: health, a read-only view of the
// service record, and a manual briefing trigger.
type Server struct {
	record  types.RecordStore
	trigger BriefingTrigger
	mux     *http.ServeMux
}

// NewServer creates the admin server.
func NewServer(record types.RecordStore, trigger BriefingTrigger) *Server {
	s := &Server{
		record:  record,
		trigger: trigger,
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /record", s.handleRecord)
	s.mux.HandleFunc("POST /briefing", s.handleBriefing)
	return s
}

// ServeHTTP delegates to the internal mux, implementing http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleRecord(w http.ResponseWriter, r *http.Request) {
	rec, err := s.record.Snapshot(r.Context())
	if err != nil {
		slog.Error("record snapshot failed", "error", err)
		http.Error(w, `{"error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(rec)
}

func (s *Server) handleBriefing(w http.ResponseWriter, r *http.Request) {
	s.trigger(r.Context())
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "fired"})
}
