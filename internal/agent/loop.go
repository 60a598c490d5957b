package agent

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/user/copilot/pkg/llm"

	"github.com/user/copilot/internal/grounding"
	"github.com/user/copilot/internal/state"
	"github.com/user/copilot/internal/types"
)

// Apology is sent to the user when a turn fails outright. Failed turns leave
// conversation history untouched.
const Apology = "Sorry, I hit a technical problem and could not answer that. Please try again in a moment."

// Loop runs conversation turns: it grounds the query, calls the model,
// dispatches at most one round of skill calls, and commits the finished turn
// to history.
type Loop struct {
	provider llm.Provider
	registry *Registry
	builder  *grounding.Builder
	history  *state.HistoryStore
	record   types.RecordStore
	vehicle  string
}

// NewLoop wires a turn loop.
func NewLoop(provider llm.Provider, registry *Registry, builder *grounding.Builder, history *state.HistoryStore, record types.RecordStore, vehicle string) *Loop {
	return &Loop{
		provider: provider,
		registry: registry,
		builder:  builder,
		history:  history,
		record:   record,
		vehicle:  vehicle,
	}
}

// HandleTurn processes one user message and returns the assistant's reply.
// History is committed only when the whole turn succeeds, so a failed turn
// never leaves a dangling user message or orphaned tool results behind.
func (l *Loop) HandleTurn(ctx context.Context, userID types.UserID, text string) (string, error) {
	rec, err := l.record.Snapshot(ctx)
	if err != nil {
		slog.Warn("record snapshot failed, grounding without it", "error", err)
		rec = nil
	}

	system := llm.Message{
		Role:    "system",
		Content: grounding.SystemPrompt(l.vehicle, l.builder.Build(ctx, text, rec)),
	}
	userMsg := llm.Message{Role: "user", Content: text}

	messages := append([]llm.Message{system}, l.history.Tail(userID)...)
	messages = append(messages, userMsg)
	staged := []llm.Message{userMsg}

	resp, err := l.provider.Complete(ctx, messages, l.registry.AsLLMTools())
	if err != nil {
		return "", fmt.Errorf("model call: %w", err)
	}

	if len(resp.ToolCalls) > 0 {
		assistant := llm.Message{Role: "assistant", Content: resp.Content, Tools: resp.ToolCalls}
		messages = append(messages, assistant)
		staged = append(staged, assistant)

		for _, call := range resp.ToolCalls {
			result := l.dispatch(ctx, call)
			toolMsg := llm.Message{Role: "tool", Content: result, Tools: []llm.ToolCall{call}}
			messages = append(messages, toolMsg)
			staged = append(staged, toolMsg)
		}

		// Single round: the follow-up call is offered no tools, so the
		// model must answer in prose.
		resp, err = l.provider.Complete(ctx, messages, nil)
		if err != nil {
			return "", fmt.Errorf("model follow-up call: %w", err)
		}
	}

	final := llm.Message{Role: "assistant", Content: resp.Content}
	staged = append(staged, final)
	l.history.Extend(userID, staged...)
	return resp.Content, nil
}

// dispatch executes one requested skill call. Failures become tool-result
// strings so the model can explain them, never turn-level errors.
func (l *Loop) dispatch(ctx context.Context, call llm.ToolCall) string {
	name := call.Function.Name
	skill, ok := l.registry.Get(name)
	if !ok {
		slog.Warn("model requested unknown skill", "skill", name)
		return fmt.Sprintf("no skill named %q", name)
	}

	result, err := skill.Execute(ctx, call.Function.Arguments)
	if err != nil {
		slog.Warn("skill failed", "skill", name, "error", err)
		return fmt.Sprintf("error: %v", err)
	}
	slog.Debug("skill executed", "skill", name)
	return result
}
