// Package agent runs the model-driven conversation turn: grounding, tool
// dispatch, and history commits.
package agent

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/copilot/pkg/llm"
)

// Skill is a capability the model can invoke by name. Skills return their
// result as a string that is fed back into the conversation; an error means
// the skill could not run at all.
type Skill interface {
	Name() string
	Description() string
	Parameters() json.RawMessage
	Execute(ctx context.Context, args json.RawMessage) (string, error)
}

// Registry holds the fixed catalogue of skills offered on every turn.
type Registry struct {
	skills map[string]Skill
	order  []string
}

// NewRegistry creates an empty skill registry.
func NewRegistry() *Registry {
	return &Registry{skills: make(map[string]Skill)}
}

// Register adds a skill to the catalogue. Registering two skills with the
// same name is a programming error.
func (r *Registry) Register(s Skill) error {
	name := s.Name()
	if _, exists := r.skills[name]; exists {
		return fmt.Errorf("skill %q already registered", name)
	}
	r.skills[name] = s
	r.order = append(r.order, name)
	return nil
}

// Get looks up a skill by name.
func (r *Registry) Get(name string) (Skill, bool) {
	s, ok := r.skills[name]
	return s, ok
}

// AsLLMTools renders the catalogue in the wire format the provider expects,
// in registration order.
func (r *Registry) AsLLMTools() []llm.Tool {
	tools := make([]llm.Tool, 0, len(r.order))
	for _, name := range r.order {
		s := r.skills[name]
		tools = append(tools, llm.Tool{
			Type: "function",
			Function: llm.Function{
				Name:        s.Name(),
				Description: s.Description(),
				Parameters:  s.Parameters(),
			},
		})
	}
	return tools
}
