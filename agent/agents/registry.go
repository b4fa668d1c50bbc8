package agents

import (
	"fmt"
	"strings"

	contractx "github.com/samantha-labs/assistant/agent/contract"
)

// Registry holds the routable agents in a fixed order. The supervisor prompt
// and the graph topology are both derived from it.
type Registry struct {
	order  []string
	agents map[string]Agent
}

func NewRegistry(list ...Agent) (*Registry, error) {
	r := &Registry{agents: make(map[string]Agent, len(list))}
	for _, a := range list {
		if a == nil {
			return nil, fmt.Errorf("%w: nil agent", contractx.ErrValidation)
		}
		name := strings.TrimSpace(a.Name())
		if name == "" {
			return nil, fmt.Errorf("%w: agent name is empty", contractx.ErrValidation)
		}
		if _, exists := r.agents[name]; exists {
			return nil, fmt.Errorf("%w: duplicate agent name %q", contractx.ErrValidation, name)
		}
		r.agents[name] = a
		r.order = append(r.order, name)
	}
	return r, nil
}

func (r *Registry) Get(name string) (Agent, bool) {
	a, ok := r.agents[name]
	return a, ok
}

// Names returns the agent names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func (r *Registry) Ordered() []Agent {
	out := make([]Agent, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.agents[name])
	}
	return out
}
