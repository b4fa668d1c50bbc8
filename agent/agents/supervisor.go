package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/samantha-labs/assistant/agent/contract"
	statex "github.com/samantha-labs/assistant/agent/state"
)

const (
	supervisorAgentsMarker = "{agents}"

	// RouteSupervisor is the self-loop target used to retry after a
	// malformed routing decision.
	RouteSupervisor = "supervisor"

	supervisorRetryMessage = "Use only the possible tools and agents"
)

// Supervisor decides which agent handles the next step of a turn. It is not
// itself a routable Agent; the graph calls Decide directly.
type Supervisor struct {
	runner       compose.Runnable[[]*schema.Message, *schema.Message]
	systemPrompt string
	routes       map[string]struct{}
}

// BuildSupervisorPrompt fills the {agents} marker with one line per routable
// agent, in registry order.
func BuildSupervisorPrompt(template string, registry *Registry) string {
	lines := make([]string, 0)
	for _, a := range registry.Ordered() {
		desc := strings.Join(strings.Fields(a.Description()), " ")
		lines = append(lines, fmt.Sprintf("- %s: %s", a.Name(), desc))
	}
	return strings.ReplaceAll(template, supervisorAgentsMarker, strings.Join(lines, "\n"))
}

func NewSupervisor(
	ctx context.Context,
	chatModel einomodel.BaseChatModel,
	template string,
	registry *Registry,
) (*Supervisor, error) {
	runner, err := compileChatGraph(ctx, chatModel, "supervisor.model_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile supervisor graph: %v", contractx.ErrModelInvoke, err)
	}

	routes := make(map[string]struct{}, len(registry.Names())+1)
	for _, name := range registry.Names() {
		routes[name] = struct{}{}
	}
	routes[statex.RouteEnd] = struct{}{}

	return &Supervisor{
		runner:       runner,
		systemPrompt: BuildSupervisorPrompt(template, registry),
		routes:       routes,
	}, nil
}

// Decide asks the model for a routing decision. A malformed or out-of-range
// decision does not fail the turn: the supervisor schedules itself again with
// a corrective system message, bounded by the graph's max run steps.
func (s *Supervisor) Decide(ctx context.Context, st *statex.ConversationState) (*statex.Delta, error) {
	msgs := make([]*schema.Message, 0, len(st.Messages)+1)
	msgs = append(msgs, schema.SystemMessage(s.systemPrompt))
	msgs = append(msgs, toSchemaMessages(st.Messages)...)

	out, err := s.runner.Invoke(ctx, msgs)
	if err != nil {
		// Provider failures self-correct like malformed decisions; the graph
		// step bound terminates the turn if the provider never recovers.
		log.Error().Err(err).Str("thread_id", st.ThreadID).Msg("supervisor model invoke failed, retrying")
		msg := statex.NewMessage(contractx.RoleSystem,
			fmt.Sprintf("%v: supervisor invoke: %v", contractx.ErrModelInvoke, err), time.Now())
		msg.Agent = RouteSupervisor
		return &statex.Delta{
			Messages: []contractx.Message{msg},
			Next:     RouteSupervisor,
			Metadata: map[string]any{statex.MetaLastError: err.Error()},
		}, nil
	}

	decision, perr := ParseStructured[contractx.RouteDecision](out.Content)
	if perr == nil {
		decision.Next = strings.TrimSpace(decision.Next)
		if _, ok := s.routes[decision.Next]; !ok {
			perr = fmt.Errorf("%w: unknown route %q", contractx.ErrRouteInvalid, decision.Next)
		}
	}
	if perr != nil {
		log.Warn().Err(perr).Str("thread_id", st.ThreadID).Msg("supervisor decision rejected, retrying")
		msg := statex.NewMessage(contractx.RoleSystem, supervisorRetryMessage, time.Now())
		msg.Agent = RouteSupervisor
		return &statex.Delta{
			Messages: []contractx.Message{msg},
			Next:     RouteSupervisor,
		}, nil
	}

	delta := &statex.Delta{
		Next: decision.Next,
		Metadata: map[string]any{
			statex.MetaRoute:      decision.Next,
			statex.MetaConfidence: decision.Confidence,
		},
	}
	if instructions := strings.TrimSpace(decision.Instructions); instructions != "" {
		msg := statex.NewMessage(contractx.RoleAssistant, instructions, time.Now())
		msg.Agent = RouteSupervisor
		delta.Messages = []contractx.Message{msg}
	}
	return delta, nil
}
