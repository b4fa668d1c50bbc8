package orchestrator

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/compose"

	agentsx "github.com/samantha-labs/assistant/agent/agents"
	contractx "github.com/samantha-labs/assistant/agent/contract"
	nodex "github.com/samantha-labs/assistant/agent/nodes"
	statex "github.com/samantha-labs/assistant/agent/state"
)

// maxTurnSteps bounds one graph run. Supervisor retries and the
// executor/tools loop both consume steps, so a runaway turn terminates with
// an error instead of spinning.
const maxTurnSteps = 20

func (s *Service) compileTurnGraph(ctx context.Context) (compose.Runnable[nodex.GraphInput, nodex.GraphOutput], error) {
	graph := compose.NewGraph[nodex.GraphInput, nodex.GraphOutput]()

	if err := graph.AddLambdaNode(nodex.NodeInitState,
		compose.InvokableLambda(func(ctx context.Context, in nodex.GraphInput) (*statex.ConversationState, error) {
			return nodex.InitState(ctx, in, s.store, s.now())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeInitState, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeCheckUser,
		s.deltaNode(func(ctx context.Context, st *statex.ConversationState) (*statex.Delta, error) {
			return nodex.CheckUser(ctx, st, s.accounts)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeCheckUser, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeAuthenticationRequired,
		s.deltaNode(func(ctx context.Context, st *statex.ConversationState) (*statex.Delta, error) {
			return nodex.AuthenticationRequired(st, s.now())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeAuthenticationRequired, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeWaitForInput,
		s.deltaNode(func(ctx context.Context, st *statex.ConversationState) (*statex.Delta, error) {
			return nodex.WaitForInput(st, s.now())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeWaitForInput, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeUpdateNotesPath,
		s.deltaNode(func(ctx context.Context, st *statex.ConversationState) (*statex.Delta, error) {
			return nodex.UpdateNotesPath(ctx, st, s.accounts, s.now())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeUpdateNotesPath, err)
	}

	if err := graph.AddLambdaNode(nodex.NodeSupervisor,
		s.deltaNode(func(ctx context.Context, st *statex.ConversationState) (*statex.Delta, error) {
			return s.supervisor.Decide(ctx, st)
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeSupervisor, err)
	}

	for _, agent := range s.agents.Ordered() {
		a := agent
		if err := graph.AddLambdaNode(a.Name(),
			s.deltaNode(func(ctx context.Context, st *statex.ConversationState) (*statex.Delta, error) {
				return agentsx.Process(ctx, a, st)
			}),
		); err != nil {
			return nil, fmt.Errorf("add agent node %s: %w", a.Name(), err)
		}
	}

	_, hasExecutor := s.agents.Get(string(contractx.AgentTypeExecutor))
	if hasExecutor {
		if err := graph.AddLambdaNode(nodex.NodeTools,
			s.deltaNode(func(ctx context.Context, st *statex.ConversationState) (*statex.Delta, error) {
				return nodex.ExecuteTools(ctx, st, s.tools, s.now())
			}),
		); err != nil {
			return nil, fmt.Errorf("add node %s: %w", nodex.NodeTools, err)
		}
	}

	if err := graph.AddLambdaNode(nodex.NodeFinalize,
		compose.InvokableLambda(func(ctx context.Context, st *statex.ConversationState) (nodex.GraphOutput, error) {
			return nodex.Finalize(ctx, st, s.store, s.now())
		}),
	); err != nil {
		return nil, fmt.Errorf("add node %s: %w", nodex.NodeFinalize, err)
	}

	if err := s.addConfigurationBranch(graph); err != nil {
		return nil, err
	}
	if err := s.addSupervisorBranch(graph); err != nil {
		return nil, err
	}
	if hasExecutor {
		if err := s.addExecutorBranch(graph); err != nil {
			return nil, err
		}
	}

	edges := [][2]string{
		{compose.START, nodex.NodeInitState},
		{nodex.NodeInitState, nodex.NodeCheckUser},
		{nodex.NodeAuthenticationRequired, nodex.NodeFinalize},
		{nodex.NodeWaitForInput, nodex.NodeFinalize},
		{nodex.NodeUpdateNotesPath, nodex.NodeFinalize},
		{nodex.NodeFinalize, compose.END},
	}
	if hasExecutor {
		edges = append(edges, [2]string{nodex.NodeTools, string(contractx.AgentTypeExecutor)})
	}
	for _, agent := range s.agents.Ordered() {
		switch agent.Name() {
		case string(contractx.AgentTypeExecutor):
			// routed by the executor branch
		case string(contractx.AgentTypeSynthesizer):
			edges = append(edges, [2]string{agent.Name(), nodex.NodeFinalize})
		default:
			edges = append(edges, [2]string{agent.Name(), nodex.NodeSupervisor})
		}
	}
	for _, edge := range edges {
		if err := graph.AddEdge(edge[0], edge[1]); err != nil {
			return nil, fmt.Errorf("add edge %s->%s: %w", edge[0], edge[1], err)
		}
	}

	runner, err := graph.Compile(ctx,
		compose.WithGraphName("assistant.turn_graph"),
		compose.WithMaxRunSteps(maxTurnSteps),
	)
	if err != nil {
		return nil, fmt.Errorf("compile turn graph: %w", err)
	}
	return runner, nil
}

// deltaNode wraps a delta-producing step into a state-to-state lambda. The
// delta is applied only after the step completes.
func (s *Service) deltaNode(
	step func(context.Context, *statex.ConversationState) (*statex.Delta, error),
) *compose.Lambda {
	return compose.InvokableLambda(func(ctx context.Context, st *statex.ConversationState) (*statex.ConversationState, error) {
		if st == nil {
			return nil, statex.ErrNilState
		}
		delta, err := step(ctx, st)
		if err != nil {
			return nil, err
		}
		delta.Apply(st, s.now())
		return st, nil
	})
}

func (s *Service) addConfigurationBranch(graph *compose.Graph[nodex.GraphInput, nodex.GraphOutput]) error {
	branch := compose.NewGraphBranch(
		func(ctx context.Context, st *statex.ConversationState) (string, error) {
			switch nodex.ConfigurationRouter(st) {
			case nodex.RouteAuthFlow:
				return nodex.NodeAuthenticationRequired, nil
			case nodex.RouteWaitForInput:
				return nodex.NodeWaitForInput, nil
			case nodex.RouteUpdateNotesPath:
				return nodex.NodeUpdateNotesPath, nil
			default:
				return nodex.NodeSupervisor, nil
			}
		},
		map[string]bool{
			nodex.NodeAuthenticationRequired: true,
			nodex.NodeWaitForInput:           true,
			nodex.NodeUpdateNotesPath:        true,
			nodex.NodeSupervisor:             true,
		},
	)
	if err := graph.AddBranch(nodex.NodeCheckUser, branch); err != nil {
		return fmt.Errorf("add configuration branch: %w", err)
	}
	return nil
}

func (s *Service) addSupervisorBranch(graph *compose.Graph[nodex.GraphInput, nodex.GraphOutput]) error {
	targets := map[string]bool{
		nodex.NodeSupervisor: true,
		nodex.NodeFinalize:   true,
	}
	for _, name := range s.agents.Names() {
		targets[name] = true
	}

	branch := compose.NewGraphBranch(
		func(ctx context.Context, st *statex.ConversationState) (string, error) {
			if st == nil {
				return "", statex.ErrNilState
			}
			switch {
			case st.Next == statex.RouteEnd:
				return nodex.NodeFinalize, nil
			case st.Next == agentsx.RouteSupervisor:
				return nodex.NodeSupervisor, nil
			default:
				if _, ok := s.agents.Get(st.Next); ok {
					return st.Next, nil
				}
				return "", fmt.Errorf("%w: %q", contractx.ErrRouteInvalid, st.Next)
			}
		},
		targets,
	)
	if err := graph.AddBranch(nodex.NodeSupervisor, branch); err != nil {
		return fmt.Errorf("add supervisor branch: %w", err)
	}
	return nil
}

func (s *Service) addExecutorBranch(graph *compose.Graph[nodex.GraphInput, nodex.GraphOutput]) error {
	branch := compose.NewGraphBranch(
		func(ctx context.Context, st *statex.ConversationState) (string, error) {
			if st == nil {
				return "", statex.ErrNilState
			}
			if len(st.PendingToolCalls()) > 0 {
				return nodex.NodeTools, nil
			}
			return nodex.NodeSupervisor, nil
		},
		map[string]bool{
			nodex.NodeTools:      true,
			nodex.NodeSupervisor: true,
		},
	)
	if err := graph.AddBranch(string(contractx.AgentTypeExecutor), branch); err != nil {
		return fmt.Errorf("add executor branch: %w", err)
	}
	return nil
}
