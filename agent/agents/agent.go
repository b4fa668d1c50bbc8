package agents

import (
	"context"

	statex "github.com/samantha-labs/assistant/agent/state"
)

// Agent is a specialized worker the supervisor can route a turn to. Handle
// returns a delta the graph applies to the conversation state; it never
// mutates the state directly.
type Agent interface {
	Name() string
	Description() string
	CanHandle(st *statex.ConversationState) bool
	Handle(ctx context.Context, st *statex.ConversationState) (*statex.Delta, error)
}

// Process runs the agent when it accepts the state. A declined turn yields
// (nil, nil) so the caller can fall back to the supervisor.
func Process(ctx context.Context, a Agent, st *statex.ConversationState) (*statex.Delta, error) {
	if a == nil || st == nil {
		return nil, nil
	}
	if !a.CanHandle(st) {
		return nil, nil
	}
	return a.Handle(ctx, st)
}
