package assistantnode

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog/log"

	contractx "github.com/samantha-labs/assistant/agent/contract"
	statex "github.com/samantha-labs/assistant/agent/state"
	toolx "github.com/samantha-labs/assistant/agent/tool"
)

// ExecuteTools runs every pending tool call and appends one tool-role result
// message per call. Failures come back as structured results inside those
// messages; the executor decides what to do with them on its next pass.
func ExecuteTools(ctx context.Context, st *statex.ConversationState, registry *toolx.Registry, now time.Time) (*statex.Delta, error) {
	if st == nil {
		return nil, statex.ErrNilState
	}

	calls := st.PendingToolCalls()
	if len(calls) == 0 {
		return &statex.Delta{}, nil
	}

	msgs := make([]contractx.Message, 0, len(calls))
	for _, call := range calls {
		params := make(map[string]any, len(call.Args)+1)
		for k, v := range call.Args {
			params[k] = v
		}
		injectNotesPath(st, registry, call.Name, params)

		result := registry.Execute(ctx, call.Name, params)
		if !result.Success {
			log.Warn().Str("tool", call.Name).Str("error", result.Error).Msg("tool execution failed")
		}

		payload, err := json.Marshal(result)
		if err != nil {
			payload = []byte(`{"success":false,"error":"failed to encode tool result"}`)
		}

		msg := statex.NewMessage(contractx.RoleTool, string(payload), now)
		msg.ToolCallID = call.ID
		msg.Agent = call.Name
		msgs = append(msgs, msg)
	}

	return &statex.Delta{Messages: msgs}, nil
}

// injectNotesPath supplies the account's notes repository to tools that
// declare a notes_path parameter, so the model never has to know it.
func injectNotesPath(st *statex.ConversationState, registry *toolx.Registry, toolName string, params map[string]any) {
	t, ok := registry.Get(toolName)
	if !ok {
		return
	}
	if _, declared := t.Schema()["notes_path"]; !declared {
		return
	}
	params["notes_path"] = st.NotesPath
}
