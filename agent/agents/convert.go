package agents

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/schema"

	contractx "github.com/samantha-labs/assistant/agent/contract"
)

func roleToSchema(role contractx.Role) schema.RoleType {
	switch role {
	case contractx.RoleSystem:
		return schema.System
	case contractx.RoleAssistant:
		return schema.Assistant
	case contractx.RoleTool:
		return schema.Tool
	default:
		return schema.User
	}
}

// toSchemaMessages converts conversation messages to the eino wire format.
func toSchemaMessages(msgs []contractx.Message) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for _, m := range msgs {
		sm := &schema.Message{
			Role:       roleToSchema(m.Role),
			Content:    m.Content,
			ToolCallID: m.ToolCallID,
		}
		if len(m.ToolCalls) > 0 {
			sm.ToolCalls = toSchemaToolCalls(m.ToolCalls)
		}
		out = append(out, sm)
	}
	return out
}

func toSchemaToolCalls(calls []contractx.ToolCall) []schema.ToolCall {
	out := make([]schema.ToolCall, 0, len(calls))
	for _, call := range calls {
		args := "{}"
		if len(call.Args) > 0 {
			if raw, err := json.Marshal(call.Args); err == nil {
				args = string(raw)
			}
		}
		out = append(out, schema.ToolCall{
			ID: call.ID,
			Function: schema.FunctionCall{
				Name:      call.Name,
				Arguments: args,
			},
		})
	}
	return out
}

// fromSchemaToolCalls decodes model-issued tool calls, rejecting unnamed
// calls and malformed argument JSON.
func fromSchemaToolCalls(calls []schema.ToolCall) ([]contractx.ToolCall, error) {
	if len(calls) == 0 {
		return nil, nil
	}
	out := make([]contractx.ToolCall, 0, len(calls))
	for _, call := range calls {
		name := strings.TrimSpace(call.Function.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: tool call name is empty", contractx.ErrSchemaViolation)
		}
		args := map[string]any{}
		if raw := strings.TrimSpace(call.Function.Arguments); raw != "" {
			if err := json.Unmarshal([]byte(raw), &args); err != nil {
				return nil, fmt.Errorf("%w: invalid tool args for tool=%s: %v", contractx.ErrSchemaViolation, name, err)
			}
		}
		out = append(out, contractx.ToolCall{
			ID:   call.ID,
			Name: name,
			Args: args,
		})
	}
	return out, nil
}
