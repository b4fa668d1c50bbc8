package contract

import "time"

type AgentType string

const (
	AgentTypeSupervisor  AgentType = "supervisor"
	AgentTypeGeneral     AgentType = "general"
	AgentTypeExecutor    AgentType = "executor"
	AgentTypeSynthesizer AgentType = "synthesizer"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
	RoleTool      Role = "tool"
)

// Message is one entry of the conversation history. Tool-result messages
// carry the id of the tool call they answer.
type Message struct {
	ID         string     `json:"id"`
	Role       Role       `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
	Agent      string     `json:"agent,omitempty"`
	Timestamp  time.Time  `json:"timestamp"`
}

type ToolCall struct {
	ID   string         `json:"id"`
	Name string         `json:"name"`
	Args map[string]any `json:"args,omitempty"`
}

// ToolResult is the uniform shape every tool returns; Error is set only
// when Success is false.
type ToolResult struct {
	Tool     string `json:"tool,omitempty"`
	Success  bool   `json:"success"`
	Output   string `json:"output,omitempty"`
	Error    string `json:"error,omitempty"`
	ExitCode int    `json:"exit_code,omitempty"`
}

// RouteDecision is the supervisor's structured output: the next node to run,
// free-text instructions for it, and a confidence score.
type RouteDecision struct {
	Next         string  `json:"next"`
	Instructions string  `json:"instructions"`
	Confidence   float64 `json:"confidence"`
}

// TurnResult is what the turn service hands back to the API layer.
type TurnResult struct {
	Response   string         `json:"response"`
	Agent      string         `json:"agent"`
	Confidence float64        `json:"confidence"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// HistoryEntry pairs a user utterance with the assistant reply that
// followed it.
type HistoryEntry struct {
	Text      string    `json:"text"`
	Response  string    `json:"response"`
	Timestamp time.Time `json:"timestamp"`
}
