package state

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	contractx "github.com/samantha-labs/assistant/agent/contract"
)

// RouteEnd is the terminal routing value accepted in ConversationState.Next.
const RouteEnd = "END"

// Metadata keys shared across nodes and agents.
const (
	MetaAgent      = "agent"
	MetaConfidence = "confidence"
	MetaRoute      = "route"
	MetaLastError  = "last_error"
)

// ConversationState is the record threaded through the graph for one turn
// and checkpointed per thread across turns. Messages are append-only within
// a run; Response holds only the latest outbound text, never a list.
type ConversationState struct {
	ThreadID string `json:"thread_id"`
	Text     string `json:"text"`

	Messages []contractx.Message `json:"messages,omitempty"`

	UserEmail       string `json:"user_email,omitempty"`
	IsAuthenticated bool   `json:"is_authenticated"`
	NotesPath       string `json:"notes_path,omitempty"`

	Next     string `json:"next,omitempty"`
	Response string `json:"response,omitempty"`

	Metadata map[string]any `json:"metadata,omitempty"`
	Entities map[string]any `json:"entities,omitempty"`

	UpdatedAt time.Time `json:"updated_at"`
}

var ErrNilState = errors.New("conversation state is nil")

func NewConversationState(threadID, userEmail string, now time.Time) *ConversationState {
	return &ConversationState{
		ThreadID:        threadID,
		UserEmail:       userEmail,
		IsAuthenticated: userEmail != "",
		Metadata:        make(map[string]any, 4),
		Entities:        make(map[string]any),
		UpdatedAt:       now.UTC(),
	}
}

func NewMessage(role contractx.Role, content string, now time.Time) contractx.Message {
	return contractx.Message{
		ID:        uuid.NewString(),
		Role:      role,
		Content:   content,
		Timestamp: now.UTC(),
	}
}

func (s *ConversationState) Touch(now time.Time) {
	s.UpdatedAt = now.UTC()
}

func (s *ConversationState) AppendMessage(msg contractx.Message) {
	s.Messages = append(s.Messages, msg)
}

// LatestText returns the trimmed content of the newest user message, falling
// back to the raw turn text.
func (s *ConversationState) LatestText() string {
	for i := len(s.Messages) - 1; i >= 0; i-- {
		if s.Messages[i].Role == contractx.RoleUser {
			return strings.TrimSpace(s.Messages[i].Content)
		}
	}
	return strings.TrimSpace(s.Text)
}

// PendingToolCalls returns the tool calls of the newest message when that
// message is an assistant message still waiting on results. Once tool-result
// messages have been appended the newest message is tool-role and nothing is
// pending.
func (s *ConversationState) PendingToolCalls() []contractx.ToolCall {
	if len(s.Messages) == 0 {
		return nil
	}
	last := s.Messages[len(s.Messages)-1]
	if last.Role != contractx.RoleAssistant || len(last.ToolCalls) == 0 {
		return nil
	}
	return last.ToolCalls
}

func (s *ConversationState) SetMetadata(key string, value any) {
	if s.Metadata == nil {
		s.Metadata = make(map[string]any, 4)
	}
	s.Metadata[key] = value
}

func (s *ConversationState) MetadataString(key string) string {
	if s.Metadata == nil {
		return ""
	}
	v, ok := s.Metadata[key].(string)
	if !ok {
		return ""
	}
	return v
}

func (s *ConversationState) MetadataFloat(key string) float64 {
	if s.Metadata == nil {
		return 0
	}
	switch v := s.Metadata[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return 0
}

func (s *ConversationState) Validate() error {
	if s == nil {
		return ErrNilState
	}
	if strings.TrimSpace(s.ThreadID) == "" {
		return fmt.Errorf("%w: thread id", contractx.ErrValidation)
	}
	for i, msg := range s.Messages {
		switch msg.Role {
		case contractx.RoleUser, contractx.RoleAssistant, contractx.RoleSystem, contractx.RoleTool:
		default:
			return fmt.Errorf("%w: message %d has role %q", contractx.ErrValidation, i, msg.Role)
		}
	}
	return nil
}

// Delta is the partial state update a node or agent produces. It is merged
// into the state only after the node completes, never mid-node.
type Delta struct {
	Messages        []contractx.Message
	Response        string
	Next            string
	NotesPath       *string
	IsAuthenticated *bool
	Metadata        map[string]any
}

func (d *Delta) Apply(s *ConversationState, now time.Time) {
	if d == nil || s == nil {
		return
	}
	for _, msg := range d.Messages {
		s.AppendMessage(msg)
	}
	if d.Response != "" {
		s.Response = d.Response
	}
	if d.Next != "" {
		s.Next = d.Next
	}
	if d.NotesPath != nil {
		s.NotesPath = *d.NotesPath
	}
	if d.IsAuthenticated != nil {
		s.IsAuthenticated = *d.IsAuthenticated
	}
	for k, v := range d.Metadata {
		s.SetMetadata(k, v)
	}
	s.Touch(now)
}
