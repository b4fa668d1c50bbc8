package assistantnode

import (
	"fmt"
	"strings"

	contractx "github.com/samantha-labs/assistant/agent/contract"
)

// Node names used when assembling the turn graph.
const (
	NodeInitState              = "init_state"
	NodeCheckUser              = "check_user"
	NodeSupervisor             = "supervisor"
	NodeTools                  = "execute_tools"
	NodeAuthenticationRequired = "authentication_required"
	NodeWaitForInput           = "wait_for_input"
	NodeUpdateNotesPath        = "update_notes_path"
	NodeFinalize               = "finalize_response"
)

// Configuration routes decided before any agent runs.
const (
	RouteAuthFlow        = "auth_flow"
	RouteWaitForInput    = "wait_for_input"
	RouteUpdateNotesPath = "update_notes_path"
	RouteContinue        = "continue"
)

type GraphInput struct {
	ThreadID  string
	Text      string
	UserEmail string
}

type GraphOutput struct {
	Response   string
	Agent      string
	Confidence float64
	Metadata   map[string]any
}

func (in GraphInput) Validate() error {
	if strings.TrimSpace(in.ThreadID) == "" {
		return fmt.Errorf("%w: thread id is required", contractx.ErrValidation)
	}
	if strings.TrimSpace(in.Text) == "" {
		return fmt.Errorf("%w: text is required", contractx.ErrValidation)
	}
	return nil
}
