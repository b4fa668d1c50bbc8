package assistantnode

import (
	"time"

	contractx "github.com/samantha-labs/assistant/agent/contract"
	statex "github.com/samantha-labs/assistant/agent/state"
)

const (
	authRequiredMessage = "Por favor, autentique-se para continuar. Use o argumento --email ao iniciar o CLI."
	waitForInputMessage = "Por favor, forneça o caminho do repositório do GitHub onde as notas serão escritas"

	systemAgentName = "system"
)

// AuthenticationRequired ends the turn asking the user to authenticate.
func AuthenticationRequired(st *statex.ConversationState, now time.Time) (*statex.Delta, error) {
	if st == nil {
		return nil, statex.ErrNilState
	}
	return terminalDelta(authRequiredMessage, now), nil
}

// WaitForInput ends the turn asking for the notes repository URL.
func WaitForInput(st *statex.ConversationState, now time.Time) (*statex.Delta, error) {
	if st == nil {
		return nil, statex.ErrNilState
	}
	return terminalDelta(waitForInputMessage, now), nil
}

func terminalDelta(text string, now time.Time) *statex.Delta {
	msg := statex.NewMessage(contractx.RoleAssistant, text, now)
	msg.Agent = systemAgentName
	return &statex.Delta{
		Messages: []contractx.Message{msg},
		Response: text,
		Next:     statex.RouteEnd,
		Metadata: map[string]any{statex.MetaAgent: systemAgentName},
	}
}
