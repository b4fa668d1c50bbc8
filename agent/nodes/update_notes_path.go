package assistantnode

import (
	"context"
	"fmt"
	"strings"
	"time"

	accountsx "github.com/samantha-labs/assistant/agent/accounts"
	statex "github.com/samantha-labs/assistant/agent/state"
)

const (
	invalidNotesPathMessage = "Erro: O caminho das notas deve ser um repositório do GitHub (começando com 'https://github.com/')."
	notesPathUpdatedFormat  = "Caminho das notas atualizado para: %s. Agora podemos continuar."
)

// UpdateNotesPath treats the latest user message as the notes repository URL,
// persists it on the account and confirms. A non-GitHub URL ends the turn
// with an error message instead of failing the graph.
func UpdateNotesPath(ctx context.Context, st *statex.ConversationState, store accountsx.Store, now time.Time) (*statex.Delta, error) {
	if st == nil {
		return nil, statex.ErrNilState
	}

	candidate := strings.TrimSpace(st.LatestText())
	if !strings.HasPrefix(candidate, notesPathPrefix) {
		return terminalDelta(invalidNotesPathMessage, now), nil
	}

	if _, err := store.UpdateNotesPath(ctx, st.UserEmail, candidate); err != nil {
		return nil, fmt.Errorf("update notes path: %w", err)
	}

	delta := terminalDelta(fmt.Sprintf(notesPathUpdatedFormat, candidate), now)
	delta.NotesPath = &candidate
	return delta, nil
}
