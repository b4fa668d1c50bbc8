package assistantnode

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	accountsx "github.com/samantha-labs/assistant/agent/accounts"
	statex "github.com/samantha-labs/assistant/agent/state"
)

// CheckUser resolves the thread's account. An unknown email demotes the
// thread to unauthenticated; a known one pulls the configured notes path.
func CheckUser(ctx context.Context, st *statex.ConversationState, store accountsx.Store) (*statex.Delta, error) {
	if st == nil {
		return nil, statex.ErrNilState
	}

	authenticated := false
	if st.UserEmail == "" {
		return &statex.Delta{IsAuthenticated: &authenticated}, nil
	}

	account, err := store.FindByEmail(ctx, st.UserEmail)
	if err != nil {
		if errors.Is(err, accountsx.ErrAccountNotFound) {
			log.Warn().Str("email", st.UserEmail).Msg("no account for authenticated email")
			return &statex.Delta{IsAuthenticated: &authenticated}, nil
		}
		return nil, fmt.Errorf("check user: %w", err)
	}

	authenticated = true
	delta := &statex.Delta{IsAuthenticated: &authenticated}
	if account.NotesPath != "" {
		notesPath := account.NotesPath
		delta.NotesPath = &notesPath
	}
	return delta, nil
}
