package assistantnode

import (
	"context"
	"errors"
	"strings"
	"time"

	contractx "github.com/samantha-labs/assistant/agent/contract"
	statex "github.com/samantha-labs/assistant/agent/state"
)

// InitState loads the thread's checkpoint or creates a fresh state, then
// folds the incoming turn into it. Per-turn routing fields are reset so a
// stale checkpoint never short-circuits the new turn.
func InitState(ctx context.Context, in GraphInput, store statex.Store, now time.Time) (*statex.ConversationState, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	st, err := store.Load(ctx, in.ThreadID)
	if err != nil {
		if !errors.Is(err, statex.ErrStateNotFound) {
			return nil, err
		}
		st = statex.NewConversationState(in.ThreadID, strings.TrimSpace(in.UserEmail), now)
	}

	if email := strings.TrimSpace(in.UserEmail); email != "" {
		st.UserEmail = email
		st.IsAuthenticated = true
	}

	st.Text = strings.TrimSpace(in.Text)
	st.Next = ""
	st.Response = ""
	st.SetMetadata("turn_started_at", now.UTC().Format(time.RFC3339))

	msg := statex.NewMessage(contractx.RoleUser, st.Text, now)
	st.AppendMessage(msg)
	st.Touch(now)

	return st, nil
}
