package assistantnode

import (
	"context"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	statex "github.com/samantha-labs/assistant/agent/state"
)

const emptyResponseMessage = "A mensagem estava vazia, aconteceu algum problema!"

// Finalize checkpoints the state and shapes the graph output. A checkpoint
// failure is logged and noted in the metadata but never loses the response.
func Finalize(ctx context.Context, st *statex.ConversationState, store statex.Store, now time.Time) (GraphOutput, error) {
	if st == nil {
		return GraphOutput{}, statex.ErrNilState
	}

	if strings.TrimSpace(st.Response) == "" {
		st.Response = emptyResponseMessage
		st.SetMetadata(statex.MetaAgent, systemAgentName)
	}

	st.Next = statex.RouteEnd
	st.Touch(now)

	if err := store.Save(ctx, st); err != nil {
		log.Error().Err(err).Str("thread_id", st.ThreadID).Msg("failed to checkpoint conversation state")
		st.SetMetadata("checkpoint_error", err.Error())
	}

	agent := st.MetadataString(statex.MetaAgent)
	if agent == "" {
		agent = systemAgentName
	}

	return GraphOutput{
		Response:   st.Response,
		Agent:      agent,
		Confidence: st.MetadataFloat(statex.MetaConfidence),
		Metadata:   st.Metadata,
	}, nil
}
