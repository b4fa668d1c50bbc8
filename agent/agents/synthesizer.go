package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"

	contractx "github.com/samantha-labs/assistant/agent/contract"
	statex "github.com/samantha-labs/assistant/agent/state"
)

// SynthesizerAgent turns accumulated agent and tool output into the final
// user-facing reply.
type SynthesizerAgent struct {
	runner       compose.Runnable[[]*schema.Message, *schema.Message]
	systemPrompt string
}

func NewSynthesizerAgent(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*SynthesizerAgent, error) {
	runner, err := compileChatGraph(ctx, chatModel, "synthesizer.model_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile synthesizer agent graph: %v", contractx.ErrModelInvoke, err)
	}
	return &SynthesizerAgent{runner: runner, systemPrompt: systemPrompt}, nil
}

func (s *SynthesizerAgent) Name() string { return string(contractx.AgentTypeSynthesizer) }

func (s *SynthesizerAgent) Description() string {
	return "Consolida resultados de outros agentes e ferramentas em uma resposta final clara para o usuário."
}

func (s *SynthesizerAgent) CanHandle(st *statex.ConversationState) bool {
	return st != nil && len(st.Messages) > 0
}

func (s *SynthesizerAgent) Handle(ctx context.Context, st *statex.ConversationState) (*statex.Delta, error) {
	msgs := make([]*schema.Message, 0, len(st.Messages)+1)
	msgs = append(msgs, schema.SystemMessage(s.systemPrompt))
	msgs = append(msgs, toSchemaMessages(st.Messages)...)

	out, err := s.runner.Invoke(ctx, msgs)
	if err != nil {
		// The last agent response survives as the turn's output; the failure
		// is recorded as a system message instead of ending the turn early.
		errMsg := statex.NewMessage(contractx.RoleSystem,
			fmt.Sprintf("%v: synthesizer invoke: %v", contractx.ErrModelInvoke, err), time.Now())
		errMsg.Agent = s.Name()
		return &statex.Delta{
			Messages: []contractx.Message{errMsg},
			Metadata: map[string]any{statex.MetaLastError: err.Error()},
		}, nil
	}

	text := strings.TrimSpace(out.Content)
	if text == "" {
		text = st.Response
	}

	msg := statex.NewMessage(contractx.RoleAssistant, text, time.Now())
	msg.Agent = s.Name()
	return &statex.Delta{
		Messages: []contractx.Message{msg},
		Response: text,
		Metadata: map[string]any{statex.MetaAgent: s.Name()},
	}, nil
}
