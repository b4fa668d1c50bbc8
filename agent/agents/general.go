package agents

import (
	"context"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/samantha-labs/assistant/agent/contract"
	statex "github.com/samantha-labs/assistant/agent/state"
)

// GeneralAgent answers everyday questions and small talk directly, without
// tools.
type GeneralAgent struct {
	runner       compose.Runnable[[]*schema.Message, *schema.Message]
	systemPrompt string
}

type generalLLMOutput struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

func NewGeneralAgent(ctx context.Context, chatModel einomodel.BaseChatModel, systemPrompt string) (*GeneralAgent, error) {
	runner, err := compileChatGraph(ctx, chatModel, "general.model_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile general agent graph: %v", contractx.ErrModelInvoke, err)
	}
	return &GeneralAgent{runner: runner, systemPrompt: systemPrompt}, nil
}

func (g *GeneralAgent) Name() string { return string(contractx.AgentTypeGeneral) }

func (g *GeneralAgent) Description() string {
	return "Responde perguntas gerais, conversas cotidianas e dúvidas que não exigem ferramentas."
}

func (g *GeneralAgent) CanHandle(st *statex.ConversationState) bool {
	return st != nil && st.LatestText() != ""
}

func (g *GeneralAgent) Handle(ctx context.Context, st *statex.ConversationState) (*statex.Delta, error) {
	msgs := make([]*schema.Message, 0, len(st.Messages)+1)
	msgs = append(msgs, schema.SystemMessage(g.systemPrompt))
	msgs = append(msgs, toSchemaMessages(st.Messages)...)

	out, err := g.runner.Invoke(ctx, msgs)
	if err != nil {
		log.Error().Err(err).Str("thread_id", st.ThreadID).Msg("general agent model invoke failed")
		msg := statex.NewMessage(contractx.RoleSystem,
			"O agente geral não conseguiu consultar o modelo. Tente novamente.", time.Now())
		msg.Agent = g.Name()
		return &statex.Delta{
			Messages: []contractx.Message{msg},
			Metadata: map[string]any{statex.MetaLastError: err.Error()},
		}, nil
	}

	text := strings.TrimSpace(out.Content)
	confidence := 0.0
	if parsed, perr := ParseStructured[generalLLMOutput](out.Content); perr == nil && strings.TrimSpace(parsed.Text) != "" {
		text = strings.TrimSpace(parsed.Text)
		confidence = parsed.Confidence
	}

	msg := statex.NewMessage(contractx.RoleAssistant, text, time.Now())
	msg.Agent = g.Name()
	return &statex.Delta{
		Messages: []contractx.Message{msg},
		Response: text,
		Metadata: map[string]any{
			statex.MetaAgent:      g.Name(),
			statex.MetaConfidence: confidence,
		},
	}, nil
}
