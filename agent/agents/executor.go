package agents

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/samantha-labs/assistant/agent/contract"
	statex "github.com/samantha-labs/assistant/agent/state"
	toolx "github.com/samantha-labs/assistant/agent/tool"
)

const executorToolsMarker = "{tools}"

// ExecutorAgent plans tool invocations. It emits tool-call messages that the
// graph's tool node executes; the results come back as tool-role messages and
// the executor is invoked again to continue or conclude.
type ExecutorAgent struct {
	runner       compose.Runnable[[]*schema.Message, *schema.Message]
	systemPrompt string
}

// BuildExecutorPrompt fills the {tools} marker with one line per registered
// tool. Descriptions are flattened to a single line.
func BuildExecutorPrompt(template string, registry *toolx.Registry) string {
	lines := make([]string, 0)
	for _, d := range registry.List() {
		desc := strings.Join(strings.Fields(d.Description), " ")
		lines = append(lines, fmt.Sprintf("- %s: %s", d.Name, desc))
	}
	return strings.ReplaceAll(template, executorToolsMarker, strings.Join(lines, "\n"))
}

func NewExecutorAgent(
	ctx context.Context,
	chatModel einomodel.ToolCallingChatModel,
	systemPrompt string,
	registry *toolx.Registry,
) (*ExecutorAgent, error) {
	boundModel, err := chatModel.WithTools(registry.Infos())
	if err != nil {
		return nil, fmt.Errorf("%w: bind tools to executor model: %v", contractx.ErrModelInvoke, err)
	}
	runner, err := compileChatGraph(ctx, boundModel, "executor.model_graph")
	if err != nil {
		return nil, fmt.Errorf("%w: compile executor agent graph: %v", contractx.ErrModelInvoke, err)
	}
	return &ExecutorAgent{
		runner:       runner,
		systemPrompt: BuildExecutorPrompt(systemPrompt, registry),
	}, nil
}

func (e *ExecutorAgent) Name() string { return string(contractx.AgentTypeExecutor) }

func (e *ExecutorAgent) Description() string {
	return "Executa tarefas práticas usando ferramentas: comandos, clima, buscas na web, notas e emails."
}

func (e *ExecutorAgent) CanHandle(st *statex.ConversationState) bool {
	return st != nil && len(st.Messages) > 0
}

func (e *ExecutorAgent) Handle(ctx context.Context, st *statex.ConversationState) (*statex.Delta, error) {
	// The executor works off the supervisor's instructions and prior tool
	// results; raw user messages are dropped so it never re-plans from them.
	msgs := make([]*schema.Message, 0, len(st.Messages)+1)
	msgs = append(msgs, schema.SystemMessage(e.systemPrompt))
	for _, m := range st.Messages {
		if m.Role == contractx.RoleUser {
			continue
		}
		msgs = append(msgs, toSchemaMessages([]contractx.Message{m})...)
	}

	out, err := e.runner.Invoke(ctx, msgs)
	if err != nil {
		errMsg := statex.NewMessage(contractx.RoleSystem,
			fmt.Sprintf("%v: executor invoke: %v", contractx.ErrModelInvoke, err), time.Now())
		errMsg.Agent = e.Name()
		return &statex.Delta{
			Messages: []contractx.Message{errMsg},
			Metadata: map[string]any{statex.MetaLastError: err.Error()},
		}, nil
	}

	calls, err := fromSchemaToolCalls(out.ToolCalls)
	if err != nil {
		log.Warn().Err(err).Str("thread_id", st.ThreadID).Msg("executor produced malformed tool calls")
		msg := statex.NewMessage(contractx.RoleSystem,
			"Use only the possible tools and agents", time.Now())
		msg.Agent = e.Name()
		return &statex.Delta{Messages: []contractx.Message{msg}}, nil
	}

	if len(calls) > 0 {
		if gate := missingParamsGate(calls); gate != nil {
			gate.Agent = e.Name()
			return &statex.Delta{
				Messages: []contractx.Message{*gate},
				Response: gate.Content,
				Metadata: map[string]any{statex.MetaAgent: e.Name()},
			}, nil
		}
		msg := statex.NewMessage(contractx.RoleAssistant, strings.TrimSpace(out.Content), time.Now())
		msg.Agent = e.Name()
		msg.ToolCalls = calls
		return &statex.Delta{Messages: []contractx.Message{msg}}, nil
	}

	text := strings.TrimSpace(out.Content)
	msg := statex.NewMessage(contractx.RoleAssistant, text, time.Now())
	msg.Agent = e.Name()
	return &statex.Delta{
		Messages: []contractx.Message{msg},
		Response: text,
		Metadata: map[string]any{statex.MetaAgent: e.Name()},
	}, nil
}

// missingParamsGate blocks tool calls carrying empty argument values and
// asks the user for the missing details instead.
func missingParamsGate(calls []contractx.ToolCall) *contractx.Message {
	for _, call := range calls {
		var missing []string
		for name, value := range call.Args {
			if isFalsy(value) {
				missing = append(missing, name)
			}
		}
		if len(missing) == 0 {
			continue
		}
		sort.Strings(missing)
		msg := statex.NewMessage(contractx.RoleAssistant, fmt.Sprintf(
			"Para usar a ferramenta '%s', preciso das seguintes informações: %s. Por favor, forneça os detalhes que faltam.",
			call.Name, strings.Join(missing, ", ")), time.Now())
		return &msg
	}
	return nil
}

func isFalsy(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case float64:
		return v == 0
	case int:
		return v == 0
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	}
	return false
}
