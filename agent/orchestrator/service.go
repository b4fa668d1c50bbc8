package orchestrator

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/cloudwego/eino/compose"
	"github.com/rs/zerolog/log"

	accountsx "github.com/samantha-labs/assistant/agent/accounts"
	agentsx "github.com/samantha-labs/assistant/agent/agents"
	contractx "github.com/samantha-labs/assistant/agent/contract"
	nodex "github.com/samantha-labs/assistant/agent/nodes"
	statex "github.com/samantha-labs/assistant/agent/state"
	toolx "github.com/samantha-labs/assistant/agent/tool"
)

const turnFailureMessage = "Ocorreu um erro inesperado. Por favor, tente novamente mais tarde."

// Service drives one conversation turn through the compiled graph. Turns on
// the same thread are serialized; different threads run concurrently.
type Service struct {
	store      statex.Store
	accounts   accountsx.Store
	supervisor *agentsx.Supervisor
	agents     *agentsx.Registry
	tools      *toolx.Registry

	runner compose.Runnable[nodex.GraphInput, nodex.GraphOutput]

	mu      sync.Mutex
	threads map[string]*sync.Mutex

	now func() time.Time
}

func New(
	store statex.Store,
	accounts accountsx.Store,
	supervisor *agentsx.Supervisor,
	agents *agentsx.Registry,
	tools *toolx.Registry,
) (*Service, error) {
	if store == nil {
		return nil, errors.New("state store is required")
	}
	if accounts == nil {
		return nil, errors.New("account store is required")
	}
	if supervisor == nil {
		return nil, errors.New("supervisor is required")
	}
	if agents == nil || len(agents.Names()) == 0 {
		return nil, errors.New("at least one agent is required")
	}
	if tools == nil {
		return nil, errors.New("tool registry is required")
	}

	s := &Service{
		store:      store,
		accounts:   accounts,
		supervisor: supervisor,
		agents:     agents,
		tools:      tools,
		threads:    make(map[string]*sync.Mutex),
		now:        time.Now,
	}

	runner, err := s.compileTurnGraph(context.Background())
	if err != nil {
		return nil, err
	}
	s.runner = runner

	return s, nil
}

// ProcessTurn runs one user message through the graph. It never returns an
// error for model, tool or routing failures: those collapse into a generic
// failure result so the caller always has something to show the user.
func (s *Service) ProcessTurn(ctx context.Context, threadID, text, userEmail string) contractx.TurnResult {
	threadID = strings.TrimSpace(threadID)

	unlock := s.lockThread(threadID)
	defer unlock()

	out, err := s.runTurn(ctx, nodex.GraphInput{
		ThreadID:  threadID,
		Text:      text,
		UserEmail: userEmail,
	})
	if err != nil {
		log.Error().Err(err).Str("thread_id", threadID).Msg("turn failed")
		return contractx.TurnResult{
			Response: turnFailureMessage,
			Agent:    "system",
			Metadata: map[string]any{statex.MetaLastError: err.Error()},
		}
	}

	return contractx.TurnResult{
		Response:   out.Response,
		Agent:      out.Agent,
		Confidence: out.Confidence,
		Metadata:   out.Metadata,
	}
}

func (s *Service) runTurn(ctx context.Context, in nodex.GraphInput) (out nodex.GraphOutput, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Any("panic", r).Str("thread_id", in.ThreadID).Msg("turn panicked")
			err = errors.New("turn panicked")
		}
	}()
	return s.runner.Invoke(ctx, in)
}

// GetHistory pairs each user message with the assistant reply that followed
// it. Tool-call scaffolding and system messages are skipped. A non-empty
// email only sees threads it owns; anonymous threads are visible to anyone.
func (s *Service) GetHistory(ctx context.Context, threadID, email string) ([]contractx.HistoryEntry, error) {
	st, err := s.store.Load(ctx, strings.TrimSpace(threadID))
	if err != nil {
		if errors.Is(err, statex.ErrStateNotFound) {
			return nil, nil
		}
		return nil, err
	}

	email = strings.TrimSpace(email)
	if email != "" && st.UserEmail != "" && !strings.EqualFold(st.UserEmail, email) {
		return nil, nil
	}

	var entries []contractx.HistoryEntry
	for i := 0; i < len(st.Messages); i++ {
		msg := st.Messages[i]
		if msg.Role != contractx.RoleUser {
			continue
		}
		entry := contractx.HistoryEntry{
			Text:      msg.Content,
			Timestamp: msg.Timestamp,
		}
		for j := i + 1; j < len(st.Messages); j++ {
			reply := st.Messages[j]
			if reply.Role == contractx.RoleUser {
				break
			}
			if reply.Role == contractx.RoleAssistant && len(reply.ToolCalls) == 0 && strings.TrimSpace(reply.Content) != "" {
				entry.Response = reply.Content
			}
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (s *Service) lockThread(threadID string) func() {
	s.mu.Lock()
	lock, ok := s.threads[threadID]
	if !ok {
		lock = &sync.Mutex{}
		s.threads[threadID] = lock
	}
	s.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
