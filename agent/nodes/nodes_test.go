package assistantnode

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	accountsx "github.com/samantha-labs/assistant/agent/accounts"
	contractx "github.com/samantha-labs/assistant/agent/contract"
	statex "github.com/samantha-labs/assistant/agent/state"
	toolx "github.com/samantha-labs/assistant/agent/tool"
)

func TestConfigurationRouter(t *testing.T) {
	t.Parallel()

	now := time.Now()
	build := func(authenticated bool, notesPath, latest string) *statex.ConversationState {
		st := statex.NewConversationState("thread-1", "alice@example.com", now)
		st.IsAuthenticated = authenticated
		st.NotesPath = notesPath
		st.AppendMessage(statex.NewMessage(contractx.RoleUser, latest, now))
		return st
	}

	tests := []struct {
		name string
		st   *statex.ConversationState
		want string
	}{
		{"nil state", nil, RouteAuthFlow},
		{"unauthenticated", build(false, "", "oi"), RouteAuthFlow},
		{"no notes path plain message", build(true, "", "oi"), RouteWaitForInput},
		{"no notes path url message", build(true, "", "https://github.com/alice/vault"), RouteUpdateNotesPath},
		{"invalid notes path url message", build(true, "ftp://x", "HTTPS://github.com/alice/vault"), RouteUpdateNotesPath},
		{"configured", build(true, "https://github.com/alice/vault", "oi"), RouteContinue},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ConfigurationRouter(tc.st); got != tc.want {
				t.Fatalf("ConfigurationRouter() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestInitStateCreatesAndReloads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := statex.NewMemoryStore()
	now := time.Now()

	st, err := InitState(ctx, GraphInput{ThreadID: "t1", Text: "oi", UserEmail: "alice@example.com"}, store, now)
	if err != nil {
		t.Fatalf("InitState() error = %v", err)
	}
	if !st.IsAuthenticated || st.UserEmail != "alice@example.com" {
		t.Fatalf("state not authenticated: %#v", st)
	}
	if len(st.Messages) != 1 || st.Messages[0].Role != contractx.RoleUser {
		t.Fatalf("expected one user message, got %#v", st.Messages)
	}

	st.Response = "olá"
	st.Next = statex.RouteEnd
	if err := store.Save(ctx, st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	st2, err := InitState(ctx, GraphInput{ThreadID: "t1", Text: "segunda mensagem"}, store, now.Add(time.Minute))
	if err != nil {
		t.Fatalf("InitState() reload error = %v", err)
	}
	if len(st2.Messages) != 2 {
		t.Fatalf("expected appended history, got %d messages", len(st2.Messages))
	}
	if st2.Response != "" || st2.Next != "" {
		t.Fatalf("per-turn fields must reset, got response=%q next=%q", st2.Response, st2.Next)
	}
	if st2.UserEmail != "alice@example.com" {
		t.Fatalf("email should survive the checkpoint, got %q", st2.UserEmail)
	}
}

func TestInitStateValidatesInput(t *testing.T) {
	t.Parallel()

	store := statex.NewMemoryStore()
	if _, err := InitState(context.Background(), GraphInput{Text: "oi"}, store, time.Now()); err == nil {
		t.Fatal("expected error for missing thread id")
	}
	if _, err := InitState(context.Background(), GraphInput{ThreadID: "t1"}, store, time.Now()); err == nil {
		t.Fatal("expected error for missing text")
	}
}

func TestCheckUser(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	accounts := accountsx.NewMemoryStore(&accountsx.Account{
		Email:     "alice@example.com",
		NotesPath: "https://github.com/alice/vault",
	})

	st := statex.NewConversationState("t1", "alice@example.com", now)
	delta, err := CheckUser(ctx, st, accounts)
	if err != nil {
		t.Fatalf("CheckUser() error = %v", err)
	}
	if delta.IsAuthenticated == nil || !*delta.IsAuthenticated {
		t.Fatal("expected authenticated delta")
	}
	if delta.NotesPath == nil || *delta.NotesPath != "https://github.com/alice/vault" {
		t.Fatalf("expected notes path from account, got %#v", delta.NotesPath)
	}

	st = statex.NewConversationState("t2", "bob@example.com", now)
	delta, err = CheckUser(ctx, st, accounts)
	if err != nil {
		t.Fatalf("CheckUser() unknown email error = %v", err)
	}
	if delta.IsAuthenticated == nil || *delta.IsAuthenticated {
		t.Fatal("unknown email must demote to unauthenticated")
	}

	st = statex.NewConversationState("t3", "", now)
	delta, err = CheckUser(ctx, st, accounts)
	if err != nil {
		t.Fatalf("CheckUser() anonymous error = %v", err)
	}
	if delta.IsAuthenticated == nil || *delta.IsAuthenticated {
		t.Fatal("anonymous thread must stay unauthenticated")
	}
}

func TestUpdateNotesPath(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	accounts := accountsx.NewMemoryStore(&accountsx.Account{Email: "alice@example.com"})

	st := statex.NewConversationState("t1", "alice@example.com", now)
	st.AppendMessage(statex.NewMessage(contractx.RoleUser, "https://github.com/alice/vault", now))

	delta, err := UpdateNotesPath(ctx, st, accounts, now)
	if err != nil {
		t.Fatalf("UpdateNotesPath() error = %v", err)
	}
	if delta.NotesPath == nil || *delta.NotesPath != "https://github.com/alice/vault" {
		t.Fatalf("unexpected notes path delta %#v", delta.NotesPath)
	}
	if !strings.Contains(delta.Response, "Caminho das notas atualizado") {
		t.Fatalf("unexpected response %q", delta.Response)
	}

	account, err := accounts.FindByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail() error = %v", err)
	}
	if account.NotesPath != "https://github.com/alice/vault" {
		t.Fatalf("notes path not persisted: %q", account.NotesPath)
	}
}

func TestUpdateNotesPathRejectsNonGitHubURL(t *testing.T) {
	t.Parallel()

	now := time.Now()
	accounts := accountsx.NewMemoryStore(&accountsx.Account{Email: "alice@example.com"})

	st := statex.NewConversationState("t1", "alice@example.com", now)
	st.AppendMessage(statex.NewMessage(contractx.RoleUser, "https://gitlab.com/alice/vault", now))

	delta, err := UpdateNotesPath(context.Background(), st, accounts, now)
	if err != nil {
		t.Fatalf("UpdateNotesPath() error = %v", err)
	}
	if delta.NotesPath != nil {
		t.Fatal("invalid url must not update the notes path")
	}
	if !strings.Contains(delta.Response, "repositório do GitHub") {
		t.Fatalf("unexpected response %q", delta.Response)
	}
}

type notesAwareTool struct {
	lastParams map[string]any
}

func (f *notesAwareTool) Name() string        { return "notes_search" }
func (f *notesAwareTool) Description() string { return "fake notes tool" }

func (f *notesAwareTool) Schema() toolx.Schema {
	return toolx.Schema{
		"query":      {Type: "string", Required: true},
		"notes_path": {Type: "string"},
	}
}

func (f *notesAwareTool) Execute(_ context.Context, params map[string]any) contractx.ToolResult {
	f.lastParams = params
	return contractx.ToolResult{Success: true, Output: "ok"}
}

func TestExecuteToolsInjectsNotesPath(t *testing.T) {
	t.Parallel()

	now := time.Now()
	fake := &notesAwareTool{}
	registry, err := toolx.NewRegistry(fake)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	st := statex.NewConversationState("t1", "alice@example.com", now)
	st.NotesPath = "https://github.com/alice/vault"
	call := contractx.ToolCall{ID: "call-1", Name: "notes_search", Args: map[string]any{"query": "ideias"}}
	msg := statex.NewMessage(contractx.RoleAssistant, "", now)
	msg.ToolCalls = []contractx.ToolCall{call}
	st.AppendMessage(msg)

	delta, err := ExecuteTools(context.Background(), st, registry, now)
	if err != nil {
		t.Fatalf("ExecuteTools() error = %v", err)
	}
	if len(delta.Messages) != 1 {
		t.Fatalf("expected one tool message, got %d", len(delta.Messages))
	}
	result := delta.Messages[0]
	if result.Role != contractx.RoleTool || result.ToolCallID != "call-1" {
		t.Fatalf("unexpected tool message %#v", result)
	}
	if fake.lastParams["notes_path"] != "https://github.com/alice/vault" {
		t.Fatalf("notes path not injected: %#v", fake.lastParams)
	}

	var parsed contractx.ToolResult
	if err := json.Unmarshal([]byte(result.Content), &parsed); err != nil {
		t.Fatalf("tool message content is not a tool result: %v", err)
	}
	if !parsed.Success || parsed.Output != "ok" {
		t.Fatalf("unexpected tool result %#v", parsed)
	}
}

func TestExecuteToolsWithoutPendingCalls(t *testing.T) {
	t.Parallel()

	registry, err := toolx.NewRegistry()
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	st := statex.NewConversationState("t1", "", time.Now())

	delta, err := ExecuteTools(context.Background(), st, registry, time.Now())
	if err != nil {
		t.Fatalf("ExecuteTools() error = %v", err)
	}
	if len(delta.Messages) != 0 {
		t.Fatalf("expected empty delta, got %#v", delta.Messages)
	}
}

func TestFinalizeDefaultsEmptyResponse(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	now := time.Now()
	store := statex.NewMemoryStore()

	st := statex.NewConversationState("t1", "alice@example.com", now)
	out, err := Finalize(ctx, st, store, now)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if out.Response != emptyResponseMessage {
		t.Fatalf("unexpected response %q", out.Response)
	}
	if out.Agent != systemAgentName {
		t.Fatalf("unexpected agent %q", out.Agent)
	}

	saved, err := store.Load(ctx, "t1")
	if err != nil {
		t.Fatalf("checkpoint not saved: %v", err)
	}
	if saved.Response != emptyResponseMessage {
		t.Fatalf("checkpoint response mismatch: %q", saved.Response)
	}
	if saved.Next != statex.RouteEnd {
		t.Fatalf("checkpoint should be terminal, got next=%q", saved.Next)
	}
}

func TestFinalizeCarriesAgentAndConfidence(t *testing.T) {
	t.Parallel()

	now := time.Now()
	st := statex.NewConversationState("t1", "alice@example.com", now)
	st.Response = "Olá!"
	st.SetMetadata(statex.MetaAgent, "general")
	st.SetMetadata(statex.MetaConfidence, 0.9)

	out, err := Finalize(context.Background(), st, statex.NewMemoryStore(), now)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if out.Response != "Olá!" || out.Agent != "general" || out.Confidence != 0.9 {
		t.Fatalf("unexpected output %#v", out)
	}
}
