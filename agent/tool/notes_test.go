package tool

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestParseNotesRepo(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"https://github.com/alice/vault", "alice/vault", false},
		{"https://github.com/alice/vault.git", "alice/vault", false},
		{"https://github.com/alice/vault/", "alice/vault", false},
		{"alice/vault", "", true},
		{"https://gitlab.com/alice/vault", "", true},
		{"https://github.com/", "", true},
		{"", "", true},
	}

	for _, tc := range tests {
		got, err := parseNotesRepo(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("parseNotesRepo(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("parseNotesRepo(%q): %v", tc.in, err)
			continue
		}
		if got != tc.want {
			t.Errorf("parseNotesRepo(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestNormalizeNotePath(t *testing.T) {
	t.Parallel()

	if _, err := normalizeNotePath("  "); err == nil {
		t.Fatal("expected error for blank path")
	}
	got, err := normalizeNotePath("daily/today")
	if err != nil {
		t.Fatalf("normalizeNotePath: %v", err)
	}
	if got != "daily/today.md" {
		t.Fatalf("unexpected path %q", got)
	}
	got, _ = normalizeNotePath("daily/today.md")
	if got != "daily/today.md" {
		t.Fatalf("extension should not double, got %q", got)
	}
}

func TestNotesReadTool(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/repos/alice/vault/contents/") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer token-1" {
			t.Errorf("unexpected authorization header %q", got)
		}
		_ = json.NewEncoder(w).Encode(githubContentFile{
			Path:     "ideas.md",
			SHA:      "abc123",
			Content:  base64.StdEncoding.EncodeToString([]byte("# Ideias\n- uma")),
			Encoding: "base64",
		})
	}))
	defer srv.Close()

	_, readTool, _ := NewNotesTools(GitHubConfig{Token: "token-1", BaseURL: srv.URL})

	result := readTool.Execute(context.Background(), map[string]any{
		"note_path":  "ideas",
		"notes_path": "https://github.com/alice/vault",
	})
	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}
	if result.Output != "# Ideias\n- uma" {
		t.Fatalf("unexpected content %q", result.Output)
	}
}

func TestNotesReadToolRequiresRepo(t *testing.T) {
	t.Parallel()

	_, readTool, _ := NewNotesTools(GitHubConfig{})
	result := readTool.Execute(context.Background(), map[string]any{"note_path": "ideas"})
	if result.Success {
		t.Fatal("expected failure without notes_path")
	}
	if !strings.Contains(result.Error, "valid GitHub notes repository") {
		t.Fatalf("unexpected error %q", result.Error)
	}
}

func TestNotesWriteToolCreatesAndUpdates(t *testing.T) {
	t.Parallel()

	var existingSHA string
	var lastWrite githubWriteRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			if existingSHA == "" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_ = json.NewEncoder(w).Encode(githubContentFile{SHA: existingSHA})
		case http.MethodPut:
			if err := json.NewDecoder(r.Body).Decode(&lastWrite); err != nil {
				t.Errorf("decode write body: %v", err)
			}
			_, _ = w.Write([]byte(`{}`))
		}
	}))
	defer srv.Close()

	_, _, writeTool := NewNotesTools(GitHubConfig{Token: "token-1", BaseURL: srv.URL})
	ctx := context.Background()
	params := map[string]any{
		"note_path":  "ideas",
		"content":    "novo conteúdo",
		"notes_path": "https://github.com/alice/vault",
	}

	result := writeTool.Execute(ctx, params)
	if !result.Success {
		t.Fatalf("create failed: %q", result.Error)
	}
	if !strings.Contains(result.Output, "criada") {
		t.Fatalf("expected create message, got %q", result.Output)
	}
	if lastWrite.SHA != "" {
		t.Fatalf("create should not carry a sha, got %q", lastWrite.SHA)
	}

	existingSHA = "abc123"
	result = writeTool.Execute(ctx, params)
	if !result.Success {
		t.Fatalf("update failed: %q", result.Error)
	}
	if !strings.Contains(result.Output, "atualizada") {
		t.Fatalf("expected update message, got %q", result.Output)
	}
	if lastWrite.SHA != "abc123" {
		t.Fatalf("update should carry the existing sha, got %q", lastWrite.SHA)
	}
}
