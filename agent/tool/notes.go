package tool

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/samantha-labs/assistant/agent/contract"
)

const (
	ToolNotesSearch = "notes_search"
	ToolNotesRead   = "notes_read"
	ToolNotesWrite  = "notes_write"

	notesRepoPrefix      = "https://github.com/"
	defaultCommitMessage = "Update note via assistant"
)

type GitHubConfig struct {
	Token   string        `envconfig:"TOKEN" split_words:"true"`
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.github.com"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"15s"`
}

// githubNotesClient talks to the GitHub REST API for a notes repository.
// The three notes tools share one instance.
type githubNotesClient struct {
	token      string
	baseURL    string
	httpClient *http.Client
}

func newGitHubNotesClient(cfg GitHubConfig) *githubNotesClient {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.github.com"
	}
	return &githubNotesClient{
		token:      strings.TrimSpace(cfg.Token),
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *githubNotesClient) headers() map[string]string {
	h := map[string]string{
		"Accept":               "application/vnd.github+json",
		"X-GitHub-Api-Version": "2022-11-28",
	}
	if c.token != "" {
		h["Authorization"] = "Bearer " + c.token
	}
	return h
}

// parseNotesRepo normalizes a notes path URL into the owner/repo form.
func parseNotesRepo(notesPath string) (string, error) {
	repo := strings.TrimSpace(notesPath)
	repo = strings.TrimSuffix(repo, ".git")
	if !strings.HasPrefix(repo, notesRepoPrefix) {
		return "", fmt.Errorf("update your configuration to select a valid GitHub notes repository")
	}
	repo = strings.Trim(strings.TrimPrefix(repo, notesRepoPrefix), "/")
	if repo == "" || !strings.Contains(repo, "/") {
		return "", fmt.Errorf("update your configuration to select a valid GitHub notes repository")
	}
	return repo, nil
}

// normalizeNotePath guarantees the markdown extension.
func normalizeNotePath(notePath string) (string, error) {
	normalized := strings.TrimSpace(notePath)
	if normalized == "" {
		return "", fmt.Errorf("note path is required")
	}
	if !strings.HasSuffix(normalized, ".md") {
		normalized += ".md"
	}
	return normalized, nil
}

type githubContentFile struct {
	Path     string `json:"path"`
	SHA      string `json:"sha"`
	Content  string `json:"content"`
	Encoding string `json:"encoding"`
}

func (c *githubNotesClient) getContents(ctx context.Context, repo, path string) (*githubContentFile, error) {
	endpoint := fmt.Sprintf("%s/repos/%s/contents/%s", c.baseURL, repo, url.PathEscape(path))
	var file githubContentFile
	if err := getJSON(ctx, c.httpClient, endpoint, c.headers(), &file); err != nil {
		return nil, err
	}
	return &file, nil
}

func (file *githubContentFile) decode() (string, error) {
	if file.Encoding != "base64" {
		return file.Content, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.ReplaceAll(file.Content, "\n", ""))
	if err != nil {
		return "", fmt.Errorf("decode note content: %w", err)
	}
	return string(raw), nil
}

// NotesSearchTool searches markdown notes in the configured GitHub repository.
type NotesSearchTool struct {
	client *githubNotesClient
}

// NotesReadTool reads a single note from the configured GitHub repository.
type NotesReadTool struct {
	client *githubNotesClient
}

// NotesWriteTool creates or updates a note in the configured GitHub repository.
type NotesWriteTool struct {
	client *githubNotesClient
}

// NewNotesTools builds the search/read/write trio over one shared client.
func NewNotesTools(cfg GitHubConfig) (*NotesSearchTool, *NotesReadTool, *NotesWriteTool) {
	client := newGitHubNotesClient(cfg)
	return &NotesSearchTool{client: client},
		&NotesReadTool{client: client},
		&NotesWriteTool{client: client}
}

func (t *NotesSearchTool) Name() string { return ToolNotesSearch }

func (t *NotesSearchTool) Description() string {
	return "Search for notes in the user's GitHub notes repository"
}

func (t *NotesSearchTool) Schema() Schema {
	return Schema{
		"query": {
			Type:        "string",
			Description: "Text to search for in the notes",
			Required:    true,
		},
		"notes_path": {
			Type:        "string",
			Description: "GitHub repository URL holding the notes",
		},
	}
}

type githubSearchResponse struct {
	TotalCount int `json:"total_count"`
	Items      []struct {
		Path string `json:"path"`
	} `json:"items"`
}

func (t *NotesSearchTool) Execute(ctx context.Context, params map[string]any) contractx.ToolResult {
	query := StringParam(params, "query")
	if query == "" {
		return contractx.ToolResult{Success: false, Error: "query is required"}
	}
	repo, err := parseNotesRepo(StringParam(params, "notes_path"))
	if err != nil {
		return contractx.ToolResult{Success: false, Error: err.Error()}
	}

	endpoint := fmt.Sprintf("%s/search/code?q=%s",
		t.client.baseURL, url.QueryEscape(query+" repo:"+repo))

	var data githubSearchResponse
	if err := getJSON(ctx, t.client.httpClient, endpoint, t.client.headers(), &data); err != nil {
		return contractx.ToolResult{Success: false, Error: fmt.Sprintf("error searching notes: %v", err)}
	}

	if len(data.Items) == 0 {
		return contractx.ToolResult{Success: true, Output: "Nenhuma nota encontrada para: " + query}
	}
	paths := make([]string, 0, len(data.Items))
	for _, item := range data.Items {
		paths = append(paths, "- "+item.Path)
	}
	return contractx.ToolResult{
		Success: true,
		Output:  fmt.Sprintf("%d nota(s) encontrada(s):\n%s", data.TotalCount, strings.Join(paths, "\n")),
	}
}

func (t *NotesReadTool) Name() string { return ToolNotesRead }

func (t *NotesReadTool) Description() string {
	return "Read a specific note from the user's GitHub notes repository"
}

func (t *NotesReadTool) Schema() Schema {
	return Schema{
		"note_path": {
			Type:        "string",
			Description: "Path of the note to read, relative to the repository root",
			Required:    true,
		},
		"notes_path": {
			Type:        "string",
			Description: "GitHub repository URL holding the notes",
		},
	}
}

func (t *NotesReadTool) Execute(ctx context.Context, params map[string]any) contractx.ToolResult {
	repo, err := parseNotesRepo(StringParam(params, "notes_path"))
	if err != nil {
		return contractx.ToolResult{Success: false, Error: err.Error()}
	}
	notePath, err := normalizeNotePath(StringParam(params, "note_path"))
	if err != nil {
		return contractx.ToolResult{Success: false, Error: err.Error()}
	}

	file, err := t.client.getContents(ctx, repo, notePath)
	if err != nil {
		return contractx.ToolResult{Success: false, Error: fmt.Sprintf("error reading note: %v", err)}
	}
	content, err := file.decode()
	if err != nil {
		return contractx.ToolResult{Success: false, Error: fmt.Sprintf("error reading note: %v", err)}
	}
	return contractx.ToolResult{Success: true, Output: content}
}

func (t *NotesWriteTool) Name() string { return ToolNotesWrite }

func (t *NotesWriteTool) Description() string {
	return "Create or update a note in the user's GitHub notes repository"
}

func (t *NotesWriteTool) Schema() Schema {
	return Schema{
		"note_path": {
			Type:        "string",
			Description: "Path of the note to create or update",
			Required:    true,
		},
		"content": {
			Type:        "string",
			Description: "Full markdown content of the note",
			Required:    true,
		},
		"commit_message": {
			Type:        "string",
			Description: "Commit message for the change (optional)",
		},
		"notes_path": {
			Type:        "string",
			Description: "GitHub repository URL holding the notes",
		},
	}
}

type githubWriteRequest struct {
	Message string `json:"message"`
	Content string `json:"content"`
	SHA     string `json:"sha,omitempty"`
}

func (t *NotesWriteTool) Execute(ctx context.Context, params map[string]any) contractx.ToolResult {
	repo, err := parseNotesRepo(StringParam(params, "notes_path"))
	if err != nil {
		return contractx.ToolResult{Success: false, Error: err.Error()}
	}
	notePath, err := normalizeNotePath(StringParam(params, "note_path"))
	if err != nil {
		return contractx.ToolResult{Success: false, Error: err.Error()}
	}
	content, ok := params["content"].(string)
	if !ok {
		return contractx.ToolResult{Success: false, Error: "content for the note is required"}
	}
	commitMessage := StringParam(params, "commit_message")
	if commitMessage == "" {
		commitMessage = defaultCommitMessage
	}

	// The contents API requires the current sha to update an existing file.
	var sha string
	if existing, err := t.client.getContents(ctx, repo, notePath); err == nil {
		sha = existing.SHA
	}

	endpoint := fmt.Sprintf("%s/repos/%s/contents/%s", t.client.baseURL, repo, url.PathEscape(notePath))
	body := githubWriteRequest{
		Message: commitMessage,
		Content: base64.StdEncoding.EncodeToString([]byte(content)),
		SHA:     sha,
	}
	if err := doJSON(ctx, t.client.httpClient, http.MethodPut, endpoint, t.client.headers(), body, nil); err != nil {
		return contractx.ToolResult{Success: false, Error: fmt.Sprintf("error writing note: %v", err)}
	}

	action := "criada"
	if sha != "" {
		action = "atualizada"
	}
	return contractx.ToolResult{
		Success: true,
		Output:  fmt.Sprintf("Nota '%s' %s com sucesso.", notePath, action),
	}
}
