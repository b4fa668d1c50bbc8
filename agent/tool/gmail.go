package tool

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	contractx "github.com/samantha-labs/assistant/agent/contract"
)

const ToolGmail = "gmail_search"

type GmailConfig struct {
	AccessToken string        `envconfig:"ACCESS_TOKEN" split_words:"true"`
	BaseURL     string        `envconfig:"BASE_URL" split_words:"true" default:"https://gmail.googleapis.com"`
	Timeout     time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"15s"`
}

// GmailTool searches the user's mailbox through the Gmail REST API.
type GmailTool struct {
	accessToken string
	baseURL     string
	httpClient  *http.Client
}

func NewGmailTool(cfg GmailConfig) *GmailTool {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://gmail.googleapis.com"
	}
	return &GmailTool{
		accessToken: strings.TrimSpace(cfg.AccessToken),
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (t *GmailTool) Name() string { return ToolGmail }

func (t *GmailTool) Description() string {
	return "Read meeting notes from Gmail emails based on search criteria"
}

func (t *GmailTool) Schema() Schema {
	return Schema{
		"query": {
			Type:        "string",
			Description: "Gmail search query, e.g. 'from:alice subject:meeting'",
			Required:    true,
		},
		"max_results": {
			Type:        "integer",
			Description: "Maximum number of emails to inspect (default: 3)",
		},
	}
}

type gmailListResponse struct {
	Messages []struct {
		ID string `json:"id"`
	} `json:"messages"`
}

type gmailMessageResponse struct {
	Snippet string `json:"snippet"`
}

func (t *GmailTool) Execute(ctx context.Context, params map[string]any) contractx.ToolResult {
	query := StringParam(params, "query")
	if query == "" {
		return contractx.ToolResult{Success: false, Error: "query is required"}
	}
	if t.accessToken == "" {
		return contractx.ToolResult{
			Success: false,
			Error:   "Erro: Credenciais do Gmail não fornecidas na execução.",
		}
	}
	maxResults := IntParam(params, "max_results", 3)
	if maxResults <= 0 {
		maxResults = 3
	}

	headers := map[string]string{"Authorization": "Bearer " + t.accessToken}

	listURL := fmt.Sprintf("%s/gmail/v1/users/me/messages?q=%s&maxResults=%d",
		t.baseURL, url.QueryEscape(query), maxResults)

	var list gmailListResponse
	if err := getJSON(ctx, t.httpClient, listURL, headers, &list); err != nil {
		return contractx.ToolResult{Success: false, Error: fmt.Sprintf("Erro ao acessar Gmail: %v", err)}
	}
	if len(list.Messages) == 0 {
		return contractx.ToolResult{Success: true, Output: "Nenhum email encontrado."}
	}

	var snippets []string
	for _, msg := range list.Messages {
		detailURL := fmt.Sprintf("%s/gmail/v1/users/me/messages/%s", t.baseURL, url.PathEscape(msg.ID))
		var detail gmailMessageResponse
		if err := getJSON(ctx, t.httpClient, detailURL, headers, &detail); err != nil {
			return contractx.ToolResult{Success: false, Error: fmt.Sprintf("Erro ao acessar Gmail: %v", err)}
		}
		if snippet := strings.TrimSpace(detail.Snippet); snippet != "" {
			snippets = append(snippets, "- "+snippet)
		}
	}

	if len(snippets) == 0 {
		return contractx.ToolResult{Success: true, Output: "Nenhum email encontrado."}
	}
	return contractx.ToolResult{
		Success: true,
		Output:  "Emails encontrados:\n" + strings.Join(snippets, "\n"),
	}
}
