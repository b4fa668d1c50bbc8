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

const ToolWebSearch = "web_search"

type WebSearchConfig struct {
	BaseURL string        `envconfig:"BASE_URL" split_words:"true" default:"https://api.duckduckgo.com"`
	Timeout time.Duration `envconfig:"TIMEOUT" split_words:"true" default:"10s"`
}

// WebSearchTool queries the DuckDuckGo instant-answer API.
type WebSearchTool struct {
	baseURL    string
	httpClient *http.Client
}

func NewWebSearchTool(cfg WebSearchConfig) *WebSearchTool {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.duckduckgo.com"
	}
	return &WebSearchTool{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (t *WebSearchTool) Name() string { return ToolWebSearch }

func (t *WebSearchTool) Description() string {
	return "Perform a web search using DuckDuckGo to find information on the internet."
}

func (t *WebSearchTool) Schema() Schema {
	return Schema{
		"query": {
			Type:        "string",
			Description: "Search query",
			Required:    true,
		},
		"max_results": {
			Type:        "integer",
			Description: "Maximum number of results to return (default: 5)",
		},
	}
}

type duckDuckGoResponse struct {
	AbstractText  string `json:"AbstractText"`
	AbstractURL   string `json:"AbstractURL"`
	RelatedTopics []struct {
		Text     string `json:"Text"`
		FirstURL string `json:"FirstURL"`
	} `json:"RelatedTopics"`
}

func (t *WebSearchTool) Execute(ctx context.Context, params map[string]any) contractx.ToolResult {
	query := StringParam(params, "query")
	if query == "" {
		return contractx.ToolResult{Success: false, Error: "query is required"}
	}
	maxResults := IntParam(params, "max_results", 5)
	if maxResults <= 0 {
		maxResults = 5
	}

	endpoint := fmt.Sprintf("%s/?q=%s&format=json&no_html=1&skip_disambig=1",
		t.baseURL, url.QueryEscape(query))

	var data duckDuckGoResponse
	if err := getJSON(ctx, t.httpClient, endpoint, nil, &data); err != nil {
		return contractx.ToolResult{Success: false, Error: fmt.Sprintf("web search failed: %v", err)}
	}

	var lines []string
	if abstract := strings.TrimSpace(data.AbstractText); abstract != "" {
		lines = append(lines, abstract)
		if data.AbstractURL != "" {
			lines = append(lines, "Fonte: "+data.AbstractURL)
		}
	}
	for _, topic := range data.RelatedTopics {
		if len(lines) >= maxResults {
			break
		}
		text := strings.TrimSpace(topic.Text)
		if text == "" {
			continue
		}
		lines = append(lines, "- "+text)
	}

	if len(lines) == 0 {
		return contractx.ToolResult{Success: true, Output: "Nenhum resultado encontrado para: " + query}
	}
	return contractx.ToolResult{Success: true, Output: strings.Join(lines, "\n")}
}
