package tool

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestWeatherToolRequiresAPIKey(t *testing.T) {
	t.Parallel()

	tool := NewWeatherTool(WeatherConfig{})
	result := tool.Execute(context.Background(), map[string]any{"location": "Lisboa"})
	if result.Success {
		t.Fatal("expected failure without api key")
	}
	if !strings.Contains(result.Error, "not configured") {
		t.Fatalf("unexpected error %q", result.Error)
	}
}

func TestWeatherToolExecute(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "São Paulo" {
			t.Errorf("unexpected q param %q", got)
		}
		if got := r.URL.Query().Get("key"); got != "k-1" {
			t.Errorf("unexpected key param %q", got)
		}
		_, _ = w.Write([]byte(`{
			"location": {"name": "São Paulo", "country": "Brazil"},
			"current": {"temp_c": 22.5, "humidity": 60, "wind_kph": 12.0, "condition": {"text": "Parcialmente nublado"}}
		}`))
	}))
	defer srv.Close()

	tool := NewWeatherTool(WeatherConfig{APIKey: "k-1", BaseURL: srv.URL})
	result := tool.Execute(context.Background(), map[string]any{"location": "São Paulo"})

	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}
	for _, want := range []string{"São Paulo", "Brazil", "22.5", "60%", "Parcialmente nublado"} {
		if !strings.Contains(result.Output, want) {
			t.Fatalf("output %q missing %q", result.Output, want)
		}
	}
}

func TestWebSearchToolExecute(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("q"); got != "golang" {
			t.Errorf("unexpected q param %q", got)
		}
		_, _ = w.Write([]byte(`{
			"AbstractText": "Go is a programming language.",
			"AbstractURL": "https://go.dev",
			"RelatedTopics": [
				{"Text": "Go standard library", "FirstURL": "https://pkg.go.dev/std"},
				{"Text": "", "FirstURL": ""}
			]
		}`))
	}))
	defer srv.Close()

	tool := NewWebSearchTool(WebSearchConfig{BaseURL: srv.URL})
	result := tool.Execute(context.Background(), map[string]any{"query": "golang"})

	if !result.Success {
		t.Fatalf("expected success, got %q", result.Error)
	}
	if !strings.Contains(result.Output, "Go is a programming language.") {
		t.Fatalf("output missing abstract: %q", result.Output)
	}
	if !strings.Contains(result.Output, "Go standard library") {
		t.Fatalf("output missing related topic: %q", result.Output)
	}
}

func TestGmailToolRequiresToken(t *testing.T) {
	t.Parallel()

	tool := NewGmailTool(GmailConfig{})
	result := tool.Execute(context.Background(), map[string]any{"query": "subject:reunião"})
	if result.Success {
		t.Fatal("expected failure without access token")
	}
	if !strings.Contains(result.Error, "Credenciais do Gmail") {
		t.Fatalf("unexpected error %q", result.Error)
	}
}
