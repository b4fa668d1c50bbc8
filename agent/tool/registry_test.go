package tool

import (
	"context"
	"strings"
	"testing"

	contractx "github.com/samantha-labs/assistant/agent/contract"
)

type fakeTool struct {
	name   string
	schema Schema
	result contractx.ToolResult
	calls  int
}

func (f *fakeTool) Name() string        { return f.name }
func (f *fakeTool) Description() string { return "fake tool for tests" }
func (f *fakeTool) Schema() Schema      { return f.schema }

func (f *fakeTool) Execute(_ context.Context, _ map[string]any) contractx.ToolResult {
	f.calls++
	return f.result
}

func TestRegistryExecuteUnknownTool(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(&fakeTool{name: "alpha"}, &fakeTool{name: "beta"})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	result := r.Execute(context.Background(), "gamma", nil)
	if result.Success {
		t.Fatal("expected failure for unknown tool")
	}
	if !strings.Contains(result.Error, "alpha") || !strings.Contains(result.Error, "beta") {
		t.Fatalf("error should list available tools, got %q", result.Error)
	}
	if result.Tool != "gamma" {
		t.Fatalf("unexpected tool name: %q", result.Tool)
	}
}

func TestRegistryRejectsDuplicateNames(t *testing.T) {
	t.Parallel()

	if _, err := NewRegistry(&fakeTool{name: "alpha"}, &fakeTool{name: "alpha"}); err == nil {
		t.Fatal("expected duplicate name error")
	}
}

func TestRegistryValidatesParams(t *testing.T) {
	t.Parallel()

	ft := &fakeTool{
		name: "echo",
		schema: Schema{
			"text":  {Type: "string", Required: true},
			"count": {Type: "integer"},
			"tags":  {Type: "array"},
		},
		result: contractx.ToolResult{Success: true, Output: "ok"},
	}
	r, err := NewRegistry(ft)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	ctx := context.Background()

	tests := []struct {
		name    string
		params  map[string]any
		wantOK  bool
		wantErr string
	}{
		{
			name:    "missing required",
			params:  map[string]any{"count": 2},
			wantErr: "missing required parameter: text",
		},
		{
			name:    "wrong string type",
			params:  map[string]any{"text": 42},
			wantErr: "must be a string",
		},
		{
			name:    "fractional integer",
			params:  map[string]any{"text": "hi", "count": 1.5},
			wantErr: "must be an integer",
		},
		{
			name:   "json decoded integer",
			params: map[string]any{"text": "hi", "count": float64(3)},
			wantOK: true,
		},
		{
			name:   "array of any",
			params: map[string]any{"text": "hi", "tags": []any{"a", "b"}},
			wantOK: true,
		},
		{
			name:    "scalar where array expected",
			params:  map[string]any{"text": "hi", "tags": "a"},
			wantErr: "must be an array",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			result := r.Execute(ctx, "echo", tc.params)
			if result.Success != tc.wantOK {
				t.Fatalf("success=%v, want %v (error=%q)", result.Success, tc.wantOK, result.Error)
			}
			if !tc.wantOK && !strings.Contains(result.Error, tc.wantErr) {
				t.Fatalf("error %q does not contain %q", result.Error, tc.wantErr)
			}
		})
	}

	if ft.calls != 2 {
		t.Fatalf("tool should only run on valid params, got %d calls", ft.calls)
	}
}

func TestRegistryInfos(t *testing.T) {
	t.Parallel()

	r, err := NewRegistry(
		&fakeTool{name: "beta", schema: Schema{"n": {Type: "integer", Required: true}}},
		&fakeTool{name: "alpha", schema: Schema{"items": {Type: "array"}}},
	)
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}

	infos := r.Infos()
	if len(infos) != 2 {
		t.Fatalf("expected 2 tool infos, got %d", len(infos))
	}
	// Infos preserves registration order.
	if infos[0].Name != "beta" || infos[1].Name != "alpha" {
		t.Fatalf("unexpected order: %s, %s", infos[0].Name, infos[1].Name)
	}

	names := r.Names()
	if names[0] != "alpha" || names[1] != "beta" {
		t.Fatalf("Names should be sorted, got %v", names)
	}
}
