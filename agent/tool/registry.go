package tool

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cloudwego/eino/schema"
	"github.com/rs/zerolog/log"

	contractx "github.com/samantha-labs/assistant/agent/contract"
)

// ParameterSpec declares one tool parameter. Type is one of "string",
// "integer" or "array".
type ParameterSpec struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Required    bool   `json:"required"`
}

type Schema map[string]ParameterSpec

// Tool is an external-effecting capability invocable with validated
// parameters. Implementations never return Go errors to callers; failures
// are carried inside the ToolResult.
type Tool interface {
	Name() string
	Description() string
	Schema() Schema
	Execute(ctx context.Context, params map[string]any) contractx.ToolResult
}

type Descriptor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Schema      Schema `json:"schema"`
}

// Registry maps tool names to implementations and validates parameters
// before any invocation. It treats subprocess-, HTTP- and API-backed tools
// uniformly.
type Registry struct {
	order []string
	tools map[string]Tool
}

func NewRegistry(tools ...Tool) (*Registry, error) {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("%w: nil tool", contractx.ErrValidation)
	}
	name := strings.TrimSpace(t.Name())
	if name == "" {
		return fmt.Errorf("%w: tool name is empty", contractx.ErrValidation)
	}
	if _, exists := r.tools[name]; exists {
		return fmt.Errorf("%w: duplicate tool name %q", contractx.ErrValidation, name)
	}
	r.tools[name] = t
	r.order = append(r.order, name)
	log.Debug().Str("tool", name).Msg("registered tool")
	return nil
}

func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.order))
	copy(names, r.order)
	sort.Strings(names)
	return names
}

func (r *Registry) List() []Descriptor {
	out := make([]Descriptor, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		out = append(out, Descriptor{
			Name:        t.Name(),
			Description: t.Description(),
			Schema:      t.Schema(),
		})
	}
	return out
}

// Infos converts the registered tools to the eino tool-binding format.
func (r *Registry) Infos() []*schema.ToolInfo {
	infos := make([]*schema.ToolInfo, 0, len(r.order))
	for _, name := range r.order {
		t := r.tools[name]
		params := make(map[string]*schema.ParameterInfo, len(t.Schema()))
		for pname, spec := range t.Schema() {
			info := &schema.ParameterInfo{
				Desc:     spec.Description,
				Required: spec.Required,
			}
			switch spec.Type {
			case "integer":
				info.Type = schema.Integer
			case "array":
				info.Type = schema.Array
				info.ElemInfo = &schema.ParameterInfo{Type: schema.String}
			default:
				info.Type = schema.String
			}
			params[pname] = info
		}
		infos = append(infos, &schema.ToolInfo{
			Name:        t.Name(),
			Desc:        t.Description(),
			ParamsOneOf: schema.NewParamsOneOfByParams(params),
		})
	}
	return infos
}

// Execute validates the parameters against the tool's schema and invokes it.
// Unknown tools and invalid parameters come back as structured failures,
// never as errors.
func (r *Registry) Execute(ctx context.Context, name string, params map[string]any) contractx.ToolResult {
	t, ok := r.tools[name]
	if !ok {
		return contractx.ToolResult{
			Tool:    name,
			Success: false,
			Error:   fmt.Sprintf("tool %q not found; available tools: %s", name, strings.Join(r.Names(), ", ")),
		}
	}

	if err := validateParams(t.Schema(), params); err != nil {
		return contractx.ToolResult{
			Tool:    name,
			Success: false,
			Error:   err.Error(),
		}
	}

	result := t.Execute(ctx, params)
	result.Tool = name
	return result
}

func validateParams(sch Schema, params map[string]any) error {
	for pname, spec := range sch {
		value, present := params[pname]
		if !present || value == nil {
			if spec.Required {
				return fmt.Errorf("missing required parameter: %s", pname)
			}
			continue
		}
		switch spec.Type {
		case "string":
			if _, ok := value.(string); !ok {
				return fmt.Errorf("parameter %s must be a string", pname)
			}
		case "integer":
			if !isIntegral(value) {
				return fmt.Errorf("parameter %s must be an integer", pname)
			}
		case "array":
			switch value.(type) {
			case []any, []string:
			default:
				return fmt.Errorf("parameter %s must be an array", pname)
			}
		}
	}
	return nil
}

func isIntegral(value any) bool {
	switch v := value.(type) {
	case int, int32, int64:
		return true
	case float64:
		return v == math.Trunc(v)
	case float32:
		return float64(v) == math.Trunc(float64(v))
	default:
		return false
	}
}

// IntParam reads an integer parameter tolerating JSON float decoding,
// falling back to def when absent.
func IntParam(params map[string]any, name string, def int) int {
	value, ok := params[name]
	if !ok || value == nil {
		return def
	}
	switch v := value.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	}
	return def
}

// StringParam reads a trimmed string parameter.
func StringParam(params map[string]any, name string) string {
	value, ok := params[name].(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}
