package tools

import (
	"context"

	"github.com/nmoreau/askdesk/internal/llm"
	"github.com/nmoreau/askdesk/internal/toolhost"
)

// HostCaller is the part of the tool-host client the host tool needs.
type HostCaller interface {
	CallTool(ctx context.Context, name string, args map[string]any) (toolhost.CallResult, error)
}

// HostTool exposes one remote tool-host operation through the Tool interface.
type HostTool struct {
	host HostCaller
	spec toolhost.ToolSpec
}

// NewHostTool wraps a remote tool spec.
func NewHostTool(host HostCaller, spec toolhost.ToolSpec) *HostTool {
	return &HostTool{host: host, spec: spec}
}

func (t *HostTool) Name() string { return t.spec.Name }

func (t *HostTool) Description() string { return t.spec.Description }

// Parameters converts the host's JSON-schema-shaped input description into
// the LLM parameter schema. A tool without a schema gets an empty object.
func (t *HostTool) Parameters() llm.ParameterSchema {
	schema := llm.ParameterSchema{
		Type:       "object",
		Properties: map[string]llm.Property{},
	}
	if t.spec.InputSchema == nil {
		return schema
	}

	if t.spec.InputSchema.Type != "" {
		schema.Type = t.spec.InputSchema.Type
	}
	for name, prop := range t.spec.InputSchema.Properties {
		schema.Properties[name] = llm.Property{
			Type:        prop.Type,
			Description: prop.Description,
		}
	}
	schema.Required = t.spec.InputSchema.Required
	return schema
}

// Execute forwards the call to the tool host.
func (t *HostTool) Execute(ctx context.Context, args map[string]any) (string, error) {
	result, err := t.host.CallTool(ctx, t.spec.Name, args)
	if err != nil {
		return "", err
	}
	return result.Text, nil
}

// HostLister is the part of the tool-host client used for discovery.
type HostLister interface {
	HostCaller
	ListTools(ctx context.Context) ([]toolhost.ToolSpec, error)
}

// NewHostRegistry discovers the host's tools and registers each one.
func NewHostRegistry(ctx context.Context, host HostLister) (*Registry, error) {
	specs, err := host.ListTools(ctx)
	if err != nil {
		return nil, err
	}

	registry := NewRegistry()
	for _, spec := range specs {
		registry.Register(NewHostTool(host, spec))
	}
	return registry, nil
}
