// Package tools manages the tools the model can call: a registry keyed by
// name, an executor that dispatches model tool calls, and an adapter that
// exposes remote tool-host operations as tools.
package tools

import (
	"context"

	"github.com/nmoreau/askdesk/internal/llm"
)

// Tool is an executable operation the model can invoke.
type Tool interface {
	// Name returns the tool's name.
	Name() string

	// Description returns a description for the model.
	Description() string

	// Parameters returns the argument schema.
	Parameters() llm.ParameterSchema

	// Execute runs the tool with decoded arguments and returns a textual
	// result.
	Execute(ctx context.Context, args map[string]any) (string, error)
}
