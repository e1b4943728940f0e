package tools

import (
	"context"
	"errors"
	"fmt"

	"github.com/nmoreau/askdesk/internal/llm"
)

// ErrAllToolsFailed is returned when every tool call in a batch failed.
var ErrAllToolsFailed = errors.New("all tools in batch failed")

// Executor dispatches model tool calls to registered tools.
type Executor struct {
	registry *Registry
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *Registry) *Executor {
	return &Executor{registry: registry}
}

// Execute runs a single tool call.
func (e *Executor) Execute(ctx context.Context, name string, args map[string]any) (string, error) {
	tool, err := e.registry.Get(name)
	if err != nil {
		return "", fmt.Errorf("failed to get tool %s: %w", name, err)
	}

	result, err := tool.Execute(ctx, args)
	if err != nil {
		return "", fmt.Errorf("failed to execute tool %s: %w", name, err)
	}
	return result, nil
}

// ExecuteBatch runs every call from a model response. Individual failures are
// captured in the results so the model can see them; the returned error is
// non-nil only when all calls failed.
func (e *Executor) ExecuteBatch(ctx context.Context, calls []llm.ToolCall) ([]Result, error) {
	if len(calls) == 0 {
		return nil, nil
	}

	results := make([]Result, len(calls))
	errorCount := 0

	for i, call := range calls {
		text, err := e.Execute(ctx, call.Name, call.Args)
		results[i] = Result{ID: call.ID, Name: call.Name, Text: text, Err: err}
		if err != nil {
			errorCount++
		}
	}

	if errorCount == len(calls) {
		return results, fmt.Errorf("%w: %d tool(s) failed", ErrAllToolsFailed, errorCount)
	}
	return results, nil
}

// Result is the outcome of one executed tool call.
type Result struct {
	ID   string
	Name string
	Text string
	Err  error
}

// Message converts a result into a conversation message for the model.
func (r Result) Message() llm.Message {
	content := r.Text
	if r.Err != nil {
		content = fmt.Sprintf("Error executing tool: %v", r.Err)
	}
	return llm.Message{
		Role:         "user", // tool results go back as user turns
		Content:      content,
		ToolResultID: r.ID,
		ToolName:     r.Name,
		IsError:      r.Err != nil,
	}
}
