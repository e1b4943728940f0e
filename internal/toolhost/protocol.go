// Package toolhost connects to an external tool host: a child process that
// exposes named callable operations over a line-delimited JSON protocol on
// its standard streams.
package toolhost

import (
	"encoding/json"
	"fmt"
)

// Protocol method names.
const (
	MethodListTools = "list_tools"
	MethodCallTool  = "call_tool"
)

// ListToolsRequest asks the host for its tool catalog.
type ListToolsRequest struct {
	Method string `json:"method"` // always "list_tools"
}

// CallToolRequest invokes a named tool on the host.
type CallToolRequest struct {
	Method string         `json:"method"` // always "call_tool"
	Name   string         `json:"name"`
	Args   map[string]any `json:"arguments,omitempty"`
}

// ToolSpec describes one tool exposed by the host.
type ToolSpec struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	InputSchema *ToolInput `json:"input_schema,omitempty"`
}

// ToolInput is the JSON-schema-shaped parameter description for a tool.
type ToolInput struct {
	Type       string                  `json:"type"`
	Properties map[string]ToolProperty `json:"properties,omitempty"`
	Required   []string                `json:"required,omitempty"`
}

// ToolProperty describes a single tool parameter.
type ToolProperty struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
}

// ListToolsResponse is the host's catalog reply.
type ListToolsResponse struct {
	Tools []ToolSpec `json:"tools"`
}

// CallToolResponse is the raw wire reply to a tool call.
type CallToolResponse struct {
	Result string `json:"result"`
	Error  string `json:"error,omitempty"`
}

// CallResult is a decoded tool call outcome. Wire payloads are decoded once
// at this boundary; everything past it works with typed values.
type CallResult struct {
	Tool string // tool that produced the result
	Text string // textual result payload
}

// decodeCallResult validates and converts a wire response.
func decodeCallResult(tool string, raw []byte) (CallResult, error) {
	var resp CallToolResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return CallResult{}, fmt.Errorf("malformed call_tool response: %w", err)
	}
	if resp.Error != "" {
		return CallResult{}, fmt.Errorf("tool %s failed: %s", tool, resp.Error)
	}
	return CallResult{Tool: tool, Text: resp.Result}, nil
}
