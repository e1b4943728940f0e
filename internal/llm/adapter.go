// Package llm defines the provider-agnostic adapter interface and the chat
// types shared by all providers. The rest of the system only sees these
// types; provider SDKs stay behind their adapters.
package llm

import "context"

// Adapter is the interface a provider implements (Claude, Gemini, ...).
type Adapter interface {
	// Chat sends a conversation plus tool catalog and returns the model's
	// reply: either text content or one or more tool calls.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)
}

// ChatRequest is a request to the model.
type ChatRequest struct {
	SystemPrompt string
	Messages     []Message
	Tools        []ToolDefinition
	MaxTokens    int
	Temperature  float32 // 0 means provider default
}

// ChatResponse is the model's reply. ToolCalls is non-empty when the model
// decided to invoke tools instead of (or before) answering.
type ChatResponse struct {
	Content   string
	ToolCalls []ToolCall
	Usage     TokenUsage
}

// Message is one turn of the conversation.
type Message struct {
	Role         string     // "user" or "assistant"
	Content      string     // text content
	ToolCalls    []ToolCall // assistant messages: tool calls the model made
	ToolResultID string     // tool result messages: id of the call being answered
	ToolName     string     // tool result messages: name of the tool (Gemini needs it)
	IsError      bool       // tool result messages: whether the result is an error
}

// ToolDefinition describes one tool offered to the model.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  ParameterSchema
}

// ParameterSchema is the object schema for a tool's arguments.
type ParameterSchema struct {
	Type       string
	Properties map[string]Property
	Required   []string
}

// Property describes a single tool argument.
type Property struct {
	Type        string
	Description string
}

// ToolCall is a decoded tool invocation requested by the model. Provider
// payloads are converted into this shape once, inside each adapter.
type ToolCall struct {
	ID   string
	Name string
	Args map[string]any
}

// TokenUsage is the provider-reported token consumption for one call.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
