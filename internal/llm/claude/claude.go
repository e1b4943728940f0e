// Package claude implements the llm.Adapter interface on Anthropic's API.
package claude

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/nmoreau/askdesk/internal/llm"
)

const defaultModel = "claude-sonnet-4-20250514"

// Client talks to the Anthropic Messages API.
type Client struct {
	client anthropic.Client
	model  string
}

// NewClient creates a Claude adapter. The API key is read from the
// ANTHROPIC_API_KEY environment variable.
func NewClient(model string) (*Client, error) {
	apiKey := os.Getenv("ANTHROPIC_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
	}

	if model == "" {
		model = defaultModel
	}

	return &Client{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Chat sends the conversation to the Messages API and converts the reply.
func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	messages := make([]anthropic.MessageParam, 0, len(req.Messages))
	for _, msg := range req.Messages {
		blocks := convertBlocks(msg)
		if len(blocks) == 0 {
			// The API rejects empty content; an empty turn carries nothing.
			continue
		}
		if msg.Role == "assistant" {
			messages = append(messages, anthropic.NewAssistantMessage(blocks...))
		} else {
			messages = append(messages, anthropic.NewUserMessage(blocks...))
		}
	}

	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages:  messages,
	}

	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}

	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(req.Temperature))
	}

	if len(req.Tools) > 0 {
		tools := make([]anthropic.ToolUnionParam, 0, len(req.Tools))
		for _, tool := range req.Tools {
			tools = append(tools, convertToolDefinition(tool))
		}
		params.Tools = tools
	}

	response, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}

	return convertResponse(response), nil
}

// convertBlocks rebuilds the block structure the API expects from one
// conversation message. Tool results become tool_result blocks tied to their
// originating call, assistant tool calls are replayed as tool_use blocks, and
// empty text is never sent as a block.
func convertBlocks(msg llm.Message) []anthropic.ContentBlockParamUnion {
	if msg.ToolResultID != "" {
		return []anthropic.ContentBlockParamUnion{{
			OfToolResult: &anthropic.ToolResultBlockParam{
				ToolUseID: msg.ToolResultID,
				IsError:   anthropic.Bool(msg.IsError),
				Content: []anthropic.ToolResultBlockParamContentUnion{
					{OfText: &anthropic.TextBlockParam{Text: msg.Content}},
				},
			},
		}}
	}

	var blocks []anthropic.ContentBlockParamUnion
	if msg.Content != "" {
		blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
	}
	for _, call := range msg.ToolCalls {
		blocks = append(blocks, anthropic.ContentBlockParamUnion{
			OfToolUse: &anthropic.ToolUseBlockParam{
				ID:    call.ID,
				Name:  call.Name,
				Input: call.Args,
			},
		})
	}
	return blocks
}

// convertToolDefinition converts our tool definition to Anthropic format.
func convertToolDefinition(tool llm.ToolDefinition) anthropic.ToolUnionParam {
	properties := make(map[string]interface{})
	for name, prop := range tool.Parameters.Properties {
		properties[name] = map[string]interface{}{
			"type":        prop.Type,
			"description": prop.Description,
		}
	}

	inputSchema := anthropic.ToolInputSchemaParam{
		Properties: properties,
	}
	if len(tool.Parameters.Required) > 0 {
		inputSchema.Required = tool.Parameters.Required
	}

	return anthropic.ToolUnionParamOfTool(inputSchema, tool.Name)
}

// convertResponse converts an Anthropic message into our response format.
// Tool-use blocks are decoded into typed tool calls here, at the boundary.
func convertResponse(response *anthropic.Message) *llm.ChatResponse {
	result := &llm.ChatResponse{
		Usage: llm.TokenUsage{
			InputTokens:  int(response.Usage.InputTokens),
			OutputTokens: int(response.Usage.OutputTokens),
			TotalTokens:  int(response.Usage.InputTokens + response.Usage.OutputTokens),
		},
	}

	for _, block := range response.Content {
		switch block.Type {
		case "text":
			result.Content += block.AsText().Text
		case "tool_use":
			toolBlock := block.AsToolUse()
			args := make(map[string]any)
			if err := json.Unmarshal(toolBlock.Input, &args); err == nil {
				result.ToolCalls = append(result.ToolCalls, llm.ToolCall{
					ID:   toolBlock.ID,
					Name: toolBlock.Name,
					Args: args,
				})
			}
		}
	}

	return result
}
