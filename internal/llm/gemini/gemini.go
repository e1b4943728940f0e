// Package gemini implements the llm.Adapter interface on Google's Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"github.com/nmoreau/askdesk/internal/llm"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const defaultModel = "gemini-2.0-flash"

// Client talks to the Gemini generateContent API.
type Client struct {
	client *genai.Client
	model  string
}

// APIError is a Gemini API failure with structured details for logging.
type APIError struct {
	Code    int    // HTTP status code
	Message string // raw API error message
	Err     error  // enhanced, user-facing error
}

func (e *APIError) Error() string { return e.Err.Error() }

func (e *APIError) Unwrap() error { return e.Err }

// APICode returns the HTTP status code from the API.
func (e *APIError) APICode() int { return e.Code }

// APIMessage returns the raw error message from the API.
func (e *APIError) APIMessage() string { return e.Message }

// NewClient creates a Gemini adapter. The API key is read from GEMINI_API_KEY
// or GOOGLE_API_KEY.
func NewClient(ctx context.Context, model string) (*Client, error) {
	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY or GOOGLE_API_KEY environment variable not set")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	if model == "" {
		model = defaultModel
	}

	return &Client{client: client, model: model}, nil
}

// Chat sends the conversation to Gemini and converts the reply.
func (c *Client) Chat(ctx context.Context, req llm.ChatRequest) (*llm.ChatResponse, error) {
	model := c.client.GenerativeModel(c.model)

	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.SystemPrompt)},
		}
	}

	if req.Temperature > 0 {
		model.SetTemperature(req.Temperature)
	}

	if len(req.Tools) > 0 {
		tools := make([]*genai.Tool, 0, len(req.Tools))
		for _, tool := range req.Tools {
			tools = append(tools, convertToolDefinition(tool))
		}
		model.Tools = tools
	}

	// Gemini wants the final user message separate from the history.
	var history []*genai.Content
	var lastParts []genai.Part

	for i, msg := range req.Messages {
		var parts []genai.Part
		var role string

		switch {
		case msg.Role == "assistant":
			role = "model"
			if msg.Content != "" {
				parts = append(parts, genai.Text(msg.Content))
			}
			// Replay the model's own tool calls so it sees them in history.
			for _, tc := range msg.ToolCalls {
				parts = append(parts, genai.FunctionCall{Name: tc.Name, Args: tc.Args})
			}
		case msg.ToolResultID != "":
			role = "user"
			var responseData map[string]any
			if err := json.Unmarshal([]byte(msg.Content), &responseData); err != nil {
				responseData = map[string]any{"result": msg.Content}
			}
			parts = append(parts, genai.FunctionResponse{
				Name:     msg.ToolName,
				Response: responseData,
			})
		default:
			role = "user"
			parts = append(parts, genai.Text(msg.Content))
		}

		if i == len(req.Messages)-1 && role == "user" {
			lastParts = parts
			break
		}
		if len(parts) > 0 {
			history = append(history, &genai.Content{Parts: parts, Role: role})
		}
	}

	chat := model.StartChat()
	chat.History = history

	if lastParts == nil {
		lastParts = []genai.Part{genai.Text("")}
	}
	resp, err := chat.SendMessage(ctx, lastParts...)
	if err != nil {
		return nil, c.enhanceError(ctx, err)
	}

	return convertResponse(resp), nil
}

// Close closes the underlying client.
func (c *Client) Close() error {
	return c.client.Close()
}

// convertToolDefinition converts our tool definition to Gemini format.
func convertToolDefinition(tool llm.ToolDefinition) *genai.Tool {
	properties := make(map[string]*genai.Schema)
	for name, prop := range tool.Parameters.Properties {
		properties[name] = &genai.Schema{
			Type:        schemaType(prop.Type),
			Description: prop.Description,
		}
	}

	return &genai.Tool{
		FunctionDeclarations: []*genai.FunctionDeclaration{
			{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters: &genai.Schema{
					Type:       genai.TypeObject,
					Properties: properties,
					Required:   tool.Parameters.Required,
				},
			},
		},
	}
}

func schemaType(t string) genai.Type {
	switch t {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// convertResponse converts a Gemini response into our response format.
// Function-call parts are decoded into typed tool calls here, at the boundary.
func convertResponse(resp *genai.GenerateContentResponse) *llm.ChatResponse {
	result := &llm.ChatResponse{}
	if resp.UsageMetadata != nil {
		result.Usage = llm.TokenUsage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(resp.UsageMetadata.TotalTokenCount),
		}
	}

	for _, candidate := range resp.Candidates {
		if candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			switch v := part.(type) {
			case genai.Text:
				result.Content += string(v)
			case genai.FunctionCall:
				args := make(map[string]any, len(v.Args))
				for k, val := range v.Args {
					args[k] = val
				}
				result.ToolCalls = append(result.ToolCalls, llm.ToolCall{
					ID:   v.Name, // Gemini has no separate call id
					Name: v.Name,
					Args: args,
				})
			}
		}
	}

	return result
}

// enhanceError turns common googleapi failures into actionable messages.
func (c *Client) enhanceError(ctx context.Context, err error) error {
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("gemini API call failed: %w", err)
	}

	var enhanced error
	switch apiErr.Code {
	case 404:
		available := c.listAvailableModels(ctx)
		if len(available) > 0 {
			enhanced = fmt.Errorf("model %q not found for Gemini provider; available models:\n  - %s",
				c.model, strings.Join(available, "\n  - "))
		} else {
			enhanced = fmt.Errorf("model %q not found for Gemini provider; try gemini-2.0-flash or gemini-1.5-pro", c.model)
		}
	case 400:
		enhanced = fmt.Errorf("invalid request to Gemini API: %s", apiErr.Message)
	case 403:
		enhanced = fmt.Errorf("authentication failed with Gemini API: %s (check GEMINI_API_KEY)", apiErr.Message)
	case 429:
		enhanced = fmt.Errorf("rate limit exceeded for Gemini API: %s", apiErr.Message)
	default:
		enhanced = fmt.Errorf("Gemini API error (%d): %s", apiErr.Code, apiErr.Message)
	}

	return &APIError{Code: apiErr.Code, Message: apiErr.Message, Err: enhanced}
}

// listAvailableModels fetches generative model names to include in the
// model-not-found message. Best effort with a short timeout.
func (c *Client) listAvailableModels(ctx context.Context) []string {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	iter := c.client.ListModels(ctx)
	var models []string
	for {
		model, err := iter.Next()
		if err != nil {
			break
		}
		if model == nil || !strings.Contains(model.Name, "models/") {
			continue
		}
		for _, method := range model.SupportedGenerationMethods {
			if method == "generateContent" {
				models = append(models, strings.TrimPrefix(model.Name, "models/"))
				break
			}
		}
		if len(models) >= 10 {
			break
		}
	}
	return models
}
