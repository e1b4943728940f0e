package claude

import (
	"testing"

	"github.com/nmoreau/askdesk/internal/llm"
)

func TestNewClient(t *testing.T) {
	tests := []struct {
		name    string
		model   string
		apiKey  string
		wantErr bool
	}{
		{
			name:    "creates client with API key",
			model:   "claude-sonnet-4-20250514",
			apiKey:  "test-api-key",
			wantErr: false,
		},
		{
			name:    "uses default model when empty",
			model:   "",
			apiKey:  "test-api-key",
			wantErr: false,
		},
		{
			name:    "returns error when API key missing",
			model:   "claude-sonnet-4-20250514",
			apiKey:  "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.apiKey != "" {
				t.Setenv("ANTHROPIC_API_KEY", tt.apiKey)
			} else {
				t.Setenv("ANTHROPIC_API_KEY", "")
			}

			client, err := NewClient(tt.model)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewClient() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if client == nil {
				t.Fatal("NewClient() returned nil client")
			}
			if tt.model == "" && client.model != defaultModel {
				t.Errorf("NewClient() model = %v, want default", client.model)
			}
			if tt.model != "" && client.model != tt.model {
				t.Errorf("NewClient() model = %v, want %v", client.model, tt.model)
			}
		})
	}
}

func TestConvertBlocks_PlainText(t *testing.T) {
	blocks := convertBlocks(llm.Message{Role: "user", Content: "hello"})
	if len(blocks) != 1 {
		t.Fatalf("convertBlocks() produced %d blocks, want 1", len(blocks))
	}
	if blocks[0].OfText == nil || blocks[0].OfText.Text != "hello" {
		t.Errorf("block = %+v, want text block 'hello'", blocks[0])
	}
}

func TestConvertBlocks_AssistantToolCall(t *testing.T) {
	// An assistant turn recorded after a tool call has empty content and the
	// replayed call. It must yield exactly one tool_use block and no empty
	// text block, which the API rejects.
	blocks := convertBlocks(llm.Message{
		Role:    "assistant",
		Content: "",
		ToolCalls: []llm.ToolCall{
			{ID: "call-1", Name: "get_knowledge_base", Args: map[string]any{}},
		},
	})
	if len(blocks) != 1 {
		t.Fatalf("convertBlocks() produced %d blocks, want 1", len(blocks))
	}
	if blocks[0].OfText != nil {
		t.Error("empty content must not become a text block")
	}
	use := blocks[0].OfToolUse
	if use == nil {
		t.Fatal("convertBlocks() did not produce a tool_use block")
	}
	if use.ID != "call-1" || use.Name != "get_knowledge_base" {
		t.Errorf("tool_use block = %+v", use)
	}
}

func TestConvertBlocks_TextWithToolCall(t *testing.T) {
	blocks := convertBlocks(llm.Message{
		Role:    "assistant",
		Content: "Let me check.",
		ToolCalls: []llm.ToolCall{
			{ID: "call-1", Name: "add", Args: map[string]any{"a": 1, "b": 2}},
		},
	})
	if len(blocks) != 2 {
		t.Fatalf("convertBlocks() produced %d blocks, want 2", len(blocks))
	}
	if blocks[0].OfText == nil || blocks[0].OfText.Text != "Let me check." {
		t.Errorf("first block = %+v, want the text", blocks[0])
	}
	if blocks[1].OfToolUse == nil {
		t.Errorf("second block = %+v, want tool_use", blocks[1])
	}
}

func TestConvertBlocks_ToolResult(t *testing.T) {
	blocks := convertBlocks(llm.Message{
		Role:         "user",
		Content:      "42",
		ToolResultID: "call-1",
		ToolName:     "add",
	})
	if len(blocks) != 1 {
		t.Fatalf("convertBlocks() produced %d blocks, want 1", len(blocks))
	}
	result := blocks[0].OfToolResult
	if result == nil {
		t.Fatal("convertBlocks() did not produce a tool_result block")
	}
	if result.ToolUseID != "call-1" {
		t.Errorf("tool_use_id = %q, want call-1", result.ToolUseID)
	}
	if len(result.Content) != 1 || result.Content[0].OfText == nil || result.Content[0].OfText.Text != "42" {
		t.Errorf("tool_result content = %+v, want text '42'", result.Content)
	}
}

func TestConvertBlocks_EmptyMessage(t *testing.T) {
	if blocks := convertBlocks(llm.Message{Role: "assistant"}); len(blocks) != 0 {
		t.Errorf("convertBlocks() produced %d blocks for an empty message, want 0", len(blocks))
	}
}

func TestConvertToolDefinition(t *testing.T) {
	tool := llm.ToolDefinition{
		Name:        "get_knowledge_base",
		Description: "Retrieve the company knowledge base",
		Parameters: llm.ParameterSchema{
			Type:       "object",
			Properties: map[string]llm.Property{},
		},
	}

	param := convertToolDefinition(tool)
	if param.OfTool == nil {
		t.Fatal("convertToolDefinition() did not produce a tool param")
	}
	if param.OfTool.Name != "get_knowledge_base" {
		t.Errorf("tool name = %q", param.OfTool.Name)
	}
}

func TestConvertToolDefinition_WithParameters(t *testing.T) {
	tool := llm.ToolDefinition{
		Name:        "add",
		Description: "Add two numbers together",
		Parameters: llm.ParameterSchema{
			Type: "object",
			Properties: map[string]llm.Property{
				"a": {Type: "integer", Description: "First number"},
				"b": {Type: "integer", Description: "Second number"},
			},
			Required: []string{"a", "b"},
		},
	}

	param := convertToolDefinition(tool)
	if param.OfTool == nil {
		t.Fatal("convertToolDefinition() did not produce a tool param")
	}
	props, ok := param.OfTool.InputSchema.Properties.(map[string]interface{})
	if !ok {
		t.Fatalf("input schema properties have type %T", param.OfTool.InputSchema.Properties)
	}
	if len(props) != 2 {
		t.Errorf("schema has %d properties, want 2", len(props))
	}
	if len(param.OfTool.InputSchema.Required) != 2 {
		t.Errorf("schema required = %v, want [a b]", param.OfTool.InputSchema.Required)
	}
}
