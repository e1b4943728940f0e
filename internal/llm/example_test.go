package llm_test

import (
	"context"
	"fmt"
	"os"

	"github.com/nmoreau/askdesk/internal/llm"
	"github.com/nmoreau/askdesk/internal/llm/claude"
	"github.com/nmoreau/askdesk/internal/llm/gemini"
)

// Example_providerAgnostic shows that the same chat code works with Claude,
// Gemini, or any other provider behind the Adapter interface.
func Example_providerAgnostic() {
	ctx := context.Background()

	// A tool definition both providers understand.
	tools := []llm.ToolDefinition{
		{
			Name:        "get_knowledge_base",
			Description: "Retrieve the entire company knowledge base as text",
			Parameters: llm.ParameterSchema{
				Type:       "object",
				Properties: map[string]llm.Property{},
			},
		},
	}

	ask := func(adapter llm.Adapter) {
		response, err := adapter.Chat(ctx, llm.ChatRequest{
			SystemPrompt: "You are a helpful assistant",
			Messages: []llm.Message{
				{Role: "user", Content: "What is the vacation policy?"},
			},
			Tools: tools,
		})
		if err != nil {
			fmt.Printf("chat error: %v\n", err)
			return
		}
		if len(response.ToolCalls) > 0 {
			fmt.Printf("model wants to call: %s\n", response.ToolCalls[0].Name)
		} else {
			fmt.Printf("response: %s\n", response.Content)
		}
	}

	if os.Getenv("ANTHROPIC_API_KEY") != "" {
		client, err := claude.NewClient("")
		if err != nil {
			fmt.Printf("claude error: %v\n", err)
			return
		}
		ask(client)
	}

	// Same code, different adapter.
	if os.Getenv("GEMINI_API_KEY") != "" || os.Getenv("GOOGLE_API_KEY") != "" {
		client, err := gemini.NewClient(ctx, "")
		if err != nil {
			fmt.Printf("gemini error: %v\n", err)
			return
		}
		defer client.Close()
		ask(client)
	}
}
