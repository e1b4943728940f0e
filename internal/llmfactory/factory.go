// Package llmfactory builds LLM adapters from configuration.
package llmfactory

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/nmoreau/askdesk/internal/config"
	"github.com/nmoreau/askdesk/internal/llm"
	"github.com/nmoreau/askdesk/internal/llm/claude"
	"github.com/nmoreau/askdesk/internal/llm/gemini"
	"github.com/nmoreau/askdesk/internal/observability"
)

// NewAdapter creates an Adapter from a ModelConfig. It validates that the
// required API key environment variable is set before creating the provider
// client.
func NewAdapter(ctx context.Context, mc config.ModelConfig) (llm.Adapter, error) {
	switch mc.Provider {
	case "claude":
		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY is not set (required for provider %q)", mc.Provider)
		}
		return claude.NewClient(mc.Model)
	case "gemini":
		if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
			return nil, fmt.Errorf("GEMINI_API_KEY or GOOGLE_API_KEY must be set (required for provider %q)", mc.Provider)
		}
		return gemini.NewClient(ctx, mc.Model)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %q (supported: claude, gemini)", mc.Provider)
	}
}

// NewInstrumentedAdapter creates an adapter wrapped with tracing, metrics,
// and logging.
func NewInstrumentedAdapter(ctx context.Context, mc config.ModelConfig, logger *slog.Logger) (llm.Adapter, error) {
	adapter, err := NewAdapter(ctx, mc)
	if err != nil {
		return nil, err
	}
	traced := observability.NewTracedAdapter(adapter, mc.Provider, mc.Model)
	return llm.NewInstrumentedAdapter(traced, logger, mc.Provider, mc.Model), nil
}
