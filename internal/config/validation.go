package config

import (
	"fmt"
	"os"
)

// ValidateAPIKeys checks that the environment carries the API key the given
// model's provider needs.
func ValidateAPIKeys(mc ModelConfig) error {
	switch mc.Provider {
	case "claude":
		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable is required for Claude provider")
		}
	case "gemini":
		if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
			return fmt.Errorf("GEMINI_API_KEY or GOOGLE_API_KEY environment variable is required for Gemini provider")
		}
	default:
		return fmt.Errorf("unsupported LLM provider: %s", mc.Provider)
	}
	return nil
}

// ValidateAPIKeysWithUserMessage is ValidateAPIKeys with setup instructions
// suitable for CLI output.
func ValidateAPIKeysWithUserMessage(mc ModelConfig) error {
	switch mc.Provider {
	case "claude":
		if os.Getenv("ANTHROPIC_API_KEY") == "" {
			return fmt.Errorf("askdesk needs an LLM.\n\nClaude is configured but ANTHROPIC_API_KEY is not set.\n\nTo use Claude:\n  export ANTHROPIC_API_KEY=your-api-key-here\n\nTo use Gemini instead, update your config to a Gemini model")
		}
	case "gemini":
		if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
			return fmt.Errorf("askdesk needs an LLM.\n\nGemini is configured but neither GEMINI_API_KEY nor GOOGLE_API_KEY is set.\n\nTo use Gemini:\n  export GEMINI_API_KEY=your-api-key-here\n\nTo use Claude instead, update your config to a Claude model")
		}
	default:
		return fmt.Errorf("askdesk needs an LLM.\n\nConfigured provider %q is not supported.\n\nSupported providers:\n  - claude (Anthropic)\n  - gemini (Google)", mc.Provider)
	}
	return nil
}
