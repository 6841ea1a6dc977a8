package llm

import (
	"fmt"
	"os"
	"strings"
)

// ProviderNone disables the model; every long paragraph goes to the sentence fallback
const ProviderNone = "none"

// NewProvider creates a new LLM provider based on configuration.
// It returns (nil, nil) when the model is disabled.
func NewProvider(config Config) (Provider, error) {
	provider := strings.ToLower(strings.TrimSpace(config.Provider))

	switch provider {
	case "groq":
		return NewGroqProvider(config)

	case "openai":
		return NewOpenAIProvider(config)

	case "anthropic", "claude":
		return NewAnthropicProvider(config)

	case "ollama":
		return NewOllamaProvider(config)

	case "", ProviderNone:
		return nil, nil

	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: groq, openai, anthropic, ollama, none)", config.Provider)
	}
}

// APIKeyEnv returns the environment variable conventionally holding the
// provider's credential, or "" for providers that need none.
func APIKeyEnv(provider string) string {
	switch strings.ToLower(provider) {
	case "groq":
		return "GROQ_API_KEY"
	case "openai":
		return "OPENAI_API_KEY"
	case "anthropic", "claude":
		return "ANTHROPIC_API_KEY"
	default:
		return ""
	}
}

// ResolveAPIKey fills config.APIKey from the provider's environment variable
// when it was not set explicitly.
func ResolveAPIKey(config Config) Config {
	if config.APIKey != "" {
		return config
	}
	if env := APIKeyEnv(config.Provider); env != "" {
		config.APIKey = os.Getenv(env)
	}
	return config
}

func missingKey(provider string) error {
	if env := APIKeyEnv(provider); env != "" {
		return fmt.Errorf("%s: %w (set %s or llm.api_key)", provider, ErrMissingAPIKey, env)
	}
	return fmt.Errorf("%s: %w", provider, ErrMissingAPIKey)
}
