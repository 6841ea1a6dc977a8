package llm

import (
	"errors"
	"testing"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantName string
		wantNil  bool
		wantErr  error
	}{
		{"groq", Config{Provider: "groq", APIKey: "k"}, "groq", false, nil},
		{"openai upper case", Config{Provider: "OpenAI", APIKey: "k"}, "openai", false, nil},
		{"claude alias", Config{Provider: "claude", APIKey: "k"}, "anthropic", false, nil},
		{"ollama", Config{Provider: "ollama", Model: "mistral"}, "ollama", false, nil},
		{"none", Config{Provider: "none"}, "", true, nil},
		{"empty", Config{}, "", true, nil},
		{"groq without key", Config{Provider: "groq"}, "", true, ErrMissingAPIKey},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewProvider(tt.config)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil {
				if p != nil {
					t.Errorf("expected nil provider, got %s", p.Name())
				}
				return
			}
			if p.Name() != tt.wantName {
				t.Errorf("Name() = %s, want %s", p.Name(), tt.wantName)
			}
		})
	}
}

func TestNewProvider_Unknown(t *testing.T) {
	if _, err := NewProvider(Config{Provider: "mistral-cloud"}); err == nil {
		t.Error("expected error for unknown provider")
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Setenv("GROQ_API_KEY", "from-env")

	got := ResolveAPIKey(Config{Provider: "groq"})
	if got.APIKey != "from-env" {
		t.Errorf("expected key from environment, got %q", got.APIKey)
	}

	got = ResolveAPIKey(Config{Provider: "groq", APIKey: "explicit"})
	if got.APIKey != "explicit" {
		t.Errorf("explicit key overridden: %q", got.APIKey)
	}

	got = ResolveAPIKey(Config{Provider: "ollama"})
	if got.APIKey != "" {
		t.Errorf("ollama should not pick up a key, got %q", got.APIKey)
	}
}

func TestMissingKeyNamesVariable(t *testing.T) {
	err := missingKey("anthropic")
	if !errors.Is(err, ErrMissingAPIKey) {
		t.Fatalf("not wrapping ErrMissingAPIKey: %v", err)
	}
	if got := err.Error(); got != "anthropic: missing API key (set ANTHROPIC_API_KEY or llm.api_key)" {
		t.Errorf("unexpected message %q", got)
	}
}
