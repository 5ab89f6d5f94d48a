package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/butcheralt/ariabot/internal/config"
)

// writeConfig writes a config file into a temp dir and returns its path.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return path
}

const minimalConfig = `{
  "bot_name": "TestBot",
  "bot_instructions": "You are a test bot.",
  "api_provider": "openai",
  "model": "gpt-4"
}`

func TestLoadMinimal(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.BotName != "TestBot" {
		t.Errorf("BotName = %q, want %q", cfg.BotName, "TestBot")
	}
	if cfg.APIProvider != "openai" {
		t.Errorf("APIProvider = %q, want %q", cfg.APIProvider, "openai")
	}
	if cfg.Model != "gpt-4" {
		t.Errorf("Model = %q, want %q", cfg.Model, "gpt-4")
	}
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Temperature != 0.7 {
		t.Errorf("Temperature = %g, want 0.7", cfg.Temperature)
	}
	if cfg.MaxTokens != 150 {
		t.Errorf("MaxTokens = %d, want 150", cfg.MaxTokens)
	}
	if cfg.OllamaURL != "http://localhost:11434" {
		t.Errorf("OllamaURL = %q, want default", cfg.OllamaURL)
	}
	if !cfg.Settings.SaveConversation {
		t.Error("Settings.SaveConversation = false, want true by default")
	}
	if cfg.Settings.ConversationFile != "chat_history.txt" {
		t.Errorf("Settings.ConversationFile = %q, want %q", cfg.Settings.ConversationFile, "chat_history.txt")
	}
	if cfg.Settings.ShowTokenUsage {
		t.Error("Settings.ShowTokenUsage = true, want false by default")
	}
}

func TestLoadExplicitZeroSurvives(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `{
  "bot_name": "B",
  "bot_instructions": "i",
  "api_provider": "openai",
  "model": "gpt-4",
  "temperature": 0,
  "settings": {"save_conversation": false}
}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Temperature != 0 {
		t.Errorf("Temperature = %g, want explicit 0 to survive", cfg.Temperature)
	}
	if cfg.Settings.SaveConversation {
		t.Error("Settings.SaveConversation = true, want explicit false to survive")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, config.ErrNotFound) {
		t.Fatalf("Load missing file: err = %v, want ErrNotFound", err)
	}
	if !strings.Contains(err.Error(), "ariabot setup") {
		t.Errorf("error should point the user at setup, got %q", err)
	}
}

func TestLoadBadJSON(t *testing.T) {
	_, err := config.Load(writeConfig(t, `{not json`))
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("Load bad JSON: err = %v, want ErrInvalid", err)
	}
}

func TestLoadMissingRequiredField(t *testing.T) {
	_, err := config.Load(writeConfig(t, `{
  "bot_name": "B",
  "bot_instructions": "i",
  "api_provider": "openai"
}`))
	if !errors.Is(err, config.ErrInvalid) {
		t.Fatalf("err = %v, want ErrInvalid", err)
	}
	if !strings.Contains(err.Error(), `"model"`) {
		t.Errorf("error should name the missing field, got %q", err)
	}
}

func TestGetDottedKeys(t *testing.T) {
	cfg, err := config.Load(writeConfig(t, `{
  "bot_name": "B",
  "bot_instructions": "i",
  "api_provider": "groq",
  "model": "groq/compound",
  "settings": {"save_conversation": false},
  "extra": {"nested": {"value": "deep"}}
}`))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	tests := []struct {
		key  string
		def  any
		want any
	}{
		{"bot_name", "x", "B"},
		{"settings.save_conversation", true, false},
		{"extra.nested.value", nil, "deep"},
		{"missing", "fallback", "fallback"},
		{"settings.missing", 42, 42},
		{"bot_name.not_a_map", "fallback", "fallback"},
	}
	for _, tt := range tests {
		if got := cfg.Get(tt.key, tt.def); got != tt.want {
			t.Errorf("Get(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestResolveAPIKey(t *testing.T) {
	t.Run("config wins over env", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "env-key")
		cfg, err := config.Load(writeConfig(t, `{
  "bot_name": "B", "bot_instructions": "i",
  "api_provider": "openai", "model": "gpt-4",
  "api_key": "config-key"
}`))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got := cfg.ResolveAPIKey(); got != "config-key" {
			t.Errorf("ResolveAPIKey() = %q, want config-key", got)
		}
	})

	t.Run("provider env probe", func(t *testing.T) {
		t.Setenv("GROQ_API_KEY", "xyz")
		cfg, err := config.Load(writeConfig(t, `{
  "bot_name": "B", "bot_instructions": "i",
  "api_provider": "groq", "model": "groq/compound"
}`))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got := cfg.ResolveAPIKey(); got != "xyz" {
			t.Errorf("ResolveAPIKey() = %q, want xyz", got)
		}
	})

	t.Run("generic fallback", func(t *testing.T) {
		t.Setenv("API_KEY", "generic")
		cfg, err := config.Load(writeConfig(t, `{
  "bot_name": "B", "bot_instructions": "i",
  "api_provider": "cohere", "model": "command"
}`))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got := cfg.ResolveAPIKey(); got != "generic" {
			t.Errorf("ResolveAPIKey() = %q, want generic", got)
		}
	})

	t.Run("nothing set", func(t *testing.T) {
		cfg, err := config.Load(writeConfig(t, minimalConfig))
		if err != nil {
			t.Fatalf("Load: %v", err)
		}
		if got := cfg.ResolveAPIKey(); got != "" {
			t.Errorf("ResolveAPIKey() = %q, want empty", got)
		}
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string // substrings expected in issues, in order
	}{
		{
			name:    "missing key",
			content: minimalConfig,
			want:    []string{"no API key"},
		},
		{
			name: "ollama needs no key",
			content: `{"bot_name": "B", "bot_instructions": "i",
  "api_provider": "ollama", "model": "llama2"}`,
			want: nil,
		},
		{
			name: "temperature out of range",
			content: `{"bot_name": "B", "bot_instructions": "i",
  "api_provider": "openai", "model": "gpt-4",
  "api_key": "k", "temperature": 3.5}`,
			want: []string{"temperature"},
		},
		{
			name: "max_tokens out of range",
			content: `{"bot_name": "B", "bot_instructions": "i",
  "api_provider": "openai", "model": "gpt-4",
  "api_key": "k", "max_tokens": 0}`,
			want: []string{"max_tokens"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.Load(writeConfig(t, tt.content))
			if err != nil {
				t.Fatalf("Load: %v", err)
			}
			issues := cfg.Validate()
			if len(issues) != len(tt.want) {
				t.Fatalf("Validate() = %v, want %d issue(s)", issues, len(tt.want))
			}
			for i, sub := range tt.want {
				if !strings.Contains(issues[i], sub) {
					t.Errorf("issue %d = %q, want it to mention %q", i, issues[i], sub)
				}
			}
		})
	}
}

func TestSetAndSave(t *testing.T) {
	path := writeConfig(t, minimalConfig)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	cfg.Set("model", "gpt-3.5-turbo")
	cfg.Set("settings.show_token_usage", true)

	// Typed fields re-sync immediately.
	if cfg.Model != "gpt-3.5-turbo" {
		t.Errorf("Model after Set = %q", cfg.Model)
	}
	if !cfg.Settings.ShowTokenUsage {
		t.Error("Settings.ShowTokenUsage after Set = false")
	}

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load after Save: %v", err)
	}
	if reloaded.Model != "gpt-3.5-turbo" {
		t.Errorf("reloaded Model = %q", reloaded.Model)
	}
	if !reloaded.Settings.ShowTokenUsage {
		t.Error("reloaded Settings.ShowTokenUsage = false")
	}
	// Untouched fields survive the round trip.
	if reloaded.BotName != "TestBot" {
		t.Errorf("reloaded BotName = %q", reloaded.BotName)
	}
}
