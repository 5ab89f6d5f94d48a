// Package config provides configuration management for ariabot.
//
// Configuration lives in a single JSON file (config.json by default),
// created by `ariabot setup`. The file is read once at startup and only
// rewritten by the setup flow or `ariabot config set`.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Sentinel errors for startup diagnostics. Callers match with errors.Is.
var (
	// ErrNotFound means the config file does not exist.
	ErrNotFound = errors.New("config file not found")
	// ErrInvalid means the config file is malformed or missing required fields.
	ErrInvalid = errors.New("invalid config")
)

// requiredFields must be present in the document or Load fails.
var requiredFields = []string{"bot_name", "bot_instructions", "api_provider", "model"}

// Settings holds behavioral toggles nested under the "settings" key.
type Settings struct {
	// SaveConversation enables transcript auto-save on exit. Default: true.
	SaveConversation bool `json:"save_conversation"`
	// ConversationFile is the transcript path. Default: "chat_history.txt".
	ConversationFile string `json:"conversation_file,omitempty"`
	// ShowTokenUsage prints a rough token estimate after each reply.
	ShowTokenUsage bool `json:"show_token_usage,omitempty"`
}

// Config holds all configuration for the chatbot.
//
// Typed fields cover the known schema; the raw decoded document is kept
// alongside so provider-specific extras remain reachable through Get and
// survive a Save round trip.
type Config struct {
	BotName         string  `json:"bot_name"`
	BotInstructions string  `json:"bot_instructions"`
	APIProvider     string  `json:"api_provider"`
	Model           string  `json:"model"`
	APIKey          string  `json:"api_key,omitempty"`
	Temperature     float64 `json:"temperature"`
	MaxTokens       int     `json:"max_tokens"`

	// OllamaURL is the local inference server base URL (ollama provider only).
	OllamaURL string `json:"ollama_url,omitempty"`

	// Front-end tokens (optional; each bridge refuses to start without its own).
	TelegramBotToken string `json:"telegram_bot_token,omitempty"`
	SlackBotToken    string `json:"slack_bot_token,omitempty"`
	SlackAppToken    string `json:"slack_app_token,omitempty"`

	Settings Settings `json:"settings"`

	path string
	raw  map[string]any
}

// Load reads and validates the configuration file at path.
// A missing file wraps ErrNotFound; a malformed document or a missing
// required field wraps ErrInvalid.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s (run \"ariabot setup\" first)", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalid, path, err)
	}

	for _, field := range requiredFields {
		if _, ok := raw[field]; !ok {
			return nil, fmt.Errorf("%w: required field %q missing from %s", ErrInvalid, field, path)
		}
	}

	cfg := &Config{path: path, raw: raw}
	if err := cfg.decode(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return cfg, nil
}

// decode re-projects the raw document onto the typed fields and applies
// defaults for absent keys. Presence is checked against the raw document so
// explicit zero values (e.g. temperature 0) survive.
func (c *Config) decode() error {
	data, err := json.Marshal(c.raw)
	if err != nil {
		return err
	}
	path, raw := c.path, c.raw
	*c = Config{path: path, raw: raw}
	if err := json.Unmarshal(data, c); err != nil {
		return err
	}

	if c.BotName == "" {
		c.BotName = "Assistant"
	}
	if c.BotInstructions == "" {
		c.BotInstructions = "You are a helpful assistant."
	}
	if c.APIProvider == "" {
		c.APIProvider = "openai"
	}
	if c.Model == "" {
		c.Model = "gpt-3.5-turbo"
	}
	if _, ok := c.lookup("temperature"); !ok {
		c.Temperature = 0.7
	}
	if _, ok := c.lookup("max_tokens"); !ok {
		c.MaxTokens = 150
	}
	if c.OllamaURL == "" {
		c.OllamaURL = "http://localhost:11434"
	}
	if _, ok := c.lookup("settings.save_conversation"); !ok {
		c.Settings.SaveConversation = true
	}
	if c.Settings.ConversationFile == "" {
		c.Settings.ConversationFile = "chat_history.txt"
	}
	return nil
}

// lookup traverses the raw document segment by segment.
func (c *Config) lookup(dottedKey string) (any, bool) {
	var node any = c.raw
	for _, seg := range strings.Split(dottedKey, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[seg]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// Get returns the value at a dotted key path, or def when any intermediate
// segment is absent or not itself a mapping.
func (c *Config) Get(dottedKey string, def any) any {
	if v, ok := c.lookup(dottedKey); ok {
		return v
	}
	return def
}

// Set writes value at a dotted key path, creating intermediate mappings as
// needed, and re-syncs the typed fields.
func (c *Config) Set(dottedKey string, value any) {
	segs := strings.Split(dottedKey, ".")
	node := c.raw
	for _, seg := range segs[:len(segs)-1] {
		child, ok := node[seg].(map[string]any)
		if !ok {
			child = make(map[string]any)
			node[seg] = child
		}
		node = child
	}
	node[segs[len(segs)-1]] = value
	c.decode()
}

// Save writes the current document back to the config file.
func (c *Config) Save() error {
	data, err := json.MarshalIndent(c.raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.WriteFile(c.path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", c.path, err)
	}
	return nil
}

// Path returns the config file location.
func (c *Config) Path() string { return c.path }

// ResolveAPIKey returns the credential for the configured provider.
// An in-config key wins; otherwise the environment is probed in order
// {PROVIDER}_API_KEY, {PROVIDER}API_KEY, API_KEY. Returns "" when nothing
// is set.
func (c *Config) ResolveAPIKey() string {
	if c.APIKey != "" {
		return c.APIKey
	}
	provider := strings.ToUpper(c.APIProvider)
	for _, name := range []string{provider + "_API_KEY", provider + "API_KEY", "API_KEY"} {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}

// Validate returns advisory issues. It never fails outright; the caller
// decides whether to abort.
func (c *Config) Validate() []string {
	var issues []string
	// Ollama serves locally without a credential; everything else needs one.
	if c.APIProvider != "ollama" && c.ResolveAPIKey() == "" {
		issues = append(issues,
			fmt.Sprintf("no API key found for %s; set it in %s or an environment variable", c.APIProvider, c.path))
	}
	if c.Temperature < 0 || c.Temperature > 2 {
		issues = append(issues, "temperature should be between 0 and 2")
	}
	if c.MaxTokens < 1 {
		issues = append(issues, "max_tokens should be greater than 0")
	}
	return issues
}

// String renders a one-line summary for logs. Secrets are omitted.
func (c *Config) String() string {
	return fmt.Sprintf("Config(bot_name=%q, provider=%q, model=%q, temperature=%g)",
		c.BotName, c.APIProvider, c.Model, c.Temperature)
}
