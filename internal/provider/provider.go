// Package provider implements the chat provider abstraction for ariabot.
//
// A Provider translates a provider-agnostic message list into one vendor's
// request shape, performs a single synchronous API call, and extracts the
// first textual completion. There is no retry logic anywhere: every failure
// is wrapped in *Error and reported once.
package provider

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/butcheralt/ariabot/internal/config"
)

// Message roles. Order within a conversation is significant.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one turn of a conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Provider is the uniform contract implemented per vendor.
// Implementations are stateless across calls except for the model,
// temperature, max-token budget, and credential bound at construction.
type Provider interface {
	// Name returns the registry name ("openai", "anthropic", ...).
	Name() string

	// Chat sends the ordered message list and returns the reply text.
	// Transport and API-level failures come back as *Error.
	Chat(ctx context.Context, messages []Message) (string, error)

	// ValidateConfig returns advisory issues: missing credentials, unknown
	// model names, unreachable local servers. Never fatal by itself.
	ValidateConfig(ctx context.Context) []string
}

// Error wraps a transport or API-level failure from a provider call.
type Error struct {
	Provider string
	Err      error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// UnknownProviderError is returned by New for an unrecognized provider name.
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown provider %q, available: %s", e.Name, strings.Join(Names(), ", "))
}

// registry maps provider names to constructors. Fixed at init; New never
// mutates it.
var registry = map[string]func(cfg *config.Config) Provider{
	"openai":    newOpenAI,
	"anthropic": newAnthropic,
	"cohere":    newCohere,
	"ollama":    newOllama,
	"groq":      newGroq,
}

// New constructs the provider named in the configuration. The lookup is
// case-insensitive.
func New(cfg *config.Config) (Provider, error) {
	name := strings.ToLower(cfg.APIProvider)
	construct, ok := registry[name]
	if !ok {
		return nil, &UnknownProviderError{Name: cfg.APIProvider}
	}
	return construct(cfg), nil
}

// Names returns all registered provider names, sorted.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// modelAdvisory reports the standard soft warning when model is not in the
// provider's known-good list. Vendors add models frequently, so absence is
// a warning, never a hard failure.
func modelAdvisory(provider, model string, known []string) string {
	for _, m := range known {
		if m == model {
			return ""
		}
	}
	return fmt.Sprintf("model %q may not be valid for %s", model, provider)
}
