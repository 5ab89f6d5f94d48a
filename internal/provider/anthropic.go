package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/butcheralt/ariabot/internal/config"
)

const anthropicDefaultURL = "https://api.anthropic.com/v1/messages"

var anthropicKnownModels = []string{
	"claude-3-sonnet-20240229", "claude-3-opus-20240229", "claude-3-haiku-20240307",
}

// anthropic talks to the Anthropic Messages API. The single leading
// system-role message is extracted into the top-level "system" field; the
// rest go through as a user/assistant list.
type anthropic struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	url         string
	client      *http.Client
}

func newAnthropic(cfg *config.Config) Provider {
	return &anthropic{
		apiKey:      cfg.ResolveAPIKey(),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		url:         anthropicDefaultURL,
		client:      &http.Client{Timeout: 2 * time.Minute},
	}
}

func (p *anthropic) Name() string { return "anthropic" }

func (p *anthropic) Chat(ctx context.Context, messages []Message) (string, error) {
	system, turns := splitSystem(messages)

	var result struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	}
	reqBody := map[string]any{
		"model":       p.model,
		"system":      system,
		"messages":    turns,
		"temperature": p.temperature,
		"max_tokens":  p.maxTokens,
	}
	err := doJSONRoundTrip(ctx, p.client, "POST", p.url,
		map[string]string{
			"Content-Type":      "application/json",
			"x-api-key":         p.apiKey,
			"anthropic-version": "2023-06-01",
		},
		reqBody, &result)
	if err != nil {
		return "", &Error{Provider: "Anthropic", Err: err}
	}

	for _, block := range result.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", &Error{Provider: "Anthropic", Err: fmt.Errorf("no text content in response")}
}

func (p *anthropic) ValidateConfig(ctx context.Context) []string {
	var issues []string
	if p.apiKey == "" {
		issues = append(issues, "Anthropic API key is required")
	}
	if msg := modelAdvisory("Anthropic", p.model, anthropicKnownModels); msg != "" {
		issues = append(issues, msg)
	}
	return issues
}

// splitSystem separates the system instruction from the turn list. The last
// system message wins if several are present; system messages never appear
// in the returned turns.
func splitSystem(messages []Message) (string, []Message) {
	var system string
	turns := make([]Message, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			system = msg.Content
			continue
		}
		turns = append(turns, msg)
	}
	return system, turns
}
