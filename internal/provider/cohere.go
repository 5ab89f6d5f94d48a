package provider

import (
	"context"
	"net/http"
	"time"

	"github.com/butcheralt/ariabot/internal/config"
)

const cohereDefaultURL = "https://api.cohere.ai/v1/chat"

var cohereKnownModels = []string{"command", "command-light", "command-nightly"}

// cohereHistoryEntry is one prior turn in Cohere's chat_history field.
type cohereHistoryEntry struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// cohere talks to the Cohere Chat API. Its request shape is lossy by
// construction: the most recent user message becomes the singular "message"
// field, prior assistant messages become chat_history entries relabeled
// "CHATBOT", and everything else (system, earlier user turns) is dropped.
// That information loss is the vendor's documented shape, not something to
// correct here.
type cohere struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	url         string
	client      *http.Client
}

func newCohere(cfg *config.Config) Provider {
	return &cohere{
		apiKey:      cfg.ResolveAPIKey(),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		url:         cohereDefaultURL,
		client:      &http.Client{Timeout: 2 * time.Minute},
	}
}

func (p *cohere) Name() string { return "cohere" }

func (p *cohere) Chat(ctx context.Context, messages []Message) (string, error) {
	current, history := collapseCohereHistory(messages)

	var result struct {
		Text string `json:"text"`
	}
	reqBody := map[string]any{
		"model":        p.model,
		"message":      current,
		"chat_history": history,
		"temperature":  p.temperature,
		"max_tokens":   p.maxTokens,
	}
	err := doJSONRoundTrip(ctx, p.client, "POST", p.url,
		map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + p.apiKey,
		},
		reqBody, &result)
	if err != nil {
		return "", &Error{Provider: "Cohere", Err: err}
	}
	return result.Text, nil
}

func (p *cohere) ValidateConfig(ctx context.Context) []string {
	var issues []string
	if p.apiKey == "" {
		issues = append(issues, "Cohere API key is required")
	}
	if msg := modelAdvisory("Cohere", p.model, cohereKnownModels); msg != "" {
		issues = append(issues, msg)
	}
	return issues
}

// collapseCohereHistory converts a message list into Cohere's shape: the
// last user message seen becomes the current message, assistant messages
// become CHATBOT history entries, system and earlier user messages are
// discarded.
func collapseCohereHistory(messages []Message) (string, []cohereHistoryEntry) {
	var current string
	history := make([]cohereHistoryEntry, 0, len(messages))
	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			// Cohere handles the system message differently; dropped.
		case RoleUser:
			current = msg.Content
		case RoleAssistant:
			history = append(history, cohereHistoryEntry{Role: "CHATBOT", Message: msg.Content})
		}
	}
	return current, history
}
