package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/butcheralt/ariabot/internal/config"
)

const openAIDefaultURL = "https://api.openai.com/v1/chat/completions"

var openAIKnownModels = []string{
	"gpt-3.5-turbo", "gpt-4", "gpt-4-turbo-preview", "gpt-3.5-turbo-16k",
}

// openAI talks to the OpenAI Chat Completions API. Messages pass through
// unchanged as a role/content list.
type openAI struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	url         string
	client      *http.Client
}

func newOpenAI(cfg *config.Config) Provider {
	return &openAI{
		apiKey:      cfg.ResolveAPIKey(),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		url:         openAIDefaultURL,
		client:      &http.Client{Timeout: 2 * time.Minute},
	}
}

func (p *openAI) Name() string { return "openai" }

func (p *openAI) Chat(ctx context.Context, messages []Message) (string, error) {
	var result struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	reqBody := map[string]any{
		"model":       p.model,
		"messages":    messages,
		"temperature": p.temperature,
		"max_tokens":  p.maxTokens,
	}
	err := doJSONRoundTrip(ctx, p.client, "POST", p.url,
		map[string]string{
			"Content-Type":  "application/json",
			"Authorization": "Bearer " + p.apiKey,
		},
		reqBody, &result)
	if err != nil {
		return "", &Error{Provider: "OpenAI", Err: err}
	}

	if len(result.Choices) == 0 {
		return "", &Error{Provider: "OpenAI", Err: fmt.Errorf("no choices in response")}
	}
	return result.Choices[0].Message.Content, nil
}

func (p *openAI) ValidateConfig(ctx context.Context) []string {
	var issues []string
	if p.apiKey == "" {
		issues = append(issues, "OpenAI API key is required")
	}
	if msg := modelAdvisory("OpenAI", p.model, openAIKnownModels); msg != "" {
		issues = append(issues, msg)
	}
	return issues
}
