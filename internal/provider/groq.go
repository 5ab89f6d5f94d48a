package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/butcheralt/ariabot/internal/config"
)

const groqDefaultURL = "https://api.groq.com/openai/v1/chat/completions"

// groqKnownModels tracks commonly available Groq models. Groq rotates
// models quickly, so membership here is informational only.
var groqKnownModels = []string{
	"groq/compound",
	"groq/compound-mini",
	"llama-3.3-70b-versatile",
	"llama-3.1-8b-instant",
	"gemma2-9b-it",
	"deepseek-r1-distill-llama-70b",
	"meta-llama/llama-4-maverick-17b-128e-instruct",
	"meta-llama/llama-4-scout-17b-16e-instruct",
	"openai/gpt-oss-120b",
	"openai/gpt-oss-20b",
	"qwen/qwen3-32b",
	"moonshotai/kimi-k2-instruct",
	"moonshotai/kimi-k2-instruct-0905",
}

// groq talks to Groq's OpenAI-compatible chat completions endpoint. Same
// wire shape as the OpenAI provider, different endpoint and credential
// family.
type groq struct {
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	url         string
	client      *http.Client
}

func newGroq(cfg *config.Config) Provider {
	return &groq{
		apiKey:      cfg.ResolveAPIKey(),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		url:         groqDefaultURL,
		client:      &http.Client{Timeout: 2 * time.Minute},
	}
}

func (p *groq) Name() string { return "groq" }

func (p *groq) Chat(ctx context.Context, messages []Message) (string, error) {
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
		return "", &Error{Provider: "Groq", Err: err}
	}

	if len(result.Choices) == 0 {
		return "", &Error{Provider: "Groq", Err: fmt.Errorf("no choices in response")}
	}
	return result.Choices[0].Message.Content, nil
}

// ValidateConfig never hard-fails on unknown model names: Groq adds models
// too often for a fixed list to be authoritative.
func (p *groq) ValidateConfig(ctx context.Context) []string {
	var issues []string
	if p.apiKey == "" {
		issues = append(issues, "Groq API key is required")
	}
	known := false
	for _, m := range groqKnownModels {
		if m == p.model {
			known = true
			break
		}
	}
	if !known {
		issues = append(issues, fmt.Sprintf(
			"note: model %q not in common list; if it's a new Groq model, ignore this message", p.model))
	}
	return issues
}
