package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/butcheralt/ariabot/internal/config"
)

// ollama talks to a local Ollama server. The full message list and options
// are posted verbatim to /api/chat in a fixed JSON envelope; no streaming,
// no credential.
type ollama struct {
	baseURL     string
	model       string
	temperature float64
	maxTokens   int
	client      *http.Client
}

func newOllama(cfg *config.Config) Provider {
	return &ollama{
		baseURL:     cfg.OllamaURL,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		client:      &http.Client{Timeout: 2 * time.Minute},
	}
}

func (p *ollama) Name() string { return "ollama" }

func (p *ollama) Chat(ctx context.Context, messages []Message) (string, error) {
	var result struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	reqBody := map[string]any{
		"model":    p.model,
		"messages": messages,
		"stream":   false,
		"options": map[string]any{
			"temperature": p.temperature,
			"num_predict": p.maxTokens,
		},
	}
	err := doJSONRoundTrip(ctx, p.client, "POST", p.baseURL+"/api/chat",
		map[string]string{"Content-Type": "application/json"},
		reqBody, &result)
	if err != nil {
		return "", &Error{Provider: "Ollama", Err: err}
	}
	return result.Message.Content, nil
}

// ValidateConfig probes the server with a lightweight GET to /api/tags.
func (p *ollama) ValidateConfig(ctx context.Context) []string {
	probeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, "GET", p.baseURL+"/api/tags", nil)
	if err != nil {
		return []string{fmt.Sprintf("cannot connect to Ollama at %s", p.baseURL)}
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return []string{fmt.Sprintf("cannot connect to Ollama at %s", p.baseURL)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return []string{fmt.Sprintf("cannot connect to Ollama at %s (status %d)", p.baseURL, resp.StatusCode)}
	}
	return nil
}
