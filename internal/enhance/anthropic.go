package enhance

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

// AnthropicProvider calls the Anthropic messages API.
type AnthropicProvider struct {
	client *resty.Client
	model  string
}

// NewAnthropicProvider builds a provider for the given credentials. baseURL
// is normally https://api.anthropic.com; tests point it at a local server.
func NewAnthropicProvider(baseURL, apiKey, model string, timeout time.Duration) *AnthropicProvider {
	c := resty.New().
		SetBaseURL(baseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("x-api-key", apiKey).
		SetHeader("anthropic-version", "2023-06-01").
		SetTimeout(timeout)

	return &AnthropicProvider{client: c, model: model}
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Rewrites should come out stable across retries, so the temperature is
// pinned low rather than left at the API default.
const completionTemperature = 0.7

type anthropicRequest struct {
	Model       string             `json:"model"`
	MaxTokens   int                `json:"max_tokens"`
	Temperature float64            `json:"temperature"`
	System      string             `json:"system,omitempty"`
	Messages    []anthropicMessage `json:"messages"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	Error *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

func (p *AnthropicProvider) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	body := anthropicRequest{
		Model:       p.model,
		MaxTokens:   req.MaxTokens,
		Temperature: completionTemperature,
		System:      req.System,
		Messages:    []anthropicMessage{{Role: "user", Content: req.Prompt}},
	}

	resp, err := p.client.R().
		SetContext(ctx).
		SetBody(&body).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("anthropic request: %w", err)
	}

	var ar anthropicResponse
	if err := json.Unmarshal(resp.Body(), &ar); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode() != http.StatusOK {
		if ar.Error != nil {
			return "", fmt.Errorf("anthropic status %d: %s: %s", resp.StatusCode(), ar.Error.Type, ar.Error.Message)
		}
		return "", fmt.Errorf("anthropic status %d: %s", resp.StatusCode(), resp.String())
	}

	for _, c := range ar.Content {
		if c.Type == "text" {
			return c.Text, nil
		}
	}
	return "", fmt.Errorf("anthropic response has no text content")
}
