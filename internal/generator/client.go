// Package generator turns a keyword into article content through an
// OpenAI-compatible chat-completions endpoint. Single-keyword calls
// use a delimiter-text response format; batch variation calls use a
// JSON collection with structural validation and retries.
package generator

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/pratama/articleforge/internal/config"
	"github.com/pratama/articleforge/internal/domain"
)

// Client is the content generation adapter.
type Client struct {
	client    *resty.Client
	endpoint  string
	model     string
	maxTokens int
	batch     config.BatchConfig

	// sleep is swappable in tests so retry backoff does not wall-clock.
	sleep func(time.Duration)
}

// New creates a generation client from configuration.
func New(cfg *config.GenerationConfig) *Client {
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")

	timeout := cfg.TimeoutS
	if timeout <= 0 {
		timeout = 120
	}
	client.SetTimeout(time.Duration(timeout) * time.Second)

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 2500
	}

	return &Client{
		client:    client,
		endpoint:  baseURL + "/chat/completions",
		model:     cfg.Model,
		maxTokens: maxTokens,
		batch:     cfg.Batch,
		sleep:     time.Sleep,
	}
}

// OpenAI-compatible Chat Completion API request/response structures
type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float64       `json:"temperature"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// complete runs one chat-completion round trip and returns the raw
// assistant text.
func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	req := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		MaxTokens:   c.maxTokens,
		Temperature: 0.7,
	}

	var resp chatResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(c.endpoint)

	if err != nil {
		return "", fmt.Errorf("failed to call generation API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != nil {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		} else if len(httpResp.Body()) > 0 {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		}
		return "", fmt.Errorf("generation API returned error: %s", errorMsg)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("generation API error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in generation response (status: %d)", httpResp.StatusCode())
	}

	return resp.Choices[0].Message.Content, nil
}

// Generate produces article content for one keyword. Parse gaps are
// filled with deterministic fallbacks so the result is always
// renderable; only transport and empty-response failures surface as
// errors.
func (c *Client) Generate(ctx context.Context, keyword string) (*domain.Content, error) {
	lang := detectLanguage(keyword)

	raw, err := c.complete(ctx, systemPrompt(lang), articlePrompt(keyword, lang))
	if err != nil {
		return nil, &GenerationError{Keyword: keyword, Err: err}
	}

	content := parseDelimiterText(raw, keyword)
	applyFallbacks(content, keyword, lang)
	return content, nil
}
