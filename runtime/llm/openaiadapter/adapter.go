// Package openaiadapter implements llm.Adapter on top of an
// OpenAI-compatible chat completions endpoint, grounded on
// Jint8888-Pocket-Omega's internal/llm/openai.Client (retry loop and config
// shape kept, trimmed to this module's narrower Adapter contract).
package openaiadapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	openailib "github.com/sashabaranov/go-openai"

	"github.com/zerotrust-agents/agentrt/runtime/llm"
)

// Config configures an Adapter.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature *float32
	MaxTokens   int
	MaxRetries  int
	HTTPTimeout time.Duration
}

// Adapter wraps an OpenAI-compatible chat completions client.
type Adapter struct {
	client *openailib.Client
	cfg    Config
}

var _ llm.Adapter = (*Adapter)(nil)

// New validates cfg and constructs an Adapter.
func New(cfg Config) (*Adapter, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openaiadapter: api key is required")
	}
	if cfg.Model == "" {
		return nil, errors.New("openaiadapter: model is required")
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}

	clientConfig := openailib.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &Adapter{client: openailib.NewClientWithConfig(clientConfig), cfg: cfg}, nil
}

// Invoke converts messages to the OpenAI wire format and retries transient
// failures up to cfg.MaxRetries times with linear backoff, matching the
// teacher's retry loop shape.
func (a *Adapter) Invoke(ctx context.Context, messages []llm.Message) (string, error) {
	if len(messages) == 0 {
		return "", errors.New("openaiadapter: no messages to send")
	}

	chatMsgs := make([]openailib.ChatCompletionMessage, len(messages))
	for i, m := range messages {
		chatMsgs[i] = openailib.ChatCompletionMessage{Role: m.Role, Content: m.Content}
	}

	req := openailib.ChatCompletionRequest{Model: a.cfg.Model, Messages: chatMsgs}
	if a.cfg.Temperature != nil {
		req.Temperature = *a.cfg.Temperature
	}
	if a.cfg.MaxTokens > 0 {
		req.MaxTokens = a.cfg.MaxTokens
	}

	var resp openailib.ChatCompletionResponse
	var lastErr error
	for attempt := 0; attempt <= a.cfg.MaxRetries; attempt++ {
		resp, lastErr = a.client.CreateChatCompletion(ctx, req)
		if lastErr == nil {
			break
		}
		if attempt < a.cfg.MaxRetries {
			select {
			case <-time.After(time.Duration(attempt+1) * time.Second):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
	}
	if lastErr != nil {
		return "", fmt.Errorf("openaiadapter: chat completion failed after %d retries: %w", a.cfg.MaxRetries, lastErr)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("openaiadapter: no choices returned")
	}
	return resp.Choices[0].Message.Content, nil
}
