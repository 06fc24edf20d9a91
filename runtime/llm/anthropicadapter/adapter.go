// Package anthropicadapter implements llm.Adapter on top of the Anthropic
// Claude Messages API, grounded on the teacher's
// features/model/anthropic.Client (simplified here to the narrower
// messages-in/text-out contract this spec's Planner/Executor actually use —
// no tool-use/thinking/streaming translation, since those concerns belong
// to the out-of-scope LLM provider wire protocol layer, spec.md §1).
package anthropicadapter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/zerotrust-agents/agentrt/runtime/llm"
)

// MessagesClient captures the subset of the Anthropic SDK used here, so
// tests can substitute a fake.
type MessagesClient interface {
	New(ctx context.Context, body sdk.MessageNewParams, opts ...option.RequestOption) (*sdk.Message, error)
}

// Adapter wraps an Anthropic Messages client.
type Adapter struct {
	client    MessagesClient
	model     string
	maxTokens int64
}

var _ llm.Adapter = (*Adapter)(nil)

// New constructs an Adapter. model must name a valid Claude model
// identifier (e.g. string(sdk.ModelClaudeSonnet4_5)).
func New(client MessagesClient, model string, maxTokens int64) (*Adapter, error) {
	if client == nil {
		return nil, errors.New("anthropicadapter: client is required")
	}
	if model == "" {
		return nil, errors.New("anthropicadapter: model is required")
	}
	if maxTokens <= 0 {
		maxTokens = 4096
	}
	return &Adapter{client: client, model: model, maxTokens: maxTokens}, nil
}

// NewFromAPIKey constructs an Adapter using the default Anthropic HTTP
// client configured from apiKey.
func NewFromAPIKey(apiKey, model string, maxTokens int64) (*Adapter, error) {
	if apiKey == "" {
		return nil, errors.New("anthropicadapter: api key is required")
	}
	c := sdk.NewClient(option.WithAPIKey(apiKey))
	return New(&c.Messages, model, maxTokens)
}

// Invoke translates messages into an Anthropic Messages request and returns
// the concatenated text of the response's text blocks.
func (a *Adapter) Invoke(ctx context.Context, messages []llm.Message) (string, error) {
	var system []sdk.TextBlockParam
	var conversation []sdk.MessageParam

	for _, m := range messages {
		switch strings.ToLower(m.Role) {
		case "system":
			system = append(system, sdk.TextBlockParam{Text: m.Content})
		case "assistant":
			conversation = append(conversation, sdk.NewAssistantMessage(sdk.NewTextBlock(m.Content)))
		default:
			conversation = append(conversation, sdk.NewUserMessage(sdk.NewTextBlock(m.Content)))
		}
	}
	if len(conversation) == 0 {
		return "", errors.New("anthropicadapter: at least one user/assistant message is required")
	}

	params := sdk.MessageNewParams{
		Model:     sdk.Model(a.model),
		MaxTokens: a.maxTokens,
		Messages:  conversation,
	}
	if len(system) > 0 {
		params.System = system
	}

	msg, err := a.client.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("anthropicadapter: messages.new: %w", err)
	}

	var out strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			out.WriteString(block.Text)
		}
	}
	return out.String(), nil
}
