package advice

import (
	"context"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// DefaultModel is used when config leaves the model empty.
const DefaultModel = "claude-3-5-haiku-20241022"

// AnthropicCompleter calls the Anthropic Messages API.
type AnthropicCompleter struct {
	client    *anthropic.Client
	model     string
	maxTokens int64
}

// NewAnthropicCompleter returns nil when apiKey is empty so the requester
// fails fast before any network call.
func NewAnthropicCompleter(apiKey, model string, maxTokens int64, opts ...option.RequestOption) *AnthropicCompleter {
	if apiKey == "" {
		return nil
	}
	if model == "" {
		model = DefaultModel
	}
	if maxTokens <= 0 {
		maxTokens = 256
	}
	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, opts...)...)
	return &AnthropicCompleter{client: &client, model: model, maxTokens: maxTokens}
}

func (c *AnthropicCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   c.maxTokens,
		Temperature: anthropic.Float(0.7),
		TopP:        anthropic.Float(0.95),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
