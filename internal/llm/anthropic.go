// Package llm provides the Completion Service used for transcript
// summarization, composed note summaries, and chat replies.
package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"notable/internal/domain"
	"notable/internal/domain/services"
)

const defaultMaxTokens = 1000

// AnthropicClient implements CompletionService against the Anthropic API.
type AnthropicClient struct {
	client *anthropic.Client
	model  string
	logger *slog.Logger
}

// NewAnthropicClient creates a completion client with the given API key and
// model.
func NewAnthropicClient(apiKey, model string, logger *slog.Logger) (services.CompletionService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("anthropic API key is required")
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	return &AnthropicClient{
		client: &client,
		model:  model,
		logger: logger,
	}, nil
}

// Complete sends the system prompts and user input and returns the
// concatenated text blocks of the response. Failures are wrapped as
// upstream errors so callers can map them uniformly.
func (c *AnthropicClient) Complete(ctx context.Context, system []string, input string) (string, error) {
	systemBlocks := make([]anthropic.TextBlockParam, 0, len(system))
	for _, s := range system {
		systemBlocks = append(systemBlocks, anthropic.TextBlockParam{
			Type: "text",
			Text: s,
		})
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: defaultMaxTokens,
		System:    systemBlocks,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(input)),
		},
	}

	message, err := c.client.Messages.New(ctx, params)
	if err != nil {
		c.logger.Error("completion call failed", "model", c.model, "error", err)
		return "", &domain.UpstreamError{Message: fmt.Sprintf("completion service: %v", err)}
	}

	var sb strings.Builder
	for _, block := range message.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	return strings.TrimSpace(sb.String()), nil
}
