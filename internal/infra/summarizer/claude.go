package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/NavaneethanES/ai-news-aggregator/internal/domain/entity"
	"github.com/NavaneethanES/ai-news-aggregator/internal/observability/metrics"
)

// claudeModel is the Claude model used for digest summarization.
const claudeModel = anthropic.Model("claude-sonnet-4-5-20250929")

// Claude implements the Summarizer interface using Anthropic's Claude
// API. It is selected with SUMMARIZER_TYPE=claude and an Anthropic key.
type Claude struct {
	client anthropic.Client
	now    func() time.Time
}

// NewClaude creates a new Claude summarizer with the given API key.
func NewClaude(apiKey string) *Claude {
	slog.Info("Initialized Claude summarizer",
		slog.String("model", string(claudeModel)))

	return &Claude{
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
		now:    time.Now,
	}
}

// Summarize generates a digest summary of the given items. It makes a
// single completion attempt bounded by a 60 second timeout.
func (c *Claude) Summarize(ctx context.Context, items []entity.NewsItem) (string, error) {
	if len(items) == 0 {
		return NoNewsMessage, nil
	}

	ctx, cancel := context.WithTimeout(ctx, summarizeTimeout)
	defer cancel()

	prompt := BuildPrompt(items, c.now())

	slog.InfoContext(ctx, "Starting summarization",
		slog.String("backend", "claude"),
		slog.Int("item_count", len(items)),
		slog.Int("prompt_length", len(prompt)))

	start := time.Now()

	message, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       claudeModel,
		MaxTokens:   completionMaxTokens,
		Temperature: anthropic.Float(completionTemperature),
		System: []anthropic.TextBlockParam{
			{Text: systemInstruction},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(
				anthropic.NewTextBlock(prompt),
			),
		},
	})

	duration := time.Since(start)

	if err != nil {
		metrics.RecordSummarization(duration, false)
		slog.ErrorContext(ctx, "Summarization failed",
			slog.String("backend", "claude"),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("claude api error: %w", err)
	}

	if len(message.Content) == 0 {
		metrics.RecordSummarization(duration, false)
		slog.ErrorContext(ctx, "Claude API returned empty response",
			slog.Duration("duration", duration))
		return "", fmt.Errorf("claude api returned empty response")
	}

	textBlock, ok := message.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		metrics.RecordSummarization(duration, false)
		slog.ErrorContext(ctx, "Claude API returned unexpected response type",
			slog.Duration("duration", duration))
		return "", fmt.Errorf("claude api returned unexpected response type")
	}

	summary := textBlock.Text
	metrics.RecordSummarization(duration, true)

	slog.InfoContext(ctx, "Summarization completed",
		slog.String("backend", "claude"),
		slog.Int("summary_length", len(summary)),
		slog.Duration("duration", duration))

	return summary, nil
}
