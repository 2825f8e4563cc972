package summarizer

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"github.com/NavaneethanES/ai-news-aggregator/internal/domain/entity"
	"github.com/NavaneethanES/ai-news-aggregator/internal/observability/metrics"
)

// OpenAI implements the Summarizer interface using OpenAI's chat
// completion API.
type OpenAI struct {
	client *openai.Client
	now    func() time.Time
}

// NewOpenAI creates a new OpenAI summarizer with the given API key.
func NewOpenAI(apiKey string) *OpenAI {
	slog.Info("Initialized OpenAI summarizer",
		slog.String("model", openai.GPT3Dot5Turbo))

	return &OpenAI{
		client: openai.NewClient(apiKey),
		now:    time.Now,
	}
}

// Summarize generates a digest summary of the given items. It makes a
// single completion attempt bounded by a 60 second timeout.
func (o *OpenAI) Summarize(ctx context.Context, items []entity.NewsItem) (string, error) {
	if len(items) == 0 {
		return NoNewsMessage, nil
	}

	ctx, cancel := context.WithTimeout(ctx, summarizeTimeout)
	defer cancel()

	prompt := BuildPrompt(items, o.now())

	slog.InfoContext(ctx, "Starting summarization",
		slog.String("backend", "openai"),
		slog.Int("item_count", len(items)),
		slog.Int("prompt_length", len(prompt)))

	start := time.Now()

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: systemInstruction,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
		MaxTokens:   completionMaxTokens,
		Temperature: completionTemperature,
	})

	duration := time.Since(start)

	if err != nil {
		metrics.RecordSummarization(duration, false)
		slog.ErrorContext(ctx, "Summarization failed",
			slog.String("backend", "openai"),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()))
		return "", fmt.Errorf("openai api error: %w", err)
	}

	// Safety check to prevent panic on array access.
	if len(resp.Choices) == 0 {
		metrics.RecordSummarization(duration, false)
		slog.ErrorContext(ctx, "OpenAI API returned empty response",
			slog.Duration("duration", duration))
		return "", fmt.Errorf("openai api returned empty response")
	}

	summary := resp.Choices[0].Message.Content
	metrics.RecordSummarization(duration, true)

	slog.InfoContext(ctx, "Summarization completed",
		slog.String("backend", "openai"),
		slog.Int("summary_length", len(summary)),
		slog.Duration("duration", duration))

	return summary, nil
}
