// Package summarizer provides AI-powered digest summarization
// implementations. It includes adapters for the OpenAI and Claude
// (Anthropic) completion APIs plus a no-op fallback used when no
// completion credential is configured.
package summarizer

import (
	"context"
	"time"

	"github.com/NavaneethanES/ai-news-aggregator/internal/domain/entity"
)

// NoNewsMessage is returned when there is nothing to summarize or no
// completion backend is available.
const NoNewsMessage = "No news to summarize or OpenAI API key not configured."

// systemInstruction steers the completion model toward a short readable
// digest.
const systemInstruction = "You are an AI news curator. Create a concise, engaging summary " +
	"of the day's most important AI news and announcements. Focus on the most significant " +
	"developments, breakthroughs, and announcements. Keep it under 1000 words and make it " +
	"easy to read."

const (
	// summarizeTimeout bounds a single completion API call.
	summarizeTimeout = 60 * time.Second

	// completionMaxTokens caps the generated summary length.
	completionMaxTokens = 1000

	// completionTemperature keeps the output varied but coherent.
	completionTemperature = 0.7
)

// Summarizer is an interface for turning a batch of news items into a
// human-readable summary.
//
// Summarize makes exactly one completion attempt. Implementations
// return NoNewsMessage with a nil error when items is empty.
type Summarizer interface {
	Summarize(ctx context.Context, items []entity.NewsItem) (string, error)
}
