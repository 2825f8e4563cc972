package summarizer

import (
	"context"

	"github.com/NavaneethanES/ai-news-aggregator/internal/domain/entity"
)

// NoOp is a Summarizer that never calls a completion API. It is wired
// in when no completion credential is configured so the pipeline keeps
// running in a degraded mode.
type NoOp struct{}

// NewNoOp creates a new no-op summarizer.
func NewNoOp() *NoOp { return &NoOp{} }

// Summarize always returns NoNewsMessage.
func (n *NoOp) Summarize(_ context.Context, _ []entity.NewsItem) (string, error) {
	return NoNewsMessage, nil
}
