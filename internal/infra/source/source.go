// Package source provides the content source clients that translate
// provider-specific API responses into normalized NewsItem records.
// Each provider implements the Source interface so the pipeline can
// treat them interchangeably.
package source

import (
	"context"

	"github.com/NavaneethanES/ai-news-aggregator/internal/domain/entity"
)

// Source is an interface for fetching normalized news items from one
// external content provider.
//
// FetchItems returns the items it could gather together with an error
// aggregating any per-request failures (errors.Join). A non-nil error
// does not invalidate the returned items: callers log the error and
// keep the partial result. A source whose credential is not configured
// returns (nil, nil) without any network call.
type Source interface {
	// Name returns a short stable identifier used in logs and metrics.
	Name() string

	// FetchItems gathers recent items from the provider.
	FetchItems(ctx context.Context) ([]entity.NewsItem, error)
}
