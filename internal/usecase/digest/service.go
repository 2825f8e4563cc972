// Package digest implements the news digest pipeline: fetch items from
// the configured sources, summarize them, and render the digest text
// that gets posted to chat.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/NavaneethanES/ai-news-aggregator/internal/domain/entity"
	"github.com/NavaneethanES/ai-news-aggregator/internal/infra/source"
	"github.com/NavaneethanES/ai-news-aggregator/internal/infra/summarizer"
	"github.com/NavaneethanES/ai-news-aggregator/internal/observability/logging"
	"github.com/NavaneethanES/ai-news-aggregator/internal/observability/metrics"
)

// EmptyDigestMessage is the digest text when both sources come back empty.
const EmptyDigestMessage = "No AI news found for today. 🤖"

const (
	// maxSourceLinks caps the source-link appendix.
	maxSourceLinks = 10

	// maxLinkTitleLen caps the title shown in a source-link line.
	maxLinkTitleLen = 60
)

// RunStats carries per-run counters for logging and metrics.
type RunStats struct {
	DiscussionItems int
	SearchItems     int
	FetchErrors     int
	SummaryFailed   bool
	Duration        time.Duration
}

// Service runs the digest pipeline. It is stateless and safe for
// concurrent use; concurrency control lives with the caller.
type Service struct {
	discussion source.Source
	search     source.Source
	summarizer summarizer.Summarizer
}

// NewService creates a digest service over the given sources and
// summarizer.
func NewService(discussion, search source.Source, s summarizer.Summarizer) *Service {
	return &Service{
		discussion: discussion,
		search:     search,
		summarizer: s,
	}
}

// Run executes one digest pipeline pass: both sources are fetched
// concurrently, the merged batch is summarized, and the digest text is
// rendered with the source-link appendix. The trigger ("schedule" or
// "command") is carried through logs and metrics.
//
// Run always produces a digest string. Source failures degrade to a
// partial batch, an empty batch yields EmptyDigestMessage, and a
// summarization failure yields an error digest so the caller can still
// post something actionable.
func (s *Service) Run(ctx context.Context, trigger string) (string, RunStats) {
	runID := uuid.New().String()
	logger := logging.WithRun(slog.Default(), runID, trigger)

	start := time.Now()
	logger.Info("digest pipeline started")

	var (
		stats           RunStats
		discussionItems []entity.NewsItem
		searchItems     []entity.NewsItem
		discussionErr   error
		searchErr       error
	)

	// Each goroutine writes only its own locals; fetch errors degrade
	// to a partial batch instead of failing the run.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		discussionItems, discussionErr = s.discussion.FetchItems(gctx)
		return nil
	})
	g.Go(func() error {
		searchItems, searchErr = s.search.FetchItems(gctx)
		return nil
	})
	_ = g.Wait()

	if discussionErr != nil {
		logger.Warn("discussion source reported errors",
			slog.String("source", s.discussion.Name()),
			slog.Any("error", discussionErr))
		metrics.RecordSourceError(s.discussion.Name())
		stats.FetchErrors++
	}
	if searchErr != nil {
		logger.Warn("search source reported errors",
			slog.String("source", s.search.Name()),
			slog.Any("error", searchErr))
		metrics.RecordSourceError(s.search.Name())
		stats.FetchErrors++
	}

	stats.DiscussionItems = len(discussionItems)
	stats.SearchItems = len(searchItems)
	metrics.RecordItemsFetched(s.discussion.Name(), stats.DiscussionItems)
	metrics.RecordItemsFetched(s.search.Name(), stats.SearchItems)

	items := Aggregate(discussionItems, searchItems)

	status := "ok"
	var digest string

	switch {
	case len(items) == 0:
		digest = EmptyDigestMessage
		status = "empty"
		logger.Info("no items fetched, producing empty digest")

	default:
		summary, err := s.summarizer.Summarize(ctx, items)
		if err != nil {
			digest = fmt.Sprintf("Error creating summary: %v", err)
			stats.SummaryFailed = true
			status = "degraded"
			logger.Error("summarization failed, producing error digest",
				slog.Any("error", err))
		} else {
			digest = BuildDigest(summary, items)
		}
	}

	stats.Duration = time.Since(start)
	metrics.RecordPipelineRun(trigger, status, stats.Duration)

	logger.Info("digest pipeline finished",
		slog.String("status", status),
		slog.Int("discussion_items", stats.DiscussionItems),
		slog.Int("search_items", stats.SearchItems),
		slog.Int("fetch_errors", stats.FetchErrors),
		slog.Duration("duration", stats.Duration))

	return digest, stats
}

// Aggregate merges the two source batches, discussion items first.
func Aggregate(discussion, search []entity.NewsItem) []entity.NewsItem {
	merged := make([]entity.NewsItem, 0, len(discussion)+len(search))
	merged = append(merged, discussion...)
	merged = append(merged, search...)
	return merged
}

// BuildDigest renders the final digest text: the summary followed by a
// source-link appendix listing up to 10 items as numbered markdown
// links with titles capped at 60 characters.
func BuildDigest(summary string, items []entity.NewsItem) string {
	if len(items) == 0 {
		return summary
	}

	var b strings.Builder
	b.WriteString(summary)
	b.WriteString("\n\n📰 **Source Links:**\n")

	count := len(items)
	if count > maxSourceLinks {
		count = maxSourceLinks
	}

	for i := 0; i < count; i++ {
		item := items[i]
		title := item.Title
		// Truncation counts runes so a multibyte title never gets cut
		// mid-character.
		if runes := []rune(title); len(runes) > maxLinkTitleLen {
			title = string(runes[:maxLinkTitleLen])
		}
		fmt.Fprintf(&b, "%d. [%s...](%s)\n", i+1, title, item.URL)
	}

	return b.String()
}
