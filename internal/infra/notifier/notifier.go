// Package notifier owns the Discord gateway session. It posts digests
// as rich embeds, answers chat commands, and serializes pipeline runs
// behind a single-slot guard.
package notifier

import (
	"context"

	"github.com/NavaneethanES/ai-news-aggregator/internal/usecase/digest"
)

// DigestRunner runs one digest pipeline pass. Implemented by
// digest.Service; faked in tests.
type DigestRunner interface {
	Run(ctx context.Context, trigger string) (string, digest.RunStats)
}
