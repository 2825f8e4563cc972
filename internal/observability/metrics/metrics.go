// Package metrics defines the Prometheus instruments for the digest
// pipeline and the bot session. All instruments are registered on the
// default registry and exposed via the /metrics endpoint in cmd/bot.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	pipelineRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_pipeline_runs_total",
			Help: "Total number of digest pipeline runs by trigger and status",
		},
		[]string{"trigger", "status"},
	)

	pipelineRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "news_pipeline_run_duration_seconds",
			Help:    "Duration of a full digest pipeline run",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	itemsFetchedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_items_fetched_total",
			Help: "Number of normalized news items produced by each source",
		},
		[]string{"source"},
	)

	sourceErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_source_errors_total",
			Help: "Number of source fetches that reported a partial or total failure",
		},
		[]string{"source"},
	)

	summarizeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "news_summarize_duration_seconds",
			Help:    "Duration of completion API calls",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60},
		},
	)

	summarizeFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "news_summarize_failures_total",
			Help: "Number of summarization calls that failed and were replaced by an error message",
		},
	)

	digestPostsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_digest_posts_total",
			Help: "Number of digest post attempts by result",
		},
		[]string{"result"},
	)

	commandsReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "news_bot_commands_total",
			Help: "Number of chat commands received by command name",
		},
		[]string{"command"},
	)

	runsRejectedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "news_pipeline_runs_rejected_total",
			Help: "Number of triggers rejected because a pipeline run was already in progress",
		},
	)
)

// RecordPipelineRun records a completed pipeline run with its trigger
// kind ("schedule" or "command") and status ("ok", "empty" or "degraded").
func RecordPipelineRun(trigger, status string, duration time.Duration) {
	pipelineRunsTotal.WithLabelValues(trigger, status).Inc()
	pipelineRunDuration.Observe(duration.Seconds())
}

// RecordItemsFetched records the item count produced by a source fetch.
func RecordItemsFetched(source string, count int) {
	itemsFetchedTotal.WithLabelValues(source).Add(float64(count))
}

// RecordSourceError records a source fetch that reported errors.
func RecordSourceError(source string) {
	sourceErrorsTotal.WithLabelValues(source).Inc()
}

// RecordSummarization records the duration of a completion call and
// whether it succeeded.
func RecordSummarization(duration time.Duration, success bool) {
	summarizeDuration.Observe(duration.Seconds())
	if !success {
		summarizeFailuresTotal.Inc()
	}
}

// RecordDigestPost records a digest post attempt ("ok", "failed" or "skipped").
func RecordDigestPost(result string) {
	digestPostsTotal.WithLabelValues(result).Inc()
}

// RecordCommand records an inbound chat command.
func RecordCommand(command string) {
	commandsReceivedTotal.WithLabelValues(command).Inc()
}

// RecordRunRejected records a trigger refused by the single-slot run guard.
func RecordRunRejected() {
	runsRejectedTotal.Inc()
}
