// Package config loads the application configuration from environment
// variables into an immutable value that is passed explicitly into the
// pipeline constructors. Credentials for the optional sources may be
// absent; the affected feature degrades instead of failing.
package config

import (
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultKeywords is the default topic filter for the news search,
// overridable via the AI_KEYWORDS environment variable.
var DefaultKeywords = []string{
	"artificial intelligence",
	"AI",
	"machine learning",
	"deep learning",
	"OpenAI",
	"GPT",
	"LLM",
	"neural network",
}

// DefaultSubreddits is the fixed list of discussion topics polled for
// hot posts.
var DefaultSubreddits = []string{
	"MachineLearning",
	"artificial",
	"OpenAI",
	"singularity",
	"deeplearning",
	"artificial_intelligence",
	"ChatGPT",
	"LocalLLaMA",
}

// Config holds the full application configuration. It is built once at
// startup and never mutated afterwards.
type Config struct {
	// DiscordToken is the chat bot credential. Required; startup fails
	// without it.
	DiscordToken string

	// ChannelID is the target Discord channel snowflake. May be empty,
	// in which case every post attempt no-ops with a logged error.
	ChannelID string

	// CommandPrefix introduces chat commands (default "!").
	CommandPrefix string

	// SummarizerType selects the completion backend: "openai" or "claude".
	SummarizerType string

	// OpenAIKey and AnthropicKey are the completion credentials. When the
	// selected backend's key is absent, summarization degrades to a fixed
	// not-configured message.
	OpenAIKey    string
	AnthropicKey string

	// NewsAPIKey is the news-search credential. Optional; the search
	// source returns nothing without it.
	NewsAPIKey string

	// Reddit credentials. Optional; the discussion source returns
	// nothing without them.
	RedditClientID     string
	RedditClientSecret string
	RedditUserAgent    string

	// Keywords is the search topic filter.
	Keywords []string

	// CronSchedule and Timezone control the daily digest trigger.
	CronSchedule string
	Timezone     string

	// PipelineTimeout bounds a single digest run end to end.
	PipelineTimeout time.Duration

	// MetricsPort is the Prometheus/health HTTP listen port.
	MetricsPort int
}

// Defaults for optional settings.
const (
	defaultCommandPrefix   = "!"
	defaultSummarizerType  = "openai"
	defaultRedditUserAgent = "ai-news-bot/1.0"
	defaultCronSchedule    = "0 9 * * *" // every day at 09:00
	defaultTimezone        = "UTC"
	defaultPipelineTimeout = 5 * time.Minute
	defaultMetricsPort     = 9090
)

// Load reads the configuration from environment variables.
//
// Required settings (missing or invalid values return an error):
//   - DISCORD_BOT_TOKEN
//
// Optional settings fall back to defaults with a warning when invalid,
// never aborting startup. DISCORD_CHANNEL_ID is validated as a numeric
// snowflake but an absent channel is a degraded state, not an error.
func Load() (*Config, error) {
	cfg := &Config{
		DiscordToken:       getEnvString("DISCORD_BOT_TOKEN", ""),
		ChannelID:          getEnvString("DISCORD_CHANNEL_ID", ""),
		CommandPrefix:      getEnvString("COMMAND_PREFIX", defaultCommandPrefix),
		SummarizerType:     getEnvString("SUMMARIZER_TYPE", defaultSummarizerType),
		OpenAIKey:          getEnvString("OPENAI_API_KEY", ""),
		AnthropicKey:       getEnvString("ANTHROPIC_API_KEY", ""),
		NewsAPIKey:         getEnvString("NEWS_API_KEY", ""),
		RedditClientID:     getEnvString("REDDIT_CLIENT_ID", ""),
		RedditClientSecret: getEnvString("REDDIT_CLIENT_SECRET", ""),
		RedditUserAgent:    getEnvString("REDDIT_USER_AGENT", defaultRedditUserAgent),
		Keywords:           getEnvStringList("AI_KEYWORDS", DefaultKeywords),
		CronSchedule:       getEnvString("NEWS_CRON_SCHEDULE", defaultCronSchedule),
		Timezone:           getEnvString("WORKER_TIMEZONE", defaultTimezone),
		PipelineTimeout:    getEnvDuration("PIPELINE_TIMEOUT", defaultPipelineTimeout),
		MetricsPort:        getEnvInt("METRICS_PORT", defaultMetricsPort),
	}

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_BOT_TOKEN is not set")
	}

	if cfg.ChannelID != "" {
		if _, err := strconv.ParseUint(cfg.ChannelID, 10, 64); err != nil {
			slog.Warn("DISCORD_CHANNEL_ID is not a numeric channel identifier, posts will be skipped",
				slog.String("value", cfg.ChannelID))
			cfg.ChannelID = ""
		}
	} else {
		slog.Warn("DISCORD_CHANNEL_ID is not set, scheduled digests will not be posted")
	}

	switch cfg.SummarizerType {
	case "openai", "claude":
	default:
		slog.Warn("invalid SUMMARIZER_TYPE, using default",
			slog.String("value", cfg.SummarizerType),
			slog.String("default", defaultSummarizerType))
		cfg.SummarizerType = defaultSummarizerType
	}

	if err := validateCronSchedule(cfg.CronSchedule); err != nil {
		slog.Warn("invalid NEWS_CRON_SCHEDULE, using default",
			slog.String("value", cfg.CronSchedule),
			slog.String("default", defaultCronSchedule),
			slog.String("error", err.Error()))
		cfg.CronSchedule = defaultCronSchedule
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		slog.Warn("invalid WORKER_TIMEZONE, using UTC",
			slog.String("value", cfg.Timezone),
			slog.String("error", err.Error()))
		cfg.Timezone = defaultTimezone
	}

	if cfg.PipelineTimeout <= 0 {
		slog.Warn("PIPELINE_TIMEOUT must be positive, using default",
			slog.Duration("value", cfg.PipelineTimeout),
			slog.Duration("default", defaultPipelineTimeout))
		cfg.PipelineTimeout = defaultPipelineTimeout
	}

	if cfg.MetricsPort <= 0 || cfg.MetricsPort > 65535 {
		slog.Warn("METRICS_PORT out of range, using default",
			slog.Int("value", cfg.MetricsPort),
			slog.Int("default", defaultMetricsPort))
		cfg.MetricsPort = defaultMetricsPort
	}

	return cfg, nil
}

// validateCronSchedule checks the expression against the same parser the
// scheduler uses, so an accepted configuration cannot fail at wiring time.
func validateCronSchedule(schedule string) error {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("parse cron schedule: %w", err)
	}
	return nil
}
