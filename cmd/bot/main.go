// Command bot runs the AI news aggregation bot: a Discord gateway
// session that posts a daily news digest on a cron schedule and
// answers chat commands on demand.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/NavaneethanES/ai-news-aggregator/internal/config"
	"github.com/NavaneethanES/ai-news-aggregator/internal/infra/notifier"
	"github.com/NavaneethanES/ai-news-aggregator/internal/infra/source"
	"github.com/NavaneethanES/ai-news-aggregator/internal/infra/summarizer"
	"github.com/NavaneethanES/ai-news-aggregator/internal/infra/worker"
	"github.com/NavaneethanES/ai-news-aggregator/internal/observability/logging"
	"github.com/NavaneethanES/ai-news-aggregator/internal/usecase/digest"
)

func main() {
	if err := godotenv.Load(); err != nil {
		slog.Info("no .env file found, using process environment")
	}

	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", slog.Any("error", err))
		os.Exit(1)
	}

	discussion := source.NewRedditSource(source.RedditConfig{
		ClientID:     cfg.RedditClientID,
		ClientSecret: cfg.RedditClientSecret,
		UserAgent:    cfg.RedditUserAgent,
		Subreddits:   config.DefaultSubreddits,
	})
	search := source.NewNewsAPISource(source.NewsAPIConfig{
		APIKey:   cfg.NewsAPIKey,
		Keywords: cfg.Keywords,
	})

	service := digest.NewService(discussion, search, createSummarizer(cfg))

	bot, err := notifier.New(notifier.Config{
		Token:           cfg.DiscordToken,
		ChannelID:       cfg.ChannelID,
		CommandPrefix:   cfg.CommandPrefix,
		PipelineTimeout: cfg.PipelineTimeout,
	}, service)
	if err != nil {
		logger.Error("failed to create bot", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ops := worker.NewOpsServer(fmt.Sprintf(":%d", cfg.MetricsPort))
	go func() {
		if err := ops.Start(ctx); err != nil && err != http.ErrServerClosed {
			logger.Error("ops server failed", slog.Any("error", err))
		}
	}()

	if err := bot.Start(); err != nil {
		logger.Error("failed to start bot", slog.Any("error", err))
		os.Exit(1)
	}
	ops.SetReady(true)

	scheduler := worker.NewScheduler(cfg.CronSchedule, cfg.Timezone)
	if err := scheduler.Start(ctx, bot.RunScheduled); err != nil {
		logger.Error("failed to start scheduler", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("bot started",
		slog.String("schedule", cfg.CronSchedule),
		slog.String("timezone", cfg.Timezone),
		slog.Int("metrics_port", cfg.MetricsPort))

	<-ctx.Done()
	logger.Info("shutdown signal received")

	ops.SetReady(false)
	scheduler.Stop()
	if err := bot.Stop(); err != nil {
		logger.Error("failed to close discord session", slog.Any("error", err))
	}

	logger.Info("shutdown complete")
}

// createSummarizer picks the completion backend from the configuration.
// A missing credential degrades to the no-op summarizer so the bot
// still posts raw headlines instead of refusing to start.
func createSummarizer(cfg *config.Config) summarizer.Summarizer {
	switch cfg.SummarizerType {
	case "claude":
		if cfg.AnthropicKey == "" {
			slog.Error("ANTHROPIC_API_KEY not set, summarization disabled")
			return summarizer.NewNoOp()
		}
		return summarizer.NewClaude(cfg.AnthropicKey)
	default:
		if cfg.OpenAIKey == "" {
			slog.Error("OPENAI_API_KEY not set, summarization disabled")
			return summarizer.NewNoOp()
		}
		return summarizer.NewOpenAI(cfg.OpenAIKey)
	}
}
