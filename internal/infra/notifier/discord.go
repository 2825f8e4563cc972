package notifier

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/NavaneethanES/ai-news-aggregator/internal/observability/metrics"
)

// State describes the gateway session lifecycle.
type State int32

const (
	StateDisconnected State = iota
	StateConnecting
	StateReady
	StateFailed
)

// String returns the state name used in logs.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	embedTitle  = "🤖 Daily AI News Digest"
	embedFooter = "AI News Aggregator Bot"

	// Discord green (#00ff00).
	embedColor = 0x00ff00

	// Discord caps embed descriptions at 4096 characters.
	maxDescriptionLength = 4096
	truncationSuffix     = "..."

	fetchingMessage = "🔄 Fetching latest AI news..."
	busyMessage     = "⏳ A digest run is already in progress. Please try again in a moment."
)

// Config contains configuration for the Discord bot session.
type Config struct {
	// Token is the bot token used to authenticate the gateway session.
	Token string

	// ChannelID is the channel scheduled digests are posted to. When
	// empty, scheduled runs still execute but the post is skipped.
	ChannelID string

	// CommandPrefix introduces chat commands, "!" by default.
	CommandPrefix string

	// PipelineTimeout bounds a full digest pipeline run.
	PipelineTimeout time.Duration
}

// messenger is the slice of the session API the bot needs for outbound
// messages. *discordgo.Session satisfies it; tests substitute a fake.
type messenger interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Bot owns the Discord gateway session. It reacts to chat commands and
// posts scheduled digests, serializing pipeline runs behind a
// single-slot guard so overlapping triggers are rejected.
type Bot struct {
	config  Config
	session *discordgo.Session
	runner  DigestRunner
	guard   *RunGuard
	limiter *RateLimiter
	state   atomic.Int32
	now     func() time.Time
}

// New creates a Bot over a fresh gateway session. The session is not
// opened until Start is called.
func New(config Config, runner DigestRunner) (*Bot, error) {
	if config.CommandPrefix == "" {
		config.CommandPrefix = "!"
	}
	if config.PipelineTimeout <= 0 {
		config.PipelineTimeout = 5 * time.Minute
	}

	session, err := discordgo.New("Bot " + config.Token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	bot := &Bot{
		config:  config,
		session: session,
		runner:  runner,
		guard:   &RunGuard{},
		// Discord tolerates short bursts but throttles sustained sends.
		limiter: NewRateLimiter(0.5, 3),
		now:     time.Now,
	}

	session.AddHandler(bot.handleReady)
	session.AddHandler(bot.handleMessageCreate)

	return bot, nil
}

// State returns the current session state.
func (b *Bot) State() State {
	return State(b.state.Load())
}

func (b *Bot) setState(next State) {
	prev := State(b.state.Swap(int32(next)))
	if prev != next {
		slog.Info("discord session state changed",
			slog.String("from", prev.String()),
			slog.String("to", next.String()))
	}
}

// Start opens the gateway session. An authentication failure leaves the
// bot in StateFailed and is returned to the caller.
func (b *Bot) Start() error {
	b.setState(StateConnecting)

	if err := b.session.Open(); err != nil {
		b.setState(StateFailed)
		return fmt.Errorf("open discord session: %w", err)
	}

	return nil
}

// Stop closes the gateway session.
func (b *Bot) Stop() error {
	b.setState(StateDisconnected)
	if err := b.session.Close(); err != nil {
		return fmt.Errorf("close discord session: %w", err)
	}
	return nil
}

// handleReady marks the session ready and verifies the configured
// digest channel exists. A missing channel is logged but does not fail
// the session; command-triggered digests still work.
func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	b.setState(StateReady)
	slog.Info("discord session ready",
		slog.String("username", r.User.Username),
		slog.Int("guilds", len(r.Guilds)))

	if b.config.ChannelID == "" {
		slog.Warn("no digest channel configured, scheduled posts will be skipped")
		return
	}
	if _, err := s.Channel(b.config.ChannelID); err != nil {
		slog.Error("configured digest channel not accessible, scheduled posts will fail",
			slog.String("channel_id", b.config.ChannelID),
			slog.Any("error", err))
	}
}

// handleMessageCreate dispatches chat commands. The bot's own messages
// are ignored to avoid feedback loops.
func (b *Bot) handleMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	b.handleCommand(context.Background(), s, m.Message)
}

// handleCommand runs the command protocol against a messenger. Split
// from the gateway handler so tests can drive it with a fake session.
func (b *Bot) handleCommand(ctx context.Context, send messenger, m *discordgo.Message) {
	command := parseCommand(m.Content, b.config.CommandPrefix)
	if command != "news" && command != "test" {
		return
	}

	metrics.RecordCommand(command)
	slog.Info("chat command received",
		slog.String("command", command),
		slog.String("channel_id", m.ChannelID))

	switch command {
	case "test":
		reply := fmt.Sprintf("✅ Bot is working! Use `%snews` to get AI news.", b.config.CommandPrefix)
		if _, err := send.ChannelMessageSend(m.ChannelID, reply); err != nil {
			slog.Error("failed to send test reply", slog.Any("error", err))
		}

	case "news":
		if !b.guard.TryAcquire() {
			metrics.RecordRunRejected()
			slog.Info("command rejected, a pipeline run is already in progress")
			if _, err := send.ChannelMessageSend(m.ChannelID, busyMessage); err != nil {
				slog.Error("failed to send busy reply", slog.Any("error", err))
			}
			return
		}
		defer b.guard.Release()

		if _, err := send.ChannelMessageSend(m.ChannelID, fetchingMessage); err != nil {
			slog.Error("failed to send acknowledgement", slog.Any("error", err))
		}

		runCtx, cancel := context.WithTimeout(ctx, b.config.PipelineTimeout)
		defer cancel()

		digestText, _ := b.runner.Run(runCtx, "command")
		if err := b.postDigest(runCtx, send, m.ChannelID, digestText); err != nil {
			reply := fmt.Sprintf("❌ Error fetching news: %v", err)
			if _, sendErr := send.ChannelMessageSend(m.ChannelID, reply); sendErr != nil {
				slog.Error("failed to send error reply", slog.Any("error", sendErr))
			}
		}
	}
}

// RunScheduled executes one scheduled digest run and posts the result
// to the configured channel. It is wired to the cron scheduler.
func (b *Bot) RunScheduled(ctx context.Context) {
	if !b.guard.TryAcquire() {
		metrics.RecordRunRejected()
		slog.Info("scheduled run rejected, a pipeline run is already in progress")
		return
	}
	defer b.guard.Release()

	runCtx, cancel := context.WithTimeout(ctx, b.config.PipelineTimeout)
	defer cancel()

	digestText, _ := b.runner.Run(runCtx, "schedule")

	if b.config.ChannelID == "" {
		metrics.RecordDigestPost("skipped")
		slog.Warn("scheduled digest produced but no channel configured, skipping post")
		return
	}

	if err := b.postDigest(runCtx, b.session, b.config.ChannelID, digestText); err != nil {
		slog.Error("failed to post scheduled digest",
			slog.String("channel_id", b.config.ChannelID),
			slog.Any("error", err))
	}
}

// postDigest sends the digest embed to a channel, waiting for a rate
// limiter token first.
func (b *Bot) postDigest(ctx context.Context, send messenger, channelID, digestText string) error {
	if err := b.limiter.Allow(ctx); err != nil {
		metrics.RecordDigestPost("failed")
		return fmt.Errorf("rate limiter: %w", err)
	}

	embed := buildEmbed(digestText, b.now())
	if _, err := send.ChannelMessageSendEmbed(channelID, embed); err != nil {
		metrics.RecordDigestPost("failed")
		return fmt.Errorf("send digest embed: %w", err)
	}

	metrics.RecordDigestPost("ok")
	slog.Info("digest posted",
		slog.String("channel_id", channelID),
		slog.Int("digest_length", len(digestText)))
	return nil
}

// parseCommand extracts the command name from a message. It returns ""
// for messages that are not prefixed commands. Trailing arguments are
// ignored.
func parseCommand(content, prefix string) string {
	if !strings.HasPrefix(content, prefix) {
		return ""
	}
	fields := strings.Fields(strings.TrimPrefix(content, prefix))
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

// buildEmbed renders the digest embed, truncating the description to
// Discord's limit.
func buildEmbed(digestText string, now time.Time) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       embedTitle,
		Description: truncateDescription(digestText, maxDescriptionLength),
		Color:       embedColor,
		Timestamp:   now.Format(time.RFC3339),
		Footer: &discordgo.MessageEmbedFooter{
			Text: embedFooter,
		},
	}
}

// truncateDescription caps s at max characters, replacing the tail with
// the truncation suffix when it overflows. Discord counts characters,
// so the cut is rune-based and never splits a multibyte sequence.
func truncateDescription(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-len(truncationSuffix)]) + truncationSuffix
}
