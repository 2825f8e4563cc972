package notifier

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/bwmarrin/discordgo"

	"github.com/NavaneethanES/ai-news-aggregator/internal/usecase/digest"
)

type fakeMessenger struct {
	messages []string
	embeds   []*discordgo.MessageEmbed
	channels []string
	sendErr  error
	embedErr error
}

func (f *fakeMessenger) ChannelMessageSend(channelID, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channels = append(f.channels, channelID)
	f.messages = append(f.messages, content)
	return &discordgo.Message{}, f.sendErr
}

func (f *fakeMessenger) ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.channels = append(f.channels, channelID)
	f.embeds = append(f.embeds, embed)
	return &discordgo.Message{}, f.embedErr
}

type fakeRunner struct {
	digest  string
	calls   int
	trigger string
	started chan struct{}
	block   chan struct{}
}

func (f *fakeRunner) Run(_ context.Context, trigger string) (string, digest.RunStats) {
	f.calls++
	f.trigger = trigger
	if f.started != nil {
		close(f.started)
	}
	if f.block != nil {
		<-f.block
	}
	return f.digest, digest.RunStats{}
}

func newTestBot(t *testing.T, runner DigestRunner) *Bot {
	t.Helper()

	bot, err := New(Config{
		Token:           "test-token",
		ChannelID:       "chan-digest",
		CommandPrefix:   "!",
		PipelineTimeout: time.Second,
	}, runner)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	bot.now = func() time.Time { return time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC) }
	return bot
}

func commandMessage(content string) *discordgo.Message {
	return &discordgo.Message{
		Content:   content,
		ChannelID: "chan-origin",
		Author:    &discordgo.User{ID: "user-1"},
	}
}

func TestBot_HandleCommand(t *testing.T) {
	t.Run("news command acknowledges, runs the pipeline and posts the embed", func(t *testing.T) {
		runner := &fakeRunner{digest: "today's digest"}
		bot := newTestBot(t, runner)
		send := &fakeMessenger{}

		bot.handleCommand(context.Background(), send, commandMessage("!news"))

		if runner.calls != 1 {
			t.Fatalf("runner called %d times, want 1", runner.calls)
		}
		if runner.trigger != "command" {
			t.Errorf("trigger = %q, want command", runner.trigger)
		}
		if len(send.messages) != 1 || send.messages[0] != fetchingMessage {
			t.Errorf("messages = %v, want only the fetching acknowledgement", send.messages)
		}
		if len(send.embeds) != 1 {
			t.Fatalf("got %d embeds, want 1", len(send.embeds))
		}
		if send.embeds[0].Description != "today's digest" {
			t.Errorf("embed description = %q, want the digest", send.embeds[0].Description)
		}
		// Replies go back to the originating channel, not the digest channel.
		for _, ch := range send.channels {
			if ch != "chan-origin" {
				t.Errorf("message sent to %q, want chan-origin", ch)
			}
		}
	})

	t.Run("test command replies without running the pipeline", func(t *testing.T) {
		runner := &fakeRunner{}
		bot := newTestBot(t, runner)
		send := &fakeMessenger{}

		bot.handleCommand(context.Background(), send, commandMessage("!test"))

		if runner.calls != 0 {
			t.Errorf("runner called %d times, want 0", runner.calls)
		}
		if len(send.messages) != 1 || !strings.Contains(send.messages[0], "Bot is working") {
			t.Errorf("messages = %v, want the test reply", send.messages)
		}
	})

	t.Run("unrelated messages are ignored", func(t *testing.T) {
		runner := &fakeRunner{}
		bot := newTestBot(t, runner)
		send := &fakeMessenger{}

		bot.handleCommand(context.Background(), send, commandMessage("hello there"))
		bot.handleCommand(context.Background(), send, commandMessage("!unknown"))
		bot.handleCommand(context.Background(), send, commandMessage("!"))

		if runner.calls != 0 || len(send.messages) != 0 {
			t.Errorf("unrelated messages triggered activity: calls=%d messages=%v",
				runner.calls, send.messages)
		}
	})

	t.Run("overlapping news commands get a busy reply", func(t *testing.T) {
		runner := &fakeRunner{
			digest:  "digest",
			started: make(chan struct{}),
			block:   make(chan struct{}),
		}
		bot := newTestBot(t, runner)
		first := &fakeMessenger{}
		second := &fakeMessenger{}

		done := make(chan struct{})
		go func() {
			bot.handleCommand(context.Background(), first, commandMessage("!news"))
			close(done)
		}()

		// Wait for the first run to hold the slot.
		select {
		case <-runner.started:
		case <-time.After(time.Second):
			t.Fatal("first run never started")
		}

		bot.handleCommand(context.Background(), second, commandMessage("!news"))

		if len(second.messages) != 1 || second.messages[0] != busyMessage {
			t.Errorf("messages = %v, want the busy reply", second.messages)
		}
		if runner.calls != 1 {
			t.Errorf("runner called %d times, want 1", runner.calls)
		}

		close(runner.block)
		<-done
	})

	t.Run("post failure yields an error reply", func(t *testing.T) {
		runner := &fakeRunner{digest: "digest"}
		bot := newTestBot(t, runner)
		send := &fakeMessenger{embedErr: errors.New("missing permissions")}

		bot.handleCommand(context.Background(), send, commandMessage("!news"))

		var errorReply string
		for _, msg := range send.messages {
			if strings.HasPrefix(msg, "❌ Error fetching news: ") {
				errorReply = msg
			}
		}
		if errorReply == "" {
			t.Errorf("messages = %v, want an error reply", send.messages)
		}
	})
}

func TestBot_RunScheduled(t *testing.T) {
	t.Run("runs with the schedule trigger", func(t *testing.T) {
		runner := &fakeRunner{digest: "digest"}
		bot := newTestBot(t, runner)

		// Swap the session target for a channel that does not exist so the
		// post fails fast; the run itself must still happen.
		bot.config.ChannelID = ""
		bot.RunScheduled(context.Background())

		if runner.calls != 1 {
			t.Fatalf("runner called %d times, want 1", runner.calls)
		}
		if runner.trigger != "schedule" {
			t.Errorf("trigger = %q, want schedule", runner.trigger)
		}
	})

	t.Run("rejected while a run is in progress", func(t *testing.T) {
		runner := &fakeRunner{digest: "digest"}
		bot := newTestBot(t, runner)
		bot.config.ChannelID = ""

		if !bot.guard.TryAcquire() {
			t.Fatal("could not acquire the slot for the test")
		}
		defer bot.guard.Release()

		bot.RunScheduled(context.Background())

		if runner.calls != 0 {
			t.Errorf("runner called %d times, want 0 while slot is held", runner.calls)
		}
	})
}

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		content string
		prefix  string
		want    string
	}{
		{"news command", "!news", "!", "news"},
		{"test command", "!test", "!", "test"},
		{"command with arguments", "!news please", "!", "news"},
		{"custom prefix", "?news", "?", "news"},
		{"wrong prefix", "?news", "!", ""},
		{"bare prefix", "!", "!", ""},
		{"plain message", "good morning", "!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseCommand(tt.content, tt.prefix); got != tt.want {
				t.Errorf("parseCommand(%q, %q) = %q, want %q", tt.content, tt.prefix, got, tt.want)
			}
		})
	}
}

func TestBuildEmbed(t *testing.T) {
	now := time.Date(2026, 8, 28, 9, 0, 0, 0, time.UTC)

	t.Run("carries the digest branding", func(t *testing.T) {
		embed := buildEmbed("digest body", now)

		if embed.Title != "🤖 Daily AI News Digest" {
			t.Errorf("Title = %q", embed.Title)
		}
		if embed.Color != 0x00ff00 {
			t.Errorf("Color = %#x, want 0x00ff00", embed.Color)
		}
		if embed.Footer == nil || embed.Footer.Text != "AI News Aggregator Bot" {
			t.Errorf("Footer = %+v", embed.Footer)
		}
		if embed.Timestamp != "2026-08-28T09:00:00Z" {
			t.Errorf("Timestamp = %q", embed.Timestamp)
		}
	})

	t.Run("truncates the description to the embed limit", func(t *testing.T) {
		embed := buildEmbed(strings.Repeat("d", 5000), now)

		if len(embed.Description) != maxDescriptionLength {
			t.Errorf("description length = %d, want %d", len(embed.Description), maxDescriptionLength)
		}
		if !strings.HasSuffix(embed.Description, "...") {
			t.Error("truncated description missing suffix")
		}
	})

	t.Run("truncates multibyte descriptions without splitting a rune", func(t *testing.T) {
		embed := buildEmbed(strings.Repeat("é", 5000), now)

		if !utf8.ValidString(embed.Description) {
			t.Fatal("truncated description contains invalid UTF-8")
		}
		if got := utf8.RuneCountInString(embed.Description); got != maxDescriptionLength {
			t.Errorf("description rune count = %d, want %d", got, maxDescriptionLength)
		}
		if !strings.HasSuffix(embed.Description, "...") {
			t.Error("truncated description missing suffix")
		}
	})
}

func TestBot_StateString(t *testing.T) {
	states := map[State]string{
		StateDisconnected: "disconnected",
		StateConnecting:   "connecting",
		StateReady:        "ready",
		StateFailed:       "failed",
	}
	for state, want := range states {
		if got := state.String(); got != want {
			t.Errorf("State(%d).String() = %q, want %q", state, got, want)
		}
	}
}
