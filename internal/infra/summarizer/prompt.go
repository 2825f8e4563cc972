package summarizer

import (
	"fmt"
	"strings"
	"time"

	"github.com/NavaneethanES/ai-news-aggregator/internal/domain/entity"
)

const (
	// promptMaxItems caps how many items appear in the prompt.
	promptMaxItems = 15

	// promptDescriptionLen caps the description snippet per item.
	promptDescriptionLen = 200
)

// BuildPrompt renders the user prompt sent to the completion API. The
// prompt carries a dated header followed by up to 15 numbered items
// with their source label, each with a description snippet capped at
// 200 characters.
//
// Example output:
//
//	AI News Summary for 2026-08-28:
//
//	1. New model released [Reddit r/OpenAI]
//	   The lab announced...
//
//	2. Chips shipped [TechWire]
func BuildPrompt(items []entity.NewsItem, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "AI News Summary for %s:\n\n", now.Format("2006-01-02"))

	count := len(items)
	if count > promptMaxItems {
		count = promptMaxItems
	}

	for i := 0; i < count; i++ {
		item := items[i]
		fmt.Fprintf(&b, "%d. %s [%s]\n", i+1, item.Title, item.SourceLabel)
		if item.Description != "" {
			desc := item.Description
			// Rune-based cut keeps multibyte descriptions valid UTF-8.
			if runes := []rune(desc); len(runes) > promptDescriptionLen {
				desc = string(runes[:promptDescriptionLen])
			}
			fmt.Fprintf(&b, "   %s...\n", desc)
		}
		b.WriteString("\n")
	}

	return "Please summarize these AI news items:\n\n" + b.String()
}
