// Package entity defines the core domain types shared by the sources,
// the digest pipeline, and the notifier.
package entity

import "time"

// NewsItem is the normalized unit of news flowing through the pipeline.
// Both the discussion and the search source produce NewsItems; only
// discussion items carry a rank score.
type NewsItem struct {
	// Title is the headline. Required.
	Title string

	// URL links to the item. Required.
	URL string

	// SourceLabel names where the item came from, e.g. "Reddit r/OpenAI"
	// or the publisher name.
	SourceLabel string

	// Description is an optional short snippet used in the prompt.
	Description string

	// PublishedAt is the publication time when the provider reports one.
	PublishedAt time.Time

	// Score and Comments carry discussion engagement numbers. Zero for
	// search items.
	Score    int
	Comments int

	// Ranked marks items whose Score is meaningful for ordering.
	Ranked bool
}

// Validate checks the required fields. It returns a *ValidationError
// naming the first missing field.
func (n *NewsItem) Validate() error {
	if n.Title == "" {
		return &ValidationError{Field: "title", Message: "title is required"}
	}
	if n.URL == "" {
		return &ValidationError{Field: "url", Message: "url is required"}
	}
	return nil
}
