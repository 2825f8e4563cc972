package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/NavaneethanES/ai-news-aggregator/internal/domain/entity"
)

const defaultNewsAPIURL = "https://newsapi.org/v2"

// NewsAPIConfig contains configuration for the news-search source client.
type NewsAPIConfig struct {
	// APIKey authenticates against the search API. When empty the
	// source is unconfigured and fetches nothing.
	APIKey string

	// Keywords is the topic filter; only the first MaxKeywords entries
	// are queried to stay inside the provider's rate limits.
	Keywords    []string
	MaxKeywords int

	// DaysBack restricts results to articles published within the last
	// N days.
	DaysBack int

	// PageSize is the number of articles requested per keyword query.
	PageSize int

	// Limit caps the deduplicated result.
	Limit int

	// Language is the article language filter.
	Language string

	// Timeout is the HTTP request timeout for search API calls.
	Timeout time.Duration

	// APIURL overrides the API endpoint, used by tests.
	APIURL string
}

// NewsAPISource fetches recent articles from the keyword-based news
// search API and normalizes them into unranked NewsItems. It implements
// the Source interface.
type NewsAPISource struct {
	config     NewsAPIConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewNewsAPISource creates a new NewsAPISource with the specified
// configuration, applying defaults for unset fields.
func NewNewsAPISource(config NewsAPIConfig) *NewsAPISource {
	if config.APIURL == "" {
		config.APIURL = defaultNewsAPIURL
	}
	if config.MaxKeywords <= 0 {
		config.MaxKeywords = 3
	}
	if config.DaysBack <= 0 {
		config.DaysBack = 3
	}
	if config.PageSize <= 0 {
		config.PageSize = 10
	}
	if config.Limit <= 0 {
		config.Limit = 20
	}
	if config.Language == "" {
		config.Language = "en"
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &NewsAPISource{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		now:        time.Now,
	}
}

// Name implements the Source interface.
func (n *NewsAPISource) Name() string { return "newsapi" }

// newsAPIResponse is the subset of the search "everything" response the
// client consumes.
type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		URL         string `json:"url"`
		Source      struct {
			Name string `json:"name"`
		} `json:"source"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

// FetchItems implements the Source interface.
//
// For the first MaxKeywords configured keywords it issues one search
// query restricted to the last DaysBack days with the language filter
// applied. Articles missing a title or URL are skipped silently. A
// failing keyword is recorded and skipped; the remaining keywords are
// still queried. The merged result is deduplicated by exact title
// (first occurrence wins, preserving provider order) and capped at
// Limit items. Search items carry no rank score.
//
// A missing API key is a configuration state, not an error: the method
// returns (nil, nil) without touching the network.
func (n *NewsAPISource) FetchItems(ctx context.Context) ([]entity.NewsItem, error) {
	if n.config.APIKey == "" {
		slog.Debug("news API key not configured, skipping search source")
		return nil, nil
	}

	var (
		items []entity.NewsItem
		errs  []error
	)

	keywords := n.config.Keywords
	if len(keywords) > n.config.MaxKeywords {
		keywords = keywords[:n.config.MaxKeywords]
	}

	from := n.now().AddDate(0, 0, -n.config.DaysBack).Format("2006-01-02")

	for _, keyword := range keywords {
		articles, err := n.search(ctx, keyword, from)
		if err != nil {
			slog.Warn("failed to search keyword, continuing with remaining keywords",
				slog.String("keyword", keyword),
				slog.Any("error", err))
			errs = append(errs, fmt.Errorf("keyword %q: %w", keyword, err))
			continue
		}
		items = append(items, articles...)
	}

	items = dedupeByTitle(items)
	if len(items) > n.config.Limit {
		items = items[:n.config.Limit]
	}

	return items, errors.Join(errs...)
}

// search issues one "everything" query for a keyword.
func (n *NewsAPISource) search(ctx context.Context, keyword, from string) ([]entity.NewsItem, error) {
	params := url.Values{
		"q":        {keyword},
		"sortBy":   {"publishedAt"},
		"from":     {from},
		"pageSize": {fmt.Sprintf("%d", n.config.PageSize)},
		"language": {n.config.Language},
	}
	endpoint := fmt.Sprintf("%s/everything?%s", n.config.APIURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create search request: %w", err)
	}
	req.Header.Set("X-Api-Key", n.config.APIKey)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute search request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("search endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var searchResp newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&searchResp); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	items := make([]entity.NewsItem, 0, len(searchResp.Articles))
	for _, article := range searchResp.Articles {
		// Articles without a title or URL cannot become valid items.
		if article.Title == "" || article.URL == "" {
			continue
		}

		sourceName := article.Source.Name
		if sourceName == "" {
			sourceName = "Unknown"
		}

		item := entity.NewsItem{
			Title:       article.Title,
			URL:         article.URL,
			SourceLabel: sourceName,
			Description: article.Description,
		}
		if publishedAt, err := time.Parse(time.RFC3339, article.PublishedAt); err == nil {
			item.PublishedAt = publishedAt
		}

		items = append(items, item)
	}

	return items, nil
}

// dedupeByTitle removes items whose exact title was already seen,
// keeping the first occurrence and preserving order. Matching is
// case-sensitive with no normalization.
func dedupeByTitle(items []entity.NewsItem) []entity.NewsItem {
	seen := make(map[string]bool, len(items))
	unique := make([]entity.NewsItem, 0, len(items))
	for _, item := range items {
		if seen[item.Title] {
			continue
		}
		seen[item.Title] = true
		unique = append(unique, item)
	}
	return unique
}
