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
	"sort"
	"strings"
	"time"

	"github.com/NavaneethanES/ai-news-aggregator/internal/domain/entity"
)

const (
	// redditMaxItems caps the merged discussion result regardless of
	// how many posts the topics yield.
	redditMaxItems = 20

	// redditFreshness drops posts older than this at fetch time.
	redditFreshness = 24 * time.Hour

	defaultRedditAPIURL   = "https://oauth.reddit.com"
	defaultRedditTokenURL = "https://www.reddit.com/api/v1/access_token"
)

// RedditConfig contains configuration for the discussion source client.
type RedditConfig struct {
	// ClientID and ClientSecret are the OAuth application credentials.
	// When either is empty the source is unconfigured and fetches nothing.
	ClientID     string
	ClientSecret string

	// UserAgent identifies the client to the Reddit API. Required by
	// the API terms; requests without it get throttled aggressively.
	UserAgent string

	// Subreddits is the list of discussion topics to poll.
	Subreddits []string

	// PerTopicLimit is the number of hot posts requested per subreddit.
	PerTopicLimit int

	// Timeout is the HTTP request timeout for Reddit API calls.
	Timeout time.Duration

	// APIURL and TokenURL override the API endpoints, used by tests.
	APIURL   string
	TokenURL string
}

// RedditSource fetches hot posts from a fixed list of subreddits and
// normalizes them into ranked NewsItems. It implements the Source
// interface.
type RedditSource struct {
	config     RedditConfig
	httpClient *http.Client
	now        func() time.Time
}

// NewRedditSource creates a new RedditSource with the specified
// configuration, applying defaults for unset endpoint and limit fields.
func NewRedditSource(config RedditConfig) *RedditSource {
	if config.APIURL == "" {
		config.APIURL = defaultRedditAPIURL
	}
	if config.TokenURL == "" {
		config.TokenURL = defaultRedditTokenURL
	}
	if config.PerTopicLimit <= 0 {
		config.PerTopicLimit = 10
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}

	return &RedditSource{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		now:        time.Now,
	}
}

// Name implements the Source interface.
func (r *RedditSource) Name() string { return "reddit" }

// redditTokenResponse is the OAuth client-credentials grant response.
type redditTokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

// redditListing is the subset of the hot-posts listing response the
// client consumes.
type redditListing struct {
	Data struct {
		Children []struct {
			Data struct {
				Title       string  `json:"title"`
				URL         string  `json:"url"`
				Score       int     `json:"score"`
				NumComments int     `json:"num_comments"`
				CreatedUTC  float64 `json:"created_utc"`
			} `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

// FetchItems implements the Source interface.
//
// For each configured subreddit it requests the hot listing, keeps only
// posts created within the last 24 hours, and maps them to NewsItems
// carrying the post score. A failing subreddit is recorded and skipped;
// the remaining topics are still polled. The merged result is sorted by
// score descending (stable, so ties keep their topic order) and capped
// at 20 items.
//
// Missing credentials are a configuration state, not an error: the
// method returns (nil, nil) without touching the network.
func (r *RedditSource) FetchItems(ctx context.Context) ([]entity.NewsItem, error) {
	if r.config.ClientID == "" || r.config.ClientSecret == "" {
		slog.Debug("reddit credentials not configured, skipping discussion source")
		return nil, nil
	}

	token, err := r.fetchToken(ctx)
	if err != nil {
		return nil, fmt.Errorf("reddit token request: %w", err)
	}

	var (
		items []entity.NewsItem
		errs  []error
	)

	cutoff := r.now().Add(-redditFreshness)

	for _, subreddit := range r.config.Subreddits {
		posts, err := r.fetchHot(ctx, token, subreddit)
		if err != nil {
			slog.Warn("failed to fetch subreddit, continuing with remaining topics",
				slog.String("subreddit", subreddit),
				slog.Any("error", err))
			errs = append(errs, fmt.Errorf("r/%s: %w", subreddit, err))
			continue
		}

		for _, post := range posts.Data.Children {
			createdAt := time.Unix(int64(post.Data.CreatedUTC), 0).UTC()
			if createdAt.Before(cutoff) {
				continue
			}

			item := entity.NewsItem{
				Title:       post.Data.Title,
				URL:         post.Data.URL,
				SourceLabel: "Reddit r/" + subreddit,
				PublishedAt: createdAt,
				Score:       post.Data.Score,
				Comments:    post.Data.NumComments,
				Ranked:      true,
			}
			if err := item.Validate(); err != nil {
				continue
			}
			items = append(items, item)
		}
	}

	// Stable sort keeps the topic order for equal scores.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
	if len(items) > redditMaxItems {
		items = items[:redditMaxItems]
	}

	return items, errors.Join(errs...)
}

// fetchToken obtains an application-only OAuth token via the
// client-credentials grant. The token is requested once per run.
func (r *RedditSource) fetchToken(ctx context.Context) (string, error) {
	form := url.Values{"grant_type": {"client_credentials"}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.config.TokenURL,
		strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create token request: %w", err)
	}
	req.SetBasicAuth(r.config.ClientID, r.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", r.config.UserAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("execute token request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("token endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var tokenResp redditTokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tokenResp); err != nil {
		return "", fmt.Errorf("decode token response: %w", err)
	}
	if tokenResp.AccessToken == "" {
		return "", fmt.Errorf("token response contained no access token")
	}

	return tokenResp.AccessToken, nil
}

// fetchHot requests the hot listing for one subreddit.
func (r *RedditSource) fetchHot(ctx context.Context, token, subreddit string) (*redditListing, error) {
	endpoint := fmt.Sprintf("%s/r/%s/hot?limit=%d", r.config.APIURL, subreddit, r.config.PerTopicLimit)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create listing request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("User-Agent", r.config.UserAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("execute listing request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("listing endpoint returned status %d: %s", resp.StatusCode, string(body))
	}

	var listing redditListing
	if err := json.NewDecoder(resp.Body).Decode(&listing); err != nil {
		return nil, fmt.Errorf("decode listing response: %w", err)
	}

	return &listing, nil
}
