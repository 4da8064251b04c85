// Package reddit fetches new posts from listing subreddits via the public
// JSON endpoints, with an RSS fallback for when those are throttled.
package reddit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/aristotlemanolakos/nyc-apartment-scraper/internal/model"
)

const defaultBaseURL = "https://www.reddit.com"

// Client fetches new posts from a set of subreddits.
type Client struct {
	lastRequest time.Time
	httpClient  *http.Client
	logger      *slog.Logger
	baseURL     string
	userAgent   string
	subreddits  []string
	minInterval time.Duration
	mu          sync.Mutex
}

// Option customizes a Client.
type Option func(*Client)

// WithBaseURL overrides the Reddit base URL. Used in tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithMinInterval overrides the minimum spacing between requests.
func WithMinInterval(d time.Duration) Option {
	return func(c *Client) { c.minInterval = d }
}

// NewClient creates a Reddit client for the given subreddits. The user agent
// is mandatory: Reddit throttles default library agents aggressively.
func NewClient(subreddits []string, userAgent string, logger *slog.Logger, opts ...Option) (*Client, error) {
	if len(subreddits) == 0 {
		return nil, fmt.Errorf("at least one subreddit is required")
	}
	if userAgent == "" {
		return nil, fmt.Errorf("user agent is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		subreddits:  subreddits,
		userAgent:   userAgent,
		logger:      logger,
		baseURL:     defaultBaseURL,
		minInterval: 2 * time.Second,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// FetchNewListings fetches the newest posts from all configured subreddits.
// Per-subreddit failures are logged and skipped so one broken feed never
// hides the others.
func (c *Client) FetchNewListings(ctx context.Context, limit int) ([]model.Listing, error) {
	var all []model.Listing
	for _, sub := range c.subreddits {
		listings, err := c.fetchSubreddit(ctx, sub, limit)
		if err != nil {
			c.logger.Error("failed to fetch subreddit", "subreddit", sub, "error", err)
			continue
		}
		all = append(all, listings...)
	}
	c.logger.Info("fetched listings", "count", len(all), "subreddits", len(c.subreddits))
	return all, nil
}

func (c *Client) fetchSubreddit(ctx context.Context, subreddit string, limit int) ([]model.Listing, error) {
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	if err := c.pace(ctx); err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/r/%s/new.json?%s", c.baseURL, url.PathEscape(subreddit),
		url.Values{"limit": {strconv.Itoa(limit)}}.Encode())

	body, status, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	// Anonymous JSON clients get throttled; the RSS feed usually still works.
	if status == http.StatusForbidden || status == http.StatusTooManyRequests {
		c.logger.Warn("JSON endpoint throttled, falling back to RSS",
			"subreddit", subreddit, "status", status)
		return c.fetchSubredditRSS(ctx, subreddit, limit)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from r/%s", status, subreddit)
	}

	var envelope listingEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode r/%s response: %w", subreddit, err)
	}

	listings := make([]model.Listing, 0, len(envelope.Data.Children))
	for _, child := range envelope.Data.Children {
		listings = append(listings, toListing(child.Data, subreddit, c.baseURL))
	}
	return listings, nil
}

// pace enforces the minimum spacing between requests.
func (c *Client) pace(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if wait := c.minInterval - time.Since(c.lastRequest); wait > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	c.lastRequest = time.Now()
	return nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}
	return body, resp.StatusCode, nil
}

func toListing(p postData, subreddit, baseURL string) model.Listing {
	var created time.Time
	if p.CreatedUTC > 0 {
		created = time.Unix(int64(p.CreatedUTC), 0).UTC()
	}

	return model.Listing{
		ID:          p.ID,
		Subreddit:   subreddit,
		Title:       p.Title,
		Body:        p.Selftext,
		Author:      p.Author,
		Flair:       p.LinkFlairText,
		URL:         baseURL + p.Permalink,
		Score:       p.Score,
		NumComments: p.NumComments,
		Created:     created,
		IsSelf:      p.IsSelf,
	}
}
