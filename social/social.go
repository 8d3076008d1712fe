// Package social fetches the owner's social feed and builds link previews
// for embed blocks.
package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrNotConfigured is returned by Threads when no feed endpoint is set.
var ErrNotConfigured = errors.New("social: feed endpoint not configured")

// HTTPError reports a non-success response from a remote server.
type HTTPError struct {
	StatusCode int
	URL        string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("social: %s returned HTTP %d", e.URL, e.StatusCode)
}

// Thread is one post of the social feed.
type Thread struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	Permalink string    `json:"permalink"`
	MediaURL  string    `json:"media_url,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Likes     int       `json:"like_count"`
	Replies   int       `json:"replies_count"`
}

// rawThread is the item shape returned by the feed endpoint. Timestamps
// come either as RFC 3339 or with a numeric zone without a colon.
type rawThread struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Permalink string `json:"permalink"`
	MediaURL  string `json:"media_url"`
	Timestamp string `json:"timestamp"`
	Likes     int    `json:"like_count"`
	Replies   int    `json:"replies_count"`
}

var timestampLayouts = []string{time.RFC3339, "2006-01-02T15:04:05-0700", "2006-01-02T15:04:05"}

func parseTimestamp(s string) (time.Time, error) {
	var err error
	for _, layout := range timestampLayouts {
		var t time.Time
		if t, err = time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, err
}

// Config configures a feed Client.
type Config struct {
	Endpoint string        // JSON endpoint returning {"data":[…]}
	Token    string        // optional bearer token
	Limit    int           // maximum threads returned (default 12)
	TTL      time.Duration // cache freshness (default 15m)
}

const (
	defaultLimit = 12
	defaultTTL   = 15 * time.Minute
	maxFeedBytes = 4 << 20
	cacheKey     = "social:threads"
)

// Client fetches threads and keeps the last good result in a Cache.
type Client struct {
	cfg   Config
	http  *http.Client
	cache Cache
	log   *zap.Logger
	now   func() time.Time

	mu sync.Mutex
}

// NewClient returns a Client. A nil cache means an in-memory cache and a
// nil logger discards output.
func NewClient(cfg Config, cache Cache, log *zap.Logger) *Client {
	if cfg.Limit <= 0 {
		cfg.Limit = defaultLimit
	}
	if cfg.TTL <= 0 {
		cfg.TTL = defaultTTL
	}
	if cache == nil {
		cache = NewMemoryCache()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		cfg:   cfg,
		http:  &http.Client{Timeout: 10 * time.Second},
		cache: cache,
		log:   log,
		now:   time.Now,
	}
}

type cacheEntry struct {
	Threads   []Thread  `json:"threads"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Threads returns the newest threads. Fresh cached results are served
// without a request; when a fetch fails, stale cached results are
// returned instead of the error.
func (c *Client) Threads(ctx context.Context) ([]Thread, error) {
	if c.cfg.Endpoint == "" {
		return nil, ErrNotConfigured
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	cached, ok := c.cached(ctx)
	if ok && c.now().Sub(cached.FetchedAt) < c.cfg.TTL {
		return cached.Threads, nil
	}

	threads, err := c.fetch(ctx)
	if err != nil {
		if ok {
			c.log.Warn("social feed fetch failed, serving stale threads",
				zap.Error(err), zap.Time("fetched_at", cached.FetchedAt))
			return cached.Threads, nil
		}
		return nil, err
	}

	entry := cacheEntry{Threads: threads, FetchedAt: c.now()}
	if data, err := json.Marshal(entry); err == nil {
		if err := c.cache.Set(ctx, cacheKey, data); err != nil {
			c.log.Warn("social feed cache write failed", zap.Error(err))
		}
	}
	return threads, nil
}

func (c *Client) cached(ctx context.Context) (cacheEntry, bool) {
	data, ok, err := c.cache.Get(ctx, cacheKey)
	if err != nil {
		c.log.Warn("social feed cache read failed", zap.Error(err))
		return cacheEntry{}, false
	}
	if !ok {
		return cacheEntry{}, false
	}
	var entry cacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return cacheEntry{}, false
	}
	return entry, true
}

func (c *Client) fetch(ctx context.Context) ([]Thread, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.Endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("social: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.cfg.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("social: fetching feed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, &HTTPError{StatusCode: resp.StatusCode, URL: c.cfg.Endpoint}
	}

	var body struct {
		Data []rawThread `json:"data"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxFeedBytes)).Decode(&body); err != nil {
		return nil, fmt.Errorf("social: decoding feed: %w", err)
	}

	threads := make([]Thread, 0, len(body.Data))
	for _, r := range body.Data {
		ts, err := parseTimestamp(r.Timestamp)
		if err != nil {
			c.log.Debug("skipping thread with bad timestamp", zap.String("id", r.ID), zap.String("timestamp", r.Timestamp))
			continue
		}
		threads = append(threads, Thread{
			ID:        r.ID,
			Text:      r.Text,
			Permalink: r.Permalink,
			MediaURL:  r.MediaURL,
			Timestamp: ts,
			Likes:     r.Likes,
			Replies:   r.Replies,
		})
	}
	sort.SliceStable(threads, func(i, j int) bool {
		return threads[i].Timestamp.After(threads[j].Timestamp)
	})
	if len(threads) > c.cfg.Limit {
		threads = threads[:c.cfg.Limit]
	}
	return threads, nil
}
