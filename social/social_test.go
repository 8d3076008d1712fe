package social

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const feedJSON = `{"data":[
	{"id":"1","text":"older","permalink":"https://threads.example/p/1","timestamp":"2026-01-01T10:00:00+0000","like_count":3},
	{"id":"2","text":"newest","permalink":"https://threads.example/p/2","timestamp":"2026-01-03T10:00:00Z","replies_count":2},
	{"id":"3","text":"middle","permalink":"https://threads.example/p/3","timestamp":"2026-01-02T10:00:00+0000","media_url":"https://cdn.example/3.jpg"},
	{"id":"4","text":"broken","timestamp":"yesterday"}
]}`

type feedServer struct {
	*httptest.Server
	hits    atomic.Int32
	fail    atomic.Bool
	gotAuth atomic.Value
}

func newFeedServer(t *testing.T) *feedServer {
	t.Helper()
	fs := &feedServer{}
	fs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fs.hits.Add(1)
		fs.gotAuth.Store(r.Header.Get("Authorization"))
		if fs.fail.Load() {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, feedJSON)
	}))
	t.Cleanup(fs.Close)
	return fs
}

func TestThreadsSortsCapsAndSkipsBadItems(t *testing.T) {
	srv := newFeedServer(t)
	c := NewClient(Config{Endpoint: srv.URL, Token: "secret", Limit: 2}, nil, nil)

	threads, err := c.Threads(context.Background())
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, "2", threads[0].ID)
	assert.Equal(t, "3", threads[1].ID)
	assert.Equal(t, 2, threads[0].Replies)
	assert.Equal(t, "https://cdn.example/3.jpg", threads[1].MediaURL)
	assert.Equal(t, "Bearer secret", srv.gotAuth.Load())
}

func TestThreadJSONMatchesFeedNames(t *testing.T) {
	var raw struct {
		Data []rawThread `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(feedJSON), &raw))

	out, err := json.Marshal(Thread{ID: "2", Likes: 1, Replies: 2})
	require.NoError(t, err)
	assert.Contains(t, string(out), `"replies_count":2`)
	assert.Contains(t, string(out), `"like_count":1`)

	var back rawThread
	require.NoError(t, json.Unmarshal(out, &back))
	assert.Equal(t, raw.Data[1].Replies, back.Replies)
}

func TestThreadsUsesCacheWithinTTL(t *testing.T) {
	srv := newFeedServer(t)
	c := NewClient(Config{Endpoint: srv.URL, TTL: time.Minute}, nil, nil)
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, err := c.Threads(context.Background())
	require.NoError(t, err)
	_, err = c.Threads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), srv.hits.Load())

	now = now.Add(2 * time.Minute)
	threads, err := c.Threads(context.Background())
	require.NoError(t, err)
	assert.Len(t, threads, 3)
	assert.Equal(t, int32(2), srv.hits.Load())
}

func TestThreadsServesStaleOnError(t *testing.T) {
	srv := newFeedServer(t)
	c := NewClient(Config{Endpoint: srv.URL, TTL: time.Minute}, nil, nil)
	now := time.Date(2026, 1, 5, 12, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	first, err := c.Threads(context.Background())
	require.NoError(t, err)

	srv.fail.Store(true)
	now = now.Add(time.Hour)
	stale, err := c.Threads(context.Background())
	require.NoError(t, err)
	assert.Equal(t, first, stale)
	assert.Equal(t, int32(2), srv.hits.Load())
}

func TestThreadsErrorWithoutCache(t *testing.T) {
	srv := newFeedServer(t)
	srv.fail.Store(true)
	c := NewClient(Config{Endpoint: srv.URL}, nil, nil)

	_, err := c.Threads(context.Background())
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadGateway, httpErr.StatusCode)
}

func TestThreadsNotConfigured(t *testing.T) {
	c := NewClient(Config{}, nil, nil)
	_, err := c.Threads(context.Background())
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestRedisCache(t *testing.T) {
	url := os.Getenv("FOLIO_TEST_REDIS_URL")
	if url == "" {
		t.Skip("FOLIO_TEST_REDIS_URL not set")
	}
	ctx := context.Background()
	rc, err := NewRedisCache(ctx, url)
	require.NoError(t, err)
	defer rc.Close()

	key := fmt.Sprintf("test:%d", time.Now().UnixNano())
	_, ok, err := rc.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, rc.Set(ctx, key, []byte("v")))
	v, ok, err := rc.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, []byte("v"), v)
}

const pageHTML = `<!doctype html><html><head>
<title>  Fallback   title </title>
<meta property="og:title" content="">
<meta name="twitter:title" content="Card title">
<meta name="description" content="A page about things.">
<meta property="og:image" content="/img/cover.png">
<meta property="og:site_name" content="Example Site">
</head><body><p>hi</p></body></html>`

func TestPreview(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/page":
			w.Header().Set("Content-Type", "text/html; charset=utf-8")
			fmt.Fprint(w, pageHTML)
		case "/bare":
			w.Header().Set("Content-Type", "text/html")
			fmt.Fprint(w, "<html><head><title>Just a title</title></head></html>")
		case "/file.pdf":
			w.Header().Set("Content-Type", "application/pdf")
			fmt.Fprint(w, "%PDF-1.4")
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	p := NewPreviewer()
	ctx := context.Background()

	got, err := p.Preview(ctx, srv.URL+"/page")
	require.NoError(t, err)
	assert.Equal(t, "Card title", got.Title)
	assert.Equal(t, "A page about things.", got.Description)
	assert.Equal(t, srv.URL+"/img/cover.png", got.Image)
	assert.Equal(t, "Example Site", got.Site)

	got, err = p.Preview(ctx, srv.URL+"/bare")
	require.NoError(t, err)
	assert.Equal(t, "Just a title", got.Title)
	assert.Equal(t, "127.0.0.1", got.Site)

	got, err = p.Preview(ctx, srv.URL+"/file.pdf")
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", got.Title)

	_, err = p.Preview(ctx, srv.URL+"/missing")
	var httpErr *HTTPError
	require.True(t, errors.As(err, &httpErr))
	assert.Equal(t, http.StatusNotFound, httpErr.StatusCode)
}

func TestPreviewRejectsSchemes(t *testing.T) {
	p := NewPreviewer()
	for _, raw := range []string{"ftp://example.com/x", "javascript:alert(1)", "/relative", "file:///etc/passwd"} {
		_, err := p.Preview(context.Background(), raw)
		assert.ErrorIs(t, err, ErrUnsupportedURL, raw)
	}
}

func TestPreviewBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><head>"+strings.Repeat("<!-- padding -->", 100)+`<meta property="og:title" content="Too late"></head></html>`)
	}))
	defer srv.Close()
	p := NewPreviewer()
	p.maxBytes = 64

	got, err := p.Preview(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", got.Title)
}
