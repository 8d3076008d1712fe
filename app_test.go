package folio

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eringen/folio/mail"
)

const testPassword = "correct horse"

// text returns a component that writes s verbatim.
func text(s string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, s)
		return err
	})
}

func stubViews() ViewFuncs {
	return ViewFuncs{
		Home: func(d HomeData) templ.Component {
			slugs := make([]string, len(d.Posts))
			for i, p := range d.Posts {
				slugs[i] = p.Slug
			}
			return text("home:" + strings.Join(slugs, ","))
		},
		BlogSection: func(d HomeData) templ.Component { return text(fmt.Sprintf("section:%d", len(d.Posts))) },
		Post:        func(d PostData) templ.Component { return text("post:" + d.Post.Title) },
		Page:        func(d PageData) templ.Component { return text("page:" + d.Page.Title) },
		Social: func(d SocialData) templ.Component {
			return text(fmt.Sprintf("social:unavailable=%t", d.Unavailable))
		},
		AdminLogin: func(showError bool, token string) templ.Component {
			return text(fmt.Sprintf("login:error=%t", showError))
		},
		AdminDashboard: func(d AdminData) templ.Component {
			return text(fmt.Sprintf("dashboard:%d posts", len(d.Posts)))
		},
		AdminEditor: func(d EditorData) templ.Component {
			return text("editor:" + d.Kind + ":" + d.SessionID)
		},
		AdminSubmission: func(d SubmissionData) templ.Component { return text("submission:" + d.Submission.Name) },
		NotFound:        func() templ.Component { return text("not found page") },
		ServerError:     func() templ.Component { return text("error page") },
	}
}

// memOutbox records queued mail.
type memOutbox struct {
	mu   sync.Mutex
	msgs []mail.Message
}

func (o *memOutbox) Enqueue(_ context.Context, msg mail.Message) error {
	o.mu.Lock()
	o.msgs = append(o.msgs, msg)
	o.mu.Unlock()
	return nil
}

func (o *memOutbox) messages() []mail.Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]mail.Message(nil), o.msgs...)
}

type testApp struct {
	*App
	outbox *memOutbox
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	outbox := &memOutbox{}
	a := New(SiteConfig{
		Name:          "Test Folio",
		URL:           "https://example.com",
		Author:        "Site Owner",
		DatabasePath:  filepath.Join(t.TempDir(), "folio.db"),
		AdminPassword: testPassword,
		AdminEmail:    "owner@example.com",
		SessionSecret: "0123456789abcdef0123456789abcdef",
	}, stubViews(),
		WithLogger(zap.NewNop()),
		WithOutbox(outbox),
		WithStaticDir(t.TempDir()),
	)
	require.NoError(t, a.Init())
	t.Cleanup(func() { a.Close() })

	clock := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	a.Store.now = func() time.Time {
		clock = clock.Add(time.Minute)
		return clock
	}
	return &testApp{App: a, outbox: outbox}
}

// client keeps cookies between requests and sends the CSRF token on
// unsafe methods.
type client struct {
	t       *testing.T
	app     *testApp
	cookies map[string]*http.Cookie
	header  http.Header
}

func (a *testApp) client(t *testing.T) *client {
	return &client{t: t, app: a, cookies: make(map[string]*http.Cookie), header: make(http.Header)}
}

func (c *client) do(method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	c.t.Helper()
	req := httptest.NewRequest(method, target, body)
	for k, v := range c.header {
		req.Header[k] = v
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for _, ck := range c.cookies {
		req.AddCookie(ck)
	}
	if ck, ok := c.cookies["_csrf"]; ok && method != http.MethodGet {
		req.Header.Set("X-CSRF-Token", ck.Value)
	}
	rec := httptest.NewRecorder()
	c.app.Echo.ServeHTTP(rec, req)
	for _, ck := range rec.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(c.cookies, ck.Name)
			continue
		}
		c.cookies[ck.Name] = ck
	}
	return rec
}

func (c *client) get(target string) *httptest.ResponseRecorder {
	return c.do(http.MethodGet, target, nil, "")
}

func (c *client) json(method, target string, v any) *httptest.ResponseRecorder {
	c.t.Helper()
	var body io.Reader
	if v != nil {
		b, err := json.Marshal(v)
		require.NoError(c.t, err)
		body = strings.NewReader(string(b))
	}
	return c.do(method, target, body, "application/json")
}

func (c *client) form(target string, values url.Values) *httptest.ResponseRecorder {
	return c.do(http.MethodPost, target, strings.NewReader(values.Encode()), "application/x-www-form-urlencoded")
}

// login fetches a CSRF cookie and signs in as admin.
func (c *client) login() {
	c.t.Helper()
	rec := c.get("/admin/")
	require.Equal(c.t, http.StatusOK, rec.Code)
	require.Contains(c.t, c.cookies, "_csrf")
	rec = c.form("/admin/login/", url.Values{"password": {testPassword}, "_csrf": {c.cookies["_csrf"].Value}})
	require.Equal(c.t, http.StatusSeeOther, rec.Code, rec.Body.String())
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type listBody[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func (a *testApp) seed(t *testing.T, posts ...Post) {
	t.Helper()
	for _, p := range posts {
		if p.Body.IsEmpty() {
			p.Body = paragraphs("Body of " + p.Title)
		}
		_, err := a.Store.SavePost(p)
		require.NoError(t, err)
	}
	a.Cache.Invalidate()
}
