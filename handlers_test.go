package folio

import (
	"encoding/xml"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomeListsPublishedPosts(t *testing.T) {
	a := newTestApp(t)
	a.seed(t,
		Post{Title: "First", Tags: []string{"go"}, Status: StatusPublished},
		Post{Title: "Second", Tags: []string{"web"}, Status: StatusPublished},
		Post{Title: "Draft"},
	)
	c := a.client(t)

	rec := c.get("/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "home:second,first", rec.Body.String())

	rec = c.get("/?tag=go")
	assert.Equal(t, "home:first", rec.Body.String())
}

func TestHomeHtmxPartial(t *testing.T) {
	a := newTestApp(t)
	a.seed(t, Post{Title: "Only", Status: StatusPublished})

	c := a.client(t)
	assert.Equal(t, "home:only", c.get("/?partial=blog").Body.String(), "no HX-Request header")

	c.header.Set("HX-Request", "true")
	assert.Equal(t, "section:1", c.get("/?partial=blog").Body.String())
	assert.Equal(t, "home:only", c.get("/").Body.String())
}

func TestPostPage(t *testing.T) {
	a := newTestApp(t)
	a.seed(t,
		Post{Title: "Visible", Status: StatusPublished},
		Post{Title: "Hidden"},
	)
	c := a.client(t)

	rec := c.get("/blog/visible/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "post:Visible", rec.Body.String())

	rec = c.get("/blog/hidden/")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found page", rec.Body.String())
}

func TestTrailingSlashRedirect(t *testing.T) {
	a := newTestApp(t)
	c := a.client(t)

	rec := c.get("/about")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/about/", rec.Header().Get("Location"))

	rec = c.get("/blog")
	assert.Equal(t, http.StatusMovedPermanently, rec.Code)
	assert.Equal(t, "/", rec.Header().Get("Location"))
}

func TestAboutPage(t *testing.T) {
	a := newTestApp(t)
	c := a.client(t)

	assert.Equal(t, http.StatusNotFound, c.get("/about/").Code)

	_, err := a.Store.SavePage(Page{Slug: "about", Title: "About me", Body: paragraphs("Hello.")})
	require.NoError(t, err)
	rec := c.get("/about/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "page:About me", rec.Body.String())
}

func TestSocialPageUnconfigured(t *testing.T) {
	a := newTestApp(t)
	c := a.client(t)

	rec := c.get("/social/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "social:unavailable=true", rec.Body.String())

	rec = c.get("/api/social/threads")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	body := decode[errorResponse](t, rec)
	assert.Equal(t, 0, body.OK)
	assert.Equal(t, http.StatusServiceUnavailable, body.Code)
}

func TestFeedAndSitemap(t *testing.T) {
	a := newTestApp(t)
	a.seed(t,
		Post{Title: "Alpha", Category: "Notes", Tags: []string{"go"}, Status: StatusPublished},
		Post{Title: "Secret"},
	)
	_, err := a.Store.SavePage(Page{Slug: "about", Title: "About", Body: paragraphs("x")})
	require.NoError(t, err)
	c := a.client(t)

	rec := c.get("/feed.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	var rss struct {
		Channel struct {
			Items []struct {
				Title string `xml:"title"`
				Link  string `xml:"link"`
			} `xml:"item"`
		} `xml:"channel"`
	}
	require.NoError(t, xml.Unmarshal(rec.Body.Bytes(), &rss))
	require.Len(t, rss.Channel.Items, 1)
	assert.Equal(t, "Alpha", rss.Channel.Items[0].Title)
	assert.Equal(t, "https://example.com/blog/alpha/", rss.Channel.Items[0].Link)

	rec = c.get("/sitemap.xml")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<loc>https://example.com/</loc>")
	assert.Contains(t, body, "<loc>https://example.com/about/</loc>")
	assert.Contains(t, body, "<loc>https://example.com/blog/alpha/</loc>")
	assert.NotContains(t, body, "secret")
	assert.NotContains(t, body, "/social/")
}

func TestRobotsDefault(t *testing.T) {
	a := newTestApp(t)
	rec := a.client(t).get("/robots.txt")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Disallow: /admin/")
	assert.Contains(t, rec.Body.String(), "Sitemap: https://example.com/sitemap.xml")
}

func TestPublicAPI(t *testing.T) {
	a := newTestApp(t)
	a.seed(t,
		Post{Title: "One", Tags: []string{"go"}, Category: "Eng", Status: StatusPublished},
		Post{Title: "Two", Tags: []string{"web"}, Category: "Life", Status: StatusPublished},
		Post{Title: "Three", Tags: []string{"go"}, Category: "Eng", Status: StatusPublished},
		Post{Title: "Draft", Tags: []string{"draft-only"}},
	)
	c := a.client(t)

	rec := c.get("/api/posts?size=2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "public, max-age=60", rec.Header().Get("Cache-Control"))
	list := decode[listBody[Post]](t, rec)
	require.Len(t, list.Data, 2)
	assert.Equal(t, "three", list.Data[0].Slug)
	assert.Equal(t, Pagination{Total: 3, CurrentPage: 1, TotalPage: 2, Size: 2, HasNextPage: true}, list.Pagination)

	list = decode[listBody[Post]](t, c.get("/api/posts?category=eng&q=one"))
	require.Len(t, list.Data, 1)
	assert.Equal(t, "one", list.Data[0].Slug)

	rec = c.get("/api/posts/two")
	require.Equal(t, http.StatusOK, rec.Code)
	post := decode[Post](t, rec)
	assert.Equal(t, "Two", post.Title)
	assert.Equal(t, "Body of Two", post.Body.PlainText())

	rec = c.get("/api/posts/draft")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, http.StatusNotFound, decode[errorResponse](t, rec).Code)

	tags := decode[struct{ Data []string }](t, c.get("/api/tags"))
	assert.Equal(t, []string{"go", "web"}, tags.Data)

	cats := decode[struct{ Data []string }](t, c.get("/api/categories"))
	assert.Equal(t, []string{"Eng", "Life"}, cats.Data)
}

func TestPublicAPIEmptyLists(t *testing.T) {
	a := newTestApp(t)
	c := a.client(t)

	rec := c.get("/api/posts")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Body.String(), `{"data":[]`), rec.Body.String())

	rec = c.get("/api/tags")
	assert.JSONEq(t, `{"data":[]}`, rec.Body.String())
}

func TestSecurityHeaders(t *testing.T) {
	a := newTestApp(t)
	rec := a.client(t).get("/")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Content-Security-Policy"))
}
