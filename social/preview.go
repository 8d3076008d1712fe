package social

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// ErrUnsupportedURL is returned for preview URLs that are not absolute
// http or https URLs.
var ErrUnsupportedURL = errors.New("social: only http and https URLs can be previewed")

// Preview is the card metadata shown for an embed block.
type Preview struct {
	URL         string `json:"url"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Image       string `json:"image,omitempty"`
	Site        string `json:"site,omitempty"`
}

const (
	previewTimeout  = 10 * time.Second
	maxPreviewBytes = 2 << 20
)

// Previewer fetches pages and reads their OpenGraph and Twitter card tags.
type Previewer struct {
	client   *http.Client
	maxBytes int64
}

func NewPreviewer() *Previewer {
	return &Previewer{
		client:   &http.Client{Timeout: previewTimeout},
		maxBytes: maxPreviewBytes,
	}
}

// Preview fetches rawURL and extracts its card metadata. Pages that are
// not HTML get a preview holding only the URL and host.
func (p *Previewer) Preview(ctx context.Context, rawURL string) (Preview, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Preview{}, fmt.Errorf("%w: %q", ErrUnsupportedURL, rawURL)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return Preview{}, fmt.Errorf("social: build request: %w", err)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Set("User-Agent", "folio-preview/1.0")
	resp, err := p.client.Do(req)
	if err != nil {
		return Preview{}, fmt.Errorf("social: fetching %s: %w", u, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Preview{}, &HTTPError{StatusCode: resp.StatusCode, URL: u.String()}
	}

	final := resp.Request.URL
	out := Preview{URL: u.String(), Site: final.Hostname()}
	if mt, _, _ := mime.ParseMediaType(resp.Header.Get("Content-Type")); mt != "" && mt != "text/html" && mt != "application/xhtml+xml" {
		out.Title = final.Hostname()
		return out, nil
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, p.maxBytes))
	if err != nil {
		return Preview{}, fmt.Errorf("social: parsing %s: %w", u, err)
	}
	out.Title = firstMeta(doc, "og:title", "twitter:title")
	if out.Title == "" {
		out.Title = clean(doc.Find("title").First().Text())
	}
	if out.Title == "" {
		out.Title = final.Hostname()
	}
	out.Description = firstMeta(doc, "og:description", "twitter:description", "description")
	if img := firstMeta(doc, "og:image", "og:image:url", "twitter:image", "twitter:image:src"); img != "" {
		if ref, err := url.Parse(img); err == nil {
			if abs := final.ResolveReference(ref); abs.Scheme == "http" || abs.Scheme == "https" {
				out.Image = abs.String()
			}
		}
	}
	if site := firstMeta(doc, "og:site_name", "application-name"); site != "" {
		out.Site = site
	}
	return out, nil
}

// firstMeta returns the first non-empty content of a meta tag matching one
// of names through either its property or its name attribute.
func firstMeta(doc *goquery.Document, names ...string) string {
	for _, name := range names {
		var val string
		doc.Find("meta").EachWithBreak(func(_ int, s *goquery.Selection) bool {
			key, ok := s.Attr("property")
			if !ok || key == "" {
				key, _ = s.Attr("name")
			}
			if !strings.EqualFold(key, name) {
				return true
			}
			val = clean(s.AttrOr("content", ""))
			return val == ""
		})
		if val != "" {
			return val
		}
	}
	return ""
}

func clean(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
