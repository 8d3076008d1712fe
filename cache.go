package folio

import (
	"strings"
	"sync"
	"time"
)

// PostCache is an in-memory cache of published posts, tags and categories
// with TTL.
type PostCache struct {
	mu         sync.RWMutex
	posts      []Post
	tags       []string
	categories []string
	fetched    time.Time
	ttl        time.Duration
	store      *Store
}

// NewPostCache creates a PostCache backed by the given Store.
func NewPostCache(s *Store, ttl time.Duration) *PostCache {
	return &PostCache{store: s, ttl: ttl}
}

func (c *PostCache) valid() bool {
	return c.posts != nil && time.Since(c.fetched) < c.ttl
}

// Invalidate clears the cache so the next read triggers a fresh load.
func (c *PostCache) Invalidate() {
	c.mu.Lock()
	c.posts = nil
	c.tags = nil
	c.categories = nil
	c.mu.Unlock()
}

func (c *PostCache) load() error {
	if c.valid() {
		return nil
	}
	posts, err := c.store.PublishedPosts()
	if err != nil {
		return err
	}
	tags, err := c.store.ListTags()
	if err != nil {
		return err
	}
	categories, err := c.store.ListCategories()
	if err != nil {
		return err
	}
	c.posts = posts
	c.tags = tags
	c.categories = categories
	c.fetched = time.Now()
	return nil
}

type cached struct {
	posts      []Post
	tags       []string
	categories []string
}

// ensureLoaded returns cached data after ensuring the cache is fresh.
// It tries a read lock first; only takes a write lock if a reload is needed.
func (c *PostCache) ensureLoaded() (cached, error) {
	c.mu.RLock()
	if c.valid() {
		out := cached{c.posts, c.tags, c.categories}
		c.mu.RUnlock()
		return out, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.load(); err != nil {
		return cached{}, err
	}
	return cached{c.posts, c.tags, c.categories}, nil
}

// ListPosts returns a page of published posts matching f. It mirrors
// Store.ListPosts without touching the database while the cache is fresh.
func (c *PostCache) ListPosts(f PostFilter) ([]Post, Pagination, error) {
	data, err := c.ensureLoaded()
	if err != nil {
		return nil, Pagination{}, err
	}
	var matched []Post
	for _, p := range data.posts {
		if f.matches(p) {
			matched = append(matched, p)
		}
	}
	page, pagination := paginate(matched, f.Page, f.Size)
	return page, pagination, nil
}

// AllPosts returns every published post, newest first.
func (c *PostCache) AllPosts() ([]Post, error) {
	data, err := c.ensureLoaded()
	return data.posts, err
}

// ListTags returns all unique tags from published posts.
func (c *PostCache) ListTags() ([]string, error) {
	data, err := c.ensureLoaded()
	return data.tags, err
}

// ListCategories returns all categories of published posts.
func (c *PostCache) ListCategories() ([]string, error) {
	data, err := c.ensureLoaded()
	return data.categories, err
}

// GetPost returns a single published post by slug from the cache.
func (c *PostCache) GetPost(slug string) (Post, error) {
	data, err := c.ensureLoaded()
	if err != nil {
		return Post{}, err
	}
	for _, p := range data.posts {
		if p.Slug == slug {
			return p, nil
		}
	}
	return Post{}, ErrNotFound
}

// matches reports whether p passes the tag, category and query filters.
func (f PostFilter) matches(p Post) bool {
	if tag := normalizeTag(f.Tag); tag != "" {
		found := false
		for _, t := range p.Tags {
			if t == tag {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if cat := strings.TrimSpace(f.Category); cat != "" && strings.ToLower(cat) != strings.ToLower(p.Category) {
		return false
	}
	if q := strings.ToLower(strings.TrimSpace(f.Query)); q != "" {
		if !strings.Contains(strings.ToLower(p.Title), q) && !strings.Contains(strings.ToLower(p.Excerpt), q) {
			return false
		}
	}
	return true
}
