package folio

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"modernc.org/sqlite"

	"github.com/eringen/folio/document"
)

// timeLayout keeps a fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ExcerptLength is the rune limit for excerpts derived from the body.
const ExcerptLength = 160

// The fold SQL function lowercases with Go's Unicode tables, matching the
// cached filters. SQLite's lower() only folds ASCII.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("fold", 1,
		func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
			switch v := args[0].(type) {
			case string:
				return strings.ToLower(v), nil
			case []byte:
				return strings.ToLower(string(v)), nil
			}
			return args[0], nil
		})
}

// Store wraps a SQLite database holding posts, pages, submissions and the
// mail outbox.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and runs schema migrations.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// WAL lets readers proceed during writes; busy_timeout makes writers
	// wait instead of failing with SQLITE_BUSY.
	if _, err := db.Exec(`
		PRAGMA journal_mode=WAL;
		PRAGMA busy_timeout=5000;
		PRAGMA synchronous=NORMAL;
		PRAGMA foreign_keys=ON;
		PRAGMA cache_size=-8000;
	`); err != nil {
		db.Close()
		return nil, fmt.Errorf("set pragmas: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrations are applied in order; the index of the last applied one is
// stored as schema_version in the settings table.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS posts (
		slug TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		excerpt TEXT NOT NULL DEFAULT '',
		body TEXT NOT NULL DEFAULT '[]',
		cover_image TEXT NOT NULL DEFAULT '',
		author TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		tags TEXT NOT NULL DEFAULT ',',
		status TEXT NOT NULL DEFAULT 'draft',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		published_at TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_posts_status_date ON posts(status, published_at);

	CREATE TABLE IF NOT EXISTS pages (
		slug TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		body TEXT NOT NULL DEFAULT '[]',
		updated_at TEXT NOT NULL
	);`,
	`CREATE TABLE IF NOT EXISTS submissions (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT NOT NULL DEFAULT '',
		phone TEXT NOT NULL DEFAULT '',
		story TEXT NOT NULL,
		preferred_contact TEXT NOT NULL DEFAULT 'email',
		availability TEXT NOT NULL DEFAULT '',
		timezone TEXT NOT NULL DEFAULT '',
		social_links TEXT NOT NULL DEFAULT '[]',
		status TEXT NOT NULL DEFAULT 'new',
		notes TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_submissions_status ON submissions(status, created_at);

	CREATE TABLE IF NOT EXISTS outbox (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		recipients TEXT NOT NULL,
		subject TEXT NOT NULL,
		html TEXT NOT NULL,
		text TEXT NOT NULL,
		created_at TEXT NOT NULL
	);`,
}

func (s *Store) migrate() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS settings (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		return err
	}
	version, err := s.SchemaVersion()
	if err != nil {
		return err
	}
	for i := version; i < len(migrations); i++ {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(migrations[i]); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := tx.Exec(`INSERT INTO settings (key, value) VALUES ('schema_version', ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, strconv.Itoa(i+1)); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// SchemaVersion returns the number of applied migrations.
func (s *Store) SchemaVersion() (int, error) {
	var v string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = 'schema_version'`).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parse schema version %q: %w", v, err)
	}
	return n, nil
}

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339Nano, s)
	}
	return t.UTC()
}

const postColumns = `slug, title, excerpt, body, cover_image, author, category, tags, status, created_at, updated_at, published_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(row scanner) (Post, error) {
	var (
		p                  Post
		body, tags, status string
		created, updated   string
		published          sql.NullString
	)
	if err := row.Scan(&p.Slug, &p.Title, &p.Excerpt, &body, &p.CoverImage, &p.Author,
		&p.Category, &tags, &status, &created, &updated, &published); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Post{}, ErrNotFound
		}
		return Post{}, err
	}
	doc, err := document.Parse([]byte(body))
	if err != nil {
		return Post{}, fmt.Errorf("post %q body: %w", p.Slug, err)
	}
	p.Body = doc
	p.Tags = nonNil(ParseTags(tags))
	p.Status = PostStatus(status)
	p.CreatedAt = parseTime(created)
	p.UpdatedAt = parseTime(updated)
	if published.Valid {
		t := parseTime(published.String)
		p.PublishedAt = &t
	}
	return p, nil
}

func queryPosts(db *sql.DB, query string, args ...any) ([]Post, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	posts := []Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// where builds the SQL condition for f. Published-only listings ignore
// f.Status.
func (f PostFilter) where(publishedOnly bool) (string, []any) {
	var conds []string
	var args []any
	switch {
	case publishedOnly:
		conds = append(conds, "status = ?")
		args = append(args, string(StatusPublished))
	case f.Status != "":
		conds = append(conds, "status = ?")
		args = append(args, string(f.Status))
	}
	if tag := normalizeTag(f.Tag); tag != "" {
		conds = append(conds, "instr(tags, ',' || ? || ',') > 0")
		args = append(args, tag)
	}
	if cat := strings.TrimSpace(f.Category); cat != "" {
		conds = append(conds, "fold(category) = ?")
		args = append(args, strings.ToLower(cat))
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + escapeLike(strings.ToLower(q)) + "%"
		conds = append(conds, `(fold(title) LIKE ? ESCAPE '\' OR fold(excerpt) LIKE ? ESCAPE '\')`)
		args = append(args, like, like)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func (s *Store) listPosts(f PostFilter, publishedOnly bool) ([]Post, Pagination, error) {
	where, args := f.where(publishedOnly)
	var total int64
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM posts`+where, args...).Scan(&total); err != nil {
		return nil, Pagination{}, err
	}
	p := newPagination(total, f.Page, f.Size)
	posts, err := queryPosts(s.db, `SELECT `+postColumns+` FROM posts`+where+
		` ORDER BY COALESCE(published_at, created_at) DESC, slug LIMIT ? OFFSET ?`,
		append(args, p.Size, (p.CurrentPage-1)*p.Size)...)
	if err != nil {
		return nil, Pagination{}, err
	}
	return posts, p, nil
}

// ListPosts returns a page of published posts, newest first, matching the
// filter's tag, category and query.
func (s *Store) ListPosts(f PostFilter) ([]Post, Pagination, error) {
	return s.listPosts(f, true)
}

// ListAllPosts returns a page of posts of any status (for admin). A
// non-empty f.Status must be valid.
func (s *Store) ListAllPosts(f PostFilter) ([]Post, Pagination, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, Pagination{}, fmt.Errorf("%w: %q", ErrInvalidStatus, f.Status)
	}
	return s.listPosts(f, false)
}

// PublishedPosts returns every published post, newest first.
func (s *Store) PublishedPosts() ([]Post, error) {
	return queryPosts(s.db, `SELECT `+postColumns+` FROM posts WHERE status = ?
		ORDER BY COALESCE(published_at, created_at) DESC, slug`, string(StatusPublished))
}

// GetPost returns a single published post by slug.
func (s *Store) GetPost(slug string) (Post, error) {
	return scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ? AND status = ?`,
		slug, string(StatusPublished)))
}

// GetPostAny returns a post by slug regardless of status (for admin).
func (s *Store) GetPostAny(slug string) (Post, error) {
	return scanPost(s.db.QueryRow(`SELECT `+postColumns+` FROM posts WHERE slug = ?`, slug))
}

// SavePost upserts a post and returns it as stored. The slug defaults to
// the slugified title, the excerpt to the start of the body text and the
// status to draft. published_at is set the first time the post is
// published and kept afterwards.
func (s *Store) SavePost(p Post) (Post, error) {
	p.Title = strings.TrimSpace(p.Title)
	p.Slug = strings.TrimSpace(p.Slug)
	if p.Slug == "" {
		p.Slug = Slugify(p.Title)
	}
	if p.Slug == "" {
		return Post{}, ErrSlugRequired
	}
	if p.Status == "" {
		p.Status = StatusDraft
	}
	if !p.Status.Valid() {
		return Post{}, fmt.Errorf("%w: %q", ErrInvalidStatus, p.Status)
	}
	if err := document.Validate(p.Body); err != nil {
		return Post{}, err
	}
	document.Normalize(&p.Body)
	p.Tags = NormalizeTags(p.Tags)
	p.Category = strings.TrimSpace(p.Category)
	p.Excerpt = strings.TrimSpace(p.Excerpt)
	if p.Excerpt == "" {
		p.Excerpt = p.Body.Excerpt(ExcerptLength)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return Post{}, err
	}
	defer tx.Rollback()

	now := s.now().UTC()
	p.CreatedAt, p.UpdatedAt = now, now
	var created string
	var published sql.NullString
	err = tx.QueryRow(`SELECT created_at, published_at FROM posts WHERE slug = ?`, p.Slug).Scan(&created, &published)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		p.PublishedAt = nil
	case err != nil:
		return Post{}, err
	default:
		p.CreatedAt = parseTime(created)
		p.PublishedAt = nil
		if published.Valid {
			t := parseTime(published.String)
			p.PublishedAt = &t
		}
	}
	if p.PublishedAt == nil && p.Status == StatusPublished {
		p.PublishedAt = &now
	}

	var publishedAt any
	if p.PublishedAt != nil {
		publishedAt = formatTime(*p.PublishedAt)
	}
	if _, err := tx.Exec(`INSERT INTO posts (`+postColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET
			title = excluded.title, excerpt = excluded.excerpt, body = excluded.body,
			cover_image = excluded.cover_image, author = excluded.author,
			category = excluded.category, tags = excluded.tags, status = excluded.status,
			updated_at = excluded.updated_at, published_at = excluded.published_at`,
		p.Slug, p.Title, p.Excerpt, p.Body.JSON(), p.CoverImage, p.Author, p.Category,
		","+strings.Join(p.Tags, ",")+",", string(p.Status),
		formatTime(p.CreatedAt), formatTime(p.UpdatedAt), publishedAt); err != nil {
		return Post{}, err
	}
	if err := tx.Commit(); err != nil {
		return Post{}, err
	}
	return p, nil
}

// SetPostStatus changes the status of a post.
func (s *Store) SetPostStatus(slug string, status PostStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	now := formatTime(s.now())
	res, err := s.db.Exec(`UPDATE posts SET status = ?, updated_at = ?,
		published_at = CASE WHEN ? = 'published' AND published_at IS NULL THEN ? ELSE published_at END
		WHERE slug = ?`, string(status), now, string(status), now, slug)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// DeletePost removes a post by slug. Deleting a missing post is not an error.
func (s *Store) DeletePost(slug string) error {
	_, err := s.db.Exec(`DELETE FROM posts WHERE slug = ?`, slug)
	return err
}

// ListTags returns a sorted, deduplicated slice of all tags from published posts.
func (s *Store) ListTags() ([]string, error) {
	rows, err := s.db.Query(`SELECT tags FROM posts WHERE status = ?`, string(StatusPublished))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var tags string
		if err := rows.Scan(&tags); err != nil {
			return nil, err
		}
		for _, t := range ParseTags(tags) {
			set[t] = struct{}{}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sortedKeys(set), nil
}

// ListCategories returns the sorted categories of published posts.
func (s *Store) ListCategories() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT category FROM posts WHERE status = ? AND category != ''`, string(StatusPublished))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]struct{})
	for rows.Next() {
		var cat string
		if err := rows.Scan(&cat); err != nil {
			return nil, err
		}
		set[cat] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sortedKeys(set), nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

const pageColumns = `slug, title, body, updated_at`

func scanPage(row scanner) (Page, error) {
	var p Page
	var body, updated string
	if err := row.Scan(&p.Slug, &p.Title, &body, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Page{}, ErrNotFound
		}
		return Page{}, err
	}
	doc, err := document.Parse([]byte(body))
	if err != nil {
		return Page{}, fmt.Errorf("page %q body: %w", p.Slug, err)
	}
	p.Body = doc
	p.UpdatedAt = parseTime(updated)
	return p, nil
}

// GetPage returns a static page by slug.
func (s *Store) GetPage(slug string) (Page, error) {
	return scanPage(s.db.QueryRow(`SELECT `+pageColumns+` FROM pages WHERE slug = ?`, slug))
}

// SavePage upserts a static page.
func (s *Store) SavePage(p Page) (Page, error) {
	p.Slug = Slugify(p.Slug)
	if p.Slug == "" {
		return Page{}, ErrSlugRequired
	}
	if err := document.Validate(p.Body); err != nil {
		return Page{}, err
	}
	document.Normalize(&p.Body)
	p.Title = strings.TrimSpace(p.Title)
	p.UpdatedAt = s.now().UTC()
	_, err := s.db.Exec(`INSERT INTO pages (`+pageColumns+`) VALUES (?, ?, ?, ?)
		ON CONFLICT(slug) DO UPDATE SET title = excluded.title, body = excluded.body, updated_at = excluded.updated_at`,
		p.Slug, p.Title, p.Body.JSON(), formatTime(p.UpdatedAt))
	if err != nil {
		return Page{}, err
	}
	return p, nil
}

// ListPages returns every page ordered by slug.
func (s *Store) ListPages() ([]Page, error) {
	rows, err := s.db.Query(`SELECT ` + pageColumns + ` FROM pages ORDER BY slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	pages := []Page{}
	for rows.Next() {
		p, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// ParseTags splits a comma-delimited tag string (e.g. ",go,web,") into a slice.
func ParseTags(tagString string) []string {
	tagString = strings.Trim(tagString, ",")
	if tagString == "" {
		return nil
	}
	parts := strings.Split(tagString, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}
