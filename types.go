package folio

import (
	"errors"
	"time"

	"github.com/eringen/folio/document"
)

var (
	// ErrNotFound is returned when a requested record does not exist.
	ErrNotFound = errors.New("folio: not found")
	// ErrInvalidStatus is returned for status values outside the allowed set.
	ErrInvalidStatus = errors.New("folio: invalid status")
	// ErrSlugRequired is returned when a post has neither a slug nor a
	// title to derive one from.
	ErrSlugRequired = errors.New("folio: slug is required")
)

// PostStatus is the publication state of a post.
type PostStatus string

const (
	StatusDraft     PostStatus = "draft"
	StatusPublished PostStatus = "published"
	StatusArchived  PostStatus = "archived"
)

func (s PostStatus) Valid() bool {
	switch s {
	case StatusDraft, StatusPublished, StatusArchived:
		return true
	}
	return false
}

// Post is the core content type stored in SQLite and rendered by templates.
type Post struct {
	Slug        string            `json:"slug"`
	Title       string            `json:"title"`
	Excerpt     string            `json:"excerpt"`
	Body        document.Document `json:"body"`
	CoverImage  string            `json:"cover_image,omitempty"`
	Author      string            `json:"author,omitempty"`
	Category    string            `json:"category,omitempty"`
	Tags        []string          `json:"tags"`
	Status      PostStatus        `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	PublishedAt *time.Time        `json:"published_at,omitempty"`
}

// Link is the site-relative URL of the post.
func (p Post) Link() string { return "/blog/" + p.Slug + "/" }

// Date is the publication date, or the creation date for drafts.
func (p Post) Date() time.Time {
	if p.PublishedAt != nil {
		return *p.PublishedAt
	}
	return p.CreatedAt
}

func (p Post) ReadingTime() int { return p.Body.ReadingTime() }

// Page is a static content page such as About.
type Page struct {
	Slug      string            `json:"slug"`
	Title     string            `json:"title"`
	Body      document.Document `json:"body"`
	UpdatedAt time.Time         `json:"updated_at"`
}

func (p Page) Link() string { return "/" + p.Slug + "/" }

// PostFilter narrows post listings. Zero values match everything.
type PostFilter struct {
	Tag      string
	Category string
	Query    string
	Status   PostStatus // admin listings only
	Page     int
	Size     int
}

// SubmissionStatus tracks a submission through review.
type SubmissionStatus string

const (
	SubmissionNew       SubmissionStatus = "new"
	SubmissionReviewing SubmissionStatus = "reviewing"
	SubmissionScheduled SubmissionStatus = "scheduled"
	SubmissionCompleted SubmissionStatus = "completed"
	SubmissionDeclined  SubmissionStatus = "declined"
	SubmissionArchived  SubmissionStatus = "archived"
)

// SubmissionStatuses lists every accepted status in display order.
var SubmissionStatuses = []SubmissionStatus{
	SubmissionNew, SubmissionReviewing, SubmissionScheduled,
	SubmissionCompleted, SubmissionDeclined, SubmissionArchived,
}

func (s SubmissionStatus) Valid() bool {
	for _, v := range SubmissionStatuses {
		if s == v {
			return true
		}
	}
	return false
}

// Preferred contact methods for a submission.
const (
	ContactEmail  = "email"
	ContactPhone  = "phone"
	ContactEither = "either"
)

// Submission is an intake record for The Maron Project.
type Submission struct {
	ID               string           `json:"id"`
	Name             string           `json:"name"`
	Email            string           `json:"email,omitempty"`
	Phone            string           `json:"phone,omitempty"`
	Story            string           `json:"story"`
	PreferredContact string           `json:"preferred_contact"`
	Availability     string           `json:"availability,omitempty"`
	Timezone         string           `json:"timezone,omitempty"`
	SocialLinks      []string         `json:"social_links"`
	Status           SubmissionStatus `json:"status"`
	Notes            string           `json:"notes,omitempty"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// SubmissionFilter narrows submission listings.
type SubmissionFilter struct {
	Status SubmissionStatus
	Page   int
	Size   int
}

// OutboxMessage is a stored email awaiting delivery.
type OutboxMessage struct {
	ID        int64     `json:"id"`
	To        []string  `json:"to"`
	Subject   string    `json:"subject"`
	HTML      string    `json:"html"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"created_at"`
}

// PageMeta carries per-page OpenGraph and SEO metadata into the <head> template.
type PageMeta struct {
	Title       string
	Description string
	URL         string // canonical + og:url
	OGType      string // "website" or "article"
	Image       string
}
