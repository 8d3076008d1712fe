package folio

import (
	"github.com/a-h/templ"

	"github.com/eringen/folio/social"
)

// ViewFuncs holds user-provided templ components that the framework calls
// when rendering pages. Default implementations live in package views.
type ViewFuncs struct {
	Home            func(HomeData) templ.Component
	BlogSection     func(HomeData) templ.Component
	Post            func(PostData) templ.Component
	Page            func(PageData) templ.Component
	Social          func(SocialData) templ.Component
	AdminLogin      func(showError bool, csrfToken string) templ.Component
	AdminDashboard  func(AdminData) templ.Component
	AdminEditor     func(EditorData) templ.Component
	AdminSubmission func(SubmissionData) templ.Component
	NotFound        func() templ.Component
	ServerError     func() templ.Component
}

// HomeData feeds the blog feed. Filter carries the active tag, category,
// query and page.
type HomeData struct {
	Site       SiteConfig
	Meta       PageMeta
	Posts      []Post
	Pagination Pagination
	Filter     PostFilter
	Tags       []string
	Categories []string
}

type PostData struct {
	Site    SiteConfig
	Meta    PageMeta
	Post    Post
	Related []Post
}

type PageData struct {
	Site SiteConfig
	Meta PageMeta
	Page Page
}

// SocialData feeds the social page. Unavailable is set when the feed could
// not be fetched and nothing was cached.
type SocialData struct {
	Site        SiteConfig
	Meta        PageMeta
	Threads     []social.Thread
	Unavailable bool
}

type AdminData struct {
	Site        SiteConfig
	Posts       []Post
	Pages       []Page
	Submissions []Submission
	Message     string
	CSRFToken   string
}

// EditorData opens the admin editor on a session. Kind and Slug name the
// post or page the session saves to; an empty Slug means a new post.
type EditorData struct {
	Site      SiteConfig
	Kind      string
	Slug      string
	Title     string
	Post      Post
	SessionID string
	CSRFToken string
}

type SubmissionData struct {
	Site       SiteConfig
	Submission Submission
	Statuses   []SubmissionStatus
	CSRFToken  string
}
