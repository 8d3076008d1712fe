package folio

import (
	"crypto/subtle"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/folio/document"
)

// dashboardSize is how many posts and submissions the dashboard lists.
const dashboardSize = 50

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		a.Log.Info("admin login", zap.String("ip", ip))
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	a.Log.Warn("admin login failed", zap.String("ip", ip))
	return RenderStatus(c, http.StatusUnauthorized, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, _, err := a.Store.ListAllPosts(PostFilter{Size: dashboardSize})
	if err != nil {
		return err
	}
	pages, err := a.Store.ListPages()
	if err != nil {
		return err
	}
	subs, _, err := a.Store.ListSubmissions(SubmissionFilter{Size: dashboardSize})
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(AdminData{
		Site:        a.Config,
		Posts:       posts,
		Pages:       pages,
		Submissions: subs,
		Message:     msg,
		CSRFToken:   CsrfToken(c),
	}))
}

func (a *App) handleAdminNewPost(c echo.Context) error {
	s := a.Sessions.Create(KindPost, "", document.New())
	return Render(c, a.Views.AdminEditor(EditorData{
		Site:      a.Config,
		Kind:      KindPost,
		Post:      Post{Status: StatusDraft},
		SessionID: s.ID,
		CSRFToken: CsrfToken(c),
	}))
}

func (a *App) handleAdminEditPost(c echo.Context) error {
	post, err := a.Store.GetPostAny(c.Param("slug"))
	if err != nil {
		return err
	}
	s := a.Sessions.Create(KindPost, post.Slug, post.Body)
	return Render(c, a.Views.AdminEditor(EditorData{
		Site:      a.Config,
		Kind:      KindPost,
		Slug:      post.Slug,
		Title:     post.Title,
		Post:      post,
		SessionID: s.ID,
		CSRFToken: CsrfToken(c),
	}))
}

// handleAdminEditPage opens a page in the editor. Pages that do not exist
// yet start blank and are created on save.
func (a *App) handleAdminEditPage(c echo.Context) error {
	slug := Slugify(c.Param("slug"))
	page, err := a.Store.GetPage(slug)
	if errors.Is(err, ErrNotFound) {
		page = Page{Slug: slug, Body: document.New()}
	} else if err != nil {
		return err
	}
	s := a.Sessions.Create(KindPage, page.Slug, page.Body)
	return Render(c, a.Views.AdminEditor(EditorData{
		Site:      a.Config,
		Kind:      KindPage,
		Slug:      page.Slug,
		Title:     page.Title,
		SessionID: s.ID,
		CSRFToken: CsrfToken(c),
	}))
}

func (a *App) handleAdminSubmission(c echo.Context) error {
	sub, err := a.Store.GetSubmission(c.Param("id"))
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminSubmission(SubmissionData{
		Site:       a.Config,
		Submission: sub,
		Statuses:   SubmissionStatuses,
		CSRFToken:  CsrfToken(c),
	}))
}
