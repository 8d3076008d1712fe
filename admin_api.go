package folio

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/folio/document"
	"github.com/eringen/folio/markdown"
)

// postRequest is the admin create/update payload. Body is document JSON;
// Markdown is converted when Body is absent. When neither is given on an
// update the stored body is kept.
type postRequest struct {
	Slug       string          `json:"slug"`
	Title      string          `json:"title"`
	Excerpt    *string         `json:"excerpt"`
	Body       json.RawMessage `json:"body"`
	Markdown   string          `json:"markdown"`
	CoverImage *string         `json:"cover_image"`
	Author     *string         `json:"author"`
	Category   *string         `json:"category"`
	Tags       *[]string       `json:"tags"`
	Status     *PostStatus     `json:"status"`
}

func (r postRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Title, validation.Required.Error("title is required"), validation.RuneLength(1, 200)),
		validation.Field(&r.Slug, validation.RuneLength(0, 200)),
		validation.Field(&r.Excerpt, validation.RuneLength(0, 500)),
		validation.Field(&r.CoverImage, validation.By(safeURL)),
		validation.Field(&r.Category, validation.RuneLength(0, 60)),
		validation.Field(&r.Tags, validation.Length(0, 20)),
		validation.Field(&r.Status, validation.In(StatusDraft, StatusPublished, StatusArchived)),
	)
}

// apply copies the fields present in the request onto p.
func (r postRequest) apply(p *Post) {
	p.Title = r.Title
	if r.Excerpt != nil {
		p.Excerpt = *r.Excerpt
	}
	if r.CoverImage != nil {
		p.CoverImage = *r.CoverImage
	}
	if r.Author != nil {
		p.Author = *r.Author
	}
	if r.Category != nil {
		p.Category = *r.Category
	}
	if r.Tags != nil {
		p.Tags = *r.Tags
	}
	if r.Status != nil {
		p.Status = *r.Status
	}
}

func safeURL(value any) error {
	v, isNil := validation.Indirect(value)
	s, _ := v.(string)
	if !isNil && s != "" && document.SafeURL(s) == "" {
		return errors.New("must be a safe URL")
	}
	return nil
}

// body resolves the request body. ok is false when the request carries
// neither a document nor markdown.
func (r postRequest) body() (doc document.Document, ok bool, err error) {
	switch {
	case len(r.Body) > 0 && string(r.Body) != "null":
		doc, err = document.Parse(r.Body)
		return doc, true, err
	case strings.TrimSpace(r.Markdown) != "":
		return markdown.Parse(r.Markdown), true, nil
	}
	return document.Document{}, false, nil
}

func (a *App) adminListPosts(c echo.Context) error {
	f := postFilter(c)
	f.Status = PostStatus(c.QueryParam("status"))
	posts, p, err := a.Store.ListAllPosts(f)
	if err != nil {
		return err
	}
	return respondPaged(c, posts, p)
}

func (a *App) adminGetPost(c echo.Context) error {
	post, err := a.Store.GetPostAny(c.Param("slug"))
	if err != nil {
		return err
	}
	return respondOK(c, post)
}

// adminSavePost handles POST /posts (slug from the payload or title) and
// PUT /posts/:slug (slug from the path).
func (a *App) adminSavePost(c echo.Context) error {
	var req postRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if slug := c.Param("slug"); slug != "" {
		req.Slug = slug
	}
	if err := req.Validate(); err != nil {
		return err
	}
	body, hasBody, err := req.body()
	if err != nil {
		return err
	}
	// Fields missing from the request keep their stored values.
	post := Post{Slug: req.Slug}
	if post.Slug != "" {
		existing, err := a.Store.GetPostAny(post.Slug)
		switch {
		case err == nil:
			post = existing
		case !errors.Is(err, ErrNotFound):
			return err
		}
	}
	if hasBody {
		if post.Excerpt == post.Body.Excerpt(ExcerptLength) {
			post.Excerpt = ""
		}
		post.Body = body
	}
	req.apply(&post)
	saved, err := a.Store.SavePost(post)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	a.Log.Info("post saved", zap.String("slug", saved.Slug), zap.String("status", string(saved.Status)))
	return respondOK(c, saved)
}

func (a *App) adminSetPostStatus(c echo.Context) error {
	var req struct {
		Status PostStatus `json:"status"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	slug := c.Param("slug")
	if err := a.Store.SetPostStatus(slug, req.Status); err != nil {
		return err
	}
	a.Cache.Invalidate()
	post, err := a.Store.GetPostAny(slug)
	if err != nil {
		return err
	}
	return respondOK(c, post)
}

func (a *App) adminDeletePost(c echo.Context) error {
	slug := c.Param("slug")
	if err := a.Store.DeletePost(slug); err != nil {
		return err
	}
	a.Cache.Invalidate()
	a.Log.Info("post deleted", zap.String("slug", slug))
	return c.NoContent(http.StatusNoContent)
}

func (a *App) adminListPages(c echo.Context) error {
	pages, err := a.Store.ListPages()
	if err != nil {
		return err
	}
	return respondOK(c, pages)
}

func (a *App) adminGetPage(c echo.Context) error {
	page, err := a.Store.GetPage(c.Param("slug"))
	if err != nil {
		return err
	}
	return respondOK(c, page)
}

func (a *App) adminSavePage(c echo.Context) error {
	var req postRequest
	if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validation.ValidateStruct(&req,
		validation.Field(&req.Title, validation.Required.Error("title is required"), validation.RuneLength(1, 200)),
	); err != nil {
		return err
	}
	body, hasBody, err := req.body()
	if err != nil {
		return err
	}
	slug := c.Param("slug")
	if !hasBody {
		existing, err := a.Store.GetPage(slug)
		switch {
		case err == nil:
			body = existing.Body
		case !errors.Is(err, ErrNotFound):
			return err
		}
	}
	page, err := a.Store.SavePage(Page{Slug: slug, Title: req.Title, Body: body})
	if err != nil {
		return err
	}
	return respondOK(c, page)
}

func (a *App) adminListSubmissions(c echo.Context) error {
	page, size := pageQuery(c)
	subs, p, err := a.Store.ListSubmissions(SubmissionFilter{
		Status: SubmissionStatus(c.QueryParam("status")),
		Page:   page,
		Size:   size,
	})
	if err != nil {
		return err
	}
	return respondPaged(c, subs, p)
}

func (a *App) adminGetSubmission(c echo.Context) error {
	sub, err := a.Store.GetSubmission(c.Param("id"))
	if err != nil {
		return err
	}
	return respondOK(c, sub)
}

func (a *App) adminUpdateSubmission(c echo.Context) error {
	var patch SubmissionPatch
	if err := json.NewDecoder(c.Request().Body).Decode(&patch); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validation.ValidateStruct(&patch,
		validation.Field(&patch.Status, validation.In(
			SubmissionNew, SubmissionReviewing, SubmissionScheduled,
			SubmissionCompleted, SubmissionDeclined, SubmissionArchived,
		)),
		validation.Field(&patch.Notes, validation.RuneLength(0, 5000)),
	); err != nil {
		return err
	}
	sub, err := a.Store.UpdateSubmission(c.Param("id"), patch)
	if err != nil {
		return err
	}
	a.Log.Info("submission updated", zap.String("id", sub.ID), zap.String("status", string(sub.Status)))
	return respondOK(c, sub)
}

func (a *App) adminDeleteSubmission(c echo.Context) error {
	if err := a.Store.DeleteSubmission(c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

func (a *App) adminListOutbox(c echo.Context) error {
	page, size := pageQuery(c)
	msgs, p, err := a.Store.ListOutbox(page, size)
	if err != nil {
		return err
	}
	return respondPaged(c, msgs, p)
}

func (a *App) adminPreview(c echo.Context) error {
	var req struct {
		URL string `json:"url"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	preview, err := a.Previewer.Preview(c.Request().Context(), req.URL)
	if err != nil {
		return err
	}
	return respondOK(c, preview)
}
