package folio

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/eringen/folio/document"
	"github.com/eringen/folio/editor"
)

// maxCommandBody caps a single command batch.
const maxCommandBody = 4 << 20

type sessionResponse struct {
	ID    string       `json:"id"`
	Kind  string       `json:"kind"`
	Slug  string       `json:"slug"`
	State editor.State `json:"state"`
}

func newSessionResponse(s *EditorSession) sessionResponse {
	kind, slug := s.Target()
	return sessionResponse{ID: s.ID, Kind: kind, Slug: slug, State: s.State()}
}

// editorCreateSession opens a session over an existing post or page, or a
// blank document when the target does not exist yet. An empty kind opens a
// scratch session that cannot be saved.
func (a *App) editorCreateSession(c echo.Context) error {
	var req struct {
		Kind string `json:"kind"`
		Slug string `json:"slug"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	slug := strings.TrimSpace(req.Slug)
	doc := document.New()
	switch req.Kind {
	case KindPost:
		if slug != "" {
			post, err := a.Store.GetPostAny(slug)
			if err != nil {
				return err
			}
			doc = post.Body
		}
	case KindPage:
		slug = Slugify(slug)
		if slug == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "page slug is required")
		}
		page, err := a.Store.GetPage(slug)
		switch {
		case err == nil:
			doc = page.Body
		case !errors.Is(err, ErrNotFound):
			return err
		}
	case "":
		slug = ""
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown session kind")
	}
	s := a.Sessions.Create(req.Kind, slug, doc)
	return c.JSON(http.StatusCreated, newSessionResponse(s))
}

func (a *App) editorGetSession(c echo.Context) error {
	s, err := a.Sessions.Get(c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, newSessionResponse(s))
}

func (a *App) editorDeleteSession(c echo.Context) error {
	a.Sessions.Delete(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// decodeCommands accepts a single command object, an array of commands or
// {"commands": [...]}.
func decodeCommands(r io.Reader) ([]editor.Command, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxCommandBody))
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("empty command body")
	}
	if data[0] == '[' {
		var cmds []editor.Command
		if err := json.Unmarshal(data, &cmds); err != nil {
			return nil, err
		}
		return cmds, nil
	}
	var batch struct {
		Commands []editor.Command `json:"commands"`
	}
	if err := json.Unmarshal(data, &batch); err == nil && batch.Commands != nil {
		return batch.Commands, nil
	}
	var cmd editor.Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		return nil, err
	}
	return []editor.Command{cmd}, nil
}

// editorExec runs a batch of commands. On failure the response carries the
// error and the state after the commands that succeeded.
func (a *App) editorExec(c echo.Context) error {
	s, err := a.Sessions.Get(c.Param("id"))
	if err != nil {
		return err
	}
	cmds, err := decodeCommands(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid command body")
	}
	state := s.State()
	for _, cmd := range cmds {
		a.fillEmbed(c, s, &cmd)
		state, err = s.Exec(cmd)
		if err != nil {
			code, msg := errorStatus(err)
			return c.JSON(code, struct {
				errorResponse
				State editor.State `json:"state"`
			}{
				errorResponse: errorResponse{OK: 0, Code: code, Message: msg},
				State:         state,
			})
		}
	}
	return c.JSON(http.StatusOK, state)
}

// fillEmbed fetches link preview metadata for embed insertions that arrive
// with a bare URL.
func (a *App) fillEmbed(c echo.Context, s *EditorSession, cmd *editor.Command) {
	if cmd.URL == "" || cmd.Title != "" {
		return
	}
	switch cmd.Command {
	case "insertEmbed":
	case "slashAccept":
		menu := s.Slash()
		if menu == nil || menu.Active < 0 || menu.Active >= len(menu.Items) || menu.Items[menu.Active].ID != "embed" {
			return
		}
	default:
		return
	}
	p, err := a.Previewer.Preview(c.Request().Context(), cmd.URL)
	if err != nil {
		a.Log.Warn("link preview failed", zap.String("url", cmd.URL), zap.Error(err))
		return
	}
	cmd.Title = p.Title
	if cmd.Description == "" {
		cmd.Description = p.Description
	}
	if cmd.Image == "" {
		cmd.Image = p.Image
	}
	if cmd.Site == "" {
		cmd.Site = p.Site
	}
}

// editorSave writes the session document back to its post or page. Post
// metadata is optional; a post saved for the first time needs a title.
func (a *App) editorSave(c echo.Context) error {
	s, err := a.Sessions.Get(c.Param("id"))
	if err != nil {
		return err
	}
	var req struct {
		Title      *string     `json:"title"`
		Slug       string      `json:"slug"`
		Excerpt    *string     `json:"excerpt"`
		CoverImage *string     `json:"cover_image"`
		Author     *string     `json:"author"`
		Category   *string     `json:"category"`
		Tags       []string    `json:"tags"`
		Status     *PostStatus `json:"status"`
	}
	if c.Request().ContentLength != 0 {
		if err := json.NewDecoder(c.Request().Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
		}
	}
	kind, slug := s.Target()
	doc := s.Document()

	switch kind {
	case KindPage:
		page := Page{Slug: slug, Body: doc}
		if existing, err := a.Store.GetPage(slug); err == nil {
			page.Title = existing.Title
		} else if !errors.Is(err, ErrNotFound) {
			return err
		}
		if req.Title != nil {
			page.Title = *req.Title
		}
		saved, err := a.Store.SavePage(page)
		if err != nil {
			return err
		}
		a.Log.Info("page saved", zap.String("slug", saved.Slug), zap.String("session", s.ID))
		return respondOK(c, saved)

	case KindPost:
		var post Post
		if slug != "" {
			existing, err := a.Store.GetPostAny(slug)
			if err != nil && !errors.Is(err, ErrNotFound) {
				return err
			}
			post = existing
			post.Slug = slug
			// A derived excerpt is derived again from the edited body.
			if post.Excerpt == existing.Body.Excerpt(ExcerptLength) {
				post.Excerpt = ""
			}
		} else {
			post.Slug = req.Slug
		}
		post.Body = doc
		if req.Title != nil {
			post.Title = *req.Title
		}
		if strings.TrimSpace(post.Title) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "title is required")
		}
		if req.Excerpt != nil {
			post.Excerpt = *req.Excerpt
		}
		if req.CoverImage != nil {
			if err := safeURL(*req.CoverImage); err != nil {
				return echo.NewHTTPError(http.StatusBadRequest, "cover_image: "+err.Error())
			}
			post.CoverImage = *req.CoverImage
		}
		if req.Author != nil {
			post.Author = *req.Author
		}
		if req.Category != nil {
			post.Category = *req.Category
		}
		if req.Tags != nil {
			post.Tags = req.Tags
		}
		if req.Status != nil {
			post.Status = *req.Status
		}
		saved, err := a.Store.SavePost(post)
		if err != nil {
			return err
		}
		s.setSlug(saved.Slug)
		a.Cache.Invalidate()
		a.Log.Info("post saved", zap.String("slug", saved.Slug), zap.String("session", s.ID))
		return respondOK(c, saved)
	}
	return echo.NewHTTPError(http.StatusBadRequest, "scratch sessions cannot be saved")
}
