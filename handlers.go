package folio

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// postFilter reads the feed filter from the query string.
func postFilter(c echo.Context) PostFilter {
	page, size := pageQuery(c)
	return PostFilter{
		Tag:      c.QueryParam("tag"),
		Category: c.QueryParam("category"),
		Query:    c.QueryParam("q"),
		Page:     page,
		Size:     size,
	}
}

func (a *App) handleHome(c echo.Context) error {
	f := postFilter(c)
	posts, pagination, err := a.Cache.ListPosts(f)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	categories, err := a.Cache.ListCategories()
	if err != nil {
		return err
	}
	data := HomeData{
		Site: a.Config,
		Meta: PageMeta{
			Title:       a.Config.Name,
			Description: a.Config.Description,
			URL:         BuildURL(a.Config.URL),
			OGType:      "website",
		},
		Posts:      posts,
		Pagination: pagination,
		Filter:     f,
		Tags:       tags,
		Categories: categories,
	}
	if c.Request().Header.Get("HX-Request") == "true" && c.QueryParam("partial") == "blog" {
		return Render(c, a.Views.BlogSection(data))
	}
	return Render(c, a.Views.Home(data))
}

func (a *App) handlePost(c echo.Context) error {
	post, err := a.Cache.GetPost(c.Param("slug"))
	if err != nil {
		return err
	}
	posts, err := a.Cache.AllPosts()
	if err != nil {
		return err
	}
	return Render(c, a.Views.Post(PostData{
		Site: a.Config,
		Meta: PageMeta{
			Title:       post.Title + " · " + a.Config.Name,
			Description: post.Excerpt,
			URL:         BuildURL(a.Config.URL, "blog", post.Slug),
			OGType:      "article",
			Image:       post.CoverImage,
		},
		Post:    post,
		Related: FilterRelatedPosts(post, posts),
	}))
}

func (a *App) handleAbout(c echo.Context) error {
	page, err := a.Store.GetPage("about")
	if err != nil {
		return err
	}
	return Render(c, a.Views.Page(PageData{
		Site: a.Config,
		Meta: PageMeta{
			Title:       page.Title + " · " + a.Config.Name,
			Description: page.Body.Excerpt(ExcerptLength),
			URL:         BuildURL(a.Config.URL, page.Slug),
			OGType:      "website",
		},
		Page: page,
	}))
}

func (a *App) handleSocial(c echo.Context) error {
	threads, err := a.Social.Threads(c.Request().Context())
	if err != nil {
		a.Log.Warn("social feed unavailable", zap.Error(err))
	}
	return Render(c, a.Views.Social(SocialData{
		Site: a.Config,
		Meta: PageMeta{
			Title:       "Social · " + a.Config.Name,
			Description: "Latest posts from " + a.Config.Name,
			URL:         BuildURL(a.Config.URL, "social"),
			OGType:      "website",
		},
		Threads:     threads,
		Unavailable: err != nil,
	}))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Cache.AllPosts()
	if err != nil {
		return err
	}
	pages, err := a.Store.ListPages()
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts, pages)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.AllPosts()
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func handleBlogRedirect(c echo.Context) error {
	return c.Redirect(http.StatusMovedPermanently, "/")
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(filepath.Join(a.staticDir, "favicon.svg"))
}

// handleRobots serves robots.txt from the static dir, or a default that
// keeps crawlers out of the admin and points them at the sitemap.
func (a *App) handleRobots(c echo.Context) error {
	path := filepath.Join(a.staticDir, "robots.txt")
	if _, err := os.Stat(path); err == nil {
		return c.File(path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	body := fmt.Sprintf("User-agent: *\nDisallow: /admin/\nDisallow: /api/\n\nSitemap: %s\n",
		a.Config.URL+"/sitemap.xml")
	return c.String(http.StatusOK, body)
}
