package folio

import (
	"github.com/labstack/echo/v4"
)

func (a *App) apiListPosts(c echo.Context) error {
	posts, p, err := a.Cache.ListPosts(postFilter(c))
	if err != nil {
		return err
	}
	return respondPaged(c, posts, p)
}

func (a *App) apiGetPost(c echo.Context) error {
	post, err := a.Cache.GetPost(c.Param("slug"))
	if err != nil {
		return err
	}
	return respondOK(c, post)
}

func (a *App) apiListTags(c echo.Context) error {
	tags, err := a.Cache.ListTags()
	if err != nil {
		return err
	}
	return respondOK(c, nonNil(tags))
}

func (a *App) apiListCategories(c echo.Context) error {
	cats, err := a.Cache.ListCategories()
	if err != nil {
		return err
	}
	return respondOK(c, nonNil(cats))
}

func (a *App) apiGetPage(c echo.Context) error {
	page, err := a.Store.GetPage(c.Param("slug"))
	if err != nil {
		return err
	}
	return respondOK(c, page)
}

func (a *App) apiSocialThreads(c echo.Context) error {
	threads, err := a.Social.Threads(c.Request().Context())
	if err != nil {
		return err
	}
	return respondOK(c, threads)
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
