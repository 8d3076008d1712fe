package folio

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultPage = 1
	DefaultSize = 10
	MaxSize     = 100
)

// Pagination metadata returned with paginated responses.
type Pagination struct {
	Total       int64 `json:"total"`
	CurrentPage int   `json:"current_page"`
	TotalPage   int   `json:"total_page"`
	Size        int   `json:"size"`
	HasNextPage bool  `json:"has_next_page"`
}

// HasPrevPage reports whether a page precedes the current one.
func (p Pagination) HasPrevPage() bool { return p.CurrentPage > 1 }

// normalizePage clamps page and size to valid values.
func normalizePage(page, size int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if size < 1 {
		size = DefaultSize
	}
	if size > MaxSize {
		size = MaxSize
	}
	return page, size
}

func newPagination(total int64, page, size int) Pagination {
	page, size = normalizePage(page, size)
	totalPage := int((total + int64(size) - 1) / int64(size))
	return Pagination{
		Total:       total,
		CurrentPage: page,
		TotalPage:   totalPage,
		Size:        size,
		HasNextPage: page < totalPage,
	}
}

// pageQuery extracts page and size from the request query.
func pageQuery(c echo.Context) (int, int) {
	return normalizePage(parseIntOr(c.QueryParam("page"), DefaultPage), parseIntOr(c.QueryParam("size"), DefaultSize))
}

// paginate returns the slice of items on the requested page.
func paginate[T any](items []T, page, size int) ([]T, Pagination) {
	p := newPagination(int64(len(items)), page, size)
	start := (p.CurrentPage - 1) * p.Size
	if start >= len(items) {
		return []T{}, p
	}
	end := start + p.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end], p
}

func parseIntOr(s string, def int) int {
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
