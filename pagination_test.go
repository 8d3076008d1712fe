package folio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	assert.Equal(t, Pagination{Total: 0, CurrentPage: 1, TotalPage: 0, Size: 10}, newPagination(0, 0, 0))
	assert.Equal(t, Pagination{Total: 21, CurrentPage: 2, TotalPage: 3, Size: 10, HasNextPage: true}, newPagination(21, 2, 10))
	assert.Equal(t, MaxSize, newPagination(5, 1, 1000).Size)

	p := newPagination(21, 3, 10)
	assert.False(t, p.HasNextPage)
	assert.True(t, p.HasPrevPage())
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}

	page, p := paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page)
	assert.True(t, p.HasNextPage)

	page, _ = paginate(items, 3, 2)
	assert.Equal(t, []int{5}, page)

	page, _ = paginate(items, 4, 2)
	assert.Equal(t, []int{}, page)

	page, p = paginate([]int(nil), 1, 10)
	assert.Equal(t, []int{}, page)
	assert.Equal(t, int64(0), p.Total)
}
