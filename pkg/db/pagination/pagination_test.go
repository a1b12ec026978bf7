package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeClampsInputs(t *testing.T) {
	assert.Equal(t, Page{Page: 1, Limit: 10}, Page{}.Normalize())
	assert.Equal(t, Page{Page: 1, Limit: 10}, Page{Page: -3, Limit: -1}.Normalize())
	assert.Equal(t, Page{Page: 7, Limit: 250}, Page{Page: 7, Limit: 9000}.Normalize())
	assert.Equal(t, Page{Page: 2, Limit: 25}, Page{Page: 2, Limit: 25}.Normalize())
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Page{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 40, Page{Page: 5, Limit: 10}.Offset())
	assert.Equal(t, 0, Page{}.Offset())
}

func TestBuildPageInfo(t *testing.T) {
	info := BuildPageInfo(Page{Page: 2, Limit: 10}, 45)
	assert.Equal(t, 2, info.CurrentPage)
	assert.Equal(t, 5, info.TotalPages)
	assert.Equal(t, int64(45), info.TotalCount)
	assert.True(t, info.HasNextPage)
	assert.True(t, info.HasPrevPage)

	last := BuildPageInfo(Page{Page: 5, Limit: 10}, 45)
	assert.False(t, last.HasNextPage)
	assert.True(t, last.HasPrevPage)

	empty := BuildPageInfo(Page{Page: 1, Limit: 10}, 0)
	assert.Equal(t, 0, empty.TotalPages)
	assert.False(t, empty.HasNextPage)
	assert.False(t, empty.HasPrevPage)

	exact := BuildPageInfo(Page{Page: 1, Limit: 10}, 10)
	assert.Equal(t, 1, exact.TotalPages)
	assert.False(t, exact.HasNextPage)
}
