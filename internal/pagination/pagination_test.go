package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		page     int
		pageSize int
		want     Params
	}{
		{name: "defaults", page: 0, pageSize: 0, want: Params{Page: 1, PageSize: 20}},
		{name: "valid", page: 3, pageSize: 50, want: Params{Page: 3, PageSize: 50}},
		{name: "negative page", page: -2, pageSize: 10, want: Params{Page: 1, PageSize: 10}},
		{name: "unsupported size clamps", page: 2, pageSize: 33, want: Params{Page: 2, PageSize: 20}},
		{name: "oversized clamps", page: 1, pageSize: 1000, want: Params{Page: 1, PageSize: 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.page, tt.pageSize))
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, PageSize: 20}.Offset())
	assert.Equal(t, 20, Params{Page: 2, PageSize: 20}.Offset())
	assert.Equal(t, 100, Params{Page: 11, PageSize: 10}.Offset())
}

func TestNewMeta(t *testing.T) {
	meta := NewMeta(Params{Page: 2, PageSize: 10}, 25)
	assert.Equal(t, 2, meta.Page)
	assert.Equal(t, 3, meta.TotalPages)
	assert.EqualValues(t, 25, meta.TotalItems)
	assert.True(t, meta.HasPrev)
	assert.True(t, meta.HasNext)
	assert.Equal(t, 1, meta.PrevPage)
	assert.Equal(t, 3, meta.NextPage)
}

func TestNewMetaEdges(t *testing.T) {
	// empty result set still reports one page
	meta := NewMeta(Params{Page: 1, PageSize: 20}, 0)
	assert.Equal(t, 1, meta.TotalPages)
	assert.False(t, meta.HasPrev)
	assert.False(t, meta.HasNext)

	// exact multiple
	meta = NewMeta(Params{Page: 2, PageSize: 10}, 20)
	assert.Equal(t, 2, meta.TotalPages)
	assert.False(t, meta.HasNext)

	// page beyond the last still reports prev correctly
	meta = NewMeta(Params{Page: 5, PageSize: 10}, 20)
	assert.True(t, meta.HasPrev)
	assert.False(t, meta.HasNext)
}
