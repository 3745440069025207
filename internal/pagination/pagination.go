// Package pagination holds the page/page-size handling shared by list and
// search endpoints.
package pagination

const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

// AllowedPageSizes is the closed set of page sizes the portal UI offers.
// Anything else in the query string is clamped to DefaultPageSize.
var AllowedPageSizes = []int{10, 20, 50}

type Params struct {
	Page     int
	PageSize int
}

// Normalize clamps raw query values into a valid Params.
func Normalize(page, pageSize int) Params {
	if page < 1 {
		page = DefaultPage
	}

	allowed := false
	for _, size := range AllowedPageSizes {
		if pageSize == size {
			allowed = true
			break
		}
	}
	if !allowed {
		pageSize = DefaultPageSize
	}

	return Params{Page: page, PageSize: pageSize}
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Meta is the pagination block returned next to every result page.
type Meta struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	TotalItems int64 `json:"totalItems"`
	TotalPages int   `json:"totalPages"`
	HasPrev    bool  `json:"hasPrev"`
	HasNext    bool  `json:"hasNext"`
	PrevPage   int   `json:"prevPage"`
	NextPage   int   `json:"nextPage"`
}

func NewMeta(p Params, total int64) Meta {
	totalPages := int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	meta := Meta{
		Page:       p.Page,
		PageSize:   p.PageSize,
		TotalItems: total,
		TotalPages: totalPages,
		HasPrev:    p.Page > 1,
		HasNext:    p.Page < totalPages,
	}
	if meta.HasPrev {
		meta.PrevPage = p.Page - 1
	}
	if meta.HasNext {
		meta.NextPage = p.Page + 1
	}

	return meta
}
