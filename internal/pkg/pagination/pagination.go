package pagination

import "math"

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Params is a normalized 1-indexed page request.
type Params struct {
	Page    int
	PerPage int
}

// New clamps page to >= 1 and perPage to 1..MaxPerPage, falling back to
// DefaultPerPage for non-positive values.
func New(page, perPage int) Params {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Params{Page: page, PerPage: perPage}
}

// Offset is the number of rows to skip for this page. It saturates at
// math.MaxInt instead of wrapping for huge page numbers.
func (p Params) Offset() int {
	if p.Page < 1 || p.PerPage < 1 {
		return 0
	}
	if p.Page-1 > math.MaxInt/p.PerPage {
		return math.MaxInt
	}
	return (p.Page - 1) * p.PerPage
}

// Beyond reports whether the page starts past the last of total rows, in
// which case there is nothing to query.
func (p Params) Beyond(total int64) bool {
	return int64(p.Page-1) >= int64(Pages(total, p.PerPage))
}

// Limit is the maximum number of rows on this page.
func (p Params) Limit() int {
	return p.PerPage
}

// Pages returns ceil(total / perPage).
func Pages(total int64, perPage int) int {
	if perPage <= 0 || total <= 0 {
		return 0
	}
	pages := total / int64(perPage)
	if total%int64(perPage) > 0 {
		pages++
	}
	return int(pages)
}

// Page is one page of results. A page beyond the last one has no items but
// carries the same Total and Pages. PerPage is the effective page size that
// Pages was computed with, after clamping.
type Page[T any] struct {
	Items   []T   `json:"items"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
}

// NewPage assembles a Page, never returning nil Items.
func NewPage[T any](items []T, total int64, p Params) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{
		Items:   items,
		Total:   total,
		Pages:   Pages(total, p.PerPage),
		Page:    p.Page,
		PerPage: p.PerPage,
	}
}

// Map converts the items of a page, keeping its metadata.
func Map[T, U any](in Page[T], fn func(T) U) Page[U] {
	out := make([]U, 0, len(in.Items))
	for _, item := range in.Items {
		out = append(out, fn(item))
	}
	return Page[U]{Items: out, Total: in.Total, Pages: in.Pages, Page: in.Page, PerPage: in.PerPage}
}
