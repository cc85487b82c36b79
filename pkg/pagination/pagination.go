package pagination

import (
	"fmt"
	"strings"
)

const (
	// DefaultPageSize is the standard page size when one is not provided.
	DefaultPageSize = 25
	// MaxPageSize caps how many rows any page query can request.
	MaxPageSize = 100
)

// Params holds offset pagination inputs from controllers or services.
type Params struct {
	Page      int
	PageSize  int
	SortKey   string
	Ascending bool
}

// Page wraps one page of results with the aggregate counts.
type Page[T any] struct {
	Items      []T   `json:"items"`
	TotalItems int64 `json:"total_items"`
	TotalPages int   `json:"total_pages"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
}

// Normalize clamps the page and page size into their allowed ranges and
// defaults the sort key.
func (p Params) Normalize(defaultSortKey string) Params {
	if p.Page <= 0 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	if p.PageSize > MaxPageSize {
		p.PageSize = MaxPageSize
	}
	if strings.TrimSpace(p.SortKey) == "" {
		p.SortKey = defaultSortKey
	}
	return p
}

// Offset returns the row offset for the normalized params.
func (p Params) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// OrderClause renders the SQL ordering clause for the params. The sort key
// must already be vetted against an allow-list by the caller.
func (p Params) OrderClause() string {
	direction := "DESC"
	if p.Ascending {
		direction = "ASC"
	}
	return fmt.Sprintf("%s %s", p.SortKey, direction)
}

// NewPage assembles a Page from a result slice and the total row count.
func NewPage[T any](items []T, total int64, params Params) *Page[T] {
	if items == nil {
		items = []T{}
	}
	totalPages := 0
	if params.PageSize > 0 {
		totalPages = int((total + int64(params.PageSize) - 1) / int64(params.PageSize))
	}
	return &Page[T]{
		Items:      items,
		TotalItems: total,
		TotalPages: totalPages,
		Page:       params.Page,
		PageSize:   params.PageSize,
	}
}
