package projection

import "math"

// PageRequest carries 1-based paging input.
type PageRequest struct {
	Page  int
	Limit int
}

// MaxPageSize bounds any single listing.
const MaxPageSize = 100

// MaxPage keeps (Page-1)*Limit within an int for every allowed limit.
const MaxPage = math.MaxInt / MaxPageSize

// Normalize applies defaults: page 1 and the supplied default limit, capped at MaxPageSize.
func (r PageRequest) Normalize(defaultLimit int) PageRequest {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Page > MaxPage {
		r.Page = MaxPage
	}
	if r.Limit < 1 {
		r.Limit = defaultLimit
	}
	if r.Limit > MaxPageSize {
		r.Limit = MaxPageSize
	}
	return r
}

// Offset returns the number of rows to skip. It saturates at math.MaxInt rather than wrapping.
func (r PageRequest) Offset() int {
	if r.Page < 1 || r.Limit < 1 {
		return 0
	}
	if r.Page-1 > math.MaxInt/r.Limit {
		return math.MaxInt
	}
	return (r.Page - 1) * r.Limit
}

// Pagination describes where a page sits within the full result.
type Pagination struct {
	Current int   `json:"current"`
	Pages   int   `json:"pages"`
	Total   int64 `json:"total"`
}

// NewPagination computes page count as ceil(total/limit).
func NewPagination(req PageRequest, total int64) Pagination {
	pages := 0
	if req.Limit > 0 {
		pages = int((total + int64(req.Limit) - 1) / int64(req.Limit))
	}
	return Pagination{Current: req.Page, Pages: pages, Total: total}
}

// Page is a slice of results plus its pagination metadata.
type Page[T any] struct {
	Items      []T
	Pagination Pagination
}
