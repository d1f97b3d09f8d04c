package social

import "github.com/example/movie-platform/services/social/internal/store"

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PageRequest is a 1-based page selector.
type PageRequest struct {
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
}

// Page is one window of an ordered listing. Items is never nil.
type Page[T any] struct {
	Items    []T `json:"items"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	Total    int `json:"total"`
}

func (p Page[T]) HasNext() bool {
	return p.Page*p.PageSize < p.Total
}

func (b base) normalize(req PageRequest) PageRequest {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = b.defaultPageSize
	}
	if req.PageSize > b.maxPageSize {
		req.PageSize = b.maxPageSize
	}
	return req
}

func (r PageRequest) listing() store.Listing {
	return store.Listing{Limit: r.PageSize, Offset: (r.Page - 1) * r.PageSize}
}

func newPage[T any](req PageRequest, items []T, total int) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Page: req.Page, PageSize: req.PageSize, Total: total}
}
