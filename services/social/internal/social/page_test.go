package social

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/example/movie-platform/services/social/internal/store"
)

func TestNormalizePageRequest(t *testing.T) {
	b := newBase(Options{DefaultPageSize: 20, MaxPageSize: 100}, "test")

	assert.Equal(t, PageRequest{Page: 1, PageSize: 20}, b.normalize(PageRequest{}))
	assert.Equal(t, PageRequest{Page: 1, PageSize: 20}, b.normalize(PageRequest{Page: -3, PageSize: -1}))
	assert.Equal(t, PageRequest{Page: 2, PageSize: 100}, b.normalize(PageRequest{Page: 2, PageSize: 500}))
	assert.Equal(t, PageRequest{Page: 3, PageSize: 7}, b.normalize(PageRequest{Page: 3, PageSize: 7}))
}

func TestPageRequestListing(t *testing.T) {
	assert.Equal(t, store.Listing{Limit: 10, Offset: 20}, PageRequest{Page: 3, PageSize: 10}.listing())
}

func TestPageHasNext(t *testing.T) {
	p := newPage[int](PageRequest{Page: 1, PageSize: 2}, nil, 3)
	assert.NotNil(t, p.Items)
	assert.True(t, p.HasNext())

	p.Page = 2
	assert.False(t, p.HasNext())
}

func TestNewBaseClampsDefaults(t *testing.T) {
	b := newBase(Options{DefaultPageSize: 50, MaxPageSize: 10}, "test")
	assert.Equal(t, 10, b.defaultPageSize)
	assert.Equal(t, 10, b.maxPageSize)
}
