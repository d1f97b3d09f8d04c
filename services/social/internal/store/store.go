// Package store holds the persistence contracts of the social service and
// their in-memory and Postgres implementations.
//
// Every command path goes through an InTx call so that checks and writes on
// one uniqueness key commit or roll back together.
package store

import "errors"

// Sentinel errors
var (
	ErrNotFound  = errors.New("store: not found")
	ErrDuplicate = errors.New("store: duplicate key")
)

// Listing is an offset window over an ordered result.
type Listing struct {
	Limit  int
	Offset int
}

// window returns the [lo, hi) slice bounds of l over n items.
func (l Listing) window(n int) (int, int) {
	lo := l.Offset
	if lo < 0 {
		lo = 0
	}
	if lo > n {
		lo = n
	}
	hi := n
	if l.Limit > 0 && lo+l.Limit < n {
		hi = lo + l.Limit
	}
	return lo, hi
}
