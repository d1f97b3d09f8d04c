package store

import (
	"context"
	"time"
)

// FollowEdge is a directed follow relationship.
type FollowEdge struct {
	FollowerID  string    `json:"follower_id"`
	FollowingID string    `json:"following_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// BlockEdge is a directed block relationship.
type BlockEdge struct {
	BlockerID string    `json:"blocker_id"`
	BlockedID string    `json:"blocked_id"`
	CreatedAt time.Time `json:"created_at"`
}

// RelationshipTx is the set of statements available inside one
// relationship transaction.
type RelationshipTx interface {
	// LockPair serializes transactions touching the unordered pair {a, b}
	// until the surrounding transaction ends.
	LockPair(ctx context.Context, a, b string) error
	// UserActive reports whether the user exists in the directory and is not
	// deleted. The read holds until the transaction ends, so a concurrent
	// deletion commits either before it or after the whole transaction.
	UserActive(ctx context.Context, userID string) (bool, error)
	FollowExists(ctx context.Context, followerID, followingID string) (bool, error)
	BlockExists(ctx context.Context, blockerID, blockedID string) (bool, error)
	// InsertFollow returns ErrDuplicate if the edge already exists.
	InsertFollow(ctx context.Context, e FollowEdge) error
	DeleteFollow(ctx context.Context, followerID, followingID string) (bool, error)
	// InsertBlock returns ErrDuplicate if the edge already exists.
	InsertBlock(ctx context.Context, e BlockEdge) error
	DeleteBlock(ctx context.Context, blockerID, blockedID string) (bool, error)
}

// RelationshipStore defines the contract for follow/block persistence.
type RelationshipStore interface {
	InTx(ctx context.Context, fn func(RelationshipTx) error) error

	IsFollowing(ctx context.Context, followerID, followingID string) (bool, error)
	IsBlocked(ctx context.Context, blockerID, blockedID string) (bool, error)
	// List methods order by created_at DESC and return the unwindowed total.
	ListFollowers(ctx context.Context, userID string, l Listing) ([]FollowEdge, int, error)
	ListFollowing(ctx context.Context, userID string, l Listing) ([]FollowEdge, int, error)
	ListBlocked(ctx context.Context, userID string, l Listing) ([]BlockEdge, int, error)
	CountFollows(ctx context.Context, userID string) (followers, following int, err error)
}
