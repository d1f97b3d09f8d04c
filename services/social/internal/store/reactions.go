package store

import (
	"context"
	"time"
)

type ReactionKind string

const (
	ReactionUpvote   ReactionKind = "upvote"
	ReactionDownvote ReactionKind = "downvote"
)

func (k ReactionKind) Valid() bool {
	return k == ReactionUpvote || k == ReactionDownvote
}

// Reaction is the single vote a user holds on a comment.
type Reaction struct {
	ID        int64        `json:"id"`
	UserID    string       `json:"user_id"`
	CommentID int64        `json:"comment_id"`
	Kind      ReactionKind `json:"kind"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty"`
}

// ReactionCounts are counted over all reactions of one comment.
type ReactionCounts struct {
	Upvotes   int
	Downvotes int
}

type ReactionTx interface {
	// CommentActive reports whether the comment exists and is not deleted,
	// holding a share lock on it for the rest of the transaction.
	CommentActive(ctx context.Context, commentID int64) (bool, error)
	GetForUpdate(ctx context.Context, userID string, commentID int64) (Reaction, error)
	// Insert returns ErrDuplicate when (user, comment) already has a row.
	Insert(ctx context.Context, r Reaction) (Reaction, error)
	UpdateKind(ctx context.Context, id int64, kind ReactionKind, updatedAt time.Time) error
	Delete(ctx context.Context, userID string, commentID int64) (bool, error)
}

// ReactionStore defines the contract for comment reaction persistence.
type ReactionStore interface {
	InTx(ctx context.Context, fn func(ReactionTx) error) error

	Get(ctx context.Context, userID string, commentID int64) (Reaction, error)
	Counts(ctx context.Context, commentID int64) (ReactionCounts, error)
}
