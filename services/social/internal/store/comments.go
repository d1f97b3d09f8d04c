package store

import (
	"context"
	"time"
)

// Lifecycle is the soft-delete state of a comment: Active, or Deleted at a
// point in time. The zero value is Active.
type Lifecycle struct {
	deletedAt *time.Time
}

// Deleted builds a lifecycle that was soft-deleted at t.
func Deleted(t time.Time) Lifecycle {
	t = t.UTC()
	return Lifecycle{deletedAt: &t}
}

// LifecycleFrom maps a nullable deleted_at column.
func LifecycleFrom(deletedAt *time.Time) Lifecycle {
	if deletedAt == nil {
		return Lifecycle{}
	}
	return Deleted(*deletedAt)
}

func (l Lifecycle) Active() bool { return l.deletedAt == nil }

// DeletedAt returns the deletion instant, or nil while active.
func (l Lifecycle) DeletedAt() *time.Time {
	if l.deletedAt == nil {
		return nil
	}
	t := *l.deletedAt
	return &t
}

// SoftDelete is the only transition: Active -> Deleted{now}. It reports
// false and leaves l unchanged when already deleted.
func (l Lifecycle) SoftDelete(now time.Time) (Lifecycle, bool) {
	if !l.Active() {
		return l, false
	}
	return Deleted(now), true
}

// Comment represents a single comment row. The tree is a flat table keyed by
// ID; ParentID links a reply to its parent.
type Comment struct {
	ID          int64
	AuthorID    string
	SubjectType string
	SubjectID   string
	ParentID    *int64
	Depth       int
	Content     string
	EditedAt    *time.Time
	Lifecycle   Lifecycle
	CreatedAt   time.Time
}

func (c Comment) IsRoot() bool   { return c.ParentID == nil }
func (c Comment) IsEdited() bool { return c.EditedAt != nil }

// CommentStats are live counts for one comment.
type CommentStats struct {
	Upvotes   int
	Downvotes int
	Replies   int // active direct children
}

// CommentTx is the set of statements available inside one comment transaction.
type CommentTx interface {
	// GetForUpdate locks the row. Returns ErrNotFound when missing; deleted
	// rows are returned with an inactive Lifecycle.
	GetForUpdate(ctx context.Context, id int64) (Comment, error)
	// Insert assigns the ID and returns the stored row.
	Insert(ctx context.Context, c Comment) (Comment, error)
	UpdateContent(ctx context.Context, id int64, content string, editedAt time.Time) error
	SetLifecycle(ctx context.Context, id int64, l Lifecycle) error
}

// CommentStore defines the contract for comment persistence.
type CommentStore interface {
	InTx(ctx context.Context, fn func(CommentTx) error) error

	// Get returns deleted rows too; callers decide visibility.
	Get(ctx context.Context, id int64) (Comment, error)
	// ListRoots returns active root comments, newest first.
	ListRoots(ctx context.Context, subjectType, subjectID string, l Listing) ([]Comment, int, error)
	// ListReplies returns active direct children, oldest first.
	ListReplies(ctx context.Context, parentID int64, l Listing) ([]Comment, int, error)
	// Stats returns an entry for every requested id, zero-valued when unknown.
	Stats(ctx context.Context, ids []int64) (map[int64]CommentStats, error)
}
