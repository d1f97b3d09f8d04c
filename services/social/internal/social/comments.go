package social

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/example/movie-platform/services/social/internal/store"
)

const (
	MaxContentLength = 10000

	// SubjectMovie is the subject type checked against the movie catalog.
	SubjectMovie = "Movie"
)

// CommentView is a comment with its live reaction and reply counts.
type CommentView struct {
	ID          int64      `json:"id"`
	AuthorID    string     `json:"author_id"`
	SubjectType string     `json:"subject_type"`
	SubjectID   string     `json:"subject_id"`
	ParentID    *int64     `json:"parent_id,omitempty"`
	Depth       int        `json:"depth"`
	Content     string     `json:"content"`
	IsEdited    bool       `json:"is_edited"`
	EditedAt    *time.Time `json:"edited_at,omitempty"`
	IsDeleted   bool       `json:"is_deleted"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	Upvotes     int        `json:"upvotes"`
	Downvotes   int        `json:"downvotes"`
	Replies     int        `json:"replies"`
}

func NewCommentView(c store.Comment, s store.CommentStats) CommentView {
	return CommentView{
		ID:          c.ID,
		AuthorID:    c.AuthorID,
		SubjectType: c.SubjectType,
		SubjectID:   c.SubjectID,
		ParentID:    c.ParentID,
		Depth:       c.Depth,
		Content:     c.Content,
		IsEdited:    c.IsEdited(),
		EditedAt:    c.EditedAt,
		IsDeleted:   !c.Lifecycle.Active(),
		DeletedAt:   c.Lifecycle.DeletedAt(),
		CreatedAt:   c.CreatedAt,
		Upvotes:     s.Upvotes,
		Downvotes:   s.Downvotes,
		Replies:     s.Replies,
	}
}

// CommentThread owns the comment tree and its soft-delete lifecycle.
type CommentThread struct {
	base
	store  store.CommentStore
	movies store.MovieCatalog
}

// NewCommentThread builds a thread component. A nil catalog skips the
// movie existence check on new root comments.
func NewCommentThread(cs store.CommentStore, movies store.MovieCatalog, opts Options) *CommentThread {
	return &CommentThread{base: newBase(opts, "comments"), store: cs, movies: movies}
}

// normalizeContent trims content and enforces the length bounds in runes.
func normalizeContent(content string) (string, error) {
	content = strings.TrimSpace(content)
	n := utf8.RuneCountInString(content)
	if n < 1 || n > MaxContentLength {
		return "", invalid("invalid_content", "content must be between 1 and 10000 characters")
	}
	return content, nil
}

var errCommentNotFound = notFound("comment_not_found", "comment not found")

// lockActive loads a comment for mutation, failing NotFound when missing or
// soft-deleted.
func lockActive(ctx context.Context, tx store.CommentTx, id int64) (store.Comment, error) {
	c, err := tx.GetForUpdate(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return store.Comment{}, errCommentNotFound
	}
	if err != nil {
		return store.Comment{}, err
	}
	if !c.Lifecycle.Active() {
		return store.Comment{}, errCommentNotFound
	}
	return c, nil
}

func (t *CommentThread) CreateComment(ctx context.Context, authorID, subjectType, subjectID, content string) (store.Comment, error) {
	authorID, subjectType, subjectID = normID(authorID), strings.TrimSpace(subjectType), normID(subjectID)
	if subjectType == "" || subjectID == "" {
		return store.Comment{}, invalid("invalid_subject", "subject type and id are required")
	}
	content, err := normalizeContent(content)
	if err != nil {
		return store.Comment{}, err
	}
	if subjectType == SubjectMovie && t.movies != nil {
		ok, err := t.movies.MovieExists(ctx, subjectID)
		if err != nil {
			return store.Comment{}, t.passthrough("create comment", err)
		}
		if !ok {
			return store.Comment{}, notFound("movie_not_found", "movie not found")
		}
	}

	var created store.Comment
	err = t.store.InTx(ctx, func(tx store.CommentTx) error {
		var err error
		created, err = tx.Insert(ctx, store.Comment{
			AuthorID:    authorID,
			SubjectType: subjectType,
			SubjectID:   subjectID,
			Content:     content,
			CreatedAt:   t.now(),
		})
		return err
	})
	if err != nil {
		return store.Comment{}, t.passthrough("create comment", err)
	}

	t.log.Debug("comment created", zap.Int64("comment_id", created.ID), zap.String("subject_id", subjectID))
	t.publish("social.comment.created", "comment_created", authorID, map[string]any{
		"comment_id":   created.ID,
		"subject_type": subjectType,
		"subject_id":   subjectID,
	})
	return created, nil
}

// ReplyToComment attaches a child one level below parentID on the same subject.
func (t *CommentThread) ReplyToComment(ctx context.Context, authorID string, parentID int64, content string) (store.Comment, error) {
	authorID = normID(authorID)
	var created store.Comment
	err := t.store.InTx(ctx, func(tx store.CommentTx) error {
		parent, err := lockActive(ctx, tx, parentID)
		if err != nil {
			return err
		}
		body, err := normalizeContent(content)
		if err != nil {
			return err
		}
		pid := parent.ID
		created, err = tx.Insert(ctx, store.Comment{
			AuthorID:    authorID,
			SubjectType: parent.SubjectType,
			SubjectID:   parent.SubjectID,
			ParentID:    &pid,
			Depth:       parent.Depth + 1,
			Content:     body,
			CreatedAt:   t.now(),
		})
		return err
	})
	if err != nil {
		return store.Comment{}, t.passthrough("reply to comment", err)
	}

	t.log.Debug("comment replied", zap.Int64("comment_id", created.ID), zap.Int64("parent_id", parentID))
	t.publish("social.comment.replied", "comment_replied", authorID, map[string]any{
		"comment_id": created.ID,
		"parent_id":  parentID,
		"depth":      created.Depth,
	})
	return created, nil
}

func (t *CommentThread) UpdateComment(ctx context.Context, userID string, commentID int64, content string) (store.Comment, error) {
	userID = normID(userID)
	var updated store.Comment
	err := t.store.InTx(ctx, func(tx store.CommentTx) error {
		c, err := lockActive(ctx, tx, commentID)
		if err != nil {
			return err
		}
		if c.AuthorID != userID {
			return forbidden("not_author", "only the author can edit this comment")
		}
		body, err := normalizeContent(content)
		if err != nil {
			return err
		}
		now := t.now()
		if err := tx.UpdateContent(ctx, c.ID, body, now); err != nil {
			return err
		}
		c.Content = body
		c.EditedAt = &now
		updated = c
		return nil
	})
	if err != nil {
		return store.Comment{}, t.passthrough("update comment", err)
	}

	t.log.Debug("comment updated", zap.Int64("comment_id", commentID))
	t.publish("social.comment.updated", "comment_updated", userID, map[string]any{"comment_id": commentID})
	return updated, nil
}

// DeleteComment soft-deletes the comment. Its replies stay listable.
func (t *CommentThread) DeleteComment(ctx context.Context, userID string, commentID int64) error {
	userID = normID(userID)
	err := t.store.InTx(ctx, func(tx store.CommentTx) error {
		c, err := lockActive(ctx, tx, commentID)
		if err != nil {
			return err
		}
		if c.AuthorID != userID {
			return forbidden("not_author", "only the author can delete this comment")
		}
		next, ok := c.Lifecycle.SoftDelete(t.now())
		if !ok {
			return errCommentNotFound
		}
		return tx.SetLifecycle(ctx, c.ID, next)
	})
	if err != nil {
		return t.passthrough("delete comment", err)
	}

	t.log.Debug("comment deleted", zap.Int64("comment_id", commentID))
	t.publish("social.comment.deleted", "comment_deleted", userID, map[string]any{"comment_id": commentID})
	return nil
}

func (t *CommentThread) GetComment(ctx context.Context, commentID int64) (CommentView, error) {
	c, err := t.store.Get(ctx, commentID)
	if errors.Is(err, store.ErrNotFound) {
		return CommentView{}, errCommentNotFound
	}
	if err != nil {
		return CommentView{}, t.passthrough("get comment", err)
	}
	if !c.Lifecycle.Active() {
		return CommentView{}, errCommentNotFound
	}

	views, err := t.withStats(ctx, []store.Comment{c})
	if err != nil {
		return CommentView{}, t.passthrough("get comment", err)
	}
	return views[0], nil
}

// ListRootComments lists active top-level comments of a subject, newest first.
func (t *CommentThread) ListRootComments(ctx context.Context, subjectType, subjectID string, req PageRequest) (Page[CommentView], error) {
	req = t.normalize(req)
	items, total, err := t.store.ListRoots(ctx, strings.TrimSpace(subjectType), normID(subjectID), req.listing())
	if err != nil {
		return Page[CommentView]{}, t.passthrough("list root comments", err)
	}
	views, err := t.withStats(ctx, items)
	if err != nil {
		return Page[CommentView]{}, t.passthrough("list root comments", err)
	}
	return newPage(req, views, total), nil
}

// ListReplies lists active direct children of commentID, oldest first. The
// parent itself may be deleted.
func (t *CommentThread) ListReplies(ctx context.Context, commentID int64, req PageRequest) (Page[CommentView], error) {
	req = t.normalize(req)
	items, total, err := t.store.ListReplies(ctx, commentID, req.listing())
	if err != nil {
		return Page[CommentView]{}, t.passthrough("list replies", err)
	}
	views, err := t.withStats(ctx, items)
	if err != nil {
		return Page[CommentView]{}, t.passthrough("list replies", err)
	}
	return newPage(req, views, total), nil
}

func (t *CommentThread) withStats(ctx context.Context, comments []store.Comment) ([]CommentView, error) {
	if len(comments) == 0 {
		return []CommentView{}, nil
	}
	ids := make([]int64, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
	}
	stats, err := t.store.Stats(ctx, ids)
	if err != nil {
		return nil, err
	}
	views := make([]CommentView, len(comments))
	for i, c := range comments {
		views[i] = NewCommentView(c, stats[c.ID])
	}
	return views, nil
}
