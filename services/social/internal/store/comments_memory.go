package store

import (
	"context"
	"sort"
	"time"
)

// MemoryCommentStore implements CommentStore over Memory.
type MemoryCommentStore struct {
	db *Memory
}

type memCommentTx struct {
	s *memState
}

func (s *MemoryCommentStore) InTx(ctx context.Context, fn func(CommentTx) error) error {
	return s.db.inTx(ctx, func(st *memState) error {
		return fn(memCommentTx{s: st})
	})
}

func (tx memCommentTx) GetForUpdate(_ context.Context, id int64) (Comment, error) {
	c, ok := tx.s.comments[id]
	if !ok {
		return Comment{}, ErrNotFound
	}
	return c, nil
}

func (tx memCommentTx) Insert(_ context.Context, c Comment) (Comment, error) {
	tx.s.nextCommentID++
	c.ID = tx.s.nextCommentID
	tx.s.comments[c.ID] = c
	return c, nil
}

func (tx memCommentTx) UpdateContent(_ context.Context, id int64, content string, editedAt time.Time) error {
	c, ok := tx.s.comments[id]
	if !ok {
		return ErrNotFound
	}
	c.Content = content
	c.EditedAt = &editedAt
	tx.s.comments[id] = c
	return nil
}

func (tx memCommentTx) SetLifecycle(_ context.Context, id int64, l Lifecycle) error {
	c, ok := tx.s.comments[id]
	if !ok {
		return ErrNotFound
	}
	c.Lifecycle = l
	tx.s.comments[id] = c
	return nil
}

func (s *MemoryCommentStore) Get(ctx context.Context, id int64) (Comment, error) {
	var c Comment
	err := s.db.read(ctx, func(st *memState) error {
		var ok bool
		if c, ok = st.comments[id]; !ok {
			return ErrNotFound
		}
		return nil
	})
	return c, err
}

func (s *MemoryCommentStore) ListRoots(ctx context.Context, subjectType, subjectID string, l Listing) ([]Comment, int, error) {
	roots, err := s.collect(ctx, func(c Comment) bool {
		return c.ParentID == nil && c.SubjectType == subjectType && c.SubjectID == subjectID
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(roots, func(i, j int) bool {
		if !roots[i].CreatedAt.Equal(roots[j].CreatedAt) {
			return roots[i].CreatedAt.After(roots[j].CreatedAt)
		}
		return roots[i].ID > roots[j].ID
	})
	lo, hi := l.window(len(roots))
	return append([]Comment{}, roots[lo:hi]...), len(roots), nil
}

func (s *MemoryCommentStore) ListReplies(ctx context.Context, parentID int64, l Listing) ([]Comment, int, error) {
	replies, err := s.collect(ctx, func(c Comment) bool {
		return c.ParentID != nil && *c.ParentID == parentID
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(replies, func(i, j int) bool {
		if !replies[i].CreatedAt.Equal(replies[j].CreatedAt) {
			return replies[i].CreatedAt.Before(replies[j].CreatedAt)
		}
		return replies[i].ID < replies[j].ID
	})
	lo, hi := l.window(len(replies))
	return append([]Comment{}, replies[lo:hi]...), len(replies), nil
}

// collect returns active comments matching fn.
func (s *MemoryCommentStore) collect(ctx context.Context, fn func(Comment) bool) ([]Comment, error) {
	var out []Comment
	err := s.db.read(ctx, func(st *memState) error {
		for _, c := range st.comments {
			if c.Lifecycle.Active() && fn(c) {
				out = append(out, c)
			}
		}
		return nil
	})
	return out, err
}

func (s *MemoryCommentStore) Stats(ctx context.Context, ids []int64) (map[int64]CommentStats, error) {
	out := make(map[int64]CommentStats, len(ids))
	for _, id := range ids {
		out[id] = CommentStats{}
	}
	err := s.db.read(ctx, func(st *memState) error {
		for k, r := range st.reactions {
			cs, ok := out[k.commentID]
			if !ok {
				continue
			}
			switch r.Kind {
			case ReactionUpvote:
				cs.Upvotes++
			case ReactionDownvote:
				cs.Downvotes++
			}
			out[k.commentID] = cs
		}
		for _, c := range st.comments {
			if c.ParentID == nil || !c.Lifecycle.Active() {
				continue
			}
			if cs, ok := out[*c.ParentID]; ok {
				cs.Replies++
				out[*c.ParentID] = cs
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
