package store

import (
	"context"
	"time"
)

// MemoryReactionStore implements ReactionStore over Memory.
type MemoryReactionStore struct {
	db *Memory
}

type memReactionTx struct {
	s *memState
}

func (s *MemoryReactionStore) InTx(ctx context.Context, fn func(ReactionTx) error) error {
	return s.db.inTx(ctx, func(st *memState) error {
		return fn(memReactionTx{s: st})
	})
}

func (tx memReactionTx) CommentActive(_ context.Context, commentID int64) (bool, error) {
	c, ok := tx.s.comments[commentID]
	return ok && c.Lifecycle.Active(), nil
}

func (tx memReactionTx) GetForUpdate(_ context.Context, userID string, commentID int64) (Reaction, error) {
	r, ok := tx.s.reactions[reactionKey{userID, commentID}]
	if !ok {
		return Reaction{}, ErrNotFound
	}
	return r, nil
}

func (tx memReactionTx) Insert(_ context.Context, r Reaction) (Reaction, error) {
	k := reactionKey{r.UserID, r.CommentID}
	if _, ok := tx.s.reactions[k]; ok {
		return Reaction{}, ErrDuplicate
	}
	tx.s.nextReactionID++
	r.ID = tx.s.nextReactionID
	tx.s.reactions[k] = r
	return r, nil
}

func (tx memReactionTx) UpdateKind(_ context.Context, id int64, kind ReactionKind, updatedAt time.Time) error {
	for k, r := range tx.s.reactions {
		if r.ID == id {
			r.Kind = kind
			r.UpdatedAt = &updatedAt
			tx.s.reactions[k] = r
			return nil
		}
	}
	return ErrNotFound
}

func (tx memReactionTx) Delete(_ context.Context, userID string, commentID int64) (bool, error) {
	k := reactionKey{userID, commentID}
	if _, ok := tx.s.reactions[k]; !ok {
		return false, nil
	}
	delete(tx.s.reactions, k)
	return true, nil
}

func (s *MemoryReactionStore) Get(ctx context.Context, userID string, commentID int64) (Reaction, error) {
	var r Reaction
	err := s.db.read(ctx, func(st *memState) error {
		var ok bool
		if r, ok = st.reactions[reactionKey{userID, commentID}]; !ok {
			return ErrNotFound
		}
		return nil
	})
	return r, err
}

func (s *MemoryReactionStore) Counts(ctx context.Context, commentID int64) (ReactionCounts, error) {
	var out ReactionCounts
	err := s.db.read(ctx, func(st *memState) error {
		for k, r := range st.reactions {
			if k.commentID != commentID {
				continue
			}
			switch r.Kind {
			case ReactionUpvote:
				out.Upvotes++
			case ReactionDownvote:
				out.Downvotes++
			}
		}
		return nil
	})
	return out, err
}
