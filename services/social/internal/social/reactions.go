package social

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/example/movie-platform/services/social/internal/store"
)

// ReactionStore owns the single reaction a user holds on a comment.
type ReactionStore struct {
	base
	store store.ReactionStore
}

func NewReactionStore(rs store.ReactionStore, opts Options) *ReactionStore {
	return &ReactionStore{base: newBase(opts, "reactions"), store: rs}
}

// ReactionAggregate is counted over every reaction of one comment.
type ReactionAggregate struct {
	Upvotes   int `json:"upvotes"`
	Downvotes int `json:"downvotes"`
	Total     int `json:"total"`
}

var errAlreadyReacted = conflict("already_reacted", "already reacted with this kind")

// AddOrUpdateReaction inserts a reaction or flips its kind in place.
// Re-applying the current kind fails with Conflict.
func (s *ReactionStore) AddOrUpdateReaction(ctx context.Context, userID string, commentID int64, kind store.ReactionKind) (store.Reaction, error) {
	userID = normID(userID)
	if !kind.Valid() {
		return store.Reaction{}, invalid("invalid_kind", "kind must be upvote or downvote")
	}

	var (
		result  store.Reaction
		toggled bool
	)
	err := s.store.InTx(ctx, func(tx store.ReactionTx) error {
		active, err := tx.CommentActive(ctx, commentID)
		if err != nil {
			return err
		}
		if !active {
			return errCommentNotFound
		}

		existing, err := tx.GetForUpdate(ctx, userID, commentID)
		switch {
		case errors.Is(err, store.ErrNotFound):
			result, err = tx.Insert(ctx, store.Reaction{
				UserID:    userID,
				CommentID: commentID,
				Kind:      kind,
				CreatedAt: s.now(),
			})
			return err
		case err != nil:
			return err
		case existing.Kind == kind:
			return errAlreadyReacted
		}

		now := s.now()
		if err := tx.UpdateKind(ctx, existing.ID, kind, now); err != nil {
			return err
		}
		existing.Kind = kind
		existing.UpdatedAt = &now
		result, toggled = existing, true
		return nil
	})
	if errors.Is(err, store.ErrDuplicate) {
		return store.Reaction{}, errAlreadyReacted
	}
	if err != nil {
		return store.Reaction{}, s.passthrough("add reaction", err)
	}

	s.log.Debug("reaction set",
		zap.String("user_id", userID),
		zap.Int64("comment_id", commentID),
		zap.String("kind", string(kind)),
		zap.Bool("toggled", toggled),
	)
	s.publish("social.reaction.set", "reaction_set", userID, map[string]any{
		"comment_id": commentID,
		"kind":       string(kind),
		"toggled":    toggled,
	})
	return result, nil
}

func (s *ReactionStore) RemoveReaction(ctx context.Context, userID string, commentID int64) error {
	userID = normID(userID)
	err := s.store.InTx(ctx, func(tx store.ReactionTx) error {
		deleted, err := tx.Delete(ctx, userID, commentID)
		if err != nil {
			return err
		}
		if !deleted {
			return notFound("reaction_not_found", "reaction not found")
		}
		return nil
	})
	if err != nil {
		return s.passthrough("remove reaction", err)
	}

	s.log.Debug("reaction deleted", zap.String("user_id", userID), zap.Int64("comment_id", commentID))
	s.publish("social.reaction.deleted", "reaction_deleted", userID, map[string]any{"comment_id": commentID})
	return nil
}

// GetAggregate returns zeros for a comment without reactions.
func (s *ReactionStore) GetAggregate(ctx context.Context, commentID int64) (ReactionAggregate, error) {
	c, err := s.store.Counts(ctx, commentID)
	if err != nil {
		return ReactionAggregate{}, s.passthrough("reaction aggregate", err)
	}
	return ReactionAggregate{Upvotes: c.Upvotes, Downvotes: c.Downvotes, Total: c.Upvotes + c.Downvotes}, nil
}

// GetUserReaction returns nil, nil when the user has not reacted.
func (s *ReactionStore) GetUserReaction(ctx context.Context, userID string, commentID int64) (*store.Reaction, error) {
	r, err := s.store.Get(ctx, normID(userID), commentID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.passthrough("get reaction", err)
	}
	return &r, nil
}
