package social

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/example/movie-platform/services/social/internal/store"
)

// RelationshipGraph owns follow and block edges. No follow edge survives
// between two users once either of them blocks the other.
type RelationshipGraph struct {
	base
	store store.RelationshipStore
}

func NewRelationshipGraph(rs store.RelationshipStore, opts Options) *RelationshipGraph {
	return &RelationshipGraph{base: newBase(opts, "relationships"), store: rs}
}

// FollowCounts are the follower/following totals of one user.
type FollowCounts struct {
	Followers int `json:"followers"`
	Following int `json:"following"`
}

// lockTarget serializes on the pair and fails NotFound when the target user
// is missing or deleted.
func lockTarget(ctx context.Context, tx store.RelationshipTx, callerID, targetID string) error {
	if err := tx.LockPair(ctx, callerID, targetID); err != nil {
		return err
	}
	active, err := tx.UserActive(ctx, targetID)
	if err != nil {
		return err
	}
	if !active {
		return notFound("user_not_found", "user not found")
	}
	return nil
}

func (g *RelationshipGraph) Follow(ctx context.Context, followerID, targetID string) error {
	followerID, targetID = normID(followerID), normID(targetID)
	if followerID == targetID {
		return conflict("cannot_follow_self", "cannot follow yourself")
	}

	now := g.now()
	err := g.store.InTx(ctx, func(tx store.RelationshipTx) error {
		if err := lockTarget(ctx, tx, followerID, targetID); err != nil {
			return err
		}
		exists, err := tx.FollowExists(ctx, followerID, targetID)
		if err != nil {
			return err
		}
		if exists {
			return conflict("already_following", "already following this user")
		}
		blocked, err := g.blockedEitherWay(ctx, tx, followerID, targetID)
		if err != nil {
			return err
		}
		if blocked {
			return forbidden("blocked", "a block exists between these users")
		}
		return tx.InsertFollow(ctx, store.FollowEdge{FollowerID: followerID, FollowingID: targetID, CreatedAt: now})
	})
	if errors.Is(err, store.ErrDuplicate) {
		return conflict("already_following", "already following this user")
	}
	if err != nil {
		return g.passthrough("follow", err)
	}

	g.log.Info("follow created", zap.String("follower_id", followerID), zap.String("following_id", targetID))
	g.publish("social.follow.created", "follow_created", followerID, map[string]any{"following_id": targetID})
	return nil
}

func (g *RelationshipGraph) Unfollow(ctx context.Context, followerID, targetID string) error {
	followerID, targetID = normID(followerID), normID(targetID)
	err := g.store.InTx(ctx, func(tx store.RelationshipTx) error {
		deleted, err := tx.DeleteFollow(ctx, followerID, targetID)
		if err != nil {
			return err
		}
		if !deleted {
			return notFound("not_following", "not following this user")
		}
		return nil
	})
	if err != nil {
		return g.passthrough("unfollow", err)
	}

	g.log.Info("follow deleted", zap.String("follower_id", followerID), zap.String("following_id", targetID))
	g.publish("social.follow.deleted", "follow_deleted", followerID, map[string]any{"following_id": targetID})
	return nil
}

// Block removes follow edges in both directions and records the block in
// one transaction.
func (g *RelationshipGraph) Block(ctx context.Context, blockerID, targetID string) error {
	blockerID, targetID = normID(blockerID), normID(targetID)
	if blockerID == targetID {
		return conflict("cannot_block_self", "cannot block yourself")
	}

	now := g.now()
	var removed []string
	err := g.store.InTx(ctx, func(tx store.RelationshipTx) error {
		removed = removed[:0]
		if err := lockTarget(ctx, tx, blockerID, targetID); err != nil {
			return err
		}
		exists, err := tx.BlockExists(ctx, blockerID, targetID)
		if err != nil {
			return err
		}
		if exists {
			return conflict("already_blocked", "user already blocked")
		}
		if ok, err := tx.DeleteFollow(ctx, blockerID, targetID); err != nil {
			return err
		} else if ok {
			removed = append(removed, blockerID+"->"+targetID)
		}
		if ok, err := tx.DeleteFollow(ctx, targetID, blockerID); err != nil {
			return err
		} else if ok {
			removed = append(removed, targetID+"->"+blockerID)
		}
		return tx.InsertBlock(ctx, store.BlockEdge{BlockerID: blockerID, BlockedID: targetID, CreatedAt: now})
	})
	if errors.Is(err, store.ErrDuplicate) {
		return conflict("already_blocked", "user already blocked")
	}
	if err != nil {
		return g.passthrough("block", err)
	}

	g.log.Info("block created",
		zap.String("blocker_id", blockerID),
		zap.String("blocked_id", targetID),
		zap.Strings("removed_follows", removed),
	)
	g.publish("social.block.created", "block_created", blockerID, map[string]any{
		"blocked_id":      targetID,
		"removed_follows": len(removed),
	})
	return nil
}

// Unblock deletes the block edge only; follows are not restored.
func (g *RelationshipGraph) Unblock(ctx context.Context, blockerID, targetID string) error {
	blockerID, targetID = normID(blockerID), normID(targetID)
	err := g.store.InTx(ctx, func(tx store.RelationshipTx) error {
		deleted, err := tx.DeleteBlock(ctx, blockerID, targetID)
		if err != nil {
			return err
		}
		if !deleted {
			return notFound("not_blocked", "user is not blocked")
		}
		return nil
	})
	if err != nil {
		return g.passthrough("unblock", err)
	}

	g.log.Info("block deleted", zap.String("blocker_id", blockerID), zap.String("blocked_id", targetID))
	g.publish("social.block.deleted", "block_deleted", blockerID, map[string]any{"blocked_id": targetID})
	return nil
}

func (g *RelationshipGraph) blockedEitherWay(ctx context.Context, tx store.RelationshipTx, a, b string) (bool, error) {
	ok, err := tx.BlockExists(ctx, a, b)
	if err != nil || ok {
		return ok, err
	}
	return tx.BlockExists(ctx, b, a)
}

func (g *RelationshipGraph) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	ok, err := g.store.IsFollowing(ctx, normID(followerID), normID(followingID))
	if err != nil {
		return false, g.passthrough("is following", err)
	}
	return ok, nil
}

func (g *RelationshipGraph) IsBlocked(ctx context.Context, blockerID, blockedID string) (bool, error) {
	ok, err := g.store.IsBlocked(ctx, normID(blockerID), normID(blockedID))
	if err != nil {
		return false, g.passthrough("is blocked", err)
	}
	return ok, nil
}

// ListFollowers returns edges whose FollowingID is userID, newest first.
func (g *RelationshipGraph) ListFollowers(ctx context.Context, userID string, req PageRequest) (Page[store.FollowEdge], error) {
	req = g.normalize(req)
	items, total, err := g.store.ListFollowers(ctx, normID(userID), req.listing())
	if err != nil {
		return Page[store.FollowEdge]{}, g.passthrough("list followers", err)
	}
	return newPage(req, items, total), nil
}

// ListFollowing returns edges whose FollowerID is userID, newest first.
func (g *RelationshipGraph) ListFollowing(ctx context.Context, userID string, req PageRequest) (Page[store.FollowEdge], error) {
	req = g.normalize(req)
	items, total, err := g.store.ListFollowing(ctx, normID(userID), req.listing())
	if err != nil {
		return Page[store.FollowEdge]{}, g.passthrough("list following", err)
	}
	return newPage(req, items, total), nil
}

func (g *RelationshipGraph) ListBlocked(ctx context.Context, userID string, req PageRequest) (Page[store.BlockEdge], error) {
	req = g.normalize(req)
	items, total, err := g.store.ListBlocked(ctx, normID(userID), req.listing())
	if err != nil {
		return Page[store.BlockEdge]{}, g.passthrough("list blocked", err)
	}
	return newPage(req, items, total), nil
}

func (g *RelationshipGraph) Counts(ctx context.Context, userID string) (FollowCounts, error) {
	followers, following, err := g.store.CountFollows(ctx, normID(userID))
	if err != nil {
		return FollowCounts{}, g.passthrough("count follows", err)
	}
	return FollowCounts{Followers: followers, Following: following}, nil
}
