package store

import (
	"context"
	"sort"
)

// MemoryRelationshipStore implements RelationshipStore over Memory.
type MemoryRelationshipStore struct {
	db *Memory
}

type memRelationshipTx struct {
	db *Memory
	s  *memState
}

func (s *MemoryRelationshipStore) InTx(ctx context.Context, fn func(RelationshipTx) error) error {
	return s.db.inTx(ctx, func(st *memState) error {
		return fn(memRelationshipTx{db: s.db, s: st})
	})
}

// LockPair is a no-op: the Memory mutex already serializes transactions.
func (tx memRelationshipTx) LockPair(context.Context, string, string) error { return nil }

// UserActive is stable for the whole transaction: user writes also take
// the Memory mutex.
func (tx memRelationshipTx) UserActive(_ context.Context, userID string) (bool, error) {
	tx.db.dirMu.RLock()
	defer tx.db.dirMu.RUnlock()
	deleted, ok := tx.db.users[userID]
	return ok && !deleted, nil
}

func (tx memRelationshipTx) FollowExists(_ context.Context, followerID, followingID string) (bool, error) {
	_, ok := tx.s.follows[pairKey{followerID, followingID}]
	return ok, nil
}

func (tx memRelationshipTx) BlockExists(_ context.Context, blockerID, blockedID string) (bool, error) {
	_, ok := tx.s.blocks[pairKey{blockerID, blockedID}]
	return ok, nil
}

func (tx memRelationshipTx) InsertFollow(_ context.Context, e FollowEdge) error {
	k := pairKey{e.FollowerID, e.FollowingID}
	if _, ok := tx.s.follows[k]; ok {
		return ErrDuplicate
	}
	tx.s.follows[k] = e
	return nil
}

func (tx memRelationshipTx) DeleteFollow(_ context.Context, followerID, followingID string) (bool, error) {
	k := pairKey{followerID, followingID}
	if _, ok := tx.s.follows[k]; !ok {
		return false, nil
	}
	delete(tx.s.follows, k)
	return true, nil
}

func (tx memRelationshipTx) InsertBlock(_ context.Context, e BlockEdge) error {
	k := pairKey{e.BlockerID, e.BlockedID}
	if _, ok := tx.s.blocks[k]; ok {
		return ErrDuplicate
	}
	tx.s.blocks[k] = e
	return nil
}

func (tx memRelationshipTx) DeleteBlock(_ context.Context, blockerID, blockedID string) (bool, error) {
	k := pairKey{blockerID, blockedID}
	if _, ok := tx.s.blocks[k]; !ok {
		return false, nil
	}
	delete(tx.s.blocks, k)
	return true, nil
}

func (s *MemoryRelationshipStore) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	var ok bool
	err := s.db.read(ctx, func(st *memState) error {
		_, ok = st.follows[pairKey{followerID, followingID}]
		return nil
	})
	return ok, err
}

func (s *MemoryRelationshipStore) IsBlocked(ctx context.Context, blockerID, blockedID string) (bool, error) {
	var ok bool
	err := s.db.read(ctx, func(st *memState) error {
		_, ok = st.blocks[pairKey{blockerID, blockedID}]
		return nil
	})
	return ok, err
}

func (s *MemoryRelationshipStore) ListFollowers(ctx context.Context, userID string, l Listing) ([]FollowEdge, int, error) {
	return s.listFollows(ctx, l, func(e FollowEdge) bool { return e.FollowingID == userID })
}

func (s *MemoryRelationshipStore) ListFollowing(ctx context.Context, userID string, l Listing) ([]FollowEdge, int, error) {
	return s.listFollows(ctx, l, func(e FollowEdge) bool { return e.FollowerID == userID })
}

func (s *MemoryRelationshipStore) listFollows(ctx context.Context, l Listing, match func(FollowEdge) bool) ([]FollowEdge, int, error) {
	var all []FollowEdge
	err := s.db.read(ctx, func(st *memState) error {
		for _, e := range st.follows {
			if match(e) {
				all = append(all, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		if all[i].FollowerID != all[j].FollowerID {
			return all[i].FollowerID > all[j].FollowerID
		}
		return all[i].FollowingID > all[j].FollowingID
	})
	lo, hi := l.window(len(all))
	return append([]FollowEdge{}, all[lo:hi]...), len(all), nil
}

func (s *MemoryRelationshipStore) ListBlocked(ctx context.Context, userID string, l Listing) ([]BlockEdge, int, error) {
	var all []BlockEdge
	err := s.db.read(ctx, func(st *memState) error {
		for _, e := range st.blocks {
			if e.BlockerID == userID {
				all = append(all, e)
			}
		}
		return nil
	})
	if err != nil {
		return nil, 0, err
	}
	sort.Slice(all, func(i, j int) bool {
		if !all[i].CreatedAt.Equal(all[j].CreatedAt) {
			return all[i].CreatedAt.After(all[j].CreatedAt)
		}
		return all[i].BlockedID > all[j].BlockedID
	})
	lo, hi := l.window(len(all))
	return append([]BlockEdge{}, all[lo:hi]...), len(all), nil
}

func (s *MemoryRelationshipStore) CountFollows(ctx context.Context, userID string) (int, int, error) {
	var followers, following int
	err := s.db.read(ctx, func(st *memState) error {
		for k := range st.follows {
			if k.b == userID {
				followers++
			}
			if k.a == userID {
				following++
			}
		}
		return nil
	})
	return followers, following, err
}
