package store

import (
	"context"
	"maps"
	"sync"
)

type pairKey struct{ a, b string }

type reactionKey struct {
	userID    string
	commentID int64
}

type ratingKey struct{ userID, movieID string }

// memState is every transactional table. It is copied at the start of each
// transaction and swapped in on success.
type memState struct {
	follows   map[pairKey]FollowEdge // follower -> following
	blocks    map[pairKey]BlockEdge  // blocker -> blocked
	comments  map[int64]Comment
	reactions map[reactionKey]Reaction
	ratings   map[ratingKey]Rating

	nextCommentID  int64
	nextReactionID int64
	nextRatingID   int64
}

func newMemState() *memState {
	return &memState{
		follows:   make(map[pairKey]FollowEdge),
		blocks:    make(map[pairKey]BlockEdge),
		comments:  make(map[int64]Comment),
		reactions: make(map[reactionKey]Reaction),
		ratings:   make(map[ratingKey]Rating),
	}
}

func (s *memState) clone() *memState {
	out := *s
	out.follows = maps.Clone(s.follows)
	out.blocks = maps.Clone(s.blocks)
	out.comments = maps.Clone(s.comments)
	out.reactions = maps.Clone(s.reactions)
	out.ratings = maps.Clone(s.ratings)
	return &out
}

// Memory is a development-only in-memory database backing every store
// contract. A single mutex serializes transactions; each one runs on a
// snapshot so a failed or cancelled transaction leaves no partial writes.
type Memory struct {
	mu    sync.RWMutex
	state *memState

	dirMu  sync.RWMutex
	users  map[string]bool // id -> deleted
	movies map[string]struct{}
}

func NewMemory() *Memory {
	return &Memory{
		state:  newMemState(),
		users:  make(map[string]bool),
		movies: make(map[string]struct{}),
	}
}

func (m *Memory) inTx(ctx context.Context, fn func(*memState) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	work := m.state.clone()
	if err := fn(work); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.state = work
	return nil
}

func (m *Memory) read(ctx context.Context, fn func(*memState) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	return fn(m.state)
}

func (m *Memory) Relationships() *MemoryRelationshipStore { return &MemoryRelationshipStore{db: m} }
func (m *Memory) Comments() *MemoryCommentStore           { return &MemoryCommentStore{db: m} }
func (m *Memory) Reactions() *MemoryReactionStore         { return &MemoryReactionStore{db: m} }
func (m *Memory) Ratings() *MemoryRatingStore             { return &MemoryRatingStore{db: m} }
func (m *Memory) Directory() *MemoryDirectory             { return &MemoryDirectory{db: m} }
