package social

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/example/movie-platform/services/social/internal/store"
)

type recordedEvent struct {
	Subject string
	Name    string
	UserID  string
	Props   map[string]any
}

type recorder struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (r *recorder) Publish(subject, eventName, userID string, props map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, recordedEvent{Subject: subject, Name: eventName, UserID: userID, Props: props})
}

func (r *recorder) subjects() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Subject
	}
	return out
}

// fakeClock advances one second per call so orderings are deterministic.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

type fixture struct {
	mem       *store.Memory
	events    *recorder
	graph     *RelationshipGraph
	comments  *CommentThread
	reactions *ReactionStore
	ratings   *RatingStore
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemory()
	dir := mem.Directory()
	dir.AddUser("u1", "u2", "u3", "alice", "bob")
	dir.AddMovie("m1", "m2")

	rec := &recorder{}
	clock := &fakeClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	opts := Options{Events: rec, Clock: clock.Now}

	return &fixture{
		mem:       mem,
		events:    rec,
		graph:     NewRelationshipGraph(mem.Relationships(), opts),
		comments:  NewCommentThread(mem.Comments(), dir, opts),
		reactions: NewReactionStore(mem.Reactions(), opts),
		ratings:   NewRatingStore(mem.Ratings(), dir, opts),
	}
}

// codeOf returns the Code of a core error, or "" for anything else.
func codeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// lostRaceRelationships reports a duplicate from every insert, as the loser
// of a concurrent insert sees after the existence checks passed.
type lostRaceRelationships struct {
	store.RelationshipStore
}

func (r lostRaceRelationships) InTx(ctx context.Context, fn func(store.RelationshipTx) error) error {
	return r.RelationshipStore.InTx(ctx, func(tx store.RelationshipTx) error {
		return fn(lostRaceRelationshipTx{RelationshipTx: tx})
	})
}

type lostRaceRelationshipTx struct {
	store.RelationshipTx
}

func (lostRaceRelationshipTx) InsertFollow(context.Context, store.FollowEdge) error {
	return store.ErrDuplicate
}

func (lostRaceRelationshipTx) InsertBlock(context.Context, store.BlockEdge) error {
	return store.ErrDuplicate
}

type lostRaceReactions struct {
	store.ReactionStore
}

func (r lostRaceReactions) InTx(ctx context.Context, fn func(store.ReactionTx) error) error {
	return r.ReactionStore.InTx(ctx, func(tx store.ReactionTx) error {
		return fn(lostRaceReactionTx{ReactionTx: tx})
	})
}

type lostRaceReactionTx struct {
	store.ReactionTx
}

func (lostRaceReactionTx) Insert(context.Context, store.Reaction) (store.Reaction, error) {
	return store.Reaction{}, store.ErrDuplicate
}

// tracingRelationships records the order of statements issued inside each
// transaction and can override the directory answer.
type tracingRelationships struct {
	store.RelationshipStore
	active *bool
	calls  []string
}

func (r *tracingRelationships) InTx(ctx context.Context, fn func(store.RelationshipTx) error) error {
	return r.RelationshipStore.InTx(ctx, func(tx store.RelationshipTx) error {
		return fn(&tracingRelationshipTx{RelationshipTx: tx, parent: r})
	})
}

type tracingRelationshipTx struct {
	store.RelationshipTx
	parent *tracingRelationships
}

func (tx *tracingRelationshipTx) LockPair(ctx context.Context, a, b string) error {
	tx.parent.calls = append(tx.parent.calls, "lock")
	return tx.RelationshipTx.LockPair(ctx, a, b)
}

func (tx *tracingRelationshipTx) UserActive(ctx context.Context, id string) (bool, error) {
	tx.parent.calls = append(tx.parent.calls, "user_active:"+id)
	if tx.parent.active != nil {
		return *tx.parent.active, nil
	}
	return tx.RelationshipTx.UserActive(ctx, id)
}
