package social

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFollowThenBlockRemovesFollow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.graph.Follow(ctx, "alice", "bob"))
	require.NoError(t, f.graph.Follow(ctx, "bob", "alice"))
	require.NoError(t, f.graph.Block(ctx, "alice", "bob"))

	following, err := f.graph.IsFollowing(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, following)

	reverse, err := f.graph.IsFollowing(ctx, "bob", "alice")
	require.NoError(t, err)
	assert.False(t, reverse, "block must remove the follow in both directions")

	blocked, err := f.graph.IsBlocked(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.True(t, blocked)
}

func TestFollowAfterBlockIsForbidden(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.graph.Block(ctx, "alice", "bob"))

	err := f.graph.Follow(ctx, "alice", "bob")
	assert.True(t, IsKind(err, KindForbidden), "got %v", err)

	err = f.graph.Follow(ctx, "bob", "alice")
	assert.True(t, IsKind(err, KindForbidden), "blocked user must not follow the blocker, got %v", err)
}

func TestFollowConflictsAndNotFound(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.graph.Unfollow(ctx, "alice", "bob")
	assert.True(t, IsKind(err, KindNotFound), "got %v", err)

	require.NoError(t, f.graph.Follow(ctx, "alice", "bob"))
	err = f.graph.Follow(ctx, "alice", "bob")
	assert.True(t, IsKind(err, KindConflict), "got %v", err)

	err = f.graph.Follow(ctx, "alice", "alice")
	assert.True(t, IsKind(err, KindConflict), "self follow, got %v", err)

	err = f.graph.Follow(ctx, "alice", "ghost")
	assert.True(t, IsKind(err, KindNotFound), "unknown target, got %v", err)

	f.mem.Directory().DeleteUser("u3")
	err = f.graph.Follow(ctx, "alice", "u3")
	assert.True(t, IsKind(err, KindNotFound), "deleted target, got %v", err)
}

func TestBlockConflictsAndUnblock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	err := f.graph.Block(ctx, "alice", "alice")
	assert.True(t, IsKind(err, KindConflict), "got %v", err)

	err = f.graph.Block(ctx, "alice", "ghost")
	assert.True(t, IsKind(err, KindNotFound), "got %v", err)

	require.NoError(t, f.graph.Follow(ctx, "alice", "bob"))
	require.NoError(t, f.graph.Block(ctx, "alice", "bob"))

	err = f.graph.Block(ctx, "alice", "bob")
	assert.True(t, IsKind(err, KindConflict), "got %v", err)

	require.NoError(t, f.graph.Unblock(ctx, "alice", "bob"))
	err = f.graph.Unblock(ctx, "alice", "bob")
	assert.True(t, IsKind(err, KindNotFound), "got %v", err)

	following, err := f.graph.IsFollowing(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, following, "unblock must not restore the follow")

	require.NoError(t, f.graph.Follow(ctx, "alice", "bob"))
}

func TestConcurrentFollowHasOneWinner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const n = 32
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := f.graph.Follow(ctx, "alice", "bob")
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case IsKind(err, KindConflict):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, n-1, conflicts)
}

func TestConcurrentFollowAndBlockKeepGraphConsistent(t *testing.T) {
	for i := 0; i < 20; i++ {
		f := newFixture(t)
		ctx := context.Background()

		var wg sync.WaitGroup
		wg.Add(2)
		go func() { defer wg.Done(); _ = f.graph.Follow(ctx, "alice", "bob") }()
		go func() { defer wg.Done(); _ = f.graph.Block(ctx, "bob", "alice") }()
		wg.Wait()

		following, err := f.graph.IsFollowing(ctx, "alice", "bob")
		require.NoError(t, err)
		blocked, err := f.graph.IsBlocked(ctx, "bob", "alice")
		require.NoError(t, err)
		require.True(t, blocked)
		require.False(t, following)
	}
}

func TestListFollowersNewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, u := range []string{"u1", "u2", "u3"} {
		require.NoError(t, f.graph.Follow(ctx, u, "alice"))
	}

	page, err := f.graph.ListFollowers(ctx, "alice", PageRequest{Page: 1, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Items, 2)
	assert.Equal(t, "u3", page.Items[0].FollowerID)
	assert.Equal(t, "u2", page.Items[1].FollowerID)
	assert.True(t, page.HasNext())

	page, err = f.graph.ListFollowers(ctx, "alice", PageRequest{Page: 2, PageSize: 2})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "u1", page.Items[0].FollowerID)

	following, err := f.graph.ListFollowing(ctx, "u1", PageRequest{})
	require.NoError(t, err)
	require.Len(t, following.Items, 1)
	assert.Equal(t, "alice", following.Items[0].FollowingID)

	counts, err := f.graph.Counts(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, FollowCounts{Followers: 3, Following: 0}, counts)
}

func TestListEmptyIsNotAnError(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	page, err := f.graph.ListBlocked(ctx, "nobody", PageRequest{})
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Total)
}

func TestRelationshipEventsPublishedOnSuccessOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.graph.Follow(ctx, "alice", "bob"))
	require.Error(t, f.graph.Follow(ctx, "alice", "bob"))
	require.NoError(t, f.graph.Block(ctx, "alice", "bob"))
	require.NoError(t, f.graph.Unblock(ctx, "alice", "bob"))

	assert.Equal(t, []string{
		"social.follow.created",
		"social.block.created",
		"social.block.deleted",
	}, f.events.subjects())
}

func TestRelationshipIDsNormalizedEverywhere(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.graph.Follow(ctx, "alice", " bob"))

	following, err := f.graph.IsFollowing(ctx, "alice ", " bob")
	require.NoError(t, err)
	assert.True(t, following)

	followers, err := f.graph.ListFollowers(ctx, " bob ", PageRequest{})
	require.NoError(t, err)
	require.Len(t, followers.Items, 1)
	assert.Equal(t, "bob", followers.Items[0].FollowingID)

	counts, err := f.graph.Counts(ctx, "alice\t")
	require.NoError(t, err)
	assert.Equal(t, 1, counts.Following)

	require.NoError(t, f.graph.Unfollow(ctx, "alice", " bob"))

	require.NoError(t, f.graph.Block(ctx, " alice", "bob"))
	blocked, err := f.graph.IsBlocked(ctx, "alice", "bob ")
	require.NoError(t, err)
	assert.True(t, blocked)
	list, err := f.graph.ListBlocked(ctx, " alice ", PageRequest{})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)
	require.NoError(t, f.graph.Unblock(ctx, "alice ", " bob"))
}

func TestLostInsertRaceIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	graph := NewRelationshipGraph(lostRaceRelationships{RelationshipStore: f.mem.Relationships()}, Options{})

	err := graph.Follow(ctx, "alice", "bob")
	require.True(t, IsKind(err, KindConflict), "got %v", err)
	assert.Equal(t, "already_following", codeOf(err))

	err = graph.Block(ctx, "alice", "bob")
	require.True(t, IsKind(err, KindConflict), "got %v", err)
	assert.Equal(t, "already_blocked", codeOf(err))

	ok, err := f.graph.IsFollowing(ctx, "alice", "bob")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTargetCheckedInsideTransaction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	rel := &tracingRelationships{RelationshipStore: f.mem.Relationships()}
	graph := NewRelationshipGraph(rel, Options{})

	require.NoError(t, graph.Follow(ctx, "alice", "bob"))
	assert.Equal(t, []string{"lock", "user_active:bob"}, rel.calls)

	// The transaction's view of the directory decides, not an earlier read.
	inactive := false
	rel.active, rel.calls = &inactive, nil
	err := graph.Block(ctx, "alice", "u2")
	require.True(t, IsKind(err, KindNotFound), "got %v", err)
	assert.Equal(t, "user_not_found", codeOf(err))
	assert.Equal(t, []string{"lock", "user_active:u2"}, rel.calls)

	blocked, err := f.graph.IsBlocked(ctx, "alice", "u2")
	require.NoError(t, err)
	assert.False(t, blocked)
}
