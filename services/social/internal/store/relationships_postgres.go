package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/movie-platform/internal/platform/db"
)

// PostgresRelationshipStore persists follows and blocks in Postgres.
type PostgresRelationshipStore struct {
	pool *pgxpool.Pool
}

type pgRelationshipTx struct {
	tx pgx.Tx
}

func (s *PostgresRelationshipStore) InTx(ctx context.Context, fn func(RelationshipTx) error) error {
	return withTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(pgRelationshipTx{tx: tx})
	})
}

// LockPair takes a transaction-scoped advisory lock on the unordered pair,
// so Follow(a, b) and Block(b, a) cannot interleave.
func (t pgRelationshipTx) LockPair(ctx context.Context, a, b string) error {
	_, err := t.tx.Exec(ctx,
		`SELECT pg_advisory_xact_lock(hashtextextended(least($1::text, $2::text) || ':' || greatest($1::text, $2::text), 0))`,
		a, b)
	return err
}

// UserActive takes a share lock on the mirrored users row, which holds off
// MarkUserDeleted until commit.
func (t pgRelationshipTx) UserActive(ctx context.Context, userID string) (bool, error) {
	var deletedAt *time.Time
	err := t.tx.QueryRow(ctx, `SELECT deleted_at FROM users WHERE id = $1 FOR SHARE`, userID).Scan(&deletedAt)
	if db.IsNoRows(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return deletedAt == nil, nil
}

func (t pgRelationshipTx) FollowExists(ctx context.Context, followerID, followingID string) (bool, error) {
	return followExists(ctx, t.tx, followerID, followingID)
}

func (t pgRelationshipTx) BlockExists(ctx context.Context, blockerID, blockedID string) (bool, error) {
	return blockExists(ctx, t.tx, blockerID, blockedID)
}

func (t pgRelationshipTx) InsertFollow(ctx context.Context, e FollowEdge) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO follows (follower_id, following_id, created_at) VALUES ($1, $2, $3)`,
		e.FollowerID, e.FollowingID, e.CreatedAt)
	return mapWriteErr(err)
}

func (t pgRelationshipTx) DeleteFollow(ctx context.Context, followerID, followingID string) (bool, error) {
	tag, err := t.tx.Exec(ctx,
		`DELETE FROM follows WHERE follower_id = $1 AND following_id = $2`,
		followerID, followingID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (t pgRelationshipTx) InsertBlock(ctx context.Context, e BlockEdge) error {
	_, err := t.tx.Exec(ctx,
		`INSERT INTO blocks (blocker_id, blocked_id, created_at) VALUES ($1, $2, $3)`,
		e.BlockerID, e.BlockedID, e.CreatedAt)
	return mapWriteErr(err)
}

func (t pgRelationshipTx) DeleteBlock(ctx context.Context, blockerID, blockedID string) (bool, error) {
	tag, err := t.tx.Exec(ctx,
		`DELETE FROM blocks WHERE blocker_id = $1 AND blocked_id = $2`,
		blockerID, blockedID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func followExists(ctx context.Context, q db.Querier, followerID, followingID string) (bool, error) {
	return exists(ctx, q,
		`SELECT EXISTS(SELECT 1 FROM follows WHERE follower_id = $1 AND following_id = $2)`,
		followerID, followingID)
}

func blockExists(ctx context.Context, q db.Querier, blockerID, blockedID string) (bool, error) {
	return exists(ctx, q,
		`SELECT EXISTS(SELECT 1 FROM blocks WHERE blocker_id = $1 AND blocked_id = $2)`,
		blockerID, blockedID)
}

func (s *PostgresRelationshipStore) IsFollowing(ctx context.Context, followerID, followingID string) (bool, error) {
	return followExists(ctx, s.pool, followerID, followingID)
}

func (s *PostgresRelationshipStore) IsBlocked(ctx context.Context, blockerID, blockedID string) (bool, error) {
	return blockExists(ctx, s.pool, blockerID, blockedID)
}

func (s *PostgresRelationshipStore) ListFollowers(ctx context.Context, userID string, l Listing) ([]FollowEdge, int, error) {
	return s.listFollows(ctx, "following_id", "follower_id", userID, l)
}

func (s *PostgresRelationshipStore) ListFollowing(ctx context.Context, userID string, l Listing) ([]FollowEdge, int, error) {
	return s.listFollows(ctx, "follower_id", "following_id", userID, l)
}

// listFollows filters on match and breaks created_at ties on other. Both are
// fixed column names, never caller input.
func (s *PostgresRelationshipStore) listFollows(ctx context.Context, match, other, userID string, l Listing) ([]FollowEdge, int, error) {
	q := `SELECT follower_id, following_id, created_at, count(*) OVER ()
	      FROM follows WHERE ` + match + ` = $1
	      ORDER BY created_at DESC, ` + other + ` DESC
	      LIMIT $2 OFFSET $3`
	rows, err := s.pool.Query(ctx, q, userID, l.Limit, l.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []FollowEdge{}
	total := 0
	for rows.Next() {
		var e FollowEdge
		if err := rows.Scan(&e.FollowerID, &e.FollowingID, &e.CreatedAt, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(out) == 0 && l.Offset > 0 {
		// Past the last page the window function yields no rows.
		err = s.pool.QueryRow(ctx, `SELECT count(*) FROM follows WHERE `+match+` = $1`, userID).Scan(&total)
	}
	return out, total, err
}

func (s *PostgresRelationshipStore) ListBlocked(ctx context.Context, userID string, l Listing) ([]BlockEdge, int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT blocker_id, blocked_id, created_at, count(*) OVER ()
		 FROM blocks WHERE blocker_id = $1
		 ORDER BY created_at DESC, blocked_id DESC
		 LIMIT $2 OFFSET $3`, userID, l.Limit, l.Offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []BlockEdge{}
	total := 0
	for rows.Next() {
		var e BlockEdge
		if err := rows.Scan(&e.BlockerID, &e.BlockedID, &e.CreatedAt, &total); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	if len(out) == 0 && l.Offset > 0 {
		err = s.pool.QueryRow(ctx, `SELECT count(*) FROM blocks WHERE blocker_id = $1`, userID).Scan(&total)
	}
	return out, total, err
}

func (s *PostgresRelationshipStore) CountFollows(ctx context.Context, userID string) (int, int, error) {
	var followers, following int
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FILTER (WHERE following_id = $1), count(*) FILTER (WHERE follower_id = $1)
		 FROM follows WHERE following_id = $1 OR follower_id = $1`, userID).Scan(&followers, &following)
	return followers, following, err
}
