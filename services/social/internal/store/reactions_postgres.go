package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresReactionStore persists comment reactions in Postgres.
type PostgresReactionStore struct {
	pool *pgxpool.Pool
}

type pgReactionTx struct {
	tx pgx.Tx
}

const reactionColumns = `id, user_id, comment_id, kind, created_at, updated_at`

func (s *PostgresReactionStore) InTx(ctx context.Context, fn func(ReactionTx) error) error {
	return withTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(pgReactionTx{tx: tx})
	})
}

func (t pgReactionTx) CommentActive(ctx context.Context, commentID int64) (bool, error) {
	var deletedAt *time.Time
	err := t.tx.QueryRow(ctx, `SELECT deleted_at FROM comments WHERE id = $1 FOR SHARE`, commentID).Scan(&deletedAt)
	if err != nil {
		if mapWriteErr(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return deletedAt == nil, nil
}

func (t pgReactionTx) GetForUpdate(ctx context.Context, userID string, commentID int64) (Reaction, error) {
	r, err := scanReaction(t.tx.QueryRow(ctx,
		`SELECT `+reactionColumns+` FROM comment_reactions WHERE user_id = $1 AND comment_id = $2 FOR UPDATE`,
		userID, commentID))
	return r, mapWriteErr(err)
}

func (t pgReactionTx) Insert(ctx context.Context, r Reaction) (Reaction, error) {
	out, err := scanReaction(t.tx.QueryRow(ctx,
		`INSERT INTO comment_reactions (user_id, comment_id, kind, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+reactionColumns,
		r.UserID, r.CommentID, string(r.Kind), r.CreatedAt))
	return out, mapWriteErr(err)
}

func (t pgReactionTx) UpdateKind(ctx context.Context, id int64, kind ReactionKind, updatedAt time.Time) error {
	tag, err := t.tx.Exec(ctx, `UPDATE comment_reactions SET kind = $1, updated_at = $2 WHERE id = $3`,
		string(kind), updatedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t pgReactionTx) Delete(ctx context.Context, userID string, commentID int64) (bool, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM comment_reactions WHERE user_id = $1 AND comment_id = $2`, userID, commentID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresReactionStore) Get(ctx context.Context, userID string, commentID int64) (Reaction, error) {
	r, err := scanReaction(s.pool.QueryRow(ctx,
		`SELECT `+reactionColumns+` FROM comment_reactions WHERE user_id = $1 AND comment_id = $2`,
		userID, commentID))
	return r, mapWriteErr(err)
}

func (s *PostgresReactionStore) Counts(ctx context.Context, commentID int64) (ReactionCounts, error) {
	var out ReactionCounts
	err := s.pool.QueryRow(ctx,
		`SELECT count(*) FILTER (WHERE kind = 'upvote'), count(*) FILTER (WHERE kind = 'downvote')
		 FROM comment_reactions WHERE comment_id = $1`, commentID).Scan(&out.Upvotes, &out.Downvotes)
	return out, err
}

func scanReaction(row pgx.Row) (Reaction, error) {
	var r Reaction
	var kind string
	if err := row.Scan(&r.ID, &r.UserID, &r.CommentID, &kind, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return Reaction{}, err
	}
	r.Kind = ReactionKind(kind)
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}
