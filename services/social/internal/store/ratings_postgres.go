package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRatingStore persists ratings in Postgres.
type PostgresRatingStore struct {
	pool *pgxpool.Pool
}

type pgRatingTx struct {
	tx pgx.Tx
}

const ratingColumns = `id, user_id, movie_id, score, created_at, updated_at`

func (s *PostgresRatingStore) InTx(ctx context.Context, fn func(RatingTx) error) error {
	return withTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(pgRatingTx{tx: tx})
	})
}

func (t pgRatingTx) GetForUpdate(ctx context.Context, userID, movieID string) (Rating, error) {
	r, err := scanRating(t.tx.QueryRow(ctx,
		`SELECT `+ratingColumns+` FROM movie_ratings WHERE user_id = $1 AND movie_id = $2 FOR UPDATE`,
		userID, movieID))
	return r, mapWriteErr(err)
}

func (t pgRatingTx) Insert(ctx context.Context, r Rating) (Rating, error) {
	out, err := scanRating(t.tx.QueryRow(ctx,
		`INSERT INTO movie_ratings (user_id, movie_id, score, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+ratingColumns,
		r.UserID, r.MovieID, r.Score, r.CreatedAt))
	return out, mapWriteErr(err)
}

func (t pgRatingTx) UpdateScore(ctx context.Context, id int64, score int, updatedAt time.Time) error {
	tag, err := t.tx.Exec(ctx, `UPDATE movie_ratings SET score = $1, updated_at = $2 WHERE id = $3`, score, updatedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t pgRatingTx) Delete(ctx context.Context, userID, movieID string) (bool, error) {
	tag, err := t.tx.Exec(ctx, `DELETE FROM movie_ratings WHERE user_id = $1 AND movie_id = $2`, userID, movieID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (s *PostgresRatingStore) Get(ctx context.Context, userID, movieID string) (Rating, error) {
	r, err := scanRating(s.pool.QueryRow(ctx,
		`SELECT `+ratingColumns+` FROM movie_ratings WHERE user_id = $1 AND movie_id = $2`,
		userID, movieID))
	return r, mapWriteErr(err)
}

func (s *PostgresRatingStore) Distribution(ctx context.Context, movieID string) (map[int]int, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT score, count(*) FROM movie_ratings WHERE movie_id = $1 GROUP BY score`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int]int)
	for rows.Next() {
		var score, n int
		if err := rows.Scan(&score, &n); err != nil {
			return nil, err
		}
		out[score] = n
	}
	return out, rows.Err()
}

func scanRating(row pgx.Row) (Rating, error) {
	var r Rating
	if err := row.Scan(&r.ID, &r.UserID, &r.MovieID, &r.Score, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return Rating{}, err
	}
	r.CreatedAt = r.CreatedAt.UTC()
	return r, nil
}
