package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/movie-platform/internal/platform/db"
)

// Postgres hands out the store contracts over one pool.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Migrate applies the embedded schema.
func (p *Postgres) Migrate(ctx context.Context) error {
	return db.Migrate(ctx, p.pool, Migrations())
}

// Ping backs the readiness probe.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) Relationships() *PostgresRelationshipStore {
	return &PostgresRelationshipStore{pool: p.pool}
}
func (p *Postgres) Comments() *PostgresCommentStore   { return &PostgresCommentStore{pool: p.pool} }
func (p *Postgres) Reactions() *PostgresReactionStore { return &PostgresReactionStore{pool: p.pool} }
func (p *Postgres) Ratings() *PostgresRatingStore     { return &PostgresRatingStore{pool: p.pool} }
func (p *Postgres) Directory() *PostgresDirectory     { return &PostgresDirectory{pool: p.pool} }

func withTx(ctx context.Context, pool *pgxpool.Pool, fn func(pgx.Tx) error) error {
	return db.WithTx(ctx, pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
}

// mapWriteErr turns constraint violations into store sentinels.
func mapWriteErr(err error) error {
	switch {
	case err == nil:
		return nil
	case db.IsUniqueViolation(err):
		return ErrDuplicate
	case db.IsNoRows(err):
		return ErrNotFound
	default:
		return err
	}
}

func exists(ctx context.Context, q db.Querier, sql string, args ...any) (bool, error) {
	var ok bool
	err := q.QueryRow(ctx, sql, args...).Scan(&ok)
	return ok, err
}
