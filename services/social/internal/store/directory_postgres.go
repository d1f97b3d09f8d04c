package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/example/movie-platform/internal/platform/db"
)

// PostgresDirectory reads the users and movies tables replicated into this
// service's database.
type PostgresDirectory struct {
	pool *pgxpool.Pool
}

func (d *PostgresDirectory) UserExists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, d.pool, `SELECT EXISTS(SELECT 1 FROM users WHERE id = $1)`, id)
}

func (d *PostgresDirectory) UserIsDeleted(ctx context.Context, id string) (bool, error) {
	var deletedAt *time.Time
	err := d.pool.QueryRow(ctx, `SELECT deleted_at FROM users WHERE id = $1`, id).Scan(&deletedAt)
	if err != nil {
		if db.IsNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return deletedAt != nil, nil
}

func (d *PostgresDirectory) MovieExists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, d.pool, `SELECT EXISTS(SELECT 1 FROM movies WHERE id = $1)`, id)
}

func (d *PostgresDirectory) UpsertUser(ctx context.Context, id string) error {
	_, err := d.pool.Exec(ctx, `INSERT INTO users (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, id)
	return err
}

// MarkUserDeleted keeps the first deletion instant when replayed.
func (d *PostgresDirectory) MarkUserDeleted(ctx context.Context, id string, at time.Time) error {
	_, err := d.pool.Exec(ctx, `
		INSERT INTO users (id, deleted_at) VALUES ($1, $2)
		ON CONFLICT (id) DO UPDATE SET deleted_at = COALESCE(users.deleted_at, EXCLUDED.deleted_at)`,
		id, at.UTC())
	return err
}

func (d *PostgresDirectory) UpsertMovie(ctx context.Context, id string) error {
	_, err := d.pool.Exec(ctx, `INSERT INTO movies (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`, id)
	return err
}
