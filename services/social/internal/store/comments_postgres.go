package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCommentStore persists comments in Postgres.
type PostgresCommentStore struct {
	pool *pgxpool.Pool
}

type pgCommentTx struct {
	tx pgx.Tx
}

const commentColumns = `id, author_id, subject_type, subject_id, parent_id, depth, content, edited_at, deleted_at, created_at`

func (s *PostgresCommentStore) InTx(ctx context.Context, fn func(CommentTx) error) error {
	return withTx(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(pgCommentTx{tx: tx})
	})
}

func (t pgCommentTx) GetForUpdate(ctx context.Context, id int64) (Comment, error) {
	row := t.tx.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1 FOR UPDATE`, id)
	c, err := scanComment(row)
	return c, mapWriteErr(err)
}

func (t pgCommentTx) Insert(ctx context.Context, c Comment) (Comment, error) {
	row := t.tx.QueryRow(ctx,
		`INSERT INTO comments (author_id, subject_type, subject_id, parent_id, depth, content, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+commentColumns,
		c.AuthorID, c.SubjectType, c.SubjectID, c.ParentID, c.Depth, c.Content, c.CreatedAt)
	out, err := scanComment(row)
	return out, mapWriteErr(err)
}

func (t pgCommentTx) UpdateContent(ctx context.Context, id int64, content string, editedAt time.Time) error {
	tag, err := t.tx.Exec(ctx, `UPDATE comments SET content = $1, edited_at = $2 WHERE id = $3`, content, editedAt, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (t pgCommentTx) SetLifecycle(ctx context.Context, id int64, l Lifecycle) error {
	tag, err := t.tx.Exec(ctx, `UPDATE comments SET deleted_at = $1 WHERE id = $2`, l.DeletedAt(), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresCommentStore) Get(ctx context.Context, id int64) (Comment, error) {
	c, err := scanComment(s.pool.QueryRow(ctx, `SELECT `+commentColumns+` FROM comments WHERE id = $1`, id))
	return c, mapWriteErr(err)
}

func (s *PostgresCommentStore) ListRoots(ctx context.Context, subjectType, subjectID string, l Listing) ([]Comment, int, error) {
	const where = `subject_type = $1 AND subject_id = $2 AND parent_id IS NULL AND deleted_at IS NULL`
	out, err := s.scanComments(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE `+where+`
		 ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`,
		subjectType, subjectID, l.Limit, l.Offset)
	if err != nil {
		return nil, 0, err
	}
	var total int
	err = s.pool.QueryRow(ctx, `SELECT count(*) FROM comments WHERE `+where, subjectType, subjectID).Scan(&total)
	return out, total, err
}

func (s *PostgresCommentStore) ListReplies(ctx context.Context, parentID int64, l Listing) ([]Comment, int, error) {
	const where = `parent_id = $1 AND deleted_at IS NULL`
	out, err := s.scanComments(ctx,
		`SELECT `+commentColumns+` FROM comments WHERE `+where+`
		 ORDER BY created_at ASC, id ASC LIMIT $2 OFFSET $3`,
		parentID, l.Limit, l.Offset)
	if err != nil {
		return nil, 0, err
	}
	var total int
	err = s.pool.QueryRow(ctx, `SELECT count(*) FROM comments WHERE `+where, parentID).Scan(&total)
	return out, total, err
}

func (s *PostgresCommentStore) Stats(ctx context.Context, ids []int64) (map[int64]CommentStats, error) {
	out := make(map[int64]CommentStats, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := s.pool.Query(ctx, `
SELECT c.id,
       (SELECT count(*) FROM comment_reactions r WHERE r.comment_id = c.id AND r.kind = 'upvote'),
       (SELECT count(*) FROM comment_reactions r WHERE r.comment_id = c.id AND r.kind = 'downvote'),
       (SELECT count(*) FROM comments ch WHERE ch.parent_id = c.id AND ch.deleted_at IS NULL)
FROM unnest($1::bigint[]) AS c(id)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id int64
		var cs CommentStats
		if err := rows.Scan(&id, &cs.Upvotes, &cs.Downvotes, &cs.Replies); err != nil {
			return nil, err
		}
		out[id] = cs
	}
	return out, rows.Err()
}

func (s *PostgresCommentStore) scanComments(ctx context.Context, q string, args ...any) ([]Comment, error) {
	rows, err := s.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	var deletedAt *time.Time
	err := row.Scan(&c.ID, &c.AuthorID, &c.SubjectType, &c.SubjectID, &c.ParentID,
		&c.Depth, &c.Content, &c.EditedAt, &deletedAt, &c.CreatedAt)
	if err != nil {
		return Comment{}, err
	}
	c.CreatedAt = c.CreatedAt.UTC()
	c.Lifecycle = LifecycleFrom(deletedAt)
	return c, nil
}
