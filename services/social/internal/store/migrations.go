package store

import "github.com/example/movie-platform/internal/platform/db"

// Migrations returns the embedded schema, oldest first.
func Migrations() []db.Migration {
	return []db.Migration{
		{Version: 1, Name: "create_directory", UpSQL: migration001},
		{Version: 2, Name: "create_relationships", UpSQL: migration002},
		{Version: 3, Name: "create_comments", UpSQL: migration003},
		{Version: 4, Name: "create_comment_reactions", UpSQL: migration004},
		{Version: 5, Name: "create_movie_ratings", UpSQL: migration005},
	}
}

// users and movies mirror the auth and catalog services' data and are
// written only by the directory consumer.
const migration001 = `
CREATE TABLE IF NOT EXISTS users (
    id         TEXT PRIMARY KEY,
    deleted_at TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS movies (
    id TEXT PRIMARY KEY
);
`

const migration002 = `
CREATE TABLE IF NOT EXISTS follows (
    follower_id  TEXT NOT NULL,
    following_id TEXT NOT NULL,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (follower_id, following_id),
    CONSTRAINT follows_not_self CHECK (follower_id <> following_id)
);

CREATE INDEX IF NOT EXISTS idx_follows_following_created ON follows (following_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_follows_follower_created ON follows (follower_id, created_at DESC);

CREATE TABLE IF NOT EXISTS blocks (
    blocker_id TEXT NOT NULL,
    blocked_id TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    PRIMARY KEY (blocker_id, blocked_id),
    CONSTRAINT blocks_not_self CHECK (blocker_id <> blocked_id)
);

CREATE INDEX IF NOT EXISTS idx_blocks_blocker_created ON blocks (blocker_id, created_at DESC);
CREATE INDEX IF NOT EXISTS idx_blocks_blocked ON blocks (blocked_id);
`

const migration003 = `
CREATE TABLE IF NOT EXISTS comments (
    id           BIGSERIAL PRIMARY KEY,
    author_id    TEXT NOT NULL,
    subject_type TEXT NOT NULL,
    subject_id   TEXT NOT NULL,
    parent_id    BIGINT REFERENCES comments (id),
    depth        INTEGER NOT NULL DEFAULT 0,
    content      TEXT NOT NULL,
    edited_at    TIMESTAMPTZ,
    deleted_at   TIMESTAMPTZ,
    created_at   TIMESTAMPTZ NOT NULL DEFAULT now(),
    CONSTRAINT comments_depth CHECK (depth >= 0 AND (parent_id IS NULL) = (depth = 0)),
    CONSTRAINT comments_content_length CHECK (char_length(content) BETWEEN 1 AND 10000)
);

CREATE INDEX IF NOT EXISTS idx_comments_subject_roots
    ON comments (subject_type, subject_id, created_at DESC, id DESC)
    WHERE parent_id IS NULL AND deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_comments_parent_created
    ON comments (parent_id, created_at, id)
    WHERE parent_id IS NOT NULL;
`

const migration004 = `
CREATE TABLE IF NOT EXISTS comment_reactions (
    id         BIGSERIAL PRIMARY KEY,
    user_id    TEXT NOT NULL,
    comment_id BIGINT NOT NULL REFERENCES comments (id),
    kind       TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ,
    CONSTRAINT comment_reactions_user_comment UNIQUE (user_id, comment_id),
    CONSTRAINT comment_reactions_kind CHECK (kind IN ('upvote', 'downvote'))
);

CREATE INDEX IF NOT EXISTS idx_comment_reactions_comment ON comment_reactions (comment_id, kind);
`

const migration005 = `
CREATE TABLE IF NOT EXISTS movie_ratings (
    id         BIGSERIAL PRIMARY KEY,
    user_id    TEXT NOT NULL,
    movie_id   TEXT NOT NULL,
    score      SMALLINT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at TIMESTAMPTZ,
    CONSTRAINT movie_ratings_user_movie UNIQUE (user_id, movie_id),
    CONSTRAINT movie_ratings_score CHECK (score BETWEEN 1 AND 10)
);

CREATE INDEX IF NOT EXISTS idx_movie_ratings_movie ON movie_ratings (movie_id, score);
`
