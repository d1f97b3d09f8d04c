package store

import (
	"context"
	"time"
)

// UserDirectory answers identity questions owned by the auth service.
type UserDirectory interface {
	UserExists(ctx context.Context, id string) (bool, error)
	UserIsDeleted(ctx context.Context, id string) (bool, error)
}

// MovieCatalog answers catalog questions owned by the catalog service.
type MovieCatalog interface {
	MovieExists(ctx context.Context, id string) (bool, error)
}

// DirectoryWriter applies upstream identity and catalog changes to the local
// mirror. Every method is idempotent.
type DirectoryWriter interface {
	UpsertUser(ctx context.Context, id string) error
	MarkUserDeleted(ctx context.Context, id string, at time.Time) error
	UpsertMovie(ctx context.Context, id string) error
}
