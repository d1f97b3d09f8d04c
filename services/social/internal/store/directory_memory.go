package store

import (
	"context"
	"time"
)

// MemoryDirectory is a seedable UserDirectory, MovieCatalog and
// DirectoryWriter. User writes hold the Memory mutex as well, so they are
// ordered against relationship transactions.
type MemoryDirectory struct {
	db *Memory
}

func (d *MemoryDirectory) AddUser(ids ...string) {
	d.db.mu.Lock()
	defer d.db.mu.Unlock()
	d.db.dirMu.Lock()
	defer d.db.dirMu.Unlock()
	for _, id := range ids {
		d.db.users[id] = false
	}
}

// DeleteUser marks a known user as deleted.
func (d *MemoryDirectory) DeleteUser(id string) {
	d.db.mu.Lock()
	defer d.db.mu.Unlock()
	d.db.dirMu.Lock()
	defer d.db.dirMu.Unlock()
	if _, ok := d.db.users[id]; ok {
		d.db.users[id] = true
	}
}

func (d *MemoryDirectory) AddMovie(ids ...string) {
	d.db.dirMu.Lock()
	defer d.db.dirMu.Unlock()
	for _, id := range ids {
		d.db.movies[id] = struct{}{}
	}
}

func (d *MemoryDirectory) UserExists(_ context.Context, id string) (bool, error) {
	d.db.dirMu.RLock()
	defer d.db.dirMu.RUnlock()
	_, ok := d.db.users[id]
	return ok, nil
}

func (d *MemoryDirectory) UserIsDeleted(_ context.Context, id string) (bool, error) {
	d.db.dirMu.RLock()
	defer d.db.dirMu.RUnlock()
	return d.db.users[id], nil
}

func (d *MemoryDirectory) MovieExists(_ context.Context, id string) (bool, error) {
	d.db.dirMu.RLock()
	defer d.db.dirMu.RUnlock()
	_, ok := d.db.movies[id]
	return ok, nil
}

func (d *MemoryDirectory) UpsertUser(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.db.mu.Lock()
	defer d.db.mu.Unlock()
	d.db.dirMu.Lock()
	defer d.db.dirMu.Unlock()
	if _, ok := d.db.users[id]; !ok {
		d.db.users[id] = false
	}
	return nil
}

func (d *MemoryDirectory) MarkUserDeleted(ctx context.Context, id string, _ time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.db.mu.Lock()
	defer d.db.mu.Unlock()
	d.db.dirMu.Lock()
	defer d.db.dirMu.Unlock()
	d.db.users[id] = true
	return nil
}

func (d *MemoryDirectory) UpsertMovie(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	d.AddMovie(id)
	return nil
}
