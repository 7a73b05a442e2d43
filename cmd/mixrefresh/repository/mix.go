package repository

import (
	"context"
	"fmt"
	"io"
	"sort"

	"github.com/henryhillproductions-afk/mixrefresh-backend/common/logger"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/mixkey"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/storage"
)

// MixRepository handles blob-directory operations for mixes
// There is no index to keep consistent: every query re-derives its answer
// from the directory contents, so reads and writes never coordinate
type MixRepository struct {
	store *storage.Dir
	log   *logger.Logger
}

// StoredMix couples a decoded key with the file it was derived from
type StoredMix struct {
	Key   mixkey.Key
	Entry storage.Entry
}

// NewMixRepository creates a new mix repository
func NewMixRepository(store *storage.Dir, log *logger.Logger) *MixRepository {
	return &MixRepository{store: store, log: log}
}

// Save stores a blob under its encoded key
// Saving to an existing key replaces the prior object, which is exactly
// the overwrite-mode contract and the accepted same-second collision
// behavior for version mode
func (r *MixRepository) Save(ctx context.Context, key mixkey.Key, blob io.Reader) (storage.Entry, error) {
	name := key.Filename()

	if _, err := r.store.WriteFile(ctx, name, blob); err != nil {
		return storage.Entry{}, fmt.Errorf("failed to store mix %s: %w", name, err)
	}

	// Re-stat so the caller sees the authoritative modification time
	entry, err := r.store.Stat(name)
	if err != nil {
		return storage.Entry{}, fmt.Errorf("failed to stat stored mix %s: %w", name, err)
	}

	return entry, nil
}

// ListScope scans the directory and returns every decodable mix matching
// the scope filter, newest first
// Undecodable names (foreign files, corrupt keys) are skipped so one bad
// entry never blocks the rest of the listing. Ties on modification time
// keep scan order; no tie-break is guaranteed
func (r *MixRepository) ListScope(ctx context.Context, userID, projectID string) ([]StoredMix, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := r.store.List(mixkey.Extension)
	if err != nil {
		return nil, fmt.Errorf("failed to scan mixes: %w", err)
	}

	mixes := make([]StoredMix, 0, len(entries))
	for _, e := range entries {
		key, err := mixkey.Decode(e.Name)
		if err != nil {
			r.log.Debug("skipping undecodable file", "name", e.Name, "error", err)
			continue
		}
		if !key.Matches(userID, projectID) {
			continue
		}
		mixes = append(mixes, StoredMix{Key: key, Entry: e})
	}

	sort.SliceStable(mixes, func(i, j int) bool {
		return mixes[i].Entry.ModTime.After(mixes[j].Entry.ModTime)
	})

	return mixes, nil
}

// Latest returns the most recently modified mix in scope, regardless of
// whether it was written in version or overwrite mode
func (r *MixRepository) Latest(ctx context.Context, userID, projectID string) (StoredMix, error) {
	mixes, err := r.ListScope(ctx, userID, projectID)
	if err != nil {
		return StoredMix{}, err
	}
	if len(mixes) == 0 {
		return StoredMix{}, fmt.Errorf("%w: no mixes in scope", storage.ErrNotFound)
	}
	return mixes[0], nil
}

// Stat resolves a raw stored name to its file entry
func (r *MixRepository) Stat(name string) (storage.Entry, error) {
	return r.store.Stat(name)
}

// FilePath resolves a raw stored name to its path for serving
func (r *MixRepository) FilePath(name string) (string, error) {
	return r.store.FilePath(name)
}
