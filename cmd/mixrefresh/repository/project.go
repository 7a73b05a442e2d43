package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/henryhillproductions-afk/mixrefresh-backend/common/logger"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/mixkey"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/models"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/storage"
)

// registrySuffix names the per-user registry document
// The .json extension keeps it invisible to .wav blob scans even though
// it lives in the same flat directory
const registrySuffix = "projects.json"

// ProjectRepository handles the per-user project registry documents
type ProjectRepository struct {
	store *storage.Dir
	log   *logger.Logger
}

// NewProjectRepository creates a new project repository
func NewProjectRepository(store *storage.Dir, log *logger.Logger) *ProjectRepository {
	return &ProjectRepository{store: store, log: log}
}

// Get reads a user's registry document
// A user with no document yet gets an empty slice, never an error
func (r *ProjectRepository) Get(ctx context.Context, userID string) ([]models.ProjectEntry, error) {
	name, err := registryName(userID)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := r.store.ReadFile(name)
	if errors.Is(err, storage.ErrNotFound) {
		return []models.ProjectEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read registry for %s: %w", userID, err)
	}

	var entries []models.ProjectEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to decode registry for %s: %w", userID, err)
	}
	if entries == nil {
		entries = []models.ProjectEntry{}
	}
	return entries, nil
}

// Replace overwrites a user's registry document wholesale
// The write goes through the same staged-rename path as blobs, so readers
// never observe a half-written document
func (r *ProjectRepository) Replace(ctx context.Context, userID string, entries []models.ProjectEntry) error {
	name, err := registryName(userID)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode registry for %s: %w", userID, err)
	}

	if _, err := r.store.WriteFile(ctx, name, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write registry for %s: %w", userID, err)
	}

	return nil
}

func registryName(userID string) (string, error) {
	userID = strings.TrimSpace(userID)
	if err := mixkey.ValidateToken(userID); err != nil {
		return "", fmt.Errorf("registry user: %w", err)
	}
	return userID + mixkey.Delimiter + registrySuffix, nil
}
