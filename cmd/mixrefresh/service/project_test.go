package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henryhillproductions-afk/mixrefresh-backend/cmd/mixrefresh/repository"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/logger"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/models"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/storage"
)

func setupProjectService(t *testing.T) *ProjectService {
	t.Helper()

	store, err := storage.New(t.TempDir(), logger.NewNop())
	require.NoError(t, err)

	repo := repository.NewProjectRepository(store, logger.NewNop())
	return NewProjectService(repo, logger.NewNop())
}

// TestProjectReplace_RoundTrip tests the save-then-read path
func TestProjectReplace_RoundTrip(t *testing.T) {
	svc := setupProjectService(t)
	ctx := context.Background()

	entries := []models.ProjectEntry{
		{ProjectID: "default", DisplayLabel: "Main Mixes"},
		{ProjectID: "album-2", DisplayLabel: "Second Album"},
	}

	count, err := svc.Replace(ctx, "justin", entries)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	got, err := svc.Get(ctx, "justin")
	require.NoError(t, err)
	assert.Equal(t, entries, got)
}

// TestProjectReplace_FiltersInvalid tests that incomplete rows are dropped
func TestProjectReplace_FiltersInvalid(t *testing.T) {
	svc := setupProjectService(t)
	ctx := context.Background()

	count, err := svc.Replace(ctx, "justin", []models.ProjectEntry{
		{ProjectID: "keep", DisplayLabel: "Kept"},
		{ProjectID: "", DisplayLabel: "no id"},
		{ProjectID: "no-label", DisplayLabel: "   "},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := svc.Get(ctx, "justin")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "keep", got[0].ProjectID)
}

// TestProjectReplace_DedupesKeepFirst tests duplicate project handling
func TestProjectReplace_DedupesKeepFirst(t *testing.T) {
	svc := setupProjectService(t)
	ctx := context.Background()

	count, err := svc.Replace(ctx, "justin", []models.ProjectEntry{
		{ProjectID: "default", DisplayLabel: "First"},
		{ProjectID: "default", DisplayLabel: "Second"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	got, err := svc.Get(ctx, "justin")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "First", got[0].DisplayLabel)
}

// TestProjectReplace_Wholesale tests that a new payload fully replaces the old
func TestProjectReplace_Wholesale(t *testing.T) {
	svc := setupProjectService(t)
	ctx := context.Background()

	_, err := svc.Replace(ctx, "justin", []models.ProjectEntry{
		{ProjectID: "old", DisplayLabel: "Old"},
	})
	require.NoError(t, err)

	count, err := svc.Replace(ctx, "justin", nil)
	require.NoError(t, err)
	assert.Zero(t, count)

	got, err := svc.Get(ctx, "justin")
	require.NoError(t, err)
	assert.Empty(t, got)
}

// TestProjectGet_UnknownUser tests the empty-registry default
func TestProjectGet_UnknownUser(t *testing.T) {
	svc := setupProjectService(t)

	got, err := svc.Get(context.Background(), "stranger")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
