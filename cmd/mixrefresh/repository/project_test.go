package repository

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/henryhillproductions-afk/mixrefresh-backend/common/logger"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/mixkey"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/models"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/storage"
)

func newTestProjectRepo(t *testing.T) (*ProjectRepository, *storage.Dir) {
	t.Helper()
	store, err := storage.New(t.TempDir(), logger.NewNop())
	if err != nil {
		t.Fatalf("storage.New failed: %v", err)
	}
	return NewProjectRepository(store, logger.NewNop()), store
}

// TestGet_MissingDocument tests that absent registries read as empty
func TestGet_MissingDocument(t *testing.T) {
	repo, _ := newTestProjectRepo(t)

	entries, err := repo.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Expected empty registry, got %d entries", len(entries))
	}
}

// TestReplaceGet_RoundTrip tests the document read/write cycle
func TestReplaceGet_RoundTrip(t *testing.T) {
	repo, store := newTestProjectRepo(t)
	ctx := context.Background()

	in := []models.ProjectEntry{
		{ProjectID: "default", DisplayLabel: "Main Sessions"},
		{ProjectID: "club", DisplayLabel: "Club Set"},
	}
	if err := repo.Replace(ctx, "justin", in); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	out, err := repo.Get(ctx, "justin")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(out))
	}
	if out[0] != in[0] || out[1] != in[1] {
		t.Errorf("Round trip changed entries: %+v", out)
	}

	// The document lives under a key-style name in the upload dir
	if _, err := store.Stat("justin__projects.json"); err != nil {
		t.Errorf("Expected registry document on disk: %v", err)
	}
}

// TestReplace_Wholesale tests that each replace fully supersedes the last
func TestReplace_Wholesale(t *testing.T) {
	repo, _ := newTestProjectRepo(t)
	ctx := context.Background()

	first := []models.ProjectEntry{
		{ProjectID: "a", DisplayLabel: "A"},
		{ProjectID: "b", DisplayLabel: "B"},
	}
	if err := repo.Replace(ctx, "u", first); err != nil {
		t.Fatalf("first Replace failed: %v", err)
	}

	second := []models.ProjectEntry{{ProjectID: "c", DisplayLabel: "C"}}
	if err := repo.Replace(ctx, "u", second); err != nil {
		t.Fatalf("second Replace failed: %v", err)
	}

	out, err := repo.Get(ctx, "u")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(out) != 1 || out[0].ProjectID != "c" {
		t.Errorf("Expected only the second document's entries, got %+v", out)
	}

	// An empty replacement empties the document
	if err := repo.Replace(ctx, "u", []models.ProjectEntry{}); err != nil {
		t.Fatalf("empty Replace failed: %v", err)
	}
	out, err = repo.Get(ctx, "u")
	if err != nil {
		t.Fatalf("Get after empty Replace failed: %v", err)
	}
	if len(out) != 0 {
		t.Errorf("Expected empty registry, got %+v", out)
	}
}

// TestGet_CorruptDocument tests that unparseable registries surface an error
func TestGet_CorruptDocument(t *testing.T) {
	repo, store := newTestProjectRepo(t)
	ctx := context.Background()

	if _, err := store.WriteFile(ctx, "u__projects.json", strings.NewReader("not-json")); err != nil {
		t.Fatalf("seed corrupt registry failed: %v", err)
	}

	if _, err := repo.Get(ctx, "u"); err == nil {
		t.Errorf("Expected error for corrupt registry document")
	}
}

// TestRegistry_InvalidUser tests identifier validation on both operations
func TestRegistry_InvalidUser(t *testing.T) {
	repo, _ := newTestProjectRepo(t)
	ctx := context.Background()

	for _, userID := range []string{"", "a__b", "a/b"} {
		if _, err := repo.Get(ctx, userID); !errors.Is(err, mixkey.ErrInvalidToken) {
			t.Errorf("Get(%q): expected ErrInvalidToken, got %v", userID, err)
		}
		if err := repo.Replace(ctx, userID, nil); !errors.Is(err, mixkey.ErrInvalidToken) {
			t.Errorf("Replace(%q): expected ErrInvalidToken, got %v", userID, err)
		}
	}
}

// TestRegistry_InvisibleToMixScans tests that registry documents never show
// up as mixes even though they share the directory
func TestRegistry_InvisibleToMixScans(t *testing.T) {
	projRepo, store := newTestProjectRepo(t)
	mixRepo := NewMixRepository(store, logger.NewNop())
	ctx := context.Background()

	if err := projRepo.Replace(ctx, "u", []models.ProjectEntry{{ProjectID: "p", DisplayLabel: "P"}}); err != nil {
		t.Fatalf("Replace failed: %v", err)
	}

	mixes, err := mixRepo.ListScope(ctx, "", "")
	if err != nil {
		t.Fatalf("ListScope failed: %v", err)
	}
	if len(mixes) != 0 {
		t.Errorf("Registry document leaked into mix listing: %+v", mixes)
	}
}
