package service

import (
	"context"
	"strings"

	"github.com/henryhillproductions-afk/mixrefresh-backend/cmd/mixrefresh/repository"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/logger"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/models"
)

// ProjectService maintains the per-user project registries
// The registry is presentation metadata only: it never influences which
// mixes exist or how latest is resolved, and it may freely diverge from
// the projects actually present on disk
type ProjectService struct {
	repo *repository.ProjectRepository
	log  *logger.Logger
}

// NewProjectService creates a new project service
func NewProjectService(repo *repository.ProjectRepository, log *logger.Logger) *ProjectService {
	return &ProjectService{repo: repo, log: log}
}

// Get returns a user's registry entries; users without a registry get an
// empty list
func (s *ProjectService) Get(ctx context.Context, userID string) ([]models.ProjectEntry, error) {
	return s.repo.Get(ctx, userID)
}

// Replace overwrites a user's registry wholesale and returns how many
// entries were retained
// Entries with an empty project id or label after trimming are silently
// dropped; duplicate project ids keep their first occurrence
func (s *ProjectService) Replace(ctx context.Context, userID string, entries []models.ProjectEntry) (int, error) {
	valid := make([]models.ProjectEntry, 0, len(entries))
	seen := make(map[string]bool, len(entries))

	for _, e := range entries {
		projectID := strings.TrimSpace(e.ProjectID)
		label := strings.TrimSpace(e.DisplayLabel)
		if projectID == "" || label == "" {
			continue
		}
		if seen[projectID] {
			continue
		}
		seen[projectID] = true
		valid = append(valid, models.ProjectEntry{ProjectID: projectID, DisplayLabel: label})
	}

	if err := s.repo.Replace(ctx, userID, valid); err != nil {
		return 0, err
	}

	s.log.Info("project registry replaced",
		"user_id", userID,
		"count", len(valid),
		"dropped", len(entries)-len(valid),
	)

	return len(valid), nil
}
