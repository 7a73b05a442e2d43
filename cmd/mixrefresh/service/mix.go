package service

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/benbjohnson/clock"
	"github.com/dustin/go-humanize"

	"github.com/henryhillproductions-afk/mixrefresh-backend/cmd/mixrefresh/repository"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/config"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/logger"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/mixkey"
	"github.com/henryhillproductions-afk/mixrefresh-backend/common/models"
)

const (
	// Listing truncation bounds; requests outside them are clamped, not
	// rejected
	listLimitMin = 1
	listLimitMax = 200
)

// MixService implements upload ingestion and version resolution
type MixService struct {
	repo  *repository.MixRepository
	cfg   *config.Config
	log   *logger.Logger
	clock clock.Clock
}

// MixOption configures a MixService
type MixOption func(*MixService)

// WithClock sets the clock used to derive version revisions
// Tests install a mock so timestamp keys are deterministic
func WithClock(c clock.Clock) MixOption {
	return func(s *MixService) {
		s.clock = c
	}
}

// NewMixService creates a new mix service
func NewMixService(repo *repository.MixRepository, cfg *config.Config, log *logger.Logger, opts ...MixOption) *MixService {
	s := &MixService{
		repo:  repo,
		cfg:   cfg,
		log:   log,
		clock: clock.New(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Ingest validates, encodes and stores one uploaded mix
// Validation happens before any byte is written. Empty identifiers fall
// back to the configured defaults rather than producing degenerate keys
func (s *MixService) Ingest(ctx context.Context, userID, projectID, modeStr, displayName, versionLabel string, blob io.Reader) (models.IngestResult, error) {
	mode, err := models.ParseMode(modeStr)
	if err != nil {
		return models.IngestResult{}, err
	}

	if strings.TrimSpace(userID) == "" {
		userID = s.cfg.App.DefaultUserID
	}
	if strings.TrimSpace(projectID) == "" {
		projectID = s.cfg.App.DefaultProjectID
	}

	key, err := mixkey.Encode(s.clock.Now(), userID, projectID, mode, displayName, versionLabel)
	if err != nil {
		return models.IngestResult{}, err
	}

	entry, err := s.repo.Save(ctx, key, blob)
	if err != nil {
		return models.IngestResult{}, err
	}

	path, err := s.repo.FilePath(entry.Name)
	if err != nil {
		return models.IngestResult{}, err
	}

	prettyName := mixkey.SanitizeLabel(displayName)
	if prettyName == "" {
		prettyName = key.ProjectID
	}

	result := models.IngestResult{
		Filename:     entry.Name,
		Path:         path,
		UserID:       key.UserID,
		ProjectID:    key.ProjectID,
		Mode:         mode,
		DisplayName:  prettyName,
		VersionLabel: mixkey.SanitizeLabel(versionLabel),
		CreatedAt:    entry.ModTime,
	}

	s.log.Info("mix ingested",
		"user_id", key.UserID,
		"project_id", key.ProjectID,
		"mode", mode,
		"name", entry.Name,
		"size", humanize.Bytes(uint64(entry.Size)),
	)

	return result, nil
}

// ListScope returns the newest-first view of a scope
// The head of a non-empty result is the scope's latest object: it alone
// carries the latest flag and the decorated display name, even when
// several objects share a modification time
func (s *MixService) ListScope(ctx context.Context, userID, projectID string, limit int) ([]models.MixVersion, error) {
	limit = clampLimit(limit)

	mixes, err := s.repo.ListScope(ctx, userID, projectID)
	if err != nil {
		return nil, err
	}
	if len(mixes) > limit {
		mixes = mixes[:limit]
	}

	versions := make([]models.MixVersion, 0, len(mixes))
	for i, m := range mixes {
		v := models.MixVersion{
			Name:        m.Entry.Name,
			DisplayName: m.Key.DisplayName(m.Entry.Name),
			CreatedAt:   m.Entry.ModTime,
			Size:        m.Entry.Size,
		}
		if i == 0 {
			v.IsLatest = true
			v.DisplayName = mixkey.DecorateLatest(v.DisplayName)
		}
		versions = append(versions, v)
	}

	return versions, nil
}

// FetchLatest resolves the newest mix in scope and the path to serve it from
func (s *MixService) FetchLatest(ctx context.Context, userID, projectID string) (models.MixVersion, string, error) {
	m, err := s.repo.Latest(ctx, userID, projectID)
	if err != nil {
		return models.MixVersion{}, "", err
	}

	path, err := s.repo.FilePath(m.Entry.Name)
	if err != nil {
		return models.MixVersion{}, "", err
	}

	version := models.MixVersion{
		Name:        m.Entry.Name,
		DisplayName: mixkey.DecorateLatest(m.Key.DisplayName(m.Entry.Name)),
		CreatedAt:   m.Entry.ModTime,
		Size:        m.Entry.Size,
		IsLatest:    true,
	}
	return version, path, nil
}

// FetchByKey resolves a raw stored name for direct download
// Scope is deliberately not re-validated here; the name either exists in
// the directory or it does not
func (s *MixService) FetchByKey(ctx context.Context, name string) (models.MixVersion, string, error) {
	if err := ctx.Err(); err != nil {
		return models.MixVersion{}, "", err
	}

	entry, err := s.repo.Stat(name)
	if err != nil {
		return models.MixVersion{}, "", fmt.Errorf("fetch %s: %w", name, err)
	}

	path, err := s.repo.FilePath(name)
	if err != nil {
		return models.MixVersion{}, "", err
	}

	version := models.MixVersion{
		Name:      entry.Name,
		CreatedAt: entry.ModTime,
		Size:      entry.Size,
	}
	if key, err := mixkey.Decode(entry.Name); err == nil {
		version.DisplayName = key.DisplayName(entry.Name)
	} else {
		version.DisplayName = entry.Name
	}

	return version, path, nil
}

func clampLimit(limit int) int {
	if limit < listLimitMin {
		return listLimitMin
	}
	if limit > listLimitMax {
		return listLimitMax
	}
	return limit
}
