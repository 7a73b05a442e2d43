package models

import (
	"errors"
	"strings"
	"time"
)

// Mode represents the retention semantics of an upload
type Mode string

const (
	// ModeVersion stores a new immutable object under a timestamp revision
	ModeVersion Mode = "version"

	// ModeOverwrite replaces the single latest-revision object for the scope
	ModeOverwrite Mode = "overwrite"
)

// ErrInvalidMode indicates a mode string that is neither recognized value
var ErrInvalidMode = errors.New("invalid mode: use 'version' or 'overwrite'")

// ParseMode normalizes a client-supplied mode string
// Empty input defaults to version mode, matching the upload form default
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeVersion:
		return ModeVersion, nil
	case ModeOverwrite:
		return ModeOverwrite, nil
	default:
		return "", ErrInvalidMode
	}
}

// MixVersion is one retained object within a scope
// Derived entirely from the stored filename and file info on every read
type MixVersion struct {
	// Stored filename (the encoded key)
	Name string

	// Human-facing name: the label segment of the key, decorated with
	// " (latest)" when this is the newest object in the queried scope
	DisplayName string

	// Filesystem modification time; ordering key for latest resolution
	CreatedAt time.Time

	// Blob size in bytes
	Size int64

	// True only for the single newest object in the queried scope
	IsLatest bool
}

// IngestResult describes a stored upload
type IngestResult struct {
	// Stored filename (the encoded key)
	Filename string

	// Absolute path of the stored blob
	Path string

	UserID    string
	ProjectID string
	Mode      Mode

	// Sanitized display label that seeded the key's label segment
	DisplayName string

	// Sanitized version label; empty when the client supplied none
	VersionLabel string

	// Modification time of the stored blob
	CreatedAt time.Time
}

// ProjectEntry maps a project id to its display label inside a user registry
type ProjectEntry struct {
	ProjectID    string `json:"project_id"`
	DisplayLabel string `json:"display_label"`
}
