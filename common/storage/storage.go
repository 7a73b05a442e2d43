package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/henryhillproductions-afk/mixrefresh-backend/common/logger"
)

// ErrNotFound indicates a name that maps to no stored file
var ErrNotFound = errors.New("object not found")

// ErrInvalidName indicates a name that would escape the storage directory
var ErrInvalidName = errors.New("invalid object name")

// Dir is a handle on one flat storage directory
// All objects live directly inside it; the flat namespace is what makes
// full-scan listing cheap enough at this scale. Handles are plain values
// passed to every consumer, so tests run isolated instances concurrently
type Dir struct {
	path string
	log  *logger.Logger
}

// Entry describes one file found by a directory scan
type Entry struct {
	Name    string
	ModTime time.Time
	Size    int64
}

// New creates the storage directory if needed and returns a handle on it
func New(path string, log *logger.Logger) (*Dir, error) {
	if path == "" {
		return nil, fmt.Errorf("storage path is empty")
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir %s: %w", path, err)
	}

	log.Info("storage directory ready", "path", path)

	return &Dir{path: path, log: log}, nil
}

// Path returns the storage directory path
func (d *Dir) Path() string {
	return d.path
}

// FilePath resolves a stored name to its path inside the directory
// Names that could escape the flat directory are rejected
func (d *Dir) FilePath(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	return filepath.Join(d.path, name), nil
}

// WriteFile stores the reader's contents under name
// The bytes are staged to a hidden temp file in the same directory and
// renamed into place, so a partially-written object is never visible
// under its final name. Cancelling ctx aborts the copy and discards the
// staged file. Writing to an existing name replaces it
func (d *Dir) WriteFile(ctx context.Context, name string, r io.Reader) (int64, error) {
	if err := validateName(name); err != nil {
		return 0, err
	}

	tmpPath := filepath.Join(d.path, ".upload-"+uuid.New().String()+".tmp")
	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create staging file: %w", err)
	}

	n, err := io.Copy(f, contextReader{ctx: ctx, r: r})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("stage %s: %w", name, err)
	}

	dest := filepath.Join(d.path, name)
	if err := os.Rename(tmpPath, dest); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("commit %s: %w", name, err)
	}

	d.log.Debug("object stored", "name", name, "size", humanize.Bytes(uint64(n)))

	return n, nil
}

// ReadFile returns the full contents of a stored file
func (d *Dir) ReadFile(name string) ([]byte, error) {
	path, err := d.FilePath(name)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}

// Stat returns file info for a stored name
func (d *Dir) Stat(name string) (Entry, error) {
	path, err := d.FilePath(name)
	if err != nil {
		return Entry{}, err
	}

	info, err := os.Stat(path)
	if errors.Is(err, os.ErrNotExist) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("stat %s: %w", name, err)
	}
	if info.IsDir() {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	return Entry{Name: name, ModTime: info.ModTime(), Size: info.Size()}, nil
}

// List scans the flat directory and returns every file matching suffix
// The scan is O(n) over everything ever stored, acceptable at the scale
// this serves. Files that vanish mid-scan are skipped
func (d *Dir) List(suffix string) ([]Entry, error) {
	dirents, err := os.ReadDir(d.path)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", d.path, err)
	}

	entries := make([]Entry, 0, len(dirents))
	for _, de := range dirents {
		if de.IsDir() || !strings.HasSuffix(de.Name(), suffix) {
			continue
		}
		info, err := de.Info()
		if err != nil {
			continue
		}
		entries = append(entries, Entry{
			Name:    de.Name(),
			ModTime: info.ModTime(),
			Size:    info.Size(),
		})
	}
	return entries, nil
}

// SweepStaging removes leftover staging files from uploads that never
// committed, such as after a crash
func (d *Dir) SweepStaging() (int, error) {
	matches, err := filepath.Glob(filepath.Join(d.path, ".upload-*.tmp"))
	if err != nil {
		return 0, fmt.Errorf("sweep staging: %w", err)
	}

	removed := 0
	for _, m := range matches {
		if err := os.Remove(m); err == nil {
			removed++
		}
	}
	if removed > 0 {
		d.log.Info("removed stale staging files", "count", removed)
	}
	return removed, nil
}

// Health verifies the storage directory is still present and usable
func (d *Dir) Health(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	info, err := os.Stat(d.path)
	if err != nil {
		return fmt.Errorf("storage dir unavailable: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("storage path %s is not a directory", d.path)
	}
	return nil
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	// A single path component cannot escape the directory
	if strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

// contextReader aborts a copy as soon as its context is cancelled, so a
// client disconnect mid-upload discards the staged file instead of
// committing a truncated object
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
