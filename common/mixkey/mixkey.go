package mixkey

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/henryhillproductions-afk/mixrefresh-backend/common/models"
)

const (
	// Delimiter separates key segments inside a stored filename
	// It must never appear inside a user or project identifier
	Delimiter = "__"

	// RevisionLatest is the sentinel revision of overwrite-mode objects
	RevisionLatest = "latest"

	// Extension is the blob file extension; directory scans filter on it
	Extension = ".wav"

	// TimestampLayout renders version revisions as sortable local timestamps
	TimestampLayout = "2006-01-02_15-04-05"

	// hazardChars are stripped from labels and rejected in identifiers
	hazardChars = `\/:*?"<>|`

	latestMarker = "(latest)"
	latestSuffix = " (latest)"
)

var (
	// ErrMalformedKey indicates a filename whose user/project scope cannot
	// be recovered; scans skip such entries instead of failing
	ErrMalformedKey = errors.New("malformed storage key")

	// ErrInvalidToken indicates a user or project identifier that cannot
	// survive a key round trip
	ErrInvalidToken = errors.New("invalid identifier")

	hazardReplacer = newHazardReplacer()
)

func newHazardReplacer() *strings.Replacer {
	pairs := make([]string, 0, len(hazardChars)*2)
	for _, c := range hazardChars {
		pairs = append(pairs, string(c), "")
	}
	return strings.NewReplacer(pairs...)
}

// Key is the decoded identity of one stored blob
type Key struct {
	UserID    string
	ProjectID string

	// Either a TimestampLayout timestamp or RevisionLatest
	Revision string

	// Sanitized free text used only for display; may contain spaces
	// and even the delimiter sequence
	Label string
}

// SanitizeLabel makes user-provided text safe for filenames and URLs
// Whitespace runs collapse to single spaces; filesystem-hazard characters
// are stripped; spaces are kept for readability
func SanitizeLabel(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return hazardReplacer.Replace(s)
}

// ValidateToken rejects identifiers that would corrupt key parsing or
// escape the flat storage directory
func ValidateToken(tok string) error {
	if tok == "" {
		return fmt.Errorf("%w: empty", ErrInvalidToken)
	}
	if strings.Contains(tok, Delimiter) {
		return fmt.Errorf("%w: %q contains reserved sequence %q", ErrInvalidToken, tok, Delimiter)
	}
	if strings.ContainsAny(tok, hazardChars) {
		return fmt.Errorf("%w: %q contains filesystem-hazard characters", ErrInvalidToken, tok)
	}
	return nil
}

// Encode maps an upload's metadata to the key it will be stored under.
// The label segment is the sanitized display name (project id when empty),
// joined with the sanitized version label when one was supplied. Version
// mode derives the revision from now in local time; two encodes within the
// same second therefore collide and the later write replaces the earlier
// one under the identical key. That race is accepted at this design's
// scale and intentionally not papered over here.
func Encode(now time.Time, userID, projectID string, mode models.Mode, displayName, versionLabel string) (Key, error) {
	userID = strings.TrimSpace(userID)
	projectID = strings.TrimSpace(projectID)
	if err := ValidateToken(userID); err != nil {
		return Key{}, fmt.Errorf("user id: %w", err)
	}
	if err := ValidateToken(projectID); err != nil {
		return Key{}, fmt.Errorf("project id: %w", err)
	}

	label := SanitizeLabel(displayName)
	if label == "" {
		label = projectID
	}
	if version := SanitizeLabel(versionLabel); version != "" {
		label = label + "_" + version
	}

	key := Key{UserID: userID, ProjectID: projectID, Label: label}

	switch mode {
	case models.ModeOverwrite:
		key.Revision = RevisionLatest
		if !strings.Contains(key.Label, latestMarker) {
			key.Label += latestSuffix
		}
	case models.ModeVersion:
		key.Revision = now.Format(TimestampLayout)
	default:
		return Key{}, models.ErrInvalidMode
	}

	return key, nil
}

// Decode parses a stored filename back into its key segments
// The split stops at 4 segments so label text containing the delimiter
// sequence parses intact. Fewer than 2 segments means the user/project
// scope is unrecoverable and the name is rejected
func Decode(raw string) (Key, error) {
	name := strings.TrimSuffix(raw, Extension)
	parts := strings.SplitN(name, Delimiter, 4)
	if len(parts) < 2 {
		return Key{}, fmt.Errorf("%w: %q", ErrMalformedKey, raw)
	}

	key := Key{UserID: parts[0], ProjectID: parts[1]}
	if len(parts) > 2 {
		key.Revision = parts[2]
	}
	if len(parts) > 3 {
		key.Label = parts[3]
	}
	return key, nil
}

// Filename renders the key as its stored filename
func (k Key) Filename() string {
	return strings.Join([]string{k.UserID, k.ProjectID, k.Revision, k.Label}, Delimiter) + Extension
}

// Matches reports whether the key falls inside a scope filter
// An empty filter value matches everything; both filters are ANDed
func (k Key) Matches(userID, projectID string) bool {
	if userID != "" && k.UserID != userID {
		return false
	}
	if projectID != "" && k.ProjectID != projectID {
		return false
	}
	return true
}

// IsOverwrite reports whether the key carries the latest sentinel revision
func (k Key) IsOverwrite() bool {
	return k.Revision == RevisionLatest
}

// DisplayName derives the human-facing name from the label segment,
// falling back to the raw stored name when the key carries no label
func (k Key) DisplayName(raw string) string {
	if k.Label == "" {
		return raw
	}
	return k.Label + Extension
}

// DecorateLatest appends the latest marker to a display name unless one
// is already present; decorating twice is a no-op
func DecorateLatest(name string) string {
	if strings.Contains(name, latestMarker) {
		return name
	}
	if base, ok := strings.CutSuffix(name, Extension); ok {
		return base + latestSuffix + Extension
	}
	return name + latestSuffix
}
