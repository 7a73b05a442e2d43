package mixkey

import (
	"errors"
	"testing"
	"time"

	"github.com/henryhillproductions-afk/mixrefresh-backend/common/models"
)

var testNow = time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)

// TestEncode_VersionMode tests timestamp-revision key construction
func TestEncode_VersionMode(t *testing.T) {
	key, err := Encode(testNow, "justin", "default", models.ModeVersion, "Mix A", "")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if key.Revision != "2024-01-01_00-00-00" {
		t.Errorf("Expected revision '2024-01-01_00-00-00', got '%s'", key.Revision)
	}
	if got := key.Filename(); got != "justin__default__2024-01-01_00-00-00__Mix A.wav" {
		t.Errorf("Unexpected filename: '%s'", got)
	}
	if key.IsOverwrite() {
		t.Errorf("Version-mode key should not carry the latest sentinel")
	}
}

// TestEncode_OverwriteMode tests latest-sentinel key construction
func TestEncode_OverwriteMode(t *testing.T) {
	key, err := Encode(testNow, "justin", "default", models.ModeOverwrite, "Mix B", "")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}

	if key.Revision != RevisionLatest {
		t.Errorf("Expected revision '%s', got '%s'", RevisionLatest, key.Revision)
	}
	if got := key.Filename(); got != "justin__default__latest__Mix B (latest).wav" {
		t.Errorf("Unexpected filename: '%s'", got)
	}
	if !key.IsOverwrite() {
		t.Errorf("Overwrite-mode key should carry the latest sentinel")
	}
}

// TestEncode_LatestDecorationIdempotent tests that an already-decorated
// label is not decorated again
func TestEncode_LatestDecorationIdempotent(t *testing.T) {
	key, err := Encode(testNow, "u", "p", models.ModeOverwrite, "Mix B (latest)", "")
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if key.Label != "Mix B (latest)" {
		t.Errorf("Expected label 'Mix B (latest)', got '%s'", key.Label)
	}
}

// TestEncode_LabelFallbacks tests display/version label derivation
func TestEncode_LabelFallbacks(t *testing.T) {
	tests := []struct {
		name         string
		displayName  string
		versionLabel string
		wantLabel    string
	}{
		{"both_empty", "", "", "proj"},
		{"display_only", "My Mix", "", "My Mix"},
		{"version_joined", "My Mix", "v2", "My Mix_v2"},
		{"empty_display_with_version", "", "v2", "proj_v2"},
		{"whitespace_only_display", "   ", "", "proj"},
		{"sanitized_version", "My Mix", "v:2?", "My Mix_v2"},
	}

	for _, tt := range tests {
		key, err := Encode(testNow, "user", "proj", models.ModeVersion, tt.displayName, tt.versionLabel)
		if err != nil {
			t.Errorf("%s: Encode failed: %v", tt.name, err)
			continue
		}
		if key.Label != tt.wantLabel {
			t.Errorf("%s: expected label '%s', got '%s'", tt.name, tt.wantLabel, key.Label)
		}
	}
}

// TestEncode_RejectsBadTokens tests identifier validation
func TestEncode_RejectsBadTokens(t *testing.T) {
	tests := []struct {
		name      string
		userID    string
		projectID string
	}{
		{"empty_user", "", "proj"},
		{"empty_project", "user", ""},
		{"whitespace_user", "   ", "proj"},
		{"delimiter_in_user", "a__b", "proj"},
		{"delimiter_in_project", "user", "a__b"},
		{"slash_in_user", "a/b", "proj"},
		{"backslash_in_project", "user", `a\b`},
		{"traversal_ish_project", "user", "p:q"},
	}

	for _, tt := range tests {
		_, err := Encode(testNow, tt.userID, tt.projectID, models.ModeVersion, "x", "")
		if !errors.Is(err, ErrInvalidToken) {
			t.Errorf("%s: expected ErrInvalidToken, got %v", tt.name, err)
		}
	}
}

// TestEncode_InvalidMode tests rejection of unrecognized modes
func TestEncode_InvalidMode(t *testing.T) {
	_, err := Encode(testNow, "u", "p", models.Mode("delete"), "x", "")
	if !errors.Is(err, models.ErrInvalidMode) {
		t.Errorf("Expected ErrInvalidMode, got %v", err)
	}
}

// TestSanitizeLabel tests whitespace collapsing and hazard stripping
func TestSanitizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Mix A", "Mix A"},
		{"  Mix   A  ", "Mix A"},
		{"Mix\tA\nB", "Mix A B"},
		{`a\b/c:d*e?f"g<h>i|j`, "abcdefghij"},
		{"", ""},
		{"   ", ""},
		{"Club Mix (v2)", "Club Mix (v2)"},
	}

	for _, tt := range tests {
		if got := SanitizeLabel(tt.in); got != tt.want {
			t.Errorf("SanitizeLabel(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

// TestDecode tests parsing stored filenames back into keys
func TestDecode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want Key
	}{
		{
			name: "full_key",
			raw:  "justin__default__2024-01-01_00-00-00__Mix A.wav",
			want: Key{UserID: "justin", ProjectID: "default", Revision: "2024-01-01_00-00-00", Label: "Mix A"},
		},
		{
			name: "latest_key",
			raw:  "justin__default__latest__Mix B (latest).wav",
			want: Key{UserID: "justin", ProjectID: "default", Revision: "latest", Label: "Mix B (latest)"},
		},
		{
			name: "label_contains_delimiter",
			raw:  "u__p__latest__a__b__c.wav",
			want: Key{UserID: "u", ProjectID: "p", Revision: "latest", Label: "a__b__c"},
		},
		{
			name: "three_segments",
			raw:  "u__p__latest.wav",
			want: Key{UserID: "u", ProjectID: "p", Revision: "latest"},
		},
		{
			name: "two_segments",
			raw:  "u__p.wav",
			want: Key{UserID: "u", ProjectID: "p"},
		},
	}

	for _, tt := range tests {
		got, err := Decode(tt.raw)
		if err != nil {
			t.Errorf("%s: Decode failed: %v", tt.name, err)
			continue
		}
		if got != tt.want {
			t.Errorf("%s: expected %+v, got %+v", tt.name, tt.want, got)
		}
	}
}

// TestDecode_Malformed tests rejection of unparseable names
func TestDecode_Malformed(t *testing.T) {
	for _, raw := range []string{"noseparator.wav", "plainfile", ""} {
		if _, err := Decode(raw); !errors.Is(err, ErrMalformedKey) {
			t.Errorf("Decode(%q): expected ErrMalformedKey, got %v", raw, err)
		}
	}
}

// TestEncodeDecode_RoundTrip tests that the scope always survives a round trip
func TestEncodeDecode_RoundTrip(t *testing.T) {
	tests := []struct {
		userID      string
		projectID   string
		mode        models.Mode
		displayName string
	}{
		{"justin", "default", models.ModeVersion, "Mix A"},
		{"justin", "default", models.ModeOverwrite, "Mix B"},
		{"alice", "club-set", models.ModeVersion, "with __ inside"},
		{"bob", "p1", models.ModeVersion, ""},
		{"bob", "p1", models.ModeOverwrite, "final (latest)"},
	}

	for _, tt := range tests {
		key, err := Encode(testNow, tt.userID, tt.projectID, tt.mode, tt.displayName, "")
		if err != nil {
			t.Fatalf("Encode(%s/%s) failed: %v", tt.userID, tt.projectID, err)
		}

		decoded, err := Decode(key.Filename())
		if err != nil {
			t.Fatalf("Decode(%s) failed: %v", key.Filename(), err)
		}

		if decoded.UserID != tt.userID || decoded.ProjectID != tt.projectID {
			t.Errorf("Round trip lost scope: expected %s/%s, got %s/%s",
				tt.userID, tt.projectID, decoded.UserID, decoded.ProjectID)
		}
		if decoded.Revision != key.Revision {
			t.Errorf("Round trip lost revision: expected '%s', got '%s'", key.Revision, decoded.Revision)
		}
	}
}

// TestKeyMatches tests scope filtering
func TestKeyMatches(t *testing.T) {
	key := Key{UserID: "justin", ProjectID: "default"}

	tests := []struct {
		name      string
		userID    string
		projectID string
		want      bool
	}{
		{"global_scope", "", "", true},
		{"user_only_match", "justin", "", true},
		{"user_only_miss", "alice", "", false},
		{"project_only_match", "", "default", true},
		{"project_only_miss", "", "other", false},
		{"both_match", "justin", "default", true},
		{"user_match_project_miss", "justin", "other", false},
		{"user_miss_project_match", "alice", "default", false},
	}

	for _, tt := range tests {
		if got := key.Matches(tt.userID, tt.projectID); got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, got)
		}
	}
}

// TestDecorateLatest tests latest-marker decoration idempotency
func TestDecorateLatest(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Mix A.wav", "Mix A (latest).wav"},
		{"Mix B (latest).wav", "Mix B (latest).wav"},
		{"no extension", "no extension (latest)"},
		{"u__p__latest__x.wav", "u__p__latest__x (latest).wav"},
	}

	for _, tt := range tests {
		if got := DecorateLatest(tt.in); got != tt.want {
			t.Errorf("DecorateLatest(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}

// TestDisplayName tests label-based display naming with raw fallback
func TestDisplayName(t *testing.T) {
	withLabel := Key{UserID: "u", ProjectID: "p", Revision: "latest", Label: "Mix A"}
	if got := withLabel.DisplayName("u__p__latest__Mix A.wav"); got != "Mix A.wav" {
		t.Errorf("Expected 'Mix A.wav', got '%s'", got)
	}

	noLabel := Key{UserID: "u", ProjectID: "p"}
	if got := noLabel.DisplayName("u__p.wav"); got != "u__p.wav" {
		t.Errorf("Expected raw fallback 'u__p.wav', got '%s'", got)
	}
}
