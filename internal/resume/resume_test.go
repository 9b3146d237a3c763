package resume

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"unicode/utf8"
)

func write(t *testing.T, name, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestExtractText(t *testing.T) {
	t.Parallel()

	got, err := Extract(write(t, "cv.txt", "\n  Python developer. SQL reports.\n\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Python developer. SQL reports." {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestExtractTruncates(t *testing.T) {
	t.Parallel()

	got, err := Extract(write(t, "cv.md", strings.Repeat("é", MaxLength+200)))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n := utf8.RuneCountInString(got); n != MaxLength {
		t.Fatalf("expected %d runes, got %d", MaxLength, n)
	}
}

func TestExtractErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		path   func(t *testing.T) string
		target error
	}{
		{
			name:   "unsupported extension",
			path:   func(t *testing.T) string { return write(t, "cv.docx", "text") },
			target: ErrUnsupported,
		},
		{
			name:   "blank file",
			path:   func(t *testing.T) string { return write(t, "cv.txt", " \n\t ") },
			target: ErrEmpty,
		},
		{
			name: "broken pdf",
			path: func(t *testing.T) string { return write(t, "cv.pdf", "not a pdf at all") },
		},
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "absent.txt") },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Extract(tt.path(t))
			if err == nil {
				t.Fatalf("expected error")
			}
			if tt.target != nil && !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
		})
	}
}

func TestFromReader(t *testing.T) {
	t.Parallel()

	got, err := FromReader(strings.NewReader("  Go engineer  "))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "Go engineer" {
		t.Fatalf("unexpected text: %q", got)
	}

	if _, err := FromReader(strings.NewReader("   ")); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty, got %v", err)
	}
}
