// Package resume turns uploaded résumé files into the plain text the
// assessment engine matches against.
package resume

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/spigell/hh-interviewer/internal/utils"
)

// MaxLength is the number of runes kept from a résumé.
const MaxLength = 1500

var (
	ErrUnsupported = errors.New("unsupported resume format")
	ErrEmpty       = errors.New("resume has no text")
)

// Extract reads a .txt/.md or .pdf résumé and returns its normalized text.
func Extract(path string) (string, error) {
	var (
		text string
		err  error
	)

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".txt", ".md", "":
		text, err = readText(path)
	case ".pdf":
		text, err = readPDF(path)
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupported, ext)
	}
	if err != nil {
		return "", err
	}

	text = Normalize(text)
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

// FromReader reads plain text, e.g. a pasted résumé on stdin.
func FromReader(r io.Reader) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, 1<<20))
	if err != nil {
		return "", fmt.Errorf("reading resume: %w", err)
	}
	text := Normalize(string(data))
	if text == "" {
		return "", ErrEmpty
	}
	return text, nil
}

// Normalize trims the text and keeps the first MaxLength runes.
func Normalize(text string) string {
	return strings.TrimSpace(utils.TruncateRunes(strings.TrimSpace(text), MaxLength))
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading resume %q: %w", path, err)
	}
	return string(data), nil
}

func readPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf %q: %w", path, err)
	}
	defer f.Close()

	var builder strings.Builder
	for i := 1; i <= r.NumPage(); i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		builder.WriteString(text)
		builder.WriteString("\n")

		// Later pages would be cut anyway.
		if builder.Len() > MaxLength*4 {
			break
		}
	}

	return builder.String(), nil
}
