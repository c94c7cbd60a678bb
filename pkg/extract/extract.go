// Package extract turns corpus files into plain target-language text.
package extract

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/japaniel/lexiplan/pkg/config"
)

// Extractor reads a corpus file and returns its plain text.
type Extractor struct {
	// Logger receives decode fallbacks. nil means no logging.
	Logger *log.Logger
}

// Supported reports whether path has an extension ExtractText understands.
func Supported(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".md", ".srt", ".ass", ".ssa", ".html", ".htm", ".xhtml":
		return true
	}
	return false
}

// ExtractText reads path and converts it to plain text according to its extension.
func (e *Extractor) ExtractText(path string, lang config.Language) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !Supported(path) {
		return "", fmt.Errorf("%s: %w", ext, ErrUnsupported)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	text, lossy := Decode(raw, lang)
	if lossy && e.Logger != nil {
		e.Logger.Printf("Warning: %s is not valid UTF-8, decoded with fallback", path)
	}

	switch ext {
	case ".srt":
		return StripSRT(text), nil
	case ".ass", ".ssa":
		return StripASS(text), nil
	case ".html", ".htm", ".xhtml":
		return HTMLText(path, text)
	}
	return text, nil
}

// ErrUnsupported is returned for file types without an extractor.
var ErrUnsupported = &ExtractError{"unsupported file type"}

// ExtractError provides a simple typed error for extraction.
type ExtractError struct{ msg string }

func (e *ExtractError) Error() string { return e.msg }
