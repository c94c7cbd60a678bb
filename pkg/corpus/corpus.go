// Package corpus lists the files of an immersion corpus in consumption order.
package corpus

import (
	"bufio"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/japaniel/lexiplan/pkg/config"
	"github.com/japaniel/lexiplan/pkg/extract"
)

// Priority is the user-declared urgency of a corpus file.
type Priority int

const (
	High Priority = iota
	Low
	Goal
)

func (p Priority) String() string {
	switch p {
	case High:
		return "HIGH"
	case Low:
		return "LOW"
	case Goal:
		return "GOAL"
	}
	return fmt.Sprintf("Priority(%d)", int(p))
}

// Dir is the directory name holding files of this priority.
func (p Priority) Dir() string {
	switch p {
	case High:
		return "HighPriority"
	case Low:
		return "LowPriority"
	case Goal:
		return "GoalContent"
	}
	return ""
}

// Priorities lists the tiers in consumption order.
var Priorities = []Priority{High, Low, Goal}

// File is one corpus file. Seq is its 1-based position in consumption order.
type File struct {
	Path     string
	Priority Priority
	Seq      int
}

// Name is the file's basename, used in source lists and reports.
func (f File) Name() string { return filepath.Base(f.Path) }

// Walker collects the files below <Root>/<lang>.
type Walker struct {
	Root         string
	ManifestName string
	// Logger is used for skipped entries. nil means no logging.
	Logger *log.Logger
}

// Files returns every supported file, HIGH first, then LOW, then GOAL. Inside
// a directory, children named by the manifest come first in manifest order;
// the rest follow case-insensitively sorted. Subdirectories are expanded in place.
func (w *Walker) Files(lang config.Language) ([]File, error) {
	base := filepath.Join(w.Root, string(lang))
	info, err := os.Stat(base)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%s: %w", base, ErrNoCorpus)
		}
		return nil, fmt.Errorf("stat corpus root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory: %w", base, ErrNoCorpus)
	}

	var files []File
	for _, p := range Priorities {
		dir := filepath.Join(base, p.Dir())
		if _, err := os.Stat(dir); err != nil {
			w.logf("Warning: %s missing, no %s files", dir, p)
			continue
		}
		paths, err := w.walk(dir)
		if err != nil {
			return nil, err
		}
		for _, path := range paths {
			files = append(files, File{Path: path, Priority: p, Seq: len(files) + 1})
		}
	}
	return files, nil
}

func (w *Walker) walk(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	byName := make(map[string]os.DirEntry, len(entries))
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".") || e.Name() == w.ManifestName {
			continue
		}
		byName[e.Name()] = e
	}

	order, err := readManifest(filepath.Join(dir, w.ManifestName))
	if err != nil {
		return nil, err
	}
	var ordered []os.DirEntry
	for _, name := range order {
		if e, ok := byName[name]; ok {
			ordered = append(ordered, e)
			delete(byName, name)
		} else {
			w.logf("Warning: %s lists %q which does not exist", filepath.Join(dir, w.ManifestName), name)
		}
	}
	rest := make([]os.DirEntry, 0, len(byName))
	for _, e := range byName {
		rest = append(rest, e)
	}
	sort.Slice(rest, func(i, j int) bool {
		a, b := strings.ToLower(rest[i].Name()), strings.ToLower(rest[j].Name())
		if a != b {
			return a < b
		}
		return rest[i].Name() < rest[j].Name()
	})
	ordered = append(ordered, rest...)

	var paths []string
	for _, e := range ordered {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			sub, err := w.walk(path)
			if err != nil {
				return nil, err
			}
			paths = append(paths, sub...)
			continue
		}
		if !extract.Supported(path) {
			w.logf("Warning: skipping unsupported file %s", path)
			continue
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// readManifest returns the child names listed in a manifest, or nil if there is none.
func readManifest(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer f.Close()

	var names []string
	seen := make(map[string]bool)
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		line := strings.TrimSpace(strings.TrimPrefix(sc.Text(), "\ufeff"))
		if line == "" || strings.HasPrefix(line, "#") || seen[line] {
			continue
		}
		seen[line] = true
		names = append(names, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read manifest %s: %w", path, err)
	}
	return names, nil
}

func (w *Walker) logf(format string, args ...any) {
	if w.Logger != nil {
		w.Logger.Printf(format, args...)
	}
}

// ErrNoCorpus is returned when the corpus root for a language does not exist.
var ErrNoCorpus = &CorpusError{"corpus root not found"}

// CorpusError provides a simple typed error for corpus traversal.
type CorpusError struct{ msg string }

func (e *CorpusError) Error() string { return e.msg }
