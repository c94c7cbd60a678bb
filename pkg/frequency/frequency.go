// Package frequency loads external frequency rankings and maps ranks to tiers.
package frequency

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/japaniel/lexiplan/pkg/config"
)

// Store is one named ranking. Smaller ranks are more frequent.
type Store struct {
	Name  string
	ranks map[string]int
}

// NewStore builds a store from lemma ranks. Lemmas are sanitized for lang.
func NewStore(name string, lang config.Language, ranks map[string]int) *Store {
	s := &Store{Name: name, ranks: make(map[string]int, len(ranks))}
	for w, r := range ranks {
		s.add(Sanitize(lang, w), r)
	}
	return s
}

func (s *Store) add(word string, rank int) {
	if word == "" || rank <= 0 {
		return
	}
	if old, ok := s.ranks[word]; !ok || rank < old {
		s.ranks[word] = rank
	}
}

// Rank returns the rank of lemma in the store.
func (s *Store) Rank(lemma string) (int, bool) {
	r, ok := s.ranks[lemma]
	return r, ok
}

// Len is the number of ranked lemmas.
func (s *Store) Len() int { return len(s.ranks) }

// Sanitize canonicalizes a list entry. For Japanese everything from the first
// hyphen or whitespace on is dropped, so "アイリス-iris" ranks アイリス.
func Sanitize(lang config.Language, word string) string {
	word = strings.TrimSpace(word)
	if lang == config.Japanese {
		if i := strings.IndexFunc(word, func(r rune) bool {
			return r == '-' || r == ' ' || r == '\t' || r == '\u3000'
		}); i >= 0 {
			word = word[:i]
		}
	}
	return word
}

// LoadCSV reads a Word,Rank file. Rows with a missing or non-positive rank are
// skipped and reported in the returned slice.
func LoadCSV(name, path string, lang config.Language) (*Store, []error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open frequency list: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.ReuseRecord = true

	s := &Store{Name: name, ranks: make(map[string]int)}
	var skipped []error
	for first := true; ; first = false {
		rec, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// ParseError carries its own line number.
			skipped = append(skipped, fmt.Errorf("%s: %w", path, err))
			continue
		}
		line, _ := r.FieldPos(0)
		if first && strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(rec[0], "\ufeff")), "word") {
			continue
		}
		if len(rec) < 2 {
			skipped = append(skipped, fmt.Errorf("%s line %d: expected Word,Rank", path, line))
			continue
		}
		rank, err := strconv.Atoi(strings.TrimSpace(rec[1]))
		if err != nil || rank <= 0 {
			skipped = append(skipped, fmt.Errorf("%s line %d: bad rank %q", path, line, rec[1]))
			continue
		}
		word := Sanitize(lang, strings.TrimPrefix(rec[0], "\ufeff"))
		if word == "" {
			skipped = append(skipped, fmt.Errorf("%s line %d: empty word", path, line))
			continue
		}
		s.add(word, rank)
	}
	return s, skipped, nil
}

// LoadDir loads every frequency_list_<lang>_<name>.csv in dir, sorted by name.
func LoadDir(dir string, lang config.Language) ([]*Store, []error, error) {
	prefix := "frequency_list_" + string(lang) + "_"
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read frequency dir: %w", err)
	}
	var stores []*Store
	var skipped []error
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || !strings.HasPrefix(n, prefix) || !strings.EqualFold(filepath.Ext(n), ".csv") {
			continue
		}
		name := strings.TrimSuffix(strings.TrimPrefix(n, prefix), filepath.Ext(n))
		if name == "" {
			continue
		}
		s, bad, err := LoadCSV(name, filepath.Join(dir, n), lang)
		if err != nil {
			skipped = append(skipped, fmt.Errorf("load %s: %w", n, err))
			continue
		}
		skipped = append(skipped, bad...)
		stores = append(stores, s)
	}
	sort.Slice(stores, func(i, j int) bool { return stores[i].Name < stores[j].Name })
	return stores, skipped, nil
}
