// Package known loads the learner's known-word export and plain word lists.
package known

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Entry matches one element of the "words" array of KnownWord.json.
type Entry struct {
	DictForm    string `json:"dictForm"`
	Secondary   string `json:"secondary"`
	KnownStatus string `json:"knownStatus"`
	HasCard     int    `json:"hasCard"`
}

// Known status values used by the export.
const (
	StatusKnown    = "KNOWN"
	StatusLearning = "LEARNING"
	StatusUnknown  = "UNKNOWN"
	StatusIgnored  = "IGNORED"
)

// IsKnown reports whether the entry counts as known: status KNOWN or a card exists.
func (e Entry) IsKnown() bool {
	return e.KnownStatus == StatusKnown || e.HasCard == 1
}

// List is the parsed content of a known-word file.
type List struct {
	Entries []Entry
	// Skipped holds one error per element that could not be decoded.
	Skipped []error
}

// Known returns the entries that count as known.
func (l *List) Known() []Entry {
	var out []Entry
	for _, e := range l.Entries {
		if e.IsKnown() && strings.TrimSpace(e.DictForm) != "" {
			out = append(out, e)
		}
	}
	return out
}

// LoadKnownWords reads KnownWord.json. Both the object form {"words": [...]}
// and a bare top-level array are accepted. Elements that fail to decode are
// reported in List.Skipped instead of failing the whole file.
func LoadKnownWords(path string) (*List, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimPrefix(data, []byte("\xEF\xBB\xBF"))

	var raw []json.RawMessage
	var wrapper struct {
		Words []json.RawMessage `json:"words"`
	}
	// Try parsing as full object wrapper first { "words": [...] }
	if err := json.Unmarshal(data, &wrapper); err == nil && wrapper.Words != nil {
		raw = wrapper.Words
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse known words as object or array: %w", err)
	}

	list := &List{Entries: make([]Entry, 0, len(raw))}
	for i, r := range raw {
		var e Entry
		if err := json.Unmarshal(r, &e); err != nil {
			list.Skipped = append(list.Skipped, fmt.Errorf("word %d: %w", i, err))
			continue
		}
		list.Entries = append(list.Entries, e)
	}
	return list, nil
}

// LoadWordList reads a plain list with one lemma per line. Empty lines and
// lines starting with '#' are ignored.
func LoadWordList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var words []string
	sc := bufio.NewScanner(f)
	first := true
	for sc.Scan() {
		line := sc.Text()
		if first {
			line = strings.TrimPrefix(line, "\ufeff")
			first = false
		}
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		words = append(words, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read word list %s: %w", path, err)
	}
	return words, nil
}
