// Package filter decides which tokens a learner already handles.
package filter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/japaniel/lexiplan/pkg/config"
	"github.com/japaniel/lexiplan/pkg/known"
	"github.com/japaniel/lexiplan/pkg/tokenize"
)

// Class is the outcome of classifying one token at counting time.
type Class int

const (
	// NoTarget tokens carry no target-language character and are not counted at all.
	NoTarget Class = iota
	Ignored
	SingleChar
	Known
	Unknown
)

// Baseline reports whether the class counts toward a file's baseline known tokens.
func (c Class) Baseline() bool { return c == Ignored || c == SingleChar || c == Known }

// Set holds the ignore list and the initial known words. It is read-only once
// the run starts.
type Set struct {
	lang           config.Language
	suppressSingle bool

	ignored map[string]bool
	pairs   map[tokenize.Key]bool
	lemmas  map[string]bool
}

// New returns an empty set. suppressSingle enables single-character suppression.
func New(lang config.Language, suppressSingle bool) *Set {
	return &Set{
		lang:           lang,
		suppressSingle: suppressSingle,
		ignored:        make(map[string]bool),
		pairs:          make(map[tokenize.Key]bool),
		lemmas:         make(map[string]bool),
	}
}

// Ignore adds lemmas that are treated as known unconditionally.
func (s *Set) Ignore(lemmas ...string) {
	for _, l := range lemmas {
		if l = strings.TrimSpace(l); l != "" {
			s.ignored[l] = true
		}
	}
}

// AddKnown marks a lemma as known, and the (lemma, reading) pair when a reading is given.
func (s *Set) AddKnown(lemma, reading string) {
	lemma = strings.TrimSpace(lemma)
	if lemma == "" {
		return
	}
	s.lemmas[lemma] = true
	s.pairs[tokenize.Key{Lemma: lemma, Reading: tokenize.ToHiragana(strings.TrimSpace(reading))}] = true
}

// Augment adds the known entries, re-tokenizing each dictionary form so that
// the lemmas the tokenizer will actually produce are known too. Multi-token
// forms also add the combined lemma string. Tokenizer failures are returned
// but never prevent the literal form from being added.
func (s *Set) Augment(tk tokenize.Tokenizer, entries []known.Entry) []error {
	var errs []error
	for _, e := range entries {
		form := strings.TrimSpace(e.DictForm)
		if form == "" {
			continue
		}
		s.AddKnown(form, e.Secondary)

		tokens, err := tk.Tokenize(form)
		if err != nil {
			errs = append(errs, fmt.Errorf("tokenize known word %q: %w", form, err))
			continue
		}
		var combined strings.Builder
		for _, t := range tokens {
			s.lemmas[t.Lemma] = true
			combined.WriteString(t.Lemma)
		}
		if len(tokens) > 1 {
			s.lemmas[combined.String()] = true
		}
	}
	return errs
}

// IsIgnored reports whether lemma is on the ignore list or blacklist.
func (s *Set) IsIgnored(lemma string) bool { return s.ignored[lemma] }

// IsSingleSuppressed reports whether lemma is a single character and suppression is on.
func (s *Set) IsSingleSuppressed(lemma string) bool {
	return s.suppressSingle && utf8.RuneCountInString(lemma) == 1
}

// IsKnown reports whether the pair or the bare lemma is initially known.
func (s *Set) IsKnown(lemma, reading string) bool {
	return s.lemmas[lemma] || s.pairs[tokenize.Key{Lemma: lemma, Reading: reading}]
}

// Classify applies the precedence ignore, single-character, known, unknown to a token.
func (s *Set) Classify(t tokenize.Token) Class {
	if !tokenize.HasTarget(s.lang, t.Lemma) && !tokenize.HasTarget(s.lang, t.Surface) {
		return NoTarget
	}
	switch {
	case s.IsIgnored(t.Lemma):
		return Ignored
	case s.IsSingleSuppressed(t.Lemma):
		return SingleChar
	case s.IsKnown(t.Lemma, t.Reading):
		return Known
	}
	return Unknown
}

// Sizes reports the number of ignored lemmas, known pairs and known lemmas.
func (s *Set) Sizes() (ignored, pairs, lemmas int) {
	return len(s.ignored), len(s.pairs), len(s.lemmas)
}
