// Package tokenize segments Japanese and Chinese text into lemma/reading
// tokens grouped by sentence.
package tokenize

import (
	"fmt"
	"strings"

	"github.com/japaniel/lexiplan/pkg/config"
)

// Token represents a single analyzed unit of text.
type Token struct {
	Surface string // The text as it appears (e.g. "行っ")
	Lemma   string // The dictionary form (e.g. "行く")
	Reading string // Hiragana reading of the lemma, empty for Chinese
	// PartsOfSpeech holds the analyzer's POS labels when available.
	PartsOfSpeech []string
}

// Key identifies a word. Two tokens are the same word iff both fields match.
type Key struct {
	Lemma   string
	Reading string
}

// Key returns the word identity of the token.
func (t Token) Key() Key { return Key{Lemma: t.Lemma, Reading: t.Reading} }

func (k Key) String() string {
	if k.Reading == "" {
		return k.Lemma
	}
	return k.Lemma + "[" + k.Reading + "]"
}

// Sentence is a run of text ended by a boundary character, plus its tokens.
type Sentence struct {
	Text   string
	Tokens []Token
}

// Tokenizer is implemented by the Japanese and Chinese analyzers. Both are
// deterministic for a fixed configuration and safe for concurrent use.
type Tokenizer interface {
	Tokenize(text string) ([]Token, error)
	TokenizeSentences(text string) ([]Sentence, error)
}

// New returns the tokenizer for cfg.Language.
func New(cfg *config.Config) (Tokenizer, error) {
	boundaries := cfg.Boundaries[cfg.Language]
	switch cfg.Language {
	case config.Japanese:
		return NewJapanese(boundaries)
	case config.Chinese:
		var pairs []config.Pair
		if cfg.ReinforcedSegmentation {
			pairs = cfg.Reinforce
		}
		return NewChinese(boundaries, pairs)
	}
	return nil, fmt.Errorf("no tokenizer for language %q", cfg.Language)
}

// SplitSentences cuts text after every rune contained in boundaries. Trailing
// text without a boundary is returned as the final sentence. Whitespace-only
// pieces are dropped.
func SplitSentences(text, boundaries string) []string {
	var sentences []string
	var current strings.Builder

	flush := func() {
		if strings.TrimSpace(current.String()) != "" {
			sentences = append(sentences, current.String())
		}
		current.Reset()
	}
	for _, r := range text {
		current.WriteRune(r)
		if strings.ContainsRune(boundaries, r) {
			flush()
		}
	}
	flush()
	return sentences
}

// tokenizeSentences is shared by both analyzers.
func tokenizeSentences(text, boundaries string, tokenize func(string) ([]Token, error)) ([]Sentence, error) {
	var result []Sentence
	for _, s := range SplitSentences(text, boundaries) {
		tokens, err := tokenize(s)
		if err != nil {
			return nil, err
		}
		result = append(result, Sentence{
			Text:   strings.TrimSpace(s),
			Tokens: tokens,
		})
	}
	return result, nil
}
