package tokenize

import (
	"strings"
	"sync"

	"github.com/ikawaha/kagome-dict/ipa"
	"github.com/ikawaha/kagome/v2/tokenizer"
)

// Japanese tokenizes with kagome and the IPA dictionary.
type Japanese struct {
	t          *tokenizer.Tokenizer
	boundaries string

	// IPA readings belong to the surface form ("イッ" for 行っ), so the reading
	// of a lemma is resolved by analyzing the lemma on its own. Cached per lemma.
	mu       sync.Mutex
	readings map[string]string
}

// NewJapanese creates a new tokenizer instance.
func NewJapanese(boundaries string) (*Japanese, error) {
	t, err := tokenizer.New(ipa.Dict(), tokenizer.OmitBosEos())
	if err != nil {
		return nil, err
	}
	return &Japanese{t: t, boundaries: boundaries, readings: make(map[string]string)}, nil
}

// Tokenize breaks text into tokens with readings and base forms. Symbols and
// whitespace are dropped.
func (j *Japanese) Tokenize(text string) ([]Token, error) {
	var result []Token
	for _, token := range j.t.Tokenize(text) {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		if strings.TrimSpace(token.Surface) == "" {
			continue
		}

		// Kagome IPA features:
		// 0: Part of Speech, 1-3: Sub-POS, 4: Conjugation Type,
		// 5: Conjugation Form, 6: Base Form, 7: Reading, 8: Pronunciation
		features := token.Features()
		if len(features) > 0 && features[0] == "記号" {
			continue
		}

		lemma := token.Surface
		if len(features) > 6 && features[6] != "*" {
			lemma = features[6]
		}

		reading := ""
		if lemma == token.Surface {
			if len(features) > 7 && features[7] != "*" {
				reading = ToHiragana(features[7])
			}
		} else {
			reading = j.lemmaReading(lemma)
		}

		result = append(result, Token{
			Surface:       token.Surface,
			Lemma:         lemma,
			Reading:       reading,
			PartsOfSpeech: features,
		})
	}
	return result, nil
}

// TokenizeSentences splits the text into sentences and tokenizes each sentence.
func (j *Japanese) TokenizeSentences(text string) ([]Sentence, error) {
	return tokenizeSentences(text, j.boundaries, j.Tokenize)
}

func (j *Japanese) lemmaReading(lemma string) string {
	j.mu.Lock()
	r, ok := j.readings[lemma]
	j.mu.Unlock()
	if ok {
		return r
	}

	var sb strings.Builder
	for _, token := range j.t.Tokenize(lemma) {
		if token.Class == tokenizer.DUMMY {
			continue
		}
		features := token.Features()
		if len(features) <= 7 || features[7] == "*" {
			sb.Reset()
			break
		}
		sb.WriteString(features[7])
	}
	r = ToHiragana(sb.String())

	j.mu.Lock()
	j.readings[lemma] = r
	j.mu.Unlock()
	return r
}
