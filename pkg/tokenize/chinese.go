package tokenize

import (
	"strings"

	"github.com/go-ego/gse"

	"github.com/japaniel/lexiplan/pkg/config"
)

// Chinese segments text with gse. Every instance loads its own segmenter, so
// reinforced segmentation only affects the instance it was configured on.
type Chinese struct {
	seg        gse.Segmenter
	boundaries string
	// fused words split into halves after segmentation when reinforced
	split map[string][2]string
}

// NewChinese loads the embedded dictionary. A non-empty pairs list enables
// reinforced segmentation: each fused pair is removed from the dictionary and
// split whenever the segmenter still emits it.
func NewChinese(boundaries string, pairs []config.Pair) (*Chinese, error) {
	c := &Chinese{boundaries: boundaries}
	if err := c.seg.LoadDictEmbed("zh"); err != nil {
		return nil, err
	}
	if len(pairs) > 0 {
		c.split = make(map[string][2]string, len(pairs))
		for _, p := range pairs {
			if p.Left == "" || p.Right == "" {
				continue
			}
			fused := p.Left + p.Right
			c.seg.RemoveToken(fused)
			c.split[fused] = [2]string{p.Left, p.Right}
		}
	}
	return c, nil
}

// Tokenize segments text. Only pieces holding a CJK ideograph and no kana are
// kept; readings are always empty.
func (c *Chinese) Tokenize(text string) ([]Token, error) {
	var result []Token
	for _, w := range c.seg.Cut(text, true) {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if halves, ok := c.split[w]; ok {
			result = appendHanzi(result, halves[0])
			result = appendHanzi(result, halves[1])
			continue
		}
		result = appendHanzi(result, w)
	}
	return result, nil
}

// TokenizeSentences splits the text into sentences and tokenizes each sentence.
func (c *Chinese) TokenizeSentences(text string) ([]Sentence, error) {
	return tokenizeSentences(text, c.boundaries, c.Tokenize)
}

func appendHanzi(tokens []Token, w string) []Token {
	if !containsFunc(w, IsHan) || containsFunc(w, IsKana) {
		return tokens
	}
	return append(tokens, Token{Surface: w, Lemma: w})
}
