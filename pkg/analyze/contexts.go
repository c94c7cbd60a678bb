package analyze

import (
	"sort"
	"strings"
)

// Context is a candidate example sentence. Cost is the number of distinct
// unknown words in it.
type Context struct {
	Text string
	Cost int
}

// offerContext applies one sentence to the word's contexts. The first sentence
// seen becomes Context 1; later distinct sentences compete for the extra slots
// by lowest cost, earlier sentences winning ties.
func (w *WordStats) offerContext(text string, cost, maxExtra int) {
	if w.FirstContext == "" {
		w.FirstContext = text
		return
	}
	if text == w.FirstContext || maxExtra <= 0 {
		return
	}
	for _, c := range w.Extras {
		if c.Text == text {
			return
		}
	}
	w.Extras = append(w.Extras, Context{Text: text, Cost: cost})
	sort.SliceStable(w.Extras, func(i, j int) bool { return w.Extras[i].Cost < w.Extras[j].Cost })
	if len(w.Extras) > maxExtra {
		w.Extras = w.Extras[:maxExtra]
	}
}

// Contexts returns Context 1 followed by the extras.
func (w *WordStats) Contexts() []string {
	if w.FirstContext == "" {
		return nil
	}
	out := []string{w.FirstContext}
	for _, c := range w.Extras {
		out = append(out, c.Text)
	}
	return out
}

// clipSentence shortens a sentence longer than maxRunes to searchRange runes on
// each side of the first occurrence of surface. Sentences where surface cannot
// be found are cut from the start.
func clipSentence(sentence, surface string, searchRange, maxRunes int) string {
	runes := []rune(sentence)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return sentence
	}
	start := 0
	width := len([]rune(surface))
	if i := strings.Index(sentence, surface); i >= 0 && surface != "" {
		start = len([]rune(sentence[:i]))
	}

	from := start - searchRange
	if from < 0 {
		from = 0
	}
	to := start + width + searchRange
	if to > len(runes) {
		to = len(runes)
	}

	var sb strings.Builder
	if from > 0 {
		sb.WriteString("…")
	}
	sb.WriteString(string(runes[from:to]))
	if to < len(runes) {
		sb.WriteString("…")
	}
	return sb.String()
}
