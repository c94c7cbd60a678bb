package analyze

import (
	"strings"
	"testing"
)

func TestOfferContext(t *testing.T) {
	w := &WordStats{}
	w.offerContext("a", 5, 2)
	w.offerContext("a", 1, 2)
	w.offerContext("b", 3, 2)
	w.offerContext("c", 2, 2)
	w.offerContext("b", 0, 2)
	w.offerContext("d", 2, 2)
	w.offerContext("e", 1, 2)

	if got := strings.Join(w.Contexts(), ","); got != "a,e,c" {
		t.Errorf("contexts = %q, want a,e,c", got)
	}
}

func TestOfferContextRepeatedLine(t *testing.T) {
	w := &WordStats{}
	w.offerContext("first", 3, 2)
	w.offerContext("again", 1, 2)
	w.offerContext("again", 1, 2)
	w.offerContext("other", 2, 2)

	if got := strings.Join(w.Contexts(), ","); got != "first,again,other" {
		t.Errorf("contexts = %q, want first,again,other", got)
	}
}

func TestOfferContextNoExtras(t *testing.T) {
	w := &WordStats{}
	w.offerContext("a", 1, 0)
	w.offerContext("b", 1, 0)
	if got := w.Contexts(); len(got) != 1 || got[0] != "a" {
		t.Errorf("contexts = %q", got)
	}
	if (&WordStats{}).Contexts() != nil {
		t.Errorf("word without sightings should have no contexts")
	}
}

func TestClipSentence(t *testing.T) {
	long := strings.Repeat("あ", 50) + "猫" + strings.Repeat("い", 50)
	tests := []struct {
		name     string
		sentence string
		surface  string
		want     string
	}{
		{"short kept", "猫が好き。", "猫", "猫が好き。"},
		{"window", long, "猫", "…" + strings.Repeat("あ", 5) + "猫" + strings.Repeat("い", 5) + "…"},
		{"missing surface", long, "犬", strings.Repeat("あ", 6) + "…"},
		{"at start", "猫" + strings.Repeat("い", 100), "猫", "猫" + strings.Repeat("い", 5) + "…"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := clipSentence(tt.sentence, tt.surface, 5, 20); got != tt.want {
				t.Errorf("clipSentence = %q, want %q", got, tt.want)
			}
		})
	}
}
