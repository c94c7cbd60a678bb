package frequency

import (
	"strconv"
	"strings"
)

// Outside is the label of a word absent from every store.
const Outside = "Outside"

// Label is the tier of a lemma in one store.
type Label struct {
	Source string
	Tier   int
}

// Tiers maps ranks to tiers over a fixed list of stores. Read-only after construction.
type Tiers struct {
	thresholds []int
	stores     []*Store
}

// NewTiers takes ascending thresholds; rank r lands in tier 1 + the number of
// thresholds below r, so [2500,5000,7500,10000] yields tiers 1-5.
func NewTiers(thresholds []int, stores []*Store) *Tiers {
	return &Tiers{thresholds: append([]int(nil), thresholds...), stores: stores}
}

// Tier returns the tier of a rank, or 0 when the rank is missing (≤ 0).
func (t *Tiers) Tier(rank int) int {
	if rank <= 0 {
		return 0
	}
	tier := 1
	for _, th := range t.thresholds {
		if rank > th {
			tier++
		}
	}
	return tier
}

// Labels returns one entry per store containing lemma, in store order.
func (t *Tiers) Labels(lemma string) []Label {
	var out []Label
	for _, s := range t.stores {
		if r, ok := s.Rank(lemma); ok {
			if tier := t.Tier(r); tier > 0 {
				out = append(out, Label{Source: s.Name, Tier: tier})
			}
		}
	}
	return out
}

// TierLabel renders the Tier column: "Outside" or "Name:Digit" entries joined by ';'.
func (t *Tiers) TierLabel(lemma string) string {
	labels := t.Labels(lemma)
	if len(labels) == 0 {
		return Outside
	}
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = l.Source + ":" + strconv.Itoa(l.Tier)
	}
	return strings.Join(parts, ";")
}
