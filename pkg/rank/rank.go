// Package rank orders unknown words into the priority learning list.
package rank

import (
	"fmt"
	"sort"

	"github.com/japaniel/lexiplan/pkg/analyze"
	"github.com/japaniel/lexiplan/pkg/frequency"
	"github.com/japaniel/lexiplan/pkg/tokenize"
)

// Row is one line of the priority list.
type Row struct {
	Key         tokenize.Key
	Surface     string
	Tier        string
	Score       int
	Occurrences int
	Contexts    []string
	High        int
	Low         int
	Goal        int
	Sources     []string
	MinSeq      int
}

// Context returns context i (0-based), or "" when there are fewer.
func (r Row) Context(i int) string {
	if i < len(r.Contexts) {
		return r.Contexts[i]
	}
	return ""
}

// NewRow builds the output row of a word.
func NewRow(ws *analyze.WordStats, tiers *frequency.Tiers) Row {
	tier := frequency.Outside
	if tiers != nil {
		tier = tiers.TierLabel(ws.Key.Lemma)
	}
	return Row{
		Key:         ws.Key,
		Surface:     ws.Surface,
		Tier:        tier,
		Score:       ws.Score,
		Occurrences: ws.Total,
		Contexts:    ws.Contexts(),
		High:        ws.High,
		Low:         ws.Low,
		Goal:        ws.Goal,
		Sources:     ws.Sources(),
		MinSeq:      ws.MinSeq,
	}
}

// Status is the outcome of target-coverage truncation.
type Status int

const (
	// NoTarget means no target coverage was requested.
	NoTarget Status = iota
	// AlreadyMet means the baseline already reaches the target; no rows are emitted.
	AlreadyMet
	// Reached means the list was cut at the row that reaches the target.
	Reached
	// Shortfall means every row was emitted and the target is still not reached.
	Shortfall
)

func (s Status) String() string {
	switch s {
	case NoTarget:
		return "no target"
	case AlreadyMet:
		return "already met"
	case Reached:
		return "reached"
	case Shortfall:
		return "shortfall"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

// Options control filtering and truncation.
type Options struct {
	// MinFreq drops words seen fewer times overall. 0 disables it.
	MinFreq int
	// Target is a coverage percentage in (0,100]. 0 disables truncation.
	Target float64
}

// List is the ranked priority list.
type List struct {
	Rows   []Row
	Status Status
	// Baseline and Coverage are corpus coverage percentages before and after
	// learning every emitted row. Both are 0 for an empty corpus.
	Baseline float64
	Coverage float64
}

// Rank filters and orders the aggregated words: score descending, then the
// earliest file the word appears in. Equal keys keep first-appearance order.
func Rank(res *analyze.Result, tiers *frequency.Tiers, opts Options) *List {
	var words []*analyze.WordStats
	for _, ws := range res.Ordered() {
		if opts.MinFreq > 0 && ws.Total < opts.MinFreq {
			continue
		}
		words = append(words, ws)
	}
	sort.SliceStable(words, func(i, j int) bool {
		if words[i].Score != words[j].Score {
			return words[i].Score > words[j].Score
		}
		return words[i].MinSeq < words[j].MinSeq
	})

	total, known := res.Totals()
	list := &List{Baseline: percent(known, total)}

	if opts.Target <= 0 {
		list.Rows = make([]Row, len(words))
		for i, ws := range words {
			list.Rows[i] = NewRow(ws, tiers)
			known += ws.Total
		}
		list.Coverage = percent(known, total)
		return list
	}

	if reached(known, total, opts.Target) {
		list.Status = AlreadyMet
		list.Coverage = list.Baseline
		return list
	}
	list.Status = Shortfall
	for _, ws := range words {
		list.Rows = append(list.Rows, NewRow(ws, tiers))
		known += ws.Total
		if reached(known, total, opts.Target) {
			list.Status = Reached
			break
		}
	}
	list.Coverage = percent(known, total)
	return list
}

// reached reports known/total >= target%. An empty corpus has nothing left to learn.
func reached(known, total int, target float64) bool {
	if total == 0 {
		return true
	}
	return float64(known)*100 >= target*float64(total)
}

func percent(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return 100 * float64(n) / float64(d)
}
