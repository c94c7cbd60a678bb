// Package progressive simulates learning file by file in consumption order.
package progressive

import (
	"sort"

	"github.com/japaniel/lexiplan/pkg/analyze"
	"github.com/japaniel/lexiplan/pkg/corpus"
	"github.com/japaniel/lexiplan/pkg/frequency"
	"github.com/japaniel/lexiplan/pkg/rank"
	"github.com/japaniel/lexiplan/pkg/tokenize"
)

// Row is one word learned while reading a file.
type Row struct {
	Seq  int
	Path string
	Name string

	Word rank.Row
	// FileOccurrences is the word's count inside this file.
	FileOccurrences int

	// Baseline is the file's coverage from the initial known set alone.
	Baseline float64
	// Current is the coverage before learning this word, New after.
	Current float64
	New     float64

	KnownCount int
	TotalCount int
}

// Summary describes the simulation of one file.
type Summary struct {
	Seq      int
	Path     string
	Name     string
	Priority corpus.Priority

	TotalTokens int
	Baseline    float64
	Start       float64
	End         float64
	Learned     int
	TargetMet   bool
}

// Report is the full simulation output.
type Report struct {
	Rows  []Row
	Files []Summary
}

// Simulator walks the aggregated files carrying acquisitions forward.
type Simulator struct {
	Tiers *frequency.Tiers
	// MinFreq filters candidates by their corpus-wide count.
	MinFreq int
	// Target is the per-file coverage percentage to reach. 0 learns every candidate.
	Target float64
	// CarryGoal makes words learned in GOAL files known for later files.
	CarryGoal bool
}

type session struct {
	pairs  map[tokenize.Key]bool
	lemmas map[string]bool
}

func (s *session) known(k tokenize.Key) bool { return s.pairs[k] || s.lemmas[k.Lemma] }

func (s *session) learn(k tokenize.Key) {
	s.pairs[k] = true
	s.lemmas[k.Lemma] = true
}

type candidate struct {
	count int
	ws    *analyze.WordStats
}

// Run simulates the files of res in order. The session starts from the
// initial known set, which res already accounts for in BaselineKnown, and
// only grows at the end of each file.
func (s *Simulator) Run(res *analyze.Result) *Report {
	sess := &session{pairs: make(map[tokenize.Key]bool), lemmas: make(map[string]bool)}
	rep := &Report{}

	for _, f := range res.Files {
		sum := Summary{Seq: f.Seq, Path: f.Path, Name: f.Name, Priority: f.Priority, TotalTokens: f.TotalTokens}
		if f.TotalTokens == 0 {
			rep.Files = append(rep.Files, sum)
			continue
		}

		start := f.BaselineKnown
		var cands []candidate
		for _, u := range f.Unknown {
			if sess.known(u.Key) {
				start += u.Count
				continue
			}
			ws := res.Words[u.Key]
			if ws == nil || (s.MinFreq > 0 && ws.Total < s.MinFreq) {
				continue
			}
			cands = append(cands, candidate{count: u.Count, ws: ws})
		}
		sort.SliceStable(cands, func(i, j int) bool {
			a, b := cands[i].ws, cands[j].ws
			if a.Score != b.Score {
				return a.Score > b.Score
			}
			if a.Total != b.Total {
				return a.Total > b.Total
			}
			return a.MinSeq < b.MinSeq
		})

		total := f.TotalTokens
		baseline := pct(f.BaselineKnown, total)
		current := start
		var learned []tokenize.Key
		for _, c := range cands {
			if s.Target > 0 && reached(current, total, s.Target) {
				break
			}
			before := current
			current += c.count
			rep.Rows = append(rep.Rows, Row{
				Seq:             f.Seq,
				Path:            f.Path,
				Name:            f.Name,
				Word:            rank.NewRow(c.ws, s.Tiers),
				FileOccurrences: c.count,
				Baseline:        baseline,
				Current:         pct(before, total),
				New:             pct(current, total),
				KnownCount:      current,
				TotalCount:      total,
			})
			learned = append(learned, c.ws.Key)
		}

		if s.CarryGoal || f.Priority != corpus.Goal {
			for _, k := range learned {
				sess.learn(k)
			}
		}

		sum.Baseline = baseline
		sum.Start = pct(start, total)
		sum.End = pct(current, total)
		sum.Learned = len(learned)
		sum.TargetMet = s.Target > 0 && reached(current, total, s.Target)
		rep.Files = append(rep.Files, sum)
	}
	return rep
}

func reached(known, total int, target float64) bool {
	return float64(known)*100 >= target*float64(total)
}

func pct(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return 100 * float64(n) / float64(d)
}
