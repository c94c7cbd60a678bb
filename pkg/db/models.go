package db

import "time"

// Run is one archived planner run.
type Run struct {
	ID             string
	Language       string
	StartedAt      time.Time
	MinFreq        int
	TargetCoverage float64
	TotalTokens    int
	KnownTokens    int
	Coverage       float64
	Status         string
}

// RunFile is a corpus file of a run. Error is set for skipped files.
type RunFile struct {
	Seq           int
	Path          string
	Priority      string
	TotalTokens   int
	KnownTokens   int
	Coverage      float64
	StartCoverage float64
	EndCoverage   float64
	WordsLearned  int
	TargetMet     bool
	Error         string
}

// RunWord is one row of a run's priority list. Position is 1-based.
type RunWord struct {
	Position    int
	Lemma       string
	Reading     string
	Tier        string
	Score       int
	Occurrences int
	High        int
	Low         int
	Goal        int
	MinSeq      int
	Contexts    [3]string
	Sources     string
}

// ProgressRow is one row of a run's progressive report.
type ProgressRow struct {
	Position        int
	Seq             int
	Lemma           string
	Reading         string
	FileOccurrences int
	Baseline        float64
	Current         float64
	New             float64
	KnownCount      int
	TotalCount      int
}
