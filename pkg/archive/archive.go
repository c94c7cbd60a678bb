// Package archive stores planner runs in a sqlite database.
package archive

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/japaniel/lexiplan/pkg/analyze"
	"github.com/japaniel/lexiplan/pkg/config"
	"github.com/japaniel/lexiplan/pkg/db"
	"github.com/japaniel/lexiplan/pkg/progressive"
	"github.com/japaniel/lexiplan/pkg/rank"
)

// Run is everything produced by one planner run.
type Run struct {
	Language  config.Language
	StartedAt time.Time
	MinFreq   int
	Target    float64

	Result   *analyze.Result
	List     *rank.List
	Progress *progressive.Report
}

// Archiver writes runs to a database.
type Archiver struct {
	DB *sql.DB
	// BatchSize is the number of rows per transaction.
	BatchSize int
	// Logger is used for failed batches. nil means no logging.
	Logger *log.Logger

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// New creates an Archiver on conn.
func New(conn *sql.DB) *Archiver {
	return &Archiver{DB: conn, BatchSize: 500, entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (a *Archiver) newID(t time.Time) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.entropy == nil {
		a.entropy = ulid.Monotonic(rand.Reader, 0)
	}
	return ulid.MustNew(ulid.Timestamp(t), a.entropy).String()
}

// Save archives run and returns its id. Ids sort by start time. A run that
// fails part way is removed again.
func (a *Archiver) Save(ctx context.Context, run Run) (string, error) {
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	id := a.newID(run.StartedAt)

	total, known := run.Result.Totals()
	header := db.Run{
		ID:             id,
		Language:       string(run.Language),
		StartedAt:      run.StartedAt,
		MinFreq:        run.MinFreq,
		TargetCoverage: run.Target,
		TotalTokens:    total,
		KnownTokens:    known,
	}
	if run.List != nil {
		header.Coverage = run.List.Coverage
		header.Status = run.List.Status.String()
	}
	if err := db.InsertRun(a.DB, header); err != nil {
		return "", err
	}

	bw := NewBatchWriter(a.DB, a.BatchSize)
	if a.Logger != nil {
		bw.OnError = func(err error) { a.Logger.Printf("Warning: archive batch failed: %v", err) }
	}
	submit := func(w WriteFunc) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return bw.Submit(w)
	}

	err := a.submitRows(id, run, submit)
	if cerr := bw.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if derr := a.discard(id); derr != nil && a.Logger != nil {
			a.Logger.Printf("Warning: partial run %s left in archive: %v", id, derr)
		}
		return "", fmt.Errorf("archive run %s: %w", id, err)
	}
	return id, nil
}

// discard removes everything already committed for a failed run.
func (a *Archiver) discard(id string) error {
	tx, err := a.DB.Begin()
	if err != nil {
		return err
	}
	if err := db.DeleteRun(tx, id); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func (a *Archiver) submitRows(id string, run Run, submit func(WriteFunc) error) error {
	for _, f := range runFiles(run) {
		f := f
		if err := submit(func(ctx context.Context, tx *sql.Tx) error { return db.InsertRunFile(tx, id, f) }); err != nil {
			return err
		}
	}
	if run.List != nil {
		for i, r := range run.List.Rows {
			w := runWord(i+1, r)
			if err := submit(func(ctx context.Context, tx *sql.Tx) error { return db.InsertRunWord(tx, id, w) }); err != nil {
				return err
			}
		}
	}
	if run.Progress != nil {
		for i, r := range run.Progress.Rows {
			p := db.ProgressRow{
				Position:        i + 1,
				Seq:             r.Seq,
				Lemma:           r.Word.Key.Lemma,
				Reading:         r.Word.Key.Reading,
				FileOccurrences: r.FileOccurrences,
				Baseline:        r.Baseline,
				Current:         r.Current,
				New:             r.New,
				KnownCount:      r.KnownCount,
				TotalCount:      r.TotalCount,
			}
			if err := submit(func(ctx context.Context, tx *sql.Tx) error { return db.InsertProgressRow(tx, id, p) }); err != nil {
				return err
			}
		}
	}
	return nil
}

// runFiles lists processed files followed by skipped ones.
func runFiles(run Run) []db.RunFile {
	summaries := make(map[int]progressive.Summary)
	if run.Progress != nil {
		for _, s := range run.Progress.Files {
			summaries[s.Seq] = s
		}
	}
	var out []db.RunFile
	for _, f := range run.Result.Files {
		rf := db.RunFile{
			Seq:         f.Seq,
			Path:        f.Path,
			Priority:    f.Priority.String(),
			TotalTokens: f.TotalTokens,
			KnownTokens: f.BaselineKnown,
			Coverage:    f.Coverage,
		}
		if s, ok := summaries[f.Seq]; ok {
			rf.StartCoverage, rf.EndCoverage = s.Start, s.End
			rf.WordsLearned, rf.TargetMet = s.Learned, s.TargetMet
		}
		out = append(out, rf)
	}
	for _, e := range run.Result.Errors {
		out = append(out, db.RunFile{Seq: e.Seq, Path: e.Path, Priority: e.Priority.String(), Error: e.Err.Error()})
	}
	return out
}

func runWord(pos int, r rank.Row) db.RunWord {
	return db.RunWord{
		Position:    pos,
		Lemma:       r.Key.Lemma,
		Reading:     r.Key.Reading,
		Tier:        r.Tier,
		Score:       r.Score,
		Occurrences: r.Occurrences,
		High:        r.High,
		Low:         r.Low,
		Goal:        r.Goal,
		MinSeq:      r.MinSeq,
		Contexts:    [3]string{r.Context(0), r.Context(1), r.Context(2)},
		Sources:     strings.Join(r.Sources, "; "),
	}
}
