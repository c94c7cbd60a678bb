// Package analyze aggregates per-word and per-file statistics over a corpus
// in consumption order.
package analyze

import (
	"context"
	"fmt"
	"log"
	"sort"

	"github.com/japaniel/lexiplan/pkg/config"
	"github.com/japaniel/lexiplan/pkg/corpus"
	"github.com/japaniel/lexiplan/pkg/filter"
	"github.com/japaniel/lexiplan/pkg/tokenize"
)

// TextSource turns a corpus file into plain text.
type TextSource interface {
	ExtractText(path string, lang config.Language) (string, error)
}

// WordStats are the aggregated statistics of one unknown word.
type WordStats struct {
	Key     tokenize.Key
	Surface string // last surface form seen

	Score int
	Total int
	High  int
	Low   int
	Goal  int

	// MinSeq is the smallest sequence index of a file containing the word.
	MinSeq int

	FirstContext string
	Extras       []Context

	sources map[string]struct{}
}

// Sources returns the basenames of the files the word occurs in, sorted.
func (w *WordStats) Sources() []string {
	out := make([]string, 0, len(w.sources))
	for s := range w.sources {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// KeyCount is the number of occurrences of a word in one file.
type KeyCount struct {
	Key   tokenize.Key
	Count int
}

// FileStats describes one successfully processed file.
type FileStats struct {
	Path     string
	Name     string
	Priority corpus.Priority
	Seq      int

	TotalTokens   int
	BaselineKnown int
	// Coverage is BaselineKnown/TotalTokens in percent, 0 for an empty file.
	Coverage float64

	// Unknown lists the unknown words of the file with their local counts,
	// in order of first appearance.
	Unknown []KeyCount
}

// FileError records a file that could not be extracted or tokenized.
type FileError struct {
	Path     string
	Priority corpus.Priority
	Seq      int
	Err      error
}

func (e *FileError) Error() string { return fmt.Sprintf("file %d %s: %v", e.Seq, e.Path, e.Err) }

func (e *FileError) Unwrap() error { return e.Err }

// Result is the output of one aggregation pass.
type Result struct {
	Words map[tokenize.Key]*WordStats
	// Order lists word keys by first appearance.
	Order  []tokenize.Key
	Files  []FileStats
	Errors []*FileError
}

// Totals sums total and baseline-known tokens over all files.
func (r *Result) Totals() (total, known int) {
	for _, f := range r.Files {
		total += f.TotalTokens
		known += f.BaselineKnown
	}
	return total, known
}

// Ordered returns the word statistics in first-appearance order.
func (r *Result) Ordered() []*WordStats {
	out := make([]*WordStats, len(r.Order))
	for i, k := range r.Order {
		out[i] = r.Words[k]
	}
	return out
}

// Aggregator performs the single consumption-order pass over a corpus.
type Aggregator struct {
	Lang      config.Language
	Source    TextSource
	Tokenizer tokenize.Tokenizer
	Filter    *filter.Set
	Weights   config.Weights
	Context   config.Context

	// Workers is the number of files extracted and tokenized concurrently.
	// Folding into the statistics is always sequential in file order.
	Workers int
	// Logger is used for skipped files. nil means no logging.
	Logger *log.Logger
	// OnProgress is called after each file is folded in.
	OnProgress func(current, total int)
	// PoolFactory creates the worker pool; tests inject failing pools.
	PoolFactory func(workers, queue int) WorkerPoolInterface
}

// WorkerPoolInterface abstracts the pool used for the parallel stage.
type WorkerPoolInterface interface {
	Start(ctx context.Context)
	Submit(job Job) error
	SubmitCtx(ctx context.Context, job Job) error
	Close()
}

// NewAggregator creates an Aggregator from a validated configuration.
func NewAggregator(cfg *config.Config, src TextSource, tk tokenize.Tokenizer, fs *filter.Set) *Aggregator {
	return &Aggregator{
		Lang:      cfg.Language,
		Source:    src,
		Tokenizer: tk,
		Filter:    fs,
		Weights:   cfg.Weights,
		Context:   cfg.Context,
		Workers:   cfg.Workers,
	}
}

// tokenizedFile is the result of the parallel stage for one file.
type tokenizedFile struct {
	index     int
	sentences []tokenize.Sentence
	err       error
}

// Run aggregates files in the given order. Files that fail are skipped and
// listed in Result.Errors; the returned error is only set when ctx ends the
// run early, in which case the result covers the files folded so far.
func (a *Aggregator) Run(ctx context.Context, files []corpus.File) (*Result, error) {
	res := &Result{Words: make(map[tokenize.Key]*WordStats)}
	if len(files) == 0 {
		return res, nil
	}

	workers := a.Workers
	if workers <= 0 {
		workers = 1
	}
	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wp WorkerPoolInterface
	if a.PoolFactory != nil {
		wp = a.PoolFactory(workers, workers*2)
	} else {
		wp = NewWorkerPool(workers, workers*2)
	}
	resultCh := make(chan tokenizedFile, workers*2)
	doneCh := make(chan struct{})

	// Consumer: fold contiguous files in order, buffering the ones that finish early.
	go func() {
		defer close(doneCh)
		buffer := make(map[int]tokenizedFile)
		next := 0
		for tf := range resultCh {
			buffer[tf.index] = tf
			for {
				item, ok := buffer[next]
				if !ok {
					break
				}
				delete(buffer, next)
				a.fold(res, files[next], item)
				next++
				if a.OnProgress != nil {
					a.OnProgress(next, len(files))
				}
			}
		}
	}()

	wp.Start(runCtx)

	var submitErr error
	for i := range files {
		idx, f := i, files[i]
		job := func(ctx context.Context) error {
			tf := a.load(idx, f)
			select {
			case resultCh <- tf:
			case <-ctx.Done():
			}
			return nil
		}
		if err := wp.SubmitCtx(runCtx, job); err != nil {
			submitErr = err
			break
		}
	}

	wp.Close()
	close(resultCh)
	<-doneCh

	if err := ctx.Err(); err != nil {
		return res, err
	}
	if submitErr != nil {
		return res, fmt.Errorf("schedule files: %w", submitErr)
	}
	return res, nil
}

func (a *Aggregator) load(index int, f corpus.File) tokenizedFile {
	text, err := a.Source.ExtractText(f.Path, a.Lang)
	if err != nil {
		return tokenizedFile{index: index, err: fmt.Errorf("extract: %w", err)}
	}
	sentences, err := a.Tokenizer.TokenizeSentences(text)
	if err != nil {
		return tokenizedFile{index: index, err: fmt.Errorf("tokenize: %w", err)}
	}
	return tokenizedFile{index: index, sentences: sentences}
}

func (a *Aggregator) weight(p corpus.Priority) int {
	switch p {
	case corpus.High:
		return a.Weights.High
	case corpus.Low:
		return a.Weights.Low
	}
	return a.Weights.Goal
}

// fold applies one file to the statistics. It is only ever called from the
// consumer goroutine, so the word map has a single writer.
func (a *Aggregator) fold(res *Result, f corpus.File, tf tokenizedFile) {
	if tf.err != nil {
		ferr := &FileError{Path: f.Path, Priority: f.Priority, Seq: f.Seq, Err: tf.err}
		res.Errors = append(res.Errors, ferr)
		if a.Logger != nil {
			a.Logger.Printf("Warning: skipping %v", ferr)
		}
		return
	}

	fs := FileStats{Path: f.Path, Name: f.Name(), Priority: f.Priority, Seq: f.Seq}
	unknownIdx := make(map[tokenize.Key]int)
	w := a.weight(f.Priority)

	for _, s := range tf.sentences {
		var unknowns []tokenize.Token
		var unique []tokenize.Key
		surfaces := make(map[tokenize.Key]string)

		for _, t := range s.Tokens {
			class := a.Filter.Classify(t)
			if class == filter.NoTarget {
				continue
			}
			fs.TotalTokens++
			if class.Baseline() {
				fs.BaselineKnown++
				continue
			}
			k := t.Key()
			unknowns = append(unknowns, t)
			if _, seen := surfaces[k]; !seen {
				surfaces[k] = t.Surface
				unique = append(unique, k)
			}
		}
		cost := len(unique)

		for _, t := range unknowns {
			k := t.Key()
			ws, ok := res.Words[k]
			if !ok {
				ws = &WordStats{Key: k, MinSeq: f.Seq, sources: make(map[string]struct{})}
				res.Words[k] = ws
				res.Order = append(res.Order, k)
			}
			ws.Score += w
			ws.Total++
			switch f.Priority {
			case corpus.High:
				ws.High++
			case corpus.Low:
				ws.Low++
			default:
				ws.Goal++
			}
			ws.sources[fs.Name] = struct{}{}
			ws.Surface = t.Surface
			if f.Seq < ws.MinSeq {
				ws.MinSeq = f.Seq
			}

			if i, ok := unknownIdx[k]; ok {
				fs.Unknown[i].Count++
			} else {
				unknownIdx[k] = len(fs.Unknown)
				fs.Unknown = append(fs.Unknown, KeyCount{Key: k, Count: 1})
			}
		}

		for _, k := range unique {
			text := clipSentence(s.Text, surfaces[k], a.Context.SearchRange, a.Context.MaxSentenceRunes)
			res.Words[k].offerContext(text, cost, a.Context.MaxExtra)
		}
	}

	if fs.TotalTokens > 0 {
		fs.Coverage = 100 * float64(fs.BaselineKnown) / float64(fs.TotalTokens)
	}
	res.Files = append(res.Files, fs)
}
