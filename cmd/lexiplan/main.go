package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/japaniel/lexiplan/pkg/analyze"
	"github.com/japaniel/lexiplan/pkg/archive"
	"github.com/japaniel/lexiplan/pkg/config"
	"github.com/japaniel/lexiplan/pkg/corpus"
	"github.com/japaniel/lexiplan/pkg/db"
	"github.com/japaniel/lexiplan/pkg/extract"
	"github.com/japaniel/lexiplan/pkg/filter"
	"github.com/japaniel/lexiplan/pkg/frequency"
	"github.com/japaniel/lexiplan/pkg/known"
	"github.com/japaniel/lexiplan/pkg/progressive"
	"github.com/japaniel/lexiplan/pkg/rank"
	"github.com/japaniel/lexiplan/pkg/report"
	"github.com/japaniel/lexiplan/pkg/tokenize"
)

const (
	exitOK     = 0
	exitFailed = 1
	exitUsage  = 2
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}

type options struct {
	language      string
	data          string
	knownPath     string
	ignorePath    string
	blacklistPath string
	freqDir       string
	out           string
	configPath    string
	dbPath        string

	includeSingle bool
	minFreq       int
	target        float64
	reinforce     bool
	noGoalCarry   bool
	workers       int
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	o := &options{}
	fs := pflag.NewFlagSet("lexiplan", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&o.language, "language", "l", "", "Target language: ja or zh (required)")
	fs.StringVar(&o.data, "data", "data", "Corpus root containing <lang>/{HighPriority,LowPriority,GoalContent}")
	fs.StringVar(&o.knownPath, "known", "", "Path to KnownWord.json")
	fs.StringVar(&o.ignorePath, "ignore", "", "Ignore list, one lemma per line")
	fs.StringVar(&o.blacklistPath, "blacklist", "", "Blacklist, merged into the ignore list")
	fs.StringVar(&o.freqDir, "freq-dir", "", "Directory with frequency_list_<lang>_<name>.csv files")
	fs.StringVarP(&o.out, "out", "o", "output", "Output directory")
	fs.StringVar(&o.configPath, "config", "", "YAML file overriding engine defaults")
	fs.StringVar(&o.dbPath, "db", "", "Archive the run into this SQLite database")
	fs.BoolVar(&o.includeSingle, "include-single-chars", false, "Keep single-character lemmas")
	fs.IntVar(&o.minFreq, "min-freq", 0, "Drop words seen fewer times in the whole corpus")
	fs.Float64Var(&o.target, "target-coverage", 0, "Stop the lists once this coverage percentage is reached")
	fs.BoolVar(&o.reinforce, "reinforce", false, "Split frequently fused Chinese pairs")
	fs.BoolVar(&o.noGoalCarry, "no-goal-carry", false, "Do not carry words learned in GoalContent files forward")
	fs.IntVar(&o.workers, "workers", 0, "Files decoded and tokenized in parallel (default from config)")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if o.language == "" {
		fs.Usage()
		return nil, &config.Error{Field: "language", Msg: "is required"}
	}
	return o, nil
}

func buildConfig(o *options, logger *log.Logger) (*config.Config, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, err
	}
	lang, err := config.ParseLanguage(o.language)
	if err != nil {
		return nil, err
	}
	cfg.Language = lang
	cfg.IncludeSingleChars = o.includeSingle
	cfg.MinFreq = o.minFreq
	cfg.TargetCoverage = o.target
	cfg.CarryGoal = !o.noGoalCarry
	if o.workers > 0 {
		cfg.Workers = o.workers
	}
	if o.reinforce {
		if lang == config.Chinese {
			cfg.ReinforcedSegmentation = true
		} else {
			logger.Printf("Warning: --reinforce only applies to zh, ignored")
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	logger := log.New(stderr, "lexiplan: ", log.LstdFlags)

	o, err := parseFlags(args, stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return exitOK
		}
		logger.Printf("%v", err)
		return exitUsage
	}
	cfg, err := buildConfig(o, logger)
	if err != nil {
		logger.Printf("%v", err)
		return exitUsage
	}
	if err := plan(ctx, cfg, o, stdout, logger); err != nil {
		logger.Printf("Error: %v", err)
		return exitFailed
	}
	return exitOK
}

func plan(ctx context.Context, cfg *config.Config, o *options, stdout io.Writer, logger *log.Logger) error {
	started := time.Now()
	lang := cfg.Language

	tk, err := tokenize.New(cfg)
	if err != nil {
		return fmt.Errorf("create tokenizer: %w", err)
	}
	fs := loadFilter(cfg, tk, o, logger)
	ignored, pairs, lemmas := fs.Sizes()
	fmt.Fprintf(stdout, "Ignore list: %d lemmas. Known: %d pairs, %d lemmas.\n", ignored, pairs, lemmas)

	var stores []*frequency.Store
	if o.freqDir != "" {
		var skipped []error
		stores, skipped, err = frequency.LoadDir(o.freqDir, lang)
		if err != nil {
			logger.Printf("Warning: %v. Tiers will be Outside.", err)
		}
		for _, e := range skipped {
			logger.Printf("Warning: frequency list: %v", e)
		}
		for _, s := range stores {
			fmt.Fprintf(stdout, "Frequency list %s: %d words\n", s.Name, s.Len())
		}
	}
	tiers := frequency.NewTiers(cfg.TierThresholds, stores)

	walker := &corpus.Walker{Root: o.data, ManifestName: cfg.ManifestName, Logger: logger}
	files, err := walker.Files(lang)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Found %d files.\n", len(files))

	ex := &extract.Extractor{Logger: logger}
	agg := analyze.NewAggregator(cfg, ex, tk, fs)
	agg.Logger = logger
	agg.OnProgress = func(cur, total int) {
		if cur == total || cur%50 == 0 {
			fmt.Fprintf(stdout, "Analyzed %d/%d files\n", cur, total)
		}
	}
	res, err := agg.Run(ctx, files)
	if err != nil {
		return fmt.Errorf("analysis: %w", err)
	}

	list := rank.Rank(res, tiers, rank.Options{MinFreq: cfg.MinFreq, Target: cfg.TargetCoverage})
	logStatus(stdout, cfg, list)

	sim := &progressive.Simulator{Tiers: tiers, MinFreq: cfg.MinFreq, Target: cfg.TargetCoverage, CarryGoal: cfg.CarryGoal}
	rep := sim.Run(res)
	for _, s := range rep.Files {
		fmt.Fprintf(stdout, "[%d] %s: baseline %.2f%%, %.2f%% -> %.2f%%, %d words\n",
			s.Seq, s.Name, s.Baseline, s.Start, s.End, s.Learned)
	}

	paths := report.PathsFor(o.out, lang)
	if err := report.WriteAll(paths, list, rep, report.BuildStats(lang, res, rep)); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Priority list: %s (%d words)\n", paths.Priority, len(list.Rows))
	fmt.Fprintf(stdout, "Progressive report: %s (%d rows)\n", paths.Progressive, len(rep.Rows))
	fmt.Fprintf(stdout, "File statistics: %s, %s\n", paths.StatsText, paths.StatsJSON)

	if o.dbPath != "" {
		conn, err := db.Open(o.dbPath)
		if err != nil {
			return fmt.Errorf("open archive: %w", err)
		}
		defer conn.Close()
		a := archive.New(conn)
		a.Logger = logger
		id, err := a.Save(ctx, archive.Run{
			Language:  lang,
			StartedAt: started,
			MinFreq:   cfg.MinFreq,
			Target:    cfg.TargetCoverage,
			Result:    res,
			List:      list,
			Progress:  rep,
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "Archived run %s to %s\n", id, o.dbPath)
	}
	return nil
}

// loadFilter builds the ignore and known sets. Unreadable lists are reported
// and skipped.
func loadFilter(cfg *config.Config, tk tokenize.Tokenizer, o *options, logger *log.Logger) *filter.Set {
	fs := filter.New(cfg.Language, !cfg.IncludeSingleChars)
	for _, path := range []string{o.ignorePath, o.blacklistPath} {
		if path == "" {
			continue
		}
		words, err := known.LoadWordList(path)
		if err != nil {
			logger.Printf("Warning: %v", err)
			continue
		}
		fs.Ignore(words...)
	}

	if o.knownPath == "" {
		return fs
	}
	list, err := known.LoadKnownWords(o.knownPath)
	if err != nil {
		logger.Printf("Warning: known words unavailable: %v", err)
		return fs
	}
	for _, e := range list.Skipped {
		logger.Printf("Warning: %s: %v", o.knownPath, e)
	}
	for _, e := range fs.Augment(tk, list.Known()) {
		logger.Printf("Warning: %v", e)
	}
	return fs
}

func logStatus(stdout io.Writer, cfg *config.Config, list *rank.List) {
	switch list.Status {
	case rank.AlreadyMet:
		fmt.Fprintf(stdout, "Target coverage already met: %.2f%% >= %.2f%%\n", list.Baseline, cfg.TargetCoverage)
	case rank.Reached:
		fmt.Fprintf(stdout, "Target coverage %.2f%% reached with %d words (%.2f%% -> %.2f%%)\n",
			cfg.TargetCoverage, len(list.Rows), list.Baseline, list.Coverage)
	case rank.Shortfall:
		fmt.Fprintf(stdout, "Target coverage %.2f%% not reachable: learning all %d words gives %.2f%%\n",
			cfg.TargetCoverage, len(list.Rows), list.Coverage)
	default:
		fmt.Fprintf(stdout, "Corpus coverage: %.2f%% known, %.2f%% after the full list\n", list.Baseline, list.Coverage)
	}
}
