// Package report writes the analysis outputs.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/japaniel/lexiplan/pkg/analyze"
	"github.com/japaniel/lexiplan/pkg/config"
	"github.com/japaniel/lexiplan/pkg/progressive"
	"github.com/japaniel/lexiplan/pkg/rank"
)

const bom = "\ufeff"

// PriorityHeader is the header row of the priority CSV.
var PriorityHeader = []string{
	"Word", "Reading", "Tier", "Score", "Occurrences",
	"Context 1", "Context 2", "Context 3",
	"Count (High)", "Count (Low)", "Count (Goal)", "Sources",
}

// ProgressiveHeader is the header row of the progressive CSV.
var ProgressiveHeader = []string{
	"Sequence", "Source File", "Word", "Reading", "Tier", "Score",
	"Occurrences (Global)", "Occurrences (File)",
	"Context 1", "Context 2", "Context 3",
	"Baseline %", "Current %", "New %", "Known Count", "Total Count",
}

// Paths names the output files of one run.
type Paths struct {
	Priority    string
	Progressive string
	StatsText   string
	StatsJSON   string
}

// PathsFor returns the output paths for lang below dir.
func PathsFor(dir string, lang config.Language) Paths {
	p := func(name string) string { return filepath.Join(dir, string(lang)+"_"+name) }
	return Paths{
		Priority:    p("priority_list.csv"),
		Progressive: p("progressive_report.csv"),
		StatsText:   p("file_stats.txt"),
		StatsJSON:   p("file_stats.json"),
	}
}

func percent(v float64) string { return strconv.FormatFloat(v, 'f', 2, 64) }

func wordCells(r rank.Row) (word, reading string, contexts []string) {
	return r.Key.Lemma, r.Key.Reading, []string{r.Context(0), r.Context(1), r.Context(2)}
}

// WritePriorityCSV writes the priority list as UTF-8 CSV with a BOM.
func WritePriorityCSV(w io.Writer, rows []rank.Row) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(PriorityHeader); err != nil {
		return err
	}
	for _, r := range rows {
		word, reading, ctx := wordCells(r)
		rec := []string{word, reading, r.Tier, strconv.Itoa(r.Score), strconv.Itoa(r.Occurrences)}
		rec = append(rec, ctx...)
		rec = append(rec,
			strconv.Itoa(r.High), strconv.Itoa(r.Low), strconv.Itoa(r.Goal),
			strings.Join(r.Sources, "; "),
		)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteProgressiveCSV writes the progressive report as UTF-8 CSV with a BOM.
func WriteProgressiveCSV(w io.Writer, rows []progressive.Row) error {
	if _, err := io.WriteString(w, bom); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(ProgressiveHeader); err != nil {
		return err
	}
	for _, r := range rows {
		word, reading, ctx := wordCells(r.Word)
		rec := []string{
			strconv.Itoa(r.Seq), r.Name, word, reading, r.Word.Tier,
			strconv.Itoa(r.Word.Score), strconv.Itoa(r.Word.Occurrences), strconv.Itoa(r.FileOccurrences),
		}
		rec = append(rec, ctx...)
		rec = append(rec,
			percent(r.Baseline), percent(r.Current), percent(r.New),
			strconv.Itoa(r.KnownCount), strconv.Itoa(r.TotalCount),
		)
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// FileStat is one record of the file-statistics JSON.
type FileStat struct {
	Sequence    int     `json:"sequence"`
	Path        string  `json:"path"`
	Priority    string  `json:"priority"`
	TotalTokens int     `json:"total_tokens"`
	KnownTokens int     `json:"known_tokens"`
	Coverage    float64 `json:"coverage_percent"`

	Progress *Progress `json:"progressive,omitempty"`
}

// Progress is the simulated learning summary of a file.
type Progress struct {
	Start     float64 `json:"start_percent"`
	End       float64 `json:"end_percent"`
	Learned   int     `json:"words_learned"`
	TargetMet bool    `json:"target_met"`
}

// Stats is the document written to the file-statistics JSON.
type Stats struct {
	Language    string     `json:"language"`
	TotalTokens int        `json:"total_tokens"`
	KnownTokens int        `json:"known_tokens"`
	Coverage    float64    `json:"coverage_percent"`
	Files       []FileStat `json:"files"`
	Skipped     []string   `json:"skipped,omitempty"`
}

// BuildStats joins the aggregated file statistics with the simulation summaries.
func BuildStats(lang config.Language, res *analyze.Result, rep *progressive.Report) *Stats {
	bySeq := make(map[int]progressive.Summary)
	if rep != nil {
		for _, s := range rep.Files {
			bySeq[s.Seq] = s
		}
	}
	total, known := res.Totals()
	st := &Stats{Language: string(lang), TotalTokens: total, KnownTokens: known, Files: []FileStat{}}
	if total > 0 {
		st.Coverage = round2(100 * float64(known) / float64(total))
	}
	for _, f := range res.Files {
		fs := FileStat{
			Sequence:    f.Seq,
			Path:        f.Path,
			Priority:    f.Priority.String(),
			TotalTokens: f.TotalTokens,
			KnownTokens: f.BaselineKnown,
			Coverage:    round2(f.Coverage),
		}
		if s, ok := bySeq[f.Seq]; ok {
			fs.Progress = &Progress{Start: round2(s.Start), End: round2(s.End), Learned: s.Learned, TargetMet: s.TargetMet}
		}
		st.Files = append(st.Files, fs)
	}
	for _, e := range res.Errors {
		st.Skipped = append(st.Skipped, e.Error())
	}
	return st
}

func round2(v float64) float64 {
	r, _ := strconv.ParseFloat(percent(v), 64)
	return r
}

// WriteStatsJSON writes st as indented JSON.
func WriteStatsJSON(w io.Writer, st *Stats) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(st)
}

// WriteStatsText writes a human-readable table of st.
func WriteStatsText(w io.Writer, st *Stats) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Language: %s\n", st.Language)
	fmt.Fprintf(&sb, "Corpus: %d tokens, %d known (%s%%)\n\n", st.TotalTokens, st.KnownTokens, percent(st.Coverage))
	for _, f := range st.Files {
		fmt.Fprintf(&sb, "[%d] %s (%s)\n", f.Sequence, f.Path, f.Priority)
		fmt.Fprintf(&sb, "    Total tokens: %d\n", f.TotalTokens)
		fmt.Fprintf(&sb, "    Known tokens: %d\n", f.KnownTokens)
		fmt.Fprintf(&sb, "    Coverage: %s%%\n", percent(f.Coverage))
		if p := f.Progress; p != nil {
			fmt.Fprintf(&sb, "    Progressive: %s%% -> %s%% (%d words)\n", percent(p.Start), percent(p.End), p.Learned)
		}
	}
	if len(st.Skipped) > 0 {
		sb.WriteString("\nSkipped:\n")
		for _, s := range st.Skipped {
			fmt.Fprintf(&sb, "    %s\n", s)
		}
	}
	_, err := io.WriteString(w, sb.String())
	return err
}

// WriteAll writes every output file to paths.
func WriteAll(paths Paths, list *rank.List, rep *progressive.Report, st *Stats) error {
	if err := writeFile(paths.Priority, func(w io.Writer) error { return WritePriorityCSV(w, list.Rows) }); err != nil {
		return err
	}
	if err := writeFile(paths.Progressive, func(w io.Writer) error { return WriteProgressiveCSV(w, rep.Rows) }); err != nil {
		return err
	}
	if err := writeFile(paths.StatsText, func(w io.Writer) error { return WriteStatsText(w, st) }); err != nil {
		return err
	}
	return writeFile(paths.StatsJSON, func(w io.Writer) error { return WriteStatsJSON(w, st) })
}

func writeFile(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}
