package db

import (
	"database/sql"
	"fmt"
	"strings"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// ErrDuplicateRun is returned when a run id is already archived.
var ErrDuplicateRun = &StoreError{"run already archived"}

// StoreError is a typed error for archive operations.
type StoreError struct{ msg string }

func (e *StoreError) Error() string { return e.msg }

// isUniqueConstraintErr returns true when the error indicates a unique/constraint violation
func isUniqueConstraintErr(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "unique") || strings.Contains(s, "constraint failed")
}

// InsertRun records a run header.
func InsertRun(db DBExecutor, r Run) error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("run id must be non-empty")
	}
	_, err := db.Exec(`INSERT INTO runs (id, language, started_at, min_freq, target_coverage, total_tokens, known_tokens, coverage, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Language, r.StartedAt.UTC(), r.MinFreq, r.TargetCoverage, r.TotalTokens, r.KnownTokens, r.Coverage, r.Status)
	if isUniqueConstraintErr(err) {
		return ErrDuplicateRun
	}
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// InsertRunFile records one file of a run.
func InsertRunFile(db DBExecutor, runID string, f RunFile) error {
	_, err := db.Exec(`INSERT INTO run_files (run_id, seq, path, priority, total_tokens, known_tokens, coverage,
		start_coverage, end_coverage, words_learned, target_met, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, f.Seq, f.Path, f.Priority, f.TotalTokens, f.KnownTokens, f.Coverage,
		f.StartCoverage, f.EndCoverage, f.WordsLearned, f.TargetMet, nullableString(f.Error))
	if err != nil {
		return fmt.Errorf("insert run file %d: %w", f.Seq, err)
	}
	return nil
}

// InsertRunWord records one priority-list row.
func InsertRunWord(db DBExecutor, runID string, w RunWord) error {
	if w.Position < 1 {
		return fmt.Errorf("position must be positive, got %d", w.Position)
	}
	_, err := db.Exec(`INSERT INTO run_words (run_id, position, lemma, reading, tier, score, occurrences,
		count_high, count_low, count_goal, min_seq, context1, context2, context3, sources)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, w.Position, w.Lemma, w.Reading, w.Tier, w.Score, w.Occurrences,
		w.High, w.Low, w.Goal, w.MinSeq,
		nullableString(w.Contexts[0]), nullableString(w.Contexts[1]), nullableString(w.Contexts[2]), w.Sources)
	if err != nil {
		return fmt.Errorf("insert run word %q: %w", w.Lemma, err)
	}
	return nil
}

// InsertProgressRow records one progressive-report row.
func InsertProgressRow(db DBExecutor, runID string, p ProgressRow) error {
	_, err := db.Exec(`INSERT INTO progress_rows (run_id, position, seq, lemma, reading, file_occurrences,
		baseline_pct, current_pct, new_pct, known_count, total_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, p.Position, p.Seq, p.Lemma, p.Reading, p.FileOccurrences,
		p.Baseline, p.Current, p.New, p.KnownCount, p.TotalCount)
	if err != nil {
		return fmt.Errorf("insert progress row: %w", err)
	}
	return nil
}

// DeleteRun removes a run and all of its rows.
func DeleteRun(db DBExecutor, id string) error {
	for _, table := range []string{"progress_rows", "run_words", "run_files"} {
		if _, err := db.Exec(`DELETE FROM `+table+` WHERE run_id = ?`, id); err != nil {
			return fmt.Errorf("delete %s of run %s: %w", table, id, err)
		}
	}
	if _, err := db.Exec(`DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	return nil
}

// nullableString returns nil for "" else the value.
func nullableString(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// GetRun returns the run header with the given id.
func GetRun(db DBExecutor, id string) (Run, error) {
	var r Run
	err := db.QueryRow(`SELECT id, language, started_at, min_freq, target_coverage, total_tokens, known_tokens, coverage, status
		FROM runs WHERE id = ?`, id).
		Scan(&r.ID, &r.Language, &r.StartedAt, &r.MinFreq, &r.TargetCoverage, &r.TotalTokens, &r.KnownTokens, &r.Coverage, &r.Status)
	if err != nil {
		return Run{}, err
	}
	return r, nil
}

// ListRuns returns the ids of archived runs, oldest first.
func ListRuns(db DBExecutor) ([]string, error) {
	rows, err := db.Query(`SELECT id FROM runs ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// GetRunWords returns the priority list of a run in order.
func GetRunWords(db DBExecutor, runID string) ([]RunWord, error) {
	rows, err := db.Query(`SELECT position, lemma, reading, tier, score, occurrences, count_high, count_low, count_goal,
		min_seq, context1, context2, context3, sources FROM run_words WHERE run_id = ? ORDER BY position`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RunWord
	for rows.Next() {
		var w RunWord
		var c1, c2, c3, src sql.NullString
		if err := rows.Scan(&w.Position, &w.Lemma, &w.Reading, &w.Tier, &w.Score, &w.Occurrences,
			&w.High, &w.Low, &w.Goal, &w.MinSeq, &c1, &c2, &c3, &src); err != nil {
			return nil, err
		}
		w.Contexts = [3]string{c1.String, c2.String, c3.String}
		w.Sources = src.String
		out = append(out, w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRunFiles returns the files of a run in sequence order.
func GetRunFiles(db DBExecutor, runID string) ([]RunFile, error) {
	rows, err := db.Query(`SELECT seq, path, priority, total_tokens, known_tokens, coverage, start_coverage,
		end_coverage, words_learned, target_met, error FROM run_files WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []RunFile
	for rows.Next() {
		var f RunFile
		var ferr sql.NullString
		if err := rows.Scan(&f.Seq, &f.Path, &f.Priority, &f.TotalTokens, &f.KnownTokens, &f.Coverage,
			&f.StartCoverage, &f.EndCoverage, &f.WordsLearned, &f.TargetMet, &ferr); err != nil {
			return nil, err
		}
		f.Error = ferr.String
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// CountProgressRows returns the number of progressive rows of a run.
func CountProgressRows(db DBExecutor, runID string) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM progress_rows WHERE run_id = ?`, runID).Scan(&n)
	return n, err
}
