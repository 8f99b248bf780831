// Path: internal/storage/csv_storage.go
package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"commit-tracker/internal/config"
	"commit-tracker/internal/domain"
)

const (
	dailyFile = "claude_commits_daily.csv"
	reposFile = "claude_repos_daily.csv"

	colDate          = "date"
	colTotalCommits  = "total_commits"
	colDistinctRepos = "distinct_repos"
	colClaudeCommits = "claude_commits"
	colRepo          = "repo"
)

// CSVHistoryStorage keeps the history in CSV files inside a directory.
// One of three layouts is used per deployment:
//
//	repos:    date,total_commits,distinct_repos (+ date,repo companion file)
//	combined: date,claude_commits,total_commits
//	split:    date,<pattern labels...>,total_commits
//
// In the repos layout total_commits is the combined pattern count, matching
// the files written by earlier versions of the tracker.
type CSVHistoryStorage struct {
	dir     string
	variant string
	labels  []string
	policy  domain.CombinePolicy
}

// NewCSVHistoryStorage creates a CSV store. Labels fix the column order of the
// split layout; policy recomputes the combined metric when loading it.
func NewCSVHistoryStorage(dir, variant string, labels []string, policy domain.CombinePolicy) *CSVHistoryStorage {
	return &CSVHistoryStorage{
		dir:     dir,
		variant: variant,
		labels:  labels,
		policy:  policy,
	}
}

// Path returns the main CSV file.
func (s *CSVHistoryStorage) Path() string {
	return filepath.Join(s.dir, dailyFile)
}

// Load implements the HistoryStorage interface.
func (s *CSVHistoryStorage) Load(_ context.Context) (domain.History, error) {
	history := domain.History{}

	rows, header, err := readCSV(s.Path())
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		rec, err := s.decode(header, row)
		if err != nil {
			return nil, fmt.Errorf("%s line %d: %w", s.Path(), i+2, err)
		}
		history[rec.Date] = rec
	}

	if s.variant != config.VariantRepos {
		return history, nil
	}

	repoRows, _, err := readCSV(filepath.Join(s.dir, reposFile))
	if err != nil {
		return nil, err
	}
	for _, row := range repoRows {
		if len(row) < 2 {
			continue
		}
		if rec, ok := history[row[0]]; ok {
			rec.Repos = append(rec.Repos, row[1])
			history[row[0]] = rec
		}
	}
	return history, nil
}

// Save implements the HistoryStorage interface.
func (s *CSVHistoryStorage) Save(_ context.Context, history domain.History) error {
	if err := os.MkdirAll(s.dir, 0o750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	records := history.Records()
	rows := make([][]string, 0, len(records)+1)
	rows = append(rows, s.header())
	for _, rec := range records {
		rows = append(rows, s.encode(rec))
	}
	if err := writeCSV(s.Path(), rows); err != nil {
		return err
	}

	if s.variant != config.VariantRepos {
		return nil
	}
	repoRows := [][]string{{colDate, colRepo}}
	for _, rec := range records {
		for _, repo := range rec.Repos {
			repoRows = append(repoRows, []string{rec.Date, repo})
		}
	}
	return writeCSV(filepath.Join(s.dir, reposFile), repoRows)
}

func (s *CSVHistoryStorage) header() []string {
	switch s.variant {
	case config.VariantRepos:
		return []string{colDate, colTotalCommits, colDistinctRepos}
	case config.VariantCombined:
		return []string{colDate, colClaudeCommits, colTotalCommits}
	default:
		h := append([]string{colDate}, s.labels...)
		return append(h, colTotalCommits)
	}
}

func (s *CSVHistoryStorage) encode(rec domain.DailyRecord) []string {
	switch s.variant {
	case config.VariantRepos:
		return []string{rec.Date, strconv.Itoa(rec.Combined), strconv.Itoa(rec.DistinctRepos)}
	case config.VariantCombined:
		return []string{rec.Date, strconv.Itoa(rec.Combined), strconv.Itoa(rec.TotalCommits)}
	default:
		row := []string{rec.Date}
		for _, label := range s.labels {
			row = append(row, strconv.Itoa(rec.Counts[label]))
		}
		return append(row, strconv.Itoa(rec.TotalCommits))
	}
}

// decode maps a row by header name, so columns may appear in any order.
func (s *CSVHistoryStorage) decode(header, row []string) (domain.DailyRecord, error) {
	fields := make(map[string]string, len(header))
	for i, name := range header {
		if i < len(row) {
			fields[name] = row[i]
		}
	}

	date := fields[colDate]
	if _, err := domain.ParseDate(date); err != nil {
		return domain.DailyRecord{}, err
	}
	rec := domain.DailyRecord{Date: date, Counts: map[string]int{}}

	var err error
	switch s.variant {
	case config.VariantRepos:
		if rec.Combined, err = atoi(fields, colTotalCommits); err != nil {
			return rec, err
		}
		rec.DistinctRepos, err = atoi(fields, colDistinctRepos)
	case config.VariantCombined:
		if rec.Combined, err = atoi(fields, colClaudeCommits); err != nil {
			return rec, err
		}
		rec.TotalCommits, err = atoi(fields, colTotalCommits)
	default:
		for _, name := range header {
			if name == colDate || name == colTotalCommits {
				continue
			}
			if rec.Counts[name], err = atoi(fields, name); err != nil {
				return rec, err
			}
		}
		rec.Combined = s.policy.Combine(rec.Counts)
		rec.TotalCommits, err = atoi(fields, colTotalCommits)
	}
	return rec, err
}

func atoi(fields map[string]string, name string) (int, error) {
	v, ok := fields[name]
	if !ok {
		return 0, fmt.Errorf("missing column %q", name)
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("column %q: %w", name, err)
	}
	return n, nil
}

// readCSV returns the data rows and the header. A missing file yields no rows.
func readCSV(path string) ([][]string, []string, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("failed to read header of %s: %w", path, err)
	}
	rows, err := r.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return rows, header, nil
}

// writeCSV replaces path atomically through a temporary file in the same directory.
func writeCSV(path string, rows [][]string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if err := tmp.Chmod(0o644); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to chmod %s: %w", tmp.Name(), err)
	}

	w := csv.NewWriter(tmp)
	if err := w.WriteAll(rows); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", tmp.Name(), err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
