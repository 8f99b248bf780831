// Path: internal/storage/sqlite_storage.go
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver (no CGO required)

	"commit-tracker/internal/domain"
)

// SQLiteHistoryStorage keeps the history in a local SQLite database.
type SQLiteHistoryStorage struct {
	db *sql.DB
}

// OpenSQLiteHistoryStorage opens (and if needed creates) the database at path.
func OpenSQLiteHistoryStorage(path string) (*SQLiteHistoryStorage, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	s := &SQLiteHistoryStorage{db: db}
	if err := s.createTables(); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	return s, nil
}

func (s *SQLiteHistoryStorage) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS daily_records (
		date TEXT PRIMARY KEY,
		counts TEXT NOT NULL,
		combined INTEGER NOT NULL,
		total_commits INTEGER NOT NULL,
		distinct_repos INTEGER NOT NULL DEFAULT 0,
		samples TEXT
	);

	CREATE TABLE IF NOT EXISTS daily_repos (
		date TEXT NOT NULL,
		repo TEXT NOT NULL,
		PRIMARY KEY (date, repo)
	);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	return nil
}

// Close closes the database connection.
func (s *SQLiteHistoryStorage) Close() error {
	return s.db.Close()
}

// Load implements the HistoryStorage interface.
func (s *SQLiteHistoryStorage) Load(ctx context.Context) (domain.History, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, counts, combined, total_commits, distinct_repos, COALESCE(samples, '')
		FROM daily_records ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("query records: %w", err)
	}
	defer rows.Close()

	history := domain.History{}
	for rows.Next() {
		var (
			rec             domain.DailyRecord
			counts, samples string
		)
		if err := rows.Scan(&rec.Date, &counts, &rec.Combined, &rec.TotalCommits, &rec.DistinctRepos, &samples); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		if err := json.Unmarshal([]byte(counts), &rec.Counts); err != nil {
			return nil, fmt.Errorf("decode counts for %s: %w", rec.Date, err)
		}
		if samples != "" {
			if err := json.Unmarshal([]byte(samples), &rec.Samples); err != nil {
				return nil, fmt.Errorf("decode samples for %s: %w", rec.Date, err)
			}
		}
		history[rec.Date] = rec
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	rows.Close() // single connection: release it before the next query

	repoRows, err := s.db.QueryContext(ctx, `SELECT date, repo FROM daily_repos ORDER BY date, repo`)
	if err != nil {
		return nil, fmt.Errorf("query repos: %w", err)
	}
	defer repoRows.Close()
	for repoRows.Next() {
		var date, repo string
		if err := repoRows.Scan(&date, &repo); err != nil {
			return nil, fmt.Errorf("scan repo: %w", err)
		}
		if rec, ok := history[date]; ok {
			rec.Repos = append(rec.Repos, repo)
			history[date] = rec
		}
	}
	return history, repoRows.Err()
}

// Save implements the HistoryStorage interface. Every record is upserted by
// date; rows for dates absent from history are left alone.
func (s *SQLiteHistoryStorage) Save(ctx context.Context, history domain.History) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, rec := range history.Records() {
		counts, err := json.Marshal(rec.Counts)
		if err != nil {
			return fmt.Errorf("encode counts for %s: %w", rec.Date, err)
		}
		var samples any
		if len(rec.Samples) > 0 {
			b, err := json.Marshal(rec.Samples)
			if err != nil {
				return fmt.Errorf("encode samples for %s: %w", rec.Date, err)
			}
			samples = string(b)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO daily_records (date, counts, combined, total_commits, distinct_repos, samples)
			VALUES (?, ?, ?, ?, ?, ?)
			ON CONFLICT(date) DO UPDATE SET
				counts = excluded.counts,
				combined = excluded.combined,
				total_commits = excluded.total_commits,
				distinct_repos = excluded.distinct_repos,
				samples = excluded.samples`,
			rec.Date, string(counts), rec.Combined, rec.TotalCommits, rec.DistinctRepos, samples)
		if err != nil {
			return fmt.Errorf("upsert %s: %w", rec.Date, err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM daily_repos WHERE date = ?`, rec.Date); err != nil {
			return fmt.Errorf("clear repos for %s: %w", rec.Date, err)
		}
		for _, repo := range rec.Repos {
			if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO daily_repos (date, repo) VALUES (?, ?)`, rec.Date, repo); err != nil {
				return fmt.Errorf("insert repo for %s: %w", rec.Date, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}
