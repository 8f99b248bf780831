// Path: internal/service/service.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"commit-tracker/internal/domain"
)

// Outcome describes what happened to one date during a run.
type Outcome string

const (
	OutcomeStored  Outcome = "stored"
	OutcomeInvalid Outcome = "invalid"
	OutcomeFailed  Outcome = "failed"
)

// DayResult is the per-date entry of a run summary.
type DayResult struct {
	Record  domain.DailyRecord
	Outcome Outcome
	Err     error
}

// RunOptions tunes a collection run.
type RunOptions struct {
	// SkipExisting drops dates that already have a stored record.
	SkipExisting bool
}

// RunSummary reports a finished (or interrupted) run.
type RunSummary struct {
	Days    []DayResult
	Skipped []string
}

// Stored returns the records that were persisted during the run.
func (s *RunSummary) Stored() []domain.DailyRecord {
	var out []domain.DailyRecord
	for _, d := range s.Days {
		if d.Outcome == OutcomeStored {
			out = append(out, d.Record)
		}
	}
	return out
}

// dayCollector produces the record for one date.
type dayCollector interface {
	Collect(ctx context.Context, date string) (*domain.DailyRecord, error)
}

// Service is the central orchestrator of a collection run.
type Service struct {
	*HistoryReader
	collector dayCollector
	storage   HistoryStorage
}

// NewService creates a new core application service.
func NewService(collector dayCollector, storage HistoryStorage) *Service {
	return &Service{
		HistoryReader: NewHistoryReader(storage),
		collector:     collector,
		storage:       storage,
	}
}

// Run collects every date in order, persisting the whole history after each
// stored day so an interrupted run keeps what it finished.
func (s *Service) Run(ctx context.Context, dates []string, opts RunOptions) (*RunSummary, error) {
	history, err := s.storage.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("could not load history: %w", err)
	}

	summary := &RunSummary{}
	if opts.SkipExisting {
		pending := dates[:0:0]
		for _, date := range dates {
			if history.Has(date) {
				summary.Skipped = append(summary.Skipped, date)
				continue
			}
			pending = append(pending, date)
		}
		dates = pending
	}

	if len(dates) == 0 {
		slog.Info("no dates to process")
		return summary, nil
	}
	slog.Info("starting collection", "from", dates[0], "to", dates[len(dates)-1], "days", len(dates))

	for i, date := range dates {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		slog.Info("collecting day", "progress", fmt.Sprintf("%d/%d", i+1, len(dates)), "date", date)

		rec, err := s.collector.Collect(ctx, date)
		switch {
		case err == nil:
			history, err = s.mergeAndSave(ctx, history, *rec)
			if err != nil {
				return summary, fmt.Errorf("failed to save history after %s: %w", date, err)
			}
			summary.Days = append(summary.Days, DayResult{Record: *rec, Outcome: OutcomeStored})

		case errors.Is(err, domain.ErrInvalidDay):
			slog.Warn("discarding day with zero total commits; stored value kept", "date", date)
			invalid := domain.DailyRecord{Date: date}
			if rec != nil {
				invalid = *rec
			}
			summary.Days = append(summary.Days, DayResult{Record: invalid, Outcome: OutcomeInvalid, Err: err})

		case ctx.Err() != nil:
			return summary, ctx.Err()

		default:
			// A failed day becomes an all-zero placeholder in the summary. It is
			// never merged: a zero denominator is not a valid record.
			slog.Error("day failed", "date", date, "error", err)
			summary.Days = append(summary.Days, DayResult{
				Record:  domain.DailyRecord{Date: date, Counts: map[string]int{}},
				Outcome: OutcomeFailed,
				Err:     err,
			})
		}
	}
	return summary, nil
}

// mergeAndSave overlays records onto history and writes the result.
func (s *Service) mergeAndSave(ctx context.Context, history domain.History, records ...domain.DailyRecord) (domain.History, error) {
	merged := history.Merge(records...)
	if err := s.storage.Save(ctx, merged); err != nil {
		return history, err
	}
	return merged, nil
}

// HistoryReader serves stored records without touching the search API.
type HistoryReader struct {
	storage HistoryStorage
}

// NewHistoryReader creates a read-only view over storage.
func NewHistoryReader(storage HistoryStorage) *HistoryReader {
	return &HistoryReader{storage: storage}
}

// History provides the stored records to the delivery layer.
func (r *HistoryReader) History(ctx context.Context) (domain.History, error) {
	return r.storage.Load(ctx)
}

// GetRecord returns the stored record for date, or nil if there is none.
func (r *HistoryReader) GetRecord(ctx context.Context, date string) (*domain.DailyRecord, error) {
	history, err := r.storage.Load(ctx)
	if err != nil {
		return nil, err
	}
	rec, ok := history[date]
	if !ok {
		return nil, nil // Not found
	}
	return &rec, nil
}
