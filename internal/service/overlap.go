// Path: internal/service/overlap.go
package service

import (
	"context"
	"fmt"
	"log/slog"

	"commit-tracker/internal/domain"
	"commit-tracker/internal/search"
)

// OverlapAnalyzer measures how many commits two patterns share on one day.
// Its output is advisory: it informs the configured combine policy but does
// not change it.
type OverlapAnalyzer struct {
	runner QueryRunner
	a, b   domain.SearchPattern
}

// NewOverlapAnalyzer compares pattern a against pattern b.
func NewOverlapAnalyzer(runner QueryRunner, a, b domain.SearchPattern) *OverlapAnalyzer {
	return &OverlapAnalyzer{runner: runner, a: a, b: b}
}

// Analyze downloads up to the result window of identifiers for both patterns
// and computes their overlap.
func (o *OverlapAnalyzer) Analyze(ctx context.Context, date string) (*domain.OverlapReport, error) {
	resA, err := o.fetch(ctx, o.a, date)
	if err != nil {
		return nil, err
	}
	resB, err := o.fetch(ctx, o.b, date)
	if err != nil {
		return nil, err
	}

	report := domain.NewOverlapReport(date, o.a.Label, o.b.Label,
		resA.TotalCount, resB.TotalCount, resA.Identifiers, resB.Identifiers)
	report.Partial = resA.Partial || resB.Partial
	return report, nil
}

func (o *OverlapAnalyzer) fetch(ctx context.Context, p domain.SearchPattern, date string) (*search.QueryResult, error) {
	slog.Info("downloading identifiers", "pattern", p.Label, "date", date)
	res, err := o.runner.Run(ctx, search.BuildQuery(p.Query, date), search.ModeFull)
	if err != nil {
		return nil, fmt.Errorf("overlap %s: %w", p.Label, err)
	}
	slog.Info("identifiers downloaded", "pattern", p.Label, "total_count", res.TotalCount, "fetched", res.Identifiers.Len())
	return res, nil
}
