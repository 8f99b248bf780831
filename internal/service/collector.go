// Path: internal/service/collector.go
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"commit-tracker/internal/domain"
	"commit-tracker/internal/search"
)

// QueryRunner defines the search operations the collector and the overlap
// analyzer depend on. This allows for mocking in tests.
type QueryRunner interface {
	Count(ctx context.Context, text string) (int, error)
	Run(ctx context.Context, text string, mode search.Mode) (*search.QueryResult, error)
}

// CollectMode chooses between cheap count-only queries and paginated queries
// that also gather distinct repositories.
type CollectMode string

const (
	CollectCounts CollectMode = "counts"
	CollectRepos  CollectMode = "repos"
)

// Collector builds one DailyRecord per date from a fixed set of patterns.
type Collector struct {
	runner   QueryRunner
	patterns []domain.SearchPattern
	policy   domain.CombinePolicy
	mode     CollectMode
}

// NewCollector creates a collector. The policy is a static choice, normally
// informed by an earlier overlap analysis.
func NewCollector(runner QueryRunner, patterns []domain.SearchPattern, policy domain.CombinePolicy, mode CollectMode) *Collector {
	return &Collector{
		runner:   runner,
		patterns: patterns,
		policy:   policy,
		mode:     mode,
	}
}

// Collect runs every pattern and the denominator query for date. Failed
// queries degrade to a zero count. When the denominator is zero the record is
// returned together with domain.ErrInvalidDay.
func (c *Collector) Collect(ctx context.Context, date string) (*domain.DailyRecord, error) {
	rec := &domain.DailyRecord{
		Date:   date,
		Counts: make(map[string]int, len(c.patterns)),
	}
	repos := make(map[string]struct{})

	for _, p := range c.patterns {
		slog.Info("searching", "pattern", p.Label, "date", date)
		count, err := c.collectPattern(ctx, p, date, rec, repos)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !isQueryFailure(err) {
				return nil, fmt.Errorf("pattern %s: %w", p.Label, err)
			}
			slog.Warn("query degraded to zero", "pattern", p.Label, "date", date, "error", err)
			rec.Degraded = append(rec.Degraded, p.Label)
			count = 0
		}
		rec.Counts[p.Label] = count
		slog.Info("pattern counted", "pattern", p.Label, "date", date, "commits", count)
	}

	rec.Combined = c.policy.Combine(rec.Counts)
	if c.mode == CollectRepos {
		rec.Repos = make([]string, 0, len(repos))
		for repo := range repos {
			rec.Repos = append(rec.Repos, repo)
		}
		sort.Strings(rec.Repos)
		rec.DistinctRepos = len(rec.Repos)
	}

	total, err := c.runner.Count(ctx, search.BuildQuery("", date))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !isQueryFailure(err) {
			return nil, fmt.Errorf("denominator: %w", err)
		}
		slog.Warn("denominator query failed", "date", date, "error", err)
		rec.Degraded = append(rec.Degraded, "total_commits")
	}
	rec.TotalCommits = total

	if !rec.Valid() {
		return rec, fmt.Errorf("%s: %w", date, domain.ErrInvalidDay)
	}
	return rec, nil
}

func (c *Collector) collectPattern(ctx context.Context, p domain.SearchPattern, date string, rec *domain.DailyRecord, repos map[string]struct{}) (int, error) {
	text := search.BuildQuery(p.Query, date)
	if c.mode != CollectRepos {
		return c.runner.Count(ctx, text)
	}

	res, err := c.runner.Run(ctx, text, search.ModeLight)
	if err != nil {
		return 0, err
	}
	for repo := range res.Repos {
		repos[repo] = struct{}{}
	}
	for _, s := range res.Samples {
		if len(rec.Samples) < search.MaxSamples {
			rec.Samples = append(rec.Samples, s)
		}
	}
	if res.Partial {
		slog.Warn("repository list is incomplete", "pattern", p.Label, "date", date)
	}
	return res.TotalCount, nil
}

// isQueryFailure reports whether err is a contained per-query failure.
func isQueryFailure(err error) bool {
	return errors.Is(err, search.ErrQueryRejected) || errors.Is(err, search.ErrTransport)
}
