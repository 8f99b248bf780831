// Path: internal/search/runner.go
package search

import (
	"context"
	"log/slog"

	"commit-tracker/internal/domain"
)

const (
	// PageSize is the largest page the search API serves.
	PageSize = 100
	// MaxSamples bounds the commit summaries kept for inspection.
	MaxSamples = 5
)

// Mode selects how much a paginated run keeps from each page.
type Mode int

const (
	// ModeLight keeps the total, a few samples and the distinct repositories.
	ModeLight Mode = iota
	// ModeFull additionally collects every commit SHA into an IdentifierSet.
	ModeFull
)

// Fetcher performs a single search request.
type Fetcher interface {
	Fetch(ctx context.Context, q Query) (*domain.PageResult, error)
}

// QueryResult is the outcome of walking all pages of one query.
type QueryResult struct {
	// TotalCount is the server estimate reported on the first page.
	TotalCount int
	Samples    []domain.CommitSample
	Repos      map[string]struct{}
	// Identifiers is only populated in ModeFull.
	Identifiers *domain.IdentifierSet
	Pages       int
	// Capped is set when TotalCount exceeds the result window.
	Capped bool
	// Partial is set when a page after the first failed.
	Partial bool
}

// Runner walks result pages for one query.
type Runner struct {
	fetcher Fetcher
}

// NewRunner creates a Runner on top of a fetcher.
func NewRunner(f Fetcher) *Runner {
	return &Runner{fetcher: f}
}

// Count returns the server-reported total of a query with a single one-item request.
func (r *Runner) Count(ctx context.Context, text string) (int, error) {
	page, err := r.fetcher.Fetch(ctx, Query{Text: text, Page: 1, PerPage: 1})
	if err != nil {
		return 0, err
	}
	return page.TotalCount, nil
}

// Run pages through the results of a query until they are exhausted or the
// result window is reached.
func (r *Runner) Run(ctx context.Context, text string, mode Mode) (*QueryResult, error) {
	result := &QueryResult{Repos: make(map[string]struct{})}
	if mode == ModeFull {
		result.Identifiers = domain.NewIdentifierSet()
	}

	for page := 1; ; page++ {
		res, err := r.fetcher.Fetch(ctx, Query{Text: text, Page: page, PerPage: PageSize})
		if err != nil {
			if page == 1 || ctx.Err() != nil {
				return nil, err
			}
			slog.Warn("stopping pagination early", "query", text, "page", page, "error", err)
			result.Partial = true
			break
		}

		if page == 1 {
			result.TotalCount = res.TotalCount
			result.Capped = res.TotalCount > domain.ResultWindow
		}
		result.Pages = page

		for _, item := range res.Items {
			if repo := item.Repository.FullName; repo != "" {
				result.Repos[repo] = struct{}{}
			}
			if len(result.Samples) < MaxSamples {
				result.Samples = append(result.Samples, domain.NewCommitSample(item))
			}
			if result.Identifiers != nil {
				result.Identifiers.Add(item.SHA)
			}
		}

		// The window is measured against the first-page total, not the current page's.
		if !res.HasMore || page*PageSize >= min(result.TotalCount, domain.ResultWindow) {
			break
		}
	}
	return result, nil
}
