// Path: internal/service/service_test.go
package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"commit-tracker/internal/domain"
	"commit-tracker/internal/search"
)

// fakeRunner answers queries by matching on the query text.
type fakeRunner struct {
	mu      sync.Mutex
	counts  map[string]int
	errs    map[string]error
	results map[string]*search.QueryResult
	calls   []string
}

func (f *fakeRunner) lookup(text string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	for key, err := range f.errs {
		if strings.HasPrefix(text, key) {
			return key, err
		}
	}
	return text, nil
}

func (f *fakeRunner) Count(_ context.Context, text string) (int, error) {
	if _, err := f.lookup(text); err != nil {
		return 0, err
	}
	for key, n := range f.counts {
		if strings.HasPrefix(text, key) {
			return n, nil
		}
	}
	return 0, nil
}

func (f *fakeRunner) Run(_ context.Context, text string, _ search.Mode) (*search.QueryResult, error) {
	if _, err := f.lookup(text); err != nil {
		return nil, err
	}
	for key, res := range f.results {
		if strings.HasPrefix(text, key) {
			return res, nil
		}
	}
	return &search.QueryResult{Identifiers: domain.NewIdentifierSet(), Repos: map[string]struct{}{}}, nil
}

func (f *fakeRunner) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// memoryStorage is an in-memory HistoryStorage that counts saves.
type memoryStorage struct {
	history domain.History
	saves   int
	saveErr error
}

func (m *memoryStorage) Load(context.Context) (domain.History, error) {
	return m.history.Merge(), nil
}

func (m *memoryStorage) Save(_ context.Context, h domain.History) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.history = h.Merge()
	return nil
}

var testPatterns = []domain.SearchPattern{
	{Label: "co_authored", Query: `"Co-authored-by" "anthropic.com"`},
	{Label: "generated", Query: `"Generated with Claude Code"`},
}

func scenarioRunner() *fakeRunner {
	return &fakeRunner{counts: map[string]int{
		`"Co-authored-by" "anthropic.com" committer-date:2026-02-10`: 150,
		`"Generated with Claude Code" committer-date:2026-02-10`:     140,
		"committer-date:2026-02-10":                                  5000,
	}}
}

func TestCollector_MaxPolicyScenario(t *testing.T) {
	t.Parallel()

	runner := scenarioRunner()
	c := NewCollector(runner, testPatterns, domain.PolicyMax, CollectCounts)

	rec, err := c.Collect(context.Background(), "2026-02-10")
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"co_authored": 150, "generated": 140}, rec.Counts)
	assert.Equal(t, 150, rec.Combined)
	assert.Equal(t, 5000, rec.TotalCommits)
	assert.InDelta(t, 3.0, rec.Ratio(), 1e-9)
	assert.Empty(t, rec.Degraded)
	assert.Equal(t, 3, runner.callCount())
}

func TestCollector_SumPolicy(t *testing.T) {
	t.Parallel()

	c := NewCollector(scenarioRunner(), testPatterns, domain.PolicySum, CollectCounts)

	rec, err := c.Collect(context.Background(), "2026-02-10")
	require.NoError(t, err)
	assert.Equal(t, 290, rec.Combined)
}

func TestCollector_DegradedQueryCountsZero(t *testing.T) {
	t.Parallel()

	runner := scenarioRunner()
	runner.errs = map[string]error{`"Generated`: search.ErrQueryRejected}
	c := NewCollector(runner, testPatterns, domain.PolicySum, CollectCounts)

	rec, err := c.Collect(context.Background(), "2026-02-10")
	require.NoError(t, err)

	assert.Equal(t, 0, rec.Counts["generated"])
	assert.Equal(t, 150, rec.Combined)
	assert.Equal(t, []string{"generated"}, rec.Degraded)
}

func TestCollector_ZeroDenominatorIsInvalid(t *testing.T) {
	t.Parallel()

	runner := scenarioRunner()
	runner.errs = map[string]error{"committer-date:": search.ErrTransport}
	c := NewCollector(runner, testPatterns, domain.PolicyMax, CollectCounts)

	rec, err := c.Collect(context.Background(), "2026-02-10")
	require.ErrorIs(t, err, domain.ErrInvalidDay)
	require.NotNil(t, rec)
	assert.Equal(t, 150, rec.Combined)
	assert.Zero(t, rec.TotalCommits)
}

func TestCollector_UnexpectedErrorAbortsDay(t *testing.T) {
	t.Parallel()

	runner := scenarioRunner()
	runner.errs = map[string]error{`"Co-authored`: errors.New("boom")}
	c := NewCollector(runner, testPatterns, domain.PolicyMax, CollectCounts)

	_, err := c.Collect(context.Background(), "2026-02-10")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrInvalidDay)
}

func TestCollector_ReposMode(t *testing.T) {
	t.Parallel()

	runner := scenarioRunner()
	runner.results = map[string]*search.QueryResult{
		`"Co-authored`: {
			TotalCount: 150,
			Repos:      map[string]struct{}{"a/x": {}, "b/y": {}},
			Samples:    []domain.CommitSample{{SHA: "11111111", Repo: "a/x"}},
		},
		`"Generated`: {
			TotalCount: 140,
			Repos:      map[string]struct{}{"b/y": {}, "c/z": {}},
			Samples:    []domain.CommitSample{{SHA: "22222222", Repo: "c/z"}},
		},
	}
	c := NewCollector(runner, testPatterns, domain.PolicySum, CollectRepos)

	rec, err := c.Collect(context.Background(), "2026-02-10")
	require.NoError(t, err)

	assert.Equal(t, 290, rec.Combined)
	assert.Equal(t, []string{"a/x", "b/y", "c/z"}, rec.Repos)
	assert.Equal(t, 3, rec.DistinctRepos)
	assert.Len(t, rec.Samples, 2)
	assert.Equal(t, 5000, rec.TotalCommits)
}

// scriptedCollector returns canned records per date.
type scriptedCollector struct {
	records map[string]*domain.DailyRecord
	errs    map[string]error
	calls   []string
}

func (s *scriptedCollector) Collect(_ context.Context, date string) (*domain.DailyRecord, error) {
	s.calls = append(s.calls, date)
	return s.records[date], s.errs[date]
}

func TestServiceRun_PersistsAfterEachDay(t *testing.T) {
	t.Parallel()

	store := &memoryStorage{history: domain.History{
		"2026-02-01": {Date: "2026-02-01", Combined: 1, TotalCommits: 10},
	}}
	col := &scriptedCollector{records: map[string]*domain.DailyRecord{
		"2026-02-10": {Date: "2026-02-10", Combined: 150, TotalCommits: 5000},
		"2026-02-11": {Date: "2026-02-11", Combined: 160, TotalCommits: 5100},
	}}

	summary, err := NewService(col, store).Run(context.Background(), []string{"2026-02-10", "2026-02-11"}, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, 2, store.saves)
	assert.Equal(t, []string{"2026-02-01", "2026-02-10", "2026-02-11"}, store.history.Dates())
	assert.Len(t, summary.Stored(), 2)
}

func TestServiceRun_InvalidDayKeepsPriorRecord(t *testing.T) {
	t.Parallel()

	prior := domain.DailyRecord{Date: "2026-02-10", Combined: 120, TotalCommits: 4000}
	store := &memoryStorage{history: domain.History{"2026-02-10": prior}}
	col := &scriptedCollector{
		records: map[string]*domain.DailyRecord{"2026-02-10": {Date: "2026-02-10", Combined: 150}},
		errs:    map[string]error{"2026-02-10": domain.ErrInvalidDay},
	}

	summary, err := NewService(col, store).Run(context.Background(), []string{"2026-02-10"}, RunOptions{})
	require.NoError(t, err)

	assert.Equal(t, prior, store.history["2026-02-10"])
	assert.Zero(t, store.saves)
	require.Len(t, summary.Days, 1)
	assert.Equal(t, OutcomeInvalid, summary.Days[0].Outcome)
}

func TestServiceRun_FailedDayDoesNotAbortRange(t *testing.T) {
	t.Parallel()

	store := &memoryStorage{history: domain.History{}}
	col := &scriptedCollector{
		records: map[string]*domain.DailyRecord{"2026-02-11": {Date: "2026-02-11", Combined: 3, TotalCommits: 30}},
		errs:    map[string]error{"2026-02-10": errors.New("decode panic")},
	}

	summary, err := NewService(col, store).Run(context.Background(), []string{"2026-02-10", "2026-02-11"}, RunOptions{})
	require.NoError(t, err)

	require.Len(t, summary.Days, 2)
	assert.Equal(t, OutcomeFailed, summary.Days[0].Outcome)
	assert.Zero(t, summary.Days[0].Record.TotalCommits)
	assert.Equal(t, OutcomeStored, summary.Days[1].Outcome)
	assert.Equal(t, []string{"2026-02-11"}, store.history.Dates())
}

func TestServiceRun_SkipExistingIssuesNoQueries(t *testing.T) {
	t.Parallel()

	runner := scenarioRunner()
	store := &memoryStorage{history: domain.History{}}
	svc := NewService(NewCollector(runner, testPatterns, domain.PolicyMax, CollectCounts), store)

	_, err := svc.Run(context.Background(), []string{"2026-02-10"}, RunOptions{})
	require.NoError(t, err)
	first := store.history.Merge()
	calls := runner.callCount()

	summary, err := svc.Run(context.Background(), []string{"2026-02-10"}, RunOptions{SkipExisting: true})
	require.NoError(t, err)

	assert.Equal(t, calls, runner.callCount(), "second run must not query")
	assert.Equal(t, []string{"2026-02-10"}, summary.Skipped)
	assert.Empty(t, summary.Days)
	assert.Equal(t, first, store.history)
	assert.Equal(t, 1, store.saves)
}

func TestServiceRun_SaveFailureStops(t *testing.T) {
	t.Parallel()

	store := &memoryStorage{history: domain.History{}, saveErr: errors.New("disk full")}
	col := &scriptedCollector{records: map[string]*domain.DailyRecord{
		"2026-02-10": {Date: "2026-02-10", Combined: 1, TotalCommits: 10},
	}}

	_, err := NewService(col, store).Run(context.Background(), []string{"2026-02-10", "2026-02-11"}, RunOptions{})
	require.Error(t, err)
	assert.Equal(t, []string{"2026-02-10"}, col.calls)
}

func TestServiceRun_CancelledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	col := &scriptedCollector{}
	_, err := NewService(col, &memoryStorage{history: domain.History{}}).Run(ctx, []string{"2026-02-10"}, RunOptions{})
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, col.calls)
}

func TestServiceGetRecord(t *testing.T) {
	t.Parallel()

	rec := domain.DailyRecord{Date: "2026-02-10", Combined: 150, TotalCommits: 5000}
	svc := NewService(&scriptedCollector{}, &memoryStorage{history: domain.History{"2026-02-10": rec}})

	got, err := svc.GetRecord(context.Background(), "2026-02-10")
	require.NoError(t, err)
	assert.Equal(t, &rec, got)

	missing, err := svc.GetRecord(context.Background(), "2026-02-11")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestHistoryReader(t *testing.T) {
	t.Parallel()

	rec := domain.DailyRecord{Date: "2026-02-10", Combined: 150, TotalCommits: 5000}
	r := NewHistoryReader(&memoryStorage{history: domain.History{"2026-02-10": rec}})

	h, err := r.History(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"2026-02-10"}, h.Dates())

	got, err := r.GetRecord(context.Background(), "2026-02-10")
	require.NoError(t, err)
	assert.Equal(t, &rec, got)
}
