// Path: internal/search/client.go
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"commit-tracker/internal/config"
	"commit-tracker/internal/domain"
)

const (
	searchCommitsPath = "/search/commits"
	maxErrorBody      = 200
)

var (
	// ErrQueryRejected is returned on HTTP 422: the query is malformed or too broad.
	ErrQueryRejected = errors.New("search query rejected")
	// ErrTransport covers network failures, unexpected statuses and undecodable bodies.
	ErrTransport = errors.New("search transport failure")
)

// Query is a single search request.
type Query struct {
	Text    string
	Page    int
	PerPage int
}

// BuildQuery scopes a pattern to one committer date. An empty pattern yields
// the date filter alone, which counts every commit of that day.
func BuildQuery(pattern, date string) string {
	filter := "committer-date:" + date
	if pattern == "" {
		return filter
	}
	return pattern + " " + filter
}

// Client is a rate-limited client for the commit search API.
type Client struct {
	client     *http.Client
	limiter    *rate.Limiter
	endpoint   string
	token      string
	apiVersion string
	accept     string
	minWait    time.Duration

	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates and configures a new Client. The token is captured once
// here; an empty token only lowers the platform's rate ceiling.
func NewClient(cfg config.SearchConfig) *Client {
	limit := rate.Inf
	if delay := cfg.RequestDelay(); delay > 0 {
		limit = rate.Every(delay)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		client: &http.Client{
			Timeout: timeout,
		},
		limiter:    rate.NewLimiter(limit, 1),
		endpoint:   cfg.BaseURL + searchCommitsPath,
		token:      cfg.Token,
		apiVersion: cfg.APIVersion,
		accept:     cfg.Accept,
		minWait:    cfg.MinRateLimitWait,
		now:        time.Now,
		sleep:      sleepContext,
	}
}

// HasToken reports whether requests are authenticated.
func (c *Client) HasToken() bool {
	return c.token != ""
}

// Fetch performs one search request. Rate-limit responses are waited out and
// retried until they succeed or ctx is done; they are never returned.
func (c *Client) Fetch(ctx context.Context, q Query) (*domain.PageResult, error) {
	for {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		result, retryAfter, err := c.do(ctx, q)
		if err != nil {
			return nil, err
		}
		if result != nil {
			return result, nil
		}

		slog.Warn("rate limit reached, waiting", "wait", retryAfter, "query", q.Text, "page", q.Page)
		if err := c.sleep(ctx, retryAfter); err != nil {
			return nil, err
		}
	}
}

// do issues the request once. A nil result with a nil error means the caller
// must wait retryAfter and try again.
func (c *Client) do(ctx context.Context, q Query) (*domain.PageResult, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.requestURL(q), nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", c.accept)
	req.Header.Set("X-GitHub-Api-Version", c.apiVersion)
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, 0, ctx.Err()
		}
		return nil, 0, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusForbidden, http.StatusTooManyRequests:
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, c.rateLimitWait(resp.Header), nil
	case http.StatusUnprocessableEntity:
		return nil, 0, fmt.Errorf("%w: %s", ErrQueryRejected, q.Text)
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, 0, fmt.Errorf("%w: unexpected status code %d: %s", ErrTransport, resp.StatusCode, body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: failed to read response body: %v", ErrTransport, err)
	}

	var payload domain.SearchResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, 0, fmt.Errorf("%w: failed to unmarshal json response: %v", ErrTransport, err)
	}

	total := int(payload.TotalCount)
	return &domain.PageResult{
		TotalCount: total,
		Items:      payload.Items,
		HasMore:    hasMore(q, len(payload.Items)),
	}, 0, nil
}

func (c *Client) requestURL(q Query) string {
	params := url.Values{}
	params.Set("q", q.Text)
	params.Set("per_page", strconv.Itoa(q.PerPage))
	params.Set("page", strconv.Itoa(q.Page))
	params.Set("sort", "committer-date")
	params.Set("order", "desc")
	return c.endpoint + "?" + params.Encode()
}

// rateLimitWait derives the pause from X-RateLimit-Reset (unix seconds),
// floored at the configured minimum.
func (c *Client) rateLimitWait(h http.Header) time.Duration {
	wait := c.minWait
	reset, err := strconv.ParseInt(h.Get("X-RateLimit-Reset"), 10, 64)
	if err != nil {
		return wait
	}
	if until := time.Unix(reset, 0).Sub(c.now()); until > wait {
		wait = until
	}
	return wait
}

// hasMore reports whether q came back full, so a next page may exist. The
// total reported on later pages drifts, so the result window is left to the
// caller, which measures it against the first page.
func hasMore(q Query, got int) bool {
	return got > 0 && got >= q.PerPage
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
