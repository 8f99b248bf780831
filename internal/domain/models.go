// Path: internal/domain/models.go
package domain

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// ResultWindow is the maximum number of items the search API will return
// for a single query, regardless of the reported total_count.
const ResultWindow = 1000

// SearchPattern is a literal search predicate identified by a short label.
type SearchPattern struct {
	Label string `mapstructure:"label" json:"label"`
	Query string `mapstructure:"query" json:"query"`
}

// DefaultPatterns are the two markers left in commits made with the assistant.
var DefaultPatterns = []SearchPattern{
	{Label: "co_authored", Query: `"Co-authored-by" "anthropic.com"`},
	{Label: "generated", Query: `"Generated with Claude Code"`},
}

// --- Custom Type for the "total_count" field ---

// FlexibleInt is an integer that can be unmarshaled from a JSON number
// or a JSON string holding a number.
type FlexibleInt int

// UnmarshalJSON implements the json.Unmarshaler interface for FlexibleInt.
func (fi *FlexibleInt) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*fi = FlexibleInt(n)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("total_count is not a number or numeric string: %w", err)
	}

	parsed, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*fi = FlexibleInt(parsed)
	return nil
}

// CommitItem is one entry of the "items" array returned by the commit search API.
type CommitItem struct {
	SHA        string `json:"sha"`
	Repository struct {
		FullName string `json:"full_name"`
	} `json:"repository"`
	Commit struct {
		Message   string `json:"message"`
		Committer struct {
			Date string `json:"date"`
		} `json:"committer"`
	} `json:"commit"`
}

// SearchResponse is the JSON body of a successful search call.
type SearchResponse struct {
	TotalCount FlexibleInt  `json:"total_count"`
	Items      []CommitItem `json:"items"`
}

// PageResult is one page of search results.
type PageResult struct {
	TotalCount int
	Items      []CommitItem
	// HasMore is true when another page may exist inside the result window.
	HasMore bool
}

// CommitSample is a short, human-readable summary of a matched commit.
type CommitSample struct {
	SHA     string `json:"sha" bson:"sha"`
	Repo    string `json:"repo" bson:"repo"`
	Message string `json:"message" bson:"message"`
	Date    string `json:"date" bson:"date"`
}

const (
	sampleSHALength     = 8
	sampleMessageLength = 120
)

// NewCommitSample builds a sample from a search item, truncating long fields.
func NewCommitSample(item CommitItem) CommitSample {
	sha := item.SHA
	if len(sha) > sampleSHALength {
		sha = sha[:sampleSHALength]
	}
	msg := []rune(item.Commit.Message)
	if len(msg) > sampleMessageLength {
		msg = msg[:sampleMessageLength]
	}
	return CommitSample{
		SHA:     sha,
		Repo:    item.Repository.FullName,
		Message: string(msg),
		Date:    item.Commit.Committer.Date,
	}
}

// DailyRecord holds the aggregated counts for a single calendar day.
// It includes struct tags for JSON serialization and BSON mapping for MongoDB.
type DailyRecord struct {
	Date string `json:"date" bson:"_id"`
	// Counts holds one total_count per pattern label.
	Counts map[string]int `json:"counts" bson:"counts"`
	// Combined is the per-day metric derived from Counts by a CombinePolicy.
	Combined int `json:"combined" bson:"combined"`
	// TotalCommits is the denominator: every commit on the platform for Date.
	TotalCommits  int            `json:"total_commits" bson:"total_commits"`
	DistinctRepos int            `json:"distinct_repos" bson:"distinct_repos"`
	Repos         []string       `json:"repos,omitempty" bson:"repos,omitempty"`
	Samples       []CommitSample `json:"samples,omitempty" bson:"samples,omitempty"`
	// Degraded lists the pattern labels whose query failed and were counted as 0.
	Degraded []string `json:"degraded,omitempty" bson:"-"`
}

// Valid reports whether the record may be persisted.
func (r DailyRecord) Valid() bool {
	return r.TotalCommits > 0
}

// Ratio returns Combined as a percentage of TotalCommits.
func (r DailyRecord) Ratio() float64 {
	if r.TotalCommits <= 0 {
		return 0
	}
	return float64(r.Combined) / float64(r.TotalCommits) * 100
}

// CombinePolicy selects how per-pattern counts are reduced to one metric.
type CombinePolicy string

const (
	// PolicySum adds all counts. It is an upper bound, since a commit
	// matching several patterns is counted once per pattern.
	PolicySum CombinePolicy = "sum"
	// PolicyMax keeps the largest count. Used when patterns overlap heavily.
	PolicyMax CombinePolicy = "max"
)

// ParseCombinePolicy validates a policy name.
func ParseCombinePolicy(s string) (CombinePolicy, error) {
	switch p := CombinePolicy(s); p {
	case PolicySum, PolicyMax:
		return p, nil
	default:
		return "", fmt.Errorf("unknown combine policy %q (want %q or %q)", s, PolicySum, PolicyMax)
	}
}

// Combine reduces counts according to the policy.
func (p CombinePolicy) Combine(counts map[string]int) int {
	result := 0
	for _, c := range counts {
		switch p {
		case PolicyMax:
			result = max(result, c)
		default:
			result += c
		}
	}
	return result
}
