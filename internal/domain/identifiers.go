// Path: internal/domain/identifiers.go
package domain

import "sort"

// IdentifierSet is a set of commit identifiers capped at ResultWindow entries.
// Once a query reports more than ResultWindow matches, the set is a sample
// rather than a census.
type IdentifierSet struct {
	ids map[string]struct{}
}

// NewIdentifierSet creates an empty set.
func NewIdentifierSet() *IdentifierSet {
	return &IdentifierSet{ids: make(map[string]struct{})}
}

// Add stores id and reports whether it was stored. Empty ids, duplicates and
// ids beyond the window cap are rejected.
func (s *IdentifierSet) Add(id string) bool {
	if id == "" || len(s.ids) >= ResultWindow {
		return false
	}
	if _, ok := s.ids[id]; ok {
		return false
	}
	s.ids[id] = struct{}{}
	return true
}

// Contains reports whether id is in the set.
func (s *IdentifierSet) Contains(id string) bool {
	_, ok := s.entries()[id]
	return ok
}

// Len returns the number of identifiers.
func (s *IdentifierSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ids)
}

// Intersect returns the identifiers present in both sets.
func (s *IdentifierSet) Intersect(other *IdentifierSet) []string {
	small, large := s, other
	if large.Len() < small.Len() {
		small, large = large, small
	}
	var out []string
	for id := range small.entries() {
		if large.Contains(id) {
			out = append(out, id)
		}
	}
	sort.Strings(out)
	return out
}

// Union returns the identifiers present in either set. The result is not capped.
func (s *IdentifierSet) Union(other *IdentifierSet) []string {
	seen := make(map[string]struct{}, s.Len()+other.Len())
	for id := range s.entries() {
		seen[id] = struct{}{}
	}
	for id := range other.entries() {
		seen[id] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for id := range seen {
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}

func (s *IdentifierSet) entries() map[string]struct{} {
	if s == nil {
		return nil
	}
	return s.ids
}
