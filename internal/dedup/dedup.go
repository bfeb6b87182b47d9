// Package dedup removes duplicate candidates within a single scrape batch.
// Cross-batch duplicates are the store's concern.
package dedup

import "jobmate/aggregator-service/internal/model"

// Set tracks URLs already seen. It is not safe for concurrent use; a batch
// is processed by one goroutine.
type Set struct {
	seen map[string]struct{}
}

// NewSet creates an empty Set sized for n URLs.
func NewSet(n int) *Set {
	return &Set{seen: make(map[string]struct{}, n)}
}

// Add returns true if url was newly added, false if already present.
func (s *Set) Add(url string) bool {
	if _, exists := s.seen[url]; exists {
		return false
	}
	s.seen[url] = struct{}{}
	return true
}

// Contains reports whether url has been added.
func (s *Set) Contains(url string) bool {
	_, exists := s.seen[url]
	return exists
}

// Len returns the number of distinct URLs tracked.
func (s *Set) Len() int {
	return len(s.seen)
}

// Unique returns the first occurrence of every URL in candidates, preserving
// input order. The input slice is not modified.
func Unique(candidates []model.Candidate) []model.Candidate {
	set := NewSet(len(candidates))
	out := make([]model.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if set.Add(c.URL) {
			out = append(out, c)
		}
	}
	return out
}
