// Package scraper fetches raw job candidates from Danish job boards and the
// Adzuna API.
package scraper

import (
	"context"
	"time"

	"jobmate/aggregator-service/internal/model"
)

const (
	userAgent   = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	httpTimeout = 15 * time.Second
)

// Source is one job board.
type Source interface {
	// Name is the value stored in the posting's source column.
	Name() string
	// Fetch returns the candidates found for one search term.
	Fetch(ctx context.Context, term string) ([]model.Candidate, error)
}

// DefaultSearchTerms are used when no sources file overrides them.
var DefaultSearchTerms = []string{
	"AI trainer",
	"AI consultant",
	"AI mentor",
	"AI project lead",
	"AI curator",
	"machine learning engineer",
	"data scientist",
	"AI researcher",
	"artificial intelligence",
	"generative AI",
	"prompt engineer",
}
