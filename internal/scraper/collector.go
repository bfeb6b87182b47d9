package scraper

import (
	"context"
	"log/slog"

	"jobmate/aggregator-service/internal/model"
)

// Collector runs every search term against every source.
type Collector struct {
	sources  []Source
	terms    []string
	redFlags []string
}

// NewCollector returns a Collector. Empty terms fall back to
// DefaultSearchTerms.
func NewCollector(sources []Source, terms, redFlags []string) *Collector {
	if len(terms) == 0 {
		terms = DefaultSearchTerms
	}
	return &Collector{sources: sources, terms: terms, redFlags: redFlags}
}

// Sources returns the names of the configured sources.
func (c *Collector) Sources() []string {
	names := make([]string, 0, len(c.sources))
	for _, s := range c.sources {
		names = append(names, s.Name())
	}
	return names
}

// Collect returns every candidate found. A failing source is logged and
// skipped; whatever it returned before failing is kept. Red-flagged
// candidates are dropped. Duplicates are left for the ingestion pipeline.
func (c *Collector) Collect(ctx context.Context) []model.Candidate {
	all := make([]model.Candidate, 0)
	var flagged int

	for _, term := range c.terms {
		for _, src := range c.sources {
			if ctx.Err() != nil {
				slog.Warn("collector: stopped", "err", ctx.Err(), "collected", len(all))
				return all
			}

			found, err := src.Fetch(ctx, term)
			if err != nil {
				slog.Warn("collector: source failed, continuing",
					"source", src.Name(), "term", term, "err", err)
			}
			for _, cand := range found {
				if ContainsRedFlag(cand, c.redFlags) {
					flagged++
					continue
				}
				all = append(all, cand)
			}
		}
	}

	slog.Info("collector: done",
		"terms", len(c.terms), "sources", len(c.sources),
		"candidates", len(all), "red_flagged", flagged)
	return all
}
