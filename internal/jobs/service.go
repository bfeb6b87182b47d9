// Package jobs contains the read side of the aggregator: listing, statistics
// and deletion of stored postings. It is transport-agnostic: used by the
// HTTP handler and the MCP server.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"jobmate/aggregator-service/internal/model"
	"jobmate/aggregator-service/internal/store"
)

const (
	DefaultLimit   = 50
	MaxLimit       = 200
	DefaultDaysAgo = 30
	topN           = 10
)

// ListParams filters List. DaysAgo nil disables the date filter; 0 keeps
// postings scraped since the start of the current UTC day.
type ListParams struct {
	Limit    int
	Offset   int
	Location string
	JobType  string
	DaysAgo  *int
}

// DaysAgo returns a pointer to n, for ListParams literals.
func DaysAgo(n int) *int { return &n }

// ─── Service ─────────────────────────────────────────────────────────────────

// Service answers queries over the store.
//
// Read failures never reach callers as a hard failure: List and Stats log
// the store error and return an empty value alongside it, which transports
// serve as-is.
type Service struct {
	store store.Store
	now   func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the clock used for date windows.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService returns a configured Service.
func NewService(s store.Store, opts ...Option) *Service {
	svc := &Service{store: s, now: time.Now}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// ─── Queries ─────────────────────────────────────────────────────────────────

// List returns active postings, best match first.
// On a store error it returns an empty, non-nil slice and the error.
func (s *Service) List(ctx context.Context, p ListParams) ([]model.PostingView, error) {
	filter := store.ListFilter{
		Limit:    p.Limit,
		Offset:   p.Offset,
		Location: p.Location,
		JobType:  p.JobType,
	}
	if filter.Limit <= 0 {
		filter.Limit = DefaultLimit
	}
	if filter.Limit > MaxLimit {
		filter.Limit = MaxLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	if p.DaysAgo != nil {
		since := s.since(*p.DaysAgo)
		filter.Since = &since
	}

	postings, err := s.store.List(ctx, filter)
	if err != nil {
		slog.Warn("jobs: list failed, returning empty result", "err", err)
		return []model.PostingView{}, fmt.Errorf("list jobs: %w", err)
	}

	views := make([]model.PostingView, 0, len(postings))
	for _, posting := range postings {
		views = append(views, store.View(posting))
	}
	return views, nil
}

// since returns the lower scraped_date bound for a days_ago value.
// Zero and negative values mean "today" (UTC).
func (s *Service) since(daysAgo int) time.Time {
	now := s.now().UTC()
	if daysAgo <= 0 {
		return startOfDay(now)
	}
	return now.AddDate(0, 0, -daysAgo)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Stats aggregates the jobs table. On a store error it returns
// model.EmptyStats and the error.
func (s *Service) Stats(ctx context.Context) (model.Stats, error) {
	stats, err := s.stats(ctx)
	if err != nil {
		slog.Warn("jobs: stats failed, returning zero stats", "err", err)
		return model.EmptyStats(), fmt.Errorf("job stats: %w", err)
	}
	return stats, nil
}

func (s *Service) stats(ctx context.Context) (model.Stats, error) {
	now := s.now().UTC()
	today := startOfDay(now)
	tomorrow := today.AddDate(0, 0, 1)
	weekAgo := now.AddDate(0, 0, -7)

	stats := model.EmptyStats()
	var err error

	counts := []struct {
		dst    *int64
		filter store.CountFilter
	}{
		{&stats.TotalJobs, store.CountFilter{}},
		{&stats.ActiveJobs, store.CountFilter{ActiveOnly: true}},
		{&stats.JobsToday, store.CountFilter{ScrapedFrom: &today, ScrapedTo: &tomorrow}},
		{&stats.JobsThisWeek, store.CountFilter{ScrapedFrom: &weekAgo}},
	}
	for _, c := range counts {
		if *c.dst, err = s.store.Count(ctx, c.filter); err != nil {
			return stats, err
		}
	}

	groups := []struct {
		dst   *[]model.NamedCount
		field store.Field
		limit int
	}{
		{&stats.TopCompanies, store.FieldCompany, topN},
		{&stats.TopLocations, store.FieldLocation, topN},
		{&stats.JobTypes, store.FieldJobType, topN},
		{&stats.Sources, store.FieldSource, 0},
	}
	for _, g := range groups {
		if *g.dst, err = s.store.TopValues(ctx, g.field, g.limit); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// Delete hard-deletes a posting. It reports whether a row was removed; a
// store error reports false together with the error.
func (s *Service) Delete(ctx context.Context, id int64) (bool, error) {
	removed, err := s.store.Delete(ctx, id)
	if err != nil {
		slog.Warn("jobs: delete failed", "id", id, "err", err)
		return false, fmt.Errorf("delete job %d: %w", id, err)
	}
	if removed {
		slog.Info("jobs: deleted", "id", id)
	}
	return removed, nil
}
