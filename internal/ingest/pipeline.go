// Package ingest decides, per candidate, whether a scraped posting is stored.
//
// Decisions are sequential and independent: a failure on one candidate is
// reported in its Result and never stops the batch.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"jobmate/aggregator-service/internal/dedup"
	"jobmate/aggregator-service/internal/model"
	"jobmate/aggregator-service/internal/relevance"
	"jobmate/aggregator-service/internal/store"
)

// ErrInvalidCandidate is carried by SkippedFailure results for candidates
// missing a url, title or company.
var ErrInvalidCandidate = errors.New("candidate is missing a required field")

// Result describes the decision taken for one candidate.
type Result struct {
	URL      string
	Outcome  Outcome
	Reason   string // SkippedLowRelevance only: ReasonLowRelevance or ReasonNotLocal
	ID       int64
	Score    float64
	Keywords []string
	Err      error
}

// BatchReport counts the outcomes of one Run.
type BatchReport struct {
	RunID        string        `json:"run_id,omitempty"`
	Received     int           `json:"received"`
	InBatchDupes int           `json:"in_batch_duplicates"`
	Stored       int           `json:"stored"`
	Duplicates   int           `json:"duplicates"`
	LowRelevance int           `json:"low_relevance"`
	NotLocal     int           `json:"not_local"`
	Failed       int           `json:"failed"`
	StoredJobs   []StoredJob   `json:"stored_jobs"`
	Duration     time.Duration `json:"duration_ns"`
}

// StoredJob is the short form of a posting accepted in a batch.
type StoredJob struct {
	ID      int64   `json:"id"`
	Title   string  `json:"title"`
	Company string  `json:"company"`
	URL     string  `json:"url"`
	Score   float64 `json:"relevance_score"`
}

// Notifier is told about every batch that stored at least one posting.
type Notifier interface {
	Notify(ctx context.Context, report BatchReport) error
}

// Pipeline runs candidates through the ingestion decision.
type Pipeline struct {
	store    store.Store
	notifier Notifier
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithClock overrides the clock used for scraped_date.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithNotifier sets the batch notifier. Without one, batches are only logged.
func WithNotifier(n Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

// NewPipeline returns a Pipeline writing to s.
func NewPipeline(s store.Store, opts ...Option) *Pipeline {
	p := &Pipeline{store: s, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ─── Single decision ─────────────────────────────────────────────────────────

// Ingest decides the fate of one candidate. It never returns an error: store
// failures surface as SkippedFailure with Result.Err set.
func (p *Pipeline) Ingest(ctx context.Context, c model.Candidate) Result {
	res := Result{URL: c.URL}

	if c.URL == "" || c.Title == "" || c.Company == "" {
		res.Outcome = SkippedFailure
		res.Err = ErrInvalidCandidate
		slog.Warn("ingest: invalid candidate", "url", c.URL, "title", c.Title, "company", c.Company)
		return res
	}

	exists, err := p.store.ExistsByURL(ctx, c.URL)
	if err != nil {
		return p.failure(res, fmt.Errorf("lookup: %w", err))
	}
	if exists {
		res.Outcome = SkippedDuplicate
		slog.Debug("ingest: already stored", "url", c.URL)
		return res
	}

	res.Score, res.Keywords = relevance.Score(c.Title, model.Deref(c.Description), model.Deref(c.Requirements))
	local := relevance.IsLocal(model.Deref(c.Location), c.Company, model.Deref(c.Description))

	switch {
	case !relevance.IsRelevant(res.Score):
		res.Outcome, res.Reason = SkippedLowRelevance, ReasonLowRelevance
	case !local:
		res.Outcome, res.Reason = SkippedLowRelevance, ReasonNotLocal
	}
	if res.Outcome == SkippedLowRelevance {
		slog.Info("ingest: filtered out",
			"url", c.URL, "title", c.Title, "reason", res.Reason,
			"score", res.Score, "location", model.Deref(c.Location))
		return res
	}

	posting := newPosting(c, res.Score, res.Keywords, p.now().UTC())
	if err := p.store.Insert(ctx, posting); err != nil {
		if errors.Is(err, store.ErrDuplicateURL) {
			res.Outcome = SkippedDuplicate
			slog.Info("ingest: stored concurrently by another batch", "url", c.URL)
			return res
		}
		return p.failure(res, fmt.Errorf("insert: %w", err))
	}

	res.Outcome = Stored
	res.ID = posting.ID
	slog.Info("ingest: stored",
		"id", posting.ID, "title", c.Title, "company", c.Company, "score", res.Score)
	return res
}

func (p *Pipeline) failure(res Result, err error) Result {
	res.Outcome = SkippedFailure
	res.Err = err
	slog.Warn("ingest: candidate skipped after store error", "url", res.URL, "err", err)
	return res
}

func newPosting(c model.Candidate, score float64, keywords []string, now time.Time) *model.Posting {
	currency := c.Currency
	if currency == "" {
		currency = model.DefaultCurrency
	}
	return &model.Posting{
		URL:            c.URL,
		Title:          c.Title,
		Company:        c.Company,
		Location:       c.Location,
		Description:    c.Description,
		Requirements:   c.Requirements,
		SalaryMin:      c.SalaryMin,
		SalaryMax:      c.SalaryMax,
		Currency:       currency,
		JobType:        c.JobType,
		RemoteOK:       c.RemoteOK,
		Source:         c.Source,
		PostedDate:     c.PostedDate,
		ScrapedDate:    now,
		IsActive:       true,
		AIKeywords:     store.EncodeKeywords(keywords),
		RelevanceScore: score,
	}
}

// ─── Batch ───────────────────────────────────────────────────────────────────

type runIDKey struct{}

// WithRunID tags ctx with a run identifier that Run copies into its report.
func WithRunID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, runIDKey{}, id)
}

// RunIDFrom returns the run identifier set by WithRunID, or "".
func RunIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(runIDKey{}).(string)
	return id
}

// Run deduplicates the batch by url, then ingests each candidate in order.
// The notifier is called when at least one posting was stored; its failure
// is logged and does not change the report.
func (p *Pipeline) Run(ctx context.Context, candidates []model.Candidate) BatchReport {
	start := time.Now()
	unique := dedup.Unique(candidates)

	report := BatchReport{
		RunID:        RunIDFrom(ctx),
		Received:     len(candidates),
		InBatchDupes: len(candidates) - len(unique),
		StoredJobs:   make([]StoredJob, 0),
	}

	for _, c := range unique {
		res := p.Ingest(ctx, c)
		report.add(res, c)
	}
	report.Duration = time.Since(start)

	slog.Info("ingest: batch done",
		"received", report.Received, "stored", report.Stored,
		"duplicates", report.Duplicates+report.InBatchDupes,
		"low_relevance", report.LowRelevance, "not_local", report.NotLocal,
		"failed", report.Failed, "duration", report.Duration)

	if report.Stored > 0 && p.notifier != nil {
		if err := p.notifier.Notify(ctx, report); err != nil {
			slog.Warn("ingest: notify failed", "err", err)
		}
	}
	return report
}

func (r *BatchReport) add(res Result, c model.Candidate) {
	switch res.Outcome {
	case Stored:
		r.Stored++
		r.StoredJobs = append(r.StoredJobs, StoredJob{
			ID: res.ID, Title: c.Title, Company: c.Company, URL: c.URL, Score: res.Score,
		})
	case SkippedDuplicate:
		r.Duplicates++
	case SkippedLowRelevance:
		if res.Reason == ReasonNotLocal {
			r.NotLocal++
		} else {
			r.LowRelevance++
		}
	case SkippedFailure:
		r.Failed++
	}
}

// Filtered returns the number of candidates rejected by relevance or locale.
func (r BatchReport) Filtered() int { return r.LowRelevance + r.NotLocal }
