package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/aggregator-service/internal/db"
	"jobmate/aggregator-service/internal/ingest"
	"jobmate/aggregator-service/internal/model"
	"jobmate/aggregator-service/internal/store"
)

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func newStore(t *testing.T) store.Store {
	t.Helper()
	ctx := context.Background()
	sqlDB, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	s := store.NewSQLite(sqlDB)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(s.Close)
	return s
}

func clock() time.Time { return fixedNow }

func candidate(url string) model.Candidate {
	return model.Candidate{
		URL:         url,
		Title:       "AI Consultant",
		Company:     "NNIT",
		Location:    model.StringPtr("Copenhagen, Denmark"),
		Description: model.StringPtr("Help clients adopt generative AI."),
		Source:      "jobindex",
	}
}

func count(t *testing.T, s store.Store) int64 {
	t.Helper()
	n, err := s.Count(context.Background(), store.CountFilter{})
	require.NoError(t, err)
	return n
}

// ── Fakes ──────────────────────────────────────────────────────────────────

type recordingNotifier struct {
	reports []ingest.BatchReport
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, r ingest.BatchReport) error {
	n.reports = append(n.reports, r)
	return n.err
}

// brokenStore fails every lookup.
type brokenStore struct{ store.Store }

func (brokenStore) ExistsByURL(context.Context, string) (bool, error) {
	return false, errors.New("connection refused")
}

// racingStore reports the url as new, then loses the insert race.
type racingStore struct{ store.Store }

func (racingStore) ExistsByURL(context.Context, string) (bool, error) { return false, nil }

func (racingStore) Insert(context.Context, *model.Posting) error { return store.ErrDuplicateURL }

// failingInsertStore fails on insert only.
type failingInsertStore struct{ store.Store }

func (failingInsertStore) ExistsByURL(context.Context, string) (bool, error) { return false, nil }

func (failingInsertStore) Insert(context.Context, *model.Posting) error {
	return errors.New("disk full")
}

// ── Ingest ─────────────────────────────────────────────────────────────────

func TestIngest_StoresRelevantLocalPosting(t *testing.T) {
	s := newStore(t)
	p := ingest.NewPipeline(s, ingest.WithClock(clock))

	res := p.Ingest(context.Background(), candidate("https://jobs.dk/1"))

	require.Equal(t, ingest.Stored, res.Outcome)
	assert.NoError(t, res.Err)
	assert.NotZero(t, res.ID)
	assert.GreaterOrEqual(t, res.Score, 0.1)
	assert.Contains(t, res.Keywords, "ai consultant")

	got, err := s.List(context.Background(), store.ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	stored := got[0]
	assert.Equal(t, res.ID, stored.ID)
	assert.True(t, fixedNow.Equal(stored.ScrapedDate))
	assert.True(t, stored.IsActive)
	assert.Equal(t, model.DefaultCurrency, stored.Currency)
	assert.InDelta(t, res.Score, stored.RelevanceScore, 1e-9)
	assert.Equal(t, res.Keywords, store.DecodeKeywords(stored.AIKeywords))
}

func TestIngest_KeepsCandidateCurrency(t *testing.T) {
	s := newStore(t)
	p := ingest.NewPipeline(s, ingest.WithClock(clock))
	c := candidate("https://jobs.dk/eur")
	c.Currency = "EUR"

	require.Equal(t, ingest.Stored, p.Ingest(context.Background(), c).Outcome)

	got, err := s.List(context.Background(), store.ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "EUR", got[0].Currency)
}

func TestIngest_SameURLTwice(t *testing.T) {
	s := newStore(t)
	p := ingest.NewPipeline(s, ingest.WithClock(clock))
	ctx := context.Background()

	first := p.Ingest(ctx, candidate("https://jobs.dk/1"))
	second := p.Ingest(ctx, candidate("https://jobs.dk/1"))

	assert.Equal(t, ingest.Stored, first.Outcome)
	assert.Equal(t, ingest.SkippedDuplicate, second.Outcome)
	assert.NoError(t, second.Err)
	assert.EqualValues(t, 1, count(t, s))
}

func TestIngest_Filtered(t *testing.T) {
	lowScore := candidate("https://jobs.dk/low")
	lowScore.Title = "Chatbot Developer"
	lowScore.Description = nil
	lowScore.Location = model.StringPtr("Aarhus")

	foreign := candidate("https://jobs.de/ai")
	foreign.Company = "Acme GmbH"
	foreign.Location = model.StringPtr("Berlin, Germany")
	foreign.Description = nil

	noLocation := candidate("https://jobs.dk/nowhere")
	noLocation.Location = nil
	noLocation.Description = model.StringPtr("AI jobs in Copenhagen")

	cases := []struct {
		name   string
		c      model.Candidate
		reason string
	}{
		{"score below threshold", lowScore, ingest.ReasonLowRelevance},
		{"relevant but not local", foreign, ingest.ReasonNotLocal},
		{"empty location", noLocation, ingest.ReasonNotLocal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := newStore(t)
			p := ingest.NewPipeline(s, ingest.WithClock(clock))

			res := p.Ingest(context.Background(), tc.c)

			assert.Equal(t, ingest.SkippedLowRelevance, res.Outcome)
			assert.Equal(t, tc.reason, res.Reason)
			assert.NoError(t, res.Err)
			assert.Zero(t, res.ID)
			assert.EqualValues(t, 0, count(t, s))
		})
	}
}

func TestIngest_LowScoreIsReportedAsLowRelevanceEvenWhenNotLocal(t *testing.T) {
	c := candidate("https://jobs.de/chat")
	c.Title = "Chatbot Developer"
	c.Description = nil
	c.Location = model.StringPtr("Berlin")

	res := ingest.NewPipeline(newStore(t)).Ingest(context.Background(), c)
	assert.Equal(t, ingest.SkippedLowRelevance, res.Outcome)
	assert.Equal(t, ingest.ReasonLowRelevance, res.Reason)
}

func TestIngest_InvalidCandidate(t *testing.T) {
	s := newStore(t)
	p := ingest.NewPipeline(s)

	c := candidate("")
	res := p.Ingest(context.Background(), c)

	assert.Equal(t, ingest.SkippedFailure, res.Outcome)
	assert.ErrorIs(t, res.Err, ingest.ErrInvalidCandidate)
	assert.EqualValues(t, 0, count(t, s))
}

func TestIngest_StoreFailures(t *testing.T) {
	cases := []struct {
		name string
		s    store.Store
		want ingest.Outcome
	}{
		{"lookup fails", brokenStore{}, ingest.SkippedFailure},
		{"insert fails", failingInsertStore{}, ingest.SkippedFailure},
		{"insert loses race", racingStore{}, ingest.SkippedDuplicate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := ingest.NewPipeline(tc.s, ingest.WithClock(clock))
			var res ingest.Result
			require.NotPanics(t, func() {
				res = p.Ingest(context.Background(), candidate("https://jobs.dk/1"))
			})
			assert.Equal(t, tc.want, res.Outcome)
			if tc.want == ingest.SkippedFailure {
				assert.Error(t, res.Err)
			} else {
				assert.NoError(t, res.Err)
			}
		})
	}
}

// ── Run ────────────────────────────────────────────────────────────────────

func TestRun_CountsEveryOutcome(t *testing.T) {
	s := newStore(t)
	n := &recordingNotifier{}
	p := ingest.NewPipeline(s, ingest.WithClock(clock), ingest.WithNotifier(n))
	ctx := context.Background()

	require.Equal(t, ingest.Stored, p.Ingest(ctx, candidate("https://jobs.dk/old")).Outcome)

	low := candidate("https://jobs.dk/low")
	low.Title = "Chatbot Developer"
	low.Description = nil
	foreign := candidate("https://jobs.de/1")
	foreign.Location = model.StringPtr("Berlin")
	foreign.Description = nil
	broken := candidate("https://jobs.dk/broken")
	broken.Company = ""

	batch := []model.Candidate{
		candidate("https://jobs.dk/a"),
		candidate("https://jobs.dk/b"),
		candidate("https://jobs.dk/a"),
		candidate("https://jobs.dk/old"),
		low,
		foreign,
		broken,
	}
	report := p.Run(ctx, batch)

	assert.Equal(t, 7, report.Received)
	assert.Equal(t, 1, report.InBatchDupes)
	assert.Equal(t, 2, report.Stored)
	assert.Equal(t, 1, report.Duplicates)
	assert.Equal(t, 1, report.LowRelevance)
	assert.Equal(t, 1, report.NotLocal)
	assert.Equal(t, 2, report.Filtered())
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.StoredJobs, 2)
	assert.Equal(t, "https://jobs.dk/a", report.StoredJobs[0].URL)
	assert.Equal(t, "https://jobs.dk/b", report.StoredJobs[1].URL)

	assert.EqualValues(t, 3, count(t, s))
	require.Len(t, n.reports, 1)
	assert.Equal(t, 2, n.reports[0].Stored)
}

func TestRun_NotifiesOnlyWhenSomethingWasStored(t *testing.T) {
	s := newStore(t)
	n := &recordingNotifier{}
	p := ingest.NewPipeline(s, ingest.WithNotifier(n))
	ctx := context.Background()

	p.Run(ctx, nil)
	p.Run(ctx, []model.Candidate{candidate("https://jobs.dk/1")})
	p.Run(ctx, []model.Candidate{candidate("https://jobs.dk/1")})

	assert.Len(t, n.reports, 1)
}

func TestRun_NotifierErrorDoesNotChangeReport(t *testing.T) {
	n := &recordingNotifier{err: errors.New("redis down")}
	p := ingest.NewPipeline(newStore(t), ingest.WithNotifier(n))

	report := p.Run(context.Background(), []model.Candidate{candidate("https://jobs.dk/1")})

	assert.Equal(t, 1, report.Stored)
	assert.Len(t, n.reports, 1)
}

func TestRun_CopiesRunIDFromContext(t *testing.T) {
	n := &recordingNotifier{}
	p := ingest.NewPipeline(newStore(t), ingest.WithNotifier(n))
	ctx := ingest.WithRunID(context.Background(), "run-7")

	report := p.Run(ctx, []model.Candidate{candidate("https://jobs.dk/1")})

	assert.Equal(t, "run-7", report.RunID)
	require.Len(t, n.reports, 1)
	assert.Equal(t, "run-7", n.reports[0].RunID)
	assert.Empty(t, ingest.RunIDFrom(context.Background()))
}

func TestRun_ContinuesAfterStoreFailure(t *testing.T) {
	p := ingest.NewPipeline(brokenStore{})

	report := p.Run(context.Background(), []model.Candidate{
		candidate("https://jobs.dk/1"),
		candidate("https://jobs.dk/2"),
	})

	assert.Equal(t, 2, report.Failed)
	assert.Zero(t, report.Stored)
	assert.NotNil(t, report.StoredJobs)
}

func TestOutcome_IsSkipped(t *testing.T) {
	assert.False(t, ingest.Stored.IsSkipped())
	for _, o := range []ingest.Outcome{ingest.SkippedDuplicate, ingest.SkippedLowRelevance, ingest.SkippedFailure} {
		assert.True(t, o.IsSkipped(), o)
	}
}
