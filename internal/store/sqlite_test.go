package store_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/aggregator-service/internal/db"
	"jobmate/aggregator-service/internal/model"
	"jobmate/aggregator-service/internal/store"
)

var base = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func newStore(t *testing.T) *store.SQLite {
	t.Helper()
	ctx := context.Background()
	sqlDB, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	s := store.NewSQLite(sqlDB)
	require.NoError(t, s.Migrate(ctx))
	t.Cleanup(s.Close)
	return s
}

func posting(url string, score float64, scraped time.Time) *model.Posting {
	return &model.Posting{
		URL:            url,
		Title:          "AI Consultant",
		Company:        "Acme",
		Location:       model.StringPtr("Copenhagen, Denmark"),
		Currency:       model.DefaultCurrency,
		JobType:        model.StringPtr(model.JobTypeFullTime),
		Source:         "jobindex",
		ScrapedDate:    scraped,
		IsActive:       true,
		AIKeywords:     `["ai","ai consultant"]`,
		RelevanceScore: score,
	}
}

func insert(t *testing.T, s store.Store, p *model.Posting) *model.Posting {
	t.Helper()
	require.NoError(t, s.Insert(context.Background(), p))
	return p
}

func listURLs(ps []model.Posting) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.URL)
	}
	return out
}

// ── Insert / ExistsByURL ───────────────────────────────────────────────────

func TestSQLite_InsertAssignsIDAndIsFoundByURL(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()

	p := insert(t, s, posting("https://jobs.dk/1", 0.5, base))
	assert.NotZero(t, p.ID)

	exists, err := s.ExistsByURL(ctx, "https://jobs.dk/1")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = s.ExistsByURL(ctx, "https://jobs.dk/unknown")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSQLite_InsertDuplicateURL(t *testing.T) {
	s := newStore(t)
	insert(t, s, posting("https://jobs.dk/1", 0.5, base))

	err := s.Insert(context.Background(), posting("https://jobs.dk/1", 0.9, base))
	assert.ErrorIs(t, err, store.ErrDuplicateURL)

	n, err := s.Count(context.Background(), store.CountFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

func TestSQLite_InsertOtherErrorsAreNotDuplicates(t *testing.T) {
	ctx := context.Background()
	sqlDB, err := db.OpenSQLite(ctx, ":memory:")
	require.NoError(t, err)
	s := store.NewSQLite(sqlDB)
	require.NoError(t, s.Migrate(ctx))
	_, err = sqlDB.ExecContext(ctx, `DROP TABLE jobs`)
	require.NoError(t, err)
	t.Cleanup(s.Close)

	err = s.Insert(ctx, posting("https://jobs.dk/1", 0.5, base))
	require.Error(t, err)
	assert.NotErrorIs(t, err, store.ErrDuplicateURL)
}

func TestSQLite_OptionalFieldsRoundTrip(t *testing.T) {
	s := newStore(t)
	posted := base.Add(-48 * time.Hour)
	salary := 650000.0

	p := posting("https://jobs.dk/full", 0.5, base)
	p.Description = model.StringPtr("desc")
	p.SalaryMin = &salary
	p.PostedDate = &posted
	p.RemoteOK = true
	insert(t, s, p)

	bare := posting("https://jobs.dk/bare", 0.4, base)
	bare.Location = nil
	bare.JobType = nil
	bare.AIKeywords = ""
	insert(t, s, bare)

	got, err := s.List(context.Background(), store.ListFilter{})
	require.NoError(t, err)
	require.Len(t, got, 2)

	full := got[0]
	assert.Equal(t, "https://jobs.dk/full", full.URL)
	assert.Equal(t, "desc", model.Deref(full.Description))
	require.NotNil(t, full.SalaryMin)
	assert.Equal(t, salary, *full.SalaryMin)
	assert.Nil(t, full.SalaryMax)
	require.NotNil(t, full.PostedDate)
	assert.True(t, posted.Equal(*full.PostedDate))
	assert.True(t, base.Equal(full.ScrapedDate))
	assert.True(t, full.RemoteOK)
	assert.True(t, full.IsActive)

	assert.Nil(t, got[1].Location)
	assert.Nil(t, got[1].JobType)
	assert.Equal(t, "", got[1].AIKeywords)
}

// ── Delete ─────────────────────────────────────────────────────────────────

func TestSQLite_Delete(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	p := insert(t, s, posting("https://jobs.dk/1", 0.5, base))
	insert(t, s, posting("https://jobs.dk/2", 0.5, base))

	removed, err := s.Delete(ctx, p.ID+1000)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = s.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.Delete(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, removed, "second delete of the same id must report not found")

	n, err := s.Count(ctx, store.CountFilter{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
}

// ── List ───────────────────────────────────────────────────────────────────

func TestSQLite_ListOrdersByScoreThenRecency(t *testing.T) {
	s := newStore(t)
	insert(t, s, posting("low", 0.2, base))
	insert(t, s, posting("high-old", 0.8, base.Add(-time.Hour)))
	insert(t, s, posting("high-new", 0.8, base))
	insert(t, s, posting("mid", 0.5, base.Add(-72*time.Hour)))

	got, err := s.List(context.Background(), store.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"high-new", "high-old", "mid", "low"}, listURLs(got))
}

func TestSQLite_ListSkipsInactive(t *testing.T) {
	s := newStore(t)
	insert(t, s, posting("active", 0.5, base))
	inactive := posting("inactive", 0.9, base)
	inactive.IsActive = false
	insert(t, s, inactive)

	got, err := s.List(context.Background(), store.ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, []string{"active"}, listURLs(got))
}

func TestSQLite_ListFilters(t *testing.T) {
	s := newStore(t)
	cph := posting("cph", 0.9, base)
	aarhus := posting("aarhus", 0.8, base.Add(-10*24*time.Hour))
	aarhus.Location = model.StringPtr("Aarhus C")
	aarhus.JobType = model.StringPtr(model.JobTypeFreelance)
	insert(t, s, cph)
	insert(t, s, aarhus)

	since := base.Add(-24 * time.Hour)
	cases := []struct {
		name   string
		filter store.ListFilter
		want   []string
	}{
		{"no filter", store.ListFilter{}, []string{"cph", "aarhus"}},
		{"location substring, any case", store.ListFilter{Location: "AARHUS"}, []string{"aarhus"}},
		{"job type substring", store.ListFilter{JobType: "free"}, []string{"aarhus"}},
		{"since", store.ListFilter{Since: &since}, []string{"cph"}},
		{"like metacharacters are literal", store.ListFilter{Location: "%"}, []string{}},
		{"limit", store.ListFilter{Limit: 1}, []string{"cph"}},
		{"offset", store.ListFilter{Limit: 10, Offset: 1}, []string{"aarhus"}},
		{"offset without limit", store.ListFilter{Offset: 1}, []string{"aarhus"}},
		{"offset past end", store.ListFilter{Limit: 10, Offset: 5}, []string{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := s.List(context.Background(), c.filter)
			require.NoError(t, err)
			assert.Equal(t, c.want, listURLs(got))
		})
	}
}

func TestSQLite_ListFoldsDanishLetters(t *testing.T) {
	s := newStore(t)
	kbh := posting("kbh", 0.9, base)
	kbh.Location = model.StringPtr("København K")
	kbh.JobType = model.StringPtr("Fuldtid")
	odense := posting("odense", 0.8, base)
	odense.Location = model.StringPtr("Odense SØ")
	insert(t, s, kbh)
	insert(t, s, odense)

	cases := []struct {
		name   string
		filter store.ListFilter
		want   []string
	}{
		{"same case", store.ListFilter{Location: "København"}, []string{"kbh"}},
		{"lower case", store.ListFilter{Location: "københavn"}, []string{"kbh"}},
		{"upper case", store.ListFilter{Location: "KØBENHAVN"}, []string{"kbh"}},
		{"stored upper, queried lower", store.ListFilter{Location: "sø"}, []string{"odense"}},
		{"job type", store.ListFilter{JobType: "FULDTID"}, []string{"kbh"}},
		{"no match", store.ListFilter{Location: "ÅRHUS"}, []string{}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := s.List(context.Background(), c.filter)
			require.NoError(t, err)
			assert.Equal(t, c.want, listURLs(got))
		})
	}
}

// ── Count / TopValues ──────────────────────────────────────────────────────

func TestSQLite_Count(t *testing.T) {
	s := newStore(t)
	insert(t, s, posting("today", 0.5, base))
	insert(t, s, posting("yesterday", 0.5, base.Add(-24*time.Hour)))
	old := posting("old-inactive", 0.5, base.Add(-30*24*time.Hour))
	old.IsActive = false
	insert(t, s, old)

	dayStart := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	weekAgo := base.Add(-7 * 24 * time.Hour)

	cases := []struct {
		name   string
		filter store.CountFilter
		want   int64
	}{
		{"all rows", store.CountFilter{}, 3},
		{"active", store.CountFilter{ActiveOnly: true}, 2},
		{"today", store.CountFilter{ScrapedFrom: &dayStart, ScrapedTo: &dayEnd}, 1},
		{"this week", store.CountFilter{ScrapedFrom: &weekAgo}, 2},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			n, err := s.Count(context.Background(), c.filter)
			require.NoError(t, err)
			assert.Equal(t, c.want, n)
		})
	}
}

func TestSQLite_TopValues(t *testing.T) {
	s := newStore(t)
	for i, company := range []string{"Beta", "Alpha", "Beta", "Gamma", "Alpha", "Beta"} {
		p := posting(fmt.Sprintf("u%d", i), 0.5, base)
		p.Company = company
		insert(t, s, p)
	}
	hidden := posting("hidden", 0.5, base)
	hidden.Company = "Hidden"
	hidden.IsActive = false
	insert(t, s, hidden)

	got, err := s.TopValues(context.Background(), store.FieldCompany, 0)
	require.NoError(t, err)
	assert.Equal(t, []model.NamedCount{
		{Name: "Beta", Count: 3},
		{Name: "Alpha", Count: 2},
		{Name: "Gamma", Count: 1},
	}, got)

	got, err = s.TopValues(context.Background(), store.FieldCompany, 2)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSQLite_TopValuesTieBreaksByName(t *testing.T) {
	s := newStore(t)
	for i, src := range []string{"jobnet", "adzuna", "jobindex"} {
		p := posting(fmt.Sprintf("u%d", i), 0.5, base)
		p.Source = src
		insert(t, s, p)
	}

	got, err := s.TopValues(context.Background(), store.FieldSource, 0)
	require.NoError(t, err)
	assert.Equal(t, []model.NamedCount{
		{Name: "adzuna", Count: 1},
		{Name: "jobindex", Count: 1},
		{Name: "jobnet", Count: 1},
	}, got)
}

func TestSQLite_TopValuesSkipsMissing(t *testing.T) {
	s := newStore(t)
	nilType := posting("nil", 0.5, base)
	nilType.JobType = nil
	emptyType := posting("empty", 0.5, base)
	emptyType.JobType = model.StringPtr("")
	insert(t, s, nilType)
	insert(t, s, emptyType)
	insert(t, s, posting("set", 0.5, base))

	got, err := s.TopValues(context.Background(), store.FieldJobType, 10)
	require.NoError(t, err)
	assert.Equal(t, []model.NamedCount{{Name: model.JobTypeFullTime, Count: 1}}, got)
}

func TestSQLite_TopValuesUnknownField(t *testing.T) {
	s := newStore(t)
	_, err := s.TopValues(context.Background(), store.Field("title; DROP TABLE jobs"), 10)
	assert.Error(t, err)
}
