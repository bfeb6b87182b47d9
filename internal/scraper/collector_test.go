package scraper_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"jobmate/aggregator-service/internal/model"
	"jobmate/aggregator-service/internal/scraper"
)

type fakeSource struct {
	name  string
	jobs  map[string][]model.Candidate
	err   error
	terms []string
}

func (f *fakeSource) Name() string { return f.name }

func (f *fakeSource) Fetch(_ context.Context, term string) ([]model.Candidate, error) {
	f.terms = append(f.terms, term)
	return f.jobs[term], f.err
}

func job(url, company string) model.Candidate {
	return model.Candidate{URL: url, Title: "AI Trainer", Company: company}
}

func TestCollector_CollectsEveryTermAndSource(t *testing.T) {
	a := &fakeSource{name: "a", jobs: map[string][]model.Candidate{
		"ai":     {job("a1", "X")},
		"ml eng": {job("a2", "X"), job("shared", "X")},
	}}
	b := &fakeSource{name: "b", jobs: map[string][]model.Candidate{
		"ai": {job("shared", "Y")},
	}}

	c := scraper.NewCollector([]scraper.Source{a, b}, []string{"ai", "ml eng"}, nil)
	got := c.Collect(context.Background())

	urls := make([]string, 0, len(got))
	for _, g := range got {
		urls = append(urls, g.URL)
	}
	assert.Equal(t, []string{"a1", "shared", "a2", "shared"}, urls)
	assert.Equal(t, []string{"ai", "ml eng"}, a.terms)
	assert.Equal(t, []string{"ai", "ml eng"}, b.terms)
	assert.Equal(t, []string{"a", "b"}, c.Sources())
}

func TestCollector_FailingSourceIsSkipped(t *testing.T) {
	broken := &fakeSource{
		name: "broken",
		jobs: map[string][]model.Candidate{"ai": {job("partial", "X")}},
		err:  errors.New("503"),
	}
	ok := &fakeSource{name: "ok", jobs: map[string][]model.Candidate{"ai": {job("ok1", "X")}}}

	got := scraper.NewCollector([]scraper.Source{broken, ok}, []string{"ai"}, nil).Collect(context.Background())

	assert.Len(t, got, 2)
	assert.Equal(t, "partial", got[0].URL)
	assert.Equal(t, "ok1", got[1].URL)
}

func TestCollector_DropsRedFlags(t *testing.T) {
	src := &fakeSource{name: "a", jobs: map[string][]model.Candidate{
		"ai": {job("keep", "Novo Nordisk"), job("drop", "Crypto Casino ApS")},
	}}

	got := scraper.NewCollector([]scraper.Source{src}, []string{"ai"}, []string{"casino"}).Collect(context.Background())

	assert.Len(t, got, 1)
	assert.Equal(t, "keep", got[0].URL)
}

func TestCollector_DefaultTerms(t *testing.T) {
	src := &fakeSource{name: "a"}
	got := scraper.NewCollector([]scraper.Source{src}, nil, nil).Collect(context.Background())

	assert.Empty(t, got)
	assert.NotNil(t, got)
	assert.Equal(t, scraper.DefaultSearchTerms, src.terms)
}

func TestCollector_StopsWhenContextDone(t *testing.T) {
	src := &fakeSource{name: "a"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	scraper.NewCollector([]scraper.Source{src}, []string{"ai", "ml"}, nil).Collect(ctx)

	assert.Empty(t, src.terms)
}
