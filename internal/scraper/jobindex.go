package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"jobmate/aggregator-service/internal/model"
)

const jobindexBaseURL = "https://www.jobindex.dk"

// Jobindex scrapes the jobindex.dk search result page.
type Jobindex struct {
	BaseURL string
	Delay   time.Duration
}

// NewJobindex returns a Jobindex source against the public site.
func NewJobindex() *Jobindex {
	return &Jobindex{BaseURL: jobindexBaseURL, Delay: 2 * time.Second}
}

func (j *Jobindex) Name() string { return "jobindex" }

func (j *Jobindex) searchURL(term string) string {
	params := url.Values{}
	params.Set("q", term)
	params.Set("supcat", "11") // IT
	params.Set("sortby", "1")  // newest first
	return j.BaseURL + "/jobsoegning?" + params.Encode()
}

func (j *Jobindex) Fetch(ctx context.Context, term string) ([]model.Candidate, error) {
	c := newCollector(ctx, j.Delay)
	candidates := make([]model.Candidate, 0)

	c.OnHTML("div.jobsearch-result", func(e *colly.HTMLElement) {
		title := squash(e.ChildText("h4.jobsearch-title"))
		company := squash(e.ChildText("a.company-name"))
		href := e.ChildAttr("h4.jobsearch-title a", "href")
		if title == "" || company == "" || href == "" {
			return
		}
		location := squash(e.ChildText("span.location"))

		candidates = append(candidates, model.Candidate{
			Title:    title,
			Company:  company,
			Location: model.StringPtr(location),
			JobType:  model.StringPtr(model.JobTypeFullTime),
			RemoteOK: IsRemote(location),
			URL:      e.Request.AbsoluteURL(href),
			Source:   j.Name(),
		})
	})

	if err := c.Visit(j.searchURL(term)); err != nil {
		return candidates, fmt.Errorf("jobindex %q: %w", term, err)
	}
	slog.Debug("jobindex: fetched", "term", term, "count", len(candidates))
	return candidates, ctx.Err()
}
