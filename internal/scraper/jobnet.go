package scraper

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/gocolly/colly/v2"

	"jobmate/aggregator-service/internal/model"
)

const (
	jobnetBaseURL = "https://job.jobnet.dk"
	ctxJobURL     = "jobURL"
)

// Jobnet scrapes the jobnet.dk search page and each posting's detail page
// for its description.
type Jobnet struct {
	BaseURL string
	Delay   time.Duration
	// now is used to resolve relative posted dates.
	now func() time.Time
}

// NewJobnet returns a Jobnet source against the public site.
func NewJobnet() *Jobnet {
	return &Jobnet{BaseURL: jobnetBaseURL, Delay: 2 * time.Second, now: time.Now}
}

func (j *Jobnet) Name() string { return "jobnet" }

func (j *Jobnet) searchURL(term string) string {
	params := url.Values{}
	params.Set("SearchString", term)
	params.Set("Area", "100") // all of Denmark
	params.Set("Country", "DK")
	params.Set("SortBy", "CreatedDate")
	params.Set("SortOrder", "Descending")
	params.Set("PageSize", "20")
	return j.BaseURL + "/CV/FindWork/Search?" + params.Encode()
}

func (j *Jobnet) Fetch(ctx context.Context, term string) ([]model.Candidate, error) {
	now := time.Now
	if j.now != nil {
		now = j.now
	}

	c := newCollector(ctx, j.Delay)
	detail := c.Clone()
	abortWhenDone(ctx, detail)
	descriptions := make(map[string]string)
	detail.OnHTML("div.job-description", func(e *colly.HTMLElement) {
		descriptions[e.Request.Ctx.Get(ctxJobURL)] = squash(e.Text)
	})

	candidates := make([]model.Candidate, 0)
	c.OnHTML("div.job-listing-item", func(e *colly.HTMLElement) {
		title := squash(e.ChildText("h2.job-title"))
		company := squash(e.ChildText("span.company-name"))
		href := e.ChildAttr("h2.job-title a", "href")
		if title == "" || company == "" || href == "" {
			return
		}
		jobURL := e.Request.AbsoluteURL(href)

		reqCtx := colly.NewContext()
		reqCtx.Put(ctxJobURL, jobURL)
		if err := detail.Request("GET", jobURL, nil, reqCtx, nil); err != nil && !errors.Is(err, colly.ErrAlreadyVisited) {
			slog.Warn("jobnet: detail page failed", "url", jobURL, "err", err)
		}
		description := descriptions[jobURL]
		salaryMin, salaryMax := ExtractSalary(description)

		candidates = append(candidates, model.Candidate{
			Title:       title,
			Company:     company,
			Location:    model.StringPtr(squash(e.ChildText("span.location"))),
			Description: model.StringPtr(description),
			SalaryMin:   salaryMin,
			SalaryMax:   salaryMax,
			JobType:     model.StringPtr(ExtractJobType(description)),
			RemoteOK:    IsRemote(description),
			URL:         jobURL,
			Source:      j.Name(),
			PostedDate:  ParsePostedDate(e.ChildText("span.posted-date"), now().UTC()),
		})
	})

	if err := c.Visit(j.searchURL(term)); err != nil {
		return candidates, fmt.Errorf("jobnet %q: %w", term, err)
	}
	slog.Debug("jobnet: fetched", "term", term, "count", len(candidates))
	return candidates, ctx.Err()
}
