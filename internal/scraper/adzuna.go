package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"jobmate/aggregator-service/internal/model"
	"jobmate/aggregator-service/internal/relevance"
)

const (
	adzunaBaseURL  = "https://api.adzuna.com/v1/api/jobs"
	adzunaPageSize = 50
	adzunaMaxPages = 3 // max 150 results per term
	adzunaWhere    = "Denmark"
)

// adzunaCurrency maps an Adzuna country code to the currency of its salaries.
var adzunaCurrency = map[string]string{
	"at": "EUR", "de": "EUR", "fr": "EUR", "nl": "EUR", "be": "EUR", "es": "EUR", "it": "EUR",
	"gb": "GBP", "us": "USD", "pl": "PLN", "ch": "CHF",
}

// Adzuna fetches job offers from the Adzuna public API.
//
// Adzuna has no Danish index. The search runs on Country with a "Denmark"
// location and is best-effort: most hits are foreign and are dropped here
// by the locale classifier, so an empty result is normal.
// If AppID or AppKey is empty, Fetch returns (nil, nil).
type Adzuna struct {
	AppID   string
	AppKey  string
	Country string // "gb", "de", …
	BaseURL string
	client  *http.Client
}

// NewAdzuna constructs a source with a shared HTTP client.
func NewAdzuna(appID, appKey, country string) *Adzuna {
	return &Adzuna{
		AppID:   appID,
		AppKey:  appKey,
		Country: country,
		BaseURL: adzunaBaseURL,
		client:  &http.Client{Timeout: httpTimeout},
	}
}

func (a *Adzuna) Name() string { return "adzuna" }

// Enabled reports whether credentials are configured.
func (a *Adzuna) Enabled() bool { return a.AppID != "" && a.AppKey != "" }

type adzunaPage struct {
	Count   int         `json:"count"`
	Results []adzunaJob `json:"results"`
}

type adzunaJob struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Company      adzunaName `json:"company"`
	Location     adzunaName `json:"location"`
	SalaryMin    float64    `json:"salary_min"`
	SalaryMax    float64    `json:"salary_max"`
	RedirectURL  string     `json:"redirect_url"`
	Created      string     `json:"created"`
	ContractTime string     `json:"contract_time"`
	ContractType string     `json:"contract_type"`
}

type adzunaName struct {
	DisplayName string `json:"display_name"`
}

// Fetch pages through the results for term until the reported total is
// covered, a page comes back short, or adzunaMaxPages is reached. Only
// postings that look Danish are returned.
func (a *Adzuna) Fetch(ctx context.Context, term string) ([]model.Candidate, error) {
	if !a.Enabled() {
		slog.Debug("adzuna: ADZUNA_APP_ID / ADZUNA_APP_KEY not set, skipping")
		return nil, nil
	}

	var (
		out     []model.Candidate
		seen    int
		foreign int
	)
	for page := 1; page <= adzunaMaxPages; page++ {
		p, err := a.page(ctx, term, page)
		if err != nil {
			return out, fmt.Errorf("adzuna %q page %d: %w", term, page, err)
		}
		for _, job := range p.Results {
			c, ok := job.candidate(a.Name(), adzunaCurrency[a.Country])
			if !ok {
				continue
			}
			if !relevance.IsLocal(model.Deref(c.Location), c.Company, model.Deref(c.Description)) {
				foreign++
				continue
			}
			out = append(out, c)
		}
		seen += len(p.Results)
		if len(p.Results) < adzunaPageSize || seen >= p.Count {
			break
		}
	}

	slog.Debug("adzuna: fetched", "term", term, "seen", seen, "kept", len(out), "foreign", foreign)
	return out, nil
}

func (a *Adzuna) page(ctx context.Context, term string, page int) (adzunaPage, error) {
	var p adzunaPage

	u, err := url.Parse(a.BaseURL)
	if err != nil {
		return p, fmt.Errorf("base url: %w", err)
	}
	u = u.JoinPath(a.Country, "search", strconv.Itoa(page))
	u.RawQuery = url.Values{
		"app_id":           {a.AppID},
		"app_key":          {a.AppKey},
		"results_per_page": {strconv.Itoa(adzunaPageSize)},
		"what":             {term},
		"where":            {adzunaWhere},
		"sort_by":          {"date"},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return p, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return p, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		excerpt, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return p, fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(excerpt)))
	}
	if err := json.NewDecoder(resp.Body).Decode(&p); err != nil {
		return p, fmt.Errorf("decode: %w", err)
	}
	return p, nil
}

// candidate converts a result. Results without a title, company or link
// cannot be stored and report false.
func (j adzunaJob) candidate(source, cur string) (model.Candidate, bool) {
	title := squash(j.Title)
	company := squash(j.Company.DisplayName)
	if title == "" || company == "" || j.RedirectURL == "" {
		return model.Candidate{}, false
	}
	return model.Candidate{
		Title:       title,
		Company:     company,
		Location:    model.StringPtr(squash(j.Location.DisplayName)),
		Description: model.StringPtr(squash(j.Description)),
		SalaryMin:   positive(j.SalaryMin),
		SalaryMax:   positive(j.SalaryMax),
		Currency:    cur,
		JobType:     model.StringPtr(adzunaJobType(j.ContractTime, j.ContractType)),
		RemoteOK:    IsRemote(title + " " + j.Description),
		URL:         j.RedirectURL,
		Source:      source,
		PostedDate:  parseCreated(j.Created),
	}, true
}

func adzunaJobType(contractTime, contractType string) string {
	switch {
	case contractType == "contract":
		return model.JobTypeContract
	case contractTime == "part_time":
		return model.JobTypePartTime
	}
	return model.JobTypeFullTime
}

func positive(f float64) *float64 {
	if f <= 0 {
		return nil
	}
	return &f
}

func parseCreated(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil
	}
	t = t.UTC()
	return &t
}
