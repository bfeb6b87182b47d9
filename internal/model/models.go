// Package model defines shared data structures for the aggregator service.
package model

import "time"

// DefaultCurrency is applied to postings that arrive without one.
const DefaultCurrency = "DKK"

// Job type labels produced by the scrapers. The set is open: sources may
// report other values and they are stored as-is.
const (
	JobTypeFullTime  = "full-time"
	JobTypePartTime  = "part-time"
	JobTypeContract  = "contract"
	JobTypeFreelance = "freelance"
)

// Candidate is a raw posting emitted by a scraper, not yet scored or stored.
type Candidate struct {
	Title        string     `json:"title"`
	Company      string     `json:"company"`
	Location     *string    `json:"location,omitempty"`
	Description  *string    `json:"description,omitempty"`
	Requirements *string    `json:"requirements,omitempty"`
	SalaryMin    *float64   `json:"salary_min,omitempty"`
	SalaryMax    *float64   `json:"salary_max,omitempty"`
	Currency     string     `json:"currency,omitempty"`
	JobType      *string    `json:"job_type,omitempty"`
	RemoteOK     bool       `json:"remote_ok"`
	URL          string     `json:"url"`
	Source       string     `json:"source"`
	PostedDate   *time.Time `json:"posted_date,omitempty"`
}

// Posting mirrors a row of the jobs table.
// AIKeywords holds the serialized keyword list exactly as stored.
type Posting struct {
	ID             int64
	URL            string
	Title          string
	Company        string
	Location       *string
	Description    *string
	Requirements   *string
	SalaryMin      *float64
	SalaryMax      *float64
	Currency       string
	JobType        *string
	RemoteOK       bool
	Source         string
	PostedDate     *time.Time
	ScrapedDate    time.Time
	IsActive       bool
	AIKeywords     string
	RelevanceScore float64
}

// PostingView is the JSON shape returned to API clients.
type PostingView struct {
	ID             int64      `json:"id"`
	Title          string     `json:"title"`
	Company        string     `json:"company"`
	Location       *string    `json:"location"`
	Description    *string    `json:"description"`
	Requirements   *string    `json:"requirements"`
	SalaryMin      *float64   `json:"salary_min"`
	SalaryMax      *float64   `json:"salary_max"`
	Currency       string     `json:"currency"`
	JobType        *string    `json:"job_type"`
	RemoteOK       bool       `json:"remote_ok"`
	URL            string     `json:"url"`
	Source         string     `json:"source"`
	PostedDate     *time.Time `json:"posted_date"`
	ScrapedDate    time.Time  `json:"scraped_date"`
	IsActive       bool       `json:"is_active"`
	AIKeywords     []string   `json:"ai_keywords"`
	RelevanceScore float64    `json:"relevance_score"`
}

// NamedCount is one bucket of a grouped statistic.
type NamedCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// Stats is the aggregate view served by /api/jobs/stats.
type Stats struct {
	TotalJobs    int64        `json:"total_jobs"`
	ActiveJobs   int64        `json:"active_jobs"`
	JobsToday    int64        `json:"jobs_today"`
	JobsThisWeek int64        `json:"jobs_this_week"`
	TopCompanies []NamedCount `json:"top_companies"`
	TopLocations []NamedCount `json:"top_locations"`
	JobTypes     []NamedCount `json:"job_types"`
	Sources      []NamedCount `json:"sources"`
}

// EmptyStats returns a zero-valued Stats with non-nil slices so it encodes
// as empty JSON arrays.
func EmptyStats() Stats {
	return Stats{
		TopCompanies: []NamedCount{},
		TopLocations: []NamedCount{},
		JobTypes:     []NamedCount{},
		Sources:      []NamedCount{},
	}
}

// Deref returns the pointed-to string, or "" for nil.
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// StringPtr returns nil for an empty string, otherwise a pointer to s.
func StringPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
