// seed loads sample Danish AI postings through the ingestion pipeline so a
// fresh database has something to browse.
package main

import (
	"context"
	_ "embed"
	"log"
	"time"

	"gopkg.in/yaml.v3"

	"jobmate/aggregator-service/internal/config"
	"jobmate/aggregator-service/internal/ingest"
	"jobmate/aggregator-service/internal/jobs"
	"jobmate/aggregator-service/internal/model"
	"jobmate/aggregator-service/internal/store"
)

//go:embed samples.yaml
var samplesYAML []byte

type sample struct {
	Title          string  `yaml:"title"`
	Company        string  `yaml:"company"`
	Location       string  `yaml:"location"`
	Description    string  `yaml:"description"`
	Requirements   string  `yaml:"requirements"`
	SalaryMin      float64 `yaml:"salary_min"`
	SalaryMax      float64 `yaml:"salary_max"`
	JobType        string  `yaml:"job_type"`
	RemoteOK       bool    `yaml:"remote_ok"`
	URL            string  `yaml:"url"`
	Source         string  `yaml:"source"`
	PostedHoursAgo int     `yaml:"posted_hours_ago"`
}

func (s sample) candidate(now time.Time) model.Candidate {
	posted := now.Add(-time.Duration(s.PostedHoursAgo) * time.Hour)
	return model.Candidate{
		Title:        s.Title,
		Company:      s.Company,
		Location:     model.StringPtr(s.Location),
		Description:  model.StringPtr(s.Description),
		Requirements: model.StringPtr(s.Requirements),
		SalaryMin:    salary(s.SalaryMin),
		SalaryMax:    salary(s.SalaryMax),
		Currency:     model.DefaultCurrency,
		JobType:      model.StringPtr(s.JobType),
		RemoteOK:     s.RemoteOK,
		URL:          s.URL,
		Source:       s.Source,
		PostedDate:   &posted,
	}
}

// salary maps an absent (zero) amount to nil so it is stored as NULL.
func salary(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}

func loadSamples() ([]sample, error) {
	var samples []sample
	if err := yaml.Unmarshal(samplesYAML, &samples); err != nil {
		return nil, err
	}
	return samples, nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[seed] Config error: %v", err)
	}

	samples, err := loadSamples()
	if err != nil {
		log.Fatalf("[seed] samples.yaml: %v", err)
	}

	ctx := context.Background()
	st, err := store.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("[seed] Store: %v", err)
	}
	defer st.Close()

	now := time.Now().UTC()
	candidates := make([]model.Candidate, 0, len(samples))
	for _, s := range samples {
		candidates = append(candidates, s.candidate(now))
	}

	log.Printf("[seed] Adding %d sample postings…", len(candidates))
	report := ingest.NewPipeline(st).Run(ctx, candidates)
	for _, j := range report.StoredJobs {
		log.Printf("[seed] Added #%d %s at %s (score %.2f)", j.ID, j.Title, j.Company, j.Score)
	}
	log.Printf("[seed] Stored %d, already present %d, filtered %d, failed %d",
		report.Stored, report.Duplicates, report.Filtered(), report.Failed)

	stats, err := jobs.NewService(st).Stats(ctx)
	if err != nil {
		log.Printf("[seed] Stats unavailable: %v", err)
		return
	}
	log.Printf("[seed] Total %d, active %d, today %d, this week %d",
		stats.TotalJobs, stats.ActiveJobs, stats.JobsToday, stats.JobsThisWeek)
}
