package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobmate/aggregator-service/internal/relevance"
)

var seedNow = time.Date(2026, 4, 20, 15, 0, 0, 0, time.UTC)

func TestSample_MissingSalaryIsNil(t *testing.T) {
	c := sample{Title: "AI Trainer", Company: "Netcompany", URL: "https://jobs.dk/1"}.candidate(seedNow)

	assert.Nil(t, c.SalaryMin)
	assert.Nil(t, c.SalaryMax)
	assert.Nil(t, c.Location)
	assert.Nil(t, c.JobType)
}

func TestSample_CarriesSalaryAndPostedDate(t *testing.T) {
	c := sample{SalaryMin: 600000, SalaryMax: 780000, PostedHoursAgo: 8}.candidate(seedNow)

	require.NotNil(t, c.SalaryMin)
	require.NotNil(t, c.SalaryMax)
	assert.Equal(t, 600000.0, *c.SalaryMin)
	assert.Equal(t, 780000.0, *c.SalaryMax)
	require.NotNil(t, c.PostedDate)
	assert.Equal(t, seedNow.Add(-8*time.Hour), *c.PostedDate)
}

func TestLoadSamples_AllPassTheFilters(t *testing.T) {
	samples, err := loadSamples()
	require.NoError(t, err)
	require.NotEmpty(t, samples)

	for _, s := range samples {
		score, _ := relevance.Score(s.Title, s.Description, s.Requirements)
		assert.True(t, relevance.IsRelevant(score), s.Title)
		assert.True(t, relevance.IsLocal(s.Location, s.Company, s.Description), s.Title)
		assert.NotEmpty(t, s.URL, s.Title)
	}
}
