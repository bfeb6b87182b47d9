package store

import (
	"encoding/json"

	"jobmate/aggregator-service/internal/model"
)

// EncodeKeywords serializes a keyword list for the ai_keywords column.
func EncodeKeywords(keywords []string) string {
	if keywords == nil {
		keywords = []string{}
	}
	b, err := json.Marshal(keywords)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// DecodeKeywords parses a stored ai_keywords value. Empty or corrupt values
// decode to an empty list; this never fails.
func DecodeKeywords(raw string) []string {
	out := []string{}
	if raw == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return []string{}
	}
	return out
}

// View converts a stored posting into its wire representation.
func View(p model.Posting) model.PostingView {
	return model.PostingView{
		ID:             p.ID,
		Title:          p.Title,
		Company:        p.Company,
		Location:       p.Location,
		Description:    p.Description,
		Requirements:   p.Requirements,
		SalaryMin:      p.SalaryMin,
		SalaryMax:      p.SalaryMax,
		Currency:       p.Currency,
		JobType:        p.JobType,
		RemoteOK:       p.RemoteOK,
		URL:            p.URL,
		Source:         p.Source,
		PostedDate:     p.PostedDate,
		ScrapedDate:    p.ScrapedDate,
		IsActive:       p.IsActive,
		AIKeywords:     DecodeKeywords(p.AIKeywords),
		RelevanceScore: p.RelevanceScore,
	}
}
