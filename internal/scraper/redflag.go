package scraper

import (
	"strings"

	"jobmate/aggregator-service/internal/model"
)

// ContainsRedFlag returns true if any red flag term appears (case-insensitive)
// in the candidate's title, company or description.
//
// The collector drops flagged candidates before they reach ingestion.
func ContainsRedFlag(c model.Candidate, redFlags []string) bool {
	if len(redFlags) == 0 {
		return false
	}
	combined := strings.ToLower(c.Title + " " + c.Company + " " + model.Deref(c.Description))
	for _, flag := range redFlags {
		flag = strings.TrimSpace(flag)
		if flag == "" {
			continue
		}
		if strings.Contains(combined, strings.ToLower(flag)) {
			return true
		}
	}
	return false
}
