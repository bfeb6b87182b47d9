package scraper

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"jobmate/aggregator-service/internal/model"
)

// ─── Salary ──────────────────────────────────────────────────────────────────

// Amounts use "." or "," as thousands separator ("45.000") and an optional
// "k" multiplier ("45k kr").
const amount = `(\d{1,3}(?:[.,]\d{3})+|\d+)\s*(k|tusind|thousand)?`

// currency must end the word: "3 krav" or "2 kræfter" are not salaries. RE2's
// \b is ASCII-only and would accept "kr" before "æ", so the next rune is
// matched explicitly.
const currency = `\s*(?:kr\.?|dkk|kroner)(?:[^\p{L}\p{N}]|$)`

var (
	salaryRangeRe  = regexp.MustCompile(amount + `\s*(?:-|–|til|to)\s*` + amount + currency)
	salarySingleRe = regexp.MustCompile(amount + currency)
)

// ExtractSalary finds a Danish salary ("45.000 - 55.000 kr", "600k DKK",
// "50000 kroner") in text. A single amount is returned as both bounds.
func ExtractSalary(text string) (min, max *float64) {
	lower := strings.ToLower(text)
	if m := salaryRangeRe.FindStringSubmatch(lower); m != nil {
		lo, okLo := parseAmount(m[1], m[2])
		hi, okHi := parseAmount(m[3], m[4])
		if okLo && okHi {
			if hi < lo {
				lo, hi = hi, lo
			}
			return &lo, &hi
		}
	}
	if m := salarySingleRe.FindStringSubmatch(lower); m != nil {
		if v, ok := parseAmount(m[1], m[2]); ok {
			lo, hi := v, v
			return &lo, &hi
		}
	}
	return nil, nil
}

func parseAmount(digits, multiplier string) (float64, bool) {
	digits = strings.NewReplacer(".", "", ",", "").Replace(digits)
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return 0, false
	}
	if multiplier != "" {
		v *= 1000
	}
	return v, true
}

// ─── Job type ────────────────────────────────────────────────────────────────

var jobTypeTerms = []struct {
	jobType string
	terms   []string
}{
	{model.JobTypeFreelance, []string{"freelance", "consultant", "contractor"}},
	{model.JobTypePartTime, []string{"part-time", "part time", "deltid"}},
	{model.JobTypeFullTime, []string{"full-time", "full time", "fuldtid"}},
	{model.JobTypeContract, []string{"contract", "kontrakt"}},
}

// ExtractJobType classifies text into one of the model.JobType* labels.
// The first matching group wins; text matching nothing is full-time. Blank
// text returns "" so the job type is stored as unknown.
func ExtractJobType(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	lower := strings.ToLower(text)
	for _, g := range jobTypeTerms {
		for _, term := range g.terms {
			if strings.Contains(lower, term) {
				return g.jobType
			}
		}
	}
	return model.JobTypeFullTime
}

// ─── Posted date ─────────────────────────────────────────────────────────────

var firstNumberRe = regexp.MustCompile(`\d+`)

// ParsePostedDate turns relative Danish or English dates ("i dag",
// "yesterday", "3 dage siden", "5 hours ago", "2 timer siden") into a time
// relative to now. Unknown formats return nil.
func ParsePostedDate(text string, now time.Time) *time.Time {
	lower := strings.ToLower(strings.TrimSpace(text))
	var t time.Time

	switch {
	case lower == "":
		return nil
	case strings.Contains(lower, "i dag"), strings.Contains(lower, "today"):
		t = now
	case strings.Contains(lower, "i går"), strings.Contains(lower, "yesterday"):
		t = now.AddDate(0, 0, -1)
	case strings.Contains(lower, "dage siden"), strings.Contains(lower, "days ago"):
		n, ok := firstNumber(lower)
		if !ok {
			return nil
		}
		t = now.AddDate(0, 0, -n)
	case strings.Contains(lower, "timer siden"), strings.Contains(lower, "hours ago"):
		n, ok := firstNumber(lower)
		if !ok {
			return nil
		}
		t = now.Add(-time.Duration(n) * time.Hour)
	default:
		return nil
	}
	return &t
}

func firstNumber(s string) (int, bool) {
	m := firstNumberRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	return n, err == nil
}

// ─── Remote ──────────────────────────────────────────────────────────────────

var remoteTerms = []string{"remote", "hjemme", "hybrid"}

// IsRemote reports whether text mentions remote or hybrid work.
func IsRemote(text string) bool {
	lower := strings.ToLower(text)
	for _, term := range remoteTerms {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
