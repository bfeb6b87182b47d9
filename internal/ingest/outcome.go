package ingest

// Outcome is the terminal state of one ingestion decision.
//
//	candidate ──► lookup ──found──► SkippedDuplicate
//	                 │
//	                 ▼
//	         score + locale ──reject──► SkippedLowRelevance
//	                 │
//	                 ▼
//	              insert ──► Stored
//
// Any store error on the way ends in SkippedFailure.
type Outcome string

const (
	Stored              Outcome = "stored"
	SkippedDuplicate    Outcome = "skipped_duplicate"
	SkippedLowRelevance Outcome = "skipped_low_relevance"
	SkippedFailure      Outcome = "skipped_failure"
)

// Reasons attached to SkippedLowRelevance results.
const (
	ReasonLowRelevance = "low_relevance"
	ReasonNotLocal     = "not_local"
)

// IsSkipped reports whether o leaves the store untouched.
func (o Outcome) IsSkipped() bool { return o != Stored }
