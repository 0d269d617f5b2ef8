package domain

import "time"

// Review is an immutable record of one grading event: which card, when, how
// it was graded, and the performance parameters that resulted. The ordered
// sequence of reviews in a session is both the undo log and the persistence
// payload.
type Review struct {
	Fingerprint  Fingerprint
	ReviewedAt   time.Time
	Grade        Grade
	Stability    float64
	Difficulty   float64
	IntervalRaw  float64
	IntervalDays int
	DueDate      Date
}
