package domain

import (
	"errors"
	"time"
)

// Performance validation errors.
var (
	ErrNonPositiveStability = errors.New("stability must be positive")
	ErrDifficultyOutOfRange = errors.New("difficulty must be in [1, 9]")
	ErrNegativeInterval     = errors.New("interval cannot be negative")
	ErrZeroReviewCount      = errors.New("reviewed performance must have review count >= 1")
)

// Performance is a card's memory-model state: either the card has never been
// reviewed, or it carries FSRS parameters from its last review. The zero
// value is the New state.
type Performance struct {
	// Reviewed is nil for a card that has never been graded.
	Reviewed *ReviewedPerformance
}

// NewPerformance returns the state of a never-reviewed card.
func NewPerformance() Performance {
	return Performance{}
}

// ReviewedOf wraps reviewed-state parameters into a Performance.
func ReviewedOf(rp ReviewedPerformance) Performance {
	return Performance{Reviewed: &rp}
}

// IsNew reports whether the card has never been reviewed.
func (p Performance) IsNew() bool {
	return p.Reviewed == nil
}

// ReviewedPerformance carries the FSRS parameters of a card that has been
// reviewed at least once.
type ReviewedPerformance struct {
	LastReviewedAt time.Time
	// Stability estimates days until recall probability decays to the
	// target threshold. Always positive.
	Stability float64
	// Difficulty estimates inherent recall difficulty, in [1, 9].
	Difficulty float64
	// IntervalRaw is the model interval before rounding and clamping.
	IntervalRaw float64
	// IntervalDays is ceil(IntervalRaw) clamped to the configured bounds.
	IntervalDays int
	DueDate      Date
	ReviewCount  int
}

// Validate checks the model invariants.
func (rp ReviewedPerformance) Validate() error {
	if rp.Stability <= 0 {
		return ErrNonPositiveStability
	}
	if rp.Difficulty < 1 || rp.Difficulty > 9 {
		return ErrDifficultyOutOfRange
	}
	if rp.IntervalRaw < 0 || rp.IntervalDays < 0 {
		return ErrNegativeInterval
	}
	if rp.ReviewCount < 1 {
		return ErrZeroReviewCount
	}
	return nil
}
