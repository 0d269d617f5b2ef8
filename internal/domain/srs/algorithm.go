// Package srs implements the FSRS spaced-repetition update function.
//
// The update is a pure function from (prior performance, grade, review time)
// to new performance. It performs no I/O and is deterministic; the golden
// tests pin its numeric behavior, since any drift silently reschedules every
// card in every collection.
package srs

import (
	"math"
	"time"

	"github.com/phrazzld/drill-api/internal/domain"
)

// initialStability returns the stability after the first review of a card.
// Worse grades start with lower stability.
func initialStability(grade domain.Grade, params *Params) float64 {
	s := params.Weights[grade.Rating()-1]
	return math.Max(s, params.MinStability)
}

// initialDifficulty returns the difficulty after the first review of a card.
// Worse grades start with higher difficulty.
func initialDifficulty(grade domain.Grade, params *Params) float64 {
	return clampDifficulty(rawInitialDifficulty(grade, params))
}

// rawInitialDifficulty is initialDifficulty before clamping. The mean
// reversion term in nextDifficulty uses the unclamped Easy value.
func rawInitialDifficulty(grade domain.Grade, params *Params) float64 {
	g := float64(grade.Rating())
	return params.Weights[4] - math.Exp(params.Weights[5]*(g-1)) + 1
}

// retrievability returns the probability of recalling a card with the given
// stability after elapsedDays without review.
func retrievability(elapsedDays, stability float64, params *Params) float64 {
	return math.Pow(1+params.Factor*elapsedDays/stability, params.Decay)
}

// nextStability returns the stability after a successful recall
// (Hard, Good, or Easy).
func nextStability(
	difficulty, stability, retr float64,
	grade domain.Grade,
	params *Params,
) float64 {
	hardPenalty := 1.0
	if grade == domain.GradeHard {
		hardPenalty = params.Weights[15]
	}
	easyBonus := 1.0
	if grade == domain.GradeEasy {
		easyBonus = params.Weights[16]
	}
	return stability * (math.Exp(params.Weights[8])*
		(11-difficulty)*
		math.Pow(stability, -params.Weights[9])*
		(math.Exp(params.Weights[10]*(1-retr))-1)*
		hardPenalty*
		easyBonus + 1)
}

// forgetStability returns the stability after a Forgot grade. The result
// shrinks multiplicatively: it is capped at the prior stability and floored
// at MinStability.
func forgetStability(difficulty, stability, retr float64, params *Params) float64 {
	s := params.Weights[11] *
		math.Pow(difficulty, -params.Weights[12]) *
		(math.Pow(stability+1, params.Weights[13]) - 1) *
		math.Exp(params.Weights[14]*(1-retr))
	return math.Max(math.Min(s, stability), params.MinStability)
}

// nextDifficulty returns the difficulty after a review. Difficulty drifts
// toward the Easy asymptote (mean reversion) and is clamped to [1, 9].
func nextDifficulty(difficulty float64, grade domain.Grade, params *Params) float64 {
	g := float64(grade.Rating())
	next := difficulty - params.Weights[6]*(g-3)*((10-difficulty)/9)
	reverted := params.Weights[7]*rawInitialDifficulty(domain.GradeEasy, params) +
		(1-params.Weights[7])*next
	return clampDifficulty(reverted)
}

func clampDifficulty(d float64) float64 {
	return math.Max(1, math.Min(9, d))
}

// interval returns the raw model interval in days for the given stability:
// the time at which retrievability decays to the target recall. At the
// default target of 0.9 this is exactly the stability.
func interval(targetRecall, stability float64, params *Params) float64 {
	return stability / params.Factor * (math.Pow(targetRecall, 1/params.Decay) - 1)
}

// intervalDays rounds the raw interval up to whole days and clamps it to
// the configured bounds.
func intervalDays(raw float64, params *Params) int {
	days := int(math.Ceil(raw))
	if days < params.MinIntervalDays {
		days = params.MinIntervalDays
	}
	if days > params.MaxIntervalDays {
		days = params.MaxIntervalDays
	}
	return days
}

// Update computes a card's performance after grading it at reviewedAt.
//
// A prior in the New state (or a zero Performance) initializes stability and
// difficulty from grade-specific constants. A Reviewed prior recomputes them
// from the elapsed whole days since the last review via the forgetting
// curve. The review count always increments, including on Forgot.
func Update(
	prior domain.Performance,
	grade domain.Grade,
	reviewedAt time.Time,
	params *Params,
) domain.ReviewedPerformance {
	today := domain.DateOf(reviewedAt)

	var stability, difficulty float64
	reviewCount := 0
	if prior.IsNew() {
		stability = initialStability(grade, params)
		difficulty = initialDifficulty(grade, params)
	} else {
		rp := prior.Reviewed
		elapsed := elapsedDays(rp.LastReviewedAt, reviewedAt)
		retr := retrievability(elapsed, rp.Stability, params)
		if grade == domain.GradeForgot {
			stability = forgetStability(rp.Difficulty, rp.Stability, retr, params)
		} else {
			stability = nextStability(rp.Difficulty, rp.Stability, retr, grade, params)
		}
		difficulty = nextDifficulty(rp.Difficulty, grade, params)
		reviewCount = rp.ReviewCount
	}

	raw := interval(params.TargetRecall, stability, params)
	days := intervalDays(raw, params)

	return domain.ReviewedPerformance{
		LastReviewedAt: reviewedAt,
		Stability:      stability,
		Difficulty:     difficulty,
		IntervalRaw:    raw,
		IntervalDays:   days,
		DueDate:        today.AddDays(days),
		ReviewCount:    reviewCount + 1,
	}
}

// elapsedDays counts whole local days between two review instants. Same-day
// reviews count as zero; the clock never runs backwards, but clamp anyway so
// retrievability stays defined.
func elapsedDays(last, now time.Time) float64 {
	days := domain.DateOf(last).DaysUntil(domain.DateOf(now))
	if days < 0 {
		days = 0
	}
	return float64(days)
}
