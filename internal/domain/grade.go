package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidGrade is returned when a grade string is not one of the four
// recall qualities.
var ErrInvalidGrade = errors.New("invalid grade")

// Grade is the user-supplied recall-quality signal for one review, a strict
// total order from worst to best.
type Grade string

const (
	GradeForgot Grade = "forgot"
	GradeHard   Grade = "hard"
	GradeGood   Grade = "good"
	GradeEasy   Grade = "easy"
)

// ParseGrade converts the wire form of a grade.
func ParseGrade(s string) (Grade, error) {
	switch Grade(s) {
	case GradeForgot, GradeHard, GradeGood, GradeEasy:
		return Grade(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidGrade, s)
}

// Rating returns the FSRS rating for the grade: Forgot=1 through Easy=4.
func (g Grade) Rating() int {
	switch g {
	case GradeForgot:
		return 1
	case GradeHard:
		return 2
	case GradeGood:
		return 3
	case GradeEasy:
		return 4
	}
	return 0
}

// Valid reports whether the grade is one of the four recall qualities.
func (g Grade) Valid() bool {
	return g.Rating() != 0
}

// RequeuesCard reports whether a card graded g is shown again later in the
// same session.
func (g Grade) RequeuesCard() bool {
	return g == GradeForgot || g == GradeHard
}
