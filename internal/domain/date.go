package domain

import (
	"fmt"
	"time"
)

// dateLayout is the storage format for civil dates.
const dateLayout = "2006-01-02"

// Date is a civil date with no time-of-day or timezone component. Due dates
// are civil dates: a card is due on a day, not at an instant.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf returns the civil date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses the storage form "2006-01-02".
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// AddDays returns the date n days later, normalized.
func (d Date) AddDays(n int) Date {
	return DateOf(d.time().AddDate(0, 0, n))
}

// DaysUntil returns the number of whole days from d to other. Negative if
// other is earlier.
func (d Date) DaysUntil(other Date) int {
	return int(other.time().Sub(d.time()) / (24 * time.Hour))
}

// After reports whether d is strictly after other.
func (d Date) After(other Date) bool {
	return d.time().After(other.time())
}

// String returns the storage form "2006-01-02".
func (d Date) String() string {
	return d.time().Format(dateLayout)
}

func (d Date) time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}
