package session

import (
	"time"

	"github.com/phrazzld/drill-api/internal/domain"
)

// Clock supplies the current instant and civil date. The engine and queue
// builder take a Clock so tests can pin time.
type Clock interface {
	Now() time.Time
	Today() domain.Date
}

// SystemClock is the real wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC() }

func (SystemClock) Today() domain.Date { return domain.DateOf(time.Now()) }
