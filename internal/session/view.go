package session

import (
	"time"

	"github.com/phrazzld/drill-api/internal/domain"
)

// View is a read-only snapshot of the session for a UI layer. Exactly one of
// Card/Summary is set: Card while the session is active, Summary once it is
// finished.
type View struct {
	Finished bool
	Revealed bool
	// Done and Total are the session progress in cards.
	Done  int
	Total int
	// Card is the head of the queue while the session is active.
	Card *domain.Card
	// Summary describes a finished session.
	Summary *Summary
}

// Summary describes a finished session.
type Summary struct {
	Reviewed   int
	StartedAt  time.Time
	FinishedAt time.Time
	Duration   time.Duration
}

// CurrentView snapshots the session under the engine lock.
func (e *Engine) CurrentView() View {
	e.mu.Lock()
	defer e.mu.Unlock()

	done := e.totalCards - len(e.queue)
	if e.finishedAt != nil {
		return View{
			Finished: true,
			Done:     done,
			Total:    e.totalCards,
			Summary: &Summary{
				Reviewed:   done,
				StartedAt:  e.startedAt,
				FinishedAt: *e.finishedAt,
				Duration:   e.finishedAt.Sub(e.startedAt),
			},
		}
	}

	card := e.queue[0]
	return View{
		Revealed: e.reveal,
		Done:     done,
		Total:    e.totalCards,
		Card:     &card,
	}
}
