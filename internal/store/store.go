// Package store defines the persistence interfaces consumed by the review
// engine. Implementations live under internal/platform; the engine and the
// queue builder depend only on these interfaces.
package store

import (
	"context"
	"time"

	"github.com/phrazzld/drill-api/internal/domain"
)

// CardStore persists per-card registration and performance state.
type CardStore interface {
	// CardFingerprints returns the set of all registered card fingerprints.
	CardFingerprints(ctx context.Context) (map[domain.Fingerprint]struct{}, error)

	// InsertCard registers a new card with New performance.
	// Returns ErrCardExists if the fingerprint is already registered.
	InsertCard(ctx context.Context, fp domain.Fingerprint, seenAt time.Time) error

	// GetPerformance returns a card's stored performance state.
	// Returns ErrCardNotFound if the fingerprint is not registered.
	GetPerformance(ctx context.Context, fp domain.Fingerprint) (domain.Performance, error)

	// DueFingerprints returns the fingerprints of cards that are due on the
	// given date: never reviewed, or due on or before it.
	DueFingerprints(ctx context.Context, today domain.Date) (map[domain.Fingerprint]struct{}, error)
}

// SessionStore persists completed review sessions. SaveSession is the single
// durability boundary of the engine: the session record, its reviews, and
// the performance overwrites must commit or fail as one unit.
type SessionStore interface {
	SaveSession(
		ctx context.Context,
		startedAt, endedAt time.Time,
		reviews []domain.Review,
		performance map[domain.Fingerprint]domain.Performance,
	) error
}

// Store is the full persistence surface used by a review session.
type Store interface {
	CardStore
	SessionStore
}
