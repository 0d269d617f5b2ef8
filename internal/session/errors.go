package session

import "errors"

// Programming-error class: these indicate the queue builder and the state
// machine are out of sync. They are surfaced to the caller and logged, never
// silently swallowed.
var (
	// ErrCacheMiss is returned when a fingerprint is absent from the session
	// cache. Every card in the queue is seeded at session start, so a miss
	// is a bug.
	ErrCacheMiss = errors.New("fingerprint not in session cache")

	// ErrDuplicateEntry is returned when a fingerprint is seeded into the
	// session cache twice.
	ErrDuplicateEntry = errors.New("fingerprint already in session cache")

	// ErrEmptyQueue is returned when a session is created with no due cards.
	ErrEmptyQueue = errors.New("session queue is empty")
)
