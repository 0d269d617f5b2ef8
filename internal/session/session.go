// Package session implements the review-session engine: the due-card queue
// builder, the in-session performance cache, and the state machine driving
// Reveal/Grade/Undo/End transitions with an append-only undo log.
//
// Nothing touches durable storage between session start and the flush at
// session end, so killing the process mid-session discards the session
// cleanly and never corrupts stored card state.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/domain/srs"
	"github.com/phrazzld/drill-api/internal/store"
)

// ActionKind enumerates the four session transitions.
type ActionKind string

const (
	ActionReveal ActionKind = "reveal"
	ActionGrade  ActionKind = "grade"
	ActionUndo   ActionKind = "undo"
	ActionEnd    ActionKind = "end"
)

// Action is one dispatch request. Grade is consulted only when Kind is
// ActionGrade.
type Action struct {
	Kind  ActionKind
	Grade domain.Grade
}

// review pairs the persisted record with the card it graded, so Undo can
// reconstruct the card's queue placement from the log alone.
type review struct {
	card   domain.Card
	record domain.Review
}

// Engine is the session state machine. One exclusive lock guards every
// transition and every view; no operation suspends while holding it, so the
// engine is effectively single-threaded even under a concurrent server.
type Engine struct {
	mu sync.Mutex

	store  store.Store
	params *srs.Params
	clock  Clock
	logger *slog.Logger

	totalCards int
	startedAt  time.Time
	finishedAt *time.Time
	reveal     bool
	queue      []domain.Card
	reviews    []review
	cache      *Cache

	// pending holds the drained cache between a failed flush and its retry.
	pending map[domain.Fingerprint]domain.Performance
	flushed bool
}

// Config carries the engine's collaborators.
type Config struct {
	Store  store.Store
	Params *srs.Params
	Clock  Clock
	Logger *slog.Logger
}

// NewEngine starts a session over the built queue, seeding the cache with
// each card's stored performance. The queue must be non-empty and free of
// duplicate fingerprints.
func NewEngine(ctx context.Context, queue []domain.Card, cfg Config) (*Engine, error) {
	if cfg.Store == nil {
		// ALLOW-PANIC: constructor enforcing required dependency
		panic("store cannot be nil for session engine")
	}
	if len(queue) == 0 {
		return nil, ErrEmptyQueue
	}
	if cfg.Params == nil {
		cfg.Params = srs.NewDefaultParams()
	}
	if cfg.Clock == nil {
		cfg.Clock = SystemClock{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(
		slog.String("component", "session_engine"),
		slog.String("session_id", uuid.NewString()))

	cache := NewCache()
	for _, card := range queue {
		perf, err := cfg.Store.GetPerformance(ctx, card.Fingerprint())
		if err != nil {
			return nil, fmt.Errorf("failed to seed session cache: %w", err)
		}
		if err := cache.Insert(card.Fingerprint(), perf); err != nil {
			return nil, err
		}
	}

	return &Engine{
		store:      cfg.Store,
		params:     cfg.Params,
		clock:      cfg.Clock,
		logger:     logger,
		totalCards: len(queue),
		startedAt:  cfg.Clock.Now(),
		queue:      queue,
		cache:      cache,
	}, nil
}

// Dispatch is the sole mutation entry point. Transitions whose preconditions
// are not met (revealing twice, grading face-down, undoing an empty log,
// ending twice) are logged no-ops, so client double-submission cannot
// corrupt state. Collaborator failures during the flush are returned.
func (e *Engine) Dispatch(ctx context.Context, action Action) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch action.Kind {
	case ActionReveal:
		e.doReveal()
		return nil
	case ActionGrade:
		if !action.Grade.Valid() {
			return fmt.Errorf("%w: %q", domain.ErrInvalidGrade, action.Grade)
		}
		return e.doGrade(ctx, action.Grade)
	case ActionUndo:
		e.doUndo()
		return nil
	case ActionEnd:
		return e.doEnd(ctx)
	default:
		return fmt.Errorf("unknown action %q", action.Kind)
	}
}

func (e *Engine) doReveal() {
	if e.finishedAt != nil {
		e.logger.Debug("reveal ignored: session finished")
		return
	}
	if e.reveal {
		e.logger.Debug("reveal ignored: already revealed")
		return
	}
	e.reveal = true
}

func (e *Engine) doGrade(ctx context.Context, grade domain.Grade) error {
	if e.finishedAt != nil {
		e.logger.Debug("grade ignored: session finished", slog.String("grade", string(grade)))
		return nil
	}
	if !e.reveal {
		e.logger.Debug("grade ignored: answer not revealed", slog.String("grade", string(grade)))
		return nil
	}

	now := e.clock.Now()
	card := e.queue[0]
	e.queue = e.queue[1:]
	fp := card.Fingerprint()

	prior, err := e.cache.Get(fp)
	if err != nil {
		// Queue and cache are out of sync; a bug, not a user error.
		e.queue = append([]domain.Card{card}, e.queue...)
		e.logger.Error("grade failed", slog.String("error", err.Error()))
		return err
	}

	next := srs.Update(prior, grade, now, e.params)
	if err := e.cache.Update(fp, next); err != nil {
		e.queue = append([]domain.Card{card}, e.queue...)
		e.logger.Error("grade failed", slog.String("error", err.Error()))
		return err
	}

	e.reviews = append(e.reviews, review{
		card: card,
		record: domain.Review{
			Fingerprint:  fp,
			ReviewedAt:   now,
			Grade:        grade,
			Stability:    next.Stability,
			Difficulty:   next.Difficulty,
			IntervalRaw:  next.IntervalRaw,
			IntervalDays: next.IntervalDays,
			DueDate:      next.DueDate,
		},
	})

	// Forgotten and hard cards come around again this session.
	if grade.RequeuesCard() {
		e.queue = append(e.queue, card)
	}

	e.reveal = false
	e.logger.Debug("card graded",
		slog.String("fingerprint", fp.String()),
		slog.String("grade", string(grade)),
		slog.Int("remaining", len(e.queue)))

	if len(e.queue) == 0 {
		return e.finish(ctx)
	}
	return nil
}

func (e *Engine) doUndo() {
	if len(e.reviews) == 0 {
		e.logger.Debug("undo ignored: no reviews")
		return
	}

	last := e.reviews[len(e.reviews)-1]
	e.reviews = e.reviews[:len(e.reviews)-1]

	// Grade pushed a tail copy for Forgot/Hard; remove it before putting
	// the card back at the head.
	if last.record.Grade.RequeuesCard() {
		e.queue = e.queue[:len(e.queue)-1]
	}
	e.queue = append([]domain.Card{last.card}, e.queue...)

	// Reopen a just-finished session. The cache row written by the undone
	// grade stays: the card is re-answered before any further flush, so the
	// next grade overwrites it.
	if e.finishedAt != nil {
		e.restorePending()
		e.finishedAt = nil
	}
	e.reveal = false
	e.logger.Debug("review undone",
		slog.String("fingerprint", last.record.Fingerprint.String()),
		slog.Int("remaining", len(e.queue)))
}

func (e *Engine) doEnd(ctx context.Context) error {
	if e.finishedAt != nil {
		if !e.flushed {
			// A previous flush failed; End again retries it.
			return e.flush(ctx, *e.finishedAt)
		}
		e.logger.Debug("end ignored: session finished")
		return nil
	}
	return e.finish(ctx)
}

// finish transitions to Finished and performs the flush: the session record
// with its ordered reviews, plus the performance overwrite for every cached
// card, committed as one unit. A flush failure leaves the session Finished
// and storage untouched; the error is the caller's cue to retry End.
func (e *Engine) finish(ctx context.Context) error {
	now := e.clock.Now()
	e.finishedAt = &now
	e.reveal = false
	return e.flush(ctx, now)
}

func (e *Engine) flush(ctx context.Context, endedAt time.Time) error {
	if e.pending == nil {
		e.pending = e.cache.Drain()
	}
	records := make([]domain.Review, len(e.reviews))
	for i, r := range e.reviews {
		records[i] = r.record
	}
	if err := e.store.SaveSession(ctx, e.startedAt, endedAt, records, e.pending); err != nil {
		e.logger.Error("session flush failed", slog.String("error", err.Error()))
		return fmt.Errorf("failed to save session: %w", err)
	}
	e.flushed = true
	e.logger.Info("session saved",
		slog.Int("reviews", len(records)),
		slog.Int("cards", len(e.pending)))
	return nil
}

// restorePending puts a drained cache back, for Undo reopening a finished
// session.
func (e *Engine) restorePending() {
	if e.pending == nil {
		return
	}
	for fp, perf := range e.pending {
		e.cache.changes[fp] = perf
	}
	e.pending = nil
	e.flushed = false
}
