// Package sqlite implements the store interfaces over a single local SQLite
// file kept next to the deck directory.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/store"
)

// timestampLayout is the storage format for instants: RFC 3339 in UTC.
const timestampLayout = time.RFC3339Nano

// Store is a SQLite-backed implementation of store.Store.
type Store struct {
	db *sqlx.DB
}

// Compile-time interface check.
var _ store.Store = (*Store)(nil)

// Open opens (creating if necessary) the database at path and applies
// pending schema migrations. Use ":memory:" for an ephemeral store.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sqlx.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database %q: %w", path, err)
	}
	// SQLite handles one writer at a time; a larger pool just trades
	// lock errors for queueing.
	db.SetMaxOpenConns(1)
	if err := migrate(ctx, db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the underlying connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// cardRow mirrors the cards table. Performance columns are NULL until the
// card's first review is committed.
type cardRow struct {
	CardHash       string          `db:"card_hash"`
	AddedAt        string          `db:"added_at"`
	LastReviewedAt sql.NullString  `db:"last_reviewed_at"`
	Stability      sql.NullFloat64 `db:"stability"`
	Difficulty     sql.NullFloat64 `db:"difficulty"`
	IntervalRaw    sql.NullFloat64 `db:"interval_raw"`
	IntervalDays   sql.NullInt64   `db:"interval_days"`
	DueDate        sql.NullString  `db:"due_date"`
	ReviewCount    int             `db:"review_count"`
}

// CardFingerprints implements store.CardStore.
func (s *Store) CardFingerprints(ctx context.Context) (map[domain.Fingerprint]struct{}, error) {
	var hashes []string
	if err := s.db.SelectContext(ctx, &hashes, `SELECT card_hash FROM cards`); err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	fps := make(map[domain.Fingerprint]struct{}, len(hashes))
	for _, h := range hashes {
		fp, err := domain.ParseFingerprint(h)
		if err != nil {
			return nil, fmt.Errorf("corrupt card row: %w", err)
		}
		fps[fp] = struct{}{}
	}
	return fps, nil
}

// InsertCard implements store.CardStore.
func (s *Store) InsertCard(ctx context.Context, fp domain.Fingerprint, seenAt time.Time) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cards (card_hash, added_at, review_count) VALUES (?, ?, 0)`,
		fp.String(), seenAt.UTC().Format(timestampLayout))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %s", store.ErrCardExists, fp)
		}
		return fmt.Errorf("failed to insert card: %w", err)
	}
	return nil
}

// GetPerformance implements store.CardStore.
func (s *Store) GetPerformance(ctx context.Context, fp domain.Fingerprint) (domain.Performance, error) {
	var row cardRow
	err := s.db.GetContext(ctx, &row,
		`SELECT * FROM cards WHERE card_hash = ?`, fp.String())
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Performance{}, fmt.Errorf("%w: %s", store.ErrCardNotFound, fp)
	}
	if err != nil {
		return domain.Performance{}, fmt.Errorf("failed to load card: %w", err)
	}
	return row.performance()
}

func (r cardRow) performance() (domain.Performance, error) {
	if !r.LastReviewedAt.Valid || !r.Stability.Valid || !r.Difficulty.Valid || !r.DueDate.Valid {
		return domain.NewPerformance(), nil
	}
	lastReviewedAt, err := time.Parse(timestampLayout, r.LastReviewedAt.String)
	if err != nil {
		return domain.Performance{}, fmt.Errorf("corrupt card row: %w", err)
	}
	dueDate, err := domain.ParseDate(r.DueDate.String)
	if err != nil {
		return domain.Performance{}, fmt.Errorf("corrupt card row: %w", err)
	}
	return domain.ReviewedOf(domain.ReviewedPerformance{
		LastReviewedAt: lastReviewedAt,
		Stability:      r.Stability.Float64,
		Difficulty:     r.Difficulty.Float64,
		IntervalRaw:    r.IntervalRaw.Float64,
		IntervalDays:   int(r.IntervalDays.Int64),
		DueDate:        dueDate,
		ReviewCount:    r.ReviewCount,
	}), nil
}

// DueFingerprints implements store.CardStore. A card is due if it has never
// been reviewed or its due date is on or before today.
func (s *Store) DueFingerprints(ctx context.Context, today domain.Date) (map[domain.Fingerprint]struct{}, error) {
	var hashes []string
	err := s.db.SelectContext(ctx, &hashes,
		`SELECT card_hash FROM cards WHERE due_date IS NULL OR due_date <= ?`,
		today.String())
	if err != nil {
		return nil, fmt.Errorf("failed to find due cards: %w", err)
	}
	fps := make(map[domain.Fingerprint]struct{}, len(hashes))
	for _, h := range hashes {
		fp, err := domain.ParseFingerprint(h)
		if err != nil {
			return nil, fmt.Errorf("corrupt card row: %w", err)
		}
		fps[fp] = struct{}{}
	}
	return fps, nil
}

// SaveSession implements store.SessionStore. The session record, its
// reviews, and the performance overwrites commit in a single transaction:
// this is the engine's durability boundary.
func (s *Store) SaveSession(
	ctx context.Context,
	startedAt, endedAt time.Time,
	reviews []domain.Review,
	performance map[domain.Fingerprint]domain.Performance,
) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var sessionID int64
	err = tx.GetContext(ctx, &sessionID,
		`INSERT INTO sessions (started_at, ended_at) VALUES (?, ?) RETURNING session_id`,
		startedAt.UTC().Format(timestampLayout),
		endedAt.UTC().Format(timestampLayout))
	if err != nil {
		return fmt.Errorf("failed to insert session: %w", err)
	}

	for _, review := range reviews {
		_, err = tx.ExecContext(ctx,
			`INSERT INTO reviews
			   (session_id, card_hash, reviewed_at, grade, stability,
			    difficulty, interval_raw, interval_days, due_date)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			sessionID,
			review.Fingerprint.String(),
			review.ReviewedAt.UTC().Format(timestampLayout),
			string(review.Grade),
			review.Stability,
			review.Difficulty,
			review.IntervalRaw,
			review.IntervalDays,
			review.DueDate.String())
		if err != nil {
			return fmt.Errorf("failed to insert review: %w", err)
		}
	}

	for fp, perf := range performance {
		if perf.IsNew() {
			// A card that was due but never graded this session keeps its
			// stored state.
			continue
		}
		rp := perf.Reviewed
		_, err = tx.ExecContext(ctx,
			`UPDATE cards
			    SET last_reviewed_at = ?, stability = ?, difficulty = ?,
			        interval_raw = ?, interval_days = ?, due_date = ?,
			        review_count = ?
			  WHERE card_hash = ?`,
			rp.LastReviewedAt.UTC().Format(timestampLayout),
			rp.Stability,
			rp.Difficulty,
			rp.IntervalRaw,
			rp.IntervalDays,
			rp.DueDate.String(),
			rp.ReviewCount,
			fp.String())
		if err != nil {
			return fmt.Errorf("failed to update card performance: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit session: %w", err)
	}
	return nil
}

// isUniqueViolation detects a primary-key collision without depending on
// the driver's error type.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
