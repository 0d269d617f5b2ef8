package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/store"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testFingerprint(question string) domain.Fingerprint {
	return domain.BasicContent{Question: question, Answer: "a"}.Fingerprint()
}

var seenAt = time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)

func TestInsertCardAndGetPerformance(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	fp := testFingerprint("q1")

	require.NoError(t, s.InsertCard(ctx, fp, seenAt))

	perf, err := s.GetPerformance(ctx, fp)
	require.NoError(t, err)
	assert.True(t, perf.IsNew(), "a registered but unreviewed card is New")
}

func TestInsertCardRejectsDuplicates(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	fp := testFingerprint("q1")

	require.NoError(t, s.InsertCard(ctx, fp, seenAt))
	err := s.InsertCard(ctx, fp, seenAt)
	require.ErrorIs(t, err, store.ErrCardExists)
	require.ErrorIs(t, err, store.ErrDuplicate)
}

func TestGetPerformanceNotFound(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	_, err := s.GetPerformance(context.Background(), testFingerprint("missing"))
	require.ErrorIs(t, err, store.ErrCardNotFound)
	assert.True(t, store.IsNotFoundError(err))
}

func TestCardFingerprints(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()

	fps, err := s.CardFingerprints(ctx)
	require.NoError(t, err)
	assert.Empty(t, fps)

	fp1 := testFingerprint("q1")
	fp2 := testFingerprint("q2")
	require.NoError(t, s.InsertCard(ctx, fp1, seenAt))
	require.NoError(t, s.InsertCard(ctx, fp2, seenAt))

	fps, err = s.CardFingerprints(ctx)
	require.NoError(t, err)
	assert.Len(t, fps, 2)
	assert.Contains(t, fps, fp1)
	assert.Contains(t, fps, fp2)
}

func TestDueFingerprints(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	today := domain.Date{Year: 2024, Month: time.June, Day: 10}

	fresh := testFingerprint("fresh")
	dueToday := testFingerprint("due today")
	overdue := testFingerprint("overdue")
	future := testFingerprint("future")
	for _, fp := range []domain.Fingerprint{fresh, dueToday, overdue, future} {
		require.NoError(t, s.InsertCard(ctx, fp, seenAt))
	}

	saveReviewed(t, s, dueToday, today)
	saveReviewed(t, s, overdue, today.AddDays(-5))
	saveReviewed(t, s, future, today.AddDays(5))

	due, err := s.DueFingerprints(ctx, today)
	require.NoError(t, err)
	assert.Contains(t, due, fresh, "never-reviewed cards are always due")
	assert.Contains(t, due, dueToday)
	assert.Contains(t, due, overdue)
	assert.NotContains(t, due, future)
}

func TestSaveSessionRoundTrip(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	fp := testFingerprint("q1")
	require.NoError(t, s.InsertCard(ctx, fp, seenAt))

	reviewedAt := seenAt.Add(time.Minute)
	rp := domain.ReviewedPerformance{
		LastReviewedAt: reviewedAt,
		Stability:      3.1262,
		Difficulty:     5.314577829570867,
		IntervalRaw:    3.1262,
		IntervalDays:   4,
		DueDate:        domain.DateOf(reviewedAt).AddDays(4),
		ReviewCount:    1,
	}
	reviews := []domain.Review{{
		Fingerprint:  fp,
		ReviewedAt:   reviewedAt,
		Grade:        domain.GradeGood,
		Stability:    rp.Stability,
		Difficulty:   rp.Difficulty,
		IntervalRaw:  rp.IntervalRaw,
		IntervalDays: rp.IntervalDays,
		DueDate:      rp.DueDate,
	}}
	performance := map[domain.Fingerprint]domain.Performance{
		fp: domain.ReviewedOf(rp),
	}

	require.NoError(t, s.SaveSession(ctx, seenAt, reviewedAt, reviews, performance))

	perf, err := s.GetPerformance(ctx, fp)
	require.NoError(t, err)
	require.False(t, perf.IsNew())
	got := *perf.Reviewed
	assert.True(t, got.LastReviewedAt.Equal(rp.LastReviewedAt))
	assert.InDelta(t, rp.Stability, got.Stability, 1e-12)
	assert.InDelta(t, rp.Difficulty, got.Difficulty, 1e-12)
	assert.InDelta(t, rp.IntervalRaw, got.IntervalRaw, 1e-12)
	assert.Equal(t, rp.IntervalDays, got.IntervalDays)
	assert.Equal(t, rp.DueDate, got.DueDate)
	assert.Equal(t, rp.ReviewCount, got.ReviewCount)

	var reviewCount int
	require.NoError(t, s.db.Get(&reviewCount, `SELECT COUNT(*) FROM reviews`))
	assert.Equal(t, 1, reviewCount)
	var sessionCount int
	require.NoError(t, s.db.Get(&sessionCount, `SELECT COUNT(*) FROM sessions`))
	assert.Equal(t, 1, sessionCount)
}

func TestSaveSessionSkipsUngradedCards(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	fp := testFingerprint("q1")
	require.NoError(t, s.InsertCard(ctx, fp, seenAt))

	performance := map[domain.Fingerprint]domain.Performance{
		fp: domain.NewPerformance(),
	}
	require.NoError(t, s.SaveSession(ctx, seenAt, seenAt.Add(time.Minute), nil, performance))

	perf, err := s.GetPerformance(ctx, fp)
	require.NoError(t, err)
	assert.True(t, perf.IsNew(), "an ungraded card keeps its stored state")
}

func TestSaveSessionIsAtomic(t *testing.T) {
	t.Parallel()

	s := openTestStore(t)
	ctx := context.Background()
	registered := testFingerprint("registered")
	require.NoError(t, s.InsertCard(ctx, registered, seenAt))

	// A review referencing an unregistered card violates the foreign key
	// and must roll back the whole session, including the session row.
	reviews := []domain.Review{{
		Fingerprint:  testFingerprint("never registered"),
		ReviewedAt:   seenAt,
		Grade:        domain.GradeGood,
		Stability:    1,
		Difficulty:   5,
		IntervalRaw:  1,
		IntervalDays: 1,
		DueDate:      domain.DateOf(seenAt).AddDays(1),
	}}
	err := s.SaveSession(ctx, seenAt, seenAt.Add(time.Minute), reviews, nil)
	require.Error(t, err)

	var sessionCount int
	require.NoError(t, s.db.Get(&sessionCount, `SELECT COUNT(*) FROM sessions`))
	assert.Equal(t, 0, sessionCount)
}

// saveReviewed commits a minimal session that leaves fp reviewed and due on
// the given date.
func saveReviewed(t *testing.T, s *Store, fp domain.Fingerprint, due domain.Date) {
	t.Helper()
	rp := domain.ReviewedPerformance{
		LastReviewedAt: seenAt,
		Stability:      1,
		Difficulty:     5,
		IntervalRaw:    1,
		IntervalDays:   1,
		DueDate:        due,
		ReviewCount:    1,
	}
	err := s.SaveSession(context.Background(), seenAt, seenAt.Add(time.Second), nil,
		map[domain.Fingerprint]domain.Performance{fp: domain.ReviewedOf(rp)})
	require.NoError(t, err)
}
