package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/drill-api/internal/domain"
)

func fingerprintFor(t *testing.T, question string) domain.Fingerprint {
	t.Helper()
	return domain.BasicContent{Question: question, Answer: "a"}.Fingerprint()
}

func TestCacheInsertAndGet(t *testing.T) {
	t.Parallel()

	cache := NewCache()
	fp := fingerprintFor(t, "q1")

	require.NoError(t, cache.Insert(fp, domain.NewPerformance()))
	assert.Equal(t, 1, cache.Len())

	perf, err := cache.Get(fp)
	require.NoError(t, err)
	assert.True(t, perf.IsNew())
}

func TestCacheInsertRejectsDuplicates(t *testing.T) {
	t.Parallel()

	cache := NewCache()
	fp := fingerprintFor(t, "q1")

	require.NoError(t, cache.Insert(fp, domain.NewPerformance()))
	err := cache.Insert(fp, domain.NewPerformance())
	require.ErrorIs(t, err, ErrDuplicateEntry)
	assert.Equal(t, 1, cache.Len())
}

func TestCacheGetMiss(t *testing.T) {
	t.Parallel()

	cache := NewCache()
	_, err := cache.Get(fingerprintFor(t, "q1"))
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheUpdate(t *testing.T) {
	t.Parallel()

	cache := NewCache()
	fp := fingerprintFor(t, "q1")
	require.NoError(t, cache.Insert(fp, domain.NewPerformance()))

	rp := domain.ReviewedPerformance{
		LastReviewedAt: time.Now(),
		Stability:      3.1262,
		Difficulty:     5.3,
		IntervalRaw:    3.1262,
		IntervalDays:   4,
		DueDate:        domain.Date{Year: 2024, Month: time.June, Day: 5},
		ReviewCount:    1,
	}
	require.NoError(t, cache.Update(fp, rp))

	perf, err := cache.Get(fp)
	require.NoError(t, err)
	require.False(t, perf.IsNew())
	assert.Equal(t, rp, *perf.Reviewed)

	// Update is last-writer-wins for repeated grades of the same card.
	rp.ReviewCount = 2
	require.NoError(t, cache.Update(fp, rp))
	perf, err = cache.Get(fp)
	require.NoError(t, err)
	assert.Equal(t, 2, perf.Reviewed.ReviewCount)
}

func TestCacheUpdateMiss(t *testing.T) {
	t.Parallel()

	cache := NewCache()
	err := cache.Update(fingerprintFor(t, "q1"), domain.ReviewedPerformance{})
	require.ErrorIs(t, err, ErrCacheMiss)
}

func TestCacheDrainConsumes(t *testing.T) {
	t.Parallel()

	cache := NewCache()
	fp1 := fingerprintFor(t, "q1")
	fp2 := fingerprintFor(t, "q2")
	require.NoError(t, cache.Insert(fp1, domain.NewPerformance()))
	require.NoError(t, cache.Insert(fp2, domain.NewPerformance()))

	changes := cache.Drain()
	assert.Len(t, changes, 2)
	assert.Contains(t, changes, fp1)
	assert.Contains(t, changes, fp2)
	assert.Equal(t, 0, cache.Len())

	_, err := cache.Get(fp1)
	require.ErrorIs(t, err, ErrCacheMiss)
}
