package session

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/store"
)

// fakeClock pins the session's wall clock.
type fakeClock struct {
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Today() domain.Date { return domain.DateOf(c.now) }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// savedSession captures one SaveSession call.
type savedSession struct {
	startedAt   time.Time
	endedAt     time.Time
	reviews     []domain.Review
	performance map[domain.Fingerprint]domain.Performance
}

// fakeStore is an in-memory store.Store. failSaves makes the next N
// SaveSession calls fail.
type fakeStore struct {
	performance map[domain.Fingerprint]domain.Performance
	saved       []savedSession
	failSaves   int
}

var _ store.Store = (*fakeStore)(nil)

func newFakeStore() *fakeStore {
	return &fakeStore{performance: make(map[domain.Fingerprint]domain.Performance)}
}

func (s *fakeStore) CardFingerprints(ctx context.Context) (map[domain.Fingerprint]struct{}, error) {
	fps := make(map[domain.Fingerprint]struct{}, len(s.performance))
	for fp := range s.performance {
		fps[fp] = struct{}{}
	}
	return fps, nil
}

func (s *fakeStore) InsertCard(ctx context.Context, fp domain.Fingerprint, seenAt time.Time) error {
	if _, ok := s.performance[fp]; ok {
		return store.ErrCardExists
	}
	s.performance[fp] = domain.NewPerformance()
	return nil
}

func (s *fakeStore) GetPerformance(ctx context.Context, fp domain.Fingerprint) (domain.Performance, error) {
	perf, ok := s.performance[fp]
	if !ok {
		return domain.Performance{}, store.ErrCardNotFound
	}
	return perf, nil
}

func (s *fakeStore) DueFingerprints(ctx context.Context, today domain.Date) (map[domain.Fingerprint]struct{}, error) {
	due := make(map[domain.Fingerprint]struct{})
	for fp, perf := range s.performance {
		if perf.IsNew() || !perf.Reviewed.DueDate.After(today) {
			due[fp] = struct{}{}
		}
	}
	return due, nil
}

func (s *fakeStore) SaveSession(
	ctx context.Context,
	startedAt, endedAt time.Time,
	reviews []domain.Review,
	performance map[domain.Fingerprint]domain.Performance,
) error {
	if s.failSaves > 0 {
		s.failSaves--
		return fmt.Errorf("injected save failure")
	}
	saved := savedSession{
		startedAt:   startedAt,
		endedAt:     endedAt,
		reviews:     append([]domain.Review(nil), reviews...),
		performance: make(map[domain.Fingerprint]domain.Performance, len(performance)),
	}
	for fp, perf := range performance {
		saved.performance[fp] = perf
		s.performance[fp] = perf
	}
	s.saved = append(s.saved, saved)
	return nil
}

// basicCard builds a registered basic card for queue and engine tests.
func basicCard(t *testing.T, deck, question string) domain.Card {
	t.Helper()
	card, err := domain.NewCard(deck, domain.BasicContent{Question: question, Answer: "answer"})
	if err != nil {
		t.Fatalf("NewCard: %v", err)
	}
	return card
}

// seedCards registers cards in the fake store with New performance.
func seedCards(t *testing.T, s *fakeStore, cards ...domain.Card) {
	t.Helper()
	for _, card := range cards {
		if err := s.InsertCard(context.Background(), card.Fingerprint(), time.Now()); err != nil {
			t.Fatalf("InsertCard: %v", err)
		}
	}
}
