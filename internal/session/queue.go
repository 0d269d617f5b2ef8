package session

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/store"
)

// QueueOptions narrow the set of cards admitted to a session. A negative
// limit means unlimited; NewCardLimit zero means no new cards at all.
type QueueOptions struct {
	// DeckFilter keeps only cards from the named deck, if non-empty.
	DeckFilter string
	// CardLimit truncates the queue to at most this many cards.
	CardLimit int
	// NewCardLimit caps how many never-reviewed cards may appear. Cards
	// with reviewed performance are never displaced by it.
	NewCardLimit int
}

// DefaultQueueOptions applies no filter and no limits.
func DefaultQueueOptions() QueueOptions {
	return QueueOptions{CardLimit: -1, NewCardLimit: -1}
}

// BuildQueue selects and orders the cards for today's session.
//
// Steps, in order: register cards unseen by storage (the one sanctioned
// write before the session starts), keep cards due today, sort by
// fingerprint (a deterministic shuffle: reproducible for the same content,
// random-looking to the user, and it mixes decks without an RNG), apply the
// deck filter, bury siblings so one card per family survives, then apply the
// card and new-card limits.
//
// An empty result is the "nothing due" condition, not an error.
func BuildQueue(
	ctx context.Context,
	cardStore store.CardStore,
	cards []domain.Card,
	clock Clock,
	opts QueueOptions,
	logger *slog.Logger,
) ([]domain.Card, error) {
	if logger == nil {
		logger = slog.Default()
	}

	known, err := cardStore.CardFingerprints(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored cards: %w", err)
	}

	// Cards present in the collection but absent from storage are new.
	now := clock.Now()
	registered := 0
	for _, card := range cards {
		if _, ok := known[card.Fingerprint()]; !ok {
			if err := cardStore.InsertCard(ctx, card.Fingerprint(), now); err != nil {
				return nil, fmt.Errorf("failed to register card %s: %w", card.Fingerprint(), err)
			}
			registered++
		}
	}
	if registered > 0 {
		logger.Info("registered new cards", slog.Int("count", registered))
	}

	due, err := cardStore.DueFingerprints(ctx, clock.Today())
	if err != nil {
		return nil, fmt.Errorf("failed to find due cards: %w", err)
	}

	queue := make([]domain.Card, 0, len(cards))
	for _, card := range cards {
		if _, ok := due[card.Fingerprint()]; ok {
			queue = append(queue, card)
		}
	}

	sort.Slice(queue, func(i, j int) bool {
		return queue[i].Fingerprint().Compare(queue[j].Fingerprint()) < 0
	})

	if opts.DeckFilter != "" {
		filtered := queue[:0]
		for _, card := range queue {
			if card.DeckName() == opts.DeckFilter {
				filtered = append(filtered, card)
			}
		}
		queue = filtered
	}

	queue = burySiblings(queue)

	if opts.CardLimit >= 0 && len(queue) > opts.CardLimit {
		queue = queue[:opts.CardLimit]
	}

	if opts.NewCardLimit >= 0 {
		queue, err = capNewCards(ctx, cardStore, queue, opts.NewCardLimit)
		if err != nil {
			return nil, err
		}
	}

	logger.Debug("queue built",
		slog.Int("due", len(due)),
		slog.Int("queued", len(queue)))
	return queue, nil
}

// burySiblings keeps the first card per family so near-duplicate cards (for
// example, multiple cloze deletions of one source text) do not appear in the
// same session. Cards without a family always survive.
func burySiblings(queue []domain.Card) []domain.Card {
	seen := make(map[domain.Fingerprint]struct{})
	result := queue[:0]
	for _, card := range queue {
		if family, ok := card.FamilyFingerprint(); ok {
			if _, buried := seen[family]; buried {
				continue
			}
			seen[family] = struct{}{}
		}
		result = append(result, card)
	}
	return result
}

// capNewCards keeps at most limit never-reviewed cards, preserving order and
// leaving reviewed cards untouched.
func capNewCards(
	ctx context.Context,
	cardStore store.CardStore,
	queue []domain.Card,
	limit int,
) ([]domain.Card, error) {
	newCount := 0
	result := queue[:0]
	for _, card := range queue {
		perf, err := cardStore.GetPerformance(ctx, card.Fingerprint())
		if err != nil {
			return nil, fmt.Errorf("failed to load performance for %s: %w", card.Fingerprint(), err)
		}
		if perf.IsNew() {
			if newCount >= limit {
				continue
			}
			newCount++
		}
		result = append(result, card)
	}
	return result, nil
}
