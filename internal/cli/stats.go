package cli

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/phrazzld/drill-api/internal/parser"
	"github.com/phrazzld/drill-api/internal/platform/sqlite"
	"github.com/phrazzld/drill-api/internal/session"
)

func init() {
	rootCmd.AddCommand(statsCmd)
}

var statsCmd = &cobra.Command{
	Use:   "stats [directory]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Show collection statistics",
	RunE:  runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	cards, err := parser.ParseDeck(cfg.Collection.Directory)
	if err != nil {
		return fmt.Errorf("failed to parse deck: %w", err)
	}

	store, err := sqlite.Open(ctx, filepath.Join(cfg.Collection.Directory, cfg.Collection.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer store.Close()

	known, err := store.CardFingerprints(ctx)
	if err != nil {
		return fmt.Errorf("failed to list stored cards: %w", err)
	}

	clock := session.SystemClock{}
	due, err := store.DueFingerprints(ctx, clock.Today())
	if err != nil {
		return fmt.Errorf("failed to find due cards: %w", err)
	}

	perDeck := make(map[string]int)
	dueToday, unseen := 0, 0
	for _, card := range cards {
		perDeck[card.DeckName()]++
		fp := card.Fingerprint()
		if _, ok := due[fp]; ok {
			dueToday++
		}
		if _, ok := known[fp]; !ok {
			unseen++
		}
	}

	fmt.Printf("Cards:     %d\n", len(cards))
	fmt.Printf("Decks:     %d\n", len(perDeck))
	fmt.Printf("Due today: %d\n", dueToday)
	fmt.Printf("Unseen:    %d\n", unseen)
	decks := make([]string, 0, len(perDeck))
	for deck := range perDeck {
		decks = append(decks, deck)
	}
	sort.Strings(decks)
	for _, deck := range decks {
		fmt.Printf("  %s: %d\n", deck, perDeck[deck])
	}
	return nil
}
