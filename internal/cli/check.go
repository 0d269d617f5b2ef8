package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phrazzld/drill-api/internal/domain"
	"github.com/phrazzld/drill-api/internal/parser"
)

func init() {
	rootCmd.AddCommand(checkCmd)
}

var checkCmd = &cobra.Command{
	Use:   "check [directory]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Parse the collection and report problems without starting a session",
	RunE:  runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	cards, err := parser.ParseDeck(cfg.Collection.Directory)
	if err != nil {
		return fmt.Errorf("collection check failed: %w", err)
	}

	// Identical content collapses to one scheduling entry; surface it so
	// the author can decide whether the duplication is intentional.
	seen := make(map[domain.Fingerprint]string, len(cards))
	duplicates := 0
	for _, card := range cards {
		fp := card.Fingerprint()
		if prior, ok := seen[fp]; ok {
			duplicates++
			fmt.Printf("duplicate card in %q (first seen in %q): %s\n",
				card.DeckName(), prior, fp)
			continue
		}
		seen[fp] = card.DeckName()
	}

	fmt.Printf("%d cards parsed, %d unique, %d duplicates\n",
		len(cards), len(seen), duplicates)
	return nil
}
