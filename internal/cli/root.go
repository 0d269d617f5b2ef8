// Package cli implements the drill command tree.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/phrazzld/drill-api/internal/config"
)

// Flag overrides applied on top of the loaded configuration.
var (
	flagDirectory    string
	flagPort         int
	flagDeck         string
	flagCardLimit    int
	flagNewCardLimit int
	flagLogLevel     string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "drill",
	Short: "drill - flashcard drills from plain markdown files",
	Long: `Drill turns a directory of markdown files into flashcards, schedules
them with spaced repetition, and serves review sessions over HTTP.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().
		StringVarP(&flagDirectory, "directory", "d", "", "Deck directory (default: current directory)")
	rootCmd.PersistentFlags().
		StringVar(&flagLogLevel, "log-level", "", "Log level (debug, info, warn, error)")

	serveCmd.Flags().IntVarP(&flagPort, "port", "p", 0, "HTTP port to listen on")
	serveCmd.Flags().StringVar(&flagDeck, "deck", "", "Only include cards from this deck")
	serveCmd.Flags().IntVar(&flagCardLimit, "card-limit", -1, "Maximum cards in the session (negative: unlimited)")
	serveCmd.Flags().IntVar(&flagNewCardLimit, "new-card-limit", -1, "Maximum never-reviewed cards in the session (negative: unlimited)")
}

// loadConfig loads the file and environment configuration, then layers the
// command-line flags and the optional positional deck directory on top.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if flagDirectory != "" {
		cfg.Collection.Directory = flagDirectory
	}
	if len(args) > 0 {
		cfg.Collection.Directory = args[0]
	}
	if flagLogLevel != "" {
		cfg.Server.LogLevel = flagLogLevel
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = flagPort
	}
	if cmd.Flags().Changed("deck") {
		cfg.Collection.DeckFilter = flagDeck
	}
	if cmd.Flags().Changed("card-limit") {
		cfg.Collection.CardLimit = flagCardLimit
	}
	if cmd.Flags().Changed("new-card-limit") {
		cfg.Collection.NewCardLimit = flagNewCardLimit
	}

	return cfg, nil
}
