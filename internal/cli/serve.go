package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/phrazzld/drill-api/internal/api"
	"github.com/phrazzld/drill-api/internal/parser"
	"github.com/phrazzld/drill-api/internal/platform/logger"
	"github.com/phrazzld/drill-api/internal/platform/sqlite"
	"github.com/phrazzld/drill-api/internal/session"
)

func init() {
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [directory]",
	Args:  cobra.MaximumNArgs(1),
	Short: "Start a review session and serve it over HTTP",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	log := logger.Setup(cfg.Server)
	ctx := cmd.Context()

	cards, err := parser.ParseDeck(cfg.Collection.Directory)
	if err != nil {
		return fmt.Errorf("failed to parse deck: %w", err)
	}
	log.Info("parsed collection",
		"directory", cfg.Collection.Directory,
		"cards", len(cards))

	store, err := sqlite.Open(ctx, filepath.Join(cfg.Collection.Directory, cfg.Collection.DatabaseFile))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close database", "error", err)
		}
	}()

	clock := session.SystemClock{}
	queue, err := session.BuildQueue(ctx, store, cards, clock, session.QueueOptions{
		DeckFilter:   cfg.Collection.DeckFilter,
		CardLimit:    cfg.Collection.CardLimit,
		NewCardLimit: cfg.Collection.NewCardLimit,
	}, log)
	if err != nil {
		return fmt.Errorf("failed to build session queue: %w", err)
	}
	if len(queue) == 0 {
		fmt.Println("No cards due today.")
		return nil
	}

	engine, err := session.NewEngine(ctx, queue, session.Config{
		Store:  store,
		Clock:  clock,
		Logger: log,
	})
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:           api.NewRouter(engine, log),
		ReadHeaderTimeout: 10 * time.Second,
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	serverErrCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", "port", cfg.Server.Port, "queue", len(queue))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
	}()

	select {
	case <-shutdownCh:
		log.Info("Shutting down server...")
	case err := <-serverErrCh:
		return fmt.Errorf("server failed: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown failed", "error", err)
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("Server shutdown completed")
	return sessionOutcome(engine)
}

// sessionOutcome reports whether the session reached End before the server
// stopped. Interrupting a session is an abort: nothing has been flushed, and
// the uncommitted reviews are deliberately discarded.
func sessionOutcome(engine *session.Engine) error {
	if engine.CurrentView().Finished {
		return nil
	}
	return errors.New("session interrupted before completion")
}
