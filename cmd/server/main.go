package main

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"outfox/internal/app"
	"outfox/internal/cards"
	"outfox/internal/config"
	httpTransport "outfox/internal/transport/http"
)

const (
	releaseVersion = "0.1.0"
)

//go:embed web/*
var webFS embed.FS

func main() {
	cobra.CheckErr(newCmd().ExecuteContext(context.Background()))
}

func newCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "outfox",
		Short:         "Host-screen party game server: rank the answers, catch the snake.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), ".env")
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	config.RegisterFlags(cmd.Flags())

	return cmd
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	logger.Info("starting outfox server",
		"version", releaseVersion,
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	hub, err := newHub(cfg, logger)
	if err != nil {
		return err
	}
	defer hub.Close()

	// Create HTTP server
	server := httpTransport.NewServer(cfg, hub, logger, webFS)

	errCh := make(chan error, 1)
	go func() {
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Wait for interrupt signal
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
	}

	logger.Info("server stopped")
	return nil
}

// newHub loads the card catalog and builds the table hub from config
func newHub(cfg *config.Config, logger *slog.Logger) (*app.TableHub, error) {
	// Fail fast on a broken card file
	store := cards.NewStore(cfg.Game.CardsPath)
	deck, err := store.Cards()
	if err != nil {
		return nil, fmt.Errorf("load cards from %s: %w", store.Source(), err)
	}
	if len(deck) < cards.MinRecommended {
		logger.Warn("small card deck, cards will repeat quickly",
			"source", store.Source(),
			"cards", len(deck),
		)
	}
	logger.Info("cards loaded", "source", store.Source(), "cards", len(deck))

	opts, err := cfg.Game.Options()
	if err != nil {
		return nil, err
	}

	hub := app.NewTableHub(store, app.HubConfig{
		RoomCodeLength: cfg.Game.RoomCodeLength,
		StaleTimeout:   cfg.Server.StaleTimeout,
		Session: app.SessionSettings{
			Options:        opts,
			RankingTime:    cfg.Game.RankingTime,
			RevealInterval: cfg.Game.RevealInterval,
		},
	}, app.RealClock{}, logger)

	return hub, nil
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	logOpts := &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Level),
	}

	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, logOpts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, logOpts))
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
