package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vadimtrunov/moviefinder/internal/config"
	"github.com/vadimtrunov/moviefinder/internal/core"
	"github.com/vadimtrunov/moviefinder/internal/frontend/telegram"
)

// newBotCmd returns the "bot" subcommand for running the Telegram bot.
func newBotCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bot",
		Short: "Start the Telegram bot",
		Long:  "Start the MovieFinder Telegram bot. Every chat gets its own search session.",
		RunE: func(_ *cobra.Command, _ []string) error {
			return runBot()
		},
	}
}

// runBot initializes the fetcher and runs the Telegram bot until interrupted.
func runBot() error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if cfg.Telegram == nil {
		return errors.New(
			"telegram configuration is required: set telegram.bot_token in config or MOVIEFINDER_TELEGRAM_BOT_TOKEN env var",
		)
	}

	logger := config.SetupLogger(cfg.App.LogLevel, os.Stderr)

	bot, err := telegram.New(
		cfg.Telegram.BotToken,
		cfg.Telegram.AllowedUserIDs,
		newFetcher(cfg, logger),
		logger,
	)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return runFrontend(ctx, bot, logger)
}

// runFrontend runs f until ctx is canceled.
func runFrontend(ctx context.Context, f core.Frontend, logger *slog.Logger) error {
	logger.Info("frontend starting", slog.String("frontend", f.Name()))
	err := f.Start(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("frontend stopped", slog.String("frontend", f.Name()), slog.String("error", err.Error()))
		return err
	}
	return nil
}
