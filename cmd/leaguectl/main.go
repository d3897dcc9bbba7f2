package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/tenpin/leaguebook/internal/infra"
	"github.com/urfave/cli/v2"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newApp(logger).RunContext(ctx, os.Args); err != nil {
		logger.Error("leaguectl failed", "error", err)
		stop()
		os.Exit(1)
	}
}

func newApp(logger *slog.Logger) *cli.App {
	return &cli.App{
		Name:  "leaguectl",
		Usage: "operate a leaguebook deployment",
		Before: func(c *cli.Context) error {
			cfg, err := infra.LoadConfig()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			c.App.Metadata = map[string]any{"config": cfg, "logger": logger}
			return nil
		},
		Commands: []*cli.Command{
			migrateCommand(),
			importCommand(),
			standingsCommand(),
			exportCommand(),
			tokenCommand(),
			eventsCommand(),
		},
	}
}

func configFrom(c *cli.Context) *infra.Config {
	return c.App.Metadata["config"].(*infra.Config)
}

func loggerFrom(c *cli.Context) *slog.Logger {
	return c.App.Metadata["logger"].(*slog.Logger)
}
