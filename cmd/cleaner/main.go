package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	"github.com/steemit/topics/internal/cleaner"
	"github.com/steemit/topics/internal/db"
	"github.com/steemit/topics/pkg/config"
	"github.com/steemit/topics/pkg/logging"
	"github.com/steemit/topics/pkg/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logging.InitLogger(&cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logging.GetLogger().Sync()

	logger := logging.GetLogger()

	cliApp := &cli.App{
		Name:    "topics-cleaner",
		Usage:   "maintenance tasks for the topics database",
		Version: telemetry.Version,

		// cleaning is the default so the binary can run straight from cron
		Action: func(ctx *cli.Context) error {
			return cleanVisits(ctx.Context, cfg, cfg.Cleaner.VisitRetention)
		},

		Commands: []*cli.Command{
			{
				Name:  "clean-visits",
				Usage: "delete topic visits older than the retention period",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "retention",
						Usage: "how long visits are kept",
						Value: cfg.Cleaner.VisitRetention,
					},
				},
				Action: func(ctx *cli.Context) error {
					return cleanVisits(ctx.Context, cfg, ctx.Duration("retention"))
				},
			},
			{
				Name:  "migrate",
				Usage: "create or update the database schema",
				Action: func(ctx *cli.Context) error {
					database, err := db.New(&cfg.Database, cfg.Logging.Level)
					if err != nil {
						return err
					}
					defer database.Close()
					return database.Migrate()
				},
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		logger.Fatal("Cleaner failed", zap.Error(err))
	}
}

func cleanVisits(ctx context.Context, cfg *config.Config, retention time.Duration) error {
	database, err := db.New(&cfg.Database, cfg.Logging.Level)
	if err != nil {
		return err
	}
	defer database.Close()

	c, err := cleaner.New(db.NewVisitRepository(db.NewRepository(database.DB)), retention, nil)
	if err != nil {
		return err
	}

	_, err = c.CleanVisits(ctx)
	return err
}
