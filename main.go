package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"moddingway/api"
	"moddingway/bot"
	"moddingway/config"
	"moddingway/handlers"
	"moddingway/logging"
	"moddingway/metrics"
	"moddingway/model"
	"moddingway/utils/database"

	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

func main() {
	if err := run(); err != nil {
		log.Printf("Error: %v", err)
		os.Exit(1)
	}
}

func run() error {
	app := &cli.Command{
		Name:  "moddingway",
		Usage: "Discord moderation bot with strike ledger and REST API",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a settings file (defaults to ./config.yaml when present)",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the bot, its scheduled jobs and the REST API",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Apply the database schema and exit",
				Action: migrate,
			},
		},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return app.Run(ctx, os.Args)
}

// setup loads configuration, initializes logging and opens the migrated store.
func setup(ctx context.Context, c *cli.Command) (*model.Config, *database.Store, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	if err := logging.Init(cfg.AppEnv); err != nil {
		return nil, nil, err
	}

	store, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	if err := store.Migrate(ctx); err != nil {
		store.Close()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}
	return cfg, store, nil
}

func migrate(ctx context.Context, c *cli.Command) error {
	_, store, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer logging.Close()
	defer store.Close()

	logging.Info("Database schema is up to date")
	return nil
}

func serve(ctx context.Context, c *cli.Command) error {
	startedAt := time.Now()
	cfg, store, err := setup(ctx, c)
	if err != nil {
		return err
	}
	defer logging.Close()
	defer store.Close()

	m := metrics.NewMetricsRegistry()
	b, err := bot.New(cfg, store, m)
	if err != nil {
		return fmt.Errorf("create bot: %w", err)
	}
	handlers.Register(b)

	server := api.NewServer(api.Deps{
		Config:    cfg,
		Store:     store,
		Ledger:    b.Ledger,
		Exiles:    b.Exiles,
		Bans:      b.Bans,
		Appeals:   b.Appeals,
		Members:   b.Client,
		Scheduler: b.Scheduler,
		Metrics:   m,
		StartedAt: startedAt,
	})

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return b.Run(gctx) })
	g.Go(func() error { return server.Run(gctx) })

	if err := g.Wait(); err != nil {
		logging.Error("Shutting down after error", "error", err)
		return err
	}
	logging.Info("Shutdown complete")
	return nil
}
