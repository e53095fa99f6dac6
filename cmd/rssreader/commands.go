package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"rssreader/internal/app"
	"rssreader/internal/infrastructure/config"
	"rssreader/storage"
)

func rootApp() *cli.App {
	return &cli.App{
		Name:  "rssreader",
		Usage: "An e-reader friendly RSS aggregator",
		Description: `Fetches a fixed list of RSS and Atom feeds on every page load and
		renders them as a single self-contained page for e-reader browsers.

		Flags can generally be set via environment variables, e.g.:

		--config => RSSREADER_CONFIG=config.yaml
		--port => RSSREADER_PORT=3000
		`,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Usage:   "Path to the YAML config file",
				EnvVars: []string{"RSSREADER_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level: debug, info, warn or error",
				EnvVars: []string{"RSSREADER_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "log-format",
				Usage:   "Log format: text or json",
				EnvVars: []string{"RSSREADER_LOG_FORMAT"},
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Include raw feed items in every response",
				EnvVars: []string{"RSSREADER_DEBUG"},
			},
			// для запуска без команды
			hostFlag(),
			portFlag(),
		},
		Commands: []*cli.Command{
			serveCmd(),
			fetchCmd(),
			migrateCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// без команды запускаем сервер
			return serve(ctx)
		},
	}
}

func serveCmd() *cli.Command {
	return &cli.Command{
		Name:        "serve",
		Usage:       "Serve the reader page and JSON API",
		Description: `Starts the HTTP server. Every request to / or /api/feeds fetches all configured feeds concurrently.`,
		Flags:       []cli.Flag{hostFlag(), portFlag()},
		Action:      serve,
	}
}

func hostFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "host",
		Usage:   "Host to listen on",
		EnvVars: []string{"RSSREADER_HOST"},
	}
}

func portFlag() cli.Flag {
	return &cli.IntFlag{
		Name:    "port",
		Usage:   "Port to listen on",
		EnvVars: []string{"RSSREADER_PORT", "PORT"},
	}
}

func fetchCmd() *cli.Command {
	return &cli.Command{
		Name:        "fetch",
		Usage:       "Fetch all feeds once and print the results as JSON",
		Description: `Runs a single aggregation and writes the ordered feed results to stdout.`,
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			log := app.NewLogger(cfg, os.Stderr)
			return app.FetchOnce(ctx.Context, cfg, log, cfg.App.Debug, os.Stdout)
		},
	}
}

func migrateCmd() *cli.Command {
	return &cli.Command{
		Name:        "migrate",
		Usage:       "Create the fetch log table",
		Description: `Applies the fetch log schema to the configured PostgreSQL database.`,
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}
			if !cfg.StorageEnabled() {
				return fmt.Errorf("database is not configured: set db.host")
			}
			log := app.NewLogger(cfg, os.Stderr)

			dbCtx, cancel := context.WithTimeout(ctx.Context, 30*time.Second)
			defer cancel()
			db, err := storage.NewStorage(dbCtx, cfg.DSN(), log)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := db.Migrate(dbCtx); err != nil {
				return err
			}
			log.Info("Fetch log schema applied")
			return nil
		},
	}
}

func serve(ctx *cli.Context) error {
	cfg, err := serverConfig(ctx)
	if err != nil {
		return err
	}
	log := app.NewLogger(cfg, os.Stdout)
	return app.Run(ctx.Context, cfg, log)
}

// serverConfig дополняет конфиг адресом из флагов host и port.
func serverConfig(ctx *cli.Context) (*config.Config, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if host := ctx.String("host"); host != "" {
		cfg.HTTP.Host = host
	}
	if port := ctx.Int("port"); port > 0 {
		cfg.HTTP.Port = port
	}
	return cfg, nil
}

// loadConfig читает файл конфига, если он задан, и применяет глобальные флаги.
func loadConfig(ctx *cli.Context) (*config.Config, error) {
	cfg := config.Default()
	if path := ctx.String("config"); path != "" {
		loaded, err := config.LoadConfig(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}
	if level := ctx.String("log-level"); level != "" {
		cfg.Logging.Level = level
	}
	if format := ctx.String("log-format"); format != "" {
		cfg.Logging.Format = format
	}
	if ctx.Bool("debug") {
		cfg.App.Debug = true
	}
	return cfg, nil
}
