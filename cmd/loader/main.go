// Command loader applies database migrations and replaces the
// pronunciations table with the contents of a CMU Pronouncing Dictionary
// file. It is intended to be run offline, not as part of the main server.
//
// Flags:
//
//	--dict            path to the dictionary file (overrides config)
//	--dry-run         parse the file without writing to DB
//	--skip-migrations do not run goose migrations first
//	--loader-config   path to loader YAML config file
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/heartmarshall/homophones/internal/adapter/postgres"
	"github.com/heartmarshall/homophones/internal/adapter/postgres/pronunciation"
	"github.com/heartmarshall/homophones/internal/app"
	"github.com/heartmarshall/homophones/internal/config"
	"github.com/heartmarshall/homophones/internal/seeder"
	"github.com/heartmarshall/homophones/migrations"
)

var _ seeder.RecordStore = (*pronunciation.Repo)(nil)

func main() {
	dictFlag := flag.String("dict", "", "path to the CMU dictionary file")
	dryRunFlag := flag.Bool("dry-run", false, "parse the file without writing to DB")
	skipMigrationsFlag := flag.Bool("skip-migrations", false, "do not apply migrations")
	loaderConfigFlag := flag.String("loader-config", "", "path to loader YAML config file")
	flag.Parse()

	appCfg, err := config.Load()
	if err != nil {
		log.Fatalf("load app config: %v", err)
	}

	logger := app.NewLogger(appCfg.Log)

	loaderCfg, err := seeder.LoadConfig(*loaderConfigFlag)
	if err != nil {
		logger.Error("load loader config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if *dictFlag != "" {
		loaderCfg.DictPath = *dictFlag
	}
	if *dryRunFlag {
		loaderCfg.DryRun = true
	}
	if *skipMigrationsFlag {
		loaderCfg.SkipMigrations = true
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	if !loaderCfg.DryRun && !loaderCfg.SkipMigrations {
		if err := postgres.Migrate(ctx, logger, appCfg.Database.DSN, migrations.FS); err != nil {
			logger.Error("apply migrations", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}

	var store seeder.RecordStore
	if !loaderCfg.DryRun {
		pool, err := postgres.NewPool(ctx, appCfg.Database)
		if err != nil {
			logger.Error("connect to database", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer pool.Close()
		store = pronunciation.New(pool)
	}

	report, err := seeder.NewLoader(logger, store, *loaderCfg).Run(ctx)
	if err != nil {
		logger.Error("load failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("load completed",
		slog.Int("records", report.Records),
		slog.Int64("written", report.Written),
		slog.Bool("dry_run", report.DryRun),
		slog.Duration("duration", report.Duration),
	)
}
