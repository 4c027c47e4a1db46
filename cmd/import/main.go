// Package main imports a journal CSV into Postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"trade-journal/internal/bootstrap"
	"trade-journal/internal/config"
	"trade-journal/internal/journal"
	"trade-journal/internal/logging"
	"trade-journal/internal/observability"
	pgstore "trade-journal/internal/storage/postgres"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	fs := flag.CommandLine
	fs.StringVar(&cfg.PostgresDSN, "postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, "Log format (json, console)")
	csvPath := fs.String("file", "", "Journal CSV file to import (required)")
	userID := fs.String("user", "", "Owner of rows without a user_id column (required)")
	dryRun := fs.Bool("dry-run", false, "Validate the file without writing to the database")
	flag.Parse()

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer logger.Sync() //nolint:errcheck

	if *csvPath == "" || *userID == "" {
		logger.Fatal("--file and --user are required")
	}
	if !*dryRun && cfg.PostgresDSN == "" {
		logger.Fatal("--postgres-dsn is required (or use --dry-run)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	f, err := os.Open(*csvPath)
	if err != nil {
		logger.Fatal("open file", zap.Error(err))
	}
	defer f.Close()

	res, err := journal.NewImporter(*userID, journal.WithImportLogger(logger)).Read(f)
	if err != nil {
		logger.Fatal("read journal", zap.String("file", *csvPath), zap.Error(err))
	}
	for _, rowErr := range res.Errors {
		logger.Warn("row rejected",
			zap.Int("row", rowErr.Row),
			zap.String("field", rowErr.Field),
			zap.Error(rowErr.Err),
		)
	}

	if *dryRun {
		fmt.Printf("Dry run: %d valid rows, %d rejected\n", len(res.Trades), len(res.Errors))
		if len(res.Errors) > 0 {
			os.Exit(2)
		}
		return
	}

	pool, err := bootstrap.OpenPostgres(ctx, cfg.PostgresDSN, logger)
	if err != nil {
		logger.Fatal("open postgres", zap.Error(err))
	}
	defer pool.Close()

	if err := pgstore.NewTradeStore(pool).InsertBulk(ctx, res.Trades); err != nil {
		logger.Fatal("insert trades", zap.Error(err))
	}
	observability.RecordImport(len(res.Trades), len(res.Errors))

	logger.Info("import complete",
		zap.String("file", *csvPath),
		zap.Int("imported", len(res.Trades)),
		zap.Int("rejected", len(res.Errors)),
	)
	fmt.Printf("Imported %d trades, %d rows rejected\n", len(res.Trades), len(res.Errors))
}
