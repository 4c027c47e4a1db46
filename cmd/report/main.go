// Package main writes an offline statistics report (STATS.md, EQUITY_CURVE.csv,
// STRATEGY_PERFORMANCE.csv) from fixtures, a journal CSV, or Postgres.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"trade-journal/internal/bootstrap"
	"trade-journal/internal/config"
	"trade-journal/internal/domain"
	"trade-journal/internal/journal"
	"trade-journal/internal/logging"
	"trade-journal/internal/metrics"
	"trade-journal/internal/pipeline"
	"trade-journal/internal/storage"
	"trade-journal/internal/storage/memory"
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
	fs.Float64Var(&cfg.InitialBalance, "initial-balance", cfg.InitialBalance, "Account starting balance for drawdown percentages")
	outputDir := fs.String("output-dir", "docs", "Output directory for generated files")
	useFixtures := fs.Bool("use-fixtures", false, "Use the built-in demo journal instead of a database")
	csvPath := fs.String("csv", "", "Read trades from a journal CSV file instead of a database")
	userID := fs.String("user", "", "User whose journal to report on (default: demo user for fixtures)")
	from := fs.String("from", "", "Only trades on or after this date")
	to := fs.String("to", "", "Only trades on or before this date (date-only includes the whole day)")
	pair := fs.String("pair", "", "Only trades on this pair")
	strategyID := fs.String("strategy-id", "", "Only trades tagged with this strategy")
	exportTrades := fs.Bool("export-trades", false, "Also write TRADES.csv")
	generatedAt := fs.String("generated-at", "", "Fixed report timestamp (RFC 3339) for reproducible output")
	flag.Parse()

	logger := logging.New(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})
	defer logger.Sync() //nolint:errcheck

	if *useFixtures && *userID == "" {
		*userID = pipeline.FixtureUserID
	}
	if *userID == "" {
		logger.Fatal("--user is required unless --use-fixtures is set")
	}
	if !*useFixtures && *csvPath == "" && cfg.PostgresDSN == "" {
		logger.Fatal("one of --use-fixtures, --csv or --postgres-dsn is required")
	}

	filter, err := buildFilter(*from, *to, *pair, *strategyID)
	if err != nil {
		logger.Fatal("invalid filter", zap.Error(err))
	}

	ctx := context.Background()
	tradeStore, strategyStore, cleanup, err := openSource(ctx, cfg, *useFixtures, *csvPath, *userID, logger)
	if err != nil {
		logger.Fatal("open trade source", zap.Error(err))
	}
	defer cleanup()

	aggregator := metrics.NewAggregator(tradeStore, strategyStore, nil, metrics.WithLogger(logger))
	w := pipeline.NewReportWriter(aggregator, *outputDir).
		WithFilter(filter).
		WithInitialBalance(cfg.InitialBalance).
		WithTradeExport(*exportTrades).
		WithLogger(logger)

	if *generatedAt != "" {
		ts, err := time.Parse(time.RFC3339, *generatedAt)
		if err != nil {
			logger.Fatal("invalid --generated-at", zap.Error(err))
		}
		w = w.WithClock(func() time.Time { return ts.UTC() })
	}

	paths, err := w.Run(ctx, *userID)
	if err != nil {
		logger.Fatal("report failed", zap.Error(err))
	}

	fmt.Println("Report generated successfully:")
	for _, p := range paths {
		fmt.Printf("  - %s\n", p)
	}
}

func buildFilter(from, to, pair, strategyID string) (storage.TradeFilter, error) {
	f := storage.TradeFilter{Pair: pair, StrategyID: strategyID}
	if from != "" {
		t, err := domain.ParseTradeDate(from)
		if err != nil {
			return f, fmt.Errorf("--from: %w", err)
		}
		f.From = &t
	}
	if to != "" {
		t, err := domain.ParseTradeDate(to)
		if err != nil {
			return f, fmt.Errorf("--to: %w", err)
		}
		if len(to) == len(time.DateOnly) {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		f.To = &t
	}
	return f, nil
}

func openSource(
	ctx context.Context,
	cfg *config.Config,
	useFixtures bool,
	csvPath, userID string,
	logger *zap.Logger,
) (storage.TradeStore, storage.StrategyStore, func(), error) {
	noop := func() {}

	switch {
	case useFixtures:
		trades, strategies := memory.NewTradeStore(), memory.NewStrategyStore()
		if err := pipeline.LoadFixtures(ctx, trades, strategies); err != nil {
			return nil, nil, nil, fmt.Errorf("load fixtures: %w", err)
		}
		return trades, strategies, noop, nil

	case csvPath != "":
		f, err := os.Open(csvPath)
		if err != nil {
			return nil, nil, nil, err
		}
		defer f.Close()

		res, err := journal.NewImporter(userID, journal.WithImportLogger(logger)).Read(f)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("read %s: %w", csvPath, err)
		}
		for _, rowErr := range res.Errors {
			logger.Warn("row skipped", zap.Int("row", rowErr.Row), zap.String("field", rowErr.Field), zap.Error(rowErr.Err))
		}
		trades := memory.NewTradeStore()
		if err := trades.InsertBulk(ctx, res.Trades); err != nil {
			return nil, nil, nil, fmt.Errorf("load %s: %w", csvPath, err)
		}
		return trades, memory.NewStrategyStore(), noop, nil

	default:
		pool, err := bootstrap.OpenPostgres(ctx, cfg.PostgresDSN, logger)
		if err != nil {
			return nil, nil, nil, err
		}
		return pgstore.NewTradeStore(pool), pgstore.NewStrategyStore(pool), pool.Close, nil
	}
}
