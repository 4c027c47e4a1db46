// Package pipeline writes offline statistics reports to disk.
package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"trade-journal/internal/journal"
	"trade-journal/internal/metrics"
	"trade-journal/internal/observability"
	"trade-journal/internal/reporting"
	"trade-journal/internal/storage"
)

// Output file names.
const (
	StatsFile               = "STATS.md"
	EquityCurveFile         = "EQUITY_CURVE.csv"
	StrategyPerformanceFile = "STRATEGY_PERFORMANCE.csv"
	TradesFile              = "TRADES.csv"
)

type output struct {
	name   string
	format string // report format label for metrics
	body   []byte
}

// ReportWriter renders a user's report into an output directory.
type ReportWriter struct {
	aggregator     *metrics.Aggregator
	reportGen      *reporting.Generator
	outputDir      string
	filter         storage.TradeFilter
	initialBalance float64
	exportTrades   bool
	logger         *zap.Logger
}

// NewReportWriter creates a writer for outputDir.
func NewReportWriter(aggregator *metrics.Aggregator, outputDir string) *ReportWriter {
	return &ReportWriter{
		aggregator: aggregator,
		reportGen:  reporting.NewGenerator(aggregator),
		outputDir:  outputDir,
		logger:     zap.NewNop(),
	}
}

// WithClock sets a custom clock function for deterministic output.
func (w *ReportWriter) WithClock(clock func() time.Time) *ReportWriter {
	w.reportGen = w.reportGen.WithClock(clock)
	return w
}

// WithFilter restricts the report to matching trades.
func (w *ReportWriter) WithFilter(f storage.TradeFilter) *ReportWriter {
	w.filter = f
	return w
}

// WithInitialBalance sets the balance used for drawdown percentages.
func (w *ReportWriter) WithInitialBalance(balance float64) *ReportWriter {
	w.initialBalance = balance
	return w
}

// WithTradeExport also writes the filtered trades as TRADES.csv.
func (w *ReportWriter) WithTradeExport(enabled bool) *ReportWriter {
	w.exportTrades = enabled
	return w
}

// WithLogger sets the logger.
func (w *ReportWriter) WithLogger(logger *zap.Logger) *ReportWriter {
	w.logger = logger.Named("report")
	return w
}

// Run generates the report and writes the output files. It returns the paths
// written, in a fixed order.
func (w *ReportWriter) Run(ctx context.Context, userID string) ([]string, error) {
	if err := os.MkdirAll(w.outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	report, err := w.reportGen.Generate(ctx, userID, w.filter, w.initialBalance)
	if err != nil {
		return nil, fmt.Errorf("generate report: %w", err)
	}

	outputs := []output{
		{StatsFile, "markdown", []byte(reporting.RenderMarkdown(report))},
		{EquityCurveFile, "equity_csv", []byte(reporting.RenderEquityCurveCSV(report.EquityCurve))},
		{StrategyPerformanceFile, "strategy_csv", []byte(reporting.RenderStrategyCSV(report.Strategies))},
	}

	if w.exportTrades {
		trades, err := w.aggregator.Trades(ctx, userID, w.filter)
		if err != nil {
			return nil, fmt.Errorf("load trades: %w", err)
		}
		var buf bytes.Buffer
		if err := journal.WriteTrades(&buf, trades); err != nil {
			return nil, fmt.Errorf("export trades: %w", err)
		}
		outputs = append(outputs, output{TradesFile, "trades_csv", buf.Bytes()})
	}

	paths := make([]string, 0, len(outputs))
	for _, out := range outputs {
		path := filepath.Join(w.outputDir, out.name)
		if err := os.WriteFile(path, out.body, 0644); err != nil {
			return nil, fmt.Errorf("write %s: %w", out.name, err)
		}
		observability.RecordReport(out.format)
		paths = append(paths, path)
	}

	w.logger.Info("report written",
		zap.String("user_id", userID),
		zap.String("output_dir", w.outputDir),
		zap.Int("trades", report.DataSummary.TotalTrades),
	)
	return paths, nil
}
