package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"trade-journal/internal/domain"
)

// ErrMissingColumn is returned when the CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing required column")

// RowError describes a rejected CSV row. Row is 1-based and counts the header.
type RowError struct {
	Row   int
	Field string
	Err   error
}

func (e *RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("row %d: %v", e.Row, e.Err)
	}
	return fmt.Sprintf("row %d: field %s: %v", e.Row, e.Field, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ImportResult holds the outcome of reading a journal CSV.
type ImportResult struct {
	Trades []*domain.TradeRecord
	Errors []*RowError
}

// Importer parses journal CSV files into validated trade records.
type Importer struct {
	userID string
	newID  func() string
	logger *zap.Logger
}

// ImporterOption configures an Importer.
type ImporterOption func(*Importer)

// WithIDGenerator overrides the id source for rows with an empty id.
func WithIDGenerator(f func() string) ImporterOption {
	return func(im *Importer) { im.newID = f }
}

// WithImportLogger sets the logger.
func WithImportLogger(l *zap.Logger) ImporterOption {
	return func(im *Importer) { im.logger = l }
}

// NewImporter creates an importer that assigns userID to rows without a
// user_id column value.
func NewImporter(userID string, opts ...ImporterOption) *Importer {
	im := &Importer{
		userID: userID,
		newID:  uuid.NewString,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(im)
	}
	return im
}

// Read parses every row of r. Rows that fail to parse or validate are reported
// in ImportResult.Errors and skipped. A malformed header aborts the import.
func (im *Importer) Read(r io.Reader) (*ImportResult, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return &ImportResult{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	index, err := headerIndex(header)
	if err != nil {
		return nil, err
	}

	result := &ImportResult{}
	seen := make(map[string]int)
	row := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		row++
		if err != nil {
			result.Errors = append(result.Errors, &RowError{Row: row, Err: err})
			continue
		}
		if isBlank(record) {
			continue
		}

		t, rowErr := im.parseRow(row, index, record)
		if rowErr != nil {
			result.Errors = append(result.Errors, rowErr)
			continue
		}
		if first, dup := seen[t.ID]; dup {
			result.Errors = append(result.Errors, &RowError{
				Row: row, Field: colID, Err: fmt.Errorf("duplicate id %q (first at row %d)", t.ID, first),
			})
			continue
		}
		seen[t.ID] = row
		result.Trades = append(result.Trades, t)
	}

	im.logger.Info("journal csv parsed",
		zap.Int("trades", len(result.Trades)),
		zap.Int("rejected", len(result.Errors)))
	return result, nil
}

func headerIndex(header []string) (map[string]int, error) {
	index := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if name == "" {
			continue
		}
		if _, dup := index[name]; dup {
			return nil, fmt.Errorf("duplicate column %q", name)
		}
		index[name] = i
	}
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, col)
		}
	}
	return index, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// rowReader looks up cells by column name and records the first failure.
type rowReader struct {
	row    int
	index  map[string]int
	record []string
	err    *RowError
}

func (rr *rowReader) cell(col string) string {
	i, ok := rr.index[col]
	if !ok || i >= len(rr.record) {
		return ""
	}
	return strings.TrimSpace(rr.record[i])
}

func (rr *rowReader) fail(col string, err error) {
	if rr.err == nil {
		rr.err = &RowError{Row: rr.row, Field: col, Err: err}
	}
}

func (rr *rowReader) optFloat(col string) *float64 {
	s := rr.cell(col)
	if s == "" {
		return nil
	}
	v, err := parseDecimal(s)
	if err != nil {
		rr.fail(col, err)
		return nil
	}
	return &v
}

func (rr *rowReader) optTime(col string) *time.Time {
	s := rr.cell(col)
	if s == "" {
		return nil
	}
	v, err := domain.ParseTradeDate(s)
	if err != nil {
		rr.fail(col, err)
		return nil
	}
	return &v
}

func (im *Importer) parseRow(row int, index map[string]int, record []string) (*domain.TradeRecord, *RowError) {
	rr := &rowReader{row: row, index: index, record: record}

	t := &domain.TradeRecord{
		ID:     rr.cell(colID),
		UserID: rr.cell(colUserID),
		Pair:   strings.ToUpper(rr.cell(colPair)),
		Notes:  rr.cell(colNotes),
	}
	if t.ID == "" {
		t.ID = im.newID()
	}
	if t.UserID == "" {
		t.UserID = im.userID
	}

	var err error
	if t.Direction, err = domain.ParseDirection(rr.cell(colDirection)); err != nil {
		rr.fail(colDirection, err)
	}
	if t.Result, err = domain.ParseResult(rr.cell(colResult)); err != nil {
		rr.fail(colResult, err)
	}
	if t.Status, err = domain.ParseStatus(rr.cell(colStatus)); err != nil {
		rr.fail(colStatus, err)
	}
	if t.TradeDate, err = domain.ParseTradeDate(rr.cell(colTradeDate)); err != nil {
		rr.fail(colTradeDate, err)
	}

	t.EntryPrice = rr.optFloat(colEntryPrice)
	t.ExitPrice = rr.optFloat(colExitPrice)
	t.StopLoss = rr.optFloat(colStopLoss)
	t.TakeProfit = rr.optFloat(colTakeProfit)
	if q := rr.optFloat(colQuantity); q != nil {
		t.Quantity = *q
	}
	t.RealizedPnl = rr.optFloat(colRealizedPnl)
	t.Pnl = rr.optFloat(colPnl)
	t.ConfluenceScore = rr.optFloat(colConfluenceScore)
	t.AIQualityScore = rr.optFloat(colAIQualityScore)
	t.EntryTime = rr.optTime(colEntryTime)
	t.ExitTime = rr.optTime(colExitTime)

	tags, err := parseStrategies(rr.cell(colStrategies))
	if err != nil {
		rr.fail(colStrategies, err)
	}
	t.Strategies = tags

	if rr.err != nil {
		return nil, rr.err
	}
	if err := t.Validate(); err != nil {
		return nil, &RowError{Row: row, Err: err}
	}
	return t, nil
}

// parseDecimal parses a plain or thousands-separated decimal number.
func parseDecimal(s string) (float64, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return d.InexactFloat64(), nil
}

func parseStrategies(s string) ([]domain.StrategyTag, error) {
	if s == "" {
		return nil, nil
	}
	var tags []domain.StrategyTag
	seen := make(map[string]struct{})
	for _, part := range strings.Split(s, strategySep) {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, name, found := strings.Cut(part, strategyNameSep)
		id, name = strings.TrimSpace(id), strings.TrimSpace(name)
		if id == "" {
			return nil, fmt.Errorf("empty strategy id in %q", part)
		}
		if !found || name == "" {
			name = id
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("strategy %q tagged twice", id)
		}
		seen[id] = struct{}{}
		tags = append(tags, domain.StrategyTag{ID: id, Name: name})
	}
	return tags, nil
}
