package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"trade-journal/internal/domain"
	"trade-journal/internal/observability"
	"trade-journal/internal/storage"
)

// TradeStore implements storage.TradeStore using PostgreSQL.
// Strategy tags live in trade_strategies and are loaded alongside each trade.
type TradeStore struct {
	pool *Pool
}

// NewTradeStore creates a new TradeStore.
func NewTradeStore(pool *Pool) *TradeStore {
	return &TradeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TradeStore = (*TradeStore)(nil)

const tradeColumns = `
	id, user_id, pair, direction,
	entry_price, exit_price, stop_loss, take_profit, quantity,
	realized_pnl, pnl, result, status,
	trade_date, entry_time, exit_time,
	confluence_score, ai_quality_score, notes
`

const insertTradeQuery = `
	INSERT INTO trades (` + tradeColumns + `) VALUES (
		$1, $2, $3, $4,
		$5, $6, $7, $8, $9,
		$10, $11, $12, $13,
		$14, $15, $16,
		$17, $18, $19
	)
`

const insertTagQuery = `
	INSERT INTO trade_strategies (trade_id, position, strategy_id, strategy_name)
	VALUES ($1, $2, $3, $4)
`

// Insert adds a new trade and its strategy tags. Returns ErrDuplicateKey if id exists.
func (s *TradeStore) Insert(ctx context.Context, t *domain.TradeRecord) error {
	return s.InsertBulk(ctx, []*domain.TradeRecord{t})
}

// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
func (s *TradeStore) InsertBulk(ctx context.Context, trades []*domain.TradeRecord) (err error) {
	if len(trades) == 0 {
		return nil
	}
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("postgres", "insert_trades", time.Since(start).Seconds(), err)
	}()

	for _, t := range trades {
		if err := t.Validate(); err != nil {
			return storage.InvalidInput(err)
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, t := range trades {
		if err = insertTrade(ctx, tx, t); err != nil {
			return err
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func insertTrade(ctx context.Context, tx pgx.Tx, t *domain.TradeRecord) error {
	_, err := tx.Exec(ctx, insertTradeQuery,
		t.ID, t.UserID, t.Pair, strings.ToUpper(string(t.Direction)),
		t.EntryPrice, t.ExitPrice, t.StopLoss, t.TakeProfit, t.Quantity,
		t.RealizedPnl, t.Pnl, string(t.Result), string(t.Status),
		t.TradeDate, t.EntryTime, t.ExitTime,
		t.ConfluenceScore, t.AIQualityScore, t.Notes,
	)
	if err != nil {
		return storeError("insert trade", err)
	}

	for i, tag := range t.Strategies {
		if _, err := tx.Exec(ctx, insertTagQuery, t.ID, i, tag.ID, tag.Name); err != nil {
			if isDuplicateKeyError(err) {
				return storage.InvalidInput(fmt.Errorf("trade %s: strategy %s tagged twice", t.ID, tag.ID))
			}
			return fmt.Errorf("insert trade strategy: %w", err)
		}
	}
	return nil
}

// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
func (s *TradeStore) GetByID(ctx context.Context, tradeID string) (*domain.TradeRecord, error) {
	query := `SELECT ` + tradeColumns + ` FROM trades WHERE id = $1`

	t, err := scanTrade(s.pool.QueryRow(ctx, query, tradeID))
	if err != nil {
		return nil, storeError("get trade by id", err)
	}

	if err := s.loadStrategies(ctx, []*domain.TradeRecord{t}); err != nil {
		return nil, err
	}
	return t, nil
}

// GetByUser retrieves a user's trades matching filter, ordered by trade_date ASC, id ASC.
func (s *TradeStore) GetByUser(ctx context.Context, userID string, filter storage.TradeFilter) (trades []*domain.TradeRecord, err error) {
	start := time.Now()
	defer func() {
		observability.RecordDBQuery("postgres", "get_trades_by_user", time.Since(start).Seconds(), err)
	}()

	where, args := buildTradeWhere(userID, filter)
	query := `SELECT ` + tradeColumns + ` FROM trades t WHERE ` + where + ` ORDER BY trade_date ASC, id ASC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("get trades by user: %w", err)
	}
	defer rows.Close()

	trades, err = scanTrades(rows)
	if err != nil {
		return nil, err
	}

	if err = s.loadStrategies(ctx, trades); err != nil {
		return nil, err
	}
	return trades, nil
}

// buildTradeWhere translates a filter into a WHERE clause with positional args.
func buildTradeWhere(userID string, f storage.TradeFilter) (string, []any) {
	clauses := []string{"t.user_id = $1"}
	args := []any{userID}

	add := func(clause string, arg any) {
		args = append(args, arg)
		clauses = append(clauses, fmt.Sprintf(clause, len(args)))
	}

	if f.From != nil {
		add("t.trade_date >= $%d", *f.From)
	}
	if f.To != nil {
		add("t.trade_date <= $%d", *f.To)
	}
	if f.Pair != "" {
		add("UPPER(t.pair) = UPPER($%d)", f.Pair)
	}
	if f.Direction != "" {
		add("t.direction = $%d", strings.ToUpper(string(f.Direction)))
	}
	if f.Status != "" {
		add("t.status = $%d", string(f.Status))
	}
	if f.StrategyID != "" {
		add("EXISTS (SELECT 1 FROM trade_strategies ts WHERE ts.trade_id = t.id AND ts.strategy_id = $%d)", f.StrategyID)
	}

	return strings.Join(clauses, " AND "), args
}

// loadStrategies attaches strategy tags to trades in one round trip.
func (s *TradeStore) loadStrategies(ctx context.Context, trades []*domain.TradeRecord) error {
	if len(trades) == 0 {
		return nil
	}

	byID := make(map[string]*domain.TradeRecord, len(trades))
	ids := make([]string, 0, len(trades))
	for _, t := range trades {
		byID[t.ID] = t
		ids = append(ids, t.ID)
	}

	rows, err := s.pool.Query(ctx, `
		SELECT trade_id, strategy_id, strategy_name
		FROM trade_strategies
		WHERE trade_id = ANY($1)
		ORDER BY trade_id ASC, position ASC
	`, ids)
	if err != nil {
		return fmt.Errorf("get trade strategies: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var tradeID string
		var tag domain.StrategyTag
		if err := rows.Scan(&tradeID, &tag.ID, &tag.Name); err != nil {
			return fmt.Errorf("scan trade strategy row: %w", err)
		}
		if t, ok := byID[tradeID]; ok {
			t.Strategies = append(t.Strategies, tag)
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate trade strategy rows: %w", err)
	}
	return nil
}

// scanTrade scans a single row into a TradeRecord.
func scanTrade(row pgx.Row) (*domain.TradeRecord, error) {
	var t domain.TradeRecord
	var direction, result, status string

	err := row.Scan(
		&t.ID, &t.UserID, &t.Pair, &direction,
		&t.EntryPrice, &t.ExitPrice, &t.StopLoss, &t.TakeProfit, &t.Quantity,
		&t.RealizedPnl, &t.Pnl, &result, &status,
		&t.TradeDate, &t.EntryTime, &t.ExitTime,
		&t.ConfluenceScore, &t.AIQualityScore, &t.Notes,
	)
	if err != nil {
		return nil, err
	}

	t.Direction = domain.Direction(direction)
	t.Result = domain.Result(result)
	t.Status = domain.Status(status)
	t.TradeDate = t.TradeDate.UTC()
	if t.EntryTime != nil {
		utc := t.EntryTime.UTC()
		t.EntryTime = &utc
	}
	if t.ExitTime != nil {
		utc := t.ExitTime.UTC()
		t.ExitTime = &utc
	}

	return &t, nil
}

// scanTrades scans multiple rows into a slice of TradeRecord.
func scanTrades(rows pgx.Rows) ([]*domain.TradeRecord, error) {
	var trades []*domain.TradeRecord

	for rows.Next() {
		t, err := scanTrade(rows)
		if err != nil {
			return nil, fmt.Errorf("scan trade row: %w", err)
		}
		trades = append(trades, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trade rows: %w", err)
	}

	return trades, nil
}
