package clickhouse

import (
	"context"
	"fmt"

	"trade-journal/internal/domain"
	"trade-journal/internal/storage"
)

// SnapshotStore implements storage.SnapshotStore using ClickHouse.
type SnapshotStore struct {
	conn *Conn
}

// NewSnapshotStore creates a new SnapshotStore.
func NewSnapshotStore(conn *Conn) *SnapshotStore {
	return &SnapshotStore{conn: conn}
}

// Compile-time interface check.
var _ storage.SnapshotStore = (*SnapshotStore)(nil)

const snapshotColumns = `
	snapshot_id, user_id, computed_at, content_key, initial_balance,
	total_trades, winning_trades, losing_trades, breakeven_trades, win_rate,
	total_pnl, avg_pnl, gross_profit, gross_loss, largest_win, largest_loss, avg_win, avg_loss,
	avg_rr, profit_factor, expectancy, sharpe_ratio,
	max_drawdown, max_drawdown_percent,
	consecutive_wins, consecutive_losses
`

// Insert adds a new snapshot. Returns ErrDuplicateKey if snapshot_id exists.
func (s *SnapshotStore) Insert(ctx context.Context, snap *domain.StatsSnapshot) error {
	if snap == nil || snap.SnapshotID == "" || snap.UserID == "" {
		return storage.ErrInvalidInput
	}

	// ReplacingMergeTree would silently replace; snapshots are append-only
	exists, err := s.exists(ctx, snap.SnapshotID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	if exists {
		return storage.ErrDuplicateKey
	}

	batch, err := s.conn.PrepareBatch(ctx, "INSERT INTO stats_snapshots ("+snapshotColumns+")")
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	st := snap.Stats
	err = batch.Append(
		snap.SnapshotID, snap.UserID, snap.ComputedAt.UTC(), snap.ContentKey, snap.InitialBalance,
		uint32(st.TotalTrades), uint32(st.WinningTrades), uint32(st.LosingTrades), uint32(st.BreakevenTrades), st.WinRate,
		st.TotalPnl, st.AvgPnl, st.GrossProfit, st.GrossLoss, st.LargestWin, st.LargestLoss, st.AvgWin, st.AvgLoss,
		st.AvgRR, st.ProfitFactor, st.Expectancy, st.SharpeRatio,
		st.MaxDrawdown, st.MaxDrawdownPercent,
		uint32(st.ConsecutiveWins), uint32(st.ConsecutiveLosses),
	)
	if err != nil {
		return fmt.Errorf("append to batch: %w", err)
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("insert stats snapshot: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recent snapshot of a user. Returns ErrNotFound if none.
func (s *SnapshotStore) GetLatest(ctx context.Context, userID string) (*domain.StatsSnapshot, error) {
	query := `SELECT ` + snapshotColumns + `
		FROM stats_snapshots FINAL
		WHERE user_id = ?
		ORDER BY computed_at DESC, snapshot_id DESC
		LIMIT 1
	`

	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query latest snapshot: %w", err)
	}
	defer rows.Close()

	snaps, err := scanSnapshots(rows)
	if err != nil {
		return nil, err
	}
	if len(snaps) == 0 {
		return nil, storage.ErrNotFound
	}
	return snaps[0], nil
}

// GetByUser retrieves all snapshots of a user, ordered by computed_at ASC.
func (s *SnapshotStore) GetByUser(ctx context.Context, userID string) ([]*domain.StatsSnapshot, error) {
	query := `SELECT ` + snapshotColumns + `
		FROM stats_snapshots FINAL
		WHERE user_id = ?
		ORDER BY computed_at ASC, snapshot_id ASC
	`

	rows, err := s.conn.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query snapshots by user: %w", err)
	}
	defer rows.Close()

	return scanSnapshots(rows)
}

// exists checks if a snapshot with the given id exists.
func (s *SnapshotStore) exists(ctx context.Context, snapshotID string) (bool, error) {
	var count uint64
	err := s.conn.QueryRow(ctx,
		`SELECT count(*) FROM stats_snapshots FINAL WHERE snapshot_id = ?`, snapshotID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// Rows interface for scanning
type chRows interface {
	Next() bool
	Scan(dest ...interface{}) error
	Err() error
}

// scanSnapshots scans multiple rows into a slice.
func scanSnapshots(rows chRows) ([]*domain.StatsSnapshot, error) {
	var snaps []*domain.StatsSnapshot

	for rows.Next() {
		var snap domain.StatsSnapshot
		var total, wins, losses, breakeven, consWins, consLosses uint32
		st := &snap.Stats

		err := rows.Scan(
			&snap.SnapshotID, &snap.UserID, &snap.ComputedAt, &snap.ContentKey, &snap.InitialBalance,
			&total, &wins, &losses, &breakeven, &st.WinRate,
			&st.TotalPnl, &st.AvgPnl, &st.GrossProfit, &st.GrossLoss, &st.LargestWin, &st.LargestLoss, &st.AvgWin, &st.AvgLoss,
			&st.AvgRR, &st.ProfitFactor, &st.Expectancy, &st.SharpeRatio,
			&st.MaxDrawdown, &st.MaxDrawdownPercent,
			&consWins, &consLosses,
		)
		if err != nil {
			return nil, fmt.Errorf("scan snapshot row: %w", err)
		}

		st.TotalTrades = int(total)
		st.WinningTrades = int(wins)
		st.LosingTrades = int(losses)
		st.BreakevenTrades = int(breakeven)
		st.ConsecutiveWins = int(consWins)
		st.ConsecutiveLosses = int(consLosses)
		snap.ComputedAt = snap.ComputedAt.UTC()

		snaps = append(snaps, &snap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate snapshot rows: %w", err)
	}

	return snaps, nil
}
