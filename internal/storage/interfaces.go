package storage

import (
	"context"

	"trade-journal/internal/domain"
)

// TradeStore provides access to trades storage.
type TradeStore interface {
	// Insert adds a new trade. Returns ErrDuplicateKey if id exists,
	// ErrInvalidInput if the record fails validation.
	Insert(ctx context.Context, t *domain.TradeRecord) error

	// InsertBulk adds multiple trades atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, trades []*domain.TradeRecord) error

	// GetByID retrieves a trade by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, tradeID string) (*domain.TradeRecord, error)

	// GetByUser retrieves a user's trades matching filter, ordered by trade_date ASC, id ASC.
	GetByUser(ctx context.Context, userID string, filter TradeFilter) ([]*domain.TradeRecord, error)
}

// StrategyStore provides access to strategies storage.
type StrategyStore interface {
	// Insert adds a new strategy. Returns ErrDuplicateKey if id exists.
	Insert(ctx context.Context, s *domain.Strategy) error

	// GetByID retrieves a strategy by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, strategyID string) (*domain.Strategy, error)

	// GetByUser retrieves all strategies of a user, ordered by name ASC, id ASC.
	GetByUser(ctx context.Context, userID string) ([]*domain.Strategy, error)
}

// SnapshotStore provides access to stats_snapshots storage (append-only).
type SnapshotStore interface {
	// Insert adds a new snapshot. Returns ErrDuplicateKey if snapshot_id exists.
	Insert(ctx context.Context, s *domain.StatsSnapshot) error

	// GetLatest retrieves the most recent snapshot of a user. Returns ErrNotFound if none.
	GetLatest(ctx context.Context, userID string) (*domain.StatsSnapshot, error)

	// GetByUser retrieves all snapshots of a user, ordered by computed_at ASC.
	GetByUser(ctx context.Context, userID string) ([]*domain.StatsSnapshot, error)
}
