package postgres

import (
	"context"
	"fmt"

	"trade-journal/internal/domain"
	"trade-journal/internal/storage"
)

// StrategyStore implements storage.StrategyStore using PostgreSQL.
type StrategyStore struct {
	pool *Pool
}

// NewStrategyStore creates a new StrategyStore.
func NewStrategyStore(pool *Pool) *StrategyStore {
	return &StrategyStore{pool: pool}
}

// Compile-time interface check.
var _ storage.StrategyStore = (*StrategyStore)(nil)

// Insert adds a new strategy. Returns ErrDuplicateKey if id exists.
func (s *StrategyStore) Insert(ctx context.Context, st *domain.Strategy) error {
	if st == nil || st.ID == "" || st.UserID == "" || st.Name == "" {
		return storage.ErrInvalidInput
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO strategies (id, user_id, name, description)
		VALUES ($1, $2, $3, $4)
	`, st.ID, st.UserID, st.Name, st.Description)
	if err != nil {
		return storeError("insert strategy", err)
	}
	return nil
}

// GetByID retrieves a strategy by its ID. Returns ErrNotFound if not exists.
func (s *StrategyStore) GetByID(ctx context.Context, strategyID string) (*domain.Strategy, error) {
	var st domain.Strategy
	err := s.pool.QueryRow(ctx, `
		SELECT id, user_id, name, description FROM strategies WHERE id = $1
	`, strategyID).Scan(&st.ID, &st.UserID, &st.Name, &st.Description)
	if err != nil {
		return nil, storeError("get strategy by id", err)
	}
	return &st, nil
}

// GetByUser retrieves all strategies of a user, ordered by name ASC, id ASC.
func (s *StrategyStore) GetByUser(ctx context.Context, userID string) ([]*domain.Strategy, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, name, description
		FROM strategies
		WHERE user_id = $1
		ORDER BY name ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("get strategies by user: %w", err)
	}
	defer rows.Close()

	var result []*domain.Strategy
	for rows.Next() {
		var st domain.Strategy
		if err := rows.Scan(&st.ID, &st.UserID, &st.Name, &st.Description); err != nil {
			return nil, fmt.Errorf("scan strategy row: %w", err)
		}
		result = append(result, &st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strategy rows: %w", err)
	}
	return result, nil
}
