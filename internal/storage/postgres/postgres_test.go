package postgres

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"trade-journal/internal/storage"
)

func TestStoreError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		contains string
	}{
		{"no rows", pgx.ErrNoRows, storage.ErrNotFound, ""},
		{"unique", &pgconn.PgError{Code: pgErrUniqueViolation}, storage.ErrDuplicateKey, ""},
		{"wrapped unique", fmt.Errorf("exec: %w", &pgconn.PgError{Code: pgErrUniqueViolation}), storage.ErrDuplicateKey, ""},
		{"check", &pgconn.PgError{Code: pgErrCheckViolation, ConstraintName: "trades_direction_check"}, storage.ErrInvalidInput, "violates trades_direction_check"},
		{"not null", &pgconn.PgError{Code: pgErrNotNullViolation, ColumnName: "pair"}, storage.ErrInvalidInput, "pair is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := storeError("insert trade", tt.err)
			assert.True(t, errors.Is(got, tt.sentinel), "got %v", got)
			if tt.contains != "" {
				assert.Contains(t, got.Error(), tt.contains)
			}
		})
	}
}

func TestStoreError_WrapsOtherErrors(t *testing.T) {
	cause := &pgconn.PgError{Severity: "ERROR", Code: "57014", Message: "canceling statement due to statement timeout"}
	got := storeError("get trade by id", cause)

	assert.EqualError(t, got, "get trade by id: ERROR: canceling statement due to statement timeout (SQLSTATE 57014)")
	var pgErr *pgconn.PgError
	assert.True(t, errors.As(got, &pgErr))
	assert.False(t, errors.Is(got, storage.ErrInvalidInput))
}

func TestIsDuplicateKeyError(t *testing.T) {
	assert.True(t, isDuplicateKeyError(&pgconn.PgError{Code: pgErrUniqueViolation}))
	assert.False(t, isDuplicateKeyError(&pgconn.PgError{Code: pgErrCheckViolation}))
	assert.False(t, isDuplicateKeyError(errors.New("boom")))
	assert.False(t, isDuplicateKeyError(nil))
}
