package database

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"github.com/greengo-app/greengo-api/internal/models"
)

func TestMapPostgresError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected error
	}{
		{
			name:     "nil passes through",
			err:      nil,
			expected: nil,
		},
		{
			name:     "no rows maps to not found",
			err:      pgx.ErrNoRows,
			expected: models.ErrNotFound,
		},
		{
			name:     "wrapped no rows maps to not found",
			err:      fmt.Errorf("query user: %w", pgx.ErrNoRows),
			expected: models.ErrNotFound,
		},
		{
			name:     "unique violation maps to conflict",
			err:      &pgconn.PgError{Code: "23505"},
			expected: models.ErrConflict,
		},
		{
			name:     "foreign key violation maps to bad request",
			err:      &pgconn.PgError{Code: "23503"},
			expected: models.ErrBadRequest,
		},
		{
			name:     "twofa secret check maps to not initiated",
			err:      &pgconn.PgError{Code: "23514", ConstraintName: "twofa_secret_required"},
			expected: models.ErrTwoFactorNotInitiated,
		},
		{
			name:     "other check violation maps to bad request",
			err:      &pgconn.PgError{Code: "23514", ConstraintName: "some_other_check"},
			expected: models.ErrBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, MapPostgresError(tt.err))
		})
	}
}

func TestMapPostgresError_UnknownErrorPassesThrough(t *testing.T) {
	err := errors.New("connection reset")
	assert.Equal(t, err, MapPostgresError(err))
}
