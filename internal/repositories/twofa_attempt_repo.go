package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greengo-app/greengo-api/internal/database"
)

// TwoFactorAttemptRepository persists code-verification attempts so that
// repeated failures can be throttled.
type TwoFactorAttemptRepository struct {
	pool *pgxpool.Pool
}

func NewTwoFactorAttemptRepository(db *database.DB) *TwoFactorAttemptRepository {
	return &TwoFactorAttemptRepository{pool: db.Pool}
}

func (r *TwoFactorAttemptRepository) RecordAttempt(ctx context.Context, userID int64, success bool, ipAddress string) error {
	query := `INSERT INTO twofa_attempts (user_id, success, ip_address) VALUES ($1, $2, $3)`

	_, err := r.pool.Exec(ctx, query, userID, success, ipAddress)
	if err != nil {
		return database.MapPostgresError(err)
	}
	return nil
}

// CountFailedSince returns the number of failed attempts for a user after
// the cutoff time.
func (r *TwoFactorAttemptRepository) CountFailedSince(ctx context.Context, userID int64, since time.Time) (int, error) {
	query := `SELECT COUNT(*) FROM twofa_attempts WHERE user_id = $1 AND success = FALSE AND created_at > $2`

	var count int
	err := r.pool.QueryRow(ctx, query, userID, since).Scan(&count)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return count, nil
}

// DeleteOlderThan removes attempt rows past their usefulness. Called by the
// background cleanup loop.
func (r *TwoFactorAttemptRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := r.pool.Exec(ctx, `DELETE FROM twofa_attempts WHERE created_at < $1`, cutoff)
	if err != nil {
		return 0, database.MapPostgresError(err)
	}
	return tag.RowsAffected(), nil
}
