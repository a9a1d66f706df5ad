package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greengo-app/greengo-api/internal/database"
	"github.com/greengo-app/greengo-api/internal/models"
)

type CollectionRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewCollectionRepository(db *database.DB) *CollectionRepository {
	return &CollectionRepository{db: db, pool: db.Pool}
}

const collectionColumns = `id, user_id, collection_date, time_slot, pickup_address, item_count,
	weight_kg, amount, status, notes, cancel_reason, created_at, updated_at`

func scanCollectionRow(scanner rowScanner) (*models.Collection, error) {
	var c models.Collection

	err := scanner.Scan(
		&c.ID, &c.UserID, &c.Date, &c.TimeSlot, &c.PickupAddress, &c.ItemCount,
		&c.WeightKg, &c.Amount, &c.Status, &c.Notes, &c.CancelReason,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &c, nil
}

func scanCollectionRows(rows pgx.Rows) ([]*models.Collection, error) {
	defer rows.Close()

	collections := make([]*models.Collection, 0)

	for rows.Next() {
		c, err := scanCollectionRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan collection: %w", err)
		}
		collections = append(collections, c)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return collections, nil
}

func (r *CollectionRepository) ListByUser(ctx context.Context, userID int64) ([]*models.Collection, error) {
	query := `
		SELECT ` + collectionColumns + `
		FROM collections WHERE user_id = $1
		ORDER BY collection_date DESC, id DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}

	return scanCollectionRows(rows)
}

// GetByID scopes the lookup to the owning user so one user can never read
// another's collections.
func (r *CollectionRepository) GetByID(ctx context.Context, userID, collectionID int64) (*models.Collection, error) {
	query := `SELECT ` + collectionColumns + ` FROM collections WHERE id = $1 AND user_id = $2`
	return scanCollectionRow(r.pool.QueryRow(ctx, query, collectionID, userID))
}

// ReplaceUpcoming cancels any still-pending pickups and inserts the new one
// in a single transaction, so a rescheduling client never ends up with two
// live pickups or zero.
func (r *CollectionRepository) ReplaceUpcoming(ctx context.Context, c *models.Collection) (*models.Collection, error) {
	var created *models.Collection

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
			UPDATE collections
			SET status = $2, cancel_reason = 'rescheduled', updated_at = now()
			WHERE user_id = $1 AND status IN ($3, $4)`,
			c.UserID, models.CollectionStatusCancelled,
			models.CollectionStatusScheduled, models.CollectionStatusPending)
		if err != nil {
			return err
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO collections (user_id, collection_date, time_slot, pickup_address, item_count, weight_kg, amount, notes)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
			RETURNING `+collectionColumns,
			c.UserID, c.Date, c.TimeSlot, c.PickupAddress, c.ItemCount, c.WeightKg, c.Amount, c.Notes)

		created, err = scanCollectionRow(row)
		return err
	})
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return created, nil
}

// Cancel marks the collection cancelled. The status guard means completed or
// already-cancelled pickups come back as not found.
func (r *CollectionRepository) Cancel(ctx context.Context, userID, collectionID int64, reason string) error {
	query := `
		UPDATE collections
		SET status = $4, cancel_reason = $3, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND status IN ($5, $6)`

	tag, err := r.pool.Exec(ctx, query, collectionID, userID, reason,
		models.CollectionStatusCancelled,
		models.CollectionStatusScheduled, models.CollectionStatusPending)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// Reschedule moves a still-pending pickup to a new date and slot.
func (r *CollectionRepository) Reschedule(ctx context.Context, c *models.Collection) (*models.Collection, error) {
	query := `
		UPDATE collections
		SET collection_date = $3, time_slot = $4, pickup_address = $5, updated_at = now()
		WHERE id = $1 AND user_id = $2 AND status IN ($6, $7)
		RETURNING ` + collectionColumns

	return scanCollectionRow(r.pool.QueryRow(ctx, query,
		c.ID, c.UserID, c.Date, c.TimeSlot, c.PickupAddress,
		models.CollectionStatusScheduled, models.CollectionStatusPending))
}

// GetUpcoming returns the next pickup that has not happened yet, if any.
func (r *CollectionRepository) GetUpcoming(ctx context.Context, userID int64) (*models.Collection, error) {
	query := `
		SELECT ` + collectionColumns + `
		FROM collections
		WHERE user_id = $1 AND status IN ($2, $3)
		ORDER BY collection_date ASC, id ASC
		LIMIT 1`

	return scanCollectionRow(r.pool.QueryRow(ctx, query, userID,
		models.CollectionStatusScheduled, models.CollectionStatusPending))
}
