package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greengo-app/greengo-api/internal/database"
	"github.com/greengo-app/greengo-api/internal/models"
)

type PaymentMethodRepository struct {
	db   *database.DB
	pool *pgxpool.Pool
}

func NewPaymentMethodRepository(db *database.DB) *PaymentMethodRepository {
	return &PaymentMethodRepository{db: db, pool: db.Pool}
}

const paymentMethodColumns = `id, user_id, type, key, label, is_default, created_at, updated_at`

func scanPaymentMethodRow(scanner rowScanner) (*models.PaymentMethod, error) {
	var m models.PaymentMethod

	err := scanner.Scan(&m.ID, &m.UserID, &m.Type, &m.Key, &m.Label, &m.IsDefault, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return &m, nil
}

func (r *PaymentMethodRepository) ListByUser(ctx context.Context, userID int64) ([]*models.PaymentMethod, error) {
	query := `
		SELECT ` + paymentMethodColumns + `
		FROM payment_methods WHERE user_id = $1
		ORDER BY is_default DESC, created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query payment methods: %w", err)
	}
	defer rows.Close()

	methods := make([]*models.PaymentMethod, 0)
	for rows.Next() {
		m, err := scanPaymentMethodRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payment method: %w", err)
		}
		methods = append(methods, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return methods, nil
}

// Create inserts a payment method. When makeDefault is true any previous
// default is cleared in the same transaction.
func (r *PaymentMethodRepository) Create(ctx context.Context, m *models.PaymentMethod, makeDefault bool) (*models.PaymentMethod, error) {
	var created *models.PaymentMethod

	err := r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		if makeDefault {
			_, err := tx.Exec(ctx,
				`UPDATE payment_methods SET is_default = FALSE, updated_at = now() WHERE user_id = $1 AND is_default`,
				m.UserID)
			if err != nil {
				return err
			}
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO payment_methods (user_id, type, key, label, is_default)
			VALUES ($1, $2, $3, $4, $5)
			RETURNING `+paymentMethodColumns,
			m.UserID, m.Type, m.Key, m.Label, makeDefault)

		var err error
		created, err = scanPaymentMethodRow(row)
		return err
	})
	if err != nil {
		return nil, database.MapPostgresError(err)
	}

	return created, nil
}

// SetDefault promotes one method and demotes the rest atomically.
func (r *PaymentMethodRepository) SetDefault(ctx context.Context, userID, methodID int64) error {
	return r.db.WithTransaction(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx,
			`UPDATE payment_methods SET is_default = TRUE, updated_at = now() WHERE id = $1 AND user_id = $2`,
			methodID, userID)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return models.ErrNotFound
		}

		_, err = tx.Exec(ctx,
			`UPDATE payment_methods SET is_default = FALSE, updated_at = now() WHERE user_id = $1 AND id <> $2 AND is_default`,
			userID, methodID)
		return err
	})
}

func (r *PaymentMethodRepository) Delete(ctx context.Context, userID, methodID int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM payment_methods WHERE id = $1 AND user_id = $2`, methodID, userID)
	if err != nil {
		return database.MapPostgresError(err)
	}
	if tag.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}
