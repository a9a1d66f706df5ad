package repositories

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greengo-app/greengo-api/internal/database"
	"github.com/greengo-app/greengo-api/internal/models"
)

type WalletRepository struct {
	pool *pgxpool.Pool
}

func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{pool: db.Pool}
}

// EnsureWallet creates the user's wallet row if it does not exist yet and
// returns it either way.
func (r *WalletRepository) EnsureWallet(ctx context.Context, userID int64) (*models.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id)
		VALUES ($1)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING id, user_id, current_balance, total_income, total_expense`

	var w models.Wallet
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&w.ID, &w.UserID, &w.CurrentBalance, &w.TotalIncome, &w.TotalExpense)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &w, nil
}

func (r *WalletRepository) GetByUser(ctx context.Context, userID int64) (*models.Wallet, error) {
	query := `SELECT id, user_id, current_balance, total_income, total_expense FROM wallets WHERE user_id = $1`

	var w models.Wallet
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&w.ID, &w.UserID, &w.CurrentBalance, &w.TotalIncome, &w.TotalExpense)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &w, nil
}

// Statement returns the wallet's transactions, most recent first, with the
// type name joined in.
func (r *WalletRepository) Statement(ctx context.Context, walletID int64, limit int) ([]*models.WalletTransaction, error) {
	query := `
		SELECT wt.id, wt.wallet_id, tt.type_name, wt.reference_code, wt.amount, wt.status, wt.transaction_date
		FROM wallet_transactions wt
		JOIN transaction_types tt ON tt.id = wt.transaction_type_id
		WHERE wt.wallet_id = $1
		ORDER BY wt.transaction_date DESC, wt.id DESC
		LIMIT $2`

	rows, err := r.pool.Query(ctx, query, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query wallet transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]*models.WalletTransaction, 0)
	for rows.Next() {
		var t models.WalletTransaction
		err := rows.Scan(&t.ID, &t.WalletID, &t.TypeName, &t.ReferenceCode, &t.Amount, &t.Status, &t.Date)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		transactions = append(transactions, &t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows: %w", err)
	}

	return transactions, nil
}

// Home returns the balance plus the most recent completed payment, used for
// the home-screen wallet card.
func (r *WalletRepository) Home(ctx context.Context, userID int64) (*models.WalletHome, error) {
	query := `
		SELECT w.id, w.current_balance, wt.amount, wt.transaction_date
		FROM wallets w
		LEFT JOIN LATERAL (
			SELECT amount, transaction_date
			FROM wallet_transactions
			WHERE wallet_id = w.id AND status = 'completed'
			ORDER BY transaction_date DESC
			LIMIT 1
		) wt ON TRUE
		WHERE w.user_id = $1`

	var home models.WalletHome
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&home.WalletID, &home.CurrentBalance, &home.LastPaymentAmount, &home.LastPaymentDate)
	if err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &home, nil
}
