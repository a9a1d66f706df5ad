package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/greengo-app/greengo-api/internal/models"
)

// WalletRepository is the storage surface for wallet reads.
type WalletRepository interface {
	EnsureWallet(ctx context.Context, userID int64) (*models.Wallet, error)
	GetByUser(ctx context.Context, userID int64) (*models.Wallet, error)
	Statement(ctx context.Context, walletID int64, limit int) ([]*models.WalletTransaction, error)
	Home(ctx context.Context, userID int64) (*models.WalletHome, error)
}

type WalletService struct {
	wallets WalletRepository
	logger  *slog.Logger
}

func NewWalletService(wallets WalletRepository, logger *slog.Logger) *WalletService {
	return &WalletService{wallets: wallets, logger: logger}
}

const defaultStatementLimit = 50

// StatementResponse is the wallet summary plus recent transactions.
type StatementResponse struct {
	Balance      float64                     `json:"balance"`
	TotalIncome  float64                     `json:"totalIncome"`
	TotalExpense float64                     `json:"totalExpense"`
	Transactions []*models.WalletTransaction `json:"transactions"`
}

// Statement returns the wallet overview. A user whose wallet row is missing
// gets one created on the spot rather than an error.
func (s *WalletService) Statement(ctx context.Context, userID int64) (*StatementResponse, error) {
	wallet, err := s.wallets.GetByUser(ctx, userID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		wallet, err = s.wallets.EnsureWallet(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	transactions, err := s.wallets.Statement(ctx, wallet.ID, defaultStatementLimit)
	if err != nil {
		return nil, err
	}

	return &StatementResponse{
		Balance:      wallet.CurrentBalance,
		TotalIncome:  wallet.TotalIncome,
		TotalExpense: wallet.TotalExpense,
		Transactions: transactions,
	}, nil
}

// Home returns the compact wallet card for the home screen.
func (s *WalletService) Home(ctx context.Context, userID int64) (*models.WalletHome, error) {
	home, err := s.wallets.Home(ctx, userID)
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			return nil, err
		}
		wallet, err := s.wallets.EnsureWallet(ctx, userID)
		if err != nil {
			return nil, err
		}
		return &models.WalletHome{WalletID: wallet.ID, CurrentBalance: wallet.CurrentBalance}, nil
	}
	return home, nil
}
