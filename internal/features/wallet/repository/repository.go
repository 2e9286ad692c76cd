package repository

import (
	"context"

	"bcmoney-backend/internal/features/wallet/models"
)

// WalletRepository persists token balances and their nested transaction
// records. GetBalance returns (nil, nil) when the balance document has
// never been created. ApplyEntries must be all-or-nothing: either every
// balance write and transaction record in the slice lands, or none do.
type WalletRepository interface {
	GetBalance(ctx context.Context, uid, tokenID string) (*models.TokenBalance, error)
	ListBalances(ctx context.Context, uid string) ([]models.TokenBalance, error)
	ApplyEntries(ctx context.Context, uid string, entries []models.LedgerEntry) error
	// SeedBalances overwrites the given balances in one batch without
	// writing transaction records. Test-data utility only.
	SeedBalances(ctx context.Context, uid string, balances []models.TokenBalance) error
	ListTransactions(ctx context.Context, uid, tokenID string) ([]models.Transaction, error)
	ClearTransactions(ctx context.Context, uid, tokenID string) error
}
