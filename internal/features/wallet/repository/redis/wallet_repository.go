package redis

import (
	"context"
	"time"

	apperrors "bcmoney-backend/internal/common/errors"
	profilerepo "bcmoney-backend/internal/features/profile/repository/redis"
	"bcmoney-backend/internal/features/wallet/models"
	"bcmoney-backend/internal/features/wallet/repository"
	"bcmoney-backend/internal/platform/docstore"
)

const TransactionsCollection = "transactions"

type walletRepository struct {
	store *docstore.Store
}

func NewWalletRepository(store *docstore.Store) repository.WalletRepository {
	return &walletRepository{store: store}
}

func (r *walletRepository) balanceRef(uid, tokenID string) *docstore.DocRef {
	return r.store.Doc(profilerepo.ProfilesCollection, uid, profilerepo.BalancesCollection, tokenID)
}

func (r *walletRepository) balancesCol(uid string) *docstore.CollectionRef {
	return r.store.Collection(profilerepo.ProfilesCollection, uid, profilerepo.BalancesCollection)
}

func (r *walletRepository) transactionsCol(uid, tokenID string) *docstore.CollectionRef {
	return r.store.Collection(profilerepo.ProfilesCollection, uid, profilerepo.BalancesCollection, tokenID, TransactionsCollection)
}

func (r *walletRepository) GetBalance(ctx context.Context, uid, tokenID string) (*models.TokenBalance, error) {
	doc, err := r.store.Get(ctx, r.balanceRef(uid, tokenID))
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, nil
	}
	return decodeBalance(doc)
}

func (r *walletRepository) ListBalances(ctx context.Context, uid string) ([]models.TokenBalance, error) {
	docs, err := r.store.List(ctx, r.balancesCol(uid), docstore.ListOptions{})
	if err != nil {
		return nil, err
	}

	balances := make([]models.TokenBalance, 0, len(docs))
	for i := range docs {
		balance, err := decodeBalance(&docs[i])
		if err != nil {
			// Malformed balance documents are skipped, not fatal.
			continue
		}
		balances = append(balances, *balance)
	}
	return balances, nil
}

// ApplyEntries stages every balance write and transaction record on one
// docstore batch. The batch commits in a single MULTI/EXEC, so a
// mid-operation failure applies nothing.
func (r *walletRepository) ApplyEntries(ctx context.Context, uid string, entries []models.LedgerEntry) error {
	batch := r.store.NewBatch()

	for _, entry := range entries {
		batch.Merge(r.balanceRef(uid, entry.TokenID), map[string]interface{}{
			"id":         entry.TokenID,
			"tokenId":    entry.TokenID,
			"balance":    entry.NewBalance,
			"updated_at": time.Now().UTC(),
		})

		record := entry.Record
		txnRef := r.transactionsCol(uid, entry.TokenID).Doc(record.ID)
		batch.Set(txnRef, map[string]interface{}{
			"id":                 record.ID,
			"tokenBalanceId":     record.TokenBalanceID,
			"transactionDate":    record.TransactionDate,
			"amount":             record.Amount,
			"transactionType":    record.Type,
			"tokenSymbol":        record.TokenSymbol,
			"recipientAccountId": record.Counterparty,
		})
	}

	return batch.Commit(ctx)
}

func (r *walletRepository) SeedBalances(ctx context.Context, uid string, balances []models.TokenBalance) error {
	batch := r.store.NewBatch()
	for _, balance := range balances {
		batch.Merge(r.balanceRef(uid, balance.TokenID), map[string]interface{}{
			"id":         balance.TokenID,
			"tokenId":    balance.TokenID,
			"balance":    balance.Balance,
			"updated_at": time.Now().UTC(),
		})
	}
	return batch.Commit(ctx)
}

func (r *walletRepository) ListTransactions(ctx context.Context, uid, tokenID string) ([]models.Transaction, error) {
	docs, err := r.store.List(ctx, r.transactionsCol(uid, tokenID), docstore.ListOptions{
		OrderBy:    "transactionDate",
		Descending: true,
	})
	if err != nil {
		return nil, err
	}

	txns := make([]models.Transaction, 0, len(docs))
	for i := range docs {
		var txn models.Transaction
		if err := docs[i].Decode(&txn); err != nil {
			continue
		}
		txn.ID = docs[i].ID
		txns = append(txns, txn)
	}
	return txns, nil
}

func (r *walletRepository) ClearTransactions(ctx context.Context, uid, tokenID string) error {
	return r.store.DeleteCollection(ctx, r.transactionsCol(uid, tokenID))
}

func decodeBalance(doc *docstore.Document) (*models.TokenBalance, error) {
	var balance models.TokenBalance
	if err := doc.Decode(&balance); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStoreError, "Malformed balance document").
			WithDetail("path", doc.Path)
	}
	balance.ID = doc.ID
	if balance.TokenID == "" {
		balance.TokenID = doc.ID
	}
	return &balance, nil
}
