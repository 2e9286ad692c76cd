package service

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "bcmoney-backend/internal/common/errors"
	marketservice "bcmoney-backend/internal/features/market/service"
	"bcmoney-backend/internal/features/wallet/models"
)

// fakeWalletRepo applies ledger entries all-or-nothing against an
// in-memory map and counts ApplyEntries calls so tests can assert that
// rejected operations never reach the store.
type fakeWalletRepo struct {
	balances     map[string]decimal.Decimal // tokenID -> balance
	transactions map[string][]models.Transaction
	applyCalls   int
	failApply    error
}

func newFakeWalletRepo() *fakeWalletRepo {
	return &fakeWalletRepo{
		balances:     make(map[string]decimal.Decimal),
		transactions: make(map[string][]models.Transaction),
	}
}

func (f *fakeWalletRepo) GetBalance(_ context.Context, _, tokenID string) (*models.TokenBalance, error) {
	b, ok := f.balances[tokenID]
	if !ok {
		return nil, nil
	}
	return &models.TokenBalance{ID: tokenID, TokenID: tokenID, Balance: b}, nil
}

func (f *fakeWalletRepo) ListBalances(_ context.Context, _ string) ([]models.TokenBalance, error) {
	ids := make([]string, 0, len(f.balances))
	for id := range f.balances {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	out := make([]models.TokenBalance, 0, len(ids))
	for _, id := range ids {
		out = append(out, models.TokenBalance{ID: id, TokenID: id, Balance: f.balances[id]})
	}
	return out, nil
}

func (f *fakeWalletRepo) ApplyEntries(_ context.Context, _ string, entries []models.LedgerEntry) error {
	f.applyCalls++
	if f.failApply != nil {
		return f.failApply
	}
	for _, e := range entries {
		f.balances[e.TokenID] = e.NewBalance
		f.transactions[e.TokenID] = append(f.transactions[e.TokenID], e.Record)
	}
	return nil
}

func (f *fakeWalletRepo) SeedBalances(_ context.Context, _ string, balances []models.TokenBalance) error {
	for _, b := range balances {
		f.balances[b.TokenID] = b.Balance
	}
	return nil
}

func (f *fakeWalletRepo) ListTransactions(_ context.Context, _, tokenID string) ([]models.Transaction, error) {
	return f.transactions[tokenID], nil
}

func (f *fakeWalletRepo) ClearTransactions(_ context.Context, _, tokenID string) error {
	f.transactions[tokenID] = nil
	return nil
}

// fakeHandleResolver knows a fixed set of registered handles.
type fakeHandleResolver struct {
	owners map[string]string
}

func (f *fakeHandleResolver) ResolveHandle(_ context.Context, handle string) (string, error) {
	uid, ok := f.owners[handle]
	if !ok {
		return "", apperrors.NewNotFoundError("handle", handle)
	}
	return uid, nil
}

func newTestWalletService() (WalletService, *fakeWalletRepo) {
	repo := newFakeWalletRepo()
	resolver := &fakeHandleResolver{owners: map[string]string{"@alice": "u-alice"}}
	return NewWalletService(repo, marketservice.NewMarketService(), resolver), repo
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestDepositCreatesBalanceLazily(t *testing.T) {
	svc, repo := newTestWalletService()

	res, err := svc.Deposit(context.Background(), "u1", "BTC", models.DepositRequest{
		AmountRequest: models.AmountRequest{Amount: "1.5"},
		Source:        "external",
	})
	require.NoError(t, err)

	assert.True(t, res.Balance.Equal(dec("1.5")), "balance was %s", res.Balance)
	assert.Equal(t, models.TypeDeposit, res.Transaction.Type)
	assert.Equal(t, "external", res.Transaction.Counterparty)
	assert.Equal(t, 1, repo.applyCalls)
}

func TestSendDebitsBalanceWithOneRecord(t *testing.T) {
	svc, repo := newTestWalletService()
	repo.balances["1"] = dec("10")

	res, err := svc.Send(context.Background(), "u1", "BTC", models.SendRequest{
		AmountRequest: models.AmountRequest{Amount: "4"},
		Recipient:     "@alice",
	})
	require.NoError(t, err)

	assert.True(t, res.Balance.Equal(dec("6")), "balance was %s", res.Balance)
	require.Len(t, repo.transactions["1"], 1)

	record := repo.transactions["1"][0]
	assert.True(t, record.Amount.Equal(dec("-4")), "amount was %s", record.Amount)
	assert.Equal(t, models.TypeSend, record.Type)
	assert.Equal(t, "BTC", record.TokenSymbol)
	assert.Equal(t, "@alice", record.Counterparty)
	assert.NotEmpty(t, record.ID)
	assert.NotEmpty(t, record.TransactionDate)
}

func TestSendRejectsInsufficientBalance(t *testing.T) {
	svc, repo := newTestWalletService()
	repo.balances["1"] = dec("3")

	_, err := svc.Send(context.Background(), "u1", "BTC", models.SendRequest{
		AmountRequest: models.AmountRequest{Amount: "4"},
		Recipient:     "@alice",
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInsufficientBalance, appErr.Code)
	assert.Equal(t, 0, repo.applyCalls, "rejected send must not write")
	assert.True(t, repo.balances["1"].Equal(dec("3")))
}

func TestSendToUnknownHandleRejected(t *testing.T) {
	svc, repo := newTestWalletService()
	repo.balances["1"] = dec("10")

	_, err := svc.Send(context.Background(), "u1", "BTC", models.SendRequest{
		AmountRequest: models.AmountRequest{Amount: "4"},
		Recipient:     "@nobody",
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUnknownRecipient, appErr.Code)
	assert.Equal(t, 0, repo.applyCalls, "unresolved recipient must not write")
	assert.True(t, repo.balances["1"].Equal(dec("10")))
}

func TestInvalidAmountsProduceNoWrites(t *testing.T) {
	svc, repo := newTestWalletService()
	repo.balances["1"] = dec("10")

	for _, amount := range []string{"0", "-1", "abc", ""} {
		_, err := svc.Send(context.Background(), "u1", "BTC", models.SendRequest{
			AmountRequest: models.AmountRequest{Amount: amount},
			Recipient:     "@alice",
		})
		require.Error(t, err, "amount %q", amount)

		appErr, ok := apperrors.AsAppError(err)
		require.True(t, ok)
		assert.Equal(t, apperrors.ErrCodeInvalidAmount, appErr.Code, "amount %q", amount)
	}
	assert.Equal(t, 0, repo.applyCalls)
}

func TestUnknownTokenRejected(t *testing.T) {
	svc, repo := newTestWalletService()

	_, err := svc.Deposit(context.Background(), "u1", "NOPE", models.DepositRequest{
		AmountRequest: models.AmountRequest{Amount: "1"},
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeUnknownToken, appErr.Code)
	assert.Equal(t, 0, repo.applyCalls)
}

func TestWithdrawRecordsAddress(t *testing.T) {
	svc, repo := newTestWalletService()
	repo.balances["2"] = dec("5")

	res, err := svc.Withdraw(context.Background(), "u1", "ETH", models.WithdrawRequest{
		AmountRequest: models.AmountRequest{Amount: "2"},
		Address:       "0xABC",
	})
	require.NoError(t, err)

	assert.True(t, res.Balance.Equal(dec("3")))
	record := repo.transactions["2"][0]
	assert.Equal(t, models.TypeWithdrawal, record.Type)
	assert.Equal(t, "0xABC", record.Counterparty)
}

func TestTradeWritesBothSidesInOneBatch(t *testing.T) {
	svc, repo := newTestWalletService()
	repo.balances["1"] = dec("5")

	res, err := svc.Trade(context.Background(), "u1", "BTC", models.TradeRequest{
		AmountRequest: models.AmountRequest{Amount: "2"},
		TargetSymbol:  "ETH",
	})
	require.NoError(t, err)

	assert.Equal(t, 1, repo.applyCalls, "both sides of a trade share one batch")
	assert.True(t, res.SourceBalance.Equal(dec("3")), "source balance was %s", res.SourceBalance)
	assert.InDelta(t, 38.0661, res.TargetBalance.InexactFloat64(), 0.001)

	require.Len(t, repo.transactions["1"], 1)
	require.Len(t, repo.transactions["2"], 1)

	sell := repo.transactions["1"][0]
	assert.True(t, sell.Amount.IsNegative())
	assert.Equal(t, models.TypeTrade, sell.Type)
	assert.Equal(t, "Bought ETH", sell.Counterparty)

	buy := repo.transactions["2"][0]
	assert.True(t, buy.Amount.IsPositive())
	assert.Equal(t, models.TypeTrade, buy.Type)
	assert.Equal(t, "Sold BTC", buy.Counterparty)
}

func TestTradeIntoExistingTargetBalance(t *testing.T) {
	svc, repo := newTestWalletService()
	repo.balances["1"] = dec("5")
	repo.balances["2"] = dec("10")

	res, err := svc.Trade(context.Background(), "u1", "BTC", models.TradeRequest{
		AmountRequest: models.AmountRequest{Amount: "1"},
		TargetSymbol:  "ETH",
	})
	require.NoError(t, err)
	assert.InDelta(t, 10+19.0330, res.TargetBalance.InexactFloat64(), 0.001)
}

func TestTradeSameTokenRejected(t *testing.T) {
	svc, repo := newTestWalletService()
	repo.balances["1"] = dec("5")

	_, err := svc.Trade(context.Background(), "u1", "BTC", models.TradeRequest{
		AmountRequest: models.AmountRequest{Amount: "1"},
		TargetSymbol:  "btc",
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeSameToken, appErr.Code)
	assert.Equal(t, 0, repo.applyCalls)
}

func TestTradeInsufficientSourceRejected(t *testing.T) {
	svc, repo := newTestWalletService()
	repo.balances["1"] = dec("1")

	_, err := svc.Trade(context.Background(), "u1", "BTC", models.TradeRequest{
		AmountRequest: models.AmountRequest{Amount: "2"},
		TargetSymbol:  "ETH",
	})
	require.Error(t, err)

	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrCodeInsufficientBalance, appErr.Code)
	assert.Equal(t, 0, repo.applyCalls)
	assert.True(t, repo.balances["1"].Equal(dec("1")))
	_, hasTarget := repo.balances["2"]
	assert.False(t, hasTarget, "failed trade must not create the target balance")
}

func TestStoreFailureLeavesNoPartialState(t *testing.T) {
	svc, repo := newTestWalletService()
	repo.balances["1"] = dec("5")
	repo.failApply = apperrors.NewStoreError("batch", "user_profiles/u1", assert.AnError)

	_, err := svc.Trade(context.Background(), "u1", "BTC", models.TradeRequest{
		AmountRequest: models.AmountRequest{Amount: "2"},
		TargetSymbol:  "ETH",
	})
	require.Error(t, err)

	assert.True(t, repo.balances["1"].Equal(dec("5")), "source balance must be untouched")
	_, hasTarget := repo.balances["2"]
	assert.False(t, hasTarget)
	assert.Empty(t, repo.transactions["1"])
	assert.Empty(t, repo.transactions["2"])
}

func TestConcurrentSendsNeverOverdraw(t *testing.T) {
	svc, repo := newTestWalletService()
	repo.balances["1"] = dec("5")

	var wg sync.WaitGroup
	var succeeded int64
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Send(context.Background(), "u1", "BTC", models.SendRequest{
				AmountRequest: models.AmountRequest{Amount: "1"},
				Recipient:     "@alice",
			})
			if err == nil {
				atomic.AddInt64(&succeeded, 1)
			}
		}()
	}
	wg.Wait()

	assert.EqualValues(t, 5, succeeded)
	assert.True(t, repo.balances["1"].IsZero(), "balance ended at %s", repo.balances["1"])
}

func TestBalanceReadsZeroWhenAbsent(t *testing.T) {
	svc, _ := newTestWalletService()

	balance, err := svc.Balance(context.Background(), "u1", "BTC")
	require.NoError(t, err)
	assert.True(t, balance.Balance.IsZero())
	assert.Equal(t, "1", balance.TokenID)
}

func TestSeedOverwritesBalancesWithoutRecords(t *testing.T) {
	svc, repo := newTestWalletService()
	repo.balances["1"] = dec("2")

	seeded, err := svc.Seed(context.Background(), "u1", models.SeedRequest{
		Balances: map[string]string{"BTC": "10", "ETH": "50"},
	})
	require.NoError(t, err)

	require.Len(t, seeded, 2)
	assert.True(t, repo.balances["1"].Equal(dec("10")))
	assert.True(t, repo.balances["2"].Equal(dec("50")))
	assert.Empty(t, repo.transactions["1"], "seeding writes no ledger records")
}

func TestSeedRejectsUnknownTokenAndNegativeAmount(t *testing.T) {
	svc, repo := newTestWalletService()

	_, err := svc.Seed(context.Background(), "u1", models.SeedRequest{
		Balances: map[string]string{"NOPE": "1"},
	})
	require.Error(t, err)

	_, err = svc.Seed(context.Background(), "u1", models.SeedRequest{
		Balances: map[string]string{"BTC": "-1"},
	})
	require.Error(t, err)

	assert.Empty(t, repo.balances)
}

func TestClearHistory(t *testing.T) {
	svc, repo := newTestWalletService()
	repo.balances["1"] = dec("10")

	_, err := svc.Send(context.Background(), "u1", "BTC", models.SendRequest{
		AmountRequest: models.AmountRequest{Amount: "1"},
		Recipient:     "@alice",
	})
	require.NoError(t, err)
	require.NotEmpty(t, repo.transactions["1"])

	require.NoError(t, svc.ClearHistory(context.Background(), "u1", "BTC"))

	history, err := svc.History(context.Background(), "u1", "BTC")
	require.NoError(t, err)
	assert.Empty(t, history)
}
