package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	apperrors "bcmoney-backend/internal/common/errors"
	marketmodels "bcmoney-backend/internal/features/market/models"
	marketservice "bcmoney-backend/internal/features/market/service"
	"bcmoney-backend/internal/features/wallet/models"
	"bcmoney-backend/internal/features/wallet/repository"
)

type WalletService interface {
	Balances(ctx context.Context, uid string) ([]models.TokenBalance, error)
	Balance(ctx context.Context, uid, tokenSymbol string) (*models.TokenBalance, error)
	Deposit(ctx context.Context, uid, tokenSymbol string, req models.DepositRequest) (*models.TransferResult, error)
	Send(ctx context.Context, uid, tokenSymbol string, req models.SendRequest) (*models.TransferResult, error)
	Withdraw(ctx context.Context, uid, tokenSymbol string, req models.WithdrawRequest) (*models.TransferResult, error)
	Trade(ctx context.Context, uid, sourceSymbol string, req models.TradeRequest) (*models.TradeResult, error)
	Seed(ctx context.Context, uid string, req models.SeedRequest) ([]models.TokenBalance, error)
	History(ctx context.Context, uid, tokenSymbol string) ([]models.Transaction, error)
	ClearHistory(ctx context.Context, uid, tokenSymbol string) error
}

// HandleResolver maps a P2P handle to the uid that owns it. The profile
// service satisfies this.
type HandleResolver interface {
	ResolveHandle(ctx context.Context, handle string) (string, error)
}

type walletService struct {
	repo     repository.WalletRepository
	market   marketservice.MarketService
	resolver HandleResolver
	locks    keyedLocks
}

func NewWalletService(repo repository.WalletRepository, market marketservice.MarketService, resolver HandleResolver) WalletService {
	return &walletService{repo: repo, market: market, resolver: resolver}
}

func (s *walletService) Balances(ctx context.Context, uid string) ([]models.TokenBalance, error) {
	return s.repo.ListBalances(ctx, uid)
}

func (s *walletService) Balance(ctx context.Context, uid, tokenSymbol string) (*models.TokenBalance, error) {
	token, err := s.resolveToken(tokenSymbol)
	if err != nil {
		return nil, err
	}

	balance, err := s.repo.GetBalance(ctx, uid, token.ID)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		// A never-credited balance reads as zero, not as an error.
		balance = &models.TokenBalance{ID: token.ID, TokenID: token.ID, Balance: decimal.Zero}
	}
	return balance, nil
}

// Deposit credits the balance, creating the document on first credit.
func (s *walletService) Deposit(ctx context.Context, uid, tokenSymbol string, req models.DepositRequest) (*models.TransferResult, error) {
	token, amount, err := s.validateAmount(tokenSymbol, req.Amount)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(uid, token.ID)
	defer unlock()

	current, err := s.currentBalance(ctx, uid, token.ID)
	if err != nil {
		return nil, err
	}

	newBalance := current.Add(amount).Round(marketservice.AmountPlaces)
	record := newRecord(token, amount, models.TypeDeposit, req.Source)

	entries := []models.LedgerEntry{{TokenID: token.ID, NewBalance: newBalance, Record: record}}
	if err := s.repo.ApplyEntries(ctx, uid, entries); err != nil {
		return nil, err
	}

	return &models.TransferResult{TokenID: token.ID, TokenSymbol: token.Symbol, Balance: newBalance, Transaction: record}, nil
}

// Send debits the balance toward another user's handle. The recipient
// must resolve to a registered account before anything is written; the
// debit and its transaction record then land atomically or not at all.
func (s *walletService) Send(ctx context.Context, uid, tokenSymbol string, req models.SendRequest) (*models.TransferResult, error) {
	if _, err := s.resolver.ResolveHandle(ctx, req.Recipient); err != nil {
		appErr, ok := apperrors.AsAppError(err)
		if ok && appErr.IsNotFound() {
			return nil, apperrors.NewUnknownRecipientError(req.Recipient)
		}
		return nil, err
	}
	return s.debit(ctx, uid, tokenSymbol, req.Amount, models.TypeSend, req.Recipient)
}

// Withdraw debits the balance toward an external address.
func (s *walletService) Withdraw(ctx context.Context, uid, tokenSymbol string, req models.WithdrawRequest) (*models.TransferResult, error) {
	return s.debit(ctx, uid, tokenSymbol, req.Amount, models.TypeWithdrawal, req.Address)
}

func (s *walletService) debit(ctx context.Context, uid, tokenSymbol, rawAmount string, txnType models.TransactionType, counterparty string) (*models.TransferResult, error) {
	token, amount, err := s.validateAmount(tokenSymbol, rawAmount)
	if err != nil {
		return nil, err
	}

	unlock := s.locks.lock(uid, token.ID)
	defer unlock()

	current, err := s.currentBalance(ctx, uid, token.ID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(current) {
		return nil, apperrors.NewInsufficientBalanceError(token.Symbol, current.String())
	}

	newBalance := current.Sub(amount).Round(marketservice.AmountPlaces)
	record := newRecord(token, amount.Neg(), txnType, counterparty)

	entries := []models.LedgerEntry{{TokenID: token.ID, NewBalance: newBalance, Record: record}}
	if err := s.repo.ApplyEntries(ctx, uid, entries); err != nil {
		return nil, err
	}

	return &models.TransferResult{TokenID: token.ID, TokenSymbol: token.Symbol, Balance: newBalance, Transaction: record}, nil
}

// Trade converts between two tokens at the catalog exchange rate. Both
// balance writes and both transaction records go in one atomic batch;
// both token keys are locked in deterministic order for the duration.
func (s *walletService) Trade(ctx context.Context, uid, sourceSymbol string, req models.TradeRequest) (*models.TradeResult, error) {
	source, amount, err := s.validateAmount(sourceSymbol, req.Amount)
	if err != nil {
		return nil, err
	}
	target, err := s.resolveToken(req.TargetSymbol)
	if err != nil {
		return nil, err
	}
	if source.ID == target.ID {
		return nil, apperrors.New(apperrors.ErrCodeSameToken, "Cannot trade a token for itself").
			WithDetail("token", source.Symbol)
	}

	unlock := s.locks.lockPair(uid, source.ID, target.ID)
	defer unlock()

	sourceBalance, err := s.currentBalance(ctx, uid, source.ID)
	if err != nil {
		return nil, err
	}
	if amount.GreaterThan(sourceBalance) {
		return nil, apperrors.NewInsufficientBalanceError(source.Symbol, sourceBalance.String())
	}

	targetBalance, err := s.currentBalance(ctx, uid, target.ID)
	if err != nil {
		return nil, err
	}

	rate, err := s.market.ExchangeRate(source.Symbol, target.Symbol)
	if err != nil {
		return nil, err
	}
	targetAmount := s.market.Convert(amount, rate)

	newSource := sourceBalance.Sub(amount).Round(marketservice.AmountPlaces)
	newTarget := targetBalance.Add(targetAmount).Round(marketservice.AmountPlaces)

	sellRecord := newRecord(source, amount.Neg(), models.TypeTrade, "Bought "+target.Symbol)
	buyRecord := newRecord(target, targetAmount, models.TypeTrade, "Sold "+source.Symbol)

	entries := []models.LedgerEntry{
		{TokenID: source.ID, NewBalance: newSource, Record: sellRecord},
		{TokenID: target.ID, NewBalance: newTarget, Record: buyRecord},
	}
	if err := s.repo.ApplyEntries(ctx, uid, entries); err != nil {
		return nil, err
	}

	return &models.TradeResult{
		Rate:          rate,
		SourceBalance: newSource,
		TargetBalance: newTarget,
		SourceRecord:  sellRecord,
		TargetRecord:  buyRecord,
	}, nil
}

// Seed overwrites balances with exact values, validated against the
// catalog. No ledger records are produced; this backs test data setup.
func (s *walletService) Seed(ctx context.Context, uid string, req models.SeedRequest) ([]models.TokenBalance, error) {
	balances := make([]models.TokenBalance, 0, len(req.Balances))
	for symbol, rawAmount := range req.Balances {
		token, err := s.resolveToken(symbol)
		if err != nil {
			return nil, err
		}
		amount, err := decimal.NewFromString(rawAmount)
		if err != nil || amount.IsNegative() {
			return nil, apperrors.NewInvalidAmountError(rawAmount)
		}
		balances = append(balances, models.TokenBalance{
			ID:      token.ID,
			TokenID: token.ID,
			Balance: amount.Round(marketservice.AmountPlaces),
		})
	}
	sort.Slice(balances, func(i, j int) bool { return balances[i].TokenID < balances[j].TokenID })

	if err := s.repo.SeedBalances(ctx, uid, balances); err != nil {
		return nil, err
	}
	return balances, nil
}

func (s *walletService) History(ctx context.Context, uid, tokenSymbol string) ([]models.Transaction, error) {
	token, err := s.resolveToken(tokenSymbol)
	if err != nil {
		return nil, err
	}
	return s.repo.ListTransactions(ctx, uid, token.ID)
}

func (s *walletService) ClearHistory(ctx context.Context, uid, tokenSymbol string) error {
	token, err := s.resolveToken(tokenSymbol)
	if err != nil {
		return err
	}
	return s.repo.ClearTransactions(ctx, uid, token.ID)
}

func (s *walletService) resolveToken(symbol string) (marketmodels.Token, error) {
	token, ok := s.market.BySymbol(symbol)
	if !ok {
		return marketmodels.Token{}, apperrors.NewUnknownTokenError(symbol)
	}
	return token, nil
}

// validateAmount enforces the client-side checks that must run before
// any write: the token exists and the amount is a positive number.
func (s *walletService) validateAmount(tokenSymbol, rawAmount string) (marketmodels.Token, decimal.Decimal, error) {
	token, err := s.resolveToken(tokenSymbol)
	if err != nil {
		return marketmodels.Token{}, decimal.Zero, err
	}

	amount, err := decimal.NewFromString(rawAmount)
	if err != nil || !amount.IsPositive() {
		return marketmodels.Token{}, decimal.Zero, apperrors.NewInvalidAmountError(rawAmount)
	}

	return token, amount.Round(marketservice.AmountPlaces), nil
}

func (s *walletService) currentBalance(ctx context.Context, uid, tokenID string) (decimal.Decimal, error) {
	balance, err := s.repo.GetBalance(ctx, uid, tokenID)
	if err != nil {
		return decimal.Zero, err
	}
	if balance == nil {
		return decimal.Zero, nil
	}
	return balance.Balance, nil
}

func newRecord(token marketmodels.Token, amount decimal.Decimal, txnType models.TransactionType, counterparty string) models.Transaction {
	return models.Transaction{
		ID:              uuid.New().String(),
		TokenBalanceID:  token.ID,
		TransactionDate: time.Now().UTC().Format(models.TransactionDateFormat),
		Amount:          amount,
		Type:            txnType,
		TokenSymbol:     token.Symbol,
		Counterparty:    counterparty,
	}
}

// keyedLocks serializes balance-mutating actions per (user, token) pair
// so a second action cannot read a balance the first is still changing.
// Serialization is per process; a multi-instance deployment would need
// a WATCH/EXEC retry loop at the store instead.
type keyedLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func (k *keyedLocks) get(key string) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	if _, ok := k.locks[key]; !ok {
		k.locks[key] = &sync.Mutex{}
	}
	return k.locks[key]
}

func (k *keyedLocks) lock(uid, tokenID string) func() {
	m := k.get(uid + ":" + tokenID)
	m.Lock()
	return m.Unlock
}

// lockPair acquires both token locks in sorted order to avoid deadlock
// between opposing trades.
func (k *keyedLocks) lockPair(uid, tokenA, tokenB string) func() {
	keys := []string{uid + ":" + tokenA, uid + ":" + tokenB}
	sort.Strings(keys)

	first, second := k.get(keys[0]), k.get(keys[1])
	first.Lock()
	second.Lock()
	return func() {
		second.Unlock()
		first.Unlock()
	}
}
