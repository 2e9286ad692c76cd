package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionType classifies a ledger movement.
type TransactionType string

const (
	TypeDeposit    TransactionType = "deposit"
	TypeWithdrawal TransactionType = "withdrawal"
	TypeSend       TransactionType = "send"
	TypeTrade      TransactionType = "trade"
)

// TransactionDateFormat is RFC3339 with fixed-width nanoseconds so that
// stored dates order correctly under plain string comparison.
const TransactionDateFormat = "2006-01-02T15:04:05.000000000Z"

// TokenBalance is the per-token holding document under a profile.
// Created lazily on first credit.
// @Description Balance for a single token
type TokenBalance struct {
	ID             string          `json:"id" example:"1" description:"Catalog token id"`
	TokenID        string          `json:"tokenId" example:"1"`
	Balance        decimal.Decimal `json:"balance" swaggertype:"string" example:"1250.00"`
	DepositAddress string          `json:"deposit_address,omitempty" example:"0x71C7656EC7ab88b098defB751B7401B5f6d8976F"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Transaction is one immutable ledger record nested under its token
// balance. Negative amounts are outflows.
// @Description Single wallet transaction
type Transaction struct {
	ID              string          `json:"id"`
	TokenBalanceID  string          `json:"tokenBalanceId" example:"1"`
	TransactionDate string          `json:"transactionDate" example:"2024-03-15T14:30:00.000000000Z"`
	Amount          decimal.Decimal `json:"amount" swaggertype:"string" example:"-4"`
	Type            TransactionType `json:"transactionType" example:"send"`
	TokenSymbol     string          `json:"tokenSymbol" example:"BTC"`
	Counterparty    string          `json:"recipientAccountId,omitempty" example:"@alice"`
}

// LedgerEntry pairs one balance's new value with the transaction that
// explains it. Entries belonging to the same user action are applied in
// a single atomic batch so the two can never diverge.
type LedgerEntry struct {
	TokenID    string
	NewBalance decimal.Decimal
	Record     Transaction
}

// AmountRequest is the shared shape for deposit/send/withdraw input.
type AmountRequest struct {
	Amount string `json:"amount" binding:"required" example:"4"`
}

// DepositRequest credits a balance.
type DepositRequest struct {
	AmountRequest
	Source string `json:"source,omitempty" example:"external"`
}

// SendRequest moves funds to another user by handle.
type SendRequest struct {
	AmountRequest
	Recipient string `json:"recipient" binding:"required" example:"@alice"`
}

// WithdrawRequest moves funds to an external address.
type WithdrawRequest struct {
	AmountRequest
	Address string `json:"address" binding:"required" example:"0x71C7656EC7ab88b098defB751B7401B5f6d8976F"`
}

// TradeRequest converts between two catalog tokens.
type TradeRequest struct {
	AmountRequest
	TargetSymbol string `json:"target_symbol" binding:"required" example:"ETH"`
}

// SeedRequest sets exact balances for test data, keyed by token symbol.
type SeedRequest struct {
	Balances map[string]string `json:"balances" binding:"required" example:"BTC:10"`
}

// TransferResult reports the balance after a single-token operation.
type TransferResult struct {
	TokenID     string          `json:"token_id"`
	TokenSymbol string          `json:"token_symbol"`
	Balance     decimal.Decimal `json:"balance" swaggertype:"string"`
	Transaction Transaction     `json:"transaction"`
}

// TradeResult reports both sides of a completed trade.
type TradeResult struct {
	Rate          decimal.Decimal `json:"rate" swaggertype:"string"`
	SourceBalance decimal.Decimal `json:"source_balance" swaggertype:"string"`
	TargetBalance decimal.Decimal `json:"target_balance" swaggertype:"string"`
	SourceRecord  Transaction     `json:"source_record"`
	TargetRecord  Transaction     `json:"target_record"`
}
