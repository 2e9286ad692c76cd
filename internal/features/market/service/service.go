package service

import (
	"strings"

	"github.com/shopspring/decimal"

	apperrors "bcmoney-backend/internal/common/errors"
	"bcmoney-backend/internal/features/market/models"
)

// AmountPlaces is the fixed storage precision for amounts and rates.
// Repeated trades must not drift, so every derived quantity is rounded
// here before it is persisted or returned.
const AmountPlaces = 8

// MarketService resolves catalog data and computes the pure trade
// derivations. It performs no I/O.
type MarketService interface {
	Catalog() []models.Token
	ByID(id string) (models.Token, bool)
	BySymbol(symbol string) (models.Token, bool)
	FilterByIDs(ids []string) []models.Token
	ExchangeRate(sourceSymbol, targetSymbol string) (decimal.Decimal, error)
	Convert(amount, rate decimal.Decimal) decimal.Decimal
}

type marketService struct {
	catalog  []models.Token
	byID     map[string]models.Token
	bySymbol map[string]models.Token
}

func NewMarketService() MarketService {
	s := &marketService{
		catalog:  models.Top30Tokens,
		byID:     make(map[string]models.Token, len(models.Top30Tokens)),
		bySymbol: make(map[string]models.Token, len(models.Top30Tokens)),
	}
	for _, t := range s.catalog {
		s.byID[t.ID] = t
		s.bySymbol[strings.ToUpper(t.Symbol)] = t
	}
	return s
}

func (s *marketService) Catalog() []models.Token {
	return s.catalog
}

func (s *marketService) ByID(id string) (models.Token, bool) {
	t, ok := s.byID[id]
	return t, ok
}

func (s *marketService) BySymbol(symbol string) (models.Token, bool) {
	t, ok := s.bySymbol[strings.ToUpper(symbol)]
	return t, ok
}

// FilterByIDs returns the catalog entries whose id is in ids, preserving
// catalog order. Ids absent from the catalog are silently dropped, so
// stale watchlist or portfolio entries never crash a derivation.
func (s *marketService) FilterByIDs(ids []string) []models.Token {
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}

	out := make([]models.Token, 0, len(want))
	for _, t := range s.catalog {
		if _, ok := want[t.ID]; ok {
			out = append(out, t)
		}
	}
	return out
}

// ExchangeRate returns price(source)/price(target) rounded to the fixed
// precision.
func (s *marketService) ExchangeRate(sourceSymbol, targetSymbol string) (decimal.Decimal, error) {
	source, ok := s.BySymbol(sourceSymbol)
	if !ok {
		return decimal.Zero, apperrors.NewUnknownTokenError(sourceSymbol)
	}
	target, ok := s.BySymbol(targetSymbol)
	if !ok {
		return decimal.Zero, apperrors.NewUnknownTokenError(targetSymbol)
	}

	return decimal.NewFromFloat(source.Price).
		DivRound(decimal.NewFromFloat(target.Price), AmountPlaces), nil
}

// Convert applies a rate to an amount at storage precision.
func (s *marketService) Convert(amount, rate decimal.Decimal) decimal.Decimal {
	return amount.Mul(rate).Round(AmountPlaces)
}
