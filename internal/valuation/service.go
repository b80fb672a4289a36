// Package valuation turns raw exchange payloads into valued, filtered entity
// sets and aggregate equity figures. An entity is included only if at least
// one of its quantity fields is non-zero; every included non-stable asset is
// priced through one batched ticker lookup.
package valuation

import (
	"context"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/traderops/snaptrak/internal/domain"
	"github.com/traderops/snaptrak/internal/exchange"
)

// Service values account state for one exchange account.
type Service struct {
	prices             exchange.PriceSource
	activePairs        map[string]struct{}
	warnOnMissingPrice bool
}

// NewService creates a Service. activePairs is the set of quote pair symbols
// known to trade (nil disables the prefilter); warnOnMissingPrice controls
// whether a zero-price fallback is logged.
func NewService(prices exchange.PriceSource, activePairs map[string]struct{}, warnOnMissingPrice bool) *Service {
	return &Service{
		prices:             prices,
		activePairs:        activePairs,
		warnOnMissingPrice: warnOnMissingPrice,
	}
}

// SpotResult is a valued spot ledger.
type SpotResult struct {
	Balances []domain.SpotBalance
	Equity   decimal.Decimal
}

// ValueSpot filters, prices and aggregates spot balances.
// Equity = Σ (free + locked) × price.
func (s *Service) ValueSpot(ctx context.Context, raw []exchange.SpotBalance) (SpotResult, error) {
	included := lo.Filter(raw, func(b exchange.SpotBalance, _ int) bool {
		return !b.Free.IsZero() || !b.Locked.IsZero()
	})

	prices, err := s.resolvePrices(ctx, lo.Map(included, func(b exchange.SpotBalance, _ int) string { return b.Asset }))
	if err != nil {
		return SpotResult{}, err
	}

	result := SpotResult{Equity: decimal.Zero}
	for _, b := range included {
		balance := domain.SpotBalance{
			Asset:    b.Asset,
			Free:     b.Free,
			Locked:   b.Locked,
			PriceUSD: s.priceFor(b.Asset, prices),
		}
		result.Balances = append(result.Balances, balance)
		result.Equity = result.Equity.Add(balance.Value())
	}
	return result, nil
}

// MarginResult is a valued UM or CM futures ledger.
type MarginResult struct {
	Balances  []domain.MarginBalance
	Positions []domain.Position
	Equity    decimal.Decimal
}

// ValueUM filters and prices a USDT-margined account. The ledger is already
// quote-denominated, so equity = totalWalletBalance + totalUnrealizedProfit
// with no per-asset multiply.
func (s *Service) ValueUM(ctx context.Context, acct exchange.FuturesAccount) (MarginResult, error) {
	balances, _, err := s.valueMarginAssets(ctx, acct.Assets)
	if err != nil {
		return MarginResult{}, err
	}
	return MarginResult{
		Balances:  balances,
		Positions: Positions(acct.Positions),
		Equity:    acct.TotalWalletBalance.Add(acct.TotalUnrealizedProfit),
	}, nil
}

// ValueCM filters and prices a coin-margined account. Quantities are
// asset-denominated, so equity = Σ (walletBalance + unrealizedProfit) × price.
func (s *Service) ValueCM(ctx context.Context, acct exchange.FuturesAccount) (MarginResult, error) {
	balances, equity, err := s.valueMarginAssets(ctx, acct.Assets)
	if err != nil {
		return MarginResult{}, err
	}
	return MarginResult{
		Balances:  balances,
		Positions: Positions(acct.Positions),
		Equity:    equity,
	}, nil
}

func (s *Service) valueMarginAssets(ctx context.Context, raw []exchange.MarginAsset) ([]domain.MarginBalance, decimal.Decimal, error) {
	included := lo.Filter(raw, func(a exchange.MarginAsset, _ int) bool {
		return !a.WalletBalance.IsZero()
	})

	prices, err := s.resolvePrices(ctx, lo.Map(included, func(a exchange.MarginAsset, _ int) string { return a.Asset }))
	if err != nil {
		return nil, decimal.Zero, err
	}

	var balances []domain.MarginBalance
	equity := decimal.Zero
	for _, a := range included {
		balance := domain.MarginBalance{
			Asset:         a.Asset,
			WalletBalance: a.WalletBalance,
			UnrealizedPnL: a.UnrealizedProfit,
			PriceUSD:      s.priceFor(a.Asset, prices),
		}
		balances = append(balances, balance)
		equity = equity.Add(balance.Value())
	}
	return balances, equity, nil
}

// PortfolioResult is a valued portfolio-margin account.
type PortfolioResult struct {
	Balances []domain.UnifiedBalance
	Equity   decimal.Decimal
}

// ValuePortfolio filters and prices portfolio-margin balances.
// Equity = Σ (totalWalletBalance + umUnrealizedPNL + cmUnrealizedPNL) × price.
func (s *Service) ValuePortfolio(ctx context.Context, raw []exchange.PortfolioBalance) (PortfolioResult, error) {
	included := lo.Filter(raw, func(b exchange.PortfolioBalance, _ int) bool {
		return !b.TotalWalletBalance.IsZero()
	})

	prices, err := s.resolvePrices(ctx, lo.Map(included, func(b exchange.PortfolioBalance, _ int) string { return b.Asset }))
	if err != nil {
		return PortfolioResult{}, err
	}

	result := PortfolioResult{Equity: decimal.Zero}
	for _, b := range included {
		balance := domain.UnifiedBalance{
			Asset:               b.Asset,
			TotalWalletBalance:  b.TotalWalletBalance,
			CrossMarginBorrowed: b.CrossMarginBorrowed,
			UMWalletBalance:     b.UMWalletBalance,
			UMUnrealizedPnL:     b.UMUnrealizedPNL,
			CMWalletBalance:     b.CMWalletBalance,
			CMUnrealizedPnL:     b.CMUnrealizedPNL,
			PriceUSD:            s.priceFor(b.Asset, prices),
		}
		result.Balances = append(result.Balances, balance)
		result.Equity = result.Equity.Add(balance.Value())
	}
	return result, nil
}

// UnifiedResult is a valued unified wallet. The exchange reports equity
// directly, so no pricing pass is needed.
type UnifiedResult struct {
	Coins     []domain.CoinBalance
	Positions []domain.Position
	Equity    decimal.Decimal
}

// ValueUnified filters a unified wallet state.
func ValueUnified(state exchange.UnifiedState) UnifiedResult {
	coins := lo.FilterMap(state.Coins, func(c exchange.UnifiedCoin, _ int) (domain.CoinBalance, bool) {
		return domain.CoinBalance{Coin: c.Coin, Balance: c.Balance}, !c.Balance.IsZero()
	})
	return UnifiedResult{
		Coins:     coins,
		Positions: Positions(state.Positions),
		Equity:    state.TotalEquity,
	}
}

// Positions converts raw position entries, dropping everything with zero
// contracts: a flat position is absent, not zero-valued.
func Positions(raw []exchange.FuturesPosition) []domain.Position {
	return lo.FilterMap(raw, func(p exchange.FuturesPosition, _ int) (domain.Position, bool) {
		return domain.Position{
			Symbol:        p.Symbol,
			Contracts:     p.PositionAmt,
			UnrealizedPnL: p.UnrealizedProfit,
			Notional:      p.Notional,
		}, !p.PositionAmt.IsZero()
	})
}
