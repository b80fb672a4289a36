// Package exchange defines the consumed exchange capabilities and their
// Binance and Bybit implementations. All numeric payload fields are parsed
// into decimals at this boundary; callers never see exchange strings.
package exchange

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// SpotBalance is a raw spot account balance entry.
type SpotBalance struct {
	Asset  string
	Free   decimal.Decimal
	Locked decimal.Decimal
}

// MarginAsset is a raw UM or CM futures account asset entry.
type MarginAsset struct {
	Asset            string
	WalletBalance    decimal.Decimal
	UnrealizedProfit decimal.Decimal
}

// FuturesPosition is a raw derivative position entry.
type FuturesPosition struct {
	Symbol           string
	PositionAmt      decimal.Decimal
	UnrealizedProfit decimal.Decimal
	Notional         decimal.Decimal
}

// FuturesAccount is a raw UM or CM futures account payload.
type FuturesAccount struct {
	Assets                []MarginAsset
	Positions             []FuturesPosition
	TotalWalletBalance    decimal.Decimal
	TotalUnrealizedProfit decimal.Decimal
}

// PortfolioBalance is a raw portfolio-margin balance entry with
// cross-margin, UM and CM sub-fields.
type PortfolioBalance struct {
	Asset               string
	TotalWalletBalance  decimal.Decimal
	CrossMarginBorrowed decimal.Decimal
	UMWalletBalance     decimal.Decimal
	UMUnrealizedPNL     decimal.Decimal
	CMWalletBalance     decimal.Decimal
	CMUnrealizedPNL     decimal.Decimal
}

// UnifiedState is a raw unified wallet payload: the account-level equity
// figure, per-coin wallet balances and open derivative positions.
type UnifiedState struct {
	TotalEquity decimal.Decimal
	Coins       []UnifiedCoin
	Positions   []FuturesPosition
}

// UnifiedCoin is a per-coin balance within a unified wallet.
type UnifiedCoin struct {
	Coin    string
	Balance decimal.Decimal
}

// PriceSource returns last trade prices for the given quote pairs in one
// batched call. Symbols absent from the response were not priced.
type PriceSource interface {
	FetchPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error)
}

// PairLister returns the set of actively trading quote pair symbols. It is
// called once at startup to filter out illiquid or delisted pairs before
// tickers are requested.
type PairLister interface {
	ListActiveQuotePairs(ctx context.Context) (map[string]struct{}, error)
}

// ClassicSource fetches the three ledgers of a spot+UM+CM account.
type ClassicSource interface {
	FetchSpotBalances(ctx context.Context) ([]SpotBalance, error)
	FetchUMAccount(ctx context.Context) (FuturesAccount, error)
	FetchCMAccount(ctx context.Context) (FuturesAccount, error)
}

// PortfolioSource fetches a portfolio-margin account's balances and the
// position risk of both derivative ledgers.
type PortfolioSource interface {
	FetchPortfolioBalances(ctx context.Context) ([]PortfolioBalance, error)
	FetchUMPositions(ctx context.Context) ([]FuturesPosition, error)
	FetchCMPositions(ctx context.Context) ([]FuturesPosition, error)
}

// UnifiedSource fetches the full state of a unified wallet in one pass.
type UnifiedSource interface {
	FetchUnifiedState(ctx context.Context) (UnifiedState, error)
}

func parseDecimal(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("parsing %s %q: %w", field, s, err)
	}
	return d, nil
}
