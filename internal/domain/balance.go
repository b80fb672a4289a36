package domain

import "github.com/shopspring/decimal"

// SpotBalance is a valued spot ledger holding.
type SpotBalance struct {
	Asset    string
	Free     decimal.Decimal
	Locked   decimal.Decimal
	PriceUSD decimal.Decimal
}

// Total returns free + locked.
func (b SpotBalance) Total() decimal.Decimal {
	return b.Free.Add(b.Locked)
}

// Value returns the USD-equivalent value of the holding.
func (b SpotBalance) Value() decimal.Decimal {
	return b.Total().Mul(b.PriceUSD)
}

// IsZero reports whether every quantity field is exactly zero.
func (b SpotBalance) IsZero() bool {
	return b.Free.IsZero() && b.Locked.IsZero()
}

// MarginBalance is a valued UM or CM futures ledger asset.
type MarginBalance struct {
	Asset         string
	WalletBalance decimal.Decimal
	UnrealizedPnL decimal.Decimal
	PriceUSD      decimal.Decimal
}

// Total returns wallet balance + unrealized PnL, both asset-denominated.
func (b MarginBalance) Total() decimal.Decimal {
	return b.WalletBalance.Add(b.UnrealizedPnL)
}

// Value returns the USD-equivalent value of the asset.
func (b MarginBalance) Value() decimal.Decimal {
	return b.Total().Mul(b.PriceUSD)
}

// IsZero reports whether the wallet balance is exactly zero. A zero wallet
// balance with residual PnL dust is treated as absent, matching the exchange
// account payload semantics.
func (b MarginBalance) IsZero() bool {
	return b.WalletBalance.IsZero()
}

// UnifiedBalance is a valued portfolio-margin asset with cross-margin, UM and
// CM sub-fields. All quantities are asset-denominated.
type UnifiedBalance struct {
	Asset               string
	TotalWalletBalance  decimal.Decimal
	CrossMarginBorrowed decimal.Decimal
	UMWalletBalance     decimal.Decimal
	UMUnrealizedPnL     decimal.Decimal
	CMWalletBalance     decimal.Decimal
	CMUnrealizedPnL     decimal.Decimal
	PriceUSD            decimal.Decimal
}

// Value returns the USD-equivalent value including derivative PnL.
func (b UnifiedBalance) Value() decimal.Decimal {
	return b.TotalWalletBalance.
		Add(b.UMUnrealizedPnL).
		Add(b.CMUnrealizedPnL).
		Mul(b.PriceUSD)
}

// IsZero reports whether the wallet balance is exactly zero.
func (b UnifiedBalance) IsZero() bool {
	return b.TotalWalletBalance.IsZero()
}

// CoinBalance is a plain per-coin wallet balance from a unified account.
type CoinBalance struct {
	Coin    string
	Balance decimal.Decimal
}

// IsZero reports whether the balance is exactly zero.
func (b CoinBalance) IsZero() bool {
	return b.Balance.IsZero()
}
