package domain

import "github.com/shopspring/decimal"

// Position is an open derivative position. Contracts is signed: positive for
// long, negative for short. A position with zero contracts is absent, not
// zero-valued.
type Position struct {
	Symbol        string
	Contracts     decimal.Decimal
	UnrealizedPnL decimal.Decimal
	Notional      decimal.Decimal
}

// IsZero reports whether the position has no open contracts.
func (p Position) IsZero() bool {
	return p.Contracts.IsZero()
}
