package domain

import "github.com/shopspring/decimal"

// EquitySnapshot is one append-only equity observation. Values are ordered to
// match the equity columns of the account's shape: a single aggregate figure
// for unified and portfolio accounts, the spot/UM/CM split for classic ones.
type EquitySnapshot struct {
	Timestamp int64
	Values    []decimal.Decimal
}

// NewAggregateEquity builds a single-figure snapshot.
func NewAggregateEquity(ts int64, equity decimal.Decimal) EquitySnapshot {
	return EquitySnapshot{Timestamp: ts, Values: []decimal.Decimal{equity}}
}

// NewClassicEquity builds a spot/UM/CM split snapshot.
func NewClassicEquity(ts int64, spot, um, cm decimal.Decimal) EquitySnapshot {
	return EquitySnapshot{Timestamp: ts, Values: []decimal.Decimal{spot, um, cm}}
}
