package domain

import (
	"fmt"
	"regexp"
)

// Ledger identifies a sub-account balance/position domain within an exchange account.
type Ledger string

const (
	LedgerSpot    Ledger = "spot"
	LedgerUM      Ledger = "um"
	LedgerCM      Ledger = "cm"
	LedgerUnified Ledger = "unified"
)

// Shape classifies how an exchange account is split into ledgers.
type Shape string

const (
	// ShapeUnified is a single unified wallet reporting its own total equity
	// (Bybit unified trading accounts).
	ShapeUnified Shape = "unified"
	// ShapePortfolio is a cross-collateralized portfolio-margin account with
	// per-asset cross-margin/UM/CM sub-fields (Binance portfolio margin).
	ShapePortfolio Shape = "portfolio"
	// ShapeClassic is a spot + UM + CM multi-ledger account.
	ShapeClassic Shape = "classic"
)

// ParseShape validates and converts a configuration string to a Shape.
func ParseShape(s string) (Shape, error) {
	switch Shape(s) {
	case ShapeUnified, ShapePortfolio, ShapeClassic:
		return Shape(s), nil
	}
	return "", fmt.Errorf("unknown account shape %q", s)
}

// StableAsset is the quote currency all valuations are denominated in.
// It is priced at exactly 1 by definition and never looked up.
const StableAsset = "USDT"

var accountNameRe = regexp.MustCompile(`^[a-z][a-z0-9_]{0,31}$`)

// ValidateAccountName rejects account names that cannot safely become part of
// a table identifier. Names are checked once at configuration load so every
// later use through the schema registry is known-safe.
func ValidateAccountName(name string) error {
	if !accountNameRe.MatchString(name) {
		return fmt.Errorf("invalid account name %q: must match %s", name, accountNameRe.String())
	}
	return nil
}
