package store

import (
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/traderops/snaptrak/internal/domain"
)

// TableSpec describes one persisted table: its identifier, key column and
// value columns. Specs are only ever produced by the schema registry below,
// from validated account names, so identifiers are statically enumerable and
// never assembled ad hoc.
type TableSpec struct {
	Name      string
	KeyCol    string
	ValueCols []string
	keyType   string
}

// Ident returns the quoted SQL identifier for the table.
func (s TableSpec) Ident() string {
	return pgx.Identifier{s.Name}.Sanitize()
}

// DDL returns the idempotent CREATE TABLE statement for the spec.
func (s TableSpec) DDL() string {
	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s %s",
		s.Ident(), pgx.Identifier{s.KeyCol}.Sanitize(), s.keyType)
	for _, col := range s.ValueCols {
		ddl += fmt.Sprintf(", %s DOUBLE PRECISION", pgx.Identifier{col}.Sanitize())
	}
	return ddl + ")"
}

// TableSet is the keyed namespace of one account: every table the account
// owns, derived from its validated name and shape.
type TableSet struct {
	Account string
	Shape   domain.Shape
}

// NewTableSet validates the account name and builds its table set.
func NewTableSet(account string, shape domain.Shape) (TableSet, error) {
	if err := domain.ValidateAccountName(account); err != nil {
		return TableSet{}, err
	}
	return TableSet{Account: account, Shape: shape}, nil
}

// Equity returns the append-only equity table. Classic accounts log the
// spot/UM/CM split; unified and portfolio accounts log one aggregate figure.
func (ts TableSet) Equity() TableSpec {
	cols := []string{"equity"}
	if ts.Shape == domain.ShapeClassic {
		cols = []string{"spot_equity", "um_equity", "cm_equity"}
	}
	return TableSpec{
		Name:      ts.Account + "_total_equity",
		KeyCol:    "timestamp",
		ValueCols: cols,
		keyType:   "BIGINT",
	}
}

// SpotBalances returns the classic spot balance table.
func (ts TableSet) SpotBalances() TableSpec {
	return ts.keyed(ts.Account+"_coin_balance", "asset", "total_balance")
}

// MarginBalances returns the classic UM or CM balance table.
func (ts TableSet) MarginBalances(ledger domain.Ledger) TableSpec {
	return ts.keyed(fmt.Sprintf("%s_%s_coin_balance", ts.Account, ledger), "asset",
		"wallet_balance", "unrealized_profit", "total_balance")
}

// UnifiedBalances returns the portfolio-margin balance table.
func (ts TableSet) UnifiedBalances() TableSpec {
	return ts.keyed(ts.Account+"_coin_balance", "asset",
		"total_balance", "borrowed", "um_balance", "cm_balance")
}

// CoinBalances returns the unified wallet balance table.
func (ts TableSet) CoinBalances() TableSpec {
	return ts.keyed(ts.Account+"_coin_balance", "coin", "balance")
}

// Positions returns the position table for a ledger. Unified wallets have a
// single position table; classic position tables carry no notional column.
func (ts TableSet) Positions(ledger domain.Ledger) TableSpec {
	if ledger == domain.LedgerUnified {
		return ts.keyed(ts.Account+"_positions", "symbol", "contracts", "unrealized_pnl", "notional")
	}
	cols := []string{"contracts", "unrealized_pnl", "notional"}
	if ts.Shape == domain.ShapeClassic {
		cols = []string{"contracts", "unrealized_pnl"}
	}
	return ts.keyed(fmt.Sprintf("%s_%s_positions", ts.Account, ledger), "symbol", cols...)
}

// Specs enumerates every table of the account, in creation order.
func (ts TableSet) Specs() []TableSpec {
	switch ts.Shape {
	case domain.ShapeUnified:
		return []TableSpec{ts.Equity(), ts.CoinBalances(), ts.Positions(domain.LedgerUnified)}
	case domain.ShapePortfolio:
		return []TableSpec{
			ts.Equity(), ts.UnifiedBalances(),
			ts.Positions(domain.LedgerUM), ts.Positions(domain.LedgerCM),
		}
	default:
		return []TableSpec{
			ts.Equity(), ts.SpotBalances(),
			ts.MarginBalances(domain.LedgerUM), ts.MarginBalances(domain.LedgerCM),
			ts.Positions(domain.LedgerUM), ts.Positions(domain.LedgerCM),
		}
	}
}

func (ts TableSet) keyed(name, keyCol string, cols ...string) TableSpec {
	return TableSpec{Name: name, KeyCol: keyCol, ValueCols: cols, keyType: "TEXT PRIMARY KEY"}
}
