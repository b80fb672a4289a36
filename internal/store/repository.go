package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/traderops/snaptrak/internal/domain"
	"github.com/traderops/snaptrak/internal/reconcile"
)

// AppendEquity inserts one immutable equity row. Prior rows are never
// touched; the caller guarantees at most one append per poll.
func (s *Store) AppendEquity(ctx context.Context, ts TableSet, snap domain.EquitySnapshot) error {
	spec := ts.Equity()
	if len(snap.Values) != len(spec.ValueCols) {
		return fmt.Errorf("%s: %d equity values for %d columns", spec.Name, len(snap.Values), len(spec.ValueCols))
	}

	cols := []string{pgx.Identifier{spec.KeyCol}.Sanitize()}
	placeholders := []string{"$1"}
	args := []any{snap.Timestamp}
	for i, col := range spec.ValueCols {
		cols = append(cols, pgx.Identifier{col}.Sanitize())
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
		args = append(args, snap.Values[i].InexactFloat64())
	}

	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		spec.Ident(), strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if _, err := s.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("appending equity to %s: %w", spec.Name, err)
	}
	return nil
}

// EquityRow is one row of an account's equity history.
type EquityRow struct {
	Timestamp int64
	Values    []float64
}

// EquityHistory returns the account's equity rows ordered by timestamp.
func (s *Store) EquityHistory(ctx context.Context, ts TableSet) ([]EquityRow, error) {
	spec := ts.Equity()
	cols := []string{pgx.Identifier{spec.KeyCol}.Sanitize()}
	for _, col := range spec.ValueCols {
		cols = append(cols, pgx.Identifier{col}.Sanitize())
	}

	rows, err := s.pool.Query(ctx, fmt.Sprintf("SELECT %s FROM %s ORDER BY %s",
		strings.Join(cols, ", "), spec.Ident(), pgx.Identifier{spec.KeyCol}.Sanitize()))
	if err != nil {
		return nil, fmt.Errorf("reading equity history from %s: %w", spec.Name, err)
	}
	defer rows.Close()

	var history []EquityRow
	for rows.Next() {
		row := EquityRow{Values: make([]float64, len(spec.ValueCols))}
		dest := make([]any, 0, len(row.Values)+1)
		dest = append(dest, &row.Timestamp)
		for i := range row.Values {
			dest = append(dest, &row.Values[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning equity row: %w", err)
		}
		history = append(history, row)
	}
	return history, rows.Err()
}

// SyncSpotBalances reconciles the classic spot balance table.
func (s *Store) SyncSpotBalances(ctx context.Context, ts TableSet, balances []domain.SpotBalance) (reconcile.Result, error) {
	return syncInTx(ctx, s, ts.SpotBalances(), balances,
		func(b domain.SpotBalance) string { return b.Asset },
		func(b domain.SpotBalance) []any { return []any{b.Total().InexactFloat64()} })
}

// SyncMarginBalances reconciles a classic UM or CM balance table.
func (s *Store) SyncMarginBalances(ctx context.Context, ts TableSet, ledger domain.Ledger, balances []domain.MarginBalance) (reconcile.Result, error) {
	return syncInTx(ctx, s, ts.MarginBalances(ledger), balances,
		func(b domain.MarginBalance) string { return b.Asset },
		func(b domain.MarginBalance) []any {
			return []any{
				b.WalletBalance.InexactFloat64(),
				b.UnrealizedPnL.InexactFloat64(),
				b.Total().InexactFloat64(),
			}
		})
}

// SyncUnifiedBalances reconciles the portfolio-margin balance table.
func (s *Store) SyncUnifiedBalances(ctx context.Context, ts TableSet, balances []domain.UnifiedBalance) (reconcile.Result, error) {
	return syncInTx(ctx, s, ts.UnifiedBalances(), balances,
		func(b domain.UnifiedBalance) string { return b.Asset },
		func(b domain.UnifiedBalance) []any {
			return []any{
				b.TotalWalletBalance.InexactFloat64(),
				b.CrossMarginBorrowed.InexactFloat64(),
				b.UMWalletBalance.InexactFloat64(),
				b.CMWalletBalance.InexactFloat64(),
			}
		})
}

// SyncCoinBalances reconciles the unified wallet balance table.
func (s *Store) SyncCoinBalances(ctx context.Context, ts TableSet, coins []domain.CoinBalance) (reconcile.Result, error) {
	return syncInTx(ctx, s, ts.CoinBalances(), coins,
		func(c domain.CoinBalance) string { return c.Coin },
		func(c domain.CoinBalance) []any { return []any{c.Balance.InexactFloat64()} })
}

// SyncPositions reconciles a position table.
func (s *Store) SyncPositions(ctx context.Context, ts TableSet, ledger domain.Ledger, positions []domain.Position) (reconcile.Result, error) {
	spec := ts.Positions(ledger)
	withNotional := len(spec.ValueCols) == 3
	return syncInTx(ctx, s, spec, positions,
		func(p domain.Position) string { return p.Symbol },
		func(p domain.Position) []any {
			args := []any{p.Contracts.InexactFloat64(), p.UnrealizedPnL.InexactFloat64()}
			if withNotional {
				args = append(args, p.Notional.InexactFloat64())
			}
			return args
		})
}

// syncInTx runs one reconciliation pass inside a single transaction so the
// upserts and sibling deletions commit atomically for this entity kind.
func syncInTx[T any](ctx context.Context, s *Store, spec TableSpec, rows []T, key func(T) string, args func(T) []any) (reconcile.Result, error) {
	var result reconcile.Result
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var err error
		result, err = reconcile.Sync(ctx, newTable(tx, spec, key, args), rows, key)
		return err
	})
	if err != nil {
		return reconcile.Result{}, fmt.Errorf("reconciling %s: %w", spec.Name, err)
	}
	return result, nil
}
