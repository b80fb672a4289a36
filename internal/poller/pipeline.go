// Package poller drives the fetch -> valuate -> reconcile cycle for each
// account on its own interval.
package poller

import (
	"context"
	"time"

	"github.com/traderops/snaptrak/internal/domain"
	"github.com/traderops/snaptrak/internal/reconcile"
	"github.com/traderops/snaptrak/internal/store"
)

// Pipeline is one account's poll cycle. Poll fetches the account state as of
// at, values it and reconciles persisted state. Within one poll the equity
// append and balance reconciliation always commit before position
// reconciliation begins.
type Pipeline interface {
	Account() string
	Poll(ctx context.Context, at time.Time) error
}

// Persistence is the slice of the store the pipelines write through.
type Persistence interface {
	AppendEquity(ctx context.Context, ts store.TableSet, snap domain.EquitySnapshot) error
	SyncSpotBalances(ctx context.Context, ts store.TableSet, balances []domain.SpotBalance) (reconcile.Result, error)
	SyncMarginBalances(ctx context.Context, ts store.TableSet, ledger domain.Ledger, balances []domain.MarginBalance) (reconcile.Result, error)
	SyncUnifiedBalances(ctx context.Context, ts store.TableSet, balances []domain.UnifiedBalance) (reconcile.Result, error)
	SyncCoinBalances(ctx context.Context, ts store.TableSet, coins []domain.CoinBalance) (reconcile.Result, error)
	SyncPositions(ctx context.Context, ts store.TableSet, ledger domain.Ledger, positions []domain.Position) (reconcile.Result, error)
}
