package poller

import (
	"context"
	"fmt"
	"time"

	"github.com/traderops/snaptrak/internal/domain"
	"github.com/traderops/snaptrak/internal/exchange"
	"github.com/traderops/snaptrak/internal/store"
	"github.com/traderops/snaptrak/internal/valuation"
)

// UnifiedPipeline polls a unified wallet account. The exchange reports
// aggregate equity itself, so no pricing pass is involved.
type UnifiedPipeline struct {
	tables store.TableSet
	source exchange.UnifiedSource
	db     Persistence
}

// NewUnifiedPipeline creates a pipeline for one unified account.
func NewUnifiedPipeline(tables store.TableSet, source exchange.UnifiedSource, db Persistence) *UnifiedPipeline {
	return &UnifiedPipeline{tables: tables, source: source, db: db}
}

func (p *UnifiedPipeline) Account() string { return p.tables.Account }

func (p *UnifiedPipeline) Poll(ctx context.Context, at time.Time) error {
	state, err := p.source.FetchUnifiedState(ctx)
	if err != nil {
		return fmt.Errorf("account %s: %w", p.Account(), err)
	}

	valued := valuation.ValueUnified(state)

	snap := domain.NewAggregateEquity(at.Unix(), valued.Equity)
	if err := p.db.AppendEquity(ctx, p.tables, snap); err != nil {
		return err
	}
	if _, err := p.db.SyncCoinBalances(ctx, p.tables, valued.Coins); err != nil {
		return err
	}
	if _, err := p.db.SyncPositions(ctx, p.tables, domain.LedgerUnified, valued.Positions); err != nil {
		return err
	}
	return nil
}
