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

// PortfolioPipeline polls a Binance portfolio-margin account.
type PortfolioPipeline struct {
	tables store.TableSet
	source exchange.PortfolioSource
	val    *valuation.Service
	db     Persistence
}

// NewPortfolioPipeline creates a pipeline for one portfolio-margin account.
func NewPortfolioPipeline(tables store.TableSet, source exchange.PortfolioSource, val *valuation.Service, db Persistence) *PortfolioPipeline {
	return &PortfolioPipeline{tables: tables, source: source, val: val, db: db}
}

func (p *PortfolioPipeline) Account() string { return p.tables.Account }

func (p *PortfolioPipeline) Poll(ctx context.Context, at time.Time) error {
	rawBalances, err := p.source.FetchPortfolioBalances(ctx)
	if err != nil {
		return fmt.Errorf("account %s: %w", p.Account(), err)
	}
	rawUM, err := p.source.FetchUMPositions(ctx)
	if err != nil {
		return fmt.Errorf("account %s: %w", p.Account(), err)
	}
	rawCM, err := p.source.FetchCMPositions(ctx)
	if err != nil {
		return fmt.Errorf("account %s: %w", p.Account(), err)
	}

	valued, err := p.val.ValuePortfolio(ctx, rawBalances)
	if err != nil {
		return fmt.Errorf("account %s: valuing balances: %w", p.Account(), err)
	}

	snap := domain.NewAggregateEquity(at.Unix(), valued.Equity)
	if err := p.db.AppendEquity(ctx, p.tables, snap); err != nil {
		return err
	}
	if _, err := p.db.SyncUnifiedBalances(ctx, p.tables, valued.Balances); err != nil {
		return err
	}

	if _, err := p.db.SyncPositions(ctx, p.tables, domain.LedgerUM, valuation.Positions(rawUM)); err != nil {
		return err
	}
	if _, err := p.db.SyncPositions(ctx, p.tables, domain.LedgerCM, valuation.Positions(rawCM)); err != nil {
		return err
	}
	return nil
}
