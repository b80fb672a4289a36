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

// ClassicPipeline polls a spot+UM+CM multi-ledger account.
type ClassicPipeline struct {
	tables store.TableSet
	source exchange.ClassicSource
	val    *valuation.Service
	db     Persistence
}

// NewClassicPipeline creates a pipeline for one classic account.
func NewClassicPipeline(tables store.TableSet, source exchange.ClassicSource, val *valuation.Service, db Persistence) *ClassicPipeline {
	return &ClassicPipeline{tables: tables, source: source, val: val, db: db}
}

func (p *ClassicPipeline) Account() string { return p.tables.Account }

func (p *ClassicPipeline) Poll(ctx context.Context, at time.Time) error {
	rawSpot, err := p.source.FetchSpotBalances(ctx)
	if err != nil {
		return fmt.Errorf("account %s: %w", p.Account(), err)
	}
	rawUM, err := p.source.FetchUMAccount(ctx)
	if err != nil {
		return fmt.Errorf("account %s: %w", p.Account(), err)
	}
	rawCM, err := p.source.FetchCMAccount(ctx)
	if err != nil {
		return fmt.Errorf("account %s: %w", p.Account(), err)
	}

	spot, err := p.val.ValueSpot(ctx, rawSpot)
	if err != nil {
		return fmt.Errorf("account %s: valuing spot: %w", p.Account(), err)
	}
	um, err := p.val.ValueUM(ctx, rawUM)
	if err != nil {
		return fmt.Errorf("account %s: valuing um: %w", p.Account(), err)
	}
	cm, err := p.val.ValueCM(ctx, rawCM)
	if err != nil {
		return fmt.Errorf("account %s: valuing cm: %w", p.Account(), err)
	}

	snap := domain.NewClassicEquity(at.Unix(), spot.Equity, um.Equity, cm.Equity)
	if err := p.db.AppendEquity(ctx, p.tables, snap); err != nil {
		return err
	}

	if _, err := p.db.SyncSpotBalances(ctx, p.tables, spot.Balances); err != nil {
		return err
	}
	if _, err := p.db.SyncMarginBalances(ctx, p.tables, domain.LedgerUM, um.Balances); err != nil {
		return err
	}
	if _, err := p.db.SyncMarginBalances(ctx, p.tables, domain.LedgerCM, cm.Balances); err != nil {
		return err
	}

	if _, err := p.db.SyncPositions(ctx, p.tables, domain.LedgerUM, um.Positions); err != nil {
		return err
	}
	if _, err := p.db.SyncPositions(ctx, p.tables, domain.LedgerCM, cm.Positions); err != nil {
		return err
	}
	return nil
}
