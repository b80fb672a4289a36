package poller

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/traderops/snaptrak/internal/domain"
	"github.com/traderops/snaptrak/internal/exchange"
	"github.com/traderops/snaptrak/internal/reconcile"
	"github.com/traderops/snaptrak/internal/store"
	"github.com/traderops/snaptrak/internal/valuation"
)

type fakePersistence struct {
	ops    []string
	snaps  []domain.EquitySnapshot
	failOn string
}

func (p *fakePersistence) record(op string) error {
	if op == p.failOn {
		return errors.New(op + " failed")
	}
	p.ops = append(p.ops, op)
	return nil
}

func (p *fakePersistence) AppendEquity(_ context.Context, _ store.TableSet, snap domain.EquitySnapshot) error {
	p.snaps = append(p.snaps, snap)
	return p.record("equity")
}

func (p *fakePersistence) SyncSpotBalances(_ context.Context, _ store.TableSet, _ []domain.SpotBalance) (reconcile.Result, error) {
	return reconcile.Result{}, p.record("balances:spot")
}

func (p *fakePersistence) SyncMarginBalances(_ context.Context, _ store.TableSet, ledger domain.Ledger, _ []domain.MarginBalance) (reconcile.Result, error) {
	return reconcile.Result{}, p.record("balances:" + string(ledger))
}

func (p *fakePersistence) SyncUnifiedBalances(_ context.Context, _ store.TableSet, _ []domain.UnifiedBalance) (reconcile.Result, error) {
	return reconcile.Result{}, p.record("balances:unified")
}

func (p *fakePersistence) SyncCoinBalances(_ context.Context, _ store.TableSet, _ []domain.CoinBalance) (reconcile.Result, error) {
	return reconcile.Result{}, p.record("balances:coin")
}

func (p *fakePersistence) SyncPositions(_ context.Context, _ store.TableSet, ledger domain.Ledger, _ []domain.Position) (reconcile.Result, error) {
	return reconcile.Result{}, p.record("positions:" + string(ledger))
}

type stubPrices struct{}

func (stubPrices) FetchPrices(_ context.Context, _ []string) (map[string]decimal.Decimal, error) {
	return map[string]decimal.Decimal{}, nil
}

type fakeClassicSource struct {
	err error
}

func (s *fakeClassicSource) FetchSpotBalances(_ context.Context) ([]exchange.SpotBalance, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []exchange.SpotBalance{{Asset: "USDT", Free: decimal.NewFromInt(1000)}}, nil
}

func (s *fakeClassicSource) FetchUMAccount(_ context.Context) (exchange.FuturesAccount, error) {
	return exchange.FuturesAccount{
		TotalWalletBalance: decimal.NewFromInt(500),
		Positions: []exchange.FuturesPosition{
			{Symbol: "BTCUSDT", PositionAmt: decimal.NewFromInt(1)},
		},
	}, nil
}

func (s *fakeClassicSource) FetchCMAccount(_ context.Context) (exchange.FuturesAccount, error) {
	return exchange.FuturesAccount{}, nil
}

type fakeUnifiedSource struct {
	state exchange.UnifiedState
	err   error
}

func (s *fakeUnifiedSource) FetchUnifiedState(_ context.Context) (exchange.UnifiedState, error) {
	return s.state, s.err
}

func classicTables(t *testing.T) store.TableSet {
	t.Helper()
	ts, err := store.NewTableSet("binance3", domain.ShapeClassic)
	if err != nil {
		t.Fatalf("building table set: %v", err)
	}
	return ts
}

func TestClassicPollOrdering(t *testing.T) {
	db := &fakePersistence{}
	val := valuation.NewService(stubPrices{}, nil, false)
	pipeline := NewClassicPipeline(classicTables(t), &fakeClassicSource{}, val, db)

	at := time.Unix(1700000000, 0)
	if err := pipeline.Poll(context.Background(), at); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"equity", "balances:spot", "balances:um", "balances:cm", "positions:um", "positions:cm"}
	if fmt.Sprint(db.ops) != fmt.Sprint(want) {
		t.Errorf("ops = %v, want %v", db.ops, want)
	}

	if len(db.snaps) != 1 {
		t.Fatalf("equity snapshots = %d, want 1", len(db.snaps))
	}
	if db.snaps[0].Timestamp != 1700000000 {
		t.Errorf("timestamp = %d, want poll start seconds", db.snaps[0].Timestamp)
	}
	if len(db.snaps[0].Values) != 3 {
		t.Errorf("classic snapshot has %d values, want 3", len(db.snaps[0].Values))
	}
}

func TestClassicPollFetchFailureWritesNothing(t *testing.T) {
	db := &fakePersistence{}
	val := valuation.NewService(stubPrices{}, nil, false)
	source := &fakeClassicSource{err: errors.New("network down")}
	pipeline := NewClassicPipeline(classicTables(t), source, val, db)

	if err := pipeline.Poll(context.Background(), time.Now()); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
	if len(db.ops) != 0 {
		t.Errorf("ops = %v, want none after failed fetch", db.ops)
	}
}

func TestClassicPollBalanceFailureSkipsPositions(t *testing.T) {
	db := &fakePersistence{failOn: "balances:um"}
	val := valuation.NewService(stubPrices{}, nil, false)
	pipeline := NewClassicPipeline(classicTables(t), &fakeClassicSource{}, val, db)

	if err := pipeline.Poll(context.Background(), time.Now()); err == nil {
		t.Fatal("expected balance sync error to propagate")
	}
	for _, op := range db.ops {
		if op == "positions:um" || op == "positions:cm" {
			t.Errorf("positions were reconciled after a balance failure: %v", db.ops)
		}
	}
	// Spot balances committed before the failure stay committed.
	if len(db.ops) == 0 || db.ops[0] != "equity" {
		t.Errorf("ops = %v, want equity appended first", db.ops)
	}
}

func TestUnifiedPoll(t *testing.T) {
	ts, err := store.NewTableSet("bybit1", domain.ShapeUnified)
	if err != nil {
		t.Fatalf("building table set: %v", err)
	}
	db := &fakePersistence{}
	source := &fakeUnifiedSource{state: exchange.UnifiedState{
		TotalEquity: decimal.NewFromInt(42),
		Coins:       []exchange.UnifiedCoin{{Coin: "BTC", Balance: decimal.NewFromInt(1)}},
	}}
	pipeline := NewUnifiedPipeline(ts, source, db)

	if err := pipeline.Poll(context.Background(), time.Unix(1700000001, 0)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"equity", "balances:coin", "positions:unified"}
	if fmt.Sprint(db.ops) != fmt.Sprint(want) {
		t.Errorf("ops = %v, want %v", db.ops, want)
	}
	if !db.snaps[0].Values[0].Equal(decimal.NewFromInt(42)) {
		t.Errorf("equity = %s, want 42", db.snaps[0].Values[0])
	}
}

func TestUnifiedPollFetchFailureWritesNothing(t *testing.T) {
	ts, err := store.NewTableSet("bybit1", domain.ShapeUnified)
	if err != nil {
		t.Fatalf("building table set: %v", err)
	}
	db := &fakePersistence{}
	pipeline := NewUnifiedPipeline(ts, &fakeUnifiedSource{err: errors.New("timeout")}, db)

	if err := pipeline.Poll(context.Background(), time.Now()); err == nil {
		t.Fatal("expected fetch error to propagate")
	}
	if len(db.ops) != 0 {
		t.Errorf("ops = %v, want none", db.ops)
	}
}
