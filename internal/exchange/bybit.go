package exchange

import (
	"context"
	"fmt"

	"github.com/hirokisan/bybit/v2"

	"github.com/traderops/snaptrak/internal/domain"
)

// BybitClient implements UnifiedSource against the Bybit v5 API.
type BybitClient struct {
	client *bybit.Client
}

// NewBybitClient creates a Bybit client for one API-key pair.
func NewBybitClient(apiKey, secretKey string) *BybitClient {
	return &BybitClient{client: bybit.NewClient().WithAuth(apiKey, secretKey)}
}

// FetchUnifiedState returns the unified wallet's total equity, per-coin
// balances and open linear positions.
func (c *BybitClient) FetchUnifiedState(ctx context.Context) (UnifiedState, error) {
	res, err := c.client.V5().Account().GetWalletBalance(bybit.AccountTypeV5UNIFIED, nil)
	if err != nil {
		return UnifiedState{}, fmt.Errorf("fetching wallet balance: %w", err)
	}
	if len(res.Result.List) == 0 {
		return UnifiedState{}, fmt.Errorf("wallet balance response has no account entry")
	}

	wallet := res.Result.List[0]
	state := UnifiedState{}
	if state.TotalEquity, err = parseDecimal("totalEquity", wallet.TotalEquity); err != nil {
		return UnifiedState{}, err
	}

	for _, coin := range wallet.Coin {
		balance, err := parseDecimal("walletBalance", coin.WalletBalance)
		if err != nil {
			return UnifiedState{}, err
		}
		state.Coins = append(state.Coins, UnifiedCoin{Coin: string(coin.Coin), Balance: balance})
	}

	positions, err := c.fetchPositions(ctx)
	if err != nil {
		return UnifiedState{}, err
	}
	state.Positions = positions
	return state, nil
}

func (c *BybitClient) fetchPositions(_ context.Context) ([]FuturesPosition, error) {
	settle := bybit.Coin(domain.StableAsset)
	res, err := c.client.V5().Position().GetPositionInfo(bybit.V5GetPositionInfoParam{
		Category:   bybit.CategoryV5Linear,
		SettleCoin: &settle,
	})
	if err != nil {
		return nil, fmt.Errorf("fetching positions: %w", err)
	}

	positions := make([]FuturesPosition, 0, len(res.Result.List))
	for _, p := range res.Result.List {
		size, err := parseDecimal("size", p.Size)
		if err != nil {
			return nil, err
		}
		pnl, err := parseDecimal("unrealisedPnl", p.UnrealisedPnl)
		if err != nil {
			return nil, err
		}
		notional, err := parseDecimal("positionValue", p.PositionValue)
		if err != nil {
			return nil, err
		}
		// Size is unsigned; the side carries the direction.
		if p.Side == bybit.SideSell {
			size = size.Neg()
		}
		positions = append(positions, FuturesPosition{
			Symbol:           string(p.Symbol),
			PositionAmt:      size,
			UnrealizedProfit: pnl,
			Notional:         notional,
		})
	}
	return positions, nil
}
