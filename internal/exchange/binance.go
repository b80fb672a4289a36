package exchange

import (
	"context"
	"fmt"

	"github.com/adshao/go-binance/v2"
	"github.com/adshao/go-binance/v2/delivery"
	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"github.com/traderops/snaptrak/internal/domain"
)

// BinanceClient implements ClassicSource, PriceSource and PairLister against
// the Binance spot, USDT-margined and coin-margined APIs.
type BinanceClient struct {
	spot *binance.Client
	um   *futures.Client
	cm   *delivery.Client
}

// NewBinanceClient creates a Binance client for one API-key pair.
func NewBinanceClient(apiKey, secretKey string) *BinanceClient {
	return &BinanceClient{
		spot: binance.NewClient(apiKey, secretKey),
		um:   futures.NewClient(apiKey, secretKey),
		cm:   delivery.NewClient(apiKey, secretKey),
	}
}

// FetchSpotBalances returns the spot account balances.
func (c *BinanceClient) FetchSpotBalances(ctx context.Context) ([]SpotBalance, error) {
	res, err := c.spot.NewGetAccountService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching spot account: %w", err)
	}

	balances := make([]SpotBalance, 0, len(res.Balances))
	for _, b := range res.Balances {
		free, err := parseDecimal("free", b.Free)
		if err != nil {
			return nil, err
		}
		locked, err := parseDecimal("locked", b.Locked)
		if err != nil {
			return nil, err
		}
		balances = append(balances, SpotBalance{Asset: b.Asset, Free: free, Locked: locked})
	}
	return balances, nil
}

// FetchUMAccount returns the USDT-margined futures account state.
func (c *BinanceClient) FetchUMAccount(ctx context.Context) (FuturesAccount, error) {
	res, err := c.um.NewGetAccountService().Do(ctx)
	if err != nil {
		return FuturesAccount{}, fmt.Errorf("fetching um account: %w", err)
	}

	acct := FuturesAccount{}
	if acct.TotalWalletBalance, err = parseDecimal("totalWalletBalance", res.TotalWalletBalance); err != nil {
		return FuturesAccount{}, err
	}
	if acct.TotalUnrealizedProfit, err = parseDecimal("totalUnrealizedProfit", res.TotalUnrealizedProfit); err != nil {
		return FuturesAccount{}, err
	}

	for _, a := range res.Assets {
		wallet, err := parseDecimal("walletBalance", a.WalletBalance)
		if err != nil {
			return FuturesAccount{}, err
		}
		pnl, err := parseDecimal("unrealizedProfit", a.UnrealizedProfit)
		if err != nil {
			return FuturesAccount{}, err
		}
		acct.Assets = append(acct.Assets, MarginAsset{Asset: a.Asset, WalletBalance: wallet, UnrealizedProfit: pnl})
	}

	for _, p := range res.Positions {
		amt, err := parseDecimal("positionAmt", p.PositionAmt)
		if err != nil {
			return FuturesAccount{}, err
		}
		pnl, err := parseDecimal("unrealizedProfit", p.UnrealizedProfit)
		if err != nil {
			return FuturesAccount{}, err
		}
		notional, err := parseDecimal("notional", p.Notional)
		if err != nil {
			return FuturesAccount{}, err
		}
		acct.Positions = append(acct.Positions, FuturesPosition{
			Symbol:           p.Symbol,
			PositionAmt:      amt,
			UnrealizedProfit: pnl,
			Notional:         notional,
		})
	}
	return acct, nil
}

// FetchCMAccount returns the coin-margined futures account state.
func (c *BinanceClient) FetchCMAccount(ctx context.Context) (FuturesAccount, error) {
	res, err := c.cm.NewGetAccountService().Do(ctx)
	if err != nil {
		return FuturesAccount{}, fmt.Errorf("fetching cm account: %w", err)
	}

	acct := FuturesAccount{}
	for _, a := range res.Assets {
		wallet, err := parseDecimal("walletBalance", a.WalletBalance)
		if err != nil {
			return FuturesAccount{}, err
		}
		pnl, err := parseDecimal("unrealizedProfit", a.UnrealizedProfit)
		if err != nil {
			return FuturesAccount{}, err
		}
		acct.Assets = append(acct.Assets, MarginAsset{Asset: a.Asset, WalletBalance: wallet, UnrealizedProfit: pnl})
	}

	for _, p := range res.Positions {
		amt, err := parseDecimal("positionAmt", p.PositionAmt)
		if err != nil {
			return FuturesAccount{}, err
		}
		pnl, err := parseDecimal("unrealizedProfit", p.UnrealizedProfit)
		if err != nil {
			return FuturesAccount{}, err
		}
		acct.Positions = append(acct.Positions, FuturesPosition{
			Symbol:           p.Symbol,
			PositionAmt:      amt,
			UnrealizedProfit: pnl,
		})
	}
	return acct, nil
}

// FetchPrices returns last trade prices for the given symbols in one batched
// ticker request.
func (c *BinanceClient) FetchPrices(ctx context.Context, symbols []string) (map[string]decimal.Decimal, error) {
	res, err := c.spot.NewListPricesService().Symbols(symbols).Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching prices: %w", err)
	}

	prices := make(map[string]decimal.Decimal, len(res))
	for _, p := range res {
		price, err := parseDecimal("price", p.Price)
		if err != nil {
			return nil, err
		}
		prices[p.Symbol] = price
	}
	return prices, nil
}

// ListActiveQuotePairs returns every actively trading spot symbol quoted in
// the stable asset.
func (c *BinanceClient) ListActiveQuotePairs(ctx context.Context) (map[string]struct{}, error) {
	info, err := c.spot.NewExchangeInfoService().Do(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetching exchange info: %w", err)
	}

	pairs := make(map[string]struct{})
	for _, s := range info.Symbols {
		if s.Status == "TRADING" && s.QuoteAsset == domain.StableAsset {
			pairs[s.Symbol] = struct{}{}
		}
	}
	return pairs, nil
}
