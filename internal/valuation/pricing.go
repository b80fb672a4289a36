package valuation

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"

	"github.com/traderops/snaptrak/internal/domain"
)

var one = decimal.NewFromInt(1)

// resolvePrices fetches last prices for every asset that needs one, in a
// single batched ticker call. The stable asset is never requested; assets
// without an active quote pair are skipped so the exchange is not asked for
// tickers it cannot serve. An empty need-set skips the call entirely.
func (s *Service) resolvePrices(ctx context.Context, assets []string) (map[string]decimal.Decimal, error) {
	symbols := lo.FilterMap(assets, func(asset string, _ int) (string, bool) {
		if asset == domain.StableAsset {
			return "", false
		}
		symbol := asset + domain.StableAsset
		if s.activePairs != nil {
			if _, ok := s.activePairs[symbol]; !ok {
				return "", false
			}
		}
		return symbol, true
	})
	symbols = lo.Uniq(symbols)

	if len(symbols) == 0 {
		return map[string]decimal.Decimal{}, nil
	}
	return s.prices.FetchPrices(ctx, symbols)
}

// priceFor returns the USD price for an asset: exactly 1 for the stable
// asset, the fetched ticker price when present, zero otherwise. A missing
// ticker never drops the asset; it is valued at zero so the holding stays
// visible even though equity is understated.
func (s *Service) priceFor(asset string, prices map[string]decimal.Decimal) decimal.Decimal {
	if asset == domain.StableAsset {
		return one
	}
	if p, ok := prices[asset+domain.StableAsset]; ok {
		return p
	}
	if s.warnOnMissingPrice {
		slog.Warn("valuation: no ticker for asset, pricing at zero", "asset", asset)
	}
	return decimal.Zero
}
