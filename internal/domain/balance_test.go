package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestSpotBalanceValue(t *testing.T) {
	b := SpotBalance{Asset: "BTC", Free: dec("0.3"), Locked: dec("0.2"), PriceUSD: dec("60000")}

	if !b.Total().Equal(dec("0.5")) {
		t.Errorf("total = %s, want 0.5", b.Total())
	}
	if !b.Value().Equal(dec("30000")) {
		t.Errorf("value = %s, want 30000", b.Value())
	}
}

func TestSpotBalanceIsZero(t *testing.T) {
	if !(SpotBalance{Asset: "BTC"}).IsZero() {
		t.Error("all-zero balance must be zero")
	}
	if (SpotBalance{Asset: "BTC", Locked: dec("0.1")}).IsZero() {
		t.Error("locked-only balance must not be zero")
	}
}

func TestUnifiedBalanceValueIncludesPnL(t *testing.T) {
	b := UnifiedBalance{
		Asset:              "BTC",
		TotalWalletBalance: dec("1"),
		UMUnrealizedPnL:    dec("0.2"),
		CMUnrealizedPnL:    dec("-0.1"),
		PriceUSD:           dec("60000"),
	}
	if !b.Value().Equal(dec("66000")) {
		t.Errorf("value = %s, want 66000", b.Value())
	}
}

func TestPositionIsZero(t *testing.T) {
	if !(Position{Symbol: "BTCUSDT"}).IsZero() {
		t.Error("zero-contract position must be zero")
	}
	if (Position{Symbol: "BTCUSDT", Contracts: dec("-2")}).IsZero() {
		t.Error("short position must not be zero")
	}
}

func TestValidateAccountName(t *testing.T) {
	for _, name := range []string{"bybit1", "binance_strategy_9", "a"} {
		if err := ValidateAccountName(name); err != nil {
			t.Errorf("ValidateAccountName(%q) = %v, want nil", name, err)
		}
	}
	for _, name := range []string{"", "9lives", "Name", "has space", "semi;colon"} {
		if err := ValidateAccountName(name); err == nil {
			t.Errorf("ValidateAccountName(%q) = nil, want error", name)
		}
	}
}

func TestParseShape(t *testing.T) {
	if _, err := ParseShape("portfolio"); err != nil {
		t.Errorf("ParseShape(portfolio) = %v", err)
	}
	if _, err := ParseShape("margin"); err == nil {
		t.Error("ParseShape(margin) accepted an unknown shape")
	}
}
