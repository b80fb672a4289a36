package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/traderops/snaptrak/internal/domain"
)

func writeAccountsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "accounts.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("writing accounts file: %v", err)
	}
	return path
}

func TestLoadAccounts(t *testing.T) {
	path := writeAccountsFile(t, `
accounts:
  - name: bybit1
    exchange: bybit
    shape: unified
    api_key: key1
    api_secret: secret1
    interval: 30s
  - name: binance3
    exchange: binance
    shape: classic
    api_key: key2
    api_secret: secret2
`)

	accounts, err := LoadAccounts(path, time.Minute)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("accounts = %d, want 2", len(accounts))
	}

	if accounts[0].Shape != domain.ShapeUnified {
		t.Errorf("bybit1 shape = %s, want unified", accounts[0].Shape)
	}
	if accounts[0].Interval != 30*time.Second {
		t.Errorf("bybit1 interval = %s, want 30s", accounts[0].Interval)
	}
	if accounts[1].Interval != time.Minute {
		t.Errorf("binance3 interval = %s, want the default", accounts[1].Interval)
	}
}

func TestLoadAccountsRejectsDuplicateNames(t *testing.T) {
	path := writeAccountsFile(t, `
accounts:
  - name: bybit1
    exchange: bybit
    shape: unified
    api_key: k
    api_secret: s
  - name: bybit1
    exchange: bybit
    shape: unified
    api_key: k
    api_secret: s
`)

	if _, err := LoadAccounts(path, time.Minute); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Errorf("err = %v, want duplicate name error", err)
	}
}

func TestLoadAccountsRejectsUnsafeName(t *testing.T) {
	path := writeAccountsFile(t, `
accounts:
  - name: "Bad Name"
    exchange: bybit
    shape: unified
    api_key: k
    api_secret: s
`)

	if _, err := LoadAccounts(path, time.Minute); err == nil {
		t.Error("expected invalid account name to be rejected")
	}
}

func TestLoadAccountsRejectsUnknownShape(t *testing.T) {
	path := writeAccountsFile(t, `
accounts:
  - name: acct1
    exchange: binance
    shape: margin
    api_key: k
    api_secret: s
`)

	if _, err := LoadAccounts(path, time.Minute); err == nil {
		t.Error("expected unknown shape to be rejected")
	}
}

func TestLoadAccountsRejectsExchangeShapeMismatch(t *testing.T) {
	cases := []struct{ exchange, shape string }{
		{"bybit", "classic"},
		{"bybit", "portfolio"},
		{"binance", "unified"},
		{"kraken", "classic"},
	}
	for _, c := range cases {
		path := writeAccountsFile(t, `
accounts:
  - name: acct1
    exchange: `+c.exchange+`
    shape: `+c.shape+`
    api_key: k
    api_secret: s
`)
		if _, err := LoadAccounts(path, time.Minute); err == nil {
			t.Errorf("exchange=%s shape=%s accepted, want error", c.exchange, c.shape)
		}
	}
}

func TestLoadAccountsRequiresCredentials(t *testing.T) {
	path := writeAccountsFile(t, `
accounts:
  - name: acct1
    exchange: bybit
    shape: unified
    api_key: k
`)

	if _, err := LoadAccounts(path, time.Minute); err == nil || !strings.Contains(err.Error(), "api_secret") {
		t.Errorf("err = %v, want missing credential error", err)
	}
}

func TestLoadAccountsEmptyFile(t *testing.T) {
	path := writeAccountsFile(t, "accounts: []\n")

	if _, err := LoadAccounts(path, time.Minute); err == nil {
		t.Error("expected empty accounts file to be rejected")
	}
}
