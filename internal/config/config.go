// Package config loads process configuration from environment variables and
// the per-account credentials file. Credentials are passed explicitly into
// account construction; nothing in this package is ambient global state.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/traderops/snaptrak/internal/domain"
)

// Config holds process-wide settings loaded from environment variables.
type Config struct {
	DatabaseURL           string
	AccountsFile          string
	DefaultInterval       time.Duration
	WarnOnMissingPrice    bool
	ExportPath            string
	SheetsSpreadsheetID   string
	SheetsCredentialsFile string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		DatabaseURL:           envOrDefaultWarn("DATABASE_URL", ""),
		AccountsFile:          envOrDefault("ACCOUNTS_FILE", "accounts.yaml"),
		DefaultInterval:       envOrDefaultDuration("POLL_INTERVAL", time.Minute),
		WarnOnMissingPrice:    envOrDefaultBool("WARN_ON_MISSING_PRICE", true),
		ExportPath:            envOrDefault("EXPORT_PATH", "equity_report.xlsx"),
		SheetsSpreadsheetID:   envOrDefault("SHEETS_SPREADSHEET_ID", ""),
		SheetsCredentialsFile: envOrDefault("SHEETS_CREDENTIALS_FILE", ""),
	}
}

// Account is one exchange account to poll.
type Account struct {
	Name      string        `yaml:"name"`
	Exchange  string        `yaml:"exchange"`
	Shape     domain.Shape  `yaml:"-"`
	APIKey    string        `yaml:"api_key"`
	APISecret string        `yaml:"api_secret"`
	Interval  time.Duration `yaml:"interval"`
}

type accountsFile struct {
	Accounts []struct {
		Name      string        `yaml:"name"`
		Exchange  string        `yaml:"exchange"`
		Shape     string        `yaml:"shape"`
		APIKey    string        `yaml:"api_key"`
		APISecret string        `yaml:"api_secret"`
		Interval  time.Duration `yaml:"interval"`
	} `yaml:"accounts"`
}

// LoadAccounts parses and validates the accounts file. Accounts without an
// interval get defaultInterval.
func LoadAccounts(path string, defaultInterval time.Duration) ([]Account, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading accounts file: %w", err)
	}

	var file accountsFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing accounts file: %w", err)
	}
	if len(file.Accounts) == 0 {
		return nil, fmt.Errorf("accounts file %s defines no accounts", path)
	}

	seen := make(map[string]bool, len(file.Accounts))
	accounts := make([]Account, 0, len(file.Accounts))
	for _, a := range file.Accounts {
		if err := domain.ValidateAccountName(a.Name); err != nil {
			return nil, err
		}
		if seen[a.Name] {
			return nil, fmt.Errorf("duplicate account name %q", a.Name)
		}
		seen[a.Name] = true

		shape, err := domain.ParseShape(a.Shape)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w", a.Name, err)
		}
		if err := validateExchange(a.Exchange, shape); err != nil {
			return nil, fmt.Errorf("account %s: %w", a.Name, err)
		}
		if a.APIKey == "" || a.APISecret == "" {
			return nil, fmt.Errorf("account %s: api_key and api_secret are required", a.Name)
		}

		interval := a.Interval
		if interval <= 0 {
			interval = defaultInterval
		}

		accounts = append(accounts, Account{
			Name:      a.Name,
			Exchange:  a.Exchange,
			Shape:     shape,
			APIKey:    a.APIKey,
			APISecret: a.APISecret,
			Interval:  interval,
		})
	}
	return accounts, nil
}

func validateExchange(exchange string, shape domain.Shape) error {
	switch exchange {
	case "bybit":
		if shape != domain.ShapeUnified {
			return fmt.Errorf("bybit accounts must use the unified shape, got %q", shape)
		}
	case "binance":
		if shape == domain.ShapeUnified {
			return fmt.Errorf("binance accounts must use the portfolio or classic shape")
		}
	default:
		return fmt.Errorf("unknown exchange %q", exchange)
	}
	return nil
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envOrDefaultWarn(key, defaultVal string) string {
	v := envOrDefault(key, defaultVal)
	if v == "" {
		slog.Warn("required env var not set", "key", key)
	}
	return v
}

func envOrDefaultBool(key string, defaultVal bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid boolean env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return b
	}
	return defaultVal
}

func envOrDefaultDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", defaultVal)
			return defaultVal
		}
		return d
	}
	return defaultVal
}
