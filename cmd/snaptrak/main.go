package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/traderops/snaptrak/internal/config"
	"github.com/traderops/snaptrak/internal/domain"
	"github.com/traderops/snaptrak/internal/exchange"
	"github.com/traderops/snaptrak/internal/export"
	"github.com/traderops/snaptrak/internal/poller"
	"github.com/traderops/snaptrak/internal/store"
	"github.com/traderops/snaptrak/internal/valuation"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app := &cli.App{
		Name:  "snaptrak",
		Usage: "poll exchange accounts and persist balance, position and equity snapshots",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "start the poll loop for every configured account",
				Action: runCommand,
			},
			{
				Name:   "once",
				Usage:  "poll every configured account a single time and exit",
				Action: onceCommand,
			},
			{
				Name:  "export",
				Usage: "write the equity history report to xlsx and, if configured, Google Sheets",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "out", Usage: "output workbook path (overrides EXPORT_PATH)"},
				},
				Action: exportCommand,
			},
		},
	}

	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

// setup connects the store, initializes each account's schema and builds its
// pipeline.
func setup(ctx context.Context, cfg config.Config) ([]config.Account, map[string]poller.Pipeline, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required")
	}

	accounts, err := config.LoadAccounts(cfg.AccountsFile, cfg.DefaultInterval)
	if err != nil {
		return nil, nil, err
	}

	pool, err := store.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	db := store.New(pool)

	pipelines := make(map[string]poller.Pipeline, len(accounts))
	for _, acct := range accounts {
		tables, err := store.NewTableSet(acct.Name, acct.Shape)
		if err != nil {
			return nil, nil, err
		}
		if err := db.InitSchema(ctx, tables); err != nil {
			return nil, nil, err
		}

		pipeline, err := buildPipeline(ctx, cfg, acct, tables, db)
		if err != nil {
			return nil, nil, err
		}
		pipelines[acct.Name] = pipeline
	}
	return accounts, pipelines, nil
}

func buildPipeline(ctx context.Context, cfg config.Config, acct config.Account, tables store.TableSet, db *store.Store) (poller.Pipeline, error) {
	switch acct.Shape {
	case domain.ShapeUnified:
		return poller.NewUnifiedPipeline(tables, exchange.NewBybitClient(acct.APIKey, acct.APISecret), db), nil

	case domain.ShapePortfolio, domain.ShapeClassic:
		binance := exchange.NewBinanceClient(acct.APIKey, acct.APISecret)
		pairs, err := binance.ListActiveQuotePairs(ctx)
		if err != nil {
			return nil, fmt.Errorf("account %s: listing quote pairs: %w", acct.Name, err)
		}
		val := valuation.NewService(binance, pairs, cfg.WarnOnMissingPrice)

		if acct.Shape == domain.ShapePortfolio {
			papi := exchange.NewPortfolioClient(acct.APIKey, acct.APISecret)
			return poller.NewPortfolioPipeline(tables, papi, val, db), nil
		}
		return poller.NewClassicPipeline(tables, binance, val, db), nil
	}
	return nil, fmt.Errorf("account %s: unsupported shape %q", acct.Name, acct.Shape)
}

func runCommand(c *cli.Context) error {
	cfg := config.Load()
	accounts, pipelines, err := setup(c.Context, cfg)
	if err != nil {
		return err
	}

	for _, acct := range accounts {
		worker := poller.NewWorker(pipelines[acct.Name], acct.Interval)
		go worker.Run(c.Context)
	}

	<-c.Context.Done()
	slog.Info("shutting down")
	return nil
}

func onceCommand(c *cli.Context) error {
	cfg := config.Load()
	accounts, pipelines, err := setup(c.Context, cfg)
	if err != nil {
		return err
	}

	for _, acct := range accounts {
		if err := pipelines[acct.Name].Poll(c.Context, time.Now()); err != nil {
			return err
		}
		slog.Info("poll completed", "account", acct.Name)
	}
	return nil
}

func exportCommand(c *cli.Context) error {
	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	accounts, err := config.LoadAccounts(cfg.AccountsFile, cfg.DefaultInterval)
	if err != nil {
		return err
	}

	pool, err := store.Connect(c.Context, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()
	db := store.New(pool)

	tables := make([]store.TableSet, 0, len(accounts))
	for _, acct := range accounts {
		ts, err := store.NewTableSet(acct.Name, acct.Shape)
		if err != nil {
			return err
		}
		tables = append(tables, ts)
	}

	histories, err := export.NewService(db, tables).Build(c.Context)
	if err != nil {
		return err
	}

	out := cfg.ExportPath
	if c.String("out") != "" {
		out = c.String("out")
	}
	if err := export.WriteXLSX(out, histories); err != nil {
		return err
	}
	slog.Info("wrote equity report", "path", out)

	if cfg.SheetsSpreadsheetID != "" && cfg.SheetsCredentialsFile != "" {
		creds, err := os.ReadFile(cfg.SheetsCredentialsFile)
		if err != nil {
			return fmt.Errorf("reading sheets credentials: %w", err)
		}
		writer, err := export.NewSheetsWriter(c.Context, cfg.SheetsSpreadsheetID, creds)
		if err != nil {
			return err
		}
		if err := writer.Write(c.Context, histories); err != nil {
			return err
		}
		slog.Info("pushed equity report to google sheets", "spreadsheet", cfg.SheetsSpreadsheetID)
	}
	return nil
}
