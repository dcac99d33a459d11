package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/urfave/cli/v2"

	"github.com/portwatch/reconciler/internal/config"
	"github.com/portwatch/reconciler/internal/database"
	"github.com/portwatch/reconciler/internal/export"
	"github.com/portwatch/reconciler/internal/feed"
	"github.com/portwatch/reconciler/internal/holdings"
	"github.com/portwatch/reconciler/internal/pipeline"
	"github.com/portwatch/reconciler/internal/provider"
	"github.com/portwatch/reconciler/internal/store"
	"github.com/portwatch/reconciler/internal/symbol"
	"github.com/portwatch/reconciler/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

const pipelineName = "reconciler"

func main() {
	app := &cli.App{
		Name:  "reconciler",
		Usage: "resolve broker activity exports into reconciled holdings",
		Commands: []*cli.Command{
			{
				Name:   "run",
				Usage:  "execute one reconciliation pass and exit",
				Action: runOnce,
			},
			{
				Name:   "serve",
				Usage:  "run the reconciliation pipeline on an interval",
				Action: serve,
			},
			{
				Name:   "export",
				Usage:  "write the holdings report without persisting anything",
				Action: exportReport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runOnce(c *cli.Context) error {
	ctx, stop := signalContext(c.Context)
	defer stop()

	cfg := config.Load()
	pool, pipe, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	_, err = pipe.Run(ctx)
	return err
}

func serve(c *cli.Context) error {
	ctx, stop := signalContext(c.Context)
	defer stop()

	cfg := config.Load()
	pool, pipe, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	worker.NewSyncWorker(pipe, cfg.SyncInterval).Run(ctx)
	return nil
}

func exportReport(c *cli.Context) error {
	ctx, stop := signalContext(c.Context)
	defer stop()

	cfg := config.Load()
	pool, pipe, err := buildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	hs, err := pipe.BuildHoldings(ctx)
	if err != nil {
		return err
	}

	writer, err := reportWriter(ctx, cfg)
	if err != nil {
		return err
	}
	if err := export.NewService(writer).Export(ctx, hs); err != nil {
		return err
	}

	slog.Info("report written", "holdings", len(hs))
	return nil
}

func buildPipeline(ctx context.Context, cfg config.Config) (*pgxpool.Pool, *pipeline.Pipeline, error) {
	if cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.SourceDir == "" {
		return nil, nil, fmt.Errorf("SOURCE_DIR is required")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}

	migrationsSub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}

	matchers := []symbol.Matcher{
		provider.NewYahooClient(cfg.YahooURL, cfg.ProviderRetryMax, cfg.ProviderBaseDelay),
		provider.NewCoinGeckoClient(cfg.CoinGeckoURL, cfg.ProviderRetryMax, cfg.ProviderBaseDelay),
	}
	symbolSvc := symbol.NewService(matchers, symbol.Config{
		CacheTTL:         cfg.MatchCacheTTL,
		MaxAttempts:      cfg.ProviderRetryMax,
		ExpectedCurrency: cfg.ExpectedCurrency,
		DataSourceOrder:  cfg.DataSourceOrder,
	})

	sourceFeed := feed.NewDirectoryFeed(cfg.SourceDir, feed.JSONImporter{}, feed.CSVImporter{})
	assembler := holdings.NewAssembler(symbolSvc)
	corrector := holdings.NewCorrector(cfg.FoldStakeRewards, cfg.DustThreshold)
	repo := store.NewPgRepository(pool)
	hashes := store.NewRunHashCache(cfg.RunHashTTL)

	pipe := pipeline.New(pipelineName, sourceFeed, assembler, corrector, repo, hashes)
	return pool, pipe, nil
}

func reportWriter(ctx context.Context, cfg config.Config) (export.SheetWriter, error) {
	if cfg.SheetsSpreadsheetID != "" {
		if cfg.GoogleCredentials == "" {
			return nil, fmt.Errorf("GOOGLE_CREDENTIALS_JSON is required for the sheets report")
		}
		return export.NewSheetsWriter(ctx, cfg.SheetsSpreadsheetID, cfg.GoogleCredentials)
	}
	return export.NewXlsxWriter(cfg.ReportFile), nil
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
}
