package main

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/openfolio/xray/internal/activity"
	"github.com/openfolio/xray/internal/api"
	"github.com/openfolio/xray/internal/config"
	"github.com/openfolio/xray/internal/database"
	"github.com/openfolio/xray/internal/export"
	"github.com/openfolio/xray/internal/fx"
	"github.com/openfolio/xray/internal/marketdata"
	"github.com/openfolio/xray/internal/position"
	"github.com/openfolio/xray/internal/report"
	"github.com/openfolio/xray/internal/rules"
	"github.com/openfolio/xray/internal/settings"
	"github.com/openfolio/xray/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to load .env file", "error", err)
	}

	app := &cli.App{
		Name:  "xray",
		Usage: "portfolio health check service",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and background workers",
				Action: runServe,
			},
			{
				Name:  "check",
				Usage: "evaluate one user's portfolio and print the report as JSON",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Usage: "user ID to evaluate", Required: true},
				},
				Action: runCheck,
			},
			{
				Name:  "export",
				Usage: "generate and export today's report for one user",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "user", Usage: "user ID to export", Required: true},
				},
				Action: runExport,
			},
		},
		DefaultCommand: "serve",
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// services is the assembled dependency graph shared by all commands.
type services struct {
	pool     *pgxpool.Pool
	fx       *fx.Service
	market   *marketdata.Service
	settings *settings.PgRepository
	rules    *rules.Service
	reports  *report.Service
}

func buildServices(ctx context.Context, cfg config.Config) (*services, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	migrationsSub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	ratesClient := fx.NewRatesClient(cfg.RatesURL, cfg.RatesRetryMax, cfg.RatesRetryBaseDelay)
	fxSvc := fx.NewService(ratesClient, fx.NewPgRateRepository(pool), cfg.BaseCurrency)

	quotesClient := marketdata.NewQuotesClient(cfg.QuotesURL, cfg.QuotesRetryMax, cfg.QuotesRetryBaseDelay)
	marketSvc := marketdata.NewService(quotesClient, marketdata.NewPgRepository(pool))

	positionSvc := position.NewService(activity.NewPgRepository(pool), marketSvc, fxSvc)

	settingsRepo := settings.NewPgRepository(pool)
	rulesSvc := rules.NewService(positionSvc, settingsRepo)
	reportSvc := report.NewService(rulesSvc, report.NewPgRepository(pool))

	return &services{
		pool:     pool,
		fx:       fxSvc,
		market:   marketSvc,
		settings: settingsRepo,
		rules:    rulesSvc,
		reports:  reportSvc,
	}, nil
}

// buildExporter picks the configured report destination, or nil when export
// is not configured.
func buildExporter(ctx context.Context, cfg config.Config) (*export.Service, error) {
	switch {
	case cfg.SpreadsheetID != "" && cfg.GoogleCredentials != "":
		writer, err := export.NewSheetsWriter(ctx, cfg.SpreadsheetID, cfg.GoogleCredentials)
		if err != nil {
			return nil, fmt.Errorf("creating sheets writer: %w", err)
		}
		return export.NewService(writer), nil
	case cfg.XLSXExportDir != "":
		return export.NewService(export.NewXLSXWriter(cfg.XLSXExportDir)), nil
	default:
		return nil, nil
	}
}

func runServe(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	svcs, err := buildServices(ctx, cfg)
	if err != nil {
		return err
	}
	defer svcs.pool.Close()

	exporter, err := buildExporter(ctx, cfg)
	if err != nil {
		return err
	}

	rateWorker := worker.NewRateWorker(svcs.fx, cfg.RateWorkerInterval)
	go rateWorker.Run(ctx)

	quoteWorker := worker.NewQuoteWorker(svcs.market, cfg.QuoteWorkerInterval)
	go quoteWorker.Run(ctx)

	var hook worker.AfterReportHook
	if exporter != nil {
		hook = exporter
	}
	reportWorker := worker.NewReportWorker(svcs.reports, svcs.settings, cfg.ReportWorkerInterval, hook)
	go reportWorker.Run(ctx)

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, generate endpoint is unprotected")
	}

	srv := api.NewServer(cfg.HTTPPort, svcs.rules, svcs.reports, cfg.AdminAPIKey)

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}

func runCheck(c *cli.Context) error {
	cfg := config.Load()

	svcs, err := buildServices(c.Context, cfg)
	if err != nil {
		return err
	}
	defer svcs.pool.Close()

	result, err := svcs.rules.EvaluateAll(c.Context, c.String("user"))
	if err != nil {
		return fmt.Errorf("evaluating portfolio: %w", err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

func runExport(c *cli.Context) error {
	cfg := config.Load()

	svcs, err := buildServices(c.Context, cfg)
	if err != nil {
		return err
	}
	defer svcs.pool.Close()

	exporter, err := buildExporter(c.Context, cfg)
	if err != nil {
		return err
	}
	if exporter == nil {
		return fmt.Errorf("no export destination configured: set SHEETS_SPREADSHEET_ID or XLSX_EXPORT_DIR")
	}

	result, err := svcs.reports.Generate(c.Context, c.String("user"), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("generating report: %w", err)
	}

	if err := exporter.Export(c.Context, result); err != nil {
		return err
	}

	log.Printf("Exported report for user %s", result.UserID)
	return nil
}
