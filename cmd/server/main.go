package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/wakala/sellerperf/internal/api"
	"github.com/wakala/sellerperf/internal/config"
	"github.com/wakala/sellerperf/internal/ingestion"
	"github.com/wakala/sellerperf/internal/obs"
	"github.com/wakala/sellerperf/internal/reporting"
	"github.com/wakala/sellerperf/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel)
	log := logger.With().Str("component", "server").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().Str("path", cfg.DBPath).Msg("initializing database")
	db, err := repository.InitDB(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("init db")
	}
	defer db.Close()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := obs.NewReportMetrics(cfg.MetricsNamespace, reg)

	// Create repositories.
	datasetRepo := repository.NewDatasetRepo(db)
	reportRepo := repository.NewReportRepo(db)

	// Create services.
	reportingSvc, err := reporting.NewService(datasetRepo, reportRepo, cfg.RevenueStrategy, cfg.BonusStrategy, metrics, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("create reporting service")
	}
	ingestionSvc := ingestion.NewService(datasetRepo, reportingSvc, metrics, logger)

	// Seed the sample dataset if DB is empty.
	count, err := datasetRepo.Count()
	if err != nil {
		log.Fatal().Err(err).Msg("count datasets")
	}
	if count == 0 {
		log.Info().Msg("database is empty, seeding sample dataset")
		if err := seedDataset(ingestionSvc, cfg.SeedPath, log); err != nil {
			log.Warn().Err(err).Msg("seed failed")
		}
	} else {
		log.Info().Int("datasets", count).Msg("database already populated, skipping seed")
	}

	router := api.NewRouter(api.Deps{
		Datasets:  datasetRepo,
		Reports:   reportRepo,
		Ingestion: ingestionSvc,
		Reporting: reportingSvc,
		Gatherer:  reg,
		Logger:    logger,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("shutdown")
		}
	}()

	log.Info().
		Str("addr", srv.Addr).
		Str("revenue_strategy", cfg.RevenueStrategy).
		Str("bonus_strategy", cfg.BonusStrategy).
		Msg("seller performance service listening")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("server stopped")
}

func seedDataset(svc *ingestion.Service, seedPath string, log zerolog.Logger) error {
	// Try the configured path, then relative to the executable.
	candidates := []string{seedPath}
	if exe, err := os.Executable(); err == nil && !filepath.IsAbs(seedPath) {
		dir := filepath.Dir(exe)
		candidates = append(candidates,
			filepath.Join(dir, seedPath),
			filepath.Join(dir, "..", "..", seedPath),
		)
	}

	var data []byte
	var loadErr error
	for _, path := range candidates {
		data, loadErr = os.ReadFile(path)
		if loadErr == nil {
			log.Info().Str("path", path).Msg("loaded seed dataset")
			break
		}
	}
	if loadErr != nil {
		return fmt.Errorf("could not find seed dataset in any candidate path: %w", loadErr)
	}

	res, err := svc.IngestJSON("sample", data)
	if err != nil {
		return fmt.Errorf("ingest seed: %w", err)
	}

	log.Info().
		Str("dataset_id", res.DatasetID).
		Int("sellers", res.Sellers).
		Int("purchase_records", res.Records).
		Str("report_id", res.ReportID).
		Msg("seeded sample dataset")
	return nil
}
