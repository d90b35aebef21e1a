package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/wakala/sellerperf/internal/ingestion"
	"github.com/wakala/sellerperf/internal/obs"
	"github.com/wakala/sellerperf/internal/reporting"
	"github.com/wakala/sellerperf/internal/repository"
)

// Deps groups what the HTTP layer needs.
type Deps struct {
	Datasets  *repository.DatasetRepo
	Reports   *repository.ReportRepo
	Ingestion *ingestion.Service
	Reporting *reporting.Service
	Gatherer  prometheus.Gatherer
	Logger    zerolog.Logger
}

// NewRouter creates the Chi router with all API routes mounted.
func NewRouter(d Deps) http.Handler {
	h := &Handlers{
		datasets:     d.Datasets,
		reports:      d.Reports,
		ingestionSvc: d.Ingestion,
		reportingSvc: d.Reporting,
		log:          d.Logger.With().Str("component", "api").Logger(),
	}
	gatherer := d.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r := chi.NewRouter()

	// Middleware.
	r.Use(middleware.RequestID)
	r.Use(obs.RequestLogger{Logger: d.Logger}.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.SetHeader("Content-Type", "application/json"))

		// Datasets.
		r.Post("/datasets/ingest", h.IngestDataset)
		r.Get("/datasets", h.ListDatasets)
		r.Get("/datasets/{id}", h.GetDataset)
		r.Post("/datasets/{id}/reports", h.GenerateReport)
		r.Get("/datasets/{id}/report", h.GetLatestReport)

		// Reports.
		r.Get("/reports", h.ListReports)
		r.Get("/reports/{id}", h.GetReport)

		// Stateless analysis.
		r.Post("/analyze", h.Analyze)
		r.Get("/strategies", h.ListStrategies)
	})

	return r
}
