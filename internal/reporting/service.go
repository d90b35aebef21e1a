package reporting

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wakala/sellerperf/internal/analysis"
	"github.com/wakala/sellerperf/internal/domain"
	"github.com/wakala/sellerperf/internal/obs"
	"github.com/wakala/sellerperf/internal/repository"
)

// Service computes seller reports for stored datasets and keeps them.
type Service struct {
	datasets    *repository.DatasetRepo
	reports     *repository.ReportRepo
	strategies  analysis.Strategies
	revenueName string
	bonusName   string
	metrics     *obs.ReportMetrics
	log         zerolog.Logger
	now         func() time.Time
}

// NewService resolves the named strategies and creates a reporting service.
func NewService(
	datasets *repository.DatasetRepo,
	reports *repository.ReportRepo,
	revenueStrategy, bonusStrategy string,
	metrics *obs.ReportMetrics,
	logger zerolog.Logger,
) (*Service, error) {
	strategies, err := analysis.LookupStrategies(revenueStrategy, bonusStrategy)
	if err != nil {
		return nil, err
	}
	return &Service{
		datasets:    datasets,
		reports:     reports,
		strategies:  strategies,
		revenueName: revenueStrategy,
		bonusName:   bonusStrategy,
		metrics:     metrics,
		log:         logger.With().Str("component", "reporting").Logger(),
		now:         time.Now,
	}, nil
}

// Compute runs the analysis on an in-memory dataset without storing it.
func (s *Service) Compute(ds *domain.Dataset) ([]domain.ReportRow, error) {
	start := s.now()
	rows, err := analysis.ProduceReport(ds, s.strategies)
	s.metrics.ObserveReport(Outcome(err), len(rows), s.now().Sub(start))
	return rows, err
}

// Generate loads a stored dataset, computes its report and stores the result.
func (s *Service) Generate(datasetID string) (*domain.Report, error) {
	ds, err := s.datasets.Load(datasetID)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", datasetID, err)
	}

	rows, err := s.Compute(ds)
	if err != nil {
		s.log.Warn().Err(err).Str("dataset_id", datasetID).Msg("report computation failed")
		return nil, fmt.Errorf("compute report: %w", err)
	}

	rpt := &domain.Report{
		ID:              uuid.NewString(),
		DatasetID:       datasetID,
		RevenueStrategy: s.revenueName,
		BonusStrategy:   s.bonusName,
		SellerCount:     len(rows),
		GeneratedAt:     s.now().UTC(),
		Rows:            rows,
	}
	if err := s.reports.Insert(rpt); err != nil {
		return nil, fmt.Errorf("store report: %w", err)
	}

	s.log.Info().
		Str("report_id", rpt.ID).
		Str("dataset_id", datasetID).
		Int("sellers", len(rows)).
		Msg("report generated")
	return rpt, nil
}

// Latest returns the most recent report of a dataset.
func (s *Service) Latest(datasetID string) (*domain.Report, error) {
	return s.reports.LatestForDataset(datasetID)
}

// Outcome maps a report error to a short metric label.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, analysis.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, analysis.ErrInvalidConfiguration):
		return "invalid_configuration"
	case errors.Is(err, analysis.ErrUnresolvedReference):
		return "unresolved_reference"
	default:
		return "error"
	}
}
