package ingestion

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/wakala/sellerperf/internal/domain"
	"github.com/wakala/sellerperf/internal/obs"
	"github.com/wakala/sellerperf/internal/repository"
)

const (
	StatusIngested        = "ingested"
	StatusAlreadyIngested = "already-ingested"
)

// IngestResult is returned from a successful ingestion.
type IngestResult struct {
	DatasetID   string `json:"dataset_id"`
	Status      string `json:"status"`
	Sellers     int    `json:"sellers"`
	Products    int    `json:"products"`
	Records     int    `json:"purchase_records"`
	ReportID    string `json:"report_id,omitempty"`
	ReportError string `json:"report_error,omitempty"`
}

// ReportGenerator produces and stores a report for a stored dataset.
type ReportGenerator interface {
	Generate(datasetID string) (*domain.Report, error)
}

// Service handles ingestion of sales datasets in the supported formats.
type Service struct {
	datasets *repository.DatasetRepo
	reports  ReportGenerator
	metrics  *obs.ReportMetrics
	log      zerolog.Logger
}

// NewService creates a new ingestion service.
func NewService(
	datasets *repository.DatasetRepo,
	reports ReportGenerator,
	metrics *obs.ReportMetrics,
	logger zerolog.Logger,
) *Service {
	return &Service{
		datasets: datasets,
		reports:  reports,
		metrics:  metrics,
		log:      logger.With().Str("component", "ingestion").Logger(),
	}
}

// IngestJSON stores a dataset document and generates its first report.
func (s *Service) IngestJSON(name string, data []byte) (*IngestResult, error) {
	return s.ingest(name, domain.FormatJSON, hashParts(data), func() (*domain.Dataset, error) {
		return ParseDatasetJSON(data)
	})
}

// IngestCSV stores a dataset given as three CSV exports and generates its
// first report.
func (s *Service) IngestCSV(name string, sellers, products, purchases []byte) (*IngestResult, error) {
	return s.ingest(name, domain.FormatCSV, hashParts(sellers, products, purchases), func() (*domain.Dataset, error) {
		return ParseCSVBundle(sellers, products, purchases)
	})
}

func (s *Service) ingest(
	name string,
	format domain.DatasetFormat,
	hash string,
	parse func() (*domain.Dataset, error),
) (*IngestResult, error) {
	// Idempotency check via file hash.
	existing, err := s.datasets.GetByHash(hash)
	switch {
	case err == nil:
		s.metrics.ObserveIngest(string(format), "duplicate")
		return &IngestResult{
			DatasetID: existing.ID,
			Status:    StatusAlreadyIngested,
			Sellers:   existing.SellerCount,
			Products:  existing.ProductCount,
			Records:   existing.RecordCount,
		}, nil
	case !errors.Is(err, repository.ErrNotFound):
		return nil, fmt.Errorf("check hash: %w", err)
	}

	ds, err := parse()
	if err != nil {
		s.metrics.ObserveIngest(string(format), "invalid")
		return nil, fmt.Errorf("parse %s: %w", format, err)
	}

	if name == "" {
		name = fmt.Sprintf("%s-%s", format, time.Now().UTC().Format("20060102T150405"))
	}
	info := &domain.DatasetInfo{
		ID:           uuid.NewString(),
		Name:         name,
		Format:       format,
		FileHash:     hash,
		SellerCount:  len(ds.Sellers),
		ProductCount: len(ds.Products),
		RecordCount:  len(ds.PurchaseRecords),
		IngestedAt:   time.Now().UTC(),
	}
	if err := s.datasets.Insert(info, ds); err != nil {
		s.metrics.ObserveIngest(string(format), "error")
		return nil, fmt.Errorf("store dataset: %w", err)
	}
	s.metrics.ObserveIngest(string(format), "ok")

	s.log.Info().
		Str("dataset_id", info.ID).
		Str("format", string(format)).
		Int("sellers", info.SellerCount).
		Int("products", info.ProductCount).
		Int("records", info.RecordCount).
		Msg("dataset ingested")

	result := &IngestResult{
		DatasetID: info.ID,
		Status:    StatusIngested,
		Sellers:   info.SellerCount,
		Products:  info.ProductCount,
		Records:   info.RecordCount,
	}

	// Do not fail ingestion if the report cannot be computed.
	rpt, err := s.reports.Generate(info.ID)
	if err != nil {
		s.log.Warn().Err(err).Str("dataset_id", info.ID).Msg("initial report failed")
		result.ReportError = err.Error()
		return result, nil
	}
	result.ReportID = rpt.ID
	return result, nil
}

// hashParts fingerprints one or more files; lengths are mixed in so that
// moving bytes between parts changes the hash.
func hashParts(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		fmt.Fprintf(h, "%d:", len(p))
		h.Write(p)
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}
