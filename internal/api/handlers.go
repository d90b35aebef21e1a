package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/wakala/sellerperf/internal/analysis"
	"github.com/wakala/sellerperf/internal/domain"
	"github.com/wakala/sellerperf/internal/ingestion"
	"github.com/wakala/sellerperf/internal/reporting"
	"github.com/wakala/sellerperf/internal/repository"
)

// maxUpload bounds multipart and JSON request bodies.
const maxUpload = 32 << 20

// Handlers groups all HTTP handler methods and their dependencies.
type Handlers struct {
	datasets     *repository.DatasetRepo
	reports      *repository.ReportRepo
	ingestionSvc *ingestion.Service
	reportingSvc *reporting.Service
	log          zerolog.Logger
}

// --- helpers ---

func (h *Handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error().Err(err).Msg("encode response")
	}
}

func (h *Handlers) writeError(w http.ResponseWriter, status int, msg string) {
	h.writeJSON(w, status, map[string]string{"error": msg})
}

func (h *Handlers) writeErr(w http.ResponseWriter, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		h.log.Error().Err(err).Msg("request failed")
	}
	h.writeError(w, status, err.Error())
}

// statusForError maps domain and storage errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, analysis.ErrInvalidInput),
		errors.Is(err, analysis.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrUnresolvedReference):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 1 {
		return def
	}
	return v
}

func readFormFile(r *http.Request, field string) ([]byte, error) {
	file, _, err := r.FormFile(field)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// --- Health ---

func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- IngestDataset ---

func (h *Handlers) IngestDataset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid multipart form: "+err.Error())
		return
	}

	name := r.FormValue("name")
	format := domain.DatasetFormat(r.FormValue("format"))
	if format == "" {
		format = domain.FormatJSON
	}

	var (
		result *ingestion.IngestResult
		err    error
	)
	switch format {
	case domain.FormatJSON:
		data, ferr := readFormFile(r, "file")
		if ferr != nil {
			h.writeError(w, http.StatusBadRequest, "file field is required: "+ferr.Error())
			return
		}
		result, err = h.ingestionSvc.IngestJSON(name, data)
	case domain.FormatCSV:
		parts := make(map[string][]byte, 3)
		for _, field := range []string{"sellers", "products", "purchases"} {
			data, ferr := readFormFile(r, field)
			if ferr != nil {
				h.writeError(w, http.StatusBadRequest, field+" field is required: "+ferr.Error())
				return
			}
			parts[field] = data
		}
		result, err = h.ingestionSvc.IngestCSV(name, parts["sellers"], parts["products"], parts["purchases"])
	default:
		h.writeError(w, http.StatusBadRequest, "unsupported format: "+string(format))
		return
	}
	if err != nil {
		h.writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	status := http.StatusCreated
	if result.Status == ingestion.StatusAlreadyIngested {
		status = http.StatusOK
	}
	h.writeJSON(w, status, result)
}

// --- ListDatasets ---

func (h *Handlers) ListDatasets(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.DatasetFilter{
		Format: q.Get("format"),
		Page:   parseIntDefault(q.Get("page"), 1),
		Limit:  parseIntDefault(q.Get("limit"), 50),
	}

	datasets, total, err := h.datasets.List(filter)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	if datasets == nil {
		datasets = []domain.DatasetInfo{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"datasets": datasets,
		"total":    total,
		"page":     filter.Page,
		"limit":    filter.Limit,
	})
}

// --- GetDataset ---

func (h *Handlers) GetDataset(w http.ResponseWriter, r *http.Request) {
	info, err := h.datasets.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, info)
}

// --- GenerateReport ---

func (h *Handlers) GenerateReport(w http.ResponseWriter, r *http.Request) {
	rpt, err := h.reportingSvc.Generate(chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusCreated, rpt)
}

// --- GetLatestReport ---

func (h *Handlers) GetLatestReport(w http.ResponseWriter, r *http.Request) {
	rpt, err := h.reportingSvc.Latest(chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rpt)
}

// --- ListReports ---

func (h *Handlers) ListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repository.ReportFilter{
		DatasetID: q.Get("dataset_id"),
		Page:      parseIntDefault(q.Get("page"), 1),
		Limit:     parseIntDefault(q.Get("limit"), 50),
	}

	reports, total, err := h.reports.List(filter)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	if reports == nil {
		reports = []domain.Report{}
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"reports": reports,
		"total":   total,
		"page":    filter.Page,
		"limit":   filter.Limit,
	})
}

// --- GetReport ---

func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	rpt, err := h.reports.GetByID(chi.URLParam(r, "id"))
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, rpt)
}

// --- Analyze ---

func (h *Handlers) Analyze(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxUpload))
	if err != nil {
		h.writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	ds, err := ingestion.ParseDatasetJSON(data)
	if err != nil {
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.reportingSvc.Compute(ds)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{"rows": rows})
}

// --- ListStrategies ---

func (h *Handlers) ListStrategies(w http.ResponseWriter, r *http.Request) {
	revenue, bonus := analysis.StrategyNames()
	h.writeJSON(w, http.StatusOK, map[string][]string{
		"revenue": revenue,
		"bonus":   bonus,
	})
}
