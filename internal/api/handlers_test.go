package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wakala/sellerperf/internal/analysis"
	"github.com/wakala/sellerperf/internal/domain"
	"github.com/wakala/sellerperf/internal/ingestion"
	"github.com/wakala/sellerperf/internal/obs"
	"github.com/wakala/sellerperf/internal/reporting"
	"github.com/wakala/sellerperf/internal/repository"
)

const testDataset = `{
  "sellers": [
    {"id": "seller_1", "first_name": "Alexey", "last_name": "Petrov"},
    {"id": "seller_2", "first_name": "Ivan", "last_name": "Ivanov"}
  ],
  "products": [
    {"sku": "SKU_001", "name": "Coffee", "purchase_price": 10, "sale_price": 20},
    {"sku": "SKU_002", "name": "Tea", "purchase_price": 5, "sale_price": 8}
  ],
  "customers": [{"id": "customer_1"}],
  "purchase_records": [
    {"receipt_id": "r1", "seller_id": "seller_1", "customer_id": "customer_1", "total_amount": 40,
     "items": [{"sku": "SKU_001", "quantity": 2, "sale_price": 20, "discount": 0}]},
    {"receipt_id": "r2", "seller_id": "seller_2", "customer_id": "customer_1", "total_amount": 80,
     "items": [{"sku": "SKU_001", "quantity": 4, "sale_price": 20, "discount": 0}]}
  ]
}`

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	db, err := repository.InitDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg := prometheus.NewRegistry()
	metrics := obs.NewReportMetrics("sellerperf", reg)
	datasets := repository.NewDatasetRepo(db)
	reports := repository.NewReportRepo(db)

	reportingSvc, err := reporting.NewService(datasets, reports, analysis.RevenueSimple, analysis.BonusProfitRanked, metrics, zerolog.Nop())
	require.NoError(t, err)
	ingestionSvc := ingestion.NewService(datasets, reportingSvc, metrics, zerolog.Nop())

	return NewRouter(Deps{
		Datasets:  datasets,
		Reports:   reports,
		Ingestion: ingestionSvc,
		Reporting: reportingSvc,
		Gatherer:  reg,
		Logger:    zerolog.Nop(),
	})
}

func multipartBody(t *testing.T, fields map[string]string, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".dat")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func do(t *testing.T, h http.Handler, method, path string, body *bytes.Buffer, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func ingestJSON(t *testing.T, h http.Handler, name, content string) *httptest.ResponseRecorder {
	t.Helper()
	body, ct := multipartBody(t,
		map[string]string{"format": "json", "name": name},
		map[string]string{"file": content},
	)
	return do(t, h, http.MethodPost, "/api/v1/datasets/ingest", body, ct)
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/healthz", nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestIngestAndReport(t *testing.T) {
	h := newTestRouter(t)

	rec := ingestJSON(t, h, "week-1", testDataset)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	res := decode[ingestion.IngestResult](t, rec)
	assert.Equal(t, ingestion.StatusIngested, res.Status)
	require.NotEmpty(t, res.ReportID)
	assert.Empty(t, res.ReportError)

	// Second upload of the same bytes is a no-op.
	rec = ingestJSON(t, h, "week-1", testDataset)
	require.Equal(t, http.StatusOK, rec.Code)
	again := decode[ingestion.IngestResult](t, rec)
	assert.Equal(t, ingestion.StatusAlreadyIngested, again.Status)
	assert.Equal(t, res.DatasetID, again.DatasetID)

	rec = do(t, h, http.MethodGet, "/api/v1/datasets/"+res.DatasetID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	info := decode[domain.DatasetInfo](t, rec)
	assert.Equal(t, "week-1", info.Name)
	assert.Equal(t, 2, info.SellerCount)

	rec = do(t, h, http.MethodGet, "/api/v1/datasets/"+res.DatasetID+"/report", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	rpt := decode[domain.Report](t, rec)
	assert.Equal(t, res.ReportID, rpt.ID)
	require.Len(t, rpt.Rows, 2)
	assert.Equal(t, "seller_2", rpt.Rows[0].SellerID)
	assert.Equal(t, 40.0, rpt.Rows[0].Profit)
	assert.Equal(t, "6.00", rpt.Rows[0].Bonus)
	assert.Equal(t, "seller_1", rpt.Rows[1].SellerID)
	assert.Equal(t, "0.00", rpt.Rows[1].Bonus)

	rec = do(t, h, http.MethodPost, "/api/v1/datasets/"+res.DatasetID+"/reports", nil, "")
	require.Equal(t, http.StatusCreated, rec.Code)
	second := decode[domain.Report](t, rec)
	assert.NotEqual(t, res.ReportID, second.ID)

	rec = do(t, h, http.MethodGet, "/api/v1/reports?dataset_id="+res.DatasetID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Reports []domain.Report `json:"reports"`
		Total   int             `json:"total"`
	}](t, rec)
	assert.Equal(t, 2, list.Total)
	assert.Len(t, list.Reports, 2)

	rec = do(t, h, http.MethodGet, "/api/v1/reports/"+second.ID, nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	stored := decode[domain.Report](t, rec)
	assert.Equal(t, second.Rows, stored.Rows)

	rec = do(t, h, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `sellerperf_reports_generated_total{outcome="ok"} 2`)
}

func TestIngestCSVBundle(t *testing.T) {
	h := newTestRouter(t)

	body, ct := multipartBody(t,
		map[string]string{"format": "csv", "name": "csv-week"},
		map[string]string{
			"sellers":   "id,first_name,last_name\nseller_1,Anna,Smirnova\n",
			"products":  "sku,name,category,purchase_price,sale_price\nSKU_001,Coffee,Drinks,10,20\n",
			"purchases": "receipt_id,date,seller_id,customer_id,total_amount,total_discount,sku,quantity,sale_price,discount\nr1,2024-01-02,seller_1,c1,20,0,SKU_001,1,20,0\n",
		},
	)
	rec := do(t, h, http.MethodPost, "/api/v1/datasets/ingest", body, ct)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[ingestion.IngestResult](t, rec)
	assert.Equal(t, 1, res.Records)

	rec = do(t, h, http.MethodGet, "/api/v1/datasets?format=csv", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[struct {
		Datasets []domain.DatasetInfo `json:"datasets"`
		Total    int                  `json:"total"`
		Page     int                  `json:"page"`
		Limit    int                  `json:"limit"`
	}](t, rec)
	assert.Equal(t, 1, list.Total)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 50, list.Limit)
	assert.Equal(t, domain.FormatCSV, list.Datasets[0].Format)
}

func TestIngestRejectsBadRequests(t *testing.T) {
	h := newTestRouter(t)

	tests := []struct {
		name   string
		fields map[string]string
		files  map[string]string
		want   int
	}{
		{"unsupported format", map[string]string{"format": "xml"}, map[string]string{"file": "<x/>"}, http.StatusBadRequest},
		{"missing file", map[string]string{"format": "json"}, nil, http.StatusBadRequest},
		{"missing csv part", map[string]string{"format": "csv"}, map[string]string{"sellers": "id,first_name,last_name\n"}, http.StatusBadRequest},
		{"malformed json", map[string]string{"format": "json"}, map[string]string{"file": "{"}, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, ct := multipartBody(t, tt.fields, tt.files)
			rec := do(t, h, http.MethodPost, "/api/v1/datasets/ingest", body, ct)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}

	rec := do(t, h, http.MethodPost, "/api/v1/datasets/ingest", bytes.NewBufferString("plain"), "text/plain")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNotFound(t *testing.T) {
	h := newTestRouter(t)

	for _, path := range []string{
		"/api/v1/datasets/missing",
		"/api/v1/datasets/missing/report",
		"/api/v1/reports/missing",
	} {
		rec := do(t, h, http.MethodGet, path, nil, "")
		assert.Equal(t, http.StatusNotFound, rec.Code, path)
	}
	rec := do(t, h, http.MethodPost, "/api/v1/datasets/missing/reports", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAnalyze(t *testing.T) {
	h := newTestRouter(t)

	rec := do(t, h, http.MethodPost, "/api/v1/analyze", bytes.NewBufferString(testDataset), "application/json")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	out := decode[struct {
		Rows []domain.ReportRow `json:"rows"`
	}](t, rec)
	require.Len(t, out.Rows, 2)
	assert.Equal(t, "Ivan Ivanov", out.Rows[0].Name)
	assert.Equal(t, []domain.TopProduct{{SKU: "SKU_001", Quantity: 4}}, out.Rows[0].TopProducts)

	// Nothing is stored by the stateless endpoint.
	rec = do(t, h, http.MethodGet, "/api/v1/datasets", nil, "")
	assert.Contains(t, rec.Body.String(), `"total":0`)
}

func TestAnalyzeErrors(t *testing.T) {
	h := newTestRouter(t)

	unresolved := strings.Replace(testDataset, `"seller_id": "seller_2"`, `"seller_id": "seller_9"`, 1)
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", "{", http.StatusBadRequest},
		{"no sellers", `{"sellers": [], "products": [], "purchase_records": []}`, http.StatusBadRequest},
		{"unknown seller", unresolved, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, http.MethodPost, "/api/v1/analyze", bytes.NewBufferString(tt.body), "application/json")
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestListStrategies(t *testing.T) {
	h := newTestRouter(t)
	rec := do(t, h, http.MethodGet, "/api/v1/strategies", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	got := decode[map[string][]string](t, rec)
	assert.Contains(t, got["revenue"], analysis.RevenueSimple)
	assert.Contains(t, got["bonus"], analysis.BonusProfitRanked)
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("load: %w", repository.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("compute: %w", analysis.ErrInvalidInput), http.StatusBadRequest},
		{analysis.ErrInvalidConfiguration, http.StatusBadRequest},
		{&analysis.ReferenceError{Kind: analysis.RefProduct, Key: "SKU_9"}, http.StatusUnprocessableEntity},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusForError(tt.err), tt.err.Error())
	}
}

func TestParseIntDefault(t *testing.T) {
	assert.Equal(t, 50, parseIntDefault("", 50))
	assert.Equal(t, 3, parseIntDefault("3", 50))
	assert.Equal(t, 50, parseIntDefault("abc", 50))
	assert.Equal(t, 50, parseIntDefault("-1", 50))
}

func TestIngestKeepsDatasetWhenFiguresOverflow(t *testing.T) {
	h := newTestRouter(t)
	overflow := strings.ReplaceAll(testDataset, `"sale_price": 20, "discount": 0`, `"sale_price": 1e308, "discount": 0`)

	rec := ingestJSON(t, h, "overflow", overflow)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decode[ingestion.IngestResult](t, rec)
	assert.Equal(t, ingestion.StatusIngested, res.Status)
	assert.Empty(t, res.ReportID)
	assert.Contains(t, res.ReportError, "not a finite number")

	rec = do(t, h, http.MethodPost, "/api/v1/analyze", bytes.NewBufferString(overflow), "application/json")
	assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
}
