package obs

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ReportMetrics groups Prometheus collectors for report generation.
type ReportMetrics struct {
	Generated *prometheus.CounterVec
	Duration  prometheus.Histogram
	Sellers   prometheus.Histogram
	Ingested  *prometheus.CounterVec
}

// NewReportMetrics registers and returns report collectors.
func NewReportMetrics(namespace string, reg prometheus.Registerer) *ReportMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &ReportMetrics{
		Generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reports_generated_total",
			Help:      "Seller reports computed, by outcome.",
		}, []string{"outcome"}),
		Duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_duration_ms",
			Help:      "Time spent computing a seller report in milliseconds.",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000},
		}),
		Sellers: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "report_sellers",
			Help:      "Number of sellers ranked per report.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		Ingested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datasets_ingested_total",
			Help:      "Datasets ingested, by format and outcome.",
		}, []string{"format", "outcome"}),
	}
	m.Generated = mustRegister(reg, m.Generated)
	m.Duration = mustRegister(reg, m.Duration)
	m.Sellers = mustRegister(reg, m.Sellers)
	m.Ingested = mustRegister(reg, m.Ingested)
	return m
}

// ObserveReport records one report run. A nil receiver is a no-op.
func (m *ReportMetrics) ObserveReport(outcome string, sellers int, d time.Duration) {
	if m == nil {
		return
	}
	m.Generated.WithLabelValues(outcome).Inc()
	m.Duration.Observe(DurationMillis(d))
	if sellers > 0 {
		m.Sellers.Observe(float64(sellers))
	}
}

// ObserveIngest records one ingestion attempt. A nil receiver is a no-op.
func (m *ReportMetrics) ObserveIngest(format, outcome string) {
	if m == nil {
		return
	}
	m.Ingested.WithLabelValues(format, outcome).Inc()
}

// DurationMillis converts a duration to milliseconds for metric observation.
func DurationMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}

// mustRegister returns the already registered collector when c was
// registered before under the same descriptor.
func mustRegister[T prometheus.Collector](reg prometheus.Registerer, c T) T {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(T); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
