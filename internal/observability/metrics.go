package observability

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/couchcryptid/climate-risk-etl/internal/domain"
)

const namespace = "climate_risk"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// assessment pipeline.
type Metrics struct {
	RequestsConsumed    prometheus.Counter
	AssessmentsProduced prometheus.Counter
	TransformErrors     prometheus.Counter
	PipelineRunning     prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Assessment metrics.
	HazardFailures  *prometheus.CounterVec   // labels: risk_type
	FinalAAL        *prometheus.HistogramVec // labels: risk_type
	IntegratedScore prometheus.Histogram
	Ratings         *prometheus.CounterVec // labels: rating
}

var (
	aalBuckets   = []float64{0.5, 1, 2.5, 5, 7.5, 10, 15, 20, 30, 50}
	scoreBuckets = []float64{10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
)

func newMetrics() *Metrics {
	return &Metrics{
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_consumed_total",
			Help:      "Total site requests read from the source topic.",
		}),
		AssessmentsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_produced_total",
			Help:      "Total site assessments written to the sink topic.",
		}),
		TransformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "transform_errors_total",
			Help:      "Total site requests that could not be parsed.",
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      "1 when the pipeline is active, 0 when shut down.",
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      "Number of site requests per batch extracted from Kafka.",
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      "Duration of a complete batch extract-assess-load cycle.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		HazardFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "hazard_failures_total",
			Help:      "Per-hazard computations that ended in status failed.",
		}, []string{"risk_type"}),
		FinalAAL: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "final_aal_percentage",
			Help:      "Final average annual loss percentage by hazard.",
			Buckets:   aalBuckets,
		}, []string{"risk_type"}),
		IntegratedScore: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "integrated_score",
			Help:      "Integrated 0-100 risk score per site.",
			Buckets:   scoreBuckets,
		}),
		Ratings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ratings_total",
			Help:      "Site assessments by integrated risk rating.",
		}, []string{"rating"}),
	}
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.RequestsConsumed,
		m.AssessmentsProduced,
		m.TransformErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.HazardFailures,
		m.FinalAAL,
		m.IntegratedScore,
		m.Ratings,
	}
}

// NewMetrics creates and registers all pipeline metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics()
	prometheus.MustRegister(m.collectors()...)
	return m
}

// NewMetricsForTesting creates Metrics registered on a fresh registry to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	m := newMetrics()
	prometheus.NewRegistry().MustRegister(m.collectors()...)
	return m
}

// ObserveAssessment records the outcome of one site assessment.
func (m *Metrics) ObserveAssessment(a domain.SiteAssessment) {
	for _, h := range a.Hazards {
		if h.Status == domain.StatusFailed {
			m.HazardFailures.WithLabelValues(string(h.RiskType)).Inc()
			continue
		}
		m.FinalAAL.WithLabelValues(string(h.RiskType)).Observe(h.AAL.FinalAALPercentage)
	}
	m.IntegratedScore.Observe(a.Integrated.IntegratedScore)
	m.Ratings.WithLabelValues(string(a.Integrated.RiskRating)).Inc()
}
