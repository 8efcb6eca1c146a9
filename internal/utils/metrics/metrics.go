package metrics

import (
	"log/slog"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "fts_articles"

// Metrics keeps its collectors on a private registry; nothing is served over
// the network, PrintMetrics dumps them through the logger at debug level once
// a command has run.
type Metrics struct {
	registry         *prometheus.Registry
	jobs             *prometheus.CounterVec
	jobDuration      prometheus.Histogram
	articlesIndexed  prometheus.Counter
	articlesRejected *prometheus.CounterVec
	analysisDuration prometheus.Histogram
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		jobs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "load_jobs_total",
				Help:      "Article file parse jobs by status (success, failure).",
			},
			[]string{"status"},
		),
		jobDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "load_job_duration_seconds",
				Help:      "Time spent parsing one article file.",
				Buckets:   []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
			},
		),
		articlesIndexed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "articles_indexed_total",
				Help:      "Articles added to the repository.",
			},
		),
		articlesRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "articles_rejected_total",
				Help:      "Articles refused by the repository, by reason.",
			},
			[]string{"reason"},
		),
		analysisDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "analysis_duration_seconds",
				Help:      "Time spent building one analysis report.",
				Buckets:   prometheus.DefBuckets,
			},
		),
	}

	m.registry.MustRegister(
		m.jobs,
		m.jobDuration,
		m.articlesIndexed,
		m.articlesRejected,
		m.analysisDuration,
	)
	return m
}

func (m *Metrics) RecordSuccess(duration time.Duration) {
	m.jobs.WithLabelValues("success").Inc()
	m.jobDuration.Observe(duration.Seconds())
}

func (m *Metrics) RecordFailure(duration time.Duration) {
	m.jobs.WithLabelValues("failure").Inc()
	m.jobDuration.Observe(duration.Seconds())
}

func (m *Metrics) ArticleIndexed() {
	m.articlesIndexed.Inc()
}

func (m *Metrics) ArticleRejected(reason string) {
	m.articlesRejected.WithLabelValues(reason).Inc()
}

func (m *Metrics) ObserveAnalysis(duration time.Duration) {
	m.analysisDuration.Observe(duration.Seconds())
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) PrintMetrics(log *slog.Logger) {
	families, err := m.registry.Gather()
	if err != nil {
		log.Error("Failed to gather metrics", "error", err.Error())
		return
	}

	for _, family := range families {
		for _, metric := range family.GetMetric() {
			labels := make([]string, 0, len(metric.GetLabel()))
			for _, l := range metric.GetLabel() {
				labels = append(labels, l.GetName()+"="+l.GetValue())
			}

			attrs := []any{"name", family.GetName()}
			if len(labels) > 0 {
				attrs = append(attrs, "labels", strings.Join(labels, ","))
			}
			if c := metric.GetCounter(); c != nil {
				attrs = append(attrs, "value", c.GetValue())
			}
			if h := metric.GetHistogram(); h != nil {
				attrs = append(attrs, "count", h.GetSampleCount(), "sum", h.GetSampleSum())
			}
			log.Debug("Metrics", attrs...)
		}
	}
}
