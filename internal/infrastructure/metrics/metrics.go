package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/shopspring/decimal"

	"github.com/iho/ledgerd/internal/domain"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	AccountsCreated  prometheus.Counter
	TransfersCreated prometheus.Counter
	CreateResults    *prometheus.CounterVec
	BatchSize        *prometheus.HistogramVec
	BatchDuration    *prometheus.HistogramVec
	TransferAmount   prometheus.Histogram

	// Query metrics
	Queries       *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec

	// Journal metrics
	JournalAppends      prometheus.Counter
	JournalErrors       prometheus.Counter
	JournalReplayed     *prometheus.CounterVec
	JournalReplayMillis prometheus.Gauge

	// API metrics
	HTTPRequests  *prometheus.CounterVec
	HTTPDuration  *prometheus.HistogramVec
	HTTPInFlight  prometheus.Gauge
	RateLimitHits *prometheus.CounterVec
}

// New creates and registers all Prometheus metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)

	return &Metrics{
		AccountsCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "ledgerd_accounts_created_total",
			Help: "Total number of accounts created",
		}),
		TransfersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "ledgerd_transfers_created_total",
			Help: "Total number of transfers committed",
		}),
		CreateResults: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerd_create_results_total",
				Help: "Per-item outcomes of create batches",
			},
			[]string{"kind", "result"},
		),
		BatchSize: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgerd_batch_size",
				Help:    "Items per create batch",
				Buckets: []float64{1, 8, 64, 512, 2048, 8189},
			},
			[]string{"kind"},
		),
		BatchDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgerd_batch_duration_seconds",
				Help:    "Duration of create batches, journal included",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"kind"},
		),
		TransferAmount: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "ledgerd_transfer_amount",
			Help:    "Committed transfer amounts",
			Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
		}),
		Queries: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerd_queries_total",
				Help: "Total number of read operations",
			},
			[]string{"operation"},
		),
		QueryDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgerd_query_duration_seconds",
				Help:    "Duration of read operations",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		JournalAppends: f.NewCounter(prometheus.CounterOpts{
			Name: "ledgerd_journal_appends_total",
			Help: "Batches written to the journal",
		}),
		JournalErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "ledgerd_journal_errors_total",
			Help: "Journal appends that failed and rejected their batch",
		}),
		JournalReplayed: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerd_journal_replayed_total",
				Help: "Records replayed from the journal at startup",
			},
			[]string{"kind"},
		),
		JournalReplayMillis: f.NewGauge(prometheus.GaugeOpts{
			Name: "ledgerd_journal_replay_milliseconds",
			Help: "Duration of the last journal replay",
		}),
		HTTPRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerd_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ledgerd_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "ledgerd_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ledgerd_rate_limit_hits_total",
				Help: "Requests rejected by the rate limiter",
			},
			[]string{"path"},
		),
	}
}

// ObserveResults counts per-item outcomes of one batch.
func (m *Metrics) ObserveResults(kind string, results []domain.CreateResult, took time.Duration) {
	m.BatchSize.WithLabelValues(kind).Observe(float64(len(results)))
	m.BatchDuration.WithLabelValues(kind).Observe(took.Seconds())
	for _, r := range results {
		m.CreateResults.WithLabelValues(kind, r.String()).Inc()
	}
}

// ObserveAmount records a committed transfer amount.
func (m *Metrics) ObserveAmount(amount domain.Uint128) {
	v, _ := decimal.NewFromBigInt(amount.Big(), 0).Float64()
	m.TransferAmount.Observe(v)
}
