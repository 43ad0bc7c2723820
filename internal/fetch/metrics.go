package fetch

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records fetcher activity. A nil *Metrics records nothing.
type Metrics struct {
	requests *prometheus.CounterVec
	retries  *prometheus.CounterVec
	bytes    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewMetrics creates the fetcher collectors and registers them on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "craftlaunch_fetch_requests_total",
				Help: "Artifact requests by pool and outcome",
			},
			[]string{"pool", "result"},
		),
		retries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "craftlaunch_fetch_retries_total",
				Help: "Download attempts that were retried",
			},
			[]string{"pool"},
		),
		bytes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "craftlaunch_fetch_bytes_total",
				Help: "Bytes downloaded and committed to the store",
			},
			[]string{"pool"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "craftlaunch_fetch_duration_seconds",
				Help:    "Duration of individual artifact requests",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"pool"},
		),
	}
	for _, c := range []prometheus.Collector{m.requests, m.retries, m.bytes, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(pool string, outcome Outcome, bytes int64, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.requests.WithLabelValues(pool, string(outcome)).Inc()
	if bytes > 0 {
		m.bytes.WithLabelValues(pool).Add(float64(bytes))
	}
	m.duration.WithLabelValues(pool).Observe(elapsed.Seconds())
}

func (m *Metrics) retry(pool string) {
	if m == nil {
		return
	}
	m.retries.WithLabelValues(pool).Inc()
}
