// Package metrics exposes quote board state and fetch outcomes as Prometheus metrics.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jsamuelsen/quoteboard/internal/domain"
)

const namespace = "quoteboard"

// BoardMetrics implements ports.BoardObserver and ports.FetchRecorder.
type BoardMetrics struct {
	savedQuotes   prometheus.Gauge
	boardVersion  prometheus.Gauge
	hasCurrent    prometheus.Gauge
	fetchTotal    *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
}

// NewBoardMetrics creates the collectors and registers them on reg.
func NewBoardMetrics(reg prometheus.Registerer) (*BoardMetrics, error) {
	m := &BoardMetrics{
		savedQuotes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "saved_quotes",
			Help:      "Number of quotes in the saved list.",
		}),
		boardVersion: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "board_version",
			Help:      "Version of the board, incremented on every change.",
		}),
		hasCurrent: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "current_quote_present",
			Help:      "1 when a current quote is displayed, 0 otherwise.",
		}),
		fetchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_total",
			Help:      "Quote fetches by outcome.",
		}, []string{"outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Duration of quote fetches by outcome.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"outcome"}),
	}

	for _, c := range []prometheus.Collector{
		m.savedQuotes, m.boardVersion, m.hasCurrent, m.fetchTotal, m.fetchDuration,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering board metrics: %w", err)
		}
	}

	// Expose every outcome from the start so rate() queries see zeros.
	for _, o := range []domain.FetchOutcome{domain.FetchSuccess, domain.FetchFailed, domain.FetchStale} {
		m.fetchTotal.WithLabelValues(string(o))
	}

	return m, nil
}

// ObserveBoard updates the state gauges from a committed snapshot.
func (m *BoardMetrics) ObserveBoard(board domain.Board) {
	m.savedQuotes.Set(float64(len(board.Saved)))
	m.boardVersion.Set(float64(board.Version))

	if board.HasCurrent() {
		m.hasCurrent.Set(1)
	} else {
		m.hasCurrent.Set(0)
	}
}

// RecordFetch counts a fetch and records its duration.
func (m *BoardMetrics) RecordFetch(outcome domain.FetchOutcome, duration time.Duration) {
	m.fetchTotal.WithLabelValues(string(outcome)).Inc()
	m.fetchDuration.WithLabelValues(string(outcome)).Observe(duration.Seconds())
}
