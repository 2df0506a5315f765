// Package metrics defines backtesting-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Backtest counter vectors
var (
	BacktestWindowsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "backtest_windows_total",
		Help:      "Total number of backtest windows by status",
	}, []string{"status"})
)

// Backtest histograms
var (
	BacktestWindowScore = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_window_score",
		Help:      "Summed log-probability of realised outcomes per non-empty window",
		Buckets:   []float64{-100, -50, -30, -20, -10, -5, -2, -1, 0},
	})
	BacktestDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "backtest_duration_seconds",
		Help:      "Duration of backtest runs in seconds",
		Buckets:   []float64{1, 5, 10, 30, 60, 300, 600, 1800},
	})
)

// Backtest gauges
var (
	DecaySearchBestRate = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "decay_search_best_rate",
		Help:      "Decay rate with the highest total score in the last search",
	})
)

// RecordWindow records a scored backtest window.
// status should be one of: "scored", "empty", "failed"
func RecordWindow(status string, score float64) {
	BacktestWindowsTotal.WithLabelValues(status).Inc()
	if status == "scored" {
		BacktestWindowScore.Observe(score)
	}
}

// RecordBacktestDuration records backtest duration.
func RecordBacktestDuration(durationSeconds float64) {
	BacktestDuration.Observe(durationSeconds)
}

// UpdateBestDecay updates the best decay rate gauge.
func UpdateBestDecay(rate float64) {
	DecaySearchBestRate.Set(rate)
}
