// Package metrics provides centralized Prometheus metrics registry for the model.
package metrics

import (
	"io"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
)

const namespace = "dixon_coles"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Solver metrics
var (
	FitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fits_total",
		Help:      "Total number of parameter fits by method and status",
	}, []string{"method", "status"})
	FitDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fit_duration_seconds",
		Help:      "Duration of parameter fits in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30},
	}, []string{"method"})
	FitIterations = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "fit_iterations",
		Help:      "Major optimiser iterations per fit",
		Buckets:   []float64{5, 10, 25, 50, 100, 250, 500, 1000},
	})
)

// Simulator cache metrics
var (
	SimulationCacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulation_cache_hits_total",
		Help:      "Total number of score matrices served from cache",
	})
	SimulationCacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "simulation_cache_misses_total",
		Help:      "Total number of score matrices computed",
	})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		// Register solver metrics
		registry.MustRegister(FitsTotal)
		registry.MustRegister(FitDuration)
		registry.MustRegister(FitIterations)

		// Register simulator metrics
		registry.MustRegister(SimulationCacheHits)
		registry.MustRegister(SimulationCacheMisses)

		// Register strategy metrics
		registry.MustRegister(StrategyDecisionsTotal)
		registry.MustRegister(StakeAmount)
		registry.MustRegister(CurrentBankroll)
		registry.MustRegister(BetsPlacedTotal)
		registry.MustRegister(BetsSettledTotal)

		// Register backtest metrics
		registry.MustRegister(BacktestWindowsTotal)
		registry.MustRegister(BacktestWindowScore)
		registry.MustRegister(BacktestDuration)
		registry.MustRegister(DecaySearchBestRate)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	if registry == nil {
		return InitRegistry()
	}
	return registry
}

// WriteText writes every registered metric family in the Prometheus text format.
func WriteText(w io.Writer) error {
	families, err := GetRegistry().Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}

// RecordFit records a completed parameter fit.
func RecordFit(method, status string, iterations int, durationSeconds float64) {
	FitsTotal.WithLabelValues(method, status).Inc()
	FitDuration.WithLabelValues(method).Observe(durationSeconds)
	FitIterations.Observe(float64(iterations))
}

// RecordCacheHit records a score matrix served from cache.
func RecordCacheHit() {
	SimulationCacheHits.Inc()
}

// RecordCacheMiss records a score matrix that had to be computed.
func RecordCacheMiss() {
	SimulationCacheMisses.Inc()
}
