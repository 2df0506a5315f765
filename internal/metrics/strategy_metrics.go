// Package metrics defines strategy-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Strategy counter vectors
var (
	StrategyDecisionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "strategy_decisions_total",
		Help:      "Total number of staking decisions by selection",
	}, []string{"selection"})

	BetsPlacedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bets_placed_total",
		Help:      "Total number of bets placed in replay",
	})

	BetsSettledTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bets_settled_total",
		Help:      "Total number of bets settled by status",
	}, []string{"status"})
)

// Strategy histograms
var (
	StakeAmount = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stake_amount",
		Help:      "Recommended stake per decision in currency units",
		Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
	})
)

// Strategy gauges
var (
	CurrentBankroll = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "current_bankroll",
		Help:      "Current bankroll in currency units",
	})
)

// RecordDecision records a staking decision.
func RecordDecision(selection string, stake float64) {
	StrategyDecisionsTotal.WithLabelValues(selection).Inc()
	StakeAmount.Observe(stake)
}

// RecordBetPlaced records a bet placement event.
func RecordBetPlaced() {
	BetsPlacedTotal.Inc()
}

// RecordBetSettled records a bet settlement event.
func RecordBetSettled(status string) {
	BetsSettledTotal.WithLabelValues(status).Inc()
}

// UpdateBankroll updates the current bankroll gauge.
func UpdateBankroll(amount float64) {
	CurrentBankroll.Set(amount)
}
