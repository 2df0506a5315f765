package backtest

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/stat"

	"github.com/yourusername/dixon-coles/internal/models"
)

// Metrics represents replay performance metrics
type Metrics struct {
	InitialBankroll float64 `json:"initial_bankroll"`
	FinalBankroll   float64 `json:"final_bankroll"`
	NetProfit       float64 `json:"net_profit"`
	TotalReturn     float64 `json:"total_return"`
	Turnover        float64 `json:"turnover"`
	ROI             float64 `json:"roi"`
	MaxDrawdown     float64 `json:"max_drawdown"`
	SharpeRatio     float64 `json:"sharpe_ratio"`
	ValueAtRisk95   float64 `json:"var_95"`
	TotalBets       int     `json:"total_bets"`
	WinningBets     int     `json:"winning_bets"`
	LosingBets      int     `json:"losing_bets"`
	WinRate         float64 `json:"win_rate"`
	ExpectedWinRate float64 `json:"expected_win_rate"`
	ProfitFactor    float64 `json:"profit_factor"`
	AverageWin      float64 `json:"average_win"`
	AverageLoss     float64 `json:"average_loss"`
	Expectancy      float64 `json:"expectancy"`
	LargestWin      float64 `json:"largest_win"`
	LargestLoss     float64 `json:"largest_loss"`
	AverageOdds     float64 `json:"average_odds"`
	ParameterHash   string  `json:"parameter_hash"`
}

// CalculateMetrics calculates metrics from the replay ledger
func CalculateMetrics(state *BacktestState) Metrics {
	var m Metrics
	if state == nil {
		return m
	}

	m.InitialBankroll = state.InitialBankroll.InexactFloat64()
	m.FinalBankroll = state.CurrentBankroll.InexactFloat64()
	net := state.CurrentBankroll.Sub(state.InitialBankroll)
	m.NetProfit = net.InexactFloat64()
	if state.InitialBankroll.IsPositive() {
		m.TotalReturn = net.Div(state.InitialBankroll).InexactFloat64()
	}
	m.MaxDrawdown = state.EquityCurve.MaxDrawdown()

	turnover := decimal.Zero
	for _, bet := range state.Bets {
		turnover = turnover.Add(bet.Stake)
	}
	m.Turnover = turnover.InexactFloat64()
	if turnover.IsPositive() {
		m.ROI = net.Div(turnover).InexactFloat64()
	}

	returns := betReturns(state.Bets)
	m.SharpeRatio = calculateSharpeRatio(returns)
	m.ValueAtRisk95 = calculateVaR(returns, 0.95)

	m.TotalBets = len(state.Bets)
	m.WinningBets, m.LosingBets, m.AverageWin, m.AverageLoss, m.LargestWin, m.LargestLoss = calculateBetStats(state.Bets)
	m.WinRate = calculateWinRate(m.WinningBets, m.TotalBets)
	m.ProfitFactor = calculateProfitFactor(state.Bets)
	m.Expectancy = calculateExpectancy(state.Bets)
	m.ExpectedWinRate, m.AverageOdds = calculateBetAverages(state.Bets)

	return m
}

// ToJSON exports metrics to JSON
func (m Metrics) ToJSON() string {
	data, _ := json.Marshal(m)
	return string(data)
}

// betReturns gives the profit of each settled bet per unit staked
func betReturns(bets []*models.Bet) []float64 {
	returns := make([]float64, 0, len(bets))
	for _, bet := range bets {
		if bet.ProfitLoss == nil || bet.Stake.IsZero() {
			continue
		}
		returns = append(returns, bet.ProfitLoss.Div(bet.Stake).InexactFloat64())
	}
	return returns
}

// calculateSharpeRatio is the per-bet mean return over its standard deviation
func calculateSharpeRatio(returns []float64) float64 {
	if len(returns) < 2 {
		return 0
	}
	mean, std := stat.MeanStdDev(returns, nil)
	if std == 0 {
		return 0
	}
	return mean / std
}

func calculateProfitFactor(bets []*models.Bet) float64 {
	grossProfit := decimal.Zero
	grossLoss := decimal.Zero
	for _, bet := range bets {
		if bet.ProfitLoss == nil {
			continue
		}
		if bet.ProfitLoss.IsPositive() {
			grossProfit = grossProfit.Add(*bet.ProfitLoss)
		} else {
			grossLoss = grossLoss.Add(bet.ProfitLoss.Abs())
		}
	}
	if grossLoss.IsZero() {
		if grossProfit.IsPositive() {
			return 999
		}
		return 0
	}
	return grossProfit.Div(grossLoss).InexactFloat64()
}

func calculateExpectancy(bets []*models.Bet) float64 {
	if len(bets) == 0 {
		return 0
	}
	net := decimal.Zero
	for _, bet := range bets {
		if bet.ProfitLoss != nil {
			net = net.Add(*bet.ProfitLoss)
		}
	}
	return net.Div(decimal.NewFromInt(int64(len(bets)))).InexactFloat64()
}

// calculateVaR returns the lower (1-level) quantile of returns
func calculateVaR(returns []float64, level float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	sorted := append([]float64{}, returns...)
	sort.Float64s(sorted)
	return stat.Quantile(1-level, stat.Empirical, sorted, nil)
}

func calculateBetStats(bets []*models.Bet) (int, int, float64, float64, float64, float64) {
	wins := 0
	losses := 0
	winSum := 0.0
	lossSum := 0.0
	largestWin := 0.0
	largestLoss := 0.0
	for _, bet := range bets {
		if bet.ProfitLoss == nil {
			continue
		}
		pl := bet.ProfitLoss.InexactFloat64()
		if pl > 0 {
			wins++
			winSum += pl
			if pl > largestWin {
				largestWin = pl
			}
		} else if pl < 0 {
			losses++
			lossSum += pl
			if pl < largestLoss {
				largestLoss = pl
			}
		}
	}

	avgWin := 0.0
	avgLoss := 0.0
	if wins > 0 {
		avgWin = winSum / float64(wins)
	}
	if losses > 0 {
		avgLoss = lossSum / float64(losses)
	}
	return wins, losses, avgWin, avgLoss, largestWin, largestLoss
}

// calculateBetAverages returns the mean model probability of the selections
// backed and the mean odds taken
func calculateBetAverages(bets []*models.Bet) (float64, float64) {
	if len(bets) == 0 {
		return 0, 0
	}
	probs := make([]float64, len(bets))
	odds := make([]float64, len(bets))
	for i, bet := range bets {
		probs[i] = bet.Probability
		odds[i] = bet.Odds
	}
	return stat.Mean(probs, nil), stat.Mean(odds, nil)
}

func calculateWinRate(wins, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(wins) / float64(total)
}

// HashParameters creates a stable hash for parameter maps
func HashParameters(params map[string]interface{}) string {
	data, _ := json.Marshal(params)
	hash := sha256.Sum256(data)
	return fmt.Sprintf("%x", hash)
}
