package backtest

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/yourusername/dixon-coles/internal/models"
)

// BacktestState tracks the bankroll ledger of a replay
type BacktestState struct {
	InitialBankroll decimal.Decimal
	CurrentBankroll decimal.Decimal
	PeakBankroll    decimal.Decimal
	Bets            []*models.Bet
	EquityCurve     EquityCurve
	DailyPnL        map[time.Time]decimal.Decimal
}

// NewBacktestState initializes backtest state with an opening equity point at start
func NewBacktestState(initialBankroll float64, start time.Time) *BacktestState {
	initial := decimal.NewFromFloat(initialBankroll).Round(2)
	state := &BacktestState{
		InitialBankroll: initial,
		CurrentBankroll: initial,
		PeakBankroll:    initial,
		Bets:            []*models.Bet{},
		EquityCurve:     EquityCurve{},
		DailyPnL:        make(map[time.Time]decimal.Decimal),
	}
	state.RecordEquityPoint(start, initial)
	return state
}

// UpdateState applies a settled bet to the ledger
func (s *BacktestState) UpdateState(bet *models.Bet, pnl decimal.Decimal) {
	s.CurrentBankroll = s.CurrentBankroll.Add(pnl)
	if s.CurrentBankroll.GreaterThan(s.PeakBankroll) {
		s.PeakBankroll = s.CurrentBankroll
	}
	s.Bets = append(s.Bets, bet)

	if bet.SettledAt != nil {
		day := time.Date(bet.SettledAt.Year(), bet.SettledAt.Month(), bet.SettledAt.Day(), 0, 0, 0, 0, bet.SettledAt.Location())
		s.DailyPnL[day] = s.DailyPnL[day].Add(pnl)
	}
}

// Bankroll returns the current bankroll as a float for staking
func (s *BacktestState) Bankroll() float64 {
	return s.CurrentBankroll.InexactFloat64()
}

// GetCurrentDrawdown calculates peak-to-trough drawdown
func (s *BacktestState) GetCurrentDrawdown() float64 {
	if !s.PeakBankroll.IsPositive() {
		return 0
	}
	drawdown := s.PeakBankroll.Sub(s.CurrentBankroll).Div(s.PeakBankroll).InexactFloat64()
	if drawdown < 0 {
		return 0
	}
	return drawdown
}

// RecordEquityPoint adds an equity point to the curve
func (s *BacktestState) RecordEquityPoint(t time.Time, value decimal.Decimal) {
	drawdown := 0.0
	if value.LessThan(s.PeakBankroll) && s.PeakBankroll.IsPositive() {
		drawdown = s.PeakBankroll.Sub(value).Div(s.PeakBankroll).InexactFloat64()
	}

	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	s.EquityCurve = append(s.EquityCurve, EquityPoint{
		Time:     t,
		Value:    value.InexactFloat64(),
		Drawdown: drawdown,
		DailyPnL: s.DailyPnL[day].InexactFloat64(),
	})
}
