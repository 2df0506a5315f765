package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BetStatus represents the status of a bet
type BetStatus string

const (
	BetStatusPending BetStatus = "pending"
	BetStatusSettled BetStatus = "settled"
)

// Bet is a replayed 1X2 wager
type Bet struct {
	ID          uuid.UUID        `json:"id"`
	DecisionID  uuid.UUID        `json:"decision_id"`
	HomeTeam    string           `json:"home_team"`
	AwayTeam    string           `json:"away_team"`
	Selection   Selection        `json:"selection"`
	Odds        float64          `json:"odds"`
	Probability float64          `json:"probability"`
	Stake       decimal.Decimal  `json:"stake"`
	Status      BetStatus        `json:"status"`
	PlacedAt    time.Time        `json:"placed_at"`
	SettledAt   *time.Time       `json:"settled_at"`
	ProfitLoss  *decimal.Decimal `json:"profit_loss"`
}

// Settle resolves the bet against a full-time result and returns the P&L
func (b *Bet) Settle(result Outcome, at time.Time) decimal.Decimal {
	pnl := b.Stake.Neg()
	if b.Selection.Outcome() == result {
		pnl = b.Stake.Mul(decimal.NewFromFloat(b.Odds - 1)).Round(2)
	}
	b.Status = BetStatusSettled
	b.SettledAt = &at
	b.ProfitLoss = &pnl
	return pnl
}

// IsSettled checks if the bet has been settled
func (b *Bet) IsSettled() bool {
	return b.Status == BetStatusSettled && b.SettledAt != nil
}

// GetROI returns the return on investment percentage
func (b *Bet) GetROI() float64 {
	if b.Stake.IsZero() || b.ProfitLoss == nil {
		return 0
	}
	return b.ProfitLoss.Div(b.Stake).InexactFloat64() * 100
}
