package backtest

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/yourusername/dixon-coles/internal/metrics"
	"github.com/yourusername/dixon-coles/internal/models"
)

// DecaySearchResult ranks a grid of decay rates by predictive score
type DecaySearchResult struct {
	BestDecay float64       `json:"best_decay"`
	BestScore float64       `json:"best_score"`
	Scores    []*DecayScore `json:"scores"`
}

// RunDecaySearch scores every configured decay rate and picks the one whose
// refits best predicted the held-out results. Rates are scored concurrently up
// to the configured limit; ties go to the rate listed first.
func (e *Engine) RunDecaySearch(ctx context.Context, matches []models.Match) (*DecaySearchResult, error) {
	return e.SearchDecayRates(ctx, matches, e.config.DecayRates)
}

// SearchDecayRates is RunDecaySearch over an explicit grid
func (e *Engine) SearchDecayRates(ctx context.Context, matches []models.Match, rates []float64) (*DecaySearchResult, error) {
	if len(rates) == 0 {
		return nil, fmt.Errorf("decay search needs at least one rate")
	}
	if len(matches) == 0 {
		return nil, models.ErrEmptyDataset
	}

	scores := make([]*DecayScore, len(rates))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Concurrency)
	for i, xi := range rates {
		i, xi := i, xi
		g.Go(func() error {
			score, err := e.ScoreDecayRate(gctx, matches, xi)
			if err != nil {
				return fmt.Errorf("decay rate %g: %w", xi, err)
			}
			scores[i] = score
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		e.logger.WithError(err).Error("Decay search failed")
		return nil, err
	}

	result := &DecaySearchResult{
		BestDecay: rates[0],
		BestScore: math.Inf(-1),
		Scores:    scores,
	}
	for _, s := range scores {
		if s.Total > result.BestScore {
			result.BestDecay = s.Decay
			result.BestScore = s.Total
		}
	}
	if math.IsInf(result.BestScore, -1) {
		result.BestScore = scores[0].Total
	}

	metrics.UpdateBestDecay(result.BestDecay)
	e.strategyLogger.LogDecaySearch(len(rates), result.BestDecay, result.BestScore)
	e.logger.WithFields(logrus.Fields{
		"candidates": len(rates),
		"best_decay": result.BestDecay,
	}).Debug("Decay search scores ranked")
	return result, nil
}
