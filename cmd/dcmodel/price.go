package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/yourusername/dixon-coles/internal/dixoncoles"
	"github.com/yourusername/dixon-coles/internal/models"
	"github.com/yourusername/dixon-coles/internal/simulator"
	"github.com/yourusername/dixon-coles/internal/strategy"
)

var priceFlags struct {
	homeTeam     string
	awayTeam     string
	lambda       float64
	mu           float64
	rho          float64
	odds         models.MatchOdds
	bankroll     float64
	kelly        float64
	marginMethod string
}

func init() {
	f := priceCmd.Flags()
	f.StringVar(&priceFlags.homeTeam, "home", "Home", "Home team name")
	f.StringVar(&priceFlags.awayTeam, "away", "Away", "Away team name")
	f.Float64Var(&priceFlags.lambda, "lambda", 1.5, "Expected home goals")
	f.Float64Var(&priceFlags.mu, "mu", 1.0, "Expected away goals")
	f.Float64Var(&priceFlags.rho, "rho", 0, "Low-score dependence parameter")
	f.Float64Var(&priceFlags.odds.Home, "home-odds", 0, "Decimal odds on the home win")
	f.Float64Var(&priceFlags.odds.Draw, "draw-odds", 0, "Decimal odds on the draw")
	f.Float64Var(&priceFlags.odds.Away, "away-odds", 0, "Decimal odds on the away win")
	f.Float64Var(&priceFlags.bankroll, "bankroll", 1000, "Bankroll to stake from")
	f.Float64Var(&priceFlags.kelly, "kelly", 0, "Kelly fraction in (0, 1]; defaults to the staking config")
	f.StringVar(&priceFlags.marginMethod, "margin-method", string(strategy.MarginEqual), "Margin removal for fair odds: equal or power")
	_ = priceCmd.MarkFlagRequired("home-odds")
	_ = priceCmd.MarkFlagRequired("draw-odds")
	_ = priceCmd.MarkFlagRequired("away-odds")
}

var priceCmd = &cobra.Command{
	Use:   "price",
	Short: "Price a fixture from scoring rates and choose a stake",
	Long: `Builds the Dixon-Coles score matrix for the given scoring rates, prints the
1X2 probabilities and side markets, and applies the value strategy to the odds.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		kelly := priceFlags.kelly
		if kelly == 0 {
			kelly = cfg.Staking.KellyFraction
		}
		return runPrice(cmd.OutOrStdout(), kelly)
	},
}

func runPrice(out io.Writer, kelly float64) error {
	pf := priceFlags
	params, err := dixoncoles.ParamsFromRates(pf.homeTeam, pf.awayTeam, pf.lambda, pf.mu, pf.rho)
	if err != nil {
		return err
	}

	sim := newSimulator()
	matrix, err := sim.Simulate(params, pf.homeTeam, pf.awayTeam)
	if err != nil {
		return err
	}
	vs, err := newStrategy(sim, kelly)
	if err != nil {
		return err
	}
	decision, err := vs.Decide(params, pf.homeTeam, pf.awayTeam, pf.odds, pf.bankroll)
	if err != nil {
		return err
	}

	probs := decision.Probabilities
	fmt.Fprintf(out, "%s v %s  (lambda %.3f, mu %.3f, rho %.3f, max goals %d)\n",
		pf.homeTeam, pf.awayTeam, pf.lambda, pf.mu, pf.rho, sim.MaxGoals())
	fmt.Fprintf(out, "\n%-8s %8s %8s %8s\n", "", "Home", "Draw", "Away")
	fmt.Fprintf(out, "%-8s %8.4f %8.4f %8.4f\n", "Model", probs.Home, probs.Draw, probs.Away)
	fmt.Fprintf(out, "%-8s %8.2f %8.2f %8.2f\n", "Odds", pf.odds.Home, pf.odds.Draw, pf.odds.Away)
	fmt.Fprintf(out, "%-8s %8.4f %8.4f %8.4f\n", "EV", decision.ExpectedValues.Home, decision.ExpectedValues.Draw, decision.ExpectedValues.Away)

	if fair, err := strategy.FairProbabilities(pf.odds, strategy.MarginMethod(pf.marginMethod)); err == nil {
		fmt.Fprintf(out, "%-8s %8.4f %8.4f %8.4f\n", "Market", fair.Home, fair.Draw, fair.Away)
		if l, m, err := simulator.FitExpectedGoals(fair, sim.MaxGoals()); err == nil {
			fmt.Fprintf(out, "\nMarket-implied goals: %.3f - %.3f\n", l, m)
		}
	} else {
		log.WithError(err).Warn("Could not remove bookmaker margin")
	}
	if overround, err := strategy.Overround(pf.odds.Home, pf.odds.Draw, pf.odds.Away); err == nil {
		fmt.Fprintf(out, "Overround: %.2f%%\n", overround)
	}

	over, under := matrix.OverUnder(2.5)
	hg, ag, p := matrix.MostLikelyScore()
	fmt.Fprintf(out, "Over/under 2.5: %.4f / %.4f\n", over, under)
	fmt.Fprintf(out, "Both teams to score: %.4f\n", matrix.BothTeamsToScore())
	fmt.Fprintf(out, "Most likely score: %d-%d (%.4f)\n", hg, ag, p)
	fmt.Fprintf(out, "Grid mass: %.6f\n", matrix.TotalMass())

	fmt.Fprintf(out, "\nSelection: %s at %.2f, stake %.2f of %.2f (kelly fraction %g)\n",
		decision.Selection, decision.Odds, decision.Stake, pf.bankroll, decision.KellyFraction)
	if !vs.ShouldBet(decision) {
		fmt.Fprintln(out, "No bet: no selection clears the edge threshold")
	}
	return nil
}
