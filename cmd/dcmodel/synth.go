package main

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/yourusername/dixon-coles/internal/backtest"
	"github.com/yourusername/dixon-coles/internal/dixoncoles"
	"github.com/yourusername/dixon-coles/internal/models"
	"github.com/yourusername/dixon-coles/internal/simulator"
)

var synthFlags struct {
	csvOutput string
	fitOnly   bool
}

func init() {
	synthCmd.Flags().StringVar(&synthFlags.csvOutput, "csv", "", "Write headline metrics as CSV to this path")
	synthCmd.Flags().BoolVar(&synthFlags.fitOnly, "fit-only", false, "Fit the full league once and print ratings without backtesting")
}

var synthCmd = &cobra.Command{
	Use:   "synth",
	Short: "Generate a synthetic league, fit it and backtest the value strategy",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return runSynth(ctx, cmd)
	},
}

func runSynth(ctx context.Context, cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	sc := cfg.Synthetic
	rng := rand.New(rand.NewSource(sc.Seed))

	truth, err := simulator.GenerateParams(simulator.RatingConfig{
		Teams:         sc.Teams,
		AttackSpread:  sc.AttackSpread,
		DefenceSpread: sc.DefenceSpread,
		Rho:           sc.Rho,
		HomeAdvantage: sc.HomeAdvantage,
	}, rng)
	if err != nil {
		return err
	}
	start, err := sc.ParsedStartDate()
	if err != nil {
		return err
	}
	matches, err := simulator.GenerateLeague(truth, simulator.LeagueConfig{
		Seasons:   sc.Seasons,
		MaxGoals:  cfg.Simulator.MaxGoals,
		Div:       "SYN",
		StartDate: start,
		RoundGap:  sc.RoundGap(),
		WithOdds:  true,
		Margin:    sc.Margin,
	}, rng)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"teams":   sc.Teams,
		"seasons": sc.Seasons,
		"matches": len(matches),
	}).Info("Synthetic league generated")

	began := time.Now()
	opts := solverOptions()
	opts.Rand = rand.New(rand.NewSource(cfg.Solver.Seed))
	fit, err := dixoncoles.NewSolver(opts, log).FitDecayed(ctx, matches, cfg.Solver.Decay)
	if err != nil {
		return err
	}
	printRatings(cmd, truth, fit)
	fmt.Fprintf(out, "Full fit: %s after %d iterations in %s\n\n", fit.Status, fit.Iterations, elapsed(began))
	if synthFlags.fitOnly {
		return nil
	}

	btCfg, err := backtest.FromConfig(&cfg.Backtest, cfg.Solver.Seed)
	if err != nil {
		return err
	}
	btCfg = fitSchedule(btCfg, matches, sc.Seasons)
	sim := newSimulator()
	vs, err := newStrategy(sim, cfg.Staking.KellyFraction)
	if err != nil {
		return err
	}
	engine, err := backtest.NewEngine(btCfg, solverOptions(), sim, vs, log)
	if err != nil {
		return err
	}

	result, err := engine.Run(ctx, matches)
	if err != nil {
		return err
	}
	fmt.Fprint(out, backtest.GenerateConsoleReport(result))
	fmt.Fprintf(out, "\nCompleted in %s\n", elapsed(began))

	if synthFlags.csvOutput != "" {
		if err := os.WriteFile(synthFlags.csvOutput, []byte(backtest.GenerateCSVExport(result)), 0o644); err != nil {
			return fmt.Errorf("failed to write csv: %w", err)
		}
	}
	return nil
}

func printRatings(cmd *cobra.Command, truth *dixoncoles.Params, fit *dixoncoles.FitResult) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%-10s %9s %9s %9s %9s\n", "Team", "attack", "(true)", "defence", "(true)")
	for _, team := range fit.Teams {
		fmt.Fprintf(out, "%-10s %9.3f %9.3f %9.3f %9.3f\n", team,
			fit.Params.Attack[team], truth.Attack[team],
			fit.Params.Defence[team], truth.Defence[team])
	}
	fmt.Fprintf(out, "%-10s %9.3f %9.3f\n", "rho", fit.Params.Rho, truth.Rho)
	fmt.Fprintf(out, "%-10s %9.3f %9.3f\n", "home adv", fit.Params.HomeAdvantage, truth.HomeAdvantage)
}

// fitSchedule pulls the first cutoff back so every window trains on at least
// one season of the generated history.
func fitSchedule(bt backtest.BacktestConfig, matches []models.Match, seasons int) backtest.BacktestConfig {
	if len(matches) == 0 || seasons < 1 {
		return bt
	}
	oldest := 0.0
	for _, m := range matches {
		oldest = math.Max(oldest, m.TimeDiff)
	}
	season := (oldest + 1) / float64(seasons)
	limit := oldest - season
	if bt.CutoffStart <= limit {
		return bt
	}

	start := bt.CutoffEnd
	if limit > bt.CutoffEnd {
		start = bt.CutoffEnd + math.Floor((limit-bt.CutoffEnd)/bt.CutoffStep)*bt.CutoffStep
	}
	log.WithFields(logrus.Fields{
		"configured_start": bt.CutoffStart,
		"cutoff_start":     start,
		"oldest":           oldest,
	}).Warn("Cutoff schedule exceeds the synthetic history, shortening it")
	bt.CutoffStart = start
	return bt
}
