package backtest

import (
	"fmt"
	"strings"
)

// GenerateConsoleReport formats a run for terminal output
func GenerateConsoleReport(result *RunResult) string {
	var builder strings.Builder
	builder.WriteString("Backtest Report\n")
	builder.WriteString("================\n")
	if result == nil {
		builder.WriteString("No results\n")
		return builder.String()
	}
	builder.WriteString(fmt.Sprintf("Strategy: %s\n", result.Strategy))

	if result.Search != nil {
		builder.WriteString("\nDecay search\n")
		builder.WriteString("------------\n")
		for _, s := range result.Search.Scores {
			marker := " "
			if s.Decay == result.Search.BestDecay {
				marker = "*"
			}
			builder.WriteString(fmt.Sprintf("%s xi=%-8g score=%.4f windows=%d\n", marker, s.Decay, s.Total, s.Scored))
		}
		builder.WriteString(fmt.Sprintf("Best decay: %g\n", result.Search.BestDecay))
	}

	m := result.Metrics
	builder.WriteString("\nBetting replay\n")
	builder.WriteString("--------------\n")
	if result.Replay != nil && result.Replay.Halted {
		builder.WriteString("Replay halted at drawdown limit\n")
	}
	builder.WriteString(fmt.Sprintf("Bets: %d (won %d, lost %d)\n", m.TotalBets, m.WinningBets, m.LosingBets))
	builder.WriteString(fmt.Sprintf("Bankroll: %.2f -> %.2f\n", m.InitialBankroll, m.FinalBankroll))
	builder.WriteString(fmt.Sprintf("Total Return: %.2f%%\n", m.TotalReturn*100))
	builder.WriteString(fmt.Sprintf("ROI on turnover: %.2f%%\n", m.ROI*100))
	builder.WriteString(fmt.Sprintf("Max Drawdown: %.2f%%\n", m.MaxDrawdown*100))
	builder.WriteString(fmt.Sprintf("Win Rate: %.2f%% (model expected %.2f%%)\n", m.WinRate*100, m.ExpectedWinRate*100))
	builder.WriteString(fmt.Sprintf("Profit Factor: %.2f\n", m.ProfitFactor))
	builder.WriteString(fmt.Sprintf("Expectancy: %.2f\n", m.Expectancy))

	if mc := result.MonteCarlo; mc != nil {
		builder.WriteString("\nMonte Carlo\n")
		builder.WriteString("-----------\n")
		builder.WriteString(fmt.Sprintf("Iterations: %d\n", mc.Iterations))
		builder.WriteString(fmt.Sprintf("Mean Return: %.2f%%\n", mc.MeanReturn*100))
		builder.WriteString(fmt.Sprintf("VaR 95%%: %.2f%%\n", mc.VaR95*100))
		builder.WriteString(fmt.Sprintf("P(profit): %.2f\n", mc.ProbabilityOfProfit))
		builder.WriteString(fmt.Sprintf("P(ruin): %.2f\n", mc.ProbabilityOfRuin))
	}
	return builder.String()
}

// GenerateCSVExport renders the headline metrics as metric,value rows
func GenerateCSVExport(result *RunResult) string {
	if result == nil {
		return "metric,value\n"
	}
	m := result.Metrics
	csv := "metric,value\n" +
		fmt.Sprintf("total_bets,%d\n", m.TotalBets) +
		fmt.Sprintf("total_return,%.4f\n", m.TotalReturn) +
		fmt.Sprintf("roi,%.4f\n", m.ROI) +
		fmt.Sprintf("max_drawdown,%.4f\n", m.MaxDrawdown) +
		fmt.Sprintf("win_rate,%.4f\n", m.WinRate) +
		fmt.Sprintf("profit_factor,%.4f\n", m.ProfitFactor)
	if result.Search != nil {
		csv += fmt.Sprintf("best_decay,%g\n", result.Search.BestDecay)
	}
	return csv
}
