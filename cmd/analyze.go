package cmd

import (
	"fmt"
	"io"
	"sort"

	"lotto/service"
)

// DefaultAnalysisTrials is the number of simulated tickets when none is given
const DefaultAnalysisTrials = 100000

// Analyze runs a Monte Carlo check of the payout rules and writes a report to w
func Analyze(w io.Writer, trials int) error {
	result, err := service.AnalyzePayouts(trials, 100, service.RandomDraw{}, nil)
	if err != nil {
		return err
	}
	writeAnalysis(w, result)
	return nil
}

func writeAnalysis(w io.Writer, result *service.PayoutAnalysis) {
	fmt.Fprintln(w, "=== Lotto payout analysis ===")
	fmt.Fprintf(w, "Trials: %d, bet per ticket: %s\n", result.Trials, service.FormatAmount(result.Bet))
	fmt.Fprintf(w, "Exact matches: %d (expected %.1f)\n", result.ExactHits, float64(result.Trials)/10000)
	fmt.Fprintf(w, "Last two matches: %d (expected %.1f)\n", result.LastTwoHits, float64(result.Trials)*99/10000)
	fmt.Fprintf(w, "Total bet: %s, total win: %s\n", service.FormatAmount(result.TotalBet), service.FormatAmount(result.TotalWin))
	fmt.Fprintf(w, "Return to player: %.4f simulated, %.4f expected\n", result.SimulatedRTP, result.ExpectedRTP)

	// 9 degrees of freedom, 16.92 is the 5% critical value
	verdict := "PASS"
	if result.ChiSquared > 16.92 {
		verdict = "FAIL"
	}
	fmt.Fprintf(w, "Leading digit χ²: %.2f %s\n", result.ChiSquared, verdict)

	letters := make([]int, 0, len(result.LabelPerTrial))
	for k := range result.LabelPerTrial {
		letters = append(letters, k)
	}
	sort.Ints(letters)
	for _, k := range letters {
		fmt.Fprintf(w, "Label with %d letter(s) returns %.0fx the bet\n", k, result.LabelPerTrial[k])
	}
}
