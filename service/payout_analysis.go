package service

import (
	"fmt"
	"math"
	"math/rand/v2"
)

// PayoutAnalysis summarises a Monte Carlo run of the payout rules
type PayoutAnalysis struct {
	Trials        int
	Bet           int64
	ExactHits     int
	LastTwoHits   int
	TotalBet      int64
	TotalWin      int64
	DigitBuckets  [10]int
	ChiSquared    float64
	ExpectedRTP   float64
	SimulatedRTP  float64
	LabelPerTrial map[int]float64
}

// ExpectedNumericRTP is the theoretical return of a numeric ticket:
// 1/10000 pays 100x and 99/10000 pay 5x.
func ExpectedNumericRTP() float64 {
	exact := 1.0 / 10000.0
	lastTwo := 99.0 / 10000.0
	return exact*float64(ExactMatchMultiplier) + lastTwo*float64(LastTwoMatchMultiplier)
}

// AnalyzePayouts plays one random numeric ticket per trial against the draw source
// and tallies hits, return to player and the uniformity of the draw's leading digit.
func AnalyzePayouts(trials int, bet int64, draws DrawSource, rng *rand.Rand) (*PayoutAnalysis, error) {
	if trials <= 0 {
		return nil, fmt.Errorf("trials must be positive, got %d", trials)
	}
	if bet <= 0 || bet > MaxBet {
		return nil, fmt.Errorf("bet must be between 1 and %d, got %d", MaxBet, bet)
	}
	if draws == nil {
		draws = RandomDraw{}
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	result := &PayoutAnalysis{
		Trials:        trials,
		Bet:           bet,
		ExpectedRTP:   ExpectedNumericRTP(),
		LabelPerTrial: make(map[int]float64),
	}

	for i := 0; i < trials; i++ {
		draw := draws.Next()
		num := fmt.Sprintf("%04d", rng.IntN(10000))

		win := EvaluateWin(num, "", bet, draw)
		result.TotalBet += bet
		result.TotalWin += win

		switch {
		case win == bet*ExactMatchMultiplier:
			result.ExactHits++
		case win == bet*LastTwoMatchMultiplier:
			result.LastTwoHits++
		}

		if len(draw) == NumLength && draw[0] >= '0' && draw[0] <= '9' {
			result.DigitBuckets[draw[0]-'0']++
		}
	}

	result.SimulatedRTP = float64(result.TotalWin) / float64(result.TotalBet)

	expectedPerBucket := float64(trials) / 10.0
	for _, count := range result.DigitBuckets {
		result.ChiSquared += math.Pow(float64(count)-expectedPerBucket, 2) / expectedPerBucket
	}

	// Label tickets pay a fixed multiple of the bet regardless of the draw
	for k := 1; k <= len(labelLetters); k++ {
		result.LabelPerTrial[k] = float64(k)
	}

	return result, nil
}
