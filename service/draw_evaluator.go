package service

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Payout multipliers
const (
	ExactMatchMultiplier   int64 = 100
	LastTwoMatchMultiplier int64 = 5
)

// labelLetters are the letters that pay on a ticket label
const labelLetters = "ABCD"

// DrawSource produces draw values
type DrawSource interface {
	Next() string
}

// RandomDraw draws uniformly from 0000 to 9999
type RandomDraw struct{}

func (RandomDraw) Next() string {
	return fmt.Sprintf("%04d", rand.IntN(10000))
}

// FixedDraw always draws the same value
type FixedDraw string

func (d FixedDraw) Next() string {
	return string(d)
}

// EvaluateWin computes the payout of one ticket against a draw.
// The numeric part pays bet*100 on an exact match, otherwise bet*5 when the last two digits match.
// The label part pays bet times the number of distinct letters from A to D it contains.
// Bets outside 1..MaxBet pay nothing.
func EvaluateWin(num, label string, bet int64, draw string) int64 {
	if bet <= 0 || bet > MaxBet {
		return 0
	}

	var win int64
	if num != "" {
		switch {
		case num == draw:
			win += bet * ExactMatchMultiplier
		case lastTwo(num) != "" && lastTwo(num) == lastTwo(draw):
			win += bet * LastTwoMatchMultiplier
		}
	}

	win += bet * int64(LabelLetterCount(label))
	return win
}

// LabelLetterCount counts the distinct letters A-D in label, ignoring case
func LabelLetterCount(label string) int {
	seen := make(map[rune]bool, len(labelLetters))
	for _, r := range strings.ToUpper(label) {
		if strings.ContainsRune(labelLetters, r) {
			seen[r] = true
		}
	}
	return len(seen)
}

func lastTwo(s string) string {
	if len(s) < 2 {
		return ""
	}
	return s[len(s)-2:]
}
