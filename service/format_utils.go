package service

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatAmount formats an amount with thousand separators
func FormatAmount(amount int64) string {
	str := strconv.FormatInt(amount, 10)
	sign := ""
	if strings.HasPrefix(str, "-") {
		sign, str = "-", str[1:]
	}

	n := len(str)
	if n <= 3 {
		return sign + str
	}

	var result strings.Builder
	result.WriteString(sign)
	for i, digit := range str {
		if i > 0 && (n-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(digit)
	}
	return result.String()
}

// PlayMessage is the summary line shown after a play is drawn
func PlayMessage(draw string, totalWin int64) string {
	if totalWin > 0 {
		return fmt.Sprintf("WIN! Draw: %s, Total Prize: %s", draw, FormatAmount(totalWin))
	}
	return fmt.Sprintf("Lose. Draw: %s", draw)
}
