package service

import (
	"strings"

	"lotto/models"
)

// NumLength is the number of digits in a ticket number and in a draw
const NumLength = 4

// Bet limits. A play can never total more than MaxPlayBet, so every sum and payout fits in int64.
const (
	MaxBet            int64 = 1_000_000_000
	MaxTicketsPerPlay       = 200
	MaxPlayBet              = MaxBet * MaxTicketsPerPlay
)

const (
	reasonBetRequired = "bet required for numeric ticket"
	reasonBetTooLarge = "bet above maximum"
	reasonTooLong     = "number longer than 4 digits"
)

// ParseCart validates submitted cart items and turns them into tickets.
// Items with digits need a positive bet; items with only a label are kept with a zero bet;
// items with neither are dropped without a rejection. A blank label falls back to the raw input.
func ParseCart(items []models.CartItem) ([]models.Ticket, []models.Rejection) {
	var tickets []models.Ticket
	var rejected []models.Rejection

	for i, item := range items {
		digits := ExtractDigits(item.Num)
		label := strings.TrimSpace(item.Label)
		if label == "" {
			label = strings.TrimSpace(item.Num)
		}

		if digits == "" {
			if label == "" {
				continue
			}
			tickets = append(tickets, models.Ticket{
				Num:  "",
				Bet:  0,
				Opts: models.WagerOpts{Raw: "", Label: label},
			})
			continue
		}

		if len(digits) > NumLength {
			rejected = append(rejected, models.Rejection{Index: i, Num: item.Num, Reason: reasonTooLong})
			continue
		}
		if item.Bet <= 0 {
			rejected = append(rejected, models.Rejection{Index: i, Num: item.Num, Reason: reasonBetRequired})
			continue
		}
		if item.Bet > MaxBet {
			rejected = append(rejected, models.Rejection{Index: i, Num: item.Num, Reason: reasonBetTooLarge})
			continue
		}

		tickets = append(tickets, models.Ticket{
			Num:  PadNum(digits),
			Bet:  item.Bet,
			Opts: models.WagerOpts{Raw: digits, Label: label},
		})
	}

	return tickets, rejected
}

// ExtractDigits returns the ASCII digits of s in order
func ExtractDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// PadNum left-pads digits with zeros to NumLength. Empty input stays empty.
func PadNum(digits string) string {
	if digits == "" || len(digits) >= NumLength {
		return digits
	}
	return strings.Repeat("0", NumLength-len(digits)) + digits
}
