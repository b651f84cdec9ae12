package plays

import (
	"fmt"
	"strconv"
	"strings"

	"lotto/models"
	"lotto/service"
)

// MaxTickets caps the number of tickets in one /play command
const MaxTickets = service.MaxTicketsPerPlay

// ParseTickets reads the ticket syntax of the /play command into cart items.
//
// Tickets are separated by spaces or commas. "1234:100" bets 100 on 1234,
// "1234:100:AB" adds a label, and a token without a colon is passed through
// as is so the cart parser can treat it as a label-only ticket or reject it.
func ParseTickets(input string) ([]models.CartItem, error) {
	fields := strings.FieldsFunc(input, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
	if len(fields) > MaxTickets {
		return nil, fmt.Errorf("at most %d tickets per play", MaxTickets)
	}

	items := make([]models.CartItem, 0, len(fields))
	for _, field := range fields {
		parts := strings.SplitN(field, ":", 3)
		if len(parts) == 1 {
			items = append(items, models.CartItem{Num: field})
			continue
		}

		bet, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid bet in %q", field)
		}
		item := models.CartItem{Num: parts[0], Bet: bet}
		if len(parts) == 3 {
			item.Label = parts[2]
		}
		items = append(items, item)
	}
	return items, nil
}
