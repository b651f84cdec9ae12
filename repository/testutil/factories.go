package testutil

import (
	"time"

	"lotto/models"
)

// TestPlayTime is a fixed, microsecond aligned play time
var TestPlayTime = time.Date(2024, 5, 1, 12, 30, 45, 123456000, time.UTC)

// CreateTestWagerRow creates a wager row for a play with sensible defaults
func CreateTestWagerRow(username string, playTime time.Time, draw, num string, bet, win int64) *models.WagerRow {
	raw := num
	for len(raw) > 1 && raw[0] == '0' {
		raw = raw[1:]
	}
	return &models.WagerRow{
		Username: username,
		PlayTime: playTime,
		Kind:     models.RowKindWager,
		Num:      num,
		Bet:      bet,
		Draw:     draw,
		Win:      win,
		Opts:     models.WagerOpts{Raw: raw, Label: raw},
	}
}

// CreateTestLabelRow creates a label-only wager row
func CreateTestLabelRow(username string, playTime time.Time, draw, label string) *models.WagerRow {
	return &models.WagerRow{
		Username: username,
		PlayTime: playTime,
		Kind:     models.RowKindWager,
		Num:      "",
		Bet:      0,
		Draw:     draw,
		Win:      0,
		Opts:     models.WagerOpts{Raw: "", Label: label},
	}
}

// CreateTestRefundRow creates a refund row for the play at refOf
func CreateTestRefundRow(username string, refOf time.Time, draw string, refunded int64) *models.WagerRow {
	ref := refOf
	return &models.WagerRow{
		Username:    username,
		PlayTime:    refOf.Add(time.Minute),
		Kind:        models.RowKindRefund,
		Bet:         -refunded,
		Draw:        draw,
		RefPlayTime: &ref,
		Note:        models.NoteRefund,
	}
}

// CreateTestBalanceHistory creates a balance history entry
func CreateTestBalanceHistory(username string, before, after int64, transactionType models.TransactionType) *models.BalanceHistory {
	return &models.BalanceHistory{
		Username:        username,
		BalanceBefore:   before,
		BalanceAfter:    after,
		ChangeAmount:    after - before,
		TransactionType: transactionType,
		TransactionMetadata: map[string]any{
			"test": true,
		},
	}
}
