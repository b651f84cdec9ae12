package models

import (
	"time"
)

// TransactionType represents the type of balance change
type TransactionType string

const (
	TransactionTypeInitial      TransactionType = "initial"
	TransactionTypePlayPlaced   TransactionType = "play_placed"
	TransactionTypePlayDeleted  TransactionType = "play_deleted"
	TransactionTypePlayEdited   TransactionType = "play_edited"
	TransactionTypePlayRefunded TransactionType = "play_refunded"
)

// BalanceHistory represents a historical balance change
type BalanceHistory struct {
	ID                  int64           `db:"id"`
	Username            string          `db:"username"`
	BalanceBefore       int64           `db:"balance_before"`
	BalanceAfter        int64           `db:"balance_after"`
	ChangeAmount        int64           `db:"change_amount"`
	TransactionType     TransactionType `db:"transaction_type"`
	TransactionMetadata map[string]any  `db:"transaction_metadata"`
	PlayTime            *time.Time      `db:"play_time"`
	CreatedAt           time.Time       `db:"created_at"`
}
