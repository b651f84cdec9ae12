package models

import (
	"time"
)

// Account represents a player and their single stored balance
type Account struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	PasswordHash *string   `db:"password_hash"`
	Balance      int64     `db:"balance"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// HasPassword reports whether the account can log in over HTTP.
// Accounts opened from chat have no password.
func (a *Account) HasPassword() bool {
	return a.PasswordHash != nil && *a.PasswordHash != ""
}
