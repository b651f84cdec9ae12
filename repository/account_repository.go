package repository

import (
	"context"
	"errors"
	"fmt"

	"lotto/database"
	"lotto/models"
	"lotto/service"

	"github.com/jackc/pgx/v5"
)

// AccountRepository implements the AccountRepository interface
type AccountRepository struct {
	q queryable
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *database.DB) *AccountRepository {
	return &AccountRepository{q: db.Pool}
}

// newAccountRepositoryWithTx creates a new account repository with a transaction
func newAccountRepositoryWithTx(tx queryable) *AccountRepository {
	return &AccountRepository{q: tx}
}

const accountColumns = `id, username, password_hash, balance, created_at, updated_at`

func scanAccount(row pgx.Row) (*models.Account, error) {
	var account models.Account
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.PasswordHash,
		&account.Balance,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &account, nil
}

// GetByUsername retrieves an account by username
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1`

	account, err := scanAccount(r.q.QueryRow(ctx, query, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account %s: %w", username, err)
	}
	return account, nil
}

// LockByUsername retrieves an account and holds its row lock until the transaction ends
func (r *AccountRepository) LockByUsername(ctx context.Context, username string) (*models.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE username = $1 FOR UPDATE`

	account, err := scanAccount(r.q.QueryRow(ctx, query, username))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock account %s: %w", username, err)
	}
	return account, nil
}

// Create creates a new account with the initial balance
func (r *AccountRepository) Create(ctx context.Context, username string, passwordHash *string, initialBalance int64) (*models.Account, error) {
	query := `
		INSERT INTO accounts (username, password_hash, balance)
		VALUES ($1, $2, $3)
		RETURNING ` + accountColumns

	account, err := scanAccount(r.q.QueryRow(ctx, query, username, passwordHash, initialBalance))
	if uniqueViolationOn(err, "accounts_username_key") {
		return nil, service.ErrUsernameTaken
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create account %s: %w", username, err)
	}
	return account, nil
}

// UpdateBalance sets an account's balance
func (r *AccountRepository) UpdateBalance(ctx context.Context, username string, newBalance int64) error {
	query := `
		UPDATE accounts
		SET balance = $1, updated_at = NOW()
		WHERE username = $2
	`

	result, err := r.q.Exec(ctx, query, newBalance, username)
	if err != nil {
		return fmt.Errorf("failed to update balance for account %s: %w", username, err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("account %s: %w", username, service.ErrAccountNotFound)
	}
	return nil
}
