package service

import (
	"context"
	"time"

	"lotto/events"
	"lotto/models"
)

// AccountRepository defines the interface for account data access
type AccountRepository interface {
	// GetByUsername retrieves an account, returning nil when it does not exist
	GetByUsername(ctx context.Context, username string) (*models.Account, error)

	// LockByUsername retrieves an account and locks its row until the transaction ends
	LockByUsername(ctx context.Context, username string) (*models.Account, error)

	// Create creates a new account with the initial balance
	Create(ctx context.Context, username string, passwordHash *string, initialBalance int64) (*models.Account, error)

	// UpdateBalance sets an account's balance
	UpdateBalance(ctx context.Context, username string, newBalance int64) error
}

// WagerRepository defines the interface for ledger row access
type WagerRepository interface {
	// InsertRows writes rows in order and fills in their IDs
	InsertRows(ctx context.Context, rows []*models.WagerRow) error

	// SumByPlay aggregates the wager rows of a play
	SumByPlay(ctx context.Context, key models.PlayKey) (*models.PlayTotals, error)

	// ListByPlay returns the wager rows of a play ordered by id
	ListByPlay(ctx context.Context, key models.PlayKey) ([]*models.WagerRow, error)

	// UpdateRow rewrites num, bet and opts of a wager row within the given play.
	// Returns false when no such row belongs to the play.
	UpdateRow(ctx context.Context, key models.PlayKey, row *models.WagerRow) (bool, error)

	// DeleteByPlay removes the wager rows of a play and returns how many were removed
	DeleteByPlay(ctx context.Context, key models.PlayKey) (int64, error)

	// HasRefundFor reports whether a refund row already references the play time
	HasRefundFor(ctx context.Context, username string, playTime time.Time) (bool, error)

	// ListRecent returns the newest rows of a user, newest first
	ListRecent(ctx context.Context, username string, limit int) ([]*models.WagerRow, error)
}

// BalanceHistoryRepository defines the interface for balance history tracking
type BalanceHistoryRepository interface {
	// Record creates a new balance history entry
	Record(ctx context.Context, history *models.BalanceHistory) error

	// GetByUser returns balance history for a specific user
	GetByUser(ctx context.Context, username string, limit int) ([]*models.BalanceHistory, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction and releases pending events
	Commit() error

	// Rollback rolls back the transaction and drops pending events
	Rollback() error

	AccountRepository() AccountRepository
	WagerRepository() WagerRepository
	BalanceHistoryRepository() BalanceHistoryRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// AccountService defines the interface for account operations
type AccountService interface {
	// Register opens a password protected account
	Register(ctx context.Context, username, password string) (*models.Account, error)

	// Authenticate checks a username and password
	Authenticate(ctx context.Context, username, password string) (*models.Account, error)

	// GetOrCreate returns an existing account or opens one without a password
	GetOrCreate(ctx context.Context, username string) (*models.Account, error)

	// GetBalance returns the stored balance of an account
	GetBalance(ctx context.Context, username string) (int64, error)
}

// PlayService defines the interface for placing plays and reading them back
type PlayService interface {
	// PlacePlay validates the cart, draws once and writes the play
	PlacePlay(ctx context.Context, username string, items []models.CartItem) (*models.PlaceResult, error)

	// ListPlays returns recent plays of a user, newest first
	ListPlays(ctx context.Context, username string, limit int) ([]*models.Play, error)
}

// ReversalService defines the interface for correcting plays after the fact
type ReversalService interface {
	// DeletePlay reverses a play's balance effect and removes its rows
	DeletePlay(ctx context.Context, key models.PlayKey) (*models.DeleteResult, error)

	// EditPlay rewrites rows of a play and settles the change in total bet
	EditPlay(ctx context.Context, req models.EditRequest) (*models.EditResult, error)

	// RefundPlay returns a play's total bet once
	RefundPlay(ctx context.Context, key models.PlayKey) (*models.RefundResult, error)
}
