package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"lotto/models"

	log "github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// DefaultStartingBalance is granted to every new account unless configured otherwise
const DefaultStartingBalance int64 = 1000

// accountService implements the AccountService interface
type accountService struct {
	uowFactory      UnitOfWorkFactory
	startingBalance int64
	hashCost        int
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory UnitOfWorkFactory, startingBalance int64) AccountService {
	if startingBalance < 0 {
		startingBalance = DefaultStartingBalance
	}
	return &accountService{
		uowFactory:      uowFactory,
		startingBalance: startingBalance,
		hashCost:        bcrypt.DefaultCost,
	}
}

// Register opens a password protected account with the starting balance
func (s *accountService) Register(ctx context.Context, username, password string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingParameters
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	hashStr := string(hash)

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.AccountRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	account, err := s.open(ctx, uow, username, &hashStr)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"username": username,
		"balance":  account.Balance,
	}).Info("Account registered")

	return account, nil
}

// Authenticate checks a username and password against the stored hash
func (s *accountService) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, ErrMissingParameters
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil || !account.HasPassword() {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*account.PasswordHash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to compare password: %w", err)
	}

	return account, nil
}

// GetOrCreate retrieves an existing account or opens one without a password
func (s *accountService) GetOrCreate(ctx context.Context, username string) (*models.Account, error) {
	if username == "" {
		return nil, ErrMissingParameters
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing account: %w", err)
	}
	if account != nil {
		return account, nil
	}

	account, err = s.open(ctx, uow, username, nil)
	if err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithField("username", username).Info("Account opened")
	return account, nil
}

// GetBalance returns the stored balance of an account
func (s *accountService) GetBalance(ctx context.Context, username string) (int64, error) {
	if username == "" {
		return 0, ErrNotAuthenticated
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountRepository().GetByUsername(ctx, username)
	if err != nil {
		return 0, fmt.Errorf("failed to get account: %w", err)
	}
	if account == nil {
		return 0, ErrAccountNotFound
	}
	return account.Balance, nil
}

func (s *accountService) open(ctx context.Context, uow UnitOfWork, username string, passwordHash *string) (*models.Account, error) {
	account, err := uow.AccountRepository().Create(ctx, username, passwordHash, s.startingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	history := &models.BalanceHistory{
		Username:        username,
		BalanceBefore:   0,
		BalanceAfter:    s.startingBalance,
		ChangeAmount:    s.startingBalance,
		TransactionType: models.TransactionTypeInitial,
		TransactionMetadata: map[string]any{
			"password": passwordHash != nil,
		},
	}
	if err := RecordBalanceChange(ctx, uow, history); err != nil {
		return nil, fmt.Errorf("failed to record initial balance: %w", err)
	}

	return account, nil
}
