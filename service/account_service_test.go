package service

import (
	"context"
	"errors"
	"testing"

	"lotto/events"
	"lotto/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestAccountService(store *memoryStore) *accountService {
	svc := NewAccountService(store, DefaultStartingBalance).(*accountService)
	svc.hashCost = bcrypt.MinCost
	return svc
}

func TestAccountService_Register(t *testing.T) {
	store := newMemoryStore()
	svc := newTestAccountService(store)
	ctx := context.Background()

	account, err := svc.Register(ctx, "  alice ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Username)
	assert.Equal(t, DefaultStartingBalance, account.Balance)
	require.True(t, account.HasPassword())
	assert.NotEqual(t, "secret", *account.PasswordHash)

	require.Len(t, store.history, 1)
	assert.Equal(t, models.TransactionTypeInitial, store.history[0].TransactionType)
	assert.Equal(t, true, store.history[0].TransactionMetadata["password"])
	assert.Equal(t, []events.EventType{events.EventTypeBalanceChange, events.EventTypeAccountOpened}, store.eventTypes())

	t.Run("duplicate username", func(t *testing.T) {
		_, err := svc.Register(ctx, "alice", "other")
		assert.True(t, errors.Is(err, ErrUsernameTaken))
	})

	t.Run("missing parameters", func(t *testing.T) {
		_, err := svc.Register(ctx, " ", "secret")
		assert.True(t, errors.Is(err, ErrMissingParameters))
		_, err = svc.Register(ctx, "bob", "")
		assert.True(t, errors.Is(err, ErrMissingParameters))
	})
}

func TestAccountService_Authenticate(t *testing.T) {
	store := newMemoryStore()
	svc := newTestAccountService(store)
	ctx := context.Background()

	_, err := svc.Register(ctx, "alice", "secret")
	require.NoError(t, err)
	_, err = svc.GetOrCreate(ctx, "chatuser")
	require.NoError(t, err)

	account, err := svc.Authenticate(ctx, "alice", "secret")
	require.NoError(t, err)
	assert.Equal(t, "alice", account.Username)

	_, err = svc.Authenticate(ctx, "alice", "wrong")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = svc.Authenticate(ctx, "nobody", "secret")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))

	_, err = svc.Authenticate(ctx, "chatuser", "anything")
	assert.True(t, errors.Is(err, ErrInvalidCredentials))
}

func TestAccountService_GetOrCreate(t *testing.T) {
	store := newMemoryStore()
	svc := newTestAccountService(store)
	ctx := context.Background()

	created, err := svc.GetOrCreate(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, DefaultStartingBalance, created.Balance)
	assert.False(t, created.HasPassword())

	again, err := svc.GetOrCreate(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, again.ID)
	assert.Len(t, store.history, 1)

	balance, err := svc.GetBalance(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, DefaultStartingBalance, balance)

	_, err = svc.GetBalance(ctx, "nobody")
	assert.True(t, errors.Is(err, ErrAccountNotFound))

	_, err = svc.GetBalance(ctx, "")
	assert.True(t, errors.Is(err, ErrNotAuthenticated))
}

func TestAccountService_GetOrCreate_ExistingAccount(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockHistoryRepo := new(MockBalanceHistoryRepository)
	mockUoW.SetRepositories(mockAccountRepo, nil, mockHistoryRepo, nil)

	svc := NewAccountService(mockFactory, DefaultStartingBalance)

	existing := &models.Account{ID: 7, Username: "alice", Balance: 4200}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	// No Commit expected since nothing changes

	mockAccountRepo.On("GetByUsername", ctx, "alice").Return(existing, nil)

	account, err := svc.GetOrCreate(ctx, "alice")
	assert.NoError(t, err)
	assert.Equal(t, existing, account)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockHistoryRepo.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
}

func TestAccountService_GetOrCreate_RecordsInitialBalance(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockHistoryRepo := new(MockBalanceHistoryRepository)
	mockPublisher := new(MockEventPublisher)
	mockUoW.SetRepositories(mockAccountRepo, nil, mockHistoryRepo, mockPublisher)

	svc := NewAccountService(mockFactory, 2500)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockAccountRepo.On("GetByUsername", ctx, "bob").Return(nil, nil)
	mockAccountRepo.On("Create", ctx, "bob", (*string)(nil), int64(2500)).
		Return(&models.Account{ID: 1, Username: "bob", Balance: 2500}, nil)

	mockHistoryRepo.On("Record", ctx, mock.MatchedBy(func(h *models.BalanceHistory) bool {
		return h.Username == "bob" &&
			h.BalanceBefore == 0 &&
			h.BalanceAfter == 2500 &&
			h.ChangeAmount == 2500 &&
			h.TransactionType == models.TransactionTypeInitial
	})).Return(nil)

	mockPublisher.On("Publish", mock.MatchedBy(func(e events.BalanceChangeEvent) bool {
		return e.Username == "bob" && e.NewBalance == 2500
	})).Once()
	mockPublisher.On("Publish", events.AccountOpenedEvent{Username: "bob", InitialBalance: 2500}).Once()

	account, err := svc.GetOrCreate(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(2500), account.Balance)

	mockUoW.AssertExpectations(t)
	mockAccountRepo.AssertExpectations(t)
	mockHistoryRepo.AssertExpectations(t)
	mockPublisher.AssertExpectations(t)
}

func TestAccountService_Register_StorageError(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockAccountRepo := new(MockAccountRepository)
	mockUoW.SetRepositories(mockAccountRepo, nil, nil, nil)

	svc := NewAccountService(mockFactory, DefaultStartingBalance).(*accountService)
	svc.hashCost = bcrypt.MinCost

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockAccountRepo.On("GetByUsername", ctx, "alice").Return(nil, errors.New("connection refused"))

	_, err := svc.Register(ctx, "alice", "secret")
	assert.ErrorContains(t, err, "failed to check existing account")
	mockUoW.AssertNotCalled(t, "Commit")
}
