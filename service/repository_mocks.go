package service

import (
	"context"
	"time"

	"lotto/events"
	"lotto/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountRepository is a mock implementation of AccountRepository
type MockAccountRepository struct {
	mock.Mock
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) LockByUsername(ctx context.Context, username string) (*models.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) Create(ctx context.Context, username string, passwordHash *string, initialBalance int64) (*models.Account, error) {
	args := m.Called(ctx, username, passwordHash, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepository) UpdateBalance(ctx context.Context, username string, newBalance int64) error {
	args := m.Called(ctx, username, newBalance)
	return args.Error(0)
}

// MockWagerRepository is a mock implementation of WagerRepository
type MockWagerRepository struct {
	mock.Mock
}

func (m *MockWagerRepository) InsertRows(ctx context.Context, rows []*models.WagerRow) error {
	args := m.Called(ctx, rows)
	return args.Error(0)
}

func (m *MockWagerRepository) SumByPlay(ctx context.Context, key models.PlayKey) (*models.PlayTotals, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlayTotals), args.Error(1)
}

func (m *MockWagerRepository) ListByPlay(ctx context.Context, key models.PlayKey) ([]*models.WagerRow, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WagerRow), args.Error(1)
}

func (m *MockWagerRepository) UpdateRow(ctx context.Context, key models.PlayKey, row *models.WagerRow) (bool, error) {
	args := m.Called(ctx, key, row)
	return args.Bool(0), args.Error(1)
}

func (m *MockWagerRepository) DeleteByPlay(ctx context.Context, key models.PlayKey) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWagerRepository) HasRefundFor(ctx context.Context, username string, playTime time.Time) (bool, error) {
	args := m.Called(ctx, username, playTime)
	return args.Bool(0), args.Error(1)
}

func (m *MockWagerRepository) ListRecent(ctx context.Context, username string, limit int) ([]*models.WagerRow, error) {
	args := m.Called(ctx, username, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.WagerRow), args.Error(1)
}

// MockBalanceHistoryRepository is a mock implementation of BalanceHistoryRepository
type MockBalanceHistoryRepository struct {
	mock.Mock
}

func (m *MockBalanceHistoryRepository) Record(ctx context.Context, history *models.BalanceHistory) error {
	args := m.Called(ctx, history)
	return args.Error(0)
}

func (m *MockBalanceHistoryRepository) GetByUser(ctx context.Context, username string, limit int) ([]*models.BalanceHistory, error) {
	args := m.Called(ctx, username, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.BalanceHistory), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	accountRepo        AccountRepository
	wagerRepo          WagerRepository
	balanceHistoryRepo BalanceHistoryRepository
	eventBus           EventPublisher
}

// SetRepositories wires the repositories returned by the unit of work.
// A nil event bus is replaced by one that accepts any event.
func (m *MockUnitOfWork) SetRepositories(accountRepo AccountRepository, wagerRepo WagerRepository, balanceHistoryRepo BalanceHistoryRepository, eventBus EventPublisher) {
	m.accountRepo = accountRepo
	m.wagerRepo = wagerRepo
	m.balanceHistoryRepo = balanceHistoryRepo
	if eventBus == nil {
		publisher := new(MockEventPublisher)
		publisher.On("Publish", mock.Anything).Maybe()
		eventBus = publisher
	}
	m.eventBus = eventBus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountRepository() AccountRepository {
	return m.accountRepo
}

func (m *MockUnitOfWork) WagerRepository() WagerRepository {
	return m.wagerRepo
}

func (m *MockUnitOfWork) BalanceHistoryRepository() BalanceHistoryRepository {
	return m.balanceHistoryRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}
