package service

import (
	"context"

	"lotto/models"

	"github.com/stretchr/testify/mock"
)

// MockAccountService is a mock implementation of AccountService
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) Register(ctx context.Context, username, password string) (*models.Account, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) Authenticate(ctx context.Context, username, password string) (*models.Account, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) GetOrCreate(ctx context.Context, username string) (*models.Account, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountService) GetBalance(ctx context.Context, username string) (int64, error) {
	args := m.Called(ctx, username)
	return args.Get(0).(int64), args.Error(1)
}

// MockPlayService is a mock implementation of PlayService
type MockPlayService struct {
	mock.Mock
}

func (m *MockPlayService) PlacePlay(ctx context.Context, username string, items []models.CartItem) (*models.PlaceResult, error) {
	args := m.Called(ctx, username, items)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.PlaceResult), args.Error(1)
}

func (m *MockPlayService) ListPlays(ctx context.Context, username string, limit int) ([]*models.Play, error) {
	args := m.Called(ctx, username, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Play), args.Error(1)
}

// MockReversalService is a mock implementation of ReversalService
type MockReversalService struct {
	mock.Mock
}

func (m *MockReversalService) DeletePlay(ctx context.Context, key models.PlayKey) (*models.DeleteResult, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.DeleteResult), args.Error(1)
}

func (m *MockReversalService) EditPlay(ctx context.Context, req models.EditRequest) (*models.EditResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.EditResult), args.Error(1)
}

func (m *MockReversalService) RefundPlay(ctx context.Context, key models.PlayKey) (*models.RefundResult, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RefundResult), args.Error(1)
}
