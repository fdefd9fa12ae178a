package testhelpers

import (
	"context"

	"teto/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockCreditLedger is a mock implementation of CreditLedger
type MockCreditLedger struct {
	mock.Mock
}

func (m *MockCreditLedger) GetOrCreateUser(ctx context.Context, userID int64) (*entities.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockCreditLedger) GetUser(ctx context.Context, userID int64) (*entities.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockCreditLedger) Deduct(ctx context.Context, userID int64, cost int64) (*entities.User, error) {
	args := m.Called(ctx, userID, cost)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockCreditLedger) AwardBonus(ctx context.Context, userID int64, amount int64, kind entities.BonusKind) (*entities.User, error) {
	args := m.Called(ctx, userID, amount, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockCreditLedger) RefillIfBelowCap(ctx context.Context, userID int64, refillCap int64) (bool, error) {
	args := m.Called(ctx, userID, refillCap)
	return args.Bool(0), args.Error(1)
}

func (m *MockCreditLedger) SetRole(ctx context.Context, userID int64, role entities.Role) (*entities.User, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockCreditLedger) ListUsers(ctx context.Context) ([]*entities.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *MockCreditLedger) DeleteUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

// MockDailyResetService is a mock implementation of DailyResetService
type MockDailyResetService struct {
	mock.Mock
}

func (m *MockDailyResetService) PerformDailyReset(ctx context.Context) (*entities.DailyResetResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.DailyResetResult), args.Error(1)
}
