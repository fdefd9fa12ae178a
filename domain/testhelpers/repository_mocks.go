package testhelpers

import (
	"context"
	"time"

	"teto/domain/entities"
	"teto/events"

	"github.com/stretchr/testify/mock"
)

// MockUserRepository is a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, userID int64) (*entities.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, userID int64, role entities.Role, initialCredits int64) (*entities.User, error) {
	args := m.Called(ctx, userID, role, initialCredits)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetAll(ctx context.Context) ([]*entities.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateRole(ctx context.Context, userID int64, role entities.Role) (*entities.User, error) {
	args := m.Called(ctx, userID, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) DeductCredits(ctx context.Context, userID int64, cost int64) (*entities.User, error) {
	args := m.Called(ctx, userID, cost)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) AddCredits(ctx context.Context, userID int64, amount int64, votedAt *time.Time) (*entities.User, error) {
	args := m.Called(ctx, userID, amount, votedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) RefillCredits(ctx context.Context, userID int64, refillCap int64) (bool, error) {
	args := m.Called(ctx, userID, refillCap)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) FindBelowCredits(ctx context.Context, threshold int64) ([]*entities.User, error) {
	args := m.Called(ctx, threshold)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.User), args.Error(1)
}

// MockGuildRepository is a mock implementation of GuildRepository
type MockGuildRepository struct {
	mock.Mock
}

func (m *MockGuildRepository) GetByID(ctx context.Context, guildID int64) (*entities.Guild, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Guild), args.Error(1)
}

func (m *MockGuildRepository) Create(ctx context.Context, guildID int64) (*entities.Guild, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Guild), args.Error(1)
}

func (m *MockGuildRepository) GetAll(ctx context.Context) ([]*entities.Guild, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Guild), args.Error(1)
}

func (m *MockGuildRepository) Delete(ctx context.Context, guildID int64) error {
	args := m.Called(ctx, guildID)
	return args.Error(0)
}

// MockChannelRepository is a mock implementation of ChannelRepository
type MockChannelRepository struct {
	mock.Mock
}

func (m *MockChannelRepository) GetByChannelID(ctx context.Context, channelID int64) (*entities.Channel, error) {
	args := m.Called(ctx, channelID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Channel), args.Error(1)
}

func (m *MockChannelRepository) Create(ctx context.Context, channelID, guildID int64) (*entities.Channel, error) {
	args := m.Called(ctx, channelID, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Channel), args.Error(1)
}

func (m *MockChannelRepository) GetAll(ctx context.Context) ([]*entities.Channel, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Channel), args.Error(1)
}

func (m *MockChannelRepository) GetByGuildID(ctx context.Context, guildID int64) ([]*entities.Channel, error) {
	args := m.Called(ctx, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Channel), args.Error(1)
}

func (m *MockChannelRepository) Update(ctx context.Context, channelID, guildID int64) (*entities.Channel, error) {
	args := m.Called(ctx, channelID, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Channel), args.Error(1)
}

func (m *MockChannelRepository) Delete(ctx context.Context, channelID int64) error {
	args := m.Called(ctx, channelID)
	return args.Error(0)
}

// MockUserGuildRepository is a mock implementation of UserGuildRepository
type MockUserGuildRepository struct {
	mock.Mock
}

func (m *MockUserGuildRepository) Get(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error) {
	args := m.Called(ctx, userID, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserGuild), args.Error(1)
}

func (m *MockUserGuildRepository) Create(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error) {
	args := m.Called(ctx, userID, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserGuild), args.Error(1)
}

func (m *MockUserGuildRepository) RecordMessage(ctx context.Context, userID, guildID int64, intimacyIncrement int, at time.Time) (*entities.UserGuild, error) {
	args := m.Called(ctx, userID, guildID, intimacyIncrement, at)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserGuild), args.Error(1)
}

func (m *MockUserGuildRepository) AdjustIntimacy(ctx context.Context, userID, guildID int64, delta int) (*entities.UserGuild, error) {
	args := m.Called(ctx, userID, guildID, delta)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserGuild), args.Error(1)
}

func (m *MockUserGuildRepository) ResetDaily(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error) {
	args := m.Called(ctx, userID, guildID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserGuild), args.Error(1)
}

func (m *MockUserGuildRepository) MarkFed(ctx context.Context, userID, guildID int64, at time.Time, intimacyGain int) (*entities.UserGuild, error) {
	args := m.Called(ctx, userID, guildID, at, intimacyGain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.UserGuild), args.Error(1)
}

func (m *MockUserGuildRepository) FindNeedingReset(ctx context.Context) ([]*entities.UserGuild, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.UserGuild), args.Error(1)
}

func (m *MockUserGuildRepository) TopByIntimacy(ctx context.Context, guildID int64, limit int) ([]*entities.UserGuild, error) {
	args := m.Called(ctx, guildID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.UserGuild), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

// MockJobLock is a mock implementation of JobLock
type MockJobLock struct {
	mock.Mock
}

func (m *MockJobLock) TryAcquire(ctx context.Context, name string, ttl time.Duration) (func(), error) {
	args := m.Called(ctx, name, ttl)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}

// MockDeliveryDeduplicator is a mock implementation of DeliveryDeduplicator
type MockDeliveryDeduplicator struct {
	mock.Mock
}

func (m *MockDeliveryDeduplicator) IsDuplicate(ctx context.Context, source, deliveryID string) (bool, error) {
	args := m.Called(ctx, source, deliveryID)
	return args.Bool(0), args.Error(1)
}

func (m *MockDeliveryDeduplicator) Mark(ctx context.Context, source, deliveryID string) error {
	args := m.Called(ctx, source, deliveryID)
	return args.Error(0)
}
