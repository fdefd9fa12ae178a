package services

import (
	"context"
	"errors"
	"testing"

	"teto/domain/entities"
	"teto/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const TestChannelID = int64(5000)

func TestChannelService_Register(t *testing.T) {
	t.Parallel()

	t.Run("creates the guild on first sight", func(t *testing.T) {
		ts := newTestServices()
		ctx := context.Background()

		channel, err := ts.channels.RegisterChannel(ctx, TestChannelID, TestGuildID)
		require.NoError(t, err)
		assert.Equal(t, TestGuildID, channel.GuildID)
		assert.NotEmpty(t, channel.ID)

		guild, err := ts.store.Guilds().GetByID(ctx, TestGuildID)
		require.NoError(t, err)
		assert.NotNil(t, guild)

		registered, err := ts.channels.IsRegistered(ctx, TestChannelID)
		require.NoError(t, err)
		assert.True(t, registered)
	})

	t.Run("duplicate is a conflict", func(t *testing.T) {
		ts := newTestServices()
		ctx := context.Background()

		_, err := ts.channels.RegisterChannel(ctx, TestChannelID, TestGuildID)
		require.NoError(t, err)

		_, err = ts.channels.RegisterChannel(ctx, TestChannelID, TestGuildID)
		assert.ErrorIs(t, err, entities.ErrUniqueViolation)
	})

	t.Run("repository failure is wrapped", func(t *testing.T) {
		ts := newTestServices()
		mockRepo := new(testhelpers.MockChannelRepository)
		mockRepo.On("Create", mock.Anything, TestChannelID, TestGuildID).Return(nil, errors.New("connection reset"))

		service := NewChannelService(mockRepo, ts.guilds)
		_, err := service.RegisterChannel(context.Background(), TestChannelID, TestGuildID)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to register channel")
	})
}

func TestChannelService_GetUpdateDelete(t *testing.T) {
	t.Parallel()

	ts := newTestServices()
	ctx := context.Background()

	_, err := ts.channels.GetChannel(ctx, TestChannelID)
	assert.ErrorIs(t, err, entities.ErrChannelNotFound)

	_, err = ts.channels.RegisterChannel(ctx, TestChannelID, TestGuildID)
	require.NoError(t, err)

	moved, err := ts.channels.UpdateChannel(ctx, TestChannelID, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(2), moved.GuildID)

	byGuild, err := ts.channels.ListGuildChannels(ctx, 2)
	require.NoError(t, err)
	require.Len(t, byGuild, 1)

	_, err = ts.channels.UpdateChannel(ctx, TestChannelID+1, 2)
	assert.ErrorIs(t, err, entities.ErrChannelNotFound)

	require.NoError(t, ts.channels.DeleteChannel(ctx, TestChannelID))
	assert.ErrorIs(t, ts.channels.DeleteChannel(ctx, TestChannelID), entities.ErrChannelNotFound)

	all, err := ts.channels.ListChannels(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGuildService_ListAndDelete(t *testing.T) {
	t.Parallel()

	t.Run("delete cascades", func(t *testing.T) {
		ts := newTestServices()
		ctx := context.Background()

		_, err := ts.channels.RegisterChannel(ctx, TestChannelID, TestGuildID)
		require.NoError(t, err)

		guilds, err := ts.guilds.ListGuilds(ctx)
		require.NoError(t, err)
		require.Len(t, guilds, 1)

		require.NoError(t, ts.guilds.DeleteGuild(ctx, TestGuildID))
		assert.ErrorIs(t, ts.guilds.DeleteGuild(ctx, TestGuildID), entities.ErrGuildNotFound)

		registered, err := ts.channels.IsRegistered(ctx, TestChannelID)
		require.NoError(t, err)
		assert.False(t, registered)
	})

	t.Run("nil list becomes empty", func(t *testing.T) {
		mockRepo := new(testhelpers.MockGuildRepository)
		mockRepo.On("GetAll", mock.Anything).Return(nil, nil)

		guilds, err := NewGuildService(mockRepo).ListGuilds(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, guilds)
		assert.Empty(t, guilds)
	})
}
