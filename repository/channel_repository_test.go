package repository

import (
	"context"
	"testing"

	"teto/domain/entities"
	"teto/repository/testutil"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChannelRepository_Lifecycle(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	guilds := NewGuildRepository(testDB.DB)
	repo := NewChannelRepository(testDB.DB)
	ctx := context.Background()

	for _, guildID := range []int64{10, 20} {
		_, err := guilds.Create(ctx, guildID)
		require.NoError(t, err)
	}

	t.Run("channel not found", func(t *testing.T) {
		channel, err := repo.GetByChannelID(ctx, 999)
		require.NoError(t, err)
		assert.Nil(t, channel)
	})

	t.Run("create and get", func(t *testing.T) {
		created, err := repo.Create(ctx, 501, 10)
		require.NoError(t, err)
		_, err = uuid.Parse(created.ID)
		require.NoError(t, err)
		assert.Equal(t, int64(10), created.GuildID)

		channel, err := repo.GetByChannelID(ctx, 501)
		require.NoError(t, err)
		require.NotNil(t, channel)
		assert.Equal(t, created.ID, channel.ID)
	})

	t.Run("duplicate channel ID", func(t *testing.T) {
		_, err := repo.Create(ctx, 502, 10)
		require.NoError(t, err)

		_, err = repo.Create(ctx, 502, 20)
		assert.ErrorIs(t, err, entities.ErrUniqueViolation)
	})

	t.Run("list by guild", func(t *testing.T) {
		_, err := repo.Create(ctx, 503, 20)
		require.NoError(t, err)

		channels, err := repo.GetByGuildID(ctx, 20)
		require.NoError(t, err)
		require.Len(t, channels, 1)
		assert.Equal(t, int64(503), channels[0].ChannelID)

		all, err := repo.GetAll(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})

	t.Run("update moves guild", func(t *testing.T) {
		channel, err := repo.Update(ctx, 501, 20)
		require.NoError(t, err)
		assert.Equal(t, int64(20), channel.GuildID)

		_, err = repo.Update(ctx, 998, 20)
		assert.ErrorIs(t, err, entities.ErrChannelNotFound)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, 502))
		assert.ErrorIs(t, repo.Delete(ctx, 502), entities.ErrChannelNotFound)
	})

	t.Run("guild delete cascades", func(t *testing.T) {
		require.NoError(t, guilds.Delete(ctx, 20))

		channels, err := repo.GetByGuildID(ctx, 20)
		require.NoError(t, err)
		assert.Empty(t, channels)
	})
}
