package repository

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"teto/domain/entities"
	"teto/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_GetByID(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("user not found", func(t *testing.T) {
		user, err := repo.GetByID(ctx, 999999)
		require.NoError(t, err)
		assert.Nil(t, user)
	})

	t.Run("user found", func(t *testing.T) {
		created, err := repo.Create(ctx, 123456, entities.RoleUser, entities.DefaultMessageCredits)
		require.NoError(t, err)

		user, err := repo.GetByID(ctx, 123456)
		require.NoError(t, err)
		require.NotNil(t, user)

		assert.Equal(t, int64(123456), user.UserID)
		assert.Equal(t, entities.RoleUser, user.Role)
		assert.Equal(t, entities.DefaultMessageCredits, user.MessageCredits)
		assert.Nil(t, user.LastVotedAt)
		assert.Equal(t, created.InsertedAt, user.InsertedAt)
	})
}

func TestUserRepository_Create(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful creation", func(t *testing.T) {
		user, err := repo.Create(ctx, 111, entities.RoleAdmin, 50)
		require.NoError(t, err)

		assert.Equal(t, entities.RoleAdmin, user.Role)
		assert.Equal(t, int64(50), user.MessageCredits)
		assert.False(t, user.InsertedAt.IsZero())
		assert.False(t, user.UpdatedAt.IsZero())
	})

	t.Run("duplicate user ID", func(t *testing.T) {
		_, err := repo.Create(ctx, 222, entities.RoleUser, 30)
		require.NoError(t, err)

		_, err = repo.Create(ctx, 222, entities.RoleUser, 30)
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrUniqueViolation)
	})

	t.Run("negative balance rejected", func(t *testing.T) {
		_, err := repo.Create(ctx, 333, entities.RoleUser, -1)
		assert.Error(t, err)
	})
}

func TestUserRepository_DeductCredits(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("successful deduction", func(t *testing.T) {
		_, err := repo.Create(ctx, 1001, entities.RoleUser, 30)
		require.NoError(t, err)

		user, err := repo.DeductCredits(ctx, 1001, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(29), user.MessageCredits)
	})

	t.Run("exact balance reaches zero", func(t *testing.T) {
		_, err := repo.Create(ctx, 1002, entities.RoleUser, 5)
		require.NoError(t, err)

		user, err := repo.DeductCredits(ctx, 1002, 5)
		require.NoError(t, err)
		assert.Equal(t, int64(0), user.MessageCredits)
	})

	t.Run("insufficient balance leaves row unchanged", func(t *testing.T) {
		_, err := repo.Create(ctx, 1003, entities.RoleUser, 0)
		require.NoError(t, err)

		_, err = repo.DeductCredits(ctx, 1003, 1)
		require.Error(t, err)
		assert.ErrorIs(t, err, entities.ErrInsufficientCredits)

		var insufficient *entities.InsufficientCreditsError
		require.True(t, errors.As(err, &insufficient))
		assert.Equal(t, int64(0), insufficient.Balance)
		assert.Equal(t, int64(1), insufficient.Required)

		user, err := repo.GetByID(ctx, 1003)
		require.NoError(t, err)
		assert.Equal(t, int64(0), user.MessageCredits)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.DeductCredits(ctx, 1999, 1)
		assert.ErrorIs(t, err, entities.ErrUserNotFound)
	})

	t.Run("non-positive cost", func(t *testing.T) {
		_, err := repo.DeductCredits(ctx, 1001, 0)
		assert.ErrorIs(t, err, entities.ErrInvalidAmount)
	})
}

func TestUserRepository_DeductCredits_Concurrent(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 2001, entities.RoleUser, 10)
	require.NoError(t, err)

	var wg sync.WaitGroup
	var succeeded, rejected atomic.Int32
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.DeductCredits(ctx, 2001, 1)
			switch {
			case err == nil:
				succeeded.Add(1)
			case errors.Is(err, entities.ErrInsufficientCredits):
				rejected.Add(1)
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(10), succeeded.Load())
	assert.Equal(t, int32(15), rejected.Load())

	user, err := repo.GetByID(ctx, 2001)
	require.NoError(t, err)
	assert.Equal(t, int64(0), user.MessageCredits)
}

func TestUserRepository_AddCredits(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	t.Run("vote stamps last_voted_at", func(t *testing.T) {
		_, err := repo.Create(ctx, 3001, entities.RoleUser, 10)
		require.NoError(t, err)

		votedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
		user, err := repo.AddCredits(ctx, 3001, 30, &votedAt)
		require.NoError(t, err)

		assert.Equal(t, int64(40), user.MessageCredits)
		require.NotNil(t, user.LastVotedAt)
		assert.True(t, votedAt.Equal(*user.LastVotedAt))
	})

	t.Run("purchase keeps last_voted_at", func(t *testing.T) {
		user, err := repo.AddCredits(ctx, 3001, 150, nil)
		require.NoError(t, err)

		assert.Equal(t, int64(190), user.MessageCredits)
		assert.NotNil(t, user.LastVotedAt)
	})

	t.Run("missing user", func(t *testing.T) {
		_, err := repo.AddCredits(ctx, 3999, 30, nil)
		assert.ErrorIs(t, err, entities.ErrUserNotFound)
	})
}

func TestUserRepository_RefillCredits(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 4001, entities.RoleUser, 5)
	require.NoError(t, err)
	_, err = repo.Create(ctx, 4002, entities.RoleUser, 100)
	require.NoError(t, err)

	below, err := repo.FindBelowCredits(ctx, 30)
	require.NoError(t, err)
	require.Len(t, below, 1)
	assert.Equal(t, int64(4001), below[0].UserID)

	changed, err := repo.RefillCredits(ctx, 4001, 30)
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = repo.RefillCredits(ctx, 4002, 30)
	require.NoError(t, err)
	assert.False(t, changed)

	// Running again is a no-op
	changed, err = repo.RefillCredits(ctx, 4001, 30)
	require.NoError(t, err)
	assert.False(t, changed)

	low, err := repo.GetByID(ctx, 4001)
	require.NoError(t, err)
	assert.Equal(t, int64(30), low.MessageCredits)

	high, err := repo.GetByID(ctx, 4002)
	require.NoError(t, err)
	assert.Equal(t, int64(100), high.MessageCredits)
}

func TestUserRepository_UpdateRoleAndDelete(t *testing.T) {
	t.Parallel()
	testDB := testutil.SetupTestDatabase(t)

	repo := NewUserRepository(testDB.DB)
	ctx := context.Background()

	_, err := repo.Create(ctx, 5001, entities.RoleUser, 30)
	require.NoError(t, err)

	user, err := repo.UpdateRole(ctx, 5001, entities.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, entities.RoleAdmin, user.Role)

	_, err = repo.UpdateRole(ctx, 5999, entities.RoleAdmin)
	assert.ErrorIs(t, err, entities.ErrUserNotFound)

	require.NoError(t, repo.Delete(ctx, 5001))
	assert.ErrorIs(t, repo.Delete(ctx, 5001), entities.ErrUserNotFound)

	users, err := repo.GetAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}
