package infrastructure

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedis starts a throwaway Redis container
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis test in short mode")
	}

	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForListeningPort("6379/tcp"),
			Labels: map[string]string{
				"test":      "teto-infrastructure",
				"test-name": t.Name(),
			},
		},
		Started: true,
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		terminateCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := container.Terminate(terminateCtx); err != nil {
			t.Logf("Warning: Failed to terminate redis container: %v", err)
		}
	})

	endpoint, err := container.Endpoint(ctx, "")
	require.NoError(t, err)

	client, err := ConnectRedis(ctx, fmt.Sprintf("redis://%s/0", endpoint))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return client
}

func TestConnectRedis_InvalidURL(t *testing.T) {
	_, err := ConnectRedis(context.Background(), "not a url")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse redis URL")
}

func TestRedisInfrastructure(t *testing.T) {
	client := setupRedis(t)
	ctx := context.Background()

	t.Run("delivery dedup", func(t *testing.T) {
		dedup := NewRedisDeliveryDeduplicator(client, time.Minute)

		dup, err := dedup.IsDuplicate(ctx, "topgg", "abc")
		require.NoError(t, err)
		assert.False(t, dup)

		require.NoError(t, dedup.Mark(ctx, "topgg", "abc"))

		dup, err = dedup.IsDuplicate(ctx, "topgg", "abc")
		require.NoError(t, err)
		assert.True(t, dup)

		// Sources are independent
		dup, err = dedup.IsDuplicate(ctx, "purchase", "abc")
		require.NoError(t, err)
		assert.False(t, dup)
	})

	t.Run("job lock is exclusive", func(t *testing.T) {
		lock := NewRedisJobLock(client)

		var acquired atomic.Int32
		var releases []func()
		var mu sync.Mutex
		var wg sync.WaitGroup
		for i := 0; i < 5; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				release, err := lock.TryAcquire(ctx, "daily_reset", time.Minute)
				assert.NoError(t, err)
				if release != nil {
					acquired.Add(1)
					mu.Lock()
					releases = append(releases, release)
					mu.Unlock()
				}
			}()
		}
		wg.Wait()
		assert.Equal(t, int32(1), acquired.Load())

		releases[0]()

		release, err := lock.TryAcquire(ctx, "daily_reset", time.Minute)
		require.NoError(t, err)
		require.NotNil(t, release)
		release()
	})

	t.Run("system prompt", func(t *testing.T) {
		store := NewRedisSystemPromptStore(client)

		prompt, err := store.Get(ctx)
		require.NoError(t, err)
		assert.Empty(t, prompt)

		require.NoError(t, store.Set(ctx, "You are Teto."))

		prompt, err = store.Get(ctx)
		require.NoError(t, err)
		assert.Equal(t, "You are Teto.", prompt)
	})
}
