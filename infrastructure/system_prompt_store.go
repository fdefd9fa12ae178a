package infrastructure

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// SystemPromptKey is the Redis key holding the language model system prompt
const SystemPromptKey = "llm_sys_prompt"

// RedisSystemPromptStore keeps the system prompt in a single Redis key
type RedisSystemPromptStore struct {
	client redis.Cmdable
}

// NewRedisSystemPromptStore creates a new system prompt store
func NewRedisSystemPromptStore(client redis.Cmdable) *RedisSystemPromptStore {
	return &RedisSystemPromptStore{client: client}
}

// Get returns the stored prompt, or an empty string when none is set
func (s *RedisSystemPromptStore) Get(ctx context.Context) (string, error) {
	prompt, err := s.client.Get(ctx, SystemPromptKey).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get system prompt: %w", err)
	}
	return prompt, nil
}

// Set replaces the stored prompt
func (s *RedisSystemPromptStore) Set(ctx context.Context, prompt string) error {
	if err := s.client.Set(ctx, SystemPromptKey, prompt, 0).Err(); err != nil {
		return fmt.Errorf("failed to set system prompt: %w", err)
	}
	return nil
}
