package services

import (
	"context"
	"fmt"

	"teto/domain/entities"
	"teto/domain/interfaces"
)

const (
	DefaultLeaderboardLimit = 10
	MaxLeaderboardLimit     = 100
)

// leaderboardService implements the LeaderboardService interface
type leaderboardService struct {
	userGuildRepo interfaces.UserGuildRepository
}

// NewLeaderboardService creates a new leaderboard service
func NewLeaderboardService(userGuildRepo interfaces.UserGuildRepository) interfaces.LeaderboardService {
	return &leaderboardService{userGuildRepo: userGuildRepo}
}

// TopByIntimacy ranks a guild's members by intimacy. limit must be within 1..MaxLeaderboardLimit.
func (s *leaderboardService) TopByIntimacy(ctx context.Context, guildID int64, limit int) ([]*entities.UserGuild, error) {
	if limit < 1 || limit > MaxLeaderboardLimit {
		return nil, fmt.Errorf("limit %d: %w", limit, entities.ErrInvalidLimit)
	}

	top, err := s.userGuildRepo.TopByIntimacy(ctx, guildID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	if top == nil {
		top = []*entities.UserGuild{}
	}

	return top, nil
}
