package services

import (
	"context"
	"errors"
	"fmt"

	"teto/domain/entities"
	"teto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// guildService implements the GuildService interface
type guildService struct {
	guildRepo interfaces.GuildRepository
}

// NewGuildService creates a new guild service
func NewGuildService(guildRepo interfaces.GuildRepository) interfaces.GuildService {
	return &guildService{guildRepo: guildRepo}
}

// GetOrCreateGuild retrieves a guild or creates it on first sight
func (s *guildService) GetOrCreateGuild(ctx context.Context, guildID int64) (*entities.Guild, error) {
	guild, err := s.guildRepo.GetByID(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to get guild: %w", err)
	}
	if guild != nil {
		return guild, nil
	}

	guild, err = s.guildRepo.Create(ctx, guildID)
	if errors.Is(err, entities.ErrUniqueViolation) {
		guild, err = s.guildRepo.GetByID(ctx, guildID)
		if err != nil {
			return nil, fmt.Errorf("failed to get guild after create conflict: %w", err)
		}
		if guild == nil {
			return nil, fmt.Errorf("guild %d: %w", guildID, entities.ErrGuildNotFound)
		}
		return guild, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create guild: %w", err)
	}

	return guild, nil
}

// ListGuilds returns every known guild
func (s *guildService) ListGuilds(ctx context.Context) ([]*entities.Guild, error) {
	guilds, err := s.guildRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list guilds: %w", err)
	}
	if guilds == nil {
		guilds = []*entities.Guild{}
	}
	return guilds, nil
}

// DeleteGuild removes a guild; channels and relationships cascade
func (s *guildService) DeleteGuild(ctx context.Context, guildID int64) error {
	if err := s.guildRepo.Delete(ctx, guildID); err != nil {
		if errors.Is(err, entities.ErrGuildNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete guild: %w", err)
	}

	log.WithField("guild_id", guildID).Info("Deleted guild")
	return nil
}
