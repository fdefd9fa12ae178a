package services

import (
	"context"
	"errors"
	"fmt"

	"teto/domain/entities"
	"teto/domain/interfaces"

	log "github.com/sirupsen/logrus"
)

// channelService implements the ChannelService interface
type channelService struct {
	channelRepo interfaces.ChannelRepository
	guilds      interfaces.GuildService
}

// NewChannelService creates a new channel service
func NewChannelService(channelRepo interfaces.ChannelRepository, guilds interfaces.GuildService) interfaces.ChannelService {
	return &channelService{
		channelRepo: channelRepo,
		guilds:      guilds,
	}
}

func (s *channelService) ListChannels(ctx context.Context) ([]*entities.Channel, error) {
	channels, err := s.channelRepo.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	return channels, nil
}

func (s *channelService) ListGuildChannels(ctx context.Context, guildID int64) ([]*entities.Channel, error) {
	channels, err := s.channelRepo.GetByGuildID(ctx, guildID)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels for guild %d: %w", guildID, err)
	}
	return channels, nil
}

// GetChannel retrieves a registered channel
func (s *channelService) GetChannel(ctx context.Context, channelID int64) (*entities.Channel, error) {
	channel, err := s.channelRepo.GetByChannelID(ctx, channelID)
	if err != nil {
		return nil, fmt.Errorf("failed to get channel: %w", err)
	}
	if channel == nil {
		return nil, fmt.Errorf("channel %d: %w", channelID, entities.ErrChannelNotFound)
	}
	return channel, nil
}

// RegisterChannel makes the bot reply in channelID
func (s *channelService) RegisterChannel(ctx context.Context, channelID, guildID int64) (*entities.Channel, error) {
	if _, err := s.guilds.GetOrCreateGuild(ctx, guildID); err != nil {
		return nil, err
	}

	channel, err := s.channelRepo.Create(ctx, channelID, guildID)
	if err != nil {
		if errors.Is(err, entities.ErrUniqueViolation) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to register channel: %w", err)
	}

	log.WithFields(log.Fields{
		"channel_id": channelID,
		"guild_id":   guildID,
	}).Info("Registered channel")

	return channel, nil
}

// UpdateChannel moves a registered channel to guildID
func (s *channelService) UpdateChannel(ctx context.Context, channelID, guildID int64) (*entities.Channel, error) {
	if _, err := s.guilds.GetOrCreateGuild(ctx, guildID); err != nil {
		return nil, err
	}

	channel, err := s.channelRepo.Update(ctx, channelID, guildID)
	if err != nil {
		if errors.Is(err, entities.ErrChannelNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update channel: %w", err)
	}
	return channel, nil
}

func (s *channelService) DeleteChannel(ctx context.Context, channelID int64) error {
	if err := s.channelRepo.Delete(ctx, channelID); err != nil {
		if errors.Is(err, entities.ErrChannelNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete channel: %w", err)
	}

	log.WithField("channel_id", channelID).Info("Unregistered channel")
	return nil
}

func (s *channelService) IsRegistered(ctx context.Context, channelID int64) (bool, error) {
	channel, err := s.channelRepo.GetByChannelID(ctx, channelID)
	if err != nil {
		return false, fmt.Errorf("failed to check channel: %w", err)
	}
	return channel != nil, nil
}
