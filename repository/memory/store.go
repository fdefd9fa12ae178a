// Package memory provides in-process implementations of the repository
// interfaces. Each operation holds the store lock for its whole duration,
// which gives the same per-row atomicity as the PostgreSQL statements.
package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"teto/domain/entities"

	"github.com/google/uuid"
)

type pairKey struct {
	userID  int64
	guildID int64
}

// Store holds users, guilds, channels and relationships behind one lock
type Store struct {
	mu         sync.Mutex
	users      map[int64]*entities.User
	guilds     map[int64]*entities.Guild
	channels   map[int64]*entities.Channel
	userGuilds map[pairKey]*entities.UserGuild
	now        func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		users:      make(map[int64]*entities.User),
		guilds:     make(map[int64]*entities.Guild),
		channels:   make(map[int64]*entities.Channel),
		userGuilds: make(map[pairKey]*entities.UserGuild),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Users returns the user repository view of the store
func (s *Store) Users() *UserRepository { return &UserRepository{s: s} }

// Guilds returns the guild repository view of the store
func (s *Store) Guilds() *GuildRepository { return &GuildRepository{s: s} }

// Channels returns the channel repository view of the store
func (s *Store) Channels() *ChannelRepository { return &ChannelRepository{s: s} }

// UserGuilds returns the relationship repository view of the store
func (s *Store) UserGuilds() *UserGuildRepository { return &UserGuildRepository{s: s} }

func copyUser(u *entities.User) *entities.User {
	c := *u
	if u.LastVotedAt != nil {
		t := *u.LastVotedAt
		c.LastVotedAt = &t
	}
	return &c
}

func copyUserGuild(ug *entities.UserGuild) *entities.UserGuild {
	c := *ug
	if ug.LastMessageAt != nil {
		t := *ug.LastMessageAt
		c.LastMessageAt = &t
	}
	if ug.LastFeed != nil {
		t := *ug.LastFeed
		c.LastFeed = &t
	}
	return &c
}

// UserRepository is the in-memory user store
type UserRepository struct {
	s *Store
}

func (r *UserRepository) GetByID(ctx context.Context, userID int64) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[userID]
	if !ok {
		return nil, nil
	}
	return copyUser(user), nil
}

func (r *UserRepository) Create(ctx context.Context, userID int64, role entities.Role, initialCredits int64) (*entities.User, error) {
	if initialCredits < 0 {
		return nil, fmt.Errorf("failed to create user %d: %w", userID, entities.ErrInvalidAmount)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.users[userID]; exists {
		return nil, fmt.Errorf("failed to create user %d: %w", userID, entities.ErrUniqueViolation)
	}

	now := r.s.now()
	user := &entities.User{
		UserID:         userID,
		Role:           role,
		MessageCredits: initialCredits,
		InsertedAt:     now,
		UpdatedAt:      now,
	}
	r.s.users[userID] = user
	return copyUser(user), nil
}

func (r *UserRepository) GetAll(ctx context.Context) ([]*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	users := make([]*entities.User, 0, len(r.s.users))
	for _, user := range r.s.users {
		users = append(users, copyUser(user))
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users, nil
}

func (r *UserRepository) Delete(ctx context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return fmt.Errorf("user %d: %w", userID, entities.ErrUserNotFound)
	}
	delete(r.s.users, userID)
	for key := range r.s.userGuilds {
		if key.userID == userID {
			delete(r.s.userGuilds, key)
		}
	}
	return nil
}

func (r *UserRepository) UpdateRole(ctx context.Context, userID int64, role entities.Role) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, entities.ErrUserNotFound)
	}
	user.Role = role
	user.UpdatedAt = r.s.now()
	return copyUser(user), nil
}

func (r *UserRepository) DeductCredits(ctx context.Context, userID int64, cost int64) (*entities.User, error) {
	if cost <= 0 {
		return nil, entities.ErrInvalidAmount
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, entities.ErrUserNotFound)
	}
	if !user.CanAfford(cost) {
		return nil, &entities.InsufficientCreditsError{
			UserID:   userID,
			Balance:  user.MessageCredits,
			Required: cost,
		}
	}
	user.MessageCredits -= cost
	user.UpdatedAt = r.s.now()
	return copyUser(user), nil
}

func (r *UserRepository) AddCredits(ctx context.Context, userID int64, amount int64, votedAt *time.Time) (*entities.User, error) {
	if amount <= 0 {
		return nil, entities.ErrInvalidAmount
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", userID, entities.ErrUserNotFound)
	}
	user.MessageCredits += amount
	if votedAt != nil {
		t := votedAt.UTC()
		user.LastVotedAt = &t
	}
	user.UpdatedAt = r.s.now()
	return copyUser(user), nil
}

func (r *UserRepository) RefillCredits(ctx context.Context, userID int64, refillCap int64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	user, ok := r.s.users[userID]
	if !ok || user.MessageCredits >= refillCap {
		return false, nil
	}
	user.MessageCredits = refillCap
	user.UpdatedAt = r.s.now()
	return true, nil
}

func (r *UserRepository) FindBelowCredits(ctx context.Context, threshold int64) ([]*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var users []*entities.User
	for _, user := range r.s.users {
		if user.MessageCredits < threshold {
			users = append(users, copyUser(user))
		}
	}
	sort.Slice(users, func(i, j int) bool { return users[i].UserID < users[j].UserID })
	return users, nil
}

// GuildRepository is the in-memory guild store
type GuildRepository struct {
	s *Store
}

func (r *GuildRepository) GetByID(ctx context.Context, guildID int64) (*entities.Guild, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	guild, ok := r.s.guilds[guildID]
	if !ok {
		return nil, nil
	}
	c := *guild
	return &c, nil
}

func (r *GuildRepository) Create(ctx context.Context, guildID int64) (*entities.Guild, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.guilds[guildID]; exists {
		return nil, fmt.Errorf("failed to create guild %d: %w", guildID, entities.ErrUniqueViolation)
	}
	now := r.s.now()
	guild := &entities.Guild{GuildID: guildID, InsertedAt: now, UpdatedAt: now}
	r.s.guilds[guildID] = guild
	c := *guild
	return &c, nil
}

func (r *GuildRepository) GetAll(ctx context.Context) ([]*entities.Guild, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	guilds := make([]*entities.Guild, 0, len(r.s.guilds))
	for _, guild := range r.s.guilds {
		c := *guild
		guilds = append(guilds, &c)
	}
	sort.Slice(guilds, func(i, j int) bool { return guilds[i].GuildID < guilds[j].GuildID })
	return guilds, nil
}

func (r *GuildRepository) Delete(ctx context.Context, guildID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.guilds[guildID]; !ok {
		return fmt.Errorf("guild %d: %w", guildID, entities.ErrGuildNotFound)
	}
	delete(r.s.guilds, guildID)
	for key := range r.s.userGuilds {
		if key.guildID == guildID {
			delete(r.s.userGuilds, key)
		}
	}
	for channelID, channel := range r.s.channels {
		if channel.GuildID == guildID {
			delete(r.s.channels, channelID)
		}
	}
	return nil
}

// ChannelRepository is the in-memory channel store
type ChannelRepository struct {
	s *Store
}

func (r *ChannelRepository) GetByChannelID(ctx context.Context, channelID int64) (*entities.Channel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	channel, ok := r.s.channels[channelID]
	if !ok {
		return nil, nil
	}
	c := *channel
	return &c, nil
}

func (r *ChannelRepository) Create(ctx context.Context, channelID, guildID int64) (*entities.Channel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.guilds[guildID]; !ok {
		return nil, fmt.Errorf("failed to create channel %d: %w", channelID, entities.ErrGuildNotFound)
	}
	if _, exists := r.s.channels[channelID]; exists {
		return nil, fmt.Errorf("failed to create channel %d: %w", channelID, entities.ErrUniqueViolation)
	}

	now := r.s.now()
	channel := &entities.Channel{
		ID:         uuid.New().String(),
		ChannelID:  channelID,
		GuildID:    guildID,
		InsertedAt: now,
		UpdatedAt:  now,
	}
	r.s.channels[channelID] = channel
	c := *channel
	return &c, nil
}

func (r *ChannelRepository) GetAll(ctx context.Context) ([]*entities.Channel, error) {
	return r.filter(func(*entities.Channel) bool { return true }), nil
}

func (r *ChannelRepository) GetByGuildID(ctx context.Context, guildID int64) ([]*entities.Channel, error) {
	return r.filter(func(c *entities.Channel) bool { return c.GuildID == guildID }), nil
}

func (r *ChannelRepository) filter(keep func(*entities.Channel) bool) []*entities.Channel {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	channels := make([]*entities.Channel, 0)
	for _, channel := range r.s.channels {
		if keep(channel) {
			c := *channel
			channels = append(channels, &c)
		}
	}
	sort.Slice(channels, func(i, j int) bool { return channels[i].ChannelID < channels[j].ChannelID })
	return channels
}

func (r *ChannelRepository) Update(ctx context.Context, channelID, guildID int64) (*entities.Channel, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	channel, ok := r.s.channels[channelID]
	if !ok {
		return nil, fmt.Errorf("channel %d: %w", channelID, entities.ErrChannelNotFound)
	}
	if _, ok := r.s.guilds[guildID]; !ok {
		return nil, fmt.Errorf("failed to update channel %d: %w", channelID, entities.ErrGuildNotFound)
	}
	channel.GuildID = guildID
	channel.UpdatedAt = r.s.now()
	c := *channel
	return &c, nil
}

func (r *ChannelRepository) Delete(ctx context.Context, channelID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.channels[channelID]; !ok {
		return fmt.Errorf("channel %d: %w", channelID, entities.ErrChannelNotFound)
	}
	delete(r.s.channels, channelID)
	return nil
}

// UserGuildRepository is the in-memory relationship store
type UserGuildRepository struct {
	s *Store
}

// mutate applies fn to an existing relationship under the store lock
func (r *UserGuildRepository) mutate(userID, guildID int64, fn func(ug *entities.UserGuild) error) (*entities.UserGuild, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ug, ok := r.s.userGuilds[pairKey{userID, guildID}]
	if !ok {
		return nil, fmt.Errorf("user %d guild %d: %w", userID, guildID, entities.ErrRelationshipNotFound)
	}
	if err := fn(ug); err != nil {
		return nil, err
	}
	ug.UpdatedAt = r.s.now()
	return copyUserGuild(ug), nil
}

func (r *UserGuildRepository) Get(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	ug, ok := r.s.userGuilds[pairKey{userID, guildID}]
	if !ok {
		return nil, nil
	}
	return copyUserGuild(ug), nil
}

func (r *UserGuildRepository) Create(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[userID]; !ok {
		return nil, fmt.Errorf("failed to create user %d guild %d: %w", userID, guildID, entities.ErrUserNotFound)
	}
	if _, ok := r.s.guilds[guildID]; !ok {
		return nil, fmt.Errorf("failed to create user %d guild %d: %w", userID, guildID, entities.ErrGuildNotFound)
	}
	key := pairKey{userID, guildID}
	if _, exists := r.s.userGuilds[key]; exists {
		return nil, fmt.Errorf("failed to create user %d guild %d: %w", userID, guildID, entities.ErrUniqueViolation)
	}

	now := r.s.now()
	ug := &entities.UserGuild{UserID: userID, GuildID: guildID, InsertedAt: now, UpdatedAt: now}
	r.s.userGuilds[key] = ug
	return copyUserGuild(ug), nil
}

func (r *UserGuildRepository) RecordMessage(ctx context.Context, userID, guildID int64, intimacyIncrement int, at time.Time) (*entities.UserGuild, error) {
	return r.mutate(userID, guildID, func(ug *entities.UserGuild) error {
		ug.DailyMessageCount++
		ug.Intimacy = entities.ClampIntimacy(ug.Intimacy + intimacyIncrement)
		stamp := at.UTC()
		ug.LastMessageAt = &stamp
		return nil
	})
}

func (r *UserGuildRepository) AdjustIntimacy(ctx context.Context, userID, guildID int64, delta int) (*entities.UserGuild, error) {
	return r.mutate(userID, guildID, func(ug *entities.UserGuild) error {
		ug.Intimacy = entities.ClampIntimacy(ug.Intimacy + delta)
		return nil
	})
}

func (r *UserGuildRepository) ResetDaily(ctx context.Context, userID, guildID int64) (*entities.UserGuild, error) {
	return r.mutate(userID, guildID, func(ug *entities.UserGuild) error {
		ug.DailyMessageCount = 0
		ug.LastFeed = nil
		return nil
	})
}

func (r *UserGuildRepository) MarkFed(ctx context.Context, userID, guildID int64, at time.Time, intimacyGain int) (*entities.UserGuild, error) {
	return r.mutate(userID, guildID, func(ug *entities.UserGuild) error {
		if ug.HasFedToday() {
			return fmt.Errorf("user %d guild %d: %w", userID, guildID, entities.ErrFeedCooldown)
		}
		stamp := at.UTC()
		ug.LastFeed = &stamp
		ug.Intimacy = entities.ClampIntimacy(ug.Intimacy + intimacyGain)
		return nil
	})
}

func (r *UserGuildRepository) FindNeedingReset(ctx context.Context) ([]*entities.UserGuild, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []*entities.UserGuild
	for _, ug := range r.s.userGuilds {
		if ug.NeedsDailyReset() {
			result = append(result, copyUserGuild(ug))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].GuildID != result[j].GuildID {
			return result[i].GuildID < result[j].GuildID
		}
		return result[i].UserID < result[j].UserID
	})
	return result, nil
}

func (r *UserGuildRepository) TopByIntimacy(ctx context.Context, guildID int64, limit int) ([]*entities.UserGuild, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var result []*entities.UserGuild
	for key, ug := range r.s.userGuilds {
		if key.guildID == guildID {
			result = append(result, copyUserGuild(ug))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Intimacy != result[j].Intimacy {
			return result[i].Intimacy > result[j].Intimacy
		}
		return result[i].UserID < result[j].UserID
	})
	if limit >= 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}
