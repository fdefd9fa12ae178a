package services

import (
	"teto/config"
	"teto/domain/testhelpers"
	"teto/repository/memory"
)

// Test constants for consistent test data
const (
	TestUserID  = int64(100)
	TestUser2ID = int64(200)
	TestUser3ID = int64(300)
	TestGuildID = int64(1)
)

// testServices wires every service over one in-memory store
type testServices struct {
	store      *memory.Store
	publisher  *testhelpers.RecordingPublisher
	economy    config.EconomyConfig
	ledger     *creditLedger
	engagement *engagementTracker
	guilds     *guildService
	channels   *channelService
	recorder   *messageRecorder
	reset      *dailyResetService
}

func newTestServices() *testServices {
	store := memory.NewStore()
	publisher := &testhelpers.RecordingPublisher{}
	economy := config.DefaultEconomy()

	ledger := NewCreditLedger(store.Users(), publisher).(*creditLedger)
	engagement := NewEngagementTracker(store.UserGuilds(), publisher, economy.FeedIntimacyGain).(*engagementTracker)
	guilds := NewGuildService(store.Guilds()).(*guildService)
	channels := NewChannelService(store.Channels(), guilds).(*channelService)
	recorder := NewMessageRecorder(ledger, guilds, engagement, economy.MessageCreditCost).(*messageRecorder)
	reset := NewDailyResetService(store.Users(), store.UserGuilds(), ledger, engagement, publisher, economy.DailyCreditRefillCap).(*dailyResetService)

	return &testServices{
		store:      store,
		publisher:  publisher,
		economy:    economy,
		ledger:     ledger,
		engagement: engagement,
		guilds:     guilds,
		channels:   channels,
		recorder:   recorder,
		reset:      reset,
	}
}
