package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"teto/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// EconomyConfig holds the tunables of the credit and intimacy economy.
// It is passed explicitly into each service at construction.
type EconomyConfig struct {
	MessageCreditCost        int64
	DailyCreditRefillCap     int64
	VoteCreditBonus          int64
	PurchaseCreditsByProduct map[string]int64
	FeedIntimacyGain         int
}

// DefaultPurchaseCredits maps storefront product IDs to the credits they grant
var DefaultPurchaseCredits = map[string]int64{
	"6aefc078-a0da-4998-ae9b-5ff94c18aad5": 150,
	"aaca78c2-b925-4f9b-8d47-b76161a1604d": 315,
	"d4507c93-4aa8-4c60-a877-c8750d8fbb8c": 660,
}

// DefaultEconomy returns the economy settings used when nothing is overridden
func DefaultEconomy() EconomyConfig {
	products := make(map[string]int64, len(DefaultPurchaseCredits))
	for id, credits := range DefaultPurchaseCredits {
		products[id] = credits
	}
	return EconomyConfig{
		MessageCreditCost:        1,
		DailyCreditRefillCap:     30,
		VoteCreditBonus:          30,
		PurchaseCreditsByProduct: products,
		FeedIntimacyGain:         5,
	}
}

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken   string
	DiscordGuildID string // register slash commands to this guild only, globally when empty

	// RegisteredChannelsOnly limits guild replies to channels added through /api/channels
	RegisteredChannelsOnly bool

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// Redis configuration
	RedisURL string

	// NATS configuration
	NATSServers string // NATS server addresses (comma-separated), empty disables publishing

	// HTTP API configuration
	HTTPAddr              string
	BotAPIKey             string // Bearer token the bot process uses against the API
	TopggWebAuthToken     string // Shared secret sent by top.gg on vote webhooks
	PurchaseWebhookSecret string // Shared secret sent by the storefront on purchase webhooks
	RateLimitPerSecond    int
	RateLimitBurst        int

	// Daily reset configuration
	DailyResetCron string // Cron expression evaluated in UTC

	// Economy
	Economy EconomyConfig

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("GO_TEST") == "1" || os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL constructs the full database URL by combining base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsProduction reports whether the process runs in production mode
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A missing .env file is normal outside local development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("Failed to load .env file")
	}

	config := &Config{
		DiscordToken:   os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID: os.Getenv("DISCORD_GUILD_ID"),

		RegisteredChannelsOnly: os.Getenv("REGISTERED_CHANNELS_ONLY") == "true",

		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		RedisURL:    getEnvWithDefault("REDIS_URL", "redis://redis:6379/0"),
		NATSServers: os.Getenv("NATS_SERVERS"),

		HTTPAddr:              getEnvWithDefault("HTTP_ADDR", ":3000"),
		BotAPIKey:             os.Getenv("BOT_API_KEY"),
		TopggWebAuthToken:     os.Getenv("TOPGG_WEB_AUTH_TOKEN"),
		PurchaseWebhookSecret: os.Getenv("PURCHASE_WEBHOOK_SECRET"),
		RateLimitPerSecond:    getIntWithDefault("RATE_LIMIT_PER_SECOND", 20),
		RateLimitBurst:        getIntWithDefault("RATE_LIMIT_BURST", 40),

		DailyResetCron: getEnvWithDefault("DAILY_RESET_CRON", "0 0 * * *"), // 00:00 UTC

		Economy: DefaultEconomy(),

		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	config.Economy.MessageCreditCost = getInt64WithDefault("MESSAGE_CREDIT_COST", config.Economy.MessageCreditCost)
	config.Economy.DailyCreditRefillCap = getInt64WithDefault("DAILY_CREDIT_REFILL_CAP", config.Economy.DailyCreditRefillCap)
	config.Economy.VoteCreditBonus = getInt64WithDefault("VOTE_CREDIT_BONUS", config.Economy.VoteCreditBonus)
	config.Economy.FeedIntimacyGain = getIntWithDefault("FEED_INTIMACY_GAIN", config.Economy.FeedIntimacyGain)

	if products := os.Getenv("PURCHASE_CREDITS"); products != "" {
		parsed, err := ParsePurchaseCredits(products)
		if err != nil {
			return nil, err
		}
		config.Economy.PurchaseCreditsByProduct = parsed
	}

	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DiscordToken == "" {
			return nil, fmt.Errorf("DISCORD_TOKEN is required")
		}
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.BotAPIKey == "" {
			return nil, fmt.Errorf("BOT_API_KEY is required")
		}
		if config.TopggWebAuthToken == "" {
			return nil, fmt.Errorf("TOPGG_WEB_AUTH_TOKEN is required")
		}
	}

	if err := config.Economy.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate checks that the economy settings are usable
func (e EconomyConfig) Validate() error {
	if e.MessageCreditCost <= 0 {
		return fmt.Errorf("MESSAGE_CREDIT_COST must be positive")
	}
	if e.DailyCreditRefillCap < 0 {
		return fmt.Errorf("DAILY_CREDIT_REFILL_CAP cannot be negative")
	}
	if e.VoteCreditBonus <= 0 {
		return fmt.Errorf("VOTE_CREDIT_BONUS must be positive")
	}
	for product, credits := range e.PurchaseCreditsByProduct {
		if credits <= 0 {
			return fmt.Errorf("purchase credits for product %s must be positive", product)
		}
	}
	return nil
}

// ParsePurchaseCredits parses "productID:credits,productID:credits"
func ParsePurchaseCredits(raw string) (map[string]int64, error) {
	products := make(map[string]int64)
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		productID, creditsStr, found := strings.Cut(entry, ":")
		if !found || strings.TrimSpace(productID) == "" {
			return nil, fmt.Errorf("invalid PURCHASE_CREDITS entry %q", entry)
		}
		credits, err := strconv.ParseInt(strings.TrimSpace(creditsStr), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid credit amount in PURCHASE_CREDITS entry %q: %w", entry, err)
		}
		products[strings.TrimSpace(productID)] = credits
	}
	return products, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntWithDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
		log.Warnf("Ignoring invalid %s=%q", key, value)
	}
	return defaultValue
}

func getInt64WithDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
		log.Warnf("Ignoring invalid %s=%q", key, value)
	}
	return defaultValue
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:        "test",
		DiscordToken:       "test-token",
		BotAPIKey:          "test-api-key",
		TopggWebAuthToken:  "test-topgg-token",
		HTTPAddr:           ":0",
		RateLimitPerSecond: 1000,
		RateLimitBurst:     1000,
		DailyResetCron:     "0 0 * * *",
		Economy:            DefaultEconomy(),
		LogLevel:           "debug",
	}
}
