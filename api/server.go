// Package api exposes the credit economy over HTTP for the bot process and
// the vote and purchase webhooks.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"teto/domain/entities"
	"teto/domain/interfaces"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
)

// ResetRunner triggers a guarded daily reset
type ResetRunner interface {
	RunOnce(ctx context.Context) (*entities.DailyResetResult, error)
}

// Deps are the services the API dispatches to. Dedup and Prompts are optional.
type Deps struct {
	Ledger      interfaces.CreditLedger
	Guilds      interfaces.GuildService
	Channels    interfaces.ChannelService
	Engagement  interfaces.EngagementTracker
	Recorder    interfaces.MessageRecorder
	Leaderboard interfaces.LeaderboardService
	Bonus       interfaces.BonusIntake
	Reset       ResetRunner
	Dedup       interfaces.DeliveryDeduplicator
	Prompts     interfaces.SystemPromptStore
}

// Options configure authentication and limits
type Options struct {
	Addr                  string
	BotAPIKey             string
	TopggWebAuthToken     string
	PurchaseWebhookSecret string
	RateLimitPerSecond    int
	RateLimitBurst        int
}

// Server is the HTTP API server
type Server struct {
	deps       Deps
	opts       Options
	router     *mux.Router
	httpServer *http.Server
}

// NewServer creates a server with all routes registered
func NewServer(deps Deps, opts Options) *Server {
	s := &Server{
		deps: deps,
		opts: opts,
	}
	s.router = s.routes()
	s.httpServer = &http.Server{
		Addr:              opts.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// Handler returns the root HTTP handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(observeRequests)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(NewRateLimiter(s.opts.RateLimitPerSecond, s.opts.RateLimitBurst).Handler)

	bot := func(h http.HandlerFunc) http.Handler {
		return requireBearer(s.opts.BotAPIKey, h)
	}

	api.Handle("/record-user-message", bot(s.handleRecordUserMessage)).Methods(http.MethodPost)
	api.Handle("/ensure-user-guild-exists", bot(s.handleEnsureUserGuild)).Methods(http.MethodPost)
	api.Handle("/leaderboard", bot(s.handleLeaderboard)).Methods(http.MethodGet)
	api.Handle("/users", bot(s.handleListUsers)).Methods(http.MethodGet)
	api.Handle("/users/{userId}", bot(s.handleGetUser)).Methods(http.MethodGet)
	api.Handle("/users/{userId}", bot(s.handleDeleteUser)).Methods(http.MethodDelete)
	api.Handle("/users/{userId}/deduct", bot(s.handleDeduct)).Methods(http.MethodPost)
	api.Handle("/users/{userId}/role", bot(s.handleSetRole)).Methods(http.MethodPut)
	api.Handle("/user-guilds/{userId}/{guildId}", bot(s.handleGetUserGuild)).Methods(http.MethodGet)
	api.Handle("/user-guilds/{userId}/{guildId}/intimacy", bot(s.handleAdjustIntimacy)).Methods(http.MethodPost)
	api.Handle("/user-guilds/{userId}/{guildId}/feed", bot(s.handleFeed)).Methods(http.MethodPost)
	api.Handle("/guilds", bot(s.handleListGuilds)).Methods(http.MethodGet)
	api.Handle("/guilds/{guildId}", bot(s.handleDeleteGuild)).Methods(http.MethodDelete)
	api.Handle("/guilds/{guildId}/channels", bot(s.handleListGuildChannels)).Methods(http.MethodGet)
	api.Handle("/channels", bot(s.handleListChannels)).Methods(http.MethodGet)
	api.Handle("/channels", bot(s.handleRegisterChannel)).Methods(http.MethodPost)
	api.Handle("/channels/{channelId}", bot(s.handleGetChannel)).Methods(http.MethodGet)
	api.Handle("/channels/{channelId}", bot(s.handleUpdateChannel)).Methods(http.MethodPut)
	api.Handle("/channels/{channelId}", bot(s.handleDeleteChannel)).Methods(http.MethodDelete)
	api.Handle("/daily-reset", bot(s.handleDailyReset)).Methods(http.MethodPost)
	api.Handle("/system-prompt", bot(s.handleGetSystemPrompt)).Methods(http.MethodGet)
	api.Handle("/system-prompt", bot(s.handleSetSystemPrompt)).Methods(http.MethodPut)

	api.Handle("/webhook", requireSharedSecret(s.opts.TopggWebAuthToken, http.HandlerFunc(s.handleVoteWebhook))).Methods(http.MethodPost)
	api.Handle("/webhooks/purchase", requireSharedSecret(s.opts.PurchaseWebhookSecret, http.HandlerFunc(s.handlePurchaseWebhook))).Methods(http.MethodPost)

	return r
}

// Start serves until the listener fails or Shutdown is called
func (s *Server) Start() error {
	log.WithField("addr", s.opts.Addr).Info("Starting HTTP API")
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("failed to serve HTTP API: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
