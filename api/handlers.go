package api

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"teto/application"
	"teto/domain/entities"
	"teto/domain/services"

	log "github.com/sirupsen/logrus"
)

// manualResetTimeout bounds a reset triggered over HTTP
const manualResetTimeout = 30 * time.Minute

type recordUserMessageRequest struct {
	UserID            Snowflake  `json:"userId"`
	GuildID           *Snowflake `json:"guildId"`
	IntimacyIncrement *int       `json:"intimacyIncrement"`
}

type ensureUserGuildRequest struct {
	UserID  Snowflake `json:"userId"`
	GuildID Snowflake `json:"guildId"`
}

type deductRequest struct {
	Cost int64 `json:"cost"`
}

type setRoleRequest struct {
	Role entities.Role `json:"role"`
}

type adjustIntimacyRequest struct {
	Delta int `json:"delta"`
}

type systemPromptBody struct {
	Prompt string `json:"prompt"`
}

// LeaderboardResponse lists a guild's top relationships
type LeaderboardResponse struct {
	GuildID int64                 `json:"guildId,string"`
	Entries []*entities.UserGuild `json:"entries"`
}

func (s *Server) handleRecordUserMessage(w http.ResponseWriter, r *http.Request) {
	var req recordUserMessageRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	if req.UserID == 0 {
		respondWithDomainError(w, r, entities.NewInvalidPayload("missing userId"))
		return
	}

	increment := entities.DefaultIntimacyIncrement
	if req.IntimacyIncrement != nil {
		increment = *req.IntimacyIncrement
	}

	var guildID *int64
	if req.GuildID != nil {
		id := int64(*req.GuildID)
		guildID = &id
	}

	record, err := s.deps.Recorder.RecordUserMessage(r.Context(), int64(req.UserID), guildID, increment, time.Now().UTC())
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

func (s *Server) handleEnsureUserGuild(w http.ResponseWriter, r *http.Request) {
	var req ensureUserGuildRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	if req.UserID == 0 || req.GuildID == 0 {
		respondWithDomainError(w, r, entities.NewInvalidPayload("userId and guildId are required"))
		return
	}

	ug, err := s.deps.Recorder.EnsureUserGuild(r.Context(), int64(req.UserID), int64(req.GuildID))
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ug)
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	guildID, err := queryID(r, "guildId")
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	limit := services.DefaultLeaderboardLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			respondWithDomainError(w, r, entities.NewInvalidPayload("invalid limit %q", raw))
			return
		}
	}

	entries, err := s.deps.Leaderboard.TopByIntimacy(r.Context(), guildID, limit)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, LeaderboardResponse{GuildID: guildID, Entries: entries})
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	user, err := s.deps.Ledger.GetUser(r.Context(), userID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleDeduct(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	var req deductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	user, err := s.deps.Ledger.Deduct(r.Context(), userID, req.Cost)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) handleSetRole(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	var req setRoleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	user, err := s.deps.Ledger.SetRole(r.Context(), userID, req.Role)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

func (s *Server) userGuildIDs(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondWithDomainError(w, r, err)
		return 0, 0, false
	}
	guildID, err := pathID(r, "guildId")
	if err != nil {
		respondWithDomainError(w, r, err)
		return 0, 0, false
	}
	return userID, guildID, true
}

func (s *Server) handleGetUserGuild(w http.ResponseWriter, r *http.Request) {
	userID, guildID, ok := s.userGuildIDs(w, r)
	if !ok {
		return
	}

	ug, err := s.deps.Engagement.Get(r.Context(), userID, guildID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ug)
}

func (s *Server) handleAdjustIntimacy(w http.ResponseWriter, r *http.Request) {
	userID, guildID, ok := s.userGuildIDs(w, r)
	if !ok {
		return
	}

	var req adjustIntimacyRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	ug, err := s.deps.Engagement.AdjustIntimacy(r.Context(), userID, guildID, req.Delta)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ug)
}

func (s *Server) handleFeed(w http.ResponseWriter, r *http.Request) {
	userID, guildID, ok := s.userGuildIDs(w, r)
	if !ok {
		return
	}

	ug, err := s.deps.Engagement.Feed(r.Context(), userID, guildID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, ug)
}

func (s *Server) handleDailyReset(w http.ResponseWriter, r *http.Request) {
	log.Info("Manual daily reset requested")

	// The reset finishes even if the caller hangs up.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), manualResetTimeout)
	defer cancel()

	result, err := s.deps.Reset.RunOnce(ctx)
	if err != nil {
		if result != nil {
			log.WithFields(application.ResultFields(result)).WithError(err).Warn("Manual daily reset stopped early")
		}
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetSystemPrompt(w http.ResponseWriter, r *http.Request) {
	if s.deps.Prompts == nil {
		writeError(w, http.StatusServiceUnavailable, "system prompt store not configured")
		return
	}

	prompt, err := s.deps.Prompts.Get(r.Context())
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, systemPromptBody{Prompt: prompt})
}

func (s *Server) handleSetSystemPrompt(w http.ResponseWriter, r *http.Request) {
	if s.deps.Prompts == nil {
		writeError(w, http.StatusServiceUnavailable, "system prompt store not configured")
		return
	}

	var req systemPromptBody
	if err := decodeJSON(r, &req); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	if err := s.deps.Prompts.Set(r.Context(), req.Prompt); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, req)
}
