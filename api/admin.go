package api

import (
	"net/http"

	"teto/domain/entities"
)

type channelRequest struct {
	ChannelID Snowflake `json:"channelId"`
	GuildID   Snowflake `json:"guildId"`
}

type updateChannelRequest struct {
	GuildID Snowflake `json:"guildId"`
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := s.deps.Ledger.ListUsers(r.Context())
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, users)
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	if err := s.deps.Ledger.DeleteUser(r.Context(), userID); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGuilds(w http.ResponseWriter, r *http.Request) {
	guilds, err := s.deps.Guilds.ListGuilds(r.Context())
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, guilds)
}

func (s *Server) handleDeleteGuild(w http.ResponseWriter, r *http.Request) {
	guildID, err := pathID(r, "guildId")
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	if err := s.deps.Guilds.DeleteGuild(r.Context(), guildID); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListChannels(w http.ResponseWriter, r *http.Request) {
	channels, err := s.deps.Channels.ListChannels(r.Context())
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, channels)
}

func (s *Server) handleListGuildChannels(w http.ResponseWriter, r *http.Request) {
	guildID, err := pathID(r, "guildId")
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	channels, err := s.deps.Channels.ListGuildChannels(r.Context(), guildID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, channels)
}

func (s *Server) handleRegisterChannel(w http.ResponseWriter, r *http.Request) {
	var req channelRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	if req.ChannelID == 0 || req.GuildID == 0 {
		respondWithDomainError(w, r, entities.NewInvalidPayload("channelId and guildId are required"))
		return
	}

	channel, err := s.deps.Channels.RegisterChannel(r.Context(), int64(req.ChannelID), int64(req.GuildID))
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, channel)
}

func (s *Server) handleGetChannel(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathID(r, "channelId")
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	channel, err := s.deps.Channels.GetChannel(r.Context(), channelID)
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, channel)
}

func (s *Server) handleUpdateChannel(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathID(r, "channelId")
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	var req updateChannelRequest
	if err := decodeJSON(r, &req); err != nil {
		respondWithDomainError(w, r, err)
		return
	}
	if req.GuildID == 0 {
		respondWithDomainError(w, r, entities.NewInvalidPayload("guildId is required"))
		return
	}

	channel, err := s.deps.Channels.UpdateChannel(r.Context(), channelID, int64(req.GuildID))
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, channel)
}

func (s *Server) handleDeleteChannel(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathID(r, "channelId")
	if err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	if err := s.deps.Channels.DeleteChannel(r.Context(), channelID); err != nil {
		respondWithDomainError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
