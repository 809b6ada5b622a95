package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"moddingway/bot"
	"moddingway/model"
	"moddingway/utils"

	"github.com/go-chi/chi/v5"
)

type strikeRequest struct {
	DiscordUserID string `json:"discord_user_id"`
	Severity      int    `json:"severity"`
	Reason        string `json:"reason"`
	ActorID       string `json:"actor_id"`
}

type exileRequest struct {
	DiscordUserID string `json:"discord_user_id"`
	Duration      string `json:"duration"`
	Reason        string `json:"reason"`
}

type banRecordRequest struct {
	DiscordUserID string `json:"discord_user_id"`
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.New("Invalid request body")
	}
	return nil
}

// member resolves the target of a write. It writes the error response and returns nil on failure.
func (s *Server) member(w http.ResponseWriter, r *http.Request, start time.Time, discordUserID string) *model.Member {
	if strings.TrimSpace(discordUserID) == "" {
		respondError(w, start, http.StatusBadRequest, "discord_user_id is required")
		return nil
	}
	m, err := s.deps.Members.GetMember(r.Context(), discordUserID)
	if model.IsNotFound(err) {
		respondError(w, start, http.StatusNotFound, "User is not a member of this server")
		return nil
	}
	if err != nil {
		s.internalError(w, r, start, err)
		return nil
	}
	if utils.IsMod(m, s.deps.Config.Roles) {
		respondError(w, start, http.StatusForbidden, "You cannot moderate a mod.")
		return nil
	}
	return m
}

func (s *Server) addStrike(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req strikeRequest
	if err := decode(r, &req); err != nil {
		respondError(w, start, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidateReason(req.Reason); err != nil {
		respondError(w, start, http.StatusBadRequest, err.Error())
		return
	}
	target := s.member(w, r, start, req.DiscordUserID)
	if target == nil {
		return
	}

	res, err := s.deps.Ledger.AddStrike(r.Context(), target, model.StrikeSeverity(req.Severity), req.Reason, req.ActorID)
	if err != nil {
		s.serviceError(w, r, start, err)
		return
	}
	s.counts.Delete(countUsers)

	type strikeResponse struct {
		StrikeID       int64  `json:"strike_id"`
		PreviousPoints int    `json:"previous_points"`
		NewPoints      int    `json:"new_points"`
		Punishment     string `json:"punishment"`
		PunishmentErr  string `json:"punishment_error,omitempty"`
		DMErr          string `json:"dm_error,omitempty"`
	}
	out := strikeResponse{
		StrikeID:       res.StrikeID,
		PreviousPoints: res.PreviousPoints,
		NewPoints:      res.NewPoints,
		Punishment:     res.Punishment.String(),
	}
	if res.PunishmentErr != nil {
		out.PunishmentErr = res.PunishmentErr.Error()
	}
	if res.DMErr != nil {
		out.DMErr = res.DMErr.Error()
	}
	respondSuccess(w, start, http.StatusCreated, "Strike added", out)
}

func (s *Server) addExile(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req exileRequest
	if err := decode(r, &req); err != nil {
		respondError(w, start, http.StatusBadRequest, err.Error())
		return
	}
	d, err := utils.ParseDuration(req.Duration)
	if err != nil {
		respondError(w, start, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidateReason(req.Reason); err != nil {
		respondError(w, start, http.StatusBadRequest, err.Error())
		return
	}
	target := s.member(w, r, start, req.DiscordUserID)
	if target == nil {
		return
	}

	res, err := s.deps.Exiles.Exile(r.Context(), target, d, req.Reason)
	if err != nil {
		s.serviceError(w, r, start, err)
		return
	}
	s.counts.Delete(countUsers)

	type exileResponse struct {
		ExileID  int64      `json:"exile_id"`
		Extended bool       `json:"extended"`
		EndAt    *time.Time `json:"end_at"`
		DMErr    string     `json:"dm_error,omitempty"`
	}
	out := exileResponse{ExileID: res.ExileID, Extended: res.Extended, EndAt: res.EndAt}
	if res.DMErr != nil {
		out.DMErr = res.DMErr.Error()
	}
	respondSuccess(w, start, http.StatusCreated, "User exiled", out)
}

func (s *Server) addBannedUser(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req banRecordRequest
	if err := decode(r, &req); err != nil {
		respondError(w, start, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.DiscordUserID) == "" {
		respondError(w, start, http.StatusBadRequest, "discord_user_id is required")
		return
	}
	if err := s.deps.Bans.RecordBan(r.Context(), req.DiscordUserID, true); err != nil {
		s.internalError(w, r, start, err)
		return
	}
	s.counts.Delete(countBanned)
	s.counts.Delete(countUsers)
	respondSuccess(w, start, http.StatusCreated, "Ban recorded", req)
}

func (s *Server) listJobs(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, time.Now(), http.StatusOK, "Jobs retrieved", s.deps.Scheduler.Status())
}

func (s *Server) runJob(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	name := chi.URLParam(r, "name")
	err := s.deps.Scheduler.Trigger(name)
	switch {
	case errors.Is(err, bot.ErrUnknownJob):
		respondError(w, start, http.StatusNotFound, err.Error())
	case errors.Is(err, bot.ErrJobRunning):
		respondError(w, start, http.StatusConflict, err.Error())
	case errors.Is(err, bot.ErrStopped):
		respondError(w, start, http.StatusServiceUnavailable, err.Error())
	case err != nil:
		s.internalError(w, r, start, err)
	default:
		respondSuccess(w, start, http.StatusAccepted, "Job triggered", map[string]string{"job": name})
	}
}

func (s *Server) systemInfo(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	respondSuccess(w, start, http.StatusOK, "System info", struct {
		utils.SystemInfo
		UptimeSec int64 `json:"uptime_seconds"`
	}{utils.CollectSystemInfo(r.Context()), int64(time.Since(s.deps.StartedAt).Seconds())})
}
