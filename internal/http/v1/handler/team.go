package handler

import (
	"context"
	"encoding/json"
	"github.com/go-chi/chi/v5"
	"log/slog"
	"net/http"
	"net/url"
	"pollbot/internal/domain/models"
	"pollbot/internal/lib/logger/sl"
)

type (
	ListTeamsResponse struct {
		Teams []models.Team `json:"teams"`
	}

	GetTeamResponse struct {
		Team    models.Team `json:"team"`
		Members []string    `json:"members"`
	}

	AddMemberRequest struct {
		Login string `json:"login"`
	}

	MembershipResponse struct {
		Ping    string `json:"ping"`
		Login   string `json:"login"`
		Changed bool   `json:"changed"`
	}
)

type TeamService interface {
	ListTeams(ctx context.Context) ([]models.Team, error)
	GetTeam(ctx context.Context, ping string) (models.TeamWithMembers, error)
	AddMember(ctx context.Context, ping, login string) (bool, error)
	RemoveMember(ctx context.Context, ping, login string) (bool, error)
}

type TeamHandler struct {
	teamService TeamService
	log         *slog.Logger
}

func NewTeamHandler(teamService TeamService, log *slog.Logger) *TeamHandler {
	return &TeamHandler{
		teamService: teamService,
		log:         log,
	}
}

func (h *TeamHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	const op = "handler.team.ListTeams"

	log := h.log.With(slog.String("op", op))

	teams, err := h.teamService.ListTeams(r.Context())
	if err != nil {
		log.Error("failed to list teams", sl.Err(err))
		writeServiceError(w, log, err, "failed to list teams")
		return
	}

	writeJSON(w, log, http.StatusOK, ListTeamsResponse{Teams: teams})
}

func (h *TeamHandler) GetTeam(w http.ResponseWriter, r *http.Request) {
	const op = "handler.team.GetTeam"

	log := h.log.With(slog.String("op", op))

	ping, ok := pathParam(r, "ping")
	if !ok {
		writeErrorResponse(w, log, http.StatusBadRequest, "INVALID_REQUEST", "malformed team ping")
		return
	}

	team, err := h.teamService.GetTeam(r.Context(), ping)
	if err != nil {
		log.Error("failed to get team", slog.String("ping", ping), sl.Err(err))
		writeServiceError(w, log, err, "failed to get team")
		return
	}

	members := make([]string, 0, len(team.Members))
	for _, m := range team.Members {
		members = append(members, m.Login)
	}

	writeJSON(w, log, http.StatusOK, GetTeamResponse{Team: team.Team, Members: members})
}

func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	const op = "handler.team.AddMember"

	log := h.log.With(slog.String("op", op))

	ping, ok := pathParam(r, "ping")
	if !ok {
		writeErrorResponse(w, log, http.StatusBadRequest, "INVALID_REQUEST", "malformed team ping")
		return
	}

	var req AddMemberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("invalid request body", sl.Err(err))
		writeErrorResponse(w, log, http.StatusBadRequest, "INVALID_REQUEST", "invalid request body")
		return
	}

	added, err := h.teamService.AddMember(r.Context(), ping, req.Login)
	if err != nil {
		log.Error("failed to add member", slog.String("ping", ping), sl.Err(err))
		writeServiceError(w, log, err, "failed to add member")
		return
	}

	status := http.StatusOK
	if added {
		status = http.StatusCreated
	}

	writeJSON(w, log, status, MembershipResponse{Ping: ping, Login: req.Login, Changed: added})
}

func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	const op = "handler.team.RemoveMember"

	log := h.log.With(slog.String("op", op))

	ping, ok := pathParam(r, "ping")
	if !ok {
		writeErrorResponse(w, log, http.StatusBadRequest, "INVALID_REQUEST", "malformed team ping")
		return
	}
	login := chi.URLParam(r, "login")

	removed, err := h.teamService.RemoveMember(r.Context(), ping, login)
	if err != nil {
		log.Error("failed to remove member", slog.String("ping", ping), sl.Err(err))
		writeServiceError(w, log, err, "failed to remove member")
		return
	}

	writeJSON(w, log, http.StatusOK, MembershipResponse{Ping: ping, Login: login, Changed: removed})
}

// pathParam returns an unescaped chi URL parameter; team pings carry a
// slash and arrive as %2F.
func pathParam(r *http.Request, name string) (string, bool) {
	v, err := url.PathUnescape(chi.URLParam(r, name))
	if err != nil {
		return "", false
	}
	return v, true
}
