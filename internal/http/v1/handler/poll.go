package handler

import (
	"context"
	"github.com/go-chi/chi/v5"
	"log/slog"
	"net/http"
	"pollbot/internal/apperrors"
	"pollbot/internal/domain/models"
	"pollbot/internal/lib/logger/sl"
	"strconv"
)

type (
	ListPollsResponse struct {
		Polls []models.Poll `json:"polls"`
	}

	PollStatusResponse struct {
		Poll        models.Poll         `json:"poll"`
		Issue       models.Issue        `json:"issue"`
		Initiator   string              `json:"initiator"`
		Respondents []models.Respondent `json:"respondents"`
		Pending     []string            `json:"pending"`
	}

	PendingPollsResponse struct {
		Login string               `json:"login"`
		Polls []models.PendingPoll `json:"polls"`
	}
)

type PollService interface {
	GetPollStatus(ctx context.Context, repository string, number int) (models.PollStatus, error)
	ListPolls(ctx context.Context, closed *bool) ([]models.Poll, error)
	PendingForUser(ctx context.Context, login string) ([]models.PendingPoll, error)
	DeletePoll(ctx context.Context, id int) error
}

type PollHandler struct {
	pollService PollService
	log         *slog.Logger
}

func NewPollHandler(pollService PollService, log *slog.Logger) *PollHandler {
	return &PollHandler{
		pollService: pollService,
		log:         log,
	}
}

func (h *PollHandler) ListPolls(w http.ResponseWriter, r *http.Request) {
	const op = "handler.poll.ListPolls"

	log := h.log.With(slog.String("op", op))

	var closed *bool
	if raw := r.URL.Query().Get("closed"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			writeErrorResponse(w, log, http.StatusBadRequest, "INVALID_REQUEST", apperrors.ErrInvalidClosedFilter.Error())
			return
		}
		closed = &v
	}

	polls, err := h.pollService.ListPolls(r.Context(), closed)
	if err != nil {
		log.Error("failed to list polls", sl.Err(err))
		writeServiceError(w, log, err, "failed to list polls")
		return
	}

	writeJSON(w, log, http.StatusOK, ListPollsResponse{Polls: polls})
}

func (h *PollHandler) GetPollStatus(w http.ResponseWriter, r *http.Request) {
	const op = "handler.poll.GetPollStatus"

	repository := chi.URLParam(r, "owner") + "/" + chi.URLParam(r, "repo")
	log := h.log.With(
		slog.String("op", op),
		slog.String("repository", repository),
	)

	number, err := strconv.Atoi(chi.URLParam(r, "number"))
	if err != nil || number <= 0 {
		writeErrorResponse(w, log, http.StatusBadRequest, "INVALID_REQUEST", apperrors.ErrInvalidIssueNumber.Error())
		return
	}

	status, err := h.pollService.GetPollStatus(r.Context(), repository, number)
	if err != nil {
		log.Error("failed to get poll status", slog.Int("number", number), sl.Err(err))
		writeServiceError(w, log, err, "failed to get poll status")
		return
	}

	pending := []string{}
	for _, p := range status.Pending() {
		pending = append(pending, p.User.Login)
	}

	writeJSON(w, log, http.StatusOK, PollStatusResponse{
		Poll:        status.Poll,
		Issue:       status.Issue,
		Initiator:   status.Initiator.Login,
		Respondents: status.Respondents,
		Pending:     pending,
	})
}

func (h *PollHandler) PendingForUser(w http.ResponseWriter, r *http.Request) {
	const op = "handler.poll.PendingForUser"

	login := chi.URLParam(r, "login")
	log := h.log.With(
		slog.String("op", op),
		slog.String("login", login),
	)

	polls, err := h.pollService.PendingForUser(r.Context(), login)
	if err != nil {
		log.Error("failed to list pending polls", sl.Err(err))
		writeServiceError(w, log, err, "failed to list pending polls")
		return
	}

	writeJSON(w, log, http.StatusOK, PendingPollsResponse{Login: login, Polls: polls})
}

func (h *PollHandler) DeletePoll(w http.ResponseWriter, r *http.Request) {
	const op = "handler.poll.DeletePoll"

	log := h.log.With(slog.String("op", op))

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		writeErrorResponse(w, log, http.StatusBadRequest, "INVALID_REQUEST", apperrors.ErrInvalidPollID.Error())
		return
	}

	if err := h.pollService.DeletePoll(r.Context(), id); err != nil {
		log.Error("failed to delete poll", slog.Int("poll_id", id), sl.Err(err))
		writeServiceError(w, log, err, "failed to delete poll")
		return
	}

	w.WriteHeader(http.StatusNoContent)
	log.Info("poll deleted", slog.Int("poll_id", id))
}
