package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"pollbot/internal/apperrors"
	"pollbot/internal/lib/logger/sl"
)

type (
	ErrorResponse struct {
		Error ErrorDetail `json:"error"`
	}

	ErrorDetail struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
)

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error("failed to encode JSON response", sl.Err(err))
	}
}

func writeErrorResponse(w http.ResponseWriter, log *slog.Logger, status int, code, message string) {
	writeJSON(w, log, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// writeServiceError maps a service error to its HTTP status and error code.
func writeServiceError(w http.ResponseWriter, log *slog.Logger, err error, fallback string) {
	switch {
	case errors.Is(err, apperrors.ErrPollNotFound):
		writeErrorResponse(w, log, http.StatusNotFound, "POLL_NOT_FOUND", "poll not found")
	case errors.Is(err, apperrors.ErrIssueNotFound):
		writeErrorResponse(w, log, http.StatusNotFound, "ISSUE_NOT_FOUND", "issue not found")
	case errors.Is(err, apperrors.ErrTeamNotFound):
		writeErrorResponse(w, log, http.StatusNotFound, "TEAM_NOT_FOUND", "team not found")
	case errors.Is(err, apperrors.ErrUserNotFound):
		writeErrorResponse(w, log, http.StatusNotFound, "USER_NOT_FOUND", "user not found")
	case errors.Is(err, apperrors.ErrPollExists):
		writeErrorResponse(w, log, http.StatusConflict, "POLL_EXISTS", "poll already exists for this issue")
	case errors.Is(err, apperrors.ErrMembershipExists),
		errors.Is(err, apperrors.ErrResponseRequestExists),
		errors.Is(err, apperrors.ErrUniqueViolation):
		writeErrorResponse(w, log, http.StatusConflict, "CONFLICT", "resource already exists")
	case errors.Is(err, apperrors.ErrLoginRequired),
		errors.Is(err, apperrors.ErrTeamPingRequired):
		writeErrorResponse(w, log, http.StatusBadRequest, "INVALID_REQUEST", err.Error())
	case errors.Is(err, apperrors.ErrForeignKeyViolation):
		writeErrorResponse(w, log, http.StatusUnprocessableEntity, "UNKNOWN_REFERENCE", "referenced user or team does not exist")
	default:
		writeErrorResponse(w, log, http.StatusInternalServerError, "INTERNAL_ERROR", fallback)
	}
}
