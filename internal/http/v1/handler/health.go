package handler

import (
	"context"
	"log/slog"
	"net/http"
	"pollbot/internal/lib/logger/sl"
	"time"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

type HealthHandler struct {
	db  Pinger
	log *slog.Logger
}

func NewHealthHandler(db Pinger, log *slog.Logger) *HealthHandler {
	return &HealthHandler{db: db, log: log}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	const op = "handler.health.Health"

	log := h.log.With(slog.String("op", op))

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.db.PingContext(ctx); err != nil {
		log.Error("database is unreachable", sl.Err(err))
		writeErrorResponse(w, log, http.StatusServiceUnavailable, "UNAVAILABLE", "database is unreachable")
		return
	}

	writeJSON(w, log, http.StatusOK, HealthResponse{Status: "ok"})
}
