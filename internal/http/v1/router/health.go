package router

import (
	"github.com/go-chi/chi/v5"
	"log/slog"
	"pollbot/internal/http/v1/handler"
)

type HealthRouter struct {
	handler *handler.HealthHandler
}

func NewHealthRouter(db handler.Pinger, log *slog.Logger) *HealthRouter {
	return &HealthRouter{
		handler: handler.NewHealthHandler(db, log),
	}
}

func (hr *HealthRouter) SetupRoutes(r chi.Router) {
	r.Get("/health", hr.handler.Health)
}
