package router

import (
	"github.com/go-chi/chi/v5"
	"log/slog"
	"pollbot/internal/http/v1/handler"
)

type WebhookRouter struct {
	handler *handler.WebhookHandler
}

func NewWebhookRouter(eventService handler.EventService, secret string, log *slog.Logger) *WebhookRouter {
	return &WebhookRouter{
		handler: handler.NewWebhookHandler(eventService, secret, log),
	}
}

func (wr *WebhookRouter) SetupRoutes(r chi.Router) {
	r.Post("/github-webhook", wr.handler.HandleWebhook)
}
