package v1

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"log/slog"
	"pollbot/internal/http/v1/handler"
	"pollbot/internal/http/v1/router"
)

type Router interface {
	SetupRoutes(r chi.Router)
}

type RouterDependencies struct {
	PollService   handler.PollService
	TeamService   handler.TeamService
	EventService  handler.EventService
	DB            handler.Pinger
	WebhookSecret string
	CORSOrigins   []string
}

func SetupRoutes(r chi.Router, deps *RouterDependencies, log *slog.Logger) {
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.CORSOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	routers := []Router{
		router.NewHealthRouter(deps.DB, log),
		router.NewWebhookRouter(deps.EventService, deps.WebhookSecret, log),
		router.NewPollRouter(deps.PollService, log),
		router.NewTeamRouter(deps.TeamService, log),
	}

	for _, serviceRouter := range routers {
		serviceRouter.SetupRoutes(r)
	}
}
