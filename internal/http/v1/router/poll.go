package router

import (
	"github.com/go-chi/chi/v5"
	"log/slog"
	"pollbot/internal/http/v1/handler"
)

type PollRouter struct {
	handler *handler.PollHandler
}

func NewPollRouter(pollService handler.PollService, log *slog.Logger) *PollRouter {
	return &PollRouter{
		handler: handler.NewPollHandler(pollService, log),
	}
}

func (pr *PollRouter) SetupRoutes(r chi.Router) {

	r.Route("/polls", func(r chi.Router) {
		r.Get("/", pr.handler.ListPolls)
		r.Get("/{owner}/{repo}/{number}", pr.handler.GetPollStatus)
		r.Delete("/{id}", pr.handler.DeletePoll)
	})

	r.Get("/users/{login}/pending", pr.handler.PendingForUser)
}
