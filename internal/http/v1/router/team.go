package router

import (
	"github.com/go-chi/chi/v5"
	"log/slog"
	"pollbot/internal/http/v1/handler"
)

type TeamRouter struct {
	handler *handler.TeamHandler
}

func NewTeamRouter(teamService handler.TeamService, log *slog.Logger) *TeamRouter {
	return &TeamRouter{
		handler: handler.NewTeamHandler(teamService, log),
	}
}

func (tr *TeamRouter) SetupRoutes(r chi.Router) {

	r.Route("/teams", func(r chi.Router) {
		r.Get("/", tr.handler.ListTeams)
		r.Get("/{ping}", tr.handler.GetTeam)
		r.Post("/{ping}/members", tr.handler.AddMember)
		r.Delete("/{ping}/members/{login}", tr.handler.RemoveMember)
	})

}
