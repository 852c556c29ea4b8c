package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"pollbot/internal/app/rest"
	"pollbot/internal/config"
	"pollbot/internal/github"
	v1 "pollbot/internal/http/v1"
	"pollbot/internal/lib/logger/sl"
	"pollbot/internal/lib/migrator"
	"pollbot/internal/lib/teamsfile"
	"pollbot/internal/repo"
	"pollbot/internal/service"
	"pollbot/internal/storage/postgresql"
	"pollbot/internal/worker"
	"time"
)

type App struct {
	log         *slog.Logger
	storage     *postgresql.Storage
	restApp     *rest.App
	nagger      *worker.Nagger
	scraper     *worker.Scraper
	workersCtx  context.Context
	stopWorkers context.CancelFunc
}

func MustNew(log *slog.Logger, cfg *config.Config) *App {
	if err := migrator.RunMigrations(cfg.Postgres, log); err != nil {
		log.Error("failed to run migrations", sl.Err(err))
		panic(err)
	}

	storage := postgresql.Init(cfg.Postgres)

	userRepo := repo.NewUserRepo(storage.GetDB())
	teamRepo := repo.NewTeamRepo(storage.GetDB())
	issueRepo := repo.NewIssueRepo(storage.GetDB())
	commentRepo := repo.NewCommentRepo(storage.GetDB())
	pollRepo := repo.NewPollRepo(storage.GetDB())
	syncRepo := repo.NewSyncRepo(storage.GetDB())

	githubClient := github.New(log, cfg.GitHub)
	if cfg.GitHub.WebhookSecret == "" {
		log.Warn("GITHUB_WEBHOOK_SECRET is empty, webhook signatures are not checked")
	}

	teamService := service.NewTeamService(log, teamRepo)
	pollService := service.NewPollService(
		log,
		pollRepo,
		issueRepo,
		userRepo,
		commentRepo,
		teamRepo,
		githubClient,
		service.PollServiceConfig{
			Mention:      cfg.Bot.Mention,
			PostComments: cfg.Bot.PostComments,
		},
	)
	eventService := service.NewEventService(log, userRepo, issueRepo, commentRepo, pollService, cfg.GitHub.BotLogin)
	scraperService := service.NewScraperService(
		log,
		githubClient,
		syncRepo,
		eventService,
		pollService,
		service.ScraperConfig{
			Orgs:     cfg.GitHub.Orgs,
			Repos:    cfg.GitHub.Repos,
			Lookback: cfg.Bot.ScrapeLookback,
		},
	)

	if cfg.Bot.TeamsFile != "" {
		mustSyncTeams(log, teamService, cfg.Bot.TeamsFile)
	}

	routerDependencies := v1.RouterDependencies{
		PollService:   pollService,
		TeamService:   teamService,
		EventService:  eventService,
		DB:            storage.GetDB(),
		WebhookSecret: cfg.GitHub.WebhookSecret,
		CORSOrigins:   cfg.Server.CORSOrigins,
	}

	restApp := rest.New(
		log,
		&routerDependencies,
		cfg.Server,
	)

	var scraper *worker.Scraper
	if scraperService.Enabled() {
		scraper = worker.NewScraper(log, scraperService, cfg.Bot.ScrapeInterval)
	} else {
		log.Info("no GITHUB_ORGS or GITHUB_REPOS set, scraping disabled")
	}

	workersCtx, stopWorkers := context.WithCancel(context.Background())

	return &App{
		log:         log,
		storage:     storage,
		restApp:     restApp,
		nagger:      worker.NewNagger(log, pollService, cfg.Bot.NagInterval),
		scraper:     scraper,
		workersCtx:  workersCtx,
		stopWorkers: stopWorkers,
	}
}

func mustSyncTeams(log *slog.Logger, teamService *service.TeamService, path string) {
	roster, err := teamsfile.Load(path)
	if err != nil {
		log.Error("failed to load teams file", slog.String("path", path), sl.Err(err))
		panic(err)
	}

	// partial failures are already logged per team
	if err := teamService.SyncTeams(context.Background(), roster); err != nil {
		log.Warn("teams sync finished with errors", sl.Err(err))
	}
}

func (a *App) MustRun() {
	const op = "app.MustRun"
	a.log.With(slog.String("op", op)).Info("starting application")

	go a.nagger.Run(a.workersCtx)
	if a.scraper != nil {
		go a.scraper.Run(a.workersCtx)
	}

	if err := a.restApp.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic(err)
	}
}

func (a *App) GracefulShutdown() {
	const op = "app.GracefulShutdown"
	log := a.log.With(slog.String("op", op))
	log.Info("shutting down application")

	a.stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := a.restApp.Stop(ctx); err != nil {
		log.Error("failed to stop HTTP server", sl.Err(err))
	}

	if a.storage != nil {
		if err := a.storage.Close(); err != nil {
			log.Error("failed to close database", sl.Err(err))
		}
		log.Info("database connection closed")
	}
}
