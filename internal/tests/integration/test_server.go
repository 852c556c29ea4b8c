package integration

import (
	"context"
	"fmt"
	"github.com/go-chi/chi/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"log/slog"
	"net/http/httptest"
	"os"
	"pollbot/internal/domain/models"
	v1 "pollbot/internal/http/v1"
	"pollbot/internal/lib/migrator"
	"pollbot/internal/repo"
	"pollbot/internal/service"
	"sync"
	"time"
)

const (
	WebhookSecret = "integration-secret"
	BotLogin      = "rfcbot"
)

var botUser = models.User{ID: 999, Login: BotLogin}

// GitHubStub stands in for the GitHub comments API and keeps every posted body.
type GitHubStub struct {
	mu     sync.Mutex
	nextID int64
	Bodies map[int64]string
}

func (g *GitHubStub) NewComment(_ context.Context, repository string, _ int, body string) (models.IssueComment, models.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.nextID++
	g.Bodies[g.nextID] = body

	now := time.Now().UTC()
	return models.IssueComment{ID: g.nextID, Body: body, Repository: repository, CreatedAt: now, UpdatedAt: now}, botUser, nil
}

func (g *GitHubStub) EditComment(_ context.Context, repository string, id int64, body string) (models.IssueComment, models.User, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.Bodies[id] = body

	now := time.Now().UTC()
	return models.IssueComment{ID: id, Body: body, Repository: repository, CreatedAt: now, UpdatedAt: now}, botUser, nil
}

// Posted returns the bodies in posting order.
func (g *GitHubStub) Posted() []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	bodies := make([]string, 0, len(g.Bodies))
	for id := int64(1); id <= g.nextID; id++ {
		bodies = append(bodies, g.Bodies[id])
	}
	return bodies
}

type TestServer struct {
	DB     *sqlx.DB
	Server *httptest.Server
	GitHub *GitHubStub
}

// NewTestServer migrates a fresh schema into the database named by
// PG_TEST_DSN and serves the full router against it.
func NewTestServer() (*TestServer, error) {
	dsn := os.Getenv("PG_TEST_DSN")
	if dsn == "" {
		return nil, fmt.Errorf("PG_TEST_DSN is not set")
	}

	if err := migrator.Reset(dsn); err != nil {
		return nil, fmt.Errorf("failed to reset schema: %w", err)
	}

	db, err := sqlx.Connect("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError,
	}))

	userRepo := repo.NewUserRepo(db)
	teamRepo := repo.NewTeamRepo(db)
	issueRepo := repo.NewIssueRepo(db)
	commentRepo := repo.NewCommentRepo(db)
	pollRepo := repo.NewPollRepo(db)

	stub := &GitHubStub{Bodies: make(map[int64]string)}

	teamService := service.NewTeamService(log, teamRepo)
	pollService := service.NewPollService(log, pollRepo, issueRepo, userRepo, commentRepo, teamRepo, stub,
		service.PollServiceConfig{Mention: "@" + BotLogin, PostComments: true})
	eventService := service.NewEventService(log, userRepo, issueRepo, commentRepo, pollService, BotLogin)

	r := chi.NewRouter()
	v1.SetupRoutes(r, &v1.RouterDependencies{
		PollService:   pollService,
		TeamService:   teamService,
		EventService:  eventService,
		DB:            db,
		WebhookSecret: WebhookSecret,
		CORSOrigins:   []string{"*"},
	}, log)

	return &TestServer{
		DB:     db,
		Server: httptest.NewServer(r),
		GitHub: stub,
	}, nil
}

func (s *TestServer) Close() {
	s.Server.Close()
	s.DB.Close()
}
