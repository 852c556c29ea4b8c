package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/hashicorp/go-multierror"
	"log/slog"
	"pollbot/internal/apperrors"
	"pollbot/internal/domain/models"
	"pollbot/internal/lib/logger/sl"
	"time"
)

// RemoteComment is a comment as listed by GitHub, keyed to its issue number.
type RemoteComment struct {
	IssueNumber int
	Comment     models.IssueComment
	Author      models.User
}

type ActivitySource interface {
	ListRepositories(ctx context.Context, org string) ([]string, error)
	IssuesSince(ctx context.Context, repository string, since time.Time) ([]IssueEvent, error)
	CommentsSince(ctx context.Context, repository string, since time.Time) ([]RemoteComment, error)
}

type SyncStore interface {
	MostRecentSync(ctx context.Context) (time.Time, bool, error)
	RecordSync(ctx context.Context, run models.SyncRun) error
}

type EventIngester interface {
	HandleIssueEvent(ctx context.Context, ev IssueEvent) error
	HandleCommentEvent(ctx context.Context, ev CommentEvent) error
}

type PollEvaluator interface {
	EvaluatePolls(ctx context.Context) error
}

type ScraperConfig struct {
	Orgs  []string
	Repos []string
	// Lookback bounds the first scrape when no run has succeeded yet.
	Lookback time.Duration
}

// ScraperService replays GitHub activity through the webhook path so
// deliveries that were missed or failed are not lost.
type ScraperService struct {
	log       *slog.Logger
	source    ActivitySource
	syncs     SyncStore
	events    EventIngester
	evaluator PollEvaluator
	cfg       ScraperConfig
	now       func() time.Time
}

func NewScraperService(
	log *slog.Logger,
	source ActivitySource,
	syncs SyncStore,
	events EventIngester,
	evaluator PollEvaluator,
	cfg ScraperConfig) *ScraperService {
	return &ScraperService{
		log:       log,
		source:    source,
		syncs:     syncs,
		events:    events,
		evaluator: evaluator,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Enabled reports whether there is anything to scrape.
func (s *ScraperService) Enabled() bool {
	return len(s.cfg.Orgs) > 0 || len(s.cfg.Repos) > 0
}

// Scrape ingests everything updated since the last successful run and
// records the outcome. A run with any failed repository is recorded as
// failed, so the next run starts from the same point.
func (s *ScraperService) Scrape(ctx context.Context) error {
	const op = "service.scraper.Scrape"

	log := s.log.With(slog.String("op", op))

	since, ok, err := s.syncs.MostRecentSync(ctx)
	if err != nil {
		log.Error("failed to read last sync", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}
	start := s.now()
	if !ok {
		since = start.Add(-s.cfg.Lookback)
	}

	log = log.With(slog.Time("since", since))
	log.Info("scraping github activity")

	var result *multierror.Error

	repos, err := s.repositories(ctx)
	if err != nil {
		result = multierror.Append(result, err)
	}

	for _, repo := range repos {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}
		if err := s.ingest(ctx, repo, since); err != nil {
			log.Error("failed to scrape repository", slog.String("repository", repo), sl.Err(err))
			result = multierror.Append(result, fmt.Errorf("%s: %w", repo, err))
			continue
		}
		log.Info("scraped repository", slog.String("repository", repo))
	}

	// issues closed without a webhook still close their polls
	if err := s.evaluator.EvaluatePolls(ctx); err != nil {
		log.Error("unable to evaluate open polls", sl.Err(err))
	}

	run := models.SyncRun{Successful: result.ErrorOrNil() == nil, RanAt: start}
	if !run.Successful {
		run.Message = sql.NullString{String: result.Error(), Valid: true}
	}
	if err := s.syncs.RecordSync(ctx, run); err != nil {
		log.Error("failed to record sync", sl.Err(err))
		result = multierror.Append(result, err)
	}

	if err := result.ErrorOrNil(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *ScraperService) repositories(ctx context.Context) ([]string, error) {
	var (
		repos  []string
		seen   = make(map[string]struct{})
		result *multierror.Error
	)

	add := func(repo string) {
		if _, ok := seen[repo]; ok {
			return
		}
		seen[repo] = struct{}{}
		repos = append(repos, repo)
	}

	for _, org := range s.cfg.Orgs {
		listed, err := s.source.ListRepositories(ctx, org)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("org %s: %w", org, err))
			continue
		}
		for _, repo := range listed {
			add(repo)
		}
	}
	for _, repo := range s.cfg.Repos {
		add(repo)
	}

	return repos, result.ErrorOrNil()
}

func (s *ScraperService) ingest(ctx context.Context, repo string, since time.Time) error {
	log := s.log.With(slog.String("repository", repo))

	issues, err := s.source.IssuesSince(ctx, repo, since)
	if err != nil {
		return err
	}

	// commenting bumps an issue's updated_at, so every new comment's issue is listed
	byNumber := make(map[int]IssueEvent, len(issues))
	for _, ev := range issues {
		if err := s.events.HandleIssueEvent(ctx, ev); err != nil {
			return fmt.Errorf("issue %d: %w", ev.Issue.Number, err)
		}
		byNumber[ev.Issue.Number] = ev
	}

	comments, err := s.source.CommentsSince(ctx, repo, since)
	if err != nil {
		return err
	}

	for _, c := range comments {
		issue, ok := byNumber[c.IssueNumber]
		if !ok {
			log.Warn("skipping comment on unlisted issue", slog.Int64("comment_id", c.Comment.ID), slog.Int("number", c.IssueNumber))
			continue
		}

		err := s.events.HandleCommentEvent(ctx, CommentEvent{
			Action:      ActionCreated,
			Issue:       issue.Issue,
			IssueAuthor: issue.Author,
			Comment:     c.Comment,
			Author:      c.Author,
		})
		switch {
		case err == nil:
		case IsCommandRejection(err):
			log.Info("bot command rejected", slog.Int64("comment_id", c.Comment.ID), sl.Err(err))
		default:
			return fmt.Errorf("comment %d: %w", c.Comment.ID, err)
		}
	}

	return nil
}

// IsCommandRejection reports errors caused by the command itself rather
// than by storage or GitHub.
func IsCommandRejection(err error) bool {
	for _, target := range []error{
		apperrors.ErrNotTeamMember,
		apperrors.ErrNoTeams,
		apperrors.ErrTeamNotFound,
		apperrors.ErrPollNotFound,
		apperrors.ErrPollExists,
		apperrors.ErrCommentsDisabled,
		apperrors.ErrIssueClosed,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
