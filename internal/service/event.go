package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"pollbot/internal/apperrors"
	"pollbot/internal/domain/models"
	"pollbot/internal/lib/logger/sl"
	"strings"
)

const (
	ActionCreated = "created"
	ActionEdited  = "edited"
	ActionDeleted = "deleted"
	ActionClosed  = "closed"
	// ActionSynced marks activity picked up by the scraper instead of a webhook.
	ActionSynced = "synced"
)

type IssueEvent struct {
	Action string
	Issue  models.Issue
	Author models.User
}

type CommentEvent struct {
	Action      string
	Issue       models.Issue
	IssueAuthor models.User
	Comment     models.IssueComment
	Author      models.User
}

type IssueStore interface {
	UpsertIssue(ctx context.Context, issue models.Issue) error
}

type PollHandler interface {
	HandleComment(ctx context.Context, comment models.IssueComment) error
	EvaluatePolls(ctx context.Context) error
}

// EventService records GitHub activity and forwards new comments to the
// poll workflow.
type EventService struct {
	log      *slog.Logger
	users    UserProvider
	issues   IssueStore
	comments CommentStore
	polls    PollHandler
	botLogin string
}

func NewEventService(
	log *slog.Logger,
	users UserProvider,
	issues IssueStore,
	comments CommentStore,
	polls PollHandler,
	botLogin string) *EventService {
	return &EventService{
		log:      log,
		users:    users,
		issues:   issues,
		comments: comments,
		polls:    polls,
		botLogin: botLogin,
	}
}

func (s *EventService) HandleIssueEvent(ctx context.Context, ev IssueEvent) error {
	const op = "service.event.HandleIssueEvent"

	log := s.log.With(
		slog.String("op", op),
		slog.String("action", ev.Action),
		slog.String("repository", ev.Issue.Repository),
		slog.Int("number", ev.Issue.Number),
	)

	if err := s.recordIssue(ctx, ev.Issue, ev.Author); err != nil {
		log.Error("failed to record issue", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if ev.Action == ActionClosed {
		if err := s.polls.EvaluatePolls(ctx); err != nil {
			log.Error("unable to evaluate open polls", sl.Err(err))
		}
	}

	return nil
}

func (s *EventService) HandleCommentEvent(ctx context.Context, ev CommentEvent) error {
	const op = "service.event.HandleCommentEvent"

	log := s.log.With(
		slog.String("op", op),
		slog.String("action", ev.Action),
		slog.Int64("comment_id", ev.Comment.ID),
		slog.String("author", ev.Author.Login),
	)

	if err := s.recordIssue(ctx, ev.Issue, ev.IssueAuthor); err != nil {
		log.Error("failed to record issue", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.users.UpsertUser(ctx, ev.Author); err != nil {
		log.Error("failed to record comment author", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	comment := ev.Comment
	comment.IssueID = ev.Issue.ID
	comment.UserID = ev.Author.ID
	comment.Repository = ev.Issue.Repository

	if ev.Action == ActionDeleted {
		log.Debug("ignoring deleted comment")
		return nil
	}

	isBot := strings.EqualFold(ev.Author.Login, s.botLogin)

	// redelivered webhooks and scraped comments must not run a command twice
	seen := false
	if ev.Action == ActionCreated && !isBot {
		_, err := s.comments.GetComment(ctx, comment.ID)
		switch {
		case err == nil:
			seen = true
		case !errors.Is(err, apperrors.ErrCommentNotFound):
			log.Error("failed to look up comment", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := s.comments.UpsertComment(ctx, comment); err != nil {
		log.Error("failed to record comment", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	// edits to the bot's own comments are checklist updates
	if isBot {
		if err := s.polls.EvaluatePolls(ctx); err != nil {
			log.Error("unable to evaluate open polls", sl.Err(err))
		}
		return nil
	}

	if ev.Action != ActionCreated {
		return nil
	}
	if seen {
		log.Debug("comment already processed")
		return nil
	}

	if err := s.polls.HandleComment(ctx, comment); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *EventService) recordIssue(ctx context.Context, issue models.Issue, author models.User) error {
	if err := s.users.UpsertUser(ctx, author); err != nil {
		return err
	}
	issue.UserID = author.ID
	return s.issues.UpsertIssue(ctx, issue)
}
