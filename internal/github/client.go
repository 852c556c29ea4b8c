// Package github adapts go-github to the bot's comment and webhook needs.
package github

import (
	"context"
	"errors"
	"fmt"
	gh "github.com/google/go-github/v66/github"
	"log/slog"
	"net/http"
	"pollbot/internal/apperrors"
	"pollbot/internal/config"
	"pollbot/internal/domain/models"
	"pollbot/internal/lib/logger/sl"
	"strings"
	"time"
)

type Client struct {
	log *slog.Logger
	gh  *gh.Client
}

func New(log *slog.Logger, cfg config.GitHubConfig) *Client {
	client := gh.NewClient(&http.Client{Timeout: 30 * time.Second})
	if cfg.AccessToken != "" {
		client = client.WithAuthToken(cfg.AccessToken)
	}
	if cfg.UserAgent != "" {
		client.UserAgent = cfg.UserAgent
	}

	return &Client{log: log, gh: client}
}

func (c *Client) NewComment(ctx context.Context, repository string, number int, body string) (models.IssueComment, models.User, error) {
	const op = "github.NewComment"

	owner, repo, err := splitRepository(repository)
	if err != nil {
		return models.IssueComment{}, models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	comment, _, err := c.gh.Issues.CreateComment(ctx, owner, repo, number, &gh.IssueComment{Body: gh.String(body)})
	if err != nil {
		c.log.Error("failed to create comment",
			slog.String("op", op),
			slog.String("repository", repository),
			slog.Int("number", number),
			sl.Err(err),
		)
		return models.IssueComment{}, models.User{}, fmt.Errorf("%s: %w", op, translateError(err))
	}

	return CommentFrom(comment), UserFrom(comment.GetUser()), nil
}

func (c *Client) EditComment(ctx context.Context, repository string, id int64, body string) (models.IssueComment, models.User, error) {
	const op = "github.EditComment"

	owner, repo, err := splitRepository(repository)
	if err != nil {
		return models.IssueComment{}, models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	comment, _, err := c.gh.Issues.EditComment(ctx, owner, repo, id, &gh.IssueComment{Body: gh.String(body)})
	if err != nil {
		c.log.Error("failed to edit comment",
			slog.String("op", op),
			slog.String("repository", repository),
			slog.Int64("comment_id", id),
			sl.Err(err),
		)
		return models.IssueComment{}, models.User{}, fmt.Errorf("%s: %w", op, translateError(err))
	}

	return CommentFrom(comment), UserFrom(comment.GetUser()), nil
}

func translateError(err error) error {
	var resp *gh.ErrorResponse
	if errors.As(err, &resp) && resp.Response != nil && resp.Response.StatusCode == http.StatusNotFound {
		return fmt.Errorf("%w: %w", apperrors.ErrCommentNotFound, err)
	}
	return err
}

func splitRepository(repository string) (string, string, error) {
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return "", "", fmt.Errorf("invalid repository %q", repository)
	}
	return owner, repo, nil
}
