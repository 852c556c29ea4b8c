package github

import (
	"context"
	"fmt"
	gh "github.com/google/go-github/v66/github"
	"log/slog"
	"path"
	"pollbot/internal/lib/logger/sl"
	"pollbot/internal/service"
	"strconv"
	"time"
)

const pageSize = 100

func (c *Client) ListRepositories(ctx context.Context, org string) ([]string, error) {
	const op = "github.ListRepositories"

	opts := &gh.RepositoryListByOrgOptions{ListOptions: gh.ListOptions{PerPage: pageSize}}

	var repos []string
	for {
		page, resp, err := c.gh.Repositories.ListByOrg(ctx, org, opts)
		if err != nil {
			c.log.Error("failed to list repositories", slog.String("op", op), slog.String("org", org), sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		for _, r := range page {
			repos = append(repos, r.GetFullName())
		}
		if resp.NextPage == 0 {
			return repos, nil
		}
		opts.Page = resp.NextPage
	}
}

// IssuesSince lists issues and pull requests updated at or after since,
// oldest first.
func (c *Client) IssuesSince(ctx context.Context, repository string, since time.Time) ([]service.IssueEvent, error) {
	const op = "github.IssuesSince"

	owner, repo, err := splitRepository(repository)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	opts := &gh.IssueListByRepoOptions{
		State:       "all",
		Sort:        "updated",
		Direction:   "asc",
		Since:       since,
		ListOptions: gh.ListOptions{PerPage: pageSize},
	}

	var events []service.IssueEvent
	for {
		page, resp, err := c.gh.Issues.ListByRepo(ctx, owner, repo, opts)
		if err != nil {
			c.log.Error("failed to list issues", slog.String("op", op), slog.String("repository", repository), sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		for _, i := range page {
			events = append(events, service.IssueEvent{
				Action: service.ActionSynced,
				Issue:  IssueFrom(repository, i),
				Author: UserFrom(i.GetUser()),
			})
		}
		if resp.NextPage == 0 {
			return events, nil
		}
		opts.Page = resp.NextPage
	}
}

// CommentsSince lists issue comments across the repository updated at or
// after since, oldest first.
func (c *Client) CommentsSince(ctx context.Context, repository string, since time.Time) ([]service.RemoteComment, error) {
	const op = "github.CommentsSince"

	owner, repo, err := splitRepository(repository)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	opts := &gh.IssueListCommentsOptions{
		Sort:        gh.String("created"),
		Direction:   gh.String("asc"),
		Since:       &since,
		ListOptions: gh.ListOptions{PerPage: pageSize},
	}

	var comments []service.RemoteComment
	for {
		// number 0 lists comments for every issue in the repository
		page, resp, err := c.gh.Issues.ListComments(ctx, owner, repo, 0, opts)
		if err != nil {
			c.log.Error("failed to list comments", slog.String("op", op), slog.String("repository", repository), sl.Err(err))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		for _, ic := range page {
			number, err := strconv.Atoi(path.Base(ic.GetIssueURL()))
			if err != nil {
				c.log.Warn("comment without issue number", slog.Int64("comment_id", ic.GetID()), slog.String("issue_url", ic.GetIssueURL()))
				continue
			}
			comments = append(comments, service.RemoteComment{
				IssueNumber: number,
				Comment:     CommentFrom(ic),
				Author:      UserFrom(ic.GetUser()),
			})
		}
		if resp.NextPage == 0 {
			return comments, nil
		}
		opts.Page = resp.NextPage
	}
}
