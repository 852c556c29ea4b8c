package github

import (
	"database/sql"
	"fmt"
	gh "github.com/google/go-github/v66/github"
	"pollbot/internal/apperrors"
	"pollbot/internal/domain/models"
	"pollbot/internal/service"
)

func UserFrom(u *gh.User) models.User {
	user := models.User{ID: u.GetID(), Login: u.GetLogin()}
	if name := u.GetName(); name != "" {
		user.Name = sql.NullString{String: name, Valid: true}
	}
	if email := u.GetEmail(); email != "" {
		user.Email = sql.NullString{String: email, Valid: true}
	}
	return user
}

func IssueFrom(repository string, i *gh.Issue) models.Issue {
	if i == nil {
		return models.Issue{Repository: repository, Labels: models.Labels{}}
	}

	issue := models.Issue{
		ID:            i.GetID(),
		Number:        i.GetNumber(),
		UserID:        i.GetUser().GetID(),
		Open:          i.GetState() == "open",
		IsPullRequest: i.IsPullRequest(),
		Title:         i.GetTitle(),
		Body:          i.GetBody(),
		Locked:        i.GetLocked(),
		Labels:        models.Labels{},
		Repository:    repository,
		CreatedAt:     i.GetCreatedAt().Time,
		UpdatedAt:     i.GetUpdatedAt().Time,
	}

	for _, l := range i.Labels {
		issue.Labels = append(issue.Labels, l.GetName())
	}

	if closed := i.GetClosedAt(); !closed.IsZero() {
		issue.ClosedAt = sql.NullTime{Time: closed.Time, Valid: true}
	}

	return issue
}

func CommentFrom(c *gh.IssueComment) models.IssueComment {
	return models.IssueComment{
		ID:        c.GetID(),
		UserID:    c.GetUser().GetID(),
		Body:      c.GetBody(),
		CreatedAt: c.GetCreatedAt().Time,
		UpdatedAt: c.GetUpdatedAt().Time,
	}
}

// ParseEvent decodes a webhook payload into a service.IssueEvent or
// service.CommentEvent.
func ParseEvent(eventType string, payload []byte) (any, error) {
	event, err := gh.ParseWebHook(eventType, payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnsupportedEvent, err)
	}

	switch ev := event.(type) {
	case *gh.IssueCommentEvent:
		if ev.Issue == nil || ev.Comment == nil {
			return nil, fmt.Errorf("%w: issue_comment without issue or comment", apperrors.ErrUnsupportedEvent)
		}
		repository := ev.GetRepo().GetFullName()
		return service.CommentEvent{
			Action:      ev.GetAction(),
			Issue:       IssueFrom(repository, ev.GetIssue()),
			IssueAuthor: UserFrom(ev.GetIssue().GetUser()),
			Comment:     CommentFrom(ev.GetComment()),
			Author:      UserFrom(ev.GetComment().GetUser()),
		}, nil
	case *gh.IssuesEvent:
		if ev.Issue == nil {
			return nil, fmt.Errorf("%w: issues event without issue", apperrors.ErrUnsupportedEvent)
		}
		return service.IssueEvent{
			Action: ev.GetAction(),
			Issue:  IssueFrom(ev.GetRepo().GetFullName(), ev.GetIssue()),
			Author: UserFrom(ev.GetIssue().GetUser()),
		}, nil
	}

	return nil, fmt.Errorf("%w: %s", apperrors.ErrUnsupportedEvent, eventType)
}
