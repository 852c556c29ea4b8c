package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"github.com/jmoiron/sqlx"
	"pollbot/internal/apperrors"
	"pollbot/internal/domain/models"
)

const issueColumns = `id, number, fk_user, open, is_pull_request, title, body, locked, labels,
	repository, created_at, updated_at, closed_at`

type IssueRepo struct {
	storage *sqlx.DB
}

func NewIssueRepo(storage *sqlx.DB) *IssueRepo {
	return &IssueRepo{storage: storage}
}

func (r *IssueRepo) UpsertIssue(ctx context.Context, issue models.Issue) error {
	const op = "repo.issue.UpsertIssue"

	query := `
		INSERT INTO issue (` + issueColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id)
		DO UPDATE SET
			number = EXCLUDED.number,
			open = EXCLUDED.open,
			is_pull_request = EXCLUDED.is_pull_request,
			title = EXCLUDED.title,
			body = EXCLUDED.body,
			locked = EXCLUDED.locked,
			labels = EXCLUDED.labels,
			repository = EXCLUDED.repository,
			updated_at = EXCLUDED.updated_at,
			closed_at = EXCLUDED.closed_at
	`

	labels := []string(issue.Labels)
	if labels == nil {
		labels = []string{}
	}

	_, err := r.storage.ExecContext(ctx, query,
		issue.ID, issue.Number, issue.UserID, issue.Open, issue.IsPullRequest, issue.Title, issue.Body,
		issue.Locked, labels, issue.Repository, issue.CreatedAt, issue.UpdatedAt, issue.ClosedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translatePgError(err, nil))
	}

	return nil
}

func (r *IssueRepo) GetIssue(ctx context.Context, id int64) (models.Issue, error) {
	const op = "repo.issue.GetIssue"

	var issue models.Issue
	err := r.storage.GetContext(ctx, &issue, `SELECT `+issueColumns+` FROM issue WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Issue{}, fmt.Errorf("%s: %w", op, apperrors.ErrIssueNotFound)
		}
		return models.Issue{}, fmt.Errorf("%s: %w", op, err)
	}

	return issue, nil
}

func (r *IssueRepo) GetIssueByNumber(ctx context.Context, repository string, number int) (models.Issue, error) {
	const op = "repo.issue.GetIssueByNumber"

	query := `SELECT ` + issueColumns + ` FROM issue WHERE repository = $1 AND number = $2`

	var issue models.Issue
	if err := r.storage.GetContext(ctx, &issue, query, repository, number); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Issue{}, fmt.Errorf("%s: %w", op, apperrors.ErrIssueNotFound)
		}
		return models.Issue{}, fmt.Errorf("%s: %w", op, err)
	}

	return issue, nil
}

func (r *IssueRepo) SetIssueOpen(ctx context.Context, id int64, open bool) error {
	const op = "repo.issue.SetIssueOpen"

	query := `
		UPDATE issue
		SET open = $2,
			closed_at = CASE WHEN $2 THEN NULL ELSE COALESCE(closed_at, NOW()) END
		WHERE id = $1
	`

	result, err := r.storage.ExecContext(ctx, query, id, open)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, apperrors.ErrIssueNotFound)
	}

	return nil
}
