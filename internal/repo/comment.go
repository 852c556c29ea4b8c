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

type CommentRepo struct {
	storage *sqlx.DB
}

func NewCommentRepo(storage *sqlx.DB) *CommentRepo {
	return &CommentRepo{storage: storage}
}

func (r *CommentRepo) UpsertComment(ctx context.Context, comment models.IssueComment) error {
	const op = "repo.comment.UpsertComment"

	query := `
		INSERT INTO issuecomment (id, fk_issue, fk_user, body, repository, created_at, updated_at)
		VALUES (:id, :fk_issue, :fk_user, :body, :repository, :created_at, :updated_at)
		ON CONFLICT (id)
		DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at
	`

	if _, err := r.storage.NamedExecContext(ctx, query, comment); err != nil {
		return fmt.Errorf("%s: %w", op, translatePgError(err, nil))
	}

	return nil
}

func (r *CommentRepo) GetComment(ctx context.Context, id int64) (models.IssueComment, error) {
	const op = "repo.comment.GetComment"

	query := `SELECT id, fk_issue, fk_user, body, repository, created_at, updated_at FROM issuecomment WHERE id = $1`

	var comment models.IssueComment
	if err := r.storage.GetContext(ctx, &comment, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.IssueComment{}, fmt.Errorf("%s: %w", op, apperrors.ErrCommentNotFound)
		}
		return models.IssueComment{}, fmt.Errorf("%s: %w", op, err)
	}

	return comment, nil
}
