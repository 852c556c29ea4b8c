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

type UserRepo struct {
	storage *sqlx.DB
}

func NewUserRepo(storage *sqlx.DB) *UserRepo {
	return &UserRepo{storage: storage}
}

func (r *UserRepo) UpsertUser(ctx context.Context, user models.User) error {
	const op = "repo.user.UpsertUser"

	query := `
		INSERT INTO githubuser (id, login, name, email)
		VALUES (:id, :login, :name, :email)
		ON CONFLICT (id)
		DO UPDATE SET
			login = EXCLUDED.login,
			name = COALESCE(EXCLUDED.name, githubuser.name),
			email = COALESCE(EXCLUDED.email, githubuser.email)
	`

	if _, err := r.storage.NamedExecContext(ctx, query, user); err != nil {
		return fmt.Errorf("%s: %w", op, translatePgError(err, nil))
	}

	return nil
}

func (r *UserRepo) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	const op = "repo.user.GetUserByID"

	var user models.User
	err := r.storage.GetContext(ctx, &user, `SELECT id, login, name, email FROM githubuser WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, apperrors.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}

func (r *UserRepo) GetUserByLogin(ctx context.Context, login string) (models.User, error) {
	const op = "repo.user.GetUserByLogin"

	var user models.User
	err := r.storage.GetContext(ctx, &user, `SELECT id, login, name, email FROM githubuser WHERE login = $1`, login)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("%s: %w", op, apperrors.ErrUserNotFound)
		}
		return models.User{}, fmt.Errorf("%s: %w", op, err)
	}

	return user, nil
}
