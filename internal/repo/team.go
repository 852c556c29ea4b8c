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

type TeamRepo struct {
	storage *sqlx.DB
}

func NewTeamRepo(storage *sqlx.DB) *TeamRepo {
	return &TeamRepo{storage: storage}
}

func (r *TeamRepo) UpsertTeam(ctx context.Context, team models.Team) (models.Team, error) {
	const op = "repo.team.UpsertTeam"

	query := `
		INSERT INTO teams (name, ping, label)
		VALUES ($1, $2, $3)
		ON CONFLICT (ping)
		DO UPDATE SET
			name = EXCLUDED.name,
			label = EXCLUDED.label
		RETURNING id, name, ping, label
	`

	var saved models.Team
	err := r.storage.QueryRowxContext(ctx, query, team.Name, team.Ping, team.Label).StructScan(&saved)
	if err != nil {
		return models.Team{}, fmt.Errorf("%s: %w", op, translatePgError(err, nil))
	}

	return saved, nil
}

func (r *TeamRepo) GetTeamByPing(ctx context.Context, ping string) (models.Team, error) {
	const op = "repo.team.GetTeamByPing"

	var team models.Team
	err := r.storage.GetContext(ctx, &team, `SELECT id, name, ping, label FROM teams WHERE ping = $1`, ping)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Team{}, fmt.Errorf("%s: %w", op, apperrors.ErrTeamNotFound)
		}
		return models.Team{}, fmt.Errorf("%s: %w", op, err)
	}

	return team, nil
}

func (r *TeamRepo) ListTeams(ctx context.Context) ([]models.Team, error) {
	const op = "repo.team.ListTeams"

	teams := []models.Team{}
	if err := r.storage.SelectContext(ctx, &teams, `SELECT id, name, ping, label FROM teams ORDER BY name`); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return teams, nil
}

// TeamsByLabels returns the teams whose label is among labels.
func (r *TeamRepo) TeamsByLabels(ctx context.Context, labels []string) ([]models.Team, error) {
	const op = "repo.team.TeamsByLabels"

	teams := []models.Team{}
	query := `SELECT id, name, ping, label FROM teams WHERE label = ANY($1) ORDER BY name`
	if err := r.storage.SelectContext(ctx, &teams, query, labels); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return teams, nil
}

func (r *TeamRepo) TeamsByPings(ctx context.Context, pings []string) ([]models.Team, error) {
	const op = "repo.team.TeamsByPings"

	teams := []models.Team{}
	query := `SELECT id, name, ping, label FROM teams WHERE ping = ANY($1) ORDER BY name`
	if err := r.storage.SelectContext(ctx, &teams, query, pings); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return teams, nil
}

// AddMembership inserts a raw id pair. Unknown ids surface as
// ErrForeignKeyViolation and duplicates as ErrMembershipExists.
func (r *TeamRepo) AddMembership(ctx context.Context, memberID int64, teamID int) error {
	const op = "repo.team.AddMembership"

	query := `INSERT INTO memberships (fk_member, fk_team) VALUES ($1, $2)`

	if _, err := r.storage.ExecContext(ctx, query, memberID, teamID); err != nil {
		return fmt.Errorf("%s: %w", op, translatePgError(err, apperrors.ErrMembershipExists))
	}

	return nil
}

// AddMembershipByLogin resolves login and ping to ids and adds the pair.
// It reports whether a row was inserted.
func (r *TeamRepo) AddMembershipByLogin(ctx context.Context, login, ping string) (bool, error) {
	const op = "repo.team.AddMembershipByLogin"

	tx, err := r.storage.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	var userID int64
	if err := tx.GetContext(ctx, &userID, `SELECT id FROM githubuser WHERE login = $1`, login); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("%s: %s: %w", op, login, apperrors.ErrUserNotFound)
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	var teamID int
	if err := tx.GetContext(ctx, &teamID, `SELECT id FROM teams WHERE ping = $1`, ping); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, fmt.Errorf("%s: %s: %w", op, ping, apperrors.ErrTeamNotFound)
		}
		return false, fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO memberships (fk_member, fk_team) VALUES ($1, $2) ON CONFLICT (fk_member, fk_team) DO NOTHING`

	result, err := tx.ExecContext(ctx, query, userID, teamID)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, translatePgError(err, nil))
	}

	inserted, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return inserted > 0, nil
}

// RemoveMembershipByLogin deletes the pair if present and reports whether a
// row was removed.
func (r *TeamRepo) RemoveMembershipByLogin(ctx context.Context, login, ping string) (bool, error) {
	const op = "repo.team.RemoveMembershipByLogin"

	query := `
		DELETE FROM memberships m
		USING githubuser u, teams t
		WHERE m.fk_member = u.id
			AND m.fk_team = t.id
			AND u.login = $1
			AND t.ping = $2
	`

	result, err := r.storage.ExecContext(ctx, query, login, ping)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	removed, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return removed > 0, nil
}

func (r *TeamRepo) ListMembers(ctx context.Context, teamID int) ([]models.User, error) {
	const op = "repo.team.ListMembers"

	query := `
		SELECT u.id, u.login, u.name, u.email
		FROM githubuser u
		JOIN memberships m ON m.fk_member = u.id
		WHERE m.fk_team = $1
		ORDER BY u.login
	`

	members := []models.User{}
	if err := r.storage.SelectContext(ctx, &members, query, teamID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return members, nil
}

// MembersOfTeams returns every distinct member of the given teams.
func (r *TeamRepo) MembersOfTeams(ctx context.Context, teamIDs []int) ([]models.User, error) {
	const op = "repo.team.MembersOfTeams"

	query := `
		SELECT DISTINCT u.id, u.login, u.name, u.email
		FROM githubuser u
		JOIN memberships m ON m.fk_member = u.id
		WHERE m.fk_team = ANY($1)
		ORDER BY u.login
	`

	members := []models.User{}
	if err := r.storage.SelectContext(ctx, &members, query, teamIDs); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return members, nil
}

func (r *TeamRepo) IsMember(ctx context.Context, userID int64, teamIDs []int) (bool, error) {
	const op = "repo.team.IsMember"

	query := `SELECT EXISTS (SELECT 1 FROM memberships WHERE fk_member = $1 AND fk_team = ANY($2))`

	var member bool
	if err := r.storage.GetContext(ctx, &member, query, userID, teamIDs); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return member, nil
}
