package service

import (
	"context"
	"fmt"
	"github.com/hashicorp/go-multierror"
	"log/slog"
	"pollbot/internal/apperrors"
	"pollbot/internal/domain/models"
	"pollbot/internal/lib/logger/sl"
	"pollbot/internal/lib/teamsfile"
)

type TeamService struct {
	log      *slog.Logger
	teamRepo TeamProvider
}

type TeamProvider interface {
	UpsertTeam(ctx context.Context, team models.Team) (models.Team, error)
	GetTeamByPing(ctx context.Context, ping string) (models.Team, error)
	ListTeams(ctx context.Context) ([]models.Team, error)
	ListMembers(ctx context.Context, teamID int) ([]models.User, error)
	AddMembershipByLogin(ctx context.Context, login, ping string) (bool, error)
	RemoveMembershipByLogin(ctx context.Context, login, ping string) (bool, error)
}

func NewTeamService(
	log *slog.Logger,
	teamRepo TeamProvider) *TeamService {
	return &TeamService{
		log:      log,
		teamRepo: teamRepo,
	}
}

// SyncTeams upserts every roster team and reconciles its memberships.
// Failures for single logins are collected and do not stop the sync.
func (s *TeamService) SyncTeams(ctx context.Context, roster []teamsfile.Team) error {
	const op = "service.team.SyncTeams"

	log := s.log.With(slog.String("op", op))

	var result *multierror.Error
	for _, def := range roster {
		if err := s.syncTeam(ctx, log, def); err != nil {
			result = multierror.Append(result, err)
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		log.Warn("team sync finished with errors", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("team sync finished", slog.Int("teams", len(roster)))

	return nil
}

func (s *TeamService) syncTeam(ctx context.Context, log *slog.Logger, def teamsfile.Team) error {
	log = log.With(slog.String("ping", def.Ping))

	team, err := s.teamRepo.UpsertTeam(ctx, models.Team{Name: def.Name, Ping: def.Ping, Label: def.Label})
	if err != nil {
		return fmt.Errorf("team %s: %w", def.Ping, err)
	}

	current, err := s.teamRepo.ListMembers(ctx, team.ID)
	if err != nil {
		return fmt.Errorf("team %s: %w", def.Ping, err)
	}

	desired := make(map[string]struct{}, len(def.Members))
	for _, login := range def.Members {
		desired[login] = struct{}{}
	}

	var result *multierror.Error

	for _, login := range def.Members {
		added, err := s.teamRepo.AddMembershipByLogin(ctx, login, team.Ping)
		if err != nil {
			result = multierror.Append(result, fmt.Errorf("team %s: add %s: %w", def.Ping, login, err))
			continue
		}
		if added {
			log.Info("member added", slog.String("login", login))
		}
	}

	for _, member := range current {
		if _, ok := desired[member.Login]; ok {
			continue
		}
		if _, err := s.teamRepo.RemoveMembershipByLogin(ctx, member.Login, team.Ping); err != nil {
			result = multierror.Append(result, fmt.Errorf("team %s: remove %s: %w", def.Ping, member.Login, err))
			continue
		}
		log.Info("stale member removed", slog.String("login", member.Login))
	}

	return result.ErrorOrNil()
}

func (s *TeamService) AddMember(ctx context.Context, ping, login string) (bool, error) {
	const op = "service.team.AddMember"

	log := s.log.With(
		slog.String("op", op),
		slog.String("ping", ping),
		slog.String("login", login),
	)

	if ping == "" {
		return false, fmt.Errorf("%s: %w", op, apperrors.ErrTeamPingRequired)
	}
	if login == "" {
		return false, fmt.Errorf("%s: %w", op, apperrors.ErrLoginRequired)
	}

	added, err := s.teamRepo.AddMembershipByLogin(ctx, login, ping)
	if err != nil {
		log.Error("failed to add member", sl.Err(err))
		return false, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("membership ensured", slog.Bool("added", added))

	return added, nil
}

func (s *TeamService) RemoveMember(ctx context.Context, ping, login string) (bool, error) {
	const op = "service.team.RemoveMember"

	log := s.log.With(
		slog.String("op", op),
		slog.String("ping", ping),
		slog.String("login", login),
	)

	if ping == "" {
		return false, fmt.Errorf("%s: %w", op, apperrors.ErrTeamPingRequired)
	}
	if login == "" {
		return false, fmt.Errorf("%s: %w", op, apperrors.ErrLoginRequired)
	}

	if _, err := s.teamRepo.GetTeamByPing(ctx, ping); err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	removed, err := s.teamRepo.RemoveMembershipByLogin(ctx, login, ping)
	if err != nil {
		log.Error("failed to remove member", sl.Err(err))
		return false, fmt.Errorf("%s: %w", op, err)
	}

	log.Info("membership removed", slog.Bool("removed", removed))

	return removed, nil
}

func (s *TeamService) GetTeam(ctx context.Context, ping string) (models.TeamWithMembers, error) {
	const op = "service.team.GetTeam"

	if ping == "" {
		return models.TeamWithMembers{}, fmt.Errorf("%s: %w", op, apperrors.ErrTeamPingRequired)
	}

	team, err := s.teamRepo.GetTeamByPing(ctx, ping)
	if err != nil {
		return models.TeamWithMembers{}, fmt.Errorf("%s: %w", op, err)
	}

	members, err := s.teamRepo.ListMembers(ctx, team.ID)
	if err != nil {
		return models.TeamWithMembers{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.TeamWithMembers{Team: team, Members: members}, nil
}

func (s *TeamService) ListTeams(ctx context.Context) ([]models.Team, error) {
	const op = "service.team.ListTeams"

	teams, err := s.teamRepo.ListTeams(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return teams, nil
}
