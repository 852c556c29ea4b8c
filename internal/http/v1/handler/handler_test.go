package handler

import (
	"context"
	"io"
	"log/slog"

	"github.com/stretchr/testify/mock"

	"pollbot/internal/domain/models"
	"pollbot/internal/service"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type pollServiceMock struct {
	mock.Mock
}

func (m *pollServiceMock) GetPollStatus(ctx context.Context, repository string, number int) (models.PollStatus, error) {
	args := m.Called(ctx, repository, number)
	return args.Get(0).(models.PollStatus), args.Error(1)
}

func (m *pollServiceMock) ListPolls(ctx context.Context, closed *bool) ([]models.Poll, error) {
	args := m.Called(ctx, closed)
	return args.Get(0).([]models.Poll), args.Error(1)
}

func (m *pollServiceMock) PendingForUser(ctx context.Context, login string) ([]models.PendingPoll, error) {
	args := m.Called(ctx, login)
	return args.Get(0).([]models.PendingPoll), args.Error(1)
}

func (m *pollServiceMock) DeletePoll(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

type teamServiceMock struct {
	mock.Mock
}

func (m *teamServiceMock) ListTeams(ctx context.Context) ([]models.Team, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Team), args.Error(1)
}

func (m *teamServiceMock) GetTeam(ctx context.Context, ping string) (models.TeamWithMembers, error) {
	args := m.Called(ctx, ping)
	return args.Get(0).(models.TeamWithMembers), args.Error(1)
}

func (m *teamServiceMock) AddMember(ctx context.Context, ping, login string) (bool, error) {
	args := m.Called(ctx, ping, login)
	return args.Bool(0), args.Error(1)
}

func (m *teamServiceMock) RemoveMember(ctx context.Context, ping, login string) (bool, error) {
	args := m.Called(ctx, ping, login)
	return args.Bool(0), args.Error(1)
}

type eventServiceMock struct {
	mock.Mock
}

func (m *eventServiceMock) HandleIssueEvent(ctx context.Context, ev service.IssueEvent) error {
	return m.Called(ctx, ev).Error(0)
}

func (m *eventServiceMock) HandleCommentEvent(ctx context.Context, ev service.CommentEvent) error {
	return m.Called(ctx, ev).Error(0)
}

type pingerMock struct {
	err error
}

func (p pingerMock) PingContext(context.Context) error {
	return p.err
}
