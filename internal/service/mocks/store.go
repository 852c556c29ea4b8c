// Package mocks holds testify mocks for the service dependencies.
package mocks

import (
	"context"
	"pollbot/internal/domain/models"

	"github.com/stretchr/testify/mock"
)

type PollStore struct {
	mock.Mock
}

func (m *PollStore) CreatePollWithRequests(ctx context.Context, poll models.Poll, respondentIDs []int64) (models.Poll, error) {
	args := m.Called(ctx, poll, respondentIDs)
	return args.Get(0).(models.Poll), args.Error(1)
}

func (m *PollStore) GetPollByIssue(ctx context.Context, issueID int64) (models.Poll, error) {
	args := m.Called(ctx, issueID)
	return args.Get(0).(models.Poll), args.Error(1)
}

func (m *PollStore) ListOpenPolls(ctx context.Context) ([]models.Poll, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Poll), args.Error(1)
}

func (m *PollStore) ListPolls(ctx context.Context, closed *bool) ([]models.Poll, error) {
	args := m.Called(ctx, closed)
	return args.Get(0).([]models.Poll), args.Error(1)
}

func (m *PollStore) ListResponseRequests(ctx context.Context, pollID int) ([]models.Respondent, error) {
	args := m.Called(ctx, pollID)
	return args.Get(0).([]models.Respondent), args.Error(1)
}

func (m *PollStore) MarkResponded(ctx context.Context, pollID int, userID int64) error {
	return m.Called(ctx, pollID, userID).Error(0)
}

func (m *PollStore) MarkRespondedByLogins(ctx context.Context, pollID int, logins []string) (int, error) {
	args := m.Called(ctx, pollID, logins)
	return args.Int(0), args.Error(1)
}

func (m *PollStore) ClosePoll(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PollStore) SetTrackingComment(ctx context.Context, id int, commentID int64) error {
	return m.Called(ctx, id, commentID).Error(0)
}

func (m *PollStore) DeletePoll(ctx context.Context, id int) error {
	return m.Called(ctx, id).Error(0)
}

func (m *PollStore) PollsForRespondent(ctx context.Context, login string) ([]models.PendingPoll, error) {
	args := m.Called(ctx, login)
	return args.Get(0).([]models.PendingPoll), args.Error(1)
}

type IssueStore struct {
	mock.Mock
}

func (m *IssueStore) UpsertIssue(ctx context.Context, issue models.Issue) error {
	return m.Called(ctx, issue).Error(0)
}

func (m *IssueStore) GetIssue(ctx context.Context, id int64) (models.Issue, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.Issue), args.Error(1)
}

func (m *IssueStore) GetIssueByNumber(ctx context.Context, repository string, number int) (models.Issue, error) {
	args := m.Called(ctx, repository, number)
	return args.Get(0).(models.Issue), args.Error(1)
}

type UserStore struct {
	mock.Mock
}

func (m *UserStore) UpsertUser(ctx context.Context, user models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *UserStore) GetUserByID(ctx context.Context, id int64) (models.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.User), args.Error(1)
}

func (m *UserStore) GetUserByLogin(ctx context.Context, login string) (models.User, error) {
	args := m.Called(ctx, login)
	return args.Get(0).(models.User), args.Error(1)
}

type CommentStore struct {
	mock.Mock
}

func (m *CommentStore) UpsertComment(ctx context.Context, comment models.IssueComment) error {
	return m.Called(ctx, comment).Error(0)
}

func (m *CommentStore) GetComment(ctx context.Context, id int64) (models.IssueComment, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(models.IssueComment), args.Error(1)
}

type TeamStore struct {
	mock.Mock
}

func (m *TeamStore) UpsertTeam(ctx context.Context, team models.Team) (models.Team, error) {
	args := m.Called(ctx, team)
	return args.Get(0).(models.Team), args.Error(1)
}

func (m *TeamStore) GetTeamByPing(ctx context.Context, ping string) (models.Team, error) {
	args := m.Called(ctx, ping)
	return args.Get(0).(models.Team), args.Error(1)
}

func (m *TeamStore) ListTeams(ctx context.Context) ([]models.Team, error) {
	args := m.Called(ctx)
	return args.Get(0).([]models.Team), args.Error(1)
}

func (m *TeamStore) TeamsByLabels(ctx context.Context, labels []string) ([]models.Team, error) {
	args := m.Called(ctx, labels)
	return args.Get(0).([]models.Team), args.Error(1)
}

func (m *TeamStore) TeamsByPings(ctx context.Context, pings []string) ([]models.Team, error) {
	args := m.Called(ctx, pings)
	return args.Get(0).([]models.Team), args.Error(1)
}

func (m *TeamStore) ListMembers(ctx context.Context, teamID int) ([]models.User, error) {
	args := m.Called(ctx, teamID)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *TeamStore) MembersOfTeams(ctx context.Context, teamIDs []int) ([]models.User, error) {
	args := m.Called(ctx, teamIDs)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *TeamStore) IsMember(ctx context.Context, userID int64, teamIDs []int) (bool, error) {
	args := m.Called(ctx, userID, teamIDs)
	return args.Bool(0), args.Error(1)
}

func (m *TeamStore) AddMembershipByLogin(ctx context.Context, login, ping string) (bool, error) {
	args := m.Called(ctx, login, ping)
	return args.Bool(0), args.Error(1)
}

func (m *TeamStore) RemoveMembershipByLogin(ctx context.Context, login, ping string) (bool, error) {
	args := m.Called(ctx, login, ping)
	return args.Bool(0), args.Error(1)
}
