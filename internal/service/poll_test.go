package service_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"pollbot/internal/apperrors"
	"pollbot/internal/domain/models"
	"pollbot/internal/service"
	"pollbot/internal/service/mocks"
)

var (
	ctx = context.Background()

	alice = models.User{ID: 1, Login: "alice"}
	bob   = models.User{ID: 2, Login: "bob"}
	bot   = models.User{ID: 99, Login: "rfcbot"}

	langTeam = models.Team{ID: 1, Name: "T-lang", Ping: "rust-lang/lang", Label: "T-lang"}

	openIssue = models.Issue{ID: 1, Number: 7, Repository: "rust-lang/rfcs", Open: true, Labels: models.Labels{"T-lang"}}

	openPoll = models.Poll{
		ID:                   10,
		IssueID:              openIssue.ID,
		InitiatorID:          alice.ID,
		InitiatingCommentID:  100,
		BotTrackingCommentID: 200,
		Question:             "ship it?",
		Teams:                models.TeamList{langTeam.Ping},
	}
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type pollDeps struct {
	polls     *mocks.PollStore
	issues    *mocks.IssueStore
	users     *mocks.UserStore
	comments  *mocks.CommentStore
	teams     *mocks.TeamStore
	commenter *mocks.Commenter
}

func newPollService(postComments bool) (*service.PollService, pollDeps) {
	d := pollDeps{
		polls:     new(mocks.PollStore),
		issues:    new(mocks.IssueStore),
		users:     new(mocks.UserStore),
		comments:  new(mocks.CommentStore),
		teams:     new(mocks.TeamStore),
		commenter: new(mocks.Commenter),
	}

	svc := service.NewPollService(discardLogger(), d.polls, d.issues, d.users, d.comments, d.teams, d.commenter,
		service.PollServiceConfig{Mention: "@rfcbot", PostComments: postComments})

	return svc, d
}

func (d pollDeps) assertExpectations(t *testing.T) {
	d.polls.AssertExpectations(t)
	d.issues.AssertExpectations(t)
	d.users.AssertExpectations(t)
	d.comments.AssertExpectations(t)
	d.teams.AssertExpectations(t)
	d.commenter.AssertExpectations(t)
}

// expectStored covers the user and comment upserts that follow every post.
func (d pollDeps) expectStored() {
	d.users.On("UpsertUser", mock.Anything, bot).Return(nil)
	d.comments.On("UpsertComment", mock.Anything, mock.AnythingOfType("models.IssueComment")).Return(nil)
}

func trackingBody(aliceDone, bobDone bool) string {
	return service.RenderPollComment(alice, openPoll.Question, []models.Team{langTeam}, []models.Respondent{
		{User: alice, Responded: aliceDone},
		{User: bob, Responded: bobDone},
	})
}

func TestHandleCommentStartsPoll(t *testing.T) {
	svc, d := newPollService(true)
	comment := models.IssueComment{ID: 100, IssueID: openIssue.ID, UserID: alice.ID, Body: "@rfcbot poll ship it?"}
	body := trackingBody(true, false)

	d.issues.On("GetIssue", mock.Anything, openIssue.ID).Return(openIssue, nil)
	d.users.On("GetUserByID", mock.Anything, alice.ID).Return(alice, nil)
	d.teams.On("TeamsByLabels", mock.Anything, []string{"T-lang"}).Return([]models.Team{langTeam}, nil)
	d.teams.On("IsMember", mock.Anything, alice.ID, []int{langTeam.ID}).Return(true, nil)
	d.polls.On("GetPollByIssue", mock.Anything, openIssue.ID).Return(models.Poll{}, apperrors.ErrPollNotFound)
	d.teams.On("MembersOfTeams", mock.Anything, []int{langTeam.ID}).Return([]models.User{alice, bob}, nil)
	d.commenter.On("NewComment", mock.Anything, openIssue.Repository, openIssue.Number, body).
		Return(models.IssueComment{ID: 200, Body: body}, bot, nil)
	d.expectStored()
	d.polls.On("CreatePollWithRequests", mock.Anything, mock.MatchedBy(func(p models.Poll) bool {
		return p.IssueID == openIssue.ID &&
			p.InitiatorID == alice.ID &&
			p.InitiatingCommentID == comment.ID &&
			p.BotTrackingCommentID == 200 &&
			p.Question == "ship it?" &&
			!p.Closed &&
			assert.ObjectsAreEqual(models.TeamList{langTeam.Ping}, p.Teams)
	}), []int64{alice.ID, bob.ID}).Return(openPoll, nil)
	d.polls.On("ListOpenPolls", mock.Anything).Return([]models.Poll{}, nil)

	require.NoError(t, svc.HandleComment(ctx, comment))
	d.assertExpectations(t)
}

func TestHandleCommentRetractsTrackingCommentWhenPollIsNotStored(t *testing.T) {
	svc, d := newPollService(true)
	comment := models.IssueComment{ID: 100, IssueID: openIssue.ID, UserID: alice.ID, Body: "@rfcbot poll ship it?"}
	body := trackingBody(true, false)
	retracted := service.RenderPollCancelled(alice)

	d.issues.On("GetIssue", mock.Anything, openIssue.ID).Return(openIssue, nil)
	d.users.On("GetUserByID", mock.Anything, alice.ID).Return(alice, nil)
	d.teams.On("TeamsByLabels", mock.Anything, []string{"T-lang"}).Return([]models.Team{langTeam}, nil)
	d.teams.On("IsMember", mock.Anything, alice.ID, []int{langTeam.ID}).Return(true, nil)
	d.polls.On("GetPollByIssue", mock.Anything, openIssue.ID).Return(models.Poll{}, apperrors.ErrPollNotFound)
	d.teams.On("MembersOfTeams", mock.Anything, []int{langTeam.ID}).Return([]models.User{alice, bob}, nil)
	d.commenter.On("NewComment", mock.Anything, openIssue.Repository, openIssue.Number, body).
		Return(models.IssueComment{ID: 200, Body: body}, bot, nil)
	d.expectStored()
	d.polls.On("CreatePollWithRequests", mock.Anything, mock.AnythingOfType("models.Poll"), []int64{alice.ID, bob.ID}).
		Return(models.Poll{}, apperrors.ErrPollExists)
	d.commenter.On("EditComment", mock.Anything, openIssue.Repository, int64(200), retracted).
		Return(models.IssueComment{ID: 200, Body: retracted}, bot, nil)

	err := svc.HandleComment(ctx, comment)
	assert.ErrorIs(t, err, apperrors.ErrPollExists)
	d.assertExpectations(t)
	d.polls.AssertNotCalled(t, "ListOpenPolls", mock.Anything)
}

func TestHandleCommentRendersTeamsByName(t *testing.T) {
	svc, d := newPollService(true)
	compilerTeam := models.Team{ID: 2, Name: "T-compiler", Ping: "rust-lang/compiler", Label: "T-compiler"}
	comment := models.IssueComment{ID: 100, IssueID: openIssue.ID, UserID: alice.ID, Body: "@rfcbot poll [T-lang, T-compiler] ship it?"}
	body := service.RenderPollComment(alice, "ship it?", []models.Team{compilerTeam, langTeam}, []models.Respondent{
		{User: alice, Responded: true},
		{User: bob},
	})

	d.issues.On("GetIssue", mock.Anything, openIssue.ID).Return(openIssue, nil)
	d.users.On("GetUserByID", mock.Anything, alice.ID).Return(alice, nil)
	d.teams.On("ListTeams", mock.Anything).Return([]models.Team{langTeam, compilerTeam}, nil)
	d.teams.On("IsMember", mock.Anything, alice.ID, []int{compilerTeam.ID, langTeam.ID}).Return(true, nil)
	d.polls.On("GetPollByIssue", mock.Anything, openIssue.ID).Return(models.Poll{}, apperrors.ErrPollNotFound)
	d.teams.On("MembersOfTeams", mock.Anything, []int{compilerTeam.ID, langTeam.ID}).Return([]models.User{alice, bob}, nil)
	d.commenter.On("NewComment", mock.Anything, openIssue.Repository, openIssue.Number, body).
		Return(models.IssueComment{ID: 200, Body: body}, bot, nil)
	d.expectStored()
	d.polls.On("CreatePollWithRequests", mock.Anything, mock.MatchedBy(func(p models.Poll) bool {
		return assert.ObjectsAreEqual(models.TeamList{compilerTeam.Ping, langTeam.Ping}, p.Teams)
	}), []int64{alice.ID, bob.ID}).Return(openPoll, nil)
	d.polls.On("ListOpenPolls", mock.Anything).Return([]models.Poll{}, nil)

	require.NoError(t, svc.HandleComment(ctx, comment))
	d.assertExpectations(t)
}

func TestHandleCommentRejectsOutsiders(t *testing.T) {
	svc, d := newPollService(true)
	comment := models.IssueComment{ID: 100, IssueID: openIssue.ID, UserID: bob.ID, Body: "@rfcbot poll [lang] ship it?"}
	lang := models.Team{ID: 1, Name: "lang", Ping: "rust-lang/lang", Label: "T-lang"}

	d.issues.On("GetIssue", mock.Anything, openIssue.ID).Return(openIssue, nil)
	d.users.On("GetUserByID", mock.Anything, bob.ID).Return(bob, nil)
	d.teams.On("ListTeams", mock.Anything).Return([]models.Team{lang}, nil)
	d.teams.On("IsMember", mock.Anything, bob.ID, []int{lang.ID}).Return(false, nil)

	err := svc.HandleComment(ctx, comment)
	assert.ErrorIs(t, err, apperrors.ErrNotTeamMember)
	d.polls.AssertNotCalled(t, "CreatePollWithRequests", mock.Anything, mock.Anything, mock.Anything)
	d.commenter.AssertNotCalled(t, "NewComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCommentUnknownTeam(t *testing.T) {
	svc, d := newPollService(true)
	comment := models.IssueComment{ID: 100, IssueID: openIssue.ID, UserID: alice.ID, Body: "@rfcbot poll [T-docs] ship it?"}

	d.issues.On("GetIssue", mock.Anything, openIssue.ID).Return(openIssue, nil)
	d.users.On("GetUserByID", mock.Anything, alice.ID).Return(alice, nil)
	d.teams.On("ListTeams", mock.Anything).Return([]models.Team{langTeam}, nil)

	assert.ErrorIs(t, svc.HandleComment(ctx, comment), apperrors.ErrTeamNotFound)
}

func TestHandleCommentExistingPollIsNoop(t *testing.T) {
	svc, d := newPollService(true)
	comment := models.IssueComment{ID: 101, IssueID: openIssue.ID, UserID: alice.ID, Body: "@rfcbot poll again?"}

	d.issues.On("GetIssue", mock.Anything, openIssue.ID).Return(openIssue, nil)
	d.users.On("GetUserByID", mock.Anything, alice.ID).Return(alice, nil)
	d.teams.On("TeamsByLabels", mock.Anything, []string{"T-lang"}).Return([]models.Team{langTeam}, nil)
	d.teams.On("IsMember", mock.Anything, alice.ID, []int{langTeam.ID}).Return(true, nil)
	d.polls.On("GetPollByIssue", mock.Anything, openIssue.ID).Return(openPoll, nil)
	d.polls.On("ListOpenPolls", mock.Anything).Return([]models.Poll{}, nil)

	require.NoError(t, svc.HandleComment(ctx, comment))
	d.polls.AssertNotCalled(t, "CreatePollWithRequests", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCommentWithCommentsDisabled(t *testing.T) {
	svc, d := newPollService(false)
	comment := models.IssueComment{ID: 100, IssueID: openIssue.ID, UserID: alice.ID, Body: "@rfcbot poll ship it?"}

	d.issues.On("GetIssue", mock.Anything, openIssue.ID).Return(openIssue, nil)
	d.users.On("GetUserByID", mock.Anything, alice.ID).Return(alice, nil)
	d.teams.On("TeamsByLabels", mock.Anything, []string{"T-lang"}).Return([]models.Team{langTeam}, nil)
	d.teams.On("IsMember", mock.Anything, alice.ID, []int{langTeam.ID}).Return(true, nil)
	d.polls.On("GetPollByIssue", mock.Anything, openIssue.ID).Return(models.Poll{}, apperrors.ErrPollNotFound)
	d.teams.On("MembersOfTeams", mock.Anything, []int{langTeam.ID}).Return([]models.User{alice, bob}, nil)

	err := svc.HandleComment(ctx, comment)
	assert.ErrorIs(t, err, apperrors.ErrCommentsDisabled)
	d.commenter.AssertNotCalled(t, "NewComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	d.polls.AssertNotCalled(t, "CreatePollWithRequests", mock.Anything, mock.Anything, mock.Anything)
}

func TestHandleCommentIgnoresPlainComments(t *testing.T) {
	svc, d := newPollService(true)
	comment := models.IssueComment{ID: 100, IssueID: openIssue.ID, UserID: bob.ID, Body: "sounds good"}

	d.issues.On("GetIssue", mock.Anything, openIssue.ID).Return(openIssue, nil)
	d.users.On("GetUserByID", mock.Anything, bob.ID).Return(bob, nil)
	d.polls.On("ListOpenPolls", mock.Anything).Return([]models.Poll{}, nil)

	require.NoError(t, svc.HandleComment(ctx, comment))
	d.assertExpectations(t)
}

func TestRespondClosesPollWhenEveryoneAnswered(t *testing.T) {
	svc, d := newPollService(true)
	comment := models.IssueComment{ID: 101, IssueID: openIssue.ID, UserID: bob.ID, Body: "@rfcbot: reviewed"}
	finalBody := trackingBody(true, true)
	completed := service.RenderPollCompleted(openIssue.CommentURL(200))

	d.issues.On("GetIssue", mock.Anything, openIssue.ID).Return(openIssue, nil)
	d.users.On("GetUserByID", mock.Anything, bob.ID).Return(bob, nil)
	d.users.On("GetUserByID", mock.Anything, alice.ID).Return(alice, nil)
	d.polls.On("GetPollByIssue", mock.Anything, openIssue.ID).Return(openPoll, nil)
	d.teams.On("TeamsByPings", mock.Anything, []string{langTeam.Ping}).Return([]models.Team{langTeam}, nil)
	d.teams.On("IsMember", mock.Anything, bob.ID, []int{langTeam.ID}).Return(true, nil)
	d.polls.On("MarkResponded", mock.Anything, openPoll.ID, bob.ID).Return(nil)

	d.polls.On("ListOpenPolls", mock.Anything).Return([]models.Poll{openPoll}, nil)
	d.comments.On("GetComment", mock.Anything, int64(200)).
		Return(models.IssueComment{ID: 200, Body: trackingBody(true, false)}, nil)
	d.polls.On("MarkRespondedByLogins", mock.Anything, openPoll.ID, []string{"alice"}).Return(0, nil)
	d.polls.On("ListResponseRequests", mock.Anything, openPoll.ID).Return([]models.Respondent{
		{User: alice, Responded: true},
		{User: bob, Responded: true},
	}, nil)
	d.commenter.On("EditComment", mock.Anything, openIssue.Repository, int64(200), finalBody).
		Return(models.IssueComment{ID: 200, Body: finalBody}, bot, nil)
	d.polls.On("ClosePoll", mock.Anything, openPoll.ID).Return(nil)
	d.commenter.On("NewComment", mock.Anything, openIssue.Repository, openIssue.Number, completed).
		Return(models.IssueComment{ID: 201, Body: completed}, bot, nil)
	d.expectStored()

	require.NoError(t, svc.HandleComment(ctx, comment))
	d.assertExpectations(t)
}

func TestEvaluatePollsKeepsPendingPollOpen(t *testing.T) {
	svc, d := newPollService(true)
	body := trackingBody(true, false)

	d.polls.On("ListOpenPolls", mock.Anything).Return([]models.Poll{openPoll}, nil)
	d.issues.On("GetIssue", mock.Anything, openIssue.ID).Return(openIssue, nil)
	d.comments.On("GetComment", mock.Anything, int64(200)).Return(models.IssueComment{ID: 200, Body: body}, nil)
	d.polls.On("MarkRespondedByLogins", mock.Anything, openPoll.ID, []string{"alice"}).Return(0, nil)
	d.polls.On("ListResponseRequests", mock.Anything, openPoll.ID).Return([]models.Respondent{
		{User: alice, Responded: true},
		{User: bob},
	}, nil)
	d.users.On("GetUserByID", mock.Anything, alice.ID).Return(alice, nil)
	d.teams.On("TeamsByPings", mock.Anything, []string{langTeam.Ping}).Return([]models.Team{langTeam}, nil)

	require.NoError(t, svc.EvaluatePolls(ctx))
	d.assertExpectations(t)
	d.polls.AssertNotCalled(t, "ClosePoll", mock.Anything, mock.Anything)
	d.commenter.AssertNotCalled(t, "EditComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluatePollsSyncsCheckedBoxes(t *testing.T) {
	svc, d := newPollService(true)
	checked := trackingBody(true, true)

	d.polls.On("ListOpenPolls", mock.Anything).Return([]models.Poll{openPoll}, nil)
	d.issues.On("GetIssue", mock.Anything, openIssue.ID).Return(openIssue, nil)
	d.comments.On("GetComment", mock.Anything, int64(200)).Return(models.IssueComment{ID: 200, Body: checked}, nil)
	d.polls.On("MarkRespondedByLogins", mock.Anything, openPoll.ID, []string{"alice", "bob"}).Return(1, nil)
	d.polls.On("ListResponseRequests", mock.Anything, openPoll.ID).Return([]models.Respondent{
		{User: alice, Responded: true},
		{User: bob, Responded: true},
	}, nil)
	d.users.On("GetUserByID", mock.Anything, alice.ID).Return(alice, nil)
	d.teams.On("TeamsByPings", mock.Anything, []string{langTeam.Ping}).Return([]models.Team{langTeam}, nil)
	d.polls.On("ClosePoll", mock.Anything, openPoll.ID).Return(nil)
	d.commenter.On("NewComment", mock.Anything, openIssue.Repository, openIssue.Number, mock.AnythingOfType("string")).
		Return(models.IssueComment{ID: 201}, bot, nil)
	d.expectStored()

	require.NoError(t, svc.EvaluatePolls(ctx))
	d.assertExpectations(t)
	d.commenter.AssertNotCalled(t, "EditComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestOverlappingEvaluationsPostOneCompletion(t *testing.T) {
	svc, d := newPollService(true)
	checked := trackingBody(true, true)

	d.polls.On("ListOpenPolls", mock.Anything).Return([]models.Poll{openPoll}, nil)
	d.issues.On("GetIssue", mock.Anything, openIssue.ID).Return(openIssue, nil)
	d.comments.On("GetComment", mock.Anything, int64(200)).Return(models.IssueComment{ID: 200, Body: checked}, nil)
	d.polls.On("MarkRespondedByLogins", mock.Anything, openPoll.ID, []string{"alice", "bob"}).Return(0, nil)
	d.polls.On("ListResponseRequests", mock.Anything, openPoll.ID).Return([]models.Respondent{
		{User: alice, Responded: true},
		{User: bob, Responded: true},
	}, nil)
	d.users.On("GetUserByID", mock.Anything, alice.ID).Return(alice, nil)
	d.teams.On("TeamsByPings", mock.Anything, []string{langTeam.Ping}).Return([]models.Team{langTeam}, nil)
	d.polls.On("ClosePoll", mock.Anything, openPoll.ID).Return(nil).Once()
	d.polls.On("ClosePoll", mock.Anything, openPoll.ID).Return(apperrors.ErrPollAlreadyClosed)
	d.commenter.On("NewComment", mock.Anything, openIssue.Repository, openIssue.Number, mock.AnythingOfType("string")).
		Return(models.IssueComment{ID: 201}, bot, nil).Once()
	d.expectStored()

	errs := make(chan error, 2)
	for i := 0; i < 2; i++ {
		go func() { errs <- svc.EvaluatePolls(ctx) }()
	}
	require.NoError(t, <-errs)
	require.NoError(t, <-errs)

	d.polls.AssertNumberOfCalls(t, "ClosePoll", 2)
	d.commenter.AssertNumberOfCalls(t, "NewComment", 1)
}

func TestEvaluatePollsIgnoresAlreadyClosedOnClosedIssue(t *testing.T) {
	svc, d := newPollService(true)
	closed := openIssue
	closed.Open = false

	d.polls.On("ListOpenPolls", mock.Anything).Return([]models.Poll{openPoll}, nil)
	d.issues.On("GetIssue", mock.Anything, openIssue.ID).Return(closed, nil)
	d.polls.On("ClosePoll", mock.Anything, openPoll.ID).Return(apperrors.ErrPollAlreadyClosed)

	require.NoError(t, svc.EvaluatePolls(ctx))
	d.assertExpectations(t)
}

func TestEvaluatePollsRepostsDeletedTrackingComment(t *testing.T) {
	svc, d := newPollService(true)
	body := trackingBody(true, false)

	d.polls.On("ListOpenPolls", mock.Anything).Return([]models.Poll{openPoll}, nil)
	d.issues.On("GetIssue", mock.Anything, openIssue.ID).Return(openIssue, nil)
	d.comments.On("GetComment", mock.Anything, int64(200)).Return(models.IssueComment{ID: 200, Body: "stale"}, nil)
	d.polls.On("ListResponseRequests", mock.Anything, openPoll.ID).Return([]models.Respondent{
		{User: alice, Responded: true},
		{User: bob},
	}, nil)
	d.users.On("GetUserByID", mock.Anything, alice.ID).Return(alice, nil)
	d.teams.On("TeamsByPings", mock.Anything, []string{langTeam.Ping}).Return([]models.Team{langTeam}, nil)
	d.commenter.On("EditComment", mock.Anything, openIssue.Repository, int64(200), body).
		Return(models.IssueComment{}, models.User{}, apperrors.ErrCommentNotFound)
	d.commenter.On("NewComment", mock.Anything, openIssue.Repository, openIssue.Number, body).
		Return(models.IssueComment{ID: 300, Body: body}, bot, nil)
	d.expectStored()
	d.polls.On("SetTrackingComment", mock.Anything, openPoll.ID, int64(300)).Return(nil)

	require.NoError(t, svc.EvaluatePolls(ctx))
	d.assertExpectations(t)
}

func TestEvaluatePollsClosesPollsOnClosedIssues(t *testing.T) {
	svc, d := newPollService(true)
	closed := openIssue
	closed.Open = false

	d.polls.On("ListOpenPolls", mock.Anything).Return([]models.Poll{openPoll}, nil)
	d.issues.On("GetIssue", mock.Anything, openIssue.ID).Return(closed, nil)
	d.polls.On("ClosePoll", mock.Anything, openPoll.ID).Return(nil)

	require.NoError(t, svc.EvaluatePolls(ctx))
	d.assertExpectations(t)
	d.commenter.AssertNotCalled(t, "NewComment", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluatePollsCollectsErrors(t *testing.T) {
	svc, d := newPollService(true)
	broken := openPoll
	broken.ID, broken.IssueID = 11, 2
	closed := openIssue
	closed.Open = false

	d.polls.On("ListOpenPolls", mock.Anything).Return([]models.Poll{broken, openPoll}, nil)
	d.issues.On("GetIssue", mock.Anything, int64(2)).Return(models.Issue{}, errors.New("connection reset"))
	d.issues.On("GetIssue", mock.Anything, openIssue.ID).Return(closed, nil)
	d.polls.On("ClosePoll", mock.Anything, openPoll.ID).Return(nil)

	err := svc.EvaluatePolls(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "poll 11")
	assert.Contains(t, err.Error(), "connection reset")
	d.assertExpectations(t)
}

func TestCancelPollDeletesAndAnnounces(t *testing.T) {
	svc, d := newPollService(true)
	comment := models.IssueComment{ID: 102, IssueID: openIssue.ID, UserID: alice.ID, Body: "@rfcbot cancel poll"}
	cancelled := service.RenderPollCancelled(alice)

	d.issues.On("GetIssue", mock.Anything, openIssue.ID).Return(openIssue, nil)
	d.users.On("GetUserByID", mock.Anything, alice.ID).Return(alice, nil)
	d.polls.On("GetPollByIssue", mock.Anything, openIssue.ID).Return(openPoll, nil)
	d.teams.On("TeamsByPings", mock.Anything, []string{langTeam.Ping}).Return([]models.Team{langTeam}, nil)
	d.teams.On("IsMember", mock.Anything, alice.ID, []int{langTeam.ID}).Return(true, nil)
	d.polls.On("DeletePoll", mock.Anything, openPoll.ID).Return(nil)
	d.commenter.On("NewComment", mock.Anything, openIssue.Repository, openIssue.Number, cancelled).
		Return(models.IssueComment{ID: 202, Body: cancelled}, bot, nil)
	d.expectStored()
	d.polls.On("ListOpenPolls", mock.Anything).Return([]models.Poll{}, nil)

	require.NoError(t, svc.HandleComment(ctx, comment))
	d.assertExpectations(t)
}

func TestGetPollStatus(t *testing.T) {
	svc, d := newPollService(false)
	respondents := []models.Respondent{{User: alice, Responded: true}, {User: bob}}

	d.issues.On("GetIssueByNumber", mock.Anything, "rust-lang/rfcs", 7).Return(openIssue, nil)
	d.polls.On("GetPollByIssue", mock.Anything, openIssue.ID).Return(openPoll, nil)
	d.users.On("GetUserByID", mock.Anything, alice.ID).Return(alice, nil)
	d.polls.On("ListResponseRequests", mock.Anything, openPoll.ID).Return(respondents, nil)

	status, err := svc.GetPollStatus(ctx, "rust-lang/rfcs", 7)
	require.NoError(t, err)
	assert.Equal(t, openPoll, status.Poll)
	assert.Equal(t, alice, status.Initiator)
	assert.Len(t, status.Pending(), 1)
}

func TestPendingForUser(t *testing.T) {
	svc, d := newPollService(false)
	pending := []models.PendingPoll{{PollID: 10, Repository: "rust-lang/rfcs", Number: 7}}

	d.users.On("GetUserByLogin", mock.Anything, "bob").Return(bob, nil)
	d.users.On("GetUserByLogin", mock.Anything, "ghost").Return(models.User{}, apperrors.ErrUserNotFound)
	d.polls.On("PollsForRespondent", mock.Anything, "bob").Return(pending, nil)

	got, err := svc.PendingForUser(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, pending, got)

	_, err = svc.PendingForUser(ctx, "ghost")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)

	_, err = svc.PendingForUser(ctx, "")
	assert.ErrorIs(t, err, apperrors.ErrLoginRequired)
}
