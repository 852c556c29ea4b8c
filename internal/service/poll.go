package service

import (
	"context"
	"errors"
	"fmt"
	"github.com/hashicorp/go-multierror"
	"log/slog"
	"pollbot/internal/apperrors"
	"pollbot/internal/domain/models"
	"pollbot/internal/lib/logger/sl"
	"sort"
	"time"
)

type PollStore interface {
	CreatePollWithRequests(ctx context.Context, poll models.Poll, respondentIDs []int64) (models.Poll, error)
	GetPollByIssue(ctx context.Context, issueID int64) (models.Poll, error)
	ListOpenPolls(ctx context.Context) ([]models.Poll, error)
	ListPolls(ctx context.Context, closed *bool) ([]models.Poll, error)
	ListResponseRequests(ctx context.Context, pollID int) ([]models.Respondent, error)
	MarkResponded(ctx context.Context, pollID int, userID int64) error
	MarkRespondedByLogins(ctx context.Context, pollID int, logins []string) (int, error)
	ClosePoll(ctx context.Context, id int) error
	SetTrackingComment(ctx context.Context, id int, commentID int64) error
	DeletePoll(ctx context.Context, id int) error
	PollsForRespondent(ctx context.Context, login string) ([]models.PendingPoll, error)
}

type IssueProvider interface {
	GetIssue(ctx context.Context, id int64) (models.Issue, error)
	GetIssueByNumber(ctx context.Context, repository string, number int) (models.Issue, error)
}

type UserProvider interface {
	UpsertUser(ctx context.Context, user models.User) error
	GetUserByID(ctx context.Context, id int64) (models.User, error)
	GetUserByLogin(ctx context.Context, login string) (models.User, error)
}

type CommentStore interface {
	UpsertComment(ctx context.Context, comment models.IssueComment) error
	GetComment(ctx context.Context, id int64) (models.IssueComment, error)
}

type MembershipProvider interface {
	ListTeams(ctx context.Context) ([]models.Team, error)
	TeamsByLabels(ctx context.Context, labels []string) ([]models.Team, error)
	TeamsByPings(ctx context.Context, pings []string) ([]models.Team, error)
	MembersOfTeams(ctx context.Context, teamIDs []int) ([]models.User, error)
	IsMember(ctx context.Context, userID int64, teamIDs []int) (bool, error)
}

// Commenter posts to GitHub and returns the stored comment with its author.
type Commenter interface {
	NewComment(ctx context.Context, repository string, number int, body string) (models.IssueComment, models.User, error)
	EditComment(ctx context.Context, repository string, id int64, body string) (models.IssueComment, models.User, error)
}

type PollService struct {
	log          *slog.Logger
	polls        PollStore
	issues       IssueProvider
	users        UserProvider
	comments     CommentStore
	teams        MembershipProvider
	commenter    Commenter
	mention      string
	postComments bool
	now          func() time.Time
}

type PollServiceConfig struct {
	Mention      string
	PostComments bool
}

func NewPollService(
	log *slog.Logger,
	polls PollStore,
	issues IssueProvider,
	users UserProvider,
	comments CommentStore,
	teams MembershipProvider,
	commenter Commenter,
	cfg PollServiceConfig) *PollService {
	return &PollService{
		log:          log,
		polls:        polls,
		issues:       issues,
		users:        users,
		comments:     comments,
		teams:        teams,
		commenter:    commenter,
		mention:      cfg.Mention,
		postComments: cfg.PostComments,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// HandleComment runs any bot command in a stored comment and then
// re-evaluates open polls.
func (s *PollService) HandleComment(ctx context.Context, comment models.IssueComment) error {
	const op = "service.poll.HandleComment"

	log := s.log.With(
		slog.String("op", op),
		slog.Int64("comment_id", comment.ID),
	)

	issue, err := s.issues.GetIssue(ctx, comment.IssueID)
	if err != nil {
		log.Error("failed to load issue", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	author, err := s.users.GetUserByID(ctx, comment.UserID)
	if err != nil {
		log.Error("failed to load comment author", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log = log.With(
		slog.String("repository", issue.Repository),
		slog.Int("number", issue.Number),
		slog.String("author", author.Login),
	)

	cmd, err := ParseCommand(s.mention, comment.Body)
	switch {
	case errors.Is(err, apperrors.ErrNoCommand):
		log.Debug("comment has no bot command")
	case err != nil:
		log.Info("ignoring malformed bot command", sl.Err(err))
	default:
		log.Info("processing bot command", slog.String("command", cmd.Kind.String()))

		if err := s.runCommand(ctx, cmd, author, issue, comment); err != nil {
			log.Error("unable to process command", sl.Err(err))
			return fmt.Errorf("%s: %w", op, err)
		}
	}

	if err := s.EvaluatePolls(ctx); err != nil {
		log.Error("unable to evaluate open polls", sl.Err(err))
	}

	return nil
}

func (s *PollService) runCommand(ctx context.Context, cmd Command, author models.User, issue models.Issue, comment models.IssueComment) error {
	switch cmd.Kind {
	case CommandStartPoll:
		return s.startPoll(ctx, cmd, author, issue, comment)
	case CommandRespond:
		return s.respond(ctx, author, issue)
	case CommandCancelPoll:
		return s.cancelPoll(ctx, author, issue)
	}
	return apperrors.ErrUnknownCommand
}

func (s *PollService) startPoll(ctx context.Context, cmd Command, author models.User, issue models.Issue, comment models.IssueComment) error {
	const op = "service.poll.startPoll"

	log := s.log.With(slog.String("op", op), slog.Int64("issue_id", issue.ID))

	teams, err := s.resolveTeams(ctx, cmd.Teams, issue)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.authorize(ctx, author, teams); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	existing, err := s.polls.GetPollByIssue(ctx, issue.ID)
	switch {
	case err == nil:
		log.Info("poll already exists for issue", slog.Int("poll_id", existing.ID), sl.Err(apperrors.ErrPollExists))
		return nil
	case !errors.Is(err, apperrors.ErrPollNotFound):
		return fmt.Errorf("%s: %w", op, err)
	}

	members, err := s.teams.MembersOfTeams(ctx, teamIDs(teams))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	respondents := make([]models.Respondent, 0, len(members))
	respondentIDs := make([]int64, 0, len(members))
	for _, m := range members {
		respondents = append(respondents, models.Respondent{User: m, Responded: m.ID == author.ID})
		respondentIDs = append(respondentIDs, m.ID)
	}

	tracking, err := s.post(ctx, issue, 0, RenderPollComment(author, cmd.Question, teams, respondents))
	if err != nil {
		return fmt.Errorf("%s: failed to post tracking comment: %w", op, err)
	}

	pings := make(models.TeamList, 0, len(teams))
	for _, t := range teams {
		pings = append(pings, t.Ping)
	}

	poll, err := s.polls.CreatePollWithRequests(ctx, models.Poll{
		IssueID:              issue.ID,
		InitiatorID:          author.ID,
		InitiatingCommentID:  comment.ID,
		BotTrackingCommentID: tracking.ID,
		Question:             cmd.Question,
		CreatedAt:            s.now(),
		Teams:                pings,
	}, respondentIDs)
	if err != nil {
		// nothing points at the tracking comment now; retract it
		log.Warn("poll not recorded, retracting tracking comment", slog.Int64("comment_id", tracking.ID), sl.Err(err))
		if _, editErr := s.post(ctx, issue, tracking.ID, RenderPollCancelled(author)); editErr != nil {
			log.Error("orphaned tracking comment", slog.Int64("comment_id", tracking.ID), sl.Err(editErr))
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("poll created", slog.Int("poll_id", poll.ID), slog.Int("respondents", len(respondentIDs)))

	return nil
}

func (s *PollService) respond(ctx context.Context, author models.User, issue models.Issue) error {
	const op = "service.poll.respond"

	log := s.log.With(slog.String("op", op), slog.String("author", author.Login))

	poll, err := s.polls.GetPollByIssue(ctx, issue.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if poll.Closed {
		log.Info("poll is already closed", slog.Int("poll_id", poll.ID))
		return nil
	}

	if err := s.authorizePoll(ctx, author, poll); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.polls.MarkResponded(ctx, poll.ID, author.ID); err != nil {
		if errors.Is(err, apperrors.ErrResponseRequestNotFound) {
			log.Warn("author was not asked to respond", slog.Int("poll_id", poll.ID))
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *PollService) cancelPoll(ctx context.Context, author models.User, issue models.Issue) error {
	const op = "service.poll.cancelPoll"

	log := s.log.With(slog.String("op", op), slog.String("author", author.Login))

	poll, err := s.polls.GetPollByIssue(ctx, issue.ID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.authorizePoll(ctx, author, poll); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := s.polls.DeletePoll(ctx, poll.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("poll cancelled", slog.Int("poll_id", poll.ID))

	if _, err := s.post(ctx, issue, 0, RenderPollCancelled(author)); err != nil {
		log.Warn("cancellation comment not posted", sl.Err(err))
	}

	return nil
}

// EvaluatePolls syncs, re-renders and closes every open poll. A failing
// poll does not stop the others; all failures are returned together.
func (s *PollService) EvaluatePolls(ctx context.Context) error {
	const op = "service.poll.EvaluatePolls"

	log := s.log.With(slog.String("op", op))

	polls, err := s.polls.ListOpenPolls(ctx)
	if err != nil {
		log.Error("failed to list open polls", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	var result *multierror.Error
	for _, poll := range polls {
		if err := ctx.Err(); err != nil {
			result = multierror.Append(result, err)
			break
		}
		if err := s.evaluatePoll(ctx, poll); err != nil {
			log.Error("failed to evaluate poll", slog.Int("poll_id", poll.ID), sl.Err(err))
			result = multierror.Append(result, fmt.Errorf("poll %d: %w", poll.ID, err))
		}
	}

	return result.ErrorOrNil()
}

func (s *PollService) evaluatePoll(ctx context.Context, poll models.Poll) error {
	log := s.log.With(slog.Int("poll_id", poll.ID))

	issue, err := s.issues.GetIssue(ctx, poll.IssueID)
	if err != nil {
		return err
	}

	if !issue.Open {
		log.Info("closing poll on closed issue")
		if err := s.polls.ClosePoll(ctx, poll.ID); err != nil && !errors.Is(err, apperrors.ErrPollAlreadyClosed) {
			return err
		}
		return nil
	}

	tracking, err := s.comments.GetComment(ctx, poll.BotTrackingCommentID)
	if err != nil {
		return err
	}

	if checked := ParseCheckedLogins(tracking.Body); len(checked) > 0 {
		changed, err := s.polls.MarkRespondedByLogins(ctx, poll.ID, checked)
		if err != nil {
			return err
		}
		if changed > 0 {
			log.Info("synced responses from tracking comment", slog.Int("changed", changed))
		}
	}

	respondents, err := s.polls.ListResponseRequests(ctx, poll.ID)
	if err != nil {
		return err
	}

	initiator, err := s.users.GetUserByID(ctx, poll.InitiatorID)
	if err != nil {
		return err
	}

	teams, err := s.teams.TeamsByPings(ctx, poll.Teams)
	if err != nil {
		return err
	}

	trackingID := tracking.ID
	if body := RenderPollComment(initiator, poll.Question, teams, respondents); body != tracking.Body {
		if trackingID, err = s.updateTracking(ctx, poll, issue, tracking.ID, body); err != nil {
			return err
		}
	}

	for _, r := range respondents {
		if !r.Responded {
			return nil
		}
	}

	// a concurrent evaluation may have closed it first and owns the
	// completion comment
	if err := s.polls.ClosePoll(ctx, poll.ID); err != nil {
		if errors.Is(err, apperrors.ErrPollAlreadyClosed) {
			log.Debug("poll closed by another evaluation")
			return nil
		}
		return err
	}
	log.Info("all respondents answered, poll closed")

	if _, err := s.post(ctx, issue, 0, RenderPollCompleted(issue.CommentURL(trackingID))); err != nil {
		log.Warn("completion comment not posted", sl.Err(err))
	}

	return nil
}

// updateTracking edits the tracking comment, re-posting it when it was
// deleted on GitHub. It returns the id of the live tracking comment.
func (s *PollService) updateTracking(ctx context.Context, poll models.Poll, issue models.Issue, id int64, body string) (int64, error) {
	_, err := s.post(ctx, issue, id, body)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, apperrors.ErrCommentsDisabled):
		return id, nil
	case !errors.Is(err, apperrors.ErrCommentNotFound):
		return id, err
	}

	posted, err := s.post(ctx, issue, 0, body)
	if err != nil {
		return id, err
	}
	if err := s.polls.SetTrackingComment(ctx, poll.ID, posted.ID); err != nil {
		return id, err
	}

	return posted.ID, nil
}

// post creates a comment, or edits existing when non-zero, and stores the
// result.
func (s *PollService) post(ctx context.Context, issue models.Issue, existing int64, body string) (models.IssueComment, error) {
	const op = "service.poll.post"

	log := s.log.With(
		slog.String("op", op),
		slog.String("repository", issue.Repository),
		slog.Int("number", issue.Number),
	)

	if !s.postComments {
		log.Info("skipping comment, comment posts are disabled")
		return models.IssueComment{}, apperrors.ErrCommentsDisabled
	}
	if !issue.Open {
		log.Info("skipping comment, the issue is no longer open")
		return models.IssueComment{}, apperrors.ErrIssueClosed
	}

	var (
		comment models.IssueComment
		author  models.User
		err     error
	)
	if existing != 0 {
		comment, author, err = s.commenter.EditComment(ctx, issue.Repository, existing, body)
	} else {
		comment, author, err = s.commenter.NewComment(ctx, issue.Repository, issue.Number, body)
	}
	if err != nil {
		return models.IssueComment{}, fmt.Errorf("%s: %w", op, err)
	}

	comment.IssueID = issue.ID
	comment.Repository = issue.Repository
	comment.UserID = author.ID

	if err := s.users.UpsertUser(ctx, author); err != nil {
		return models.IssueComment{}, fmt.Errorf("%s: %w", op, err)
	}
	if err := s.comments.UpsertComment(ctx, comment); err != nil {
		return models.IssueComment{}, fmt.Errorf("%s: %w", op, err)
	}

	return comment, nil
}

// resolveTeams maps explicit team tokens, or the issue labels when there are
// none, to teams.
func (s *PollService) resolveTeams(ctx context.Context, tokens []string, issue models.Issue) ([]models.Team, error) {
	if len(tokens) == 0 {
		teams, err := s.teams.TeamsByLabels(ctx, issue.Labels)
		if err != nil {
			return nil, err
		}
		if len(teams) == 0 {
			return nil, apperrors.ErrNoTeams
		}
		return teams, nil
	}

	all, err := s.teams.ListTeams(ctx)
	if err != nil {
		return nil, err
	}

	var (
		teams []models.Team
		seen  = make(map[int]struct{})
	)
	for _, token := range tokens {
		found := false
		for _, t := range all {
			if !t.Matches(token) {
				continue
			}
			found = true
			if _, ok := seen[t.ID]; !ok {
				seen[t.ID] = struct{}{}
				teams = append(teams, t)
			}
			break
		}
		if !found {
			return nil, fmt.Errorf("%q: %w", token, apperrors.ErrTeamNotFound)
		}
	}

	// same order as TeamsByPings, so re-renders match the first post
	sort.Slice(teams, func(i, j int) bool { return teams[i].Name < teams[j].Name })

	return teams, nil
}

func (s *PollService) authorizePoll(ctx context.Context, author models.User, poll models.Poll) error {
	teams, err := s.teams.TeamsByPings(ctx, poll.Teams)
	if err != nil {
		return err
	}
	return s.authorize(ctx, author, teams)
}

func (s *PollService) authorize(ctx context.Context, author models.User, teams []models.Team) error {
	if len(teams) == 0 {
		return apperrors.ErrNotTeamMember
	}

	member, err := s.teams.IsMember(ctx, author.ID, teamIDs(teams))
	if err != nil {
		return err
	}
	if !member {
		return fmt.Errorf("%s: %w", author.Login, apperrors.ErrNotTeamMember)
	}

	return nil
}

func (s *PollService) GetPollStatus(ctx context.Context, repository string, number int) (models.PollStatus, error) {
	const op = "service.poll.GetPollStatus"

	issue, err := s.issues.GetIssueByNumber(ctx, repository, number)
	if err != nil {
		return models.PollStatus{}, fmt.Errorf("%s: %w", op, err)
	}

	poll, err := s.polls.GetPollByIssue(ctx, issue.ID)
	if err != nil {
		return models.PollStatus{}, fmt.Errorf("%s: %w", op, err)
	}

	initiator, err := s.users.GetUserByID(ctx, poll.InitiatorID)
	if err != nil {
		return models.PollStatus{}, fmt.Errorf("%s: %w", op, err)
	}

	respondents, err := s.polls.ListResponseRequests(ctx, poll.ID)
	if err != nil {
		return models.PollStatus{}, fmt.Errorf("%s: %w", op, err)
	}

	return models.PollStatus{
		Poll:        poll,
		Issue:       issue,
		Initiator:   initiator,
		Respondents: respondents,
	}, nil
}

func (s *PollService) ListPolls(ctx context.Context, closed *bool) ([]models.Poll, error) {
	const op = "service.poll.ListPolls"

	polls, err := s.polls.ListPolls(ctx, closed)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return polls, nil
}

func (s *PollService) PendingForUser(ctx context.Context, login string) ([]models.PendingPoll, error) {
	const op = "service.poll.PendingForUser"

	if login == "" {
		return nil, fmt.Errorf("%s: %w", op, apperrors.ErrLoginRequired)
	}

	if _, err := s.users.GetUserByLogin(ctx, login); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	polls, err := s.polls.PollsForRespondent(ctx, login)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return polls, nil
}

func (s *PollService) DeletePoll(ctx context.Context, id int) error {
	const op = "service.poll.DeletePoll"

	log := s.log.With(slog.String("op", op), slog.Int("poll_id", id))

	if err := s.polls.DeletePoll(ctx, id); err != nil {
		log.Error("failed to delete poll", sl.Err(err))
		return fmt.Errorf("%s: %w", op, err)
	}

	log.Info("poll deleted")

	return nil
}

func teamIDs(teams []models.Team) []int {
	ids := make([]int, 0, len(teams))
	for _, t := range teams {
		ids = append(ids, t.ID)
	}
	return ids
}
