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

const pollColumns = `id, fk_issue, fk_initiator, fk_initiating_comment, fk_bot_tracking_comment,
	poll_question, poll_created_at, poll_closed, poll_teams`

type PollRepo struct {
	storage *sqlx.DB
}

func NewPollRepo(storage *sqlx.DB) *PollRepo {
	return &PollRepo{storage: storage}
}

// CreatePollWithRequests stores a poll and one response request per
// respondent in a single transaction. The initiator's request, if any,
// starts out responded.
func (r *PollRepo) CreatePollWithRequests(ctx context.Context, poll models.Poll, respondentIDs []int64) (models.Poll, error) {
	const op = "repo.poll.CreatePollWithRequests"

	tx, err := r.storage.BeginTxx(ctx, nil)
	if err != nil {
		return models.Poll{}, fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback()

	pollQuery := `
		INSERT INTO poll (fk_issue, fk_initiator, fk_initiating_comment, fk_bot_tracking_comment,
			poll_question, poll_created_at, poll_closed, poll_teams)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING ` + pollColumns

	var saved models.Poll
	err = tx.QueryRowxContext(ctx, pollQuery,
		poll.IssueID, poll.InitiatorID, poll.InitiatingCommentID, poll.BotTrackingCommentID,
		poll.Question, poll.CreatedAt, poll.Closed, poll.Teams,
	).StructScan(&saved)
	if err != nil {
		return models.Poll{}, fmt.Errorf("%s: %w", op, translatePgError(err, apperrors.ErrPollExists))
	}

	requestQuery := `INSERT INTO poll_response_request (fk_poll, fk_respondent, responded) VALUES ($1, $2, $3)`

	seen := make(map[int64]struct{}, len(respondentIDs))
	for _, id := range respondentIDs {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		if _, err := tx.ExecContext(ctx, requestQuery, saved.ID, id, id == poll.InitiatorID); err != nil {
			return models.Poll{}, fmt.Errorf("%s: failed to add respondent %d: %w", op, id,
				translatePgError(err, apperrors.ErrResponseRequestExists))
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Poll{}, fmt.Errorf("%s: failed to commit transaction: %w", op, err)
	}

	return saved, nil
}

func (r *PollRepo) GetPoll(ctx context.Context, id int) (models.Poll, error) {
	const op = "repo.poll.GetPoll"

	var poll models.Poll
	if err := r.storage.GetContext(ctx, &poll, `SELECT `+pollColumns+` FROM poll WHERE id = $1`, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Poll{}, fmt.Errorf("%s: %w", op, apperrors.ErrPollNotFound)
		}
		return models.Poll{}, fmt.Errorf("%s: %w", op, err)
	}

	return poll, nil
}

func (r *PollRepo) GetPollByIssue(ctx context.Context, issueID int64) (models.Poll, error) {
	const op = "repo.poll.GetPollByIssue"

	var poll models.Poll
	if err := r.storage.GetContext(ctx, &poll, `SELECT `+pollColumns+` FROM poll WHERE fk_issue = $1`, issueID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Poll{}, fmt.Errorf("%s: %w", op, apperrors.ErrPollNotFound)
		}
		return models.Poll{}, fmt.Errorf("%s: %w", op, err)
	}

	return poll, nil
}

func (r *PollRepo) ListOpenPolls(ctx context.Context) ([]models.Poll, error) {
	closed := false
	return r.ListPolls(ctx, &closed)
}

// ListPolls returns polls ordered by creation time. A nil closed lists all.
func (r *PollRepo) ListPolls(ctx context.Context, closed *bool) ([]models.Poll, error) {
	const op = "repo.poll.ListPolls"

	query := `SELECT ` + pollColumns + ` FROM poll WHERE ($1::BOOLEAN IS NULL OR poll_closed = $1) ORDER BY poll_created_at, id`

	polls := []models.Poll{}
	if err := r.storage.SelectContext(ctx, &polls, query, closed); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return polls, nil
}

// ListResponseRequests returns the poll's respondents ordered by login.
func (r *PollRepo) ListResponseRequests(ctx context.Context, pollID int) ([]models.Respondent, error) {
	const op = "repo.poll.ListResponseRequests"

	query := `
		SELECT
			u.id AS "githubuser.id",
			u.login AS "githubuser.login",
			u.name AS "githubuser.name",
			u.email AS "githubuser.email",
			r.responded
		FROM poll_response_request r
		JOIN githubuser u ON u.id = r.fk_respondent
		WHERE r.fk_poll = $1
		ORDER BY u.login
	`

	respondents := []models.Respondent{}
	if err := r.storage.SelectContext(ctx, &respondents, query, pollID); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return respondents, nil
}

func (r *PollRepo) AddResponseRequest(ctx context.Context, pollID int, userID int64) error {
	const op = "repo.poll.AddResponseRequest"

	query := `INSERT INTO poll_response_request (fk_poll, fk_respondent, responded) VALUES ($1, $2, FALSE)`

	if _, err := r.storage.ExecContext(ctx, query, pollID, userID); err != nil {
		return fmt.Errorf("%s: %w", op, translatePgError(err, apperrors.ErrResponseRequestExists))
	}

	return nil
}

func (r *PollRepo) MarkResponded(ctx context.Context, pollID int, userID int64) error {
	const op = "repo.poll.MarkResponded"

	query := `UPDATE poll_response_request SET responded = TRUE WHERE fk_poll = $1 AND fk_respondent = $2`

	result, err := r.storage.ExecContext(ctx, query, pollID, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, apperrors.ErrResponseRequestNotFound)
	}

	return nil
}

// MarkRespondedByLogins flips every pending request of the listed logins and
// reports how many changed.
func (r *PollRepo) MarkRespondedByLogins(ctx context.Context, pollID int, logins []string) (int, error) {
	const op = "repo.poll.MarkRespondedByLogins"

	if len(logins) == 0 {
		return 0, nil
	}

	query := `
		UPDATE poll_response_request r
		SET responded = TRUE
		FROM githubuser u
		WHERE r.fk_respondent = u.id
			AND r.fk_poll = $1
			AND u.login = ANY($2)
			AND NOT r.responded
	`

	result, err := r.storage.ExecContext(ctx, query, pollID, logins)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return int(affected), nil
}

// ClosePoll flips an open poll to closed. Closing a poll that is already
// closed returns ErrPollAlreadyClosed, so only one caller wins the close.
func (r *PollRepo) ClosePoll(ctx context.Context, id int) error {
	const op = "repo.poll.ClosePoll"

	result, err := r.storage.ExecContext(ctx, `UPDATE poll SET poll_closed = TRUE WHERE id = $1 AND NOT poll_closed`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := r.storage.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM poll WHERE id = $1)`, id); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, apperrors.ErrPollNotFound)
	}

	return fmt.Errorf("%s: %w", op, apperrors.ErrPollAlreadyClosed)
}

func (r *PollRepo) SetTrackingComment(ctx context.Context, id int, commentID int64) error {
	const op = "repo.poll.SetTrackingComment"

	query := `UPDATE poll SET fk_bot_tracking_comment = $2 WHERE id = $1`

	result, err := r.storage.ExecContext(ctx, query, id, commentID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, translatePgError(err, nil))
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, apperrors.ErrPollNotFound)
	}

	return nil
}

// DeletePoll removes the poll; its response requests go with it via
// ON DELETE CASCADE.
func (r *PollRepo) DeletePoll(ctx context.Context, id int) error {
	const op = "repo.poll.DeletePoll"

	result, err := r.storage.ExecContext(ctx, `DELETE FROM poll WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return fmt.Errorf("%s: %w", op, apperrors.ErrPollNotFound)
	}

	return nil
}

// PollsForRespondent lists open polls still waiting on login.
func (r *PollRepo) PollsForRespondent(ctx context.Context, login string) ([]models.PendingPoll, error) {
	const op = "repo.poll.PollsForRespondent"

	query := `
		SELECT
			p.id AS poll_id,
			p.poll_question,
			p.poll_created_at,
			i.repository,
			i.number,
			i.title
		FROM poll_response_request r
		JOIN githubuser u ON u.id = r.fk_respondent
		JOIN poll p ON p.id = r.fk_poll
		JOIN issue i ON i.id = p.fk_issue
		WHERE u.login = $1
			AND NOT r.responded
			AND NOT p.poll_closed
		ORDER BY p.poll_created_at, p.id
	`

	polls := []models.PendingPoll{}
	if err := r.storage.SelectContext(ctx, &polls, query, login); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return polls, nil
}
