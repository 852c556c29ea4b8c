package apperrors

import "errors"

var (
	ErrPollExists              = errors.New("poll already exists for this issue")
	ErrPollNotFound            = errors.New("poll not found")
	ErrPollAlreadyClosed       = errors.New("poll is already closed")
	ErrResponseRequestExists   = errors.New("respondent already requested for this poll")
	ErrResponseRequestNotFound = errors.New("respondent not requested for this poll")
	ErrInvalidPollID           = errors.New("invalid poll id format")
	ErrInvalidIssueNumber      = errors.New("invalid issue number format")
	ErrInvalidClosedFilter     = errors.New("closed must be true or false")
)

var (
	ErrNoCommand        = errors.New("no bot command in comment")
	ErrUnknownCommand   = errors.New("unknown bot command")
	ErrEmptyQuestion    = errors.New("poll question is required")
	ErrNotTeamMember    = errors.New("author is not a member of a relevant team")
	ErrNoTeams          = errors.New("no teams to poll")
	ErrCommentsDisabled = errors.New("posting comments is disabled")
	ErrIssueClosed      = errors.New("issue is closed")
)
