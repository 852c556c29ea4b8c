package apperrors

import "errors"

var (
	ErrTeamNotFound     = errors.New("team not found")
	ErrTeamPingRequired = errors.New("team ping is required")
	ErrMembershipExists = errors.New("membership already exists")
)
