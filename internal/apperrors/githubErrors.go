package apperrors

import "errors"

var (
	ErrIssueNotFound    = errors.New("issue not found")
	ErrCommentNotFound  = errors.New("comment not found")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnsupportedEvent = errors.New("unsupported webhook event")
)
