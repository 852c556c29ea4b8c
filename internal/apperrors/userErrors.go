package apperrors

import "errors"

var (
	ErrUserNotFound  = errors.New("user not found")
	ErrLoginRequired = errors.New("login is required")
)
