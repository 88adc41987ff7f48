package service

import "errors"

var (
	ErrUsernameTaken   = errors.New("username already exists")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidPassword = errors.New("invalid password")
	ErrInvalidToken    = errors.New("invalid token")
	ErrClientNotFound  = errors.New("client not found")
	ErrTaskNotFound    = errors.New("task not found")
)

// ValidationError is returned for requests that are missing a required
// field or carry a value outside its enum. Message is client-facing.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
