package domain

import "errors"

var (
	// ErrQuestionNotFound is returned when a question ID does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrScoreNotFound is returned when a score record ID does not exist.
	ErrScoreNotFound = errors.New("score not found")
	// ErrSessionNotFound is returned when a session token is unknown or expired.
	ErrSessionNotFound = errors.New("session not found")
	// ErrInvalidCredentials indicates a failed admin login.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrUnauthorized is returned when an admin-only action is attempted without an admin session.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrNameRequired is returned when a student tries to play before entering a name.
	ErrNameRequired = errors.New("student name required")
	// ErrInvalidInput is wrapped by every ValidationError.
	ErrInvalidInput = errors.New("invalid input")
)
