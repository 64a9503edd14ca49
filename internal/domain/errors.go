package domain

import "errors"

var (
	// ErrQuizNotFound indicates the requested quiz does not exist.
	ErrQuizNotFound = errors.New("quiz not found")
	// ErrAttemptNotFound is returned when an attempt does not exist or
	// belongs to a different user. Ownership failures are deliberately
	// indistinguishable from missing rows.
	ErrAttemptNotFound = errors.New("attempt not found")
	// ErrQuestionNotFound indicates the question is absent from the
	// attempt's quiz.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrOptionNotFound indicates the option does not belong to the question.
	ErrOptionNotFound = errors.New("option not found")
	// ErrAttemptSubmitted gates all mutation of a finished attempt.
	ErrAttemptSubmitted = errors.New("cannot update answers; attempt has been submitted")
	// ErrInvalidInput covers malformed payloads caught before any storage access.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNameTaken is returned when a quiz name collides case-insensitively.
	ErrNameTaken = errors.New("quiz name already taken")
)
