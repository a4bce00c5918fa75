package interview

import "errors"

var (
	// ErrSessionNotFound is returned when no session exists for the given id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrSessionCompleted is returned when an answer is submitted to a
	// session that has already completed.
	ErrSessionCompleted = errors.New("session already completed")

	// ErrNoPendingQuestion is returned when there is no unanswered question
	// to submit an answer for.
	ErrNoPendingQuestion = errors.New("no unanswered question pending")
)
