package domain

import "errors"

var (
	// ErrNotRegistered is returned when a gameplay call arrives without a
	// registered profile. Transports translate it into a redirect.
	ErrNotRegistered = errors.New("not registered")
	// ErrInvalidName rejects registration names outside 2-50 characters.
	ErrInvalidName = errors.New("name must be between 2 and 50 characters")
	// ErrInvalidAge rejects registration ages outside 8-16.
	ErrInvalidAge = errors.New("age must be between 8 and 16 years")
	// ErrSessionNotFound is returned when a session token has no state.
	ErrSessionNotFound = errors.New("session not found")
	// ErrNoQuestions signals an exhausted question store. It is not a
	// failure: callers trigger generation and retry.
	ErrNoQuestions = errors.New("no eligible questions")
	// ErrRunFinished is returned for events against a completed run.
	ErrRunFinished = errors.New("quiz run already completed")
)
