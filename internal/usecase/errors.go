package usecase

import "errors"

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrNotFound              = errors.New("resource not found")
	ErrUnauthorized          = errors.New("unauthorized")
	ErrConflict              = errors.New("conflict")
	ErrDependencyUnavailable = errors.New("dependency unavailable")
)

// Reconcile pipeline failures.
var (
	// ErrFetchFailure: the page could not be retrieved. Retried on the next tick.
	ErrFetchFailure = errors.New("schedule fetch failed")
	// ErrParseFailure: expected markup is missing. Nothing from the page is written.
	ErrParseFailure = errors.New("schedule parse failed")
	// ErrUnknownTeam: a team name has no reference row. Only that game is skipped.
	ErrUnknownTeam = errors.New("unknown team")
	// ErrRunInProgress: another reconcile run holds the run lock.
	ErrRunInProgress = errors.New("reconcile run already in progress")
)
