package model

import (
	"errors"
	"fmt"
)

// Error classes. Every error returned by the services matches one of these with errors.Is.
var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrConflict           = errors.New("state changed concurrently")
	ErrBackendUnavailable = errors.New("record store unavailable")
	ErrAccessDenied       = errors.New("access denied")
)

var (
	// Lookup errors
	ErrPlayerNotFound = fmt.Errorf("%w: player", ErrNotFound)
	ErrTargetNotFound = fmt.Errorf("%w: target", ErrNotFound)

	// Transition errors
	ErrAlreadyDead       = fmt.Errorf("%w: player is already dead", ErrPreconditionFailed)
	ErrNoActiveTarget    = fmt.Errorf("%w: player has no active target", ErrPreconditionFailed)
	ErrTargetAlreadyDead = fmt.Errorf("%w: target is already dead", ErrPreconditionFailed)
	ErrNotEnoughPlayers  = fmt.Errorf("%w: at least two alive players are needed", ErrPreconditionFailed)

	// Permission errors
	ErrAdminOnly = fmt.Errorf("%w: admin only", ErrAccessDenied)

	// Store errors
	ErrInvalidLayout = errors.New("record store header has no nickname column")
)

// Unavailable wraps a record store failure
func Unavailable(err error) error {
	if err == nil || errors.Is(err, ErrBackendUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", ErrBackendUnavailable, err)
}

// Conflicted wraps a precondition that failed only after re-reading under the lock
func Conflicted(cause error) error {
	return fmt.Errorf("%w: %w", ErrConflict, cause)
}

// Retryable reports whether a client may retry the failed operation as is
func Retryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrBackendUnavailable)
}
