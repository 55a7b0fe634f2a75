package repository

import "errors"

var (
	// ErrNotFound maps sql.ErrNoRows (or a zero-row write) for callers that
	// must not leak driver details.
	ErrNotFound = errors.New("record not found")

	// ErrTokenConsumed reports that a reset token was already marked used by
	// the time the consuming transaction tried to claim it.
	ErrTokenConsumed = errors.New("reset token already consumed")
)
