package domain

import "errors"

// Domain errors returned by the public API. Check them with errors.Is.
var (
	// ErrAlreadyRunning is returned when Start() is called on a running player.
	ErrAlreadyRunning = errors.New("artview: already running")

	// ErrNotRunning is returned when Stop() is called on a stopped player.
	ErrNotRunning = errors.New("artview: not running")

	// ErrInvalidConfig is returned when configuration validation fails.
	ErrInvalidConfig = errors.New("artview: invalid configuration")
)
