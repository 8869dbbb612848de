package stage

import (
	"errors"
	"strings"
)

var (
	// ErrToolNotFound is returned when an executable cannot be resolved.
	ErrToolNotFound = errors.New("tool not found")

	// ErrLaunch wraps failures to start a tool process.
	ErrLaunch = errors.New("failed to launch tool")

	// ErrNonZeroExit is the reason recorded for a tool that exited with a non-zero status.
	ErrNonZeroExit = errors.New("tool exited with non-zero status")
)

// MissingToolsError lists every required tool that could not be resolved.
type MissingToolsError struct {
	Names []string
}

// Error implements error.
func (e *MissingToolsError) Error() string {
	return "missing required tools: " + strings.Join(e.Names, ", ")
}

// Unwrap lets errors.Is match ErrToolNotFound.
func (e *MissingToolsError) Unwrap() error {
	return ErrToolNotFound
}
