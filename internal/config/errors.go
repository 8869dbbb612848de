package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoTarget is returned when no target domain is given.
	ErrNoTarget = errors.New("no target specified")

	// ErrInvalidSeverity is returned when the severity filter is empty or
	// names a level outside critical, high, medium, low and info.
	ErrInvalidSeverity = errors.New("invalid severity filter: expected a comma-separated subset of critical,high,medium,low,info")

	// ErrInvalidFilterTimeout is returned when the filtering budget is not positive.
	ErrInvalidFilterTimeout = errors.New("invalid filter timeout: must be positive")

	// ErrInvalidScanTimeout is returned when the scanning budget is negative.
	// Zero means no limit.
	ErrInvalidScanTimeout = errors.New("invalid scan timeout: must be non-negative")

	// ErrInvalidTorStartupTimeout is returned when --tor is set with a non-positive bootstrap budget.
	ErrInvalidTorStartupTimeout = errors.New("invalid Tor startup timeout: must be positive")

	// ErrConflictingProxy is returned when both --proxy and --tor are given.
	ErrConflictingProxy = errors.New("conflicting proxy settings: --proxy and --tor cannot be used together")

	// ErrNoOutputDir is returned when the output directory is empty.
	ErrNoOutputDir = errors.New("output directory cannot be empty")
)
