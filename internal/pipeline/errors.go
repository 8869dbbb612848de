package pipeline

import "errors"

var (
	// ErrDiscoveryFailed is returned when subdomain discovery produced nothing.
	// No summary is written for such a run.
	ErrDiscoveryFailed = errors.New("subdomain discovery failed")

	// ErrNoSteps is returned when Execute is called on an empty pipeline.
	ErrNoSteps = errors.New("pipeline has no steps")
)
