package model

// Stage identifies one step of the reconnaissance chain by its ordinal.
type Stage int

const (
	// StageDiscovery enumerates subdomains of the target.
	StageDiscovery Stage = iota + 1

	// StageFiltering keeps the hosts that answer HTTP 200.
	StageFiltering

	// StageScanning runs vulnerability templates against the live hosts.
	StageScanning
)

// String returns the stage name used in logs and the history database.
func (s Stage) String() string {
	switch s {
	case StageDiscovery:
		return "discovery"
	case StageFiltering:
		return "filtering"
	case StageScanning:
		return "scanning"
	default:
		return "unknown"
	}
}

// ErrTimeout is the StageResult.Err value for a stage killed by its time budget.
const ErrTimeout = "timeout"

// StageResult is the outcome of one stage.
// Launch failures and non-zero exits are reported here rather than returned
// as Go errors; the orchestrator decides whether to continue.
type StageResult struct {
	// Stage is the ordinal of the stage that produced this result.
	Stage Stage `json:"stage"`

	// Success is false when the tool could not be launched, exited
	// non-zero, or exceeded its time budget.
	Success bool `json:"success"`

	// Count is the number of items the stage produced
	// (subdomains, live hosts, or findings).
	Count int `json:"count"`

	// Err describes the failure when Success is false.
	Err string `json:"error,omitempty"`

	// Fallback is set by discovery when the tool found nothing and the
	// target itself was written as the only host.
	Fallback bool `json:"fallback,omitempty"`
}

// Failed builds an unsuccessful result with a zero count.
func Failed(stage Stage, reason string) StageResult {
	return StageResult{Stage: stage, Success: false, Count: 0, Err: reason}
}

// Succeeded builds a successful result with the given count.
func Succeeded(stage Stage, count int) StageResult {
	return StageResult{Stage: stage, Success: true, Count: count}
}

// TimedOut reports whether the stage was killed by its time budget.
func (r StageResult) TimedOut() bool {
	return !r.Success && r.Err == ErrTimeout
}
