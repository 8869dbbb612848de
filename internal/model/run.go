package model

import "time"

// TimestampLayout names the per-run directory (second resolution).
const TimestampLayout = "20060102_150405"

// Artifact file names inside a run directory.
const (
	SubdomainsFile      = "subdomains.txt"
	LiveHostsFile       = "live_hosts.txt"
	VulnerabilitiesFile = "vulnerabilities.json"
	SummaryFile         = "summary.txt"
	SummaryMarkdownFile = "summary.md"
	SummaryJSONFile     = "summary.json"
)

// RunIdentity identifies one run. It is created once at run start and never modified.
type RunIdentity struct {
	// Target is the normalized target.
	Target Target

	// CreatedAt is the run start time, truncated to the second.
	CreatedAt time.Time
}

// Timestamp returns the run directory name for this identity.
func (id RunIdentity) Timestamp() string {
	return id.CreatedAt.Format(TimestampLayout)
}

// RunPaths holds the output locations of one run.
// The run directory exists on disk once a RunPaths is handed out; nothing in
// reconchain deletes it. Stages receive RunPaths read-only.
type RunPaths struct {
	// BaseDir is the output root (default "results").
	BaseDir string `json:"base_dir"`

	// TargetDir is BaseDir/<target>.
	TargetDir string `json:"target_dir"`

	// RunDir is TargetDir/<YYYYMMDD_HHMMSS>.
	RunDir string `json:"run_dir"`

	// Subdomains is written by discovery and read by filtering.
	Subdomains string `json:"subdomains"`

	// LiveHosts is written by filtering and read by scanning.
	LiveHosts string `json:"live_hosts"`

	// Vulnerabilities is the scanner's JSONL copy of its record stream.
	Vulnerabilities string `json:"vulnerabilities"`

	// Summary is the human-readable report written once at the end.
	Summary string `json:"summary"`
}

// Outcome describes how a run ended.
type Outcome string

const (
	// OutcomeCompleted means all three stages ran.
	OutcomeCompleted Outcome = "completed"

	// OutcomeNoLiveHosts means filtering found nothing and scanning was skipped.
	OutcomeNoLiveHosts Outcome = "no_live_hosts"

	// OutcomeDiscoveryFailed means the discovery tool failed; no summary is written.
	OutcomeDiscoveryFailed Outcome = "discovery_failed"

	// OutcomeInterrupted means the operator interrupted the scanning stage.
	OutcomeInterrupted Outcome = "interrupted"
)

// Run is the state threaded through the pipeline for one target.
type Run struct {
	// ID is a unique identifier used as the history database key.
	ID string `json:"id"`

	// Identity is the normalized target and start time.
	Identity RunIdentity `json:"-"`

	// Paths are the run's artifact locations.
	Paths *RunPaths `json:"paths"`

	// SeverityFilter is the comma-joined value passed to the scanner.
	SeverityFilter string `json:"severity_filter"`

	// Results holds one entry per stage that ran, in order.
	Results []StageResult `json:"results"`

	// Subdomains is the discovery count.
	Subdomains int `json:"subdomains"`

	// LiveHosts is the filtering count.
	LiveHosts int `json:"live_hosts"`

	// Vulnerabilities is the scanning aggregate.
	Vulnerabilities Aggregate `json:"vulnerabilities"`

	// Outcome is set by the orchestrator when the run ends.
	Outcome Outcome `json:"outcome"`

	// FinishedAt is set when the summary is built.
	FinishedAt time.Time `json:"finished_at"`
}

// NewRun creates the pipeline state for a run.
func NewRun(id string, identity RunIdentity, paths *RunPaths, severityFilter string) *Run {
	return &Run{
		ID:             id,
		Identity:       identity,
		Paths:          paths,
		SeverityFilter: severityFilter,
		Results:        make([]StageResult, 0, 3),
	}
}

// Target returns the normalized target string.
func (r *Run) Target() string {
	return r.Identity.Target.String()
}

// Record appends a stage result.
func (r *Run) Record(result StageResult) {
	r.Results = append(r.Results, result)
}

// Result returns the recorded result for a stage, if that stage ran.
func (r *Run) Result(stage Stage) (StageResult, bool) {
	for _, res := range r.Results {
		if res.Stage == stage {
			return res, true
		}
	}
	return StageResult{}, false
}

// Summary returns the values the summary builder needs.
func (r *Run) Summary() Summary {
	return Summary{
		RunID:           r.ID,
		Target:          r.Target(),
		StartedAt:       r.Identity.CreatedAt,
		FinishedAt:      r.FinishedAt,
		SeverityFilter:  r.SeverityFilter,
		Subdomains:      r.Subdomains,
		LiveHosts:       r.LiveHosts,
		Vulnerabilities: r.Vulnerabilities,
		Outcome:         r.Outcome,
		Paths:           *r.Paths,
	}
}

// Summary is the immutable snapshot rendered into summary.txt and stored in history.
type Summary struct {
	RunID           string    `json:"run_id"`
	Target          string    `json:"target"`
	StartedAt       time.Time `json:"started_at"`
	FinishedAt      time.Time `json:"finished_at"`
	SeverityFilter  string    `json:"severity_filter"`
	Subdomains      int       `json:"subdomains"`
	LiveHosts       int       `json:"live_hosts"`
	Vulnerabilities Aggregate `json:"vulnerabilities"`
	Outcome         Outcome   `json:"outcome"`
	Paths           RunPaths  `json:"paths"`
}
