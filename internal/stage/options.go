package stage

import "time"

// DefaultFilterTimeout is the time budget of the filtering stage.
const DefaultFilterTimeout = 300 * time.Second

// settings holds the options shared by the stage executors.
type settings struct {
	path      string
	extraArgs []string
	proxy     string
	timeout   time.Duration
}

// Option configures a stage executor.
type Option func(*settings)

// WithPath sets the resolved executable path. Without it the tool name is used.
func WithPath(path string) Option {
	return func(s *settings) {
		s.path = path
	}
}

// WithExtraArgs appends arguments after the fixed argument vector.
func WithExtraArgs(args ...string) Option {
	return func(s *settings) {
		s.extraArgs = append(s.extraArgs, args...)
	}
}

// WithProxy routes the tool's HTTP traffic through proxy (httpx and nuclei only).
func WithProxy(proxy string) Option {
	return func(s *settings) {
		s.proxy = proxy
	}
}

// WithTimeout sets the stage time budget. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(s *settings) {
		s.timeout = d
	}
}

func newSettings(tool string, timeout time.Duration, opts []Option) settings {
	s := settings{path: tool, timeout: timeout}
	for _, opt := range opts {
		opt(&s)
	}
	if s.path == "" {
		s.path = tool
	}
	return s
}

// args builds the final argument vector.
func (s settings) args(fixed ...string) []string {
	args := make([]string, 0, len(fixed)+len(s.extraArgs)+2)
	args = append(args, fixed...)
	if s.proxy != "" {
		args = append(args, "-proxy", s.proxy)
	}
	return append(args, s.extraArgs...)
}
