package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/reconchain/internal/model"
)

// Default configuration values.
const (
	// AppName is used for XDG directory paths.
	AppName = "reconchain"

	// DefaultOutputDir is the output root relative to the working directory.
	DefaultOutputDir = "results"

	// DefaultSeverity is the scanner severity filter when none is given.
	DefaultSeverity = "critical,high,medium"

	// DefaultFilterTimeout is the time budget of the HTTP filtering stage.
	DefaultFilterTimeout = 300 * time.Second

	// DefaultTorStartupTimeout bounds the embedded Tor bootstrap.
	DefaultTorStartupTimeout = 3 * time.Minute

	// DefaultProxyCheckTimeout bounds the reachability probe through a SOCKS5 proxy.
	DefaultProxyCheckTimeout = 30 * time.Second
)

// ToolPaths overrides where the external tools are found.
// Empty fields fall back to $PATH lookup.
type ToolPaths struct {
	Subfinder string `yaml:"subfinder,omitempty"`
	HTTPX     string `yaml:"httpx,omitempty"`
	Nuclei    string `yaml:"nuclei,omitempty"`
}

// StageArgs are extra command-line arguments appended to each tool's invocation.
type StageArgs struct {
	Subfinder []string `yaml:"subfinder,omitempty"`
	HTTPX     []string `yaml:"httpx,omitempty"`
	Nuclei    []string `yaml:"nuclei,omitempty"`
}

// Config holds the settings of one run. It is filled from defaults, the
// config file and CLI flags, in that order, and validated once before any
// stage runs.
type Config struct {
	// Target is the domain to scan as given by the operator.
	Target string

	// OutputDir is the output root. Run directories are created beneath it.
	OutputDir string

	// Severity is the comma-joined scanner severity filter.
	// Validate normalizes it in place.
	Severity string

	// FilterTimeout is the time budget of the filtering stage.
	FilterTimeout time.Duration

	// ScanTimeout bounds the scanning stage. Zero means no limit.
	ScanTimeout time.Duration

	// Proxy is passed to httpx and nuclei via -proxy. SOCKS5 proxies are
	// probed before the first stage.
	Proxy string

	// UseTor starts an embedded Tor daemon and uses it as Proxy.
	UseTor bool

	// TorStartupTimeout bounds the embedded Tor bootstrap.
	TorStartupTimeout time.Duration

	// MarkdownReport also writes summary.md.
	MarkdownReport bool

	// JSONReport also writes summary.json.
	JSONReport bool

	// MetricsFile, when set, receives Prometheus text-format metrics.
	MetricsFile string

	// NoHistory disables the run history database.
	NoHistory bool

	// DBDir is the directory of the run history database.
	DBDir string

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicit config file given with -c.
	ConfigFilePath string

	// Tools overrides tool locations.
	Tools ToolPaths

	// ExtraArgs are appended to the tool invocations.
	ExtraArgs StageArgs
}

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		OutputDir:         DefaultOutputDir,
		Severity:          DefaultSeverity,
		FilterTimeout:     DefaultFilterTimeout,
		TorStartupTimeout: DefaultTorStartupTimeout,
		DBDir:             XDGDataDir(),
	}
}

// XDGDataDir returns the data directory that holds the history database.
// On Linux: ~/.local/share/reconchain
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the config directory searched for config.yaml.
// On Linux: ~/.config/reconchain
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyTarget overlays the non-zero fields of a file's merged target
// configuration and its tool paths onto c.
func (c *Config) ApplyTarget(tc TargetConfig, tools ToolPaths) {
	if tc.OutputDir != "" {
		c.OutputDir = tc.OutputDir
	}
	if tc.Severity != "" {
		c.Severity = tc.Severity
	}
	if tc.FilterTimeout > 0 {
		c.FilterTimeout = tc.FilterTimeout
	}
	if tc.ScanTimeout > 0 {
		c.ScanTimeout = tc.ScanTimeout
	}
	if tc.Proxy != "" {
		c.Proxy = tc.Proxy
	}
	if len(tc.Args.Subfinder) > 0 {
		c.ExtraArgs.Subfinder = tc.Args.Subfinder
	}
	if len(tc.Args.HTTPX) > 0 {
		c.ExtraArgs.HTTPX = tc.Args.HTTPX
	}
	if len(tc.Args.Nuclei) > 0 {
		c.ExtraArgs.Nuclei = tc.Args.Nuclei
	}
	if tools.Subfinder != "" {
		c.Tools.Subfinder = tools.Subfinder
	}
	if tools.HTTPX != "" {
		c.Tools.HTTPX = tools.HTTPX
	}
	if tools.Nuclei != "" {
		c.Tools.Nuclei = tools.Nuclei
	}
}

// Validate checks the configuration and normalizes the severity filter.
// It returns the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Target) == "" {
		return ErrNoTarget
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return ErrNoOutputDir
	}

	severity, err := NormalizeSeverity(c.Severity)
	if err != nil {
		return err
	}
	c.Severity = severity

	if c.FilterTimeout <= 0 {
		return ErrInvalidFilterTimeout
	}
	if c.ScanTimeout < 0 {
		return ErrInvalidScanTimeout
	}
	if c.UseTor && c.Proxy != "" {
		return ErrConflictingProxy
	}
	if c.UseTor && c.TorStartupTimeout <= 0 {
		return ErrInvalidTorStartupTimeout
	}
	return nil
}

// NormalizeSeverity trims, lower-cases and de-duplicates a comma-separated
// severity filter, keeping first-seen order. An empty filter or an unknown
// level yields ErrInvalidSeverity.
func NormalizeSeverity(raw string) (string, error) {
	seen := make(map[model.Severity]bool)
	levels := make([]string, 0, 5)

	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		sev := model.ParseSeverity(part)
		if !sev.Filterable() {
			return "", fmt.Errorf("%w: %q", ErrInvalidSeverity, part)
		}
		if seen[sev] {
			continue
		}
		seen[sev] = true
		levels = append(levels, sev.Label())
	}

	if len(levels) == 0 {
		return "", ErrInvalidSeverity
	}
	return strings.Join(levels, ","), nil
}
