package config

import (
	"time"

	"github.com/nao1215/reconchain/internal/model"
)

// TargetConfig holds settings that can differ per target domain.
type TargetConfig struct {
	// OutputDir overrides the output root.
	OutputDir string `yaml:"outputDir,omitempty"`

	// Severity overrides the scanner severity filter.
	Severity string `yaml:"severity,omitempty"`

	// FilterTimeout overrides the filtering budget, e.g. "10m".
	FilterTimeout time.Duration `yaml:"filterTimeout,omitempty"`

	// ScanTimeout bounds the scanning stage, e.g. "2h".
	ScanTimeout time.Duration `yaml:"scanTimeout,omitempty"`

	// Proxy is passed to httpx and nuclei.
	Proxy string `yaml:"proxy,omitempty"`

	// Args are appended to the tool invocations.
	Args StageArgs `yaml:"args,omitempty"`
}

// File is the structure of the .reconchain configuration file.
type File struct {
	// Tools overrides where the external tools live.
	Tools ToolPaths `yaml:"tools,omitempty"`

	// Defaults apply to every target unless overridden below.
	Defaults TargetConfig `yaml:"defaults,omitempty"`

	// Targets maps a domain to its overrides. Keys are normalized the same
	// way as the target argument, so "https://example.com/" and
	// "example.com" name the same entry.
	Targets map[string]TargetConfig `yaml:"targets,omitempty"`
}

// GetTargetConfig returns the defaults merged with the entry for target.
func (f *File) GetTargetConfig(target string) TargetConfig {
	result := f.Defaults
	want := model.NormalizeTarget(target)

	for key, tc := range f.Targets {
		if model.NormalizeTarget(key) != want {
			continue
		}
		if tc.OutputDir != "" {
			result.OutputDir = tc.OutputDir
		}
		if tc.Severity != "" {
			result.Severity = tc.Severity
		}
		if tc.FilterTimeout > 0 {
			result.FilterTimeout = tc.FilterTimeout
		}
		if tc.ScanTimeout > 0 {
			result.ScanTimeout = tc.ScanTimeout
		}
		if tc.Proxy != "" {
			result.Proxy = tc.Proxy
		}
		if len(tc.Args.Subfinder) > 0 {
			result.Args.Subfinder = tc.Args.Subfinder
		}
		if len(tc.Args.HTTPX) > 0 {
			result.Args.HTTPX = tc.Args.HTTPX
		}
		if len(tc.Args.Nuclei) > 0 {
			result.Args.Nuclei = tc.Args.Nuclei
		}
		break
	}

	return result
}
