package pipeline

import (
	"context"

	"github.com/nao1215/reconchain/internal/model"
)

// Discoverer enumerates subdomains of a target into a file.
type Discoverer interface {
	Run(ctx context.Context, target, outputPath string) model.StageResult
}

// Filterer writes the live hosts of an input file to an output file.
type Filterer interface {
	Run(ctx context.Context, inputFile, outputPath string) model.StageResult
}

// Scanner scans the hosts of an input file and aggregates the findings.
type Scanner interface {
	Run(ctx context.Context, inputFile, findingsPath, severityFilter string) (model.StageResult, model.Aggregate)
}

// DiscoveryStep runs subdomain discovery into RunPaths.Subdomains.
type DiscoveryStep struct {
	discoverer Discoverer
}

// NewDiscoveryStep creates a DiscoveryStep.
func NewDiscoveryStep(d Discoverer) *DiscoveryStep {
	return &DiscoveryStep{discoverer: d}
}

// Name implements Step.
func (s *DiscoveryStep) Name() string {
	return model.StageDiscovery.String()
}

// Do implements Step.
func (s *DiscoveryStep) Do(ctx context.Context, run *model.Run) (model.StageResult, error) {
	result := s.discoverer.Run(ctx, run.Target(), run.Paths.Subdomains)
	run.Subdomains = result.Count
	return result, nil
}

// FilteringStep keeps the hosts of RunPaths.Subdomains that answer HTTP 200.
type FilteringStep struct {
	filterer Filterer
}

// NewFilteringStep creates a FilteringStep.
func NewFilteringStep(f Filterer) *FilteringStep {
	return &FilteringStep{filterer: f}
}

// Name implements Step.
func (s *FilteringStep) Name() string {
	return model.StageFiltering.String()
}

// Do implements Step.
func (s *FilteringStep) Do(ctx context.Context, run *model.Run) (model.StageResult, error) {
	result := s.filterer.Run(ctx, run.Paths.Subdomains, run.Paths.LiveHosts)
	run.LiveHosts = result.Count
	return result, nil
}

// ScanningStep scans RunPaths.LiveHosts with the run's severity filter.
type ScanningStep struct {
	scanner Scanner
}

// NewScanningStep creates a ScanningStep.
func NewScanningStep(sc Scanner) *ScanningStep {
	return &ScanningStep{scanner: sc}
}

// Name implements Step.
func (s *ScanningStep) Name() string {
	return model.StageScanning.String()
}

// Do implements Step.
func (s *ScanningStep) Do(ctx context.Context, run *model.Run) (model.StageResult, error) {
	result, agg := s.scanner.Run(ctx, run.Paths.LiveHosts, run.Paths.Vulnerabilities, run.SeverityFilter)
	run.Vulnerabilities = agg
	return result, nil
}

// Standard returns the three steps of the chain in order.
func Standard(d Discoverer, f Filterer, sc Scanner) []Step {
	return []Step{NewDiscoveryStep(d), NewFilteringStep(f), NewScanningStep(sc)}
}
