package main

import (
	"context"
	"strings"
	"time"

	"github.com/nao1215/reconchain/internal/console"
	reconlog "github.com/nao1215/reconchain/internal/log"
	"github.com/nao1215/reconchain/internal/model"
	"github.com/nao1215/reconchain/internal/pipeline"
	"github.com/nao1215/reconchain/internal/stage"
	"github.com/nao1215/reconchain/internal/workspace"
)

// announcedStep prints a stage banner before the wrapped step runs and a
// short report after it returns.
type announcedStep struct {
	pipeline.Step

	stage  model.Stage
	title  string
	out    *console.Console
	intro  func(run *model.Run)
	report func(ctx context.Context, run *model.Run, result model.StageResult)
}

// Do implements pipeline.Step.
func (s *announcedStep) Do(ctx context.Context, run *model.Run) (model.StageResult, error) {
	s.out.StageHeader(s.stage, s.title)
	if s.intro != nil {
		s.intro(run)
	}
	result, err := s.Step.Do(ctx, run)
	if err == nil && s.report != nil {
		s.report(ctx, run, result)
	}
	return result, err
}

// commandLine renders c for the operator with proxy credentials masked.
func commandLine(c stage.Command) string {
	parts := append([]string{c.Name}, c.Args...)
	return reconlog.RedactURLCredentials(strings.Join(parts, " "))
}

// announcedSteps wraps the three stages with console output.
func announcedSteps(out *console.Console, d *stage.Discovery, f *stage.Filtering, sc *stage.Scanning, filterTimeout time.Duration) []pipeline.Step {
	return []pipeline.Step{
		&announcedStep{
			Step:  pipeline.NewDiscoveryStep(d),
			stage: model.StageDiscovery,
			title: "Subfinder - Subdomain Enumeration",
			out:   out,
			intro: func(run *model.Run) {
				out.Running(commandLine(d.Command(run.Target(), run.Paths.Subdomains)))
			},
			report: func(_ context.Context, run *model.Run, result model.StageResult) {
				reportDiscovery(out, run, result)
			},
		},
		&announcedStep{
			Step:  pipeline.NewFilteringStep(f),
			stage: model.StageFiltering,
			title: "HTTPx - Filter Live Hosts (Status 200)",
			out:   out,
			intro: func(run *model.Run) {
				out.Running(commandLine(f.Command(run.Paths.Subdomains, run.Paths.LiveHosts)))
				out.Info("Filtering only status code 200...")
			},
			report: func(_ context.Context, run *model.Run, result model.StageResult) {
				reportFiltering(out, filterTimeout, run, result)
			},
		},
		&announcedStep{
			Step:  pipeline.NewScanningStep(sc),
			stage: model.StageScanning,
			title: "Nuclei - Vulnerability Scanning",
			out:   out,
			intro: func(run *model.Run) {
				out.Running(commandLine(sc.Command(run.Paths.LiveHosts, run.Paths.Vulnerabilities, run.SeverityFilter)))
				out.Info("Severity filter: %s", run.SeverityFilter)
				out.Info("This may take several minutes...")
			},
			report: func(ctx context.Context, run *model.Run, result model.StageResult) {
				reportScanning(ctx, out, run, result)
			},
		},
	}
}

func reportDiscovery(out *console.Console, run *model.Run, result model.StageResult) {
	if !result.Success {
		out.Fail("Subfinder failed: %s", result.Err)
		return
	}
	lines, err := workspace.ReadLines(run.Paths.Subdomains)
	if err != nil {
		out.Warn("Cannot read %s: %v", run.Paths.Subdomains, err)
		return
	}
	if result.Fallback {
		out.Warn("No subdomains found, using main domain")
	}
	out.Success("Found: %d subdomain(s)", result.Count)
	out.Success("Saved to: %s", run.Paths.Subdomains)
	out.Sample("Sample subdomains", lines, console.SubdomainSampleSize, "•")
}

func reportFiltering(out *console.Console, timeout time.Duration, run *model.Run, result model.StageResult) {
	switch {
	case result.TimedOut():
		out.Warn("HTTPx timeout after %s", timeout)
		return
	case !result.Success:
		out.Fail("HTTPx failed: %s", result.Err)
		return
	case result.Count == 0:
		out.Warn("No live hosts with status 200 found")
		return
	}

	lines, err := workspace.ReadLines(run.Paths.LiveHosts)
	if err != nil {
		out.Warn("Cannot read %s: %v", run.Paths.LiveHosts, err)
		return
	}
	out.Success("Found: %d live host(s) with status 200", result.Count)
	out.Success("Saved to: %s", run.Paths.LiveHosts)
	out.Sample("Live hosts", lines, console.LiveHostSampleSize, "✓")
}

func reportScanning(ctx context.Context, out *console.Console, run *model.Run, result model.StageResult) {
	if ctx.Err() != nil {
		out.Warn("Scan interrupted by user")
		return
	}
	if !result.Success {
		out.Fail("Nuclei failed: %s", result.Err)
	}
	out.SeverityBreakdown(run.Vulnerabilities)
	if !run.Vulnerabilities.IsEmpty() {
		out.Success("Saved to: %s", run.Paths.Vulnerabilities)
	}
}
