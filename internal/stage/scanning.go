package stage

import (
	"context"
	"io"
	"log/slog"

	"github.com/nao1215/reconchain/internal/classifier"
	"github.com/nao1215/reconchain/internal/model"
	"github.com/nao1215/reconchain/internal/workspace"
)

// Scanning runs nuclei against the live hosts and classifies its output as it arrives.
type Scanning struct {
	runner   *Runner
	settings settings
	notify   classifier.Notifier
	logger   *slog.Logger
}

// NewScanning creates the scanning stage. notify receives findings and
// progress lines while the scan runs; nil discards them.
func NewScanning(runner *Runner, notify classifier.Notifier, opts ...Option) *Scanning {
	if notify == nil {
		notify = classifier.NopNotifier{}
	}
	return &Scanning{
		runner:   runner,
		settings: newSettings(ToolNuclei, 0, opts),
		notify:   notify,
		logger:   runner.logger,
	}
}

// Command returns the invocation for inputFile, findingsPath and severityFilter.
func (s *Scanning) Command(inputFile, findingsPath, severityFilter string) Command {
	return Command{
		Name: ToolNuclei,
		Path: s.settings.path,
		Args: s.settings.args(
			"-l", inputFile,
			"-severity", severityFilter,
			"-jsonl",
			"-o", findingsPath,
			"-stats",
		),
		Timeout: s.settings.timeout,
	}
}

// Run scans the hosts in inputFile. When inputFile is missing or has no
// non-blank lines no process is started and the result is empty.
//
// Success reflects only that the process was launched and reaped; a scan
// that exits non-zero after reporting findings still counts them. If ctx is
// cancelled the partial aggregate is discarded.
func (s *Scanning) Run(ctx context.Context, inputFile, findingsPath, severityFilter string) (model.StageResult, model.Aggregate) {
	hosts, err := workspace.CountLines(inputFile)
	if err != nil {
		return model.Failed(model.StageScanning, err.Error()), model.Aggregate{}
	}
	if hosts == 0 {
		s.logger.Info("no hosts to scan", "input", inputFile)
		return model.Succeeded(model.StageScanning, 0), model.Aggregate{}
	}

	var agg model.Aggregate
	res := s.runner.Pipe(ctx, s.Command(inputFile, findingsPath, severityFilter),
		func(ctx context.Context, out io.Reader) error {
			var err error
			agg, err = classifier.Stream(ctx, out, s.notify)
			return err
		})

	if res.Canceled {
		s.logger.Warn("scan interrupted, discarding partial results")
		return model.Failed(model.StageScanning, context.Canceled.Error()), model.Aggregate{}
	}
	if !res.Reaped() {
		s.logger.Warn("vulnerability scan failed", "reason", res.Reason())
		return model.Failed(model.StageScanning, res.Reason()), model.Aggregate{}
	}
	if res.ExitCode != 0 {
		s.logger.Warn("vulnerability scanner exited non-zero", "exit_code", res.ExitCode)
	}

	return model.Succeeded(model.StageScanning, agg.Total), agg
}
