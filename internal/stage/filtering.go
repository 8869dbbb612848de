package stage

import (
	"context"
	"log/slog"

	"github.com/nao1215/reconchain/internal/model"
	"github.com/nao1215/reconchain/internal/workspace"
)

// Filtering keeps the hosts that answer HTTP 200, using httpx.
type Filtering struct {
	runner   *Runner
	settings settings
	logger   *slog.Logger
}

// NewFiltering creates the filtering stage with a DefaultFilterTimeout budget.
func NewFiltering(runner *Runner, opts ...Option) *Filtering {
	return &Filtering{
		runner:   runner,
		settings: newSettings(ToolHTTPX, DefaultFilterTimeout, opts),
		logger:   runner.logger,
	}
}

// Command returns the invocation for inputFile and outputPath.
func (f *Filtering) Command(inputFile, outputPath string) Command {
	return Command{
		Name:    ToolHTTPX,
		Path:    f.settings.path,
		Args:    f.settings.args("-l", inputFile, "-mc", "200", "-o", outputPath, "-silent"),
		Timeout: f.settings.timeout,
	}
}

// Run probes the hosts in inputFile and writes the live ones to outputPath.
// When the budget elapses the process is killed and the result carries
// model.ErrTimeout. A missing or empty output file counts as zero live hosts.
func (f *Filtering) Run(ctx context.Context, inputFile, outputPath string) model.StageResult {
	res := f.runner.Run(ctx, f.Command(inputFile, outputPath))
	if res.TimedOut {
		f.logger.Warn("live host filtering timed out", "timeout", f.settings.timeout)
		return model.Failed(model.StageFiltering, model.ErrTimeout)
	}
	if !res.Succeeded() {
		f.logger.Warn("live host filtering failed", "reason", res.Reason(), "output", res.Tail)
		return model.Failed(model.StageFiltering, res.Reason())
	}

	count, err := workspace.CountLines(outputPath)
	if err != nil {
		return model.Failed(model.StageFiltering, err.Error())
	}
	return model.Succeeded(model.StageFiltering, count)
}
