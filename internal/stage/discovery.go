package stage

import (
	"context"
	"log/slog"

	"github.com/nao1215/reconchain/internal/model"
	"github.com/nao1215/reconchain/internal/workspace"
)

// Discovery enumerates subdomains with subfinder.
type Discovery struct {
	runner   *Runner
	settings settings
	logger   *slog.Logger
}

// NewDiscovery creates the discovery stage. A proxy option is ignored:
// subfinder talks to passive sources, not to the target.
func NewDiscovery(runner *Runner, opts ...Option) *Discovery {
	s := newSettings(ToolSubfinder, 0, opts)
	s.proxy = ""
	return &Discovery{runner: runner, settings: s, logger: runner.logger}
}

// Command returns the invocation for target and outputPath.
func (d *Discovery) Command(target, outputPath string) Command {
	return Command{
		Name:    ToolSubfinder,
		Path:    d.settings.path,
		Args:    d.settings.args("-d", target, "-all", "-o", outputPath, "-silent"),
		Timeout: d.settings.timeout,
	}
}

// Run enumerates subdomains of target into outputPath.
//
// A launch failure or non-zero exit yields an unsuccessful result with count 0.
// When the tool succeeds but writes nothing, the target itself is written so
// the next stage always has at least one host; the count is then 1.
func (d *Discovery) Run(ctx context.Context, target, outputPath string) model.StageResult {
	res := d.runner.Run(ctx, d.Command(target, outputPath))
	if !res.Succeeded() {
		d.logger.Warn("subdomain discovery failed", "target", target, "reason", res.Reason(), "output", res.Tail)
		return model.Failed(model.StageDiscovery, res.Reason())
	}

	lines, err := workspace.ReadLines(outputPath)
	if err != nil {
		return model.Failed(model.StageDiscovery, err.Error())
	}

	if len(lines) == 0 {
		d.logger.Info("no subdomains found, using target", "target", target)
		if err := workspace.WriteLines(outputPath, target); err != nil {
			return model.Failed(model.StageDiscovery, err.Error())
		}
		res := model.Succeeded(model.StageDiscovery, 1)
		res.Fallback = true
		return res
	}

	return model.Succeeded(model.StageDiscovery, len(lines))
}
