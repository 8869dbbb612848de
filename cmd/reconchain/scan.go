package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/nao1215/reconchain/internal/config"
	"github.com/nao1215/reconchain/internal/console"
	"github.com/nao1215/reconchain/internal/database"
	reconlog "github.com/nao1215/reconchain/internal/log"
	"github.com/nao1215/reconchain/internal/metrics"
	"github.com/nao1215/reconchain/internal/model"
	"github.com/nao1215/reconchain/internal/pipeline"
	"github.com/nao1215/reconchain/internal/report"
	"github.com/nao1215/reconchain/internal/stage"
	"github.com/nao1215/reconchain/internal/tor"
	"github.com/nao1215/reconchain/internal/workspace"
)

// exitInterrupted is the exit code when the operator stops a run before the scan stage.
const exitInterrupted = 130

// NewScanCmd creates the scan command.
func NewScanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan TARGET",
		Short: "Run subfinder, httpx and nuclei against a domain",
		Long: `Scan runs the reconnaissance chain against TARGET.

  Step 1: subfinder -d TARGET -all           -> subdomains.txt
  Step 2: httpx -l subdomains.txt -mc 200    -> live_hosts.txt
  Step 3: nuclei -l live_hosts.txt -jsonl    -> vulnerabilities.json

http:// and https:// prefixes and trailing slashes are removed from TARGET.
When subfinder finds nothing the target itself is scanned. The run stops
with exit code 1 if subfinder fails, and skips the scan (exit code 0) if no
host answers HTTP 200.

Examples:
  # Basic scan
  reconchain scan example.com

  # Only critical and high findings
  reconchain scan -s critical,high example.com

  # Custom output directory
  reconchain scan -o /path/to/output example.com

  # Route httpx and nuclei through Tor
  reconchain scan --tor example.com

  # Also write summary.md and summary.json
  reconchain scan --markdown --json example.com`,
		Args: cobra.ExactArgs(1),
		RunE: runScanCmd,
	}

	cmd.Flags().StringP("output", "o", config.DefaultOutputDir,
		"Output directory")
	cmd.Flags().StringP("severity", "s", config.DefaultSeverity,
		"Nuclei severity filter: comma-separated subset of critical,high,medium,low,info")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .reconchain in current or home directory)")

	cmd.Flags().Duration("filter-timeout", config.DefaultFilterTimeout,
		"Time budget of the httpx stage")
	cmd.Flags().Duration("scan-timeout", 0,
		"Time budget of the nuclei stage (0 for no limit)")

	cmd.Flags().String("proxy", "",
		"Proxy URL passed to httpx and nuclei (e.g. socks5://127.0.0.1:9050)")
	cmd.Flags().Bool("tor", false,
		"Start an embedded Tor daemon and use it as proxy for httpx and nuclei")
	cmd.Flags().Duration("tor-timeout", config.DefaultTorStartupTimeout,
		"Timeout for embedded Tor startup")

	cmd.Flags().BoolP("markdown", "m", false,
		"Also write summary.md")
	cmd.Flags().BoolP("json", "j", false,
		"Also write summary.json")
	cmd.Flags().String("metrics-file", "",
		"Write Prometheus text-format metrics to this file")

	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")
	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
	cmd.Flags().Bool("no-color", false,
		"Disable coloured output")

	return cmd
}

func runScanCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := reconlog.NewSecureLogger(cmd.ErrOrStderr(), cfg.Verbose)

	var consoleOpts []console.Option
	if noColor, _ := cmd.Flags().GetBool("no-color"); noColor {
		consoleOpts = append(consoleOpts, console.WithColor(false))
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runScan(ctx, cfg, scanEnv{
		logger: logger,
		out:    console.New(cmd.OutOrStdout(), consoleOpts...),
		now:    time.Now,
		newID:  uuid.NewString,
	})
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig layers defaults, the config file and explicitly set flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Target = args[0]
	cfg.Verbose = getVerboseFlag(cmd)

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		file, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
		cfg.ApplyTarget(file.GetTargetConfig(cfg.Target), file.Tools)
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	flags := cmd.Flags()
	stringFlags := map[string]*string{
		"output":       &cfg.OutputDir,
		"severity":     &cfg.Severity,
		"proxy":        &cfg.Proxy,
		"metrics-file": &cfg.MetricsFile,
		"db-dir":       &cfg.DBDir,
	}
	for name, dst := range stringFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, err
		}
	}

	durationFlags := map[string]*time.Duration{
		"filter-timeout": &cfg.FilterTimeout,
		"scan-timeout":   &cfg.ScanTimeout,
		"tor-timeout":    &cfg.TorStartupTimeout,
	}
	for name, dst := range durationFlags {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetDuration(name); err != nil {
			return nil, err
		}
	}

	boolFlags := map[string]*bool{
		"tor":        &cfg.UseTor,
		"markdown":   &cfg.MarkdownReport,
		"json":       &cfg.JSONReport,
		"no-history": &cfg.NoHistory,
	}
	for name, dst := range boolFlags {
		if *dst, err = flags.GetBool(name); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// scanEnv carries the collaborators of runScan that tests replace.
type scanEnv struct {
	logger *slog.Logger
	out    *console.Console
	now    func() time.Time
	newID  func() string
}

// toolsFromConfig applies configured tool paths to the default tool set.
func toolsFromConfig(cfg *config.Config) []stage.Tool {
	tools := stage.DefaultTools()
	for i := range tools {
		switch tools[i].Name {
		case stage.ToolSubfinder:
			tools[i].Path = cfg.Tools.Subfinder
		case stage.ToolHTTPX:
			tools[i].Path = cfg.Tools.HTTPX
		case stage.ToolNuclei:
			tools[i].Path = cfg.Tools.Nuclei
		}
	}
	return tools
}

// runScan executes one run for cfg.Target.
func runScan(ctx context.Context, cfg *config.Config, env scanEnv) error {
	logger, out := env.logger, env.out
	out.Banner(getVersion())

	statuses, err := stage.CheckTools(toolsFromConfig(cfg))
	out.ToolCheck(statuses)
	if err != nil {
		return err
	}
	toolPaths := stage.Paths(statuses)

	runPaths, identity, err := workspace.Initialize(cfg.Target, cfg.OutputDir, env.now())
	if err != nil {
		return err
	}
	logger.Info("run directory ready", "dir", runPaths.RunDir)

	proxyURL, stopProxy, err := setupProxy(ctx, cfg, identity.Target.String(), logger, out)
	if err != nil {
		return err
	}
	defer stopProxy()

	history := openHistory(cfg, logger, out)
	if history != nil {
		defer history.Close()
	}

	var recorder *metrics.Recorder
	if cfg.MetricsFile != "" {
		if recorder, err = metrics.NewRecorder(); err != nil {
			return err
		}
	}

	runner := stage.NewRunner(stage.WithLogger(logger))
	discovery := stage.NewDiscovery(runner,
		stage.WithPath(toolPaths[stage.ToolSubfinder]),
		stage.WithExtraArgs(cfg.ExtraArgs.Subfinder...),
	)
	filtering := stage.NewFiltering(runner,
		stage.WithPath(toolPaths[stage.ToolHTTPX]),
		stage.WithExtraArgs(cfg.ExtraArgs.HTTPX...),
		stage.WithProxy(proxyURL),
		stage.WithTimeout(cfg.FilterTimeout),
	)
	scanning := stage.NewScanning(runner, out,
		stage.WithPath(toolPaths[stage.ToolNuclei]),
		stage.WithExtraArgs(cfg.ExtraArgs.Nuclei...),
		stage.WithProxy(proxyURL),
		stage.WithTimeout(cfg.ScanTimeout),
	)

	run := model.NewRun(env.newID(), identity, runPaths, cfg.Severity)

	opts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithClock(env.now),
		pipeline.WithFinisher(&runFinisher{
			ctx:     ctx,
			cfg:     cfg,
			history: history,
			logger:  logger,
			out:     out,
		}),
	}
	if recorder != nil {
		opts = append(opts, pipeline.WithObserver(func(_ pipeline.Step, result model.StageResult, elapsed time.Duration) {
			recorder.ObserveStage(run.Target(), result, elapsed)
		}))
	}

	p := pipeline.New(opts...)
	p.AddSteps(announcedSteps(out, discovery, filtering, scanning, cfg.FilterTimeout)...)

	err = p.Execute(ctx, run)

	if recorder != nil {
		writeMetrics(recorder, cfg.MetricsFile, run, err, logger, out)
	}

	switch {
	case errors.Is(err, pipeline.ErrDiscoveryFailed):
		out.Fail("No subdomains found. Exiting...")
		return err
	case pipeline.IsInterrupted(err):
		out.Warn("Interrupted before the scan stage; no summary written")
		return &ExitError{Code: exitInterrupted, Err: err}
	case err != nil:
		return err
	}
	return nil
}

// setupProxy resolves the proxy handed to httpx and nuclei. SOCKS5 proxies,
// including the embedded Tor daemon, are checked before any stage runs.
// The returned stop function must be called when the run ends.
func setupProxy(ctx context.Context, cfg *config.Config, target string, logger *slog.Logger, out *console.Console) (string, func(), error) {
	noop := func() {}

	if cfg.UseTor {
		out.Info("Starting embedded Tor daemon...")
		out.Info("This may take 1-3 minutes while Tor bootstraps and connects to the network.")

		embedded := tor.NewEmbeddedTor(tor.WithStartupTimeout(cfg.TorStartupTimeout))
		if err := embedded.Start(ctx); err != nil {
			return "", noop, fmt.Errorf("failed to start embedded Tor: %w", err)
		}
		stop := func() {
			logger.Info("stopping embedded Tor daemon")
			if err := embedded.Stop(); err != nil {
				logger.Error("failed to stop embedded Tor", "error", err)
			}
		}
		logger.Info("embedded Tor daemon started",
			"socksAddr", embedded.SocksAddr(),
			"controlAddr", embedded.ControlAddr(),
		)

		client, err := embedded.NewClient(config.DefaultProxyCheckTimeout)
		if err != nil {
			stop()
			return "", noop, fmt.Errorf("failed to create Tor client: %w", err)
		}
		if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
			stop()
			return "", noop, fmt.Errorf("embedded Tor proxy check failed: %w", status.Error())
		}
		out.Success("Embedded Tor daemon started, SOCKS proxy: %s", embedded.SocksAddr())
		return embedded.ProxyURL(), stop, nil
	}

	if cfg.Proxy == "" {
		return "", noop, nil
	}

	addr, isSOCKS, err := tor.ParseProxyURL(cfg.Proxy)
	if err != nil {
		return "", noop, err
	}
	if isSOCKS {
		client, err := tor.NewClient(addr, config.DefaultProxyCheckTimeout)
		if err != nil {
			return "", noop, err
		}
		if status := client.CheckConnection(ctx); status != tor.ProxyStatusOK {
			return "", noop, fmt.Errorf("proxy check failed for %s: %w", client.ProxyAddress(), status.Error())
		}
		if err := client.Reachable(ctx, probeAddress(target)); err != nil {
			logger.Warn("target not reachable through proxy", "error", err)
			out.Warn("Target %s is not reachable on port 443 through the proxy", target)
		}
	}
	out.Info("Using proxy: %s", reconlog.RedactURLCredentials(cfg.Proxy))
	return cfg.Proxy, noop, nil
}

// probeAddress returns host:port for the reachability probe of target.
func probeAddress(target string) string {
	host, _, _ := strings.Cut(target, "/")
	if _, _, err := net.SplitHostPort(host); err == nil {
		return host
	}
	return net.JoinHostPort(host, "443")
}

// openHistory opens the history database. A failure disables history for
// this run instead of failing it.
func openHistory(cfg *config.Config, logger *slog.Logger, out *console.Console) *database.HistoryDB {
	if cfg.NoHistory {
		return nil
	}
	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		logger.Warn("history disabled", "dir", cfg.DBDir, "error", err)
		out.Warn("Run history disabled: %v", err)
		return nil
	}
	logger.Info("history database opened", "path", db.Path())
	return db
}

// writeMetrics records the end state of run and writes the textfile.
func writeMetrics(recorder *metrics.Recorder, path string, run *model.Run, runErr error, logger *slog.Logger, out *console.Console) {
	if runErr == nil || errors.Is(runErr, pipeline.ErrDiscoveryFailed) {
		recorder.ObserveSummary(run.Summary())
	}
	if err := recorder.WriteToTextfile(path); err != nil {
		logger.Warn("failed to write metrics", "path", path, "error", err)
		out.Warn("Cannot write metrics: %v", err)
	}
}

// runFinisher writes the summary files and records the run once the
// pipeline reaches its summary state.
type runFinisher struct {
	ctx     context.Context //nolint:containedctx // Finish has no context parameter
	cfg     *config.Config
	history *database.HistoryDB
	logger  *slog.Logger
	out     *console.Console
}

// Finish implements pipeline.Finisher.
func (f *runFinisher) Finish(run *model.Run) error {
	summary := run.Summary()

	if err := report.WriteSummaryFile(summary); err != nil {
		return err
	}

	written, err := report.WriteCompanions(summary, report.Companions{
		Markdown: f.cfg.MarkdownReport,
		JSON:     f.cfg.JSONReport,
		Version:  getVersion(),
	})
	for _, path := range written {
		f.out.Success("Saved to: %s", path)
	}
	if err != nil {
		f.logger.Warn("failed to write summary companion", "error", err)
		f.out.Warn("Cannot write summary companion: %v", err)
	}

	if f.history != nil {
		f.record(summary)
	}

	switch summary.Outcome {
	case model.OutcomeNoLiveHosts:
		f.out.Warn("No live hosts found. Skipping vulnerability scan...")
	case model.OutcomeInterrupted:
		f.out.Warn("Scan interrupted; vulnerabilities are not counted")
	}

	f.out.ScanSummary(summary)
	if summary.Outcome == model.OutcomeCompleted {
		f.out.Done(summary.Paths.Summary)
	} else {
		f.out.Success("Summary saved to: %s", summary.Paths.Summary)
	}
	return nil
}

// record stores the run and compares it with the previous one of the same target.
// The run context may already be cancelled when an interrupted scan is summarized.
func (f *runFinisher) record(summary model.Summary) {
	ctx := context.WithoutCancel(f.ctx)

	previous, err := f.history.LatestRun(ctx, summary.Target, summary.RunID)
	if err != nil {
		f.logger.Warn("failed to read previous run", "target", summary.Target, "error", err)
	}

	if err := f.history.SaveRun(ctx, summary); err != nil {
		f.logger.Warn("failed to save run", "target", summary.Target, "error", err)
		f.out.Warn("Cannot record run history: %v", err)
		return
	}

	if previous == nil || summary.Outcome != model.OutcomeCompleted {
		return
	}

	digest, err := database.FindingsDigest(summary.Paths.Vulnerabilities)
	if err != nil {
		f.logger.Warn("failed to hash findings", "error", err)
		return
	}
	when := previous.StartedAt.Local().Format(report.TimeLayout)
	if digest != "" && digest == previous.FindingsDigest {
		f.out.Info("Findings unchanged since the run of %s", when)
		return
	}
	f.out.Info("Previous run (%s): %d vulnerabilities, now %d",
		when, previous.Vulnerabilities, summary.Vulnerabilities.Total)
}
