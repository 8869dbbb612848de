// Package console prints operator-facing progress with coloured markers.
//
// Diagnostics go through slog; this package is only for what the operator
// watches while a scan runs. A Console is safe for concurrent use because the
// scanner's findings arrive on the output-consumer goroutine.
package console

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"

	"github.com/nao1215/reconchain/internal/classifier"
	"github.com/nao1215/reconchain/internal/model"
	"github.com/nao1215/reconchain/internal/stage"
)

var _ classifier.Notifier = (*Console)(nil)

const (
	ruleWidth = 60

	// SubdomainSampleSize is how many subdomains are shown after discovery.
	SubdomainSampleSize = 5
	// LiveHostSampleSize is how many live hosts are shown after filtering.
	LiveHostSampleSize = 10
)

// Console writes coloured progress lines to an io.Writer.
type Console struct {
	mu  sync.Mutex
	out io.Writer

	header  *color.Color
	info    *color.Color
	success *color.Color
	warn    *color.Color
	fail    *color.Color
	bold    *color.Color
}

// Option configures a Console.
type Option func(*Console)

// WithColor forces colour on or off regardless of terminal detection.
func WithColor(enabled bool) Option {
	return func(c *Console) {
		for _, col := range c.palette() {
			if enabled {
				col.EnableColor()
			} else {
				col.DisableColor()
			}
		}
	}
}

// New creates a Console writing to out.
func New(out io.Writer, opts ...Option) *Console {
	c := &Console{
		out:     out,
		header:  color.New(color.FgMagenta, color.Bold),
		info:    color.New(color.FgCyan),
		success: color.New(color.FgGreen),
		warn:    color.New(color.FgYellow),
		fail:    color.New(color.FgRed, color.Bold),
		bold:    color.New(color.FgGreen, color.Bold),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Console) palette() []*color.Color {
	return []*color.Color{c.header, c.info, c.success, c.warn, c.fail, c.bold}
}

func (c *Console) println(col *color.Color, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = col.Fprintf(c.out, format, args...)
	_, _ = fmt.Fprintln(c.out)
}

// Banner prints the program banner.
func (c *Console) Banner(version string) {
	rule := strings.Repeat("=", ruleWidth)
	c.println(c.header, "%s", rule)
	c.println(c.header, "  reconchain %s", version)
	c.println(c.header, "  subfinder -> httpx -> nuclei")
	c.println(c.header, "%s", rule)
}

// ToolCheck prints one line per tool and an install hint for each missing one.
func (c *Console) ToolCheck(statuses []stage.ToolStatus) {
	c.Info("Checking required tools...")
	var missing []stage.ToolStatus
	for _, s := range statuses {
		if s.Found() {
			c.println(c.success, "[✓] %s", s.Tool.Name)
			continue
		}
		c.println(c.fail, "[✗] %s not found", s.Tool.Name)
		missing = append(missing, s)
	}
	if len(missing) == 0 {
		return
	}
	names := make([]string, 0, len(missing))
	for _, s := range missing {
		names = append(names, s.Tool.Name)
	}
	c.println(c.fail, "[!] Missing tools: %s", strings.Join(names, ", "))
	for _, s := range missing {
		if s.Tool.InstallHint != "" {
			c.println(c.warn, "[!] Install: %s", s.Tool.InstallHint)
		}
	}
}

// StageHeader prints the banner that opens a stage.
func (c *Console) StageHeader(st model.Stage, title string) {
	rule := strings.Repeat("=", ruleWidth)
	c.println(c.header, "")
	c.println(c.header, "%s", rule)
	c.println(c.header, "[STEP %d] %s", int(st), title)
	c.println(c.header, "%s", rule)
}

// Running echoes the command line about to be executed.
func (c *Console) Running(cmd string) {
	c.println(c.info, "[*] Running: %s", cmd)
}

// Info prints a neutral progress line.
func (c *Console) Info(format string, args ...any) {
	c.println(c.info, "[*] "+format, args...)
}

// Success prints a positive result line.
func (c *Console) Success(format string, args ...any) {
	c.println(c.success, "[+] "+format, args...)
}

// Warn prints a non-fatal problem.
func (c *Console) Warn(format string, args ...any) {
	c.println(c.warn, "[!] "+format, args...)
}

// Fail prints a fatal problem.
func (c *Console) Fail(format string, args ...any) {
	c.println(c.fail, "[!] "+format, args...)
}

// Sample prints at most limit items under title, then a count of the rest.
func (c *Console) Sample(title string, items []string, limit int, bullet string) {
	if len(items) == 0 {
		return
	}
	c.println(c.info, "")
	c.println(c.info, "[*] %s:", title)
	shown := items
	if limit > 0 && len(items) > limit {
		shown = items[:limit]
	}
	for _, item := range shown {
		c.println(c.info, "    %s %s", bullet, item)
	}
	if rest := len(items) - len(shown); rest > 0 {
		c.println(c.info, "    ... and %d more", rest)
	}
}

// Finding prints one classified record as it arrives.
func (c *Console) Finding(f model.Finding) {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, _ = c.severityColor(f.Severity).Fprintf(c.out, "[%s] %s", f.SeverityText, f.Name)
	_, _ = fmt.Fprintln(c.out)
	_, _ = c.info.Fprintf(c.out, "    -> %s", f.Target)
	_, _ = fmt.Fprintln(c.out)
}

// Progress echoes a scanner statistics line.
func (c *Console) Progress(line string) {
	c.println(c.info, "[*] %s", line)
}

// SeverityBreakdown prints the per-severity block after scanning.
// Severities with no findings are left out.
func (c *Console) SeverityBreakdown(agg model.Aggregate) {
	if agg.IsEmpty() {
		c.Info("No vulnerabilities found")
		return
	}
	rule := strings.Repeat("=", ruleWidth)
	c.println(c.success, "")
	c.println(c.success, "%s", rule)
	c.println(c.success, "[+] Vulnerability Summary:")
	for _, sev := range model.Severities() {
		n := agg.Count(sev)
		if n == 0 {
			continue
		}
		c.println(c.severityColor(sev), "    %s: %d", sev, n)
	}
	c.println(c.success, "    TOTAL: %d", agg.Total)
	c.println(c.success, "%s", rule)
}

// ScanSummary prints the closing counts of a run.
func (c *Console) ScanSummary(s model.Summary) {
	rule := strings.Repeat("=", ruleWidth)
	c.println(c.header, "")
	c.println(c.header, "%s", rule)
	c.println(c.header, "[*] Scan Summary")
	c.println(c.header, "%s", rule)
	c.Info("Domain: %s", s.Target)
	c.Info("Subdomains: %d", s.Subdomains)
	c.Info("Live Hosts: %d", s.LiveHosts)
	c.Info("Vulnerabilities: %d", s.Vulnerabilities.Total)
}

// Done prints the closing line.
func (c *Console) Done(summaryPath string) {
	if summaryPath != "" {
		c.Success("Summary saved to: %s", summaryPath)
	}
	c.println(c.bold, "[✓] Scan completed successfully!")
}

func (c *Console) severityColor(s model.Severity) *color.Color {
	switch s {
	case model.SeverityCritical, model.SeverityHigh:
		return c.fail
	case model.SeverityMedium:
		return c.warn
	case model.SeverityLow:
		return c.info
	default:
		return c.success
	}
}
