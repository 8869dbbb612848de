package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/reconchain/internal/model"
)

// ruleWidth is the width of the section rules.
const ruleWidth = 70

// TimeLayout is the scan time format used in human-readable summaries.
const TimeLayout = "2006-01-02 15:04:05"

// SimpleWriter renders the fixed plain-text summary template.
type SimpleWriter struct {
	baseWriter

	// breakdown adds per-severity lines under the vulnerability count.
	breakdown bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithBreakdown toggles the per-severity lines. Enabled by default.
func WithBreakdown(enabled bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.breakdown = enabled
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		breakdown:  true,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write renders summary.
func (w *SimpleWriter) Write(summary model.Summary) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, summary)
	w.writeResults(&sb, summary)
	w.writeFiles(&sb, summary)

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, summary model.Summary) {
	sb.WriteString("Scan Summary\n")
	sb.WriteString(strings.Repeat("=", ruleWidth))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Target Domain:   %s\n", summary.Target)
	fmt.Fprintf(sb, "Scan Time:       %s\n", summary.StartedAt.Format(TimeLayout))
	if summary.SeverityFilter != "" {
		fmt.Fprintf(sb, "Severity Filter: %s\n", summary.SeverityFilter)
	}
	if summary.Outcome != "" && summary.Outcome != model.OutcomeCompleted {
		fmt.Fprintf(sb, "Status:          %s\n", statusText(summary.Outcome))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeResults(sb *strings.Builder, summary model.Summary) {
	sb.WriteString("Results\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Subdomains Found:  %d\n", summary.Subdomains)
	fmt.Fprintf(sb, "Live Hosts (200):  %d\n", summary.LiveHosts)
	fmt.Fprintf(sb, "Vulnerabilities:   %d\n", summary.Vulnerabilities.Total)

	if w.breakdown && !summary.Vulnerabilities.IsEmpty() {
		for _, sev := range model.Severities() {
			count := summary.Vulnerabilities.Count(sev)
			if count == 0 {
				continue
			}
			fmt.Fprintf(sb, "  %-9s %d\n", sev.String()+":", count)
		}
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeFiles(sb *strings.Builder, summary model.Summary) {
	sb.WriteString("Output Files\n")
	sb.WriteString(strings.Repeat("-", ruleWidth))
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Subdomains:       %s\n", summary.Paths.Subdomains)
	fmt.Fprintf(sb, "Live Hosts:       %s\n", summary.Paths.LiveHosts)
	fmt.Fprintf(sb, "Vulnerabilities:  %s\n", summary.Paths.Vulnerabilities)
	fmt.Fprintf(sb, "Summary:          %s\n", summary.Paths.Summary)
	sb.WriteString("\n")
	fmt.Fprintf(sb, "Scan Directory: %s\n", summary.Paths.RunDir)
}

// statusText describes an outcome for humans.
func statusText(outcome model.Outcome) string {
	switch outcome {
	case model.OutcomeCompleted:
		return "Complete"
	case model.OutcomeNoLiveHosts:
		return "No live hosts (scan skipped)"
	case model.OutcomeInterrupted:
		return "Interrupted (findings discarded)"
	case model.OutcomeDiscoveryFailed:
		return "Discovery failed"
	default:
		return string(outcome)
	}
}
