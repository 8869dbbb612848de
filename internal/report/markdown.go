package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/reconchain/internal/model"
)

// MarkdownWriter outputs the summary in Markdown format, with a mermaid
// pie chart of the severity distribution when there are findings.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the summary in Markdown format.
func (w *MarkdownWriter) Write(summary model.Summary) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, summary)
	w.writeResults(md, summary)
	w.writeFiles(md, summary)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, summary model.Summary) {
	md.H1("Scan Summary: " + summary.Target)
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Target Domain", "`" + summary.Target + "`"},
			{"Scan Time", summary.StartedAt.Format(TimeLayout)},
			{"Severity Filter", summary.SeverityFilter},
			{"Status", w.getStatusText(summary.Outcome)},
		},
	})
	md.PlainText("")
}

func (w *MarkdownWriter) getStatusText(outcome model.Outcome) string {
	switch outcome {
	case model.OutcomeInterrupted:
		return "⚠️ " + statusText(outcome)
	case model.OutcomeNoLiveHosts:
		return "ℹ️ " + statusText(outcome)
	default:
		return "✅ " + statusText(outcome)
	}
}

func (w *MarkdownWriter) writeResults(md *markdown.Markdown, summary model.Summary) {
	agg := summary.Vulnerabilities

	md.H2("Results")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Stage", "Count"},
		Rows: [][]string{
			{"Subdomains Found", strconv.Itoa(summary.Subdomains)},
			{"Live Hosts (200)", strconv.Itoa(summary.LiveHosts)},
			{"Vulnerabilities", strconv.Itoa(agg.Total)},
		},
	})
	md.PlainText("")

	md.H2("Severity Summary")
	md.PlainText("")
	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(agg.Critical)},
			{"🟠 High", strconv.Itoa(agg.High)},
			{"🟡 Medium", strconv.Itoa(agg.Medium)},
			{"🔵 Low", strconv.Itoa(agg.Low)},
			{"⚪ Info", strconv.Itoa(agg.Info)},
			{"❔ Unknown", strconv.Itoa(agg.Unknown)},
			{"**Total**", "**" + strconv.Itoa(agg.Total) + "**"},
		},
	})
	md.PlainText("")

	if !agg.IsEmpty() {
		w.writePieChart(md, agg)
	}
	w.writeAlert(md, agg)
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, agg model.Aggregate) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Finding Severity Distribution"),
		piechart.WithShowData(true),
	)

	for _, sev := range model.Severities() {
		if count := agg.Count(sev); count > 0 {
			chart.LabelAndIntValue(sev.String(), uint64(count)) //nolint:gosec // counts are non-negative
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, agg model.Aggregate) {
	switch {
	case agg.Critical > 0:
		md.Cautionf("%d critical finding(s) require immediate attention.", agg.Critical)
	case agg.High > 0:
		md.Warningf("%d high severity finding(s) should be addressed.", agg.High)
	case agg.Medium > 0:
		md.Importantf("%d medium severity finding(s) found.", agg.Medium)
	case agg.Total > 0:
		md.Note("Only low severity and informational findings detected.")
	default:
		md.Tip("No vulnerabilities detected for the selected severities.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeFiles(md *markdown.Markdown, summary model.Summary) {
	md.H2("Output Files")
	md.PlainText("")
	md.BulletList(
		"Subdomains: `"+summary.Paths.Subdomains+"`",
		"Live Hosts: `"+summary.Paths.LiveHosts+"`",
		"Vulnerabilities: `"+summary.Paths.Vulnerabilities+"`",
		"Scan Directory: `"+summary.Paths.RunDir+"`",
	)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [reconchain](https://github.com/nao1215/reconchain)*")
}
