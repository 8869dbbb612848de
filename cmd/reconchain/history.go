package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/reconchain/internal/config"
	"github.com/nao1215/reconchain/internal/database"
	"github.com/nao1215/reconchain/internal/model"
	"github.com/nao1215/reconchain/internal/report"
)

const noFindingsMessage = "No findings"

// NewHistoryCmd creates the history command.
// This command lists runs recorded in the history database.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [TARGET]",
		Short: "Show recorded runs",
		Long: `History lists runs recorded by 'reconchain scan'.

Without TARGET it lists every scanned target. With TARGET it lists the runs
of that target, newest first. A registrable domain such as example.com also
lists runs of its subdomains.

Examples:
  # List scanned targets
  reconchain history

  # List runs of a target
  reconchain history example.com

  # Show one run in JSON
  reconchain history --id 3f1c... --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().String("db-dir", config.XDGDataDir(),
		"Directory of the history database")
	cmd.Flags().String("id", "",
		"Show a single run by ID")
	cmd.Flags().BoolP("json", "j", false,
		"Output in JSON format")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	runID, err := cmd.Flags().GetString("id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	switch {
	case runID != "":
		rec, err := db.GetRun(ctx, runID)
		if err != nil {
			return err
		}
		if jsonOutput {
			return writeJSON(out, rec)
		}
		printRun(out, rec)
		return nil
	case len(args) == 0:
		return listTargets(ctx, out, db, jsonOutput)
	default:
		return listRuns(ctx, out, db, model.NormalizeTarget(args[0]), jsonOutput)
	}
}

// listTargets lists every target that has at least one recorded run.
func listTargets(ctx context.Context, out io.Writer, db *database.HistoryDB, jsonOutput bool) error {
	targets, err := db.ListTargets(ctx)
	if err != nil {
		return err
	}
	if jsonOutput {
		if targets == nil {
			targets = []string{}
		}
		return writeJSON(out, targets)
	}

	if len(targets) == 0 {
		fmt.Fprintln(out, "No scanned targets found in the database.")
		fmt.Fprintln(out, "\nUse 'reconchain scan <domain>' to scan a target.")
		return nil
	}

	fmt.Fprintf(out, "Scanned targets (%d):\n\n", len(targets))
	for _, target := range targets {
		fmt.Fprintf(out, "  • %s\n", target)
	}
	fmt.Fprintln(out, "\nUse 'reconchain history <domain>' to see the runs of a target.")
	return nil
}

// listRuns lists the runs of target in a table.
func listRuns(ctx context.Context, out io.Writer, db *database.HistoryDB, target string, jsonOutput bool) error {
	records, err := db.History(ctx, target)
	if err != nil {
		return err
	}
	if jsonOutput {
		if records == nil {
			records = []database.RunRecord{}
		}
		return writeJSON(out, records)
	}

	if len(records) == 0 {
		fmt.Fprintf(out, "No run history found for %s\n", target)
		return nil
	}

	fmt.Fprintf(out, "Run history for %s (%d runs):\n\n", target, len(records))
	fmt.Fprintf(out, "  %-36s  %-19s  %-24s  %-15s  %5s  %4s  %s\n",
		"ID", "Date", "Target", "Outcome", "Subs", "Live", "Risk Summary")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 130))
	for _, rec := range records {
		fmt.Fprintf(out, "  %-36s  %-19s  %-24s  %-15s  %5d  %4d  %s\n",
			rec.ID,
			rec.StartedAt.Local().Format(report.TimeLayout),
			rec.Target,
			rec.Outcome,
			rec.Subdomains,
			rec.LiveHosts,
			formatRiskSummary(rec.RiskSummary),
		)
	}
	fmt.Fprintln(out, "\nUse 'reconchain history --id <id>' to see one run.")
	return nil
}

// printRun prints every stored field of rec.
func printRun(out io.Writer, rec *database.RunRecord) {
	fmt.Fprintf(out, "Run:              %s\n", rec.ID)
	fmt.Fprintf(out, "Target:           %s\n", rec.Target)
	fmt.Fprintf(out, "Started:          %s\n", rec.StartedAt.Local().Format(report.TimeLayout))
	if !rec.FinishedAt.IsZero() {
		fmt.Fprintf(out, "Finished:         %s\n", rec.FinishedAt.Local().Format(report.TimeLayout))
	}
	fmt.Fprintf(out, "Outcome:          %s\n", rec.Outcome)
	fmt.Fprintf(out, "Severity Filter:  %s\n", rec.SeverityFilter)
	fmt.Fprintf(out, "Subdomains:       %d\n", rec.Subdomains)
	fmt.Fprintf(out, "Live Hosts:       %d\n", rec.LiveHosts)
	fmt.Fprintf(out, "Vulnerabilities:  %d (%s)\n", rec.Vulnerabilities, formatRiskSummary(rec.RiskSummary))
	fmt.Fprintf(out, "Directory:        %s\n", rec.RunDir)
	if rec.FindingsDigest != "" {
		fmt.Fprintf(out, "Findings SHA3:    %s\n", rec.FindingsDigest)
	}
}

// formatRiskSummary formats the risk summary map into a human-readable string.
func formatRiskSummary(summary map[string]int) string {
	if summary == nil {
		return "N/A"
	}

	var parts []string
	for _, s := range model.Severities() {
		if v := summary[s.Label()]; v > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", s.String()[:1], v))
		}
	}
	if len(parts) == 0 {
		return noFindingsMessage
	}
	return strings.Join(parts, " ")
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
