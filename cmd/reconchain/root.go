package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

// ExitError carries a process exit code other than 1 out of a command.
type ExitError struct {
	Code int
	Err  error
}

// Error implements error.
func (e *ExitError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("exit status %d", e.Code)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewRootCmd creates the root command for reconchain.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reconchain",
		Short: "Chain subfinder, httpx and nuclei against a domain",
		Long: `reconchain runs a three-stage reconnaissance chain against one domain:

  1. subfinder  enumerates subdomains            -> subdomains.txt
  2. httpx      keeps hosts answering HTTP 200   -> live_hosts.txt
  3. nuclei     scans the live hosts             -> vulnerabilities.json

Findings are classified by severity while nuclei runs, and summary.txt is
written to results/<domain>/<YYYYMMDD_HHMMSS>/ when the chain ends.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	cmd.AddCommand(NewScanCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command and exits with the mapped exit code.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the CLI with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.Execute()
	if err == nil {
		return 0
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Err != nil {
			fmt.Fprintln(stderr, exitErr.Err)
		}
		return exitErr.Code
	}
	fmt.Fprintln(stderr, err)
	return 1
}
