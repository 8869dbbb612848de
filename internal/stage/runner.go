package stage

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
)

// DefaultWaitDelay bounds how long Runner waits for output pipes to drain
// after the process has been killed.
const DefaultWaitDelay = 2 * time.Second

// tailLines is the number of trailing output lines kept in Result.Tail.
const tailLines = 5

// errConsumerDone closes the read side of the pipe once the consumer returns.
var errConsumerDone = errors.New("output consumer finished")

// Command describes one invocation of an external tool.
type Command struct {
	// Name is used in logs and error messages.
	Name string

	// Path is the resolved executable.
	Path string

	// Args excludes the executable itself.
	Args []string

	// Timeout is the time budget. Zero means no budget beyond the caller's context.
	Timeout time.Duration
}

// String returns the command line for logging.
func (c Command) String() string {
	return strings.TrimSpace(c.Path + " " + strings.Join(c.Args, " "))
}

// Result is what a Runner observed about one process.
type Result struct {
	// ExitCode is the process exit status, or -1 when it was not started or was killed.
	ExitCode int

	// Duration is the wall time from start to reap.
	Duration time.Duration

	// TimedOut is set when the command's own budget elapsed.
	TimedOut bool

	// Canceled is set when the caller's context was cancelled.
	Canceled bool

	// Err holds launch or wait failures other than a non-zero exit.
	Err error

	// ReadErr is the error returned by the output consumer, if any.
	ReadErr error

	// Tail holds the last lines of output seen by Run.
	Tail []string
}

// Succeeded reports whether the process started, was not killed, and exited zero.
func (r Result) Succeeded() bool {
	return r.Err == nil && !r.TimedOut && !r.Canceled && r.ExitCode == 0
}

// Reaped reports whether the process was started and waited for without a
// launch-level error, regardless of its exit status.
func (r Result) Reaped() bool {
	return r.Err == nil
}

// Reason describes why the command did not succeed.
func (r Result) Reason() string {
	switch {
	case r.Err != nil:
		return r.Err.Error()
	case r.TimedOut:
		return "timeout"
	case r.Canceled:
		return context.Canceled.Error()
	case r.ExitCode != 0:
		return fmt.Sprintf("%s (exit code %d)", ErrNonZeroExit, r.ExitCode)
	default:
		return ""
	}
}

// Runner launches external commands.
type Runner struct {
	logger    *slog.Logger
	waitDelay time.Duration
}

// RunnerOption configures a Runner.
type RunnerOption func(*Runner)

// WithLogger sets the logger for process events.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// WithWaitDelay sets how long to wait for output pipes after the process is killed.
func WithWaitDelay(d time.Duration) RunnerOption {
	return func(r *Runner) {
		r.waitDelay = d
	}
}

// NewRunner creates a Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		logger:    slog.Default(),
		waitDelay: DefaultWaitDelay,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run executes c to completion, logging each output line at debug level.
// The last few lines are kept in Result.Tail for error reporting.
func (r *Runner) Run(ctx context.Context, c Command) Result {
	var tail []string
	res := r.Stream(ctx, c, func(line string) {
		r.logger.Debug("tool output", "tool", c.Name, "line", line)
		tail = append(tail, line)
		if len(tail) > tailLines {
			tail = tail[1:]
		}
	})
	res.Tail = tail
	return res
}

// Stream executes c and calls onLine for every non-empty output line as it
// is produced. Stdout and stderr are merged.
func (r *Runner) Stream(ctx context.Context, c Command, onLine func(line string)) Result {
	return r.Pipe(ctx, c, func(ctx context.Context, out io.Reader) error {
		reader := bufio.NewReader(out)
		for {
			line, err := reader.ReadString('\n')
			if line = strings.TrimRight(line, "\r\n"); strings.TrimSpace(line) != "" {
				onLine(line)
			}
			if err != nil {
				if errors.Is(err, io.EOF) {
					return nil
				}
				return err
			}
		}
	})
}

// Pipe executes c and hands its merged stdout and stderr to consume while
// the process runs. The process is reaped after consume returns; if consume
// returns early the process is killed.
func (r *Runner) Pipe(ctx context.Context, c Command, consume func(ctx context.Context, out io.Reader) error) Result {
	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()
	if c.Timeout > 0 {
		var cancelTimeout context.CancelFunc
		runCtx, cancelTimeout = context.WithTimeout(runCtx, c.Timeout)
		defer cancelTimeout()
	}

	pr, pw := io.Pipe()
	cmd := exec.CommandContext(runCtx, c.Path, c.Args...)
	// The same writer for both streams makes exec serialize the writes.
	cmd.Stdout = pw
	cmd.Stderr = pw
	cmd.WaitDelay = r.waitDelay

	r.logger.Debug("starting tool", "tool", c.Name, "command", c.String(), "timeout", c.Timeout)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		_ = pw.Close()
		_ = pr.Close()
		r.logger.Warn("failed to start tool", "tool", c.Name, "error", err)
		return Result{
			ExitCode: -1,
			Err:      fmt.Errorf("%w: %s: %w", ErrLaunch, c.Name, err),
		}
	}

	var waitErr, readErr error
	var killedByDeadline bool
	var g errgroup.Group
	g.Go(func() error {
		waitErr = cmd.Wait()
		// A process that exited on its own is never a timeout, even if the
		// budget runs out while its output is still being consumed.
		killedByDeadline = waitErr != nil && errors.Is(runCtx.Err(), context.DeadlineExceeded)
		_ = pw.Close()
		return nil
	})
	g.Go(func() error {
		readErr = consume(ctx, pr)
		// Unblock the process writer and stop the process if it is still running.
		_ = pr.CloseWithError(errConsumerDone)
		if readErr != nil {
			cancelRun()
		}
		return nil
	})
	_ = g.Wait()

	res := Result{
		ExitCode: -1,
		Duration: time.Since(start),
		ReadErr:  readErr,
	}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}

	switch {
	case ctx.Err() != nil:
		res.Canceled = true
	case killedByDeadline:
		res.TimedOut = true
	}

	if waitErr != nil && !res.Canceled && !res.TimedOut {
		var exitErr *exec.ExitError
		if !errors.As(waitErr, &exitErr) && !errors.Is(waitErr, exec.ErrWaitDelay) && readErr == nil {
			res.Err = fmt.Errorf("failed to wait for %s: %w", c.Name, waitErr)
		}
	}

	r.logger.Debug("tool finished",
		"tool", c.Name,
		"exit_code", res.ExitCode,
		"duration", res.Duration,
		"timed_out", res.TimedOut,
		"canceled", res.Canceled,
	)
	return res
}
