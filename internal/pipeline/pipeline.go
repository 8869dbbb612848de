package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/nao1215/reconchain/internal/model"
)

// Step is one stage of the chain.
type Step interface {
	// Do runs the stage for run and records its counts on run.
	// Tool failures are reported through the returned StageResult; an error
	// is returned only for problems outside the tool (for example an
	// unreadable artifact).
	Do(ctx context.Context, run *model.Run) (model.StageResult, error)

	// Name returns the step's name for logging purposes.
	Name() string
}

// Finisher receives the run once the chain has ended in a state that is summarized.
type Finisher interface {
	Finish(run *model.Run) error
}

// FinisherFunc adapts a function to Finisher.
type FinisherFunc func(run *model.Run) error

// Finish implements Finisher.
func (f FinisherFunc) Finish(run *model.Run) error {
	return f(run)
}

// StepObserver is notified after each step. It is used for console output and metrics.
type StepObserver func(step Step, result model.StageResult, elapsed time.Duration)

// Pipeline runs steps in order and applies the short-circuit policy.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// finisher writes the summary.
	finisher Finisher

	// observers are called after each step.
	observers []StepObserver

	logger *slog.Logger
	now    func() time.Time
}

// Option is a function that configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithFinisher sets the summary writer.
func WithFinisher(f Finisher) Option {
	return func(p *Pipeline) {
		p.finisher = f
	}
}

// WithObserver adds a step observer.
func WithObserver(o StepObserver) Option {
	return func(p *Pipeline) {
		p.observers = append(p.observers, o)
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

// New creates a new Pipeline with the given options.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps: make([]Step, 0, 3),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = slog.Default()
	}
	return p
}

// AddStep appends a step to the pipeline.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs the steps for run.
//
// After each step the result decides the next state:
//   - a zero count from discovery ends the run with ErrDiscoveryFailed and no summary;
//   - a zero count from any other stage but the last skips to the summary;
//   - the last stage always proceeds to the summary.
//
// Cancellation before the last stage returns ctx.Err() without a summary.
// Cancellation during the last stage marks the run interrupted, discards its
// aggregate, and still writes the summary.
func (p *Pipeline) Execute(ctx context.Context, run *model.Run) error {
	if len(p.steps) == 0 {
		return ErrNoSteps
	}

	run.Outcome = model.OutcomeCompleted
	last := len(p.steps) - 1

	for i, step := range p.steps {
		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "reason", err)
			return err
		}

		p.logger.Info("executing step", "step", step.Name(), "target", run.Target())

		start := p.now()
		result, err := step.Do(ctx, run)
		run.Record(result)
		p.notify(step, result, p.now().Sub(start))

		if err != nil {
			p.logger.Error("step failed", "step", step.Name(), "target", run.Target(), "error", err)
			return fmt.Errorf("%s: %w", step.Name(), err)
		}

		if i == last {
			if ctx.Err() != nil {
				p.logger.Warn("interrupted, writing partial summary", "step", step.Name())
				run.Outcome = model.OutcomeInterrupted
				run.Vulnerabilities = model.Aggregate{}
			}
			break
		}

		if err := ctx.Err(); err != nil {
			p.logger.Warn("pipeline cancelled", "step", step.Name(), "reason", err)
			return err
		}

		if result.Count > 0 {
			p.logger.Debug("step completed", "step", step.Name(), "count", result.Count)
			continue
		}

		if result.Stage == model.StageDiscovery || i == 0 {
			run.Outcome = model.OutcomeDiscoveryFailed
			p.logger.Error("no subdomains, stopping", "step", step.Name(), "reason", result.Err)
			return ErrDiscoveryFailed
		}

		p.logger.Info("nothing to pass on, skipping to summary", "step", step.Name(), "reason", result.Err)
		run.Outcome = model.OutcomeNoLiveHosts
		break
	}

	return p.finish(run)
}

func (p *Pipeline) finish(run *model.Run) error {
	run.FinishedAt = p.now()
	if p.finisher == nil {
		return nil
	}
	if err := p.finisher.Finish(run); err != nil {
		return fmt.Errorf("failed to write summary: %w", err)
	}
	return nil
}

func (p *Pipeline) notify(step Step, result model.StageResult, elapsed time.Duration) {
	for _, o := range p.observers {
		o(step, result, elapsed)
	}
}

// StepCount returns the number of steps in the pipeline.
func (p *Pipeline) StepCount() int {
	return len(p.steps)
}

// StepNames returns the names of all steps in execution order.
func (p *Pipeline) StepNames() []string {
	names := make([]string, len(p.steps))
	for i, step := range p.steps {
		names[i] = step.Name()
	}
	return names
}

// IsInterrupted reports whether err means the run was stopped by the operator.
func IsInterrupted(err error) bool {
	return errors.Is(err, context.Canceled)
}
