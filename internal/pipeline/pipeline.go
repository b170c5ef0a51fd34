package pipeline

import (
	"context"
	"log/slog"

	applog "github.com/appaudit/appaudit/internal/log"
	"github.com/appaudit/appaudit/internal/model"
)

// Step defines the interface that all pipeline steps must implement.
// Steps are executed in sequence, with each step receiving the accumulated
// run report from previous steps.
//
// Design decision: We use an interface rather than function types because:
// 1. It allows steps to carry configuration state
// 2. It provides a Name() method for logging and debugging
// 3. It's more extensible for future features (e.g., priority, dependencies)
type Step interface {
	// Do executes the pipeline step.
	// It receives the context for cancellation, and the run report to modify.
	// Returns an error if the step fails critically; non-critical errors
	// (artifact write failures) should be recorded in the report and
	// return nil.
	Do(ctx context.Context, run *model.RunReport) error

	// Name returns the step's name for logging purposes.
	Name() string
}

// Pipeline orchestrates the execution of multiple steps.
// It maintains a list of steps and executes them in order.
type Pipeline struct {
	// steps contains the ordered list of steps to execute.
	steps []Step

	// logger is used for structured logging during execution.
	logger *slog.Logger

	// continueOnError determines whether to continue executing steps
	// after one fails. If false, the pipeline stops on first error.
	continueOnError bool
}

// Option is a function that configures a Pipeline.
// This follows the functional options pattern for clean API design.
type Option func(*Pipeline)

// WithLogger sets a custom logger for the pipeline.
// If not set, slog.Default() is used.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		p.logger = logger
	}
}

// WithContinueOnError configures the pipeline to continue execution even
// when a step returns an error.
//
// Design decision: The default is to stop, because the only steps that
// return errors are the ingestion ones, and an ingestion failure leaves
// nothing for later steps to work with. Artifact steps isolate their own
// failures and never trip this policy.
func WithContinueOnError(continueOnError bool) Option {
	return func(p *Pipeline) {
		p.continueOnError = continueOnError
	}
}

// New creates a new Pipeline with the given options.
// Steps should be added using AddStep after creation.
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		steps:           make([]Step, 0),
		continueOnError: false,
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
// Steps are executed in the order they are added.
func (p *Pipeline) AddStep(step Step) {
	p.steps = append(p.steps, step)
}

// AddSteps appends multiple steps to the pipeline.
func (p *Pipeline) AddSteps(steps ...Step) {
	p.steps = append(p.steps, steps...)
}

// Execute runs all pipeline steps in sequence.
// It respects context cancellation and logs each step's execution.
// Before each step, the step's name is stored in the context as the
// current stage so every log record identifies where it came from.
//
// Design decision: We check context.Done() before each step rather than
// during, because steps are short and synchronous. This allows graceful
// exit between steps while still respecting cancellation.
//
// Returns the first error encountered if continueOnError is false,
// or nil if all steps complete.
func (p *Pipeline) Execute(ctx context.Context, run *model.RunReport) error {
	for _, step := range p.steps {
		select {
		case <-ctx.Done():
			p.logger.Warn("pipeline cancelled",
				"step", step.Name(),
				"source", run.Source,
				"reason", ctx.Err(),
			)
			return ctx.Err()
		default:
			// Continue with execution
		}

		stepCtx := applog.WithStage(ctx, step.Name())

		p.logger.InfoContext(stepCtx, "executing step",
			"source", run.Source,
		)

		if err := step.Do(stepCtx, run); err != nil {
			p.logger.ErrorContext(stepCtx, "step failed",
				"source", run.Source,
				"error", err,
			)

			if !p.continueOnError {
				return err
			}
		} else {
			p.logger.DebugContext(stepCtx, "step completed",
				"source", run.Source,
			)
		}

		run.PerformedSteps = append(run.PerformedSteps, step.Name())
	}

	return nil
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
