// Package executor replays flow documents against a device bridge.
package executor

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/rocketplan/uiflow/pkg/core"
	"github.com/rocketplan/uiflow/pkg/flow"
	"github.com/rocketplan/uiflow/pkg/logger"
)

// Config configures the flow runner.
type Config struct {
	// Lookup resolves ${NAME} references in input values. Nil means no
	// variables are set, so only inline defaults apply.
	Lookup flow.LookupFunc

	// Sleep implements wait steps. Nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error

	// Out receives operator-facing progress lines ([info], [step N], [warn]).
	Out io.Writer

	// Live progress callbacks
	OnStepStart    func(idx int, desc string)
	OnStepComplete func(idx int, desc string, status core.StepStatus, durationMs int64, msg string)
}

// RunResult contains the outcome of one flow run.
type RunResult struct {
	ID         string
	State      core.FlowState
	StepsTotal int
	StepsRun   int
	Warnings   int
	Duration   time.Duration
	Err        error // set when State is Aborted
}

// Runner drives one flow at a time against a single device.
type Runner struct {
	config Config
	bridge core.Bridge

	mu    sync.Mutex
	state core.FlowState
}

// New creates a new Runner.
func New(bridge core.Bridge, cfg Config) *Runner {
	if cfg.Sleep == nil {
		cfg.Sleep = sleepContext
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	return &Runner{
		config: cfg,
		bridge: bridge,
		state:  core.StateIdle,
	}
}

// State returns the state of the current or most recent run.
func (r *Runner) State() core.FlowState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Runner) setState(s core.FlowState) {
	r.mu.Lock()
	r.state = s
	r.mu.Unlock()
}

// RunFile checks connectivity, parses the flow at path and runs it.
func (r *Runner) RunFile(ctx context.Context, path string) *RunResult {
	return r.run(ctx, path, func() (*flow.Flow, error) {
		return flow.ParseFile(path)
	})
}

// RunDocument is RunFile for an in-memory document. sourcePath anchors
// relative summary paths and error messages.
func (r *Runner) RunDocument(ctx context.Context, data []byte, sourcePath string) *RunResult {
	return r.run(ctx, sourcePath, func() (*flow.Flow, error) {
		return flow.Parse(data, sourcePath)
	})
}

func (r *Runner) run(ctx context.Context, source string, load func() (*flow.Flow, error)) *RunResult {
	res := r.begin()
	log := r.runLogger(res.ID)

	if err := core.EnsureConnected(r.bridge); err != nil {
		log.Error().Err(err).Msg("connectivity check failed")
		return r.finish(res, err)
	}

	f, err := load()
	if err != nil {
		log.Error().Err(err).Str("flow", source).Msg("flow rejected")
		return r.finish(res, err)
	}

	return r.execute(ctx, f, res, log)
}

// Run executes an already parsed flow. Connectivity is not re-checked.
func (r *Runner) Run(ctx context.Context, f *flow.Flow) *RunResult {
	res := r.begin()
	return r.execute(ctx, f, res, r.runLogger(res.ID))
}

func (r *Runner) begin() *RunResult {
	r.setState(core.StateRunning)
	return &RunResult{ID: uuid.NewString(), State: core.StateRunning}
}

func (r *Runner) runLogger(id string) zerolog.Logger {
	return logger.With("executor").With().Str("run", id).Logger()
}

func (r *Runner) execute(ctx context.Context, f *flow.Flow, res *RunResult, log zerolog.Logger) *RunResult {
	start := time.Now()
	res.StepsTotal = len(f.Steps)

	fmt.Fprintf(r.config.Out, "[info] Running flow from %s with %d steps.\n", f.SourcePath, len(f.Steps))
	log.Info().Str("flow", f.SourcePath).Int("steps", len(f.Steps)).Msg("flow started")

	for i, step := range f.Steps {
		if err := ctx.Err(); err != nil {
			log.Warn().Int("step", i+1).Msg("run interrupted")
			res.Duration = time.Since(start)
			return r.finish(res, fmt.Errorf("interrupted before step %d: %w", i+1, err))
		}

		idx := i + 1
		fmt.Fprintf(r.config.Out, "[step %d] %s\n", idx, step.Type())
		if r.config.OnStepStart != nil {
			r.config.OnStepStart(idx, step.Describe())
		}

		stepStart := time.Now()
		sr := r.executeStep(ctx, f, step)
		res.StepsRun++
		durationMs := time.Since(stepStart).Milliseconds()

		switch sr.status {
		case core.StatusWarned:
			res.Warnings++
			fmt.Fprintf(r.config.Out, "[warn] %s\n", sr.message)
			log.Warn().Int("step", idx).Str("action", string(step.Type())).Err(sr.err).Msg("step skipped")
		case core.StatusErrored:
			log.Error().Int("step", idx).Str("action", string(step.Type())).Err(sr.err).Msg("step failed")
		default:
			log.Debug().Int("step", idx).Str("step_desc", step.Describe()).Int64("ms", durationMs).Msg("step done")
		}

		if r.config.OnStepComplete != nil {
			r.config.OnStepComplete(idx, step.Describe(), sr.status, durationMs, sr.message)
		}

		if !sr.status.IsSuccess() {
			res.Duration = time.Since(start)
			return r.finish(res, fmt.Errorf("step %d (%s): %w", idx, step.Describe(), sr.err))
		}
	}

	res.Duration = time.Since(start)
	fmt.Fprintln(r.config.Out, "[done] Flow complete.")
	log.Info().Int("warnings", res.Warnings).Dur("duration", res.Duration).Msg("flow completed")
	return r.finish(res, nil)
}

func (r *Runner) finish(res *RunResult, err error) *RunResult {
	if err != nil {
		res.State = core.StateAborted
		res.Err = err
	} else {
		res.State = core.StateCompleted
	}
	r.setState(res.State)
	return res
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
