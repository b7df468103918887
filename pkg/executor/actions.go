package executor

import (
	"context"
	"fmt"

	"github.com/rocketplan/uiflow/pkg/core"
	"github.com/rocketplan/uiflow/pkg/device"
	"github.com/rocketplan/uiflow/pkg/flow"
	"github.com/rocketplan/uiflow/pkg/hierarchy"
)

// stepResult is the outcome of one dispatched step.
type stepResult struct {
	status  core.StepStatus
	message string
	err     error
}

func passed() stepResult { return stepResult{status: core.StatusPassed} }

// failed turns err into a step outcome. Fatal categories abort the run;
// the others skip the step with a warning. A non-empty format replaces the
// error's message.
func failed(err *core.ExecutionError, format string, args ...interface{}) stepResult {
	if format != "" {
		err = err.WithMessage(fmt.Sprintf(format, args...))
	}
	status := core.StatusWarned
	if err.IsFatal() {
		status = core.StatusErrored
	}
	return stepResult{status: status, message: err.Error(), err: err}
}

func errored(err error) stepResult {
	return stepResult{status: core.StatusErrored, message: err.Error(), err: err}
}

// bridgeFailure classifies a transport error from the bridge.
func bridgeFailure(err error) stepResult {
	return failed(core.ErrBridgeUnavailable.WithCause(err), "")
}

func (r *Runner) executeStep(ctx context.Context, f *flow.Flow, step flow.Step) stepResult {
	switch s := step.(type) {
	case *flow.StartAppStep:
		return r.startApp(s)
	case *flow.WaitStep:
		return r.wait(ctx, s)
	case *flow.TapStep:
		_, res := r.tapSelector(s.Selector)
		return res
	case *flow.InputStep:
		return r.input(s)
	case *flow.TapFromSummaryStep:
		return r.tapFromSummary(f, s)
	case *flow.BackStep:
		if err := r.bridge.KeyEvent(core.KeyCodeBack); err != nil {
			return bridgeFailure(err)
		}
		return passed()
	case *flow.UnknownStep:
		return failed(core.NewExecutionError(core.ErrCategoryResolution, "unknown_action", ""), "unknown action: %s", s.Describe())
	default:
		return failed(core.NewExecutionError(core.ErrCategoryResolution, "unknown_action", ""), "unknown action: %s", step.Type())
	}
}

func (r *Runner) startApp(s *flow.StartAppStep) stepResult {
	if err := r.bridge.Launch(s.Package, s.Activity); err != nil {
		return bridgeFailure(err)
	}
	return passed()
}

func (r *Runner) wait(ctx context.Context, s *flow.WaitStep) stepResult {
	if err := r.config.Sleep(ctx, s.Duration); err != nil {
		return errored(fmt.Errorf("wait interrupted: %w", err))
	}
	return passed()
}

// tapSelector takes a fresh snapshot, resolves sel and taps the center of the
// match. It reports whether a tap was issued.
func (r *Runner) tapSelector(sel flow.Selector) (bool, stepResult) {
	markup, err := r.bridge.DumpHierarchy()
	if err != nil {
		return false, bridgeFailure(err)
	}

	root, err := hierarchy.Parse(markup)
	if err != nil {
		return false, failed(core.ErrMalformedSnapshot, "failed to parse UI hierarchy: %v", err)
	}

	node := hierarchy.Find(root, sel)
	if node == nil {
		return false, failed(core.ErrElementNotFound, "selector not found: %s", sel)
	}

	x, y, ok := node.Center()
	if !ok {
		return false, failed(core.ErrElementNotFound, "selector %s matched a node with malformed bounds %q", sel, node.RawBounds)
	}

	if err := r.bridge.Tap(x, y); err != nil {
		return false, bridgeFailure(err)
	}
	return true, passed()
}

func (r *Runner) input(s *flow.InputStep) stepResult {
	value := flow.ResolveEnv(s.Value, r.config.Lookup)

	tapped, res := r.tapSelector(s.Selector)
	if !tapped {
		return res
	}

	if err := r.bridge.InputText(device.EscapeInputText(value)); err != nil {
		return bridgeFailure(err)
	}
	return passed()
}

func (r *Runner) tapFromSummary(f *flow.Flow, s *flow.TapFromSummaryStep) stepResult {
	path := f.ResolvePath(s.Summary)

	mapping, err := hierarchy.LoadSummary(path)
	if err != nil {
		return failed(core.ErrIndexNotFound, "cannot read summary %s: %v", s.Summary, err)
	}

	bounds, ok := mapping[s.Index]
	if !ok || bounds == "" {
		return failed(core.ErrIndexNotFound, "index %d not found in %s", s.Index, s.Summary)
	}

	rect, ok := core.ParseRectOK(bounds)
	if !ok {
		return failed(core.ErrIndexNotFound, "index %d in %s has malformed bounds %q", s.Index, s.Summary, bounds)
	}

	x, y := rect.Center()
	if err := r.bridge.Tap(x, y); err != nil {
		return bridgeFailure(err)
	}
	return passed()
}
