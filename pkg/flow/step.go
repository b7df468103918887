package flow

import (
	"fmt"
	"time"
)

// StepType is the value of a step record's "action" field.
type StepType string

// Step type constants.
const (
	StepStartApp       StepType = "start_app"
	StepWait           StepType = "wait"
	StepTap            StepType = "tap"
	StepInput          StepType = "input"
	StepTapFromSummary StepType = "tap_from_summary"
	StepBack           StepType = "back"
)

// DefaultWait is used when a wait step has no "seconds" field.
const DefaultWait = time.Second

// Step is the interface for all flow steps.
type Step interface {
	Type() StepType
	Describe() string
}

// BaseStep contains common fields for all steps.
type BaseStep struct {
	StepType StepType
}

// Type returns the step type.
func (b *BaseStep) Type() StepType { return b.StepType }

// Describe returns a human-readable description.
func (b *BaseStep) Describe() string { return string(b.StepType) }

// StartAppStep launches package/activity.
type StartAppStep struct {
	BaseStep
	Package  string
	Activity string
}

// Component returns the "package/activity" component name.
func (s *StartAppStep) Component() string {
	return s.Package + "/" + s.Activity
}

func (s *StartAppStep) Describe() string {
	return fmt.Sprintf("start_app %s", s.Component())
}

// WaitStep pauses the flow.
type WaitStep struct {
	BaseStep
	Duration time.Duration
}

func (s *WaitStep) Describe() string {
	return fmt.Sprintf("wait %s", s.Duration)
}

// TapStep taps the first element matching Selector.
type TapStep struct {
	BaseStep
	Selector Selector
}

func (s *TapStep) Describe() string {
	return fmt.Sprintf("tap %s", s.Selector)
}

// InputStep taps the element matching Selector and types Value into it.
// Value may be an environment reference, see ResolveEnv.
type InputStep struct {
	BaseStep
	Selector Selector
	Value    string
}

func (s *InputStep) Describe() string {
	return fmt.Sprintf("input %s", s.Selector)
}

// TapFromSummaryStep taps the element recorded at Index in a clickables
// summary written by the capture tool.
type TapFromSummaryStep struct {
	BaseStep
	Summary string
	Index   int
}

func (s *TapFromSummaryStep) Describe() string {
	return fmt.Sprintf("tap_from_summary %s #%d", s.Summary, s.Index)
}

// BackStep presses the platform back key.
type BackStep struct {
	BaseStep
}

// UnknownStep keeps a record whose action is not recognized. It is logged
// and skipped at run time rather than rejected at parse time.
type UnknownStep struct {
	BaseStep
	Action string
}

func (s *UnknownStep) Describe() string {
	if s.Action == "" {
		return "<no action>"
	}
	return s.Action
}
