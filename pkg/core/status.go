package core

// FlowState is the lifecycle state of a flow run.
type FlowState int

const (
	StateIdle      FlowState = iota // Steps loaded, nothing dispatched
	StateRunning                    // Dispatching steps
	StateCompleted                  // Every step was dispatched
	StateAborted                    // Precondition or bridge failure stopped the run
)

// String returns the string representation of FlowState
func (s FlowState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// StepStatus represents the execution status of a single step
type StepStatus int

const (
	StatusPending StepStatus = iota // Not yet started
	StatusRunning                   // Currently executing
	StatusPassed                    // Dispatched to the device
	StatusWarned                    // Skipped with a warning (selector or index not found)
	StatusErrored                   // Bridge failure; the run aborts
)

// String returns the string representation of StepStatus
func (s StepStatus) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusRunning:
		return "running"
	case StatusPassed:
		return "passed"
	case StatusWarned:
		return "warned"
	case StatusErrored:
		return "errored"
	default:
		return "unknown"
	}
}

// IsSuccess returns true if the flow may continue after this status
func (s StepStatus) IsSuccess() bool {
	return s == StatusPassed || s == StatusWarned
}

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone       ErrorCategory = iota // No error
	ErrCategoryConnection                      // adb missing, device gone, command exited non-zero
	ErrCategoryConfig                          // Flow document or configuration is invalid
	ErrCategorySnapshot                        // UI hierarchy markup could not be parsed
	ErrCategoryResolution                      // Selector or summary index did not resolve
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryConnection:
		return "connection"
	case ErrCategoryConfig:
		return "config"
	case ErrCategorySnapshot:
		return "snapshot"
	case ErrCategoryResolution:
		return "resolution"
	default:
		return "unknown"
	}
}

// IsFatal reports whether errors of this category abort a run.
// Snapshot and resolution failures are logged and the step is skipped.
func (c ErrorCategory) IsFatal() bool {
	return c == ErrCategoryConnection || c == ErrCategoryConfig
}
