// Package validator checks flow files offline, before any device is involved.
// It parses every file and verifies that tap_from_summary references resolve.
package validator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rocketplan/uiflow/pkg/core"
	"github.com/rocketplan/uiflow/pkg/flow"
	"github.com/rocketplan/uiflow/pkg/hierarchy"
)

// ValidationError represents a validation error with context.
type ValidationError struct {
	File    string
	Step    int // 1-based, 0 for file-level problems
	Message string
}

func (e *ValidationError) Error() string {
	if e.Step > 0 {
		return fmt.Sprintf("%s: step %d: %s", e.File, e.Step, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Message)
}

// Result contains the validation result.
type Result struct {
	// Files is the list of flow files that parsed.
	Files []string
	// Errors would abort a run (unparsable files).
	Errors []error
	// Warnings would be skipped with a warning at run time.
	Warnings []error
}

// IsValid returns true if there are no validation errors.
func (r *Result) IsValid() bool {
	return len(r.Errors) == 0
}

// Validator validates flow files.
type Validator struct {
	summaries map[string]map[int]string // resolved path -> index mapping
}

// New creates a new Validator.
func New() *Validator {
	return &Validator{summaries: make(map[string]map[int]string)}
}

// Validate validates a file or every flow file under a directory.
func (v *Validator) Validate(path string) *Result {
	result := &Result{}

	info, err := os.Stat(path)
	if err != nil {
		result.Errors = append(result.Errors, &ValidationError{
			File:    path,
			Message: fmt.Sprintf("cannot access: %v", err),
		})
		return result
	}

	var files []string
	if info.IsDir() {
		files, err = collectFlowFiles(path)
		if err != nil {
			result.Errors = append(result.Errors, &ValidationError{
				File:    path,
				Message: fmt.Sprintf("failed to scan directory: %v", err),
			})
			return result
		}
	} else {
		files = []string{path}
	}

	for _, file := range files {
		v.validateFile(file, result)
	}
	return result
}

// collectFlowFiles finds all .json/.yaml/.yml files in a directory.
func collectFlowFiles(dir string) ([]string, error) {
	var files []string

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".json", ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})

	return files, err
}

func (v *Validator) validateFile(filePath string, result *Result) {
	f, err := flow.ParseFile(filePath)
	if err != nil {
		result.Errors = append(result.Errors, &ValidationError{
			File:    filePath,
			Message: fmt.Sprintf("parse error: %v", err),
		})
		return
	}
	result.Files = append(result.Files, filePath)

	warn := func(step int, format string, args ...interface{}) {
		result.Warnings = append(result.Warnings, &ValidationError{
			File:    filePath,
			Step:    step,
			Message: fmt.Sprintf(format, args...),
		})
	}

	for i, step := range f.Steps {
		switch s := step.(type) {
		case *flow.TapStep:
			if s.Selector.IsEmpty() {
				warn(i+1, "tap has no selector and will hit the first node")
			}
		case *flow.InputStep:
			if s.Selector.IsEmpty() {
				warn(i+1, "input has no selector and will hit the first node")
			}
		case *flow.TapFromSummaryStep:
			v.checkSummaryRef(f, s, func(format string, args ...interface{}) {
				warn(i+1, format, args...)
			})
		case *flow.UnknownStep:
			warn(i+1, "unknown action: %s", s.Describe())
		}
	}
}

func (v *Validator) checkSummaryRef(f *flow.Flow, s *flow.TapFromSummaryStep, warn func(string, ...interface{})) {
	path := f.ResolvePath(s.Summary)
	mapping, ok := v.summaries[path]
	if !ok {
		var err error
		mapping, err = hierarchy.LoadSummary(path)
		if err != nil {
			warn("cannot read summary %s: %v", s.Summary, err)
			return
		}
		v.summaries[path] = mapping
	}

	bounds, ok := mapping[s.Index]
	if !ok || bounds == "" {
		warn("index %d not found in %s", s.Index, s.Summary)
		return
	}
	if _, ok := core.ParseRectOK(bounds); !ok {
		warn("index %d in %s has malformed bounds %q", s.Index, s.Summary, bounds)
	}
}
