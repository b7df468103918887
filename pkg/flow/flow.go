// Package flow handles parsing and representation of adb UI flow documents.
package flow

import (
	"os"
	"path/filepath"
)

// Flow represents a parsed flow document.
type Flow struct {
	SourcePath string // Path to the source file
	Steps      []Step // Steps to execute, in order
}

// Dir returns the directory holding the flow document, or "" when the flow
// was not loaded from a file.
func (f *Flow) Dir() string {
	if f.SourcePath == "" {
		return ""
	}
	return filepath.Dir(f.SourcePath)
}

// ResolvePath locates a file referenced by a step. A relative path is used
// as given when it exists, otherwise relative to the flow's directory.
func (f *Flow) ResolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	if _, err := os.Stat(path); err == nil {
		return path
	}
	if dir := f.Dir(); dir != "" {
		candidate := filepath.Join(dir, path)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return path
}
