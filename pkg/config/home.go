package config

import (
	"os"
	"path/filepath"
)

const envHome = "UIFLOW_HOME"

// GetHome returns the directory bare log file names resolve against:
// $UIFLOW_HOME when set, otherwise the working directory.
func GetHome() string {
	if env := os.Getenv(envHome); env != "" {
		return env
	}
	if cwd, err := os.Getwd(); err == nil {
		return cwd
	}
	return "."
}

// GetLogsDir returns <home>/logs.
func GetLogsDir() string {
	return filepath.Join(GetHome(), "logs")
}

// ResolveLogPath places a bare log file name under GetLogsDir. Paths with a
// directory component are returned unchanged.
func ResolveLogPath(name string) string {
	if name == "" || filepath.Base(name) != name {
		return name
	}
	return filepath.Join(GetLogsDir(), name)
}
