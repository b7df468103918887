// Package logger provides the process-wide structured logger.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

var (
	globalLogger = zerolog.Nop()
	logFile      *os.File
	mu           sync.Mutex
)

// Options configures Init.
type Options struct {
	Console io.Writer // console sink; nil means stderr
	Quiet   bool      // disable the console sink
	LogPath string    // optional log file, appended to
	Verbose bool      // enable debug level
}

// Init initializes the global logger. Until it is called every log call is
// a no-op.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	// Close previous log file if exists
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}

	var writers []io.Writer
	if !opts.Quiet {
		out := opts.Console
		if out == nil {
			out = os.Stderr
		}
		writers = append(writers, zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"})
	}

	if opts.LogPath != "" {
		if err := os.MkdirAll(filepath.Dir(opts.LogPath), 0o755); err != nil {
			return fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(opts.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		logFile = f
		writers = append(writers, f)
	}

	if len(writers) == 0 {
		globalLogger = zerolog.Nop()
		return nil
	}

	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	globalLogger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(level).
		With().
		Timestamp().
		Logger()

	return nil
}

// Close closes the log file and resets logging to a no-op.
func Close() {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
	globalLogger = zerolog.Nop()
}

// With returns a logger tagged with a module field.
func With(module string) zerolog.Logger {
	mu.Lock()
	defer mu.Unlock()
	return globalLogger.With().Str("module", module).Logger()
}

// Info logs an info message.
func Info(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger.Info().Msgf(format, v...)
}

// Debug logs a debug message.
func Debug(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger.Debug().Msgf(format, v...)
}

// Error logs an error message.
func Error(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger.Error().Msgf(format, v...)
}

// Warn logs a warning message.
func Warn(format string, v ...interface{}) {
	mu.Lock()
	defer mu.Unlock()
	globalLogger.Warn().Msgf(format, v...)
}

// GetWriter returns the log file for subprocess output, or io.Discard.
func GetWriter() io.Writer {
	mu.Lock()
	defer mu.Unlock()

	if logFile != nil {
		return logFile
	}
	return io.Discard
}
