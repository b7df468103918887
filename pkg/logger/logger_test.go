package logger

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNoopBeforeInit(t *testing.T) {
	Close()
	// Must not panic.
	Info("hello %d", 1)
	Warn("hello")
	if GetWriter() != io.Discard {
		t.Error("expected io.Discard without a log file")
	}
}

func TestInit_Console(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Options{Console: &buf}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}
	defer Close()

	Info("tapped %d,%d", 60, 45)
	Debug("hidden")
	Warn("selector not found")

	out := buf.String()
	if !strings.Contains(out, "tapped 60,45") {
		t.Errorf("missing info line: %q", out)
	}
	if strings.Contains(out, "hidden") {
		t.Error("debug should be filtered at info level")
	}
	if !strings.Contains(out, "WRN") {
		t.Errorf("expected warn level marker: %q", out)
	}
}

func TestInit_Verbose(t *testing.T) {
	var buf bytes.Buffer
	if err := Init(Options{Console: &buf, Verbose: true}); err != nil {
		t.Fatal(err)
	}
	defer Close()

	Debug("visible")
	if !strings.Contains(buf.String(), "visible") {
		t.Error("debug should pass in verbose mode")
	}
}

func TestInit_File(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "logs", "uiflow.log")
	if err := Init(Options{Quiet: true, LogPath: logPath}); err != nil {
		t.Fatalf("Init() error = %v", err)
	}

	l := With("executor")
	l.Error().Str("step", "tap").Msg("adb failed")
	if GetWriter() == io.Discard {
		t.Error("expected file writer")
	}
	Close()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{`"module":"executor"`, `"step":"tap"`, `"adb failed"`} {
		if !strings.Contains(string(data), want) {
			t.Errorf("log file missing %s: %s", want, data)
		}
	}
}

func TestInit_BadPath(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Init(Options{Quiet: true, LogPath: filepath.Join(blocker, "x.log")}); err == nil {
		t.Error("expected error when log dir is a file")
	}
}
