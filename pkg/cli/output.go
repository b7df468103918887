package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/rocketplan/uiflow/pkg/core"
	"github.com/rocketplan/uiflow/pkg/executor"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

var colorsEnabled = true

func init() {
	// Respect NO_COLOR environment variable
	if os.Getenv("NO_COLOR") != "" {
		colorsEnabled = false
		return
	}
	// Check if stdout is a terminal
	if fileInfo, err := os.Stdout.Stat(); err == nil {
		if (fileInfo.Mode() & os.ModeCharDevice) == 0 {
			colorsEnabled = false
		}
	}
}

// color returns the color code if colors are enabled, empty string otherwise
func color(c string) string {
	if colorsEnabled {
		return c
	}
	return ""
}

// stepPrinter returns a verbose per-step progress callback.
func stepPrinter(w io.Writer) func(idx int, desc string, status core.StepStatus, durationMs int64, msg string) {
	return func(idx int, desc string, status core.StepStatus, durationMs int64, msg string) {
		durStr := formatDuration(durationMs)
		switch status {
		case core.StatusPassed:
			fmt.Fprintf(w, "    %s✓%s %s %s(%s)%s\n", color(colorGreen), color(colorReset), desc, color(colorGray), durStr, color(colorReset))
		case core.StatusWarned:
			fmt.Fprintf(w, "    %s⚠%s %s (%s)\n", color(colorYellow), color(colorReset), desc, durStr)
		default:
			fmt.Fprintf(w, "    %s✗%s %s (%s)\n", color(colorRed), color(colorReset), desc, durStr)
			if msg != "" {
				fmt.Fprintf(w, "      %s╰─%s %s\n", color(colorGray), color(colorReset), msg)
			}
		}
	}
}

func printSummary(w io.Writer, res *executor.RunResult) {
	stateColor := colorGreen
	switch {
	case res.State == core.StateAborted:
		stateColor = colorRed
	case res.Warnings > 0:
		stateColor = colorYellow
	}

	fmt.Fprintf(w, "\n%s%s%s%s  %d/%d steps, %d warnings, %s %s(run %s)%s\n",
		color(colorBold), color(stateColor), res.State, color(colorReset),
		res.StepsRun, res.StepsTotal, res.Warnings, formatDuration(res.Duration.Milliseconds()),
		color(colorGray), res.ID, color(colorReset))
}

func formatDuration(ms int64) string {
	if ms < 1000 {
		return fmt.Sprintf("%dms", ms)
	}
	if ms < 60000 {
		return fmt.Sprintf("%.1fs", float64(ms)/1000)
	}
	mins := ms / 60000
	secs := (ms % 60000) / 1000
	return fmt.Sprintf("%dm %ds", mins, secs)
}
