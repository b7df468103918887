// Package cli provides the command-line interface for uiflow.
package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rocketplan/uiflow/pkg/config"
	"github.com/rocketplan/uiflow/pkg/core"
	"github.com/rocketplan/uiflow/pkg/device"
	"github.com/rocketplan/uiflow/pkg/logger"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "adb",
		Usage:   "Path to adb binary (default: adb on PATH or in the Android SDK)",
		EnvVars: []string{"UIFLOW_ADB"},
	},
	&cli.StringFlag{
		Name:    "device",
		Aliases: []string{"s"},
		Usage:   "Device serial to target (default: the only connected device)",
		EnvVars: []string{"ANDROID_SERIAL"},
	},
	&cli.StringFlag{
		Name:  "config",
		Usage: "Path to config.yaml (default: config.yaml in the working directory)",
	},
	&cli.DurationFlag{
		Name:    "wait-boot",
		Usage:   "Wait up to this long for the device to finish booting (0 = don't wait)",
		EnvVars: []string{"UIFLOW_WAIT_BOOT"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"UIFLOW_VERBOSE"},
	},
	&cli.StringFlag{
		Name:  "log-file",
		Usage: "Also write structured logs to this file (bare names go under $UIFLOW_HOME/logs)",
	},
	&cli.BoolFlag{
		Name:  "no-ansi",
		Usage: "Disable ANSI colors",
	},
}

// newApp builds the command tree.
func newApp() *cli.App {
	return &cli.App{
		Name:    "uiflow",
		Usage:   "Replay scripted UI flows and capture clickable elements over adb",
		Version: Version,
		Description: `uiflow drives a connected Android device or emulator through adb.

Examples:
  uiflow run --flow flows/login.json
  uiflow -s emulator-5554 capture --label settings
  uiflow hierarchy
  uiflow devices
  uiflow validate flows/`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			runCommand,
			captureCommand,
			hierarchyCommand,
			devicesCommand,
			validateCommand,
		},
		Before: setup,
		After: func(c *cli.Context) error {
			logger.Close()
			return nil
		},
	}
}

// Execute runs the CLI.
func Execute() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup(c *cli.Context) error {
	if c.Bool("no-ansi") {
		colorsEnabled = false
	}
	verbose := c.Bool("verbose")
	return logger.Init(logger.Options{
		Console: c.App.ErrWriter,
		Quiet:   !verbose,
		Verbose: verbose,
		LogPath: config.ResolveLogPath(c.String("log-file")),
	})
}

// settings is the merged view of flags, environment and config file.
type settings struct {
	cfg      *config.Config
	adb      string
	serial   string
	interval time.Duration
}

func loadSettings(c *cli.Context) (*settings, error) {
	var (
		cfg *config.Config
		err error
	)
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(".")
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	s := &settings{cfg: cfg, adb: cfg.ADB, serial: cfg.Device}
	if c.IsSet("adb") {
		s.adb = c.String("adb")
	}
	if c.IsSet("device") {
		s.serial = c.String("device")
	}
	interval, err := cfg.Interval()
	if err != nil {
		return nil, err
	}
	s.interval = interval
	return s, nil
}

// bootWaiter is implemented by bridges that can wait for a booting device.
type bootWaiter interface {
	WaitForBoot(ctx context.Context, timeout time.Duration) error
}

// connect creates the bridge and, with --wait-boot, waits for the device.
func connect(ctx context.Context, c *cli.Context, s *settings) (core.Bridge, error) {
	bridge := newBridge(s)
	if timeout := c.Duration("wait-boot"); timeout > 0 {
		if w, ok := bridge.(bootWaiter); ok {
			if err := w.WaitForBoot(ctx, timeout); err != nil {
				return nil, err
			}
		}
	}
	return bridge, nil
}

// newBridge is swapped out in tests.
var newBridge = func(s *settings) core.Bridge {
	return openDevice(s)
}

// openDevice targets the configured serial, or else the first attached
// device in the "device" state, so unauthorized or offline entries do not
// make adb refuse to pick one. With nothing ready, adb's default applies and
// the connectivity check reports the missing device.
func openDevice(s *settings) *device.AndroidDevice {
	opts := device.Options{
		ADBPath:         s.adb,
		Serial:          s.serial,
		CommandInterval: s.interval,
	}
	if opts.Serial == "" {
		if d, err := device.FirstAvailable(opts); err == nil {
			logger.Debug("Auto-selected device %s", d.Serial())
			return d
		}
	}
	return device.New(opts)
}
