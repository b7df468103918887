package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/rocketplan/uiflow/pkg/capture"
)

var captureCommand = &cli.Command{
	Name:  "capture",
	Usage: "Interactively dump screens and list their clickable elements",
	Description: `Press Enter to capture the current screen; Ctrl+C or EOF stops.

Each capture writes NNN_<label>.xml and NNN_<label>_clickables.txt. The
indexes in the clickables file are what tap_from_summary steps refer to.

Examples:
  uiflow capture
  uiflow capture --output-dir dumps --label onboarding`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "output-dir",
			Usage: "Directory for dumps and summaries (default: output_dir from config, else ui_dumps)",
		},
		&cli.StringFlag{
			Name:  "label",
			Usage: "Label for file names (default: start time, YYYYMMDD-HHMMSS)",
		},
	},
	Action: runCapture,
}

func runCapture(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return err
	}

	outputDir := c.String("output-dir")
	if outputDir == "" {
		outputDir = s.cfg.OutputDirOrDefault()
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	bridge, err := connect(ctx, c, s)
	if err != nil {
		return err
	}

	loop := capture.New(bridge, capture.Options{
		OutputDir: outputDir,
		Label:     c.String("label"),
		Input:     c.App.Reader,
		Out:       c.App.Writer,
	})
	return loop.Run(ctx)
}
