package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/rocketplan/uiflow/pkg/capture"
	"github.com/rocketplan/uiflow/pkg/core"
	"github.com/rocketplan/uiflow/pkg/hierarchy"
)

var hierarchyCommand = &cli.Command{
	Name:  "hierarchy",
	Usage: "Print the clickable elements of the current screen",
	Description: `Take one snapshot and print its clickables summary, or the raw dump.

Examples:
  uiflow hierarchy
  uiflow hierarchy --raw > screen.xml
  uiflow -s emulator-5554 hierarchy`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "Print the uiautomator XML instead of the summary",
		},
		&cli.StringFlag{
			Name:  "label",
			Usage: "Label written in the summary header",
			Value: "live",
		},
	},
	Action: runHierarchy,
}

func runHierarchy(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return err
	}

	bridge, err := connect(c.Context, c, s)
	if err != nil {
		return err
	}
	if err := core.EnsureConnected(bridge); err != nil {
		return err
	}

	snap, err := capture.Take(bridge)
	if err != nil {
		return err
	}

	if c.Bool("raw") {
		_, err := fmt.Fprintln(c.App.Writer, snap.Markup)
		return err
	}

	lines := hierarchy.SummaryLines(snap.Clickables, 1, c.String("label"))
	if err := hierarchy.WriteSummary(c.App.Writer, lines); err != nil {
		return err
	}
	_, err = fmt.Fprintln(c.App.Writer)
	return err
}
