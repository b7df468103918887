package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/rocketplan/uiflow/pkg/device"
)

var devicesCommand = &cli.Command{
	Name:   "devices",
	Usage:  "List devices known to adb",
	Action: runDevices,
}

// listDevices is swapped out in tests.
var listDevices = device.ListDevices

func runDevices(c *cli.Context) error {
	s, err := loadSettings(c)
	if err != nil {
		return err
	}

	entries, err := listDevices(s.adb)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Fprintln(c.App.Writer, "No devices attached.")
		return nil
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SERIAL\tSTATE\tMODEL")
	for _, e := range entries {
		model := e.Model
		if model == "" {
			model = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", e.Serial, e.State, model)
	}
	return tw.Flush()
}
