package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/rocketplan/uiflow/pkg/validator"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Check flow files without a device",
	ArgsUsage: "<flow-file-or-folder>...",
	Description: `Parse flow files and check that tap_from_summary references resolve.

Parse errors fail the command; problems a run would only warn about are
listed but do not.

Examples:
  uiflow validate flows/login.json
  uiflow validate flows/`,
	Action: runValidate,
}

func runValidate(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one flow file or folder is required")
	}

	v := validator.New()
	var files, errs, warnings int
	valid := true
	for _, path := range c.Args().Slice() {
		result := v.Validate(path)
		valid = valid && result.IsValid()
		files += len(result.Files)
		for _, err := range result.Errors {
			fmt.Fprintf(c.App.Writer, "  %s✗%s %v\n", color(colorRed), color(colorReset), err)
		}
		for _, w := range result.Warnings {
			fmt.Fprintf(c.App.Writer, "  %s⚠%s %v\n", color(colorYellow), color(colorReset), w)
		}
		errs += len(result.Errors)
		warnings += len(result.Warnings)
	}

	fmt.Fprintf(c.App.Writer, "%d flow file(s), %d error(s), %d warning(s)\n", files, errs, warnings)
	if !valid {
		return fmt.Errorf("validation failed with %d error(s)", errs)
	}
	return nil
}
