package cli

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/rocketplan/uiflow/pkg/core"
	"github.com/rocketplan/uiflow/pkg/executor"
	"github.com/rocketplan/uiflow/pkg/flow"
)

var runCommand = &cli.Command{
	Name:      "run",
	Usage:     "Run a flow file on the connected device",
	ArgsUsage: "[flow-file]",
	Description: `Replay a JSON (or YAML) list of steps against the connected device.

Values of the form ${NAME} or ${NAME:-default} are read from -e flags, then
the process environment, then the env section of config.yaml.

Examples:
  uiflow run --flow flows/login.json
  uiflow run flows/login.json -e APP_USER=jane`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "flow",
			Usage: "Path to the flow file",
		},
		&cli.StringSliceFlag{
			Name:    "env",
			Aliases: []string{"e"},
			Usage:   "Variables for ${NAME} values (KEY=VALUE)",
		},
	},
	Action: runFlow,
}

func runFlow(c *cli.Context) error {
	path := c.String("flow")
	if path == "" {
		path = c.Args().First()
	}
	if path == "" {
		return fmt.Errorf("a flow file is required (--flow FILE)")
	}

	s, err := loadSettings(c)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := executor.Config{
		Lookup: layeredLookup(parseEnvVars(c.StringSlice("env")), s.cfg.Env),
		Out:    c.App.Writer,
	}
	if c.Bool("verbose") {
		cfg.OnStepComplete = stepPrinter(c.App.Writer)
	}

	bridge, err := connect(ctx, c, s)
	if err != nil {
		return err
	}

	res := executor.New(bridge, cfg).RunFile(ctx, path)
	printSummary(c.App.Writer, res)

	if res.State == core.StateAborted {
		return fmt.Errorf("flow aborted: %w", res.Err)
	}
	return nil
}

// layeredLookup resolves -e overrides first, then the process environment,
// then config defaults.
func layeredLookup(overrides, defaults map[string]string) flow.LookupFunc {
	env := flow.EnvLookup(defaults)
	return func(name string) (string, bool) {
		if v, ok := overrides[name]; ok {
			return v, true
		}
		return env(name)
	}
}

func parseEnvVars(envs []string) map[string]string {
	result := make(map[string]string)
	for _, e := range envs {
		parts := strings.SplitN(e, "=", 2)
		if len(parts) == 2 {
			result[parts[0]] = parts[1]
		}
	}
	return result
}
