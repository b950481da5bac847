package cli

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/uiresolve/pkg/selector"
)

var validateCommand = &cli.Command{
	Name:      "validate",
	Usage:     "Check a structured selector for contradictions and weaknesses",
	ArgsUsage: "<selector.(json|yaml)>",
	Description: `Validate a stored selector. Hard issues (no identifier, an orphaned
xpath_prefix/leaf_index pair, a broken action) fail the command; soft
recommendations are reported but do not.

Examples:
  uiresolve validate step.json
  uiresolve validate step.yaml --yaml`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "yaml",
			Usage: "Output YAML instead of JSON",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("expected exactly one selector file, got %d arguments", c.NArg())
		}

		if _, err := setup(c); err != nil {
			return err
		}

		sel, err := readSelectorFile(c.Args().First())
		if err != nil {
			return err
		}

		report := selector.Validate(sel)
		if err := writeOutput(c, report); err != nil {
			return err
		}
		if !report.IsValid {
			return cli.Exit("selector is invalid", 1)
		}
		return nil
	},
}
