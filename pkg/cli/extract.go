package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/uiresolve/pkg/element"
	"github.com/devicelab-dev/uiresolve/pkg/script"
)

var extractCommand = &cli.Command{
	Name:      "extract",
	Usage:     "Extract visual elements from a UI hierarchy dump",
	ArgsUsage: "<dump.xml>",
	Description: `Parse a uiautomator XML dump into structured visual elements with
category buckets and app info.

Examples:
  uiresolve extract dump.xml
  uiresolve extract dump.xml --filter 'element.clickable'
  uiresolve extract dump.xml --strict --yaml`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "filter",
			Usage: "JS predicate over `element`; only matching elements are kept",
		},
		&cli.BoolFlag{
			Name:  "strict",
			Usage: "Drop elements with no content and no interactivity",
		},
		&cli.BoolFlag{
			Name:  "keep-overlaps",
			Usage: "Skip overlap resolution (keep duplicate-bounds elements)",
		},
		&cli.BoolFlag{
			Name:  "yaml",
			Usage: "Output YAML instead of JSON",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("expected exactly one dump file, got %d arguments", c.NArg())
		}

		cfg, err := setup(c)
		if err != nil {
			return err
		}

		data, err := os.ReadFile(c.Args().First()) //#nosec G304 -- user-provided dump
		if err != nil {
			return err
		}

		opts := cfg.ExtractionOptions()
		if c.Bool("strict") {
			opts.StrictFiltering = true
		}
		if c.Bool("keep-overlaps") {
			opts.ResolveOverlaps = false
		}

		result := element.Extract(string(data), opts)

		if expr := c.String("filter"); expr != "" {
			engine := script.New()
			kept, err := engine.FilterElements(result.Elements, expr)
			if err != nil {
				return err
			}
			result.Elements = kept
			result.Buckets = element.Bucketize(kept)
		}

		return writeOutput(c, result)
	},
}
