package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/uiresolve/pkg/core"
	"github.com/devicelab-dev/uiresolve/pkg/resolver"
)

var resolveCommand = &cli.Command{
	Name:      "resolve",
	Usage:     "Re-locate a recorded selector in a fresh dump",
	ArgsUsage: "<selector.(json|yaml)> <dump.xml>",
	Description: `Run the full resolution pipeline: extract the dump, score every
candidate against the stored selector and apply its safety policy.
On refusal the matcher's facet explanation is printed to stderr.

Examples:
  uiresolve resolve step.json fresh-dump.xml
  uiresolve resolve step.yaml fresh-dump.xml --filter 'element.clickable'`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "filter",
			Usage: "JS predicate applied to candidates before matching",
		},
		&cli.BoolFlag{
			Name:  "yaml",
			Usage: "Output YAML instead of JSON",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return fmt.Errorf("expected <selector-file> <dump.xml>, got %d arguments", c.NArg())
		}

		cfg, err := setup(c)
		if err != nil {
			return err
		}
		screen, err := parseScreen(c.String("screen"))
		if err != nil {
			return err
		}

		sel, err := readSelectorFile(c.Args().Get(0))
		if err != nil {
			return err
		}
		data, err := os.ReadFile(c.Args().Get(1)) //#nosec G304 -- user-provided dump
		if err != nil {
			return err
		}

		rcfg := cfg.ResolverConfig()
		if expr := c.String("filter"); expr != "" {
			rcfg.Filter = expr
		}

		r := resolver.New(rcfg, resolver.NewCache(cfg.Resolver.CacheSize))
		resolution, err := r.Resolve(string(data), sel, screen)
		if err != nil {
			var rerr *core.ResolutionError
			if errors.As(err, &rerr) {
				for _, line := range rerr.Explanation {
					fmt.Fprintln(os.Stderr, "  "+line)
				}
			}
			return err
		}

		return writeOutput(c, resolution)
	},
}
