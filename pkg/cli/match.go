package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/uiresolve/pkg/core"
	"github.com/devicelab-dev/uiresolve/pkg/element"
	"github.com/devicelab-dev/uiresolve/pkg/fingerprint"
)

var matchCommand = &cli.Command{
	Name:      "match",
	Usage:     "Score a stored fingerprint against every element of a dump",
	ArgsUsage: "<fingerprint.json> <dump.xml>",
	Description: `Extract the dump and rank its elements by similarity to the stored
fingerprint. With --best only the top candidate is printed, and the
command fails when no candidate meets the confidence floor.

Examples:
  uiresolve match fingerprint.json dump.xml
  uiresolve match fingerprint.json dump.xml --best --min-confidence 0.9
  uiresolve match fingerprint.json dump.xml --limit 3`,
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "best",
			Usage: "Print only the best candidate, failing below the confidence floor",
		},
		&cli.Float64Flag{
			Name:  "min-confidence",
			Usage: "Confidence floor for --best (default: selector policy)",
		},
		&cli.IntFlag{
			Name:  "limit",
			Usage: "Print at most N candidates (0 = all)",
		},
		&cli.BoolFlag{
			Name:  "yaml",
			Usage: "Output YAML instead of JSON",
		},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return fmt.Errorf("expected <fingerprint.json> <dump.xml>, got %d arguments", c.NArg())
		}

		cfg, err := setup(c)
		if err != nil {
			return err
		}
		screen, err := parseScreen(c.String("screen"))
		if err != nil {
			return err
		}

		fpData, err := os.ReadFile(c.Args().Get(0)) //#nosec G304 -- user-provided fingerprint
		if err != nil {
			return err
		}
		var target fingerprint.Fingerprint
		if err := json.Unmarshal(fpData, &target); err != nil {
			return fmt.Errorf("decode fingerprint: %w", err)
		}

		data, err := os.ReadFile(c.Args().Get(1)) //#nosec G304 -- user-provided dump
		if err != nil {
			return err
		}
		result := element.Extract(string(data), cfg.ExtractionOptions())
		if result.Doc == nil || len(result.Elements) == 0 {
			return core.ErrNoMatch
		}

		matcher := fingerprint.NewMatcher(result.Doc, screen, cfg.Match)

		if c.Bool("best") {
			floor := c.Float64("min-confidence")
			if floor == 0 {
				floor = cfg.Selector.MinConfidence
			}
			best := matcher.FindBestMatch(target, result.Elements, floor)
			if best == nil {
				return core.ErrNoMatch
			}
			return writeOutput(c, best)
		}

		ranked := matcher.MatchAll(target, result.Elements)
		if limit := c.Int("limit"); limit > 0 && limit < len(ranked) {
			ranked = ranked[:limit]
		}
		return writeOutput(c, ranked)
	},
}
