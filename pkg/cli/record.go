package cli

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/devicelab-dev/uiresolve/pkg/element"
	"github.com/devicelab-dev/uiresolve/pkg/selector"
)

var recordCommand = &cli.Command{
	Name:      "record",
	Usage:     "Build a structured replay selector for an extracted element",
	ArgsUsage: "<dump.xml>",
	Description: `Extract the dump, locate the element by its synthetic id (or text)
and assemble the full replay contract: identifiers, geometry, neighbor
anchors, fingerprint, policy and action.

Examples:
  uiresolve record dump.xml --element element_12 --action tap
  uiresolve record dump.xml --text 登录 --action longPress --duration 1200
  uiresolve record dump.xml --element element_3 --action type --input-text user@example.com
  uiresolve record dump.xml --element element_7 --action swipe --direction up --distance 300`,
	Flags: []cli.Flag{
		&cli.StringFlag{
			Name:  "element",
			Usage: "Synthetic element id (element_N) of the target",
		},
		&cli.StringFlag{
			Name:  "text",
			Usage: "Pick the first element with this exact text instead of --element",
		},
		&cli.StringFlag{
			Name:  "action",
			Usage: "Action kind (tap, longPress, swipe, type, wait, back)",
			Value: "tap",
		},
		&cli.IntFlag{
			Name:  "duration",
			Usage: "Press/swipe/wait duration in ms",
		},
		&cli.IntFlag{
			Name:  "offset-x",
			Usage: "Tap offset from the element center, px",
		},
		&cli.IntFlag{
			Name:  "offset-y",
			Usage: "Tap offset from the element center, px",
		},
		&cli.StringFlag{
			Name:  "direction",
			Usage: "Swipe direction (up, down, left, right)",
		},
		&cli.Float64Flag{
			Name:  "distance",
			Usage: "Swipe distance in device-independent pixels",
		},
		&cli.StringFlag{
			Name:  "input-text",
			Usage: "Text to type (action=type)",
		},
		&cli.BoolFlag{
			Name:  "clear",
			Usage: "Clear the field before typing",
		},
		&cli.BoolFlag{
			Name:  "submit",
			Usage: "Submit after typing",
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
		if c.String("element") == "" && c.String("text") == "" {
			return fmt.Errorf("either --element or --text is required")
		}

		cfg, err := setup(c)
		if err != nil {
			return err
		}
		screen, err := parseScreen(c.String("screen"))
		if err != nil {
			return err
		}

		data, err := os.ReadFile(c.Args().First()) //#nosec G304 -- user-provided dump
		if err != nil {
			return err
		}

		result := element.Extract(string(data), cfg.ExtractionOptions())
		target := findTarget(&result, c.String("element"), c.String("text"))
		if target == nil {
			return fmt.Errorf("no element matching --element %q / --text %q in the dump",
				c.String("element"), c.String("text"))
		}

		params := selector.ActionParams{
			Kind:           selector.ActionKind(c.String("action")),
			OffsetX:        c.Int("offset-x"),
			OffsetY:        c.Int("offset-y"),
			SwipeDirection: selector.SwipeDirection(c.String("direction")),
			SwipeDistance:  c.Float64("distance"),
			Text:           c.String("input-text"),
			ClearFirst:     c.Bool("clear"),
			Submit:         c.Bool("submit"),
		}
		switch params.Kind {
		case selector.ActionWait:
			params.WaitMs = c.Int("duration")
		case selector.ActionSwipe:
			params.SwipeDurationMs = c.Int("duration")
		default:
			params.PressDurationMs = c.Int("duration")
		}

		builder := selector.NewBuilder(cfg.Selector, screen)
		sel, err := builder.Build(&result, target, params)
		if err != nil {
			return err
		}

		return writeOutput(c, sel)
	},
}

func findTarget(result *element.Result, id, text string) *element.VisualElement {
	for _, el := range result.Elements {
		if id != "" && el.ID == id {
			return el
		}
		if id == "" && text != "" && el.Text == text {
			return el
		}
	}
	return nil
}
