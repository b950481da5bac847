// Package cli provides the command-line interface for uiresolve.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/uiresolve/pkg/config"
	"github.com/devicelab-dev/uiresolve/pkg/core"
	"github.com/devicelab-dev/uiresolve/pkg/logger"
	"github.com/devicelab-dev/uiresolve/pkg/selector"
)

// Version is set at build time.
var Version = "dev"

// GlobalFlags are available to all commands.
var GlobalFlags = []cli.Flag{
	&cli.StringFlag{
		Name:    "config",
		Usage:   "Path to workspace config.yaml",
		EnvVars: []string{"UIRESOLVE_CONFIG"},
	},
	&cli.StringFlag{
		Name:    "screen",
		Usage:   "Screen size as WIDTHxHEIGHT (for position signatures)",
		Value:   "1080x1920",
		EnvVars: []string{"UIRESOLVE_SCREEN"},
	},
	&cli.StringFlag{
		Name:    "log-file",
		Usage:   "Write logs to this file instead of stderr",
		EnvVars: []string{"UIRESOLVE_LOG_FILE"},
	},
	&cli.BoolFlag{
		Name:    "verbose",
		Usage:   "Enable verbose logging",
		EnvVars: []string{"UIRESOLVE_VERBOSE"},
	},
}

// Execute runs the CLI.
func Execute() {
	app := &cli.App{
		Name:    "uiresolve",
		Usage:   "Android UI hierarchy extraction and element resolution",
		Version: Version,
		Description: `uiresolve turns uiautomator XML dumps into structured visual elements,
records replay selectors for them, and re-locates recorded targets in
fresh captures.

Examples:
  uiresolve extract dump.xml
  uiresolve record dump.xml --element element_12 --action tap
  uiresolve resolve step.json fresh-dump.xml
  uiresolve match fingerprint.json fresh-dump.xml
  uiresolve validate step.json`,
		Flags: GlobalFlags,
		Commands: []*cli.Command{
			extractCommand,
			recordCommand,
			resolveCommand,
			matchCommand,
			validateCommand,
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads the workspace config and initializes logging.
func setup(c *cli.Context) (*config.Config, error) {
	var cfg *config.Config
	var err error
	if path := c.String("config"); path != "" {
		cfg, err = config.Load(path)
	} else {
		cfg, err = config.LoadFromDir(config.GetHome())
	}
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	logPath := c.String("log-file")
	if logPath == "" {
		logPath = cfg.Log.Path
	}
	verbose := c.Bool("verbose") || cfg.Log.Verbose
	if err := logger.Init(logPath, verbose); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return cfg, nil
}

// parseScreen parses the --screen flag ("1080x1920").
func parseScreen(s string) (core.ScreenSize, error) {
	parts := strings.SplitN(strings.ToLower(s), "x", 2)
	if len(parts) != 2 {
		return core.ScreenSize{}, fmt.Errorf("invalid screen size %q, want WIDTHxHEIGHT", s)
	}
	w, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return core.ScreenSize{}, fmt.Errorf("invalid screen width %q", parts[0])
	}
	h, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return core.ScreenSize{}, fmt.Errorf("invalid screen height %q", parts[1])
	}
	if w <= 0 || h <= 0 {
		return core.ScreenSize{}, fmt.Errorf("screen size %q must be positive", s)
	}
	return core.ScreenSize{Width: w, Height: h}, nil
}

// readSelectorFile decodes a structured selector from JSON or YAML, picked
// by file extension.
func readSelectorFile(path string) (*selector.StructuredSelector, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided selector file
	if err != nil {
		return nil, err
	}

	var sel selector.StructuredSelector
	switch {
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		err = yaml.Unmarshal(data, &sel)
	default:
		err = json.Unmarshal(data, &sel)
	}
	if err != nil {
		return nil, fmt.Errorf("decode selector %s: %w", path, err)
	}
	return &sel, nil
}

// writeOutput renders v as JSON (or YAML with --yaml) to stdout.
func writeOutput(c *cli.Context, v interface{}) error {
	if c.Bool("yaml") {
		data, err := yaml.Marshal(v)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
