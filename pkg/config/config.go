// Package config handles configuration for uiresolve.
package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/devicelab-dev/uiresolve/pkg/element"
	"github.com/devicelab-dev/uiresolve/pkg/fingerprint"
	"github.com/devicelab-dev/uiresolve/pkg/resolver"
	"github.com/devicelab-dev/uiresolve/pkg/selector"
)

// Config is the workspace configuration (config.yaml). Scoring thresholds
// and tolerances are tunable policy, not invariants; the defaults here are
// the documented ones.
type Config struct {
	Extraction ExtractionSettings   `yaml:"extraction"`
	Match      fingerprint.Config   `yaml:"match"`
	Resolver   ResolverSettings     `yaml:"resolver"`
	Selector   selector.BuildConfig `yaml:"selector"`
	Log        LogSettings          `yaml:"log"`
}

// ExtractionSettings controls the XML-to-element pipeline.
type ExtractionSettings struct {
	IncludeNonClickable bool     `yaml:"include_non_clickable"`
	StrictFiltering     bool     `yaml:"strict_filtering"`
	ResolveOverlaps     bool     `yaml:"resolve_overlaps"`
	ContainerClasses    []string `yaml:"container_classes"`
}

// ResolverSettings controls match safety and caching.
type ResolverSettings struct {
	UniquenessMargin   float64 `yaml:"uniqueness_margin"`
	FullscreenCoverage float64 `yaml:"fullscreen_coverage"`
	CacheSize          int     `yaml:"cache_size"`
	Filter             string  `yaml:"filter"`
}

// LogSettings controls process logging.
type LogSettings struct {
	Path    string `yaml:"path"`
	Verbose bool   `yaml:"verbose"`
}

// Default returns the fully-populated default configuration.
func Default() *Config {
	rcfg := resolver.DefaultConfig()
	return &Config{
		Extraction: ExtractionSettings{
			IncludeNonClickable: true,
			StrictFiltering:     false,
			ResolveOverlaps:     true,
		},
		Match: fingerprint.DefaultConfig(),
		Resolver: ResolverSettings{
			UniquenessMargin:   rcfg.UniquenessMargin,
			FullscreenCoverage: rcfg.FullscreenCoverage,
			CacheSize:          8,
		},
		Selector: selector.DefaultBuildConfig(),
	}
}

// Load reads a config file over the defaults: keys absent from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path) //#nosec G304 -- user-provided config file
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir looks for config.yaml or config.yml in the directory. With
// neither present the defaults are returned.
func LoadFromDir(dir string) (*Config, error) {
	configPath := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	configPath = filepath.Join(dir, "config.yml")
	if _, err := os.Stat(configPath); err == nil {
		return Load(configPath)
	}

	return Default(), nil
}

// ExtractionOptions converts the extraction settings for the element
// pipeline.
func (c *Config) ExtractionOptions() element.Options {
	return element.Options{
		IncludeNonClickable: c.Extraction.IncludeNonClickable,
		StrictFiltering:     c.Extraction.StrictFiltering,
		ResolveOverlaps:     c.Extraction.ResolveOverlaps,
		ContainerClasses:    c.Extraction.ContainerClasses,
	}
}

// ResolverConfig converts the settings for the resolution pipeline.
func (c *Config) ResolverConfig() resolver.Config {
	return resolver.Config{
		Extraction:         c.ExtractionOptions(),
		Fingerprint:        c.Match,
		UniquenessMargin:   c.Resolver.UniquenessMargin,
		FullscreenCoverage: c.Resolver.FullscreenCoverage,
		ContainerClasses:   c.Extraction.ContainerClasses,
		Filter:             c.Resolver.Filter,
	}
}
