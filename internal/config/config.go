package config

import (
	"path/filepath"
	"time"
)

// Config represents the complete typeshape configuration.
// It can be loaded from .typeshape/config.yml with environment variable overrides.
type Config struct {
	Paths  PathsConfig  `yaml:"paths" mapstructure:"paths"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Watch  WatchConfig  `yaml:"watch" mapstructure:"watch"`
	Cache  CacheConfig  `yaml:"cache" mapstructure:"cache"`
}

// PathsConfig defines where sources live and which files are extracted.
type PathsConfig struct {
	Root    string   `yaml:"root" mapstructure:"root"`       // output paths are mirrored relative to this folder
	Source  string   `yaml:"source" mapstructure:"source"`   // subfolder of root that is scanned
	Include []string `yaml:"include" mapstructure:"include"` // glob patterns for source files
	Ignore  []string `yaml:"ignore" mapstructure:"ignore"`   // glob patterns to ignore
}

// OutputConfig defines where and how extracted declarations are written.
type OutputConfig struct {
	Dir    string `yaml:"dir" mapstructure:"dir"`       // output root, relative to paths.root unless absolute
	Indent int    `yaml:"indent" mapstructure:"indent"` // spaces per shape field indentation level
}

// WatchConfig defines watch mode behavior.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms" mapstructure:"debounce_ms"` // quiet period before re-extracting
}

// CacheConfig defines the parse cache used by long-running commands.
type CacheConfig struct {
	Capacity int `yaml:"capacity" mapstructure:"capacity"` // max number of parsed files kept
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			Root:   ".",
			Source: "src",
			Include: []string{
				"**/*.ts",
			},
			Ignore: []string{
				"node_modules/**",
				"**/node_modules/**",
				".git/**",
			},
		},
		Output: OutputConfig{
			Dir:    "types",
			Indent: 4,
		},
		Watch: WatchConfig{
			DebounceMs: 500,
		},
		Cache: CacheConfig{
			Capacity: 4096,
		},
	}
}

// SourceDir returns the scanned directory: the source subfolder under root.
func (c *Config) SourceDir() string {
	return filepath.Join(c.Paths.Root, c.Paths.Source)
}

// OutputDir returns the output root. Relative output directories are
// resolved against the root folder.
func (c *Config) OutputDir() string {
	if filepath.IsAbs(c.Output.Dir) {
		return filepath.Clean(c.Output.Dir)
	}
	return filepath.Join(c.Paths.Root, c.Output.Dir)
}

// Debounce returns the watch debounce period.
func (c *Config) Debounce() time.Duration {
	return time.Duration(c.Watch.DebounceMs) * time.Millisecond
}
