// Package config loads the territory configuration from
// .territory/config.yml with environment variable overrides.
package config

import (
	"time"
)

// Config is the complete territory configuration.
type Config struct {
	Scan   ScanConfig   `yaml:"scan" mapstructure:"scan"`
	Output OutputConfig `yaml:"output" mapstructure:"output"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// ScanConfig controls the crawl.
type ScanConfig struct {
	Source             []string `yaml:"source" mapstructure:"source"`                             // glob patterns for source files
	Ignore             []string `yaml:"ignore" mapstructure:"ignore"`                             // glob patterns to skip
	IncludeDeps        bool     `yaml:"include_deps" mapstructure:"include_deps"`                 // also index referenced files outside the root
	FileTimeoutSeconds int      `yaml:"file_timeout_seconds" mapstructure:"file_timeout_seconds"` // per-file walk budget, 0 disables
}

// OutputConfig names the produced artifacts, all relative to Dir.
type OutputConfig struct {
	Dir         string `yaml:"dir" mapstructure:"dir"`
	NodesFile   string `yaml:"nodes_file" mapstructure:"nodes_file"`
	SearchFile  string `yaml:"search_file" mapstructure:"search_file"`
	CatalogFile string `yaml:"catalog_file" mapstructure:"catalog_file"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"` // debug, info, warn, error
}

// FileTimeout returns the per-file walk budget as a duration.
func (c *Config) FileTimeout() time.Duration {
	return time.Duration(c.Scan.FileTimeoutSeconds) * time.Second
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			Source: []string{
				"**/*.py",
				"**/*.ts",
				"**/*.tsx",
				"**/*.java",
				"**/*.c",
				"**/*.h",
				"**/*.rs",
				"**/*.php",
			},
			Ignore: []string{
				"node_modules",
				"vendor",
				".git",
				"dist",
				"build",
				"target",
				"__pycache__",
				".venv",
				".territory",
			},
			IncludeDeps:        false,
			FileTimeoutSeconds: 30,
		},
		Output: OutputConfig{
			Dir:         ".territory",
			NodesFile:   "nodes.uim",
			SearchFile:  "search.uim",
			CatalogFile: "catalog.db",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
