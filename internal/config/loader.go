package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults, then config file, then environment (env wins).
	Load() (*Config, error)
}

type loader struct {
	rootDir string
}

// NewLoader creates a loader reading .territory/config.yml under rootDir.
func NewLoader(rootDir string) Loader {
	return &loader{rootDir: rootDir}
}

func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(l.rootDir, ".territory"))

	v.SetEnvPrefix("TERRITORY")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("scan.include_deps")
	v.BindEnv("scan.file_timeout_seconds")
	v.BindEnv("output.dir")
	v.BindEnv("output.nodes_file")
	v.BindEnv("output.search_file")
	v.BindEnv("output.catalog_file")
	v.BindEnv("log.level")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, defaults plus env apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("scan.source", defaults.Scan.Source)
	v.SetDefault("scan.ignore", defaults.Scan.Ignore)
	v.SetDefault("scan.include_deps", defaults.Scan.IncludeDeps)
	v.SetDefault("scan.file_timeout_seconds", defaults.Scan.FileTimeoutSeconds)

	v.SetDefault("output.dir", defaults.Output.Dir)
	v.SetDefault("output.nodes_file", defaults.Output.NodesFile)
	v.SetDefault("output.search_file", defaults.Output.SearchFile)
	v.SetDefault("output.catalog_file", defaults.Output.CatalogFile)

	v.SetDefault("log.level", defaults.Log.Level)
}

// LoadFromDir loads configuration rooted at the given directory.
func LoadFromDir(rootDir string) (*Config, error) {
	return NewLoader(rootDir).Load()
}

// Load loads configuration rooted at the current working directory.
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return LoadFromDir(wd)
}
