package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/territory/internal/config"
	"github.com/mvp-joe/territory/internal/logging"
)

var (
	rootDirFlag  string
	logLevelFlag string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "territory",
	Short: "Territory - browse a codebase as collapsible, cross-referenced documents",
	Long: `Territory scans a repository and builds two artifact streams: per-file
documents in which nested definitions are elided into one-line stubs, and
a symbol index for search. Every identifier that resolves to a definition
carries an href to it, so the output can be browsed like hypertext.

Run 'territory scan' in a project, then 'territory search', 'territory
outline', 'territory deps' or 'territory mcp' against the artifacts in
.territory/.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDirFlag, "root", "", "project root (default is the current directory)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: debug, info, warn, error (overrides config)")
}

// projectRoot resolves the --root flag, defaulting to the working directory.
func projectRoot() (string, error) {
	if rootDirFlag != "" {
		return filepath.Abs(rootDirFlag)
	}
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	return dir, nil
}

// loadConfig loads .territory/config.yml from the project root and applies
// the --log-level override.
func loadConfig(rootDir string) (*config.Config, error) {
	cfg, err := config.LoadFromDir(rootDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if logLevelFlag != "" {
		cfg.Log.Level = logLevelFlag
	}
	logging.SetLevel(cfg.Log.Level)
	return cfg, nil
}

// artifactPath joins an output file name onto the configured output dir.
func artifactPath(rootDir string, cfg *config.Config, name string) string {
	return filepath.Join(rootDir, cfg.Output.Dir, name)
}
