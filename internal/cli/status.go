package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/territory/internal/catalog"
	"github.com/mvp-joe/territory/internal/config"
	"github.com/mvp-joe/territory/internal/scanner"
	"github.com/mvp-joe/territory/internal/uim"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the last recorded scan run",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func openCatalog(rootDir string, cfg *config.Config) (*catalog.Catalog, error) {
	cat, err := catalog.Open(artifactPath(rootDir, cfg, cfg.Output.CatalogFile))
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}
	return cat, nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	rootDir, err := projectRoot()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(rootDir)
	if err != nil {
		return err
	}

	cat, err := openCatalog(rootDir, cfg)
	if err != nil {
		return err
	}
	defer cat.Close()

	run, err := cat.LatestRun()
	if err != nil {
		return fmt.Errorf("failed to read catalog: %w", err)
	}
	if run == nil {
		fmt.Println("No recorded runs. Run 'territory scan' first.")
		return nil
	}

	fmt.Printf("Run:      %s\n", run.ID)
	fmt.Printf("Root:     %s\n", run.Root)
	fmt.Printf("Started:  %s\n", run.StartedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("Duration: %.1fs\n", run.Duration.Seconds())
	fmt.Printf("Files:    %d (%d failed)\n", run.FileCount, run.Failed)

	if nodes, err := uim.ReadNodes(run.NodesPath); err == nil {
		fmt.Printf("Nodes:    %d records (%s)\n", len(nodes), run.NodesPath)
	}
	if items, err := uim.ReadIndexItems(run.SearchPath); err == nil {
		fmt.Printf("Symbols:  %d records (%s)\n", len(items), run.SearchPath)
	}

	if run.Failed > 0 {
		files, err := cat.RunFiles(run.ID)
		if err != nil {
			return fmt.Errorf("failed to read run files: %w", err)
		}
		fmt.Println("Failed files:")
		for _, f := range files {
			if f.Status != scanner.StatusOK {
				fmt.Printf("  %s: %s (%s)\n", f.Path, f.Status, f.Detail)
			}
		}
	}
	return nil
}
