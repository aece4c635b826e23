package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/territory/internal/catalog"
	"github.com/mvp-joe/territory/internal/logging"
	"github.com/mvp-joe/territory/internal/scanner"
)

var (
	quietFlag       bool
	includeDepsFlag bool
	outputDirFlag   string
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan the project and build the document and search streams",
	Long: `Scan walks every source file matching the configured patterns, builds
per-file documents with nested definitions elided, resolves identifier
references into hrefs, and writes two streams to the output directory:

  nodes.uim   - the documents (one record per file and per definition)
  search.uim  - the symbol index

Files referenced from the project but living outside it are skipped unless
--include-deps is set. Each run is recorded in the catalog database so
later commands can find the artifacts.

Examples:
  # Scan the current directory
  territory scan

  # Scan without progress output
  territory scan --quiet

  # Also index referenced files outside the project root
  territory scan --include-deps
`,
	RunE: runScan,
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", false, "Disable progress bars and non-error output")
	scanCmd.Flags().BoolVar(&includeDepsFlag, "include-deps", false, "Also index referenced files outside the project root")
	scanCmd.Flags().StringVarP(&outputDirFlag, "output", "o", "", "Output directory (overrides config)")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nInterrupted! Cancelling scan...")
		cancel()
	}()

	rootDir, err := projectRoot()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(rootDir)
	if err != nil {
		return err
	}

	outputDir := artifactPath(rootDir, cfg, "")
	if outputDirFlag != "" {
		outputDir = outputDirFlag
	}

	progress := NewCLIProgressReporter(quietFlag)

	session, err := scanner.NewSession(scanner.Options{
		Root:           rootDir,
		Output:         outputDir,
		IncludeDeps:    includeDepsFlag || cfg.Scan.IncludeDeps,
		FileTimeout:    cfg.FileTimeout(),
		SourcePatterns: cfg.Scan.Source,
		IgnorePatterns: cfg.Scan.Ignore,
		NodesFile:      cfg.Output.NodesFile,
		SearchFile:     cfg.Output.SearchFile,
		OnProgress:     progress.OnProgress,
		Logger:         logging.Default(),
	})
	if err != nil {
		return fmt.Errorf("failed to create scan session: %w", err)
	}

	startedAt := time.Now()
	result, err := session.Run(ctx)
	progress.Finish()
	if err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("scan cancelled")
		}
		return fmt.Errorf("scan failed: %w", err)
	}

	cat, err := catalog.Open(artifactPath(rootDir, cfg, cfg.Output.CatalogFile))
	if err != nil {
		return fmt.Errorf("failed to open catalog: %w", err)
	}
	defer cat.Close()
	if err := cat.RecordRun(result, startedAt); err != nil {
		return fmt.Errorf("failed to record run: %w", err)
	}

	if !quietFlag {
		fmt.Printf("✓ Scan complete: %d files in %.1fs\n", len(result.Files), result.Duration.Seconds())
		fmt.Printf("  Nodes:  %s\n", result.NodesPath)
		fmt.Printf("  Search: %s\n", result.SearchPath)
		if failed := result.Failed(); failed > 0 {
			fmt.Printf("  %d file(s) did not complete cleanly:\n", failed)
			for _, f := range result.Files {
				if f.Status != scanner.StatusOK {
					fmt.Printf("    %s: %s (%s)\n", f.Path, f.Status, f.Detail)
				}
			}
		}
	}
	return nil
}
