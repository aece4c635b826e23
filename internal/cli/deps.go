package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/territory/internal/refgraph"
)

var (
	depsReverseFlag bool
	depsDepthFlag   int
)

// depsCmd represents the deps command
var depsCmd = &cobra.Command{
	Use:   "deps <path>",
	Short: "Show file-level references recorded by the last scan",
	Long: `Deps queries the reference edges of the last recorded run. By default it
lists the files the given file references; with --reverse it lists the
files that reference it.

Examples:
  territory deps src/app.py
  territory deps src/util.py --reverse
  territory deps src/app.py --depth 0
`,
	Args: cobra.ExactArgs(1),
	RunE: runDeps,
}

func init() {
	rootCmd.AddCommand(depsCmd)
	depsCmd.Flags().BoolVarP(&depsReverseFlag, "reverse", "r", false, "List dependents instead of dependencies")
	depsCmd.Flags().IntVarP(&depsDepthFlag, "depth", "d", 1, "Traversal depth, 0 for unlimited")
}

func runDeps(cmd *cobra.Command, args []string) error {
	graph, err := loadRefGraph()
	if err != nil {
		return err
	}
	if graph == nil {
		fmt.Println("No recorded runs. Run 'territory scan' first.")
		return nil
	}

	var files []string
	if depsReverseFlag {
		files = graph.Dependents(args[0], depsDepthFlag)
	} else {
		files = graph.Dependencies(args[0], depsDepthFlag)
	}

	if len(files) == 0 {
		fmt.Println("No references.")
		return nil
	}
	for _, f := range files {
		fmt.Println(f)
	}
	return nil
}

// loadRefGraph builds the reference graph from the latest catalog run.
// Returns nil when no run has been recorded yet.
func loadRefGraph() (*refgraph.Graph, error) {
	rootDir, err := projectRoot()
	if err != nil {
		return nil, err
	}
	cfg, err := loadConfig(rootDir)
	if err != nil {
		return nil, err
	}

	cat, err := openCatalog(rootDir, cfg)
	if err != nil {
		return nil, err
	}
	defer cat.Close()

	run, err := cat.LatestRun()
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}
	if run == nil {
		return nil, nil
	}
	refs, err := cat.RunRefs(run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to read references: %w", err)
	}
	return refgraph.New(refs)
}
