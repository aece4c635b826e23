package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/territory/internal/search"
)

var (
	searchTypeFlag  string
	searchPathFlag  string
	searchLimitFlag int
)

// searchCmd represents the search command
var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search the symbol index of the last scan",
	Long: `Search looks up definitions by name in the search stream produced by
'territory scan'. Results can be narrowed to a definition type or a
path pattern.

Examples:
  territory search parse_config
  territory search Loader --type class_definition
  territory search main --path '*cmd*'
`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.Flags().StringVarP(&searchTypeFlag, "type", "t", "", "Filter by definition type (e.g. function_definition)")
	searchCmd.Flags().StringVarP(&searchPathFlag, "path", "p", "", "Filter by path wildcard pattern")
	searchCmd.Flags().IntVarP(&searchLimitFlag, "limit", "n", 20, "Maximum number of results")
}

func runSearch(cmd *cobra.Command, args []string) error {
	rootDir, err := projectRoot()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(rootDir)
	if err != nil {
		return err
	}

	searcher, err := search.Open(artifactPath(rootDir, cfg, cfg.Output.SearchFile))
	if err != nil {
		return fmt.Errorf("failed to open search index (run 'territory scan' first): %w", err)
	}
	defer searcher.Close()

	symbols, err := searcher.Search(context.Background(), args[0], &search.Options{
		Type:  searchTypeFlag,
		Path:  searchPathFlag,
		Limit: searchLimitFlag,
	})
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if len(symbols) == 0 {
		fmt.Println("No matches.")
		return nil
	}
	for _, sym := range symbols {
		fmt.Printf("%-30s %-24s %s@%d\n", sym.Key, sym.Type, sym.Path, sym.Offset)
	}
	return nil
}
