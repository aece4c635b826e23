package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mvp-joe/territory/internal/logging"
	"github.com/mvp-joe/territory/internal/mcp"
)

// mcpCmd represents the mcp command
var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start the MCP server over the last scan's artifacts",
	Long: `Start the Model Context Protocol (MCP) server that lets LLM-powered
coding assistants browse the scanned codebase.

The MCP server:
- Loads the node and search streams produced by 'territory scan'
- Provides territory_symbol_search, territory_file_outline and
  territory_file_deps tools
- Communicates via stdio (standard MCP transport)

Example:
  territory mcp`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	rootDir, err := projectRoot()
	if err != nil {
		return err
	}
	cfg, err := loadConfig(rootDir)
	if err != nil {
		return err
	}

	graph, err := loadRefGraph()
	if err != nil {
		return fmt.Errorf("failed to load reference graph: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Territory MCP Server\n")
	fmt.Fprintf(os.Stderr, "Project: %s\n\n", rootDir)

	server, err := mcp.NewServer(&mcp.ServerConfig{
		NodesPath:  artifactPath(rootDir, cfg, cfg.Output.NodesFile),
		SearchPath: artifactPath(rootDir, cfg, cfg.Output.SearchFile),
		Logger:     logging.Default(),
	}, graph)
	if err != nil {
		return fmt.Errorf("failed to create MCP server: %w", err)
	}
	defer server.Close()

	if err := server.Serve(context.Background()); err != nil {
		return fmt.Errorf("MCP server error: %w", err)
	}
	return nil
}
