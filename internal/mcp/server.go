// Package mcp exposes the indexed repository to coding assistants over
// the Model Context Protocol: symbol search, file outlines, and file
// dependency queries, all answered from the output streams of the last
// scan.
package mcp

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/territory/internal/logging"
	"github.com/mvp-joe/territory/internal/outline"
	"github.com/mvp-joe/territory/internal/refgraph"
	"github.com/mvp-joe/territory/internal/search"
)

// ServerConfig points the server at the artifacts of a finished scan.
type ServerConfig struct {
	NodesPath  string
	SearchPath string
	Logger     *log.Logger
}

// Server is the territory MCP server.
type Server struct {
	mcp      *server.MCPServer
	searcher *search.Searcher
	log      *log.Logger
}

// NewServer loads the streams and registers the tools. graph may be nil
// when no reference edges were recorded; the deps tool then reports
// empty results.
func NewServer(cfg *ServerConfig, graph *refgraph.Graph) (*Server, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	searcher, err := search.Open(cfg.SearchPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load search index: %w", err)
	}
	outliner, err := outline.Load(cfg.NodesPath)
	if err != nil {
		searcher.Close()
		return nil, fmt.Errorf("failed to load node stream: %w", err)
	}

	mcpServer := server.NewMCPServer(
		"territory-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
	)
	AddSymbolSearchTool(mcpServer, searcher)
	AddFileOutlineTool(mcpServer, outliner)
	AddFileDepsTool(mcpServer, graph)

	return &Server{mcp: mcpServer, searcher: searcher, log: logger}, nil
}

// Serve blocks on the stdio transport until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("starting mcp server on stdio")
		if err := server.ServeStdio(s.mcp); err != nil {
			errCh <- fmt.Errorf("mcp server error: %w", err)
		}
	}()

	select {
	case <-sigCh:
		s.log.Info("received shutdown signal")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// Close releases the loaded indexes.
func (s *Server) Close() error {
	return s.searcher.Close()
}
