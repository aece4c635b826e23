package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/territory/internal/search"
)

const maxSearchLimit = 100

// AddSymbolSearchTool registers the territory_symbol_search tool.
func AddSymbolSearchTool(s *server.MCPServer, searcher *search.Searcher) {
	tool := mcp.NewTool(
		"territory_symbol_search",
		mcp.WithDescription("Search indexed symbol definitions (functions, classes) by name. Returns the defining file and byte offset for each hit."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Symbol name or query string, e.g. 'parse_config'")),
		mcp.WithString("type",
			mcp.Description("Filter by definition kind, e.g. 'function_definition' or 'class_definition'")),
		mcp.WithString("path",
			mcp.Description("Filter by file path, wildcard syntax, e.g. '*config.py'")),
		mcp.WithNumber("limit",
			mcp.Description(fmt.Sprintf("Maximum number of results (default: 20, max: %d)", maxSearchLimit))),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createSymbolSearchHandler(searcher))
}

func createSymbolSearchHandler(searcher *search.Searcher) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		query, ok := argsMap["query"].(string)
		if !ok || query == "" {
			return mcp.NewToolResultError("query parameter is required"), nil
		}

		opts := &search.Options{}
		if typ, ok := argsMap["type"].(string); ok {
			opts.Type = typ
		}
		if path, ok := argsMap["path"].(string); ok {
			opts.Path = path
		}
		if limit, ok := argsMap["limit"].(float64); ok {
			opts.Limit = int(limit)
			if opts.Limit > maxSearchLimit {
				opts.Limit = maxSearchLimit
			}
		}

		hits, err := searcher.Search(ctx, query, opts)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
		}

		jsonData, err := json.MarshalIndent(map[string]interface{}{
			"total":   len(hits),
			"symbols": hits,
		}, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode results: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
