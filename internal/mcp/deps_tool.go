package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/territory/internal/refgraph"
)

const maxDepsDepth = 10

// AddFileDepsTool registers the territory_file_deps tool. graph may be
// nil; queries then return empty results.
func AddFileDepsTool(s *server.MCPServer, graph *refgraph.Graph) {
	tool := mcp.NewTool(
		"territory_file_deps",
		mcp.WithDescription("Query file-level reference relationships from the last scan. Operations: dependencies (files this file references), dependents (files referencing this file)."),
		mcp.WithString("operation",
			mcp.Required(),
			mcp.Description("'dependencies' or 'dependents'")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Indexed file path, as recorded by the scan")),
		mcp.WithNumber("depth",
			mcp.Description(fmt.Sprintf("Traversal depth (default: 1, max: %d, 0 for unlimited)", maxDepsDepth))),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createFileDepsHandler(graph))
}

func createFileDepsHandler(graph *refgraph.Graph) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		operation, ok := argsMap["operation"].(string)
		if !ok || (operation != "dependencies" && operation != "dependents") {
			return mcp.NewToolResultError("operation must be 'dependencies' or 'dependents'"), nil
		}
		path, ok := argsMap["path"].(string)
		if !ok || path == "" {
			return mcp.NewToolResultError("path parameter is required"), nil
		}

		depth := 1
		if d, ok := argsMap["depth"].(float64); ok {
			depth = int(d)
			if depth < 0 {
				depth = 0
			} else if depth > maxDepsDepth {
				depth = maxDepsDepth
			}
		}

		var files []string
		if graph != nil {
			if operation == "dependencies" {
				files = graph.Dependencies(path, depth)
			} else {
				files = graph.Dependents(path, depth)
			}
		}
		if files == nil {
			files = []string{}
		}

		jsonData, err := json.MarshalIndent(map[string]interface{}{
			"operation": operation,
			"path":      path,
			"files":     files,
		}, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode results: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
