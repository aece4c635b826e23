package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mvp-joe/territory/internal/outline"
)

// AddFileOutlineTool registers the territory_file_outline tool.
func AddFileOutlineTool(s *server.MCPServer, outliner *outline.Outliner) {
	tool := mcp.NewTool(
		"territory_file_outline",
		mcp.WithDescription("Return the collapsed outline of an indexed file: full top-level code with nested function/class bodies elided, plus the list of definitions with their locations."),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Indexed file path, as recorded by the scan")),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
	)

	s.AddTool(tool, createFileOutlineHandler(outliner))
}

func createFileOutlineHandler(outliner *outline.Outliner) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		argsMap, ok := request.Params.Arguments.(map[string]interface{})
		if !ok {
			return mcp.NewToolResultError("invalid arguments format"), nil
		}

		path, ok := argsMap["path"].(string)
		if !ok || path == "" {
			return mcp.NewToolResultError("path parameter is required"), nil
		}

		text, err := outliner.File(path)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("outline failed: %v", err)), nil
		}

		jsonData, err := json.MarshalIndent(map[string]interface{}{
			"path":        path,
			"outline":     text,
			"definitions": outliner.Definitions(path),
		}, "", "  ")
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to encode results: %v", err)), nil
		}
		return mcp.NewToolResultText(string(jsonData)), nil
	}
}
