package main

import (
	"context"
	"encoding/json"
	"fmt"

	"docintel-be/pkg/rag/search"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
)

const mcpToolName = "search_documents"

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve document search as an MCP tool over stdio",
	Long: `Starts a Model Context Protocol server on stdio exposing one tool,
search_documents, bound to the --user given on the command line.`,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(_ *cobra.Command, _ []string) error {
	userId, err := parseUser()
	if err != nil {
		return err
	}
	return server.ServeStdio(newRagServer(retriever, userId))
}

func newRagServer(r search.Retriever, userId uuid.UUID) *server.MCPServer {
	tool := mcp.NewTool(mcpToolName,
		mcp.WithDescription("Search the user's processed documents and return the most relevant text fragments"),
		mcp.WithString("question",
			mcp.Required(),
			mcp.Description("Natural-language question"),
		),
		mcp.WithNumber("k",
			mcp.Description("Maximum number of fragments"),
		),
		mcp.WithString("document_id",
			mcp.Description("Restrict the search to one document"),
		),
	)

	srv := server.NewMCPServer("docintel", "0.1.0", server.WithToolCapabilities(false))
	srv.AddTool(tool, searchHandler(r, userId))
	return srv
}

func searchHandler(r search.Retriever, userId uuid.UUID) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		question, err := request.RequireString("question")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		var documentId *uuid.UUID
		if raw := request.GetString("document_id", ""); raw != "" {
			id, err := uuid.Parse(raw)
			if err != nil {
				return mcp.NewToolResultError(fmt.Sprintf("invalid document_id: %v", err)), nil
			}
			documentId = &id
		}

		fragments, err := r.Query(ctx, userId, question, request.GetInt("k", 0), documentId)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		// one JSON object per line
		var response string
		for _, f := range fragments {
			raw, err := json.Marshal(f)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			response += string(raw) + "\n"
		}
		return mcp.NewToolResultText(response), nil
	}
}
