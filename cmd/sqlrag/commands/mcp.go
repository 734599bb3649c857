// ABOUTME: MCP command starts Model Context Protocol server
// ABOUTME: Enables LLM agents like Claude to query the database via stdio
package commands

import (
	"fmt"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/harper/sqlrag/internal/mcp"
)

// NewMCPCmd creates the MCP command
func NewMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Start MCP server for LLM agents",
		Long: `Start MCP server for LLM agents

Runs sqlrag as an MCP (Model Context Protocol) server, enabling
LLM agents like Claude to ask questions of the database, inspect its
schema and run SQL via stdio.

Configure in Claude Desktop's config file to enable the tools.`,
		RunE: runMCP,
		Example: `  # Start MCP server (typically called by Claude Desktop)
  sqlrag mcp

  # Configure in claude_desktop_config.json:
  # {
  #   "mcpServers": {
  #     "sqlrag": {
  #       "command": "sqlrag",
  #       "args": ["mcp"]
  #     }
  #   }
  # }`,
	}

	return cmd
}

// runMCP starts the MCP server
func runMCP(cmd *cobra.Command, args []string) error {
	env, err := loadEnvironment()
	if err != nil {
		return err
	}
	defer env.close()

	// get_schema and run_sql need neither credential; the other tools
	// report the missing one as a tool error.
	generate := env.cfg.RequireGeneration() == nil
	if !generate {
		env.logger.Warn("API_KEY not set, ask_database will be unavailable")
	}

	s, err := env.openSession(sessionOptions{generator: generate, history: true, optionalEmbedder: true})
	if err != nil {
		return err
	}
	defer s.close()

	server := mcpserver.NewMCPServer(
		"sqlrag",
		versionInfo.Version,
	)

	mcp.RegisterTools(server, s.pipeline, s.db, s.history, env.logger)

	env.logger.Info("MCP server starting on stdio", zap.String("db", s.db.Path()))

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- mcpserver.ServeStdio(server)
	}()

	select {
	case <-cmd.Context().Done():
		env.logger.Info("shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	return nil
}
