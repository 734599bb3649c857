// ABOUTME: MCP tool definitions and registration for the sqlrag server
// ABOUTME: Exposes asking, schema inspection, raw SQL, indexing and history as tools
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/harper/sqlrag/internal/core"
	"github.com/harper/sqlrag/internal/logging"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, pipeline *core.Pipeline, db core.Database, history HistorySource, logger *zap.Logger) *Handlers {
	handlers := &Handlers{
		pipeline: pipeline,
		db:       db,
		history:  history,
		logger:   logging.OrNop(logger),
	}

	// 1. ask_database - natural language question to executed SQL
	server.AddTool(mcp.Tool{
		Name:        "ask_database",
		Description: "Answer a natural-language question about the database. Retrieves the most relevant table schema, generates a SQL query with the language model and executes it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"question": map[string]interface{}{
					"type":        "string",
					"description": "Question to answer, e.g. 'give all product titles and their amount'",
				},
				"execute": map[string]interface{}{
					"type":        "boolean",
					"description": "Execute the generated SQL (default: true). When false only the SQL is returned.",
					"default":     true,
				},
			},
			Required: []string{"question"},
		},
	}, handlers.AskDatabase)

	// 2. get_schema - introspected tables and columns
	server.AddTool(mcp.Tool{
		Name:        "get_schema",
		Description: "List every table with its columns, along with the descriptor text that is embedded for retrieval.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.GetSchema)

	// 3. run_sql - execute SQL verbatim
	server.AddTool(mcp.Tool{
		Name:        "run_sql",
		Description: "Execute a SQL statement verbatim against the database and return the resulting rows.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"sql": map[string]interface{}{
					"type":        "string",
					"description": "SQL statement to execute",
				},
			},
			Required: []string{"sql"},
		},
	}, handlers.RunSQL)

	// 4. index_schema - embed schema descriptors into the vector store
	server.AddTool(mcp.Tool{
		Name:        "index_schema",
		Description: "Embed one descriptor per table into the vector store so questions can be matched to tables.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"reset": map[string]interface{}{
					"type":        "boolean",
					"description": "Clear the collection before indexing (default: false)",
					"default":     false,
				},
			},
		},
	}, handlers.IndexSchema)

	// 5. list_history - recent questions and their SQL
	server.AddTool(mcp.Tool{
		Name:        "list_history",
		Description: "List recently asked questions with the SQL generated for them and whether execution succeeded.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of entries to return (default: 10)",
					"default":     10,
				},
			},
		},
	}, handlers.ListHistory)

	return handlers
}
