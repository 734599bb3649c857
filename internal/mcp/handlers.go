// ABOUTME: MCP tool handler implementations for the sqlrag server
// ABOUTME: Handlers serialize through a mutex since the pipeline is not concurrency safe
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/harper/sqlrag/internal/core"
	"github.com/harper/sqlrag/internal/models"
)

// HistorySource lists recorded asks
type HistorySource interface {
	List(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	pipeline *core.Pipeline
	db       core.Database
	history  HistorySource // optional
	logger   *zap.Logger
	mu       sync.Mutex
}

// AskDatabase handles the ask_database tool
func (h *Handlers) AskDatabase(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	question, err := request.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError("question argument is required and must be a string"), nil
	}
	execute := request.GetBool("execute", true)

	h.mu.Lock()
	defer h.mu.Unlock()

	requestID := uuid.New().String()
	h.logger.Info("ask_database", zap.String("request_id", requestID), zap.String("question", question))

	if !execute {
		schemaContext, sqlText, err := h.pipeline.GenerateSQL(ctx, question)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
		}
		return jsonResult(map[string]interface{}{
			"request_id": requestID,
			"question":   question,
			"context":    schemaContext,
			"sql":        sqlText,
		})
	}

	answer, err := h.pipeline.Ask(ctx, question)
	if err != nil {
		msg := fmt.Sprintf("ask failed: %v", err)
		if answer != nil && answer.SQL != "" {
			msg = fmt.Sprintf("ask failed: %v (sql: %s)", err, answer.SQL)
		}
		return mcp.NewToolResultError(msg), nil
	}

	return jsonResult(map[string]interface{}{
		"request_id": requestID,
		"question":   answer.Question,
		"context":    answer.Context,
		"sql":        answer.SQL,
		"columns":    answer.Result.Columns,
		"rows":       answer.Result.Rows,
		"row_count":  answer.Result.RowCount(),
	})
}

// GetSchema handles the get_schema tool
func (h *Handlers) GetSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	schema, err := h.db.Schema(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read schema: %v", err)), nil
	}

	tables := make([]map[string]interface{}, 0, len(schema))
	for _, table := range schema {
		tables = append(tables, map[string]interface{}{
			"name":       table.Name,
			"columns":    table.Columns,
			"descriptor": table.Describe(),
		})
	}

	return jsonResult(map[string]interface{}{
		"tables": tables,
	})
}

// RunSQL handles the run_sql tool
func (h *Handlers) RunSQL(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sqlText, err := request.RequireString("sql")
	if err != nil {
		return mcp.NewToolResultError("sql argument is required and must be a string"), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	result, err := h.db.Execute(ctx, sqlText)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"sql":       result.SQL,
		"columns":   result.Columns,
		"rows":      result.Rows,
		"row_count": result.RowCount(),
	})
}

// IndexSchema handles the index_schema tool
func (h *Handlers) IndexSchema(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	reset := request.GetBool("reset", false)

	h.mu.Lock()
	defer h.mu.Unlock()

	schema, err := h.pipeline.IndexSchema(ctx, core.IndexOptions{Reset: reset})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("indexing failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"success": true,
		"tables":  schema.Names(),
		"reset":   reset,
	})
}

// ListHistory handles the list_history tool
func (h *Handlers) ListHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.history == nil {
		return mcp.NewToolResultError("history is not enabled"), nil
	}

	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		return mcp.NewToolResultError("limit must be positive"), nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	entries, err := h.history.List(ctx, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to list history: %v", err)), nil
	}
	if entries == nil {
		entries = []models.HistoryEntry{}
	}

	return jsonResult(map[string]interface{}{
		"entries": entries,
	})
}

func jsonResult(response map[string]interface{}) (*mcp.CallToolResult, error) {
	responseJSON, err := json.Marshal(response)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(responseJSON)), nil
}
