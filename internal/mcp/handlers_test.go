// ABOUTME: Tests for MCP tool handlers
// ABOUTME: Drives each handler with in-memory stores and a scripted generator
package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/harper/sqlrag/internal/core"
	"github.com/harper/sqlrag/internal/database"
	"github.com/harper/sqlrag/internal/embedding"
	"github.com/harper/sqlrag/internal/history"
	"github.com/harper/sqlrag/internal/vectorstore"
)

var vocabulary = []string{"customer", "name", "email", "order", "product", "amount", "date"}

var keywordEmbedder = embedding.Func(func(ctx context.Context, text string) ([]float32, error) {
	text = strings.ToLower(text)
	vec := make([]float32, len(vocabulary))
	for i, word := range vocabulary {
		vec[i] = float32(strings.Count(text, word))
	}
	return vec, nil
})

type staticGenerator string

func (g staticGenerator) Generate(ctx context.Context, query, schemaContext string) (string, error) {
	return string(g), nil
}

func setupHandlers(t *testing.T, response string) *Handlers {
	t.Helper()
	ctx := context.Background()

	db, err := database.OpenInMemory()
	if err != nil {
		t.Fatalf("database.OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if _, err := db.Seed(ctx, database.SeedOptions{}); err != nil {
		t.Fatalf("Seed() error = %v", err)
	}

	store, err := vectorstore.OpenSQLiteInMemory("test-vector")
	if err != nil {
		t.Fatalf("OpenSQLiteInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	hist, err := history.OpenInMemory()
	if err != nil {
		t.Fatalf("history.OpenInMemory() error = %v", err)
	}
	t.Cleanup(func() { _ = hist.Close() })

	collection := vectorstore.NewCollection(store, keywordEmbedder, nil)
	pipeline := core.NewPipeline(db, collection, staticGenerator(response), nil).WithHistory(hist)

	server := mcpserver.NewMCPServer("sqlrag-test", "0.0.0")
	return RegisterTools(server, pipeline, db, hist, nil)
}

func callRequest(name string, args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]any {
	t.Helper()
	if result == nil {
		t.Fatal("result is nil")
	}
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type = %T, want TextContent", result.Content[0])
	}
	if result.IsError {
		t.Fatalf("tool returned error: %s", text.Text)
	}

	var out map[string]any
	if err := json.Unmarshal([]byte(text.Text), &out); err != nil {
		t.Fatalf("invalid JSON %q: %v", text.Text, err)
	}
	return out
}

func errorText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if !result.IsError {
		t.Fatal("expected an error result")
	}
	return result.Content[0].(mcp.TextContent).Text
}

func TestAskDatabase(t *testing.T) {
	h := setupHandlers(t, "SELECT product, amount FROM orders")
	ctx := context.Background()

	if _, err := h.IndexSchema(ctx, callRequest("index_schema", nil)); err != nil {
		t.Fatalf("IndexSchema() error = %v", err)
	}

	result, err := h.AskDatabase(ctx, callRequest("ask_database", map[string]any{
		"question": "give all product titles and their amount",
	}))
	if err != nil {
		t.Fatalf("AskDatabase() error = %v", err)
	}

	out := decodeResult(t, result)
	if out["sql"] != "SELECT product, amount FROM orders" {
		t.Errorf("sql = %v", out["sql"])
	}
	if out["row_count"] != float64(database.SeedOrderCount) {
		t.Errorf("row_count = %v, want %d", out["row_count"], database.SeedOrderCount)
	}
	if !strings.HasPrefix(out["context"].(string), "table: orders") {
		t.Errorf("context = %v", out["context"])
	}
	if out["request_id"] == "" {
		t.Error("request_id should be set")
	}
}

func TestAskDatabase_GenerateOnly(t *testing.T) {
	h := setupHandlers(t, "```sql\nSELECT name FROM customers\n```")
	ctx := context.Background()

	if _, err := h.IndexSchema(ctx, callRequest("index_schema", nil)); err != nil {
		t.Fatalf("IndexSchema() error = %v", err)
	}

	result, err := h.AskDatabase(ctx, callRequest("ask_database", map[string]any{
		"question": "customer names",
		"execute":  false,
	}))
	if err != nil {
		t.Fatalf("AskDatabase() error = %v", err)
	}

	out := decodeResult(t, result)
	if out["sql"] != "SELECT name FROM customers" {
		t.Errorf("sql = %v", out["sql"])
	}
	if _, ok := out["rows"]; ok {
		t.Error("rows should be absent when execute is false")
	}
}

func TestAskDatabase_MissingQuestion(t *testing.T) {
	h := setupHandlers(t, "SELECT 1")

	result, err := h.AskDatabase(context.Background(), callRequest("ask_database", map[string]any{}))
	if err != nil {
		t.Fatalf("AskDatabase() error = %v", err)
	}
	if msg := errorText(t, result); !strings.Contains(msg, "question") {
		t.Errorf("error = %q", msg)
	}
}

func TestAskDatabase_InvalidSQL(t *testing.T) {
	h := setupHandlers(t, "SELEC broken")
	ctx := context.Background()

	if _, err := h.IndexSchema(ctx, callRequest("index_schema", nil)); err != nil {
		t.Fatalf("IndexSchema() error = %v", err)
	}

	result, err := h.AskDatabase(ctx, callRequest("ask_database", map[string]any{"question": "orders"}))
	if err != nil {
		t.Fatalf("AskDatabase() error = %v", err)
	}
	if msg := errorText(t, result); !strings.Contains(msg, "SELEC broken") {
		t.Errorf("error = %q, want generated SQL included", msg)
	}
}

func TestGetSchema(t *testing.T) {
	h := setupHandlers(t, "")

	result, err := h.GetSchema(context.Background(), callRequest("get_schema", nil))
	if err != nil {
		t.Fatalf("GetSchema() error = %v", err)
	}

	out := decodeResult(t, result)
	tables, ok := out["tables"].([]any)
	if !ok || len(tables) != 2 {
		t.Fatalf("tables = %v", out["tables"])
	}
	first := tables[0].(map[string]any)
	if first["name"] != "customers" {
		t.Errorf("first table = %v", first["name"])
	}
	if first["descriptor"] != "table: customers, columns : id,name,email" {
		t.Errorf("descriptor = %v", first["descriptor"])
	}
}

func TestRunSQL(t *testing.T) {
	h := setupHandlers(t, "")

	result, err := h.RunSQL(context.Background(), callRequest("run_sql", map[string]any{
		"sql": "SELECT name, email FROM customers ORDER BY name",
	}))
	if err != nil {
		t.Fatalf("RunSQL() error = %v", err)
	}

	out := decodeResult(t, result)
	if out["row_count"] != float64(database.SeedCustomerCount) {
		t.Errorf("row_count = %v", out["row_count"])
	}
	columns := out["columns"].([]any)
	if len(columns) != 2 || columns[0] != "name" {
		t.Errorf("columns = %v", columns)
	}
}

func TestRunSQL_Errors(t *testing.T) {
	h := setupHandlers(t, "")
	ctx := context.Background()

	result, _ := h.RunSQL(ctx, callRequest("run_sql", map[string]any{}))
	if msg := errorText(t, result); !strings.Contains(msg, "sql argument") {
		t.Errorf("error = %q", msg)
	}

	result, _ = h.RunSQL(ctx, callRequest("run_sql", map[string]any{"sql": "SELECT * FROM missing_table"}))
	if msg := errorText(t, result); !strings.Contains(msg, "query failed") {
		t.Errorf("error = %q", msg)
	}
}

func TestIndexSchema_Reset(t *testing.T) {
	h := setupHandlers(t, "")

	result, err := h.IndexSchema(context.Background(), callRequest("index_schema", map[string]any{"reset": true}))
	if err != nil {
		t.Fatalf("IndexSchema() error = %v", err)
	}

	out := decodeResult(t, result)
	if out["reset"] != true {
		t.Errorf("reset = %v", out["reset"])
	}
	tables := out["tables"].([]any)
	if len(tables) != 2 {
		t.Errorf("tables = %v", tables)
	}
}

func TestListHistory(t *testing.T) {
	h := setupHandlers(t, "SELECT product FROM orders")
	ctx := context.Background()

	_, _ = h.IndexSchema(ctx, callRequest("index_schema", nil))
	_, _ = h.AskDatabase(ctx, callRequest("ask_database", map[string]any{"question": "product list"}))

	result, err := h.ListHistory(ctx, callRequest("list_history", map[string]any{"limit": 5}))
	if err != nil {
		t.Fatalf("ListHistory() error = %v", err)
	}

	out := decodeResult(t, result)
	entries := out["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	entry := entries[0].(map[string]any)
	if entry["question"] != "product list" {
		t.Errorf("question = %v", entry["question"])
	}
}

func TestListHistory_InvalidLimit(t *testing.T) {
	h := setupHandlers(t, "")

	result, _ := h.ListHistory(context.Background(), callRequest("list_history", map[string]any{"limit": 0}))
	if msg := errorText(t, result); !strings.Contains(msg, "limit") {
		t.Errorf("error = %q", msg)
	}
}
