// ABOUTME: End-to-end tests running subcommands against a temp data directory
// ABOUTME: Remote embedding and chat endpoints are served by httptest

package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/harper/sqlrag/internal/config"
	"github.com/harper/sqlrag/internal/models"
)

var envKeys = []string{
	"DATA_DIR", "DB_PATH", "HISTORY_PATH", "VECTOR_BACKEND", "COLLECTION",
	"API_KEY", "GEN_BASE_URL", "GEN_MODEL",
	"EMBEDDING_PROVIDER", "HUGGING_FACE_TOKEN", "HF_BASE_URL", "EMBEDDING_MODEL", "OPENAI_API_KEY",
	"REQUEST_TIMEOUT", "MAX_RETRIES", "RETRY_DELAY", "LOG_LEVEL", "LOG_FORMAT",
}

// setupEnv points every command at a fresh data directory
func setupEnv(t *testing.T) string {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	t.Setenv("DATA_DIR", dir)
	t.Setenv("LOG_LEVEL", "error")
	return dir
}

func runRoot(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var output bytes.Buffer
	cmd.SetOut(&output)
	cmd.SetErr(&output)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return output.String(), err
}

var vocabulary = []string{"customer", "name", "email", "order", "product", "amount", "date"}

func keywordVector(text string) []float32 {
	text = strings.ToLower(text)
	vec := make([]float32, len(vocabulary))
	for i, word := range vocabulary {
		vec[i] = float32(strings.Count(text, word))
	}
	return vec
}

// setupRemotes starts fake feature-extraction and chat completion servers
// and points the environment at them
func setupRemotes(t *testing.T, sql string) {
	t.Helper()

	hf := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/pipeline/feature-extraction/") {
			t.Errorf("embedding path = %s", r.URL.Path)
		}
		var req struct {
			Inputs []string `json:"inputs"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Inputs) != 1 {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		_ = json.NewEncoder(w).Encode([][]float32{keywordVector(req.Inputs[0])})
	}))
	t.Cleanup(hf.Close)

	gen := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":     "chatcmpl-1",
			"object": "chat.completion",
			"model":  config.DefaultGenModel,
			"choices": []map[string]any{
				{
					"index":         0,
					"finish_reason": "stop",
					"message":       map[string]string{"role": "assistant", "content": sql},
				},
			},
		})
	}))
	t.Cleanup(gen.Close)

	t.Setenv("HUGGING_FACE_TOKEN", "hf-test")
	t.Setenv("HF_BASE_URL", hf.URL)
	t.Setenv("API_KEY", "gen-test")
	t.Setenv("GEN_BASE_URL", gen.URL+"/v1")
}

func TestSeedAndExec(t *testing.T) {
	setupEnv(t)

	if _, err := runRoot(t, "seed"); err != nil {
		t.Fatalf("seed error = %v", err)
	}

	out, err := runRoot(t, "exec", "SELECT name, email FROM customers ORDER BY name")
	if err != nil {
		t.Fatalf("exec error = %v", err)
	}
	for _, want := range []string{"NAME", "Alice Smith", "bob@example.com", "2 row(s)"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestSeed_TwiceDuplicatesRows(t *testing.T) {
	setupEnv(t)

	for i := 0; i < 2; i++ {
		if _, err := runRoot(t, "seed"); err != nil {
			t.Fatalf("seed #%d error = %v", i+1, err)
		}
	}

	out, err := runRoot(t, "--format", "json", "exec", "SELECT COUNT(*) AS n FROM orders")
	if err != nil {
		t.Fatalf("exec error = %v", err)
	}

	var result models.QueryResult
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if result.Rows[0][0] != float64(10) {
		t.Errorf("orders = %v, want 10", result.Rows[0][0])
	}
}

func TestSeed_Once(t *testing.T) {
	setupEnv(t)

	if _, err := runRoot(t, "seed", "--once"); err != nil {
		t.Fatalf("seed error = %v", err)
	}
	out, err := runRoot(t, "seed", "--once")
	if err != nil {
		t.Fatalf("second seed error = %v", err)
	}
	if !strings.Contains(out, "already seeded") {
		t.Errorf("output = %q", out)
	}
}

func TestSchemaCmd(t *testing.T) {
	setupEnv(t)

	out, err := runRoot(t, "schema")
	if err != nil {
		t.Fatalf("schema error = %v", err)
	}
	for _, want := range []string{
		"table: customers, columns : id,name,email",
		"table: orders, columns : id,customer_id,order_date,amount,product",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExec_InvalidSQL(t *testing.T) {
	setupEnv(t)

	if _, err := runRoot(t, "exec", "SELEC * FROM"); err == nil {
		t.Error("exec expected error for invalid SQL")
	}
}

func TestAsk_MissingAPIKey(t *testing.T) {
	setupEnv(t)
	t.Setenv("HUGGING_FACE_TOKEN", "hf-test")

	_, err := runRoot(t, "ask", "anything")
	if !errors.Is(err, config.ErrMissingAPIKey) {
		t.Errorf("ask error = %v, want ErrMissingAPIKey", err)
	}
}

func TestIndex_MissingToken(t *testing.T) {
	setupEnv(t)

	_, err := runRoot(t, "index")
	if !errors.Is(err, config.ErrMissingHFToken) {
		t.Errorf("index error = %v, want ErrMissingHFToken", err)
	}
}

func TestIndexCmd(t *testing.T) {
	setupEnv(t)
	setupRemotes(t, "SELECT 1")

	out, err := runRoot(t, "index", "--probe", "customer emails")
	if err != nil {
		t.Fatalf("index error = %v", err)
	}
	if !strings.Contains(out, "Indexed 2 table(s): customers, orders") {
		t.Errorf("output = %q", out)
	}
	if !strings.Contains(out, "table: customers, columns : id,name,email") {
		t.Errorf("probe did not match customers:\n%s", out)
	}
}

func TestDemo_EndToEnd(t *testing.T) {
	setupEnv(t)
	setupRemotes(t, "SELECT product, amount FROM orders")

	out, err := runRoot(t, "demo")
	if err != nil {
		t.Fatalf("demo error = %v", err)
	}
	for _, want := range []string{
		"Question: give all product titles and their amount",
		"SQL:     SELECT product, amount FROM orders",
		"Laptop",
		"Gaming Console",
		"5 row(s)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	// demo seeds only once
	if _, err := runRoot(t, "demo"); err != nil {
		t.Fatalf("second demo error = %v", err)
	}

	out, err = runRoot(t, "--format", "json", "history")
	if err != nil {
		t.Fatalf("history error = %v", err)
	}
	var entries []models.HistoryEntry
	if err := json.Unmarshal([]byte(out), &entries); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if len(entries) != 2 {
		t.Fatalf("history entries = %d, want 2", len(entries))
	}
	if entries[0].RowCount != 5 {
		t.Errorf("RowCount = %d, want 5 (seeded once)", entries[0].RowCount)
	}
}

func TestAsk_SQLOnly(t *testing.T) {
	setupEnv(t)
	setupRemotes(t, "```sql\nSELECT name FROM customers\n```")

	if _, err := runRoot(t, "index"); err != nil {
		t.Fatalf("index error = %v", err)
	}

	out, err := runRoot(t, "ask", "--sql-only", "customer", "names")
	if err != nil {
		t.Fatalf("ask error = %v", err)
	}
	if strings.TrimSpace(out) != "SELECT name FROM customers" {
		t.Errorf("output = %q", out)
	}
}

func TestExportCmd(t *testing.T) {
	setupEnv(t)
	setupRemotes(t, "SELECT 1")

	if _, err := runRoot(t, "index", "--probe", ""); err != nil {
		t.Fatalf("index error = %v", err)
	}

	out, err := runRoot(t, "export", "--type", "json")
	if err != nil {
		t.Fatalf("export error = %v", err)
	}

	var data struct {
		Tool      string           `json:"tool"`
		Tables    []map[string]any `json:"tables"`
		Documents []map[string]any `json:"documents"`
	}
	if err := json.Unmarshal([]byte(out), &data); err != nil {
		t.Fatalf("invalid JSON %q: %v", out, err)
	}
	if data.Tool != "sqlrag" || len(data.Tables) != 2 || len(data.Documents) != 2 {
		t.Errorf("export = %+v", data)
	}
}

func TestExportCmd_InvalidType(t *testing.T) {
	setupEnv(t)

	if _, err := runRoot(t, "export", "--type", "csv"); err == nil {
		t.Error("export expected error for csv")
	}
}

func TestHistory_InvalidLimit(t *testing.T) {
	setupEnv(t)

	if _, err := runRoot(t, "history", "--limit", "0"); err == nil {
		t.Error("history expected error for limit 0")
	}
}
