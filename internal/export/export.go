// ABOUTME: Export of schema, indexed documents and ask history
// ABOUTME: Supports YAML, JSON and Markdown output plus a separate embeddings dump
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harper/sqlrag/internal/models"
	"github.com/harper/sqlrag/internal/vectorstore"
)

// Supported output formats
const (
	FormatYAML     = "yaml"
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Data represents the complete exportable data structure
type Data struct {
	Version    string                `yaml:"version" json:"version"`
	ExportedAt string                `yaml:"exported_at" json:"exported_at"`
	Tool       string                `yaml:"tool" json:"tool"`
	Tables     []models.TableSchema  `yaml:"tables,omitempty" json:"tables,omitempty"`
	Documents  []Document            `yaml:"documents,omitempty" json:"documents,omitempty"`
	History    []models.HistoryEntry `yaml:"history,omitempty" json:"history,omitempty"`
}

// Document is an indexed descriptor without its embedding
type Document struct {
	ID         string `yaml:"id" json:"id"`
	Text       string `yaml:"text" json:"text"`
	Dimensions int    `yaml:"dimensions" json:"dimensions"`
}

// SchemaSource introspects the relational store
type SchemaSource interface {
	Schema(ctx context.Context) (models.SchemaDescriptor, error)
}

// HistorySource lists recorded asks
type HistorySource interface {
	List(ctx context.Context, limit int) ([]models.HistoryEntry, error)
}

// Sources names what to export. Nil sources are skipped.
type Sources struct {
	Schema  SchemaSource
	Vectors vectorstore.Store
	History HistorySource
}

// Collect gathers everything available from src
func Collect(ctx context.Context, src Sources) (*Data, error) {
	data := &Data{
		Version:    "1.0",
		ExportedAt: time.Now().Format(time.RFC3339),
		Tool:       "sqlrag",
	}

	if src.Schema != nil {
		schema, err := src.Schema.Schema(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to read schema: %w", err)
		}
		data.Tables = schema
	}

	// chromem cannot enumerate its documents; only listable stores export them
	if lister, ok := src.Vectors.(vectorstore.Lister); ok {
		entries, err := lister.Entries(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list documents: %w", err)
		}
		for _, e := range entries {
			data.Documents = append(data.Documents, Document{
				ID:         e.ID,
				Text:       e.Document,
				Dimensions: len(e.Embedding),
			})
		}
	}

	if src.History != nil {
		entries, err := src.History.List(ctx, 0)
		if err != nil {
			return nil, fmt.Errorf("failed to list history: %w", err)
		}
		data.History = entries
	}

	return data, nil
}

// Write encodes data to w in the given format
func Write(w io.Writer, format string, data *Data) error {
	switch format {
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode YAML: %w", err)
		}
		return encoder.Close()
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(data); err != nil {
			return fmt.Errorf("failed to encode JSON: %w", err)
		}
		return nil
	case FormatMarkdown:
		return writeMarkdown(w, data)
	default:
		return fmt.Errorf("unsupported export format %q (use yaml, json or markdown)", format)
	}
}

// ToFile writes data to outputPath, creating parent directories
func ToFile(outputPath, format string, data *Data) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	file, err := os.Create(outputPath) // #nosec G304
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() { _ = file.Close() }()

	return Write(file, format, data)
}

// EmbeddingsToJSON dumps every listable vector entry, embeddings included
func EmbeddingsToJSON(ctx context.Context, store vectorstore.Store, w io.Writer) error {
	lister, ok := store.(vectorstore.Lister)
	if !ok {
		return fmt.Errorf("vector store %T cannot list its entries", store)
	}

	entries, err := lister.Entries(ctx)
	if err != nil {
		return fmt.Errorf("failed to list embeddings: %w", err)
	}
	if entries == nil {
		entries = []models.VectorEntry{}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(entries); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeMarkdown(w io.Writer, data *Data) error {
	var b strings.Builder

	_, _ = fmt.Fprintf(&b, "# sqlrag Export - %s\n\n", time.Now().Format("2006-01-02"))
	_, _ = fmt.Fprintf(&b, "Generated: %s\n\n", data.ExportedAt)

	if len(data.Tables) > 0 {
		b.WriteString("## Schema\n\n")
		b.WriteString("| Table | Columns |\n")
		b.WriteString("|-------|---------|\n")
		for _, t := range data.Tables {
			_, _ = fmt.Fprintf(&b, "| %s | %s |\n", t.Name, strings.Join(t.Columns, ", "))
		}
		b.WriteString("\n")
	}

	if len(data.Documents) > 0 {
		b.WriteString("## Indexed Documents\n\n")
		for _, d := range data.Documents {
			_, _ = fmt.Fprintf(&b, "- **%s** (%d dims): `%s`\n", d.ID, d.Dimensions, d.Text)
		}
		b.WriteString("\n")
	}

	if len(data.History) > 0 {
		b.WriteString("## History\n\n")
		for _, h := range data.History {
			_, _ = fmt.Fprintf(&b, "### %s\n\n", h.Question)
			if h.SQL != "" {
				_, _ = fmt.Fprintf(&b, "```sql\n%s\n```\n\n", h.SQL)
			}
			if h.Succeeded() {
				_, _ = fmt.Fprintf(&b, "%d rows\n\n", h.RowCount)
			} else {
				_, _ = fmt.Fprintf(&b, "**Error:** %s\n\n", h.Error)
			}
			b.WriteString("---\n\n")
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
