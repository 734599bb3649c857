// ABOUTME: Export command writing schema, indexed documents and history
// ABOUTME: Supports YAML, JSON and Markdown, plus a raw embeddings dump
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/harper/sqlrag/internal/export"
	"github.com/harper/sqlrag/internal/vectorstore"
)

// NewExportCmd creates the export command
func NewExportCmd() *cobra.Command {
	var (
		exportType     string
		outputPath     string
		embeddingsPath string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export schema, indexed documents and history",
		Long: `Export the database schema, the documents stored in the vector index
and the ask history.

Writes to stdout unless --output is given. --embeddings additionally
dumps every stored vector as JSON (SQLite vector backend only).

Examples:
  sqlrag export
  sqlrag export --type json --output backup.json
  sqlrag export --type markdown --output report.md
  sqlrag export --embeddings vectors.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch exportType {
			case export.FormatYAML, export.FormatJSON, export.FormatMarkdown:
			default:
				return fmt.Errorf("--type must be yaml, json or markdown, got %q", exportType)
			}

			env, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			db, err := env.openDatabase()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			// Export reads stored vectors only, so no embedder is needed.
			store, err := vectorstore.OpenFromConfig(env.cfg, env.logger)
			if err != nil {
				return fmt.Errorf("opening vector store: %w", err)
			}
			defer func() { _ = store.Close() }()

			hist, err := env.openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = hist.Close() }()

			ctx := cmd.Context()
			data, err := export.Collect(ctx, export.Sources{Schema: db, Vectors: store, History: hist})
			if err != nil {
				return err
			}

			if outputPath == "" {
				if err := export.Write(cmd.OutOrStdout(), exportType, data); err != nil {
					return err
				}
			} else {
				if err := export.ToFile(outputPath, exportType, data); err != nil {
					return err
				}
				if !quiet {
					fmt.Fprintf(cmd.ErrOrStderr(), "Exported to %s\n", outputPath)
				}
			}

			if embeddingsPath == "" {
				return nil
			}

			file, err := os.Create(embeddingsPath) // #nosec G304
			if err != nil {
				return fmt.Errorf("failed to create embeddings file: %w", err)
			}
			defer func() { _ = file.Close() }()

			if err := export.EmbeddingsToJSON(ctx, store, file); err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintf(cmd.ErrOrStderr(), "Embeddings written to %s\n", embeddingsPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&exportType, "type", "t", export.FormatYAML, "Export format: yaml, json or markdown")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output file (default stdout)")
	cmd.Flags().StringVar(&embeddingsPath, "embeddings", "", "Also write raw embeddings as JSON to this file")

	return cmd
}
