// ABOUTME: Schema command to show introspected tables and descriptors
// ABOUTME: Prints the exact text that gets embedded for each table
package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/harper/sqlrag/internal/core"
)

// NewSchemaCmd creates the schema command
func NewSchemaCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Show database tables and their descriptors",
		Long: `Show every table in the SQLite database with its columns and the
descriptor text that the index command embeds.

Examples:
  sqlrag schema
  sqlrag schema --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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

			schema, err := db.Schema(cmd.Context())
			if err != nil {
				return err
			}

			if jsonOutput() {
				return printJSON(cmd.OutOrStdout(), schema)
			}

			_, texts := core.Describe(schema)
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "TABLE\tCOLUMNS\tDESCRIPTOR\n")
			fmt.Fprintf(w, "-----\t-------\t----------\n")
			for i, table := range schema {
				fmt.Fprintf(w, "%s\t%s\t%s\n", table.Name, strings.Join(table.Columns, ", "), texts[i])
			}
			return w.Flush()
		},
	}

	return cmd
}
