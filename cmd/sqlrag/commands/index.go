// ABOUTME: Index command to embed schema descriptors into the vector store
// ABOUTME: One descriptor per table; existing ids are left untouched unless --reset
package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/sqlrag/internal/core"
)

// defaultProbe is the retrieval check run after indexing
const defaultProbe = "customers data schema, orders data schema"

// NewIndexCmd creates the index command
func NewIndexCmd() *cobra.Command {
	var (
		reset bool
		probe string
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Embed the database schema into the vector store",
		Long: `Introspect the database and store one embedded descriptor per table
in the vector store collection.

Descriptors already present are kept as they are; use --reset to clear
the collection first. After indexing, the --probe text is retrieved to
show which descriptor it matches.

Examples:
  sqlrag index
  sqlrag index --reset
  sqlrag index --probe "who bought what"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			s, err := env.openSession(sessionOptions{})
			if err != nil {
				return err
			}
			defer s.close()

			ctx := cmd.Context()
			schema, err := s.pipeline.IndexSchema(ctx, core.IndexOptions{Reset: reset})
			if err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Indexed %d table(s): %s\n", len(schema), strings.Join(schema.Names(), ", "))
			}

			if probe == "" {
				return nil
			}
			retrieved, err := s.pipeline.Retrieve(ctx, probe)
			if err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintf(cmd.OutOrStdout(), "Probe %q matched: %s\n", probe, retrieved)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Clear the collection before indexing")
	cmd.Flags().StringVar(&probe, "probe", defaultProbe, "Text to retrieve after indexing (empty to skip)")

	return cmd
}
