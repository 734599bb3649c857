// ABOUTME: Demo command running the whole pipeline end to end
// ABOUTME: Seeds once, indexes the schema and asks a fixed question
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/sqlrag/internal/core"
	"github.com/harper/sqlrag/internal/database"
)

// NewDemoCmd creates the demo command
func NewDemoCmd() *cobra.Command {
	var question string

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the full pipeline on the sample data",
		Long: `Run the full pipeline on the sample data.

Seeds the sample rows if the database is empty, indexes the schema,
then asks "` + core.DemoQuestion + `"
and prints the rows returned by the generated SQL.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			s, err := env.openSession(sessionOptions{generator: true, history: true})
			if err != nil {
				return err
			}
			defer s.close()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			if _, err := s.db.Seed(ctx, database.SeedOptions{SkipIfPresent: true}); err != nil {
				return err
			}

			schema, err := s.pipeline.IndexSchema(ctx, core.IndexOptions{})
			if err != nil {
				return err
			}
			if !quiet {
				fmt.Fprintf(out, "Indexed tables: %v\n", schema.Names())
				fmt.Fprintf(out, "Question: %s\n", question)
			}

			answer, err := s.pipeline.Ask(ctx, question)
			if err != nil {
				return err
			}
			return printAnswer(out, answer)
		},
	}

	cmd.Flags().StringVar(&question, "question", core.DemoQuestion, "Question to ask")

	return cmd
}
