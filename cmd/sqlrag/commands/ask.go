// ABOUTME: Ask command turning a natural-language question into executed SQL
// ABOUTME: Retrieves schema context, generates SQL with the model, runs it and prints rows
package commands

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/harper/sqlrag/internal/models"
)

// NewAskCmd creates the ask command
func NewAskCmd() *cobra.Command {
	var (
		sqlOnly   bool
		noHistory bool
	)

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask a question of the database in plain language",
		Long: `Ask a question of the database in plain language.

The schema descriptor closest to the question is retrieved from the
vector store and sent with the question to the language model. The SQL
it returns is executed verbatim and the rows are printed.

Run 'sqlrag index' first so the vector store holds the schema.

Examples:
  sqlrag ask "give all product titles and their amount"
  sqlrag ask --sql-only "which customers have an email address"
  sqlrag ask --format json "total amount per product"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			question := strings.Join(args, " ")

			env, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			s, err := env.openSession(sessionOptions{generator: true, history: !noHistory && !sqlOnly})
			if err != nil {
				return err
			}
			defer s.close()

			out := cmd.OutOrStdout()

			if sqlOnly {
				_, sqlText, err := s.pipeline.GenerateSQL(cmd.Context(), question)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, sqlText)
				return nil
			}

			answer, err := s.pipeline.Ask(cmd.Context(), question)
			if err != nil {
				if answer != nil && answer.SQL != "" {
					return fmt.Errorf("%w\nSQL: %s", err, answer.SQL)
				}
				return err
			}
			return printAnswer(out, answer)
		},
	}

	cmd.Flags().BoolVar(&sqlOnly, "sql-only", false, "Print the generated SQL without executing it")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record this question in history")

	return cmd
}

// printAnswer shows the context and SQL (unless quiet) followed by the rows
func printAnswer(w io.Writer, answer *models.Answer) error {
	if jsonOutput() {
		return printJSON(w, answer)
	}

	if !quiet {
		fmt.Fprintf(w, "Context: %s\n", answer.Context)
		fmt.Fprintf(w, "SQL:     %s\n\n", answer.SQL)
	}
	return printResult(w, answer.Result)
}
