// ABOUTME: History command listing previously asked questions
// ABOUTME: Shows question, generated SQL, row count and outcome
package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewHistoryCmd creates the history command
func NewHistoryCmd() *cobra.Command {
	var (
		limit int
		clearAll bool
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List previously asked questions",
		Long: `List previously asked questions with the SQL generated for them.

Examples:
  sqlrag history
  sqlrag history --limit 50
  sqlrag history --clear`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validatePositiveInt(limit, "limit"); err != nil {
				return err
			}

			env, err := loadEnvironment()
			if err != nil {
				return err
			}
			defer env.close()

			store, err := env.openHistory()
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()

			if clearAll {
				n, err := store.Clear(cmd.Context())
				if err != nil {
					return err
				}
				if !quiet {
					fmt.Fprintf(out, "Cleared %d history entries\n", n)
				}
				return nil
			}

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return err
			}

			if jsonOutput() {
				return printJSON(out, entries)
			}

			if len(entries) == 0 {
				if !quiet {
					fmt.Fprintln(out, "No history yet")
				}
				return nil
			}

			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "WHEN\tQUESTION\tSQL\tROWS\tSTATUS\n")
			fmt.Fprintf(w, "----\t--------\t---\t----\t------\n")
			for _, e := range entries {
				status := "ok"
				if !e.Succeeded() {
					status = "error: " + truncate(e.Error, 40)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
					formatTime(e.CreatedAt),
					truncate(e.Question, 40),
					truncate(e.SQL, 50),
					e.RowCount,
					status)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if !quiet {
				fmt.Fprintf(out, "\nTotal: %d entr(ies)\n", len(entries))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries to show")
	cmd.Flags().BoolVar(&clearAll, "clear", false, "Delete all history entries")

	return cmd
}
