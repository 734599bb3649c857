// ABOUTME: Exec command to run SQL verbatim against the database
// ABOUTME: Useful for checking generated SQL by hand
package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

// NewExecCmd creates the exec command
func NewExecCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "exec <sql>",
		Short: "Execute SQL against the database",
		Long: `Execute a SQL statement verbatim against the SQLite database and
print any rows it returns.

Examples:
  sqlrag exec "SELECT product, amount FROM orders"
  sqlrag exec --format json "SELECT * FROM customers"`,
		Args: cobra.MinimumNArgs(1),
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

			result, err := db.Execute(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), result)
		},
	}

	return cmd
}
