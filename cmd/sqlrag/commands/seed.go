// ABOUTME: Seed command to populate the demo customers and orders tables
// ABOUTME: Inserts the fixed sample rows, optionally only when the tables are empty
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/harper/sqlrag/internal/database"
)

// NewSeedCmd creates the seed command
func NewSeedCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample customers and orders",
		Long: `Insert the sample customers and orders rows into the SQLite database.

Each run inserts the rows again, so running it twice duplicates them.
Use --once to skip seeding when customers already has rows.

Examples:
  sqlrag seed
  sqlrag seed --once`,
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

			seeded, err := db.Seed(cmd.Context(), database.SeedOptions{SkipIfPresent: once})
			if err != nil {
				return err
			}

			if quiet {
				return nil
			}
			if !seeded {
				fmt.Fprintln(cmd.OutOrStdout(), "Database already seeded, nothing to do")
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d customers and %d orders into %s\n",
				database.SeedCustomerCount, database.SeedOrderCount, db.Path())
			return nil
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "Skip seeding if customers already has rows")

	return cmd
}
