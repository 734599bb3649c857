// ABOUTME: Root command and global flags for the sqlrag CLI
// ABOUTME: Wires every subcommand and cancels work on SIGINT/SIGTERM
package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	verbose      bool
	quiet        bool
	outputFormat string
)

const banner = `
 ███████  ██████  ██      ██████   █████   ██████
 ██      ██    ██ ██      ██   ██ ██   ██ ██
 ███████ ██    ██ ██      ██████  ███████ ██   ███
      ██ ██ ▄▄ ██ ██      ██   ██ ██   ██ ██    ██
 ███████  ██████  ███████ ██   ██ ██   ██  ██████
             ▀▀
`

// NewRootCmd creates the root command with all subcommands attached
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sqlrag",
		Short: "Ask questions of a SQLite database in plain language",
		Long: banner + `
sqlrag embeds your database schema into a vector store, retrieves the
table most relevant to a question, asks a language model for a SQL query
and runs it against the local SQLite database.

Configuration is read from the environment and an optional .env file
(API_KEY, HUGGING_FACE_TOKEN, DATA_DIR, VECTOR_BACKEND, ...).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			switch outputFormat {
			case "auto", "table", "json":
				return nil
			default:
				return fmt.Errorf("--format must be auto, table or json, got %q", outputFormat)
			}
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors and suppress informational output")
	cmd.PersistentFlags().StringVar(&outputFormat, "format", "auto", "Output format: auto, table or json")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")

	cmd.AddCommand(
		NewSeedCmd(),
		NewSchemaCmd(),
		NewIndexCmd(),
		NewAskCmd(),
		NewExecCmd(),
		NewHistoryCmd(),
		NewExportCmd(),
		NewMCPCmd(),
		NewDemoCmd(),
		NewVersionCmd(),
	)

	return cmd
}

// Execute runs the root command with a context cancelled on interrupt
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return NewRootCmd().ExecuteContext(ctx)
}
