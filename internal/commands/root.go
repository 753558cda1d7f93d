package commands

import (
	"github.com/spf13/cobra"

	"github.com/cleared-dev/tradematch/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "tradematch",
		Short:   "Reconcile brokerage option history against imported transactions",
		Version: buildinfo.String(),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		newInitCommand(),
		newParseCommand(),
		newReconcileCommand(),
		newAccountsCommand(),
	)

	return rootCmd
}
