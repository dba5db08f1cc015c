package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCommand creates the ledgerctl root command with all
// subcommands registered. Every subcommand reads its database
// connection from the same environment the server uses.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "ledgerctl",
		Short: "Operational tooling for the ledger service",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newMigrateCommand())
	rootCmd.AddCommand(newSeedAccountsCommand())
	rootCmd.AddCommand(newRebuildBalancesCommand())

	return rootCmd
}
