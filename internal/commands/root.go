package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/GromitDog/GUMS-sub000/internal/buildinfo"
)

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "gums",
		Short:   "Unit ledger and bookkeeping",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", buildinfo.Version, buildinfo.Commit, buildinfo.Date),
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.AddCommand(newInitCommand())
	rootCmd.AddCommand(newAccountsCommand())
	rootCmd.AddCommand(newPaymentCommand())
	rootCmd.AddCommand(newDepositCommand())
	rootCmd.AddCommand(newExpenseCommand())
	rootCmd.AddCommand(newClaimCommand())
	rootCmd.AddCommand(newReportCommand())
	rootCmd.AddCommand(newTxCommand())
	rootCmd.AddCommand(newImportCommand())

	return rootCmd
}
