package commands

import (
	"github.com/spf13/cobra"
)

func newAccountsCommand() *cobra.Command {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Chart of accounts",
	}
	accountsCmd.PersistentFlags().String("dir", ".", "workspace directory")

	accountsCmd.AddCommand(newAccountsListCommand())
	accountsCmd.AddCommand(newAccountsAddCommand())
	accountsCmd.AddCommand(newAccountsRenameCommand())
	accountsCmd.AddCommand(newAccountsDeleteCommand())
	return accountsCmd
}

func newAccountsListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all accounts with balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			accts, err := ws.accounts.All(cmd.Context())
			if err != nil {
				return err
			}
			for _, a := range accts {
				marker := " "
				if a.IsSystem {
					marker = "*"
				}
				cmd.Printf("%d%s %-8s %-28s %10s\n", a.Code, marker, a.Type, a.Name, a.Balance.StringFixed(2))
			}
			return nil
		},
	}
}

func newAccountsAddCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name>",
		Short: "Add an expense category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			acct, err := ws.accounts.CreateExpenseAccount(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			ws.audit("account-add", acct.Name, 0)
			cmd.Printf("Created expense account %d %s\n", acct.Code, acct.Name)
			return nil
		},
	}
}

func newAccountsRenameCommand() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "rename <new-name>",
		Short: "Rename an expense category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.accounts.UpdateExpenseAccount(cmd.Context(), id, args[0]); err != nil {
				return err
			}
			ws.audit("account-rename", args[0], 0)
			cmd.Printf("Renamed account %d to %s\n", id, args[0])
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "account id (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func newAccountsDeleteCommand() *cobra.Command {
	var id int64
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an unused expense category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.accounts.DeleteExpenseAccount(cmd.Context(), id); err != nil {
				return err
			}
			ws.audit("account-delete", "", 0)
			cmd.Printf("Deleted account %d\n", id)
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "account id (required)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}
