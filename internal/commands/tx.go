package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/GromitDog/GUMS-sub000/internal/model"
)

func newTxCommand() *cobra.Command {
	txCmd := &cobra.Command{
		Use:   "tx",
		Short: "Ledger transactions",
	}
	txCmd.PersistentFlags().String("dir", ".", "workspace directory")

	txCmd.AddCommand(newTxListCommand())
	txCmd.AddCommand(newTxShowCommand())
	txCmd.AddCommand(newTxReverseCommand())
	return txCmd
}

func newTxListCommand() *cobra.Command {
	var fromStr, toStr, paymentID string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List transactions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			var txns []model.Transaction
			if paymentID != "" {
				txns, err = ws.ledger.ListByPayment(cmd.Context(), paymentID)
			} else {
				from, to, werr := reportWindow(ws, fromStr, toStr)
				if werr != nil {
					return werr
				}
				txns, err = ws.ledger.ListBetween(cmd.Context(), from, to)
			}
			if err != nil {
				return err
			}
			for _, txn := range txns {
				cmd.Printf("%d  %s  %-40s %10s\n",
					txn.ID, txn.Date.Format(flagDateFormat), txn.Description, txn.TotalDebit().StringFixed(2))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&fromStr, "from", "", "window start YYYY-MM-DD (default term start)")
	cmd.Flags().StringVar(&toStr, "to", "", "window end YYYY-MM-DD (default term end)")
	cmd.Flags().StringVar(&paymentID, "payment-id", "", "list only entries for one payment id")
	return cmd
}

func newTxShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <transaction-id>",
		Short: "Show one transaction with its lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			txn, err := ws.ledger.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			cmd.Printf("Transaction %d  %s  %s\n", txn.ID, txn.Date.Format(flagDateFormat), txn.Description)
			if txn.PaymentID != "" {
				cmd.Printf("Payment: %s\n", txn.PaymentID)
			}
			for _, l := range txn.Lines {
				cmd.Printf("  %d %-28s %10s %10s\n",
					l.AccountCode, l.AccountName, l.Debit.StringFixed(2), l.Credit.StringFixed(2))
			}
			return nil
		},
	}
}

func newTxReverseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "reverse <transaction-id>",
		Short: "Reverse a transaction and restore account balances",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.ledger.ReverseTransaction(cmd.Context(), id); err != nil {
				return err
			}
			ws.audit("tx-reverse", args[0], id)
			cmd.Printf("Reversed transaction %d\n", id)
			return nil
		},
	}
}
