package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/GromitDog/GUMS-sub000/internal/posting"
)

func newExpenseCommand() *cobra.Command {
	expenseCmd := &cobra.Command{
		Use:   "expense",
		Short: "Direct expenses paid from unit funds",
	}
	expenseCmd.PersistentFlags().String("dir", ".", "workspace directory")

	expenseCmd.AddCommand(newExpenseAddCommand())
	expenseCmd.AddCommand(newExpenseDeleteCommand())
	return expenseCmd
}

func newExpenseAddCommand() *cobra.Command {
	var (
		amount       string
		categoryCode int
		paidFromCode int
		description  string
		meetingID    string
		dateStr      string
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record an expense paid directly from an asset account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			amt, err := parseAmount(amount)
			if err != nil {
				return err
			}
			date, err := parseDate(dateStr)
			if err != nil {
				return err
			}
			category, err := ws.accounts.GetByCode(cmd.Context(), categoryCode)
			if err != nil {
				return err
			}
			paidFrom, err := ws.accounts.GetByCode(cmd.Context(), paidFromCode)
			if err != nil {
				return err
			}

			exp, err := ws.posting.RecordDirectExpense(cmd.Context(), posting.DirectExpense{
				Date:              date,
				Amount:            amt,
				ExpenseAccountID:  category.ID,
				Description:       description,
				PaidFromAccountID: paidFrom.ID,
				MeetingID:         meetingID,
			})
			if err != nil {
				return err
			}
			ws.audit("expense-add", exp.Description, exp.TransactionID)
			cmd.Printf("Recorded expense %d: %s (%s) against %d %s\n",
				exp.ID, exp.Description, amt.StringFixed(2), category.Code, category.Name)
			return nil
		},
	}

	cmd.Flags().StringVar(&amount, "amount", "", "expense amount (required)")
	cmd.Flags().IntVar(&categoryCode, "category", 0, "expense category account code (required)")
	cmd.Flags().IntVar(&paidFromCode, "paid-from", 0, "asset account code the money left (required)")
	cmd.Flags().StringVar(&description, "description", "", "what the money was spent on (required)")
	cmd.Flags().StringVar(&meetingID, "meeting", "", "meeting id this expense belongs to")
	cmd.Flags().StringVar(&dateStr, "date", "", "expense date YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("paid-from")
	_ = cmd.MarkFlagRequired("description")

	return cmd
}

func newExpenseDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <expense-id>",
		Short: "Delete a direct expense and reverse its ledger entry",
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

			if err := ws.posting.DeleteDirectExpense(cmd.Context(), id); err != nil {
				return err
			}
			ws.audit("expense-delete", args[0], 0)
			cmd.Printf("Deleted expense %d\n", id)
			return nil
		},
	}
}
