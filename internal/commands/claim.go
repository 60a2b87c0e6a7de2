package commands

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/GromitDog/GUMS-sub000/internal/model"
	"github.com/GromitDog/GUMS-sub000/internal/posting"
)

func newClaimCommand() *cobra.Command {
	claimCmd := &cobra.Command{
		Use:   "claim",
		Short: "Volunteer expense claims",
	}
	claimCmd.PersistentFlags().String("dir", ".", "workspace directory")

	claimCmd.AddCommand(newClaimCreateCommand())
	claimCmd.AddCommand(newClaimAddExpenseCommand())
	claimCmd.AddCommand(newClaimRemoveExpenseCommand())
	claimCmd.AddCommand(newClaimSubmitCommand())
	claimCmd.AddCommand(newClaimSettleCommand())
	claimCmd.AddCommand(newClaimDeleteCommand())
	claimCmd.AddCommand(newClaimShowCommand())
	claimCmd.AddCommand(newClaimListCommand())
	return claimCmd
}

func newClaimCreateCommand() *cobra.Command {
	var claimedBy, notes string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Open a draft claim for a volunteer",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			claim, err := ws.posting.CreateClaim(cmd.Context(), claimedBy, notes)
			if err != nil {
				return err
			}
			ws.audit("claim-create", claim.ClaimedBy, 0)
			cmd.Printf("Created claim %d for %s\n", claim.ID, claim.ClaimedBy)
			return nil
		},
	}
	cmd.Flags().StringVar(&claimedBy, "claimed-by", "", "who is claiming (required)")
	cmd.Flags().StringVar(&notes, "notes", "", "claim notes")
	_ = cmd.MarkFlagRequired("claimed-by")
	return cmd
}

func newClaimAddExpenseCommand() *cobra.Command {
	var (
		amount       string
		categoryCode int
		description  string
		meetingID    string
		dateStr      string
	)
	cmd := &cobra.Command{
		Use:   "add-expense <claim-id>",
		Short: "Add an expense line to a draft claim",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			claimID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
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

			exp, err := ws.posting.AddExpenseToClaim(cmd.Context(), claimID, posting.ClaimExpense{
				Date:             date,
				Amount:           amt,
				ExpenseAccountID: category.ID,
				Description:      description,
				MeetingID:        meetingID,
			})
			if err != nil {
				return err
			}
			ws.audit("claim-add-expense", exp.Description, 0)
			cmd.Printf("Added expense %d (%s) to claim %d\n", exp.ID, amt.StringFixed(2), claimID)
			return nil
		},
	}
	cmd.Flags().StringVar(&amount, "amount", "", "expense amount (required)")
	cmd.Flags().IntVar(&categoryCode, "category", 0, "expense category account code (required)")
	cmd.Flags().StringVar(&description, "description", "", "what the money was spent on (required)")
	cmd.Flags().StringVar(&meetingID, "meeting", "", "meeting id this expense belongs to")
	cmd.Flags().StringVar(&dateStr, "date", "", "expense date YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("description")
	return cmd
}

func newClaimRemoveExpenseCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "remove-expense <claim-id> <expense-id>",
		Short: "Remove an expense line from a draft claim",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			claimID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			expenseID, err := strconv.ParseInt(args[1], 10, 64)
			if err != nil {
				return err
			}
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.posting.RemoveExpenseFromClaim(cmd.Context(), claimID, expenseID); err != nil {
				return err
			}
			ws.audit("claim-remove-expense", args[1], 0)
			cmd.Printf("Removed expense %d from claim %d\n", expenseID, claimID)
			return nil
		},
	}
}

func newClaimSubmitCommand() *cobra.Command {
	var dateStr string
	cmd := &cobra.Command{
		Use:   "submit <claim-id>",
		Short: "Submit a draft claim for settlement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			claimID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			date, err := parseDate(dateStr)
			if err != nil {
				return err
			}
			if err := ws.posting.SubmitClaim(cmd.Context(), claimID, date); err != nil {
				return err
			}
			ws.audit("claim-submit", args[0], 0)
			cmd.Printf("Submitted claim %d\n", claimID)
			return nil
		},
	}
	cmd.Flags().StringVar(&dateStr, "date", "", "submission date YYYY-MM-DD (default today)")
	return cmd
}

func newClaimSettleCommand() *cobra.Command {
	var (
		paidFromCode int
		method       string
		dateStr      string
	)
	cmd := &cobra.Command{
		Use:   "settle <claim-id>",
		Short: "Pay out a claim and post its expenses to the ledger",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			claimID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			date, err := parseDate(dateStr)
			if err != nil {
				return err
			}
			paidFrom, err := ws.accounts.GetByCode(cmd.Context(), paidFromCode)
			if err != nil {
				return err
			}

			txn, err := ws.posting.SettleExpenseClaim(cmd.Context(), claimID, paidFrom.ID,
				model.PaymentMethod(method), date)
			if err != nil {
				return err
			}
			ws.audit("claim-settle", txn.Description, txn.ID)
			cmd.Printf("Settled claim %d, posted transaction %d\n", claimID, txn.ID)
			return nil
		},
	}
	cmd.Flags().IntVar(&paidFromCode, "paid-from", 0, "asset account code paying the claim (required)")
	cmd.Flags().StringVar(&method, "method", "bank-transfer", "settlement method: cash, cheque, bank-transfer")
	cmd.Flags().StringVar(&dateStr, "date", "", "settlement date YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("paid-from")
	return cmd
}

func newClaimDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <claim-id>",
		Short: "Delete an unsettled claim and its expense lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			claimID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			if err := ws.posting.DeleteClaim(cmd.Context(), claimID); err != nil {
				return err
			}
			ws.audit("claim-delete", args[0], 0)
			cmd.Printf("Deleted claim %d\n", claimID)
			return nil
		},
	}
}

func newClaimShowCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show <claim-id>",
		Short: "Show a claim and its expense lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			claimID, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return err
			}
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			claim, err := ws.posting.GetClaim(cmd.Context(), claimID)
			if err != nil {
				return err
			}
			cmd.Printf("Claim %d  %s  [%s]\n", claim.ID, claim.ClaimedBy, claim.Status)
			if claim.Notes != "" {
				cmd.Printf("Notes: %s\n", claim.Notes)
			}
			for _, e := range claim.Expenses {
				cmd.Printf("  %d  %s  %-30s %10s\n",
					e.ID, e.Date.Format(flagDateFormat), e.Description, e.Amount.StringFixed(2))
			}
			cmd.Printf("Total: %s\n", claim.TotalAmount().StringFixed(2))
			return nil
		},
	}
}

func newClaimListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List claims, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			claims, err := ws.posting.ListClaims(cmd.Context())
			if err != nil {
				return err
			}
			for _, c := range claims {
				cmd.Printf("%d  %-20s %-10s %10s\n",
					c.ID, c.ClaimedBy, c.Status, c.TotalAmount().StringFixed(2))
			}
			return nil
		},
	}
}
