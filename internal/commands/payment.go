package commands

import (
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/GromitDog/GUMS-sub000/internal/model"
	"github.com/GromitDog/GUMS-sub000/internal/posting"
)

func newPaymentCommand() *cobra.Command {
	var (
		dir         string
		paymentID   string
		amount      string
		method      string
		paymentType string
		memberID    string
		description string
		dateStr     string
	)

	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Record a received payment",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
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
			if paymentID == "" {
				paymentID = uuid.NewString()
			}

			txn, err := ws.posting.RecordPaymentEntry(cmd.Context(), posting.PaymentEntry{
				PaymentID:   paymentID,
				Amount:      amt,
				Method:      model.PaymentMethod(method),
				Type:        model.PaymentType(paymentType),
				MemberID:    memberID,
				Description: description,
				Date:        date,
			})
			if err != nil {
				return err
			}
			ws.audit("payment", txn.Description, txn.ID)
			cmd.Printf("Posted transaction %d: %s (%s)\n", txn.ID, txn.Description, amt.StringFixed(2))
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "workspace directory")
	cmd.Flags().StringVar(&paymentID, "payment-id", "", "payment id from the membership system (generated if empty)")
	cmd.Flags().StringVar(&amount, "amount", "", "payment amount (required)")
	cmd.Flags().StringVar(&method, "method", "cash", "payment method: cash, cheque, bank-transfer")
	cmd.Flags().StringVar(&paymentType, "type", "subs", "payment type: subs, activity")
	cmd.Flags().StringVar(&memberID, "member", "", "member id for the description")
	cmd.Flags().StringVar(&description, "description", "", "override the generated description")
	cmd.Flags().StringVar(&dateStr, "date", "", "payment date YYYY-MM-DD (default today)")
	_ = cmd.MarkFlagRequired("amount")

	return cmd
}

func newDepositCommand() *cobra.Command {
	var (
		dir       string
		cashAmt   string
		chequeAmt string
		dateStr   string
		notes     string
	)

	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Deposit cash and cheques into the bank",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			cash, err := parseAmount(cashAmt)
			if err != nil {
				return err
			}
			cheques, err := parseAmount(chequeAmt)
			if err != nil {
				return err
			}
			date, err := parseDate(dateStr)
			if err != nil {
				return err
			}

			txn, err := ws.posting.BankDeposit(cmd.Context(), cash, cheques, date, notes)
			if err != nil {
				return err
			}
			ws.audit("deposit", txn.Description, txn.ID)
			cmd.Printf("Posted transaction %d: %s\n", txn.ID, txn.Description)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "workspace directory")
	cmd.Flags().StringVar(&cashAmt, "cash", "0", "cash amount to deposit")
	cmd.Flags().StringVar(&chequeAmt, "cheques", "0", "cheque amount to deposit")
	cmd.Flags().StringVar(&dateStr, "date", "", "deposit date YYYY-MM-DD (default today)")
	cmd.Flags().StringVar(&notes, "notes", "", "deposit notes")

	return cmd
}
