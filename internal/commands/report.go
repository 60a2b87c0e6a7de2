package commands

import (
	"time"

	"github.com/spf13/cobra"
)

func newReportCommand() *cobra.Command {
	reportCmd := &cobra.Command{
		Use:   "report",
		Short: "Reports derived from the ledger",
	}
	reportCmd.PersistentFlags().String("dir", ".", "workspace directory")

	reportCmd.AddCommand(newReportIncomeCommand())
	reportCmd.AddCommand(newReportExpensesCommand())
	reportCmd.AddCommand(newReportDashboardCommand())
	reportCmd.AddCommand(newReportMeetingCommand())
	return reportCmd
}

func newReportIncomeCommand() *cobra.Command {
	var fromStr, toStr string
	cmd := &cobra.Command{
		Use:   "income",
		Short: "Income by source for a date window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			from, to, err := reportWindow(ws, fromStr, toStr)
			if err != nil {
				return err
			}
			rep, err := ws.report.Income(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			cmd.Printf("Income %s to %s\n", rep.From.Format(flagDateFormat), rep.To.Format(flagDateFormat))
			cmd.Printf("  Subs:     %10s\n", rep.Subs.StringFixed(2))
			cmd.Printf("  Activity: %10s\n", rep.Activity.StringFixed(2))
			cmd.Printf("  Total:    %10s\n", rep.Total.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&fromStr, "from", "", "window start YYYY-MM-DD (default term start)")
	cmd.Flags().StringVar(&toStr, "to", "", "window end YYYY-MM-DD (default term end)")
	return cmd
}

func newReportExpensesCommand() *cobra.Command {
	var fromStr, toStr string
	cmd := &cobra.Command{
		Use:   "expenses",
		Short: "Expenses by category for a date window",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			from, to, err := reportWindow(ws, fromStr, toStr)
			if err != nil {
				return err
			}
			rep, err := ws.report.Expenses(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			cmd.Printf("Expenses %s to %s\n", rep.From.Format(flagDateFormat), rep.To.Format(flagDateFormat))
			for _, row := range rep.Rows {
				cmd.Printf("  %d %-28s %3d %10s\n", row.AccountCode, row.AccountName, row.Count, row.Total.StringFixed(2))
			}
			cmd.Printf("  Total: %s\n", rep.Total.StringFixed(2))
			return nil
		},
	}
	cmd.Flags().StringVar(&fromStr, "from", "", "window start YYYY-MM-DD (default term start)")
	cmd.Flags().StringVar(&toStr, "to", "", "window end YYYY-MM-DD (default term end)")
	return cmd
}

func newReportDashboardCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Balances and term totals at a glance",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			from, to, err := ws.termWindow()
			if err != nil {
				return err
			}
			stats, err := ws.report.Dashboard(cmd.Context(), from, to)
			if err != nil {
				return err
			}
			cmd.Printf("Cash on hand:        %10s\n", stats.CashOnHand.StringFixed(2))
			cmd.Printf("Cheques pending:     %10s\n", stats.ChequesPending.StringFixed(2))
			cmd.Printf("Bank:                %10s\n", stats.Bank.StringFixed(2))
			cmd.Printf("Term income:         %10s\n", stats.TermIncome.StringFixed(2))
			cmd.Printf("Term expenses:       %10s\n", stats.TermExpenses.StringFixed(2))
			cmd.Printf("Outstanding claims:  %10s\n", stats.OutstandingClaims.StringFixed(2))
			return nil
		},
	}
}

func newReportMeetingCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "meeting <meeting-id>",
		Short: "Accounted-for expenses for one meeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			ws, err := openWorkspace(dir)
			if err != nil {
				return err
			}
			defer ws.Close()

			sum, err := ws.report.MeetingExpenses(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			cmd.Printf("Meeting %s: %d expenses, total %s\n", sum.MeetingID, sum.Count, sum.Total.StringFixed(2))
			return nil
		},
	}
}

// reportWindow resolves --from/--to flags, falling back to the configured
// term for any bound left empty.
func reportWindow(ws *workspace, fromStr, toStr string) (time.Time, time.Time, error) {
	from, to, err := ws.termWindow()
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if fromStr != "" {
		if from, err = time.Parse(flagDateFormat, fromStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	if toStr != "" {
		if to, err = time.Parse(flagDateFormat, toStr); err != nil {
			return time.Time{}, time.Time{}, err
		}
	}
	return from, to, nil
}
