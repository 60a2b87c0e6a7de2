// Package report builds read-only projections over the ledger: windowed
// income and expense reports and the dashboard totals. Windowed figures are
// re-derived from transaction lines rather than read from account balances,
// which are all-time.
package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GromitDog/GUMS-sub000/internal/model"
	"github.com/GromitDog/GUMS-sub000/internal/store"
)

const dateFormat = "2006-01-02"

// Service answers reporting queries.
type Service struct {
	st *store.Store
}

// NewService creates a report Service.
func NewService(st *store.Store) *Service {
	return &Service{st: st}
}

// IncomeReport is the windowed income summary.
type IncomeReport struct {
	From     time.Time
	To       time.Time
	Subs     decimal.Decimal
	Activity decimal.Decimal
	Total    decimal.Decimal
}

// Income re-derives subs and activity income for [from, to] by scanning
// the window's transaction lines against the two income accounts.
func (s *Service) Income(ctx context.Context, from, to time.Time) (IncomeReport, error) {
	rep := IncomeReport{From: from, To: to, Subs: decimal.Zero, Activity: decimal.Zero, Total: decimal.Zero}

	rows, err := s.st.DB.QueryContext(ctx, `
		SELECT a.code, l.debit, l.credit
		  FROM transaction_lines l
		  JOIN transactions t ON t.id = l.transaction_id
		  JOIN accounts a ON a.id = l.account_id
		 WHERE t.date >= ? AND t.date <= ?
		   AND a.code IN (?, ?)`,
		from.Format(dateFormat), to.Format(dateFormat),
		model.CodeSubsIncome, model.CodeActivityIncome)
	if err != nil {
		return IncomeReport{}, fmt.Errorf("scanning income lines: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code int
		var debit, credit string
		if err := rows.Scan(&code, &debit, &credit); err != nil {
			return IncomeReport{}, fmt.Errorf("scanning income line: %w", err)
		}
		d, err := decimal.NewFromString(debit)
		if err != nil {
			return IncomeReport{}, fmt.Errorf("parsing debit: %w", err)
		}
		c, err := decimal.NewFromString(credit)
		if err != nil {
			return IncomeReport{}, fmt.Errorf("parsing credit: %w", err)
		}
		net := c.Sub(d)
		switch code {
		case model.CodeSubsIncome:
			rep.Subs = rep.Subs.Add(net)
		case model.CodeActivityIncome:
			rep.Activity = rep.Activity.Add(net)
		}
	}
	if err := rows.Err(); err != nil {
		return IncomeReport{}, fmt.Errorf("scanning income lines: %w", err)
	}
	rep.Total = rep.Subs.Add(rep.Activity)
	return rep, nil
}

// ExpenseRow is one category's share of an expense report.
type ExpenseRow struct {
	AccountCode int
	AccountName string
	Count       int
	Total       decimal.Decimal
}

// ExpenseReport is the windowed expense summary. Only accounted-for
// expenses appear: posted directly or belonging to a settled claim.
// Draft and submitted claim expenses have no ledger lines yet, so counting
// them would count money not yet spent.
type ExpenseReport struct {
	From  time.Time
	To    time.Time
	Rows  []ExpenseRow
	Total decimal.Decimal
}

// Expenses builds the expense report for [from, to], grouped by category
// in chart order.
func (s *Service) Expenses(ctx context.Context, from, to time.Time) (ExpenseReport, error) {
	rep := ExpenseReport{From: from, To: to, Total: decimal.Zero}

	rows, err := s.st.DB.QueryContext(ctx, accountedExpenses+`
		   AND e.date >= ? AND e.date <= ?
		 ORDER BY a.code, e.id`,
		from.Format(dateFormat), to.Format(dateFormat))
	if err != nil {
		return ExpenseReport{}, fmt.Errorf("scanning expenses: %w", err)
	}
	defer rows.Close()

	var current *ExpenseRow
	for rows.Next() {
		var code int
		var name, amount string
		if err := rows.Scan(&code, &name, &amount); err != nil {
			return ExpenseReport{}, fmt.Errorf("scanning expense: %w", err)
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return ExpenseReport{}, fmt.Errorf("parsing expense amount: %w", err)
		}
		if current == nil || current.AccountCode != code {
			rep.Rows = append(rep.Rows, ExpenseRow{AccountCode: code, AccountName: name, Total: decimal.Zero})
			current = &rep.Rows[len(rep.Rows)-1]
		}
		current.Count++
		current.Total = current.Total.Add(amt)
		rep.Total = rep.Total.Add(amt)
	}
	if err := rows.Err(); err != nil {
		return ExpenseReport{}, fmt.Errorf("scanning expenses: %w", err)
	}
	return rep, nil
}

// accountedExpenses selects expenses that exist in the ledger: posted
// directly or settled through a claim.
const accountedExpenses = `
		SELECT a.code, a.name, e.amount
		  FROM expenses e
		  JOIN accounts a ON a.id = e.expense_account_id
		  LEFT JOIN expense_claims c ON c.id = e.claim_id
		 WHERE (e.transaction_id IS NOT NULL OR c.status = 'settled')`

// DashboardStats combines all-time balances with the current term's
// windowed totals and the value of claims awaiting settlement.
type DashboardStats struct {
	CashOnHand        decimal.Decimal
	ChequesPending    decimal.Decimal
	Bank              decimal.Decimal
	TermIncome        decimal.Decimal
	TermExpenses      decimal.Decimal
	OutstandingClaims decimal.Decimal
}

// Dashboard builds the dashboard snapshot for the given term window.
func (s *Service) Dashboard(ctx context.Context, termFrom, termTo time.Time) (DashboardStats, error) {
	var stats DashboardStats
	var err error

	if stats.CashOnHand, err = s.balanceByCode(ctx, model.CodeCashOnHand); err != nil {
		return DashboardStats{}, err
	}
	if stats.ChequesPending, err = s.balanceByCode(ctx, model.CodeChequesPending); err != nil {
		return DashboardStats{}, err
	}
	if stats.Bank, err = s.balanceByCode(ctx, model.CodeBank); err != nil {
		return DashboardStats{}, err
	}

	income, err := s.Income(ctx, termFrom, termTo)
	if err != nil {
		return DashboardStats{}, err
	}
	stats.TermIncome = income.Total

	expenses, err := s.Expenses(ctx, termFrom, termTo)
	if err != nil {
		return DashboardStats{}, err
	}
	stats.TermExpenses = expenses.Total

	if stats.OutstandingClaims, err = s.outstandingClaims(ctx); err != nil {
		return DashboardStats{}, err
	}
	return stats, nil
}

// MeetingExpenseSummary totals the accounted-for expenses linked to one
// meeting, for event reporting.
type MeetingExpenseSummary struct {
	MeetingID string
	Count     int
	Total     decimal.Decimal
}

// MeetingExpenses sums the accounted-for expenses linked to a meeting.
func (s *Service) MeetingExpenses(ctx context.Context, meetingID string) (MeetingExpenseSummary, error) {
	sum := MeetingExpenseSummary{MeetingID: meetingID, Total: decimal.Zero}

	rows, err := s.st.DB.QueryContext(ctx, accountedExpenses+" AND e.meeting_id = ?", meetingID)
	if err != nil {
		return MeetingExpenseSummary{}, fmt.Errorf("scanning meeting expenses: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var code int
		var name, amount string
		if err := rows.Scan(&code, &name, &amount); err != nil {
			return MeetingExpenseSummary{}, fmt.Errorf("scanning meeting expense: %w", err)
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return MeetingExpenseSummary{}, fmt.Errorf("parsing expense amount: %w", err)
		}
		sum.Count++
		sum.Total = sum.Total.Add(amt)
	}
	if err := rows.Err(); err != nil {
		return MeetingExpenseSummary{}, fmt.Errorf("scanning meeting expenses: %w", err)
	}
	return sum, nil
}

func (s *Service) balanceByCode(ctx context.Context, code int) (decimal.Decimal, error) {
	var raw string
	err := s.st.DB.QueryRowContext(ctx, "SELECT balance FROM accounts WHERE code = ?", code).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("reading balance for code %d: %w", code, err)
	}
	bal, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("parsing balance for code %d: %w", code, err)
	}
	return bal, nil
}

// outstandingClaims sums the expenses of every claim not yet settled.
func (s *Service) outstandingClaims(ctx context.Context) (decimal.Decimal, error) {
	rows, err := s.st.DB.QueryContext(ctx, `
		SELECT e.amount
		  FROM expenses e
		  JOIN expense_claims c ON c.id = e.claim_id
		 WHERE c.status != 'settled'`)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("scanning outstanding claims: %w", err)
	}
	defer rows.Close()

	total := decimal.Zero
	for rows.Next() {
		var amount string
		if err := rows.Scan(&amount); err != nil {
			return decimal.Decimal{}, fmt.Errorf("scanning outstanding claim expense: %w", err)
		}
		amt, err := decimal.NewFromString(amount)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("parsing claim amount: %w", err)
		}
		total = total.Add(amt)
	}
	if err := rows.Err(); err != nil {
		return decimal.Decimal{}, fmt.Errorf("scanning outstanding claims: %w", err)
	}
	return total, nil
}
