package posting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GromitDog/GUMS-sub000/internal/faults"
	"github.com/GromitDog/GUMS-sub000/internal/ledger"
	"github.com/GromitDog/GUMS-sub000/internal/model"
)

// DirectExpense describes an expense paid immediately from unit funds.
type DirectExpense struct {
	Date              time.Time
	Amount            decimal.Decimal
	ExpenseAccountID  int64
	Description       string
	PaidFromAccountID int64
	MeetingID         string
}

// RecordDirectExpense posts a direct expense (debit category, credit the
// paying asset account) and stores the resulting transaction id on the
// expense row so the posting can later be found and reversed.
func (s *Service) RecordDirectExpense(ctx context.Context, e DirectExpense) (model.Expense, error) {
	e.Description = strings.TrimSpace(e.Description)
	if !e.Amount.IsPositive() {
		return model.Expense{}, faults.Validation("expense amount must be greater than zero")
	}
	if e.Description == "" {
		return model.Expense{}, faults.Validation("expense description is required")
	}

	var saved model.Expense
	err := s.st.WithTx(ctx, func(tx *sql.Tx) error {
		category, err := accountByID(tx, e.ExpenseAccountID)
		if err != nil {
			return err
		}
		if category.Type != model.AccountTypeExpense {
			return faults.Validation("account %q is not an expense category", category.Name)
		}
		paidFrom, err := accountByID(tx, e.PaidFromAccountID)
		if err != nil {
			return err
		}
		if paidFrom.Type != model.AccountTypeAsset {
			return faults.Validation("account %q is not an asset account", paidFrom.Name)
		}

		txn, err := s.ledger.CreateTransactionTx(tx, e.Date, e.Description, "", []ledger.NewLine{
			{AccountID: category.ID, Debit: e.Amount},
			{AccountID: paidFrom.ID, Credit: e.Amount},
		})
		if err != nil {
			return err
		}

		res, err := tx.Exec(`INSERT INTO expenses
			(date, amount, expense_account_id, description, paid_from_account_id, transaction_id, meeting_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			e.Date.Format(dateFormat), e.Amount.String(), category.ID, e.Description,
			paidFrom.ID, txn.ID, nullableString(e.MeetingID))
		if err != nil {
			return fmt.Errorf("inserting expense: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading expense id: %w", err)
		}
		saved = model.Expense{
			ID:                id,
			Date:              e.Date,
			Amount:            e.Amount,
			ExpenseAccountID:  category.ID,
			Description:       e.Description,
			PaidFromAccountID: paidFrom.ID,
			TransactionID:     txn.ID,
			MeetingID:         e.MeetingID,
		}
		return nil
	})
	if err != nil {
		return model.Expense{}, err
	}
	return saved, nil
}

// DeleteDirectExpense reverses a directly posted expense and removes its
// row, restoring every touched balance exactly. Expenses that belong to a
// claim are removed through the claim instead.
func (s *Service) DeleteDirectExpense(ctx context.Context, expenseID int64) error {
	return s.st.WithTx(ctx, func(tx *sql.Tx) error {
		exp, err := expenseByID(tx, expenseID)
		if err != nil {
			return err
		}
		if exp.ClaimID != 0 {
			return faults.Conflict("expense %d belongs to a claim and cannot be deleted directly", expenseID)
		}
		if exp.TransactionID != 0 {
			if err := s.ledger.ReverseTransactionTx(tx, exp.TransactionID); err != nil {
				return err
			}
		}
		if _, err := tx.Exec("DELETE FROM expenses WHERE id = ?", expenseID); err != nil {
			return fmt.Errorf("deleting expense %d: %w", expenseID, err)
		}
		return nil
	})
}

// GetExpense returns one expense by id.
func (s *Service) GetExpense(ctx context.Context, id int64) (model.Expense, error) {
	var exp model.Expense
	err := s.st.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		exp, err = expenseByID(tx, id)
		return err
	})
	if err != nil {
		return model.Expense{}, err
	}
	return exp, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

const selectExpense = `SELECT id, date, amount, expense_account_id, description,
	paid_from_account_id, claim_id, transaction_id, meeting_id FROM expenses`

func expenseByID(tx *sql.Tx, id int64) (model.Expense, error) {
	exp, err := scanExpense(tx.QueryRow(selectExpense+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Expense{}, faults.NotFound("expense %d not found", id)
	}
	if err != nil {
		return model.Expense{}, fmt.Errorf("reading expense %d: %w", id, err)
	}
	return exp, nil
}

func scanExpense(row rowScanner) (model.Expense, error) {
	var exp model.Expense
	var date, amount string
	var paidFrom, claimID, txID sql.NullInt64
	var meetingID sql.NullString
	if err := row.Scan(&exp.ID, &date, &amount, &exp.ExpenseAccountID, &exp.Description,
		&paidFrom, &claimID, &txID, &meetingID); err != nil {
		return model.Expense{}, err
	}
	parsed, err := time.Parse(dateFormat, date)
	if err != nil {
		return model.Expense{}, fmt.Errorf("parsing expense date %q: %w", date, err)
	}
	exp.Date = parsed
	if exp.Amount, err = decimal.NewFromString(amount); err != nil {
		return model.Expense{}, fmt.Errorf("parsing expense amount %q: %w", amount, err)
	}
	exp.PaidFromAccountID = paidFrom.Int64
	exp.ClaimID = claimID.Int64
	exp.TransactionID = txID.Int64
	exp.MeetingID = meetingID.String
	return exp, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
