package posting

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GromitDog/GUMS-sub000/internal/faults"
	"github.com/GromitDog/GUMS-sub000/internal/ledger"
	"github.com/GromitDog/GUMS-sub000/internal/model"
)

// CreateClaim opens a new draft expense claim for one member.
func (s *Service) CreateClaim(ctx context.Context, claimedBy, notes string) (model.ExpenseClaim, error) {
	claimedBy = strings.TrimSpace(claimedBy)
	if claimedBy == "" {
		return model.ExpenseClaim{}, faults.Validation("claim requires a claimant")
	}

	var claim model.ExpenseClaim
	err := s.st.WithTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.Exec(
			"INSERT INTO expense_claims (claimed_by, status, notes) VALUES (?, ?, ?)",
			claimedBy, string(model.ClaimStatusDraft), strings.TrimSpace(notes))
		if err != nil {
			return fmt.Errorf("inserting claim: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading claim id: %w", err)
		}
		claim = model.ExpenseClaim{
			ID:        id,
			ClaimedBy: claimedBy,
			Status:    model.ClaimStatusDraft,
			Notes:     strings.TrimSpace(notes),
		}
		return nil
	})
	if err != nil {
		return model.ExpenseClaim{}, err
	}
	return claim, nil
}

// ClaimExpense describes a receipt added to a draft claim. Claimed expenses
// never carry a paying account or transaction; money only moves when the
// claim settles.
type ClaimExpense struct {
	Date             time.Time
	Amount           decimal.Decimal
	ExpenseAccountID int64
	Description      string
	MeetingID        string
}

// AddExpenseToClaim appends a receipt to a draft claim.
func (s *Service) AddExpenseToClaim(ctx context.Context, claimID int64, e ClaimExpense) (model.Expense, error) {
	e.Description = strings.TrimSpace(e.Description)
	if !e.Amount.IsPositive() {
		return model.Expense{}, faults.Validation("expense amount must be greater than zero")
	}
	if e.Description == "" {
		return model.Expense{}, faults.Validation("expense description is required")
	}

	var saved model.Expense
	err := s.st.WithTx(ctx, func(tx *sql.Tx) error {
		claim, err := claimByID(tx, claimID)
		if err != nil {
			return err
		}
		if claim.Status != model.ClaimStatusDraft {
			return faults.Conflict("claim %d is %s; expenses can only be added while draft", claimID, claim.Status)
		}
		category, err := accountByID(tx, e.ExpenseAccountID)
		if err != nil {
			return err
		}
		if category.Type != model.AccountTypeExpense {
			return faults.Validation("account %q is not an expense category", category.Name)
		}

		res, err := tx.Exec(`INSERT INTO expenses
			(date, amount, expense_account_id, description, claim_id, meeting_id)
			VALUES (?, ?, ?, ?, ?, ?)`,
			e.Date.Format(dateFormat), e.Amount.String(), category.ID, e.Description,
			claimID, nullableString(e.MeetingID))
		if err != nil {
			return fmt.Errorf("inserting claim expense: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading expense id: %w", err)
		}
		saved = model.Expense{
			ID:               id,
			Date:             e.Date,
			Amount:           e.Amount,
			ExpenseAccountID: category.ID,
			Description:      e.Description,
			ClaimID:          claimID,
			MeetingID:        e.MeetingID,
		}
		return nil
	})
	if err != nil {
		return model.Expense{}, err
	}
	return saved, nil
}

// RemoveExpenseFromClaim deletes a receipt from a draft claim.
func (s *Service) RemoveExpenseFromClaim(ctx context.Context, claimID, expenseID int64) error {
	return s.st.WithTx(ctx, func(tx *sql.Tx) error {
		claim, err := claimByID(tx, claimID)
		if err != nil {
			return err
		}
		if claim.Status != model.ClaimStatusDraft {
			return faults.Conflict("claim %d is %s; expenses can only be removed while draft", claimID, claim.Status)
		}
		exp, err := expenseByID(tx, expenseID)
		if err != nil {
			return err
		}
		if exp.ClaimID != claimID {
			return faults.Conflict("expense %d does not belong to claim %d", expenseID, claimID)
		}
		if _, err := tx.Exec("DELETE FROM expenses WHERE id = ?", expenseID); err != nil {
			return fmt.Errorf("deleting claim expense %d: %w", expenseID, err)
		}
		return nil
	})
}

// SubmitClaim moves a draft claim to submitted and stamps the date.
func (s *Service) SubmitClaim(ctx context.Context, claimID int64, submittedDate time.Time) error {
	return s.st.WithTx(ctx, func(tx *sql.Tx) error {
		claim, err := claimByID(tx, claimID)
		if err != nil {
			return err
		}
		if claim.Status != model.ClaimStatusDraft {
			return faults.Conflict("claim %d is %s and cannot be submitted", claimID, claim.Status)
		}
		if _, err := tx.Exec(
			"UPDATE expense_claims SET status = ?, submitted_date = ? WHERE id = ?",
			string(model.ClaimStatusSubmitted), submittedDate.Format(dateFormat), claimID); err != nil {
			return fmt.Errorf("submitting claim %d: %w", claimID, err)
		}
		return nil
	})
}

// SettleExpenseClaim posts one aggregated reimbursement for the whole
// claim: a debit line per distinct expense category and a single credit
// against the paying asset account for the claim total. The claim becomes
// settled; there is no way back.
func (s *Service) SettleExpenseClaim(ctx context.Context, claimID, paidFromAccountID int64, method model.PaymentMethod, settledDate time.Time) (model.Transaction, error) {
	var txn model.Transaction
	err := s.st.WithTx(ctx, func(tx *sql.Tx) error {
		claim, err := claimByID(tx, claimID)
		if err != nil {
			return err
		}
		if claim.Status == model.ClaimStatusSettled {
			return faults.Conflict("claim %d is already settled", claimID)
		}
		expenses, err := claimExpenses(tx, claimID)
		if err != nil {
			return err
		}
		if len(expenses) == 0 {
			return faults.Conflict("claim %d has no expenses to settle", claimID)
		}
		paidFrom, err := accountByID(tx, paidFromAccountID)
		if err != nil {
			return err
		}
		if paidFrom.Type != model.AccountTypeAsset {
			return faults.Validation("account %q is not an asset account", paidFrom.Name)
		}

		// One debit per distinct category, ordered by account code so the
		// settlement reads like the chart of accounts.
		totals := make(map[int64]decimal.Decimal)
		for _, e := range expenses {
			totals[e.ExpenseAccountID] = totals[e.ExpenseAccountID].Add(e.Amount)
		}
		categories := make([]model.Account, 0, len(totals))
		for accountID := range totals {
			category, err := accountByID(tx, accountID)
			if err != nil {
				return err
			}
			categories = append(categories, category)
		}
		sort.Slice(categories, func(i, j int) bool { return categories[i].Code < categories[j].Code })

		total := decimal.Zero
		lines := make([]ledger.NewLine, 0, len(categories)+1)
		for _, category := range categories {
			lines = append(lines, ledger.NewLine{AccountID: category.ID, Debit: totals[category.ID]})
			total = total.Add(totals[category.ID])
		}
		lines = append(lines, ledger.NewLine{AccountID: paidFrom.ID, Credit: total})

		description := "Expense claim settlement - " + claim.ClaimedBy
		txn, err = s.ledger.CreateTransactionTx(tx, settledDate, description, "", lines)
		if err != nil {
			return err
		}

		if _, err := tx.Exec(`UPDATE expense_claims
			SET status = ?, settled_date = ?, paid_from_account_id = ?, payment_method = ?, transaction_id = ?
			WHERE id = ?`,
			string(model.ClaimStatusSettled), settledDate.Format(dateFormat),
			paidFrom.ID, string(method), txn.ID, claimID); err != nil {
			return fmt.Errorf("settling claim %d: %w", claimID, err)
		}
		return nil
	})
	if err != nil {
		return model.Transaction{}, err
	}
	return txn, nil
}

// DeleteClaim removes an unsettled claim and its receipts. Nothing has been
// posted for them, so no ledger reversal is involved.
func (s *Service) DeleteClaim(ctx context.Context, claimID int64) error {
	return s.st.WithTx(ctx, func(tx *sql.Tx) error {
		claim, err := claimByID(tx, claimID)
		if err != nil {
			return err
		}
		if claim.Status == model.ClaimStatusSettled {
			return faults.Conflict("claim %d is settled and cannot be deleted", claimID)
		}
		if _, err := tx.Exec("DELETE FROM expenses WHERE claim_id = ?", claimID); err != nil {
			return fmt.Errorf("deleting expenses for claim %d: %w", claimID, err)
		}
		if _, err := tx.Exec("DELETE FROM expense_claims WHERE id = ?", claimID); err != nil {
			return fmt.Errorf("deleting claim %d: %w", claimID, err)
		}
		return nil
	})
}

// GetClaim returns one claim with its expenses loaded.
func (s *Service) GetClaim(ctx context.Context, claimID int64) (model.ExpenseClaim, error) {
	var claim model.ExpenseClaim
	err := s.st.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		if claim, err = claimByID(tx, claimID); err != nil {
			return err
		}
		claim.Expenses, err = claimExpenses(tx, claimID)
		return err
	})
	if err != nil {
		return model.ExpenseClaim{}, err
	}
	return claim, nil
}

// ListClaims returns every claim, newest first, with expenses loaded.
func (s *Service) ListClaims(ctx context.Context) ([]model.ExpenseClaim, error) {
	var claims []model.ExpenseClaim
	err := s.st.WithTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.Query(selectClaim + " ORDER BY id DESC")
		if err != nil {
			return fmt.Errorf("listing claims: %w", err)
		}
		defer rows.Close()
		for rows.Next() {
			claim, err := scanClaim(rows)
			if err != nil {
				return fmt.Errorf("scanning claim: %w", err)
			}
			claims = append(claims, claim)
		}
		if err := rows.Err(); err != nil {
			return fmt.Errorf("listing claims: %w", err)
		}
		for i := range claims {
			if claims[i].Expenses, err = claimExpenses(tx, claims[i].ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return claims, nil
}

const selectClaim = `SELECT id, claimed_by, submitted_date, status, notes,
	settled_date, paid_from_account_id, payment_method, transaction_id FROM expense_claims`

func claimByID(tx *sql.Tx, id int64) (model.ExpenseClaim, error) {
	claim, err := scanClaim(tx.QueryRow(selectClaim+" WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return model.ExpenseClaim{}, faults.NotFound("claim %d not found", id)
	}
	if err != nil {
		return model.ExpenseClaim{}, fmt.Errorf("reading claim %d: %w", id, err)
	}
	return claim, nil
}

func scanClaim(row rowScanner) (model.ExpenseClaim, error) {
	var claim model.ExpenseClaim
	var submitted, settled, method sql.NullString
	var paidFrom, txID sql.NullInt64
	if err := row.Scan(&claim.ID, &claim.ClaimedBy, &submitted, (*string)(&claim.Status), &claim.Notes,
		&settled, &paidFrom, &method, &txID); err != nil {
		return model.ExpenseClaim{}, err
	}
	if submitted.Valid {
		parsed, err := time.Parse(dateFormat, submitted.String)
		if err != nil {
			return model.ExpenseClaim{}, fmt.Errorf("parsing submitted date %q: %w", submitted.String, err)
		}
		claim.SubmittedDate = parsed
	}
	if settled.Valid {
		parsed, err := time.Parse(dateFormat, settled.String)
		if err != nil {
			return model.ExpenseClaim{}, fmt.Errorf("parsing settled date %q: %w", settled.String, err)
		}
		claim.SettledDate = parsed
	}
	claim.PaidFromAccountID = paidFrom.Int64
	claim.PaymentMethod = model.PaymentMethod(method.String)
	claim.TransactionID = txID.Int64
	return claim, nil
}

func claimExpenses(tx *sql.Tx, claimID int64) ([]model.Expense, error) {
	rows, err := tx.Query(selectExpense+" WHERE claim_id = ? ORDER BY id", claimID)
	if err != nil {
		return nil, fmt.Errorf("listing expenses for claim %d: %w", claimID, err)
	}
	defer rows.Close()

	var expenses []model.Expense
	for rows.Next() {
		exp, err := scanExpense(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning claim expense: %w", err)
		}
		expenses = append(expenses, exp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing expenses for claim %d: %w", claimID, err)
	}
	return expenses, nil
}
