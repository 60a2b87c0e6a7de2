// Package ledger is the posting engine for the unit's books. It is the only
// component that writes transactions, transaction lines, or account
// balances, and every mutation is one atomic database transaction: a
// posting either fully commits or leaves no trace.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GromitDog/GUMS-sub000/internal/faults"
	"github.com/GromitDog/GUMS-sub000/internal/model"
	"github.com/GromitDog/GUMS-sub000/internal/store"
)

const dateFormat = "2006-01-02"

// Service validates and commits balanced transactions.
type Service struct {
	st *store.Store
}

// NewService creates a ledger Service.
func NewService(st *store.Store) *Service {
	return &Service{st: st}
}

// NewLine is one side of a posting to be committed. Exactly one of
// Debit/Credit must be nonzero.
type NewLine struct {
	AccountID int64
	Debit     decimal.Decimal
	Credit    decimal.Decimal
}

// CreateTransaction validates and atomically commits a balanced
// transaction, applying each line's balance delta to its account.
func (s *Service) CreateTransaction(ctx context.Context, date time.Time, description, paymentID string, lines []NewLine) (model.Transaction, error) {
	var created model.Transaction
	err := s.st.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		created, err = s.CreateTransactionTx(tx, date, description, paymentID, lines)
		return err
	})
	if err != nil {
		return model.Transaction{}, err
	}
	return created, nil
}

// CreateTransactionTx is CreateTransaction running inside a caller-owned
// database transaction, so posting rules can commit a ledger entry together
// with their own rows as one unit.
func (s *Service) CreateTransactionTx(tx *sql.Tx, date time.Time, description, paymentID string, lines []NewLine) (model.Transaction, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return model.Transaction{}, faults.Validation("transaction description is required")
	}
	if len(lines) == 0 {
		return model.Transaction{}, faults.Validation("transaction requires at least one line")
	}

	// Resolve every referenced account and run the per-line checks.
	accts := make(map[int64]model.Account, len(lines))
	for _, l := range lines {
		if _, ok := accts[l.AccountID]; !ok {
			acct, err := accountForUpdate(tx, l.AccountID)
			if err != nil {
				return model.Transaction{}, err
			}
			accts[l.AccountID] = acct
		}
		if err := checkLineAmounts(l); err != nil {
			return model.Transaction{}, err
		}
	}

	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for _, l := range lines {
		totalDebit = totalDebit.Add(l.Debit)
		totalCredit = totalCredit.Add(l.Credit)
	}
	if !totalDebit.Equal(totalCredit) {
		return model.Transaction{}, faults.Validation(
			"transaction is not balanced: debits %s != credits %s",
			totalDebit.StringFixed(2), totalCredit.StringFixed(2))
	}

	createdAt := time.Now().UTC()
	res, err := tx.Exec(
		"INSERT INTO transactions (date, description, payment_id, created_at) VALUES (?, ?, ?, ?)",
		date.Format(dateFormat), description, nullableString(paymentID), createdAt.UnixMilli(),
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("inserting transaction: %w", err)
	}
	txID, err := res.LastInsertId()
	if err != nil {
		return model.Transaction{}, fmt.Errorf("reading transaction id: %w", err)
	}

	created := model.Transaction{
		ID:          txID,
		Date:        date,
		Description: description,
		PaymentID:   paymentID,
		CreatedAt:   createdAt,
	}
	deltas := make(map[int64]decimal.Decimal)
	for _, l := range lines {
		lineRes, err := tx.Exec(
			"INSERT INTO transaction_lines (transaction_id, account_id, debit, credit) VALUES (?, ?, ?, ?)",
			txID, l.AccountID, l.Debit.String(), l.Credit.String(),
		)
		if err != nil {
			return model.Transaction{}, fmt.Errorf("inserting transaction line: %w", err)
		}
		lineID, err := lineRes.LastInsertId()
		if err != nil {
			return model.Transaction{}, fmt.Errorf("reading line id: %w", err)
		}

		acct := accts[l.AccountID]
		created.Lines = append(created.Lines, model.TransactionLine{
			ID:            lineID,
			TransactionID: txID,
			AccountID:     l.AccountID,
			Debit:         l.Debit,
			Credit:        l.Credit,
			AccountCode:   acct.Code,
			AccountName:   acct.Name,
			AccountType:   acct.Type,
		})
		deltas[l.AccountID] = deltas[l.AccountID].Add(model.BalanceDelta(acct.Type, l.Debit, l.Credit))
	}

	for accountID, delta := range deltas {
		if err := applyBalanceDelta(tx, accts[accountID], delta); err != nil {
			return model.Transaction{}, err
		}
	}
	return created, nil
}

// ReverseTransaction undoes a committed transaction: every touched
// account's balance gets the inverse delta and the transaction row is
// deleted, its lines cascading with it. Atomic like a posting.
func (s *Service) ReverseTransaction(ctx context.Context, id int64) error {
	return s.st.WithTx(ctx, func(tx *sql.Tx) error {
		return s.ReverseTransactionTx(tx, id)
	})
}

// ReverseTransactionTx is ReverseTransaction running inside a caller-owned
// database transaction.
func (s *Service) ReverseTransactionTx(tx *sql.Tx, id int64) error {
	var exists int
	err := tx.QueryRow("SELECT 1 FROM transactions WHERE id = ?", id).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return faults.NotFound("transaction %d not found", id)
	}
	if err != nil {
		return fmt.Errorf("reading transaction %d: %w", id, err)
	}

	rows, err := tx.Query(
		"SELECT account_id, debit, credit FROM transaction_lines WHERE transaction_id = ?", id)
	if err != nil {
		return fmt.Errorf("reading lines for transaction %d: %w", id, err)
	}
	type lineAmounts struct {
		accountID     int64
		debit, credit decimal.Decimal
	}
	var lines []lineAmounts
	for rows.Next() {
		var l lineAmounts
		var debit, credit string
		if err := rows.Scan(&l.accountID, &debit, &credit); err != nil {
			rows.Close()
			return fmt.Errorf("scanning line: %w", err)
		}
		if l.debit, err = decimal.NewFromString(debit); err != nil {
			rows.Close()
			return fmt.Errorf("parsing line debit: %w", err)
		}
		if l.credit, err = decimal.NewFromString(credit); err != nil {
			rows.Close()
			return fmt.Errorf("parsing line credit: %w", err)
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("reading lines for transaction %d: %w", id, err)
	}

	deltas := make(map[int64]decimal.Decimal)
	accts := make(map[int64]model.Account)
	for _, l := range lines {
		if _, ok := accts[l.accountID]; !ok {
			acct, err := accountForUpdate(tx, l.accountID)
			if err != nil {
				return err
			}
			accts[l.accountID] = acct
		}
		deltas[l.accountID] = deltas[l.accountID].Sub(model.BalanceDelta(accts[l.accountID].Type, l.debit, l.credit))
	}
	for accountID, delta := range deltas {
		if err := applyBalanceDelta(tx, accts[accountID], delta); err != nil {
			return err
		}
	}

	if _, err := tx.Exec("DELETE FROM transactions WHERE id = ?", id); err != nil {
		return fmt.Errorf("deleting transaction %d: %w", id, err)
	}
	return nil
}

func checkLineAmounts(l NewLine) error {
	if l.Debit.IsNegative() || l.Credit.IsNegative() {
		return faults.Validation("line amounts must not be negative")
	}
	hasDebit := !l.Debit.IsZero()
	hasCredit := !l.Credit.IsZero()
	if hasDebit == hasCredit {
		return faults.Validation("line must carry exactly one of debit or credit")
	}
	hundred := decimal.NewFromInt(100)
	for _, amt := range []decimal.Decimal{l.Debit, l.Credit} {
		if !amt.Mul(hundred).Equal(amt.Mul(hundred).Floor()) {
			return faults.Validation("amount %s has more than 2 decimal places", amt)
		}
	}
	return nil
}

func accountForUpdate(tx *sql.Tx, id int64) (model.Account, error) {
	var a model.Account
	var typ string
	var isSystem int
	var balance string
	err := tx.QueryRow(
		"SELECT id, code, name, type, is_system, balance FROM accounts WHERE id = ?", id,
	).Scan(&a.ID, &a.Code, &a.Name, &typ, &isSystem, &balance)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, faults.NotFound("account %d not found", id)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("reading account %d: %w", id, err)
	}
	a.Type = model.AccountType(typ)
	a.IsSystem = isSystem != 0
	if a.Balance, err = decimal.NewFromString(balance); err != nil {
		return model.Account{}, fmt.Errorf("parsing balance for account %d: %w", id, err)
	}
	return a, nil
}

func applyBalanceDelta(tx *sql.Tx, acct model.Account, delta decimal.Decimal) error {
	newBalance := acct.Balance.Add(delta)
	if _, err := tx.Exec("UPDATE accounts SET balance = ? WHERE id = ?", newBalance.String(), acct.ID); err != nil {
		return fmt.Errorf("updating balance for account %d: %w", acct.ID, err)
	}
	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
