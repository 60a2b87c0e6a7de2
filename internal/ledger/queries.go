package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/GromitDog/GUMS-sub000/internal/faults"
	"github.com/GromitDog/GUMS-sub000/internal/model"
)

// Get returns one transaction with its lines and account detail.
func (s *Service) Get(ctx context.Context, id int64) (model.Transaction, error) {
	row := s.st.DB.QueryRowContext(ctx,
		"SELECT id, date, description, payment_id, created_at FROM transactions WHERE id = ?", id)
	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Transaction{}, faults.NotFound("transaction %d not found", id)
	}
	if err != nil {
		return model.Transaction{}, fmt.Errorf("reading transaction %d: %w", id, err)
	}
	if txn.Lines, err = s.loadLines(ctx, txn.ID); err != nil {
		return model.Transaction{}, err
	}
	return txn, nil
}

// ListBetween returns transactions dated within [from, to] inclusive,
// newest date first, ties broken by descending id. Lines are populated.
func (s *Service) ListBetween(ctx context.Context, from, to time.Time) ([]model.Transaction, error) {
	return s.listWhere(ctx,
		"WHERE date >= ? AND date <= ? ORDER BY date DESC, id DESC",
		from.Format(dateFormat), to.Format(dateFormat))
}

// ListByPayment returns every transaction linked to a payment id.
func (s *Service) ListByPayment(ctx context.Context, paymentID string) ([]model.Transaction, error) {
	return s.listWhere(ctx, "WHERE payment_id = ? ORDER BY date DESC, id DESC", paymentID)
}

func (s *Service) listWhere(ctx context.Context, clause string, args ...any) ([]model.Transaction, error) {
	rows, err := s.st.DB.QueryContext(ctx,
		"SELECT id, date, description, payment_id, created_at FROM transactions "+clause, args...)
	if err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}
	defer rows.Close()

	var txns []model.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning transaction: %w", err)
		}
		txns = append(txns, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("listing transactions: %w", err)
	}

	for i := range txns {
		if txns[i].Lines, err = s.loadLines(ctx, txns[i].ID); err != nil {
			return nil, err
		}
	}
	return txns, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (model.Transaction, error) {
	var txn model.Transaction
	var date string
	var paymentID sql.NullString
	var createdAt int64
	if err := row.Scan(&txn.ID, &date, &txn.Description, &paymentID, &createdAt); err != nil {
		return model.Transaction{}, err
	}
	parsed, err := time.Parse(dateFormat, date)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parsing transaction date %q: %w", date, err)
	}
	txn.Date = parsed
	txn.PaymentID = paymentID.String
	txn.CreatedAt = time.UnixMilli(createdAt).UTC()
	return txn, nil
}

func (s *Service) loadLines(ctx context.Context, txID int64) ([]model.TransactionLine, error) {
	rows, err := s.st.DB.QueryContext(ctx, `
		SELECT l.id, l.transaction_id, l.account_id, l.debit, l.credit,
		       a.code, a.name, a.type
		  FROM transaction_lines l
		  JOIN accounts a ON a.id = l.account_id
		 WHERE l.transaction_id = ?
		 ORDER BY l.id`, txID)
	if err != nil {
		return nil, fmt.Errorf("loading lines for transaction %d: %w", txID, err)
	}
	defer rows.Close()

	var lines []model.TransactionLine
	for rows.Next() {
		var l model.TransactionLine
		var debit, credit, typ string
		if err := rows.Scan(&l.ID, &l.TransactionID, &l.AccountID, &debit, &credit,
			&l.AccountCode, &l.AccountName, &typ); err != nil {
			return nil, fmt.Errorf("scanning line: %w", err)
		}
		if l.Debit, err = decimal.NewFromString(debit); err != nil {
			return nil, fmt.Errorf("parsing line debit: %w", err)
		}
		if l.Credit, err = decimal.NewFromString(credit); err != nil {
			return nil, fmt.Errorf("parsing line credit: %w", err)
		}
		l.AccountType = model.AccountType(typ)
		lines = append(lines, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading lines for transaction %d: %w", txID, err)
	}
	return lines, nil
}
