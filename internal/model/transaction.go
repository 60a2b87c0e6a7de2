package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is one balanced ledger posting. Immutable once committed;
// the only way to undo one is a full reversal.
type Transaction struct {
	ID          int64
	Date        time.Time
	Description string
	PaymentID   string // empty unless the posting originated from a payment
	CreatedAt   time.Time
	Lines       []TransactionLine
}

// TransactionLine is one side of a posting. Exactly one of Debit/Credit is
// nonzero.
type TransactionLine struct {
	ID            int64
	TransactionID int64
	AccountID     int64
	Debit         decimal.Decimal
	Credit        decimal.Decimal

	// Denormalized account detail, populated on reads that join accounts.
	AccountCode int
	AccountName string
	AccountType AccountType
}

// TotalDebit sums the debit side of all lines.
func (t Transaction) TotalDebit() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range t.Lines {
		sum = sum.Add(l.Debit)
	}
	return sum
}

// TotalCredit sums the credit side of all lines.
func (t Transaction) TotalCredit() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range t.Lines {
		sum = sum.Add(l.Credit)
	}
	return sum
}
