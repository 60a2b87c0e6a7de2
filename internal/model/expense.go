package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentMethod is how money physically moved.
type PaymentMethod string

const (
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodBankTransfer PaymentMethod = "bank-transfer"
)

// PaymentType says which income stream a payment belongs to.
type PaymentType string

const (
	PaymentTypeSubs     PaymentType = "subs"
	PaymentTypeActivity PaymentType = "activity"
)

// Expense is money spent against an expense category. A direct expense has
// PaidFromAccountID set and is posted on its own; a claimed expense has
// ClaimID set and is only posted when its claim settles.
type Expense struct {
	ID                int64
	Date              time.Time
	Amount            decimal.Decimal
	ExpenseAccountID  int64
	Description       string
	PaidFromAccountID int64  // 0 unless a direct expense
	ClaimID           int64  // 0 unless part of a claim
	TransactionID     int64  // 0 until posted
	MeetingID         string // optional event link
}

// ClaimStatus is the lifecycle state of an expense claim.
type ClaimStatus string

const (
	ClaimStatusDraft     ClaimStatus = "draft"
	ClaimStatusSubmitted ClaimStatus = "submitted"
	ClaimStatusSettled   ClaimStatus = "settled"
)

// ExpenseClaim batches one member's receipts for a single aggregated
// settlement posting. Settlement fields stay zero until it settles; the
// settled transition is one-way.
type ExpenseClaim struct {
	ID            int64
	ClaimedBy     string
	SubmittedDate time.Time
	Status        ClaimStatus
	Notes         string

	SettledDate       time.Time
	PaidFromAccountID int64
	PaymentMethod     PaymentMethod
	TransactionID     int64

	Expenses []Expense
}

// TotalAmount is the derived sum of the claim's expenses.
func (c ExpenseClaim) TotalAmount() decimal.Decimal {
	sum := decimal.Zero
	for _, e := range c.Expenses {
		sum = sum.Add(e.Amount)
	}
	return sum
}
