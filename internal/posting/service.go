// Package posting translates business events (payment received, bank
// deposit, expense paid, claim settled) into balanced ledger transactions.
// It owns the Expense and ExpenseClaim rows and composes its writes with
// the ledger engine inside one database transaction per event.
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
	"github.com/GromitDog/GUMS-sub000/internal/store"
)

const dateFormat = "2006-01-02"

// MemberDirectory resolves a membership id to a display name for
// human-readable transaction descriptions. Lookup lives in the membership
// subsystem; this package only needs the name.
type MemberDirectory interface {
	DisplayName(memberID string) string
}

// NoDirectory is a MemberDirectory that echoes the member id back.
type NoDirectory struct{}

// DisplayName returns memberID unchanged.
func (NoDirectory) DisplayName(memberID string) string { return memberID }

// Service applies the posting rules.
type Service struct {
	st      *store.Store
	ledger  *ledger.Service
	members MemberDirectory
}

// NewService creates a posting Service. members may be nil, in which case
// member ids appear verbatim in descriptions.
func NewService(st *store.Store, ledgerSvc *ledger.Service, members MemberDirectory) *Service {
	if members == nil {
		members = NoDirectory{}
	}
	return &Service{st: st, ledger: ledgerSvc, members: members}
}

// PaymentEntry describes a payment recorded by the membership subsystem.
type PaymentEntry struct {
	PaymentID   string
	Amount      decimal.Decimal
	Method      model.PaymentMethod
	Type        model.PaymentType
	MemberID    string
	Description string
	Date        time.Time
}

// RecordPaymentEntry posts one received payment: debit the asset account
// the money landed in, credit the income stream it belongs to.
func (s *Service) RecordPaymentEntry(ctx context.Context, p PaymentEntry) (model.Transaction, error) {
	if !p.Amount.IsPositive() {
		return model.Transaction{}, faults.Validation("payment amount must be greater than zero")
	}
	assetCode, err := methodAccountCode(p.Method)
	if err != nil {
		return model.Transaction{}, err
	}
	incomeCode, err := typeAccountCode(p.Type)
	if err != nil {
		return model.Transaction{}, err
	}

	description := strings.TrimSpace(p.Description)
	if description == "" {
		description = paymentDescription(p.Type, s.members.DisplayName(p.MemberID))
	}

	var txn model.Transaction
	err = s.st.WithTx(ctx, func(tx *sql.Tx) error {
		asset, err := accountByCode(tx, assetCode)
		if err != nil {
			return err
		}
		income, err := accountByCode(tx, incomeCode)
		if err != nil {
			return err
		}
		txn, err = s.ledger.CreateTransactionTx(tx, p.Date, description, p.PaymentID, []ledger.NewLine{
			{AccountID: asset.ID, Debit: p.Amount},
			{AccountID: income.ID, Credit: p.Amount},
		})
		return err
	})
	if err != nil {
		return model.Transaction{}, err
	}
	return txn, nil
}

// BankDeposit moves cash and/or pending cheques into the bank account as
// one transaction: a single debit to bank for the combined total and a
// credit per nonzero source. Each amount must be covered by its source
// account's current balance.
func (s *Service) BankDeposit(ctx context.Context, cashAmount, chequeAmount decimal.Decimal, depositDate time.Time, notes string) (model.Transaction, error) {
	if cashAmount.IsNegative() || chequeAmount.IsNegative() {
		return model.Transaction{}, faults.Validation("deposit amounts must not be negative")
	}
	if cashAmount.IsZero() && chequeAmount.IsZero() {
		return model.Transaction{}, faults.Validation("deposit requires a cash or cheque amount")
	}

	description := "Bank deposit"
	if notes = strings.TrimSpace(notes); notes != "" {
		description += " - " + notes
	}

	var txn model.Transaction
	err := s.st.WithTx(ctx, func(tx *sql.Tx) error {
		cash, err := accountByCode(tx, model.CodeCashOnHand)
		if err != nil {
			return err
		}
		cheques, err := accountByCode(tx, model.CodeChequesPending)
		if err != nil {
			return err
		}
		bank, err := accountByCode(tx, model.CodeBank)
		if err != nil {
			return err
		}

		if cashAmount.GreaterThan(cash.Balance) {
			return faults.Conflict("insufficient cash on hand: balance is %s, deposit is %s",
				cash.Balance.StringFixed(2), cashAmount.StringFixed(2))
		}
		if chequeAmount.GreaterThan(cheques.Balance) {
			return faults.Conflict("insufficient cheques pending: balance is %s, deposit is %s",
				cheques.Balance.StringFixed(2), chequeAmount.StringFixed(2))
		}

		lines := []ledger.NewLine{{AccountID: bank.ID, Debit: cashAmount.Add(chequeAmount)}}
		if !cashAmount.IsZero() {
			lines = append(lines, ledger.NewLine{AccountID: cash.ID, Credit: cashAmount})
		}
		if !chequeAmount.IsZero() {
			lines = append(lines, ledger.NewLine{AccountID: cheques.ID, Credit: chequeAmount})
		}
		txn, err = s.ledger.CreateTransactionTx(tx, depositDate, description, "", lines)
		return err
	})
	if err != nil {
		return model.Transaction{}, err
	}
	return txn, nil
}

func methodAccountCode(m model.PaymentMethod) (int, error) {
	switch m {
	case model.PaymentMethodCash:
		return model.CodeCashOnHand, nil
	case model.PaymentMethodCheque:
		return model.CodeChequesPending, nil
	case model.PaymentMethodBankTransfer:
		return model.CodeBank, nil
	}
	return 0, faults.Validation("unknown payment method %q", string(m))
}

func typeAccountCode(t model.PaymentType) (int, error) {
	switch t {
	case model.PaymentTypeSubs:
		return model.CodeSubsIncome, nil
	case model.PaymentTypeActivity:
		return model.CodeActivityIncome, nil
	}
	return 0, faults.Validation("unknown payment type %q", string(t))
}

func paymentDescription(t model.PaymentType, who string) string {
	label := "Payment"
	switch t {
	case model.PaymentTypeSubs:
		label = "Subs payment"
	case model.PaymentTypeActivity:
		label = "Activity payment"
	}
	if who == "" {
		return label
	}
	return label + " - " + who
}

// accountByCode reads an account inside the caller's database transaction
// so balance pre-checks and the commit see the same state.
func accountByCode(tx *sql.Tx, code int) (model.Account, error) {
	var a model.Account
	var typ string
	var isSystem int
	var balance string
	err := tx.QueryRow(
		"SELECT id, code, name, type, is_system, balance FROM accounts WHERE code = ?", code,
	).Scan(&a.ID, &a.Code, &a.Name, &typ, &isSystem, &balance)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Account{}, faults.NotFound("account code %d not found", code)
	}
	if err != nil {
		return model.Account{}, fmt.Errorf("reading account code %d: %w", code, err)
	}
	a.Type = model.AccountType(typ)
	a.IsSystem = isSystem != 0
	if a.Balance, err = decimal.NewFromString(balance); err != nil {
		return model.Account{}, fmt.Errorf("parsing balance for account code %d: %w", code, err)
	}
	return a, nil
}

func accountByID(tx *sql.Tx, id int64) (model.Account, error) {
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
