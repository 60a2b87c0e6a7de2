package model

import "github.com/shopspring/decimal"

// AccountType classifies accounts in the chart of accounts.
type AccountType string

const (
	AccountTypeAsset   AccountType = "asset"
	AccountTypeIncome  AccountType = "income"
	AccountTypeExpense AccountType = "expense"
)

// Valid reports whether t is one of the known account types.
func (t AccountType) Valid() bool {
	switch t {
	case AccountTypeAsset, AccountTypeIncome, AccountTypeExpense:
		return true
	}
	return false
}

// System account codes seeded by EnsureDefaultAccounts.
const (
	CodeCashOnHand     = 1010
	CodeChequesPending = 1020
	CodeBank           = 1030
	CodeSubsIncome     = 4010
	CodeActivityIncome = 4020
)

// Account is a row in the chart of accounts. Balance is maintained by the
// ledger engine only; every other reader gets a detached snapshot.
type Account struct {
	ID       int64
	Code     int
	Name     string
	Type     AccountType
	IsSystem bool
	Balance  decimal.Decimal
}

// BalanceDelta returns the effect of a single line on an account's balance.
// Asset and expense accounts grow with debits; income accounts grow with
// credits.
func BalanceDelta(t AccountType, debit, credit decimal.Decimal) decimal.Decimal {
	if t == AccountTypeIncome {
		return credit.Sub(debit)
	}
	return debit.Sub(credit)
}
