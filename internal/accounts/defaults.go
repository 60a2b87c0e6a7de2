package accounts

import "github.com/GromitDog/GUMS-sub000/internal/model"

// Expense category codes are auto-assigned within a reserved band so
// callers never pick codes by hand. The gap code is held back for a future
// catch-all category and is skipped during assignment.
const (
	expenseCodeStart = 5010
	expenseCodeEnd   = 5980
	expenseCodeStep  = 10
	expenseCodeGap   = 5500
)

type seedAccount struct {
	Code     int
	Name     string
	Type     model.AccountType
	IsSystem bool
}

// defaultChart is the fixed system chart plus the starter expense taxonomy
// a new unit gets. System accounts can never be renamed or deleted; the
// taxonomy rows are ordinary expense categories the treasurer may edit.
func defaultChart() []seedAccount {
	return []seedAccount{
		{Code: model.CodeCashOnHand, Name: "Cash on Hand", Type: model.AccountTypeAsset, IsSystem: true},
		{Code: model.CodeChequesPending, Name: "Cheques Pending", Type: model.AccountTypeAsset, IsSystem: true},
		{Code: model.CodeBank, Name: "Bank Account", Type: model.AccountTypeAsset, IsSystem: true},
		{Code: model.CodeSubsIncome, Name: "Subscriptions Income", Type: model.AccountTypeIncome, IsSystem: true},
		{Code: model.CodeActivityIncome, Name: "Activity Income", Type: model.AccountTypeIncome, IsSystem: true},
		{Code: 5010, Name: "Badges & Awards", Type: model.AccountTypeExpense},
		{Code: 5020, Name: "Equipment", Type: model.AccountTypeExpense},
		{Code: 5030, Name: "Activities & Events", Type: model.AccountTypeExpense},
		{Code: 5040, Name: "Administration", Type: model.AccountTypeExpense},
		{Code: 5050, Name: "Hall Hire", Type: model.AccountTypeExpense},
		{Code: 5060, Name: "Refreshments", Type: model.AccountTypeExpense},
	}
}
