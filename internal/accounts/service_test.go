package accounts

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GromitDog/GUMS-sub000/internal/faults"
	"github.com/GromitDog/GUMS-sub000/internal/model"
	"github.com/GromitDog/GUMS-sub000/internal/store"
)

func newService(t *testing.T) *Service {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return NewService(st)
}

func TestEnsureDefaultAccounts_Idempotent(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, svc.EnsureDefaultAccounts(ctx))
	}

	all, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(defaultChart()))

	cash, err := svc.GetByCode(ctx, model.CodeCashOnHand)
	require.NoError(t, err)
	assert.Equal(t, "Cash on Hand", cash.Name)
	assert.Equal(t, model.AccountTypeAsset, cash.Type)
	assert.True(t, cash.IsSystem)
	assert.True(t, cash.Balance.IsZero())
}

func TestEnsureDefaultAccounts_PreservesExisting(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	require.NoError(t, svc.EnsureDefaultAccounts(ctx))

	// Rename a taxonomy account, then re-seed.
	equip, err := svc.GetByCode(ctx, 5020)
	require.NoError(t, err)
	require.NoError(t, svc.UpdateExpenseAccount(ctx, equip.ID, "Camping Gear"))
	require.NoError(t, svc.EnsureDefaultAccounts(ctx))

	after, err := svc.GetByCode(ctx, 5020)
	require.NoError(t, err)
	assert.Equal(t, "Camping Gear", after.Name)
}

func TestCreateExpenseAccount_AssignsNextCode(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureDefaultAccounts(ctx))

	// Defaults occupy 5010..5060, so the next free code is 5070.
	acct, err := svc.CreateExpenseAccount(ctx, "Transport")
	require.NoError(t, err)
	assert.Equal(t, 5070, acct.Code)
	assert.Equal(t, model.AccountTypeExpense, acct.Type)
	assert.False(t, acct.IsSystem)

	acct2, err := svc.CreateExpenseAccount(ctx, "Insurance")
	require.NoError(t, err)
	assert.Equal(t, 5080, acct2.Code)
}

func TestCreateExpenseAccount_SkipsGapCode(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()

	// Fill the band up to just before the gap code.
	for code := expenseCodeStart; code < expenseCodeGap; code += expenseCodeStep {
		_, err := svc.st.DB.Exec(
			"INSERT INTO accounts (code, name, type) VALUES (?, 'Filler', 'expense')", code)
		require.NoError(t, err)
	}

	acct, err := svc.CreateExpenseAccount(ctx, "After the gap")
	require.NoError(t, err)
	assert.Equal(t, expenseCodeGap+expenseCodeStep, acct.Code)
}

func TestCreateExpenseAccount_BlankName(t *testing.T) {
	svc := newService(t)

	_, err := svc.CreateExpenseAccount(context.Background(), "   ")
	require.Error(t, err)
	var verr *faults.ValidationError
	assert.ErrorAs(t, err, &verr)
}

func TestUpdateExpenseAccount_RejectsSystem(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureDefaultAccounts(ctx))

	bank, err := svc.GetByCode(ctx, model.CodeBank)
	require.NoError(t, err)

	err = svc.UpdateExpenseAccount(ctx, bank.ID, "Slush Fund")
	var cerr *faults.ConflictError
	assert.ErrorAs(t, err, &cerr)
}

func TestDeleteExpenseAccount(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureDefaultAccounts(ctx))

	acct, err := svc.CreateExpenseAccount(ctx, "Doomed")
	require.NoError(t, err)
	require.NoError(t, svc.DeleteExpenseAccount(ctx, acct.ID))

	_, err = svc.Get(ctx, acct.ID)
	var nerr *faults.NotFoundError
	assert.ErrorAs(t, err, &nerr)
}

func TestDeleteExpenseAccount_BlockedByLines(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureDefaultAccounts(ctx))

	acct, err := svc.CreateExpenseAccount(ctx, "Used")
	require.NoError(t, err)

	res, err := svc.st.DB.Exec(
		"INSERT INTO transactions (date, description, created_at) VALUES ('2026-01-01', 'x', 0)")
	require.NoError(t, err)
	txID, err := res.LastInsertId()
	require.NoError(t, err)
	_, err = svc.st.DB.Exec(
		"INSERT INTO transaction_lines (transaction_id, account_id, debit, credit) VALUES (?, ?, '5', '0')",
		txID, acct.ID)
	require.NoError(t, err)

	err = svc.DeleteExpenseAccount(ctx, acct.ID)
	var cerr *faults.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), "has transactions")
}

func TestDeleteExpenseAccount_BlockedByExpenses(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureDefaultAccounts(ctx))

	acct, err := svc.CreateExpenseAccount(ctx, "Used")
	require.NoError(t, err)

	_, err = svc.st.DB.Exec(
		"INSERT INTO expenses (date, amount, expense_account_id, description) VALUES ('2026-01-01', '5', ?, 'x')",
		acct.ID)
	require.NoError(t, err)

	err = svc.DeleteExpenseAccount(ctx, acct.ID)
	var cerr *faults.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), "has expenses")
}

func TestExpenseAccounts(t *testing.T) {
	svc := newService(t)
	ctx := context.Background()
	require.NoError(t, svc.EnsureDefaultAccounts(ctx))

	cats, err := svc.ExpenseAccounts(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, cats)
	for _, c := range cats {
		assert.Equal(t, model.AccountTypeExpense, c.Type)
	}
}
