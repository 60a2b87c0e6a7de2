package posting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GromitDog/GUMS-sub000/internal/faults"
	"github.com/GromitDog/GUMS-sub000/internal/model"
)

func (f *fixture) fundCash(t *testing.T, amount string) {
	t.Helper()
	_, err := f.posting.RecordPaymentEntry(context.Background(), PaymentEntry{
		PaymentID: "fund", Amount: dec(amount), Method: model.PaymentMethodCash,
		Type: model.PaymentTypeSubs, Date: date(2026, 1, 1),
	})
	require.NoError(t, err)
}

func TestRecordDirectExpense(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fundCash(t, "100.00")
	badges := f.category(t, 5010)
	cash := f.category(t, model.CodeCashOnHand)

	exp, err := f.posting.RecordDirectExpense(ctx, DirectExpense{
		Date:              date(2026, 2, 7),
		Amount:            dec("12.50"),
		ExpenseAccountID:  badges.ID,
		Description:       "Swimming badges",
		PaidFromAccountID: cash.ID,
	})
	require.NoError(t, err)
	require.NotZero(t, exp.TransactionID)

	assert.True(t, f.balanceByCode(t, model.CodeCashOnHand).Equal(dec("87.50")))
	assert.True(t, f.balanceByCode(t, 5010).Equal(dec("12.50")))

	txn, err := f.ledger.Get(ctx, exp.TransactionID)
	require.NoError(t, err)
	assert.Equal(t, "Swimming badges", txn.Description)
	require.Len(t, txn.Lines, 2)
}

func TestRecordDirectExpense_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fundCash(t, "100.00")
	badges := f.category(t, 5010)
	cash := f.category(t, model.CodeCashOnHand)
	subs := f.category(t, model.CodeSubsIncome)

	var verr *faults.ValidationError
	_, err := f.posting.RecordDirectExpense(ctx, DirectExpense{
		Date: date(2026, 2, 7), Amount: dec("0"),
		ExpenseAccountID: badges.ID, Description: "x", PaidFromAccountID: cash.ID,
	})
	require.ErrorAs(t, err, &verr)

	_, err = f.posting.RecordDirectExpense(ctx, DirectExpense{
		Date: date(2026, 2, 7), Amount: dec("5"),
		ExpenseAccountID: badges.ID, Description: "  ", PaidFromAccountID: cash.ID,
	})
	require.ErrorAs(t, err, &verr)

	// Paying from an income account is not an expense payment.
	_, err = f.posting.RecordDirectExpense(ctx, DirectExpense{
		Date: date(2026, 2, 7), Amount: dec("5"),
		ExpenseAccountID: badges.ID, Description: "x", PaidFromAccountID: subs.ID,
	})
	require.ErrorAs(t, err, &verr)

	// A non-expense category is rejected too.
	_, err = f.posting.RecordDirectExpense(ctx, DirectExpense{
		Date: date(2026, 2, 7), Amount: dec("5"),
		ExpenseAccountID: cash.ID, Description: "x", PaidFromAccountID: cash.ID,
	})
	require.ErrorAs(t, err, &verr)

	var nerr *faults.NotFoundError
	_, err = f.posting.RecordDirectExpense(ctx, DirectExpense{
		Date: date(2026, 2, 7), Amount: dec("5"),
		ExpenseAccountID: 999, Description: "x", PaidFromAccountID: cash.ID,
	})
	require.ErrorAs(t, err, &nerr)
}

// Recording then deleting a direct expense restores every balance exactly.
func TestDeleteDirectExpense_RestoresBalances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fundCash(t, "100.00")
	badges := f.category(t, 5010)
	cash := f.category(t, model.CodeCashOnHand)

	before := f.balanceByCode(t, model.CodeCashOnHand)
	exp, err := f.posting.RecordDirectExpense(ctx, DirectExpense{
		Date:              date(2026, 2, 7),
		Amount:            dec("33.33"),
		ExpenseAccountID:  badges.ID,
		Description:       "Tents",
		PaidFromAccountID: cash.ID,
	})
	require.NoError(t, err)

	require.NoError(t, f.posting.DeleteDirectExpense(ctx, exp.ID))

	assert.True(t, f.balanceByCode(t, model.CodeCashOnHand).Equal(before))
	assert.True(t, f.balanceByCode(t, 5010).IsZero())

	_, err = f.posting.GetExpense(ctx, exp.ID)
	var nerr *faults.NotFoundError
	assert.ErrorAs(t, err, &nerr)

	_, err = f.ledger.Get(ctx, exp.TransactionID)
	assert.ErrorAs(t, err, &nerr)
}

// Scenario: an expense attached to a claim cannot be deleted directly.
func TestDeleteDirectExpense_RejectsClaimedExpense(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	badges := f.category(t, 5010)

	claim, err := f.posting.CreateClaim(ctx, "B. Leader", "")
	require.NoError(t, err)
	exp, err := f.posting.AddExpenseToClaim(ctx, claim.ID, ClaimExpense{
		Date: date(2026, 2, 7), Amount: dec("10.00"),
		ExpenseAccountID: badges.ID, Description: "Badges",
	})
	require.NoError(t, err)

	err = f.posting.DeleteDirectExpense(ctx, exp.ID)
	var cerr *faults.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), "belongs to a claim")
}
