package posting

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GromitDog/GUMS-sub000/internal/faults"
	"github.com/GromitDog/GUMS-sub000/internal/model"
)

func TestClaimLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	badges := f.category(t, 5010)

	claim, err := f.posting.CreateClaim(ctx, "B. Leader", "summer camp receipts")
	require.NoError(t, err)
	assert.Equal(t, model.ClaimStatusDraft, claim.Status)

	exp, err := f.posting.AddExpenseToClaim(ctx, claim.ID, ClaimExpense{
		Date: date(2026, 2, 1), Amount: dec("10.00"),
		ExpenseAccountID: badges.ID, Description: "Badges",
	})
	require.NoError(t, err)
	assert.Zero(t, exp.TransactionID, "claimed expense is never posted on its own")
	assert.Zero(t, exp.PaidFromAccountID)

	loaded, err := f.posting.GetClaim(ctx, claim.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Expenses, 1)
	assert.True(t, loaded.TotalAmount().Equal(dec("10.00")))

	require.NoError(t, f.posting.RemoveExpenseFromClaim(ctx, claim.ID, exp.ID))
	loaded, err = f.posting.GetClaim(ctx, claim.ID)
	require.NoError(t, err)
	assert.Empty(t, loaded.Expenses)

	require.NoError(t, f.posting.SubmitClaim(ctx, claim.ID, date(2026, 2, 5)))
	loaded, err = f.posting.GetClaim(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClaimStatusSubmitted, loaded.Status)
	assert.Equal(t, date(2026, 2, 5), loaded.SubmittedDate)

	// Submitted claims are frozen until settlement.
	_, err = f.posting.AddExpenseToClaim(ctx, claim.ID, ClaimExpense{
		Date: date(2026, 2, 6), Amount: dec("5.00"),
		ExpenseAccountID: badges.ID, Description: "Late receipt",
	})
	var cerr *faults.ConflictError
	require.ErrorAs(t, err, &cerr)

	err = f.posting.SubmitClaim(ctx, claim.ID, date(2026, 2, 6))
	require.ErrorAs(t, err, &cerr)
}

// Scenario: $10 + $15 in category A and $5 in category B settle as one
// transaction with exactly two debit lines and one credit line.
func TestSettleExpenseClaim_AggregatesByCategory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fundCash(t, "100.00")
	badges := f.category(t, 5010)
	equipment := f.category(t, 5020)
	cash := f.category(t, model.CodeCashOnHand)

	claim, err := f.posting.CreateClaim(ctx, "B. Leader", "")
	require.NoError(t, err)
	for _, e := range []ClaimExpense{
		{Date: date(2026, 2, 1), Amount: dec("10.00"), ExpenseAccountID: badges.ID, Description: "Badges one"},
		{Date: date(2026, 2, 2), Amount: dec("15.00"), ExpenseAccountID: badges.ID, Description: "Badges two"},
		{Date: date(2026, 2, 3), Amount: dec("5.00"), ExpenseAccountID: equipment.ID, Description: "Rope"},
	} {
		_, err := f.posting.AddExpenseToClaim(ctx, claim.ID, e)
		require.NoError(t, err)
	}
	require.NoError(t, f.posting.SubmitClaim(ctx, claim.ID, date(2026, 2, 4)))

	txn, err := f.posting.SettleExpenseClaim(ctx, claim.ID, cash.ID, model.PaymentMethodCash, date(2026, 2, 10))
	require.NoError(t, err)
	require.Len(t, txn.Lines, 3)

	// Debit lines in chart order, then the single credit for the total.
	assert.Equal(t, 5010, txn.Lines[0].AccountCode)
	assert.True(t, txn.Lines[0].Debit.Equal(dec("25.00")))
	assert.Equal(t, 5020, txn.Lines[1].AccountCode)
	assert.True(t, txn.Lines[1].Debit.Equal(dec("5.00")))
	assert.Equal(t, model.CodeCashOnHand, txn.Lines[2].AccountCode)
	assert.True(t, txn.Lines[2].Credit.Equal(dec("30.00")))

	settled, err := f.posting.GetClaim(ctx, claim.ID)
	require.NoError(t, err)
	assert.Equal(t, model.ClaimStatusSettled, settled.Status)
	assert.Equal(t, date(2026, 2, 10), settled.SettledDate)
	assert.Equal(t, cash.ID, settled.PaidFromAccountID)
	assert.Equal(t, model.PaymentMethodCash, settled.PaymentMethod)
	assert.Equal(t, txn.ID, settled.TransactionID)

	assert.True(t, f.balanceByCode(t, model.CodeCashOnHand).Equal(dec("70.00")))
	assert.True(t, f.balanceByCode(t, 5010).Equal(dec("25.00")))
	assert.True(t, f.balanceByCode(t, 5020).Equal(dec("5.00")))
}

func TestSettleExpenseClaim_Rejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fundCash(t, "100.00")
	badges := f.category(t, 5010)
	cash := f.category(t, model.CodeCashOnHand)

	// Empty claim cannot settle.
	empty, err := f.posting.CreateClaim(ctx, "B. Leader", "")
	require.NoError(t, err)
	_, err = f.posting.SettleExpenseClaim(ctx, empty.ID, cash.ID, model.PaymentMethodCash, date(2026, 2, 10))
	var cerr *faults.ConflictError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), "no expenses")

	// Settling twice is a one-way door.
	claim, err := f.posting.CreateClaim(ctx, "B. Leader", "")
	require.NoError(t, err)
	_, err = f.posting.AddExpenseToClaim(ctx, claim.ID, ClaimExpense{
		Date: date(2026, 2, 1), Amount: dec("10.00"),
		ExpenseAccountID: badges.ID, Description: "Badges",
	})
	require.NoError(t, err)
	_, err = f.posting.SettleExpenseClaim(ctx, claim.ID, cash.ID, model.PaymentMethodCash, date(2026, 2, 10))
	require.NoError(t, err)
	_, err = f.posting.SettleExpenseClaim(ctx, claim.ID, cash.ID, model.PaymentMethodCash, date(2026, 2, 11))
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), "already settled")

	// Paying account must be an asset.
	claim2, err := f.posting.CreateClaim(ctx, "C. Helper", "")
	require.NoError(t, err)
	_, err = f.posting.AddExpenseToClaim(ctx, claim2.ID, ClaimExpense{
		Date: date(2026, 2, 1), Amount: dec("10.00"),
		ExpenseAccountID: badges.ID, Description: "Badges",
	})
	require.NoError(t, err)
	_, err = f.posting.SettleExpenseClaim(ctx, claim2.ID, badges.ID, model.PaymentMethodCash, date(2026, 2, 10))
	var verr *faults.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestDeleteClaim(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.fundCash(t, "100.00")
	badges := f.category(t, 5010)
	cash := f.category(t, model.CodeCashOnHand)

	claim, err := f.posting.CreateClaim(ctx, "B. Leader", "")
	require.NoError(t, err)
	exp, err := f.posting.AddExpenseToClaim(ctx, claim.ID, ClaimExpense{
		Date: date(2026, 2, 1), Amount: dec("10.00"),
		ExpenseAccountID: badges.ID, Description: "Badges",
	})
	require.NoError(t, err)

	require.NoError(t, f.posting.DeleteClaim(ctx, claim.ID))

	var nerr *faults.NotFoundError
	_, err = f.posting.GetClaim(ctx, claim.ID)
	require.ErrorAs(t, err, &nerr)
	_, err = f.posting.GetExpense(ctx, exp.ID)
	require.ErrorAs(t, err, &nerr)

	// A settled claim stays on the books.
	settledClaim, err := f.posting.CreateClaim(ctx, "C. Helper", "")
	require.NoError(t, err)
	_, err = f.posting.AddExpenseToClaim(ctx, settledClaim.ID, ClaimExpense{
		Date: date(2026, 2, 1), Amount: dec("10.00"),
		ExpenseAccountID: badges.ID, Description: "Badges",
	})
	require.NoError(t, err)
	_, err = f.posting.SettleExpenseClaim(ctx, settledClaim.ID, cash.ID, model.PaymentMethodCash, date(2026, 2, 10))
	require.NoError(t, err)

	err = f.posting.DeleteClaim(ctx, settledClaim.ID)
	var cerr *faults.ConflictError
	require.ErrorAs(t, err, &cerr)
}

func TestCreateClaim_RequiresClaimant(t *testing.T) {
	f := newFixture(t)

	_, err := f.posting.CreateClaim(context.Background(), "  ", "")
	var verr *faults.ValidationError
	require.ErrorAs(t, err, &verr)
}

func TestListClaims(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	badges := f.category(t, 5010)

	c1, err := f.posting.CreateClaim(ctx, "B. Leader", "")
	require.NoError(t, err)
	c2, err := f.posting.CreateClaim(ctx, "C. Helper", "")
	require.NoError(t, err)
	_, err = f.posting.AddExpenseToClaim(ctx, c2.ID, ClaimExpense{
		Date: date(2026, 2, 1), Amount: decimal.RequireFromString("4.00"),
		ExpenseAccountID: badges.ID, Description: "Badges",
	})
	require.NoError(t, err)

	claims, err := f.posting.ListClaims(ctx)
	require.NoError(t, err)
	require.Len(t, claims, 2)
	assert.Equal(t, c2.ID, claims[0].ID, "newest first")
	assert.Len(t, claims[0].Expenses, 1)
	assert.Equal(t, c1.ID, claims[1].ID)
}
