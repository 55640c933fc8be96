package workflow

import (
	"errors"
	"testing"

	"github.com/nirmantrack/sitebooks_backend/config"
	"github.com/nirmantrack/sitebooks_backend/models"
	"github.com/nirmantrack/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
)

func TestAccountBalanceThroughPaymentLifecycle(t *testing.T) {
	ctx := setupTestDB(t)
	account := newTestAccount(t, ctx, 50000)

	wantDecimal(t, "opening capital", account.TotalCapital, 50000)
	wantDecimal(t, "opening balance", account.CurrentBalance, 50000)

	expense, err := CreateExpense(ctx, &models.NewExpense{
		Title:       "Mason wages",
		Amount:      decimal.NewFromInt(10000),
		ExpenseType: models.ExpenseTypeLabor,
		AccountId:   &account.ID,
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	payment, err := CreatePayment(ctx, &models.NewPayment{
		ExpenseId: expense.ID,
		Amount:    decimal.NewFromInt(2000),
		Method:    models.PaymentMethodCash,
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	wantDecimal(t, "balance after payment", reloadAccount(t, ctx, account.ID).CurrentBalance, 48000)

	if _, err := UpdatePayment(ctx, payment.ID, &models.NewPayment{
		Amount: decimal.NewFromInt(3000),
		Method: models.PaymentMethodCash,
	}); err != nil {
		t.Fatalf("update payment: %v", err)
	}
	wantDecimal(t, "balance after edit", reloadAccount(t, ctx, account.ID).CurrentBalance, 47000)

	if _, err := DeletePayment(ctx, payment.ID); err != nil {
		t.Fatalf("delete payment: %v", err)
	}
	wantDecimal(t, "balance after delete", reloadAccount(t, ctx, account.ID).CurrentBalance, 50000)

	if _, err := CreateManualLedgerEntry(ctx, &models.NewLedgerEntry{
		AccountId:   account.ID,
		Amount:      decimal.NewFromInt(5000),
		Kind:        models.EntryKindCredit,
		Description: "Loan disbursement",
	}); err != nil {
		t.Fatalf("create manual entry: %v", err)
	}
	account = reloadAccount(t, ctx, account.ID)
	wantDecimal(t, "balance after top-up", account.CurrentBalance, 55000)
	wantDecimal(t, "capital after top-up", account.TotalCapital, 55000)

	// The stored balance must agree with the surviving entries.
	credits, debits, err := models.SumAccountEntries(config.GetDB(), account.ID)
	if err != nil {
		t.Fatalf("sum entries: %v", err)
	}
	if !account.CurrentBalance.Equal(credits.Sub(debits)) {
		t.Fatalf("balance %s does not match entries %s - %s", account.CurrentBalance, credits, debits)
	}
}

func TestManualDebitMovesBalanceOnly(t *testing.T) {
	ctx := setupTestDB(t)
	account := newTestAccount(t, ctx, 20000)

	entry, err := CreateManualLedgerEntry(ctx, &models.NewLedgerEntry{
		AccountId: account.ID,
		Amount:    decimal.NewFromInt(4000),
		Kind:      models.EntryKindDebit,
	})
	if err != nil {
		t.Fatalf("create manual debit: %v", err)
	}
	account = reloadAccount(t, ctx, account.ID)
	wantDecimal(t, "balance after drawdown", account.CurrentBalance, 16000)
	wantDecimal(t, "capital after drawdown", account.TotalCapital, 20000)

	if _, err := DeleteLedgerEntry(ctx, entry.ID); err != nil {
		t.Fatalf("delete manual debit: %v", err)
	}
	account = reloadAccount(t, ctx, account.ID)
	wantDecimal(t, "balance after reversal", account.CurrentBalance, 20000)
	wantDecimal(t, "capital after reversal", account.TotalCapital, 20000)
}

func TestOpeningEntryIsNotDeletable(t *testing.T) {
	ctx := setupTestDB(t)
	account := newTestAccount(t, ctx, 30000)

	entries, err := models.GetLedgerEntries(ctx, account.ID)
	if err != nil {
		t.Fatalf("list entries: %v", err)
	}
	if len(entries) != 1 || entries[0].Origin != models.EntryOriginOpeningBalance {
		t.Fatalf("expected single opening entry, got %+v", entries)
	}

	_, err = DeleteLedgerEntry(ctx, entries[0].ID)
	if !errors.Is(err, utils.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}
}

func TestPaymentEntryOnlyChangesThroughPayment(t *testing.T) {
	ctx := setupTestDB(t)
	account := newTestAccount(t, ctx, 10000)

	expense, err := CreateExpense(ctx, &models.NewExpense{
		Title:       "Permit fees",
		Amount:      decimal.NewFromInt(3000),
		ExpenseType: models.ExpenseTypeGovt,
		AccountId:   &account.ID,
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	payment, err := CreatePayment(ctx, &models.NewPayment{
		ExpenseId: expense.ID,
		Amount:    decimal.NewFromInt(3000),
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}

	entry, err := models.GetEntryByPaymentId(config.GetDB(), payment.ID)
	if err != nil || entry == nil {
		t.Fatalf("expected routed entry, got %v (err %v)", entry, err)
	}
	if _, err := DeleteLedgerEntry(ctx, entry.ID); !errors.Is(err, utils.ErrReferentialIntegrity) {
		t.Fatalf("expected ErrReferentialIntegrity, got %v", err)
	}
}

func TestExpenseStatusBoundary(t *testing.T) {
	ctx := setupTestDB(t)

	expense, err := CreateExpense(ctx, &models.NewExpense{
		Title:       "Sand delivery",
		Amount:      decimal.NewFromInt(5000),
		ExpenseType: models.ExpenseTypeOther,
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if expense.CurrentStatus != models.ExpenseStatusUnpaid {
		t.Fatalf("new expense status = %s, want UNPAID", expense.CurrentStatus)
	}

	payment, err := CreatePayment(ctx, &models.NewPayment{
		ExpenseId: expense.ID,
		Amount:    decimal.NewFromInt(2000),
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if got := reloadExpense(t, ctx, expense.ID).CurrentStatus; got != models.ExpenseStatusPartial {
		t.Fatalf("status = %s, want PARTIAL", got)
	}

	// Crossing the threshold flips the status.
	if _, err := UpdatePayment(ctx, payment.ID, &models.NewPayment{Amount: decimal.NewFromInt(5000)}); err != nil {
		t.Fatalf("update payment: %v", err)
	}
	if got := reloadExpense(t, ctx, expense.ID).CurrentStatus; got != models.ExpenseStatusPaid {
		t.Fatalf("status = %s, want PAID", got)
	}

	if _, err := UpdatePayment(ctx, payment.ID, &models.NewPayment{Amount: decimal.NewFromInt(4999)}); err != nil {
		t.Fatalf("update payment: %v", err)
	}
	if got := reloadExpense(t, ctx, expense.ID).CurrentStatus; got != models.ExpenseStatusPartial {
		t.Fatalf("status = %s, want PARTIAL", got)
	}

	if _, err := DeletePayment(ctx, payment.ID); err != nil {
		t.Fatalf("delete payment: %v", err)
	}
	if got := reloadExpense(t, ctx, expense.ID).CurrentStatus; got != models.ExpenseStatusUnpaid {
		t.Fatalf("status = %s, want UNPAID", got)
	}
}

func TestPaymentRequiresExistingExpense(t *testing.T) {
	ctx := setupTestDB(t)

	_, err := CreatePayment(ctx, &models.NewPayment{
		ExpenseId: 9999,
		Amount:    decimal.NewFromInt(100),
	})
	if !errors.Is(err, utils.ErrReferentialIntegrity) {
		t.Fatalf("expected ErrReferentialIntegrity, got %v", err)
	}
}

func TestDeleteExpenseRefundsPayments(t *testing.T) {
	ctx := setupTestDB(t)
	account := newTestAccount(t, ctx, 10000)

	expense, err := CreateExpense(ctx, &models.NewExpense{
		Title:       "Electrician advance",
		Amount:      decimal.NewFromInt(6000),
		ExpenseType: models.ExpenseTypeLabor,
		AccountId:   &account.ID,
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if _, err := CreatePayment(ctx, &models.NewPayment{
		ExpenseId: expense.ID,
		Amount:    decimal.NewFromInt(2500),
	}); err != nil {
		t.Fatalf("create payment: %v", err)
	}
	wantDecimal(t, "balance after payment", reloadAccount(t, ctx, account.ID).CurrentBalance, 7500)

	if _, err := DeleteExpense(ctx, expense.ID); err != nil {
		t.Fatalf("delete expense: %v", err)
	}
	wantDecimal(t, "balance after expense delete", reloadAccount(t, ctx, account.ID).CurrentBalance, 10000)

	if _, err := models.GetExpense(ctx, expense.ID); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected expense gone, got %v", err)
	}
}

func TestDeleteAccountGuardedByRoutedEntries(t *testing.T) {
	ctx := setupTestDB(t)
	account := newTestAccount(t, ctx, 10000)

	expense, err := CreateExpense(ctx, &models.NewExpense{
		Title:       "Gravel",
		Amount:      decimal.NewFromInt(1000),
		ExpenseType: models.ExpenseTypeMaterial,
		AccountId:   &account.ID,
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	if _, err := CreatePayment(ctx, &models.NewPayment{
		ExpenseId: expense.ID,
		Amount:    decimal.NewFromInt(1000),
	}); err != nil {
		t.Fatalf("create payment: %v", err)
	}

	if _, err := DeleteLedgerAccount(ctx, account.ID); !errors.Is(err, utils.ErrReferentialIntegrity) {
		t.Fatalf("expected ErrReferentialIntegrity, got %v", err)
	}
}
