package workflow

import (
	"errors"
	"testing"
	"time"

	"github.com/nirmantrack/sitebooks_backend/config"
	"github.com/nirmantrack/sitebooks_backend/models"
	"github.com/nirmantrack/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
)

func TestAutoExpenseReceiptCreatesCompanion(t *testing.T) {
	ctx := setupTestDB(t)
	account := newTestAccount(t, ctx, 100000)
	material := newTestMaterial(t, ctx, "Cement")

	txn, err := CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId:  material.ID,
		Kind:        models.TransactionKindReceipt,
		Quantity:    decimal.NewFromInt(50),
		UnitPrice:   decimal.NewFromInt(850),
		AccountId:   &account.ID,
		AutoExpense: utils.NewTrue(),
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}
	if txn.ExpenseId == nil {
		t.Fatalf("expected companion expense to be linked")
	}

	expense := reloadExpense(t, ctx, *txn.ExpenseId)
	wantDecimal(t, "companion amount", expense.Amount, 42500)
	wantDecimal(t, "companion quantity", expense.Quantity, 50)
	if expense.ExpenseType != models.ExpenseTypeMaterial {
		t.Fatalf("expected MATERIAL expense, got %s", expense.ExpenseType)
	}
	if expense.CurrentStatus != models.ExpenseStatusUnpaid {
		t.Fatalf("expected UNPAID, got %s", expense.CurrentStatus)
	}
	if expense.MaterialId == nil || *expense.MaterialId != material.ID {
		t.Fatalf("companion expense not tied to material")
	}
}

func TestPlainReceiptHasNoCompanion(t *testing.T) {
	ctx := setupTestDB(t)
	material := newTestMaterial(t, ctx, "Sand")

	txn, err := CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId: material.ID,
		Kind:       models.TransactionKindReceipt,
		Quantity:   decimal.NewFromInt(10),
		UnitPrice:  decimal.NewFromInt(400),
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}
	if txn.ExpenseId != nil {
		t.Fatalf("receipt without auto_expense must not book an expense")
	}
}

func TestDeleteExpenseRemovesCompanionTransaction(t *testing.T) {
	ctx := setupTestDB(t)
	material := newTestMaterial(t, ctx, "Bricks")

	txn, err := CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId:  material.ID,
		Kind:        models.TransactionKindReceipt,
		Quantity:    decimal.NewFromInt(50),
		UnitPrice:   decimal.NewFromInt(850),
		AutoExpense: utils.NewTrue(),
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}
	wantDecimal(t, "received before delete", reloadMaterial(t, ctx, material.ID).QuantityReceivedTotal, 50)

	if _, err := DeleteExpense(ctx, *txn.ExpenseId); err != nil {
		t.Fatalf("delete expense: %v", err)
	}

	if _, err := models.GetInventoryTransaction(ctx, txn.ID); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected companion transaction gone, got %v", err)
	}
	material = reloadMaterial(t, ctx, material.ID)
	wantDecimal(t, "received after delete", material.QuantityReceivedTotal, 0)
	wantDecimal(t, "stock after delete", material.CurrentStock, 0)
}

func TestTransactionEditSyncsCompanionExpense(t *testing.T) {
	ctx := setupTestDB(t)
	material := newTestMaterial(t, ctx, "Rebar")

	txn, err := CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId:  material.ID,
		Kind:        models.TransactionKindReceipt,
		Quantity:    decimal.NewFromInt(50),
		UnitPrice:   decimal.NewFromInt(850),
		AutoExpense: utils.NewTrue(),
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}

	if _, err := UpdateInventoryTransaction(ctx, txn.ID, &models.NewInventoryTransaction{
		Quantity:  decimal.NewFromInt(60),
		UnitPrice: decimal.NewFromInt(900),
	}); err != nil {
		t.Fatalf("update receipt: %v", err)
	}

	expense := reloadExpense(t, ctx, *txn.ExpenseId)
	wantDecimal(t, "synced amount", expense.Amount, 54000)
	wantDecimal(t, "synced quantity", expense.Quantity, 60)
	wantDecimal(t, "synced unit price", expense.UnitPrice, 900)
	wantDecimal(t, "stock after edit", reloadMaterial(t, ctx, material.ID).CurrentStock, 60)
}

func TestMaterialExpenseCreatesCompanionTransaction(t *testing.T) {
	ctx := setupTestDB(t)
	material := newTestMaterial(t, ctx, "Paint")

	expense, err := CreateExpense(ctx, &models.NewExpense{
		Title:       "Paint delivery",
		Amount:      decimal.NewFromInt(24000),
		ExpenseType: models.ExpenseTypeMaterial,
		MaterialId:  &material.ID,
		Quantity:    decimal.NewFromInt(20),
		UnitPrice:   decimal.NewFromInt(1200),
		ExpenseDate: time.Now(),
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	txn, err := models.FindCompanionTransaction(config.GetDB(), expense.ID)
	if err != nil {
		t.Fatalf("find companion: %v", err)
	}
	if txn.Kind != models.TransactionKindReceipt || txn.Status != models.TransactionStatusReceived {
		t.Fatalf("expected RECEIVED receipt, got %s/%s", txn.Kind, txn.Status)
	}
	wantDecimal(t, "companion quantity", txn.Quantity, 20)
	material = reloadMaterial(t, ctx, material.ID)
	wantDecimal(t, "stock from expense", material.CurrentStock, 20)
	wantDecimal(t, "avg from expense", material.AvgUnitCost, 1200)
}

func TestExpenseEditPropagatesToTransaction(t *testing.T) {
	ctx := setupTestDB(t)
	material := newTestMaterial(t, ctx, "Tiles")

	expense, err := CreateExpense(ctx, &models.NewExpense{
		Title:       "Tile delivery",
		Amount:      decimal.NewFromInt(6000),
		ExpenseType: models.ExpenseTypeMaterial,
		MaterialId:  &material.ID,
		Quantity:    decimal.NewFromInt(40),
		UnitPrice:   decimal.NewFromInt(150),
		ExpenseDate: time.Now(),
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}

	if _, err := UpdateExpense(ctx, expense.ID, &models.NewExpense{
		Title:       "Tile delivery",
		Amount:      decimal.NewFromInt(10000),
		ExpenseType: models.ExpenseTypeMaterial,
		MaterialId:  &material.ID,
		Quantity:    decimal.NewFromInt(50),
		UnitPrice:   decimal.NewFromInt(200),
		ExpenseDate: time.Now(),
	}); err != nil {
		t.Fatalf("update expense: %v", err)
	}

	txn, err := models.FindCompanionTransaction(config.GetDB(), expense.ID)
	if err != nil {
		t.Fatalf("find companion: %v", err)
	}
	wantDecimal(t, "propagated quantity", txn.Quantity, 50)
	wantDecimal(t, "propagated unit price", txn.UnitPrice, 200)
	material = reloadMaterial(t, ctx, material.ID)
	wantDecimal(t, "stock after propagation", material.CurrentStock, 50)
	wantDecimal(t, "avg after propagation", material.AvgUnitCost, 200)
}

func TestDeleteTransactionUnwindsExpenseAndPayments(t *testing.T) {
	ctx := setupTestDB(t)
	account := newTestAccount(t, ctx, 100000)
	material := newTestMaterial(t, ctx, "Steel")

	txn, err := CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId:  material.ID,
		Kind:        models.TransactionKindReceipt,
		Quantity:    decimal.NewFromInt(50),
		UnitPrice:   decimal.NewFromInt(850),
		AccountId:   &account.ID,
		AutoExpense: utils.NewTrue(),
	})
	if err != nil {
		t.Fatalf("create receipt: %v", err)
	}
	expenseId := *txn.ExpenseId

	if _, err := CreatePayment(ctx, &models.NewPayment{
		ExpenseId: expenseId,
		Amount:    decimal.NewFromInt(42500),
	}); err != nil {
		t.Fatalf("create payment: %v", err)
	}
	wantDecimal(t, "balance after payment", reloadAccount(t, ctx, account.ID).CurrentBalance, 57500)
	if got := reloadExpense(t, ctx, expenseId).CurrentStatus; got != models.ExpenseStatusPaid {
		t.Fatalf("expected PAID, got %s", got)
	}

	if _, err := DeleteInventoryTransaction(ctx, txn.ID); err != nil {
		t.Fatalf("delete transaction: %v", err)
	}

	if _, err := models.GetExpense(ctx, expenseId); !errors.Is(err, utils.ErrNotFound) {
		t.Fatalf("expected expense gone, got %v", err)
	}
	account = reloadAccount(t, ctx, account.ID)
	wantDecimal(t, "balance refunded", account.CurrentBalance, 100000)
	wantDecimal(t, "stock reverted", reloadMaterial(t, ctx, material.ID).CurrentStock, 0)
}

func TestExpenseMaterialChangeRehomesReceipt(t *testing.T) {
	ctx := setupTestDB(t)
	first := newTestMaterial(t, ctx, "Cement")
	second := newTestMaterial(t, ctx, "Sand")

	expense, err := CreateExpense(ctx, &models.NewExpense{
		Title:       "Bulk delivery",
		Amount:      decimal.NewFromInt(5000),
		ExpenseType: models.ExpenseTypeMaterial,
		MaterialId:  &first.ID,
		Quantity:    decimal.NewFromInt(10),
		UnitPrice:   decimal.NewFromInt(500),
		ExpenseDate: time.Now(),
	})
	if err != nil {
		t.Fatalf("create expense: %v", err)
	}
	wantDecimal(t, "first material stocked", reloadMaterial(t, ctx, first.ID).CurrentStock, 10)

	if _, err := UpdateExpense(ctx, expense.ID, &models.NewExpense{
		Title:       "Bulk delivery",
		Amount:      decimal.NewFromInt(5000),
		ExpenseType: models.ExpenseTypeMaterial,
		MaterialId:  &second.ID,
		Quantity:    decimal.NewFromInt(10),
		UnitPrice:   decimal.NewFromInt(500),
		ExpenseDate: time.Now(),
	}); err != nil {
		t.Fatalf("move expense: %v", err)
	}

	wantDecimal(t, "first material emptied", reloadMaterial(t, ctx, first.ID).CurrentStock, 0)
	wantDecimal(t, "second material stocked", reloadMaterial(t, ctx, second.ID).CurrentStock, 10)
}
