package workflow

import (
	"errors"
	"testing"

	"github.com/nirmantrack/sitebooks_backend/models"
	"github.com/nirmantrack/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
)

func TestReceiptThenConsumption(t *testing.T) {
	ctx := setupTestDB(t)
	material := newTestMaterial(t, ctx, "Cement")

	if _, err := CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId: material.ID,
		Kind:       models.TransactionKindReceipt,
		Quantity:   decimal.NewFromInt(50),
		UnitPrice:  decimal.NewFromInt(850),
	}); err != nil {
		t.Fatalf("create receipt: %v", err)
	}
	material = reloadMaterial(t, ctx, material.ID)
	wantDecimal(t, "stock after receipt", material.CurrentStock, 50)
	wantDecimal(t, "avg cost after receipt", material.AvgUnitCost, 850)

	_, err := CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId: material.ID,
		Kind:       models.TransactionKindConsumption,
		Quantity:   decimal.NewFromInt(60),
	})
	if !errors.Is(err, utils.ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}

	if _, err := CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId: material.ID,
		Kind:       models.TransactionKindConsumption,
		Quantity:   decimal.NewFromInt(30),
	}); err != nil {
		t.Fatalf("create consumption: %v", err)
	}
	material = reloadMaterial(t, ctx, material.ID)
	wantDecimal(t, "stock after consumption", material.CurrentStock, 20)
	wantDecimal(t, "consumed total", material.QuantityConsumedTotal, 30)
	wantDecimal(t, "avg cost unchanged", material.AvgUnitCost, 850)
}

func TestWeightedAverageAcrossReceipts(t *testing.T) {
	ctx := setupTestDB(t)
	material := newTestMaterial(t, ctx, "Rebar")

	if _, err := CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId: material.ID,
		Kind:       models.TransactionKindReceipt,
		Quantity:   decimal.NewFromInt(50),
		UnitPrice:  decimal.NewFromInt(850),
	}); err != nil {
		t.Fatalf("first receipt: %v", err)
	}
	second, err := CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId: material.ID,
		Kind:       models.TransactionKindReceipt,
		Quantity:   decimal.NewFromInt(50),
		UnitPrice:  decimal.NewFromInt(950),
	})
	if err != nil {
		t.Fatalf("second receipt: %v", err)
	}
	material = reloadMaterial(t, ctx, material.ID)
	wantDecimal(t, "blended avg", material.AvgUnitCost, 900)

	// Editing a receipt backs out its old contribution first.
	if _, err := UpdateInventoryTransaction(ctx, second.ID, &models.NewInventoryTransaction{
		Quantity:  decimal.NewFromInt(50),
		UnitPrice: decimal.NewFromInt(850),
	}); err != nil {
		t.Fatalf("update receipt: %v", err)
	}
	material = reloadMaterial(t, ctx, material.ID)
	wantDecimal(t, "avg after edit", material.AvgUnitCost, 850)
	wantDecimal(t, "received total after edit", material.QuantityReceivedTotal, 100)
}

func TestReturnReducesReceivedOnly(t *testing.T) {
	ctx := setupTestDB(t)
	material := newTestMaterial(t, ctx, "Bricks")

	if _, err := CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId: material.ID,
		Kind:       models.TransactionKindReceipt,
		Quantity:   decimal.NewFromInt(100),
		UnitPrice:  decimal.NewFromInt(25),
	}); err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if _, err := CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId: material.ID,
		Kind:       models.TransactionKindReturn,
		Quantity:   decimal.NewFromInt(20),
	}); err != nil {
		t.Fatalf("return: %v", err)
	}
	material = reloadMaterial(t, ctx, material.ID)
	wantDecimal(t, "received after return", material.QuantityReceivedTotal, 80)
	wantDecimal(t, "consumed after return", material.QuantityConsumedTotal, 0)
	wantDecimal(t, "stock after return", material.CurrentStock, 80)
	wantDecimal(t, "avg after return", material.AvgUnitCost, 25)
}

func TestPendingCarriesNoEffect(t *testing.T) {
	ctx := setupTestDB(t)
	material := newTestMaterial(t, ctx, "Paint")

	order, err := PlaceMaterialOrder(ctx, &PlaceOrderInput{
		MaterialId: material.ID,
		Quantity:   decimal.NewFromInt(10),
		UnitPrice:  decimal.NewFromInt(1200),
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}
	material = reloadMaterial(t, ctx, material.ID)
	wantDecimal(t, "stock with pending order", material.CurrentStock, 0)
	if order.ExpenseId != nil {
		t.Fatalf("pending order must not spawn an expense")
	}

	// Cancelling before receipt leaves aggregates untouched.
	if _, err := UpdateInventoryTransaction(ctx, order.ID, &models.NewInventoryTransaction{
		Status:    models.TransactionStatusCancelled,
		Quantity:  order.Quantity,
		UnitPrice: order.UnitPrice,
	}); err != nil {
		t.Fatalf("cancel pending: %v", err)
	}
	material = reloadMaterial(t, ctx, material.ID)
	wantDecimal(t, "stock after cancel", material.CurrentStock, 0)
}

func TestReceivingOrderAppliesEffectOnce(t *testing.T) {
	ctx := setupTestDB(t)
	material := newTestMaterial(t, ctx, "Tiles")

	order, err := PlaceMaterialOrder(ctx, &PlaceOrderInput{
		MaterialId: material.ID,
		Quantity:   decimal.NewFromInt(40),
		UnitPrice:  decimal.NewFromInt(150),
	})
	if err != nil {
		t.Fatalf("place order: %v", err)
	}

	received, err := ReceiveMaterialOrder(ctx, order.ID, decimal.Zero, decimal.Zero)
	if err != nil {
		t.Fatalf("receive order: %v", err)
	}
	if received.Status != models.TransactionStatusReceived || received.ReceivedAt == nil {
		t.Fatalf("expected RECEIVED with timestamp, got %+v", received)
	}
	material = reloadMaterial(t, ctx, material.ID)
	wantDecimal(t, "stock after receive", material.CurrentStock, 40)
	wantDecimal(t, "avg after receive", material.AvgUnitCost, 150)

	// A second no-op update must not double-apply.
	if _, err := UpdateInventoryTransaction(ctx, received.ID, &models.NewInventoryTransaction{
		Quantity:  received.Quantity,
		UnitPrice: received.UnitPrice,
	}); err != nil {
		t.Fatalf("no-op update: %v", err)
	}
	material = reloadMaterial(t, ctx, material.ID)
	wantDecimal(t, "stock after no-op update", material.CurrentStock, 40)

	// Orders carry auto_expense, so receiving books the cost too.
	received, err = models.GetInventoryTransaction(ctx, received.ID)
	if err != nil {
		t.Fatalf("reload transaction: %v", err)
	}
	if received.ExpenseId == nil {
		t.Fatalf("expected companion expense after receive")
	}
	wantDecimal(t, "companion amount", reloadExpense(t, ctx, *received.ExpenseId).Amount, 6000)
}

func TestReceivedCannotGoBackToPending(t *testing.T) {
	ctx := setupTestDB(t)
	material := newTestMaterial(t, ctx, "Steel")

	txn, err := CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId: material.ID,
		Kind:       models.TransactionKindReceipt,
		Quantity:   decimal.NewFromInt(10),
		UnitPrice:  decimal.NewFromInt(500),
	})
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	_, err = UpdateInventoryTransaction(ctx, txn.ID, &models.NewInventoryTransaction{
		Status:    models.TransactionStatusPending,
		Quantity:  txn.Quantity,
		UnitPrice: txn.UnitPrice,
	})
	if !errors.Is(err, utils.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}
}

func TestCancelSupersededReceiptRejected(t *testing.T) {
	ctx := setupTestDB(t)
	material := newTestMaterial(t, ctx, "Aggregate")

	receipt, err := CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId: material.ID,
		Kind:       models.TransactionKindReceipt,
		Quantity:   decimal.NewFromInt(50),
		UnitPrice:  decimal.NewFromInt(300),
	})
	if err != nil {
		t.Fatalf("receipt: %v", err)
	}
	if _, err := CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId: material.ID,
		Kind:       models.TransactionKindConsumption,
		Quantity:   decimal.NewFromInt(40),
	}); err != nil {
		t.Fatalf("consumption: %v", err)
	}

	// 40 of the 50 received units are spent; retracting the receipt would
	// leave consumption unbacked.
	_, err = UpdateInventoryTransaction(ctx, receipt.ID, &models.NewInventoryTransaction{
		Status:    models.TransactionStatusCancelled,
		Quantity:  receipt.Quantity,
		UnitPrice: receipt.UnitPrice,
	})
	if !errors.Is(err, utils.ErrInvalidStatusTransition) {
		t.Fatalf("expected ErrInvalidStatusTransition, got %v", err)
	}

	material = reloadMaterial(t, ctx, material.ID)
	wantDecimal(t, "stock untouched by rejected cancel", material.CurrentStock, 10)
}

func TestRecomputeMatchesIncremental(t *testing.T) {
	ctx := setupTestDB(t)
	material := newTestMaterial(t, ctx, "Sand")

	steps := []*models.NewInventoryTransaction{
		{MaterialId: material.ID, Kind: models.TransactionKindReceipt, Quantity: decimal.NewFromInt(50), UnitPrice: decimal.NewFromInt(850)},
		{MaterialId: material.ID, Kind: models.TransactionKindReceipt, Quantity: decimal.NewFromInt(50), UnitPrice: decimal.NewFromInt(950)},
		{MaterialId: material.ID, Kind: models.TransactionKindConsumption, Quantity: decimal.NewFromInt(30)},
		{MaterialId: material.ID, Kind: models.TransactionKindReturn, Quantity: decimal.NewFromInt(20)},
		{MaterialId: material.ID, Kind: models.TransactionKindWastage, Quantity: decimal.NewFromInt(10)},
	}
	for i, step := range steps {
		if _, err := CreateInventoryTransaction(ctx, step); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}

	incremental := reloadMaterial(t, ctx, material.ID)

	rebuilt, err := RecomputeMaterial(ctx, material.ID)
	if err != nil {
		t.Fatalf("recompute: %v", err)
	}
	if !rebuilt.CurrentStock.Equal(incremental.CurrentStock) {
		t.Fatalf("stock: recompute %s != incremental %s", rebuilt.CurrentStock, incremental.CurrentStock)
	}
	if !rebuilt.AvgUnitCost.Equal(incremental.AvgUnitCost) {
		t.Fatalf("avg: recompute %s != incremental %s", rebuilt.AvgUnitCost, incremental.AvgUnitCost)
	}
	if !rebuilt.QuantityReceivedTotal.Equal(incremental.QuantityReceivedTotal) {
		t.Fatalf("received: recompute %s != incremental %s", rebuilt.QuantityReceivedTotal, incremental.QuantityReceivedTotal)
	}
	if !rebuilt.QuantityConsumedTotal.Equal(incremental.QuantityConsumedTotal) {
		t.Fatalf("consumed: recompute %s != incremental %s", rebuilt.QuantityConsumedTotal, incremental.QuantityConsumedTotal)
	}

	// Idempotent: folding again yields the same aggregates.
	again, err := RecomputeMaterial(ctx, material.ID)
	if err != nil {
		t.Fatalf("second recompute: %v", err)
	}
	if !again.CurrentStock.Equal(rebuilt.CurrentStock) || !again.AvgUnitCost.Equal(rebuilt.AvgUnitCost) {
		t.Fatalf("recompute not idempotent: %+v vs %+v", again, rebuilt)
	}
}

func TestRecomputeAllMaterials(t *testing.T) {
	ctx := setupTestDB(t)
	first := newTestMaterial(t, ctx, "Cement")
	second := newTestMaterial(t, ctx, "Bricks")

	if _, err := CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId: first.ID,
		Kind:       models.TransactionKindReceipt,
		Quantity:   decimal.NewFromInt(10),
		UnitPrice:  decimal.NewFromInt(100),
	}); err != nil {
		t.Fatalf("receipt: %v", err)
	}

	results, err := RecomputeAllMaterials(ctx)
	if err != nil {
		t.Fatalf("recompute all: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 materials, got %d", len(results))
	}
	wantDecimal(t, "untouched material stock", reloadMaterial(t, ctx, second.ID).CurrentStock, 0)
	wantDecimal(t, "rebuilt material stock", reloadMaterial(t, ctx, first.ID).CurrentStock, 10)
}

func TestTransactionRequiresExistingMaterial(t *testing.T) {
	ctx := setupTestDB(t)

	_, err := CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId: 12345,
		Kind:       models.TransactionKindReceipt,
		Quantity:   decimal.NewFromInt(1),
		UnitPrice:  decimal.NewFromInt(1),
	})
	if !errors.Is(err, utils.ErrReferentialIntegrity) {
		t.Fatalf("expected ErrReferentialIntegrity, got %v", err)
	}
}
