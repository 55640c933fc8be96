package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nirmantrack/sitebooks_backend/config"
	"github.com/nirmantrack/sitebooks_backend/models"
	"github.com/nirmantrack/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// weightedAverage blends a receipt into the running average cost.
// priorQty is the received total before this receipt.
func weightedAverage(priorQty, priorAvg, qty, price decimal.Decimal) decimal.Decimal {
	newTotal := priorQty.Add(qty)
	if !newTotal.IsPositive() {
		return decimal.Zero
	}
	return priorQty.Mul(priorAvg).Add(qty.Mul(price)).Div(newTotal)
}

// removeFromAverage is the inverse: it backs one receipt's contribution out
// of the running average. totalQty is the received total including the
// receipt being removed. An empty remainder resets the average to zero.
func removeFromAverage(totalQty, avg, qty, price decimal.Decimal) decimal.Decimal {
	prior := totalQty.Sub(qty)
	if !prior.IsPositive() {
		return decimal.Zero
	}
	return totalQty.Mul(avg).Sub(qty.Mul(price)).Div(prior)
}

// applyTransactionEffect folds one transaction into the material's working
// aggregates. Only RECEIVED transactions are effectful. The strict flag
// enables the stock guard; the recompute path folds unguarded so it always
// terminates with a defined result.
func applyTransactionEffect(material *models.Material, txn *models.InventoryTransaction, strict bool) error {
	if txn.Status != models.TransactionStatusReceived {
		return nil
	}
	switch txn.Kind {
	case models.TransactionKindReceipt:
		material.AvgUnitCost = weightedAverage(material.QuantityReceivedTotal, material.AvgUnitCost, txn.Quantity, txn.UnitPrice)
		material.QuantityReceivedTotal = material.QuantityReceivedTotal.Add(txn.Quantity)
	case models.TransactionKindConsumption, models.TransactionKindWastage:
		available := material.QuantityReceivedTotal.Sub(material.QuantityConsumedTotal)
		if strict && txn.Quantity.GreaterThan(available) {
			return fmt.Errorf("material %d has %s in stock, need %s: %w",
				material.ID, available, txn.Quantity, utils.ErrInsufficientStock)
		}
		material.QuantityConsumedTotal = material.QuantityConsumedTotal.Add(txn.Quantity)
	case models.TransactionKindReturn:
		material.QuantityReceivedTotal = material.QuantityReceivedTotal.Sub(txn.Quantity)
	}
	material.CurrentStock = material.QuantityReceivedTotal.Sub(material.QuantityConsumedTotal)
	return nil
}

// reverseTransactionEffect undoes the contribution of a RECEIVED
// transaction. Retracting a receipt whose stock was already consumed
// downstream is a consistency violation and is rejected.
func reverseTransactionEffect(material *models.Material, txn *models.InventoryTransaction) error {
	if txn.Status != models.TransactionStatusReceived {
		return nil
	}
	switch txn.Kind {
	case models.TransactionKindReceipt:
		newReceived := material.QuantityReceivedTotal.Sub(txn.Quantity)
		if newReceived.LessThan(material.QuantityConsumedTotal) {
			return fmt.Errorf("receipt %d already superseded by consumption: %w",
				txn.ID, utils.ErrInvalidStatusTransition)
		}
		material.AvgUnitCost = removeFromAverage(material.QuantityReceivedTotal, material.AvgUnitCost, txn.Quantity, txn.UnitPrice)
		material.QuantityReceivedTotal = newReceived
	case models.TransactionKindConsumption, models.TransactionKindWastage:
		material.QuantityConsumedTotal = material.QuantityConsumedTotal.Sub(txn.Quantity)
	case models.TransactionKindReturn:
		material.QuantityReceivedTotal = material.QuantityReceivedTotal.Add(txn.Quantity)
	}
	material.CurrentStock = material.QuantityReceivedTotal.Sub(material.QuantityConsumedTotal)
	return nil
}

func persistAggregates(tx *gorm.DB, material *models.Material) error {
	return models.WriteMaterialAggregates(tx, material.ID,
		material.QuantityReceivedTotal, material.QuantityConsumedTotal, material.AvgUnitCost)
}

// CreateInventoryTransaction records a stock movement. An omitted status
// defaults to RECEIVED; callers that stage an expected movement pass
// PENDING explicitly (see PlaceMaterialOrder). A RECEIVED receipt with
// auto_expense set gets a companion expense through the bridge.
func CreateInventoryTransaction(ctx context.Context, input *models.NewInventoryTransaction) (*models.InventoryTransaction, error) {
	logger := config.GetLogger()
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}

	db := config.GetDB()
	tx := db.Begin()

	txn, err := createTransaction(tx, ctx, projectId, input, syncNone)
	if err != nil {
		tx.Rollback()
		config.LogError(logger, "inventory.go", "CreateInventoryTransaction", "CreateTransaction", input, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "inventory.go", "CreateInventoryTransaction", "Commit", txn, err)
		return nil, err
	}
	return txn, nil
}

func createTransaction(tx *gorm.DB, ctx context.Context, projectId string, input *models.NewInventoryTransaction, origin syncOrigin) (*models.InventoryTransaction, error) {
	if !input.Quantity.IsPositive() {
		return nil, errors.New("quantity must be positive")
	}
	if input.Kind != models.TransactionKindReceipt && !input.UnitPrice.IsZero() {
		return nil, errors.New("unit price applies to receipts only")
	}

	material, err := models.LockMaterial(tx, projectId, input.MaterialId)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, fmt.Errorf("material %d: %w", input.MaterialId, utils.ErrReferentialIntegrity)
		}
		return nil, err
	}
	if err := validateTransactionRefs(ctx, projectId, input.SupplierId, input.AccountId); err != nil {
		return nil, err
	}

	status := input.Status
	if status == "" {
		status = models.TransactionStatusReceived
	}
	transactionDate := input.TransactionDate
	if transactionDate.IsZero() {
		transactionDate = time.Now()
	}
	txn := models.InventoryTransaction{
		ProjectId:       projectId,
		MaterialId:      input.MaterialId,
		Kind:            input.Kind,
		Status:          status,
		Quantity:        input.Quantity,
		UnitPrice:       input.UnitPrice,
		TransactionDate: transactionDate,
		SupplierId:      input.SupplierId,
		AccountId:       input.AccountId,
		AutoExpense:     input.AutoExpense,
		Notes:           input.Notes,
	}
	if status == models.TransactionStatusReceived {
		now := time.Now()
		txn.ReceivedAt = &now
	}

	if err := applyTransactionEffect(material, &txn, true); err != nil {
		return nil, err
	}
	if err := tx.Create(&txn).Error; err != nil {
		return nil, err
	}
	if txn.Status == models.TransactionStatusReceived {
		if err := persistAggregates(tx, material); err != nil {
			return nil, err
		}
	}

	if err := ensureCompanionExpense(tx, projectId, material, &txn, origin); err != nil {
		return nil, err
	}
	return &txn, nil
}

// UpdateInventoryTransaction edits quantity, price, dates, references, or
// lifecycle status. The old contribution is reversed before the new one is
// applied so nothing is ever double-counted. PENDING to RECEIVED applies
// the effect as of the transition time; a RECEIVED transaction can only
// stay RECEIVED or move to CANCELLED, and cancelling is rejected once
// downstream consumption has spent the received stock.
func UpdateInventoryTransaction(ctx context.Context, id int, input *models.NewInventoryTransaction) (*models.InventoryTransaction, error) {
	logger := config.GetLogger()
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}

	db := config.GetDB()
	tx := db.Begin()

	txn, err := models.FetchTransactionForChange(tx, projectId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := updateTransaction(tx, ctx, projectId, txn, input, syncNone); err != nil {
		tx.Rollback()
		config.LogError(logger, "inventory.go", "UpdateInventoryTransaction", "UpdateTransaction", input, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "inventory.go", "UpdateInventoryTransaction", "Commit", txn, err)
		return nil, err
	}
	return txn, nil
}

func updateTransaction(tx *gorm.DB, ctx context.Context, projectId string, txn *models.InventoryTransaction, input *models.NewInventoryTransaction, origin syncOrigin) error {
	if !input.Quantity.IsPositive() {
		return errors.New("quantity must be positive")
	}
	if input.MaterialId != 0 && input.MaterialId != txn.MaterialId {
		return fmt.Errorf("transaction %d cannot move to material %d: %w", txn.ID, input.MaterialId, utils.ErrReferentialIntegrity)
	}
	if input.Kind != "" && input.Kind != txn.Kind {
		return fmt.Errorf("transaction %d cannot change kind: %w", txn.ID, utils.ErrInvalidStatusTransition)
	}

	newStatus := input.Status
	if newStatus == "" {
		newStatus = txn.Status
	}
	if txn.Status == models.TransactionStatusReceived && newStatus == models.TransactionStatusPending {
		return fmt.Errorf("transaction %d is already received: %w", txn.ID, utils.ErrInvalidStatusTransition)
	}

	material, err := models.LockMaterial(tx, projectId, txn.MaterialId)
	if err != nil {
		return err
	}
	if err := validateTransactionRefs(ctx, projectId, input.SupplierId, input.AccountId); err != nil {
		return err
	}

	wasEffectful := txn.Status == models.TransactionStatusReceived
	if err := reverseTransactionEffect(material, txn); err != nil {
		return err
	}

	txn.Quantity = input.Quantity
	txn.UnitPrice = input.UnitPrice
	txn.SupplierId = input.SupplierId
	txn.AccountId = input.AccountId
	txn.Notes = input.Notes
	if input.AutoExpense != nil {
		txn.AutoExpense = input.AutoExpense
	}
	if !input.TransactionDate.IsZero() {
		txn.TransactionDate = input.TransactionDate
	}
	if newStatus == models.TransactionStatusReceived && txn.Status != models.TransactionStatusReceived {
		now := time.Now()
		txn.ReceivedAt = &now
	}
	if newStatus != models.TransactionStatusReceived {
		txn.ReceivedAt = nil
	}
	txn.Status = newStatus

	if err := applyTransactionEffect(material, txn, true); err != nil {
		return err
	}
	if err := tx.Save(txn).Error; err != nil {
		return err
	}
	if wasEffectful || txn.Status == models.TransactionStatusReceived {
		if err := persistAggregates(tx, material); err != nil {
			return err
		}
	}

	return ensureCompanionExpense(tx, projectId, material, txn, origin)
}

// DeleteInventoryTransaction reverses the transaction's stock effect and
// removes it, together with its companion expense when the bridge linked
// one (which in turn unwinds that expense's payments and ledger entries).
func DeleteInventoryTransaction(ctx context.Context, id int) (*models.InventoryTransaction, error) {
	logger := config.GetLogger()
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}

	db := config.GetDB()
	tx := db.Begin()

	txn, err := models.FetchTransactionForChange(tx, projectId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := deleteTransaction(tx, projectId, txn, syncNone); err != nil {
		tx.Rollback()
		config.LogError(logger, "inventory.go", "DeleteInventoryTransaction", "DeleteTransaction", txn, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "inventory.go", "DeleteInventoryTransaction", "Commit", txn, err)
		return nil, err
	}
	return txn, nil
}

func deleteTransaction(tx *gorm.DB, projectId string, txn *models.InventoryTransaction, origin syncOrigin) error {
	material, err := models.LockMaterial(tx, projectId, txn.MaterialId)
	if err != nil {
		return err
	}
	wasEffectful := txn.Status == models.TransactionStatusReceived
	if err := reverseTransactionEffect(material, txn); err != nil {
		return err
	}
	if err := tx.Delete(&models.InventoryTransaction{}, txn.ID).Error; err != nil {
		return err
	}
	if wasEffectful {
		if err := persistAggregates(tx, material); err != nil {
			return err
		}
	}
	if txn.ExpenseId != nil {
		if err := deleteCompanionExpense(tx, projectId, *txn.ExpenseId, origin); err != nil {
			return err
		}
	}
	return nil
}

func validateTransactionRefs(ctx context.Context, projectId string, supplierId, accountId *int) error {
	if supplierId != nil && *supplierId > 0 {
		if err := utils.ValidateResourceId[models.Supplier](ctx, projectId, *supplierId); err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return fmt.Errorf("supplier %d: %w", *supplierId, utils.ErrReferentialIntegrity)
			}
			return err
		}
	}
	if accountId != nil && *accountId > 0 {
		if err := utils.ValidateResourceId[models.LedgerAccount](ctx, projectId, *accountId); err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return fmt.Errorf("ledger account %d: %w", *accountId, utils.ErrReferentialIntegrity)
			}
			return err
		}
	}
	return nil
}
