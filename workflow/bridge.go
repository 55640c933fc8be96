package workflow

import (
	"errors"
	"fmt"

	"github.com/nirmantrack/sitebooks_backend/models"
	"github.com/nirmantrack/sitebooks_backend/utils"
	"gorm.io/gorm"
)

// syncOrigin says which side of the receipt/expense pair initiated the
// current mutation. It is threaded through the call explicitly so a sync
// never bounces back to the side it came from.
type syncOrigin int

const (
	syncNone syncOrigin = iota
	syncFromTransaction
	syncFromExpense
)

// ensureCompanionExpense creates or re-syncs the expense paired with a
// receipt. The transaction is the authoritative side: amount, quantity,
// price, account, and supplier flow from it. A companion is only created
// once the receipt is RECEIVED and asks for one via auto_expense.
func ensureCompanionExpense(tx *gorm.DB, projectId string, material *models.Material, txn *models.InventoryTransaction, origin syncOrigin) error {
	if origin == syncFromExpense {
		return nil
	}
	if txn.Kind != models.TransactionKindReceipt {
		return nil
	}

	if txn.ExpenseId == nil {
		if !txn.IsAutoExpense() || txn.Status != models.TransactionStatusReceived {
			return nil
		}
		expense := models.Expense{
			ProjectId:   projectId,
			Title:       fmt.Sprintf("Material receipt: %s", material.Name),
			Amount:      txn.Quantity.Mul(txn.UnitPrice),
			ExpenseType: models.ExpenseTypeMaterial,
			AccountId:   txn.AccountId,
			SupplierId:  txn.SupplierId,
			MaterialId:  &txn.MaterialId,
			Quantity:    txn.Quantity,
			UnitPrice:   txn.UnitPrice,
			ExpenseDate: txn.EffectiveDate(),
		}
		if err := tx.Create(&expense).Error; err != nil {
			return err
		}
		txn.ExpenseId = &expense.ID
		return tx.Model(&models.InventoryTransaction{}).Where("id = ?", txn.ID).
			Update("expense_id", expense.ID).Error
	}

	expense, err := models.FetchExpenseForChange(tx, projectId, *txn.ExpenseId)
	if err != nil {
		// Weak reference: the expense went away on its own, drop the link.
		if errors.Is(err, utils.ErrNotFound) {
			txn.ExpenseId = nil
			return tx.Model(&models.InventoryTransaction{}).Where("id = ?", txn.ID).
				Update("expense_id", nil).Error
		}
		return err
	}

	expense.Amount = txn.Quantity.Mul(txn.UnitPrice)
	expense.Quantity = txn.Quantity
	expense.UnitPrice = txn.UnitPrice
	expense.AccountId = txn.AccountId
	expense.SupplierId = txn.SupplierId
	expense.ExpenseDate = txn.EffectiveDate()
	if err := tx.Save(expense).Error; err != nil {
		return err
	}
	// The amount may have crossed the paid threshold.
	return models.RecomputeExpenseStatus(tx, expense)
}

// propagateExpenseToTransaction pushes material-sourced fields of an
// expense back onto its companion receipt: the symmetric direction of the
// bridge. The receipt's old stock contribution is reversed before the new
// one is applied.
func propagateExpenseToTransaction(tx *gorm.DB, projectId string, expense *models.Expense, origin syncOrigin) error {
	if origin == syncFromTransaction {
		return nil
	}

	txn, err := models.FindCompanionTransaction(tx, expense.ID)
	if err != nil {
		return err
	}
	if txn == nil {
		if !expense.IsMaterialSourced() {
			return nil
		}
		return createCompanionTransaction(tx, projectId, expense)
	}

	// Re-home the receipt when the expense moved to another material.
	if *expense.MaterialId != txn.MaterialId {
		if err := deleteTransaction(tx, projectId, txn, syncFromExpense); err != nil {
			return err
		}
		return createCompanionTransaction(tx, projectId, expense)
	}

	material, err := models.LockMaterial(tx, projectId, txn.MaterialId)
	if err != nil {
		return err
	}
	if err := reverseTransactionEffect(material, txn); err != nil {
		return err
	}
	txn.Quantity = expense.Quantity
	txn.UnitPrice = expense.UnitPrice
	txn.AccountId = expense.AccountId
	txn.SupplierId = expense.SupplierId
	txn.TransactionDate = expense.ExpenseDate
	if err := applyTransactionEffect(material, txn, true); err != nil {
		return err
	}
	if err := tx.Save(txn).Error; err != nil {
		return err
	}
	if txn.Status == models.TransactionStatusReceived {
		return persistAggregates(tx, material)
	}
	return nil
}

// createCompanionTransaction backfills a RECEIVED receipt for an expense
// that was entered material-first from the expense side.
func createCompanionTransaction(tx *gorm.DB, projectId string, expense *models.Expense) error {
	material, err := models.LockMaterial(tx, projectId, *expense.MaterialId)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return fmt.Errorf("material %d: %w", *expense.MaterialId, utils.ErrReferentialIntegrity)
		}
		return err
	}

	receivedAt := expense.ExpenseDate
	txn := models.InventoryTransaction{
		ProjectId:       projectId,
		MaterialId:      *expense.MaterialId,
		Kind:            models.TransactionKindReceipt,
		Status:          models.TransactionStatusReceived,
		Quantity:        expense.Quantity,
		UnitPrice:       expense.UnitPrice,
		TransactionDate: expense.ExpenseDate,
		ReceivedAt:      &receivedAt,
		SupplierId:      expense.SupplierId,
		AccountId:       expense.AccountId,
		ExpenseId:       &expense.ID,
		AutoExpense:     utils.NewTrue(),
	}
	if err := applyTransactionEffect(material, &txn, true); err != nil {
		return err
	}
	if err := tx.Create(&txn).Error; err != nil {
		return err
	}
	return persistAggregates(tx, material)
}

// deleteCompanionExpense unwinds and removes the expense linked to a
// deleted receipt, cascading through its payments so routed ledger
// entries are refunded first.
func deleteCompanionExpense(tx *gorm.DB, projectId string, expenseId int, origin syncOrigin) error {
	if origin == syncFromExpense {
		return nil
	}
	expense, err := models.FetchExpenseForChange(tx, projectId, expenseId)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil
		}
		return err
	}
	return removeExpense(tx, projectId, expense)
}

// deleteCompanionTransaction reverses and removes the receipt linked to a
// deleted expense.
func deleteCompanionTransaction(tx *gorm.DB, projectId string, expense *models.Expense, origin syncOrigin) error {
	if origin == syncFromTransaction {
		return nil
	}
	txn, err := models.FindCompanionTransaction(tx, expense.ID)
	if err != nil {
		return err
	}
	if txn == nil {
		return nil
	}
	// The expense side is already being torn down, do not bounce back.
	return deleteTransaction(tx, projectId, txn, syncFromExpense)
}

// removeExpense cascades payments (refunding their ledger entries) and
// deletes the expense row. Companion handling is the caller's concern.
func removeExpense(tx *gorm.DB, projectId string, expense *models.Expense) error {
	payments, err := models.ListExpensePayments(tx, expense.ID)
	if err != nil {
		return err
	}
	for _, payment := range payments {
		if err := removePayment(tx, projectId, payment); err != nil {
			return err
		}
	}
	return tx.Delete(&models.Expense{}, expense.ID).Error
}
