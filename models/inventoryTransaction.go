package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nirmantrack/sitebooks_backend/config"
	"github.com/nirmantrack/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// InventoryTransaction is one stock movement against a Material. Only
// RECEIVED rows contribute to the material aggregates; a PENDING row is an
// expected movement (e.g. a placed order) with no stock effect yet.
// ExpenseId is a weak reference to the companion expense maintained by the
// bridge when AutoExpense is set on a receipt.
type InventoryTransaction struct {
	ID              int               `gorm:"primary_key" json:"id"`
	ProjectId       string            `gorm:"index;not null" json:"project_id"`
	MaterialId      int               `gorm:"index;not null" json:"material_id"`
	Kind            TransactionKind   `gorm:"size:15;not null" json:"kind"`
	Status          TransactionStatus `gorm:"size:10;default:'PENDING'" json:"status"`
	Quantity        decimal.Decimal   `gorm:"type:decimal(20,4);not null" json:"quantity"`
	UnitPrice       decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	TransactionDate time.Time         `gorm:"not null" json:"transaction_date"`
	ReceivedAt      *time.Time        `json:"received_at"`
	SupplierId      *int              `gorm:"index" json:"supplier_id"`
	ExpenseId       *int              `gorm:"index" json:"expense_id"`
	AccountId       *int              `gorm:"index" json:"account_id"`
	AutoExpense     *bool             `gorm:"not null;default:false" json:"auto_expense"`
	Notes           string            `gorm:"type:text" json:"notes"`
	CreatedAt       time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewInventoryTransaction struct {
	MaterialId      int               `json:"material_id" binding:"required"`
	Kind            TransactionKind   `json:"kind" binding:"required"`
	Status          TransactionStatus `json:"status"`
	Quantity        decimal.Decimal   `json:"quantity"`
	UnitPrice       decimal.Decimal   `json:"unit_price"`
	TransactionDate time.Time         `json:"transaction_date"`
	SupplierId      *int              `json:"supplier_id"`
	AccountId       *int              `json:"account_id"`
	AutoExpense     *bool             `json:"auto_expense"`
	Notes           string            `json:"notes"`
}

// EffectiveDate orders a transaction in the material history: the moment
// its effect applied, not the moment the row was written.
func (t *InventoryTransaction) EffectiveDate() time.Time {
	if t.ReceivedAt != nil {
		return *t.ReceivedAt
	}
	return t.TransactionDate
}

func (t *InventoryTransaction) IsAutoExpense() bool {
	return t.AutoExpense != nil && *t.AutoExpense
}

func FetchTransactionForChange(tx *gorm.DB, projectId string, id int) (*InventoryTransaction, error) {
	var txn InventoryTransaction
	err := tx.Where("project_id = ?", projectId).First(&txn, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("inventory transaction %d: %w", id, utils.ErrNotFound)
		}
		return nil, err
	}
	return &txn, nil
}

func GetInventoryTransaction(ctx context.Context, id int) (*InventoryTransaction, error) {
	return GetResource[InventoryTransaction](ctx, id)
}

func GetTransactionsByMaterial(ctx context.Context, materialId int, status *TransactionStatus) ([]*InventoryTransaction, error) {
	projectId, err := projectIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("project_id = ? AND material_id = ?", projectId, materialId)
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("status = ?", *status)
	}
	var results []*InventoryTransaction
	err = dbCtx.Order("COALESCE(received_at, transaction_date), id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ListReceivedTransactions returns the effectful history of a material in
// application order. This is the fold input for the recompute path.
func ListReceivedTransactions(tx *gorm.DB, materialId int) ([]*InventoryTransaction, error) {
	var results []*InventoryTransaction
	err := tx.Where("material_id = ? AND status = ?", materialId, TransactionStatusReceived).
		Order("COALESCE(received_at, transaction_date), id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// FindCompanionTransaction locates the receipt linked to an expense.
func FindCompanionTransaction(tx *gorm.DB, expenseId int) (*InventoryTransaction, error) {
	var txn InventoryTransaction
	err := tx.Where("expense_id = ? AND kind = ?", expenseId, TransactionKindReceipt).First(&txn).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &txn, nil
}
