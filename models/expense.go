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

// Expense is an individual cost item. CurrentStatus is derived from the
// payment set and re-summed on every payment mutation, never hand-set.
// A MATERIAL expense carrying MaterialId/Quantity/UnitPrice is
// material-sourced and kept in lockstep with a companion receipt
// transaction by the bridge.
type Expense struct {
	ID            int             `gorm:"primary_key" json:"id"`
	ProjectId     string          `gorm:"index;not null" json:"project_id"`
	Title         string          `gorm:"size:200;not null" json:"title" binding:"required"`
	Amount        decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"amount"`
	ExpenseType   ExpenseType     `gorm:"size:20;default:'MATERIAL'" json:"expense_type"`
	CurrentStatus ExpenseStatus   `gorm:"size:10;default:'UNPAID'" json:"current_status"`
	AccountId     *int            `gorm:"index" json:"account_id"`
	SupplierId    *int            `gorm:"index" json:"supplier_id"`
	MaterialId    *int            `gorm:"index" json:"material_id"`
	Quantity      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"unit_price"`
	ExpenseDate   time.Time       `gorm:"not null" json:"expense_date"`
	PaidTo        string          `gorm:"size:200" json:"paid_to"`
	Notes         string          `gorm:"type:text" json:"notes"`
	CreatedAt     time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewExpense struct {
	Title       string          `json:"title" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	ExpenseType ExpenseType     `json:"expense_type"`
	AccountId   *int            `json:"account_id"`
	SupplierId  *int            `json:"supplier_id"`
	MaterialId  *int            `json:"material_id"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	ExpenseDate time.Time       `json:"expense_date" binding:"required"`
	PaidTo      string          `json:"paid_to"`
	Notes       string          `json:"notes"`
}

// IsMaterialSourced reports whether the expense stands for a stock receipt.
func (e *Expense) IsMaterialSourced() bool {
	return e.ExpenseType == ExpenseTypeMaterial && e.MaterialId != nil && e.Quantity.IsPositive()
}

// ComputeExpenseStatus derives the payment status from totals.
func ComputeExpenseStatus(amount, totalPaid decimal.Decimal) ExpenseStatus {
	switch {
	case totalPaid.GreaterThanOrEqual(amount):
		return ExpenseStatusPaid
	case totalPaid.IsPositive():
		return ExpenseStatusPartial
	default:
		return ExpenseStatusUnpaid
	}
}

// SumExpensePayments re-sums the surviving payments of an expense.
// Always a full re-sum: cheap, and immune to incremental drift.
func SumExpensePayments(tx *gorm.DB, expenseId int) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := tx.Model(&Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("expense_id = ?", expenseId).
		Scan(&total).Error
	if err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

// RecomputeExpenseStatus re-derives and persists CurrentStatus from the
// full payment set.
func RecomputeExpenseStatus(tx *gorm.DB, expense *Expense) error {
	totalPaid, err := SumExpensePayments(tx, expense.ID)
	if err != nil {
		return err
	}
	status := ComputeExpenseStatus(expense.Amount, totalPaid)
	if status == expense.CurrentStatus {
		return nil
	}
	if err := tx.Model(&Expense{}).Where("id = ?", expense.ID).
		Update("current_status", status).Error; err != nil {
		return err
	}
	expense.CurrentStatus = status
	return nil
}

func FetchExpenseForChange(tx *gorm.DB, projectId string, id int) (*Expense, error) {
	var expense Expense
	err := tx.Where("project_id = ?", projectId).First(&expense, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("expense %d: %w", id, utils.ErrNotFound)
		}
		return nil, err
	}
	return &expense, nil
}

func GetExpense(ctx context.Context, id int) (*Expense, error) {
	return GetResource[Expense](ctx, id)
}

func GetExpenses(ctx context.Context, expenseType *ExpenseType, status *ExpenseStatus, fromDate *time.Time, toDate *time.Time) ([]*Expense, error) {
	projectId, err := projectIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("project_id = ?", projectId)
	if expenseType != nil && *expenseType != "" {
		dbCtx = dbCtx.Where("expense_type = ?", *expenseType)
	}
	if status != nil && *status != "" {
		dbCtx = dbCtx.Where("current_status = ?", *status)
	}
	if fromDate != nil && toDate != nil {
		dbCtx = dbCtx.Where("expense_date BETWEEN ? AND ?", *fromDate, *toDate)
	}
	var results []*Expense
	if err := dbCtx.Order("expense_date, id").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
