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

// Payment is one installment against an Expense. AccountId overrides the
// expense's default funding route when set. Payments are the only path
// that creates, edits, or deletes a payment-linked ledger entry.
type Payment struct {
	ID          int             `gorm:"primary_key" json:"id"`
	ProjectId   string          `gorm:"index;not null" json:"project_id"`
	ExpenseId   int             `gorm:"index;not null" json:"expense_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	PaymentDate time.Time       `gorm:"not null" json:"payment_date"`
	Method      PaymentMethod   `gorm:"size:20;default:'CASH'" json:"method"`
	AccountId   *int            `gorm:"index" json:"account_id"`
	ReferenceId string          `gorm:"size:100" json:"reference_id"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewPayment struct {
	ExpenseId   int             `json:"expense_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Method      PaymentMethod   `json:"method"`
	AccountId   *int            `json:"account_id"`
	ReferenceId string          `json:"reference_id"`
}

// ResolveAccountId picks the funding route: payment override first, then
// the expense default. Nil means the payment touches no ledger account.
func (p *Payment) ResolveAccountId(expense *Expense) *int {
	if p.AccountId != nil {
		return p.AccountId
	}
	return expense.AccountId
}

func FetchPaymentForChange(tx *gorm.DB, projectId string, id int) (*Payment, error) {
	var payment Payment
	err := tx.Where("project_id = ?", projectId).First(&payment, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment %d: %w", id, utils.ErrNotFound)
		}
		return nil, err
	}
	return &payment, nil
}

func GetPayment(ctx context.Context, id int) (*Payment, error) {
	return GetResource[Payment](ctx, id)
}

func GetPaymentsByExpense(ctx context.Context, expenseId int) ([]*Payment, error) {
	projectId, err := projectIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	var results []*Payment
	err = db.WithContext(ctx).
		Where("project_id = ? AND expense_id = ?", projectId, expenseId).
		Order("payment_date, id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// ListExpensePayments is the tx-scoped form used inside mutations.
func ListExpensePayments(tx *gorm.DB, expenseId int) ([]*Payment, error) {
	var results []*Payment
	err := tx.Where("expense_id = ?", expenseId).Order("id").Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}
