package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nirmantrack/sitebooks_backend/config"
	"github.com/nirmantrack/sitebooks_backend/models"
	"github.com/nirmantrack/sitebooks_backend/utils"
	"gorm.io/gorm"
)

// CreatePayment records an installment against an expense. When a funding
// account resolves (payment override, else expense default) a DEBIT entry
// tagged with the payment is applied to it, and the expense status is
// re-derived from the full payment set. All in one transaction.
func CreatePayment(ctx context.Context, input *models.NewPayment) (*models.Payment, error) {
	logger := config.GetLogger()
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, errors.New("payment amount must be positive")
	}

	db := config.GetDB()
	tx := db.Begin()

	expense, err := models.FetchExpenseForChange(tx, projectId, input.ExpenseId)
	if err != nil {
		tx.Rollback()
		if errors.Is(err, utils.ErrNotFound) {
			return nil, fmt.Errorf("expense %d: %w", input.ExpenseId, utils.ErrReferentialIntegrity)
		}
		return nil, err
	}

	paymentDate := input.PaymentDate
	if paymentDate.IsZero() {
		paymentDate = time.Now()
	}
	payment := models.Payment{
		ProjectId:   projectId,
		ExpenseId:   expense.ID,
		Amount:      input.Amount,
		PaymentDate: paymentDate,
		Method:      input.Method,
		AccountId:   input.AccountId,
		ReferenceId: input.ReferenceId,
	}
	if err := tx.WithContext(ctx).Create(&payment).Error; err != nil {
		tx.Rollback()
		config.LogError(logger, "payment.go", "CreatePayment", "CreatePayment", input, err)
		return nil, err
	}

	if accountId := payment.ResolveAccountId(expense); accountId != nil {
		if err := routePaymentDebit(tx, projectId, &payment, *accountId); err != nil {
			tx.Rollback()
			config.LogError(logger, "payment.go", "CreatePayment", "RoutePaymentDebit", payment, err)
			return nil, err
		}
	}

	if err := models.RecomputeExpenseStatus(tx, expense); err != nil {
		tx.Rollback()
		config.LogError(logger, "payment.go", "CreatePayment", "RecomputeExpenseStatus", expense.ID, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "payment.go", "CreatePayment", "Commit", payment, err)
		return nil, err
	}
	return &payment, nil
}

// UpdatePayment edits amount, date, method, reference, or funding route.
// When the amount or the resolved account changed, the linked ledger entry
// is replaced atomically so the old contribution is reversed exactly once.
// A payment never moves between expenses.
func UpdatePayment(ctx context.Context, id int, input *models.NewPayment) (*models.Payment, error) {
	logger := config.GetLogger()
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, errors.New("payment amount must be positive")
	}

	db := config.GetDB()
	tx := db.Begin()

	payment, err := models.FetchPaymentForChange(tx, projectId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if input.ExpenseId != 0 && input.ExpenseId != payment.ExpenseId {
		tx.Rollback()
		return nil, fmt.Errorf("payment %d cannot move to expense %d: %w", id, input.ExpenseId, utils.ErrReferentialIntegrity)
	}
	expense, err := models.FetchExpenseForChange(tx, projectId, payment.ExpenseId)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	oldEntry, err := models.GetEntryByPaymentId(tx, payment.ID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	amountChanged := !payment.Amount.Equal(input.Amount)
	payment.Amount = input.Amount
	payment.Method = input.Method
	payment.AccountId = input.AccountId
	payment.ReferenceId = input.ReferenceId
	if !input.PaymentDate.IsZero() {
		payment.PaymentDate = input.PaymentDate
	}
	newAccountId := payment.ResolveAccountId(expense)

	routeChanged := false
	switch {
	case oldEntry == nil && newAccountId != nil:
		routeChanged = true
	case oldEntry != nil && newAccountId == nil:
		routeChanged = true
	case oldEntry != nil && newAccountId != nil:
		routeChanged = oldEntry.AccountId != *newAccountId
	}

	if amountChanged || routeChanged {
		if oldEntry != nil {
			if _, err := models.LockLedgerAccount(tx, projectId, oldEntry.AccountId); err != nil {
				tx.Rollback()
				return nil, err
			}
			if err := reverseEntry(tx, oldEntry); err != nil {
				tx.Rollback()
				config.LogError(logger, "payment.go", "UpdatePayment", "ReverseEntry", oldEntry, err)
				return nil, err
			}
		}
		if newAccountId != nil {
			if err := routePaymentDebit(tx, projectId, payment, *newAccountId); err != nil {
				tx.Rollback()
				config.LogError(logger, "payment.go", "UpdatePayment", "RoutePaymentDebit", payment, err)
				return nil, err
			}
		}
	}

	if err := tx.WithContext(ctx).Save(payment).Error; err != nil {
		tx.Rollback()
		config.LogError(logger, "payment.go", "UpdatePayment", "SavePayment", payment, err)
		return nil, err
	}

	if err := models.RecomputeExpenseStatus(tx, expense); err != nil {
		tx.Rollback()
		config.LogError(logger, "payment.go", "UpdatePayment", "RecomputeExpenseStatus", expense.ID, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "payment.go", "UpdatePayment", "Commit", payment, err)
		return nil, err
	}
	return payment, nil
}

// DeletePayment reverses the payment's ledger entry, removes the payment,
// and re-derives the expense status.
func DeletePayment(ctx context.Context, id int) (*models.Payment, error) {
	logger := config.GetLogger()
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}

	db := config.GetDB()
	tx := db.Begin()

	payment, err := models.FetchPaymentForChange(tx, projectId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := removePayment(tx, projectId, payment); err != nil {
		tx.Rollback()
		config.LogError(logger, "payment.go", "DeletePayment", "RemovePayment", payment, err)
		return nil, err
	}

	expense, err := models.FetchExpenseForChange(tx, projectId, payment.ExpenseId)
	if err == nil {
		if err := models.RecomputeExpenseStatus(tx, expense); err != nil {
			tx.Rollback()
			config.LogError(logger, "payment.go", "DeletePayment", "RecomputeExpenseStatus", expense.ID, err)
			return nil, err
		}
	} else if !errors.Is(err, utils.ErrNotFound) {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "payment.go", "DeletePayment", "Commit", payment, err)
		return nil, err
	}
	return payment, nil
}

// routePaymentDebit emits the DEBIT entry carrying this payment's amount
// against the resolved account.
func routePaymentDebit(tx *gorm.DB, projectId string, payment *models.Payment, accountId int) error {
	if _, err := models.LockLedgerAccount(tx, projectId, accountId); err != nil {
		return err
	}
	paymentId := payment.ID
	entry := models.LedgerEntry{
		ProjectId:   projectId,
		AccountId:   accountId,
		Amount:      payment.Amount,
		Kind:        models.EntryKindDebit,
		Origin:      models.EntryOriginPaymentDebit,
		PaymentId:   &paymentId,
		EntryDate:   payment.PaymentDate,
		Description: fmt.Sprintf("Payment #%d", payment.ID),
	}
	return applyEntry(tx, &entry)
}

// removePayment reverses the payment's entry (when it routed one) and
// deletes the payment row. Shared by DeletePayment and the expense
// cascade. Does not touch the expense status.
func removePayment(tx *gorm.DB, projectId string, payment *models.Payment) error {
	entry, err := models.GetEntryByPaymentId(tx, payment.ID)
	if err != nil {
		return err
	}
	if entry != nil {
		if _, err := models.LockLedgerAccount(tx, projectId, entry.AccountId); err != nil {
			return err
		}
		if err := reverseEntry(tx, entry); err != nil {
			return err
		}
	}
	return tx.Delete(&models.Payment{}, payment.ID).Error
}
