package workflow

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nirmantrack/sitebooks_backend/config"
	"github.com/nirmantrack/sitebooks_backend/models"
	"github.com/nirmantrack/sitebooks_backend/utils"
)

// CreateExpense records a cost item. A material-sourced expense (MATERIAL
// type with a material link and quantity) gets a RECEIVED companion
// receipt through the bridge, so entering the cost also books the stock.
func CreateExpense(ctx context.Context, input *models.NewExpense) (*models.Expense, error) {
	logger := config.GetLogger()
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}
	if input.Amount.IsNegative() {
		return nil, errors.New("expense amount must not be negative")
	}
	if err := validateExpenseRefs(ctx, projectId, input); err != nil {
		return nil, err
	}

	expenseDate := input.ExpenseDate
	if expenseDate.IsZero() {
		expenseDate = time.Now()
	}
	expense := models.Expense{
		ProjectId:   projectId,
		Title:       input.Title,
		Amount:      input.Amount,
		ExpenseType: input.ExpenseType,
		AccountId:   input.AccountId,
		SupplierId:  input.SupplierId,
		MaterialId:  input.MaterialId,
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
		ExpenseDate: expenseDate,
		PaidTo:      input.PaidTo,
		Notes:       input.Notes,
	}

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(&expense).Error; err != nil {
		tx.Rollback()
		config.LogError(logger, "expense.go", "CreateExpense", "CreateExpense", input, err)
		return nil, err
	}

	if expense.IsMaterialSourced() {
		if err := propagateExpenseToTransaction(tx, projectId, &expense, syncNone); err != nil {
			tx.Rollback()
			config.LogError(logger, "expense.go", "CreateExpense", "PropagateToTransaction", expense, err)
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "expense.go", "CreateExpense", "Commit", expense, err)
		return nil, err
	}
	return &expense, nil
}

// UpdateExpense edits an expense. Material-sourced fields propagate to the
// companion receipt (expense authoritative for this direction); dropping
// the material link tears the companion down and reverses its stock. An
// amount change re-derives the payment status.
func UpdateExpense(ctx context.Context, id int, input *models.NewExpense) (*models.Expense, error) {
	logger := config.GetLogger()
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}
	if input.Amount.IsNegative() {
		return nil, errors.New("expense amount must not be negative")
	}
	if err := validateExpenseRefs(ctx, projectId, input); err != nil {
		return nil, err
	}

	db := config.GetDB()
	tx := db.Begin()

	expense, err := models.FetchExpenseForChange(tx, projectId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	wasMaterialSourced := expense.IsMaterialSourced()

	expense.Title = input.Title
	expense.Amount = input.Amount
	expense.ExpenseType = input.ExpenseType
	expense.AccountId = input.AccountId
	expense.SupplierId = input.SupplierId
	expense.MaterialId = input.MaterialId
	expense.Quantity = input.Quantity
	expense.UnitPrice = input.UnitPrice
	expense.PaidTo = input.PaidTo
	expense.Notes = input.Notes
	if !input.ExpenseDate.IsZero() {
		expense.ExpenseDate = input.ExpenseDate
	}

	if err := tx.WithContext(ctx).Save(expense).Error; err != nil {
		tx.Rollback()
		config.LogError(logger, "expense.go", "UpdateExpense", "SaveExpense", expense, err)
		return nil, err
	}

	switch {
	case expense.IsMaterialSourced():
		if err := propagateExpenseToTransaction(tx, projectId, expense, syncNone); err != nil {
			tx.Rollback()
			config.LogError(logger, "expense.go", "UpdateExpense", "PropagateToTransaction", expense, err)
			return nil, err
		}
	case wasMaterialSourced:
		if err := deleteCompanionTransaction(tx, projectId, expense, syncNone); err != nil {
			tx.Rollback()
			config.LogError(logger, "expense.go", "UpdateExpense", "DeleteCompanionTransaction", expense, err)
			return nil, err
		}
	}

	if err := models.RecomputeExpenseStatus(tx, expense); err != nil {
		tx.Rollback()
		config.LogError(logger, "expense.go", "UpdateExpense", "RecomputeExpenseStatus", expense.ID, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "expense.go", "UpdateExpense", "Commit", expense, err)
		return nil, err
	}
	return expense, nil
}

// DeleteExpense removes the expense after unwinding everything hanging off
// it: the companion receipt's stock effect first, then each payment with
// its routed ledger entry, then the row itself.
func DeleteExpense(ctx context.Context, id int) (*models.Expense, error) {
	logger := config.GetLogger()
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}

	db := config.GetDB()
	tx := db.Begin()

	expense, err := models.FetchExpenseForChange(tx, projectId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := deleteCompanionTransaction(tx, projectId, expense, syncNone); err != nil {
		tx.Rollback()
		config.LogError(logger, "expense.go", "DeleteExpense", "DeleteCompanionTransaction", expense, err)
		return nil, err
	}
	if err := removeExpense(tx, projectId, expense); err != nil {
		tx.Rollback()
		config.LogError(logger, "expense.go", "DeleteExpense", "RemoveExpense", expense, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "expense.go", "DeleteExpense", "Commit", expense, err)
		return nil, err
	}
	return expense, nil
}

func validateExpenseRefs(ctx context.Context, projectId string, input *models.NewExpense) error {
	if err := validateTransactionRefs(ctx, projectId, input.SupplierId, input.AccountId); err != nil {
		return err
	}
	if input.MaterialId != nil && *input.MaterialId > 0 {
		if err := utils.ValidateResourceId[models.Material](ctx, projectId, *input.MaterialId); err != nil {
			if errors.Is(err, utils.ErrNotFound) {
				return fmt.Errorf("material %d: %w", *input.MaterialId, utils.ErrReferentialIntegrity)
			}
			return err
		}
	}
	return nil
}
