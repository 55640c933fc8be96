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

// CreateLedgerAccount opens a funding account. A positive opening amount is
// recorded as a synthetic CREDIT entry tagged OPENING_BALANCE, which seeds
// both total capital and the balance through the reconciler.
func CreateLedgerAccount(ctx context.Context, input *models.NewLedgerAccount) (*models.LedgerAccount, error) {
	logger := config.GetLogger()
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}
	if input.Amount.IsNegative() {
		return nil, errors.New("opening amount must not be negative")
	}

	receivedAt := input.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now()
	}
	account := models.LedgerAccount{
		ProjectId:  projectId,
		Name:       input.Name,
		SourceType: input.SourceType,
		ReceivedAt: receivedAt,
		Notes:      input.Notes,
		IsActive:   utils.NewTrue(),
	}

	db := config.GetDB()
	tx := db.Begin()

	if err := tx.WithContext(ctx).Create(&account).Error; err != nil {
		tx.Rollback()
		config.LogError(logger, "ledgerAccount.go", "CreateLedgerAccount", "CreateAccount", input, err)
		return nil, err
	}

	if input.Amount.IsPositive() {
		opening := models.LedgerEntry{
			ProjectId:   projectId,
			AccountId:   account.ID,
			Amount:      input.Amount,
			Kind:        models.EntryKindCredit,
			Origin:      models.EntryOriginOpeningBalance,
			EntryDate:   receivedAt,
			Description: "Opening balance",
		}
		if err := applyEntry(tx, &opening); err != nil {
			tx.Rollback()
			config.LogError(logger, "ledgerAccount.go", "CreateLedgerAccount", "ApplyOpeningEntry", opening, err)
			return nil, err
		}
		account.TotalCapital = input.Amount
		account.CurrentBalance = input.Amount
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "ledgerAccount.go", "CreateLedgerAccount", "Commit", account, err)
		return nil, err
	}
	return &account, nil
}

// UpdateLedgerAccount edits descriptive fields only. Capital and balance
// move exclusively through ledger entries.
func UpdateLedgerAccount(ctx context.Context, id int, input *models.NewLedgerAccount) (*models.LedgerAccount, error) {
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}
	account, err := utils.FetchModel[models.LedgerAccount](ctx, projectId, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{
		"Name":       input.Name,
		"SourceType": input.SourceType,
		"Notes":      input.Notes,
	}
	if !input.ReceivedAt.IsZero() {
		updates["ReceivedAt"] = input.ReceivedAt
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Model(account).Updates(updates).Error; err != nil {
		return nil, err
	}
	return account, nil
}

// DeleteLedgerAccount removes the account together with its entries. It is
// refused while payments still route through the account, since dropping
// those entries would silently un-spend recorded money.
func DeleteLedgerAccount(ctx context.Context, id int) (*models.LedgerAccount, error) {
	logger := config.GetLogger()
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}
	account, err := utils.FetchModel[models.LedgerAccount](ctx, projectId, id)
	if err != nil {
		return nil, err
	}

	routed, err := utils.ResourceCountWhere[models.LedgerEntry](ctx, projectId, "account_id = ? AND payment_id IS NOT NULL", id)
	if err != nil {
		return nil, err
	}
	if routed > 0 {
		return nil, fmt.Errorf("ledger account %d has %d payment-routed entries: %w", id, routed, utils.ErrReferentialIntegrity)
	}

	db := config.GetDB()
	tx := db.Begin()
	if err := tx.WithContext(ctx).Where("account_id = ?", id).Delete(&models.LedgerEntry{}).Error; err != nil {
		tx.Rollback()
		config.LogError(logger, "ledgerAccount.go", "DeleteLedgerAccount", "DeleteEntries", id, err)
		return nil, err
	}
	if err := tx.WithContext(ctx).Delete(account).Error; err != nil {
		tx.Rollback()
		config.LogError(logger, "ledgerAccount.go", "DeleteLedgerAccount", "DeleteAccount", id, err)
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "ledgerAccount.go", "DeleteLedgerAccount", "Commit", id, err)
		return nil, err
	}
	return account, nil
}

// CreateManualLedgerEntry records a top-up or drawdown that is not tied to
// any payment. A manual CREDIT raises total capital as well as the balance.
func CreateManualLedgerEntry(ctx context.Context, input *models.NewLedgerEntry) (*models.LedgerEntry, error) {
	logger := config.GetLogger()
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}
	if !input.Amount.IsPositive() {
		return nil, errors.New("entry amount must be positive")
	}

	entryDate := input.EntryDate
	if entryDate.IsZero() {
		entryDate = time.Now()
	}

	db := config.GetDB()
	tx := db.Begin()

	if _, err := models.LockLedgerAccount(tx, projectId, input.AccountId); err != nil {
		tx.Rollback()
		return nil, err
	}

	entry := models.LedgerEntry{
		ProjectId:   projectId,
		AccountId:   input.AccountId,
		Amount:      input.Amount,
		Kind:        input.Kind,
		Origin:      models.EntryOriginManualAdjustment,
		EntryDate:   entryDate,
		Description: input.Description,
	}
	if err := applyEntry(tx, &entry); err != nil {
		tx.Rollback()
		config.LogError(logger, "ledgerAccount.go", "CreateManualLedgerEntry", "ApplyEntry", entry, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "ledgerAccount.go", "CreateManualLedgerEntry", "Commit", entry, err)
		return nil, err
	}
	return &entry, nil
}

// DeleteLedgerEntry reverses and removes a manual entry. The opening entry
// is not deletable on its own, and payment-routed entries only change
// through their payment.
func DeleteLedgerEntry(ctx context.Context, id int) (*models.LedgerEntry, error) {
	logger := config.GetLogger()
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}

	db := config.GetDB()
	tx := db.Begin()

	entry, err := models.FetchEntryForChange(tx, projectId, id)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if entry.Origin == models.EntryOriginOpeningBalance {
		tx.Rollback()
		return nil, fmt.Errorf("opening balance entry %d cannot be deleted: %w", id, utils.ErrInvalidStatusTransition)
	}
	if entry.Origin == models.EntryOriginPaymentDebit {
		tx.Rollback()
		return nil, fmt.Errorf("entry %d belongs to payment %d: %w", id, *entry.PaymentId, utils.ErrReferentialIntegrity)
	}

	if _, err := models.LockLedgerAccount(tx, projectId, entry.AccountId); err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := reverseEntry(tx, entry); err != nil {
		tx.Rollback()
		config.LogError(logger, "ledgerAccount.go", "DeleteLedgerEntry", "ReverseEntry", entry, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "ledgerAccount.go", "DeleteLedgerEntry", "Commit", entry, err)
		return nil, err
	}
	return entry, nil
}
