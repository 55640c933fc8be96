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

// LedgerEntry is one credit/debit movement against a LedgerAccount. Entries
// are append-only from the caller's point of view: an entry tied to a
// payment is only ever replaced atomically when that payment is edited.
type LedgerEntry struct {
	ID          int             `gorm:"primary_key" json:"id"`
	ProjectId   string          `gorm:"index;not null" json:"project_id"`
	AccountId   int             `gorm:"index;not null" json:"account_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(20,4);not null" json:"amount"`
	Kind        EntryKind       `gorm:"size:10;not null" json:"kind"`
	Origin      EntryOrigin     `gorm:"size:20;not null" json:"origin"`
	PaymentId   *int            `gorm:"uniqueIndex" json:"payment_id"`
	EntryDate   time.Time       `gorm:"not null" json:"entry_date"`
	Description string          `gorm:"size:255" json:"description"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

type NewLedgerEntry struct {
	AccountId   int             `json:"account_id" binding:"required"`
	Amount      decimal.Decimal `json:"amount"`
	Kind        EntryKind       `json:"kind" binding:"required"`
	EntryDate   time.Time       `json:"entry_date"`
	Description string          `json:"description"`
}

func GetLedgerEntry(ctx context.Context, id int) (*LedgerEntry, error) {
	return GetResource[LedgerEntry](ctx, id)
}

func GetLedgerEntries(ctx context.Context, accountId int) ([]*LedgerEntry, error) {
	projectId, err := projectIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	db := config.GetDB()
	var results []*LedgerEntry
	err = db.WithContext(ctx).
		Where("project_id = ? AND account_id = ?", projectId, accountId).
		Order("entry_date, id").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// GetEntryByPaymentId returns the single entry a payment routed, or nil
// when the payment never resolved a funding account.
func GetEntryByPaymentId(tx *gorm.DB, paymentId int) (*LedgerEntry, error) {
	var entry LedgerEntry
	err := tx.Where("payment_id = ?", paymentId).First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// SumAccountEntries re-derives the balance from surviving entries. Used by
// the audit path and invariant tests, not by the incremental reconciler.
func SumAccountEntries(tx *gorm.DB, accountId int) (decimal.Decimal, decimal.Decimal, error) {
	type sums struct {
		Credits decimal.Decimal
		Debits  decimal.Decimal
	}
	var s sums
	err := tx.Raw(`
		SELECT
			COALESCE(SUM(CASE WHEN kind = ? THEN amount ELSE 0 END), 0) AS credits,
			COALESCE(SUM(CASE WHEN kind = ? THEN amount ELSE 0 END), 0) AS debits
		FROM ledger_entries
		WHERE account_id = ?
	`, EntryKindCredit, EntryKindDebit, accountId).Scan(&s).Error
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return s.Credits, s.Debits, nil
}

func FetchEntryForChange(tx *gorm.DB, projectId string, id int) (*LedgerEntry, error) {
	var entry LedgerEntry
	err := tx.Where("project_id = ?", projectId).First(&entry, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ledger entry %d: %w", id, utils.ErrNotFound)
		}
		return nil, err
	}
	return &entry, nil
}
