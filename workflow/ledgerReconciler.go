package workflow

import (
	"github.com/nirmantrack/sitebooks_backend/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// entryDeltas maps an entry to the account fields it moves. A CREDIT raises
// the balance, a DEBIT lowers it. Credits that are not routed by a payment
// (opening balance, manual top-up) raise total capital as well, so deleting
// one later reverses both fields.
func entryDeltas(entry *models.LedgerEntry) (balanceDelta, capitalDelta decimal.Decimal) {
	if entry.Kind == models.EntryKindCredit {
		balanceDelta = entry.Amount
		if entry.Origin != models.EntryOriginPaymentDebit {
			capitalDelta = entry.Amount
		}
	} else {
		balanceDelta = entry.Amount.Neg()
	}
	return balanceDelta, capitalDelta
}

// applyEntry persists the entry and moves the account aggregates in the
// same transaction. The caller must hold the account row lock.
func applyEntry(tx *gorm.DB, entry *models.LedgerEntry) error {
	if err := tx.Create(entry).Error; err != nil {
		return err
	}
	balanceDelta, capitalDelta := entryDeltas(entry)
	return models.AdjustAccountBalance(tx, entry.AccountId, balanceDelta, capitalDelta)
}

// reverseEntry undoes the entry's contribution and removes the row. The
// caller must hold the account row lock.
func reverseEntry(tx *gorm.DB, entry *models.LedgerEntry) error {
	balanceDelta, capitalDelta := entryDeltas(entry)
	if err := models.AdjustAccountBalance(tx, entry.AccountId, balanceDelta.Neg(), capitalDelta.Neg()); err != nil {
		return err
	}
	return tx.Delete(&models.LedgerEntry{}, entry.ID).Error
}

// replaceEntry swaps an entry for a rewritten one in a single step so the
// account never observes a half-applied balance. Used when a payment's
// amount or funding route is edited.
func replaceEntry(tx *gorm.DB, old *models.LedgerEntry, replacement *models.LedgerEntry) error {
	if err := reverseEntry(tx, old); err != nil {
		return err
	}
	return applyEntry(tx, replacement)
}
