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

// LedgerAccount is a pool of project funding. TotalCapital and
// CurrentBalance are derived from ledger entries and never hand-edited:
// the opening credit carries the starting capital, manual CREDIT entries
// raise both fields, every other entry moves the balance only.
type LedgerAccount struct {
	ID             int               `gorm:"primary_key" json:"id"`
	ProjectId      string            `gorm:"index;not null" json:"project_id"`
	Name           string            `gorm:"size:200;not null" json:"name" binding:"required"`
	SourceType     FundingSourceType `gorm:"size:20;default:'OTHER'" json:"source_type"`
	TotalCapital   decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"total_capital"`
	CurrentBalance decimal.Decimal   `gorm:"type:decimal(20,4);default:0" json:"current_balance"`
	ReceivedAt     time.Time         `gorm:"not null" json:"received_at"`
	Notes          string            `gorm:"type:text" json:"notes"`
	IsActive       *bool             `gorm:"not null;default:true" json:"is_active"`
	CreatedAt      time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time         `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewLedgerAccount struct {
	Name       string            `json:"name" binding:"required"`
	SourceType FundingSourceType `json:"source_type"`
	Amount     decimal.Decimal   `json:"amount"`
	ReceivedAt time.Time         `json:"received_at"`
	Notes      string            `json:"notes"`
}

// LockLedgerAccount fetches the account row under FOR UPDATE so balance
// updates against the same account are serialized for the rest of tx.
func LockLedgerAccount(tx *gorm.DB, projectId string, id int) (*LedgerAccount, error) {
	var account LedgerAccount
	err := lockForUpdate(tx).
		Where("project_id = ?", projectId).
		First(&account, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("ledger account %d: %w", id, utils.ErrNotFound)
		}
		return nil, err
	}
	return &account, nil
}

// AdjustAccountBalance applies the deltas arithmetically in SQL. A zero
// rows-affected result means the row vanished after it was read, which is
// surfaced as a concurrent modification.
func AdjustAccountBalance(tx *gorm.DB, accountId int, balanceDelta, capitalDelta decimal.Decimal) error {
	res := tx.Exec("UPDATE ledger_accounts SET current_balance = current_balance + ?, total_capital = total_capital + ? WHERE id = ?",
		balanceDelta, capitalDelta, accountId)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("ledger account %d: %w", accountId, utils.ErrConcurrentModification)
	}
	return nil
}

func GetLedgerAccount(ctx context.Context, id int) (*LedgerAccount, error) {
	return GetResource[LedgerAccount](ctx, id)
}

func GetLedgerAccounts(ctx context.Context, name *string) ([]*LedgerAccount, error) {
	projectId, err := projectIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("project_id = ?", projectId)
	if name != nil && *name != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	var results []*LedgerAccount
	if err := dbCtx.Order("received_at").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// LedgerOverview is a read-only funding projection for reporting.
type LedgerOverview struct {
	TotalCapital  decimal.Decimal `json:"total_capital"`
	TotalBalance  decimal.Decimal `json:"total_balance"`
	TotalSpent    decimal.Decimal `json:"total_spent"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	TotalPaid     decimal.Decimal `json:"total_paid"`
}

func GetLedgerOverview(ctx context.Context) (*LedgerOverview, error) {
	projectId, err := projectIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var overview LedgerOverview

	err = db.WithContext(ctx).Model(&LedgerAccount{}).
		Select("COALESCE(SUM(total_capital), 0) AS total_capital, COALESCE(SUM(current_balance), 0) AS total_balance").
		Where("project_id = ?", projectId).
		Scan(&overview).Error
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(&LedgerEntry{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("project_id = ? AND kind = ?", projectId, EntryKindDebit).
		Scan(&overview.TotalSpent).Error
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(&Expense{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("project_id = ?", projectId).
		Scan(&overview.TotalExpenses).Error
	if err != nil {
		return nil, err
	}

	err = db.WithContext(ctx).Model(&Payment{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("project_id = ?", projectId).
		Scan(&overview.TotalPaid).Error
	if err != nil {
		return nil, err
	}

	return &overview, nil
}
