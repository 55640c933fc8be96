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

// Material carries the running stock aggregates. All four derived fields
// (received, consumed, current stock, weighted-average cost) are maintained
// by the inventory engine from RECEIVED transactions only and can be
// rebuilt from scratch by the recompute path.
type Material struct {
	ID                    int             `gorm:"primary_key" json:"id"`
	ProjectId             string          `gorm:"index;not null" json:"project_id"`
	Name                  string          `gorm:"size:100;not null" json:"name" binding:"required"`
	Category              string          `gorm:"size:50" json:"category"`
	Unit                  MaterialUnit    `gorm:"size:10;not null" json:"unit" binding:"required"`
	SupplierId            *int            `gorm:"index" json:"supplier_id"`
	QuantityReceivedTotal decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity_received_total"`
	QuantityConsumedTotal decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity_consumed_total"`
	CurrentStock          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"current_stock"`
	MinStockLevel         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"min_stock_level"`
	AvgUnitCost           decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"avg_unit_cost"`
	IsActive              *bool           `gorm:"not null;default:true" json:"is_active"`
	CreatedAt             time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

type NewMaterial struct {
	Name          string          `json:"name" binding:"required"`
	Category      string          `json:"category"`
	Unit          MaterialUnit    `json:"unit" binding:"required"`
	SupplierId    *int            `json:"supplier_id"`
	MinStockLevel decimal.Decimal `json:"min_stock_level"`
}

func (input *NewMaterial) validate(ctx context.Context, projectId string) error {
	if input.SupplierId != nil && *input.SupplierId > 0 {
		if err := utils.ValidateResourceId[Supplier](ctx, projectId, *input.SupplierId); err != nil {
			return fmt.Errorf("supplier: %w", utils.ErrReferentialIntegrity)
		}
	}
	return nil
}

func CreateMaterial(ctx context.Context, input *NewMaterial) (*Material, error) {
	projectId, err := projectIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, projectId); err != nil {
		return nil, err
	}

	material := Material{
		ProjectId:     projectId,
		Name:          input.Name,
		Category:      input.Category,
		Unit:          input.Unit,
		SupplierId:    input.SupplierId,
		MinStockLevel: input.MinStockLevel,
		IsActive:      utils.NewTrue(),
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Create(&material).Error; err != nil {
		return nil, err
	}
	return &material, nil
}

func UpdateMaterial(ctx context.Context, id int, input *NewMaterial) (*Material, error) {
	projectId, err := projectIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	if err := input.validate(ctx, projectId); err != nil {
		return nil, err
	}

	material, err := utils.FetchModel[Material](ctx, projectId, id)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	err = db.WithContext(ctx).Model(material).Updates(map[string]interface{}{
		"Name":          input.Name,
		"Category":      input.Category,
		"Unit":          input.Unit,
		"SupplierId":    input.SupplierId,
		"MinStockLevel": input.MinStockLevel,
	}).Error
	if err != nil {
		return nil, err
	}
	return material, nil
}

func DeleteMaterial(ctx context.Context, id int) (*Material, error) {
	projectId, err := projectIdFromContext(ctx)
	if err != nil {
		return nil, err
	}
	result, err := utils.FetchModel[Material](ctx, projectId, id)
	if err != nil {
		return nil, err
	}

	// Transactions own the stock history; the material cannot go while
	// any remain.
	count, err := utils.ResourceCountWhere[InventoryTransaction](ctx, projectId, "material_id = ?", id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, fmt.Errorf("material %d has transactions: %w", id, utils.ErrReferentialIntegrity)
	}

	db := config.GetDB()
	if err := db.WithContext(ctx).Delete(result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

func GetMaterial(ctx context.Context, id int) (*Material, error) {
	return GetResource[Material](ctx, id)
}

func GetMaterials(ctx context.Context, name *string, category *string) ([]*Material, error) {
	projectId, err := projectIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("project_id = ?", projectId)
	if name != nil && *name != "" {
		dbCtx = dbCtx.Where("name LIKE ?", "%"+*name+"%")
	}
	if category != nil && *category != "" {
		dbCtx = dbCtx.Where("category = ?", *category)
	}
	var results []*Material
	if err := dbCtx.Order("name").Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

// GetLowStockMaterials lists materials at or below their alert threshold.
func GetLowStockMaterials(ctx context.Context) ([]*Material, error) {
	projectId, err := projectIdFromContext(ctx)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	var results []*Material
	err = db.WithContext(ctx).
		Where("project_id = ? AND min_stock_level > 0 AND current_stock <= min_stock_level", projectId).
		Order("name").
		Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// LockMaterial fetches the material row under FOR UPDATE so stock and
// average-cost updates against it are serialized for the rest of tx.
func LockMaterial(tx *gorm.DB, projectId string, id int) (*Material, error) {
	var material Material
	err := lockForUpdate(tx).
		Where("project_id = ?", projectId).
		First(&material, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("material %d: %w", id, utils.ErrNotFound)
		}
		return nil, err
	}
	return &material, nil
}

// WriteMaterialAggregates persists recomputed aggregates wholesale. The
// caller must hold the material row lock.
func WriteMaterialAggregates(tx *gorm.DB, materialId int, received, consumed, avgUnitCost decimal.Decimal) error {
	res := tx.Exec(`UPDATE materials
		SET quantity_received_total = ?, quantity_consumed_total = ?, current_stock = ?, avg_unit_cost = ?
		WHERE id = ?`,
		received, consumed, received.Sub(consumed), avgUnitCost, materialId)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("material %d: %w", materialId, utils.ErrConcurrentModification)
	}
	return nil
}
