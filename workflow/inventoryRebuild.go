package workflow

import (
	"context"
	"errors"
	"fmt"

	"github.com/nirmantrack/sitebooks_backend/config"
	"github.com/nirmantrack/sitebooks_backend/models"
	"github.com/nirmantrack/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func acquireRecomputeLock(tx *gorm.DB, projectId string, materialId int) error {
	if tx.Dialector.Name() != "mysql" {
		return nil
	}
	lockName := fmt.Sprintf("mat_recompute:%s:%d", projectId, materialId)
	var ok int
	if err := tx.Raw("SELECT GET_LOCK(?, 30)", lockName).Scan(&ok).Error; err != nil {
		return err
	}
	if ok != 1 {
		return fmt.Errorf("could not acquire recompute lock for project_id=%s material_id=%d", projectId, materialId)
	}
	return nil
}

func releaseRecomputeLock(tx *gorm.DB, projectId string, materialId int) {
	if tx.Dialector.Name() != "mysql" {
		return
	}
	lockName := fmt.Sprintf("mat_recompute:%s:%d", projectId, materialId)
	var _ok int
	_ = tx.Raw("SELECT RELEASE_LOCK(?)", lockName).Scan(&_ok).Error
}

// RecomputeMaterial discards the material's stored aggregates and rebuilds
// them by folding the full RECEIVED history in effective order. The fold is
// unguarded so it terminates with a defined result even on drifted history.
// Idempotent, and the ground truth for the incremental path.
func RecomputeMaterial(ctx context.Context, materialId int) (*models.Material, error) {
	logger := config.GetLogger()
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}

	db := config.GetDB()
	tx := db.Begin()

	if err := acquireRecomputeLock(tx, projectId, materialId); err != nil {
		tx.Rollback()
		config.LogError(logger, "inventoryRebuild.go", "RecomputeMaterial", "AcquireLock", materialId, err)
		return nil, err
	}
	defer releaseRecomputeLock(db, projectId, materialId)

	material, err := recomputeMaterialLocked(tx, projectId, materialId)
	if err != nil {
		tx.Rollback()
		config.LogError(logger, "inventoryRebuild.go", "RecomputeMaterial", "Recompute", materialId, err)
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		config.LogError(logger, "inventoryRebuild.go", "RecomputeMaterial", "Commit", materialId, err)
		return nil, err
	}
	return material, nil
}

func recomputeMaterialLocked(tx *gorm.DB, projectId string, materialId int) (*models.Material, error) {
	material, err := models.LockMaterial(tx, projectId, materialId)
	if err != nil {
		return nil, err
	}

	history, err := models.ListReceivedTransactions(tx, materialId)
	if err != nil {
		return nil, err
	}

	material.QuantityReceivedTotal = decimal.Zero
	material.QuantityConsumedTotal = decimal.Zero
	material.CurrentStock = decimal.Zero
	material.AvgUnitCost = decimal.Zero
	for _, txn := range history {
		if err := applyTransactionEffect(material, txn, false); err != nil {
			return nil, err
		}
	}

	if err := persistAggregates(tx, material); err != nil {
		return nil, err
	}
	return material, nil
}

// RecomputeAllMaterials rebuilds every material of the project, one
// transaction per material so a long audit run does not hold one giant
// write transaction. Serialized per project across instances.
func RecomputeAllMaterials(ctx context.Context) ([]*models.Material, error) {
	logger := config.GetLogger()
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}

	release, err := utils.ProjectLock(ctx, projectId, "inventory_recompute", "inventoryRebuild.go", "RecomputeAllMaterials")
	if err != nil {
		return nil, err
	}
	defer release()

	materials, err := utils.FetchAllModels[models.Material](ctx, projectId)
	if err != nil {
		return nil, err
	}

	db := config.GetDB()
	results := make([]*models.Material, 0, len(materials))
	for _, material := range materials {
		tx := db.Begin()
		rebuilt, err := recomputeMaterialLocked(tx, projectId, material.ID)
		if err != nil {
			tx.Rollback()
			config.LogError(logger, "inventoryRebuild.go", "RecomputeAllMaterials", "Recompute", material.ID, err)
			return nil, err
		}
		if err := tx.Commit().Error; err != nil {
			config.LogError(logger, "inventoryRebuild.go", "RecomputeAllMaterials", "Commit", material.ID, err)
			return nil, err
		}
		results = append(results, rebuilt)
	}
	return results, nil
}
