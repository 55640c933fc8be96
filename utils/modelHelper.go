package utils

import (
	"context"

	"github.com/nirmantrack/sitebooks_backend/config"
)

/* DB fetching */

// fetch model from db
// (ctx's project_id is used in query's WHERE, may return ErrNotFound)
func FetchModel[T any](ctx context.Context, projectId string, id int, associations ...string) (*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("project_id = ?", projectId)
	// preloading
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var result T
	err := dbCtx.First(&result, id).Error
	if err != nil {
		return nil, ErrNotFound
	}
	return &result, nil
}

// fetch all models from db
// (ctx's project_id is used in query's WHERE)
func FetchAllModels[T any](ctx context.Context, projectId string, associations ...string) ([]*T, error) {

	db := config.GetDB()
	dbCtx := db.WithContext(ctx).Where("project_id = ?", projectId)
	for _, field := range associations {
		dbCtx = dbCtx.Preload(field)
	}
	var results []*T
	err := dbCtx.Find(&results).Error
	if err != nil {
		return nil, err
	}
	return results, nil
}

// check if id exists, using ctx's project_id in WHERE, returns ErrNotFound
func ValidateResourceId[T any](ctx context.Context, projectId string, id interface{}) error {

	count, err := ResourceCountWhere[T](ctx, projectId, "id = ?", id)
	if err != nil {
		return err
	}
	if count <= 0 {
		return ErrNotFound
	}
	return nil
}

func ResourceCountWhere[T any](ctx context.Context, projectId string, cond string, values ...interface{}) (int64, error) {
	db := config.GetDB()
	var model T
	var count int64
	err := db.WithContext(ctx).Model(&model).
		Where("project_id = ?", projectId).
		Where(cond, values...).
		Count(&count).Error
	if err != nil {
		return 0, err
	}
	return count, nil
}
