package models

import (
	"context"
	"errors"

	"github.com/nirmantrack/sitebooks_backend/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// lockForUpdate adds FOR UPDATE on engines that support it. SQLite has a
// single-writer model and rejects the clause, so it is omitted there.
func lockForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}

// GetResource fetches a single record scoped to the ctx project.
func GetResource[T any](ctx context.Context, id int) (*T, error) {
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}
	return utils.FetchModel[T](ctx, projectId, id)
}

func projectIdFromContext(ctx context.Context) (string, error) {
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return "", errors.New("project id is required")
	}
	return projectId, nil
}
