package models

import (
	"github.com/nirmantrack/sitebooks_backend/config"
)

// MigrateTable runs the gorm auto migration for every persisted entity.
func MigrateTable() error {
	db := config.GetDB()
	return db.AutoMigrate(
		&LedgerAccount{},
		&LedgerEntry{},
		&Supplier{},
		&Expense{},
		&Payment{},
		&Material{},
		&InventoryTransaction{},
	)
}
