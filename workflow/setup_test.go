package workflow

import (
	"context"
	"testing"

	"github.com/nirmantrack/sitebooks_backend/config"
	"github.com/nirmantrack/sitebooks_backend/models"
	"github.com/nirmantrack/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
)

func setupTestDB(t *testing.T) context.Context {
	t.Helper()
	if err := config.ConnectSqlite(":memory:"); err != nil {
		t.Fatalf("connect sqlite: %v", err)
	}
	if err := models.MigrateTable(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return utils.SetProjectIdInContext(context.Background(), "test-project")
}

func newTestAccount(t *testing.T, ctx context.Context, opening int64) *models.LedgerAccount {
	t.Helper()
	account, err := CreateLedgerAccount(ctx, &models.NewLedgerAccount{
		Name:       "Site savings",
		SourceType: models.FundingSourceTypeSavings,
		Amount:     decimal.NewFromInt(opening),
	})
	if err != nil {
		t.Fatalf("create account: %v", err)
	}
	return account
}

func newTestMaterial(t *testing.T, ctx context.Context, name string) *models.Material {
	t.Helper()
	material, err := models.CreateMaterial(ctx, &models.NewMaterial{
		Name: name,
		Unit: models.MaterialUnitBora,
	})
	if err != nil {
		t.Fatalf("create material: %v", err)
	}
	return material
}

func reloadAccount(t *testing.T, ctx context.Context, id int) *models.LedgerAccount {
	t.Helper()
	account, err := models.GetLedgerAccount(ctx, id)
	if err != nil {
		t.Fatalf("reload account %d: %v", id, err)
	}
	return account
}

func reloadMaterial(t *testing.T, ctx context.Context, id int) *models.Material {
	t.Helper()
	material, err := models.GetMaterial(ctx, id)
	if err != nil {
		t.Fatalf("reload material %d: %v", id, err)
	}
	return material
}

func reloadExpense(t *testing.T, ctx context.Context, id int) *models.Expense {
	t.Helper()
	expense, err := models.GetExpense(ctx, id)
	if err != nil {
		t.Fatalf("reload expense %d: %v", id, err)
	}
	return expense
}

func wantDecimal(t *testing.T, label string, got decimal.Decimal, want int64) {
	t.Helper()
	if !got.Equal(decimal.NewFromInt(want)) {
		t.Fatalf("%s = %s, want %d", label, got, want)
	}
}
