package workflow

import (
	"context"
	"errors"
	"time"

	"github.com/nirmantrack/sitebooks_backend/models"
	"github.com/nirmantrack/sitebooks_backend/utils"
	"github.com/shopspring/decimal"
)

type PlaceOrderInput struct {
	MaterialId   int             `json:"material_id" binding:"required"`
	Quantity     decimal.Decimal `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	SupplierId   *int            `json:"supplier_id"`
	AccountId    *int            `json:"account_id"`
	ExpectedDate time.Time       `json:"expected_date"`
	Notes        string          `json:"notes"`
}

// PlaceMaterialOrder stages a PENDING receipt for ordered material. The
// row carries no stock or cost effect until it is received; notifying the
// supplier is the caller's concern once the order is recorded.
func PlaceMaterialOrder(ctx context.Context, input *PlaceOrderInput) (*models.InventoryTransaction, error) {
	return CreateInventoryTransaction(ctx, &models.NewInventoryTransaction{
		MaterialId:      input.MaterialId,
		Kind:            models.TransactionKindReceipt,
		Status:          models.TransactionStatusPending,
		Quantity:        input.Quantity,
		UnitPrice:       input.UnitPrice,
		TransactionDate: input.ExpectedDate,
		SupplierId:      input.SupplierId,
		AccountId:       input.AccountId,
		AutoExpense:     utils.NewTrue(),
		Notes:           input.Notes,
	})
}

// ReceiveMaterialOrder transitions a placed order to RECEIVED, applying
// its stock effect as of now and creating the companion expense. Quantity
// and price can be corrected against the delivery note; zero values keep
// what was ordered.
func ReceiveMaterialOrder(ctx context.Context, transactionId int, quantity, unitPrice decimal.Decimal) (*models.InventoryTransaction, error) {
	projectId, ok := utils.GetProjectIdFromContext(ctx)
	if !ok || projectId == "" {
		return nil, errors.New("project id is required")
	}

	txn, err := utils.FetchModel[models.InventoryTransaction](ctx, projectId, transactionId)
	if err != nil {
		return nil, err
	}

	if quantity.IsZero() {
		quantity = txn.Quantity
	}
	if unitPrice.IsZero() {
		unitPrice = txn.UnitPrice
	}
	return UpdateInventoryTransaction(ctx, transactionId, &models.NewInventoryTransaction{
		MaterialId:      txn.MaterialId,
		Kind:            txn.Kind,
		Status:          models.TransactionStatusReceived,
		Quantity:        quantity,
		UnitPrice:       unitPrice,
		TransactionDate: txn.TransactionDate,
		SupplierId:      txn.SupplierId,
		AccountId:       txn.AccountId,
		AutoExpense:     txn.AutoExpense,
		Notes:           txn.Notes,
	})
}
