package handlers

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires every aggregate's endpoints under the given group.
// The group is expected to carry the project middleware.
func RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/ledger-accounts", CreateLedgerAccount)
	r.GET("/ledger-accounts", GetLedgerAccounts)
	r.GET("/ledger-accounts/:id", GetLedgerAccount)
	r.PUT("/ledger-accounts/:id", UpdateLedgerAccount)
	r.DELETE("/ledger-accounts/:id", DeleteLedgerAccount)
	r.GET("/ledger-accounts/:id/entries", GetLedgerEntries)
	r.POST("/ledger-entries", CreateLedgerEntry)
	r.DELETE("/ledger-entries/:id", DeleteLedgerEntry)
	r.GET("/ledger-overview", GetLedgerOverview)

	r.POST("/expenses", CreateExpense)
	r.GET("/expenses", GetExpenses)
	r.GET("/expenses/:id", GetExpense)
	r.PUT("/expenses/:id", UpdateExpense)
	r.DELETE("/expenses/:id", DeleteExpense)
	r.GET("/expenses/:id/payments", GetExpensePayments)

	r.POST("/payments", CreatePayment)
	r.GET("/payments/:id", GetPayment)
	r.PUT("/payments/:id", UpdatePayment)
	r.DELETE("/payments/:id", DeletePayment)

	r.POST("/suppliers", CreateSupplier)
	r.GET("/suppliers", GetSuppliers)
	r.GET("/suppliers/:id", GetSupplier)
	r.PUT("/suppliers/:id", UpdateSupplier)
	r.DELETE("/suppliers/:id", DeleteSupplier)

	r.POST("/materials", CreateMaterial)
	r.GET("/materials", GetMaterials)
	r.GET("/materials/low-stock", GetLowStockMaterials)
	r.GET("/materials/:id", GetMaterial)
	r.PUT("/materials/:id", UpdateMaterial)
	r.DELETE("/materials/:id", DeleteMaterial)
	r.GET("/materials/:id/transactions", GetMaterialTransactions)
	r.POST("/materials/:id/recompute", RecomputeMaterial)
	r.POST("/materials/recompute", RecomputeAllMaterials)

	r.POST("/inventory-transactions", CreateInventoryTransaction)
	r.GET("/inventory-transactions/:id", GetInventoryTransaction)
	r.PUT("/inventory-transactions/:id", UpdateInventoryTransaction)
	r.DELETE("/inventory-transactions/:id", DeleteInventoryTransaction)

	r.POST("/orders", PlaceMaterialOrder)
	r.POST("/orders/:id/receive", ReceiveMaterialOrder)
}
