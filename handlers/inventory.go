package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nirmantrack/sitebooks_backend/models"
	"github.com/nirmantrack/sitebooks_backend/workflow"
	"github.com/shopspring/decimal"
)

func CreateInventoryTransaction(c *gin.Context) {
	var input models.NewInventoryTransaction
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	txn, err := workflow.CreateInventoryTransaction(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

func GetInventoryTransaction(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	txn, err := models.GetInventoryTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func UpdateInventoryTransaction(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewInventoryTransaction
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	txn, err := workflow.UpdateInventoryTransaction(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func DeleteInventoryTransaction(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	txn, err := workflow.DeleteInventoryTransaction(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}

func PlaceMaterialOrder(c *gin.Context) {
	var input workflow.PlaceOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	txn, err := workflow.PlaceMaterialOrder(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, txn)
}

type receiveOrderInput struct {
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

func ReceiveMaterialOrder(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input receiveOrderInput
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	txn, err := workflow.ReceiveMaterialOrder(c.Request.Context(), id, input.Quantity, input.UnitPrice)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, txn)
}
