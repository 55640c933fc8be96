package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nirmantrack/sitebooks_backend/models"
	"github.com/nirmantrack/sitebooks_backend/workflow"
)

func CreateMaterial(c *gin.Context) {
	var input models.NewMaterial
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	material, err := models.CreateMaterial(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, material)
}

func GetMaterials(c *gin.Context) {
	var name, category *string
	if v := c.Query("name"); v != "" {
		name = &v
	}
	if v := c.Query("category"); v != "" {
		category = &v
	}
	materials, err := models.GetMaterials(c.Request.Context(), name, category)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, materials)
}

func GetMaterial(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	material, err := models.GetMaterial(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, material)
}

func UpdateMaterial(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewMaterial
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	material, err := models.UpdateMaterial(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, material)
}

func DeleteMaterial(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	material, err := models.DeleteMaterial(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, material)
}

func GetLowStockMaterials(c *gin.Context) {
	materials, err := models.GetLowStockMaterials(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, materials)
}

func GetMaterialTransactions(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var status *models.TransactionStatus
	if v := c.Query("status"); v != "" {
		s := models.TransactionStatus(v)
		status = &s
	}
	transactions, err := models.GetTransactionsByMaterial(c.Request.Context(), id, status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions)
}

func RecomputeMaterial(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	material, err := workflow.RecomputeMaterial(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, material)
}

func RecomputeAllMaterials(c *gin.Context) {
	materials, err := workflow.RecomputeAllMaterials(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, materials)
}
