package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/nirmantrack/sitebooks_backend/models"
	"github.com/nirmantrack/sitebooks_backend/workflow"
)

func CreatePayment(c *gin.Context) {
	var input models.NewPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	payment, err := workflow.CreatePayment(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payment)
}

func GetPayment(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	payment, err := models.GetPayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func UpdatePayment(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewPayment
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	payment, err := workflow.UpdatePayment(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}

func DeletePayment(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	payment, err := workflow.DeletePayment(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payment)
}
