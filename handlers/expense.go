package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nirmantrack/sitebooks_backend/models"
	"github.com/nirmantrack/sitebooks_backend/workflow"
)

func CreateExpense(c *gin.Context) {
	var input models.NewExpense
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	expense, err := workflow.CreateExpense(c.Request.Context(), &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, expense)
}

func GetExpenses(c *gin.Context) {
	var expenseType *models.ExpenseType
	if v := c.Query("type"); v != "" {
		t := models.ExpenseType(v)
		expenseType = &t
	}
	var status *models.ExpenseStatus
	if v := c.Query("status"); v != "" {
		s := models.ExpenseStatus(v)
		status = &s
	}
	var fromDate, toDate *time.Time
	if v := c.Query("from"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid from date"})
			return
		}
		fromDate = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid to date"})
			return
		}
		toDate = &t
	}

	expenses, err := models.GetExpenses(c.Request.Context(), expenseType, status, fromDate, toDate)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expenses)
}

func GetExpense(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	expense, err := models.GetExpense(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func UpdateExpense(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	var input models.NewExpense
	if err := c.ShouldBindJSON(&input); err != nil {
		respondError(c, err)
		return
	}
	expense, err := workflow.UpdateExpense(c.Request.Context(), id, &input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func DeleteExpense(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	expense, err := workflow.DeleteExpense(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, expense)
}

func GetExpensePayments(c *gin.Context) {
	id, ok := pathId(c)
	if !ok {
		return
	}
	payments, err := models.GetPaymentsByExpense(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payments)
}
